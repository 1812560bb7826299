package model

import "time"

// Item is a lost or found listing.
type Item struct {
	ID              int64        `json:"id"`
	UserID          int64        `json:"userId"`
	Name            string       `json:"name"`
	Type            string       `json:"type"`
	Description     string       `json:"description"`
	Status          string       `json:"status"`
	Date            time.Time    `json:"date"`
	Location        string       `json:"location"`
	LocationDetails *string      `json:"locationDetails"`
	Coordinates     *Coordinates `json:"coordinates"`
	Images          []string     `json:"images"`
	ContactName     string       `json:"contactName"`
	ContactEmail    string       `json:"contactEmail"`
	Views           int64        `json:"views"`
	CreatedAt       time.Time    `json:"createdAt"`
}

// Item statuses.
const (
	ItemStatusLost  = "lost"
	ItemStatusFound = "found"
)

// Coordinates is a lat/lng pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// InsertItem is the payload accepted by Store.CreateItem.
// Nil LocationDetails, Coordinates and Images mean "absent".
type InsertItem struct {
	UserID          int64        `json:"userId"`
	Name            string       `json:"name"`
	Type            string       `json:"type"`
	Description     string       `json:"description"`
	Status          string       `json:"status"`
	Date            time.Time    `json:"date"`
	Location        string       `json:"location"`
	LocationDetails *string      `json:"locationDetails,omitempty"`
	Coordinates     *Coordinates `json:"coordinates,omitempty"`
	Images          []string     `json:"images,omitempty"`
	ContactName     string       `json:"contactName"`
	ContactEmail    string       `json:"contactEmail"`
}

// ItemPatch is a partial update. Only fields present in the patch overwrite the
// stored item; everything else is kept.
type ItemPatch struct {
	Name            *string               `json:"name,omitempty"`
	Type            *string               `json:"type,omitempty"`
	Description     *string               `json:"description,omitempty"`
	Status          *string               `json:"status,omitempty"`
	Date            *time.Time            `json:"date,omitempty"`
	Location        *string               `json:"location,omitempty"`
	LocationDetails Nullable[string]      `json:"locationDetails,omitzero"`
	Coordinates     Nullable[Coordinates] `json:"coordinates,omitzero"`
	Images          Nullable[[]string]    `json:"images,omitzero"`
	ContactName     *string               `json:"contactName,omitempty"`
	ContactEmail    *string               `json:"contactEmail,omitempty"`
}

// Apply merges the patch onto item in place.
func (p ItemPatch) Apply(item *Item) {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Type != nil {
		item.Type = *p.Type
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.Status != nil {
		item.Status = *p.Status
	}
	if p.Date != nil {
		item.Date = *p.Date
	}
	if p.Location != nil {
		item.Location = *p.Location
	}
	if p.LocationDetails.Set {
		item.LocationDetails = p.LocationDetails.Ptr()
	}
	if p.Coordinates.Set {
		item.Coordinates = p.Coordinates.Ptr()
	}
	if p.Images.Set {
		if p.Images.Valid {
			item.Images = append([]string(nil), p.Images.Value...)
		} else {
			item.Images = nil
		}
	}
	if p.ContactName != nil {
		item.ContactName = *p.ContactName
	}
	if p.ContactEmail != nil {
		item.ContactEmail = *p.ContactEmail
	}
}

// Empty reports whether the patch carries no fields.
func (p ItemPatch) Empty() bool {
	return p.Name == nil && p.Type == nil && p.Description == nil && p.Status == nil &&
		p.Date == nil && p.Location == nil && !p.LocationDetails.Set && !p.Coordinates.Set &&
		!p.Images.Set && p.ContactName == nil && p.ContactEmail == nil
}

// ItemFilter narrows Store.GetItems. Zero values mean "not set"; a Limit of
// zero disables pagination.
type ItemFilter struct {
	Status string
	Type   string
	UserID int64
	Limit  int
	Offset int
}

// SearchFilter narrows Store.SearchItems. A nil Date means no date filter.
type SearchFilter struct {
	Status   string
	Type     string
	Date     *time.Time
	Location string
}
