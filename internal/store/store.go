// Package store is the storage abstraction for users, items and messages.
//
// Store is the capability interface consumed by the HTTP layer. Memory keeps
// everything in process; SQLite and Postgres persist it. All three honor the
// same contract:
//
//   - lookups return (nil, nil) when nothing matches; an error always means the
//     storage medium failed
//   - ids are assigned sequentially per entity and never reused
//   - filtered listings and searches are ordered most recent first
//   - returned values are snapshots; mutating them does not touch the store
package store

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/model"
)

// Store owns all user, item and message state.
type Store interface {
	// GetUser returns a user by ID, or nil.
	GetUser(ctx context.Context, id int64) (*model.User, error)
	// GetUserByUsername returns the first user with exactly this username, or nil.
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	// GetUserByEmail returns the first user with exactly this email, or nil.
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// CreateUser stores a new user. Uniqueness is the caller's concern.
	CreateUser(ctx context.Context, in model.InsertUser) (*model.User, error)

	// GetItem returns an item by ID, or nil.
	GetItem(ctx context.Context, id int64) (*model.Item, error)
	// GetItems lists items. A nil filter returns every item in insertion order;
	// otherwise the result is filtered, sorted by recency and paginated.
	GetItems(ctx context.Context, filter *model.ItemFilter) ([]model.Item, error)
	// CreateItem stores a new item with zero views.
	CreateItem(ctx context.Context, in model.InsertItem) (*model.Item, error)
	// UpdateItem merges patch onto an item and returns the result, or nil if
	// the item does not exist.
	UpdateItem(ctx context.Context, id int64, patch model.ItemPatch) (*model.Item, error)
	// DeleteItem removes an item and reports whether it existed.
	DeleteItem(ctx context.Context, id int64) (bool, error)
	// IncrementItemViews adds one view. Missing items are ignored.
	IncrementItemViews(ctx context.Context, id int64) error
	// SearchItems matches query against name, description and location and
	// applies the optional filter, most recent first.
	SearchItems(ctx context.Context, query string, filter *model.SearchFilter) ([]model.Item, error)

	// GetMessage returns a message by ID, or nil.
	GetMessage(ctx context.Context, id int64) (*model.Message, error)
	// GetMessages returns messages sent or received by userID, most recent first.
	GetMessages(ctx context.Context, userID int64) ([]model.Message, error)
	// GetMessagesByItem returns messages about itemID, most recent first.
	GetMessagesByItem(ctx context.Context, itemID int64) ([]model.Message, error)
	// CreateMessage stores a new unread message.
	CreateMessage(ctx context.Context, in model.InsertMessage) (*model.Message, error)
	// MarkMessageAsRead sets read and reports whether the message exists.
	MarkMessageAsRead(ctx context.Context, id int64) (bool, error)

	// Count returns the number of stored entities.
	Count(ctx context.Context) (Counts, error)

	// Close releases the backend.
	Close() error
}

// Counts holds entity totals.
type Counts struct {
	Users    int64 `json:"users"`
	Items    int64 `json:"items"`
	Messages int64 `json:"messages"`
}

// Empty reports whether the store holds no users and no items.
func (c Counts) Empty() bool {
	return c.Users == 0 && c.Items == 0
}

// byRecency orders most recent first; equal timestamps fall back to the
// higher id, which is the later insert.
func byRecency(aCreated, bCreated time.Time, aID, bID int64) int {
	if c := bCreated.Compare(aCreated); c != 0 {
		return c
	}
	return cmp.Compare(bID, aID)
}

func sortItems(items []model.Item) {
	slices.SortStableFunc(items, func(a, b model.Item) int {
		return byRecency(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
}

func sortMessages(msgs []model.Message) {
	slices.SortStableFunc(msgs, func(a, b model.Message) int {
		return byRecency(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
}

// paginate returns items[offset:offset+limit], clamped to the slice. A limit
// of zero or less returns items unchanged.
func paginate(items []model.Item, limit, offset int) []model.Item {
	if limit <= 0 {
		return items
	}
	offset = max(offset, 0)
	if offset >= len(items) {
		return []model.Item{}
	}
	end := len(items)
	if limit < end-offset {
		end = offset + limit
	}
	return items[offset:end]
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// sameDay compares calendar days in UTC.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

func matchesItemFilter(item *model.Item, f *model.ItemFilter) bool {
	if f.Status != "" && item.Status != f.Status {
		return false
	}
	if f.Type != "" && item.Type != f.Type {
		return false
	}
	if f.UserID != 0 && item.UserID != f.UserID {
		return false
	}
	return true
}

func matchesSearch(item *model.Item, query string, f *model.SearchFilter) bool {
	if query != "" &&
		!containsFold(item.Name, query) &&
		!containsFold(item.Description, query) &&
		!containsFold(item.Location, query) {
		return false
	}
	if f == nil {
		return true
	}
	if f.Status != "" && item.Status != f.Status {
		return false
	}
	if f.Type != "" && item.Type != f.Type {
		return false
	}
	if f.Date != nil && !sameDay(item.Date, *f.Date) {
		return false
	}
	if f.Location != "" && !containsFold(item.Location, f.Location) {
		return false
	}
	return true
}

// newItem builds the stored form of an insert payload.
func newItem(id int64, in model.InsertItem, now time.Time) model.Item {
	item := model.Item{
		ID:              id,
		UserID:          in.UserID,
		Name:            in.Name,
		Type:            in.Type,
		Description:     in.Description,
		Status:          in.Status,
		Date:            in.Date,
		Location:        in.Location,
		LocationDetails: in.LocationDetails,
		Coordinates:     in.Coordinates,
		Images:          in.Images,
		ContactName:     in.ContactName,
		ContactEmail:    in.ContactEmail,
		CreatedAt:       now,
	}
	return cloneItem(item)
}

// cloneItem deep-copies the pointer and slice fields of an item.
func cloneItem(item model.Item) model.Item {
	if item.LocationDetails != nil {
		v := *item.LocationDetails
		item.LocationDetails = &v
	}
	if item.Coordinates != nil {
		v := *item.Coordinates
		item.Coordinates = &v
	}
	if item.Images != nil {
		item.Images = slices.Clone(item.Images)
	}
	return item
}
