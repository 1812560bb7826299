package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/db"
	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/model"
)

const itemColumns = `id, user_id, name, type, description, status, date, location, location_details,
	lat, lng, images, contact_name, contact_email, views, created_at`

// CreateItem creates a new item.
func (s *SQLite) CreateItem(ctx context.Context, in model.InsertItem) (*model.Item, error) {
	item := newItem(0, in, s.now())
	args, err := itemArgs(&item)
	if err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO items (user_id, name, type, description, status, date, location, location_details,
		                    lat, lng, images, contact_name, contact_email, views, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?)`,
		append(args, db.FormatTime(item.CreatedAt))...,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return s.GetItem(ctx, id)
}

// GetItem returns an item by ID.
func (s *SQLite) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	item, err := scanItem(s.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// GetItems lists items, see Store.
func (s *SQLite) GetItems(ctx context.Context, filter *model.ItemFilter) ([]model.Item, error) {
	if filter == nil {
		return s.listItems(ctx, `SELECT `+itemColumns+` FROM items ORDER BY id`)
	}

	query := `SELECT ` + itemColumns + ` FROM items WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.Type != "" {
		query += ` AND type = ?`
		args = append(args, filter.Type)
	}
	if filter.UserID != 0 {
		query += ` AND user_id = ?`
		args = append(args, filter.UserID)
	}

	query += ` ORDER BY created_at DESC, id DESC`

	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, max(filter.Offset, 0))
	}

	return s.listItems(ctx, query, args...)
}

// SearchItems matches items against a text query and filter.
func (s *SQLite) SearchItems(ctx context.Context, query string, filter *model.SearchFilter) ([]model.Item, error) {
	where, args := searchClause(query, filter, "instr", func(int) string { return "?" })
	if filter != nil && filter.Date != nil {
		where = append(where, `substr(date, 1, 10) = ?`)
		args = append(args, filter.Date.UTC().Format(db.DateLayout))
	}

	q := `SELECT ` + itemColumns + ` FROM items`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, ` AND `)
	}
	q += ` ORDER BY created_at DESC, id DESC`

	return s.listItems(ctx, q, args...)
}

// searchClause builds the text, status, type and location conditions shared
// by the SQL backends. position is the dialect's substring-position function
// and placeholder renders the n-th (1-based) argument.
func searchClause(query string, filter *model.SearchFilter, position string, placeholder func(n int) string) ([]string, []any) {
	var where []string
	var args []any

	next := func(v any) string {
		args = append(args, v)
		return placeholder(len(args))
	}

	if query != "" {
		q := strings.ToLower(query)
		where = append(where, fmt.Sprintf(
			`(%[1]s(lower(name), %[2]s) > 0 OR %[1]s(lower(description), %[3]s) > 0 OR %[1]s(lower(location), %[4]s) > 0)`,
			position, next(q), next(q), next(q)))
	}
	if filter == nil {
		return where, args
	}
	if filter.Status != "" {
		where = append(where, `status = `+next(filter.Status))
	}
	if filter.Type != "" {
		where = append(where, `type = `+next(filter.Type))
	}
	if filter.Location != "" {
		where = append(where, position+`(lower(location), `+next(strings.ToLower(filter.Location))+`) > 0`)
	}
	return where, args
}

// UpdateItem merges patch onto an existing item.
func (s *SQLite) UpdateItem(ctx context.Context, id int64, patch model.ItemPatch) (*model.Item, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	item, err := scanItem(tx.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item for update: %w", err)
	}

	patch.Apply(item)
	item.Date = item.Date.UTC()
	args, err := itemArgs(item)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE items SET user_id = ?, name = ?, type = ?, description = ?, status = ?, date = ?,
		        location = ?, location_details = ?, lat = ?, lng = ?, images = ?,
		        contact_name = ?, contact_email = ?
		 WHERE id = ?`,
		append(args, id)...,
	)
	if err != nil {
		return nil, fmt.Errorf("updating item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing item update: %w", err)
	}
	return item, nil
}

// DeleteItem removes an item.
func (s *SQLite) DeleteItem(ctx context.Context, id int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting item: %w", err)
	}
	return n > 0, nil
}

// IncrementItemViews adds one view to an existing item.
func (s *SQLite) IncrementItemViews(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE items SET views = views + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("incrementing item views: %w", err)
	}
	return nil
}

func (s *SQLite) listItems(ctx context.Context, query string, args ...any) ([]model.Item, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// itemArgs returns the mutable columns in insert/update order, from user_id
// through contact_email.
func itemArgs(item *model.Item) ([]any, error) {
	images, err := encodeImages(item.Images)
	if err != nil {
		return nil, err
	}

	var lat, lng sql.NullFloat64
	if item.Coordinates != nil {
		lat = sql.NullFloat64{Float64: item.Coordinates.Lat, Valid: true}
		lng = sql.NullFloat64{Float64: item.Coordinates.Lng, Valid: true}
	}

	var details sql.NullString
	if item.LocationDetails != nil {
		details = sql.NullString{String: *item.LocationDetails, Valid: true}
	}

	return []any{
		item.UserID, item.Name, item.Type, item.Description, item.Status,
		db.FormatTime(item.Date), item.Location, details,
		lat, lng, images, item.ContactName, item.ContactEmail,
	}, nil
}

func scanItem(row scanner) (*model.Item, error) {
	item := &model.Item{}
	var date, createdAt string
	var details, images sql.NullString
	var lat, lng sql.NullFloat64

	err := row.Scan(&item.ID, &item.UserID, &item.Name, &item.Type, &item.Description, &item.Status,
		&date, &item.Location, &details, &lat, &lng, &images,
		&item.ContactName, &item.ContactEmail, &item.Views, &createdAt)
	if err != nil {
		return nil, err
	}

	if err := scanTime(date, &item.Date); err != nil {
		return nil, err
	}
	if err := scanTime(createdAt, &item.CreatedAt); err != nil {
		return nil, err
	}
	if details.Valid {
		item.LocationDetails = &details.String
	}
	if lat.Valid && lng.Valid {
		item.Coordinates = &model.Coordinates{Lat: lat.Float64, Lng: lng.Float64}
	}
	if item.Images, err = decodeImages(images); err != nil {
		return nil, err
	}
	return item, nil
}
