package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/db"
	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/model"
)

// Postgres is a Store backed by a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

var _ Store = (*Postgres)(nil)

// NewPostgres wraps an open pool. The schema must already exist.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{
		pool: pool,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func pgPlaceholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

// GetUser returns a user by ID.
func (p *Postgres) GetUser(ctx context.Context, id int64) (*model.User, error) {
	return p.queryUser(ctx, "getting user", `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetUserByUsername returns the first user with this username.
func (p *Postgres) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return p.queryUser(ctx, "getting user by username",
		`SELECT `+userColumns+` FROM users WHERE username = $1 ORDER BY id LIMIT 1`, username)
}

// GetUserByEmail returns the first user with this email.
func (p *Postgres) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return p.queryUser(ctx, "getting user by email",
		`SELECT `+userColumns+` FROM users WHERE email = $1 ORDER BY id LIMIT 1`, email)
}

// CreateUser creates a new user.
func (p *Postgres) CreateUser(ctx context.Context, in model.InsertUser) (*model.User, error) {
	u, err := pgScanUser(p.pool.QueryRow(ctx,
		`INSERT INTO users (username, password, email, name, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+userColumns,
		in.Username, in.Password, in.Email, in.Name, p.now(),
	))
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return u, nil
}

func (p *Postgres) queryUser(ctx context.Context, op, query string, arg any) (*model.User, error) {
	u, err := pgScanUser(p.pool.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

func pgScanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	if err := row.Scan(&u.ID, &u.Username, &u.Password, &u.Email, &u.Name, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}

// GetItem returns an item by ID.
func (p *Postgres) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	item, err := pgScanItem(p.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// GetItems lists items, see Store.
func (p *Postgres) GetItems(ctx context.Context, filter *model.ItemFilter) ([]model.Item, error) {
	if filter == nil {
		return p.listItems(ctx, `SELECT `+itemColumns+` FROM items ORDER BY id`)
	}

	var where []string
	var args []any
	next := func(v any) string {
		args = append(args, v)
		return pgPlaceholder(len(args))
	}

	if filter.Status != "" {
		where = append(where, `status = `+next(filter.Status))
	}
	if filter.Type != "" {
		where = append(where, `type = `+next(filter.Type))
	}
	if filter.UserID != 0 {
		where = append(where, `user_id = `+next(filter.UserID))
	}

	query := `SELECT ` + itemColumns + ` FROM items`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ` + next(filter.Limit) + ` OFFSET ` + next(max(filter.Offset, 0))
	}

	return p.listItems(ctx, query, args...)
}

// CreateItem creates a new item.
func (p *Postgres) CreateItem(ctx context.Context, in model.InsertItem) (*model.Item, error) {
	item := newItem(0, in, p.now())
	lat, lng := pgCoordinates(item.Coordinates)

	created, err := pgScanItem(p.pool.QueryRow(ctx,
		`INSERT INTO items (user_id, name, type, description, status, date, location, location_details,
		                    lat, lng, images, contact_name, contact_email, views, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, 0, $14)
		 RETURNING `+itemColumns,
		item.UserID, item.Name, item.Type, item.Description, item.Status, item.Date.UTC(),
		item.Location, item.LocationDetails, lat, lng, item.Images,
		item.ContactName, item.ContactEmail, item.CreatedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}
	return created, nil
}

// UpdateItem merges patch onto an existing item.
func (p *Postgres) UpdateItem(ctx context.Context, id int64, patch model.ItemPatch) (*model.Item, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	item, err := pgScanItem(tx.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item for update: %w", err)
	}

	patch.Apply(item)
	item.Date = item.Date.UTC()
	lat, lng := pgCoordinates(item.Coordinates)

	_, err = tx.Exec(ctx,
		`UPDATE items SET name = $1, type = $2, description = $3, status = $4, date = $5,
		        location = $6, location_details = $7, lat = $8, lng = $9, images = $10,
		        contact_name = $11, contact_email = $12
		 WHERE id = $13`,
		item.Name, item.Type, item.Description, item.Status, item.Date,
		item.Location, item.LocationDetails, lat, lng, item.Images,
		item.ContactName, item.ContactEmail, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating item: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing item update: %w", err)
	}
	return item, nil
}

// DeleteItem removes an item.
func (p *Postgres) DeleteItem(ctx context.Context, id int64) (bool, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("deleting item: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// IncrementItemViews adds one view to an existing item.
func (p *Postgres) IncrementItemViews(ctx context.Context, id int64) error {
	if _, err := p.pool.Exec(ctx, `UPDATE items SET views = views + 1 WHERE id = $1`, id); err != nil {
		return fmt.Errorf("incrementing item views: %w", err)
	}
	return nil
}

// SearchItems matches items against a text query and filter.
func (p *Postgres) SearchItems(ctx context.Context, query string, filter *model.SearchFilter) ([]model.Item, error) {
	where, args := searchClause(query, filter, "strpos", pgPlaceholder)
	if filter != nil && filter.Date != nil {
		args = append(args, filter.Date.UTC().Format(db.DateLayout))
		where = append(where, `to_char(date AT TIME ZONE 'UTC', 'YYYY-MM-DD') = `+pgPlaceholder(len(args)))
	}

	q := `SELECT ` + itemColumns + ` FROM items`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, ` AND `)
	}
	q += ` ORDER BY created_at DESC, id DESC`

	return p.listItems(ctx, q, args...)
}

func (p *Postgres) listItems(ctx context.Context, query string, args ...any) ([]model.Item, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		item, err := pgScanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func pgCoordinates(c *model.Coordinates) (lat, lng *float64) {
	if c == nil {
		return nil, nil
	}
	return &c.Lat, &c.Lng
}

func pgScanItem(row pgx.Row) (*model.Item, error) {
	item := &model.Item{}
	var lat, lng *float64

	err := row.Scan(&item.ID, &item.UserID, &item.Name, &item.Type, &item.Description, &item.Status,
		&item.Date, &item.Location, &item.LocationDetails, &lat, &lng, &item.Images,
		&item.ContactName, &item.ContactEmail, &item.Views, &item.CreatedAt)
	if err != nil {
		return nil, err
	}

	item.Date = item.Date.UTC()
	item.CreatedAt = item.CreatedAt.UTC()
	if lat != nil && lng != nil {
		item.Coordinates = &model.Coordinates{Lat: *lat, Lng: *lng}
	}
	return item, nil
}

// GetMessage returns a message by ID.
func (p *Postgres) GetMessage(ctx context.Context, id int64) (*model.Message, error) {
	msg, err := pgScanMessage(p.pool.QueryRow(ctx, `SELECT `+messageColumns+` FROM messages WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting message: %w", err)
	}
	return msg, nil
}

// GetMessages returns a user's inbox and outbox.
func (p *Postgres) GetMessages(ctx context.Context, userID int64) ([]model.Message, error) {
	return p.listMessages(ctx,
		`SELECT `+messageColumns+` FROM messages
		 WHERE from_user_id = $1 OR to_user_id = $1
		 ORDER BY created_at DESC, id DESC`, userID)
}

// GetMessagesByItem returns the thread for an item.
func (p *Postgres) GetMessagesByItem(ctx context.Context, itemID int64) ([]model.Message, error) {
	return p.listMessages(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE item_id = $1 ORDER BY created_at DESC, id DESC`, itemID)
}

// CreateMessage stores a new unread message.
func (p *Postgres) CreateMessage(ctx context.Context, in model.InsertMessage) (*model.Message, error) {
	msg, err := pgScanMessage(p.pool.QueryRow(ctx,
		`INSERT INTO messages (item_id, from_user_id, to_user_id, content, read, created_at)
		 VALUES ($1, $2, $3, $4, FALSE, $5)
		 RETURNING `+messageColumns,
		in.ItemID, in.FromUserID, in.ToUserID, in.Content, p.now(),
	))
	if err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}
	return msg, nil
}

// MarkMessageAsRead sets the read flag.
func (p *Postgres) MarkMessageAsRead(ctx context.Context, id int64) (bool, error) {
	tag, err := p.pool.Exec(ctx, `UPDATE messages SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("marking message read: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (p *Postgres) listMessages(ctx context.Context, query string, args ...any) ([]model.Message, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	msgs := []model.Message{}
	for rows.Next() {
		msg, err := pgScanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		msgs = append(msgs, *msg)
	}
	return msgs, rows.Err()
}

func pgScanMessage(row pgx.Row) (*model.Message, error) {
	msg := &model.Message{}
	if err := row.Scan(&msg.ID, &msg.ItemID, &msg.FromUserID, &msg.ToUserID, &msg.Content, &msg.Read, &msg.CreatedAt); err != nil {
		return nil, err
	}
	msg.CreatedAt = msg.CreatedAt.UTC()
	return msg, nil
}

// Count returns entity totals.
func (p *Postgres) Count(ctx context.Context) (Counts, error) {
	var c Counts
	err := p.pool.QueryRow(ctx,
		`SELECT (SELECT COUNT(*) FROM users), (SELECT COUNT(*) FROM items), (SELECT COUNT(*) FROM messages)`,
	).Scan(&c.Users, &c.Items, &c.Messages)
	if err != nil {
		return Counts{}, fmt.Errorf("counting entities: %w", err)
	}
	return c, nil
}

// Close closes the pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
