package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/db"
)

// SQLite is a Store backed by a SQLite database opened with db.Open.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

var _ Store = (*SQLite)(nil)

// NewSQLite wraps an open database. The schema must already exist.
func NewSQLite(database *sql.DB) *SQLite {
	return &SQLite{
		db:  database,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Count returns entity totals.
func (s *SQLite) Count(ctx context.Context) (Counts, error) {
	var c Counts
	err := s.db.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM users), (SELECT COUNT(*) FROM items), (SELECT COUNT(*) FROM messages)`,
	).Scan(&c.Users, &c.Items, &c.Messages)
	if err != nil {
		return Counts{}, fmt.Errorf("counting entities: %w", err)
	}
	return c, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTime(raw string, dst *time.Time) error {
	t, err := db.ParseTime(raw)
	if err != nil {
		return fmt.Errorf("parsing timestamp %q: %w", raw, err)
	}
	*dst = t
	return nil
}

func encodeImages(images []string) (sql.NullString, error) {
	if images == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(images)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encoding images: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func decodeImages(raw sql.NullString) ([]string, error) {
	if !raw.Valid {
		return nil, nil
	}
	images := []string{}
	if err := json.Unmarshal([]byte(raw.String), &images); err != nil {
		return nil, fmt.Errorf("decoding images: %w", err)
	}
	return images, nil
}
