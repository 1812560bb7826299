package session

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/db"
)

// SQLite keeps sessions in the sessions table of a database opened with db.Open.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

var _ Store = (*SQLite)(nil)

// NewSQLite wraps an open database. The schema must already exist.
func NewSQLite(database *sql.DB) *SQLite {
	return &SQLite{db: database, now: time.Now}
}

// Create starts a session.
func (s *SQLite) Create(ctx context.Context, userID int64, ttl time.Duration) (*Session, error) {
	now := s.now().UTC()
	sess := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		sess.ID, sess.UserID, db.FormatTime(sess.CreatedAt), db.FormatTime(sess.ExpiresAt),
	)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	return sess, nil
}

// Get returns a live session.
func (s *SQLite) Get(ctx context.Context, id string) (*Session, error) {
	sess := &Session{}
	var createdAt, expiresAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, created_at, expires_at FROM sessions WHERE id = ? AND expires_at > ?`,
		id, db.FormatTime(s.now()),
	).Scan(&sess.ID, &sess.UserID, &createdAt, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}

	if sess.CreatedAt, err = db.ParseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing session created_at: %w", err)
	}
	if sess.ExpiresAt, err = db.ParseTime(expiresAt); err != nil {
		return nil, fmt.Errorf("parsing session expires_at: %w", err)
	}
	return sess, nil
}

// Delete ends a session.
func (s *SQLite) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// Sweep removes expired sessions.
func (s *SQLite) Sweep(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= ?`, db.FormatTime(s.now()),
	)
	if err != nil {
		return 0, fmt.Errorf("sweeping sessions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sweeping sessions: %w", err)
	}
	return n, nil
}
