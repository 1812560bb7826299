package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/db"
	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/model"
)

const userColumns = `id, username, password, email, name, created_at`

// CreateUser creates a new user.
func (s *SQLite) CreateUser(ctx context.Context, in model.InsertUser) (*model.User, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password, email, name, created_at) VALUES (?, ?, ?, ?, ?)`,
		in.Username, in.Password, in.Email, in.Name, db.FormatTime(s.now()),
	)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	return s.GetUser(ctx, id)
}

// GetUser returns a user by ID.
func (s *SQLite) GetUser(ctx context.Context, id int64) (*model.User, error) {
	return s.queryUser(ctx, "getting user", `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// GetUserByUsername returns the first user with this username.
func (s *SQLite) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.queryUser(ctx, "getting user by username",
		`SELECT `+userColumns+` FROM users WHERE username = ? ORDER BY id LIMIT 1`, username)
}

// GetUserByEmail returns the first user with this email.
func (s *SQLite) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.queryUser(ctx, "getting user by email",
		`SELECT `+userColumns+` FROM users WHERE email = ? ORDER BY id LIMIT 1`, email)
}

func (s *SQLite) queryUser(ctx context.Context, op, query string, arg any) (*model.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

func scanUser(row scanner) (*model.User, error) {
	u := &model.User{}
	var createdAt string
	if err := row.Scan(&u.ID, &u.Username, &u.Password, &u.Email, &u.Name, &createdAt); err != nil {
		return nil, err
	}
	if err := scanTime(createdAt, &u.CreatedAt); err != nil {
		return nil, err
	}
	return u, nil
}
