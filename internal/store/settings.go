package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Settings keys.
const SettingSessionSecret = "session_secret"

// Secret returns the random secret stored under key, generating and storing
// one on first use. INSERT OR IGNORE + re-SELECT keeps concurrent first
// starts from disagreeing.
func (s *SQLite) Secret(ctx context.Context, key string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating %s: %w", key, err)
	}
	candidate := hex.EncodeToString(buf)

	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`,
		key, candidate,
	)
	if err != nil {
		return "", fmt.Errorf("storing %s: %w", key, err)
	}

	var secret string
	err = s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, key,
	).Scan(&secret)
	if err != nil {
		return "", fmt.Errorf("querying %s: %w", key, err)
	}

	return secret, nil
}
