// Package session keeps login sessions. It is independent of the entity store:
// sessions expire on their own and are swept periodically.
package session

import (
	"context"
	"log/slog"
	"time"
)

// Session is one login.
type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Store is a pluggable session key/value store.
type Store interface {
	// Create starts a session for userID that lives for ttl.
	Create(ctx context.Context, userID int64, ttl time.Duration) (*Session, error)
	// Get returns a live session, or nil when missing or expired.
	Get(ctx context.Context, id string) (*Session, error)
	// Delete ends a session. Unknown ids are ignored.
	Delete(ctx context.Context, id string) error
	// Sweep removes expired sessions and returns how many were removed.
	Sweep(ctx context.Context) (int64, error)
}

// DefaultSweepInterval is how often Sweeper runs by default.
const DefaultSweepInterval = 24 * time.Hour

// Sweeper periodically removes expired sessions from a Store.
type Sweeper struct {
	Store    Store
	Interval time.Duration
}

// Run sweeps every Interval until ctx is cancelled. It always returns nil
// once the context is done.
func (sw *Sweeper) Run(ctx context.Context) error {
	interval := sw.Interval
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			sw.sweepOnce(ctx)
		}
	}
}

func (sw *Sweeper) sweepOnce(ctx context.Context) {
	n, err := sw.Store.Sweep(ctx)
	if err != nil {
		slog.Error("session sweep failed", "error", err)
		return
	}
	if n > 0 {
		slog.Info("expired sessions removed", "count", n)
	}
}
