package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory keeps sessions in a map.
type Memory struct {
	mu       sync.Mutex
	sessions map[string]Session
	now      func() time.Time
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty in-memory session store.
func NewMemory() *Memory {
	return &Memory{
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

// Create starts a session.
func (m *Memory) Create(_ context.Context, userID int64, ttl time.Duration) (*Session, error) {
	now := m.now().UTC()
	s := Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	return &s, nil
}

// Get returns a live session.
func (m *Memory) Get(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok || s.Expired(m.now()) {
		return nil, nil
	}
	return &s, nil
}

// Delete ends a session.
func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

// Sweep removes expired sessions.
func (m *Memory) Sweep(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	var n int64
	for id, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}
