package memory

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Store retains idempotency values in process memory until they expire.
type Store struct {
	mu    sync.Mutex
	items map[string]entry
	now   func() time.Time
}

type Option func(*Store)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a new in-memory idempotency store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		items: make(map[string]entry),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the stored value for key, or nil once it has expired.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[key]
	if !ok {
		return nil, nil
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.items, key)
		return nil, nil
	}

	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

// SetWithTTL stores value unless a live entry already holds key.
func (s *Store) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.items[key]; ok && now.Before(e.expiresAt) {
		return false, nil
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	s.items[key] = entry{value: stored, expiresAt: now.Add(ttl)}
	return true, nil
}

// Len reports how many entries are held, expired ones included.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
