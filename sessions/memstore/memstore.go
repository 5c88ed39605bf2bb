package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jrsteele09/go-bucket-browser/sessions"
)

var _ sessions.Store = (*Store)(nil)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Store is a thread-safe in-memory implementation of sessions.Store.
// Expired entries are evicted when they are read.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	nowTime func() time.Time
}

type Option func(*Store)

// WithNowTime sets the clock used for TTL checks (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Store) {
		s.nowTime = nowFunc
	}
}

// New creates a new in-memory TTL store
func New(opts ...Option) *Store {
	s := &Store{
		entries: make(map[string]entry),
		nowTime: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put stores a copy of value under key until ttl elapses
func (s *Store) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy to prevent external modifications
	s.entries[key] = entry{
		value:     append([]byte(nil), value...),
		expiresAt: s.nowTime().Add(ttl),
	}
	return nil
}

// Get retrieves the value stored under key
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, sessions.ErrNotFound
	}

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, sessions.ErrNotFound
	}

	if !s.nowTime().Before(e.expiresAt) {
		s.mu.Lock()
		// Re-check under the write lock; the key may have been rewritten.
		if current, ok := s.entries[key]; ok && !s.nowTime().Before(current.expiresAt) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, sessions.ErrNotFound
	}

	return append([]byte(nil), e.value...), nil
}

// Delete removes key; absent keys are ignored
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// Len returns the number of entries held, expired or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
