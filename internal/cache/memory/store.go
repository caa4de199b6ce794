// Package memory provides an in-process cache store with TTL expiry and
// named locks.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ebriony/castlight/internal/cache"
)

type entry struct {
	payload   []byte
	expiresAt time.Time
}

type lockHold struct {
	expiresAt time.Time
}

// Store keeps cache entries in process memory. It supports the optional
// cache.Locker contract, so patch cycles run mutually excluded.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	locks   map[string]lockHold
	clock   func() time.Time
}

var (
	_ cache.Store  = (*Store)(nil)
	_ cache.Locker = (*Store)(nil)
)

// New creates an empty in-memory cache store.
func New() *Store {
	return &Store{
		entries: make(map[string]entry),
		locks:   make(map[string]lockHold),
		clock:   time.Now,
	}
}

// Close releases nothing; it satisfies the Store contract.
func (s *Store) Close() error { return nil }

// Get returns the payload stored under key, dropping expired entries.
func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && s.clock().After(e.expiresAt) {
		delete(s.entries, key)
		return nil, false, nil
	}
	payload := make([]byte, len(e.payload))
	copy(payload, e.payload)
	return payload, true, nil
}

// Set stores payload under key for ttl.
func (s *Store) Set(_ context.Context, key string, payload []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]byte, len(payload))
	copy(stored, payload)
	e := entry{payload: stored}
	if ttl > 0 {
		e.expiresAt = s.clock().Add(ttl)
	}
	s.entries[key] = e
	return nil
}

// Delete removes the entry under key.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// TryLock acquires the named lock until release is called or ttl elapses.
func (s *Store) TryLock(_ context.Context, name string, ttl time.Duration) (func(), bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()
	if hold, ok := s.locks[name]; ok && now.Before(hold.expiresAt) {
		return nil, false
	}
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	s.locks[name] = lockHold{expiresAt: now.Add(ttl)}
	release := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.locks, name)
	}
	return release, true
}
