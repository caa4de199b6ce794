// Package cache defines the key-value store contract used for snapshot
// payloads.
//
// The store is shared and process-external in production deployments; per-key
// Get/Set/Delete are assumed linearizable. Races between concurrent patches
// and invalidations resolve last-write-wins at the store level.
package cache

import (
	"context"
	"time"
)

// Store is a key-value cache with per-entry TTL.
type Store interface {
	Close() error
	// Get returns the payload stored under key. Expired or absent entries
	// report found=false.
	Get(ctx context.Context, key string) (payload []byte, found bool, err error)
	// Set stores payload under key for ttl. A non-positive ttl keeps the
	// entry until deleted.
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	// Delete removes the entry under key. Deleting an absent key is not an
	// error.
	Delete(ctx context.Context, key string) error
}

// Locker is an optional short-lived named lock a Store may offer.
//
// Backends without atomic partial updates on structured entries should serve
// read-modify-write cycles under such a lock. Callers must treat locking as
// best-effort: when the backend does not implement Locker, they fall back to
// the unlocked path.
type Locker interface {
	// TryLock acquires the named lock, returning its release function. When
	// the lock is already held, ok is false and release is nil. The lock
	// expires on its own after ttl.
	TryLock(ctx context.Context, name string, ttl time.Duration) (release func(), ok bool)
}
