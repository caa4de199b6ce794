package snapshot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ebriony/castlight/internal/cache"
	"github.com/ebriony/castlight/internal/telemetry"
)

const (
	// DefaultTTL bounds how long a snapshot survives without any
	// invalidation. Snapshots are usually dropped explicitly well before it.
	DefaultTTL = 24 * time.Hour
	// lockTTL bounds a patch read-modify-write cycle; a crashed holder
	// releases the lock through expiry.
	lockTTL = 3 * time.Second
)

// Key returns the cache key for one (event, run) pair.
func Key(eventSlug string, runNumber int) string {
	return fmt.Sprintf("event_factions_characters_%s_%d", eventSlug, runNumber)
}

// Cache owns snapshot cache read/write operations over a cache.Store.
//
// Store failures are swallowed: a failed read behaves like a miss, a failed
// write leaves the previous state for the next invalidation to resolve. The
// cache layer never fails a request.
type Cache struct {
	store        cache.Store
	ttl          time.Duration
	emitter      *telemetry.Emitter
	lockFallback sync.Once
}

// NewCache constructs snapshot cache helpers for a given cache store. A
// non-positive ttl falls back to DefaultTTL.
func NewCache(store cache.Store, ttl time.Duration, emitter *telemetry.Emitter) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{store: store, ttl: ttl, emitter: emitter}
}

func normalizeContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// Lookup returns the cached snapshot for the pair, if present.
func (c *Cache) Lookup(ctx context.Context, eventSlug string, runNumber int) (*Snapshot, bool) {
	if c == nil || c.store == nil {
		return nil, false
	}
	ctx = normalizeContext(ctx)

	key := Key(eventSlug, runNumber)
	payload, found, err := c.store.Get(ctx, key)
	if err != nil || !found {
		return nil, false
	}
	snap, err := Decode(payload)
	if err != nil {
		_ = c.store.Delete(ctx, key)
		return nil, false
	}
	return snap, true
}

// Put stores the snapshot for the pair.
func (c *Cache) Put(ctx context.Context, eventSlug string, runNumber int, snap *Snapshot) {
	if c == nil || c.store == nil || snap == nil {
		return
	}
	payload, err := snap.Encode()
	if err != nil {
		return
	}
	_ = c.store.Set(normalizeContext(ctx), Key(eventSlug, runNumber), payload, c.ttl)
}

// Drop removes the snapshot for the pair.
func (c *Cache) Drop(ctx context.Context, eventSlug string, runNumber int) {
	if c == nil || c.store == nil {
		return
	}
	_ = c.store.Delete(normalizeContext(ctx), Key(eventSlug, runNumber))
}

// withLock runs fn under the backend's named lock for the pair's key when
// the backend supports locking. Backends without a lock primitive fall back
// to the unlocked read-modify-write path; the fallback is reported once at
// low severity.
func (c *Cache) withLock(ctx context.Context, eventSlug string, runNumber int, fn func()) {
	if c == nil {
		return
	}
	ctx = normalizeContext(ctx)

	locker, ok := c.store.(cache.Locker)
	if !ok {
		c.lockFallback.Do(func() {
			_ = c.emitter.Emit(ctx, telemetry.Event{
				Component: "snapshot",
				Action:    "lock_fallback",
				Detail:    "cache backend has no lock primitive, patching unlocked",
				Severity:  telemetry.SeverityInfo,
			})
		})
		fn()
		return
	}

	name := "lock:" + Key(eventSlug, runNumber)
	deadline := time.Now().Add(lockTTL)
	for {
		release, acquired := locker.TryLock(ctx, name, lockTTL)
		if acquired {
			defer release()
			fn()
			return
		}
		if time.Now().After(deadline) || ctx.Err() != nil {
			// Best effort only: proceed unlocked rather than fail the patch.
			fn()
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
}
