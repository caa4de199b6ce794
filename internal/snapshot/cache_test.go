package snapshot

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ebriony/castlight/internal/cache"
	cachemem "github.com/ebriony/castlight/internal/cache/memory"
	"github.com/ebriony/castlight/internal/telemetry"
)

func TestKey(t *testing.T) {
	if got := Key("midnight", 3); got != "event_factions_characters_midnight_3" {
		t.Fatalf("key = %q", got)
	}
}

func TestCacheRoundTrip(t *testing.T) {
	c := NewCache(cachemem.New(), 0, nil)
	ctx := context.Background()

	if _, ok := c.Lookup(ctx, "midnight", 1); ok {
		t.Fatal("empty cache must miss")
	}

	snap := NewSnapshot()
	snap.Chars[1] = &CharacterView{ID: 101, Number: 1, Name: "Aldric", Factions: []int{0}}
	snap.CharMapping[1] = 101
	snap.MaxChNumber = 1
	c.Put(ctx, "midnight", 1, snap)

	got, ok := c.Lookup(ctx, "midnight", 1)
	if !ok {
		t.Fatal("lookup after put must hit")
	}
	if got.Chars[1].Name != "Aldric" || got.CharMapping[1] != 101 {
		t.Fatalf("decoded snapshot = %+v, want the stored values", got.Chars[1])
	}

	c.Drop(ctx, "midnight", 1)
	if _, ok := c.Lookup(ctx, "midnight", 1); ok {
		t.Fatal("lookup after drop must miss")
	}
}

func TestLookupDropsUndecodablePayload(t *testing.T) {
	store := cachemem.New()
	c := NewCache(store, 0, nil)
	ctx := context.Background()

	key := Key("midnight", 1)
	if err := store.Set(ctx, key, []byte("{broken"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	if _, ok := c.Lookup(ctx, "midnight", 1); ok {
		t.Fatal("undecodable payload must behave like a miss")
	}
	if _, found, err := store.Get(ctx, key); err != nil || found {
		t.Fatalf("get after bad decode = %v/%v, want the key deleted", found, err)
	}
}

// plainStore hides the memory store's lock primitive, exercising the
// unlocked patch path.
type plainStore struct {
	inner *cachemem.Store
}

func (p plainStore) Close() error { return p.inner.Close() }
func (p plainStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return p.inner.Get(ctx, key)
}
func (p plainStore) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	return p.inner.Set(ctx, key, payload, ttl)
}
func (p plainStore) Delete(ctx context.Context, key string) error {
	return p.inner.Delete(ctx, key)
}

type recordSink struct {
	mu     sync.Mutex
	events []telemetry.Event
}

func (r *recordSink) Record(_ context.Context, evt telemetry.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

func TestWithLockFallsBackWithoutLocker(t *testing.T) {
	sink := &recordSink{}
	c := NewCache(plainStore{inner: cachemem.New()}, 0, telemetry.NewEmitter(sink))
	ctx := context.Background()

	ran := 0
	c.withLock(ctx, "midnight", 1, func() { ran++ })
	c.withLock(ctx, "midnight", 1, func() { ran++ })

	if ran != 2 {
		t.Fatalf("fn ran %d times, want 2", ran)
	}
	// The degraded mode is reported once, not per patch.
	if len(sink.events) != 1 {
		t.Fatalf("telemetry events = %d, want 1", len(sink.events))
	}
	evt := sink.events[0]
	if evt.Action != "lock_fallback" || evt.Severity != telemetry.SeverityInfo {
		t.Fatalf("event = %+v, want a low severity lock_fallback", evt)
	}
}

func TestWithLockAcquiresAndReleases(t *testing.T) {
	store := cachemem.New()
	c := NewCache(store, 0, nil)
	ctx := context.Background()

	name := "lock:" + Key("midnight", 1)
	c.withLock(ctx, "midnight", 1, func() {
		if _, acquired := store.TryLock(ctx, name, time.Second); acquired {
			t.Fatal("lock must be held while fn runs")
		}
	})

	release, acquired := store.TryLock(ctx, name, time.Second)
	if !acquired {
		t.Fatal("lock must be released after fn returns")
	}
	release()
}

func TestNilCacheIsInert(t *testing.T) {
	var c *Cache
	ctx := context.Background()
	if _, ok := c.Lookup(ctx, "midnight", 1); ok {
		t.Fatal("nil cache must miss")
	}
	c.Put(ctx, "midnight", 1, NewSnapshot())
	c.Drop(ctx, "midnight", 1)
	c.withLock(ctx, "midnight", 1, func() { t.Fatal("nil cache must not run fn") })
}

func TestContextSnapshot(t *testing.T) {
	if _, ok := FromContext(context.Background()); ok {
		t.Fatal("bare context must carry no snapshot")
	}
	snap := NewSnapshot()
	ctx := WithSnapshot(context.Background(), snap)
	got, ok := FromContext(ctx)
	if !ok || got != snap {
		t.Fatal("context must return the attached snapshot")
	}
}

var _ cache.Store = plainStore{}
