package memory

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestGetAbsentKey(t *testing.T) {
	store := New()
	_, found, err := store.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found {
		t.Fatal("expected absent key")
	}
}

func TestSetGetDelete(t *testing.T) {
	store := New()
	ctx := context.Background()

	if err := store.Set(ctx, "k", []byte("payload"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	payload, found, err := store.Get(ctx, "k")
	if err != nil || !found {
		t.Fatalf("get: found=%v err=%v", found, err)
	}
	if !bytes.Equal(payload, []byte("payload")) {
		t.Fatalf("unexpected payload %q", payload)
	}

	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, found, _ := store.Get(ctx, "k"); found {
		t.Fatal("expected key deleted")
	}
}

func TestExpiredEntriesAreDropped(t *testing.T) {
	store := New()
	ctx := context.Background()

	now := time.Now()
	store.clock = func() time.Time { return now }
	if err := store.Set(ctx, "k", []byte("payload"), time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}

	now = now.Add(2 * time.Second)
	if _, found, _ := store.Get(ctx, "k"); found {
		t.Fatal("expected expired entry to be dropped")
	}
}

func TestTryLockExcludesAndExpires(t *testing.T) {
	store := New()
	ctx := context.Background()

	now := time.Now()
	store.clock = func() time.Time { return now }

	release, ok := store.TryLock(ctx, "lock:k", 3*time.Second)
	if !ok {
		t.Fatal("expected lock acquired")
	}
	if _, ok := store.TryLock(ctx, "lock:k", 3*time.Second); ok {
		t.Fatal("expected lock held")
	}
	release()
	release2, ok := store.TryLock(ctx, "lock:k", 3*time.Second)
	if !ok {
		t.Fatal("expected lock re-acquired after release")
	}

	// A crashed holder never releases; the TTL must clear the lock.
	_ = release2
	now = now.Add(4 * time.Second)
	if _, ok := store.TryLock(ctx, "lock:k", 3*time.Second); !ok {
		t.Fatal("expected lock expired")
	}
}
