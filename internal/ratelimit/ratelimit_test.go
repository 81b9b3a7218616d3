package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestTokenBucketBurstAndRefill(t *testing.T) {
	bucket := NewTokenBucket(3, 100) // fast refill to keep the test quick

	for i := 0; i < 3; i++ {
		if !bucket.Allow() {
			t.Fatalf("request %d denied within burst", i)
		}
	}
	if bucket.Allow() {
		t.Fatal("request allowed past capacity")
	}

	time.Sleep(30 * time.Millisecond) // ~3 tokens at 100/s
	if !bucket.Allow() {
		t.Fatal("request denied after refill")
	}
}

func TestTokenBucketNeverExceedsCapacity(t *testing.T) {
	bucket := NewTokenBucket(2, 1000)
	time.Sleep(20 * time.Millisecond)

	if got := bucket.Remaining(); got > 2 {
		t.Fatalf("Remaining = %f, want <= capacity", got)
	}
}

func TestMemoryStoreIsolatesUsers(t *testing.T) {
	store := NewMemoryStore()
	limiter := NewLimiter(store, 60, 1)
	ctx := context.Background()

	if allowed, _ := limiter.Allow(ctx, "alice"); !allowed {
		t.Fatal("alice's first request denied")
	}
	if allowed, _ := limiter.Allow(ctx, "alice"); allowed {
		t.Fatal("alice's second request allowed past burst")
	}
	// Exhausting alice's bucket must not touch bob's.
	if allowed, _ := limiter.Allow(ctx, "bob"); !allowed {
		t.Fatal("bob's first request denied")
	}
}

func TestMemoryStoreEvictsIdleBuckets(t *testing.T) {
	store := NewMemoryStoreWithCleanup(0) // drive cleanup by hand
	defer store.Close()
	ctx := context.Background()

	// Fast refill: both buckets are back at capacity almost immediately.
	store.Allow(ctx, "alice", 2, 1000)
	store.Allow(ctx, "bob", 2, 1000)
	if got := store.size(); got != 2 {
		t.Fatalf("size = %d, want 2", got)
	}

	time.Sleep(20 * time.Millisecond)
	store.cleanup()
	if got := store.size(); got != 0 {
		t.Fatalf("size after cleanup = %d, want 0", got)
	}

	// An evicted user starts over with a full bucket.
	if allowed, _, _ := store.Allow(ctx, "alice", 2, 1000); !allowed {
		t.Fatal("request denied after eviction")
	}
}

func TestMemoryStoreKeepsActiveBuckets(t *testing.T) {
	store := NewMemoryStoreWithCleanup(0)
	defer store.Close()
	ctx := context.Background()

	// Slow refill: alice's bucket stays drained across the cleanup.
	store.Allow(ctx, "alice", 2, 0.001)
	store.cleanup()
	if got := store.size(); got != 1 {
		t.Fatalf("size = %d, want drained bucket retained", got)
	}
}

type failingStore struct{}

func (failingStore) Allow(context.Context, string, float64, float64) (bool, float64, error) {
	return false, 0, context.DeadlineExceeded
}

func (failingStore) Close() error { return nil }

func TestLimiterFailsOpen(t *testing.T) {
	limiter := NewLimiter(failingStore{}, 60, 1)

	if allowed, _ := limiter.Allow(context.Background(), "alice"); !allowed {
		t.Fatal("store failure must not block requests")
	}
}
