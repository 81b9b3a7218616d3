package ratelimit

import (
	"context"
	"sync"
	"time"
)

// defaultCleanupInterval is how often idle buckets are evicted.
const defaultCleanupInterval = 5 * time.Minute

// MemoryStore keeps one token bucket per user in process memory.
// Suitable for single-instance deployments. A background loop evicts
// buckets that have refilled back to capacity, so the map does not grow
// with every user id ever seen.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*TokenBucket

	cleanupInterval time.Duration
	stopCleanup     chan struct{}
}

// NewMemoryStore creates an in-memory store with the default cleanup
// interval.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithCleanup(defaultCleanupInterval)
}

// NewMemoryStoreWithCleanup creates an in-memory store that evicts idle
// buckets every cleanupInterval. A non-positive interval disables
// eviction.
func NewMemoryStoreWithCleanup(cleanupInterval time.Duration) *MemoryStore {
	s := &MemoryStore{
		buckets:         make(map[string]*TokenBucket),
		cleanupInterval: cleanupInterval,
		stopCleanup:     make(chan struct{}),
	}

	if cleanupInterval > 0 {
		go s.cleanupLoop()
	}

	return s
}

// Allow checks the user's bucket, creating it full on first sight.
func (s *MemoryStore) Allow(_ context.Context, userID string, capacity, refillRate float64) (bool, float64, error) {
	s.mu.Lock()
	bucket, ok := s.buckets[userID]
	if !ok {
		bucket = NewTokenBucket(capacity, refillRate)
		s.buckets[userID] = bucket
	}
	s.mu.Unlock()

	allowed := bucket.Allow()
	return allowed, bucket.Remaining(), nil
}

// Close stops the background cleanup loop.
func (s *MemoryStore) Close() error {
	close(s.stopCleanup)
	return nil
}

func (s *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCleanup:
			return
		}
	}
}

// cleanup evicts buckets that have refilled to near capacity: a user
// idle long enough to refill fully gets an identical fresh bucket on
// their next request, so dropping the entry is observationally safe.
// The 95% threshold tolerates refill rounding.
func (s *MemoryStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for userID, bucket := range s.buckets {
		if bucket.Remaining() >= bucket.capacity*0.95 {
			delete(s.buckets, userID)
		}
	}
}

// size returns the number of live buckets.
func (s *MemoryStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}
