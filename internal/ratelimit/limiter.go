package ratelimit

import "context"

// Store is the storage backend for per-user buckets. Implementations can
// be in-memory (single instance) or Redis-backed (clustered deployments).
type Store interface {
	// Allow checks whether a request from the user should be allowed,
	// returning the remaining token count.
	Allow(ctx context.Context, userID string, capacity, refillRate float64) (allowed bool, remaining float64, err error)

	// Close releases resources.
	Close() error
}

// Limiter applies one rate-limit policy across users via a pluggable Store.
type Limiter struct {
	store      Store
	capacity   float64
	refillRate float64
}

// NewLimiter creates a limiter. requestsPerMinute is the sustained rate;
// burst is the bucket capacity.
func NewLimiter(store Store, requestsPerMinute, burst float64) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		store:      store,
		capacity:   burst,
		refillRate: requestsPerMinute / 60.0,
	}
}

// Allow checks whether a request from the user should be allowed.
// Store failures fail open: an unreachable backend must not take the
// chat endpoint down with it.
func (l *Limiter) Allow(ctx context.Context, userID string) (bool, float64) {
	allowed, remaining, err := l.store.Allow(ctx, userID, l.capacity, l.refillRate)
	if err != nil {
		return true, l.capacity
	}
	return allowed, remaining
}

// Close releases the underlying store.
func (l *Limiter) Close() error {
	return l.store.Close()
}
