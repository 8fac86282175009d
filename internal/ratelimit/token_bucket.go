package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// TokenBucketLimiter implements token bucket rate limiting with one
// x/time/rate limiter per identity, held in process memory. The refill
// rate is derived from the configured requests-per-window; the burst
// bounds how many requests can be admitted back to back.
type TokenBucketLimiter struct {
	rps   rate.Limit
	burst int
	limit int

	mu      sync.Mutex
	buckets map[string]*bucketEntry
}

// bucketEntry holds a limiter and its last access time for cleanup.
type bucketEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewTokenBucketLimiter creates a new token bucket rate limiter admitting
// limit requests per window with the given burst.
func NewTokenBucketLimiter(limit int, window time.Duration, burst int) *TokenBucketLimiter {
	if burst <= 0 {
		burst = limit
	}

	return &TokenBucketLimiter{
		rps:     rate.Limit(float64(limit) / window.Seconds()),
		burst:   burst,
		limit:   limit,
		buckets: make(map[string]*bucketEntry),
	}
}

// Allow implements Limiter.
func (l *TokenBucketLimiter) Allow(ctx context.Context, identity string) (*Result, error) {
	now := time.Now()

	l.mu.Lock()
	entry, ok := l.buckets[identity]
	if !ok {
		entry = &bucketEntry{
			limiter: rate.NewLimiter(l.rps, l.burst),
		}
		l.buckets[identity] = entry
	}
	entry.lastAccess = now
	lim := entry.limiter
	l.mu.Unlock()

	// Allow is safe on the limiter itself without holding our lock.
	if !lim.Allow() {
		res := lim.Reserve()
		retryAfter := res.Delay()
		res.Cancel()

		return &Result{
			Allowed:    false,
			Limit:      l.limit,
			Remaining:  0,
			RetryAfter: retryAfter,
		}, nil
	}

	return &Result{
		Allowed:   true,
		Limit:     l.limit,
		Remaining: int(lim.Tokens()),
	}, nil
}

// Reset implements Limiter.
func (l *TokenBucketLimiter) Reset(ctx context.Context, identity string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, identity)
	return nil
}

// Cleanup removes buckets not accessed within maxAge.
func (l *TokenBucketLimiter) Cleanup(maxAge time.Duration) {
	cutoff := time.Now().Add(-maxAge)

	l.mu.Lock()
	defer l.mu.Unlock()

	for identity, entry := range l.buckets {
		if entry.lastAccess.Before(cutoff) {
			delete(l.buckets, identity)
		}
	}
}
