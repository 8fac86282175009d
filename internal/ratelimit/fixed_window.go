package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/hotlinehq/hotline/internal/ratelimit/store"
)

// FixedWindowLimiter implements fixed window rate limiting over a counter
// store with per-key expiry. With a Redis-backed store the window state is
// shared across gateway instances.
//
// The read-modify-write against the store is not atomic across the check
// and the increment: concurrent requests for the same identity inside one
// window can each observe a count below the limit and all be admitted.
// This bounded over-admission is an accepted property of the strategy.
type FixedWindowLimiter struct {
	store  store.Store
	limit  int
	window time.Duration
}

// NewFixedWindowLimiter creates a new fixed window rate limiter.
func NewFixedWindowLimiter(s store.Store, limit int, window time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		store:  s,
		limit:  limit,
		window: window,
	}
}

// windowKey returns the store key for the identity's current window.
func (l *FixedWindowLimiter) windowKey(identity string, now time.Time) string {
	windowStart := now.UnixNano() / l.window.Nanoseconds()
	return fmt.Sprintf("%s:fw:%d", identity, windowStart)
}

// Allow implements Limiter. A missing or expired key counts as zero.
func (l *FixedWindowLimiter) Allow(ctx context.Context, identity string) (*Result, error) {
	now := time.Now()
	key := l.windowKey(identity, now)

	count, err := l.store.Get(ctx, key)
	if err != nil && !store.IsKeyNotFound(err) {
		return nil, err
	}

	windowEnd := time.Unix(0, (now.UnixNano()/l.window.Nanoseconds()+1)*l.window.Nanoseconds())
	resetAfter := windowEnd.Sub(now)

	if int(count) >= l.limit {
		return &Result{
			Allowed:    false,
			Limit:      l.limit,
			Remaining:  0,
			RetryAfter: resetAfter,
		}, nil
	}

	// TTL slightly past the window end so a counter created late in the
	// window still covers the whole of it.
	newCount, err := l.store.IncrementWithExpiry(ctx, key, 1, l.window+time.Second)
	if err != nil {
		return nil, err
	}

	remaining := l.limit - int(newCount)
	if remaining < 0 {
		remaining = 0
	}

	return &Result{
		Allowed:   true,
		Limit:     l.limit,
		Remaining: remaining,
	}, nil
}

// Reset implements Limiter.
func (l *FixedWindowLimiter) Reset(ctx context.Context, identity string) error {
	return l.store.Delete(ctx, l.windowKey(identity, time.Now()))
}
