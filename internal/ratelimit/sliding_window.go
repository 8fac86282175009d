package ratelimit

import (
	"context"
	"sync"
	"time"
)

// SlidingWindowLimiter implements sliding window rate limiting with
// per-identity timestamp sequences held in process memory. Admission is
// exact within a single instance: the prune-check-append sequence runs as
// one atomic unit under the identity's lock. State is not shared across
// instances and resets on restart.
type SlidingWindowLimiter struct {
	limit  int
	window time.Duration

	windows sync.Map
}

// windowState holds the accepted-request timestamps for one identity.
type windowState struct {
	mu       sync.Mutex
	requests []time.Time
}

// NewSlidingWindowLimiter creates a new sliding window rate limiter.
func NewSlidingWindowLimiter(limit int, window time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		limit:  limit,
		window: window,
	}
}

// Allow implements Limiter.
func (l *SlidingWindowLimiter) Allow(ctx context.Context, identity string) (*Result, error) {
	now := time.Now()
	ws := l.getOrCreateWindowState(identity)

	ws.mu.Lock()
	defer ws.mu.Unlock()

	l.prune(ws, now)

	count := len(ws.requests)
	if count >= l.limit {
		return &Result{
			Allowed:    false,
			Limit:      l.limit,
			Remaining:  0,
			RetryAfter: l.retryAfter(ws, now),
		}, nil
	}

	ws.requests = append(ws.requests, now)

	return &Result{
		Allowed:   true,
		Limit:     l.limit,
		Remaining: l.limit - count - 1,
	}, nil
}

// getOrCreateWindowState retrieves or creates the state for an identity.
func (l *SlidingWindowLimiter) getOrCreateWindowState(identity string) *windowState {
	value, _ := l.windows.LoadOrStore(identity, &windowState{})
	return value.(*windowState)
}

// prune removes timestamps older than the trailing window. Caller holds
// the state lock.
func (l *SlidingWindowLimiter) prune(ws *windowState, now time.Time) {
	windowStart := now.Add(-l.window)
	valid := ws.requests[:0]
	for _, t := range ws.requests {
		if t.After(windowStart) {
			valid = append(valid, t)
		}
	}
	ws.requests = valid
}

// retryAfter returns the time until the oldest in-window request slides
// out and an admission becomes possible again. Caller holds the state lock.
func (l *SlidingWindowLimiter) retryAfter(ws *windowState, now time.Time) time.Duration {
	if len(ws.requests) == 0 {
		return 0
	}
	retry := ws.requests[0].Add(l.window).Sub(now)
	if retry < 0 {
		retry = 0
	}
	return retry
}

// Reset implements Limiter.
func (l *SlidingWindowLimiter) Reset(ctx context.Context, identity string) error {
	l.windows.Delete(identity)
	return nil
}

// Cleanup removes identities whose every timestamp has left the window.
func (l *SlidingWindowLimiter) Cleanup() {
	windowStart := time.Now().Add(-l.window)

	l.windows.Range(func(key, value interface{}) bool {
		ws := value.(*windowState)
		ws.mu.Lock()

		stale := true
		for _, t := range ws.requests {
			if t.After(windowStart) {
				stale = false
				break
			}
		}
		if stale {
			l.windows.Delete(key)
		}

		ws.mu.Unlock()
		return true
	})
}

// StartCleanup starts a goroutine that periodically removes stale
// identities until the context is cancelled.
func (l *SlidingWindowLimiter) StartCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.Cleanup()
			}
		}
	}()
}
