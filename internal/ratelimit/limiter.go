// Package ratelimit provides admission control for the report gateway.
// It supports sliding window, fixed window, and token bucket algorithms
// behind a single interface selected at configuration time.
package ratelimit

import (
	"context"
	"time"
)

// Limiter decides whether a request from a given client identity may
// proceed.
type Limiter interface {
	// Allow checks if a single request is allowed for the given identity.
	Allow(ctx context.Context, identity string) (*Result, error)

	// Reset clears the rate limit state for the given identity.
	Reset(ctx context.Context, identity string) error
}

// Result represents the outcome of an admission check.
type Result struct {
	// Allowed indicates whether the request is admitted.
	Allowed bool

	// Limit is the maximum number of requests allowed in the window.
	Limit int

	// Remaining is the number of requests remaining in the current window.
	Remaining int

	// RetryAfter is the duration to wait before retrying (when denied).
	RetryAfter time.Duration
}

// NoopLimiter admits every request. It is used when rate limiting is
// disabled so the gateway fails open rather than closed.
type NoopLimiter struct{}

// NewNoopLimiter creates a new noop limiter.
func NewNoopLimiter() *NoopLimiter {
	return &NoopLimiter{}
}

// Allow implements Limiter.
func (l *NoopLimiter) Allow(ctx context.Context, identity string) (*Result, error) {
	return &Result{Allowed: true}, nil
}

// Reset implements Limiter.
func (l *NoopLimiter) Reset(ctx context.Context, identity string) error {
	return nil
}
