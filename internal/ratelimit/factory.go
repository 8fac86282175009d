package ratelimit

import (
	"fmt"
	"time"

	"github.com/hotlinehq/hotline/internal/ratelimit/store"
)

// Rate limiting algorithms.
const (
	AlgorithmSlidingWindow = "sliding_window"
	AlgorithmFixedWindow   = "fixed_window"
	AlgorithmTokenBucket   = "token_bucket"
)

// FactoryConfig holds configuration for creating a rate limiter.
type FactoryConfig struct {
	// Algorithm is the rate limiting algorithm to use.
	Algorithm string

	// Requests is the maximum number of requests allowed in the window.
	Requests int

	// Window is the time window for the rate limit.
	Window time.Duration

	// Burst is the maximum burst size (token bucket only).
	Burst int

	// Store is the counter store (fixed window only). The sliding window
	// and token bucket algorithms keep their state in process memory.
	Store store.Store
}

// NewLimiter creates a rate limiter from the configuration.
func NewLimiter(cfg *FactoryConfig) (Limiter, error) {
	if cfg == nil {
		return nil, fmt.Errorf("rate limiter config is required")
	}
	if cfg.Requests <= 0 {
		return nil, fmt.Errorf("rate limit requests must be > 0, got %d", cfg.Requests)
	}
	if cfg.Window <= 0 {
		return nil, fmt.Errorf("rate limit window must be > 0, got %s", cfg.Window)
	}

	switch cfg.Algorithm {
	case AlgorithmSlidingWindow, "":
		return NewSlidingWindowLimiter(cfg.Requests, cfg.Window), nil

	case AlgorithmFixedWindow:
		if cfg.Store == nil {
			return nil, fmt.Errorf("fixed window rate limiting requires a store")
		}
		return NewFixedWindowLimiter(cfg.Store, cfg.Requests, cfg.Window), nil

	case AlgorithmTokenBucket:
		return NewTokenBucketLimiter(cfg.Requests, cfg.Window, cfg.Burst), nil

	default:
		return nil, fmt.Errorf("unknown rate limit algorithm: %s", cfg.Algorithm)
	}
}
