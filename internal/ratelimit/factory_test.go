package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotlinehq/hotline/internal/ratelimit/store"
)

func TestNewLimiter(t *testing.T) {
	s := store.NewMemoryStore()
	defer func() { _ = s.Close() }()

	tests := []struct {
		name    string
		cfg     *FactoryConfig
		want    interface{}
		wantErr bool
	}{
		{
			name: "sliding window",
			cfg:  &FactoryConfig{Algorithm: AlgorithmSlidingWindow, Requests: 10, Window: time.Minute},
			want: &SlidingWindowLimiter{},
		},
		{
			name: "default algorithm",
			cfg:  &FactoryConfig{Requests: 10, Window: time.Minute},
			want: &SlidingWindowLimiter{},
		},
		{
			name: "fixed window",
			cfg:  &FactoryConfig{Algorithm: AlgorithmFixedWindow, Requests: 10, Window: time.Minute, Store: s},
			want: &FixedWindowLimiter{},
		},
		{
			name:    "fixed window without store",
			cfg:     &FactoryConfig{Algorithm: AlgorithmFixedWindow, Requests: 10, Window: time.Minute},
			wantErr: true,
		},
		{
			name: "token bucket",
			cfg:  &FactoryConfig{Algorithm: AlgorithmTokenBucket, Requests: 10, Window: time.Minute, Burst: 5},
			want: &TokenBucketLimiter{},
		},
		{
			name:    "unknown algorithm",
			cfg:     &FactoryConfig{Algorithm: "leaky_bucket", Requests: 10, Window: time.Minute},
			wantErr: true,
		},
		{
			name:    "zero requests",
			cfg:     &FactoryConfig{Algorithm: AlgorithmSlidingWindow, Window: time.Minute},
			wantErr: true,
		},
		{
			name:    "zero window",
			cfg:     &FactoryConfig{Algorithm: AlgorithmSlidingWindow, Requests: 10},
			wantErr: true,
		},
		{
			name:    "nil config",
			cfg:     nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter, err := NewLimiter(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, limiter)
		})
	}
}
