package middleware

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/hotlinehq/hotline/internal/observability"
	"github.com/hotlinehq/hotline/internal/ratelimit"
)

// RateLimitOptions configures the rate limit middleware.
type RateLimitOptions struct {
	// Limiter performs admission checks. Required.
	Limiter ratelimit.Limiter

	// Identity extracts the client identity from the request. Required.
	Identity ratelimit.IdentityFunc

	// RejectUnknownIdentity rejects requests whose identity cannot be
	// determined. The default admits them and logs a warning.
	RejectUnknownIdentity bool

	// Logger for admission decisions. Defaults to a nop logger.
	Logger observability.Logger

	// Metrics records admission decisions. May be nil.
	Metrics *observability.Metrics
}

// RateLimit returns a middleware that applies per-identity admission
// control. Limiter failures (e.g. an unreachable shared store) fail open:
// the request is admitted and a warning is logged — losing rate limiting
// must not take issue reporting down with it.
func RateLimit(opts RateLimitOptions) func(http.Handler) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = observability.NopLogger()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := opts.Identity(r)

			if identity == "" {
				if opts.RejectUnknownIdentity {
					logger.Warn("rejected request with unknown client identity")
					recordDecision(opts.Metrics, "unknown_identity")
					writeRateLimited(w, 0)
					return
				}

				logger.Warn("admitting request with unknown client identity")
				recordDecision(opts.Metrics, "unknown_identity")
				next.ServeHTTP(w, r)
				return
			}

			result, err := opts.Limiter.Allow(r.Context(), identity)
			if err != nil {
				logger.Warn("rate limiter unavailable, admitting request",
					observability.String("identity", identity),
					observability.Error(err),
				)
				recordDecision(opts.Metrics, "error")
				next.ServeHTTP(w, r)
				return
			}

			if !result.Allowed {
				logger.Warn("rate limit exceeded",
					observability.String("identity", identity),
					observability.Int("limit", result.Limit),
				)
				recordDecision(opts.Metrics, "denied")

				w.Header().Set(HeaderXRateLimitLimit, strconv.Itoa(result.Limit))
				w.Header().Set(HeaderXRateLimitRemaining, "0")
				writeRateLimited(w, retryAfterSeconds(result))
				return
			}

			recordDecision(opts.Metrics, "allowed")
			w.Header().Set(HeaderXRateLimitLimit, strconv.Itoa(result.Limit))
			w.Header().Set(HeaderXRateLimitRemaining, strconv.Itoa(result.Remaining))

			next.ServeHTTP(w, r)
		})
	}
}

// retryAfterSeconds converts a denial's retry hint to whole seconds,
// rounding up so clients never retry early.
func retryAfterSeconds(result *ratelimit.Result) int {
	if result.RetryAfter <= 0 {
		return 1
	}
	secs := int((result.RetryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

func writeRateLimited(w http.ResponseWriter, retryAfter int) {
	if retryAfter > 0 {
		w.Header().Set(HeaderRetryAfter, strconv.Itoa(retryAfter))
	}
	w.Header().Set(HeaderContentType, ContentTypeJSON)
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = io.WriteString(w, ErrBodyRateLimited)
}

func recordDecision(metrics *observability.Metrics, decision string) {
	if metrics != nil {
		metrics.RecordRateLimit(decision)
	}
}
