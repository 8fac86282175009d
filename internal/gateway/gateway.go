package gateway

import (
	"net/http"

	"github.com/hotlinehq/hotline/internal/config"
	"github.com/hotlinehq/hotline/internal/middleware"
	"github.com/hotlinehq/hotline/internal/observability"
	"github.com/hotlinehq/hotline/internal/ratelimit"
)

// Options bundles the dependencies for building the report pipeline.
type Options struct {
	Config  *config.Config
	Creator IssueCreator
	Limiter ratelimit.Limiter
	Logger  observability.Logger
	Metrics *observability.Metrics
}

// BuildHandler assembles the full report pipeline: recovery, request ID,
// logging, method check, body limit, authentication, rate limiting, then
// the report handler. The order is the contract: a non-POST never consumes
// auth or rate limit budget, and an unauthenticated request is never
// counted against its sender's rate limit.
func BuildHandler(opts Options) http.Handler {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = observability.NopLogger()
	}

	reportHandler := NewHandler(HandlerOptions{
		Creator:    opts.Creator,
		Configured: trackerConfigured(cfg.Tracker),
		Logger:     logger,
		Metrics:    opts.Metrics,
	})

	chain := []func(http.Handler) http.Handler{
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logging(logger, opts.Metrics),
		middleware.AllowMethod(http.MethodPost),
		middleware.BodyLimit(cfg.Server.MaxBodyBytes, logger),
	}

	if cfg.Auth.Enabled() {
		chain = append(chain, middleware.BearerAuth(cfg.Auth.Token, logger))
	}

	if cfg.RateLimit.Enabled && opts.Limiter != nil {
		chain = append(chain, middleware.RateLimit(middleware.RateLimitOptions{
			Limiter:               opts.Limiter,
			Identity:              ratelimit.ClientIdentity(cfg.RateLimit.TrustProxyHeaders),
			RejectUnknownIdentity: cfg.RateLimit.IdentityPolicy == config.IdentityPolicyReject,
			Logger:                logger,
			Metrics:               opts.Metrics,
		}))
	}

	var handler http.Handler = reportHandler
	for i := len(chain) - 1; i >= 0; i-- {
		handler = chain[i](handler)
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.Server.Path, handler)
	return mux
}

// trackerConfigured reports whether the upstream configuration is complete
// enough to create issues.
func trackerConfigured(cfg config.TrackerConfig) bool {
	return cfg.Credential != "" && cfg.TeamID != "" && cfg.ProjectID != ""
}
