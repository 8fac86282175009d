// Package main is the entry point for the report gateway.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hotlinehq/hotline/internal/config"
	"github.com/hotlinehq/hotline/internal/gateway"
	"github.com/hotlinehq/hotline/internal/health"
	"github.com/hotlinehq/hotline/internal/observability"
	"github.com/hotlinehq/hotline/internal/ratelimit"
	"github.com/hotlinehq/hotline/internal/ratelimit/store"
	"github.com/hotlinehq/hotline/internal/secrets"
	"github.com/hotlinehq/hotline/internal/tracker"
)

// Version information (set at build time).
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// cliFlags holds command line flags.
type cliFlags struct {
	configPath  string
	logLevel    string
	logFormat   string
	showVersion bool
}

func main() {
	flags := parseFlags()

	if flags.showVersion {
		printVersion()
		return
	}

	logger := initLogger(flags)
	defer func() { _ = logger.Sync() }()

	cfg := loadConfig(flags.configPath, logger)
	app := initApplication(cfg, logger)

	run(app, logger)
}

// parseFlags parses command line flags.
func parseFlags() cliFlags {
	configPath := flag.String("config", getEnvOrDefault("HOTLINE_CONFIG_PATH", "configs/gateway.yaml"),
		"Path to configuration file")
	logLevel := flag.String("log-level", getEnvOrDefault("HOTLINE_LOG_LEVEL", "info"),
		"Log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", getEnvOrDefault("HOTLINE_LOG_FORMAT", "json"),
		"Log format (json, console)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	return cliFlags{
		configPath:  *configPath,
		logLevel:    *logLevel,
		logFormat:   *logFormat,
		showVersion: *showVersion,
	}
}

// printVersion prints version information and exits.
func printVersion() {
	fmt.Printf("hotline-gateway version %s\n", version)
	fmt.Printf("  Build time: %s\n", buildTime)
	fmt.Printf("  Git commit: %s\n", gitCommit)
}

// getEnvOrDefault returns an environment variable value or a default.
func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// initLogger initializes the logger.
func initLogger(flags cliFlags) observability.Logger {
	logger, err := observability.NewLogger(observability.LogConfig{
		Level:  flags.logLevel,
		Format: flags.logFormat,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	observability.SetGlobalLogger(logger)
	return logger
}

// loadConfig loads the configuration, resolves secret references, and
// validates the result.
func loadConfig(configPath string, logger observability.Logger) *config.Config {
	logger.Info("starting report gateway",
		observability.String("version", version),
		observability.String("config", configPath),
	)

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", observability.Error(err))
	}

	resolveSecrets(cfg, logger)

	if err := config.Validate(cfg); err != nil {
		logger.Fatal("invalid configuration", observability.Error(err))
	}

	logger.Info("configuration loaded",
		observability.String("listen", cfg.Server.Listen),
		observability.String("path", cfg.Server.Path),
		observability.String("tracker_endpoint", cfg.Tracker.Endpoint),
		observability.Bool("auth_enabled", cfg.Auth.Enabled()),
		observability.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		observability.String("rate_limit_algorithm", cfg.RateLimit.Algorithm),
	)

	return cfg
}

// resolveSecrets fills in configuration values that reference the secrets
// provider. Resolution happens once at startup; the provider is closed
// afterwards.
func resolveSecrets(cfg *config.Config, logger observability.Logger) {
	if cfg.Tracker.CredentialRef == "" && cfg.Auth.TokenRef == "" {
		return
	}

	provider, err := secrets.NewProvider(cfg.Secrets)
	if err != nil {
		logger.Fatal("failed to create secrets provider", observability.Error(err))
	}
	defer func() { _ = provider.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if cfg.Tracker.CredentialRef != "" {
		credential, err := provider.GetSecret(ctx, cfg.Tracker.CredentialRef)
		if err != nil {
			logger.Fatal("failed to resolve tracker credential",
				observability.String("ref", cfg.Tracker.CredentialRef),
				observability.Error(err),
			)
		}
		cfg.Tracker.Credential = credential
	}

	if cfg.Auth.TokenRef != "" {
		token, err := provider.GetSecret(ctx, cfg.Auth.TokenRef)
		if err != nil {
			logger.Fatal("failed to resolve auth token",
				observability.String("ref", cfg.Auth.TokenRef),
				observability.Error(err),
			)
		}
		cfg.Auth.Token = &token
	}
}

// application holds all application components.
type application struct {
	config        *config.Config
	listener      *gateway.Listener
	adminListener *gateway.Listener
	limiter       ratelimit.Limiter
	limitStore    store.Store
	tracer        *observability.Tracer
	cleanupCancel context.CancelFunc
}

// initApplication initializes all application components.
func initApplication(cfg *config.Config, logger observability.Logger) *application {
	metrics := observability.NewMetrics("hotline")
	metrics.SetBuildInfo(version)

	tracer := initTracer(cfg, logger)
	healthChecker := health.NewChecker(version)

	limiter, limitStore, cleanupCancel := initLimiter(cfg, healthChecker, logger)

	upstream := tracker.NewClient(tracker.Config{
		Endpoint:   cfg.Tracker.Endpoint,
		Credential: cfg.Tracker.Credential,
		TeamID:     cfg.Tracker.TeamID,
		ProjectID:  cfg.Tracker.ProjectID,
		Timeout:    time.Duration(cfg.Tracker.Timeout),
	},
		tracker.WithLogger(logger),
		tracker.WithTracer(tracer),
	)

	handler := gateway.BuildHandler(gateway.Options{
		Config:  cfg,
		Creator: upstream,
		Limiter: limiter,
		Logger:  logger,
		Metrics: metrics,
	})

	listener := gateway.NewListener("report", cfg.Server, handler,
		gateway.WithListenerLogger(logger))

	adminListener := gateway.NewListener("admin",
		config.ServerConfig{
			Listen:       cfg.Admin.Listen,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
		buildAdminHandler(cfg, metrics, healthChecker),
		gateway.WithListenerLogger(logger))

	return &application{
		config:        cfg,
		listener:      listener,
		adminListener: adminListener,
		limiter:       limiter,
		limitStore:    limitStore,
		tracer:        tracer,
		cleanupCancel: cleanupCancel,
	}
}

// initTracer initializes the tracer.
func initTracer(cfg *config.Config, logger observability.Logger) *observability.Tracer {
	tracer, err := observability.NewTracer(observability.TracerConfig{
		ServiceName:    "hotline-gateway",
		ServiceVersion: version,
		OTLPEndpoint:   cfg.Tracing.OTLPEndpoint,
		SamplingRate:   cfg.Tracing.SamplingRate,
		Insecure:       cfg.Tracing.Insecure,
		Enabled:        cfg.Tracing.Enabled,
	})
	if err != nil {
		logger.Fatal("failed to initialize tracer", observability.Error(err))
	}
	return tracer
}

// initLimiter builds the configured rate limiter and, for the fixed window
// algorithm, its counter store. A Redis-backed store registers a readiness
// check.
func initLimiter(
	cfg *config.Config,
	healthChecker *health.Checker,
	logger observability.Logger,
) (ratelimit.Limiter, store.Store, context.CancelFunc) {
	if !cfg.RateLimit.Enabled {
		return nil, nil, nil
	}

	var limitStore store.Store
	if cfg.RateLimit.Algorithm == config.AlgorithmFixedWindow {
		switch cfg.RateLimit.Store.Type {
		case config.StoreTypeRedis:
			redisStore, err := store.NewRedisStore(&store.RedisConfig{
				Address:      cfg.RateLimit.Store.Redis.Address,
				Password:     cfg.RateLimit.Store.Redis.Password,
				DB:           cfg.RateLimit.Store.Redis.DB,
				Prefix:       cfg.RateLimit.Store.Redis.Prefix,
				DialTimeout:  time.Duration(cfg.RateLimit.Store.Redis.DialTimeout),
				ReadTimeout:  time.Duration(cfg.RateLimit.Store.Redis.ReadTimeout),
				WriteTimeout: time.Duration(cfg.RateLimit.Store.Redis.WriteTimeout),
			})
			if err != nil {
				logger.Fatal("failed to connect rate limit store", observability.Error(err))
			}
			healthChecker.RegisterCheck("ratelimit_store", redisStore.Ping)
			limitStore = redisStore

		default:
			limitStore = store.NewMemoryStore()
		}
	}

	limiter, err := ratelimit.NewLimiter(&ratelimit.FactoryConfig{
		Algorithm: cfg.RateLimit.Algorithm,
		Requests:  cfg.RateLimit.MaxRequests,
		Window:    time.Duration(cfg.RateLimit.Window),
		Burst:     cfg.RateLimit.Burst,
		Store:     limitStore,
	})
	if err != nil {
		logger.Fatal("failed to create rate limiter", observability.Error(err))
	}

	var cancel context.CancelFunc
	if sw, ok := limiter.(*ratelimit.SlidingWindowLimiter); ok {
		var cleanupCtx context.Context
		cleanupCtx, cancel = context.WithCancel(context.Background())
		sw.StartCleanup(cleanupCtx, time.Minute)
	}

	return limiter, limitStore, cancel
}

// buildAdminHandler assembles the admin endpoint: health probes and
// Prometheus metrics.
func buildAdminHandler(
	cfg *config.Config,
	metrics *observability.Metrics,
	healthChecker *health.Checker,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	healthChecker.RegisterRoutes(router)
	router.GET(cfg.Admin.MetricsPath, gin.WrapH(metrics.Handler()))

	return router
}

// run starts the listeners and blocks until a shutdown signal arrives.
func run(app *application, logger observability.Logger) {
	ctx := context.Background()

	if err := app.listener.Start(ctx); err != nil {
		logger.Fatal("failed to start report listener", observability.Error(err))
	}
	if err := app.adminListener.Start(ctx); err != nil {
		logger.Fatal("failed to start admin listener", observability.Error(err))
	}

	waitForShutdown(app, logger)
}

// waitForShutdown waits for a shutdown signal and stops everything
// gracefully.
func waitForShutdown(app *application, logger observability.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("received shutdown signal", observability.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(app.config.Server.ShutdownTimeout),
	)
	defer cancel()

	if err := app.listener.Stop(shutdownCtx); err != nil {
		logger.Error("failed to stop report listener", observability.Error(err))
	}
	if err := app.adminListener.Stop(shutdownCtx); err != nil {
		logger.Error("failed to stop admin listener", observability.Error(err))
	}

	if app.cleanupCancel != nil {
		app.cleanupCancel()
	}
	if app.limitStore != nil {
		if err := app.limitStore.Close(); err != nil {
			logger.Error("failed to close rate limit store", observability.Error(err))
		}
	}
	if err := app.tracer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown tracer", observability.Error(err))
	}

	logger.Info("shutdown complete")
}
