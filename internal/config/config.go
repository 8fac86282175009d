// Package config provides configuration management for the report gateway.
// Configuration is loaded once at startup from a YAML file with environment
// variable substitution and is immutable afterwards.
package config

import "time"

// Default configuration values.
const (
	// DefaultListenAddr is the default address for the report endpoint.
	DefaultListenAddr = ":8080"

	// DefaultAdminAddr is the default address for health and metrics endpoints.
	DefaultAdminAddr = ":9090"

	// DefaultReportPath is the default path for the report endpoint.
	DefaultReportPath = "/report"

	// DefaultMaxBodyBytes is the default maximum accepted request body size.
	DefaultMaxBodyBytes = 64 * 1024

	// DefaultTrackerEndpoint is the Linear GraphQL API endpoint.
	DefaultTrackerEndpoint = "https://api.linear.app/graphql"

	// DefaultUpstreamTimeout is the default timeout for upstream tracker calls.
	DefaultUpstreamTimeout = 30 * time.Second
)

// Identity policies for requests whose client identity cannot be determined.
const (
	// IdentityPolicyAdmit admits requests with no determinable identity
	// and logs a warning.
	IdentityPolicyAdmit = "admit"

	// IdentityPolicyReject rejects requests with no determinable identity.
	IdentityPolicyReject = "reject"
)

// Config holds all configuration for the report gateway.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Admin     AdminConfig     `yaml:"admin"`
	Logging   LoggingConfig   `yaml:"logging"`
	Tracing   TracingConfig   `yaml:"tracing"`
	Tracker   TrackerConfig   `yaml:"tracker"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`
	Secrets   SecretsConfig   `yaml:"secrets"`
}

// ServerConfig holds the report listener configuration.
type ServerConfig struct {
	Listen          string   `yaml:"listen"`
	Path            string   `yaml:"path"`
	MaxBodyBytes    int64    `yaml:"maxBodyBytes"`
	ReadTimeout     Duration `yaml:"readTimeout"`
	WriteTimeout    Duration `yaml:"writeTimeout"`
	IdleTimeout     Duration `yaml:"idleTimeout"`
	ShutdownTimeout Duration `yaml:"shutdownTimeout"`
}

// AdminConfig holds the admin listener configuration (health, metrics).
type AdminConfig struct {
	Listen      string `yaml:"listen"`
	MetricsPath string `yaml:"metricsPath"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// TracingConfig holds OpenTelemetry tracing configuration.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	OTLPEndpoint string  `yaml:"otlpEndpoint"`
	SamplingRate float64 `yaml:"samplingRate"`
	Insecure     bool    `yaml:"insecure"`
}

// TrackerConfig holds the upstream issue tracker configuration. The
// credential, team, and project are always server-side values; anything a
// client sends is ignored.
type TrackerConfig struct {
	Endpoint string `yaml:"endpoint"`

	// Credential is the tracker API credential. Either set it directly
	// (typically via ${ENV} substitution) or set CredentialRef to resolve
	// it through the configured secrets provider.
	Credential    string `yaml:"credential"`
	CredentialRef string `yaml:"credentialRef"`

	TeamID    string   `yaml:"teamId"`
	ProjectID string   `yaml:"projectId"`
	Timeout   Duration `yaml:"timeout"`
}

// AuthConfig holds the inbound authentication configuration. A nil Token
// means authentication is not configured and all requests are admitted;
// this is distinct from an empty token.
type AuthConfig struct {
	Token    *string `yaml:"token"`
	TokenRef string  `yaml:"tokenRef"`
}

// Enabled reports whether bearer-token authentication is configured.
func (c AuthConfig) Enabled() bool {
	return c.Token != nil || c.TokenRef != ""
}

// Rate limiting algorithms.
const (
	AlgorithmSlidingWindow = "sliding_window"
	AlgorithmFixedWindow   = "fixed_window"
	AlgorithmTokenBucket   = "token_bucket"
)

// Rate limit store types.
const (
	StoreTypeMemory = "memory"
	StoreTypeRedis  = "redis"
)

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	Enabled           bool        `yaml:"enabled"`
	Algorithm         string      `yaml:"algorithm"`
	MaxRequests       int         `yaml:"maxRequests"`
	Window            Duration    `yaml:"window"`
	Burst             int         `yaml:"burst"`
	IdentityPolicy    string      `yaml:"identityPolicy"`
	TrustProxyHeaders bool        `yaml:"trustProxyHeaders"`
	Store             StoreConfig `yaml:"store"`
}

// StoreConfig holds rate limit store configuration.
type StoreConfig struct {
	Type  string      `yaml:"type"`
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig holds Redis connection configuration for the shared
// rate limit store.
type RedisConfig struct {
	Address      string   `yaml:"address"`
	Password     string   `yaml:"password"`
	DB           int      `yaml:"db"`
	Prefix       string   `yaml:"prefix"`
	DialTimeout  Duration `yaml:"dialTimeout"`
	ReadTimeout  Duration `yaml:"readTimeout"`
	WriteTimeout Duration `yaml:"writeTimeout"`
}

// Secrets provider types.
const (
	SecretsProviderEnv   = "env"
	SecretsProviderFile  = "file"
	SecretsProviderVault = "vault"
)

// SecretsConfig holds secrets provider configuration.
type SecretsConfig struct {
	Provider  string      `yaml:"provider"`
	EnvPrefix string      `yaml:"envPrefix"`
	FilePath  string      `yaml:"filePath"`
	Vault     VaultConfig `yaml:"vault"`
}

// VaultConfig holds HashiCorp Vault configuration for the vault
// secrets provider.
type VaultConfig struct {
	Address string   `yaml:"address"`
	Token   string   `yaml:"token"`
	Mount   string   `yaml:"mount"`
	Key     string   `yaml:"key"`
	Timeout Duration `yaml:"timeout"`
}

// DefaultConfig returns a Config with default values applied.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Listen:          DefaultListenAddr,
			Path:            DefaultReportPath,
			MaxBodyBytes:    DefaultMaxBodyBytes,
			ReadTimeout:     Duration(30 * time.Second),
			WriteTimeout:    Duration(30 * time.Second),
			IdleTimeout:     Duration(120 * time.Second),
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Admin: AdminConfig{
			Listen:      DefaultAdminAddr,
			MetricsPath: "/metrics",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Tracing: TracingConfig{
			Enabled:      false,
			SamplingRate: 1.0,
		},
		Tracker: TrackerConfig{
			Endpoint: DefaultTrackerEndpoint,
			Timeout:  Duration(DefaultUpstreamTimeout),
		},
		RateLimit: RateLimitConfig{
			Enabled:        true,
			Algorithm:      AlgorithmSlidingWindow,
			MaxRequests:    10,
			Window:         Duration(time.Minute),
			IdentityPolicy: IdentityPolicyAdmit,
			Store: StoreConfig{
				Type: StoreTypeMemory,
			},
		},
		Secrets: SecretsConfig{
			Provider: SecretsProviderEnv,
		},
	}
}

// applyDefaults fills zero-valued fields with defaults after unmarshaling.
func (c *Config) applyDefaults() {
	def := DefaultConfig()

	if c.Server.Listen == "" {
		c.Server.Listen = def.Server.Listen
	}
	if c.Server.Path == "" {
		c.Server.Path = def.Server.Path
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = def.Server.MaxBodyBytes
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = def.Server.ReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = def.Server.WriteTimeout
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = def.Server.IdleTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = def.Server.ShutdownTimeout
	}
	if c.Admin.Listen == "" {
		c.Admin.Listen = def.Admin.Listen
	}
	if c.Admin.MetricsPath == "" {
		c.Admin.MetricsPath = def.Admin.MetricsPath
	}
	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = def.Logging.Format
	}
	if c.Logging.Output == "" {
		c.Logging.Output = def.Logging.Output
	}
	if c.Tracing.SamplingRate == 0 {
		c.Tracing.SamplingRate = def.Tracing.SamplingRate
	}
	if c.Tracker.Endpoint == "" {
		c.Tracker.Endpoint = def.Tracker.Endpoint
	}
	if c.Tracker.Timeout == 0 {
		c.Tracker.Timeout = def.Tracker.Timeout
	}
	if c.RateLimit.Algorithm == "" {
		c.RateLimit.Algorithm = def.RateLimit.Algorithm
	}
	if c.RateLimit.MaxRequests == 0 {
		c.RateLimit.MaxRequests = def.RateLimit.MaxRequests
	}
	if c.RateLimit.Window == 0 {
		c.RateLimit.Window = def.RateLimit.Window
	}
	if c.RateLimit.IdentityPolicy == "" {
		c.RateLimit.IdentityPolicy = def.RateLimit.IdentityPolicy
	}
	if c.RateLimit.Store.Type == "" {
		c.RateLimit.Store.Type = def.RateLimit.Store.Type
	}
	if c.Secrets.Provider == "" {
		c.Secrets.Provider = def.Secrets.Provider
	}
}
