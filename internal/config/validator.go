package config

import (
	"errors"
	"fmt"
)

// Sentinel errors for configuration validation.
var (
	// ErrMissingCredential indicates the tracker credential is not configured.
	ErrMissingCredential = errors.New("tracker credential is required")

	// ErrMissingTeamID indicates the tracker team ID is not configured.
	ErrMissingTeamID = errors.New("tracker teamId is required")

	// ErrMissingProjectID indicates the tracker project ID is not configured.
	ErrMissingProjectID = errors.New("tracker projectId is required")
)

// Validate checks the configuration for operator errors. It is called once
// at startup; the gateway also guards at request time so a misconfigured
// process that slipped through reports HTTP 500 rather than forwarding
// broken mutations upstream.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("configuration is required")
	}

	if err := validateTracker(&cfg.Tracker); err != nil {
		return err
	}
	if err := validateRateLimit(&cfg.RateLimit); err != nil {
		return err
	}
	if err := validateSecrets(&cfg.Secrets); err != nil {
		return err
	}

	if cfg.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server maxBodyBytes must be > 0, got %d", cfg.Server.MaxBodyBytes)
	}

	return nil
}

func validateTracker(c *TrackerConfig) error {
	if c.Credential == "" && c.CredentialRef == "" {
		return ErrMissingCredential
	}
	if c.TeamID == "" {
		return ErrMissingTeamID
	}
	if c.ProjectID == "" {
		return ErrMissingProjectID
	}
	if c.Endpoint == "" {
		return errors.New("tracker endpoint is required")
	}
	return nil
}

func validateRateLimit(c *RateLimitConfig) error {
	if !c.Enabled {
		return nil
	}

	switch c.Algorithm {
	case AlgorithmSlidingWindow, AlgorithmFixedWindow, AlgorithmTokenBucket:
	default:
		return fmt.Errorf("unknown rate limit algorithm: %s", c.Algorithm)
	}

	if c.MaxRequests <= 0 {
		return fmt.Errorf("rate limit maxRequests must be > 0, got %d", c.MaxRequests)
	}
	if c.Window <= 0 {
		return fmt.Errorf("rate limit window must be > 0, got %s", c.Window.Duration())
	}

	switch c.IdentityPolicy {
	case IdentityPolicyAdmit, IdentityPolicyReject:
	default:
		return fmt.Errorf("unknown identity policy: %s", c.IdentityPolicy)
	}

	switch c.Store.Type {
	case StoreTypeMemory:
	case StoreTypeRedis:
		if c.Store.Redis.Address == "" {
			return errors.New("redis address is required for the redis rate limit store")
		}
	default:
		return fmt.Errorf("unknown rate limit store type: %s", c.Store.Type)
	}

	return nil
}

func validateSecrets(c *SecretsConfig) error {
	switch c.Provider {
	case SecretsProviderEnv, SecretsProviderFile:
	case SecretsProviderVault:
		if c.Vault.Address == "" {
			return errors.New("vault address is required for the vault secrets provider")
		}
	default:
		return fmt.Errorf("unknown secrets provider: %s", c.Provider)
	}
	return nil
}
