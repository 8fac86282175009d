// Package secrets resolves sensitive configuration values (the tracker
// credential, the inbound auth token) through pluggable backends:
// environment variables, a local file, or HashiCorp Vault. Secrets are
// resolved once at startup; providers are not consulted per request.
package secrets

import (
	"context"
	"errors"
	"fmt"
)

// ProviderType identifies a secrets backend.
type ProviderType string

const (
	// ProviderTypeEnv resolves secrets from environment variables.
	ProviderTypeEnv ProviderType = "env"
	// ProviderTypeFile resolves secrets from a flat key=value file.
	ProviderTypeFile ProviderType = "file"
	// ProviderTypeVault resolves secrets from HashiCorp Vault KV v2.
	ProviderTypeVault ProviderType = "vault"
)

// Common provider errors.
var (
	// ErrSecretNotFound is returned when a secret does not exist.
	ErrSecretNotFound = errors.New("secret not found")
	// ErrProviderNotConfigured is returned when the provider is missing
	// required configuration.
	ErrProviderNotConfigured = errors.New("secrets provider not configured")
	// ErrInvalidProviderType is returned for an unknown provider type.
	ErrInvalidProviderType = errors.New("invalid secrets provider type")
)

// Provider resolves named secrets.
type Provider interface {
	// Type returns the provider type.
	Type() ProviderType

	// GetSecret retrieves a secret by reference. The reference format
	// depends on the provider:
	//   - env:   "TRACKER_CREDENTIAL" (with the configured prefix)
	//   - file:  "tracker_credential" (a key in the file)
	//   - vault: "hotline/gateway#credential" (path#key in the KV mount)
	GetSecret(ctx context.Context, ref string) (string, error)

	// Close releases provider resources.
	Close() error
}

// ValidateProviderType checks that the given string names a known
// provider type.
func ValidateProviderType(providerType string) (ProviderType, error) {
	switch ProviderType(providerType) {
	case ProviderTypeEnv, ProviderTypeFile, ProviderTypeVault:
		return ProviderType(providerType), nil
	default:
		return "", fmt.Errorf("%w: %s, must be one of: env, file, vault", ErrInvalidProviderType, providerType)
	}
}
