package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// DefaultEnvPrefix is the default prefix for environment-sourced secrets.
const DefaultEnvPrefix = "HOTLINE_SECRET_"

// EnvProvider resolves secrets from environment variables.
type EnvProvider struct {
	prefix string
}

// NewEnvProvider creates an environment variable secrets provider. An
// empty prefix uses DefaultEnvPrefix.
func NewEnvProvider(prefix string) *EnvProvider {
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	return &EnvProvider{prefix: prefix}
}

// Type returns the provider type.
func (p *EnvProvider) Type() ProviderType {
	return ProviderTypeEnv
}

// GetSecret resolves a secret from the environment. The reference is
// upper-cased and prefixed, so "tracker_credential" reads
// HOTLINE_SECRET_TRACKER_CREDENTIAL.
func (p *EnvProvider) GetSecret(_ context.Context, ref string) (string, error) {
	name := p.prefix + strings.ToUpper(ref)
	value, ok := os.LookupEnv(name)
	if !ok {
		return "", fmt.Errorf("%w: environment variable %s is not set", ErrSecretNotFound, name)
	}
	return value, nil
}

// Close is a no-op for the environment provider.
func (p *EnvProvider) Close() error {
	return nil
}
