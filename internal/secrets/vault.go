package secrets

import (
	"context"
	"fmt"
	"strings"
	"time"

	vault "github.com/hashicorp/vault/api"
)

// DefaultVaultMount is the default KV v2 mount point.
const DefaultVaultMount = "secret"

// DefaultVaultTimeout bounds Vault API calls.
const DefaultVaultTimeout = 10 * time.Second

// VaultConfig holds configuration for the Vault secrets provider.
type VaultConfig struct {
	// Address is the Vault server address.
	Address string
	// Token is the Vault token.
	Token string
	// Mount is the KV v2 secrets engine mount point.
	Mount string
	// Key is the default key read from a secret when the reference does
	// not name one.
	Key string
	// Timeout is the per-call timeout.
	Timeout time.Duration
}

// VaultProvider resolves secrets from a HashiCorp Vault KV v2 engine.
type VaultProvider struct {
	client  *vault.Client
	mount   string
	key     string
	timeout time.Duration
}

// NewVaultProvider creates a Vault secrets provider.
func NewVaultProvider(cfg VaultConfig) (*VaultProvider, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("%w: vault provider requires an address", ErrProviderNotConfigured)
	}

	clientConfig := vault.DefaultConfig()
	clientConfig.Address = cfg.Address

	client, err := vault.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	if cfg.Token != "" {
		client.SetToken(cfg.Token)
	}

	mount := cfg.Mount
	if mount == "" {
		mount = DefaultVaultMount
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultVaultTimeout
	}

	return &VaultProvider{
		client:  client,
		mount:   mount,
		key:     cfg.Key,
		timeout: timeout,
	}, nil
}

// Type returns the provider type.
func (p *VaultProvider) Type() ProviderType {
	return ProviderTypeVault
}

// GetSecret resolves a secret from the KV v2 engine. The reference is
// "path#key"; with no "#key" the configured default key is used, falling
// back to "value".
func (p *VaultProvider) GetSecret(ctx context.Context, ref string) (string, error) {
	path, key, found := strings.Cut(ref, "#")
	if !found {
		key = p.key
		if key == "" {
			key = "value"
		}
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	secret, err := p.client.KVv2(p.mount).Get(ctx, path)
	if err != nil {
		return "", fmt.Errorf("failed to read vault secret %s: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("%w: vault path %s", ErrSecretNotFound, path)
	}

	raw, ok := secret.Data[key]
	if !ok {
		return "", fmt.Errorf("%w: key %q not present at vault path %s", ErrSecretNotFound, key, path)
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("vault secret %s key %q is not a string", path, key)
	}

	return value, nil
}

// Close is a no-op; the Vault client keeps no persistent connection.
func (p *VaultProvider) Close() error {
	return nil
}
