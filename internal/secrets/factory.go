package secrets

import (
	"fmt"
	"time"

	"github.com/hotlinehq/hotline/internal/config"
)

// NewProvider creates a secrets provider from the configuration.
func NewProvider(cfg config.SecretsConfig) (Provider, error) {
	providerType, err := ValidateProviderType(cfg.Provider)
	if err != nil {
		return nil, err
	}

	switch providerType {
	case ProviderTypeEnv:
		return NewEnvProvider(cfg.EnvPrefix), nil

	case ProviderTypeFile:
		return NewFileProvider(cfg.FilePath)

	case ProviderTypeVault:
		return NewVaultProvider(VaultConfig{
			Address: cfg.Vault.Address,
			Token:   cfg.Vault.Token,
			Mount:   cfg.Vault.Mount,
			Key:     cfg.Vault.Key,
			Timeout: time.Duration(cfg.Vault.Timeout),
		})

	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidProviderType, cfg.Provider)
	}
}
