package secrets

import (
	"context"
	"errors"
	"fmt"

	"character-image-generator/backend/pkg/config"
	"character-image-generator/backend/pkg/logger"

	vault "github.com/hashicorp/vault/api"
	gocache "github.com/patrickmn/go-cache"
)

// VaultManager reads secrets from a Vault KV v2 mount. Keys missing from
// Vault fall back to the environment.
type VaultManager struct {
	client *vault.Client
	cfg    config.VaultConfig
	cache  *gocache.Cache
	env    *EnvManager
	log    *logger.Logger
}

// NewManager returns a VaultManager when Vault is enabled and an
// EnvManager otherwise.
func NewManager(cfg config.VaultConfig, log *logger.Logger) (Manager, error) {
	if !cfg.Enabled {
		return NewEnvManager(), nil
	}
	return NewVaultManager(cfg, log)
}

func NewVaultManager(cfg config.VaultConfig, log *logger.Logger) (*VaultManager, error) {
	if cfg.Address == "" {
		return nil, ErrNoVaultAddress
	}
	if cfg.Token == "" {
		return nil, ErrNoVaultToken
	}
	if cfg.Mount == "" {
		cfg.Mount = "secret"
	}
	if log == nil {
		log = logger.GetGlobal()
	}

	vaultConfig := vault.DefaultConfig()
	vaultConfig.Address = cfg.Address
	if cfg.Timeout > 0 {
		vaultConfig.Timeout = cfg.Timeout
	}
	vaultConfig.MaxRetries = cfg.MaxRetries

	client, err := vault.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	client.SetToken(cfg.Token)
	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	return &VaultManager{
		client: client,
		cfg:    cfg,
		cache:  gocache.New(cfg.CacheTTL, cfg.CacheTTL),
		env:    NewEnvManager(),
		log:    log.WithComponent("secrets"),
	}, nil
}

// GetSecret retrieves a secret from Vault, with fallback to environment variable
func (m *VaultManager) GetSecret(ctx context.Context, key string) (string, error) {
	if cached, ok := m.cache.Get(key); ok {
		return cached.(string), nil
	}

	value, err := m.getFromVault(ctx, key)
	if errors.Is(err, ErrSecretNotFound) {
		m.log.Warn("Secret not found in Vault, falling back to environment", "key", key)
		value, err = m.env.GetSecret(ctx, key)
	}
	if err != nil {
		return "", err
	}

	m.cache.SetDefault(key, value)
	return value, nil
}

func (m *VaultManager) GetSecretWithDefault(ctx context.Context, key, defaultValue string) string {
	value, err := m.GetSecret(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrSecretNotFound) {
			m.log.Warn("Failed to get secret, using default value", "key", key, "error", err.Error())
		}
		return defaultValue
	}
	return value
}

func (m *VaultManager) getFromVault(ctx context.Context, key string) (string, error) {
	secret, err := m.client.KVv2(m.cfg.Mount).Get(ctx, m.cfg.SecretsPath)
	if errors.Is(err, vault.ErrSecretNotFound) {
		return "", ErrSecretNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read %s/%s from vault: %w", m.cfg.Mount, m.cfg.SecretsPath, err)
	}
	if secret == nil || secret.Data == nil {
		return "", ErrSecretNotFound
	}

	value, ok := secret.Data[key].(string)
	if !ok || value == "" {
		return "", ErrSecretNotFound
	}
	return value, nil
}
