// Package secrets resolves credentials from Vault with an environment fallback.
package secrets

import (
	"context"
	"errors"
	"os"
	"strings"
)

// Well-known secret keys
const (
	KeyOpenAIAPIKey = "openai_api_key"
	KeyJWTSecret    = "jwt_secret"
	KeyStorageKey   = "storage_secret_key"
)

var (
	ErrSecretNotFound = errors.New("secret not found")
	ErrNoVaultToken   = errors.New("no vault token provided")
	ErrNoVaultAddress = errors.New("no vault address provided")
)

// Manager provides access to secrets from various sources
type Manager interface {
	GetSecret(ctx context.Context, key string) (string, error)
	// GetSecretWithDefault returns defaultValue when the key cannot be resolved.
	GetSecretWithDefault(ctx context.Context, key, defaultValue string) string
}

// EnvKey maps a secret key to its environment variable: openai_api_key -> OPENAI_API_KEY.
func EnvKey(key string) string {
	return strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(key))
}

// EnvManager reads secrets from the process environment only.
type EnvManager struct {
	lookup func(string) (string, bool)
}

func NewEnvManager() *EnvManager {
	return &EnvManager{lookup: os.LookupEnv}
}

func (m *EnvManager) GetSecret(_ context.Context, key string) (string, error) {
	value, ok := m.lookup(EnvKey(key))
	if !ok || value == "" {
		return "", ErrSecretNotFound
	}
	return value, nil
}

func (m *EnvManager) GetSecretWithDefault(ctx context.Context, key, defaultValue string) string {
	value, err := m.GetSecret(ctx, key)
	if err != nil {
		return defaultValue
	}
	return value
}
