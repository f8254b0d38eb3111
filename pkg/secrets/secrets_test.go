package secrets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"character-image-generator/backend/pkg/config"
	"character-image-generator/backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "OPENAI_API_KEY", EnvKey("openai_api_key"))
	assert.Equal(t, "STORAGE_SECRET_KEY", EnvKey("storage-secret.key"))
}

func TestEnvManager(t *testing.T) {
	m := &EnvManager{lookup: func(k string) (string, bool) {
		if k == "OPENAI_API_KEY" {
			return "sk-env", true
		}
		return "", false
	}}

	v, err := m.GetSecret(context.Background(), KeyOpenAIAPIKey)
	require.NoError(t, err)
	assert.Equal(t, "sk-env", v)

	_, err = m.GetSecret(context.Background(), KeyJWTSecret)
	assert.ErrorIs(t, err, ErrSecretNotFound)
	assert.Equal(t, "fallback", m.GetSecretWithDefault(context.Background(), KeyJWTSecret, "fallback"))
}

func TestNewManager_DisabledUsesEnvironment(t *testing.T) {
	m, err := NewManager(config.VaultConfig{Enabled: false}, logger.Discard())
	require.NoError(t, err)
	assert.IsType(t, &EnvManager{}, m)
}

func TestNewVaultManager_RequiresAddressAndToken(t *testing.T) {
	_, err := NewVaultManager(config.VaultConfig{Enabled: true, Token: "t"}, logger.Discard())
	assert.ErrorIs(t, err, ErrNoVaultAddress)

	_, err = NewVaultManager(config.VaultConfig{Enabled: true, Address: "http://vault"}, logger.Discard())
	assert.ErrorIs(t, err, ErrNoVaultToken)
}

func TestVaultManager_ReadsKVv2AndCaches(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/v1/secret/data/character-generator", r.URL.Path)
		assert.Equal(t, "root-token", r.Header.Get("X-Vault-Token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"data": {
				"data": {"openai_api_key": "sk-vault"},
				"metadata": {"created_time": "2024-01-01T00:00:00Z", "deletion_time": "", "destroyed": false, "version": 1}
			}
		}`))
	}))
	defer srv.Close()

	m, err := NewVaultManager(config.VaultConfig{
		Enabled:     true,
		Address:     srv.URL,
		Token:       "root-token",
		Mount:       "secret",
		SecretsPath: "character-generator",
		Timeout:     5 * time.Second,
		CacheTTL:    time.Minute,
	}, logger.Discard())
	require.NoError(t, err)
	m.env = &EnvManager{lookup: func(k string) (string, bool) {
		if k == "JWT_SECRET" {
			return "env-secret", true
		}
		return "", false
	}}

	ctx := context.Background()
	v, err := m.GetSecret(ctx, KeyOpenAIAPIKey)
	require.NoError(t, err)
	assert.Equal(t, "sk-vault", v)

	v, err = m.GetSecret(ctx, KeyOpenAIAPIKey)
	require.NoError(t, err)
	assert.Equal(t, "sk-vault", v)
	assert.EqualValues(t, 1, hits.Load())

	// missing in vault, present in env
	v, err = m.GetSecret(ctx, KeyJWTSecret)
	require.NoError(t, err)
	assert.Equal(t, "env-secret", v)

	assert.Equal(t, "none", m.GetSecretWithDefault(ctx, KeyStorageKey, "none"))
}
