package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "dall-e-3", cfg.Images.Model)
	assert.Equal(t, "1024x1024", cfg.Images.Size)
	assert.Equal(t, "standard", cfg.Images.Quality)
	assert.Equal(t, 60*time.Second, cfg.Images.CallTimeout)
	assert.Equal(t, 10, cfg.Images.MaxCount)
	assert.Equal(t, []string{"*"}, cfg.Security.AllowedOrigins)
	assert.False(t, cfg.Storage.Enabled())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", DriverMemory)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("IMAGE_CALL_TIMEOUT", "5s")
	t.Setenv("GENERATE_MAX_COUNT", "4")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, "sk-test", cfg.Images.APIKey)
	assert.Equal(t, 5*time.Second, cfg.Images.CallTimeout)
	assert.Equal(t, 4, cfg.Images.MaxCount)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.Security.AllowedOrigins)
}

func TestLoad_RejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"DB_DRIVER": "mongo"}},
		{"zero max count", map[string]string{"GENERATE_MAX_COUNT": "0"}},
		{"auth without secret", map[string]string{"AUTH_ENABLED": "true"}},
		{"vault without address", map[string]string{"VAULT_ENABLED": "true"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5433", User: "u", Password: "p", Name: "n", SSLMode: "require"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=n sslmode=require", d.DSN())
}
