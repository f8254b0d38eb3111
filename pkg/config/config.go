package config

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Database drivers understood by the repository layer.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Port            string        `env:"PORT" envDefault:"8000"`
	Env             string        `env:"APP_ENV" envDefault:"development"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"5m"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// DatabaseConfig selects and configures the character/image store
type DatabaseConfig struct {
	Driver         string        `env:"DB_DRIVER" envDefault:"postgres"`
	Host           string        `env:"DB_HOST" envDefault:"localhost"`
	Port           string        `env:"DB_PORT" envDefault:"5432"`
	User           string        `env:"DB_USER" envDefault:"postgres"`
	Password       string        `env:"DB_PASSWORD" envDefault:"postgres"`
	Name           string        `env:"DB_NAME" envDefault:"character_generator"`
	SSLMode        string        `env:"DB_SSL_MODE" envDefault:"disable"`
	MaxConns       int           `env:"DB_MAX_CONNS" envDefault:"20"`
	ConnectRetries int           `env:"DB_CONNECT_RETRIES" envDefault:"5"`
	RetryDelay     time.Duration `env:"DB_RETRY_DELAY" envDefault:"5s"`
}

// DSN builds the PostgreSQL connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// RedisConfig enables the shared character cache when URL is set
type RedisConfig struct {
	URL      string `env:"REDIS_URL"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// CacheConfig configures the character read cache
type CacheConfig struct {
	Enabled         bool          `env:"CACHE_ENABLED" envDefault:"true"`
	TTL             time.Duration `env:"CACHE_TTL" envDefault:"5m"`
	CleanupInterval time.Duration `env:"CACHE_CLEANUP_INTERVAL" envDefault:"10m"`
}

// ImageConfig configures the text-to-image provider and generation fan-out
type ImageConfig struct {
	APIKey           string        `env:"OPENAI_API_KEY"`
	BaseURL          string        `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	Model            string        `env:"IMAGE_MODEL" envDefault:"dall-e-3"`
	Size             string        `env:"IMAGE_SIZE" envDefault:"1024x1024"`
	Quality          string        `env:"IMAGE_QUALITY" envDefault:"standard"`
	CallTimeout      time.Duration `env:"IMAGE_CALL_TIMEOUT" envDefault:"60s"`
	RateLimit        float64       `env:"IMAGE_RATE_LIMIT" envDefault:"0"`
	RateBurst        int           `env:"IMAGE_RATE_BURST" envDefault:"2"`
	MaxCount         int           `env:"GENERATE_MAX_COUNT" envDefault:"10"`
	BreakerThreshold uint          `env:"IMAGE_BREAKER_THRESHOLD" envDefault:"5"`
	BreakerCooldown  time.Duration `env:"IMAGE_BREAKER_COOLDOWN" envDefault:"60s"`
}

// StorageConfig enables mirroring generated images to S3-compatible storage
type StorageConfig struct {
	Endpoint  string        `env:"STORAGE_ENDPOINT"`
	Region    string        `env:"STORAGE_REGION" envDefault:"us-east-1"`
	AccessKey string        `env:"STORAGE_ACCESS_KEY"`
	SecretKey string        `env:"STORAGE_SECRET_KEY"`
	Bucket    string        `env:"STORAGE_BUCKET" envDefault:"character-images"`
	PublicURL string        `env:"STORAGE_PUBLIC_URL"`
	KeyPrefix string        `env:"STORAGE_KEY_PREFIX" envDefault:"images/"`
	Timeout   time.Duration `env:"STORAGE_TIMEOUT" envDefault:"30s"`
}

// Enabled reports whether enough settings are present to talk to storage
func (s StorageConfig) Enabled() bool {
	return s.Endpoint != "" && s.AccessKey != "" && s.SecretKey != ""
}

// VaultConfig configures the secrets manager
type VaultConfig struct {
	Enabled     bool          `env:"VAULT_ENABLED" envDefault:"false"`
	Address     string        `env:"VAULT_ADDR"`
	Token       string        `env:"VAULT_TOKEN"`
	Namespace   string        `env:"VAULT_NAMESPACE"`
	Mount       string        `env:"VAULT_MOUNT" envDefault:"secret"`
	SecretsPath string        `env:"VAULT_SECRETS_PATH" envDefault:"character-generator"`
	Timeout     time.Duration `env:"VAULT_TIMEOUT" envDefault:"10s"`
	MaxRetries  int           `env:"VAULT_MAX_RETRIES" envDefault:"3"`
	CacheTTL    time.Duration `env:"VAULT_CACHE_TTL" envDefault:"5m"`
}

// AuthConfig turns on bearer-token protection of mutating routes
type AuthConfig struct {
	Enabled     bool          `env:"AUTH_ENABLED" envDefault:"false"`
	JWTSecret   string        `env:"JWT_SECRET"`
	Issuer      string        `env:"JWT_ISSUER" envDefault:"character-generator"`
	TokenExpiry time.Duration `env:"JWT_EXPIRY" envDefault:"24h"`
}

// SecurityConfig holds inbound request limits
type SecurityConfig struct {
	RateLimit      float64  `env:"RATE_LIMIT" envDefault:"5"`
	RateLimitBurst int      `env:"RATE_LIMIT_BURST" envDefault:"10"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	MaxBodySize    int64    `env:"MAX_BODY_SIZE" envDefault:"1048576"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// ObservabilityConfig toggles tracing and metrics
type ObservabilityConfig struct {
	ServiceName       string `env:"SERVICE_NAME" envDefault:"character-image-generator"`
	TracingEnabled    bool   `env:"TRACING_ENABLED" envDefault:"false"`
	MetricsEnabled    bool   `env:"METRICS_ENABLED" envDefault:"true"`
	OpenAPIValidation bool   `env:"OPENAPI_VALIDATION" envDefault:"true"`
}

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	Cache         CacheConfig
	Images        ImageConfig
	Storage       StorageConfig
	Vault         VaultConfig
	Auth          AuthConfig
	Security      SecurityConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
}

var (
	instance *Config
	loadErr  error
	once     sync.Once
)

// New returns the process-wide configuration, loading .env and the
// environment on first use.
func New() (*Config, error) {
	once.Do(func() {
		_ = godotenv.Load()
		instance, loadErr = Load()
	})
	return instance, loadErr
}

// Load parses a fresh Config from the environment without touching .env files.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects combinations the server cannot run with
func (c *Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case DriverPostgres, DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverPostgres, DriverMemory, c.Database.Driver))
	}

	if c.Images.MaxCount < 1 {
		errs = append(errs, fmt.Errorf("GENERATE_MAX_COUNT must be at least 1, got %d", c.Images.MaxCount))
	}

	if c.Images.CallTimeout <= 0 {
		errs = append(errs, errors.New("IMAGE_CALL_TIMEOUT must be positive"))
	}

	if c.Auth.Enabled && c.Auth.JWTSecret == "" && !c.Vault.Enabled {
		errs = append(errs, errors.New("JWT_SECRET is required when AUTH_ENABLED is set without Vault"))
	}

	if c.Vault.Enabled && (c.Vault.Address == "" || c.Vault.Token == "") {
		errs = append(errs, errors.New("VAULT_ADDR and VAULT_TOKEN are required when VAULT_ENABLED is set"))
	}

	return errors.Join(errs...)
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}
