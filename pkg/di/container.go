// Package di builds the application object graph from configuration.
package di

import (
	"context"
	stderrors "errors"
	"fmt"

	"character-image-generator/backend/ai"
	"character-image-generator/backend/internal/repository"
	"character-image-generator/backend/internal/service"
	"character-image-generator/backend/internal/ws"
	"character-image-generator/backend/pkg/cache"
	"character-image-generator/backend/pkg/config"
	"character-image-generator/backend/pkg/health"
	"character-image-generator/backend/pkg/jwt"
	"character-image-generator/backend/pkg/logger"
	"character-image-generator/backend/pkg/middleware"
	"character-image-generator/backend/pkg/observability"
	"character-image-generator/backend/pkg/resilience"
	"character-image-generator/backend/pkg/secrets"
	"character-image-generator/backend/pkg/storage"
	"character-image-generator/backend/pkg/validator"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// Container holds all the dependencies for the application
type Container struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            *gorm.DB
	Redis         *redis.Client
	Cache         cache.Store
	Secrets       secrets.Manager
	Observability *observability.Provider
	Breaker       *resilience.CircuitBreaker
	Orchestrator  *ai.Orchestrator
	Hub           *ws.Hub
	RateLimiter   *middleware.RateLimiter
	Validator     *validator.OpenAPIValidator
	JWTService    *jwt.Service
	Health        *health.Checker

	CharacterService *service.CharacterService
	ImageService     *service.ImageService
}

// New creates a new dependency injection container. Optional integrations
// (Redis, Vault, S3, the image provider) are only wired when configured.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger, version string) (*Container, error) {
	if log == nil {
		log = logger.GetGlobal()
	}
	c := &Container{Config: cfg, Logger: log}

	obs, err := observability.Setup(cfg.Observability, version, nil, log)
	if err != nil {
		return nil, fmt.Errorf("failed to set up observability: %w", err)
	}
	c.Observability = obs

	sm, err := secrets.NewManager(cfg.Vault, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create secrets manager: %w", err)
	}
	c.Secrets = sm

	characters, images, err := c.repositories()
	if err != nil {
		return nil, err
	}

	c.Cache = c.cacheStore(ctx)

	c.Orchestrator, err = c.orchestrator(ctx)
	if err != nil {
		return nil, err
	}

	c.Hub = ws.NewHub(log)
	c.CharacterService = service.NewCharacterService(characters, c.Cache, cfg.Cache.TTL, c.Hub, log)
	c.ImageService = service.NewImageService(images, c.CharacterService, c.Orchestrator, cfg.Images.MaxCount, c.Hub, log)

	c.RateLimiter = middleware.NewRateLimiter(log, middleware.RateLimiterOptions{
		Limit: rate.Limit(cfg.Security.RateLimit),
		Burst: cfg.Security.RateLimitBurst,
	})

	if cfg.Observability.OpenAPIValidation {
		c.Validator, err = validator.NewOpenAPIValidator("/api")
		if err != nil {
			return nil, fmt.Errorf("failed to load OpenAPI schema: %w", err)
		}
	}

	if cfg.Auth.Enabled {
		secret := sm.GetSecretWithDefault(ctx, secrets.KeyJWTSecret, cfg.Auth.JWTSecret)
		c.JWTService, err = jwt.NewService(secret, cfg.Auth.Issuer, cfg.Auth.TokenExpiry)
		if err != nil {
			return nil, fmt.Errorf("failed to create JWT service: %w", err)
		}
	}

	c.Health = c.healthChecker(version)

	log.Info("Container initialized",
		"db_driver", cfg.Database.Driver,
		"cache", storeName(c.Cache),
		"image_provider", c.Orchestrator.Enabled(),
		"auth", cfg.Auth.Enabled,
	)
	return c, nil
}

func (c *Container) repositories() (repository.CharacterRepository, repository.ImageRepository, error) {
	if c.Config.Database.Driver == config.DriverMemory {
		c.Logger.Warn("Using in-memory storage, data is lost on restart")
		return repository.NewMemoryCharacterRepository(), repository.NewMemoryImageRepository(), nil
	}

	db, err := config.NewDB(c.Config, c.Logger)
	if err != nil {
		return nil, nil, err
	}
	if err := repository.Migrate(db); err != nil {
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	c.DB = db
	return repository.NewGormCharacterRepository(db), repository.NewGormImageRepository(db), nil
}

// cacheStore prefers Redis and falls back to the in-process cache when
// Redis is not configured or unreachable.
func (c *Container) cacheStore(ctx context.Context) cache.Store {
	cfg := c.Config
	if !cfg.Cache.Enabled {
		return nil
	}

	if cfg.Redis.URL != "" {
		client, err := cache.ConnectRedis(ctx, cfg.Redis)
		if err == nil {
			c.Redis = client
			return cache.NewRedisStore(client, "cig:")
		}
		c.Logger.LogError(err, "Redis unavailable, using in-memory cache")
	}
	return cache.NewMemoryStore(cfg.Cache.TTL, cfg.Cache.CleanupInterval)
}

func (c *Container) orchestrator(ctx context.Context) (*ai.Orchestrator, error) {
	cfg := c.Config.Images
	opts := ai.Options{
		CallTimeout:    cfg.CallTimeout,
		Logger:         c.Logger,
		TracerProvider: c.Observability.TracerProvider,
		MeterProvider:  c.Observability.MeterProvider,
	}

	var generator ai.ImageGenerator
	apiKey := c.Secrets.GetSecretWithDefault(ctx, secrets.KeyOpenAIAPIKey, cfg.APIKey)
	if apiKey != "" {
		client, err := ai.NewOpenAIImageClient(ai.OpenAIConfig{
			APIKey:  apiKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Size:    cfg.Size,
			Quality: cfg.Quality,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create image client: %w", err)
		}
		generator = client

		breakerCfg := resilience.DefaultConfig("image-provider")
		breakerCfg.FailureThreshold = cfg.BreakerThreshold
		breakerCfg.Cooldown = cfg.BreakerCooldown
		c.Breaker = resilience.NewCircuitBreaker(breakerCfg, c.Logger)
		opts.Breaker = c.Breaker

		if cfg.RateLimit > 0 {
			opts.Limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(cfg.RateBurst, 1))
		}
	} else {
		c.Logger.Warn("No image provider credential configured, generation returns placeholders")
	}

	storageCfg := c.Config.Storage
	storageCfg.SecretKey = c.Secrets.GetSecretWithDefault(ctx, secrets.KeyStorageKey, storageCfg.SecretKey)
	mirror, err := storage.New(storageCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	if mirror != nil {
		opts.Mirror = mirror
	}

	return ai.NewOrchestrator(generator, opts)
}

func (c *Container) healthChecker(version string) *health.Checker {
	checker := health.NewChecker(c.Logger, version)
	if c.DB != nil {
		db := c.DB
		checker.RegisterDatabaseCheck(func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		})
	}
	if c.Cache != nil {
		checker.RegisterCacheCheck(c.Cache)
	}
	checker.RegisterImageProviderCheck(c.Orchestrator.Enabled(), c.Breaker)
	return checker
}

// Close releases external connections.
func (c *Container) Close(ctx context.Context) error {
	var errs []error
	if c.Observability != nil {
		errs = append(errs, c.Observability.Shutdown(ctx))
	}
	if c.Redis != nil {
		errs = append(errs, c.Redis.Close())
	}
	if c.DB != nil {
		if sqlDB, err := c.DB.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	return stderrors.Join(errs...)
}

func storeName(s cache.Store) string {
	if s == nil {
		return "disabled"
	}
	return s.Name()
}
