package router

import (
	"net/http"

	"character-image-generator/backend/internal/api"
	"character-image-generator/backend/internal/ws"
	"character-image-generator/backend/pkg/di"
	"character-image-generator/backend/pkg/errors"
	"character-image-generator/backend/pkg/logger"
	"character-image-generator/backend/pkg/middleware"
	"character-image-generator/backend/pkg/validator"

	"github.com/gin-gonic/gin"
)

// apiPrefix is the second mount point of every API route.
const apiPrefix = "/api"

// Router is the main router for the application
type Router struct {
	Engine    *gin.Engine
	Container *di.Container
	Logger    *logger.Logger
}

// New creates a new router with the given container and registers all routes
func New(container *di.Container) *Router {
	logger.SetGlobal(container.Logger)

	if container.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Use the logger middleware first to capture all requests
	engine.Use(logger.Middleware(container.Logger))
	engine.Use(middleware.RequestContext())
	engine.Use(container.Observability.Middleware())
	engine.Use(errors.ErrorHandler())
	engine.Use(errors.RecoveryWithLogger())
	engine.Use(middleware.CORS(container.Config.Security.AllowedOrigins))
	engine.Use(container.RateLimiter.Middleware())
	engine.Use(bodyLimit(container.Config.Security.MaxBodySize))

	if container.Validator != nil {
		engine.Use(container.Validator.Middleware())
	}

	r := &Router{
		Engine:    engine,
		Container: container,
		Logger:    container.Logger,
	}
	r.setupRoutes()
	return r
}

// setupRoutes registers the API at the root and again under /api
func (r *Router) setupRoutes() {
	c := r.Container

	var write []gin.HandlerFunc
	if c.JWTService != nil {
		write = append(write, middleware.RequireAuth(c.JWTService, r.Logger))
	}

	characters := api.NewCharacterHandler(c.CharacterService)
	images := api.NewImageHandler(c.ImageService)
	health := api.NewHealthHandler(c.Health)

	for _, group := range []*gin.RouterGroup{&r.Engine.RouterGroup, r.Engine.Group(apiPrefix)} {
		characters.RegisterRoutes(group, write...)
		images.RegisterRoutes(group, write...)
		health.RegisterHealthRoutes(group)
		group.GET("/status", r.statusHandler())
	}

	if h := c.Observability.Handler(); h != nil {
		r.Engine.GET("/metrics", gin.WrapH(h))
	}

	r.Engine.GET(apiPrefix+"/docs/openapi.yaml", func(ctx *gin.Context) {
		ctx.Data(http.StatusOK, "application/yaml", validator.Schema())
	})

	r.Engine.GET("/ws/gallery", func(ctx *gin.Context) {
		ws.ServeWs(c.Hub, ctx)
	})

	r.Engine.NoRoute(func(ctx *gin.Context) {
		ctx.Error(errors.NewNotFoundError(errors.CodeRouteNotFound, "Route not found"))
	})
}

// bodyLimit caps request bodies; oversized bodies fail JSON binding.
func bodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
