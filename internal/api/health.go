package api

import (
	"character-image-generator/backend/pkg/health"

	"github.com/gin-gonic/gin"
)

// HealthHandler serves the component health report
type HealthHandler struct {
	checker *health.Checker
}

func NewHealthHandler(checker *health.Checker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// RegisterHealthRoutes registers health check related routes
func (h *HealthHandler) RegisterHealthRoutes(router *gin.RouterGroup) {
	router.GET("/health", h.checker.Handler())
}
