package router

import (
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

// Track server start time for uptime calculations
var startTime = time.Now()

// statusHandler reports process-level runtime information
func (r *Router) statusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		c.JSON(200, gin.H{
			"status":    "ok",
			"env":       r.Container.Config.Server.Env,
			"timestamp": time.Now().Format(time.RFC3339),
			"uptime":    time.Since(startTime).Round(time.Second).String(),
			"websocket": gin.H{
				"active_connections": r.Container.Hub.ActiveConnections(),
			},
			"image_provider": gin.H{
				"enabled": r.Container.Orchestrator.Enabled(),
			},
			"memory": gin.H{
				"alloc_mb":   memStats.Alloc / 1024 / 1024,
				"sys_mb":     memStats.Sys / 1024 / 1024,
				"gc_cycles":  memStats.NumGC,
				"goroutines": runtime.NumGoroutine(),
			},
		})
	}
}
