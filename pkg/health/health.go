// Package health aggregates component checks into the /health report.
package health

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"character-image-generator/backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Status represents the health status of a component
type Status string

const (
	StatusUp       Status = "up"
	StatusDown     Status = "down"
	StatusDegraded Status = "degraded"
)

// Component is the last observed state of one check
type Component struct {
	Name        string    `json:"name"`
	Status      Status    `json:"status"`
	Critical    bool      `json:"critical"`
	Description string    `json:"description,omitempty"`
	Error       string    `json:"error,omitempty"`
	LastChecked time.Time `json:"lastChecked"`
}

// Report is the JSON body served by the health endpoint
type Report struct {
	Status     string       `json:"status"`
	Timestamp  time.Time    `json:"timestamp"`
	Uptime     string       `json:"uptime"`
	Version    string       `json:"version,omitempty"`
	Components []*Component `json:"components"`
}

// Check represents a health check function
type Check func(ctx context.Context) (Status, string, error)

type registered struct {
	check    Check
	critical bool
}

// Checker manages health checks for the system
type Checker struct {
	checks       map[string]registered
	components   map[string]*Component
	checkTimeout time.Duration
	started      time.Time
	version      string
	mutex        sync.RWMutex
	log          *logger.Logger
}

// NewChecker creates a new health checker
func NewChecker(log *logger.Logger, version string) *Checker {
	if log == nil {
		log = logger.GetGlobal()
	}
	return &Checker{
		checks:       make(map[string]registered),
		components:   make(map[string]*Component),
		checkTimeout: 5 * time.Second,
		started:      time.Now(),
		version:      version,
		log:          log.WithComponent("health"),
	}
}

// RegisterCheck registers a check. A critical component that is down makes
// the whole service report 503.
func (c *Checker) RegisterCheck(name string, critical bool, check Check) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.checks[name] = registered{check: check, critical: critical}
	c.components[name] = &Component{
		Name:        name,
		Status:      StatusDown,
		Critical:    critical,
		Description: "Not checked yet",
	}
}

// RunChecks executes all registered health checks
func (c *Checker) RunChecks(ctx context.Context) {
	c.mutex.RLock()
	checks := make(map[string]registered, len(c.checks))
	for name, r := range c.checks {
		checks[name] = r
	}
	c.mutex.RUnlock()

	for name, r := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, c.checkTimeout)
		status, description, err := r.check(checkCtx)
		cancel()

		component := &Component{
			Name:        name,
			Status:      status,
			Critical:    r.critical,
			Description: description,
			LastChecked: time.Now(),
		}
		if err != nil {
			component.Error = err.Error()
			c.log.Warn("Health check failed", "component", name, "status", string(status), "error", err.Error())
		}

		c.mutex.Lock()
		c.components[name] = component
		c.mutex.Unlock()
	}
}

// Start runs the checks every period until ctx is cancelled.
func (c *Checker) Start(ctx context.Context, period time.Duration) {
	go func() {
		c.RunChecks(ctx)

		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.RunChecks(ctx)
			}
		}
	}()
}

// Report returns the current state of every component
func (c *Checker) Report() Report {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	components := make([]*Component, 0, len(c.components))
	overall := "ok"
	for _, comp := range c.components {
		cp := *comp
		components = append(components, &cp)
		switch {
		case comp.Status == StatusDown && comp.Critical:
			overall = "down"
		case comp.Status != StatusUp && overall == "ok":
			overall = "degraded"
		}
	}
	sort.Slice(components, func(i, j int) bool { return components[i].Name < components[j].Name })

	return Report{
		Status:     overall,
		Timestamp:  time.Now().UTC(),
		Uptime:     time.Since(c.started).Round(time.Second).String(),
		Version:    c.version,
		Components: components,
	}
}

// IsSystemHealthy returns true if all critical components are up
func (c *Checker) IsSystemHealthy() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	for _, component := range c.components {
		if component.Critical && component.Status == StatusDown {
			return false
		}
	}
	return true
}

// Handler runs the checks and serves the report; 503 when a critical component is down.
func (c *Checker) Handler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		c.RunChecks(ctx.Request.Context())

		status := http.StatusOK
		if !c.IsSystemHealthy() {
			status = http.StatusServiceUnavailable
		}
		ctx.JSON(status, c.Report())
	}
}

// RegisterDatabaseCheck registers the critical database check
func (c *Checker) RegisterDatabaseCheck(ping func(ctx context.Context) error) {
	c.RegisterCheck("database", true, func(ctx context.Context) (Status, string, error) {
		if err := ping(ctx); err != nil {
			return StatusDown, "Database connection failed", err
		}
		return StatusUp, "Database connection is established", nil
	})
}
