package health

import (
	"context"
	"fmt"

	"character-image-generator/backend/pkg/cache"
	"character-image-generator/backend/pkg/resilience"
)

// RegisterCacheCheck reports the character cache; a failing cache only degrades service.
func (c *Checker) RegisterCacheCheck(store cache.Store) {
	c.RegisterCheck("cache", false, func(ctx context.Context) (Status, string, error) {
		if err := store.Ping(ctx); err != nil {
			return StatusDegraded, fmt.Sprintf("%s cache unreachable", store.Name()), err
		}
		return StatusUp, fmt.Sprintf("%s cache is reachable", store.Name()), nil
	})
}

// RegisterImageProviderCheck reports whether real images can be generated.
func (c *Checker) RegisterImageProviderCheck(enabled bool, breaker *resilience.CircuitBreaker) {
	c.RegisterCheck("image_provider", false, func(context.Context) (Status, string, error) {
		if !enabled {
			return StatusDegraded, "No provider credential configured, serving placeholders", nil
		}
		if breaker != nil && breaker.State() != resilience.StateClosed {
			return StatusDegraded, fmt.Sprintf("Circuit breaker %s, serving placeholders", breaker.State()), nil
		}
		return StatusUp, "Image provider configured", nil
	})
}
