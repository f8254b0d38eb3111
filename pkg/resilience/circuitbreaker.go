// Package resilience guards calls to the image provider.
package resilience

import (
	"errors"
	"sync"
	"time"

	"character-image-generator/backend/pkg/logger"
)

// ErrCircuitOpen is returned without invoking the guarded call while the breaker is open.
var ErrCircuitOpen = errors.New("circuit open")

// State of a circuit breaker
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half-open"
)

// Config holds configuration for a circuit breaker
type Config struct {
	Name string
	// FailureThreshold consecutive failures open the circuit.
	FailureThreshold uint
	// SuccessThreshold successes in half-open close it again.
	SuccessThreshold uint
	// Cooldown is how long the circuit stays open before probing.
	Cooldown time.Duration
}

// DefaultConfig returns a default circuit breaker configuration
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		FailureThreshold: 5,
		SuccessThreshold: 1,
		Cooldown:         60 * time.Second,
	}
}

// CircuitBreaker stops calling a failing dependency for a cooldown period.
type CircuitBreaker struct {
	cfg Config
	log *logger.Logger
	now func() time.Time

	mu               sync.Mutex
	state            State
	failures         uint
	successes        uint
	halfOpenInFlight uint
	openedUntil      time.Time

	totalRequests uint64
	totalFailures uint64
	totalRejected uint64
	timesOpened   uint64
	lastFailureAt time.Time
}

// NewCircuitBreaker creates a new circuit breaker. Zero thresholds fall back to the defaults.
func NewCircuitBreaker(cfg Config, log *logger.Logger) *CircuitBreaker {
	def := DefaultConfig(cfg.Name)
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.SuccessThreshold == 0 {
		cfg.SuccessThreshold = def.SuccessThreshold
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = def.Cooldown
	}
	if log == nil {
		log = logger.GetGlobal()
	}
	return &CircuitBreaker{
		cfg:   cfg,
		log:   log.WithComponent("circuit-breaker"),
		now:   time.Now,
		state: StateClosed,
	}
}

// Execute runs fn through the circuit breaker
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if !cb.allow() {
		return ErrCircuitOpen
	}

	err := fn()
	if err != nil {
		cb.recordFailure()
		return err
	}
	cb.recordSuccess()
	return nil
}

func (cb *CircuitBreaker) allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if cb.now().Before(cb.openedUntil) {
			cb.totalRejected++
			return false
		}
		cb.state = StateHalfOpen
		cb.successes = 0
		cb.halfOpenInFlight = 0
		cb.log.Info("Circuit breaker half-open", "name", cb.cfg.Name)
		fallthrough
	case StateHalfOpen:
		// only as many probes as needed to close
		if cb.halfOpenInFlight >= cb.cfg.SuccessThreshold {
			cb.totalRejected++
			return false
		}
		cb.halfOpenInFlight++
	}
	cb.totalRequests++
	return true
}

func (cb *CircuitBreaker) recordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.failures = 0
	case StateHalfOpen:
		cb.successes++
		if cb.successes >= cb.cfg.SuccessThreshold {
			cb.state = StateClosed
			cb.failures = 0
			cb.log.Info("Circuit breaker closed", "name", cb.cfg.Name)
		}
	}
}

func (cb *CircuitBreaker) recordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.totalFailures++
	cb.lastFailureAt = cb.now()

	switch cb.state {
	case StateClosed:
		cb.failures++
		if cb.failures >= cb.cfg.FailureThreshold {
			cb.open()
		}
	case StateHalfOpen:
		cb.open()
	}
}

func (cb *CircuitBreaker) open() {
	cb.state = StateOpen
	cb.timesOpened++
	cb.openedUntil = cb.now().Add(cb.cfg.Cooldown)

	cb.log.Warn("Circuit breaker opened",
		"name", cb.cfg.Name,
		"failures", cb.failures,
		"nextAttempt", cb.openedUntil.Format(time.RFC3339),
	)
}

// State returns the current state
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Metrics returns counters for the health report
func (cb *CircuitBreaker) Metrics() map[string]any {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return map[string]any{
		"name":            cb.cfg.Name,
		"state":           string(cb.state),
		"total_requests":  cb.totalRequests,
		"total_failures":  cb.totalFailures,
		"total_rejected":  cb.totalRejected,
		"times_opened":    cb.timesOpened,
		"last_failure_at": cb.lastFailureAt,
	}
}
