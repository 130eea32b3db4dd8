package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// ErrCircuitOpen is returned when a call is rejected without being attempted.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// Circuit breaker defaults
const (
	DefaultMaxRequests           uint32        = 3
	DefaultInterval              time.Duration = 60 * time.Second
	DefaultTimeout               time.Duration = 30 * time.Second
	DefaultFailureThreshold      uint32        = 5
	DefaultFailureRatioThreshold float64       = 0.5
	DefaultMinRequestsToTrip     uint32        = 10
)

// StateObserver receives breaker state transitions, typically a metrics sink.
type StateObserver interface {
	SetCircuitBreakerState(name string, state int)
	RecordCircuitBreakerTrip(name string)
}

// CircuitBreakerConfig holds configuration for a circuit breaker
type CircuitBreakerConfig struct {
	Name                  string
	MaxRequests           uint32        // requests allowed while half-open
	Interval              time.Duration // closed-state count reset period
	Timeout               time.Duration // open to half-open delay
	FailureThreshold      uint32        // consecutive failures that trip
	FailureRatioThreshold float64
	MinRequestsToTrip     uint32
}

// DefaultCircuitBreakerConfig returns the defaults for a named breaker
func DefaultCircuitBreakerConfig(name string) *CircuitBreakerConfig {
	return &CircuitBreakerConfig{
		Name:                  name,
		MaxRequests:           DefaultMaxRequests,
		Interval:              DefaultInterval,
		Timeout:               DefaultTimeout,
		FailureThreshold:      DefaultFailureThreshold,
		FailureRatioThreshold: DefaultFailureRatioThreshold,
		MinRequestsToTrip:     DefaultMinRequestsToTrip,
	}
}

// CircuitBreaker wraps gobreaker with logging and an optional state observer.
type CircuitBreaker struct {
	cb     *gobreaker.CircuitBreaker
	name   string
	logger *slog.Logger
}

// NewCircuitBreaker creates a new circuit breaker. observer may be nil.
func NewCircuitBreaker(config *CircuitBreakerConfig, logger *slog.Logger, observer StateObserver) *CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= config.FailureThreshold {
				return true
			}
			if counts.Requests >= config.MinRequestsToTrip {
				ratio := float64(counts.TotalFailures) / float64(counts.Requests)
				return ratio >= config.FailureRatioThreshold
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
			if observer == nil {
				return
			}
			observer.SetCircuitBreakerState(name, int(to))
			if to == gobreaker.StateOpen {
				observer.RecordCircuitBreakerTrip(name)
			}
		},
	}

	return &CircuitBreaker{
		cb:     gobreaker.NewCircuitBreaker(settings),
		name:   config.Name,
		logger: logger,
	}
}

// Execute runs fn through the breaker. Rejections are reported as ErrCircuitOpen.
func (c *CircuitBreaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := c.cb.Execute(func() (interface{}, error) {
		return nil, fn(ctx)
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		c.logger.Warn("Circuit breaker rejected call", "name", c.name, "reason", err.Error())
		return fmt.Errorf("%s: %w", c.name, ErrCircuitOpen)
	}
	return err
}

// State returns the current state of the circuit breaker
func (c *CircuitBreaker) State() gobreaker.State {
	return c.cb.State()
}

// Name returns the circuit breaker name
func (c *CircuitBreaker) Name() string {
	return c.name
}
