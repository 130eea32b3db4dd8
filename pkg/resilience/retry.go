package resilience

import (
	"context"
	"fmt"
	"time"
)

// Retry defaults
const (
	DefaultRetryMaxAttempts   = 3
	DefaultRetryInitialDelay  = 100 * time.Millisecond
	DefaultRetryMaxDelay      = 5 * time.Second
	DefaultRetryBackoffFactor = 2.0
)

// RetryConfig controls exponential backoff
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	// Retryable decides whether an error is worth another attempt. nil retries everything.
	Retryable func(error) bool
}

// DefaultRetryConfig returns the default backoff
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:   DefaultRetryMaxAttempts,
		InitialDelay:  DefaultRetryInitialDelay,
		MaxDelay:      DefaultRetryMaxDelay,
		BackoffFactor: DefaultRetryBackoffFactor,
	}
}

// Retry executes fn until it succeeds, the attempts run out, or ctx ends.
func Retry(ctx context.Context, config *RetryConfig, fn func() error) error {
	var lastErr error
	delay := config.InitialDelay

	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if config.Retryable != nil && !config.Retryable(err) {
			return err
		}

		if attempt == config.MaxAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = time.Duration(float64(delay) * config.BackoffFactor)
		if delay > config.MaxDelay {
			delay = config.MaxDelay
		}
	}

	return fmt.Errorf("max retries (%d) exceeded: %w", config.MaxAttempts, lastErr)
}
