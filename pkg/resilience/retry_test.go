package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("broker unavailable")

func fastRetry(maxAttempts int) *RetryConfig {
	return &RetryConfig{
		MaxAttempts:   maxAttempts,
		InitialDelay:  time.Millisecond,
		MaxDelay:      2 * time.Millisecond,
		BackoffFactor: 2,
	}
}

func TestRetry(t *testing.T) {
	errPermanent := errors.New("bad payload")

	tests := []struct {
		name        string
		maxAttempts int
		failFirst   int
		failWith    error
		retryable   func(error) bool
		wantCalls   int
		wantErr     error
	}{
		{name: "first attempt succeeds", maxAttempts: 3, wantCalls: 1},
		{name: "succeeds on last attempt", maxAttempts: 3, failFirst: 2, failWith: errTransient, wantCalls: 3},
		{name: "gives up after max attempts", maxAttempts: 3, failFirst: 10, failWith: errTransient, wantCalls: 3, wantErr: errTransient},
		{name: "single attempt", maxAttempts: 1, failFirst: 10, failWith: errTransient, wantCalls: 1, wantErr: errTransient},
		{
			name:        "non-retryable stops at once",
			maxAttempts: 5,
			failFirst:   10,
			failWith:    errPermanent,
			retryable:   func(err error) bool { return !errors.Is(err, errPermanent) },
			wantCalls:   1,
			wantErr:     errPermanent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := fastRetry(tt.maxAttempts)
			config.Retryable = tt.retryable

			calls := 0
			err := Retry(context.Background(), config, func() error {
				calls++
				if calls <= tt.failFirst {
					return tt.failWith
				}
				return nil
			})

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRetry_ExhaustedErrorNamesAttempts(t *testing.T) {
	err := Retry(context.Background(), fastRetry(2), func() error { return errTransient })

	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries (2) exceeded")
}

func TestRetry_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Retry(ctx, fastRetry(3), func() error {
		calls++
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestRetry_CancelDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	config := &RetryConfig{MaxAttempts: 5, InitialDelay: time.Hour, MaxDelay: time.Hour, BackoffFactor: 1}

	calls := 0
	err := Retry(ctx, config, func() error {
		calls++
		cancel()
		return errTransient
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
