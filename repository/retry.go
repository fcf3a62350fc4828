package repository

import (
	"context"
	"fmt"
	"time"

	"sophie-analyst/observability"
)

// RetryConfig bounds the attempts made while a bookmark database comes up
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

var DefaultRetryConfig = RetryConfig{
	MaxRetries:     3,
	InitialBackoff: 200 * time.Millisecond,
	MaxBackoff:     5 * time.Second,
}

// WithRetry calls fn until it succeeds, doubling the wait between attempts up to MaxBackoff
func WithRetry(ctx context.Context, config RetryConfig, op string, fn func() error) error {
	var lastErr error
	backoff := config.InitialBackoff

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%s: context cancelled during retry: %w", op, ctx.Err())
			case <-time.After(backoff):
			}

			backoff *= 2
			if backoff > config.MaxBackoff {
				backoff = config.MaxBackoff
			}
		}

		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err
		if attempt < config.MaxRetries {
			observability.Warn("retrying", "op", op, "attempt", attempt+1, "max_retries", config.MaxRetries, "error", err)
		}
	}

	return fmt.Errorf("%s failed after %d retries: %w", op, config.MaxRetries, lastErr)
}
