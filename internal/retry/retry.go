// Package retry provides the backoff policies used by the connection manager
// and the CLI.
//
// Two shapes are supported. A Table is an ordered list of delays indexed by
// the number of consecutive failures and clamped at its last entry; the
// connection manager schedules reconnects from one. Do is a bounded retry
// loop with exponential backoff for one-shot operations such as waiting for
// a session to come online.
//
// # Backoff Table
//
//	table := retry.Table{time.Second, 2 * time.Second, 5 * time.Second, 10 * time.Second}
//	table.Delay(0) // 1s
//	table.Delay(7) // 10s
//
// # Context Cancellation
//
// Do respects context cancellation. If the context is canceled during a
// backoff period, the loop exits immediately with the context error.
package retry

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Config defines the retry behavior for exponential backoff operations.
//
// The zero value is not usable; MaxRetries and InitialBackoff must be set.
type Config struct {
	// MaxRetries is the maximum number of attempts. Must be greater than 0.
	MaxRetries int

	// InitialBackoff is the base backoff duration; attempt n waits
	// InitialBackoff * 2^(n-1). Must be greater than 0.
	InitialBackoff time.Duration

	// MaxBackoff caps the backoff duration. Zero means no cap.
	MaxBackoff time.Duration

	// Jitter adds a linearly growing fraction of the backoff (0.0 to 1.0):
	//   jitter_amount = backoff * Jitter * attempt / MaxRetries
	Jitter float64
}

// ShouldRetryFunc reports whether an error should trigger another attempt.
// A nil ShouldRetryFunc retries every error.
type ShouldRetryFunc func(error) bool

// Do executes fn until it succeeds, returns a non-retryable error, the
// context is done, or cfg.MaxRetries attempts have been made. The last
// error is wrapped when attempts are exhausted.
func Do(ctx context.Context, cfg Config, fn func() error, shouldRetry ShouldRetryFunc) error {
	var lastErr error

	for attempt := 0; attempt < cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := calculateBackoff(cfg, attempt)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		err := fn()
		if err == nil {
			return nil
		}

		if shouldRetry != nil && !shouldRetry(err) {
			return err
		}

		lastErr = err
	}

	return fmt.Errorf("failed after %d retries: %w", cfg.MaxRetries, lastErr)
}

// calculateBackoff computes the backoff for a 1-based attempt:
// InitialBackoff * 2^(attempt-1), capped at MaxBackoff, plus jitter.
func calculateBackoff(cfg Config, attempt int) time.Duration {
	multiplier := math.Pow(2, float64(attempt-1))
	backoff := time.Duration(multiplier * float64(cfg.InitialBackoff))

	if cfg.MaxBackoff > 0 && backoff > cfg.MaxBackoff {
		backoff = cfg.MaxBackoff
	}

	if cfg.Jitter > 0 {
		jitterAmount := float64(backoff) * cfg.Jitter * float64(attempt) / float64(cfg.MaxRetries)
		backoff += time.Duration(jitterAmount)
	}

	return backoff
}
