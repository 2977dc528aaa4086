// Package resilience wraps document capture calls with bounded retry and a
// circuit breaker. A dead browser should fail the remaining batch items
// fast instead of burning a full timeout on each one.
package resilience

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/sony/gobreaker"
)

// Config holds resilience parameters.
type Config struct {
	MaxRetries     int
	InitialBackoff time.Duration
}

// RetryWithBackoff executes fn with exponential backoff + jitter.
// It respects context cancellation and returns the number of attempts made.
func RetryWithBackoff(ctx context.Context, cfg Config, fn func(ctx context.Context) error) (int, error) {
	var lastErr error
	attempts := 0

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return attempts, lastErr
			}
			return attempts, err
		}

		attempts++
		lastErr = fn(ctx)
		if lastErr == nil {
			return attempts, nil
		}
		if !Retryable(lastErr) {
			return attempts, lastErr
		}

		if attempt < cfg.MaxRetries {
			select {
			case <-ctx.Done():
				return attempts, lastErr
			case <-time.After(backoff(cfg.InitialBackoff, attempt)):
			}
		}
	}
	return attempts, lastErr
}

func backoff(initial time.Duration, attempt int) time.Duration {
	base := time.Duration(math.Pow(2, float64(attempt))) * initial
	if base <= 1 {
		return base
	}
	return base + time.Duration(rand.Int63n(int64(base/2)+1))
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Retryable reports whether err may succeed on another attempt. An open
// breaker and permanent errors are final.
func Retryable(err error) bool {
	var perm *permanentError
	if errors.As(err, &perm) {
		return false
	}
	return !errors.Is(err, gobreaker.ErrOpenState) && !errors.Is(err, gobreaker.ErrTooManyRequests)
}

// NewCircuitBreaker creates the breaker that guards document capture.
// It trips after three consecutive failures and probes again after timeout.
func NewCircuitBreaker(name string, timeout time.Duration) *gobreaker.CircuitBreaker {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
}

// Guard runs fn through the breaker when one is configured, then retries
// according to cfg. A nil breaker runs fn directly.
func Guard(ctx context.Context, cb *gobreaker.CircuitBreaker, cfg Config, fn func(ctx context.Context) ([]byte, error)) ([]byte, int, error) {
	var out []byte

	attempts, err := RetryWithBackoff(ctx, cfg, func(ctx context.Context) error {
		if cb == nil {
			data, err := fn(ctx)
			if err != nil {
				return err
			}
			out = data
			return nil
		}

		result, err := cb.Execute(func() (interface{}, error) {
			return fn(ctx)
		})
		if err != nil {
			return err
		}
		out, _ = result.([]byte)
		return nil
	})

	return out, attempts, err
}
