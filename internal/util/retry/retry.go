package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Config holds retry configuration.
type Config struct {
	Attempts   int           // total attempts, including the first
	Delay      time.Duration // delay before each re-attempt
	Multiplier float64       // delay growth factor; 1.0 keeps it fixed
	MaxDelay   time.Duration // cap on the grown delay
}

// Option is a functional option for retry configuration.
type Option func(*Config)

// Do executes the operation up to the configured number of attempts,
// sleeping between attempts. Context cancellation is respected while
// sleeping. Errors wrapped with Fatal() are not retried.
func Do(ctx context.Context, operation func() error, opts ...Option) error {
	cfg := &Config{
		Attempts:   5,
		Delay:      1 * time.Second,
		Multiplier: 2.0,
		MaxDelay:   30 * time.Second,
	}

	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}

	delay := cfg.Delay
	var lastErr error

	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}

		lastErr = err

		if IsFatal(err) {
			return fmt.Errorf("fatal error (not retrying): %w", err)
		}

		if attempt < cfg.Attempts {
			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled after %d attempts: %w", attempt, ctx.Err())
			case <-time.After(delay):
				delay = time.Duration(float64(delay) * cfg.Multiplier)
				if delay > cfg.MaxDelay {
					delay = cfg.MaxDelay
				}
			}
		}
	}

	return fmt.Errorf("operation failed after %d attempts: %w", cfg.Attempts, lastErr)
}

// WithAttempts sets the total attempt budget.
func WithAttempts(n int) Option {
	return func(c *Config) {
		c.Attempts = n
	}
}

// WithFixedDelay sets a constant delay between attempts.
func WithFixedDelay(d time.Duration) Option {
	return func(c *Config) {
		c.Delay = d
		c.Multiplier = 1.0
		c.MaxDelay = d
	}
}

// WithDelay sets the initial delay between attempts.
func WithDelay(d time.Duration) Option {
	return func(c *Config) {
		c.Delay = d
	}
}

// WithMultiplier sets the backoff multiplier.
func WithMultiplier(m float64) Option {
	return func(c *Config) {
		c.Multiplier = m
	}
}

// FatalError wraps an error to mark it as fatal (non-retryable).
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return e.Err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Fatal marks an error as fatal (non-retryable).
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Err: err}
}

// IsFatal checks if an error is fatal (non-retryable).
func IsFatal(err error) bool {
	var fatalErr *FatalError
	return errors.As(err, &fatalErr)
}
