package collector

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// RetryPolicy defines how transient search API failures are retried.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultRetryPolicy returns the standard policy: three attempts with
// exponential backoff delays of 1s, 2s between them.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   1 * time.Second,
	}
}

// RetryableError wraps an error to indicate the request may be retried.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// NewRetryableError marks an error as retryable.
func NewRetryableError(err error) error {
	return &RetryableError{Err: err}
}

// IsRetryable checks if an error should trigger a retry.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var retryable *RetryableError
	return errors.As(err, &retryable)
}

// Retry executes fn up to MaxAttempts times, sleeping BaseDelay*2^attempt
// between attempts. Non-retryable errors abort immediately. The backoff
// sleep honors context cancellation.
func Retry(ctx context.Context, policy RetryPolicy, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt < policy.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err

		if !IsRetryable(err) {
			return err
		}

		// No sleep after the final attempt.
		if attempt == policy.MaxAttempts-1 {
			break
		}

		backoff := policy.BaseDelay << uint(attempt)

		select {
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(backoff):
		}
	}

	return fmt.Errorf("max attempts exceeded (%d): %w", policy.MaxAttempts, lastErr)
}
