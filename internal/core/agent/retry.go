package agent

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// RetryConfig controls retry behavior for transient API failures.
type RetryConfig struct {
	// MaxRetries is the maximum number of retry attempts (0 = no retries).
	MaxRetries int
	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration
	// MaxBackoff caps the delay between retries.
	MaxBackoff time.Duration
	// Multiplier grows the backoff after each attempt.
	Multiplier float64
}

// DefaultRetryConfig returns the retry configuration used for chat requests.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     8 * time.Second,
		Multiplier:     2.0,
	}
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}

// isRetryableStatusCode reports whether an HTTP status warrants a retry:
// 5xx server errors and 429 rate limits.
func isRetryableStatusCode(code int) bool {
	return code >= 500 || code == 429
}

// retryableAPIError wraps an error with retry context.
type retryableAPIError struct {
	err        error
	statusCode int
	retryable  bool
}

func (e *retryableAPIError) Error() string {
	if e.statusCode > 0 {
		return fmt.Sprintf("API error (status %d): %v", e.statusCode, e.err)
	}
	return fmt.Sprintf("API error: %v", e.err)
}

func (e *retryableAPIError) Unwrap() error {
	return e.err
}

// executeWithRetry runs fn, retrying transient failures with exponential
// backoff. Non-retryable errors are returned immediately.
func executeWithRetry(ctx context.Context, config *RetryConfig, fn func() error) error {
	if config == nil || config.MaxRetries <= 0 {
		return fn()
	}

	var lastErr error
	backoff := config.InitialBackoff

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		var retryErr *retryableAPIError
		if !errors.As(err, &retryErr) || !retryErr.retryable {
			return err
		}
		if attempt >= config.MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		case <-time.After(backoff):
		}

		backoff = time.Duration(float64(backoff) * config.Multiplier)
		if backoff > config.MaxBackoff {
			backoff = config.MaxBackoff
		}
	}

	return fmt.Errorf("retry exhausted after %d attempts: %w", config.MaxRetries+1, lastErr)
}
