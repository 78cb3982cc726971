package tilecache

import (
	"context"
	stderrors "errors"
	"time"
)

// retryableError wraps a transient redis failure so RetryWithBackoff knows
// to retry it. Decode failures (corrupt JSON, a bad coordinate-system
// string) are never wrapped: retrying a malformed record from the same
// store just reads the same malformed bytes again.
type retryableError struct{ err error }

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

func retryable(err error) error {
	if err == nil {
		return nil
	}
	return &retryableError{err: err}
}

func isRetryable(err error) bool {
	return stderrors.As(err, new(*retryableError))
}

// retryWithBackoff retries fn up to 3 times with exponential backoff
// starting at 1 second, but only for errors wrapped with retryable — a
// redis connection blip during a long region job is worth waiting out,
// an unrecoverable decode error is not.
func retryWithBackoff(ctx context.Context, fn func() error) error {
	const attempts = 3
	delay := time.Second
	var lastErr error

	for i := 0; i < attempts; i++ {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !isRetryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}
