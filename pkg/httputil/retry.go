package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError wraps an error to indicate it should trigger a retry.
// Wrap transient failures (network timeouts, 5xx responses, rate limits)
// with this type so that [Retry] knows to attempt the operation again.
//
// After, when positive, is the server's requested wait and replaces the
// exponential delay for that attempt.
type RetryableError struct {
	Err   error
	After time.Duration
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err as a [RetryableError] with no wait hint.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// RetryAfter wraps err as a [RetryableError] carrying a wait hint.
func RetryAfter(err error, after time.Duration) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err, After: after}
}

// Policy bounds retries of a single operation.
type Policy struct {
	Attempts int           // total tries, including the first
	Base     time.Duration // first exponential delay
	Max      time.Duration // cap on any single wait, hinted or not
}

// DefaultPolicy is 3 attempts starting at one second, capped at one minute.
var DefaultPolicy = Policy{Attempts: 3, Base: time.Second, Max: time.Minute}

// Delay returns the wait before attempt i+1 (i counts from zero) given the
// last error's hint.
func (p Policy) Delay(i int, hint time.Duration) time.Duration {
	d := hint
	if d <= 0 {
		d = p.Base
		for range min(i, 32) {
			d *= 2
			if p.Max > 0 && d >= p.Max {
				break
			}
		}
	}
	if p.Max > 0 && d > p.Max {
		d = p.Max
	}
	return d
}

// Do executes fn until it succeeds, returns a non-retryable error, or the
// policy's attempts are exhausted. Returns the last error if all attempts
// fail, or ctx.Err() if cancelled while waiting.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := max(p.Attempts, 1)
	var lastErr error

	for i := range attempts {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		var re *RetryableError
		if !errors.As(err, &re) {
			return err
		}
		if i == attempts-1 {
			break
		}

		t := time.NewTimer(p.Delay(i, re.After))
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return lastErr
}

// RetryWithBackoff is [DefaultPolicy].Do.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return DefaultPolicy.Do(ctx, fn)
}

// IsRetryable reports whether err is wrapped in a [RetryableError].
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}
