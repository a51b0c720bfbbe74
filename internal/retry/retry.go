// Package retry is the bounded-retry combinator shared by the LLM
// transport and the judge panel.
package retry

import (
	"context"
	"errors"
	"time"
)

type stopError struct{ err error }

func (e *stopError) Error() string { return e.err.Error() }
func (e *stopError) Unwrap() error { return e.err }

// Stop wraps an error so Do aborts immediately instead of retrying
// (e.g. an HTTP 4xx from the LLM service).
func Stop(err error) error {
	return &stopError{err: err}
}

// Do runs fn up to attempts times, sleeping backoff between tries and
// doubling it each time (backoff 0 disables sleeping). It returns the last
// result, how many attempts were made, and the final error (nil on
// success).
func Do[T any](ctx context.Context, attempts int, backoff time.Duration, fn func() (T, error)) (T, int, error) {
	var zero T
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		v, err := fn()
		if err == nil {
			return v, attempt, nil
		}
		var stop *stopError
		if errors.As(err, &stop) {
			return zero, attempt, stop.err
		}
		lastErr = err
		if attempt == attempts {
			break
		}
		if backoff > 0 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return zero, attempt, ctx.Err()
			}
			backoff *= 2
		}
	}
	return zero, attempts, lastErr
}
