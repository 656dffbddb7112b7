package engine

import (
	"context"
	"errors"
	"time"
)

// transientError marks a failure worth retrying, such as a browser that is
// still starting or a script fetch that hit the network.
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// transient wraps err so that [retry] attempts the operation again.
func transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err}
}

// retry runs fn up to attempts times, doubling delay after each transient
// failure. Other errors are returned immediately.
func retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !errors.As(err, new(*transientError)) {
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
