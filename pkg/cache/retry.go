package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable reports that a remote cache backend could not be reached.
var ErrUnavailable = errors.New("cache backend unavailable")

type transientError struct{ err error }

func (e transientError) Error() string { return e.err.Error() }
func (e transientError) Unwrap() error { return e.err }

// Transient marks err as worth retrying. It returns nil for a nil error.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return transientError{err: err}
}

// IsTransient reports whether err was marked with [Transient].
func IsTransient(err error) bool {
	var te transientError
	return errors.As(err, &te)
}

// Backoff retries an operation with exponentially growing pauses.
type Backoff struct {
	Attempts int
	Delay    time.Duration // pause before the second attempt, doubled after each
}

// DefaultBackoff is used when connecting to redis.
var DefaultBackoff = Backoff{Attempts: 3, Delay: time.Second}

// Do calls fn until it succeeds, returns an error not marked [Transient],
// the attempts are used up or ctx is done.
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	delay := b.Delay
	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil || !IsTransient(err) || attempt >= b.Attempts {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
}
