// Package retry provides exponential backoff for the sign-in dial.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// ── Permanent errors ─────────────────────────────────────────────────

// PermanentError marks an error that retrying will not fix.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err so [Backoff.Do] returns it without retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err has been marked as permanent.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// ── Backoff ──────────────────────────────────────────────────────────

// Backoff implements exponential backoff with optional jitter.
type Backoff struct {
	InitialDelay time.Duration // default 1s
	MaxDelay     time.Duration // default 60s
	Multiplier   float64       // default 2.0

	// MaxAttempts counts the first try.  0 retries until ctx is done.
	MaxAttempts int

	// Jitter spreads each wait by ±25%.
	Jitter bool

	// Retryable filters which errors earn another attempt.  nil means
	// every non-permanent error does.
	Retryable func(error) bool

	// OnRetry runs before each wait.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// DefaultBackoff returns a reasonable default configuration.
func DefaultBackoff() *Backoff {
	return &Backoff{
		InitialDelay: time.Second,
		MaxDelay:     60 * time.Second,
		Multiplier:   2.0,
		MaxAttempts:  10,
		Jitter:       true,
	}
}

// Attempts returns DefaultBackoff bounded to n tries. A zero initial
// or max keeps the default delay.
func Attempts(n int, initial, max time.Duration) *Backoff {
	b := DefaultBackoff()
	b.MaxAttempts = n
	if initial > 0 {
		b.InitialDelay = initial
	}
	if max > 0 {
		b.MaxDelay = max
	}
	return b
}

// Do calls fn until it succeeds, returns a permanent or non-retryable
// error, or the attempt budget or ctx runs out.  attempt is 1-based.
func (b *Backoff) Do(ctx context.Context, fn func(attempt int) error) error {
	delay := b.InitialDelay
	if delay <= 0 {
		delay = time.Second
	}
	multiplier := b.Multiplier
	if multiplier <= 0 {
		multiplier = 2.0
	}
	maxDelay := b.MaxDelay
	if maxDelay <= 0 {
		maxDelay = 60 * time.Second
	}

	for attempt := 1; ; attempt++ {
		err := fn(attempt)
		if err == nil {
			return nil
		}
		if IsPermanent(err) {
			return errors.Unwrap(err)
		}
		if b.Retryable != nil && !b.Retryable(err) {
			return err
		}
		if b.MaxAttempts > 0 && attempt >= b.MaxAttempts {
			if b.MaxAttempts == 1 {
				return err
			}
			return fmt.Errorf("gave up after %d attempts: %w", b.MaxAttempts, err)
		}

		wait := delay
		if b.Jitter {
			wait = addJitter(delay)
		}
		if b.OnRetry != nil {
			b.OnRetry(attempt, err, wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry cancelled: %w", errors.Join(ctx.Err(), err))
		case <-timer.C:
		}

		delay = time.Duration(math.Min(float64(delay)*multiplier, float64(maxDelay)))
	}
}

// addJitter adds ±25% randomisation to a duration.
func addJitter(d time.Duration) time.Duration {
	quarter := float64(d) * 0.25
	delta := rand.Float64()*2*quarter - quarter
	return time.Duration(math.Max(float64(d)+delta, float64(time.Millisecond)))
}
