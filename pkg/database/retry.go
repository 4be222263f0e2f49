package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"
)

// RetryPolicy describes a bounded exponential backoff used while dependencies
// come up at startup.
type RetryPolicy struct {
	Attempts int
	BaseWait time.Duration
	// Jitter is the fraction of each wait that is randomized in both directions.
	Jitter float64
}

// DefaultRetryPolicy waits roughly 1s then 2s between three attempts.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, BaseWait: time.Second, Jitter: 0.25}
}

// Backoff returns the wait after the given zero-based attempt.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	attempt = max(attempt, 0)
	base := p.BaseWait << attempt
	if p.Jitter <= 0 {
		return base
	}
	spread := float64(base) * p.Jitter * (2*rand.Float64() - 1) // #nosec G404 -- jitter only
	return base + time.Duration(spread)
}

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent marks err so that Do returns it without further attempts.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

// Do calls fn until it succeeds, returns a Permanent error, the attempts are
// used up, or ctx ends. what names the operation in logs and errors.
func (p RetryPolicy) Do(ctx context.Context, logger *slog.Logger, what string, fn func(context.Context) error) error {
	attempts := max(p.Attempts, 1)

	var err error
	for attempt := range attempts {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s: %w", what, ctxErr)
		}

		if err = fn(ctx); err == nil {
			return nil
		}
		var perm permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		if attempt == attempts-1 {
			break
		}

		wait := p.Backoff(attempt)
		if logger != nil {
			logger.Warn(what+" failed, retrying",
				slog.Int("attempt", attempt+1),
				slog.Int("max_attempts", attempts),
				slog.Duration("backoff", wait),
				slog.String("error", err.Error()),
			)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%s: canceled while retrying: %w", what, ctx.Err())
		case <-timer.C:
		}
	}

	return fmt.Errorf("%s after %d attempts: %w", what, attempts, err)
}
