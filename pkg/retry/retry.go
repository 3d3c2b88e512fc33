// Package retry wraps an outbound call with exponential-jitter backoff,
// classifying failures through a pluggable Classifier so this package never
// needs to know what "retryable" means for any particular transport.
package retry

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Classifier decides whether an error returned by the wrapped operation
// should be retried. HTTP-specific rules (status 429, 5xx, timeouts,
// network errors) live in the caller (see pkg/crm), not here.
type Classifier interface {
	Retryable(err error) bool
}

// ClassifierFunc adapts a plain function to a Classifier.
type ClassifierFunc func(err error) bool

func (f ClassifierFunc) Retryable(err error) bool { return f(err) }

// Policy is the exponential-jitter backoff schedule from C3: initial delay,
// max delay, and a bounded attempt count.
type Policy struct {
	MinDelay    time.Duration
	MaxDelay    time.Duration
	MaxAttempts int
	Classifier  Classifier
	Logger      *slog.Logger
}

// Do runs op under the policy's backoff schedule. Cancellation of ctx aborts
// immediately and is never itself treated as a retry trigger. On exhaustion
// the last error is returned to the caller unchanged.
func Do[T any](ctx context.Context, policy Policy, op func(ctx context.Context) (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = policy.MinDelay
	b.MaxInterval = policy.MaxDelay
	b.RandomizationFactor = 0.5

	attempt := 0
	wrapped := func() (T, error) {
		attempt++
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		if ctx.Err() != nil {
			// The outer operation was cancelled; surface it as-is, not as a
			// retry exhaustion.
			return v, backoff.Permanent(ctx.Err())
		}
		if !policy.Classifier.Retryable(err) {
			return v, backoff.Permanent(err)
		}
		if policy.Logger != nil {
			policy.Logger.Warn("retrying outbound call",
				"attempt", attempt, "max_attempts", policy.MaxAttempts, "error", err)
		}
		return v, err
	}

	maxTries := policy.MaxAttempts
	if maxTries <= 0 {
		maxTries = 1
	}

	v, err := backoff.Retry(ctx, wrapped,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(maxTries)),
	)
	if err == nil {
		return v, nil
	}

	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		return v, perm.Unwrap()
	}
	return v, err
}
