package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errTransient = errors.New("transient")
var errPermanent = errors.New("permanent")

func alwaysRetryable(err error) bool { return errors.Is(err, errTransient) }

func testPolicy(maxAttempts int) Policy {
	return Policy{
		MinDelay:    time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
		MaxAttempts: maxAttempts,
		Classifier:  ClassifierFunc(alwaysRetryable),
	}
}

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	v, err := Do(context.Background(), testPolicy(5), func(ctx context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errTransient
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 42 {
		t.Fatalf("expected 42, got %d", v)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestDoStopsAtMaxAttempts(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), testPolicy(3), func(ctx context.Context) (int, error) {
		calls++
		return 0, errTransient
	})
	if err == nil {
		t.Fatalf("expected error after exhausting attempts")
	}
	if calls != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", calls)
	}
}

func TestDoDoesNotRetryNonRetryableError(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), testPolicy(5), func(ctx context.Context) (int, error) {
		calls++
		return 0, errPermanent
	})
	if !errors.Is(err, errPermanent) {
		t.Fatalf("expected errPermanent, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected exactly 1 attempt for non-retryable error, got %d", calls)
	}
}

func TestDoAbortsOnCancellationWithoutRetrying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := Do(ctx, testPolicy(5), func(ctx context.Context) (int, error) {
		calls++
		return 0, errTransient
	})
	if err == nil {
		t.Fatalf("expected error on cancelled context")
	}
	if calls != 1 {
		t.Fatalf("expected exactly 1 attempt on cancellation, got %d", calls)
	}
}
