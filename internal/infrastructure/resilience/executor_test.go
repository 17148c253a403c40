package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
)

func TestExecuteRetriesTemporaryFailure(t *testing.T) {
	exec := NewExecutor(Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: 1 * time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2,
		BreakerEnabled:      false,
	})

	attempts := 0
	errTemp := errors.New("temporary")
	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errTemp
		}
		return nil
	}, func(err error) ErrorClassification {
		return ErrorClassification{
			Retryable:     errors.Is(err, errTemp),
			RecordFailure: true,
		}
	})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestExecuteDoesNotRetryPermanentFailure(t *testing.T) {
	exec := NewExecutor(Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: 1 * time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2,
		BreakerEnabled:      false,
	})

	attempts := 0
	errPermanent := errors.New("permanent")
	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		attempts++
		return errPermanent
	}, func(error) ErrorClassification {
		return ErrorClassification{
			Retryable:     false,
			RecordFailure: false,
		}
	})
	if !errors.Is(err, errPermanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestExecuteOpensCircuitAfterFailures(t *testing.T) {
	exec := NewExecutor(Config{
		RetryMaxAttempts:        1,
		RetryInitialBackoff:     1 * time.Millisecond,
		RetryMaxBackoff:         1 * time.Millisecond,
		RetryMultiplier:         2,
		BreakerEnabled:          true,
		BreakerMinRequests:      2,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      50 * time.Millisecond,
		BreakerHalfOpenMaxCalls: 1,
	})

	errTemp := errors.New("temporary")
	classifier := func(error) ErrorClassification {
		return ErrorClassification{
			Retryable:     false,
			RecordFailure: true,
		}
	}

	for i := 0; i < 2; i++ {
		err := exec.Execute(context.Background(), "op", func(context.Context) error {
			return errTemp
		}, classifier)
		if !errors.Is(err, errTemp) {
			t.Fatalf("expected temporary error on iteration %d, got %v", i, err)
		}
	}

	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		t.Fatalf("circuit should be open and must not call operation")
		return nil
	}, classifier)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open state error, got %v", err)
	}
}

type observerFake struct {
	retries []string
	states  []string
}

func (o *observerFake) ObserveRetry(operation string) {
	o.retries = append(o.retries, operation)
}

func (o *observerFake) ObserveBreakerState(operation, state string) {
	o.states = append(o.states, operation+":"+state)
}

func TestDoReturnsValueAndReportsRetries(t *testing.T) {
	observer := &observerFake{}
	exec := NewExecutor(Config{
		RetryMaxAttempts:    2,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     time.Millisecond,
		RetryMultiplier:     2,
		BreakerEnabled:      false,
	}, WithObserver(observer))

	attempts := 0
	got, err := Do(context.Background(), exec, "analyze", func(context.Context) (string, error) {
		attempts++
		if attempts == 1 {
			return "", errors.New("flaky")
		}
		return "ok", nil
	}, func(error) ErrorClassification {
		return ErrorClassification{Retryable: true, RecordFailure: true}
	})
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	if got != "ok" {
		t.Fatalf("expected value from second attempt, got %q", got)
	}
	if len(observer.retries) != 1 || observer.retries[0] != "analyze" {
		t.Fatalf("unexpected retries: %v", observer.retries)
	}
}

func TestDoWithoutExecutorCallsDirectly(t *testing.T) {
	got, err := Do(context.Background(), nil, "op", func(context.Context) (int, error) {
		return 7, nil
	}, nil)
	if err != nil || got != 7 {
		t.Fatalf("Do() = %d, %v", got, err)
	}
}

func TestBreakerStateChangesAreObserved(t *testing.T) {
	observer := &observerFake{}
	exec := NewExecutor(Config{
		RetryMaxAttempts:        1,
		BreakerEnabled:          true,
		BreakerMinRequests:      1,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      time.Minute,
		BreakerHalfOpenMaxCalls: 1,
	}, WithObserver(observer))

	_ = exec.Execute(context.Background(), "gemini.generate", func(context.Context) error {
		return errors.New("boom")
	}, nil)

	if len(observer.states) != 1 || observer.states[0] != "gemini.generate:open" {
		t.Fatalf("unexpected state transitions: %v", observer.states)
	}
}

func TestBackoffBudgetSumsCappedWaits(t *testing.T) {
	cfg := Config{
		RetryMaxAttempts:    4,
		RetryInitialBackoff: 100 * time.Millisecond,
		RetryMaxBackoff:     250 * time.Millisecond,
		RetryMultiplier:     2,
	}
	// Waits: 100ms, 200ms, 250ms (capped).
	if got := cfg.BackoffBudget(); got != 550*time.Millisecond {
		t.Fatalf("expected 550ms budget, got %s", got)
	}
	if got := DefaultConfig().BackoffBudget(); got != 200*time.Millisecond {
		t.Fatalf("expected default budget of one 200ms wait, got %s", got)
	}
}
