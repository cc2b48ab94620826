package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig() Config {
	return Config{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"timeout", errors.New("request timeout"), true},
		{"refused", errors.New("dial tcp: connection refused"), true},
		{"reset", errors.New("connection reset by peer"), true},
		{"unavailable", errors.New("service unavailable"), true},
		{"rate limited", errors.New("HTTP 429 too many requests"), true},
		{"validation", errors.New("qvm returned malformed measurement"), false},
		{"unknown algorithm", errors.New("unknown algorithm \"shor\""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestDoSucceedsAfterRetry(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), fastConfig(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("timeout")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	attempts := 0
	permanent := errors.New("malformed program")
	err := Do(context.Background(), fastConfig(), func() error {
		attempts++
		return permanent
	})

	if !errors.Is(err, permanent) {
		t.Errorf("err = %v, want %v", err, permanent)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestDoExhaustsAttempts(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), fastConfig(), func() error {
		attempts++
		return errors.New("timeout")
	})

	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestDoRespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, fastConfig(), func() error {
		return errors.New("timeout")
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestDoWithResult(t *testing.T) {
	attempts := 0
	got, err := DoWithResult(context.Background(), fastConfig(), func() (string, error) {
		attempts++
		if attempts < 2 {
			return "", errors.New("busy")
		}
		return "1011", nil
	})

	if err != nil {
		t.Fatalf("DoWithResult failed: %v", err)
	}
	if got != "1011" {
		t.Errorf("result = %q, want %q", got, "1011")
	}
}

func TestCircuitBreaker(t *testing.T) {
	cb := NewCircuitBreaker(2, 10*time.Millisecond)

	if !cb.Allow() {
		t.Fatal("fresh breaker should allow")
	}

	cb.RecordFailure()
	if cb.IsOpen() {
		t.Error("breaker should stay closed below threshold")
	}
	cb.RecordFailure()
	if !cb.IsOpen() {
		t.Error("breaker should open at threshold")
	}
	if cb.Allow() {
		t.Error("open breaker should not allow")
	}

	time.Sleep(15 * time.Millisecond)
	if !cb.Allow() {
		t.Error("breaker should half-open after the reset window")
	}

	cb.RecordFailure()
	cb.RecordFailure()
	cb.RecordSuccess()
	if cb.IsOpen() {
		t.Error("success should close the breaker")
	}
}
