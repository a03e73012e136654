package util

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestBreaker(threshold int, resetTimeout time.Duration, healthFn HealthCheckFunction) *CircuitBreaker {
	return NewCircuitBreaker(threshold, resetTimeout, time.Hour, healthFn, zap.NewNop())
}

func TestBreakerOpensAtThreshold(t *testing.T) {
	cb := newTestBreaker(3, time.Hour, nil)

	for i := 0; i < 2; i++ {
		cb.RecordFailure(0)
		if !cb.CanExecute() {
			t.Fatalf("breaker opened after %d failures", i+1)
		}
	}

	cb.RecordFailure(0)
	if cb.CanExecute() {
		t.Fatal("breaker still closed at threshold")
	}
	if cb.GetState() != CircuitStateOpen {
		t.Fatalf("state %s", cb.GetState())
	}
}

func TestBreakerHalfOpensAfterTimeout(t *testing.T) {
	cb := newTestBreaker(1, 10*time.Millisecond, nil)

	cb.RecordFailure(0)
	if cb.CanExecute() {
		t.Fatal("breaker must be open immediately after tripping")
	}

	time.Sleep(20 * time.Millisecond)
	if !cb.CanExecute() {
		t.Fatal("breaker must allow a probe after the reset timeout")
	}

	cb.RecordSuccess()
	if cb.GetState() != CircuitStateClosed {
		t.Fatalf("state %s after successful probe", cb.GetState())
	}
}

func TestBreakerCustomTimeoutExtendsOpenWindow(t *testing.T) {
	cb := newTestBreaker(1, 10*time.Millisecond, nil)

	// Rate-limit style failures hold the circuit open past the normal reset
	// timeout.
	cb.RecordFailure(time.Hour)

	time.Sleep(20 * time.Millisecond)
	if cb.CanExecute() {
		t.Fatal("custom timeout ignored")
	}
}

func TestBreakerResetClosesImmediately(t *testing.T) {
	cb := newTestBreaker(1, time.Hour, nil)

	cb.RecordFailure(0)
	cb.Reset()

	if !cb.CanExecute() {
		t.Fatal("reset breaker must execute")
	}
	status := cb.GetStatus()
	if status.FailureCount != 0 {
		t.Fatalf("failure count %d after reset", status.FailureCount)
	}
}
