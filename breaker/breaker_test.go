package breaker

import (
	"errors"
	"testing"
	"time"

	"github.com/flowcraft/flowcraft/flowerr"
)

func TestCircuitBreaker_TripAndRecovery(t *testing.T) {
	var resets int
	cb := New(Config{
		MaxFailures:         2,
		ResetAfter:          200 * time.Millisecond,
		HalfOpenMaxAttempts: 1,
		OnReset:             func() { resets++ },
	})

	boom := errors.New("boom")

	// call #1: fails, Closed, failures=1
	err := cb.Execute(func() error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("call#1 error = %v, want boom", err)
	}
	if cb.State() != Closed {
		t.Fatalf("state after call#1 = %v, want Closed", cb.State())
	}

	// call #2: fails, trips to Open
	err = cb.Execute(func() error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("call#2 error = %v, want boom", err)
	}
	if cb.State() != Open {
		t.Fatalf("state after call#2 = %v, want Open", cb.State())
	}

	// call #3 immediately: rejected without invoking the producer
	var invoked bool
	err = cb.Execute(func() error { invoked = true; return nil })
	if !flowerr.IsCircuitBreakerError(err) {
		t.Fatalf("call#3 error = %v, want CircuitBreakerError", err)
	}
	if invoked {
		t.Error("call#3 invoked the producer while Open")
	}

	time.Sleep(250 * time.Millisecond)

	// call #4: enters HalfOpen, succeeds -> Closed
	err = cb.Execute(func() error { return nil })
	if err != nil {
		t.Fatalf("call#4 error = %v, want nil", err)
	}
	if cb.State() != Closed {
		t.Fatalf("state after call#4 = %v, want Closed", cb.State())
	}
	if resets != 1 {
		t.Errorf("onReset fired %d times, want 1", resets)
	}
}

func TestCircuitBreaker_ShouldTripOnErrorFalseSkipsStateChange(t *testing.T) {
	ignorable := errors.New("ignorable")
	cb := New(Config{
		MaxFailures: 1,
		ShouldTripOnError: func(err error) bool {
			return !errors.Is(err, ignorable)
		},
	})

	err := cb.Execute(func() error { return ignorable })
	if !errors.Is(err, ignorable) {
		t.Fatalf("error = %v, want ignorable", err)
	}
	if cb.State() != Closed {
		t.Errorf("state = %v, want Closed (ignorable errors must not trip)", cb.State())
	}
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	boom := errors.New("boom")
	cb := New(Config{MaxFailures: 1, ResetAfter: 30 * time.Millisecond})

	_ = cb.Execute(func() error { return boom }) // trips to Open
	time.Sleep(40 * time.Millisecond)

	_ = cb.Execute(func() error { return boom }) // HalfOpen probe fails -> Open
	if cb.State() != Open {
		t.Errorf("state = %v, want Open after failed probe", cb.State())
	}
}

func TestCircuitBreaker_Reset(t *testing.T) {
	boom := errors.New("boom")
	cb := New(Config{MaxFailures: 1})

	_ = cb.Execute(func() error { return boom })
	if cb.State() != Open {
		t.Fatal("expected Open before Reset")
	}
	cb.Reset()
	if cb.State() != Closed {
		t.Error("state after Reset() != Closed")
	}
}
