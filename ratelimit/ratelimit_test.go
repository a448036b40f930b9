package ratelimit

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/flowcraft/flowcraft/flowerr"
)

func TestWrap_ThrowsOnExceedingLimit(t *testing.T) {
	var calls int32
	wrapped := Wrap(func(ctx context.Context, args ...any) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 1, nil
	}, Config{MaxCalls: 1, Window: time.Hour, Throws: true})

	ctx := context.Background()
	if _, err := wrapped(ctx); err != nil {
		t.Fatalf("first call error = %v", err)
	}

	_, err := wrapped(ctx)
	if !flowerr.IsRateLimitError(err) {
		t.Fatalf("second call error = %v, want RateLimitError", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("producer invoked %d times, want 1", got)
	}
}

func TestWrap_AdmissionControlWaits(t *testing.T) {
	wrapped := Wrap(func(ctx context.Context, args ...any) (int, error) {
		return 1, nil
	}, Config{MaxCalls: 1, Window: 60 * time.Millisecond, Throws: false})

	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := wrapped(ctx); err != nil {
			t.Fatalf("call #%d error = %v", i, err)
		}
	}
	if time.Since(start) < 60*time.Millisecond {
		t.Error("admission control returned without waiting for refill")
	}
}

func TestWrap_OnLimitReachedInvoked(t *testing.T) {
	var invoked int32
	wrapped := Wrap(func(ctx context.Context, args ...any) (int, error) {
		return 1, nil
	}, Config{
		MaxCalls: 1, Window: time.Hour, Throws: true,
		OnLimitReached: func(err error, nextAvailable time.Duration, args []any) {
			atomic.AddInt32(&invoked, 1)
		},
	})

	ctx := context.Background()
	_, _ = wrapped(ctx)
	_, _ = wrapped(ctx)

	if got := atomic.LoadInt32(&invoked); got != 1 {
		t.Errorf("OnLimitReached invoked %d times, want 1", got)
	}
}
