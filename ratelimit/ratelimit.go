package ratelimit

import (
	"context"
	"time"

	"github.com/flowcraft/flowcraft/asyncutil"
	"github.com/flowcraft/flowcraft/bucket"
	"github.com/flowcraft/flowcraft/flowerr"
	"github.com/flowcraft/flowcraft/telemetry"
)

// Producer is the function type Wrap accepts and returns.
type Producer[V any] func(ctx context.Context, args ...any) (V, error)

// OnLimitReached is invoked whenever a call is denied or delayed by the
// limiter, before any error is raised.
type OnLimitReached func(err error, nextAvailable time.Duration, args []any)

// Config configures Wrap.
type Config struct {
	// MaxCalls is the number of calls allowed per Window.
	MaxCalls int

	// Window is the period over which MaxCalls applies.
	Window time.Duration

	// Throws selects rejection (true) over admission-control waiting
	// (false, the default) when the limit is exceeded.
	Throws bool

	// OnLimitReached is invoked on every denial or delay.
	OnLimitReached OnLimitReached

	// JitterFactor adds jitter to admission-control waits, spreading out
	// retries from synchronized callers.
	JitterFactor float64

	// Name identifies this limiter instance in telemetry attributes.
	Name string

	// Provider, if set, receives wait-time histograms and rejection
	// counters via the underlying bucket.Bucket.
	Provider telemetry.Provider
}

// Wrap layers rate limiting over producer (spec.md §4.7).
func Wrap[V any](producer Producer[V], config Config) Producer[V] {
	if config.MaxCalls <= 0 {
		config.MaxCalls = 1
	}
	if config.Window <= 0 {
		config.Window = time.Second
	}

	b := bucket.New(bucket.Config{
		Capacity:       float64(config.MaxCalls),
		RefillInterval: config.Window / time.Duration(config.MaxCalls),
		Name:           config.Name,
		Provider:       config.Provider,
	})

	notify := func(wait time.Duration, args []any) {
		if config.OnLimitReached == nil {
			return
		}
		rlErr := &flowerr.RateLimitError{MaxCalls: config.MaxCalls}
		asyncutil.GuardHook(func() { config.OnLimitReached(rlErr, wait, args) })
	}

	return func(ctx context.Context, args ...any) (V, error) {
		if config.Throws {
			if !b.Consume(1) {
				notify(b.WaitTime(1), args)
				var zero V
				return zero, &flowerr.RateLimitError{MaxCalls: config.MaxCalls}
			}
			return producer(ctx, args...)
		}

		err := b.WaitAndConsume(ctx, 1, bucket.WaitOptions{
			JitterFactor: config.JitterFactor,
			OnRateLimit: func(wait time.Duration) { notify(wait, args) },
		})
		if err != nil {
			var zero V
			return zero, err
		}
		return producer(ctx, args...)
	}
}
