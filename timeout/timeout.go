package timeout

import (
	"context"
	"time"

	"github.com/flowcraft/flowcraft/asyncutil"
	"github.com/flowcraft/flowcraft/flowerr"
	"github.com/flowcraft/flowcraft/telemetry"
)

// Config configures Timeout (spec.md §4.10).
type Config struct {
	// Timeout is the maximum duration allowed for the producer.
	Timeout time.Duration

	// OnTimeout is invoked when the deadline wins the race.
	OnTimeout func()

	// OnError is invoked when the producer loses by failing, with
	// didTimeout always false (the deadline did not win).
	OnError func(err error, didTimeout bool)

	// SuppressError, when true, makes a deadline loss return a zero
	// value with a nil error instead of flowerr.TimeoutError. Default:
	// false (a deadline loss surfaces flowerr.TimeoutError).
	SuppressError bool

	// Name identifies this Timeout instance in telemetry attributes.
	Name string

	// Provider, if set, receives a counter of deadline losses.
	Provider telemetry.Provider
}

// Timeout races a producer against a deadline.
type Timeout struct {
	config  Config
	metrics *telemetry.TimeoutMetrics
}

// New creates a Timeout, applying defaults.
func New(config Config) *Timeout {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	t := &Timeout{config: config}
	if config.Provider != nil {
		if m, err := telemetry.NewTimeoutMetrics(config.Provider.Meter()); err == nil {
			t.metrics = m
		}
	}
	return t
}

// Producer is the function type Execute races against the deadline.
type Producer[V any] func(ctx context.Context) (V, error)

// Execute runs op under a per-call deadline derived from ctx. If the
// deadline wins, ctx is cancelled (the abort-controller equivalent) and
// op's eventual result, if any, is discarded.
func Execute[V any](ctx context.Context, t *Timeout, op Producer[V]) (V, error) {
	ctx, cancel := context.WithTimeout(ctx, t.config.Timeout)
	defer cancel()

	type result struct {
		value V
		err   error
	}
	done := make(chan result, 1)

	go func() {
		v, err := op(ctx)
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		if r.err != nil && t.config.OnError != nil {
			asyncutil.GuardHook(func() { t.config.OnError(r.err, false) })
		}
		return r.value, r.err

	case <-ctx.Done():
		if t.metrics != nil {
			t.metrics.RecordTimeout(context.Background(), t.config.Name)
		}
		if t.config.OnTimeout != nil {
			asyncutil.GuardHook(t.config.OnTimeout)
		}
		var zero V
		if t.config.SuppressError {
			return zero, nil
		}
		return zero, &flowerr.TimeoutError{Timeout: t.config.Timeout}
	}
}
