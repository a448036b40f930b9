package throttle

import (
	"context"
	"sync"
	"time"

	"github.com/flowcraft/flowcraft/asyncutil"
	"github.com/flowcraft/flowcraft/flowerr"
	"github.com/flowcraft/flowcraft/telemetry"
)

// Producer is the function type Throttle[V] wraps.
type Producer[V any] func(args ...any) (V, error)

// OnThrottle is invoked whenever a call arrives inside the throttle
// window and is therefore served from the cached last result.
type OnThrottle func(args []any)

// Config configures Throttle[V].
type Config struct {
	// Delay is the minimum interval between producer invocations.
	Delay time.Duration

	// Throws raises flowerr.ThrottleError for throttled calls instead of
	// returning the cached last result/error.
	Throws bool

	// OnThrottle is invoked for every throttled call.
	OnThrottle OnThrottle

	// Name identifies this Throttle instance in telemetry attributes.
	Name string

	// Provider, if set, receives a skip counter for throttled calls.
	Provider telemetry.Provider
}

// Throttle is a leading-edge throttle: the first call in a window
// invokes the producer; subsequent calls within Delay are served from
// the cached outcome (spec.md §4.11).
type Throttle[V any] struct {
	producer Producer[V]
	config   Config

	mu           sync.Mutex
	lastCalledAt time.Time
	called       bool
	lastResult   V
	lastErr      error

	metrics *telemetry.SkipMetrics
}

// New wraps producer with leading-edge throttling.
func New[V any](producer Producer[V], config Config) *Throttle[V] {
	t := &Throttle[V]{producer: producer, config: config}
	if config.Provider != nil {
		if m, err := telemetry.NewSkipMetrics(config.Provider.Meter()); err == nil {
			t.metrics = m
		}
	}
	return t
}

// Call invokes the throttle (spec.md §4.11).
func (t *Throttle[V]) Call(args ...any) (V, error) {
	t.mu.Lock()

	now := time.Now()
	if !t.called || now.Sub(t.lastCalledAt) >= t.config.Delay {
		t.called = true
		t.lastCalledAt = now
		t.mu.Unlock()

		value, err := t.producer(args...)

		t.mu.Lock()
		t.lastResult = value
		t.lastErr = err
		t.mu.Unlock()
		return value, err
	}

	lastResult, lastErr := t.lastResult, t.lastErr
	t.mu.Unlock()

	if t.metrics != nil {
		t.metrics.RecordSkip(context.Background(), "throttle", t.config.Name)
	}
	if t.config.OnThrottle != nil {
		asyncutil.GuardHook(func() { t.config.OnThrottle(args) })
	}

	if t.config.Throws {
		var zero V
		return zero, &flowerr.ThrottleError{}
	}
	return lastResult, lastErr
}

// Cancel clears the throttle's stored state so the next call always
// invokes the producer.
func (t *Throttle[V]) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.called = false
	var zero V
	t.lastResult = zero
	t.lastErr = nil
}
