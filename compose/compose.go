package compose

import (
	"context"

	"github.com/flowcraft/flowcraft/breaker"
	"github.com/flowcraft/flowcraft/bulkhead"
	"github.com/flowcraft/flowcraft/flight"
	"github.com/flowcraft/flowcraft/ratelimit"
	"github.com/flowcraft/flowcraft/retry"
	"github.com/flowcraft/flowcraft/serialize"
	"github.com/flowcraft/flowcraft/timeout"
)

// Producer is the function type Compose wraps; it matches
// memoize.Producer's shape so a composed chain can feed directly into a
// Memoized[V] or be called on its own.
type Producer[V any] func(ctx context.Context, args ...any) (V, error)

// Layer wraps a Producer[V] with one policy.
type Layer[V any] func(Producer[V]) Producer[V]

// Step pairs a Kind with the Layer that implements it, so Compose can
// enforce the double-wrap guard per kind.
type Step[V any] struct {
	Kind  Kind
	Layer Layer[V]
}

// RateLimitLayer builds a Step wrapping the producer with rate limiting.
func RateLimitLayer[V any](config ratelimit.Config) Step[V] {
	return Step[V]{Kind: RateLimit, Layer: func(p Producer[V]) Producer[V] {
		return ratelimit.Wrap[V](p, config)
	}}
}

// CircuitBreakerLayer builds a Step wrapping the producer with a circuit
// breaker. cb is shared across calls, as with the other wrapper packages.
func CircuitBreakerLayer[V any](cb *breaker.CircuitBreaker) Step[V] {
	return Step[V]{Kind: CircuitBreaker, Layer: func(p Producer[V]) Producer[V] {
		return func(ctx context.Context, args ...any) (V, error) {
			var zero V
			if err := cb.Allow(); err != nil {
				return zero, err
			}
			v, err := p(ctx, args...)
			cb.Settle(err)
			return v, err
		}
	}}
}

// RetryLayer builds a Step wrapping the producer with bounded retry.
func RetryLayer[V any](r *retry.Retry) Step[V] {
	return Step[V]{Kind: Retry, Layer: func(p Producer[V]) Producer[V] {
		return func(ctx context.Context, args ...any) (V, error) {
			var result V
			err := r.Execute(ctx, func(ctx context.Context) error {
				v, err := p(ctx, args...)
				result = v
				return err
			})
			return result, err
		}
	}}
}

// TimeoutLayer builds a Step wrapping the producer with a per-call
// deadline.
func TimeoutLayer[V any](t *timeout.Timeout) Step[V] {
	return Step[V]{Kind: WithTimeout, Layer: func(p Producer[V]) Producer[V] {
		return func(ctx context.Context, args ...any) (V, error) {
			return timeout.Execute(ctx, t, func(ctx context.Context) (V, error) {
				return p(ctx, args...)
			})
		}
	}}
}

// InflightLayer builds a Step wrapping the producer with single-flight
// deduplication only (no caching), keyed by serialized args.
func InflightLayer[V any](group *flight.Group[V]) Step[V] {
	return Step[V]{Kind: Inflight, Layer: func(p Producer[V]) Producer[V] {
		return func(ctx context.Context, args ...any) (V, error) {
			key := serialize.Serialize(args...)
			v, _, err := group.Do(key, func() (V, error) { return p(ctx, args...) })
			return v, err
		}
	}}
}

// BulkheadLayer builds a Step wrapping the producer with a concurrency
// limiter (SPEC_FULL.md §9 ADDED kind).
func BulkheadLayer[V any](b *bulkhead.Bulkhead) Step[V] {
	return Step[V]{Kind: Bulkhead, Layer: func(p Producer[V]) Producer[V] {
		return func(ctx context.Context, args ...any) (V, error) {
			return bulkhead.Execute(ctx, b, func(ctx context.Context) (V, error) {
				return p(ctx, args...)
			})
		}
	}}
}

// Compose layers steps over producer in declaration order — the first
// step is innermost (runs closest to producer), each subsequent step
// wraps the previous — using the DefaultRegistry to reject double-wraps.
func Compose[V any](producer Producer[V], steps ...Step[V]) (Producer[V], error) {
	return ComposeWithRegistry(DefaultRegistry, producer, steps...)
}

// ComposeWithRegistry is Compose parameterized over an explicit Registry,
// letting callers isolate wrap-tracking (e.g. per test).
func ComposeWithRegistry[V any](registry *Registry, producer Producer[V], steps ...Step[V]) (Producer[V], error) {
	identity := producerIdentity(producer)

	wrapped := producer
	marked := make([]Kind, 0, len(steps))
	for _, step := range steps {
		if err := registry.checkAndMark(identity, step.Kind); err != nil {
			registry.mu.Lock()
			for _, k := range marked {
				delete(registry.applied[identity], k)
			}
			registry.mu.Unlock()
			return nil, err
		}
		marked = append(marked, step.Kind)
		wrapped = step.Layer(wrapped)
	}
	return wrapped, nil
}
