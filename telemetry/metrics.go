package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// CacheMetrics records memoize cache hit/miss/eviction counters.
type CacheMetrics struct {
	hits      metric.Int64Counter
	misses    metric.Int64Counter
	evictions metric.Int64Counter
}

// NewCacheMetrics builds CacheMetrics from meter.
func NewCacheMetrics(meter metric.Meter) (*CacheMetrics, error) {
	hits, err := meter.Int64Counter("flowcraft.memoize.hits", metric.WithDescription("cache hits"))
	if err != nil {
		return nil, err
	}
	misses, err := meter.Int64Counter("flowcraft.memoize.misses", metric.WithDescription("cache misses"))
	if err != nil {
		return nil, err
	}
	evictions, err := meter.Int64Counter("flowcraft.memoize.evictions", metric.WithDescription("cache evictions"))
	if err != nil {
		return nil, err
	}
	return &CacheMetrics{hits: hits, misses: misses, evictions: evictions}, nil
}

func (m *CacheMetrics) RecordHit(ctx context.Context, name string) {
	m.hits.Add(ctx, 1, metric.WithAttributes(attribute.String("name", name)))
}

func (m *CacheMetrics) RecordMiss(ctx context.Context, name string) {
	m.misses.Add(ctx, 1, metric.WithAttributes(attribute.String("name", name)))
}

func (m *CacheMetrics) RecordEviction(ctx context.Context, name string) {
	m.evictions.Add(ctx, 1, metric.WithAttributes(attribute.String("name", name)))
}

// RateMetrics records bucket/ratelimit wait-time histograms and rejections.
type RateMetrics struct {
	waitTime metric.Float64Histogram
	rejected metric.Int64Counter
}

// NewRateMetrics builds RateMetrics from meter.
func NewRateMetrics(meter metric.Meter) (*RateMetrics, error) {
	waitTime, err := meter.Float64Histogram("flowcraft.ratelimit.wait_ms", metric.WithDescription("time spent waiting for tokens"), metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}
	rejected, err := meter.Int64Counter("flowcraft.ratelimit.rejected", metric.WithDescription("requests rejected for exceeding the limit"))
	if err != nil {
		return nil, err
	}
	return &RateMetrics{waitTime: waitTime, rejected: rejected}, nil
}

func (m *RateMetrics) RecordWait(ctx context.Context, name string, waitMs float64) {
	m.waitTime.Record(ctx, waitMs, metric.WithAttributes(attribute.String("name", name)))
}

func (m *RateMetrics) RecordRejected(ctx context.Context, name string) {
	m.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("name", name)))
}

// BreakerMetrics records circuit breaker state transitions.
type BreakerMetrics struct {
	transitions metric.Int64Counter
}

// NewBreakerMetrics builds BreakerMetrics from meter.
func NewBreakerMetrics(meter metric.Meter) (*BreakerMetrics, error) {
	transitions, err := meter.Int64Counter("flowcraft.breaker.transitions", metric.WithDescription("circuit breaker state transitions"))
	if err != nil {
		return nil, err
	}
	return &BreakerMetrics{transitions: transitions}, nil
}

func (m *BreakerMetrics) RecordTransition(ctx context.Context, name, toState string) {
	m.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("name", name),
		attribute.String("state", toState),
	))
}

// RetryMetrics records retry attempt and exhaustion counters.
type RetryMetrics struct {
	attempts  metric.Int64Counter
	exhausted metric.Int64Counter
}

// NewRetryMetrics builds RetryMetrics from meter.
func NewRetryMetrics(meter metric.Meter) (*RetryMetrics, error) {
	attempts, err := meter.Int64Counter("flowcraft.retry.attempts", metric.WithDescription("retry attempts made"))
	if err != nil {
		return nil, err
	}
	exhausted, err := meter.Int64Counter("flowcraft.retry.exhausted", metric.WithDescription("retries exhausted without success"))
	if err != nil {
		return nil, err
	}
	return &RetryMetrics{attempts: attempts, exhausted: exhausted}, nil
}

func (m *RetryMetrics) RecordAttempt(ctx context.Context, name string) {
	m.attempts.Add(ctx, 1, metric.WithAttributes(attribute.String("name", name)))
}

func (m *RetryMetrics) RecordExhausted(ctx context.Context, name string) {
	m.exhausted.Add(ctx, 1, metric.WithAttributes(attribute.String("name", name)))
}

// TimeoutMetrics records producer timeout counters.
type TimeoutMetrics struct {
	timeouts metric.Int64Counter
}

// NewTimeoutMetrics builds TimeoutMetrics from meter.
func NewTimeoutMetrics(meter metric.Meter) (*TimeoutMetrics, error) {
	timeouts, err := meter.Int64Counter("flowcraft.timeout.exceeded", metric.WithDescription("producer calls that exceeded their deadline"))
	if err != nil {
		return nil, err
	}
	return &TimeoutMetrics{timeouts: timeouts}, nil
}

func (m *TimeoutMetrics) RecordTimeout(ctx context.Context, name string) {
	m.timeouts.Add(ctx, 1, metric.WithAttributes(attribute.String("name", name)))
}

// SkipMetrics records throttle/debounce skip counters (calls served from
// cache or coalesced away instead of invoking the producer).
type SkipMetrics struct {
	skipped metric.Int64Counter
}

// NewSkipMetrics builds SkipMetrics from meter.
func NewSkipMetrics(meter metric.Meter) (*SkipMetrics, error) {
	skipped, err := meter.Int64Counter("flowcraft.skip.count", metric.WithDescription("calls skipped by throttle or debounce"))
	if err != nil {
		return nil, err
	}
	return &SkipMetrics{skipped: skipped}, nil
}

func (m *SkipMetrics) RecordSkip(ctx context.Context, kind, name string) {
	m.skipped.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("name", name),
	))
}

// BulkheadMetrics records bulkhead admission/rejection counters.
type BulkheadMetrics struct {
	rejected metric.Int64Counter
}

// NewBulkheadMetrics builds BulkheadMetrics from meter.
func NewBulkheadMetrics(meter metric.Meter) (*BulkheadMetrics, error) {
	rejected, err := meter.Int64Counter("flowcraft.bulkhead.rejected", metric.WithDescription("calls rejected because the bulkhead was full"))
	if err != nil {
		return nil, err
	}
	return &BulkheadMetrics{rejected: rejected}, nil
}

func (m *BulkheadMetrics) RecordRejected(ctx context.Context, name string) {
	m.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("name", name)))
}
