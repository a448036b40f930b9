package bulkhead

import (
	"context"
	"sync"
	"time"

	"github.com/flowcraft/flowcraft/flowerr"
	"github.com/flowcraft/flowcraft/telemetry"
)

// Producer is the function type Execute wraps.
type Producer[V any] func(ctx context.Context) (V, error)

// Config configures a Bulkhead.
type Config struct {
	// MaxConcurrent is the maximum number of concurrent operations.
	// Default: 10.
	MaxConcurrent int

	// MaxWait is the maximum time to wait for a free slot. Default: 0
	// (no waiting, fail immediately).
	MaxWait time.Duration

	// Name identifies this bulkhead instance in telemetry attributes.
	Name string

	// Provider, if set, receives rejection counters.
	Provider telemetry.Provider
}

// Bulkhead limits concurrent operations via a buffered-channel semaphore.
type Bulkhead struct {
	config Config
	sem    chan struct{}

	mu        sync.Mutex
	active    int
	maxActive int
	rejected  int64

	metrics *telemetry.BulkheadMetrics
}

// New creates a new Bulkhead.
func New(config Config) *Bulkhead {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 10
	}

	b := &Bulkhead{
		config: config,
		sem:    make(chan struct{}, config.MaxConcurrent),
	}
	if config.Provider != nil {
		if m, err := telemetry.NewBulkheadMetrics(config.Provider.Meter()); err == nil {
			b.metrics = m
		}
	}
	return b
}

// Acquire acquires a slot in the bulkhead, returning
// *flowerr.BulkheadError if none becomes available within MaxWait.
func (b *Bulkhead) Acquire(ctx context.Context) error {
	select {
	case b.sem <- struct{}{}:
		b.onAcquired()
		return nil
	default:
	}

	if b.config.MaxWait <= 0 {
		b.onRejected(ctx)
		return &flowerr.BulkheadError{MaxConcurrent: b.config.MaxConcurrent}
	}

	timer := time.NewTimer(b.config.MaxWait)
	defer timer.Stop()

	select {
	case b.sem <- struct{}{}:
		b.onAcquired()
		return nil
	case <-timer.C:
		b.onRejected(ctx)
		return &flowerr.BulkheadError{MaxConcurrent: b.config.MaxConcurrent}
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Bulkhead) onAcquired() {
	b.mu.Lock()
	b.active++
	if b.active > b.maxActive {
		b.maxActive = b.active
	}
	b.mu.Unlock()
}

func (b *Bulkhead) onRejected(ctx context.Context) {
	b.mu.Lock()
	b.rejected++
	b.mu.Unlock()
	if b.metrics != nil {
		b.metrics.RecordRejected(ctx, b.config.Name)
	}
}

// Release releases a slot in the bulkhead.
func (b *Bulkhead) Release() {
	select {
	case <-b.sem:
		b.mu.Lock()
		b.active--
		b.mu.Unlock()
	default:
	}
}

// Execute runs op within the bulkhead, acquiring and releasing a slot
// around the call.
func Execute[V any](ctx context.Context, b *Bulkhead, op Producer[V]) (V, error) {
	var zero V
	if err := b.Acquire(ctx); err != nil {
		return zero, err
	}
	defer b.Release()
	return op(ctx)
}

// Metrics contains bulkhead statistics.
type Metrics struct {
	Active        int
	MaxActive     int
	Available     int
	MaxConcurrent int
	Rejected      int64
}

// Snapshot returns the bulkhead's current metrics.
func (b *Bulkhead) Snapshot() Metrics {
	b.mu.Lock()
	defer b.mu.Unlock()

	return Metrics{
		Active:        b.active,
		MaxActive:     b.maxActive,
		Available:     b.config.MaxConcurrent - b.active,
		MaxConcurrent: b.config.MaxConcurrent,
		Rejected:      b.rejected,
	}
}
