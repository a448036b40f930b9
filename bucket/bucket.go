package bucket

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/flowcraft/flowcraft/telemetry"
)

// maxSaneElapsed bounds how large a gap between refills is trusted. A
// larger gap (or a negative one, meaning the clock moved backwards) is
// treated as a clock anomaly: the bucket resets to full rather than
// crediting an implausible number of tokens.
const maxSaneElapsed = 24 * time.Hour

// waitBuffer is added on top of the computed wait time to avoid spinning
// against a refill boundary.
const waitBuffer = 2 * time.Millisecond

// Config configures a Bucket.
type Config struct {
	// Capacity is the maximum number of tokens the bucket can hold.
	Capacity float64

	// RefillInterval is the time it takes to refill a single token.
	RefillInterval time.Duration

	// Name identifies this bucket instance in telemetry attributes.
	Name string

	// Provider, if set, receives wait-time histograms and rejection
	// counters.
	Provider telemetry.Provider
}

// Stats reports a Bucket's cumulative counters.
type Stats struct {
	TotalRequests uint64
	Rejected      uint64
	WaitCount     uint64
	TotalWaitTime time.Duration
	CreatedAt     time.Time
}

// Snapshot is a point-in-time view of a Bucket's state and statistics.
type Snapshot struct {
	Tokens     float64
	Capacity   float64
	LastRefill time.Time
	Stats      Stats
}

// Bucket is a continuous-refill token bucket (spec.md §4.6).
type Bucket struct {
	config Config

	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
	stats      Stats

	metrics *telemetry.RateMetrics
}

// New creates a Bucket at full capacity.
func New(config Config) *Bucket {
	if config.Capacity <= 0 {
		config.Capacity = 1
	}
	if config.RefillInterval <= 0 {
		config.RefillInterval = time.Second
	}
	now := time.Now()
	b := &Bucket{
		config:     config,
		tokens:     config.Capacity,
		lastRefill: now,
		stats:      Stats{CreatedAt: now},
	}
	if config.Provider != nil {
		if m, err := telemetry.NewRateMetrics(config.Provider.Meter()); err == nil {
			b.metrics = m
		}
	}
	return b
}

func (b *Bucket) refillLocked(now time.Time) {
	elapsed := now.Sub(b.lastRefill)
	if elapsed < 0 || elapsed > maxSaneElapsed {
		b.tokens = b.config.Capacity
		b.lastRefill = now
		return
	}

	rate := 1.0 / b.config.RefillInterval.Seconds()
	b.tokens += elapsed.Seconds() * rate
	if b.tokens > b.config.Capacity {
		b.tokens = b.config.Capacity
	}
	b.lastRefill = now
}

// Consume attempts to atomically take n tokens, refilling first. It
// reports whether the consumption succeeded.
func (b *Bucket) Consume(n float64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refillLocked(time.Now())
	b.stats.TotalRequests++

	if b.tokens >= n {
		b.tokens -= n
		return true
	}
	b.stats.Rejected++
	if b.metrics != nil {
		b.metrics.RecordRejected(context.Background(), b.config.Name)
	}
	return false
}

// WaitTime returns how long to wait until n tokens are available, with a
// small buffer to avoid spinning against the refill boundary. It returns
// 0 if n tokens are already available.
func (b *Bucket) WaitTime(n float64) time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refillLocked(time.Now())
	return b.waitTimeLocked(n)
}

func (b *Bucket) waitTimeLocked(n float64) time.Duration {
	if b.tokens >= n {
		return 0
	}
	deficit := n - b.tokens
	d := time.Duration(deficit * float64(b.config.RefillInterval))
	return d + waitBuffer
}

// RateLimitFunc is invoked each time WaitAndConsume must wait for a
// token, before sleeping.
type RateLimitFunc func(wait time.Duration)

// WaitOptions configures WaitAndConsume.
type WaitOptions struct {
	// OnRateLimit is invoked before each wait.
	OnRateLimit RateLimitFunc

	// JitterFactor adds up to JitterFactor * wait of random jitter to
	// each sleep, spreading out retries from synchronized callers.
	JitterFactor float64
}

// WaitAndConsume blocks until n tokens can be atomically consumed, or
// ctx is cancelled. Cancellation between waits is honored promptly and
// recorded as a rejection (spec.md §4.6, §5).
func (b *Bucket) WaitAndConsume(ctx context.Context, n float64, opts WaitOptions) error {
	if b.Consume(n) {
		return nil
	}

	for {
		wait := b.WaitTime(n)
		if opts.OnRateLimit != nil {
			opts.OnRateLimit(wait)
		}
		if opts.JitterFactor > 0 {
			wait += time.Duration(rand.Float64() * opts.JitterFactor * float64(wait))
		}

		b.mu.Lock()
		b.stats.WaitCount++
		b.stats.TotalWaitTime += wait
		b.mu.Unlock()
		if b.metrics != nil {
			b.metrics.RecordWait(ctx, b.config.Name, float64(wait.Milliseconds()))
		}

		select {
		case <-ctx.Done():
			b.mu.Lock()
			b.stats.Rejected++
			b.mu.Unlock()
			if b.metrics != nil {
				b.metrics.RecordRejected(ctx, b.config.Name)
			}
			return ctx.Err()
		case <-time.After(wait):
		}

		if b.Consume(n) {
			return nil
		}
	}
}

// Reset restores the bucket to full capacity and clears its statistics.
func (b *Bucket) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := time.Now()
	b.tokens = b.config.Capacity
	b.lastRefill = now
	b.stats = Stats{CreatedAt: now}
}

// Snapshot returns the bucket's current state and statistics.
func (b *Bucket) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refillLocked(time.Now())
	return Snapshot{
		Tokens:     b.tokens,
		Capacity:   b.config.Capacity,
		LastRefill: b.lastRefill,
		Stats:      b.stats,
	}
}
