package retry

import (
	"context"
	"math/rand"
	"time"

	"github.com/flowcraft/flowcraft/asyncutil"
	"github.com/flowcraft/flowcraft/flowerr"
	"github.com/flowcraft/flowcraft/telemetry"

	backoffv5 "github.com/cenkalti/backoff/v5"
)

// Config configures Retry (spec.md §4.9).
type Config struct {
	// Retries is the maximum number of attempts. Default: 3.
	Retries int

	// Delay is the base delay before the first retry.
	Delay time.Duration

	// Backoff is the multiplier applied to Delay after each retry.
	// Default: 1 (constant delay).
	Backoff float64

	// JitterFactor adds up to JitterFactor * delay of random jitter to
	// each sleep.
	JitterFactor float64

	// ShouldRetry decides whether an error is retryable. Default: all
	// non-nil errors are retryable.
	ShouldRetry func(err error) bool

	// ThrowLastError propagates the last attempt's error verbatim on
	// exhaustion instead of raising flowerr.RetryError.
	ThrowLastError bool

	// OnRetry is invoked before each non-first attempt.
	OnRetry func(lastErr error, attempt int)

	// OnRetryExhausted is invoked when all attempts are exhausted; its
	// return value (if non-nil signature were used) overrides the
	// default exhaustion error. A nil OnRetryExhausted falls back to
	// ThrowLastError / flowerr.RetryError.
	OnRetryExhausted func(lastErr error) error

	// UseDecorrelatedJitter replaces the delay*backoff*(1+jitter) formula
	// with github.com/cenkalti/backoff/v5's decorrelated-jitter
	// ExponentialBackOff.
	UseDecorrelatedJitter bool

	// Name identifies this Retry instance in telemetry attributes.
	Name string

	// Provider, if set, receives attempt and exhaustion counters.
	Provider telemetry.Provider
}

// Retry runs an operation with bounded retry, backoff, and jitter.
type Retry struct {
	config  Config
	metrics *telemetry.RetryMetrics
}

// New creates a Retry from config, applying defaults.
func New(config Config) *Retry {
	if config.Retries <= 0 {
		config.Retries = 3
	}
	if config.Backoff <= 0 {
		config.Backoff = 1
	}
	if config.ShouldRetry == nil {
		config.ShouldRetry = func(err error) bool { return err != nil }
	}
	r := &Retry{config: config}
	if config.Provider != nil {
		if m, err := telemetry.NewRetryMetrics(config.Provider.Meter()); err == nil {
			r.metrics = m
		}
	}
	return r
}

// Operation is the function Execute retries.
type Operation func(ctx context.Context) error

// Execute runs op per the retry configuration (spec.md §4.9).
func (r *Retry) Execute(ctx context.Context, op Operation) error {
	var lastErr error
	delay := r.config.Delay

	var bo *backoffv5.ExponentialBackOff
	if r.config.UseDecorrelatedJitter {
		bo = &backoffv5.ExponentialBackOff{
			InitialInterval:     maxDuration(delay, time.Millisecond),
			RandomizationFactor: clampUnit(r.config.JitterFactor),
			Multiplier:          r.config.Backoff,
		}
	}

	for attempt := 1; attempt <= r.config.Retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if attempt > 1 && r.config.OnRetry != nil {
			asyncutil.GuardHook(func() { r.config.OnRetry(lastErr, attempt) })
		}
		if r.metrics != nil {
			r.metrics.RecordAttempt(ctx, r.config.Name)
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !r.config.ShouldRetry(err) {
			return err
		}
		if attempt >= r.config.Retries {
			break
		}

		wait := delay
		if bo != nil {
			if d := bo.NextBackOff(); d != backoffv5.Stop {
				wait = d
			}
		} else {
			wait = time.Duration(float64(delay) * (1 + r.config.JitterFactor*rand.Float64()))
			delay = time.Duration(float64(delay) * r.config.Backoff)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	if r.metrics != nil {
		r.metrics.RecordExhausted(ctx, r.config.Name)
	}
	if r.config.OnRetryExhausted != nil {
		return r.config.OnRetryExhausted(lastErr)
	}
	if r.config.ThrowLastError {
		return lastErr
	}
	return &flowerr.RetryError{Attempts: r.config.Retries, LastErr: lastErr}
}

func clampUnit(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}
