// Package telemetry adapts the teacher's observe package to flowcraft's
// flow-control wrappers: a Provider holds an OpenTelemetry Tracer, Meter,
// and a structured Logger, defaulting to no-op implementations exactly as
// observe.NewObserver does when a subsystem is disabled. Every wrapper
// package (memoize, bucket, ratelimit, breaker, retry, timeout, throttle,
// debounce, bulkhead) accepts an optional Provider and records its own
// counters/histograms through the per-domain Metrics types in this
// package when one is set.
package telemetry
