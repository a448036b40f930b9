// Package retry implements the bounded retry loop with backoff and
// jitter (spec.md §4.9), adapted from the teacher's resilience/retry.go
// (Retry.Execute's attempt loop and delay/cancellation handling),
// generalized to the spec's onRetry/onRetryExhausted hook pair and typed
// RetryError exhaustion behavior.
//
// Config.UseDecorrelatedJitter swaps the default delay*backoff*(1+jitter)
// formula for github.com/cenkalti/backoff/v5's ExponentialBackOff,
// giving callers decorrelated-jitter backoff (AWS's recommended retry
// strategy) without hand-rolling it.
package retry
