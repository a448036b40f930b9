// Package ratelimit wraps a producer with admission control backed by a
// bucket.Bucket (spec.md §4.7). Wrap derives capacity=maxCalls and
// refillInterval=window/maxCalls from a calls-per-window configuration;
// the Throws option selects between rejecting over-limit calls with
// flowerr.RateLimitError and blocking until a token is admitted.
package ratelimit
