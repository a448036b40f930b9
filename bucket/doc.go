// Package bucket implements the token bucket (spec.md §4.6): a
// continuous-refill capacity tracker with atomic consume and an
// admission-control wait loop.
//
// Bucket generalizes the teacher's RateLimiter (resilience/ratelimit.go)
// from a fixed rate+burst configuration to an explicit
// capacity/refillInterval model so ratelimit.Wrap can derive both from a
// single maxCalls/window pair, and adds the wait-time snapshot and
// statistics spec.md requires (getWaitTimeMs, snapshot, cumulative
// request/rejection/wait counters).
package bucket
