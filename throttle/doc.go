// Package throttle implements leading-edge throttling with a cached
// last result (spec.md §4.11). There is no direct teacher analog for
// this component; it is written in the teacher's Config-struct-with-
// defaults-in-New shape (see resilience/circuit.go, resilience/retry.go)
// applied to a new concern.
package throttle
