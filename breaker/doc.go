// Package breaker implements the circuit breaker state machine (spec.md
// §4.8): Closed/Open/HalfOpen, guarding a producer against a failing
// dependency and probing for recovery after a cooldown.
//
// CircuitBreaker is adapted from the teacher's
// resilience/circuit.go (CircuitBreaker.beforeRequest/afterRequest), kept
// in the same Execute-wraps-an-operation shape, generalized to the
// spec's single-probe HalfOpen semantics (a testInProgress flag rather
// than a concurrent probe counter) and its onTripped/onReset/onHalfOpen
// hook set.
package breaker
