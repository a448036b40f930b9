// Package bulkhead limits concurrent producer executions with a
// channel-semaphore (SPEC_FULL.md §9 ADDED). It is kept nearly verbatim
// from the teacher's resilience.Bulkhead, generalized to a typed
// Execute[V] and wired to flowerr and telemetry.
package bulkhead
