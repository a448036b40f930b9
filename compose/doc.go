// Package compose implements the wrap registry and ordered composer
// (spec.md §4.13), generalized from the teacher's resilience.Executor
// inside-out wrapping into a typed Layer[V] chain plus a Registry that
// rejects double-wrapping a producer with the same policy kind.
package compose
