// Package store defines the pluggable cache-storage adapter contract used
// by memoize, plus the default in-memory implementation: an LRU-evicting,
// TTL-aware map with deterministic (lastAccessed, accessSequence)
// tie-breaking and a detached background sweeper.
//
// Any type satisfying Backend[V] — remote KV stores included — may be
// supplied to memoize.WithAdapter. Backend methods take a context.Context
// so remote implementations can honor cancellation and deadlines; the
// bundled Memory[V] implementation ignores it, matching spec.md §4.2
// ("All operations may be asynchronous to accommodate remote backends.").
package store
