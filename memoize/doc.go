// Package memoize is the glue component (spec.md §4.5): it binds a
// producer function to a store.Backend and a flight.Group under a
// derived cache key, adding TTL, stale-while-revalidate, and an optional
// shouldCache bypass.
//
// New wraps a Producer[V] and returns a *Memoized[V] whose Call method
// has the same effective contract as the producer, plus a cache handle
// (Clear, Delete, Has, Size, Stats, Keys, Entries). Concurrent callers
// for the same key join a single in-flight producer invocation via
// flight.Group; see flight's package doc for the ordering guarantee that
// makes a settled cache write visible before the in-flight entry is
// removed.
package memoize
