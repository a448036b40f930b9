// Package flight deduplicates concurrent producer calls sharing a key so
// that N concurrent callers trigger exactly one producer invocation and
// all N observe the same outcome (spec.md §4.4, the SingleFlight
// Coordinator).
//
// Group wraps golang.org/x/sync/singleflight.Group and adds the
// inspection primitives memoize needs to report accurate hit/miss and
// waiting-caller statistics: HasInflight and WaitingCount. The ordering
// invariant that a settled producer's cache write happens-before its
// in-flight entry's removal (spec.md §4.4, §7) falls out for free here:
// callers that need to write a cache entry on success do so from inside
// the Do callback, before it returns — which is exactly when
// singleflight releases joiners and forgets the key.
package flight
