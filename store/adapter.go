package store

import (
	"context"
)

// Backend is the storage adapter contract (spec.md §4.2). Implementations
// must be safe for concurrent use. Get never errors: a miss is reported
// as (zero, false).
type Backend[V any] interface {
	Get(ctx context.Context, key string) (Entry[V], bool, error)
	// Set inserts or replaces key. evicted reports whether inserting a new
	// key forced the LRU policy to evict another entry to stay within the
	// configured capacity.
	Set(ctx context.Context, key string, entry Entry[V]) (evicted bool, err error)
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Has(ctx context.Context, key string) (bool, error)
	Size(ctx context.Context) (int, error)
}

// Enumerable is an optional capability a Backend may implement to support
// cache.Keys()/cache.Entries() iteration. Adapters that don't implement it
// cause those handles to return empty iterators, per spec.md §6.
type Enumerable[V any] interface {
	Keys(ctx context.Context) ([]string, error)
	Entries(ctx context.Context) (map[string]Entry[V], error)
}
