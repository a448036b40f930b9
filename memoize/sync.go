package memoize

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/flowcraft/flowcraft/asyncutil"
	"github.com/flowcraft/flowcraft/serialize"
	"github.com/flowcraft/flowcraft/store"
)

// SyncProducer is a producer that executes instantly, without an async
// boundary.
type SyncProducer[V any] func(args ...any) (V, error)

// Sync is the synchronous variant of Memoized[V]: it omits the
// single-flight coordinator and SWR racing (producers execute
// instantly), while obeying the same key-derivation, shouldCache, and
// caching contracts (spec.md §4.5, final paragraph).
type Sync[V any] struct {
	producer SyncProducer[V]
	config   Config[V]
	backend  store.Backend[V]

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// NewSync wraps a SyncProducer[V] per the supplied options.
func NewSync[V any](producer SyncProducer[V], opts ...Option[V]) *Sync[V] {
	var cfg Config[V]
	for _, opt := range opts {
		opt(&cfg)
	}

	backend := cfg.Adapter
	if backend == nil {
		backend = store.NewMemory[V](store.Options{
			MaxSize:         cfg.MaxSize,
			CleanupInterval: cfg.CleanupInterval,
		})
	}

	return &Sync[V]{producer: producer, config: cfg, backend: backend}
}

func (s *Sync[V]) key(args []any) string {
	if s.config.GenerateKey != nil {
		return s.config.GenerateKey(args...)
	}
	return serialize.Serialize(args...)
}

func (s *Sync[V]) reportError(err error) {
	if s.config.OnError == nil || err == nil {
		return
	}
	asyncutil.GuardHook(func() { s.config.OnError(err) })
}

// Call executes the memoized producer for args.
func (s *Sync[V]) Call(ctx context.Context, args ...any) (V, error) {
	key := s.key(args)

	shouldCache := true
	if s.config.ShouldCache != nil {
		shouldCache = s.config.ShouldCache(args...)
	}
	if !shouldCache {
		v, err := s.producer(args...)
		if err != nil {
			s.reportError(err)
		}
		return v, err
	}

	now := time.Now()
	entry, hit, err := s.backend.Get(ctx, key)
	if err != nil {
		s.reportError(err)
	} else if hit && !entry.Stale(now) {
		s.hits.Add(1)
		return entry.Value, nil
	}

	s.misses.Add(1)
	value, err := s.producer(args...)
	if err != nil {
		s.reportError(err)
		return value, err
	}

	newEntry := store.Entry[V]{Value: value, CreatedAt: now}
	if s.config.TTL > 0 {
		newEntry.ExpiresAt = now.Add(s.config.TTL)
	}
	if s.config.StaleIn > 0 {
		staleAt := now.Add(s.config.StaleIn)
		newEntry.StaleAt = &staleAt
	}

	evicted, setErr := s.backend.Set(ctx, key, newEntry)
	if setErr != nil {
		s.reportError(setErr)
	} else if evicted {
		s.evictions.Add(1)
	}
	return value, nil
}

// Clear resets counters and wipes cache entries.
func (s *Sync[V]) Clear(ctx context.Context) error {
	s.hits.Store(0)
	s.misses.Store(0)
	s.evictions.Store(0)
	return s.backend.Clear(ctx)
}

// Stats reports cumulative hit/miss/eviction counters.
func (s *Sync[V]) Stats(ctx context.Context) Stats {
	size, _ := s.backend.Size(ctx)
	return Stats{
		Hits:      s.hits.Load(),
		Misses:    s.misses.Load(),
		Evictions: s.evictions.Load(),
		Size:      size,
	}
}
