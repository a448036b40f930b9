package memoize

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/flowcraft/flowcraft/asyncutil"
	"github.com/flowcraft/flowcraft/flight"
	"github.com/flowcraft/flowcraft/serialize"
	"github.com/flowcraft/flowcraft/store"
	"github.com/flowcraft/flowcraft/telemetry"
)

// Stats reports Memoized[V]'s cumulative cache counters (spec.md §4.5.8).
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Size      int
}

// HitRate returns Hits / (Hits + Misses), or 0 when there have been no
// calls yet.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Memoized wraps a Producer[V] with caching, SWR, and single-flight
// deduplication.
type Memoized[V any] struct {
	producer Producer[V]
	config   Config[V]
	backend  store.Backend[V]
	flight   *flight.Group[V]

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64

	swrMu      sync.Mutex
	swrPending map[string]bool

	metrics *telemetry.CacheMetrics
}

// New wraps producer per the supplied options.
func New[V any](producer Producer[V], opts ...Option[V]) *Memoized[V] {
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

	m := &Memoized[V]{
		producer:   producer,
		config:     cfg,
		backend:    backend,
		flight:     flight.NewGroup[V](),
		swrPending: make(map[string]bool),
	}
	if cfg.Provider != nil {
		if cm, err := telemetry.NewCacheMetrics(cfg.Provider.Meter()); err == nil {
			m.metrics = cm
		}
	}
	return m
}

func (m *Memoized[V]) key(args []any) (string, error) {
	if m.config.GenerateKey != nil {
		return m.config.GenerateKey(args...), nil
	}
	return serialize.Serialize(args...), nil
}

func (m *Memoized[V]) reportError(err error) {
	if m.config.OnError == nil || err == nil {
		return
	}
	asyncutil.GuardHook(func() { m.config.OnError(err) })
}

// Call executes the memoized producer for args, per spec.md §4.5.
func (m *Memoized[V]) Call(ctx context.Context, args ...any) (V, error) {
	key, err := m.key(args)
	if err != nil {
		m.reportError(err)
		return m.producer(ctx, args...)
	}

	shouldCache := true
	if m.config.ShouldCache != nil {
		shouldCache = m.config.ShouldCache(args...)
	}

	if !shouldCache {
		// Still dedups via the coordinator under the derived key, per
		// spec.md §9's documented bypass semantics, but never touches
		// the cache.
		v, _, err := m.flight.Do(key, func() (V, error) { return m.producer(ctx, args...) })
		if err != nil {
			m.reportError(err)
		}
		return v, err
	}

	now := time.Now()
	entry, hit, err := m.backend.Get(ctx, key)
	if err != nil {
		m.reportError(err)
	} else if hit {
		if entry.Stale(now) {
			return m.revalidate(ctx, key, args, entry)
		}
		m.hits.Add(1)
		if m.metrics != nil {
			m.metrics.RecordHit(ctx, m.config.Name)
		}
		return entry.Value, nil
	}

	v, shared, err := m.executeAndCache(ctx, key, args)
	if shared {
		m.hits.Add(1)
		if m.metrics != nil {
			m.metrics.RecordHit(ctx, m.config.Name)
		}
	} else {
		m.misses.Add(1)
		if m.metrics != nil {
			m.metrics.RecordMiss(ctx, m.config.Name)
		}
	}
	return v, err
}

// revalidate implements the stale-while-revalidate branch (spec.md
// §4.5.5).
func (m *Memoized[V]) revalidate(ctx context.Context, key string, args []any, stale store.Entry[V]) (V, error) {
	m.hits.Add(1)

	if m.config.StaleTimeout == nil {
		return stale.Value, nil
	}

	if *m.config.StaleTimeout == 0 {
		m.scheduleDetachedRefresh(key, args)
		return stale.Value, nil
	}

	type result struct {
		value V
		err   error
	}
	fresh := make(chan result, 1)
	go func() {
		v, _, err := m.executeAndCache(ctx, key, args)
		fresh <- result{v, err}
	}()

	select {
	case r := <-fresh:
		if r.err == nil {
			return r.value, nil
		}
		return stale.Value, nil
	case <-time.After(*m.config.StaleTimeout):
		return stale.Value, nil
	}
}

// scheduleDetachedRefresh runs a background refresh for key, swallowing
// any error, and ensures only one such refresh runs per key at a time.
func (m *Memoized[V]) scheduleDetachedRefresh(key string, args []any) {
	m.swrMu.Lock()
	if m.swrPending[key] {
		m.swrMu.Unlock()
		return
	}
	m.swrPending[key] = true
	m.swrMu.Unlock()

	go func() {
		defer func() {
			m.swrMu.Lock()
			delete(m.swrPending, key)
			m.swrMu.Unlock()
		}()
		asyncutil.GuardHook(func() {
			_, _, _ = m.executeAndCache(context.Background(), key, args)
		})
	}()
}

// executeAndCache implements spec.md §4.5.6: join an in-flight producer
// if one exists, else start one and cache its outcome on settlement
// before the in-flight entry is removed. The returned bool reports
// whether this call joined an in-flight producer (shared) rather than
// starting one (spec.md §4.5 step 6, §8 Scenario 1).
func (m *Memoized[V]) executeAndCache(ctx context.Context, key string, args []any) (V, bool, error) {
	v, shared, err := m.flight.Do(key, func() (V, error) {
		value, err := m.producer(ctx, args...)
		if err != nil {
			m.reportError(err)
			return value, err
		}

		now := time.Now()
		entry := store.Entry[V]{
			Value:     value,
			CreatedAt: now,
		}
		if m.config.TTL > 0 {
			entry.ExpiresAt = now.Add(m.config.TTL)
		}
		if m.config.StaleIn > 0 {
			staleAt := now.Add(m.config.StaleIn)
			entry.StaleAt = &staleAt
		}

		evicted, setErr := m.backend.Set(ctx, key, entry)
		if setErr != nil {
			m.reportError(setErr)
		} else if evicted {
			m.evictions.Add(1)
			if m.metrics != nil {
				m.metrics.RecordEviction(ctx, m.config.Name)
			}
		}
		return value, nil
	})
	return v, shared, err
}

// Clear resets counters, wipes cache entries, and empties the in-flight
// coordinator.
func (m *Memoized[V]) Clear(ctx context.Context) error {
	m.flight.Clear()
	m.hits.Store(0)
	m.misses.Store(0)
	m.evictions.Store(0)
	return m.backend.Clear(ctx)
}

// Delete removes a single cache entry by its derived key.
func (m *Memoized[V]) Delete(ctx context.Context, args ...any) error {
	key, err := m.key(args)
	if err != nil {
		return err
	}
	return m.backend.Delete(ctx, key)
}

// Has reports whether args currently resolve to a live cache entry.
func (m *Memoized[V]) Has(ctx context.Context, args ...any) (bool, error) {
	key, err := m.key(args)
	if err != nil {
		return false, err
	}
	return m.backend.Has(ctx, key)
}

// Size returns the backend's current entry count.
func (m *Memoized[V]) Size(ctx context.Context) (int, error) {
	return m.backend.Size(ctx)
}

// Stats reports cumulative hit/miss/eviction counters.
func (m *Memoized[V]) Stats(ctx context.Context) Stats {
	size, _ := m.backend.Size(ctx)
	return Stats{
		Hits:      m.hits.Load(),
		Misses:    m.misses.Load(),
		Evictions: m.evictions.Load(),
		Size:      size,
	}
}

// Keys returns the backend's keys if it implements store.Enumerable,
// else an empty slice (spec.md §6).
func (m *Memoized[V]) Keys(ctx context.Context) ([]string, error) {
	enum, ok := m.backend.(store.Enumerable[V])
	if !ok {
		return nil, nil
	}
	return enum.Keys(ctx)
}

// Entries returns a snapshot of the backend's entries if it implements
// store.Enumerable, else an empty map (spec.md §6).
func (m *Memoized[V]) Entries(ctx context.Context) (map[string]store.Entry[V], error) {
	enum, ok := m.backend.(store.Enumerable[V])
	if !ok {
		return map[string]store.Entry[V]{}, nil
	}
	return enum.Entries(ctx)
}
