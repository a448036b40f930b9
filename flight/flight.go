package flight

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Group coordinates in-flight producer calls for type V, keyed by string.
type Group[V any] struct {
	sf singleflight.Group

	mu      sync.Mutex
	waiting map[string]int
}

// NewGroup creates an empty Group[V].
func NewGroup[V any]() *Group[V] {
	return &Group[V]{waiting: make(map[string]int)}
}

// Do executes fn for key if no call for key is already in flight;
// otherwise it waits for the in-flight call's outcome. shared reports
// whether the returned outcome was shared with at least one other
// caller, i.e. this call joined rather than started the producer.
func (g *Group[V]) Do(key string, fn func() (V, error)) (value V, shared bool, err error) {
	g.mu.Lock()
	g.waiting[key]++
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		g.waiting[key]--
		if g.waiting[key] <= 0 {
			delete(g.waiting, key)
		}
		g.mu.Unlock()
	}()

	started := false
	v, sharedResult, sfErr := g.sf.Do(key, func() (any, error) {
		started = true
		return fn()
	})
	joined := sharedResult && !started
	if sfErr != nil {
		var zero V
		return zero, joined, sfErr
	}
	return v.(V), joined, nil
}

// HasInflight reports whether a call for key is currently in flight.
func (g *Group[V]) HasInflight(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.waiting[key]
	return ok
}

// WaitingCount returns the number of callers currently joined on key's
// in-flight call, 0 if none.
func (g *Group[V]) WaitingCount(key string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.waiting[key]
}

// Forget tells the Group to forget about key, so that the next call for
// key starts a fresh producer invocation rather than joining a stale
// one. Intended for callers that need to recover from a producer
// deadlocked past its own timeout.
func (g *Group[V]) Forget(key string) {
	g.sf.Forget(key)
}

// Clear forgets every key currently tracked as in flight.
func (g *Group[V]) Clear() {
	g.mu.Lock()
	keys := make([]string, 0, len(g.waiting))
	for k := range g.waiting {
		keys = append(keys, k)
	}
	g.mu.Unlock()

	for _, k := range keys {
		g.sf.Forget(k)
	}
}
