package memoize

import "github.com/flowcraft/flowcraft/store"

// NewWeak wraps a producer returning *T with weak-value caching: cached
// entries are held via weak.Pointer[T] and disappear as soon as nothing
// else in the program keeps a strong reference to the pointee (spec.md
// §9, "WeakRef/GC integration"). Any Adapter supplied via opts is
// ignored — weak-value semantics require store.WeakMemory[T].
func NewWeak[T any](producer Producer[*T], opts ...Option[*T]) *Memoized[*T] {
	m := New(producer, opts...)
	m.backend = store.NewWeakMemory[T]()
	return m
}
