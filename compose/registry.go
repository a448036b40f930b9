package compose

import (
	"reflect"
	"sync"

	"github.com/flowcraft/flowcraft/flowerr"
)

// Kind identifies a policy layer supported by Compose.
type Kind string

// Supported policy kinds (spec.md §4.13; Bulkhead is an ADDED kind —
// see SPEC_FULL.md §9).
const (
	RateLimit      Kind = "rateLimit"
	CircuitBreaker Kind = "circuitBreaker"
	Retry          Kind = "retry"
	WithTimeout    Kind = "withTimeout"
	Inflight       Kind = "inflight"
	Bulkhead       Kind = "bulkhead"
)

// Registry tracks which policy kinds have been applied to which producer
// identity, rejecting a second application of the same kind to the same
// producer.
type Registry struct {
	mu      sync.Mutex
	applied map[uintptr]map[Kind]bool
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{applied: make(map[uintptr]map[Kind]bool)}
}

// DefaultRegistry is used by Compose when no explicit Registry is
// supplied.
var DefaultRegistry = NewRegistry()

func producerIdentity[V any](producer Producer[V]) uintptr {
	return reflect.ValueOf(producer).Pointer()
}

// checkAndMark records that kind has been applied to the producer at
// identity, returning *flowerr.AssertError if it was already applied.
func (r *Registry) checkAndMark(identity uintptr, kind Kind) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kinds, ok := r.applied[identity]
	if !ok {
		kinds = make(map[Kind]bool)
		r.applied[identity] = kinds
	}
	if kinds[kind] {
		return &flowerr.AssertError{
			Field:  "kind",
			Reason: "producer is already wrapped with " + string(kind),
		}
	}
	kinds[kind] = true
	return nil
}

// Forget clears every recorded kind for producer, allowing it to be
// recomposed from scratch.
func (r *Registry) Forget(producer any) {
	identity := reflect.ValueOf(producer).Pointer()
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.applied, identity)
}
