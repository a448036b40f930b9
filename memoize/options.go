package memoize

import (
	"context"
	"time"

	"github.com/flowcraft/flowcraft/store"
	"github.com/flowcraft/flowcraft/telemetry"
)

// Producer is the user-supplied function a Memoized[V] wraps. It must be
// referentially transparent with respect to key derivation: equal args
// should map to equal outcomes.
type Producer[V any] func(ctx context.Context, args ...any) (V, error)

// Config holds Memoized[V]'s tunables (spec.md §4.5). Zero value is
// usable; New applies the defaults documented on each field.
type Config[V any] struct {
	// TTL is how long a cache entry remains fresh. 0 means entries never
	// expire by TTL.
	TTL time.Duration

	// MaxSize caps the backend's entry count. 0 means unbounded.
	MaxSize int

	// GenerateKey overrides the default argument serializer.
	GenerateKey func(args ...any) string

	// OnError is invoked when a producer fails or key derivation fails.
	// Guarded: a panic inside OnError is recovered and discarded.
	OnError func(err error)

	// CleanupInterval is how often the backend's background sweeper
	// removes expired entries. 0 disables the sweeper.
	CleanupInterval time.Duration

	// StaleIn is the age at which a fresh entry becomes eligible for
	// stale-while-revalidate reads. 0 disables SWR.
	StaleIn time.Duration

	// StaleTimeout controls SWR refresh behavior once an entry is stale:
	//   nil        — return the stale value; no refresh is scheduled.
	//   0          — return the stale value; schedule a detached refresh
	//                whose errors are swallowed.
	//   > 0        — race a fresh execution against this timeout; use the
	//                fresh value if it wins and succeeds, else the stale
	//                value.
	StaleTimeout *time.Duration

	// UseWeakRef requests weak-value caching. New is a documented no-op
	// for this flag: Go's weak package requires the pointee type to be
	// known statically (weak.Make[T] cannot be invoked through reflection
	// for an arbitrary V), so true weak-value semantics are only
	// available through NewWeak, which works directly on *T.
	UseWeakRef bool

	// Adapter overrides the default in-memory store.Backend[V].
	Adapter store.Backend[V]

	// ShouldCache gates cache read/write per call. When it returns false,
	// the call still deduplicates via the in-flight coordinator under the
	// derived key but bypasses the cache (spec.md §9, "ShouldCache
	// semantics with bypass").
	ShouldCache func(args ...any) bool

	// Name identifies this Memoized instance in telemetry attributes.
	Name string

	// Provider, if set, receives cache hit/miss/eviction counters.
	Provider telemetry.Provider
}

// Option mutates a Config[V] at construction time.
type Option[V any] func(*Config[V])

// WithTTL sets Config.TTL.
func WithTTL[V any](ttl time.Duration) Option[V] {
	return func(c *Config[V]) { c.TTL = ttl }
}

// WithMaxSize sets Config.MaxSize.
func WithMaxSize[V any](n int) Option[V] {
	return func(c *Config[V]) { c.MaxSize = n }
}

// WithGenerateKey sets Config.GenerateKey.
func WithGenerateKey[V any](fn func(args ...any) string) Option[V] {
	return func(c *Config[V]) { c.GenerateKey = fn }
}

// WithOnError sets Config.OnError.
func WithOnError[V any](fn func(err error)) Option[V] {
	return func(c *Config[V]) { c.OnError = fn }
}

// WithCleanupInterval sets Config.CleanupInterval.
func WithCleanupInterval[V any](d time.Duration) Option[V] {
	return func(c *Config[V]) { c.CleanupInterval = d }
}

// WithStaleIn sets Config.StaleIn.
func WithStaleIn[V any](d time.Duration) Option[V] {
	return func(c *Config[V]) { c.StaleIn = d }
}

// WithStaleTimeout sets Config.StaleTimeout. See Config.StaleTimeout for
// the meaning of nil vs. 0 vs. positive durations.
func WithStaleTimeout[V any](d time.Duration) Option[V] {
	return func(c *Config[V]) {
		v := d
		c.StaleTimeout = &v
	}
}

// WithUseWeakRef sets Config.UseWeakRef. See Config.UseWeakRef; prefer
// NewWeak for true weak-value semantics.
func WithUseWeakRef[V any](use bool) Option[V] {
	return func(c *Config[V]) { c.UseWeakRef = use }
}

// WithAdapter overrides the default in-memory backend.
func WithAdapter[V any](backend store.Backend[V]) Option[V] {
	return func(c *Config[V]) { c.Adapter = backend }
}

// WithShouldCache sets Config.ShouldCache.
func WithShouldCache[V any](fn func(args ...any) bool) Option[V] {
	return func(c *Config[V]) { c.ShouldCache = fn }
}

// WithName sets Config.Name.
func WithName[V any](name string) Option[V] {
	return func(c *Config[V]) { c.Name = name }
}

// WithProvider sets Config.Provider.
func WithProvider[V any](p telemetry.Provider) Option[V] {
	return func(c *Config[V]) { c.Provider = p }
}
