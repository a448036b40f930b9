// Package serialize produces a stable string fingerprint of an arbitrary
// argument tuple, for use as a memoization or single-flight key.
//
// The encoding is deterministic for serializable values (two calls on
// structurally equal inputs yield equal strings), distinguishes every
// literal kind (nil vs bool vs number vs string), treats unordered
// collections (sets, map keys) as sorted rather than positional, detects
// cycles without looping forever, and falls back to a stable per-instance
// identifier for values that can't be serialized structurally (funcs,
// channels, errors) so two distinct instances never collide but the same
// instance always collides with itself.
//
// It never panics: values it cannot introspect fall back to the
// per-instance identity encoding described above.
package serialize
