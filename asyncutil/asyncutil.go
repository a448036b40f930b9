// Package asyncutil provides the small ambient primitive every flowcraft
// wrapper is built on: a panic-swallowing guard for user-supplied lifecycle
// hooks.
package asyncutil

// GuardHook invokes fn and discards any panic it raises, so a broken
// lifecycle hook (OnRetry, OnTripped, OnStateChange, ...) supplied by a
// caller can never unwind a wrapper's own call stack.
func GuardHook(fn func()) {
	if fn == nil {
		return
	}
	defer func() { _ = recover() }()
	fn()
}
