// Package debounce implements trailing-edge debouncing with an optional
// maxWait (spec.md §4.12). Like throttle, it has no direct teacher
// analog; it follows the teacher's Config-struct-with-defaults-in-New
// shape applied to a new concern.
package debounce
