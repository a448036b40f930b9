// Package timeout races a producer against a deadline (spec.md §4.10),
// adapted from the teacher's resilience/timeout.go (Timeout.Execute's
// context.WithTimeout + select race), generalized to a typed producer
// result, onTimeout/onError hooks, and a throws=false suppression mode.
package timeout
