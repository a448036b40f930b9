package breaker

import (
	"context"
	"sync"
	"time"

	"github.com/flowcraft/flowcraft/asyncutil"
	"github.com/flowcraft/flowcraft/flowerr"
	"github.com/flowcraft/flowcraft/telemetry"
)

// State is one of Closed, Open, HalfOpen.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

// String returns the state's lowercase name, matching the discriminator
// surfaced on flowerr.CircuitBreakerError.
func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Config configures a CircuitBreaker (spec.md §4.8).
type Config struct {
	// MaxFailures is the consecutive-failure count (in Closed) that trips
	// the breaker. Default: 3.
	MaxFailures int

	// HalfOpenMaxAttempts is how many probe attempts HalfOpen allows
	// before re-arming Open. Default: 1.
	HalfOpenMaxAttempts int

	// ResetAfter is how long Open waits before transitioning to
	// HalfOpen. Default: 1 second.
	ResetAfter time.Duration

	// ShouldTripOnError decides whether an error counts toward tripping.
	// Default: all non-nil errors count. Returning false lets the error
	// propagate without any state change.
	ShouldTripOnError func(err error) bool

	OnTripped  func()
	OnError    func(err error)
	OnReset    func()
	OnHalfOpen func()

	// Name identifies this breaker instance in telemetry attributes.
	Name string

	// Provider, if set, receives state-transition counters.
	Provider telemetry.Provider
}

// CircuitBreaker is the closed/open/half-open state machine.
type CircuitBreaker struct {
	config Config

	mu               sync.Mutex
	state            State
	failures         int
	halfOpenAttempts int
	testInProgress   bool
	trippedAt        time.Time
	nextAvailable    time.Time

	metrics *telemetry.BreakerMetrics
}

// New creates a CircuitBreaker in the Closed state.
func New(config Config) *CircuitBreaker {
	if config.MaxFailures <= 0 {
		config.MaxFailures = 3
	}
	if config.HalfOpenMaxAttempts <= 0 {
		config.HalfOpenMaxAttempts = 1
	}
	if config.ResetAfter <= 0 {
		config.ResetAfter = time.Second
	}
	if config.ShouldTripOnError == nil {
		config.ShouldTripOnError = func(err error) bool { return err != nil }
	}
	cb := &CircuitBreaker{config: config, state: Closed}
	if config.Provider != nil {
		if m, err := telemetry.NewBreakerMetrics(config.Provider.Meter()); err == nil {
			cb.metrics = m
		}
	}
	return cb
}

func (cb *CircuitBreaker) recordTransition(state State) {
	if cb.metrics != nil {
		cb.metrics.RecordTransition(context.Background(), cb.config.Name, state.String())
	}
}

// State returns the current state, first applying the Open->HalfOpen
// timeout transition if due.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.maybeEnterHalfOpenLocked()
	return cb.state
}

func (cb *CircuitBreaker) maybeEnterHalfOpenLocked() {
	if cb.state == Open && time.Since(cb.trippedAt) > cb.config.ResetAfter {
		cb.state = HalfOpen
		cb.halfOpenAttempts = 0
		cb.testInProgress = false
		cb.recordTransition(HalfOpen)
		cb.invokeHook(cb.config.OnHalfOpen)
	}
}

func (cb *CircuitBreaker) invokeHook(fn func()) {
	if fn == nil {
		return
	}
	asyncutil.GuardHook(fn)
}

// Allow evaluates transitions and reports whether a call may proceed. It
// must be paired with exactly one Settle call when it returns nil.
func (cb *CircuitBreaker) Allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.maybeEnterHalfOpenLocked()

	switch cb.state {
	case Open:
		return &flowerr.CircuitBreakerError{State: cb.state.String()}
	case HalfOpen:
		if cb.testInProgress {
			return &flowerr.CircuitBreakerError{State: cb.state.String()}
		}
		cb.halfOpenAttempts++
		if cb.halfOpenAttempts > cb.config.HalfOpenMaxAttempts {
			cb.tripToOpenLocked()
			return &flowerr.CircuitBreakerError{State: cb.state.String()}
		}
		cb.testInProgress = true
	}
	return nil
}

// Settle records the outcome of a call that Allow admitted.
func (cb *CircuitBreaker) Settle(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	enteringState := cb.state

	if cb.config.ShouldTripOnError != nil && err != nil && !cb.config.ShouldTripOnError(err) {
		// Failure propagates without affecting breaker state.
		if enteringState == HalfOpen {
			cb.testInProgress = false
		}
		return
	}

	if err == nil {
		if enteringState == HalfOpen {
			cb.state = Closed
			cb.failures = 0
			cb.halfOpenAttempts = 0
			cb.testInProgress = false
			cb.recordTransition(Closed)
			cb.invokeHook(cb.config.OnReset)
		} else if enteringState == Closed {
			cb.failures = 0
		}
		return
	}

	cb.invokeHook(func() {
		if cb.config.OnError != nil {
			cb.config.OnError(err)
		}
	})

	switch enteringState {
	case Closed:
		cb.failures++
		if cb.failures >= cb.config.MaxFailures {
			cb.tripToOpenLocked()
		}
	case HalfOpen:
		cb.testInProgress = false
		cb.tripToOpenLocked()
	}
}

func (cb *CircuitBreaker) tripToOpenLocked() {
	cb.state = Open
	cb.trippedAt = time.Now()
	cb.nextAvailable = cb.trippedAt.Add(cb.config.ResetAfter)
	cb.recordTransition(Open)
	cb.invokeHook(cb.config.OnTripped)
}

// Execute runs op through the breaker: Allow, then Settle with op's
// error.
func (cb *CircuitBreaker) Execute(op func() error) error {
	if err := cb.Allow(); err != nil {
		return err
	}
	err := op()
	cb.Settle(err)
	return err
}

// Metrics is a point-in-time view of a CircuitBreaker's state.
type Metrics struct {
	State         State
	Failures      int
	TrippedAt     time.Time
	NextAvailable time.Time
}

// Snapshot returns the breaker's current state and counters.
func (cb *CircuitBreaker) Snapshot() Metrics {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.maybeEnterHalfOpenLocked()
	return Metrics{
		State:         cb.state,
		Failures:      cb.failures,
		TrippedAt:     cb.trippedAt,
		NextAvailable: cb.nextAvailable,
	}
}

// Reset forces the breaker back to Closed, clearing counters.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = Closed
	cb.failures = 0
	cb.halfOpenAttempts = 0
	cb.testInProgress = false
}
