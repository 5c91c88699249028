// Package resilience guards calls to the search cluster with a circuit breaker.
package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State represents the circuit breaker state
type State int

const (
	// StateClosed lets every call through
	StateClosed State = iota
	// StateOpen rejects calls until the reset timeout elapses
	StateOpen
	// StateHalfOpen lets a single probe call through
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned without calling the backend while the breaker is open.
var ErrCircuitOpen = errors.New("search circuit breaker is open")

// FailurePredicate decides whether an error counts against the breaker.
type FailurePredicate func(error) bool

// Option configures a CircuitBreaker.
type Option func(*CircuitBreaker)

// WithFailurePredicate replaces the default predicate, which counts every error
// except context cancellation.
func WithFailurePredicate(fn FailurePredicate) Option {
	return func(cb *CircuitBreaker) {
		if fn != nil {
			cb.isFailure = fn
		}
	}
}

// WithStateChange registers a callback invoked after each transition. It runs
// outside the breaker lock.
func WithStateChange(fn func(from, to State)) Option {
	return func(cb *CircuitBreaker) {
		cb.onChange = fn
	}
}

// withClock is used by tests.
func withClock(now func() time.Time) Option {
	return func(cb *CircuitBreaker) {
		cb.now = now
	}
}

// CircuitBreaker opens after maxFailures consecutive failures and probes the
// backend again once resetTimeout has elapsed.
type CircuitBreaker struct {
	maxFailures  int
	resetTimeout time.Duration
	isFailure    FailurePredicate
	onChange     func(from, to State)
	now          func() time.Time

	mu           sync.Mutex
	state        State
	failures     int
	openedAt     time.Time
	probeRunning bool
}

// NewCircuitBreaker creates a closed breaker. maxFailures below 1 is treated as 1.
func NewCircuitBreaker(maxFailures int, resetTimeout time.Duration, opts ...Option) *CircuitBreaker {
	if maxFailures < 1 {
		maxFailures = 1
	}
	cb := &CircuitBreaker{
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		isFailure:    countsAsFailure,
		now:          time.Now,
		state:        StateClosed,
	}
	for _, opt := range opts {
		opt(cb)
	}
	return cb
}

func countsAsFailure(err error) bool {
	return err != nil && !errors.Is(err, context.Canceled)
}

// Execute runs fn if the breaker allows it and records the outcome.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	probe, err := cb.acquire()
	if err != nil {
		return err
	}

	err = fn(ctx)
	cb.record(probe, err)
	return err
}

func (cb *CircuitBreaker) acquire() (bool, error) {
	cb.mu.Lock()
	var changed func()
	defer func() {
		cb.mu.Unlock()
		if changed != nil {
			changed()
		}
	}()

	switch cb.state {
	case StateClosed:
		return false, nil
	case StateOpen:
		if cb.now().Sub(cb.openedAt) < cb.resetTimeout {
			return false, ErrCircuitOpen
		}
		changed = cb.transition(StateHalfOpen)
		cb.probeRunning = true
		return true, nil
	default:
		// one probe at a time
		if cb.probeRunning {
			return false, ErrCircuitOpen
		}
		cb.probeRunning = true
		return true, nil
	}
}

func (cb *CircuitBreaker) record(probe bool, err error) {
	cb.mu.Lock()
	var changed func()
	defer func() {
		cb.mu.Unlock()
		if changed != nil {
			changed()
		}
	}()

	if probe {
		cb.probeRunning = false
	}
	failed := cb.isFailure(err)

	switch {
	case probe && failed:
		cb.openedAt = cb.now()
		cb.failures = 0
		changed = cb.transition(StateOpen)
	case probe:
		cb.failures = 0
		changed = cb.transition(StateClosed)
	case failed && cb.state == StateClosed:
		cb.failures++
		if cb.failures >= cb.maxFailures {
			cb.openedAt = cb.now()
			changed = cb.transition(StateOpen)
		}
	case err == nil && cb.state == StateClosed:
		cb.failures = 0
	}
}

// transition must be called with mu held; the returned func fires the callback.
func (cb *CircuitBreaker) transition(to State) func() {
	from := cb.state
	cb.state = to
	if cb.onChange == nil || from == to {
		return nil
	}
	fn := cb.onChange
	return func() { fn(from, to) }
}

// State returns the current state. An open breaker whose reset timeout elapsed
// still reports open until the next call probes the backend.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Failures returns the consecutive failure count while closed.
func (cb *CircuitBreaker) Failures() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failures
}

// Reset closes the breaker.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	changed := cb.transition(StateClosed)
	cb.failures = 0
	cb.probeRunning = false
	cb.mu.Unlock()
	if changed != nil {
		changed()
	}
}
