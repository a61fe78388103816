package concurrency

import (
	"sync"
	"sync/atomic"
	"time"
)

// CircuitBreakerState represents the state of the circuit breaker.
type CircuitBreakerState int32

const (
	// StateClosed indicates the circuit is closed and operations are allowed.
	StateClosed CircuitBreakerState = iota

	// StateOpen indicates the circuit is open and operations are blocked.
	StateOpen

	// StateHalfOpen indicates the circuit is testing if it should close.
	StateHalfOpen
)

// String returns the lowercase state name.
func (s CircuitBreakerState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	}
	return "unknown"
}

// halfOpenSuccessTarget is how many consecutive successes in half-open close
// the circuit again.
const halfOpenSuccessTarget = 5

// CircuitBreaker prevents cascade failures during overload: after
// failureThreshold consecutive task failures the circuit opens and the
// limiter rejects new work until resetTimeout has passed.
type CircuitBreaker struct {
	state            atomic.Int32
	failures         atomic.Int64
	successes        atomic.Int64
	lastFailureNanos atomic.Int64
	failureThreshold int64
	resetTimeout     time.Duration
	mu               sync.Mutex
}

// NewCircuitBreaker creates a circuit breaker with the given threshold and
// reset timeout. Non-positive arguments fall back to 10 failures and 30s.
func NewCircuitBreaker(failureThreshold int64, resetTimeout time.Duration) *CircuitBreaker {
	if failureThreshold <= 0 {
		failureThreshold = 10
	}
	if resetTimeout <= 0 {
		resetTimeout = 30 * time.Second
	}
	return &CircuitBreaker{
		failureThreshold: failureThreshold,
		resetTimeout:     resetTimeout,
	}
}

// IsOpen reports whether operations are currently blocked. An open circuit
// transitions to half-open once the reset timeout has elapsed.
func (cb *CircuitBreaker) IsOpen() bool {
	if cb.GetState() != StateOpen {
		return false
	}
	last := cb.lastFailureNanos.Load()
	if last > 0 && time.Since(time.Unix(0, last)) > cb.resetTimeout {
		cb.transitionTo(StateHalfOpen)
		return false
	}
	return true
}

// RecordSuccess records a successful operation.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.failures.Store(0)

	if cb.GetState() == StateHalfOpen {
		if cb.successes.Add(1) >= halfOpenSuccessTarget {
			cb.transitionTo(StateClosed)
		}
	}
}

// RecordFailure records a failed operation.
func (cb *CircuitBreaker) RecordFailure() {
	cb.successes.Store(0)
	cb.lastFailureNanos.Store(time.Now().UnixNano())

	switch cb.GetState() {
	case StateClosed:
		if cb.failures.Add(1) >= cb.failureThreshold {
			cb.transitionTo(StateOpen)
		}
	case StateHalfOpen:
		// Any failure while probing reopens the circuit.
		cb.transitionTo(StateOpen)
	}
}

// GetState returns the current state.
func (cb *CircuitBreaker) GetState() CircuitBreakerState {
	return CircuitBreakerState(cb.state.Load())
}

// GetConsecutiveFailures returns the current consecutive failure count.
func (cb *CircuitBreaker) GetConsecutiveFailures() int64 {
	return cb.failures.Load()
}

// Reset forces the circuit closed and clears all counters.
func (cb *CircuitBreaker) Reset() {
	cb.transitionTo(StateClosed)
	cb.lastFailureNanos.Store(0)
}

func (cb *CircuitBreaker) transitionTo(newState CircuitBreakerState) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.GetState() == newState {
		return
	}
	cb.state.Store(int32(newState))

	switch newState {
	case StateClosed:
		cb.failures.Store(0)
		cb.successes.Store(0)
	case StateHalfOpen:
		cb.successes.Store(0)
	}
}
