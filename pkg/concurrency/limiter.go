// Package concurrency provides admission control for the shared task
// scheduler: a semaphore-based limiter with observability, a circuit breaker
// for overload protection, and environment-driven configuration.
package concurrency

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// Metrics is a point-in-time snapshot of limiter activity.
type Metrics struct {
	TotalAcquired   int64
	TotalReleased   int64
	PeakConcurrent  int64
	TotalWaitTimeNs int64
}

// Limiter provides semaphore-based concurrency control with observability.
// The scheduler acquires a slot per launched task, so a flow with more nodes
// than slots starts them as capacity frees up.
type Limiter struct {
	sem     chan struct{}
	active  atomic.Int64
	breaker *CircuitBreaker

	totalAcquired atomic.Int64
	totalReleased atomic.Int64
	peak          atomic.Int64
	totalWaitNs   atomic.Int64
}

// NewLimiter creates a limiter allowing at most maxConcurrent concurrent
// holders. Values below one are clamped to one.
func NewLimiter(maxConcurrent int) *Limiter {
	return NewLimiterWithCircuitBreaker(maxConcurrent, NewCircuitBreaker(100, 30*time.Second))
}

// NewLimiterWithCircuitBreaker creates a limiter with custom circuit breaker
// settings.
func NewLimiterWithCircuitBreaker(maxConcurrent int, cb *CircuitBreaker) *Limiter {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Limiter{
		sem:     make(chan struct{}, maxConcurrent),
		breaker: cb,
	}
}

// Acquire blocks until a slot is available or ctx expires. It fails fast when
// the circuit breaker is open.
func (l *Limiter) Acquire(ctx context.Context) error {
	if l.breaker != nil && l.breaker.IsOpen() {
		return fmt.Errorf("circuit breaker is open")
	}

	start := time.Now()
	select {
	case l.sem <- struct{}{}:
		l.totalWaitNs.Add(time.Since(start).Nanoseconds())
		l.totalAcquired.Add(1)
		l.updatePeak(l.active.Add(1))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a slot to the limiter.
func (l *Limiter) Release() {
	select {
	case <-l.sem:
		l.active.Add(-1)
		l.totalReleased.Add(1)
	default:
		// Release without a matching Acquire; nothing to return.
	}
}

// Go runs fn in a goroutine holding a slot for its whole duration, recording
// the outcome on the circuit breaker. It returns without running fn if no
// slot can be acquired.
func (l *Limiter) Go(ctx context.Context, fn func() error) error {
	if err := l.Acquire(ctx); err != nil {
		return err
	}

	go func() {
		defer l.Release()
		if err := fn(); err != nil {
			l.breaker.RecordFailure()
		} else {
			l.breaker.RecordSuccess()
		}
	}()

	return nil
}

// CurrentActive returns the number of currently held slots.
func (l *Limiter) CurrentActive() int64 {
	return l.active.Load()
}

// GetMetrics returns a snapshot of the limiter's counters.
func (l *Limiter) GetMetrics() Metrics {
	return Metrics{
		TotalAcquired:   l.totalAcquired.Load(),
		TotalReleased:   l.totalReleased.Load(),
		PeakConcurrent:  l.peak.Load(),
		TotalWaitTimeNs: l.totalWaitNs.Load(),
	}
}

// GetAverageWaitTime calculates the average wait for a slot.
func (l *Limiter) GetAverageWaitTime() time.Duration {
	m := l.GetMetrics()
	if m.TotalAcquired == 0 {
		return 0
	}
	return time.Duration(m.TotalWaitTimeNs / m.TotalAcquired)
}

// Breaker returns the limiter's circuit breaker.
func (l *Limiter) Breaker() *CircuitBreaker {
	return l.breaker
}

func (l *Limiter) updatePeak(current int64) {
	for {
		peak := l.peak.Load()
		if current <= peak || l.peak.CompareAndSwap(peak, current) {
			return
		}
	}
}
