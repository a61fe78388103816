// Package queue provides the bounded, typed hand-off channel connecting two
// node runtimes. Each queue has exactly one producing runtime and one
// consuming runtime by construction; the producer owns the queue and closes
// it exactly once when its task loop exits.
package queue

import (
	"context"
	"sync"
	"sync/atomic"

	flowerrors "github.com/codenodeio/flow/pkg/errors"
)

// Queue is a bounded FIFO edge between two runtimes. A capacity of zero is
// legal and gives rendezvous semantics: every Send blocks until the consumer
// is ready to receive.
type Queue[T any] struct {
	ch        chan T
	closed    atomic.Bool
	closeOnce sync.Once
}

// New creates a queue with the given capacity. Negative capacities are
// treated as zero.
func New[T any](capacity int) *Queue[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Queue[T]{ch: make(chan T, capacity)}
}

// Send delivers v to the consumer, blocking while the queue is full.
// It returns ErrQueueClosed if the queue was closed and ctx.Err() if the
// context expires while blocked.
func (q *Queue[T]) Send(ctx context.Context, v T) (err error) {
	if q.closed.Load() {
		return flowerrors.ErrQueueClosed
	}

	// Close can race a blocked Send from outside the producing loop (stop()
	// closes owned outputs after cancelling the task). The recover converts
	// the send-on-closed-channel panic into ErrQueueClosed.
	defer func() {
		if recover() != nil {
			err = flowerrors.ErrQueueClosed
		}
	}()

	select {
	case q.ch <- v:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive returns the next value in FIFO order, blocking while the queue is
// empty. Values buffered before Close are still delivered; once drained,
// Receive returns ErrQueueClosed. It returns ctx.Err() if the context expires
// while blocked.
func (q *Queue[T]) Receive(ctx context.Context) (T, error) {
	var zero T
	select {
	case v, ok := <-q.ch:
		if !ok {
			return zero, flowerrors.ErrQueueClosed
		}
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Close marks the queue closed. Buffered values remain receivable. Close is
// idempotent; only the producing runtime calls it.
func (q *Queue[T]) Close() {
	q.closeOnce.Do(func() {
		q.closed.Store(true)
		close(q.ch)
	})
}

// IsClosed reports whether Close has been called.
func (q *Queue[T]) IsClosed() bool {
	return q.closed.Load()
}

// Len returns the number of buffered values.
func (q *Queue[T]) Len() int {
	return len(q.ch)
}

// Cap returns the queue capacity.
func (q *Queue[T]) Cap() int {
	return cap(q.ch)
}
