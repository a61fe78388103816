package runtime

import (
	"context"

	"github.com/codenodeio/flow/pkg/queue"
	"github.com/codenodeio/flow/pkg/result"
)

// recv performs one definite receive. ok is false when the queue closed or
// the task was cancelled; both are graceful loop exits, never errors.
func recv[T any](ctx context.Context, q *queue.Queue[T]) (T, bool) {
	v, err := q.Receive(ctx)
	return v, err == nil
}

// emit sends one value downstream and reports whether the loop may continue.
func emit[T any](ctx context.Context, q *queue.Queue[T], v T) bool {
	return q.Send(ctx, v) == nil
}

// emitOpt sends the value only when present. Absent fields are skipped for
// the round; skipping always lets the loop continue.
func emitOpt[T any](ctx context.Context, q *queue.Queue[T], o result.Option[T]) bool {
	v, ok := o.Get()
	if !ok {
		return true
	}
	return emit(ctx, q, v)
}
