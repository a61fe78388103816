package runtime

import (
	"context"

	"go.uber.org/zap"

	flowerrors "github.com/codenodeio/flow/pkg/errors"
	"github.com/codenodeio/flow/pkg/node"
	"github.com/codenodeio/flow/pkg/queue"
	"github.com/codenodeio/flow/pkg/registry"
	"github.com/codenodeio/flow/pkg/scheduler"
)

// PredicateFunc decides whether a value is forwarded. It must be CPU-bound
// and return promptly; it runs inside the node's round, never at a
// suspension point.
type PredicateFunc[T any] func(v T) bool

// Filter is the 1-in/1-out runtime that forwards a value only when the
// predicate is true, silently dropping it otherwise.
type Filter[T any] struct {
	*Runtime
	pred PredicateFunc[T]
	in   *queue.Queue[T]
	out  *queue.Queue[T]
}

// NewFilter creates a filter runtime. Input and output queues are assigned by
// the wiring layer before Start; the filter owns the sending side of out and
// closes it when the loop exits.
func NewFilter[T any](def node.Definition, pred PredicateFunc[T], reg *registry.Registry, logger *zap.Logger) (*Filter[T], error) {
	if pred == nil {
		return nil, flowerrors.NewError("FILTER_CONFIG", "predicate cannot be nil", nil)
	}
	base, err := newRuntime(def, reg, logger)
	if err != nil {
		return nil, err
	}
	return &Filter[T]{Runtime: base, pred: pred}, nil
}

// SetInput attaches the upstream queue. Call before Start.
func (f *Filter[T]) SetInput(q *queue.Queue[T]) { f.in = q }

// SetOutput attaches the downstream queue. Call before Start.
func (f *Filter[T]) SetOutput(q *queue.Queue[T]) { f.out = q }

// Output returns the attached output queue.
func (f *Filter[T]) Output() *queue.Queue[T] { return f.out }

// Start launches the filter loop on the scheduler.
func (f *Filter[T]) Start(ctx context.Context, sched scheduler.Scheduler) error {
	return f.launch(ctx, sched, f.run, func() {
		if f.out != nil {
			f.out.Close()
		}
	})
}

func (f *Filter[T]) run(ctx context.Context) {
	if f.in == nil || f.out == nil {
		f.warnNotWired()
		return
	}
	for {
		if !f.awaitRound(ctx) {
			return
		}
		v, ok := recv(ctx, f.in)
		if !ok {
			return
		}
		if !f.pred(v) {
			continue
		}
		if !emit(ctx, f.out, v) {
			return
		}
	}
}

// MapFunc maps one input value to one output value. Like predicates, mapping
// functions are expected to be CPU-bound and return promptly.
type MapFunc[In, Out any] func(v In) Out

// Transformer is the 1-in/1-out runtime that applies a mapping to every value
// and always forwards the result.
type Transformer[In, Out any] struct {
	*Runtime
	mapFn MapFunc[In, Out]
	in    *queue.Queue[In]
	out   *queue.Queue[Out]
}

// NewTransformer creates a transformer runtime. Queues are assigned by the
// wiring layer before Start.
func NewTransformer[In, Out any](def node.Definition, mapFn MapFunc[In, Out], reg *registry.Registry, logger *zap.Logger) (*Transformer[In, Out], error) {
	if mapFn == nil {
		return nil, flowerrors.NewError("TRANSFORMER_CONFIG", "map function cannot be nil", nil)
	}
	base, err := newRuntime(def, reg, logger)
	if err != nil {
		return nil, err
	}
	return &Transformer[In, Out]{Runtime: base, mapFn: mapFn}, nil
}

// SetInput attaches the upstream queue. Call before Start.
func (t *Transformer[In, Out]) SetInput(q *queue.Queue[In]) { t.in = q }

// SetOutput attaches the downstream queue. Call before Start.
func (t *Transformer[In, Out]) SetOutput(q *queue.Queue[Out]) { t.out = q }

// Output returns the attached output queue.
func (t *Transformer[In, Out]) Output() *queue.Queue[Out] { return t.out }

// Start launches the transform loop on the scheduler.
func (t *Transformer[In, Out]) Start(ctx context.Context, sched scheduler.Scheduler) error {
	return t.launch(ctx, sched, t.run, func() {
		if t.out != nil {
			t.out.Close()
		}
	})
}

func (t *Transformer[In, Out]) run(ctx context.Context) {
	if t.in == nil || t.out == nil {
		t.warnNotWired()
		return
	}
	for {
		if !t.awaitRound(ctx) {
			return
		}
		v, ok := recv(ctx, t.in)
		if !ok {
			return
		}
		if !emit(ctx, t.out, t.mapFn(v)) {
			return
		}
	}
}
