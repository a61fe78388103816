package runtime

import (
	"context"

	"go.uber.org/zap"

	flowerrors "github.com/codenodeio/flow/pkg/errors"
	"github.com/codenodeio/flow/pkg/node"
	"github.com/codenodeio/flow/pkg/queue"
	"github.com/codenodeio/flow/pkg/registry"
	"github.com/codenodeio/flow/pkg/result"
	"github.com/codenodeio/flow/pkg/scheduler"
)

// RouteFunc maps one input value to a selective two-output result. Returning
// a result with a single present field routes the round to that output;
// all-absent emits nothing.
type RouteFunc[In, U, V any] func(v In) result.Result2[U, V]

// In1Out2 is the 1-in/2-out selective fan-out runtime.
type In1Out2[In, U, V any] struct {
	*Runtime
	route RouteFunc[In, U, V]
	in    *queue.Queue[In]
	outA  *queue.Queue[U]
	outB  *queue.Queue[V]
}

// NewIn1Out2 creates a one-input fan-out runtime. Queues are assigned by the
// wiring layer before Start.
func NewIn1Out2[In, U, V any](def node.Definition, route RouteFunc[In, U, V], reg *registry.Registry, logger *zap.Logger) (*In1Out2[In, U, V], error) {
	if route == nil {
		return nil, flowerrors.NewError("FANOUT_CONFIG", "route function cannot be nil", nil)
	}
	base, err := newRuntime(def, reg, logger)
	if err != nil {
		return nil, err
	}
	return &In1Out2[In, U, V]{Runtime: base, route: route}, nil
}

// SetInput attaches the upstream queue. Call before Start.
func (p *In1Out2[In, U, V]) SetInput(q *queue.Queue[In]) { p.in = q }

// SetOutputs attaches both downstream queues. Call before Start.
func (p *In1Out2[In, U, V]) SetOutputs(a *queue.Queue[U], b *queue.Queue[V]) {
	p.outA, p.outB = a, b
}

// OutputA returns the first attached output queue.
func (p *In1Out2[In, U, V]) OutputA() *queue.Queue[U] { return p.outA }

// OutputB returns the second attached output queue.
func (p *In1Out2[In, U, V]) OutputB() *queue.Queue[V] { return p.outB }

// Start launches the fan-out loop on the scheduler.
func (p *In1Out2[In, U, V]) Start(ctx context.Context, sched scheduler.Scheduler) error {
	return p.launch(ctx, sched, p.run, func() {
		if p.outA != nil {
			p.outA.Close()
		}
		if p.outB != nil {
			p.outB.Close()
		}
	})
}

func (p *In1Out2[In, U, V]) run(ctx context.Context) {
	if p.in == nil || p.outA == nil || p.outB == nil {
		p.warnNotWired()
		return
	}
	for {
		if !p.awaitRound(ctx) {
			return
		}
		v, ok := recv(ctx, p.in)
		if !ok {
			return
		}
		res := p.route(v)
		if !emitOpt(ctx, p.outA, res.A) || !emitOpt(ctx, p.outB, res.B) {
			return
		}
	}
}

// Combine2Func merges one lock-step pair into a selective two-output result.
type Combine2Func[A, B, U, V any] func(a A, b B) result.Result2[U, V]

// In2Out2 is the 2-in/2-out runtime: lock-step join on the inputs, selective
// fan-out on the outputs.
type In2Out2[A, B, U, V any] struct {
	*Runtime
	combine Combine2Func[A, B, U, V]
	inA     *queue.Queue[A]
	inB     *queue.Queue[B]
	outA    *queue.Queue[U]
	outB    *queue.Queue[V]
}

// NewIn2Out2 creates a two-input fan-out runtime.
func NewIn2Out2[A, B, U, V any](def node.Definition, combine Combine2Func[A, B, U, V], reg *registry.Registry, logger *zap.Logger) (*In2Out2[A, B, U, V], error) {
	if combine == nil {
		return nil, flowerrors.NewError("FANOUT_CONFIG", "combine function cannot be nil", nil)
	}
	base, err := newRuntime(def, reg, logger)
	if err != nil {
		return nil, err
	}
	return &In2Out2[A, B, U, V]{Runtime: base, combine: combine}, nil
}

// SetInputs attaches both upstream queues. Call before Start.
func (p *In2Out2[A, B, U, V]) SetInputs(a *queue.Queue[A], b *queue.Queue[B]) {
	p.inA, p.inB = a, b
}

// SetOutputs attaches both downstream queues. Call before Start.
func (p *In2Out2[A, B, U, V]) SetOutputs(a *queue.Queue[U], b *queue.Queue[V]) {
	p.outA, p.outB = a, b
}

// OutputA returns the first attached output queue.
func (p *In2Out2[A, B, U, V]) OutputA() *queue.Queue[U] { return p.outA }

// OutputB returns the second attached output queue.
func (p *In2Out2[A, B, U, V]) OutputB() *queue.Queue[V] { return p.outB }

// Start launches the join/fan-out loop on the scheduler.
func (p *In2Out2[A, B, U, V]) Start(ctx context.Context, sched scheduler.Scheduler) error {
	return p.launch(ctx, sched, p.run, func() {
		if p.outA != nil {
			p.outA.Close()
		}
		if p.outB != nil {
			p.outB.Close()
		}
	})
}

func (p *In2Out2[A, B, U, V]) run(ctx context.Context) {
	if p.inA == nil || p.inB == nil || p.outA == nil || p.outB == nil {
		p.warnNotWired()
		return
	}
	for {
		if !p.awaitRound(ctx) {
			return
		}
		a, ok := recv(ctx, p.inA)
		if !ok {
			return
		}
		b, ok := recv(ctx, p.inB)
		if !ok {
			return
		}
		res := p.combine(a, b)
		if !emitOpt(ctx, p.outA, res.A) || !emitOpt(ctx, p.outB, res.B) {
			return
		}
	}
}
