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

// ConsumeFunc is a user-supplied consumption routine invoked once per
// received value.
type ConsumeFunc[T any] func(ctx context.Context, v T)

// Sink is the 1-in/0-out runtime. Closure of the input queue is its sole
// normal termination signal.
type Sink[T any] struct {
	*Runtime
	consume ConsumeFunc[T]
	in      *queue.Queue[T]
}

// NewSink creates a sink runtime. The input queue is assigned by the wiring
// layer via SetInput before Start.
func NewSink[T any](def node.Definition, consume ConsumeFunc[T], reg *registry.Registry, logger *zap.Logger) (*Sink[T], error) {
	if consume == nil {
		return nil, flowerrors.NewError("SINK_CONFIG", "consume function cannot be nil", nil)
	}
	base, err := newRuntime(def, reg, logger)
	if err != nil {
		return nil, err
	}
	return &Sink[T]{Runtime: base, consume: consume}, nil
}

// SetInput attaches the upstream queue. Call before Start.
func (s *Sink[T]) SetInput(q *queue.Queue[T]) { s.in = q }

// Start launches the consumption loop on the scheduler.
func (s *Sink[T]) Start(ctx context.Context, sched scheduler.Scheduler) error {
	return s.launch(ctx, sched, s.run, nil)
}

func (s *Sink[T]) run(ctx context.Context) {
	if s.in == nil {
		s.warnNotWired()
		return
	}
	for {
		if !s.awaitRound(ctx) {
			return
		}
		v, ok := recv(ctx, s.in)
		if !ok {
			return
		}
		s.consume(ctx, v)
	}
}

// Consume2Func consumes one lock-step pair per round.
type Consume2Func[A, B any] func(ctx context.Context, a A, b B)

// In2Sink is the 2-in/0-out runtime. Each round receives exactly one value
// from every input in fixed order before invoking the consumption routine;
// any input closing ends the loop.
type In2Sink[A, B any] struct {
	*Runtime
	consume Consume2Func[A, B]
	inA     *queue.Queue[A]
	inB     *queue.Queue[B]
}

// NewIn2Sink creates a two-input sink runtime.
func NewIn2Sink[A, B any](def node.Definition, consume Consume2Func[A, B], reg *registry.Registry, logger *zap.Logger) (*In2Sink[A, B], error) {
	if consume == nil {
		return nil, flowerrors.NewError("SINK_CONFIG", "consume function cannot be nil", nil)
	}
	base, err := newRuntime(def, reg, logger)
	if err != nil {
		return nil, err
	}
	return &In2Sink[A, B]{Runtime: base, consume: consume}, nil
}

// SetInputs attaches both upstream queues. Call before Start.
func (s *In2Sink[A, B]) SetInputs(a *queue.Queue[A], b *queue.Queue[B]) {
	s.inA, s.inB = a, b
}

// Start launches the join loop on the scheduler.
func (s *In2Sink[A, B]) Start(ctx context.Context, sched scheduler.Scheduler) error {
	return s.launch(ctx, sched, s.run, nil)
}

func (s *In2Sink[A, B]) run(ctx context.Context) {
	if s.inA == nil || s.inB == nil {
		s.warnNotWired()
		return
	}
	for {
		if !s.awaitRound(ctx) {
			return
		}
		a, ok := recv(ctx, s.inA)
		if !ok {
			return
		}
		b, ok := recv(ctx, s.inB)
		if !ok {
			return
		}
		s.consume(ctx, a, b)
	}
}

// Consume3Func consumes one lock-step triple per round.
type Consume3Func[A, B, C any] func(ctx context.Context, a A, b B, c C)

// In3Sink is the 3-in/0-out runtime with the same join discipline as In2Sink.
type In3Sink[A, B, C any] struct {
	*Runtime
	consume Consume3Func[A, B, C]
	inA     *queue.Queue[A]
	inB     *queue.Queue[B]
	inC     *queue.Queue[C]
}

// NewIn3Sink creates a three-input sink runtime.
func NewIn3Sink[A, B, C any](def node.Definition, consume Consume3Func[A, B, C], reg *registry.Registry, logger *zap.Logger) (*In3Sink[A, B, C], error) {
	if consume == nil {
		return nil, flowerrors.NewError("SINK_CONFIG", "consume function cannot be nil", nil)
	}
	base, err := newRuntime(def, reg, logger)
	if err != nil {
		return nil, err
	}
	return &In3Sink[A, B, C]{Runtime: base, consume: consume}, nil
}

// SetInputs attaches all upstream queues. Call before Start.
func (s *In3Sink[A, B, C]) SetInputs(a *queue.Queue[A], b *queue.Queue[B], c *queue.Queue[C]) {
	s.inA, s.inB, s.inC = a, b, c
}

// Start launches the join loop on the scheduler.
func (s *In3Sink[A, B, C]) Start(ctx context.Context, sched scheduler.Scheduler) error {
	return s.launch(ctx, sched, s.run, nil)
}

func (s *In3Sink[A, B, C]) run(ctx context.Context) {
	if s.inA == nil || s.inB == nil || s.inC == nil {
		s.warnNotWired()
		return
	}
	for {
		if !s.awaitRound(ctx) {
			return
		}
		a, ok := recv(ctx, s.inA)
		if !ok {
			return
		}
		b, ok := recv(ctx, s.inB)
		if !ok {
			return
		}
		c, ok := recv(ctx, s.inC)
		if !ok {
			return
		}
		s.consume(ctx, a, b, c)
	}
}
