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

// Merge2Func combines one lock-step pair into a single result.
type Merge2Func[A, B, R any] func(a A, b B) R

// In2Out1 is the 2-in/1-out synchronous merge runtime. Each round performs
// one definite receive per input in fixed order, so progress blocks until the
// slowest upstream has delivered that round's value. There is no buffering
// across rounds beyond the input queues' own capacity; a faster upstream
// simply backs up on its edge.
type In2Out1[A, B, R any] struct {
	*Runtime
	merge Merge2Func[A, B, R]
	inA   *queue.Queue[A]
	inB   *queue.Queue[B]
	out   *queue.Queue[R]
}

// NewIn2Out1 creates a two-input merge runtime. Queues are assigned by the
// wiring layer before Start.
func NewIn2Out1[A, B, R any](def node.Definition, merge Merge2Func[A, B, R], reg *registry.Registry, logger *zap.Logger) (*In2Out1[A, B, R], error) {
	if merge == nil {
		return nil, flowerrors.NewError("MERGE_CONFIG", "merge function cannot be nil", nil)
	}
	base, err := newRuntime(def, reg, logger)
	if err != nil {
		return nil, err
	}
	return &In2Out1[A, B, R]{Runtime: base, merge: merge}, nil
}

// SetInputs attaches both upstream queues. Call before Start.
func (m *In2Out1[A, B, R]) SetInputs(a *queue.Queue[A], b *queue.Queue[B]) {
	m.inA, m.inB = a, b
}

// SetOutput attaches the downstream queue. Call before Start.
func (m *In2Out1[A, B, R]) SetOutput(q *queue.Queue[R]) { m.out = q }

// Output returns the attached output queue.
func (m *In2Out1[A, B, R]) Output() *queue.Queue[R] { return m.out }

// Start launches the join loop on the scheduler.
func (m *In2Out1[A, B, R]) Start(ctx context.Context, sched scheduler.Scheduler) error {
	return m.launch(ctx, sched, m.run, func() {
		if m.out != nil {
			m.out.Close()
		}
	})
}

func (m *In2Out1[A, B, R]) run(ctx context.Context) {
	if m.inA == nil || m.inB == nil || m.out == nil {
		m.warnNotWired()
		return
	}
	for {
		if !m.awaitRound(ctx) {
			return
		}
		a, ok := recv(ctx, m.inA)
		if !ok {
			return
		}
		b, ok := recv(ctx, m.inB)
		if !ok {
			return
		}
		if !emit(ctx, m.out, m.merge(a, b)) {
			return
		}
	}
}

// Merge3Func combines one lock-step triple into a single result.
type Merge3Func[A, B, C, R any] func(a A, b B, c C) R

// In3Out1 is the 3-in/1-out synchronous merge runtime.
type In3Out1[A, B, C, R any] struct {
	*Runtime
	merge Merge3Func[A, B, C, R]
	inA   *queue.Queue[A]
	inB   *queue.Queue[B]
	inC   *queue.Queue[C]
	out   *queue.Queue[R]
}

// NewIn3Out1 creates a three-input merge runtime.
func NewIn3Out1[A, B, C, R any](def node.Definition, merge Merge3Func[A, B, C, R], reg *registry.Registry, logger *zap.Logger) (*In3Out1[A, B, C, R], error) {
	if merge == nil {
		return nil, flowerrors.NewError("MERGE_CONFIG", "merge function cannot be nil", nil)
	}
	base, err := newRuntime(def, reg, logger)
	if err != nil {
		return nil, err
	}
	return &In3Out1[A, B, C, R]{Runtime: base, merge: merge}, nil
}

// SetInputs attaches all upstream queues. Call before Start.
func (m *In3Out1[A, B, C, R]) SetInputs(a *queue.Queue[A], b *queue.Queue[B], c *queue.Queue[C]) {
	m.inA, m.inB, m.inC = a, b, c
}

// SetOutput attaches the downstream queue. Call before Start.
func (m *In3Out1[A, B, C, R]) SetOutput(q *queue.Queue[R]) { m.out = q }

// Output returns the attached output queue.
func (m *In3Out1[A, B, C, R]) Output() *queue.Queue[R] { return m.out }

// Start launches the join loop on the scheduler.
func (m *In3Out1[A, B, C, R]) Start(ctx context.Context, sched scheduler.Scheduler) error {
	return m.launch(ctx, sched, m.run, func() {
		if m.out != nil {
			m.out.Close()
		}
	})
}

func (m *In3Out1[A, B, C, R]) run(ctx context.Context) {
	if m.inA == nil || m.inB == nil || m.inC == nil || m.out == nil {
		m.warnNotWired()
		return
	}
	for {
		if !m.awaitRound(ctx) {
			return
		}
		a, ok := recv(ctx, m.inA)
		if !ok {
			return
		}
		b, ok := recv(ctx, m.inB)
		if !ok {
			return
		}
		c, ok := recv(ctx, m.inC)
		if !ok {
			return
		}
		if !emit(ctx, m.out, m.merge(a, b, c)) {
			return
		}
	}
}
