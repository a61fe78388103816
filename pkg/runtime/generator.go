package runtime

import (
	"context"
	"time"

	"go.uber.org/zap"

	flowerrors "github.com/codenodeio/flow/pkg/errors"
	"github.com/codenodeio/flow/pkg/node"
	"github.com/codenodeio/flow/pkg/queue"
	"github.com/codenodeio/flow/pkg/registry"
	"github.com/codenodeio/flow/pkg/result"
	"github.com/codenodeio/flow/pkg/scheduler"
)

// EmitFunc is a user-supplied emission routine for a single-output generator.
// It pushes values through send and returns when generation is complete; send
// reports false once the runtime stopped or the output closed, at which point
// the routine should return.
type EmitFunc[T any] func(ctx context.Context, send func(T) bool)

// Generator is the 0-in/1-out runtime. It is the only single-output shape
// that creates its own output queue, since it has no upstream to supply one.
type Generator[T any] struct {
	*Runtime
	emitFn EmitFunc[T]
	out    *queue.Queue[T]
}

// NewGenerator creates a generator runtime. capacity sizes the owned output
// queue; zero or negative falls back to the configured default.
func NewGenerator[T any](def node.Definition, emitFn EmitFunc[T], capacity int, reg *registry.Registry, logger *zap.Logger) (*Generator[T], error) {
	if emitFn == nil {
		return nil, flowerrors.NewError("GENERATOR_CONFIG", "emit function cannot be nil", nil)
	}
	base, err := newRuntime(def, reg, logger)
	if err != nil {
		return nil, err
	}
	if capacity <= 0 {
		capacity = base.qcap
	}
	return &Generator[T]{
		Runtime: base,
		emitFn:  emitFn,
		out:     queue.New[T](capacity),
	}, nil
}

// Output returns the generator-owned output queue for wiring downstream.
func (g *Generator[T]) Output() *queue.Queue[T] { return g.out }

// Start launches the emission loop on the scheduler.
func (g *Generator[T]) Start(ctx context.Context, sched scheduler.Scheduler) error {
	return g.launch(ctx, sched, g.run, func() { g.out.Close() })
}

func (g *Generator[T]) run(ctx context.Context) {
	send := func(v T) bool {
		if !g.awaitRound(ctx) {
			return false
		}
		return emit(ctx, g.out, v)
	}
	g.emitFn(ctx, send)
}

// Emit2Func is the emission routine for a two-output generator. Each result
// addresses any subset of the outputs; absent fields are skipped.
type Emit2Func[U, V any] func(ctx context.Context, send func(result.Result2[U, V]) bool)

// Out2Generator is the 0-in/2-out runtime with selective emission.
type Out2Generator[U, V any] struct {
	*Runtime
	emitFn Emit2Func[U, V]
	outA   *queue.Queue[U]
	outB   *queue.Queue[V]
}

// NewOut2Generator creates a two-output generator owning both output queues.
func NewOut2Generator[U, V any](def node.Definition, emitFn Emit2Func[U, V], capacity int, reg *registry.Registry, logger *zap.Logger) (*Out2Generator[U, V], error) {
	if emitFn == nil {
		return nil, flowerrors.NewError("GENERATOR_CONFIG", "emit function cannot be nil", nil)
	}
	base, err := newRuntime(def, reg, logger)
	if err != nil {
		return nil, err
	}
	if capacity <= 0 {
		capacity = base.qcap
	}
	return &Out2Generator[U, V]{
		Runtime: base,
		emitFn:  emitFn,
		outA:    queue.New[U](capacity),
		outB:    queue.New[V](capacity),
	}, nil
}

// OutputA returns the first owned output queue.
func (g *Out2Generator[U, V]) OutputA() *queue.Queue[U] { return g.outA }

// OutputB returns the second owned output queue.
func (g *Out2Generator[U, V]) OutputB() *queue.Queue[V] { return g.outB }

// Start launches the emission loop on the scheduler.
func (g *Out2Generator[U, V]) Start(ctx context.Context, sched scheduler.Scheduler) error {
	return g.launch(ctx, sched, g.run, func() {
		g.outA.Close()
		g.outB.Close()
	})
}

func (g *Out2Generator[U, V]) run(ctx context.Context) {
	g.emitFn(ctx, g.send(ctx))
}

// send builds the selective-emit callback. The gate check happens before any
// send so an emission produced while stopping is dropped rather than pushed
// into a queue being torn down.
func (g *Out2Generator[U, V]) send(ctx context.Context) func(result.Result2[U, V]) bool {
	return func(res result.Result2[U, V]) bool {
		if !g.awaitRound(ctx) {
			return false
		}
		return emitOpt(ctx, g.outA, res.A) && emitOpt(ctx, g.outB, res.B)
	}
}

// Emit3Func is the emission routine for a three-output generator.
type Emit3Func[U, V, W any] func(ctx context.Context, send func(result.Result3[U, V, W]) bool)

// Out3Generator is the 0-in/3-out runtime with selective emission.
type Out3Generator[U, V, W any] struct {
	*Runtime
	emitFn Emit3Func[U, V, W]
	outA   *queue.Queue[U]
	outB   *queue.Queue[V]
	outC   *queue.Queue[W]
}

// NewOut3Generator creates a three-output generator owning all output queues.
func NewOut3Generator[U, V, W any](def node.Definition, emitFn Emit3Func[U, V, W], capacity int, reg *registry.Registry, logger *zap.Logger) (*Out3Generator[U, V, W], error) {
	if emitFn == nil {
		return nil, flowerrors.NewError("GENERATOR_CONFIG", "emit function cannot be nil", nil)
	}
	base, err := newRuntime(def, reg, logger)
	if err != nil {
		return nil, err
	}
	if capacity <= 0 {
		capacity = base.qcap
	}
	return &Out3Generator[U, V, W]{
		Runtime: base,
		emitFn:  emitFn,
		outA:    queue.New[U](capacity),
		outB:    queue.New[V](capacity),
		outC:    queue.New[W](capacity),
	}, nil
}

// OutputA returns the first owned output queue.
func (g *Out3Generator[U, V, W]) OutputA() *queue.Queue[U] { return g.outA }

// OutputB returns the second owned output queue.
func (g *Out3Generator[U, V, W]) OutputB() *queue.Queue[V] { return g.outB }

// OutputC returns the third owned output queue.
func (g *Out3Generator[U, V, W]) OutputC() *queue.Queue[W] { return g.outC }

// Start launches the emission loop on the scheduler.
func (g *Out3Generator[U, V, W]) Start(ctx context.Context, sched scheduler.Scheduler) error {
	return g.launch(ctx, sched, g.run, func() {
		g.outA.Close()
		g.outB.Close()
		g.outC.Close()
	})
}

func (g *Out3Generator[U, V, W]) run(ctx context.Context) {
	send := func(res result.Result3[U, V, W]) bool {
		if !g.awaitRound(ctx) {
			return false
		}
		return emitOpt(ctx, g.outA, res.A) &&
			emitOpt(ctx, g.outB, res.B) &&
			emitOpt(ctx, g.outC, res.C)
	}
	g.emitFn(ctx, send)
}

// TickFunc produces one round's selective result per timer tick. It is pure
// per-tick user logic; the runtime owns the timing loop.
type TickFunc[U, V any] func() result.Result2[U, V]

// TickOut2Generator is a two-output generator driven by a fixed interval:
// every tick invokes the user function once and feeds its result through the
// selective-emit path. Periodic nodes get timing for free and expose only a
// pure per-tick function.
type TickOut2Generator[U, V any] struct {
	*Out2Generator[U, V]
	interval time.Duration
	tick     TickFunc[U, V]
}

// NewTickOut2Generator creates a timed two-output generator. interval must be
// positive.
func NewTickOut2Generator[U, V any](def node.Definition, interval time.Duration, tick TickFunc[U, V], capacity int, reg *registry.Registry, logger *zap.Logger) (*TickOut2Generator[U, V], error) {
	if interval <= 0 {
		return nil, flowerrors.NewError("GENERATOR_CONFIG", "tick interval must be positive", nil)
	}
	if tick == nil {
		return nil, flowerrors.NewError("GENERATOR_CONFIG", "tick function cannot be nil", nil)
	}
	inner, err := NewOut2Generator[U, V](def, func(context.Context, func(result.Result2[U, V]) bool) {}, capacity, reg, logger)
	if err != nil {
		return nil, err
	}
	return &TickOut2Generator[U, V]{
		Out2Generator: inner,
		interval:      interval,
		tick:          tick,
	}, nil
}

// Start launches the tick loop on the scheduler.
func (g *TickOut2Generator[U, V]) Start(ctx context.Context, sched scheduler.Scheduler) error {
	return g.launch(ctx, sched, g.runTicks, func() {
		g.outA.Close()
		g.outB.Close()
	})
}

func (g *TickOut2Generator[U, V]) runTicks(ctx context.Context) {
	send := g.send(ctx)
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		if !g.awaitRound(ctx) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if !send(g.tick()) {
			return
		}
	}
}
