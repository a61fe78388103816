package runtime

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/codenodeio/flow/pkg/concurrency"
	flowerrors "github.com/codenodeio/flow/pkg/errors"
	"github.com/codenodeio/flow/pkg/execution"
	"github.com/codenodeio/flow/pkg/node"
	"github.com/codenodeio/flow/pkg/registry"
	"github.com/codenodeio/flow/pkg/scheduler"
)

// Runtime is the lifecycle core shared by every node shape. It owns at most
// one live task at a time, the node's execution state, and the bookkeeping
// that registers with the flow registry on start and closes owned output
// queues when the task loop exits.
//
// The shape variants embed Runtime and contribute only their loop body and
// queue fields.
type Runtime struct {
	def    node.Definition
	state  *execution.State
	reg    *registry.Registry
	logger *zap.Logger
	tracer trace.Tracer
	wake   time.Duration
	qcap   int

	mu         sync.Mutex
	cancel     context.CancelFunc
	done       chan struct{}
	taskID     uuid.UUID
	superseded bool
}

func newRuntime(def node.Definition, reg *registry.Registry, logger *zap.Logger) (*Runtime, error) {
	if def == nil || def.ID() == "" {
		return nil, flowerrors.ErrInvalidDefinition
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := concurrency.LoadConfig()
	return &Runtime{
		def:    def,
		state:  execution.NewState(),
		reg:    reg,
		logger: logger.With(zap.String("nodeID", def.ID())),
		tracer: otel.Tracer("flow/runtime"),
		wake:   cfg.WakeInterval,
		qcap:   cfg.QueueCapacity,
	}, nil
}

// NodeID returns the owning node's stable identifier.
func (r *Runtime) NodeID() string { return r.def.ID() }

// Definition returns the node definition the runtime was constructed with.
func (r *Runtime) Definition() node.Definition { return r.def }

// IndependentControl reports whether the node opts out of registry-wide
// pause and resume.
func (r *Runtime) IndependentControl() bool { return r.def.IndependentControl() }

// State returns the current execution state.
func (r *Runtime) State() execution.Status { return r.state.Current() }

// IsRunning reports whether the runtime is RUNNING.
func (r *Runtime) IsRunning() bool { return r.state.IsRunning() }

// IsPaused reports whether the runtime is PAUSED.
func (r *Runtime) IsPaused() bool { return r.state.IsPaused() }

// IsIdle reports whether the runtime is IDLE.
func (r *Runtime) IsIdle() bool { return r.state.IsIdle() }

// Pause holds the task loop at its gate. Legal only from RUNNING.
func (r *Runtime) Pause() error {
	if err := r.state.Pause(); err != nil {
		return err
	}
	r.logger.Debug("runtime paused")
	return nil
}

// Resume releases a paused task loop. Legal only from PAUSED.
func (r *Runtime) Resume() error {
	if err := r.state.Resume(); err != nil {
		return err
	}
	r.logger.Debug("runtime resumed")
	return nil
}

// Stop unregisters from the registry, transitions to IDLE, cancels the task,
// and waits for the loop to exit so owned output queues are closed by the
// time Stop returns. Stopping an already-idle runtime is a no-op.
func (r *Runtime) Stop() error {
	if r.reg != nil {
		r.reg.Unregister(r.def.ID())
	}

	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	r.state.Stop()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done

	r.logger.Info("runtime stopped")
	return nil
}

// launch is the shared start skeleton. It supersedes any live task (a
// runtime never has two concurrent loops), registers with the registry,
// transitions to RUNNING, and hands body to the scheduler. closeOutputs is
// invoked when the loop exits for any reason, unless the task was superseded
// by a restart that still owns the same queues.
func (r *Runtime) launch(ctx context.Context, sched scheduler.Scheduler, body func(context.Context), closeOutputs func()) error {
	if sched == nil {
		return flowerrors.ErrNilScheduler
	}
	if ctx == nil {
		ctx = context.Background()
	}

	r.mu.Lock()
	prevCancel, prevDone := r.cancel, r.done
	r.superseded = true
	r.mu.Unlock()
	if prevCancel != nil {
		prevCancel()
	}
	if prevDone != nil {
		<-prevDone
	}

	taskCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	taskID := uuid.New()

	r.mu.Lock()
	r.cancel, r.done, r.taskID = cancel, done, taskID
	r.superseded = false
	r.mu.Unlock()

	if r.reg != nil {
		if err := r.reg.Register(r); err != nil {
			r.clearTask()
			cancel()
			return err
		}
	}

	r.state.Start()
	r.logger.Info("runtime starting", zap.String("taskID", taskID.String()))

	err := sched.Go(taskCtx, r.def.ID(), func(tctx context.Context) {
		tctx, span := r.tracer.Start(tctx, "runtime.task",
			trace.WithAttributes(
				attribute.String("node.id", r.def.ID()),
				attribute.String("task.id", taskID.String()),
			))
		defer span.End()
		defer close(done)
		defer r.finishTask(closeOutputs)
		body(tctx)
	})
	if err != nil {
		r.clearTask()
		cancel()
		r.state.Stop()
		if r.reg != nil {
			r.reg.Unregister(r.def.ID())
		}
		return err
	}
	return nil
}

// finishTask closes owned outputs and forces IDLE when a loop exits on its
// own (input closed, emission routine returned). A superseded task skips
// both: the restarted task owns the same queues.
func (r *Runtime) finishTask(closeOutputs func()) {
	r.mu.Lock()
	superseded := r.superseded
	r.mu.Unlock()
	if superseded {
		return
	}

	if closeOutputs != nil {
		closeOutputs()
	}
	r.state.Stop()
	r.logger.Debug("task finished")
}

func (r *Runtime) clearTask() {
	r.mu.Lock()
	r.cancel, r.done = nil, nil
	r.mu.Unlock()
}

// awaitRound blocks while the runtime is paused and reports whether the loop
// may proceed with another round.
func (r *Runtime) awaitRound(ctx context.Context) bool {
	status, err := r.state.AwaitRunning(ctx, r.wake)
	return err == nil && status == execution.Running
}

func (r *Runtime) warnNotWired() {
	r.logger.Warn("runtime started without all queues wired; loop is a no-op")
}
