// Package scheduler launches node task loops as goroutines. All runtimes in a
// flow share one scheduler; it decides the supervision policy for user-logic
// panics and, in the limited variant, how many tasks may be live at once.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/codenodeio/flow/pkg/concurrency"
)

// Scheduler launches cooperative tasks. name identifies the task in logs and
// error reports; implementations must run fn exactly once unless they return
// an error.
type Scheduler interface {
	Go(ctx context.Context, name string, fn func(context.Context)) error
}

// PanicHandler receives a recovered panic value from a task. When no handler
// is installed, panics from user logic propagate and crash the process, which
// is the default supervision policy.
type PanicHandler func(name string, recovered any)

// Option configures a scheduler.
type Option func(*options)

type options struct {
	logger       *zap.Logger
	panicHandler PanicHandler
}

// WithLogger sets the logger used for task lifecycle events.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithPanicHandler installs a handler for panics escaping task bodies.
func WithPanicHandler(h PanicHandler) Option {
	return func(o *options) { o.panicHandler = h }
}

// WithSentry installs a panic handler that reports recovered panics to the
// given Sentry hub and flushes before returning.
func WithSentry(hub *sentry.Hub) Option {
	return func(o *options) {
		if hub == nil {
			return
		}
		o.panicHandler = func(name string, recovered any) {
			hub.WithScope(func(scope *sentry.Scope) {
				scope.SetTag("task", name)
				hub.Recover(recovered)
			})
			hub.Flush(2 * time.Second)
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// GoScheduler launches every task as a plain goroutine with no admission
// control.
type GoScheduler struct {
	opts options
}

// NewGoScheduler creates an unbounded scheduler.
func NewGoScheduler(opts ...Option) *GoScheduler {
	return &GoScheduler{opts: buildOptions(opts)}
}

// Go launches fn as a goroutine.
func (s *GoScheduler) Go(ctx context.Context, name string, fn func(context.Context)) error {
	if fn == nil {
		return fmt.Errorf("task fn cannot be nil")
	}
	go runTask(ctx, name, fn, s.opts)
	return nil
}

// LimitedScheduler launches tasks through a concurrency limiter: a task holds
// a limiter slot for its whole lifetime, so at most MaxConcurrent node loops
// are live at once. Launching blocks until a slot frees up or ctx expires.
type LimitedScheduler struct {
	limiter *concurrency.Limiter
	opts    options
}

// NewLimitedScheduler creates a scheduler over the given limiter. A nil
// limiter gets one sized from the environment configuration.
func NewLimitedScheduler(limiter *concurrency.Limiter, opts ...Option) *LimitedScheduler {
	if limiter == nil {
		limiter = concurrency.NewLimiter(concurrency.LoadConfig().MaxConcurrent)
	}
	return &LimitedScheduler{limiter: limiter, opts: buildOptions(opts)}
}

// Go acquires a limiter slot, then launches fn as a goroutine that releases
// the slot on exit.
func (s *LimitedScheduler) Go(ctx context.Context, name string, fn func(context.Context)) error {
	if fn == nil {
		return fmt.Errorf("task fn cannot be nil")
	}
	if err := s.limiter.Acquire(ctx); err != nil {
		return fmt.Errorf("failed to schedule task %q: %w", name, err)
	}
	go func() {
		defer s.limiter.Release()
		runTask(ctx, name, fn, s.opts)
	}()
	return nil
}

// Limiter returns the scheduler's limiter for observability.
func (s *LimitedScheduler) Limiter() *concurrency.Limiter {
	return s.limiter
}

func runTask(ctx context.Context, name string, fn func(context.Context), opts options) {
	if opts.panicHandler != nil {
		defer func() {
			if r := recover(); r != nil {
				opts.logger.Error("task panicked",
					zap.String("task", name),
					zap.Any("panic", r))
				opts.panicHandler(name, r)
			}
		}()
	}

	opts.logger.Debug("task started", zap.String("task", name))
	fn(ctx)
	opts.logger.Debug("task finished", zap.String("task", name))
}
