package runtime

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	flowerrors "github.com/codenodeio/flow/pkg/errors"
	"github.com/codenodeio/flow/pkg/node"
	"github.com/codenodeio/flow/pkg/queue"
	"github.com/codenodeio/flow/pkg/registry"
	"github.com/codenodeio/flow/pkg/scheduler"
)

func testDef(id string) node.StaticDefinition {
	return node.NewStaticDefinition(id, id, false)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s: %s", timeout, msg)
}

// recorder collects consumed values under a lock.
type recorder[T any] struct {
	mu     sync.Mutex
	values []T
}

func (r *recorder[T]) add(v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, v)
}

func (r *recorder[T]) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.values)
}

func (r *recorder[T]) snapshot() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.values...)
}

// drain receives from q until it closes and returns everything received.
func drain[T any](t *testing.T, q *queue.Queue[T]) []T {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var out []T
	for {
		v, err := q.Receive(ctx)
		if err != nil {
			if errors.Is(err, flowerrors.ErrQueueClosed) {
				return out
			}
			t.Fatalf("drain: %v", err)
		}
		out = append(out, v)
	}
}

func emitInts(vals ...int) EmitFunc[int] {
	return func(ctx context.Context, send func(int) bool) {
		for _, v := range vals {
			if !send(v) {
				return
			}
		}
	}
}

func TestStartTwiceKeepsSingleLiveTask(t *testing.T) {
	var live atomic.Int32
	var overlapped atomic.Bool

	emitFn := func(ctx context.Context, send func(int) bool) {
		if live.Add(1) > 1 {
			overlapped.Store(true)
		}
		defer live.Add(-1)
		for i := 0; ; i++ {
			if !send(i) {
				return
			}
		}
	}

	g, err := NewGenerator[int](testDef("gen"), emitFn, 2, nil, nil)
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}
	sched := scheduler.NewGoScheduler()

	if err := g.Start(context.Background(), sched); err != nil {
		t.Fatalf("first Start failed: %v", err)
	}
	// The second Start cancels the first task and must wait for it to exit
	// before launching the replacement loop.
	if err := g.Start(context.Background(), sched); err != nil {
		t.Fatalf("second Start failed: %v", err)
	}

	waitFor(t, time.Second, func() bool { return live.Load() == 1 }, "one live task after restart")
	if overlapped.Load() {
		t.Fatal("two task loops were live at once")
	}

	if err := g.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if overlapped.Load() {
		t.Fatal("two task loops were live at once")
	}
}

func TestStopClosesOutputWhileBlockedOnReceive(t *testing.T) {
	f, err := NewFilter[int](testDef("filter"), func(int) bool { return true }, nil, nil)
	if err != nil {
		t.Fatalf("NewFilter failed: %v", err)
	}
	in := queue.New[int](1)
	out := queue.New[int](1)
	f.SetInput(in)
	f.SetOutput(out)

	if err := f.Start(context.Background(), scheduler.NewGoScheduler()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !f.IsRunning() {
		t.Fatal("expected RUNNING after Start")
	}

	// The loop is blocked receiving from the empty input. Stop must cancel
	// it, and by the time Stop returns the owned output is closed.
	if err := f.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if !f.IsIdle() {
		t.Fatalf("expected IDLE after Stop, got %s", f.State())
	}
	if !out.IsClosed() {
		t.Fatal("expected output queue closed after Stop")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	g, err := NewGenerator[int](testDef("gen"), emitInts(1), 2, nil, nil)
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}

	if err := g.Start(context.Background(), scheduler.NewGoScheduler()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := g.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	// Stopping an already-idle runtime is a no-op.
	if err := g.Stop(); err != nil {
		t.Fatalf("second Stop failed: %v", err)
	}
	if !g.IsIdle() {
		t.Fatalf("expected IDLE, got %s", g.State())
	}
}

func TestPauseResumeLosesNothing(t *testing.T) {
	const n = 100

	vals := make([]int, n)
	for i := range vals {
		vals[i] = i + 1
	}

	rec := &recorder[int]{}
	g, err := NewGenerator[int](testDef("gen"), emitInts(vals...), 4, nil, nil)
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}
	s, err := NewSink[int](testDef("sink"), func(_ context.Context, v int) { rec.add(v) }, nil, nil)
	if err != nil {
		t.Fatalf("NewSink failed: %v", err)
	}
	s.SetInput(g.Output())

	sched := scheduler.NewGoScheduler()
	if err := s.Start(context.Background(), sched); err != nil {
		t.Fatalf("sink Start failed: %v", err)
	}
	if err := g.Start(context.Background(), sched); err != nil {
		t.Fatalf("generator Start failed: %v", err)
	}

	waitFor(t, time.Second, func() bool { return rec.len() >= 5 }, "sink consumed some values")
	if err := s.Pause(); err != nil {
		t.Fatalf("Pause failed: %v", err)
	}

	// Let the in-flight round finish, then verify the loop is held.
	time.Sleep(50 * time.Millisecond)
	before := rec.len()
	time.Sleep(50 * time.Millisecond)
	after := rec.len()
	if before != after {
		t.Fatalf("sink consumed %d values while paused", after-before)
	}
	if after >= n {
		t.Fatal("sink finished before pause took effect; increase n")
	}

	if err := s.Resume(); err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	waitFor(t, 2*time.Second, s.IsIdle, "sink drained after resume")

	got := rec.snapshot()
	if len(got) != n {
		t.Fatalf("expected %d values, got %d", n, len(got))
	}
	for i, v := range got {
		if v != i+1 {
			t.Fatalf("value %d: expected %d, got %d (lost or duplicated)", i, i+1, v)
		}
	}
}

func TestStopDuringPauseIsHonored(t *testing.T) {
	g, err := NewGenerator[int](testDef("gen"), func(ctx context.Context, send func(int) bool) {
		for i := 0; ; i++ {
			if !send(i) {
				return
			}
		}
	}, 1, nil, nil)
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}

	if err := g.Start(context.Background(), scheduler.NewGoScheduler()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitFor(t, time.Second, func() bool { return g.Output().Len() > 0 }, "generator produced")

	if err := g.Pause(); err != nil {
		t.Fatalf("Pause failed: %v", err)
	}
	if err := g.Stop(); err != nil {
		t.Fatalf("Stop during pause failed: %v", err)
	}
	if !g.IsIdle() {
		t.Fatalf("expected IDLE after Stop, got %s", g.State())
	}
	if !g.Output().IsClosed() {
		t.Fatal("expected output closed after Stop during pause")
	}
}

func TestUnwiredRuntimeIsANoOp(t *testing.T) {
	s, err := NewSink[int](testDef("sink"), func(context.Context, int) {}, nil, nil)
	if err != nil {
		t.Fatalf("NewSink failed: %v", err)
	}

	// No input wired: the loop must return without error.
	if err := s.Start(context.Background(), scheduler.NewGoScheduler()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitFor(t, time.Second, s.IsIdle, "unwired sink returned to IDLE")
}

func TestStartRequiresScheduler(t *testing.T) {
	g, err := NewGenerator[int](testDef("gen"), emitInts(1), 1, nil, nil)
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}
	if err := g.Start(context.Background(), nil); !errors.Is(err, flowerrors.ErrNilScheduler) {
		t.Fatalf("expected ErrNilScheduler, got %v", err)
	}
}

func TestConstructorRejectsInvalidDefinition(t *testing.T) {
	if _, err := NewGenerator[int](node.StaticDefinition{}, emitInts(1), 1, nil, nil); !errors.Is(err, flowerrors.ErrInvalidDefinition) {
		t.Fatalf("expected ErrInvalidDefinition, got %v", err)
	}
	if _, err := NewGenerator[int](testDef("gen"), nil, 1, nil, nil); err == nil {
		t.Fatal("expected error for nil emit function")
	}
}

func TestRegistryPauseAllHonorsIndependentControl(t *testing.T) {
	reg := registry.New(nil)
	sched := scheduler.NewGoScheduler()

	spin := func(ctx context.Context, send func(int) bool) {
		for i := 0; ; i++ {
			if !send(i) {
				return
			}
		}
	}

	g1, err := NewGenerator[int](node.NewStaticDefinition("g1", "g1", false), spin, 1, reg, nil)
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}
	g2, err := NewGenerator[int](node.NewStaticDefinition("g2", "g2", false), spin, 1, reg, nil)
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}
	indep, err := NewGenerator[int](node.NewStaticDefinition("g3", "g3", true), spin, 1, reg, nil)
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}

	for _, g := range []*Generator[int]{g1, g2, indep} {
		if err := g.Start(context.Background(), sched); err != nil {
			t.Fatalf("Start failed: %v", err)
		}
	}
	if reg.Count() != 3 {
		t.Fatalf("expected 3 registered runtimes, got %d", reg.Count())
	}

	if err := reg.PauseAll(); err != nil {
		t.Fatalf("PauseAll failed: %v", err)
	}
	if !g1.IsPaused() || !g2.IsPaused() {
		t.Fatal("expected regular runtimes to be PAUSED")
	}
	if !indep.IsRunning() {
		t.Fatal("independent-control runtime must stay RUNNING")
	}

	if err := reg.ResumeAll(); err != nil {
		t.Fatalf("ResumeAll failed: %v", err)
	}
	if !g1.IsRunning() || !g2.IsRunning() {
		t.Fatal("expected regular runtimes to be RUNNING after ResumeAll")
	}

	if err := reg.StopAll(); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}
	for _, g := range []*Generator[int]{g1, g2, indep} {
		if !g.IsIdle() {
			t.Fatalf("expected IDLE after StopAll, got %s", g.State())
		}
	}
	if reg.Count() != 0 {
		t.Fatalf("expected empty registry after StopAll, got %d", reg.Count())
	}
}
