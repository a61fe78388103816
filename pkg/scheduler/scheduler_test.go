package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/codenodeio/flow/pkg/concurrency"
)

func TestGoSchedulerRunsTask(t *testing.T) {
	s := NewGoScheduler()

	done := make(chan struct{})
	err := s.Go(context.Background(), "task", func(ctx context.Context) {
		close(done)
	})
	if err != nil {
		t.Fatalf("Go failed: %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task did not run")
	}
}

func TestGoSchedulerRejectsNilTask(t *testing.T) {
	s := NewGoScheduler()
	if err := s.Go(context.Background(), "task", nil); err == nil {
		t.Fatal("expected error for nil task fn")
	}
}

func TestGoSchedulerPassesContext(t *testing.T) {
	s := NewGoScheduler()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	err := s.Go(ctx, "task", func(ctx context.Context) {
		done <- ctx.Err()
	})
	if err != nil {
		t.Fatalf("Go failed: %v", err)
	}

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected canceled context inside task, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("task did not run")
	}
}

func TestPanicHandlerReceivesRecoveredValue(t *testing.T) {
	var mu sync.Mutex
	var gotName string
	var gotValue any

	handled := make(chan struct{})
	s := NewGoScheduler(WithPanicHandler(func(name string, recovered any) {
		mu.Lock()
		gotName = name
		gotValue = recovered
		mu.Unlock()
		close(handled)
	}))

	err := s.Go(context.Background(), "exploding", func(context.Context) {
		panic("boom")
	})
	if err != nil {
		t.Fatalf("Go failed: %v", err)
	}

	select {
	case <-handled:
	case <-time.After(time.Second):
		t.Fatal("panic handler was not invoked")
	}

	mu.Lock()
	defer mu.Unlock()
	if gotName != "exploding" {
		t.Fatalf("expected task name %q, got %q", "exploding", gotName)
	}
	if gotValue != "boom" {
		t.Fatalf("expected recovered value %q, got %v", "boom", gotValue)
	}
}

func TestLimitedSchedulerBlocksWhenFull(t *testing.T) {
	limiter := concurrency.NewLimiter(1)
	s := NewLimitedScheduler(limiter)
	ctx := context.Background()

	release := make(chan struct{})
	err := s.Go(ctx, "holder", func(context.Context) {
		<-release
	})
	if err != nil {
		t.Fatalf("Go failed: %v", err)
	}

	// The single slot is held; a second launch must not get through before
	// its context expires.
	timeoutCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	err = s.Go(timeoutCtx, "blocked", func(context.Context) {
		t.Error("task ran despite a full limiter")
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}

	close(release)

	// The slot frees once the holder exits, so a retry succeeds.
	done := make(chan struct{})
	deadline := time.Now().Add(time.Second)
	for {
		err = s.Go(ctx, "retry", func(context.Context) { close(done) })
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("slot never freed: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("retried task did not run")
	}
}

func TestLimitedSchedulerDefaultsLimiter(t *testing.T) {
	s := NewLimitedScheduler(nil)
	if s.Limiter() == nil {
		t.Fatal("expected a limiter sized from configuration")
	}

	done := make(chan struct{})
	if err := s.Go(context.Background(), "task", func(context.Context) { close(done) }); err != nil {
		t.Fatalf("Go failed: %v", err)
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task did not run")
	}
}
