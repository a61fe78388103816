package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	flowerrors "github.com/codenodeio/flow/pkg/errors"
)

func TestSendReceivePreservesFIFOOrder(t *testing.T) {
	q := New[int](4)
	ctx := context.Background()

	for i := 1; i <= 4; i++ {
		if err := q.Send(ctx, i); err != nil {
			t.Fatalf("Send(%d) failed: %v", i, err)
		}
	}
	for i := 1; i <= 4; i++ {
		v, err := q.Receive(ctx)
		if err != nil {
			t.Fatalf("Receive failed: %v", err)
		}
		if v != i {
			t.Fatalf("expected %d, got %d", i, v)
		}
	}
}

func TestReceiveDrainsBufferedValuesAfterClose(t *testing.T) {
	q := New[string](4)
	ctx := context.Background()

	if err := q.Send(ctx, "a"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if err := q.Send(ctx, "b"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	q.Close()

	for _, want := range []string{"a", "b"} {
		v, err := q.Receive(ctx)
		if err != nil {
			t.Fatalf("Receive after close failed: %v", err)
		}
		if v != want {
			t.Fatalf("expected %q, got %q", want, v)
		}
	}

	if _, err := q.Receive(ctx); !errors.Is(err, flowerrors.ErrQueueClosed) {
		t.Fatalf("expected ErrQueueClosed after drain, got %v", err)
	}
}

func TestSendAfterCloseReturnsError(t *testing.T) {
	q := New[int](1)
	q.Close()

	if err := q.Send(context.Background(), 1); !errors.Is(err, flowerrors.ErrQueueClosed) {
		t.Fatalf("expected ErrQueueClosed, got %v", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	q := New[int](1)
	q.Close()
	q.Close() // must not panic

	if !q.IsClosed() {
		t.Fatal("expected queue to report closed")
	}
}

func TestSendHonorsContextWhenFull(t *testing.T) {
	q := New[int](1)
	ctx := context.Background()

	if err := q.Send(ctx, 1); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()

	err := q.Send(timeoutCtx, 2)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded on full queue, got %v", err)
	}
}

func TestReceiveHonorsContextWhenEmpty(t *testing.T) {
	q := New[int](1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := q.Receive(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded on empty queue, got %v", err)
	}
}

func TestCloseUnblocksPendingReceive(t *testing.T) {
	q := New[int](1)

	errCh := make(chan error, 1)
	go func() {
		_, err := q.Receive(context.Background())
		errCh <- err
	}()

	time.Sleep(10 * time.Millisecond)
	q.Close()

	select {
	case err := <-errCh:
		if !errors.Is(err, flowerrors.ErrQueueClosed) {
			t.Fatalf("expected ErrQueueClosed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Receive did not unblock after Close")
	}
}

func TestRendezvousQueue(t *testing.T) {
	q := New[int](0)
	if q.Cap() != 0 {
		t.Fatalf("expected capacity 0, got %d", q.Cap())
	}

	go func() {
		_ = q.Send(context.Background(), 42)
	}()

	v, err := q.Receive(context.Background())
	if err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	if v != 42 {
		t.Fatalf("expected 42, got %d", v)
	}
}
