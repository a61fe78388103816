// Package execution models the lifecycle state shared by every node runtime.
//
// A runtime is IDLE until started, RUNNING while its task loop makes progress,
// PAUSED while the loop is alive but held at its gate, and ERROR when the
// surrounding system marks it failed. The runtimes themselves never transition
// into ERROR.
package execution

import (
	"context"
	"sync"
	"time"

	flowerrors "github.com/codenodeio/flow/pkg/errors"
)

// Status is the execution state of a node runtime.
type Status int32

const (
	// Idle means no task is running for the node.
	Idle Status = iota

	// Running means the task loop is live and making progress.
	Running

	// Paused means the task loop is live but held at the pause gate.
	Paused

	// Error means the surrounding system marked the node as failed.
	Error
)

// String returns the state name for logs.
func (s Status) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Running:
		return "RUNNING"
	case Paused:
		return "PAUSED"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// State is a thread-safe execution-state holder with a notification-based
// pause gate. Task loops block in AwaitRunning while the state is Paused and
// are woken explicitly by Resume, Stop, or Fail, so pausing costs no polling
// and resuming has no fixed latency.
type State struct {
	mu   sync.Mutex
	cur  Status
	gate chan struct{} // non-nil while Paused; closed when leaving Paused
}

// NewState creates a state holder in Idle.
func NewState() *State {
	return &State{cur: Idle}
}

// Current returns the current status.
func (s *State) Current() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// IsRunning reports whether the state is Running.
func (s *State) IsRunning() bool { return s.Current() == Running }

// IsPaused reports whether the state is Paused.
func (s *State) IsPaused() bool { return s.Current() == Paused }

// IsIdle reports whether the state is Idle.
func (s *State) IsIdle() bool { return s.Current() == Idle }

// Start forces the state to Running, waking any task held at the gate.
// Starting is legal from any state because restarting a runtime supersedes
// its previous task.
func (s *State) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = Running
	s.openGate()
}

// Pause transitions Running to Paused. It returns ErrNotRunning otherwise.
func (s *State) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur != Running {
		return flowerrors.ErrNotRunning
	}
	s.cur = Paused
	s.gate = make(chan struct{})
	return nil
}

// Resume transitions Paused back to Running and wakes waiting tasks.
// It returns ErrNotPaused otherwise.
func (s *State) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur != Paused {
		return flowerrors.ErrNotPaused
	}
	s.cur = Running
	s.openGate()
	return nil
}

// Stop forces the state to Idle, waking any task held at the gate so a stop
// issued during a pause is honored promptly.
func (s *State) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = Idle
	s.openGate()
}

// Fail forces the state to Error. Only the surrounding system calls this.
func (s *State) Fail() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = Error
	s.openGate()
}

func (s *State) openGate() {
	if s.gate != nil {
		close(s.gate)
		s.gate = nil
	}
}

// AwaitRunning blocks while the state is Paused and returns the status that
// ended the wait. wake bounds each sleep as a safety net against a missed
// notification; the normal wake path is the gate channel closed by Resume,
// Stop, or Fail. The returned error is non-nil only when ctx expires.
func (s *State) AwaitRunning(ctx context.Context, wake time.Duration) (Status, error) {
	if wake <= 0 {
		wake = DefaultWakeInterval
	}
	for {
		s.mu.Lock()
		cur, gate := s.cur, s.gate
		s.mu.Unlock()

		if cur != Paused {
			return cur, nil
		}

		timer := time.NewTimer(wake)
		select {
		case <-gate:
		case <-ctx.Done():
			timer.Stop()
			return cur, ctx.Err()
		case <-timer.C:
		}
		timer.Stop()
	}
}

// DefaultWakeInterval bounds each gate wait when no interval is configured.
const DefaultWakeInterval = 25 * time.Millisecond
