// Package registry provides the thread-safe directory used to pause, resume,
// or stop every running node in a flow as a unit.
package registry

import (
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Controllable is the runtime surface the registry fans out over. The runtime
// package implements it; declaring it here keeps the dependency one-way.
type Controllable interface {
	NodeID() string
	IndependentControl() bool
	Pause() error
	Resume() error
	Stop() error
}

// Registry is a directory of started runtimes keyed by node id. Runtimes
// register themselves on start and unregister on stop. Fan-out operations
// snapshot the directory under the lock, then release it before calling into
// the runtimes, which may themselves re-enter the registry.
type Registry struct {
	mu      sync.Mutex
	entries map[string]Controllable
	logger  *zap.Logger
}

// New creates an empty registry. A nil logger is replaced with a no-op.
func New(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		entries: make(map[string]Controllable),
		logger:  logger,
	}
}

// Register inserts rt keyed by its node id, replacing any prior entry for the
// same id (a restarted runtime re-registers itself).
func (r *Registry) Register(rt Controllable) error {
	if rt == nil {
		return fmt.Errorf("runtime cannot be nil")
	}
	id := rt.NodeID()
	if id == "" {
		return fmt.Errorf("runtime node id cannot be empty")
	}

	r.mu.Lock()
	r.entries[id] = rt
	r.mu.Unlock()

	r.logger.Debug("runtime registered", zap.String("nodeID", id))
	return nil
}

// Unregister removes the entry for the given node id. Unknown ids are a
// no-op.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	_, ok := r.entries[id]
	delete(r.entries, id)
	r.mu.Unlock()

	if ok {
		r.logger.Debug("runtime unregistered", zap.String("nodeID", id))
	}
}

// Get returns the registered runtime for id.
func (r *Registry) Get(id string) (Controllable, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rt, ok := r.entries[id]
	return rt, ok
}

// IsRegistered reports whether a runtime is registered for id.
func (r *Registry) IsRegistered(id string) bool {
	_, ok := r.Get(id)
	return ok
}

// Count returns the number of registered runtimes.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Clear removes all entries without stopping anything.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.entries = make(map[string]Controllable)
	r.mu.Unlock()
}

// PauseAll pauses every registered runtime whose node does not have the
// independent-control flag. Errors are collected and combined; one failing
// runtime does not stop the fan-out.
func (r *Registry) PauseAll() error {
	var merr error
	for _, rt := range r.snapshot() {
		if rt.IndependentControl() {
			continue
		}
		if err := rt.Pause(); err != nil {
			merr = multierr.Append(merr, fmt.Errorf("pause %s: %w", rt.NodeID(), err))
		}
	}
	r.logger.Info("paused all runtimes", zap.Int("count", r.Count()))
	return merr
}

// ResumeAll resumes every registered runtime whose node does not have the
// independent-control flag.
func (r *Registry) ResumeAll() error {
	var merr error
	for _, rt := range r.snapshot() {
		if rt.IndependentControl() {
			continue
		}
		if err := rt.Resume(); err != nil {
			merr = multierr.Append(merr, fmt.Errorf("resume %s: %w", rt.NodeID(), err))
		}
	}
	r.logger.Info("resumed all runtimes", zap.Int("count", r.Count()))
	return merr
}

// StopAll stops every registered runtime, independent-control flag included,
// then clears the directory.
func (r *Registry) StopAll() error {
	var merr error
	for _, rt := range r.snapshot() {
		if err := rt.Stop(); err != nil {
			merr = multierr.Append(merr, fmt.Errorf("stop %s: %w", rt.NodeID(), err))
		}
	}
	r.Clear()
	r.logger.Info("stopped all runtimes")
	return merr
}

// snapshot copies the current entries under the lock so fan-out calls run
// without holding it.
func (r *Registry) snapshot() []Controllable {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Controllable, 0, len(r.entries))
	for _, rt := range r.entries {
		out = append(out, rt)
	}
	return out
}
