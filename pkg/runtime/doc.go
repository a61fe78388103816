// Package runtime provides the execution wrappers that drive a dataflow
// graph's nodes. Each node shape (generator, sink, filter, transformer, and
// the multi-input/multi-output combinations) is backed by a runtime owning
// exactly one cooperative task, its input/output queues, and an execution
// state.
//
// The wiring layer constructs runtimes from static node definitions, attaches
// queues between them, and starts each one on a shared scheduler. Within a
// runtime, every round runs strictly as receive-all, compute, emit-all; there
// is no pipelining inside one runtime instance. Across runtimes, FIFO order
// holds end to end because every queue has exactly one producer and one
// consumer.
//
// Queue closure is the graceful termination signal and never surfaces as an
// error. Panics from user-supplied functions are not recovered here; the
// scheduler's supervision policy decides what happens to them.
package runtime
