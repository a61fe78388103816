package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrQueueClosed indicates that a queue was closed by its owning runtime
	ErrQueueClosed = errors.New("queue closed")

	// ErrNotRunning indicates that an operation requires the RUNNING state
	ErrNotRunning = errors.New("runtime is not running")

	// ErrNotPaused indicates that an operation requires the PAUSED state
	ErrNotPaused = errors.New("runtime is not paused")

	// ErrNilScheduler indicates that a runtime was started without a scheduler
	ErrNilScheduler = errors.New("scheduler cannot be nil")

	// ErrInvalidDefinition indicates a missing or incomplete node definition
	ErrInvalidDefinition = errors.New("invalid node definition")

	// ErrNotConnected indicates that the bridge client is not connected to NATS
	ErrNotConnected = errors.New("not connected to NATS")

	// ErrInvalidScript indicates that a user script could not be compiled
	ErrInvalidScript = errors.New("invalid script")
)

// Error represents a structured runtime error
type Error struct {
	// Code is a machine-readable error code
	Code string

	// Message is a human-readable error message
	Message string

	// Err is the underlying error, if any
	Err error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new structured error
func NewError(code, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsQueueClosed checks if an error is a closed-queue error
func IsQueueClosed(err error) bool {
	return errors.Is(err, ErrQueueClosed)
}

// IsNotConnected checks if an error is a not connected error
func IsNotConnected(err error) bool {
	return errors.Is(err, ErrNotConnected)
}
