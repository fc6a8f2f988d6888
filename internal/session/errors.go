package session

import (
	"errors"
	"fmt"
)

// Session errors.
var (
	// ErrTerminated indicates an operation on a session that has already
	// reached its terminal state.
	ErrTerminated = errors.New("session terminated")

	// ErrAlreadyRunning indicates a second Run on the same session.
	ErrAlreadyRunning = errors.New("session already running")
)

// ProtocolError reports an inbound frame the session cannot accept: an
// unknown message kind, a malformed wire frame, or a transport failure.
// Every protocol error terminates the session; there is no recovery or
// renegotiation path.
type ProtocolError struct {
	Reason string // What was wrong with the traffic
	Err    error  // Underlying error, if any
}

// NewProtocolError creates a new ProtocolError.
func NewProtocolError(reason string, err error) *ProtocolError {
	return &ProtocolError{Reason: reason, Err: err}
}

func (e *ProtocolError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("protocol violation: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("protocol violation: %s", e.Reason)
}

func (e *ProtocolError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is implements errors.Is for ProtocolError.
// Matches both the wrapper itself and the wrapped error.
func (e *ProtocolError) Is(target error) bool {
	if e == nil {
		return false
	}
	if t, ok := target.(*ProtocolError); ok {
		return e == t
	}
	return errors.Is(e.Err, target)
}

// FatalError carries the worker's fatal message. Message reaches the
// user verbatim; nothing is rephrased on the way out.
type FatalError struct {
	Message string
}

func (e *FatalError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("worker fatal: %s", e.Message)
}
