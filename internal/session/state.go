package session

// State is the session lifecycle phase. Transitions only move forward:
// a fresh session is Uninitialized, sending start makes it AwaitingStart,
// the worker's started message makes it Active, and any of exit, fatal,
// or a protocol violation makes it Terminated. Terminated is absorbing.
type State int

const (
	// StateUninitialized is a built but not yet started session.
	StateUninitialized State = iota
	// StateAwaitingStart means start was sent and the worker has not
	// acknowledged yet. Draw traffic is already accepted.
	StateAwaitingStart
	// StateActive means the worker acknowledged and input listeners
	// are attached.
	StateActive
	// StateTerminated is the absorbing final state.
	StateTerminated
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateAwaitingStart:
		return "awaiting-start"
	case StateActive:
		return "active"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}
