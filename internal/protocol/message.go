package protocol

// Outbound is a message sent from the main side to the worker.
// The set of variants is closed: Start, Resize, Key.
type Outbound interface {
	outbound()
}

// Inbound is a message sent from the worker to the main side.
// The set of variants is closed: Draw, Started, Exited, Fatal.
type Inbound interface {
	inbound()
}

// Start opens a session. It is the first message on a fresh transport and
// carries the shared wake-flag handle plus the initial canvas geometry in
// logical units.
type Start struct {
	// SessionID identifies the session in logs and traces.
	SessionID string

	// WakeHandle identifies the shared wake cell the worker should watch.
	// The cell itself is delivered by the transport; the handle only names it.
	WakeHandle uint32

	// Height and Width are the initial canvas geometry in logical units.
	Height float64
	Width  float64

	// Debug enables verbose diagnostics on the worker side.
	Debug bool
}

// Resize reports the final viewport geometry after a debounced burst of
// resize notifications. Height and Width are logical units.
type Resize struct {
	Height float64
	Width  float64
}

// Key is a normalized keyboard event descriptor.
type Key struct {
	// Code is the physical key identifier (for example "KeyA", "Enter").
	Code string

	// KeyCode is the legacy numeric key code.
	KeyCode int

	// Key is the logical key string (for example "a", "Enter", "Control").
	Key string

	// Modifier flags active when the key was pressed.
	Ctrl  bool
	Shift bool
	Alt   bool
	Meta  bool
}

// Draw carries one drawing instruction to be queued for the next flush.
type Draw struct {
	Event Instruction
}

// Started signals that the worker finished initializing and the session
// may go live.
type Started struct{}

// Exited signals a graceful worker shutdown.
type Exited struct{}

// Fatal reports an unrecoverable worker error. Message is surfaced to the
// user verbatim.
type Fatal struct {
	Message string
}

func (Start) outbound()  {}
func (Resize) outbound() {}
func (Key) outbound()    {}

func (Draw) inbound()    {}
func (Started) inbound() {}
func (Exited) inbound()  {}
func (Fatal) inbound()   {}
