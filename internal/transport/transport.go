package transport

import (
	"errors"
	"fmt"

	"github.com/mthille/easel/internal/protocol"
)

// Transport errors.
var (
	// ErrClosed indicates a send on a transport that has been closed.
	ErrClosed = errors.New("transport closed")

	// ErrHandlerSet indicates a second OnReceive registration. A transport
	// has exactly one consumer.
	ErrHandlerSet = errors.New("receive handler already registered")
)

// Transport is the main-side connection to the worker.
//
// Send delivers asynchronously with no acknowledgment; delivery order
// matches call order. OnReceive registers the single consumer of inbound
// messages, delivered in the order the worker produced them. Wake stores 1
// into the shared wake cell; it is advisory and may be called redundantly.
// WakeHandle names the wake cell in the start handshake.
type Transport interface {
	Send(msg protocol.Outbound) error
	OnReceive(handler func(protocol.Inbound)) error
	Wake()
	WakeHandle() uint32
	Close() error
}

// ErrorReporter is implemented by transports that can fail asynchronously
// (a wire transport hitting a malformed frame). The session treats every
// reported error as a protocol violation.
type ErrorReporter interface {
	OnError(handler func(error))
}

// CapabilityError reports a missing runtime capability discovered by
// Probe. It is fatal at startup, before any session state is created.
type CapabilityError struct {
	Missing []string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("missing required capabilities: %v", e.Missing)
}
