package transport

import (
	"context"
	"sync"

	"github.com/mthille/easel/internal/protocol"
)

// Endpoint is the worker side of a transport. Worker implementations
// receive outbound messages from it, send inbound messages through it, and
// watch its wake cell while blocked.
type Endpoint struct {
	in   chan protocol.Outbound
	out  func(protocol.Inbound) error
	cell *WakeCell

	closeOnce sync.Once
	closed    chan struct{}
}

func newEndpoint(in chan protocol.Outbound, out func(protocol.Inbound) error, cell *WakeCell) *Endpoint {
	return &Endpoint{
		in:     in,
		out:    out,
		cell:   cell,
		closed: make(chan struct{}),
	}
}

// Recv blocks until the next main-to-worker message arrives, the context
// is cancelled, or the endpoint is closed.
func (e *Endpoint) Recv(ctx context.Context) (protocol.Outbound, error) {
	select {
	case msg, ok := <-e.in:
		if !ok {
			return nil, ErrClosed
		}
		return msg, nil
	case <-e.closed:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Send delivers a worker-to-main message.
func (e *Endpoint) Send(msg protocol.Inbound) error {
	select {
	case <-e.closed:
		return ErrClosed
	default:
	}
	return e.out(msg)
}

// WakeCell returns the shared cell the main side signals on new input.
func (e *Endpoint) WakeCell() *WakeCell { return e.cell }

// Close releases the endpoint. Pending Recv calls return ErrClosed.
func (e *Endpoint) Close() error {
	e.closeOnce.Do(func() { close(e.closed) })
	return nil
}
