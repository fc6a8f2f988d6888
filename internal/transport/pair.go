package transport

import (
	"sync"

	"github.com/mthille/easel/internal/protocol"
)

// pairBuffer sizes the per-direction channels. Sends never block the
// caller until a direction falls this far behind its consumer.
const pairBuffer = 256

// Pair links a main-side Transport to a worker-side Endpoint over
// in-process channels. Both sides share one wake cell by pointer. Each
// direction is an ordered channel; the directions are independent.
func Pair() (Transport, *Endpoint) {
	cell := NewWakeCell()
	main := &pairTransport{
		out:  make(chan protocol.Outbound, pairBuffer),
		in:   make(chan protocol.Inbound, pairBuffer),
		cell: cell,
	}
	ep := newEndpoint(main.out, main.deliver, cell)
	main.endpoint = ep
	return main, ep
}

// pairTransport is the main side of an in-process pair.
type pairTransport struct {
	out  chan protocol.Outbound
	in   chan protocol.Inbound
	cell *WakeCell

	endpoint *Endpoint

	mu      sync.Mutex
	handler func(protocol.Inbound)
	closed  bool
	done    chan struct{}
}

func (t *pairTransport) Send(msg protocol.Outbound) error {
	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return ErrClosed
	}
	t.out <- msg
	return nil
}

// OnReceive registers the single consumer and starts delivery. Inbound
// messages produced before registration wait in the channel and are
// delivered first, in order.
func (t *pairTransport) OnReceive(handler func(protocol.Inbound)) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.handler != nil {
		return ErrHandlerSet
	}
	if t.closed {
		return ErrClosed
	}
	t.handler = handler
	t.done = make(chan struct{})
	go t.pump(handler, t.done)
	return nil
}

// pump delivers inbound messages to the handler in production order.
func (t *pairTransport) pump(handler func(protocol.Inbound), done chan struct{}) {
	for {
		select {
		case msg, ok := <-t.in:
			if !ok {
				return
			}
			handler(msg)
		case <-done:
			// Drain what is already queued so close is not lossy for
			// messages the worker produced before shutdown.
			for {
				select {
				case msg, ok := <-t.in:
					if !ok {
						return
					}
					handler(msg)
				default:
					return
				}
			}
		}
	}
}

func (t *pairTransport) Wake() {
	t.cell.Signal()
}

func (t *pairTransport) WakeHandle() uint32 {
	return t.cell.Handle()
}

func (t *pairTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	done := t.done
	t.mu.Unlock()

	t.endpoint.Close()
	if done != nil {
		// Signal the pump and return without waiting for it. The handler
		// may be the caller; waiting here would deadlock it against
		// itself. The pump drains what is already queued and exits.
		close(done)
	}
	return nil
}

// deliver is the endpoint's send path into the main side.
func (t *pairTransport) deliver(msg protocol.Inbound) error {
	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return ErrClosed
	}
	t.in <- msg
	return nil
}
