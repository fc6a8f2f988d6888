package transport

import (
	"bufio"
	"fmt"
	"io"
	"sync"

	"github.com/tidwall/gjson"

	"github.com/mthille/easel/internal/protocol"
)

// wakeFrame is the advisory stand-in for the shared wake cell on stream
// transports. Duplicates are harmless; the worker side collapses them into
// its local cell.
const wakeFrame = `{"t":"wake"}` + "\n"

// maxFrame bounds a single NDJSON frame.
const maxFrame = 1 << 20

// PipeTransport is the main side of a newline-delimited JSON transport,
// used when the worker runs as a subprocess. Messages are encoded with the
// protocol codec, one object per line.
type PipeTransport struct {
	r io.Reader

	wmu sync.Mutex
	w   io.Writer

	cell *WakeCell

	mu         sync.Mutex
	handler    func(protocol.Inbound)
	errHandler func(error)
	closed     bool
}

// Pipe creates a main-side transport over a byte stream pair.
func Pipe(r io.Reader, w io.Writer) *PipeTransport {
	return &PipeTransport{r: r, w: w, cell: NewWakeCell()}
}

func (t *PipeTransport) Send(msg protocol.Outbound) error {
	data, err := protocol.EncodeOutbound(msg)
	if err != nil {
		return err
	}
	return t.writeFrame(data)
}

func (t *PipeTransport) writeFrame(data []byte) error {
	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return ErrClosed
	}

	t.wmu.Lock()
	defer t.wmu.Unlock()
	if _, err := t.w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// OnReceive registers the single consumer and starts the read loop.
func (t *PipeTransport) OnReceive(handler func(protocol.Inbound)) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.handler != nil {
		return ErrHandlerSet
	}
	if t.closed {
		return ErrClosed
	}
	t.handler = handler
	go t.readLoop(handler)
	return nil
}

// OnError registers the consumer of asynchronous transport failures:
// malformed frames and stream errors. Implements ErrorReporter.
func (t *PipeTransport) OnError(handler func(error)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.errHandler = handler
}

func (t *PipeTransport) readLoop(handler func(protocol.Inbound)) {
	scanner := bufio.NewScanner(t.r)
	scanner.Buffer(make([]byte, 0, 4096), maxFrame)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		msg, err := protocol.DecodeInbound(line)
		if err != nil {
			t.reportError(err)
			return
		}
		handler(msg)
	}
	if err := scanner.Err(); err != nil {
		t.reportError(fmt.Errorf("read frame: %w", err))
	}
}

func (t *PipeTransport) reportError(err error) {
	t.mu.Lock()
	h := t.errHandler
	closed := t.closed
	t.mu.Unlock()
	if h != nil && !closed {
		h(err)
	}
}

// Wake emits the advisory wake frame. A write failure here is swallowed:
// the signal is best effort by contract and the read loop will surface a
// broken stream on its own.
func (t *PipeTransport) Wake() {
	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return
	}
	t.wmu.Lock()
	_, _ = io.WriteString(t.w, wakeFrame)
	t.wmu.Unlock()
}

func (t *PipeTransport) WakeHandle() uint32 {
	return t.cell.Handle()
}

func (t *PipeTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()

	var err error
	if c, ok := t.w.(io.Closer); ok {
		err = c.Close()
	}
	if c, ok := t.r.(io.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// ServePipe builds the worker side of a stream transport. Outbound frames
// from the main side arrive through the returned endpoint; wake frames
// signal the endpoint's local cell.
func ServePipe(r io.Reader, w io.Writer) *Endpoint {
	cell := NewWakeCell()
	in := make(chan protocol.Outbound, pairBuffer)

	var wmu sync.Mutex
	send := func(msg protocol.Inbound) error {
		data, err := protocol.EncodeInbound(msg)
		if err != nil {
			return err
		}
		wmu.Lock()
		defer wmu.Unlock()
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("write frame: %w", err)
		}
		return nil
	}

	ep := newEndpoint(in, send, cell)

	go func() {
		defer close(in)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 4096), maxFrame)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}
			if gjson.GetBytes(line, "t").String() == "wake" {
				cell.Signal()
				continue
			}
			msg, err := protocol.DecodeOutbound(line)
			if err != nil {
				// The main side never sends invalid frames; a decode
				// failure means the stream is corrupt. Stop reading.
				return
			}
			select {
			case in <- msg:
			case <-ep.closed:
				return
			}
		}
	}()

	return ep
}
