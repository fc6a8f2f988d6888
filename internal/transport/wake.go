package transport

import "sync/atomic"

// wakeHandles hands out process-unique identifiers for wake cells. The
// handle names the cell in the start handshake; the cell itself travels by
// pointer (Pair) or stays local (Pipe).
var wakeHandles atomic.Uint32

// WakeCell is the single piece of state shared by reference between the
// main side and the worker. The main side only ever stores 1; the worker
// resets it to 0 when it observes the signal. It encodes a level with no
// payload, so a plain atomic store and compare-and-swap are sufficient:
// no mutex, no queueing.
type WakeCell struct {
	handle uint32
	flag   atomic.Int32
}

// NewWakeCell allocates a cell with value 0 and a fresh handle.
func NewWakeCell() *WakeCell {
	return &WakeCell{handle: wakeHandles.Add(1)}
}

// Handle returns the identifier carried in the start message.
func (c *WakeCell) Handle() uint32 { return c.handle }

// Signal stores 1. It is advisory: it never blocks, and signalling an
// already-signalled cell is harmless. The main side must not read the cell
// back to infer worker state.
func (c *WakeCell) Signal() { c.flag.Store(1) }

// Consume atomically resets a signalled cell to 0, reporting whether a
// signal was pending. Worker side only.
func (c *WakeCell) Consume() bool { return c.flag.CompareAndSwap(1, 0) }
