// Package input filters raw keyboard events and forwards normalized key
// descriptors to the worker.
//
// Terminals and browsers alike report a keydown for a modifier key itself
// in addition to the combination it modifies. Forwarding both would
// double-signal the same logical input, so modifier-only events whose flag
// is already active are dropped with no side effect at all: no message,
// no wake signal.
package input

import (
	"sync/atomic"

	"github.com/mthille/easel/internal/protocol"
)

// Sender is the slice of the transport the filter drives.
type Sender interface {
	Send(msg protocol.Outbound) error
	Wake()
}

// Filter classifies raw key events and forwards the ones that carry
// information. It is the sole consumer of raw events; nothing else sees
// a key the filter handled.
type Filter struct {
	sender Sender

	forwarded atomic.Uint64
	dropped   atomic.Uint64
}

// NewFilter builds a filter bound to one transport.
func NewFilter(sender Sender) *Filter {
	return &Filter{sender: sender}
}

// Handle processes one raw key event. Events that pass the filter first
// signal the wake cell, then send the normalized descriptor; delivery
// order therefore matches arrival order through the transport's FIFO.
func (f *Filter) Handle(ev protocol.Key) error {
	if suppress(ev) {
		f.dropped.Add(1)
		return nil
	}

	f.sender.Wake()
	if err := f.sender.Send(ev); err != nil {
		return err
	}
	f.forwarded.Add(1)
	return nil
}

// suppress reports whether the event is semantically empty: a named
// (multi-character) key that is either unidentified or a modifier whose
// same-kind flag is already active.
func suppress(ev protocol.Key) bool {
	if len(ev.Key) <= 1 {
		return false
	}
	switch ev.Key {
	case "Unidentified":
		return true
	case "Control":
		return ev.Ctrl
	case "Shift":
		return ev.Shift
	case "Alt":
		return ev.Alt
	case "Meta", "OS":
		return ev.Meta
	default:
		return false
	}
}

// Stats reports how many events were forwarded and dropped.
func (f *Filter) Stats() (forwarded, dropped uint64) {
	return f.forwarded.Load(), f.dropped.Load()
}
