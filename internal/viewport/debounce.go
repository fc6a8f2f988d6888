// Package viewport coalesces bursts of resize notifications into a single
// final-geometry message.
//
// A terminal resize drag fires notifications at high frequency; sending
// every intermediate size would trigger redundant re-layout in the worker.
// The debouncer waits for the viewport to hold still for a full quiet
// window and then reports the last geometry it observed.
package viewport

import (
	"sync"
	"time"

	"github.com/mthille/easel/internal/protocol"
)

// DefaultWindow is the quiet period a burst must respect before one
// resize message goes out.
const DefaultWindow = time.Second

// Geometry is a viewport rectangle in logical units.
type Geometry struct {
	Height float64
	Width  float64
}

// Sender is the slice of the transport the debouncer drives.
type Sender interface {
	Send(msg protocol.Outbound) error
}

// Debouncer turns raw geometry notifications into debounced resize
// messages. State is idle or pending-with-timer; every observation
// restarts the timer.
type Debouncer struct {
	sender  Sender
	window  time.Duration
	onError func(error)

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	last    Geometry
	stopped bool
}

// NewDebouncer builds a debouncer bound to one transport. A window of 0
// uses DefaultWindow. onError may be nil.
func NewDebouncer(sender Sender, window time.Duration, onError func(error)) *Debouncer {
	if window <= 0 {
		window = DefaultWindow
	}
	if onError == nil {
		onError = func(error) {}
	}
	return &Debouncer{sender: sender, window: window, onError: onError}
}

// Observe records a raw size change: the geometry is remembered, any
// pending timer is cancelled, and a fresh one is armed for the full
// window.
func (d *Debouncer) Observe(g Geometry) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.last = g
	if d.timer != nil {
		d.timer.Stop()
	}
	// The generation guards against a timer that already fired but has
	// not yet taken the lock: such a timer is stale, not pending.
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.window, func() { d.fire(gen) })
}

// fire runs when a timer survives the whole window uncancelled.
func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if d.stopped || gen != d.gen || d.timer == nil {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	g := d.last
	d.mu.Unlock()

	if err := d.sender.Send(protocol.Resize{Height: g.Height, Width: g.Width}); err != nil {
		d.onError(err)
	}
}

// Stop tears the debouncer down: a pending timer is cancelled and no
// message is sent. Further observations are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Pending reports whether a timer is armed.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}
