package render

import (
	"context"
	"sync"
	"time"
)

// DefaultFPS is the refresh rate when the configuration does not say
// otherwise.
const DefaultFPS = 60

// Ticker is the production Scheduler: a fixed-rate refresh loop standing
// in for the display's per-frame callback. Scheduled callbacks run on the
// loop goroutine at the next tick, so every flush executes on one
// goroutine and never concurrently with itself.
type Ticker struct {
	interval time.Duration

	mu        sync.Mutex
	callbacks []func()

	// frameHook runs after the tick's callbacks, only on ticks that had
	// any. The session presents the canvas here.
	frameHook func()
}

// NewTicker creates a refresh loop at the given frames per second.
func NewTicker(fps int) *Ticker {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &Ticker{interval: time.Second / time.Duration(fps)}
}

// Schedule registers fn to run at the next tick. Implements Scheduler.
func (t *Ticker) Schedule(fn func()) {
	t.mu.Lock()
	t.callbacks = append(t.callbacks, fn)
	t.mu.Unlock()
}

// OnFrame sets the hook run after each tick that executed callbacks.
// Must be set before Run.
func (t *Ticker) OnFrame(fn func()) {
	t.mu.Lock()
	t.frameHook = fn
	t.mu.Unlock()
}

// Run drives the refresh loop until the context is cancelled.
func (t *Ticker) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			t.tick()
		}
	}
}

// tick runs the callbacks registered up to this refresh. Callbacks
// registered while ticking run on the next tick.
func (t *Ticker) tick() {
	t.mu.Lock()
	cbs := t.callbacks
	t.callbacks = nil
	hook := t.frameHook
	t.mu.Unlock()

	if len(cbs) == 0 {
		return
	}
	for _, fn := range cbs {
		fn()
	}
	if hook != nil {
		hook()
	}
}
