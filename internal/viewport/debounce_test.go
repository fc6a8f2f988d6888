package viewport

import (
	"sync"
	"testing"
	"time"

	"github.com/mthille/easel/internal/protocol"
)

// collectSender records resize messages thread-safely.
type collectSender struct {
	mu   sync.Mutex
	sent []protocol.Resize
}

func (s *collectSender) Send(msg protocol.Outbound) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg.(protocol.Resize))
	return nil
}

func (s *collectSender) messages() []protocol.Resize {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]protocol.Resize, len(s.sent))
	copy(out, s.sent)
	return out
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(2 * time.Millisecond)
	}
	return cond()
}

func TestDebouncer_BurstYieldsOneFinalMessage(t *testing.T) {
	sender := &collectSender{}
	d := NewDebouncer(sender, 50*time.Millisecond, nil)
	defer d.Stop()

	// Five notifications inside the window, ending at (800, 600).
	sizes := []Geometry{
		{Height: 500, Width: 400},
		{Height: 550, Width: 450},
		{Height: 600, Width: 500},
		{Height: 700, Width: 550},
		{Height: 800, Width: 600},
	}
	for _, g := range sizes {
		d.Observe(g)
		time.Sleep(5 * time.Millisecond)
	}

	if !waitFor(t, time.Second, func() bool { return len(sender.messages()) > 0 }) {
		t.Fatal("debounced message never arrived")
	}
	// Allow a settle period to catch spurious extra sends.
	time.Sleep(100 * time.Millisecond)

	msgs := sender.messages()
	if len(msgs) != 1 {
		t.Fatalf("burst produced %d messages, want 1", len(msgs))
	}
	if msgs[0].Height != 800 || msgs[0].Width != 600 {
		t.Errorf("final geometry = %+v, want {800 600}", msgs[0])
	}
}

func TestDebouncer_SeparateBurstsEachFire(t *testing.T) {
	sender := &collectSender{}
	d := NewDebouncer(sender, 20*time.Millisecond, nil)
	defer d.Stop()

	d.Observe(Geometry{Height: 100, Width: 100})
	if !waitFor(t, time.Second, func() bool { return len(sender.messages()) == 1 }) {
		t.Fatal("first burst never fired")
	}

	d.Observe(Geometry{Height: 200, Width: 200})
	if !waitFor(t, time.Second, func() bool { return len(sender.messages()) == 2 }) {
		t.Fatal("second burst never fired")
	}

	msgs := sender.messages()
	if msgs[0].Height != 100 || msgs[1].Height != 200 {
		t.Errorf("unexpected sequence: %+v", msgs)
	}
}

func TestDebouncer_StopCancelsPendingTimer(t *testing.T) {
	sender := &collectSender{}
	d := NewDebouncer(sender, 20*time.Millisecond, nil)

	d.Observe(Geometry{Height: 300, Width: 300})
	if !d.Pending() {
		t.Fatal("expected a pending timer after Observe")
	}
	d.Stop()
	if d.Pending() {
		t.Error("Stop left a timer pending")
	}

	time.Sleep(60 * time.Millisecond)
	if len(sender.messages()) != 0 {
		t.Errorf("teardown with a pending timer sent %d messages, want 0", len(sender.messages()))
	}

	// Observations after Stop are ignored.
	d.Observe(Geometry{Height: 400, Width: 400})
	time.Sleep(60 * time.Millisecond)
	if len(sender.messages()) != 0 {
		t.Error("observation after Stop produced a message")
	}
}

func TestDebouncer_DefaultWindow(t *testing.T) {
	d := NewDebouncer(&collectSender{}, 0, nil)
	defer d.Stop()
	if d.window != DefaultWindow {
		t.Errorf("window = %v, want %v", d.window, DefaultWindow)
	}
}
