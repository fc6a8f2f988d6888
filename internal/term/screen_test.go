package term

import (
	"image"
	"image/color"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/mthille/easel/internal/protocol"
	"github.com/mthille/easel/internal/viewport"
)

func newSimScreen(t *testing.T, cols, rows int) (tcell.SimulationScreen, *Screen) {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	if err := sim.Init(); err != nil {
		t.Fatalf("sim Init() failed: %v", err)
	}
	sim.SetSize(cols, rows)
	t.Cleanup(sim.Fini)
	return sim, NewScreenWith(sim, 1)
}

func TestScreen_LogicalSize(t *testing.T) {
	_, screen := newSimScreen(t, 80, 24)

	// Half-block cells carry two vertical pixels each.
	got := screen.Size()
	if got.Width != 80 || got.Height != 48 {
		t.Errorf("Size() = %+v, want 80x48", got)
	}

	scaled := NewScreenWith(tcell.NewSimulationScreen("UTF-8"), 2)
	g := scaled.logicalSize(80, 24)
	if g.Width != 40 || g.Height != 24 {
		t.Errorf("logicalSize at dpr 2 = %+v, want 40x24", g)
	}
}

func TestScreen_PresentHalfBlocks(t *testing.T) {
	sim, screen := newSimScreen(t, 4, 4)

	// Two pixel rows, distinct colors, land in one cell row.
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	top := color.RGBA{R: 0xff, A: 0xff}
	bottom := color.RGBA{B: 0xff, A: 0xff}
	for x := 0; x < 2; x++ {
		img.SetRGBA(x, 0, top)
		img.SetRGBA(x, 1, bottom)
	}

	screen.Present(img)

	mainc, _, style, _ := sim.GetContent(0, 0)
	if mainc != halfBlock {
		t.Fatalf("cell rune = %q, want half block", mainc)
	}
	fg, bg, _ := style.Decompose()
	fr, fgG, fb := fg.RGB()
	if fr != 0xff || fgG != 0 || fb != 0 {
		t.Errorf("foreground = %v,%v,%v, want red top pixel", fr, fgG, fb)
	}
	br, bgG, bb := bg.RGB()
	if br != 0 || bgG != 0 || bb != 0xff {
		t.Errorf("background = %v,%v,%v, want blue bottom pixel", br, bgG, bb)
	}
}

func TestScreen_PresentOddHeight(t *testing.T) {
	sim, screen := newSimScreen(t, 4, 4)

	// A lone pixel row: the bottom half repeats the top.
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.SetRGBA(0, 0, color.RGBA{G: 0xff, A: 0xff})

	screen.Present(img)

	_, _, style, _ := sim.GetContent(0, 0)
	fg, bg, _ := style.Decompose()
	if fg != bg {
		t.Errorf("odd-height image: fg %v != bg %v", fg, bg)
	}
}

// recorder collects handler calls.
type recorder struct {
	mu      sync.Mutex
	keys    []protocol.Key
	resizes []viewport.Geometry
}

func (r *recorder) HandleKey(ev protocol.Key) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, ev)
}

func (r *recorder) HandleResize(g viewport.Geometry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resizes = append(r.resizes, g)
}

func (r *recorder) keyCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.keys)
}

func TestScreen_EventDelivery(t *testing.T) {
	sim, screen := newSimScreen(t, 10, 10)

	rec := &recorder{}
	screen.Attach(rec)

	done := make(chan struct{})
	go func() {
		screen.Run()
		close(done)
	}()

	sim.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)

	deadline := time.Now().Add(2 * time.Second)
	for rec.keyCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	if rec.keyCount() == 0 {
		t.Fatal("key event never delivered")
	}
	rec.mu.Lock()
	got := rec.keys[0]
	rec.mu.Unlock()
	if got.Key != "x" {
		t.Errorf("delivered key = %+v, want x", got)
	}

	// Detached screens discard events instead of delivering them.
	screen.Detach()
	sim.InjectKey(tcell.KeyRune, 'y', tcell.ModNone)
	time.Sleep(20 * time.Millisecond)
	if rec.keyCount() != 1 {
		t.Errorf("event delivered after Detach")
	}

	screen.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run never returned after Stop")
	}
}
