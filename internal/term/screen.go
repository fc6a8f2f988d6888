// Package term hosts the terminal side of the presentation: a tcell
// screen that shows the canvas with half-block cells and feeds raw key
// and resize events into the session.
package term

import (
	"image"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/mthille/easel/internal/session"
	"github.com/mthille/easel/internal/viewport"
)

// halfBlock is the upper-half-block rune. One terminal cell shows two
// vertically stacked canvas pixels: the foreground paints the top one,
// the background the bottom one.
const halfBlock = '▀'

// Screen wraps a tcell screen as the session's Presenter and
// EventSource. Events are delivered on the poll goroutine; Present runs
// on the session's frame loop.
type Screen struct {
	screen tcell.Screen
	dpr    float64

	mu      sync.Mutex
	handler session.Handler
	polling bool
}

// NewScreen creates a screen for the given device-pixel ratio. The
// terminal is not touched until Init.
func NewScreen(dpr float64) (*Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if dpr <= 0 {
		dpr = 1
	}
	return &Screen{screen: screen, dpr: dpr}, nil
}

// NewScreenWith wraps an existing tcell screen, which tests use with a
// simulation screen.
func NewScreenWith(screen tcell.Screen, dpr float64) *Screen {
	if dpr <= 0 {
		dpr = 1
	}
	return &Screen{screen: screen, dpr: dpr}
}

// Init takes over the terminal.
func (s *Screen) Init() error {
	return s.screen.Init()
}

// Fini restores the terminal. Safe to call after a failed Init.
func (s *Screen) Fini() {
	s.screen.Fini()
}

// HasTrueColor reports whether the terminal can show the canvas without
// palette quantization.
func (s *Screen) HasTrueColor() bool {
	return s.screen.Colors() > 256
}

// Size returns the displayable canvas geometry in logical units. Each
// terminal cell holds one device pixel column and two device pixel rows.
func (s *Screen) Size() viewport.Geometry {
	cols, rows := s.screen.Size()
	return s.logicalSize(cols, rows)
}

func (s *Screen) logicalSize(cols, rows int) viewport.Geometry {
	return viewport.Geometry{
		Width:  float64(cols) / s.dpr,
		Height: float64(rows*2) / s.dpr,
	}
}

// Attach registers the event handler. Implements session.EventSource.
func (s *Screen) Attach(h session.Handler) {
	s.mu.Lock()
	s.handler = h
	s.mu.Unlock()
}

// Detach removes the event handler; later events are discarded.
func (s *Screen) Detach() {
	s.mu.Lock()
	s.handler = nil
	s.mu.Unlock()
}

func (s *Screen) current() session.Handler {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handler
}

// Run polls terminal events and forwards them to the attached handler
// until Stop or screen teardown. Blocks; run it on its own goroutine.
func (s *Screen) Run() {
	s.mu.Lock()
	if s.polling {
		s.mu.Unlock()
		return
	}
	s.polling = true
	s.mu.Unlock()

	for {
		ev := s.screen.PollEvent()
		if ev == nil {
			return
		}
		switch e := ev.(type) {
		case *tcell.EventKey:
			if h := s.current(); h != nil {
				h.HandleKey(Translate(e))
			}
		case *tcell.EventResize:
			cols, rows := e.Size()
			if h := s.current(); h != nil {
				h.HandleResize(s.logicalSize(cols, rows))
			}
			s.screen.Sync()
		case *tcell.EventInterrupt:
			return
		}
	}
}

// Stop unblocks Run.
func (s *Screen) Stop() {
	_ = s.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

// Present shows the canvas image. Implements session.Presenter. Pixels
// beyond the terminal are clipped; cells beyond the image keep their
// previous content.
func (s *Screen) Present(img *image.RGBA) {
	bounds := img.Bounds()
	cols, rows := s.screen.Size()
	if w := bounds.Dx(); w < cols {
		cols = w
	}
	if h := (bounds.Dy() + 1) / 2; h < rows {
		rows = h
	}

	for cy := 0; cy < rows; cy++ {
		for cx := 0; cx < cols; cx++ {
			top := img.RGBAAt(bounds.Min.X+cx, bounds.Min.Y+cy*2)
			bottom := top
			if bounds.Min.Y+cy*2+1 < bounds.Max.Y {
				bottom = img.RGBAAt(bounds.Min.X+cx, bounds.Min.Y+cy*2+1)
			}
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(top.R), int32(top.G), int32(top.B))).
				Background(tcell.NewRGBColor(int32(bottom.R), int32(bottom.G), int32(bottom.B)))
			s.screen.SetContent(cx, cy, halfBlock, nil, style)
		}
	}
	s.screen.Show()
}
