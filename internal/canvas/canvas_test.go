package canvas

import (
	"image/color"
	"testing"

	"github.com/mthille/easel/internal/protocol"
)

func apply(t *testing.T, c *Canvas, instrs ...protocol.Instruction) {
	t.Helper()
	for _, in := range instrs {
		if err := c.Apply(in); err != nil {
			t.Fatalf("Apply(%s) failed: %v", in.Op(), err)
		}
	}
}

func TestScale_FloorsDeviceCoordinates(t *testing.T) {
	c := New(100, 100, 1.5)

	// floor(3 * 1.5) = 4, floor(5 * 1.5) = 7
	if got := c.scale(3); got != 4 {
		t.Errorf("scale(3) at dpr 1.5 = %d, want 4", got)
	}
	if got := c.scale(5); got != 7 {
		t.Errorf("scale(5) at dpr 1.5 = %d, want 7", got)
	}
	if got := c.scale(2.9); got != 4 {
		t.Errorf("scale(2.9) at dpr 1.5 = %d, want 4", got)
	}
}

func TestFillRect_UsesCurrentBackground(t *testing.T) {
	c := New(10, 10, 1)
	apply(t, c,
		protocol.SetBg{Color: "#ff0000"},
		protocol.FillRect{X: 2, Y: 2, W: 4, H: 4},
	)

	want := color.RGBA{R: 0xff, A: 0xff}
	if got := c.Image().RGBAAt(3, 3); got != want {
		t.Errorf("inside pixel = %v, want %v", got, want)
	}
	if got := c.Image().RGBAAt(1, 1); got == want {
		t.Error("outside pixel should keep the previous background")
	}
}

func TestStyleState_PersistsAcrossInstructions(t *testing.T) {
	c := New(10, 10, 1)
	apply(t, c, protocol.SetBg{Color: "#00ff00"})

	// Two fills with no intervening set must both use the selected color.
	apply(t, c,
		protocol.FillRect{X: 0, Y: 0, W: 2, H: 2},
		protocol.FillRect{X: 4, Y: 4, W: 2, H: 2},
	)

	want := color.RGBA{G: 0xff, A: 0xff}
	if got := c.Image().RGBAAt(0, 0); got != want {
		t.Errorf("first fill = %v, want %v", got, want)
	}
	if got := c.Image().RGBAAt(5, 5); got != want {
		t.Errorf("second fill = %v, want %v", got, want)
	}
}

func TestInvertRect_IdempotentUnderTwoApplications(t *testing.T) {
	c := New(8, 8, 2)
	apply(t, c,
		protocol.SetBg{Color: "#336699"},
		protocol.FillRect{X: 0, Y: 0, W: 8, H: 8},
	)

	before := make([]color.RGBA, 0, 16*16)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			before = append(before, c.Image().RGBAAt(x, y))
		}
	}

	apply(t, c, protocol.InvertRect{X: 1, Y: 1, W: 5, H: 5})

	// One application must change the covered pixels.
	changed := c.Image().RGBAAt(4, 4)
	if changed == before[4*16+4] {
		t.Error("single inversion left pixels untouched")
	}
	if changed.A != 0xff {
		t.Error("inversion must not touch the alpha channel")
	}

	apply(t, c, protocol.InvertRect{X: 1, Y: 1, W: 5, H: 5})

	i := 0
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if got := c.Image().RGBAAt(x, y); got != before[i] {
				t.Fatalf("pixel (%d,%d) = %v, want %v after double inversion", x, y, got, before[i])
			}
			i++
		}
	}
}

func TestScrollRect_CopiesSpan(t *testing.T) {
	c := New(10, 10, 1)
	apply(t, c,
		protocol.SetBg{Color: "#ffffff"},
		protocol.FillRect{X: 0, Y: 0, W: 10, H: 1},
		protocol.ScrollRect{X: 0, W: 10, SrcY: 0, DstY: 5, H: 1},
	)

	white := color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	if got := c.Image().RGBAAt(3, 5); got != white {
		t.Errorf("destination row = %v, want %v", got, white)
	}
	// The source row is a copy source, not a move; it stays.
	if got := c.Image().RGBAAt(3, 0); got != white {
		t.Errorf("source row = %v, want %v", got, white)
	}
}

func TestScrollRect_OverlappingRegions(t *testing.T) {
	c := New(4, 6, 1)
	apply(t, c, protocol.SetBg{Color: "#ff0000"}, protocol.FillRect{X: 0, Y: 0, W: 4, H: 1})
	apply(t, c, protocol.SetBg{Color: "#00ff00"}, protocol.FillRect{X: 0, Y: 1, W: 4, H: 1})

	// Shift both rows down by one; source and destination overlap.
	apply(t, c, protocol.ScrollRect{X: 0, W: 4, SrcY: 0, DstY: 1, H: 2})

	if got := c.Image().RGBAAt(0, 1); got != (color.RGBA{R: 0xff, A: 0xff}) {
		t.Errorf("row 1 = %v, want red", got)
	}
	if got := c.Image().RGBAAt(0, 2); got != (color.RGBA{G: 0xff, A: 0xff}) {
		t.Errorf("row 2 = %v, want green", got)
	}
}

func TestDrawText_AdvancesPerColumn(t *testing.T) {
	c := New(100, 30, 1)
	apply(t, c,
		protocol.SetFg{Color: "#ffffff"},
		protocol.Text{Text: "ab", X: 0, Y: 0, CW: 10},
	)

	white := color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	firstCol, secondCol := false, false
	for y := 0; y < 13; y++ {
		for x := 0; x < 10; x++ {
			if c.Image().RGBAAt(x, y) == white {
				firstCol = true
			}
			if c.Image().RGBAAt(x+10, y) == white {
				secondCol = true
			}
		}
	}
	if !firstCol {
		t.Error("no glyph pixels in the first column cell")
	}
	if !secondCol {
		t.Error("second glyph did not land one advance to the right")
	}
}

func TestDrawText_DecorationPriority(t *testing.T) {
	c := New(40, 20, 1)
	special := color.RGBA{R: 0xff, A: 0xff}
	apply(t, c,
		protocol.SetSpecial{Color: "#ff0000"},
		protocol.SetFg{Color: "#ffffff"},
		// Underline and undercurl both requested: underline wins, so the
		// special color must not appear anywhere.
		protocol.Text{Text: " ", X: 0, Y: 0, CW: 10, Underline: true, Undercurl: true},
	)

	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			if c.Image().RGBAAt(x, y) == special {
				t.Fatalf("special-colored pixel at (%d,%d); underline must beat undercurl", x, y)
			}
		}
	}

	// Undercurl alone strokes in the special color.
	apply(t, c, protocol.Text{Text: " ", X: 0, Y: 0, CW: 10, Undercurl: true})
	found := false
	for y := 0; y < 20 && !found; y++ {
		for x := 0; x < 40; x++ {
			if c.Image().RGBAAt(x, y) == special {
				found = true
				break
			}
		}
	}
	if !found {
		t.Error("undercurl did not stroke in the special color")
	}
}

func TestResize_ClearsToBackground(t *testing.T) {
	c := New(4, 4, 2)
	apply(t, c, protocol.SetBg{Color: "#123456"})
	c.Resize(6, 3)

	w, h := c.Size()
	if w != 6 || h != 3 {
		t.Errorf("Size() = (%v,%v), want (6,3)", w, h)
	}
	bounds := c.Image().Rect
	if bounds.Dx() != 12 || bounds.Dy() != 6 {
		t.Errorf("device bounds = %v, want 12x6", bounds)
	}
	want := color.RGBA{R: 0x12, G: 0x34, B: 0x56, A: 0xff}
	if got := c.Image().RGBAAt(0, 0); got != want {
		t.Errorf("resized surface = %v, want background %v", got, want)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
	}{
		{"#ff5f87", color.RGBA{R: 0xff, G: 0x5f, B: 0x87, A: 0xff}},
		{"#abc", color.RGBA{R: 0xaa, G: 0xbb, B: 0xcc, A: 0xff}},
		{"red", color.RGBA{R: 0xff, A: 0xff}},
		{"White", color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if err != nil {
			t.Errorf("ParseColor(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseColor("not-a-color"); err == nil {
		t.Error("expected an error for an unknown color")
	}
}
