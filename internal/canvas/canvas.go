package canvas

import (
	"image"
	"image/color"
	"math"

	"github.com/mattn/go-runewidth"

	"github.com/mthille/easel/internal/protocol"
)

// Defaults applied until the instruction stream selects otherwise.
var (
	DefaultForeground = color.RGBA{R: 0xe6, G: 0xe6, B: 0xe6, A: 0xff}
	DefaultBackground = color.RGBA{R: 0x1c, G: 0x1c, B: 0x1c, A: 0xff}
	DefaultSpecial    = color.RGBA{R: 0xff, G: 0x5f, B: 0x87, A: 0xff}
)

// DefaultFontSize is the initial cell height in logical units.
const DefaultFontSize = 13

// Canvas is an opaque pixel surface at device resolution.
type Canvas struct {
	img *image.RGBA
	dpr float64

	// Logical geometry, as reported to the worker.
	logicalW float64
	logicalH float64

	// Style state manipulated by set* instructions. Persists until
	// explicitly changed.
	fg      color.RGBA
	bg      color.RGBA
	special color.RGBA
	face    *Face
}

// New allocates a canvas of the given logical size at the given
// device-pixel ratio.
func New(logicalW, logicalH, dpr float64) *Canvas {
	if dpr <= 0 {
		dpr = 1
	}
	c := &Canvas{
		dpr:     dpr,
		fg:      DefaultForeground,
		bg:      DefaultBackground,
		special: DefaultSpecial,
		face:    newFace(DefaultFontSize, "", dpr),
	}
	c.Resize(logicalW, logicalH)
	return c
}

// Resize reallocates the surface for a new logical geometry and clears it
// to the current background color.
func (c *Canvas) Resize(logicalW, logicalH float64) {
	c.logicalW = logicalW
	c.logicalH = logicalH
	w, h := c.scale(logicalW), c.scale(logicalH)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	c.img = image.NewRGBA(image.Rect(0, 0, w, h))
	c.fillDevice(0, 0, w, h, c.bg)
}

// Size returns the logical geometry.
func (c *Canvas) Size() (w, h float64) { return c.logicalW, c.logicalH }

// DPR returns the device-pixel ratio.
func (c *Canvas) DPR() float64 { return c.dpr }

// Image exposes the device-resolution pixels for presentation. The
// presenter must only read it between flushes.
func (c *Canvas) Image() *image.RGBA { return c.img }

// scale maps a logical value to device pixels: floor(v * dpr).
func (c *Canvas) scale(v float64) int {
	return int(math.Floor(v * c.dpr))
}

// Apply executes one instruction. The instruction set is closed; an
// exhaustive switch dispatches by variant.
func (c *Canvas) Apply(instr protocol.Instruction) error {
	switch in := instr.(type) {
	case protocol.FillRect:
		c.fillDevice(c.scale(in.X), c.scale(in.Y), c.scale(in.W), c.scale(in.H), c.bg)
	case protocol.StrokeRect:
		c.strokeRect(in)
	case protocol.Text:
		c.drawText(in)
	case protocol.InvertRect:
		c.invertRect(in)
	case protocol.ScrollRect:
		c.scrollRect(in)
	case protocol.SetFg:
		col, err := ParseColor(in.Color)
		if err != nil {
			return err
		}
		c.fg = col
	case protocol.SetBg:
		col, err := ParseColor(in.Color)
		if err != nil {
			return err
		}
		c.bg = col
	case protocol.SetSpecial:
		col, err := ParseColor(in.Color)
		if err != nil {
			return err
		}
		c.special = col
	case protocol.SetFont:
		c.face = newFace(in.Size, in.Family, c.dpr)
	default:
		return protocol.ErrUnknownOp
	}
	return nil
}

// setPixel writes one opaque device pixel, clipping to the surface.
func (c *Canvas) setPixel(x, y int, col color.RGBA) {
	if !(image.Point{X: x, Y: y}).In(c.img.Rect) {
		return
	}
	c.img.SetRGBA(x, y, col)
}

// fillDevice fills a device-pixel rectangle.
func (c *Canvas) fillDevice(x, y, w, h int, col color.RGBA) {
	for py := y; py < y+h; py++ {
		for px := x; px < x+w; px++ {
			c.setPixel(px, py, col)
		}
	}
}

// strokeRect outlines the rectangle with the foreground color at a line
// width of one logical unit.
func (c *Canvas) strokeRect(in protocol.StrokeRect) {
	x, y := c.scale(in.X), c.scale(in.Y)
	w, h := c.scale(in.W), c.scale(in.H)
	lw := c.scale(1)
	if lw < 1 {
		lw = 1
	}
	c.fillDevice(x, y, w, lw, c.fg)      // top
	c.fillDevice(x, y+h-lw, w, lw, c.fg) // bottom
	c.fillDevice(x, y, lw, h, c.fg)      // left
	c.fillDevice(x+w-lw, y, lw, h, c.fg) // right
}

// drawText draws a run glyph by glyph at a fixed per-column advance, with
// the baseline at the bottom of the cell. Wide runes advance two columns.
// At most one decoration strokes per call: underline beats undercurl
// beats strike.
func (c *Canvas) drawText(in protocol.Text) {
	cwDev := c.scale(in.CW)
	cellDev := c.scale(c.face.Size)
	xDev := c.scale(in.X)
	baseline := c.scale(in.Y) + cellDev

	set := func(px, py int) { c.setPixel(px, py, c.fg) }

	dot := xDev
	cols := 0
	for _, r := range in.Text {
		width := runewidth.RuneWidth(r)
		if width == 0 {
			continue
		}
		c.face.drawGlyph(r, dot, baseline, in.Bold, in.Italic, set)
		dot += cwDev * width
		cols += width
	}

	runDev := cwDev * cols
	lw := c.scale(1)
	if lw < 1 {
		lw = 1
	}
	switch {
	case in.Underline:
		c.fillDevice(xDev, baseline-lw, runDev, lw, c.fg)
	case in.Undercurl:
		c.drawUndercurl(xDev, baseline-lw, runDev, lw)
	case in.Strike:
		c.fillDevice(xDev, baseline-cellDev/2, runDev, lw, c.fg)
	}
}

// drawUndercurl strokes a wavy line in the special color: a two-pixel
// period alternating between two rows.
func (c *Canvas) drawUndercurl(x, y, w, lw int) {
	for i := 0; i < w; i++ {
		dy := 0
		if (i/lw)%2 == 0 {
			dy = -lw
		}
		for t := 0; t < lw; t++ {
			c.setPixel(x+i, y+dy+t, c.special)
		}
	}
}

// invertRect complements the R, G and B channels in place, leaving alpha.
// Two applications restore the original pixels exactly.
func (c *Canvas) invertRect(in protocol.InvertRect) {
	x, y := c.scale(in.X), c.scale(in.Y)
	w, h := c.scale(in.W), c.scale(in.H)
	for py := y; py < y+h; py++ {
		for px := x; px < x+w; px++ {
			if !(image.Point{X: px, Y: py}).In(c.img.Rect) {
				continue
			}
			p := c.img.RGBAAt(px, py)
			c.img.SetRGBA(px, py, color.RGBA{
				R: 0xff - p.R,
				G: 0xff - p.G,
				B: 0xff - p.B,
				A: p.A,
			})
		}
	}
}

// scrollRect copies the span [X, X+W) of height H from SrcY to DstY. The
// source is snapshotted first so overlapping regions copy correctly.
func (c *Canvas) scrollRect(in protocol.ScrollRect) {
	x, w := c.scale(in.X), c.scale(in.W)
	src, dst := c.scale(in.SrcY), c.scale(in.DstY)
	h := c.scale(in.H)

	snap := make([]color.RGBA, 0, w*h)
	for py := src; py < src+h; py++ {
		for px := x; px < x+w; px++ {
			if (image.Point{X: px, Y: py}).In(c.img.Rect) {
				snap = append(snap, c.img.RGBAAt(px, py))
			} else {
				snap = append(snap, c.bg)
			}
		}
	}

	i := 0
	for py := dst; py < dst+h; py++ {
		for px := x; px < x+w; px++ {
			c.setPixel(px, py, snap[i])
			i++
		}
	}
}
