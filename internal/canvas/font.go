package canvas

import (
	"image"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// baseFace is the bitmap face all font sizes derive from. Larger sizes
// scale its glyph masks by an integer factor; there is no fractional
// scaling on a bitmap face.
var baseFace = basicfont.Face7x13

// Face is a selected font: the base bitmap face plus an integer scale
// chosen from the requested logical size and the device-pixel ratio.
type Face struct {
	// Size is the requested cell height in logical units.
	Size float64

	// Family is kept for protocol fidelity; every family resolves to the
	// same bitmap face.
	Family string

	scale int
}

// newFace picks the glyph scale whose rendered height best fits a cell of
// Size logical units at the given device-pixel ratio.
func newFace(size float64, family string, dpr float64) *Face {
	cellDev := int(math.Floor(size * dpr))
	scale := cellDev / baseFace.Height
	if scale < 1 {
		scale = 1
	}
	return &Face{Size: size, Family: family, scale: scale}
}

// glyph returns the alpha mask for r together with its draw rectangle
// relative to a dot at the origin, before scaling.
func glyph(r rune) (image.Rectangle, image.Image, image.Point, bool) {
	dot := fixed.Point26_6{}
	dr, mask, maskp, _, ok := baseFace.Glyph(dot, r)
	if !ok {
		// Fall back to the face's replacement glyph.
		dr, mask, maskp, _, ok = baseFace.Glyph(dot, '�')
	}
	return dr, mask, maskp, ok
}

// drawGlyph renders r with its baseline dot at (dotX, baselineY) in device
// pixels, scaled by the face's factor, using set to place pixels.
//
// Bold double-strikes one device pixel to the right; italic shears rows
// above the baseline. The mask threshold keeps the bitmap face crisp.
func (f *Face) drawGlyph(r rune, dotX, baselineY int, bold, italic bool, set func(x, y int)) {
	dr, mask, maskp, ok := glyph(r)
	if !ok {
		return
	}

	alpha, ok := mask.(*image.Alpha)
	if !ok {
		return
	}

	height := dr.Dy()
	for my := 0; my < height; my++ {
		shear := 0
		if italic {
			// Rows further above the baseline lean further right.
			shear = f.scale * (height - 1 - my) / 4
		}
		for mx := 0; mx < dr.Dx(); mx++ {
			a := alpha.AlphaAt(maskp.X+mx, maskp.Y+my).A
			if a < 0x80 {
				continue
			}
			px := dotX + (dr.Min.X+mx)*f.scale + shear
			py := baselineY + (dr.Min.Y+my)*f.scale
			for sy := 0; sy < f.scale; sy++ {
				for sx := 0; sx < f.scale; sx++ {
					set(px+sx, py+sy)
					if bold {
						set(px+sx+1, py+sy)
					}
				}
			}
		}
	}
}

// Metrics exposes the face geometry used by callers sizing cells.
func (f *Face) Metrics() font.Metrics {
	m := baseFace.Metrics()
	m.Height = fixed.I(baseFace.Height * f.scale)
	m.Ascent = fixed.I(baseFace.Ascent * f.scale)
	m.Descent = fixed.I(baseFace.Descent * f.scale)
	return m
}
