package canvas

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// namedColors covers the color keywords the worker is known to emit.
// Anything else must be hex.
var namedColors = map[string]string{
	"black":   "#000000",
	"white":   "#ffffff",
	"red":     "#ff0000",
	"green":   "#008000",
	"blue":    "#0000ff",
	"yellow":  "#ffff00",
	"cyan":    "#00ffff",
	"magenta": "#ff00ff",
	"gray":    "#808080",
	"grey":    "#808080",
	"orange":  "#ffa500",
	"purple":  "#800080",
}

// ParseColor resolves a CSS-style color string ("#rgb", "#rrggbb" or a
// keyword) into an opaque RGBA value.
func ParseColor(s string) (color.RGBA, error) {
	spec := strings.ToLower(strings.TrimSpace(s))
	if hex, ok := namedColors[spec]; ok {
		spec = hex
	}
	if len(spec) == 4 && spec[0] == '#' {
		// Expand shorthand #rgb the way browsers do.
		spec = fmt.Sprintf("#%c%c%c%c%c%c", spec[1], spec[1], spec[2], spec[2], spec[3], spec[3])
	}

	c, err := colorful.Hex(spec)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}
