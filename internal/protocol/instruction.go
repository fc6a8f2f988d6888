package protocol

// Op enumerates the drawing instruction kinds. The set is closed; dispatch
// is an exhaustive switch, never reflection or name lookup.
type Op int

const (
	// OpFillRect fills a rectangle with the current background color.
	OpFillRect Op = iota

	// OpStrokeRect outlines a rectangle with the current foreground color.
	OpStrokeRect

	// OpText draws a text run glyph by glyph at a fixed per-column advance.
	OpText

	// OpInvertRect complements the color channels of a rectangle in place.
	OpInvertRect

	// OpScrollRect copies a horizontal span from one vertical offset to
	// another within the surface.
	OpScrollRect

	// OpSetFg selects the foreground color for subsequent instructions.
	OpSetFg

	// OpSetBg selects the background color for subsequent instructions.
	OpSetBg

	// OpSetSpecial selects the special (decoration) color.
	OpSetSpecial

	// OpSetFont selects the font for subsequent text runs.
	OpSetFont
)

// String returns the wire name of the operation.
func (op Op) String() string {
	switch op {
	case OpFillRect:
		return "fillRect"
	case OpStrokeRect:
		return "strokeRect"
	case OpText:
		return "text"
	case OpInvertRect:
		return "invertRect"
	case OpScrollRect:
		return "scrollRect"
	case OpSetFg:
		return "setFg"
	case OpSetBg:
		return "setBg"
	case OpSetSpecial:
		return "setSpecial"
	case OpSetFont:
		return "setFont"
	default:
		return "unknown"
	}
}

// Instruction is one drawing operation. All geometry is in logical units;
// the canvas scales by the device-pixel ratio when executing.
type Instruction interface {
	Op() Op
}

// FillRect fills the rectangle with the current background color.
type FillRect struct {
	X, Y, W, H float64
}

// StrokeRect outlines the rectangle with the current foreground color.
type StrokeRect struct {
	X, Y, W, H float64
}

// Text draws Text starting at (X, Y) where Y is the cell top and the
// baseline sits at the cell bottom. Each column advances by CW logical
// units; wide runes occupy two columns.
//
// At most one decoration is drawn per call: underline wins over undercurl,
// which wins over strike.
type Text struct {
	Text string
	X, Y float64

	// CW is the per-column advance in logical units.
	CW float64

	Bold      bool
	Italic    bool
	Underline bool
	Undercurl bool
	Strike    bool
}

// InvertRect complements the R, G and B channels of every pixel in the
// rectangle, leaving alpha untouched. Applying it twice restores the
// original pixels.
type InvertRect struct {
	X, Y, W, H float64
}

// ScrollRect copies the span [X, X+W) of height H from SrcY to DstY.
type ScrollRect struct {
	X, W       float64
	SrcY, DstY float64
	H          float64
}

// SetFg selects the foreground color. Color is a CSS-style string
// ("#rrggbb" or a named color).
type SetFg struct {
	Color string
}

// SetBg selects the background color.
type SetBg struct {
	Color string
}

// SetSpecial selects the special color used for undercurl decoration.
type SetSpecial struct {
	Color string
}

// SetFont selects the font for subsequent text runs. Size is the cell
// height in logical units.
type SetFont struct {
	Size   float64
	Family string
}

func (FillRect) Op() Op   { return OpFillRect }
func (StrokeRect) Op() Op { return OpStrokeRect }
func (Text) Op() Op       { return OpText }
func (InvertRect) Op() Op { return OpInvertRect }
func (ScrollRect) Op() Op { return OpScrollRect }
func (SetFg) Op() Op      { return OpSetFg }
func (SetBg) Op() Op      { return OpSetBg }
func (SetSpecial) Op() Op { return OpSetSpecial }
func (SetFont) Op() Op    { return OpSetFont }
