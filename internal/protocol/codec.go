package protocol

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Wire tags for message kinds. Draw instruction operation names come from
// Op.String.
const (
	tagStart   = "start"
	tagResize  = "resize"
	tagKey     = "key"
	tagDraw    = "draw"
	tagStarted = "started"
	tagExit    = "exit"
	tagFatal   = "fatal"
)

// EncodeOutbound encodes a main-to-worker message as one JSON object.
func EncodeOutbound(msg Outbound) ([]byte, error) {
	switch m := msg.(type) {
	case Start:
		return setAll("{}", map[string]any{
			"t":      tagStart,
			"sid":    m.SessionID,
			"flag":   m.WakeHandle,
			"height": m.Height,
			"width":  m.Width,
			"debug":  m.Debug,
		})
	case Resize:
		return setAll("{}", map[string]any{
			"t":      tagResize,
			"height": m.Height,
			"width":  m.Width,
		})
	case Key:
		return setAll("{}", map[string]any{
			"t":       tagKey,
			"code":    m.Code,
			"keyCode": m.KeyCode,
			"key":     m.Key,
			"ctrl":    m.Ctrl,
			"shift":   m.Shift,
			"alt":     m.Alt,
			"meta":    m.Meta,
		})
	default:
		return nil, fmt.Errorf("encode outbound %T: %w", msg, ErrUnknownKind)
	}
}

// DecodeOutbound decodes one main-to-worker JSON frame.
func DecodeOutbound(data []byte) (Outbound, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrMalformed
	}
	root := gjson.ParseBytes(data)
	switch tag := root.Get("t").String(); tag {
	case tagStart:
		return Start{
			SessionID:  root.Get("sid").String(),
			WakeHandle: uint32(root.Get("flag").Uint()),
			Height:     root.Get("height").Float(),
			Width:      root.Get("width").Float(),
			Debug:      root.Get("debug").Bool(),
		}, nil
	case tagResize:
		return Resize{
			Height: root.Get("height").Float(),
			Width:  root.Get("width").Float(),
		}, nil
	case tagKey:
		return Key{
			Code:    root.Get("code").String(),
			KeyCode: int(root.Get("keyCode").Int()),
			Key:     root.Get("key").String(),
			Ctrl:    root.Get("ctrl").Bool(),
			Shift:   root.Get("shift").Bool(),
			Alt:     root.Get("alt").Bool(),
			Meta:    root.Get("meta").Bool(),
		}, nil
	case "":
		return nil, ErrMalformed
	default:
		return nil, fmt.Errorf("decode outbound %q: %w", tag, ErrUnknownKind)
	}
}

// EncodeInbound encodes a worker-to-main message as one JSON object.
func EncodeInbound(msg Inbound) ([]byte, error) {
	switch m := msg.(type) {
	case Draw:
		op, args, err := instructionArgs(m.Event)
		if err != nil {
			return nil, err
		}
		return setAll("{}", map[string]any{
			"t":    tagDraw,
			"op":   op,
			"args": args,
		})
	case Started:
		return setAll("{}", map[string]any{"t": tagStarted})
	case Exited:
		return setAll("{}", map[string]any{"t": tagExit})
	case Fatal:
		return setAll("{}", map[string]any{
			"t":       tagFatal,
			"message": m.Message,
		})
	default:
		return nil, fmt.Errorf("encode inbound %T: %w", msg, ErrUnknownKind)
	}
}

// DecodeInbound decodes one worker-to-main JSON frame.
func DecodeInbound(data []byte) (Inbound, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrMalformed
	}
	root := gjson.ParseBytes(data)
	switch tag := root.Get("t").String(); tag {
	case tagDraw:
		instr, err := decodeInstruction(root)
		if err != nil {
			return nil, err
		}
		return Draw{Event: instr}, nil
	case tagStarted:
		return Started{}, nil
	case tagExit:
		return Exited{}, nil
	case tagFatal:
		return Fatal{Message: root.Get("message").String()}, nil
	case "":
		return nil, ErrMalformed
	default:
		return nil, fmt.Errorf("decode inbound %q: %w", tag, ErrUnknownKind)
	}
}

// instructionArgs flattens an instruction into its wire name and positional
// argument list. Argument order is part of the protocol.
func instructionArgs(instr Instruction) (string, []any, error) {
	switch in := instr.(type) {
	case FillRect:
		return in.Op().String(), []any{in.X, in.Y, in.W, in.H}, nil
	case StrokeRect:
		return in.Op().String(), []any{in.X, in.Y, in.W, in.H}, nil
	case Text:
		return in.Op().String(), []any{
			in.Text, in.X, in.Y, in.CW,
			in.Bold, in.Italic, in.Underline, in.Undercurl, in.Strike,
		}, nil
	case InvertRect:
		return in.Op().String(), []any{in.X, in.Y, in.W, in.H}, nil
	case ScrollRect:
		return in.Op().String(), []any{in.X, in.W, in.SrcY, in.DstY, in.H}, nil
	case SetFg:
		return in.Op().String(), []any{in.Color}, nil
	case SetBg:
		return in.Op().String(), []any{in.Color}, nil
	case SetSpecial:
		return in.Op().String(), []any{in.Color}, nil
	case SetFont:
		return in.Op().String(), []any{in.Size, in.Family}, nil
	default:
		return "", nil, fmt.Errorf("encode instruction %T: %w", instr, ErrUnknownOp)
	}
}

// decodeInstruction rebuilds a typed instruction from its wire name and
// positional arguments.
func decodeInstruction(root gjson.Result) (Instruction, error) {
	op := root.Get("op").String()
	args := root.Get("args").Array()

	num := func(i int) float64 {
		if i < len(args) {
			return args[i].Float()
		}
		return 0
	}
	str := func(i int) string {
		if i < len(args) {
			return args[i].String()
		}
		return ""
	}
	flag := func(i int) bool {
		if i < len(args) {
			return args[i].Bool()
		}
		return false
	}

	switch op {
	case "fillRect":
		return FillRect{X: num(0), Y: num(1), W: num(2), H: num(3)}, nil
	case "strokeRect":
		return StrokeRect{X: num(0), Y: num(1), W: num(2), H: num(3)}, nil
	case "text":
		return Text{
			Text: str(0), X: num(1), Y: num(2), CW: num(3),
			Bold: flag(4), Italic: flag(5),
			Underline: flag(6), Undercurl: flag(7), Strike: flag(8),
		}, nil
	case "invertRect":
		return InvertRect{X: num(0), Y: num(1), W: num(2), H: num(3)}, nil
	case "scrollRect":
		return ScrollRect{X: num(0), W: num(1), SrcY: num(2), DstY: num(3), H: num(4)}, nil
	case "setFg":
		return SetFg{Color: str(0)}, nil
	case "setBg":
		return SetBg{Color: str(0)}, nil
	case "setSpecial":
		return SetSpecial{Color: str(0)}, nil
	case "setFont":
		return SetFont{Size: num(0), Family: str(1)}, nil
	case "":
		return nil, ErrMalformed
	default:
		return nil, fmt.Errorf("decode instruction %q: %w", op, ErrUnknownOp)
	}
}

// setAll builds a JSON object by applying every key in a stable order.
func setAll(base string, fields map[string]any) ([]byte, error) {
	// Tag first so frames are greppable, then the rest sorted by sjson's
	// object insertion.
	out := base
	var err error
	if t, ok := fields["t"]; ok {
		out, err = sjson.Set(out, "t", t)
		if err != nil {
			return nil, err
		}
	}
	for _, key := range fieldOrder {
		val, ok := fields[key]
		if !ok {
			continue
		}
		out, err = sjson.Set(out, key, val)
		if err != nil {
			return nil, err
		}
	}
	return []byte(out), nil
}

// fieldOrder fixes the emission order of every field the codec can write.
var fieldOrder = []string{
	"sid", "flag", "height", "width", "debug",
	"code", "keyCode", "key", "ctrl", "shift", "alt", "meta",
	"op", "args", "message",
}
