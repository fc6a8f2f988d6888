package term

import (
	"fmt"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/mthille/easel/internal/protocol"
)

// Translate converts a tcell key event into the normalized key
// descriptor the worker understands: a physical code, a legacy numeric
// code, the logical key string, and the modifier flags.
func Translate(ev *tcell.EventKey) protocol.Key {
	mods := ev.Modifiers()
	k := protocol.Key{
		Ctrl:  mods&tcell.ModCtrl != 0,
		Shift: mods&tcell.ModShift != 0,
		Alt:   mods&tcell.ModAlt != 0,
		Meta:  mods&tcell.ModMeta != 0,
	}

	switch ev.Key() {
	case tcell.KeyRune:
		return translateRune(k, ev.Rune())
	case tcell.KeyEnter:
		return named(k, "Enter", "Enter", 13)
	case tcell.KeyTab:
		return named(k, "Tab", "Tab", 9)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return named(k, "Backspace", "Backspace", 8)
	case tcell.KeyEscape:
		return named(k, "Escape", "Escape", 27)
	case tcell.KeyDelete:
		return named(k, "Delete", "Delete", 46)
	case tcell.KeyInsert:
		return named(k, "Insert", "Insert", 45)
	case tcell.KeyHome:
		return named(k, "Home", "Home", 36)
	case tcell.KeyEnd:
		return named(k, "End", "End", 35)
	case tcell.KeyPgUp:
		return named(k, "PageUp", "PageUp", 33)
	case tcell.KeyPgDn:
		return named(k, "PageDown", "PageDown", 34)
	case tcell.KeyLeft:
		return named(k, "ArrowLeft", "ArrowLeft", 37)
	case tcell.KeyUp:
		return named(k, "ArrowUp", "ArrowUp", 38)
	case tcell.KeyRight:
		return named(k, "ArrowRight", "ArrowRight", 39)
	case tcell.KeyDown:
		return named(k, "ArrowDown", "ArrowDown", 40)
	case tcell.KeyF1, tcell.KeyF2, tcell.KeyF3, tcell.KeyF4,
		tcell.KeyF5, tcell.KeyF6, tcell.KeyF7, tcell.KeyF8,
		tcell.KeyF9, tcell.KeyF10, tcell.KeyF11, tcell.KeyF12:
		n := int(ev.Key()-tcell.KeyF1) + 1
		name := fmt.Sprintf("F%d", n)
		return named(k, name, name, 111+n)
	}

	// Ctrl+letter combinations arrive as dedicated key codes; the
	// overlapping values (tab, enter, backspace) were handled above.
	if ev.Key() >= tcell.KeyCtrlA && ev.Key() <= tcell.KeyCtrlZ {
		letter := rune('a' + int(ev.Key()-tcell.KeyCtrlA))
		k.Ctrl = true
		return translateRune(k, letter)
	}

	k.Key = "Unidentified"
	return k
}

// named fills in a multi-character logical key.
func named(k protocol.Key, code, key string, keyCode int) protocol.Key {
	k.Code = code
	k.Key = key
	k.KeyCode = keyCode
	return k
}

// translateRune fills in a printable key. The physical code follows the
// letter or digit; other runes carry only the logical key string.
func translateRune(k protocol.Key, r rune) protocol.Key {
	k.Key = string(r)
	switch {
	case r == ' ':
		k.Code = "Space"
		k.KeyCode = 32
	case r >= 'a' && r <= 'z':
		k.Code = "Key" + string(unicode.ToUpper(r))
		k.KeyCode = int(unicode.ToUpper(r))
	case r >= 'A' && r <= 'Z':
		k.Code = "Key" + string(r)
		k.KeyCode = int(r)
		k.Shift = true
	case r >= '0' && r <= '9':
		k.Code = "Digit" + string(r)
		k.KeyCode = int(r)
	}
	return k
}
