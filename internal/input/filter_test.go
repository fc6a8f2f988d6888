package input

import (
	"testing"

	"github.com/mthille/easel/internal/protocol"
)

// fakeSender records sends and wake signals.
type fakeSender struct {
	sent  []protocol.Outbound
	wakes int
	err   error
}

func (s *fakeSender) Send(msg protocol.Outbound) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *fakeSender) Wake() { s.wakes++ }

func TestFilter_DropsRedundantModifier(t *testing.T) {
	tests := []struct {
		name string
		ev   protocol.Key
	}{
		{"control with ctrl flag", protocol.Key{Key: "Control", Ctrl: true}},
		{"shift with shift flag", protocol.Key{Key: "Shift", Shift: true}},
		{"alt with alt flag", protocol.Key{Key: "Alt", Alt: true}},
		{"meta with meta flag", protocol.Key{Key: "Meta", Meta: true}},
		{"os with meta flag", protocol.Key{Key: "OS", Meta: true}},
		{"unidentified", protocol.Key{Key: "Unidentified"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{}
			f := NewFilter(sender)

			if err := f.Handle(tt.ev); err != nil {
				t.Fatalf("Handle() failed: %v", err)
			}
			if len(sender.sent) != 0 {
				t.Errorf("dropped event produced a message: %+v", sender.sent)
			}
			if sender.wakes != 0 {
				t.Errorf("dropped event issued %d wake signals", sender.wakes)
			}
		})
	}
}

func TestFilter_ForwardsRealKeys(t *testing.T) {
	tests := []struct {
		name string
		ev   protocol.Key
	}{
		{"printable", protocol.Key{Code: "KeyA", KeyCode: 65, Key: "a"}},
		{"printable with ctrl", protocol.Key{Code: "KeyA", KeyCode: 65, Key: "a", Ctrl: true}},
		{"named non-modifier", protocol.Key{Code: "Enter", KeyCode: 13, Key: "Enter"}},
		{"modifier without its flag", protocol.Key{Key: "Control"}},
		{"arrow with shift", protocol.Key{Code: "ArrowUp", KeyCode: 38, Key: "ArrowUp", Shift: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{}
			f := NewFilter(sender)

			if err := f.Handle(tt.ev); err != nil {
				t.Fatalf("Handle() failed: %v", err)
			}
			if len(sender.sent) != 1 {
				t.Fatalf("expected 1 message, got %d", len(sender.sent))
			}
			if sender.sent[0] != tt.ev {
				t.Errorf("forwarded %+v, want %+v", sender.sent[0], tt.ev)
			}
			if sender.wakes != 1 {
				t.Errorf("expected exactly one wake signal, got %d", sender.wakes)
			}
		})
	}
}

func TestFilter_ModifierThenCombination(t *testing.T) {
	sender := &fakeSender{}
	f := NewFilter(sender)

	// The modifier keydown itself is filtered; the combination goes out.
	f.Handle(protocol.Key{Key: "Control", Ctrl: true})
	f.Handle(protocol.Key{Code: "KeyA", KeyCode: 65, Key: "a", Ctrl: true})

	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(sender.sent))
	}
	key := sender.sent[0].(protocol.Key)
	if key.Key != "a" || !key.Ctrl {
		t.Errorf("unexpected forwarded key: %+v", key)
	}
	if sender.wakes != 1 {
		t.Errorf("expected one wake signal total, got %d", sender.wakes)
	}

	forwarded, dropped := f.Stats()
	if forwarded != 1 || dropped != 1 {
		t.Errorf("Stats() = (%d,%d), want (1,1)", forwarded, dropped)
	}
}
