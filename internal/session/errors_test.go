package session

import (
	"errors"
	"strings"
	"testing"

	"github.com/mthille/easel/internal/protocol"
)

func TestProtocolError(t *testing.T) {
	inner := protocol.ErrUnknownKind
	err := NewProtocolError("decoding frame", inner)

	if !strings.Contains(err.Error(), "protocol violation") {
		t.Errorf("Error() = %q, missing classification", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("errors.Is does not see the wrapped error")
	}

	var perr *ProtocolError
	if !errors.As(error(err), &perr) {
		t.Error("errors.As failed")
	}

	bare := NewProtocolError("unknown inbound message", nil)
	if strings.Contains(bare.Error(), "<nil>") {
		t.Errorf("nil inner error leaks into message: %q", bare.Error())
	}
}

func TestFatalError_Verbatim(t *testing.T) {
	err := &FatalError{Message: "lua: attempt to index a nil value"}
	if !strings.Contains(err.Error(), "lua: attempt to index a nil value") {
		t.Errorf("Error() = %q, message not verbatim", err.Error())
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateUninitialized, "uninitialized"},
		{StateAwaitingStart, "awaiting-start"},
		{StateActive, "active"},
		{StateTerminated, "terminated"},
		{State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
