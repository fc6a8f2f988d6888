package protocol

import "errors"

// Codec errors.
var (
	// ErrUnknownKind indicates a message whose tag is not part of the
	// protocol. Receiving one during an active session is a protocol
	// violation.
	ErrUnknownKind = errors.New("unknown message kind")

	// ErrUnknownOp indicates a draw instruction whose operation name is
	// not part of the closed instruction set.
	ErrUnknownOp = errors.New("unknown draw operation")

	// ErrMalformed indicates a frame that is not a JSON object or is
	// missing required fields.
	ErrMalformed = errors.New("malformed message")
)
