package protocol

import "fmt"

// PayloadSizeError is returned when a write payload is empty or larger than
// the transfer unit.
type PayloadSizeError struct {
	// Size is the rejected payload length
	Size int
}

func (e *PayloadSizeError) Error() string {
	if e.Size == 0 {
		return "payload cannot be empty"
	}
	return fmt.Sprintf("payload length %d exceeds transfer unit of %d bytes", e.Size, TransferUnit)
}

// IsPayloadSizeError returns true if the error is a PayloadSizeError.
func IsPayloadSizeError(err error) bool {
	_, ok := err.(*PayloadSizeError)
	return ok
}

// ShortWriteError records a transfer where the channel accepted fewer bytes
// than the frame holds.
type ShortWriteError struct {
	Accepted int
	Want     int
}

func (e *ShortWriteError) Error() string {
	return fmt.Sprintf("short write: channel accepted %d of %d bytes", e.Accepted, e.Want)
}

// OpcodeName returns a human-readable name for an opcode.
func OpcodeName(op byte) string {
	switch op {
	case CmdWrite:
		return "write"
	case CmdRead:
		return "read"
	case CmdCall:
		return "call"
	case CmdSetModePointer:
		return "set mode pointer"
	default:
		return fmt.Sprintf("unknown opcode 0x%02X", op)
	}
}
