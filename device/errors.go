package device

import (
	"errors"
	"fmt"

	"github.com/moffa90/go-sandbox/protocol"
)

// ErrClosed is returned by Session methods after Close.
var ErrClosed = errors.New("device session is closed")

// DeviceNotFoundError indicates that no attached device matches the
// vendor/product pair.
type DeviceNotFoundError struct {
	VendorID  uint16
	ProductID uint16
}

func (e *DeviceNotFoundError) Error() string {
	return fmt.Sprintf("no device found with VID/PID %04x:%04x", e.VendorID, e.ProductID)
}

// IsDeviceNotFound reports whether err is, or wraps, a DeviceNotFoundError.
func IsDeviceNotFound(err error) bool {
	var target *DeviceNotFoundError
	return errors.As(err, &target)
}

// CommandError indicates that a control frame was not accepted within the
// retry budget.
type CommandError struct {
	// Opcode is the opcode of the rejected frame
	Opcode byte

	// Address is the frame address
	Address uint32

	// Attempts is how many times the frame was sent
	Attempts int

	// Err is the failure of the last attempt: a transport error or a *protocol.ShortWriteError
	Err error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s 0x%08x failed after %d attempts",
		protocol.OpcodeName(e.Opcode), e.Address, e.Attempts)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
