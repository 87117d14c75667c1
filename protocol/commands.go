package protocol

import (
	"encoding/binary"
)

// BuildWriteCmd constructs a Write command frame that stores data at address.
// The payload must be between 1 and TransferUnit bytes.
//
// Frame structure:
//
//	[MARKER][CMD][ADDR_0][ADDR_1][ADDR_2][ADDR_3][DATA...]
//
// Returns the complete frame ready to send, or an error if validation fails.
func BuildWriteCmd(address uint32, data []byte) ([]byte, error) {
	if len(data) == 0 || len(data) > TransferUnit {
		return nil, &PayloadSizeError{Size: len(data)}
	}

	frame := make([]byte, 0, HeaderSize+len(data))
	frame = appendHeader(frame, CmdWrite, address)
	frame = append(frame, data...)

	return frame, nil
}

// BuildSetModeCmd constructs a Set Mode Pointer frame installing address as
// the sandbox the device scheduler invokes.
//
// Frame structure:
//
//	[MARKER][CMD][ADDR_0][ADDR_1][ADDR_2][ADDR_3]
func BuildSetModeCmd(address uint32) []byte {
	frame := make([]byte, 0, PointerFrameSize)
	return appendHeader(frame, CmdSetModePointer, address)
}

// BuildDisableCmd constructs the Set Mode Pointer frame with the disabled
// address, halting whichever sandbox the device is currently scheduling.
func BuildDisableCmd() []byte {
	return BuildSetModeCmd(DisabledAddress)
}

// BuildCmd constructs a frame for an arbitrary opcode. Write frames are
// validated like BuildWriteCmd; other opcodes ignore an empty payload.
func BuildCmd(opcode byte, address uint32, payload []byte) ([]byte, error) {
	if opcode == CmdWrite {
		return BuildWriteCmd(address, payload)
	}
	if len(payload) > TransferUnit {
		return nil, &PayloadSizeError{Size: len(payload)}
	}

	frame := make([]byte, 0, HeaderSize+len(payload))
	frame = appendHeader(frame, opcode, address)
	frame = append(frame, payload...)

	return frame, nil
}

// appendHeader appends the marker, opcode and little-endian address.
func appendHeader(frame []byte, opcode byte, address uint32) []byte {
	frame = append(frame, Marker, opcode)
	return binary.LittleEndian.AppendUint32(frame, address)
}

// FrameAddress extracts the little-endian address from a frame header.
// Returns false if the frame is shorter than HeaderSize.
func FrameAddress(frame []byte) (uint32, bool) {
	if len(frame) < HeaderSize {
		return 0, false
	}
	return binary.LittleEndian.Uint32(frame[2:HeaderSize]), true
}
