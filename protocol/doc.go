// Package protocol implements the control frame format used to install a
// sandbox program into a running device.
//
// This package provides functions to build control frames and to split a
// binary image into write-sized chunks.
//
// # Protocol Overview
//
// Every exchange is a single synchronous HID feature report:
//
//	[MARKER][OPCODE][ADDR_0][ADDR_1][ADDR_2][ADDR_3][PAYLOAD...]
//
// Where:
//   - MARKER = 0xAA, the advanced control report ID
//   - OPCODE = 0x04 (write) or 0x07 (set mode pointer)
//   - ADDR = 32-bit device address (little-endian)
//   - PAYLOAD = up to 224 bytes, write frames only
//
// Mode pointer frames are exactly 6 bytes. Address 0 disables the running
// sandbox. There are no responses; success is inferred from the number of
// bytes the channel accepts.
//
// # Frame Builders
//
//	frame, err := protocol.BuildWriteCmd(0x40380000, chunk)
//	frame := protocol.BuildDisableCmd()
//	frame := protocol.BuildSetModeCmd(modeAddr)
//
// # Images and Chunks
//
// Images are zero-padded to a 4-byte boundary and cut into 224-byte chunks:
//
//	img := protocol.Image{Name: "instructions", Base: 0x1000, Data: blob}
//	for _, c := range img.Chunks() {
//	    frame, _ := protocol.BuildWriteCmd(img.Address(c), c.Data)
//	    // send frame
//	}
package protocol
