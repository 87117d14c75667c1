package protocol

// Frame structure constants for the device's advanced control channel.
const (
	// Marker is the protocol marker carried in byte 0 of every control frame.
	// It doubles as the HID feature report ID of the advanced control endpoint.
	Marker = 0xAA

	// HeaderSize is the size of the fixed frame prefix:
	// MARKER(1) + OPCODE(1) + ADDR(4)
	HeaderSize = 6

	// PointerFrameSize is the total size of a set/disable mode pointer frame.
	PointerFrameSize = HeaderSize
)

// Opcodes understood by the device firmware.
const (
	// CmdWrite writes the frame payload into device memory at the frame address
	CmdWrite = 0x04

	// CmdRead reads device memory. Reserved; never issued by this module.
	CmdRead = 0x05

	// CmdCall calls a function at the frame address. Reserved; never issued by this module.
	CmdCall = 0x06

	// CmdSetModePointer installs the frame address as the active sandbox mode.
	// Address 0 disables the running sandbox.
	CmdSetModePointer = 0x07
)

// Transfer geometry.
const (
	// TransferUnit is the maximum payload carried by a single write frame.
	TransferUnit = 224

	// Alignment is the length multiple every uploaded image is padded to.
	Alignment = 4

	// MaxFrameSize is the largest frame ever sent: a full write frame.
	MaxFrameSize = HeaderSize + TransferUnit
)

// DisabledAddress is the mode pointer value meaning "no active sandbox".
const DisabledAddress uint32 = 0
