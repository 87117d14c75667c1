package protocol

import (
	"bytes"
	"testing"
)

func TestBuildWriteCmd(t *testing.T) {
	tests := []struct {
		name    string
		address uint32
		data    []byte
		wantErr bool
		errMsg  string
	}{
		{
			name:    "single word",
			address: 0x40380000,
			data:    []byte{0x01, 0x02, 0x03, 0x04},
			wantErr: false,
		},
		{
			name:    "full transfer unit",
			address: 0x1000,
			data:    bytes.Repeat([]byte{0x5A}, TransferUnit),
			wantErr: false,
		},
		{
			name:    "empty payload",
			address: 0x1000,
			data:    []byte{},
			wantErr: true,
			errMsg:  "payload cannot be empty",
		},
		{
			name:    "nil payload",
			address: 0x1000,
			data:    nil,
			wantErr: true,
			errMsg:  "payload cannot be empty",
		},
		{
			name:    "payload too large",
			address: 0x1000,
			data:    make([]byte, TransferUnit+1),
			wantErr: true,
			errMsg:  "exceeds transfer unit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := BuildWriteCmd(tt.address, tt.data)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.errMsg)
				}
				if !bytes.Contains([]byte(err.Error()), []byte(tt.errMsg)) {
					t.Errorf("error = %v, want substring %q", err, tt.errMsg)
				}
				if !IsPayloadSizeError(err) {
					t.Errorf("error type = %T, want *PayloadSizeError", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(frame) != HeaderSize+len(tt.data) {
				t.Errorf("frame length = %d, want %d", len(frame), HeaderSize+len(tt.data))
			}

			if frame[0] != Marker {
				t.Errorf("MARKER = 0x%02X, want 0x%02X", frame[0], Marker)
			}

			if frame[1] != CmdWrite {
				t.Errorf("CMD = 0x%02X, want 0x%02X", frame[1], CmdWrite)
			}

			addr, ok := FrameAddress(frame)
			if !ok || addr != tt.address {
				t.Errorf("address = 0x%08X, want 0x%08X", addr, tt.address)
			}

			if !bytes.Equal(frame[HeaderSize:], tt.data) {
				t.Errorf("payload in frame = %v, want %v", frame[HeaderSize:], tt.data)
			}
		})
	}
}

func TestBuildWriteCmdAddressByteOrder(t *testing.T) {
	frame, err := BuildWriteCmd(0x11223344, []byte{0, 0, 0, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []byte{Marker, CmdWrite, 0x44, 0x33, 0x22, 0x11}
	if !bytes.Equal(frame[:HeaderSize], want) {
		t.Errorf("header = % X, want % X", frame[:HeaderSize], want)
	}
}

func TestBuildSetModeCmd(t *testing.T) {
	frame := BuildSetModeCmd(0x42001234)

	want := []byte{0xAA, 0x07, 0x34, 0x12, 0x00, 0x42}
	if !bytes.Equal(frame, want) {
		t.Errorf("frame = % X, want % X", frame, want)
	}

	if len(frame) != PointerFrameSize {
		t.Errorf("frame length = %d, want %d", len(frame), PointerFrameSize)
	}
}

func TestBuildDisableCmd(t *testing.T) {
	frame := BuildDisableCmd()

	want := []byte{0xAA, 0x07, 0x00, 0x00, 0x00, 0x00}
	if !bytes.Equal(frame, want) {
		t.Errorf("frame = % X, want % X", frame, want)
	}
}

func TestBuildCmd(t *testing.T) {
	t.Run("write delegates validation", func(t *testing.T) {
		if _, err := BuildCmd(CmdWrite, 0x1000, nil); err == nil {
			t.Fatal("expected error for empty write payload")
		}
	})

	t.Run("pointer frame without payload", func(t *testing.T) {
		frame, err := BuildCmd(CmdSetModePointer, 0x2000, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !bytes.Equal(frame, BuildSetModeCmd(0x2000)) {
			t.Errorf("frame = % X, want % X", frame, BuildSetModeCmd(0x2000))
		}
	})

	t.Run("oversized payload", func(t *testing.T) {
		if _, err := BuildCmd(CmdCall, 0x2000, make([]byte, TransferUnit+1)); err == nil {
			t.Fatal("expected error for oversized payload")
		}
	})
}

func TestFrameAddressShortFrame(t *testing.T) {
	if _, ok := FrameAddress([]byte{Marker, CmdWrite, 0x00}); ok {
		t.Error("FrameAddress() ok = true for short frame, want false")
	}
}

func TestOpcodeName(t *testing.T) {
	tests := []struct {
		op   byte
		want string
	}{
		{CmdWrite, "write"},
		{CmdSetModePointer, "set mode pointer"},
		{0x42, "unknown opcode 0x42"},
	}

	for _, tt := range tests {
		if got := OpcodeName(tt.op); got != tt.want {
			t.Errorf("OpcodeName(0x%02X) = %q, want %q", tt.op, got, tt.want)
		}
	}
}
