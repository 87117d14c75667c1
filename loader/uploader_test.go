package loader

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/moffa90/go-sandbox/device"
	"github.com/moffa90/go-sandbox/protocol"
)

// MockChannel simulates the device control channel for testing. It records
// every frame and lets a test decide how much of each frame is accepted.
type MockChannel struct {
	frames [][]byte
	// respond returns the result of the n-th send (0-based); nil accepts everything
	respond func(n int, frame []byte) (int, error)
	closed  bool
}

func NewMockChannel() *MockChannel {
	return &MockChannel{}
}

func (m *MockChannel) SendFeatureReport(b []byte) (int, error) {
	n := len(m.frames)
	m.frames = append(m.frames, append([]byte(nil), b...))
	if m.respond == nil {
		return len(b), nil
	}
	return m.respond(n, b)
}

func (m *MockChannel) Close() error {
	m.closed = true
	return nil
}

// writes returns the write frames sent so far.
func (m *MockChannel) writes() [][]byte {
	var out [][]byte
	for _, f := range m.frames {
		if f[1] == protocol.CmdWrite {
			out = append(out, f)
		}
	}
	return out
}

func frameAddr(f []byte) uint32 {
	return binary.LittleEndian.Uint32(f[2:6])
}

// Mock logger for testing
type MockLogger struct {
	debugMsgs []string
	infoMsgs  []string
	errorMsgs []string
}

func (l *MockLogger) Debug(msg interface{}, kv ...interface{}) {
	l.debugMsgs = append(l.debugMsgs, msg.(string))
}

func (l *MockLogger) Info(msg interface{}, kv ...interface{}) {
	l.infoMsgs = append(l.infoMsgs, msg.(string))
}

func (l *MockLogger) Error(msg interface{}, kv ...interface{}) {
	l.errorMsgs = append(l.errorMsgs, msg.(string))
}

func newTestUploader(ch *MockChannel, opts ...Option) *Uploader {
	return NewUploader(device.NewSession(ch), opts...)
}

func TestNewUploader(t *testing.T) {
	ch := NewMockChannel()

	tests := []struct {
		name        string
		options     []Option
		wantAttempt int
	}{
		{
			name:        "with no options",
			options:     nil,
			wantAttempt: DefaultMaxAttempts,
		},
		{
			name: "with all options",
			options: []Option{
				WithProgressCallback(func(p Progress) {}),
				WithLogger(&MockLogger{}),
				WithMaxAttempts(5),
				WithQuiescence(0),
				WithInstallTarget(InstallEntry),
			},
			wantAttempt: 5,
		},
		{
			name:        "invalid attempts ignored",
			options:     []Option{WithMaxAttempts(0)},
			wantAttempt: DefaultMaxAttempts,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := newTestUploader(ch, tt.options...)
			if up == nil {
				t.Fatal("NewUploader() returned nil")
			}
			if up.config.MaxAttempts != tt.wantAttempt {
				t.Errorf("MaxAttempts = %d, want %d", up.config.MaxAttempts, tt.wantAttempt)
			}
		})
	}
}

func TestUploadFiveHundredBytes(t *testing.T) {
	ch := NewMockChannel()
	up := newTestUploader(ch)

	data := make([]byte, 500)
	for i := range data {
		data[i] = byte(i)
	}

	err := up.Upload(context.Background(), protocol.Image{Name: "instructions", Base: 0x1000, Data: data})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantAddrs := []uint32{0x1000, 0x10E0, 0x11C0}
	wantSizes := []int{224, 224, 52}

	if len(ch.frames) != 3 {
		t.Fatalf("sent %d frames, want 3", len(ch.frames))
	}

	offset := 0
	for i, f := range ch.frames {
		if f[0] != protocol.Marker || f[1] != protocol.CmdWrite {
			t.Errorf("frame %d header = % X", i, f[:2])
		}
		if addr := frameAddr(f); addr != wantAddrs[i] {
			t.Errorf("frame %d address = 0x%08X, want 0x%08X", i, addr, wantAddrs[i])
		}
		payload := f[protocol.HeaderSize:]
		if len(payload) != wantSizes[i] {
			t.Errorf("frame %d payload = %d bytes, want %d", i, len(payload), wantSizes[i])
		}
		if !bytes.Equal(payload, data[offset:offset+len(payload)]) {
			t.Errorf("frame %d payload does not match image bytes", i)
		}
		offset += len(payload)
	}
}

func TestUploadPadsLastChunk(t *testing.T) {
	ch := NewMockChannel()
	up := newTestUploader(ch)

	err := up.Upload(context.Background(), protocol.Image{Base: 0x2000, Data: []byte{1, 2, 3, 4, 5}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ch.frames) != 1 {
		t.Fatalf("sent %d frames, want 1", len(ch.frames))
	}

	want := []byte{1, 2, 3, 4, 5, 0, 0, 0}
	if got := ch.frames[0][protocol.HeaderSize:]; !bytes.Equal(got, want) {
		t.Errorf("payload = % X, want % X", got, want)
	}
}

func TestUploadTransmitsPaddedLength(t *testing.T) {
	for _, n := range []int{0, 1, 4, 223, 224, 225, 448, 1000, 4097} {
		ch := NewMockChannel()
		up := newTestUploader(ch)

		if err := up.Upload(context.Background(), protocol.Image{Base: 0x4000, Data: make([]byte, n)}); err != nil {
			t.Fatalf("%d bytes: unexpected error: %v", n, err)
		}

		total := 0
		prev := uint32(0)
		for i, f := range ch.frames {
			addr := frameAddr(f)
			if i > 0 && addr <= prev {
				t.Fatalf("%d bytes: frame %d address 0x%08X not increasing", n, i, addr)
			}
			prev = addr
			total += len(f) - protocol.HeaderSize
		}

		if total != protocol.PaddedLength(n) {
			t.Errorf("%d bytes: transmitted %d payload bytes, want %d", n, total, protocol.PaddedLength(n))
		}
	}
}

func TestUploadRetriesShortWrites(t *testing.T) {
	ch := NewMockChannel()
	ch.respond = func(n int, frame []byte) (int, error) {
		// first chunk is cut short twice
		if n < 2 {
			return len(frame) - 1, nil
		}
		return len(frame), nil
	}
	up := newTestUploader(ch)

	err := up.Upload(context.Background(), protocol.Image{Base: 0x1000, Data: make([]byte, 300)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ch.frames) != 4 {
		t.Fatalf("sent %d frames, want 4", len(ch.frames))
	}

	wantAddrs := []uint32{0x1000, 0x1000, 0x1000, 0x10E0}
	for i, f := range ch.frames {
		if frameAddr(f) != wantAddrs[i] {
			t.Errorf("frame %d address = 0x%08X, want 0x%08X", i, frameAddr(f), wantAddrs[i])
		}
	}
}

func TestUploadRetryBudgetIsPerChunk(t *testing.T) {
	ch := NewMockChannel()
	perAddr := make(map[uint32]int)
	ch.respond = func(n int, frame []byte) (int, error) {
		addr := frameAddr(frame)
		perAddr[addr]++
		// every chunk fails ten times before it goes through
		if perAddr[addr] <= 10 {
			return 0, errors.New("pipe error")
		}
		return len(frame), nil
	}
	up := newTestUploader(ch)

	err := up.Upload(context.Background(), protocol.Image{Base: 0x1000, Data: make([]byte, 224*3)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ch.frames) != 33 {
		t.Errorf("sent %d frames, want 33", len(ch.frames))
	}
}

func TestUploadFailsAfterElevenAttempts(t *testing.T) {
	ch := NewMockChannel()
	ch.respond = func(n int, frame []byte) (int, error) {
		if frameAddr(frame) == 0x10E0 {
			return 3, nil
		}
		return len(frame), nil
	}
	logger := &MockLogger{}
	up := newTestUploader(ch, WithLogger(logger))

	err := up.Upload(context.Background(), protocol.Image{Name: "instructions", Base: 0x1000, Data: make([]byte, 500)})

	var failed *UploadFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("error = %v, want *UploadFailedError", err)
	}

	if failed.Offset != 224 {
		t.Errorf("Offset = %d, want 224", failed.Offset)
	}
	if failed.Attempts != 11 {
		t.Errorf("Attempts = %d, want 11", failed.Attempts)
	}
	if failed.Address != 0x10E0 {
		t.Errorf("Address = 0x%08X, want 0x000010E0", failed.Address)
	}

	var short *protocol.ShortWriteError
	if !errors.As(err, &short) || short.Accepted != 3 {
		t.Errorf("wrapped error = %v, want short write", failed.Err)
	}

	// one frame for the first chunk, eleven for the second, none for the third
	if len(ch.frames) != 12 {
		t.Errorf("sent %d frames, want 12", len(ch.frames))
	}
	for _, f := range ch.frames {
		if frameAddr(f) == 0x11C0 {
			t.Error("third chunk was sent after the second failed")
		}
	}

	if len(logger.errorMsgs) != 1 {
		t.Errorf("logged %d errors, want 1", len(logger.errorMsgs))
	}
}

func TestUploadTransportErrorExhausted(t *testing.T) {
	ch := NewMockChannel()
	cause := errors.New("device disconnected")
	ch.respond = func(n int, frame []byte) (int, error) {
		return -1, cause
	}
	up := newTestUploader(ch, WithMaxAttempts(3))

	err := up.Upload(context.Background(), protocol.Image{Base: 0x1000, Data: []byte{1, 2, 3, 4}})

	var failed *UploadFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("error = %v, want *UploadFailedError", err)
	}
	if failed.Attempts != 3 || failed.Offset != 0 {
		t.Errorf("UploadFailedError = %+v, want offset 0 after 3 attempts", failed)
	}
	if !errors.Is(err, cause) {
		t.Errorf("error = %v, want wrapped %v", err, cause)
	}
}

func TestUploadCancelled(t *testing.T) {
	ch := NewMockChannel()
	up := newTestUploader(ch)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := up.Upload(ctx, protocol.Image{Base: 0x1000, Data: make([]byte, 500)})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if len(ch.frames) != 0 {
		t.Errorf("sent %d frames after cancel, want 0", len(ch.frames))
	}
}

func TestUploadWithProgress(t *testing.T) {
	ch := NewMockChannel()

	var progressCalls []Progress
	up := newTestUploader(ch, WithProgressCallback(func(p Progress) {
		progressCalls = append(progressCalls, p)
	}))

	err := up.Upload(context.Background(), protocol.Image{Name: "data", Base: 0x1000, Data: make([]byte, 500)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(progressCalls) != 3 {
		t.Fatalf("got %d progress callbacks, want 3", len(progressCalls))
	}

	last := progressCalls[len(progressCalls)-1]
	if last.Image != "data" || last.Chunk != 3 || last.TotalChunks != 3 {
		t.Errorf("last progress = %+v", last)
	}
	if last.BytesWritten != 500 || last.TotalBytes != 500 || last.Percentage != 100 {
		t.Errorf("last progress bytes = %d/%d (%.1f%%)", last.BytesWritten, last.TotalBytes, last.Percentage)
	}
	for _, p := range progressCalls {
		if p.Phase != PhaseUploading {
			t.Errorf("phase = %q, want %q", p.Phase, PhaseUploading)
		}
	}
}

func TestNewUploaderNilDevice(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewUploader(nil) did not panic")
		}
	}()
	NewUploader(nil)
}
