package device

import (
	"errors"
	"fmt"
	"sync"

	"github.com/moffa90/go-sandbox/protocol"
)

// Channel is a synchronous control channel to exactly one device.
// *hid.Device from github.com/sstallion/go-hid satisfies the send half.
type Channel interface {
	// SendFeatureReport sends one frame and returns the number of bytes accepted.
	SendFeatureReport(b []byte) (int, error)

	// Close releases the channel.
	Close() error
}

// Session owns the control channel of one attached device. It is the only
// component that writes to the channel.
//
// Session serializes its calls but is meant to be driven by a single caller.
type Session struct {
	mu     sync.Mutex
	ch     Channel
	config Config
	closed bool
}

// NewSession wraps an already open channel.
//
// Example:
//
//	sess := device.NewSession(ch, device.WithLogger(logger))
//	defer sess.Close()
func NewSession(ch Channel, opts ...Option) *Session {
	if ch == nil {
		panic("channel cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Session{
		ch:     ch,
		config: cfg,
	}
}

// SendControl builds a control frame and performs one synchronous exchange.
// It returns the number of bytes the channel accepted and the frame length.
// A transport failure is returned as-is; a short write is not an error here.
func (s *Session) SendControl(opcode byte, address uint32, payload []byte) (accepted, frameLen int, err error) {
	frame, err := protocol.BuildCmd(opcode, address, payload)
	if err != nil {
		return 0, 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, len(frame), ErrClosed
	}

	n, err := s.ch.SendFeatureReport(frame)
	s.logDebug("control frame",
		"op", protocol.OpcodeName(opcode),
		"addr", fmt.Sprintf("0x%08x", address),
		"len", len(frame),
		"accepted", n,
	)
	return n, len(frame), err
}

// DisableRunningMode clears the device mode pointer, halting whichever
// sandbox the device is currently scheduling.
func (s *Session) DisableRunningMode() error {
	return s.sendPointer(protocol.DisabledAddress)
}

// SetModePointer installs address as the sandbox the device scheduler
// invokes. The install is a single frame. Address 0 is reserved for
// DisableRunningMode and rejected here.
func (s *Session) SetModePointer(address uint32) error {
	if address == protocol.DisabledAddress {
		return fmt.Errorf("mode pointer address cannot be 0x%08x: use DisableRunningMode", address)
	}
	return s.sendPointer(address)
}

// sendPointer sends a 6-byte mode pointer frame, resending it while the
// channel fails or accepts fewer bytes than the frame holds.
func (s *Session) sendPointer(address uint32) error {
	var lastErr error
	for attempt := 1; attempt <= s.config.MaxAttempts; attempt++ {
		n, want, err := s.SendControl(protocol.CmdSetModePointer, address, nil)
		if errors.Is(err, ErrClosed) {
			return err
		}
		if err == nil && n == want {
			return nil
		}
		if err == nil {
			err = &protocol.ShortWriteError{Accepted: n, Want: want}
		}
		lastErr = err
	}

	cmdErr := &CommandError{
		Opcode:   protocol.CmdSetModePointer,
		Address:  address,
		Attempts: s.config.MaxAttempts,
		Err:      lastErr,
	}
	s.logError("mode pointer frame rejected", "err", cmdErr)
	return cmdErr
}

// Close releases the channel. It is safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.ch.Close()
}

// logDebug logs a debug message if a logger is configured.
func (s *Session) logDebug(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (s *Session) logError(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Error(msg, keysAndValues...)
	}
}
