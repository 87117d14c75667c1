package loader

import (
	"context"
	"fmt"
	"time"

	"github.com/moffa90/go-sandbox/protocol"
)

// ControlSender performs one synchronous control frame exchange and reports
// how many bytes of the frame the channel accepted. *device.Session
// satisfies it.
type ControlSender interface {
	SendControl(opcode byte, address uint32, payload []byte) (accepted, frameLen int, err error)
}

// Uploader writes binary images into device memory in TransferUnit-sized
// chunks, retrying each chunk on its own budget.
//
// Chunks are sent strictly in increasing offset order, one at a time: the
// device cannot tell interleaved writes apart.
type Uploader struct {
	dev    ControlSender
	config Config
}

// NewUploader creates an Uploader that sends frames through dev.
//
// Example:
//
//	up := loader.NewUploader(sess,
//	    loader.WithLogger(logger),
//	    loader.WithMaxAttempts(11),
//	)
func NewUploader(dev ControlSender, opts ...Option) *Uploader {
	if dev == nil {
		panic("device cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Uploader{
		dev:    dev,
		config: cfg,
	}
}

// Upload pads img to the alignment unit and writes it chunk by chunk starting
// at img.Base. It returns a *UploadFailedError when a chunk exhausts its
// retry budget; nothing after that chunk is sent.
//
// The context is checked between chunks only; a frame once sent is never
// interrupted.
func (u *Uploader) Upload(ctx context.Context, img protocol.Image) error {
	startTime := time.Now()
	chunks := img.Chunks()
	totalBytes := protocol.PaddedLength(len(img.Data))

	u.logDebug("uploading image",
		"image", img.Name,
		"base", fmt.Sprintf("0x%08x", img.Base),
		"bytes", len(img.Data),
		"padded", totalBytes,
		"chunks", len(chunks),
	)

	bytesWritten := 0
	for i, c := range chunks {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("cancelled: %w", err)
		}

		if err := u.sendChunk(img, c); err != nil {
			return err
		}

		bytesWritten += len(c.Data)

		u.reportProgress(Progress{
			Phase:        PhaseUploading,
			Image:        img.Name,
			Chunk:        i + 1,
			TotalChunks:  len(chunks),
			BytesWritten: bytesWritten,
			TotalBytes:   totalBytes,
			Percentage:   float64(bytesWritten) / float64(totalBytes) * 100,
			ElapsedTime:  time.Since(startTime),
		})
	}

	u.logInfo("image uploaded",
		"image", img.Name,
		"bytes", bytesWritten,
		"elapsed", time.Since(startTime).String(),
	)

	return nil
}

// sendChunk writes one chunk, resending it while the channel fails or accepts
// fewer bytes than the frame holds. The attempt counter belongs to this chunk
// alone.
func (u *Uploader) sendChunk(img protocol.Image, c protocol.Chunk) error {
	addr := img.Address(c)
	u.logDebug("writing chunk", "bytes", len(c.Data), "addr", fmt.Sprintf("0x%08x", addr))

	attempts := 0
	var lastErr error
	for attempts < u.config.MaxAttempts {
		n, want, err := u.dev.SendControl(protocol.CmdWrite, addr, c.Data)
		attempts++

		if err == nil && n == want {
			return nil
		}

		// A frame that cannot be built will never be accepted.
		if protocol.IsPayloadSizeError(err) {
			return err
		}

		if err == nil {
			err = &protocol.ShortWriteError{Accepted: n, Want: want}
		}
		lastErr = err
		u.logDebug("chunk not accepted", "addr", fmt.Sprintf("0x%08x", addr), "attempt", attempts, "err", err)
	}

	failed := &UploadFailedError{
		Image:    img.Name,
		Offset:   c.Offset,
		Address:  addr,
		Attempts: attempts,
		Err:      lastErr,
	}
	u.logError("failed to write into scratch buffer", "err", failed)
	return failed
}

// reportProgress calls the progress callback if configured.
func (u *Uploader) reportProgress(progress Progress) {
	if u.config.ProgressCallback != nil {
		u.config.ProgressCallback(progress)
	}
}

// logDebug logs a debug message if a logger is configured.
func (u *Uploader) logDebug(msg string, keysAndValues ...interface{}) {
	if u.config.Logger != nil {
		u.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (u *Uploader) logInfo(msg string, keysAndValues ...interface{}) {
	if u.config.Logger != nil {
		u.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (u *Uploader) logError(msg string, keysAndValues ...interface{}) {
	if u.config.Logger != nil {
		u.config.Logger.Error(msg, keysAndValues...)
	}
}
