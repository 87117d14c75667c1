package loader

import "time"

// Phases reported through Progress.
const (
	PhaseLoading    = "loading"
	PhaseDisabling  = "disabling"
	PhaseQuiescing  = "quiescing"
	PhaseUploading  = "uploading"
	PhaseInstalling = "installing"
	PhaseComplete   = "complete"
)

// Progress contains information about install progress.
// Passed to ProgressCallback during uploads and sequence runs.
type Progress struct {
	// Phase is one of the Phase* constants
	Phase string

	// Image names the image being uploaded, empty outside PhaseUploading
	Image string

	// Chunk is the number of chunks of Image written so far
	Chunk int

	// TotalChunks is the number of chunks in Image
	TotalChunks int

	// BytesWritten is the number of padded bytes of Image written so far
	BytesWritten int

	// TotalBytes is the padded length of Image
	TotalBytes int

	// Percentage is the completion percentage of the current image (0.0 to 100.0)
	Percentage float64

	// ElapsedTime is the time elapsed since the upload or run started
	ElapsedTime time.Duration
}

// ProgressCallback is called to report progress.
// Implementations should return quickly; frames are not sent while it runs.
//
// Example:
//
//	seq := loader.NewSequencer(sess, src,
//	    loader.WithProgressCallback(func(p loader.Progress) {
//	        fmt.Printf("[%s] %s %d/%d\n", p.Phase, p.Image, p.Chunk, p.TotalChunks)
//	    }),
//	)
type ProgressCallback func(Progress)

// Logger is an optional logging interface. *log.Logger from
// github.com/charmbracelet/log satisfies it.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg interface{}, keyvals ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg interface{}, keyvals ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg interface{}, keyvals ...interface{})
}
