// Package logging builds the charmbracelet logger used by sandboxload.
// Level and destination come from the config and environment variables.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// LoggerCloser wraps a logger and provides a Close method for cleanup
type LoggerCloser struct {
	*log.Logger
	closer io.Closer
}

// Close closes the underlying writer if it's closeable
func (lc *LoggerCloser) Close() error {
	if lc.closer != nil {
		return lc.closer.Close()
	}
	return nil
}

// ParseLevel maps a level name to a log level. Unknown names yield info.
func ParseLevel(name string) log.Level {
	switch name {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// NewLoggerWithWriter creates a logger writing to w at the given level.
// The level is taken as given; config.Load has already applied
// SANDBOXLOAD_LOG_LEVEL and the CLI applies --debug on top.
func NewLoggerWithWriter(w io.Writer, level string) *LoggerCloser {
	lg := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	})
	lg.SetLevel(ParseLevel(level))

	prefix := os.Getenv("SANDBOXLOAD_LOG_PREFIX")
	if prefix == "" {
		prefix = "sandboxload"
	}

	var closer io.Closer
	if c, ok := w.(io.Closer); ok && w != os.Stderr {
		closer = c
	}

	return &LoggerCloser{
		Logger: lg.WithPrefix(prefix),
		closer: closer,
	}
}

// NewLogger creates a logger at level, configured by environment variables
// SANDBOXLOAD_LOG_PREFIX: prefix for log messages (default: "sandboxload")
// SANDBOXLOAD_LOG_TO_FILE: when set to "1", logs to a timestamped file instead of stderr
func NewLogger(level string) *LoggerCloser {
	output := io.Writer(os.Stderr)

	if os.Getenv("SANDBOXLOAD_LOG_TO_FILE") == "1" {
		timestamp := time.Now().Format("20060102-150405")
		logFile := fmt.Sprintf("sandboxload-%s-debug.log", timestamp)

		f, err := os.OpenFile(logFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err == nil {
			output = f
		}
		// If file creation fails, fall back to stderr
	}

	return NewLoggerWithWriter(output, level)
}
