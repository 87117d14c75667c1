package loader

import (
	"context"
	"fmt"
	"os"
	"time"
)

// Protocol defaults.
const (
	// DefaultMaxAttempts is how many times one chunk is sent before the upload
	// fails: the first try plus 10 retries.
	DefaultMaxAttempts = 11

	// DefaultQuiescence is how long the device is given to settle after the
	// running sandbox is disabled.
	DefaultQuiescence = 20 * time.Millisecond
)

// InstallTarget selects which resolved symbol is written to the mode pointer.
type InstallTarget string

const (
	// InstallMode installs the sandbox_mode address
	InstallMode InstallTarget = "mode"

	// InstallEntry installs the sandbox_main address
	InstallEntry InstallTarget = "entry"
)

// ParseInstallTarget validates an install target name.
func ParseInstallTarget(s string) (InstallTarget, error) {
	switch InstallTarget(s) {
	case InstallMode, InstallEntry:
		return InstallTarget(s), nil
	default:
		return "", fmt.Errorf("unknown install target %q (want %q or %q)", s, InstallMode, InstallEntry)
	}
}

// ReadFileFunc reads a whole file.
type ReadFileFunc func(path string) ([]byte, error)

// Config holds the uploader and sequencer configuration.
type Config struct {
	// ProgressCallback is called to report progress (optional)
	ProgressCallback ProgressCallback

	// Logger is used for logging operations (optional)
	Logger Logger

	// MaxAttempts bounds how many times a single chunk is sent
	MaxAttempts int

	// Quiescence is the delay between disabling the old sandbox and writing
	Quiescence time.Duration

	// InstallTarget selects the address written to the mode pointer
	InstallTarget InstallTarget

	// ReadFile reads the symbol table and images
	ReadFile ReadFileFunc

	// sleep waits for the quiescence interval
	sleep func(ctx context.Context, d time.Duration) error
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		MaxAttempts:   DefaultMaxAttempts,
		Quiescence:    DefaultQuiescence,
		InstallTarget: InstallMode,
		ReadFile:      os.ReadFile,
		sleep:         sleepContext,
	}
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Option is a functional option for configuring an Uploader or Sequencer.
type Option func(*Config)

// WithProgressCallback sets a callback function to track progress.
//
// Example:
//
//	up := loader.NewUploader(sess,
//	    loader.WithProgressCallback(func(p loader.Progress) {
//	        fmt.Printf("%.1f%% complete\n", p.Percentage)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for upload operations.
//
// Example:
//
//	up := loader.NewUploader(sess, loader.WithLogger(log.Default()))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithMaxAttempts sets how many times one chunk is sent before the upload
// fails. Values below 1 are ignored.
func WithMaxAttempts(attempts int) Option {
	return func(c *Config) {
		if attempts >= 1 {
			c.MaxAttempts = attempts
		}
	}
}

// WithQuiescence sets the settle delay after disabling the running sandbox.
// Negative values are ignored.
func WithQuiescence(d time.Duration) Option {
	return func(c *Config) {
		if d >= 0 {
			c.Quiescence = d
		}
	}
}

// WithInstallTarget selects which resolved address is installed as the mode
// pointer. Default is InstallMode.
func WithInstallTarget(target InstallTarget) Option {
	return func(c *Config) {
		c.InstallTarget = target
	}
}

// WithReadFile replaces os.ReadFile for loading sources.
func WithReadFile(fn ReadFileFunc) Option {
	return func(c *Config) {
		if fn != nil {
			c.ReadFile = fn
		}
	}
}
