package device

// Default identifiers of the target device.
const (
	// DefaultVendorID is the USB vendor ID of the device
	DefaultVendorID uint16 = 0x303a

	// DefaultProductID is the USB product ID of the device
	DefaultProductID uint16 = 0x4004

	// DefaultMaxAttempts is how many times a control frame is sent before
	// giving up: the first try plus 10 retries.
	DefaultMaxAttempts = 11
)

// Logger is an optional logging interface. *log.Logger from
// github.com/charmbracelet/log satisfies it.
type Logger interface {
	Debug(msg interface{}, keyvals ...interface{})
	Info(msg interface{}, keyvals ...interface{})
	Error(msg interface{}, keyvals ...interface{})
}

// Config holds the session configuration.
type Config struct {
	// Logger is used for logging frames (optional)
	Logger Logger

	// MaxAttempts bounds how many times a mode pointer frame is sent
	MaxAttempts int
}

func defaultConfig() Config {
	return Config{
		MaxAttempts: DefaultMaxAttempts,
	}
}

// Option is a functional option for configuring a Session.
type Option func(*Config)

// WithLogger sets a logger for session operations.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithMaxAttempts sets how many times a mode pointer frame is sent before
// the command fails. Values below 1 are ignored.
func WithMaxAttempts(attempts int) Option {
	return func(c *Config) {
		if attempts >= 1 {
			c.MaxAttempts = attempts
		}
	}
}
