// Package config loads sandboxload settings from a YAML file with
// environment overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"

	"github.com/moffa90/go-sandbox/device"
	"github.com/moffa90/go-sandbox/loader"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SANDBOXLOAD_"

// Config defines runtime settings for sandboxload.
type Config struct {
	VendorID     uint16 `yaml:"vendor_id" json:"vendor_id" jsonschema:"title=Vendor ID,description=USB vendor id of the device"`
	ProductID    uint16 `yaml:"product_id" json:"product_id" jsonschema:"title=Product ID,description=USB product id of the device"`
	Symbols      string `yaml:"symbols" json:"symbols" jsonschema:"title=Symbol Table,description=Path of the sandbox symbol table text"`
	Instructions string `yaml:"instructions" json:"instructions" jsonschema:"title=Instruction Image,description=Path of the instruction region image"`
	Data         string `yaml:"data" json:"data" jsonschema:"title=Data Image,description=Path of the data region image"`
	Quiescence   string `yaml:"quiescence" json:"quiescence" jsonschema:"title=Quiescence,description=Delay after disabling the running sandbox (Go duration)"`
	MaxAttempts  int    `yaml:"max_attempts" json:"max_attempts" jsonschema:"title=Max Attempts,description=Sends per frame before the command fails,minimum=1"`
	Install      string `yaml:"install" json:"install" jsonschema:"title=Install Target,description=Symbol installed as the mode pointer,enum=mode,enum=entry"`
	LogLevel     string `yaml:"log_level" json:"log_level" jsonschema:"title=Log Level,enum=debug,enum=info,enum=warn,enum=error"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		VendorID:     device.DefaultVendorID,
		ProductID:    device.DefaultProductID,
		Symbols:      loader.DefaultSymbolsPath,
		Instructions: loader.DefaultInstructionsPath,
		Data:         loader.DefaultDataPath,
		Quiescence:   loader.DefaultQuiescence.String(),
		MaxAttempts:  loader.DefaultMaxAttempts,
		Install:      string(loader.InstallMode),
		LogLevel:     "info",
	}
}

// Load builds a Config from defaults, then the YAML file at path (skipped
// when path is empty), then SANDBOXLOAD_* environment overrides. The result
// is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	strs := map[string]*string{
		"SYMBOLS":    &c.Symbols,
		"INST":       &c.Instructions,
		"DATA":       &c.Data,
		"QUIESCENCE": &c.Quiescence,
		"INSTALL":    &c.Install,
		"LOG_LEVEL":  &c.LogLevel,
	}
	for key, dst := range strs {
		if v := getenv(EnvPrefix + key); v != "" {
			*dst = v
		}
	}

	ids := map[string]*uint16{
		"VID": &c.VendorID,
		"PID": &c.ProductID,
	}
	for key, dst := range ids {
		v := getenv(EnvPrefix + key)
		if v == "" {
			continue
		}
		id, err := strconv.ParseUint(v, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid %s%s %q: %w", EnvPrefix, key, v, err)
		}
		*dst = uint16(id)
	}

	if v := getenv(EnvPrefix + "MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sMAX_ATTEMPTS %q: %w", EnvPrefix, v, err)
		}
		c.MaxAttempts = n
	}

	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.VendorID == 0 {
		return errors.New("vendor_id cannot be 0")
	}
	if c.Symbols == "" || c.Instructions == "" || c.Data == "" {
		return errors.New("symbols, instructions and data paths are required")
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1, got %d", c.MaxAttempts)
	}
	if _, err := loader.ParseInstallTarget(c.Install); err != nil {
		return err
	}
	if _, err := c.QuiescenceDuration(); err != nil {
		return err
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}

// QuiescenceDuration parses the quiescence setting.
func (c *Config) QuiescenceDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.Quiescence)
	if err != nil {
		return 0, fmt.Errorf("invalid quiescence %q: %w", c.Quiescence, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("quiescence cannot be negative: %s", d)
	}
	return d, nil
}

// Sources returns the configured build output paths.
func (c *Config) Sources() loader.Sources {
	return loader.Sources{
		Symbols:      c.Symbols,
		Instructions: c.Instructions,
		Data:         c.Data,
	}
}

// LoaderOptions converts the protocol settings into loader options. c must
// have passed Validate.
func (c *Config) LoaderOptions() []loader.Option {
	q, _ := c.QuiescenceDuration()
	return []loader.Option{
		loader.WithMaxAttempts(c.MaxAttempts),
		loader.WithQuiescence(q),
		loader.WithInstallTarget(loader.InstallTarget(c.Install)),
	}
}

// DefaultConfigPath returns the default location for the config file.
func DefaultConfigPath() string {
	if path := os.Getenv(EnvPrefix + "CONFIG"); path != "" {
		return path
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".sandboxload", "config.yaml")
}

// Find returns explicit when set, otherwise the default path if a file
// exists there, otherwise "".
func Find(explicit string) string {
	if explicit != "" {
		return explicit
	}
	path := DefaultConfigPath()
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

// Schema returns the JSON schema of the config file.
func Schema() ([]byte, error) {
	reflector := new(jsonschema.Reflector)
	bts, err := json.MarshalIndent(reflector.Reflect(&Config{}), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return bts, nil
}
