// Package cli implements the sandboxload command line.
package cli

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/moffa90/go-sandbox/config"
	"github.com/moffa90/go-sandbox/internal/logging"
	"github.com/moffa90/go-sandbox/loader"
)

// NewRootCmd builds the sandboxload command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sandboxload",
		Short: "Install a sandbox program into a running device over USB HID",
		Long: `Sandboxload writes a freshly built sandbox program into the memory of a
running device and switches the device scheduler over to it.

It disables the running sandbox, uploads the instruction and data images
to the addresses named in the symbol table, then installs the new mode
pointer.`,
		Example: `
# Install the default build outputs
sandboxload upload

# Check the symbol table without a device
sandboxload symbols build/sandbox_symbols.txt

# Show how the images will be chunked
sandboxload plan
  `,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Config file (default $HOME/.sandboxload/config.yaml)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Debug")

	rootCmd.AddCommand(
		newUploadCmd(),
		newSymbolsCmd(),
		newPlanCmd(),
		newSchemaCmd(),
	)

	return rootCmd
}

// addSourceFlags registers the build output path flags.
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("symbols", loader.DefaultSymbolsPath, "Symbol table text")
	cmd.Flags().String("inst", loader.DefaultInstructionsPath, "Instruction region image")
	cmd.Flags().String("data", loader.DefaultDataPath, "Data region image")
	cmd.Flags().String("install", string(loader.InstallMode), "Symbol installed as the mode pointer (mode|entry)")
}

// loadConfig loads the config file and applies explicitly set flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(config.Find(path))
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	setString := func(name string, dst *string) {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	setString("symbols", &cfg.Symbols)
	setString("inst", &cfg.Instructions)
	setString("data", &cfg.Data)
	setString("install", &cfg.Install)

	if flags.Changed("vid") {
		cfg.VendorID, _ = flags.GetUint16("vid")
	}
	if flags.Changed("pid") {
		cfg.ProductID, _ = flags.GetUint16("pid")
	}
	if flags.Changed("quiescence") {
		d, _ := flags.GetDuration("quiescence")
		cfg.Quiescence = d.String()
	}
	if flags.Changed("max-attempts") {
		cfg.MaxAttempts, _ = flags.GetInt("max-attempts")
	}
	if debug, _ := flags.GetBool("debug"); debug {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *logging.LoggerCloser {
	return logging.NewLogger(cfg.LogLevel)
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	rootCmd := NewRootCmd()

	// Bypass fang's styled output when output is being piped
	if !term.IsTerminal(os.Stdout.Fd()) {
		if err := rootCmd.Execute(); err != nil {
			os.Exit(1)
		}
		return
	}

	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
