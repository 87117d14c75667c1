package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/moffa90/go-sandbox/device"
	"github.com/moffa90/go-sandbox/loader"
)

// openDevice opens the HID control channel; tests replace it.
var openDevice = device.Open

func newUploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Install the sandbox build into the attached device",
		Long: `Upload opens the device, disables the running sandbox, writes the
instruction and data images chunk by chunk and installs the new mode
pointer. Nothing is read from disk when no device is attached.`,
		Args: cobra.NoArgs,
		RunE: runUpload,
	}

	addSourceFlags(cmd)
	cmd.Flags().Uint16("vid", device.DefaultVendorID, "USB vendor id")
	cmd.Flags().Uint16("pid", device.DefaultProductID, "USB product id")
	cmd.Flags().Duration("quiescence", loader.DefaultQuiescence, "Delay after disabling the running sandbox")
	cmd.Flags().Int("max-attempts", loader.DefaultMaxAttempts, "Sends per frame (each chunk, the disable and the install) before failing")

	return cmd
}

func runUpload(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := newLogger(cfg)
	defer logger.Close()

	lg := logger.With("run_id", uuid.New().String())

	sess, err := openDevice(cfg.VendorID, cfg.ProductID,
		device.WithLogger(lg),
		device.WithMaxAttempts(cfg.MaxAttempts),
	)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			lg.Error("failed to close device", "err", cerr)
		}
	}()

	opts := append(cfg.LoaderOptions(),
		loader.WithLogger(lg),
		loader.WithProgressCallback(progressPrinter(cmd.OutOrStdout())),
	)

	seq := loader.NewSequencer(sess, cfg.Sources(), opts...)
	if err := seq.Run(cmd.Context()); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "sandbox installed")
	return nil
}

// progressPrinter writes one line per phase change and per chunk.
func progressPrinter(w io.Writer) loader.ProgressCallback {
	return func(p loader.Progress) {
		switch p.Phase {
		case loader.PhaseUploading:
			fmt.Fprintf(w, "%-12s chunk %d/%d  %d/%d bytes (%.1f%%)\n",
				p.Image, p.Chunk, p.TotalChunks, p.BytesWritten, p.TotalBytes, p.Percentage)
		case loader.PhaseComplete:
			fmt.Fprintf(w, "%s in %s\n", p.Phase, p.ElapsedTime.Round(time.Millisecond))
		default:
			fmt.Fprintf(w, "%s...\n", p.Phase)
		}
	}
}
