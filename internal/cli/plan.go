package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/moffa90/go-sandbox/loader"
	"github.com/moffa90/go-sandbox/protocol"
)

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the chunk plan for both images without a device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			plan, err := loader.Load(cfg.Sources(), cfg.LoaderOptions()...)
			if err != nil {
				return err
			}

			printPlan(cmd.OutOrStdout(), plan)
			return nil
		},
	}

	addSourceFlags(cmd)
	return cmd
}

func printPlan(w io.Writer, plan *loader.Plan) {
	for _, img := range []protocol.Image{plan.Instructions, plan.Data} {
		chunks := img.Chunks()
		fmt.Fprintf(w, "%s: %d bytes at 0x%08x, padded to %d, %d chunks\n",
			img.Name, len(img.Data), img.Base, protocol.PaddedLength(len(img.Data)), len(chunks))
		for _, c := range chunks {
			fmt.Fprintf(w, "  offset %6d  addr 0x%08x  size %3d\n", c.Offset, img.Address(c), len(c.Data))
		}
	}
	fmt.Fprintf(w, "install: 0x%08x\n", plan.Install)
}
