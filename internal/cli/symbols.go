package cli

import (
	"fmt"
	"strings"

	"github.com/ianlancetaylor/demangle"
	"github.com/spf13/cobra"

	"github.com/moffa90/go-sandbox/symtab"
)

func newSymbolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "symbols [path]",
		Short: "List symbol table bindings and check the required symbols",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				cfg, err := loadConfig(cmd)
				if err != nil {
					return err
				}
				path = cfg.Symbols
			}

			tab, err := symtab.Parse(path)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, name := range tab.Names() {
				addr, _ := tab.Lookup(name)
				fmt.Fprintf(w, "0x%08x  %s\n", addr, demangle.Filter(name))
			}
			for _, kind := range []symtab.SentinelKind{symtab.SentinelInst, symtab.SentinelData} {
				if addr, ok := tab.Sentinel(kind); ok {
					fmt.Fprintf(w, "0x%08x  %s (sentinel)\n", addr, kind.Name())
				}
			}

			if missing := tab.Missing(); len(missing) > 0 {
				fmt.Fprintf(w, "missing: %s\n", strings.Join(missing, ", "))
			}

			_, err = tab.Resolve()
			return err
		},
	}
}
