package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tempmon-go/x/conv"
)

func scanCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "List devices answering on the bus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			b, err := g.manager(cfg).Open(cfg.Bus)
			if err != nil {
				return err
			}
			defer b.Close()

			out := cmd.OutOrStdout()
			found := 0
			err = b.ScanContext(cmd.Context(), func(addr uint8) {
				found++
				fmt.Fprintln(out, "Found device at addr", conv.Hex8(addr))
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%d device(s) on bus %d\n", found, cfg.Bus)
			return nil
		},
	}
}
