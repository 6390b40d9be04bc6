package main

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/arloliu/lockstep/scenario"
)

func newScenariosCmd(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios [dir]",
		Short: "List the scenario files in a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "scenarios"
			if len(args) == 1 {
				dir = args[0]
			}

			files, err := scenario.List(dir)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FILE\tNAME\tDATASOURCE\tTHREADS\tSTEPS\tSTATUS")
			for _, f := range files {
				sc, err := scenario.LoadFile(f)
				if err != nil {
					fmt.Fprintf(tw, "%s\t-\t-\t-\t-\tinvalid: %v\n", filepath.Base(f), err)
					continue
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\tok\n",
					filepath.Base(f), sc.Name, sc.Datasource, len(sc.Threads), sc.StepCount())
			}

			return tw.Flush()
		},
	}
}
