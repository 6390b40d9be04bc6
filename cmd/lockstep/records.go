package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/arloliu/lockstep/runstore"
)

func newRecordsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Inspect recorded runs",
	}

	cmd.AddCommand(newRecordsListCmd(a), newRecordsShowCmd(a))

	return cmd
}

func newRecordsListCmd(a *app) *cobra.Command {
	var opts runstore.ListOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := runstore.Open(a.settings.Store.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.List(opts)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSCENARIO\tSTARTED\tDURATION\tSUCCESS\tFAILED\tTIMED OUT")
			for _, rec := range records {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%t\n",
					rec.ID, rec.ScenarioName, rec.StartedAt.Format(time.RFC3339),
					time.Duration(rec.DurationMillis)*time.Millisecond,
					rec.Summary.Success, rec.Summary.Failed, rec.TimedOut)
			}

			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&opts.Scenario, "scenario", "", "only runs of this scenario")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of runs, 0 for all")

	return cmd
}

func newRecordsShowCmd(a *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the results of a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := runstore.Open(a.settings.Store.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			rec, err := store.Get(args[0])
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), rec)
			}

			return writeRecord(cmd.OutOrStdout(), rec)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the record as JSON")

	return cmd
}
