package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/arloliu/lockstep"
	vmmetrics "github.com/arloliu/lockstep/contrib/metrics/vm"
	"github.com/arloliu/lockstep/datasource"
	"github.com/arloliu/lockstep/runstore"
	"github.com/arloliu/lockstep/scenario"
	"github.com/arloliu/lockstep/types"
)

// errRunFailed is returned when --fail-on-error is set and a run has
// FAILED steps.
var errRunFailed = errors.New("one or more steps failed")

type runOptions struct {
	datasource  string
	jsonOutput  bool
	metrics     bool
	failOnError bool
}

func newRunCmd(a *app) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>...",
		Short: "Execute one or more scenario files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), cmd.OutOrStdout(), args, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.datasource, "datasource", "", "override the datasource named in the scenario")
	flags.BoolVar(&opts.jsonOutput, "json", false, "print results as JSON")
	flags.BoolVar(&opts.metrics, "metrics", false, "print metrics in Prometheus text format after the runs")
	flags.BoolVar(&opts.failOnError, "fail-on-error", false, "exit non-zero when any step fails")
	flags.Bool("no-store", false, "do not record runs in the history database")
	flags.Duration("barrier-timeout", lockstep.DefaultBarrierTimeout, "maximum wait at a step barrier")
	flags.Duration("scenario-timeout", lockstep.DefaultScenarioTimeout, "maximum duration of a run")
	flags.Duration("shutdown-grace", lockstep.DefaultShutdownGrace, "time interrupted threads get to stop")
	flags.Duration("statement-timeout", 0, "per-statement timeout, 0 to disable")
	flags.Duration("acquire-timeout", lockstep.DefaultAcquireTimeout, "maximum wait for the connections of a run")

	return cmd
}

func (a *app) run(ctx context.Context, out io.Writer, files []string, opts *runOptions) error {
	scenarios := make([]*types.Scenario, 0, len(files))
	for _, f := range files {
		sc, err := scenario.LoadFile(f)
		if err != nil {
			return err
		}
		if opts.datasource != "" {
			sc.Datasource = opts.datasource
		}
		scenarios = append(scenarios, sc)
	}

	registry, err := datasource.NewRegistry(a.settings.Datasources, datasource.WithLogger(a.logger))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := registry.Close(); cerr != nil {
			a.logger.Warn("failed to close datasources", "error", cerr)
		}
	}()

	collector := vmmetrics.New()
	executor, err := lockstep.NewExecutor(registry, append(a.settings.executorOptions(),
		lockstep.WithLogger(a.logger),
		lockstep.WithMetrics(collector),
	)...)
	if err != nil {
		return err
	}
	defer executor.Close()

	var store *runstore.Store
	if !a.settings.Store.Disabled {
		store, err = runstore.Open(a.settings.Store.Path)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	failed := false
	for _, sc := range scenarios {
		run, err := executor.Execute(ctx, sc)
		if err != nil {
			return fmt.Errorf("scenario %q: %w", sc.Name, err)
		}

		rec := runstore.FromRun(run)
		if store != nil {
			if err := store.Save(rec); err != nil {
				a.logger.Error("failed to record run", "run", rec.ID, "error", err)
			}
		}

		if opts.jsonOutput {
			err = writeJSON(out, rec)
		} else {
			err = writeRecord(out, rec)
		}
		if err != nil {
			return err
		}

		if rec.Summary.Failed > 0 {
			failed = true
		}
	}

	if opts.metrics {
		collector.WritePrometheus(os.Stderr)
	}

	if failed && opts.failOnError {
		return errRunFailed
	}

	return nil
}
