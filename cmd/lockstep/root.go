package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/arloliu/lockstep/contrib/logging/zaplog"
)

// app carries state shared by the subcommands of one invocation.
type app struct {
	cfgFile  string
	settings *Settings
	logger   *zaplog.Logger
}

// flagBindings maps flag names to configuration keys.
var flagBindings = map[string]string{
	"log-level":         "log.level",
	"store":             "store.path",
	"no-store":          "store.disabled",
	"datasources":       "datasourceFile",
	"barrier-timeout":   "executor.barrierTimeout",
	"scenario-timeout":  "executor.scenarioTimeout",
	"shutdown-grace":    "executor.shutdownGrace",
	"statement-timeout": "executor.statementTimeout",
	"acquire-timeout":   "executor.acquireTimeout",
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "lockstep",
		Short: "Run multi-thread SQL transaction scenarios in lock-step",
		Long: `lockstep executes declarative transaction scenarios against a real database.

Every thread of a scenario owns one connection. Step i of every thread
finishes before any thread starts step i+1, so interleavings such as lost
updates, dirty reads and deadlocks are reproducible.

Configuration is read from --config, ./lockstep.yaml or
$HOME/.lockstep/config.yaml, then from LOCKSTEP_* environment variables
(e.g. LOCKSTEP_EXECUTOR_BARRIERTIMEOUT=30s), then from flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.Flags())
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if a.logger != nil {
				_ = a.logger.Sync()
			}

			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default ./lockstep.yaml or $HOME/.lockstep/config.yaml)")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("store", "", "run history database path (default $HOME/.lockstep/runs.db)")
	flags.String("datasources", "", "YAML file with additional datasources")

	cmd.AddCommand(
		newRunCmd(a),
		newScenariosCmd(a),
		newRecordsCmd(a),
	)

	return cmd
}

// init loads the settings for this invocation and builds the logger.
func (a *app) init(flags *pflag.FlagSet) error {
	v, err := newViper(a.cfgFile)
	if err != nil {
		return err
	}

	for name, key := range flagBindings {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return err
		}
	}

	a.settings, err = loadSettings(v)
	if err != nil {
		return err
	}

	a.logger, err = zaplog.NewDevelopment(a.settings.Log.Level)

	return err
}
