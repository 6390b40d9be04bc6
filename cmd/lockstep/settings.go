package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/arloliu/lockstep"
	"github.com/arloliu/lockstep/datasource"
)

// Settings is the CLI configuration, read from the config file and
// LOCKSTEP_* environment variables and overridden by flags.
type Settings struct {
	// DatasourceFile is an optional separate datasource file, merged after
	// the inline datasources.
	DatasourceFile string              `mapstructure:"datasourceFile"`
	Datasources    []datasource.Config `mapstructure:"datasources"`

	Executor ExecutorSettings `mapstructure:"executor"`

	Store struct {
		Path     string `mapstructure:"path"`
		Disabled bool   `mapstructure:"disabled"`
	} `mapstructure:"store"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

// ExecutorSettings mirrors the executor options.
type ExecutorSettings struct {
	BarrierTimeout   time.Duration `mapstructure:"barrierTimeout"`
	ScenarioTimeout  time.Duration `mapstructure:"scenarioTimeout"`
	ShutdownGrace    time.Duration `mapstructure:"shutdownGrace"`
	StatementTimeout time.Duration `mapstructure:"statementTimeout"`
	AcquireTimeout   time.Duration `mapstructure:"acquireTimeout"`
}

// setDefaults registers default values on v.
func setDefaults(v *viper.Viper) {
	v.SetDefault("executor.barrierTimeout", lockstep.DefaultBarrierTimeout)
	v.SetDefault("executor.scenarioTimeout", lockstep.DefaultScenarioTimeout)
	v.SetDefault("executor.shutdownGrace", lockstep.DefaultShutdownGrace)
	v.SetDefault("executor.statementTimeout", time.Duration(0))
	v.SetDefault("executor.acquireTimeout", lockstep.DefaultAcquireTimeout)
	v.SetDefault("store.path", defaultStorePath())
	v.SetDefault("store.disabled", false)
	v.SetDefault("log.level", "info")
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".lockstep", "runs.db")
	}

	return filepath.Join(home, ".lockstep", "runs.db")
}

// newViper creates a viper instance with defaults and environment binding.
// An explicit config file must exist; otherwise ./lockstep.yaml and
// $HOME/.lockstep/config.yaml are tried.
func newViper(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("LOCKSTEP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		return v, nil
	}

	v.SetConfigName("lockstep")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".lockstep"))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return v, nil
}

// loadSettings decodes v into Settings and merges the datasource file.
func loadSettings(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if s.DatasourceFile != "" {
		extra, err := datasource.LoadFile(s.DatasourceFile)
		if err != nil {
			return nil, err
		}
		s.Datasources = append(s.Datasources, extra...)
	}

	return &s, nil
}

// executorOptions converts the executor settings into options.
func (s *Settings) executorOptions() []lockstep.Option {
	return []lockstep.Option{
		lockstep.WithBarrierTimeout(s.Executor.BarrierTimeout),
		lockstep.WithScenarioTimeout(s.Executor.ScenarioTimeout),
		lockstep.WithShutdownGrace(s.Executor.ShutdownGrace),
		lockstep.WithStatementTimeout(s.Executor.StatementTimeout),
		lockstep.WithAcquireTimeout(s.Executor.AcquireTimeout),
	}
}
