package datasource

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config describes one named database.
type Config struct {
	// Name identifies the datasource in scenario files.
	Name string `yaml:"name" mapstructure:"name"`

	// Driver is the database/sql driver name: "mysql", "pgx" or "sqlite3".
	Driver string `yaml:"driver" mapstructure:"driver"`

	// DSN is passed to sql.Open unchanged.
	DSN string `yaml:"dsn" mapstructure:"dsn"`

	// Dialect overrides the dialect derived from Driver. Optional.
	Dialect string `yaml:"dialect,omitempty" mapstructure:"dialect"`

	// MaxOpenConns caps the pool. It must be at least the largest thread
	// count of any scenario run against this datasource, otherwise
	// acquisition fails once the executor's acquire timeout expires.
	// 0 means unlimited.
	MaxOpenConns int `yaml:"maxOpenConns,omitempty" mapstructure:"maxOpenConns"`
}

// File is the on-disk layout of a datasource configuration file.
type File struct {
	Datasources []Config `yaml:"datasources"`
}

// LoadFile reads datasource configurations from a YAML file.
//
// Example file:
//
//	datasources:
//	  - name: bank
//	    driver: mysql
//	    dsn: root:secret@tcp(localhost:3306)/bank
//	    maxOpenConns: 16
//
// Parameters:
//   - path: Path to the YAML file
//
// Returns:
//   - []Config: The configured datasources in file order
//   - error: Read, parse or validation error
func LoadFile(path string) ([]Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read datasource file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse datasource file: %w", err)
	}

	if err := Validate(f.Datasources); err != nil {
		return nil, err
	}

	return f.Datasources, nil
}

// Validate checks that every config is complete and names are unique.
func Validate(configs []Config) error {
	seen := make(map[string]struct{}, len(configs))
	for i, cfg := range configs {
		switch {
		case cfg.Name == "":
			return fmt.Errorf("datasource %d: name is required", i)
		case cfg.Driver == "":
			return fmt.Errorf("datasource %q: driver is required", cfg.Name)
		case cfg.DSN == "":
			return fmt.Errorf("datasource %q: dsn is required", cfg.Name)
		case cfg.MaxOpenConns < 0:
			return fmt.Errorf("datasource %q: maxOpenConns must not be negative", cfg.Name)
		}

		if _, dup := seen[cfg.Name]; dup {
			return fmt.Errorf("datasource %q: duplicate name", cfg.Name)
		}
		seen[cfg.Name] = struct{}{}

		if _, err := DialectFor(cfg); err != nil {
			return err
		}
	}

	return nil
}
