package datasource

import (
	"fmt"

	"github.com/arloliu/lockstep/dialect"
	"github.com/arloliu/lockstep/dialect/mysql"
	"github.com/arloliu/lockstep/dialect/postgres"
	"github.com/arloliu/lockstep/dialect/sqlite"
)

// DialectFor returns the dialect for a datasource, using cfg.Dialect when
// set and cfg.Driver otherwise.
func DialectFor(cfg Config) (dialect.Dialect, error) {
	name := cfg.Dialect
	if name == "" {
		name = cfg.Driver
	}

	switch name {
	case "mysql":
		return mysql.New(), nil
	case "pgx", "postgres", "postgresql":
		return postgres.New(), nil
	case "sqlite3", "sqlite":
		return sqlite.New(), nil
	case "generic":
		return dialect.Generic(), nil
	default:
		return nil, fmt.Errorf("datasource %q: no dialect for %q", cfg.Name, name)
	}
}
