// Package postgres implements the PostgreSQL dialect for the pgx stdlib driver.
package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"

	"github.com/arloliu/lockstep/dialect"
	"github.com/arloliu/lockstep/types"
)

// Dialect is the PostgreSQL dialect.
type Dialect struct{}

var _ dialect.Dialect = Dialect{}

// New returns the PostgreSQL dialect.
func New() Dialect {
	return Dialect{}
}

// Name returns "postgres".
func (Dialect) Name() string {
	return "postgres"
}

// SessionSetup returns nothing: PostgreSQL has no server-side autocommit
// switch.
func (Dialect) SessionSetup() []string {
	return nil
}

// ImplicitBegin returns true: the executor opens the transactions a
// manual-commit session would.
func (Dialect) ImplicitBegin() bool {
	return true
}

// IsolationStatement returns a SET SESSION CHARACTERISTICS statement for level.
func (Dialect) IsolationStatement(level types.IsolationLevel) (string, error) {
	if err := dialect.RequireLevel(level); err != nil {
		return "", err
	}

	return "SET SESSION CHARACTERISTICS AS TRANSACTION ISOLATION LEVEL " + level.SQL(), nil
}

// Classify maps PostgreSQL errors onto error categories using their SQLSTATE.
func (Dialect) Classify(err error) *types.ErrorInfo {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		info := dialect.NewErrorInfo(pgErr, category(pgErr.Code))
		info.State = pgErr.Code

		return info
	}

	if pgconn.Timeout(err) {
		return dialect.NewErrorInfo(err, types.CategoryInterrupted)
	}

	return dialect.Classify(err)
}

func category(code string) types.ErrorCategory {
	switch {
	case code == pgerrcode.DeadlockDetected:
		return types.CategoryDeadlock
	case code == pgerrcode.LockNotAvailable:
		return types.CategoryLockTimeout
	case code == pgerrcode.SerializationFailure:
		return types.CategorySerialization
	case code == pgerrcode.QueryCanceled:
		return types.CategoryInterrupted
	case pgerrcode.IsIntegrityConstraintViolation(code):
		return types.CategoryConstraint
	case pgerrcode.IsConnectionException(code):
		return types.CategoryConnection
	case strings.HasPrefix(code, "42"):
		// class 42: syntax error or access rule violation
		return types.CategorySyntax
	default:
		return types.CategoryUnknown
	}
}
