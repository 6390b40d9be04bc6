// Package sqlite implements the SQLite dialect on top of github.com/mattn/go-sqlite3.
//
// SQLite serializes writers at the database level, so it cannot reproduce
// row-level deadlocks. It is still useful for exercising the executor
// against a real engine in tests and for demonstrating SQLITE_BUSY handling.
package sqlite

import (
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/arloliu/lockstep/dialect"
	"github.com/arloliu/lockstep/types"
)

// Dialect is the SQLite dialect.
type Dialect struct{}

var _ dialect.Dialect = Dialect{}

// New returns the SQLite dialect.
func New() Dialect {
	return Dialect{}
}

// Name returns "sqlite3".
func (Dialect) Name() string {
	return "sqlite3"
}

// SessionSetup returns nothing: SQLite is in autocommit mode until a BEGIN.
func (Dialect) SessionSetup() []string {
	return nil
}

// ImplicitBegin returns true, SQLite has no way to turn autocommit off.
func (Dialect) ImplicitBegin() bool {
	return true
}

// IsolationStatement toggles the read_uncommitted pragma. SQLite transactions
// are serializable otherwise, so every level other than READ_UNCOMMITTED
// switches the pragma off.
func (Dialect) IsolationStatement(level types.IsolationLevel) (string, error) {
	if err := dialect.RequireLevel(level); err != nil {
		return "", err
	}

	if level == types.IsolationReadUncommitted {
		return "PRAGMA read_uncommitted = 1", nil
	}

	return "PRAGMA read_uncommitted = 0", nil
}

// Classify maps sqlite3.Error codes onto error categories.
func (Dialect) Classify(err error) *types.ErrorInfo {
	if err == nil {
		return nil
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		info := dialect.NewErrorInfo(liteErr, category(liteErr))
		info.Code = int(liteErr.Code)

		return info
	}

	return dialect.Classify(err)
}

func category(err sqlite3.Error) types.ErrorCategory {
	switch err.Code {
	case sqlite3.ErrBusy, sqlite3.ErrLocked:
		return types.CategoryLockTimeout
	case sqlite3.ErrConstraint:
		return types.CategoryConstraint
	case sqlite3.ErrCantOpen, sqlite3.ErrIoErr:
		return types.CategoryConnection
	case sqlite3.ErrError:
		if strings.Contains(err.Error(), "syntax error") {
			return types.CategorySyntax
		}
	}

	return types.CategoryUnknown
}
