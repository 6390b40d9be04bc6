// Package dialect describes the database-specific SQL and error semantics
// the executor relies on.
//
// database/sql has no portable way to toggle autocommit on a session or to
// set its isolation level outside of *sql.Tx, and every driver reports
// deadlocks and lock timeouts with its own error type. A Dialect hides both
// behind one interface. Concrete dialects live in the mysql, postgres and
// sqlite subpackages; Generic covers any database that accepts the standard
// SET TRANSACTION statement.
package dialect

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/arloliu/lockstep/types"
)

// Dialect is the database-specific part of the executor.
type Dialect interface {
	// Name returns the dialect name, e.g. "mysql".
	Name() string

	// SessionSetup returns the statements run once on every acquired
	// connection to put it into manual-commit mode. It is empty when the
	// database has no session-level autocommit switch.
	SessionSetup() []string

	// ImplicitBegin reports whether the executor must open transactions
	// itself. When true, a BEGIN is issued ahead of the first statement
	// outside a transaction, so nothing a scenario runs is committed unless
	// the scenario says COMMIT.
	ImplicitBegin() bool

	// IsolationStatement returns the statement that sets the session
	// isolation level for subsequent transactions.
	//
	// Returns an error wrapping types.ErrInvalidScenario if level is unset
	// or unknown.
	IsolationStatement(level types.IsolationLevel) (string, error)

	// Classify maps a statement error onto a structured ErrorInfo.
	// It returns nil for a nil error.
	Classify(err error) *types.ErrorInfo
}

// NewErrorInfo builds an ErrorInfo from err with the given category.
//
// Parameters:
//   - err: The error to describe
//   - category: The failure category
//
// Returns:
//   - *types.ErrorInfo: The structured error, nil when err is nil
func NewErrorInfo(err error, category types.ErrorCategory) *types.ErrorInfo {
	if err == nil {
		return nil
	}

	return &types.ErrorInfo{
		Type:     fmt.Sprintf("%T", err),
		Category: category,
		Message:  err.Error(),
	}
}

// ClassifyCommon recognizes failures that look the same on every driver:
// context cancellation or deadline, and broken connections.
//
// Parameters:
//   - err: The error to classify
//
// Returns:
//   - *types.ErrorInfo: The structured error, or nil if err is not a common failure
//   - bool: true if err was recognized
func ClassifyCommon(err error) (*types.ErrorInfo, bool) {
	switch {
	case err == nil:
		return nil, false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return NewErrorInfo(err, types.CategoryInterrupted), true
	case errors.Is(err, driver.ErrBadConn):
		return NewErrorInfo(err, types.CategoryConnection), true
	default:
		return nil, false
	}
}

// Classify is the fallback classification used when no driver-specific
// error type matched.
func Classify(err error) *types.ErrorInfo {
	if err == nil {
		return nil
	}

	if info, ok := ClassifyCommon(err); ok {
		return info
	}

	return NewErrorInfo(err, types.CategoryUnknown)
}

// RequireLevel validates that level is set and canonical.
func RequireLevel(level types.IsolationLevel) error {
	if !level.IsSet() {
		return &types.ConfigError{Field: "isolationLevel", Reason: "isolation level is not set"}
	}

	if !level.Valid() {
		return &types.ConfigError{Field: "isolationLevel", Reason: fmt.Sprintf("unknown isolation level %q", string(level))}
	}

	return nil
}

type generic struct{}

// Generic returns a dialect for databases that accept the standard
// "SET TRANSACTION ISOLATION LEVEL" statement and need no session setup.
// It leaves transaction boundaries entirely to the scenario.
func Generic() Dialect {
	return generic{}
}

func (generic) Name() string { return "generic" }

func (generic) SessionSetup() []string { return nil }

func (generic) ImplicitBegin() bool { return false }

func (generic) IsolationStatement(level types.IsolationLevel) (string, error) {
	if err := RequireLevel(level); err != nil {
		return "", err
	}

	return "SET TRANSACTION ISOLATION LEVEL " + level.SQL(), nil
}

func (generic) Classify(err error) *types.ErrorInfo {
	return Classify(err)
}
