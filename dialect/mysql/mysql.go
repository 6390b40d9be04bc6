// Package mysql implements the MySQL dialect on top of github.com/go-sql-driver/mysql.
package mysql

import (
	"errors"

	gomysql "github.com/go-sql-driver/mysql"

	"github.com/arloliu/lockstep/dialect"
	"github.com/arloliu/lockstep/types"
)

// MySQL server error numbers the executor distinguishes.
const (
	ErrDeadlock        = 1213 // ER_LOCK_DEADLOCK
	ErrLockWaitTimeout = 1205 // ER_LOCK_WAIT_TIMEOUT
	ErrLockNoWait      = 3572 // ER_LOCK_NOWAIT
	ErrDuplicateEntry  = 1062 // ER_DUP_ENTRY
	ErrRowIsReferenced = 1451 // ER_ROW_IS_REFERENCED_2
	ErrNoReferencedRow = 1452 // ER_NO_REFERENCED_ROW_2
	ErrBadNull         = 1048 // ER_BAD_NULL_ERROR
	ErrParse           = 1064 // ER_PARSE_ERROR
	ErrServerGone      = 2006 // CR_SERVER_GONE_ERROR
	ErrServerLost      = 2013 // CR_SERVER_LOST
	ErrCheckConstraint = 3819 // ER_CHECK_CONSTRAINT_VIOLATED
)

// Dialect is the MySQL dialect.
type Dialect struct{}

var _ dialect.Dialect = Dialect{}

// New returns the MySQL dialect.
func New() Dialect {
	return Dialect{}
}

// Name returns "mysql".
func (Dialect) Name() string {
	return "mysql"
}

// SessionSetup disables autocommit for the session.
func (Dialect) SessionSetup() []string {
	return []string{"SET autocommit = 0"}
}

// ImplicitBegin returns false: with autocommit off the server opens
// transactions on its own.
func (Dialect) ImplicitBegin() bool {
	return false
}

// IsolationStatement returns a SET SESSION TRANSACTION statement for level.
func (Dialect) IsolationStatement(level types.IsolationLevel) (string, error) {
	if err := dialect.RequireLevel(level); err != nil {
		return "", err
	}

	return "SET SESSION TRANSACTION ISOLATION LEVEL " + level.SQL(), nil
}

// Classify maps MySQL server errors onto error categories.
//
// Parameters:
//   - err: The statement error
//
// Returns:
//   - *types.ErrorInfo: The structured error, nil when err is nil
func (Dialect) Classify(err error) *types.ErrorInfo {
	if err == nil {
		return nil
	}

	var myErr *gomysql.MySQLError
	if errors.As(err, &myErr) {
		info := dialect.NewErrorInfo(myErr, category(myErr.Number))
		info.Code = int(myErr.Number)
		if myErr.SQLState != [5]byte{} {
			info.State = string(myErr.SQLState[:])
		}

		return info
	}

	if errors.Is(err, gomysql.ErrInvalidConn) {
		return dialect.NewErrorInfo(err, types.CategoryConnection)
	}

	return dialect.Classify(err)
}

func category(number uint16) types.ErrorCategory {
	switch number {
	case ErrDeadlock:
		return types.CategoryDeadlock
	case ErrLockWaitTimeout, ErrLockNoWait:
		return types.CategoryLockTimeout
	case ErrDuplicateEntry, ErrRowIsReferenced, ErrNoReferencedRow, ErrBadNull, ErrCheckConstraint:
		return types.CategoryConstraint
	case ErrParse:
		return types.CategorySyntax
	case ErrServerGone, ErrServerLost:
		return types.CategoryConnection
	default:
		return types.CategoryUnknown
	}
}
