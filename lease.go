package lockstep

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	sqladapter "github.com/arloliu/lockstep/adapter/sql"
	"github.com/arloliu/lockstep/dialect"
	"github.com/arloliu/lockstep/types"
)

// releaseTimeout bounds the rollback issued while releasing a lease.
const releaseTimeout = 5 * time.Second

// lease is the exclusive ownership of one connection by one thread.
//
// A lease is created before any thread starts and released after the run,
// regardless of outcome.
type lease struct {
	threadID string
	conn     sqladapter.Conn
	dialect  dialect.Dialect
	logger   types.Logger

	// inTx is set while a transaction opened by the executor or the
	// scenario is open. Only tracked for dialects with ImplicitBegin and
	// only touched by the owning runner.
	inTx bool

	once       sync.Once
	releaseErr error
}

// acquireLeases reserves one prepared connection per thread, in declaration
// order. On failure every connection acquired so far is released and an
// *types.AcquireError naming the failing thread is returned.
//
// A positive timeout bounds the whole acquisition, so a pool smaller than
// the thread count fails instead of blocking forever.
func acquireLeases(ctx context.Context, db sqladapter.DB, d dialect.Dialect, sc *types.Scenario, timeout time.Duration, logger types.Logger) ([]*lease, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	leases := make([]*lease, len(sc.Threads))

	for i, thread := range sc.Threads {
		conn, err := db.Conn(ctx)
		if err != nil {
			_ = releaseAll(leases[:i], logger)
			if errors.Is(err, context.DeadlineExceeded) && timeout > 0 {
				err = fmt.Errorf("no connection available within %s for thread %d of %d: %w", timeout, i+1, len(sc.Threads), err)
			}

			return nil, &types.AcquireError{ThreadID: thread.ID, Cause: err}
		}

		l := &lease{threadID: thread.ID, conn: conn, dialect: d, logger: logger}
		leases[i] = l

		if err := l.prepare(ctx, sc.DefaultIsolation); err != nil {
			_ = releaseAll(leases[:i+1], logger)
			return nil, &types.AcquireError{ThreadID: thread.ID, Cause: err}
		}
	}

	return leases, nil
}

// prepare switches the session to manual commit and applies the default
// isolation level. An unset level leaves the database default in place.
func (l *lease) prepare(ctx context.Context, level types.IsolationLevel) error {
	for _, stmt := range l.dialect.SessionSetup() {
		if _, err := l.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("session setup %q: %w", stmt, err)
		}
	}

	if !level.IsSet() {
		return nil
	}

	return l.setIsolation(ctx, level)
}

// setIsolation sets the session isolation level for subsequent transactions.
func (l *lease) setIsolation(ctx context.Context, level types.IsolationLevel) error {
	stmt, err := l.dialect.IsolationStatement(level)
	if err != nil {
		return err
	}

	if _, err := l.conn.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("set isolation %s: %w", level, err)
	}

	return nil
}

// beforeStatement runs ahead of every scenario statement. On dialects with
// ImplicitBegin it opens a transaction when none is open, so statements
// never run in autocommit. It returns false when stmt is a BEGIN that must
// be skipped because a transaction is already open.
func (l *lease) beforeStatement(ctx context.Context, stmt string) bool {
	if !l.dialect.ImplicitBegin() {
		return true
	}

	if types.IsTransactionStart(stmt) {
		if l.inTx {
			l.logger.Debug("transaction already open, skipping begin", "thread", l.threadID)
			return false
		}

		return true
	}

	if !l.inTx {
		// a failed BEGIN most likely means a transaction survived a failed
		// COMMIT, so the statement still runs inside one
		if _, err := l.conn.ExecContext(ctx, "BEGIN"); err != nil {
			l.logger.Debug("implicit begin failed", "thread", l.threadID, "error", err)
		}
		l.inTx = true
	}

	return true
}

// afterStatement tracks transaction boundaries set by scenario statements.
func (l *lease) afterStatement(stmt string, err error) {
	if !l.dialect.ImplicitBegin() {
		return
	}

	switch {
	case types.IsTransactionStart(stmt):
		l.inTx = err == nil
	case types.IsTransactionEnd(stmt):
		l.inTx = false
	}
}

// rollback aborts any open transaction on the connection. It uses a
// detached context so it still runs after the run context was cancelled.
func (l *lease) rollback(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()

	_, err := l.conn.ExecContext(ctx, "ROLLBACK")

	return err
}

// release rolls back and closes the connection. Calling it more than once
// returns the first result.
//
// Rollback failures are logged only: engines such as SQLite reject ROLLBACK
// when no transaction is open, which is the normal state after a COMMIT.
func (l *lease) release() error {
	l.once.Do(func() {
		if err := l.rollback(context.Background()); err != nil {
			l.logger.Debug("rollback on release failed", "thread", l.threadID, "error", err)
		}

		if err := l.conn.Close(); err != nil {
			l.releaseErr = fmt.Errorf("thread %s: close connection: %w", l.threadID, err)
		}
	})

	return l.releaseErr
}

// releaseAll releases every non-nil lease and aggregates close failures.
// Failures are logged; they never change the outcome of a run.
func releaseAll(leases []*lease, logger types.Logger) error {
	var result *multierror.Error
	for _, l := range leases {
		if l == nil {
			continue
		}

		if err := l.release(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		logger.Warn("connection release failed", "error", err)
		return err
	}

	return nil
}
