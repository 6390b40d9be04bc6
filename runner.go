package lockstep

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/arloliu/lockstep/barrier"
	"github.com/arloliu/lockstep/types"
)

// threadState is the position of a runner in its step loop.
type threadState int

const (
	stateWaitingBarrier threadState = iota
	stateExecuting
	stateSignaling
	stateDone
	stateFailedTerminal
)

// String returns the string representation of the threadState.
func (s threadState) String() string {
	switch s {
	case stateWaitingBarrier:
		return "waiting_barrier"
	case stateExecuting:
		return "executing"
	case stateSignaling:
		return "signaling"
	case stateDone:
		return "done"
	case stateFailedTerminal:
		return "failed_terminal"
	default:
		return "unknown"
	}
}

// queryKeywords are leading keywords of statements that return rows.
var queryKeywords = map[string]struct{}{
	"SELECT":   {},
	"SHOW":     {},
	"WITH":     {},
	"EXPLAIN":  {},
	"VALUES":   {},
	"PRAGMA":   {},
	"DESCRIBE": {},
	"DESC":     {},
	"TABLE":    {},
}

// returnsRows reports whether stmt is expected to produce a result set.
func returnsRows(stmt string) bool {
	fields := strings.Fields(strings.TrimLeft(stmt, "( \t\r\n"))
	if len(fields) == 0 {
		return false
	}

	_, ok := queryKeywords[strings.ToUpper(fields[0])]

	return ok
}

// runner drives the steps of one thread on its leased connection.
type runner struct {
	index    int
	plan     types.ThreadPlan
	lease    *lease
	barriers *barrier.Set
	agg      *aggregator
	config   *ExecutorConfig
	start    time.Time
	done     chan struct{}

	// recordedSteps is one past the highest step index with a result.
	recordedSteps int
}

// elapsed returns nanoseconds since the run started.
func (r *runner) elapsed() int64 {
	return r.config.Clock().Sub(r.start).Nanoseconds()
}

// run executes the thread's steps in lockstep with its siblings.
//
// The runner arrives on the barrier of every step it leaves, including
// when it terminates early, so siblings are never held back by it.
func (r *runner) run(ctx context.Context) {
	defer close(r.done)
	defer r.agg.finish(r.index)

	step := 0
	state := stateWaitingBarrier

	defer func() {
		if p := recover(); p != nil {
			r.config.Logger.Error("thread panicked", "thread", r.plan.ID, "step", step, "state", state.String(), "panic", p)
			if step < len(r.plan.Steps) && step >= r.recordedSteps {
				now := r.elapsed()
				r.recordResult(failedResult(r.plan, step, now, now, &types.ErrorInfo{
					Type:     "panic",
					Category: types.CategoryUnknown,
					Message:  fmt.Sprint(p),
				}))
			}
			from := step
			if state == stateSignaling {
				from++
			}
			r.barriers.ArriveFrom(from)
		}
	}()

	for {
		switch state {
		case stateWaitingBarrier:
			state = r.awaitStep(ctx, step)

		case stateExecuting:
			r.recordResult(r.executeStep(ctx, step))
			state = stateSignaling

		case stateSignaling:
			r.barriers.Arrive(step)
			step++
			if step == len(r.plan.Steps) {
				state = stateDone
			} else {
				state = stateWaitingBarrier
			}

		case stateFailedTerminal:
			r.barriers.ArriveFrom(step)
			return

		case stateDone:
			r.config.Logger.Debug("thread finished", "thread", r.plan.ID)
			return
		}
	}
}

// awaitStep waits for every sibling to finish the previous step.
func (r *runner) awaitStep(ctx context.Context, step int) threadState {
	waitStart := r.elapsed()
	r.agg.begin(r.index, step, waitStart)

	outcome := r.barriers.WaitBefore(ctx, step, r.config.BarrierTimeout)
	if ctx.Err() != nil {
		// a cancelled run never starts another step
		outcome = barrier.Interrupted
	}

	switch outcome {
	case barrier.Released:
		return stateExecuting

	case barrier.TimedOut:
		r.config.Metrics.IncBarrierTimeout()
		r.config.Logger.Warn("barrier wait timed out", "thread", r.plan.ID, "step", step, "timeout", r.config.BarrierTimeout)
		r.recordResult(failedResult(r.plan, step, waitStart, r.elapsed(), &types.ErrorInfo{
			Type:     "lockstep.barrier_timeout",
			Category: types.CategoryBarrierTimeout,
			Message:  fmt.Sprintf("timed out after %s waiting for other threads to finish step %d", r.config.BarrierTimeout, step-1),
		}))

		return stateFailedTerminal

	default:
		r.config.Logger.Warn("thread interrupted", "thread", r.plan.ID, "step", step)
		r.recordResult(failedResult(r.plan, step, waitStart, r.elapsed(), &types.ErrorInfo{
			Type:     "lockstep.interrupted",
			Category: types.CategoryInterrupted,
			Message:  "interrupted while waiting for other threads",
		}))

		if err := r.lease.rollback(ctx); err != nil {
			r.config.Logger.Debug("rollback after interruption failed", "thread", r.plan.ID, "error", err)
		}

		return stateFailedTerminal
	}
}

func (r *runner) recordResult(result types.ExecutionResult) {
	r.recordedSteps = result.StepIndex + 1
	r.config.Metrics.IncStepTotal(result.Status)

	if !r.agg.record(r.index, result) {
		r.config.Logger.Debug("result dropped after seal", "thread", r.plan.ID, "step", result.StepIndex)
	}
}

// executeStep runs every statement of a step. A failing statement does not
// stop the remaining ones; the step then fails with the first failure.
func (r *runner) executeStep(ctx context.Context, index int) types.ExecutionResult {
	step := r.plan.Steps[index]

	if step.Isolation.IsSet() && step.StartsTransaction() {
		if err := r.lease.setIsolation(ctx, step.Isolation); err != nil {
			r.config.Logger.Warn("isolation override failed, continuing",
				"thread", r.plan.ID, "step", index, "isolation", step.Isolation, "error", err)
		}
	}

	result := types.ExecutionResult{
		ThreadID:   r.plan.ID,
		StepID:     step.ID,
		StepIndex:  index,
		SQL:        step.Statements[0],
		Statements: make([]types.StatementResult, 0, len(step.Statements)),
		StartNanos: r.elapsed(),
		Status:     types.StatusSuccess,
	}

	failedAt := -1
	for i, stmt := range step.Statements {
		sr := r.executeStatement(ctx, stmt)
		result.Statements = append(result.Statements, sr)

		if sr.Status == types.StatusFailed && failedAt < 0 {
			failedAt = i
		}
	}

	result.EndNanos = r.elapsed()
	result.DurationMillis = time.Duration(result.EndNanos - result.StartNanos).Milliseconds()

	if failedAt >= 0 {
		first := *result.Statements[failedAt].Error
		if len(step.Statements) > 1 {
			first.Message = fmt.Sprintf("statement %d of %d failed: %s", failedAt+1, len(step.Statements), first.Message)
		}

		result.Status = types.StatusFailed
		result.Error = &first

		r.config.Logger.Info("step failed",
			"thread", r.plan.ID, "step", index, "category", first.Category, "error", first.Message)
	}

	return result
}

// executeStatement runs one statement on the thread's connection.
func (r *runner) executeStatement(ctx context.Context, stmt string) types.StatementResult {
	if r.config.StatementTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.StatementTimeout)
		defer cancel()
	}

	sr := types.StatementResult{
		SQL:        stmt,
		StartNanos: r.elapsed(),
		Status:     types.StatusSuccess,
	}

	if !r.lease.beforeStatement(ctx, stmt) {
		sr.EndNanos = sr.StartNanos
		return sr
	}

	var err error
	if returnsRows(stmt) {
		sr.HasResultSet, sr.RowCount, err = r.drain(ctx, stmt)
	} else {
		var res sql.Result
		res, err = r.lease.conn.ExecContext(ctx, stmt)
		if err == nil {
			// not every driver reports affected rows
			if n, raErr := res.RowsAffected(); raErr == nil {
				sr.RowsAffected = n
			}
		}
	}

	r.lease.afterStatement(stmt, err)

	sr.EndNanos = r.elapsed()
	sr.DurationMillis = time.Duration(sr.EndNanos - sr.StartNanos).Milliseconds()
	r.config.Metrics.ObserveStatementDuration(time.Duration(sr.EndNanos - sr.StartNanos).Seconds())

	if err != nil {
		sr.Status = types.StatusFailed
		sr.Error = r.lease.dialect.Classify(err)
		r.config.Metrics.IncStatementError(sr.Error.Category)
		r.config.Logger.Debug("statement failed", "thread", r.plan.ID, "sql", stmt, "error", err)
	}

	return sr
}

// drain runs a query and counts, then discards, its rows. It reports
// whether the query produced a result set at all.
func (r *runner) drain(ctx context.Context, stmt string) (bool, int64, error) {
	rows, err := r.lease.conn.QueryContext(ctx, stmt)
	if err != nil {
		return false, 0, err
	}
	defer rows.Close()

	var n int64
	for rows.Next() {
		n++
	}

	return true, n, rows.Err()
}
