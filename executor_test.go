package lockstep

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/stretchr/testify/require"

	vmmetrics "github.com/arloliu/lockstep/contrib/metrics/vm"
	"github.com/arloliu/lockstep/dialect"
	"github.com/arloliu/lockstep/dialect/postgres"
	"github.com/arloliu/lockstep/types"
)

// plan builds a thread whose steps hold the given statements.
func plan(id string, steps ...[]string) types.ThreadPlan {
	p := types.ThreadPlan{ID: id}
	for i, stmts := range steps {
		p.Steps = append(p.Steps, types.Step{ID: fmt.Sprintf("%s-%d", id, i+1), Statements: stmts})
	}

	return p
}

// uniquePlan builds a thread with n single-statement steps named "<id>.<step>".
func uniquePlan(id string, n int) types.ThreadPlan {
	steps := make([][]string, n)
	for i := range steps {
		steps[i] = []string{fmt.Sprintf("UPDATE t SET v = %d -- %s.%d", i, id, i)}
	}

	return plan(id, steps...)
}

func stmtOf(id string, step int) string {
	return fmt.Sprintf("UPDATE t SET v = %d -- %s.%d", step, id, step)
}

func scenarioOf(threads ...types.ThreadPlan) *types.Scenario {
	return &types.Scenario{Name: "test", Datasource: "fake", Threads: threads}
}

func newTestExecutor(t *testing.T, db *fakeDB, opts ...Option) *Executor {
	t.Helper()

	e, err := NewExecutor(db.provider(), opts...)
	require.NoError(t, err)

	return e
}

// requireReleased asserts every connection was rolled back and closed.
func requireReleased(t *testing.T, db *fakeDB) {
	t.Helper()

	for _, c := range db.connections() {
		require.True(t, c.closed.Load(), "connection %d not closed", c.id)
		require.False(t, c.inTx.Load(), "connection %d left in a transaction", c.id)

		stmts := db.statementsOn(c.id)
		require.NotEmpty(t, stmts)
		require.Equal(t, "ROLLBACK", stmts[len(stmts)-1])
	}
}

type position struct {
	thread string
	step   int
}

func positions(results []types.ExecutionResult) []position {
	out := make([]position, len(results))
	for i, r := range results {
		out[i] = position{r.ThreadID, r.StepIndex}
	}

	return out
}

func TestNewExecutorNilProvider(t *testing.T) {
	_, err := NewExecutor(nil)
	require.ErrorIs(t, err, types.ErrNilProvider)
}

func TestNewExecutorDefaults(t *testing.T) {
	e := newTestExecutor(t, newFakeDB(), WithLogger(nil), WithMetrics(nil), WithClock(nil))

	cfg := e.Config()
	require.Equal(t, DefaultBarrierTimeout, cfg.BarrierTimeout)
	require.Equal(t, DefaultScenarioTimeout, cfg.ScenarioTimeout)
	require.Equal(t, DefaultShutdownGrace, cfg.ShutdownGrace)
	require.Zero(t, cfg.StatementTimeout)
	require.Equal(t, DefaultAcquireTimeout, cfg.AcquireTimeout)
	require.NotNil(t, cfg.Logger)
	require.NotNil(t, cfg.Metrics)
	require.NotNil(t, cfg.Clock)
}

func TestExecuteAllStepsSucceed(t *testing.T) {
	db := newFakeDB()
	e := newTestExecutor(t, db)

	sc := scenarioOf(uniquePlan("t1", 4), uniquePlan("t2", 4), uniquePlan("t3", 4))
	run, err := e.Execute(t.Context(), sc)
	require.NoError(t, err)

	require.Len(t, run.Results, 12)
	require.False(t, run.TimedOut)
	require.NotEqual(t, [16]byte{}, [16]byte(run.ID))
	require.Equal(t, types.Summary{Total: 12, Success: 12}, run.Summary())
	require.Empty(t, run.Failed())

	for _, r := range run.Results {
		require.Equal(t, types.StatusSuccess, r.Status)
		require.Len(t, r.Statements, 1)
		require.Equal(t, int64(1), r.Statements[0].RowsAffected)
		require.Equal(t, stmtOf(r.ThreadID, r.StepIndex), r.SQL)
		require.Equal(t, fmt.Sprintf("%s-%d", r.ThreadID, r.StepIndex+1), r.StepID)
		require.LessOrEqual(t, r.StartNanos, r.EndNanos)
	}

	require.Len(t, db.connections(), 3)
	requireReleased(t, db)
}

func TestExecuteTwoAccountTransfer(t *testing.T) {
	db := newFakeDB()
	e := newTestExecutor(t, db)

	debit := "UPDATE accounts SET balance = balance - 10 WHERE id = 1"
	credit := "UPDATE accounts SET balance = balance + 10 WHERE id = 2"
	db.delays[debit] = 20 * time.Millisecond

	sc := scenarioOf(
		plan("A", []string{"BEGIN", debit}, []string{"COMMIT"}),
		plan("B", []string{"BEGIN", credit}, []string{"COMMIT"}),
	)

	run, err := e.Execute(t.Context(), sc)
	require.NoError(t, err)
	require.Len(t, run.Results, 4)
	require.Equal(t, 4, run.Summary().Success)

	a := run.ThreadResults("A")
	b := run.ThreadResults("B")
	require.Len(t, a, 2)
	require.Len(t, b, 2)

	// both first steps end before either second step starts
	firstEnd := max(a[0].EndNanos, b[0].EndNanos)
	require.GreaterOrEqual(t, a[1].StartNanos, firstEnd)
	require.GreaterOrEqual(t, b[1].StartNanos, firstEnd)

	requireReleased(t, db)
}

func TestExecuteNoCrossStepLeakage(t *testing.T) {
	db := newFakeDB()
	e := newTestExecutor(t, db)

	const steps = 4
	threads := []string{"t1", "t2", "t3"}
	for ti, id := range threads {
		for s := range steps {
			// vary which thread is slow on each step
			db.delays[stmtOf(id, s)] = time.Duration((ti+s)%3*10) * time.Millisecond
		}
	}

	sc := scenarioOf(uniquePlan("t1", steps), uniquePlan("t2", steps), uniquePlan("t3", steps))
	run, err := e.Execute(t.Context(), sc)
	require.NoError(t, err)
	require.Len(t, run.Results, len(threads)*steps)

	for s := 0; s < steps-1; s++ {
		var latestEnd int64
		for _, r := range run.Results {
			if r.StepIndex == s {
				latestEnd = max(latestEnd, r.Statements[len(r.Statements)-1].EndNanos)
			}
		}

		for _, r := range run.Results {
			if r.StepIndex == s+1 {
				require.GreaterOrEqual(t, r.Statements[0].StartNanos, latestEnd,
					"thread %s step %d started before step %d finished everywhere", r.ThreadID, s+1, s)
			}
		}
	}
}

func TestExecuteDeterministicOrdering(t *testing.T) {
	expected := []position{
		{"t1", 0}, {"t1", 1}, {"t1", 2},
		{"t2", 0}, {"t2", 1}, {"t2", 2},
		{"t3", 0}, {"t3", 1}, {"t3", 2},
	}

	for i := range 5 {
		db := newFakeDB()
		// t1 always finishes last
		for s := range 3 {
			db.delays[stmtOf("t1", s)] = 15 * time.Millisecond
		}

		e := newTestExecutor(t, db)
		run, err := e.Execute(t.Context(), scenarioOf(uniquePlan("t1", 3), uniquePlan("t2", 3), uniquePlan("t3", 3)))
		require.NoError(t, err)
		require.Equal(t, expected, positions(run.Results), "run %d", i)
	}
}

func TestExecutePartialFailureIsolation(t *testing.T) {
	db := newFakeDB()
	db.errs[stmtOf("t1", 1)] = errors.New("boom")
	e := newTestExecutor(t, db)

	run, err := e.Execute(t.Context(), scenarioOf(uniquePlan("t1", 3), uniquePlan("t2", 3)))
	require.NoError(t, err)
	require.Len(t, run.Results, 6)

	failed := run.Failed()
	require.Len(t, failed, 1)
	require.Equal(t, "t1", failed[0].ThreadID)
	require.Equal(t, 1, failed[0].StepIndex)
	require.Equal(t, types.CategoryUnknown, failed[0].Error.Category)
	require.Equal(t, "boom", failed[0].Error.Message)

	// the failing thread carried on with its next step
	t1 := run.ThreadResults("t1")
	require.Equal(t, types.StatusSuccess, t1[2].Status)

	requireReleased(t, db)
}

func TestExecuteMultiStatementStepContinuesAfterFailure(t *testing.T) {
	db := newFakeDB()
	db.errs["INSERT bad"] = errors.New("duplicate")
	e := newTestExecutor(t, db)

	sc := scenarioOf(
		plan("t1", []string{"INSERT ok", "INSERT bad", "INSERT after"}, []string{"COMMIT"}),
		plan("t2", []string{"UPDATE x"}, []string{"COMMIT"}),
	)
	run, err := e.Execute(t.Context(), sc)
	require.NoError(t, err)

	step := run.Results[0]
	require.Equal(t, types.StatusFailed, step.Status)
	require.Equal(t, "INSERT ok", step.SQL)
	require.Len(t, step.Statements, 3)
	require.Equal(t, types.StatusSuccess, step.Statements[0].Status)
	require.Equal(t, types.StatusFailed, step.Statements[1].Status)
	require.Equal(t, types.StatusSuccess, step.Statements[2].Status)
	require.Equal(t, "statement 2 of 3 failed: duplicate", step.Error.Message)
	require.Equal(t, "duplicate", step.Statements[1].Error.Message)

	require.Contains(t, db.statementsOn(0), "INSERT after")
}

func TestExecuteBarrierTimeout(t *testing.T) {
	db := newFakeDB()
	db.delays[stmtOf("t2", 0)] = 300 * time.Millisecond

	set := metrics.NewSet()
	collector := vmmetrics.New(vmmetrics.WithPrefix("bt"), vmmetrics.WithMetricsSet(set))
	e := newTestExecutor(t, db, WithBarrierTimeout(50*time.Millisecond), WithMetrics(collector))

	run, err := e.Execute(t.Context(), scenarioOf(uniquePlan("t1", 3), uniquePlan("t2", 3)))
	require.NoError(t, err)
	require.False(t, run.TimedOut)

	require.Equal(t, []position{{"t1", 0}, {"t1", 1}, {"t2", 0}, {"t2", 1}, {"t2", 2}}, positions(run.Results))

	timedOut := run.Results[1]
	require.Equal(t, types.StatusFailed, timedOut.Status)
	require.Equal(t, types.CategoryBarrierTimeout, timedOut.Error.Category)
	require.Empty(t, timedOut.Statements)

	// the sibling was not held back by the thread that gave up
	for _, r := range run.ThreadResults("t2") {
		require.Equal(t, types.StatusSuccess, r.Status)
	}

	var buf bytes.Buffer
	collector.WritePrometheus(&buf)
	require.Contains(t, buf.String(), "bt_barrier_timeouts_total 1")
	require.Contains(t, buf.String(), `bt_steps_total{status="FAILED"} 1`)
	require.Contains(t, buf.String(), `bt_steps_total{status="SUCCESS"} 4`)

	requireReleased(t, db)
}

func TestExecuteScenarioTimeout(t *testing.T) {
	db := newFakeDB()
	db.block[stmtOf("t2", 0)] = true

	set := metrics.NewSet()
	collector := vmmetrics.New(vmmetrics.WithPrefix("st"), vmmetrics.WithMetricsSet(set))
	e := newTestExecutor(t, db,
		WithScenarioTimeout(100*time.Millisecond),
		WithShutdownGrace(2*time.Second),
		WithMetrics(collector),
	)

	started := time.Now()
	run, err := e.Execute(t.Context(), scenarioOf(uniquePlan("t1", 2), uniquePlan("t2", 2)))
	require.NoError(t, err)
	require.Less(t, time.Since(started), 2*time.Second)

	require.True(t, run.TimedOut)
	require.Equal(t, []position{{"t1", 0}, {"t1", 1}, {"t2", 0}, {"t2", 1}}, positions(run.Results))
	require.Equal(t, types.StatusSuccess, run.Results[0].Status)
	for _, r := range run.Results[1:] {
		require.Equal(t, types.StatusFailed, r.Status)
		require.Equal(t, types.CategoryInterrupted, r.Error.Category)
	}

	var buf bytes.Buffer
	collector.WritePrometheus(&buf)
	require.Contains(t, buf.String(), "st_run_timeouts_total 1")
	require.Contains(t, buf.String(), "st_runs_total 1")

	requireReleased(t, db)
}

func TestExecuteScenarioTimeoutSealsStragglers(t *testing.T) {
	db := newFakeDB()
	hold := make(chan struct{})
	db.hold[stmtOf("t2", 0)] = hold

	e := newTestExecutor(t, db,
		WithScenarioTimeout(100*time.Millisecond),
		WithShutdownGrace(50*time.Millisecond),
	)

	run, err := e.Execute(t.Context(), scenarioOf(uniquePlan("t1", 2), uniquePlan("t2", 2)))
	require.NoError(t, err)
	require.True(t, run.TimedOut)

	require.Equal(t, []position{{"t1", 0}, {"t1", 1}, {"t2", 0}}, positions(run.Results))
	stuck := run.Results[2]
	require.Equal(t, types.StatusFailed, stuck.Status)
	require.Equal(t, types.CategoryScenarioTimeout, stuck.Error.Category)

	conns := db.connections()
	require.True(t, conns[0].closed.Load())
	require.False(t, conns[1].closed.Load(), "a busy connection must not be closed under its thread")

	// once the statement returns, the thread stops and its connection is released
	close(hold)
	require.Eventually(t, func() bool { return conns[1].closed.Load() }, 2*time.Second, 10*time.Millisecond)

	// late results never reach the returned run
	require.Len(t, run.Results, 3)
}

func TestExecuteParentContextCancelled(t *testing.T) {
	db := newFakeDB()
	db.block[stmtOf("t2", 0)] = true
	e := newTestExecutor(t, db, WithShutdownGrace(2*time.Second))

	ctx, cancel := context.WithCancel(t.Context())
	time.AfterFunc(50*time.Millisecond, cancel)

	run, err := e.Execute(ctx, scenarioOf(uniquePlan("t1", 2), uniquePlan("t2", 2)))
	require.NoError(t, err)
	require.False(t, run.TimedOut)
	require.Len(t, run.Failed(), 3)

	requireReleased(t, db)
}

func TestExecuteStatementTimeout(t *testing.T) {
	db := newFakeDB()
	db.block[stmtOf("t1", 0)] = true
	e := newTestExecutor(t, db, WithStatementTimeout(30*time.Millisecond))

	run, err := e.Execute(t.Context(), scenarioOf(uniquePlan("t1", 2), uniquePlan("t2", 2)))
	require.NoError(t, err)
	require.Len(t, run.Results, 4)

	require.Equal(t, types.StatusFailed, run.Results[0].Status)
	require.Equal(t, types.CategoryInterrupted, run.Results[0].Error.Category)
	require.Len(t, run.Failed(), 1)
}

func TestExecuteIsolationOverride(t *testing.T) {
	db := newFakeDB()
	e := newTestExecutor(t, db)

	sc := scenarioOf(
		types.ThreadPlan{ID: "t1", Steps: []types.Step{
			{Statements: []string{"BEGIN", "UPDATE a"}, Isolation: types.IsolationSerializable},
			{Statements: []string{"COMMIT"}},
		}},
		types.ThreadPlan{ID: "t2", Steps: []types.Step{
			{Statements: []string{"UPDATE b"}, Isolation: types.IsolationSerializable},
			{Statements: []string{"COMMIT"}},
		}},
	)
	sc.DefaultIsolation = types.IsolationReadCommitted

	run, err := e.Execute(t.Context(), sc)
	require.NoError(t, err)
	require.Equal(t, 4, run.Summary().Success)

	require.Equal(t, []string{
		"SET TRANSACTION ISOLATION LEVEL READ COMMITTED",
		"SET TRANSACTION ISOLATION LEVEL SERIALIZABLE",
		"BEGIN",
		"UPDATE a",
		"COMMIT",
		"ROLLBACK",
	}, db.statementsOn(0))

	// no override when the step does not start a transaction
	require.Equal(t, []string{
		"SET TRANSACTION ISOLATION LEVEL READ COMMITTED",
		"UPDATE b",
		"COMMIT",
		"ROLLBACK",
	}, db.statementsOn(1))
}

func TestExecuteIsolationOverrideFailureIsNotFatal(t *testing.T) {
	db := newFakeDB()
	db.errs["SET TRANSACTION ISOLATION LEVEL SERIALIZABLE"] = errors.New("not supported")
	e := newTestExecutor(t, db)

	sc := scenarioOf(types.ThreadPlan{ID: "t1", Steps: []types.Step{
		{Statements: []string{"BEGIN", "UPDATE a"}, Isolation: types.IsolationSerializable},
	}})

	run, err := e.Execute(t.Context(), sc)
	require.NoError(t, err)
	require.Len(t, run.Results, 1)
	require.Equal(t, types.StatusSuccess, run.Results[0].Status)
}

func TestExecuteInvalidScenario(t *testing.T) {
	db := newFakeDB()
	e := newTestExecutor(t, db)

	_, err := e.Execute(t.Context(), scenarioOf(uniquePlan("t1", 2), uniquePlan("t2", 3)))
	require.ErrorIs(t, err, types.ErrInvalidScenario)

	var cfgErr *types.ConfigError
	require.ErrorAs(t, err, &cfgErr)

	_, err = e.Execute(t.Context(), nil)
	require.ErrorIs(t, err, types.ErrInvalidScenario)

	require.Empty(t, db.connections(), "no connection may be acquired for an invalid scenario")
}

func TestExecuteUnknownDatasource(t *testing.T) {
	db := newFakeDB()
	e := newTestExecutor(t, db)

	sc := scenarioOf(uniquePlan("t1", 1))
	sc.Datasource = "elsewhere"

	_, err := e.Execute(t.Context(), sc)
	require.ErrorIs(t, err, types.ErrUnknownDatasource)
}

func TestExecuteAcquireFailure(t *testing.T) {
	db := newFakeDB()
	db.failConnAt = 1
	e := newTestExecutor(t, db)

	_, err := e.Execute(t.Context(), scenarioOf(uniquePlan("t1", 2), uniquePlan("t2", 2)))
	require.ErrorIs(t, err, types.ErrConnectionAcquire)

	var acqErr *types.AcquireError
	require.ErrorAs(t, err, &acqErr)
	require.Equal(t, "t2", acqErr.ThreadID)

	// the connection acquired for t1 was released and nothing ran on it
	conns := db.connections()
	require.Len(t, conns, 1)
	require.True(t, conns[0].closed.Load())
	require.Equal(t, []string{"ROLLBACK"}, db.statementsOn(0))
}

// setupDialect adds session setup statements to a dialect.
type setupDialect struct {
	dialect.Dialect
	setup []string
}

func (d setupDialect) SessionSetup() []string { return d.setup }

func TestExecuteSessionSetupFailure(t *testing.T) {
	db := newFakeDB()
	db.errs["SET autocommit = 0"] = errors.New("denied")

	e, err := NewExecutor(db.providerWith(setupDialect{Dialect: dialect.Generic(), setup: []string{"SET autocommit = 0"}}))
	require.NoError(t, err)

	_, err = e.Execute(t.Context(), scenarioOf(uniquePlan("t1", 1), uniquePlan("t2", 1)))

	var acqErr *types.AcquireError
	require.ErrorAs(t, err, &acqErr)
	require.Equal(t, "t1", acqErr.ThreadID)
	require.Contains(t, err.Error(), "denied")

	conns := db.connections()
	require.Len(t, conns, 1)
	require.True(t, conns[0].closed.Load())
}

func TestAcquireLimit(t *testing.T) {
	tests := []struct {
		name     string
		acquire  time.Duration
		scenario time.Duration
		want     time.Duration
	}{
		{"acquire below scenario", time.Second, time.Minute, time.Second},
		{"capped by scenario", time.Minute, time.Second, time.Second},
		{"acquire disabled", 0, time.Second, time.Second},
		{"scenario disabled", time.Second, 0, time.Second},
		{"both disabled", 0, 0, 0},
		{"negative", -time.Second, -time.Second, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			WithAcquireTimeout(tt.acquire)(cfg)
			WithScenarioTimeout(tt.scenario)(cfg)
			require.Equal(t, tt.want, cfg.acquireLimit())
		})
	}
}

func TestExecuteImplicitBegin(t *testing.T) {
	db := newFakeDB()
	e, err := NewExecutor(db.providerWith(postgres.New()))
	require.NoError(t, err)

	sc := scenarioOf(
		plan("t1", []string{"UPDATE a"}, []string{"COMMIT"}, []string{"UPDATE b"}),
		plan("t2", []string{"UPDATE z"}, []string{"BEGIN", "UPDATE c", "COMMIT"}, []string{"BEGIN"}),
	)

	run, err := e.Execute(t.Context(), sc)
	require.NoError(t, err)
	require.Equal(t, 6, run.Summary().Success)

	// the executor opens a transaction before statements outside one
	require.Equal(t, []string{
		"BEGIN",
		"UPDATE a",
		"COMMIT",
		"BEGIN",
		"UPDATE b",
		"ROLLBACK",
	}, db.statementsOn(0))

	// a scenario BEGIN inside the implicit transaction is skipped, one after
	// COMMIT runs
	require.Equal(t, []string{
		"BEGIN",
		"UPDATE z",
		"UPDATE c",
		"COMMIT",
		"BEGIN",
		"ROLLBACK",
	}, db.statementsOn(1))

	skipped := run.ThreadResults("t2")[1].Statements[0]
	require.Equal(t, "BEGIN", skipped.SQL)
	require.Equal(t, types.StatusSuccess, skipped.Status)

	requireReleased(t, db)
}

func TestExecuteFailedQueryHasNoResultSet(t *testing.T) {
	db := newFakeDB()
	e := newTestExecutor(t, db)

	run, err := e.Execute(t.Context(), scenarioOf(plan("t1", []string{"SELECT * FROM t"})))
	require.NoError(t, err)
	require.Len(t, run.Results, 1)

	sr := run.Results[0].Statements[0]
	require.Equal(t, types.StatusFailed, sr.Status)
	require.False(t, sr.HasResultSet)
	require.Zero(t, sr.RowCount)
}

func TestExecutePanicAfterInterruptionRecordedOnce(t *testing.T) {
	db := newFakeDB()
	db.block[stmtOf("t2", 0)] = true
	db.panics["ROLLBACK"] = "rollback exploded"
	e := newTestExecutor(t, db, WithShutdownGrace(2*time.Second))

	ctx, cancel := context.WithCancel(t.Context())
	time.AfterFunc(50*time.Millisecond, cancel)

	run, err := e.Execute(ctx, scenarioOf(uniquePlan("t1", 2), uniquePlan("t2", 2)))
	require.NoError(t, err)

	// one result per thread and step, the panic does not add a second one
	require.ElementsMatch(t, []position{{"t1", 0}, {"t1", 1}, {"t2", 0}, {"t2", 1}}, positions(run.Results))
	require.Len(t, run.Failed(), 3)
	for _, r := range run.Failed() {
		require.NotEqual(t, "panic", r.Error.Type)
	}

	requireReleased(t, db)
}

func TestExecuteClosedExecutor(t *testing.T) {
	e := newTestExecutor(t, newFakeDB())
	require.NoError(t, e.Close())

	_, err := e.Execute(t.Context(), scenarioOf(uniquePlan("t1", 1)))
	require.ErrorIs(t, err, types.ErrExecutorClosed)
}

func TestExecuteSingleThreadSingleStep(t *testing.T) {
	db := newFakeDB()
	e := newTestExecutor(t, db)

	run, err := e.Execute(t.Context(), scenarioOf(uniquePlan("solo", 1)))
	require.NoError(t, err)
	require.Len(t, run.Results, 1)
	require.True(t, run.Results[0].Succeeded())
	require.Positive(t, run.Duration)
}

func TestReturnsRows(t *testing.T) {
	tests := map[string]bool{
		"SELECT * FROM t":                      true,
		"  select 1":                           true,
		"(SELECT 1) UNION (SELECT 2)":          true,
		"WITH x AS (SELECT 1) SELECT * FROM x": true,
		"SHOW TABLES":                          true,
		"EXPLAIN SELECT 1":                     true,
		"PRAGMA table_info(t)":                 true,
		"UPDATE t SET v = 1":                   false,
		"BEGIN":                                false,
		"":                                     false,
	}

	for stmt, want := range tests {
		require.Equal(t, want, returnsRows(stmt), stmt)
	}
}

func TestThreadStateString(t *testing.T) {
	require.Equal(t, "waiting_barrier", stateWaitingBarrier.String())
	require.Equal(t, "failed_terminal", stateFailedTerminal.String())
	require.Equal(t, "unknown", threadState(99).String())
}
