// Package lockstep runs declarative multi-thread transaction scenarios
// against a real database in lock-step.
//
// A scenario declares several threads, each an ordered list of steps, and
// every thread owns one database connection for the whole run. Step i of
// every thread completes before any thread starts step i+1, which makes
// interleavings such as lost updates, dirty reads or deadlocks reproducible.
//
// # Key Features
//
//   - Step Barriers: N-1 one-shot barriers gate entry into each step
//   - Exclusive Connections: one connection and one transaction per thread
//   - Bounded Waits: barrier and scenario timeouts return partial results
//     instead of hanging
//   - Deterministic Output: results ordered by declared thread order, then
//     step index, regardless of completion order
//   - Error Classification: deadlocks, lock timeouts and constraint
//     violations are recognized per database dialect
//
// # Basic Usage
//
//	registry, err := datasource.NewRegistry([]datasource.Config{{
//	    Name:   "bank",
//	    Driver: "mysql",
//	    DSN:    "root:secret@tcp(localhost:3306)/bank",
//	}})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer registry.Close()
//
//	executor, err := lockstep.NewExecutor(registry,
//	    lockstep.WithBarrierTimeout(30*time.Second),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	sc, err := scenario.LoadFile("scenarios/lost_update.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	run, err := executor.Execute(ctx, sc)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, r := range run.Results {
//	    fmt.Println(r.ThreadID, r.StepIndex, r.Status)
//	}
//
// # Error Handling
//
// Execute returns an error only when the run cannot start:
//
//   - *types.ConfigError (errors.Is types.ErrInvalidScenario): the scenario
//     violates a structural invariant
//   - types.ErrUnknownDatasource / types.ErrNoDatasource: the datasource
//     cannot be resolved
//   - *types.AcquireError (errors.Is types.ErrConnectionAcquire): a thread's
//     connection could not be acquired within the acquire timeout or could
//     not be prepared; nothing was executed
//
// Everything that happens once threads run is reported in the results.
// Statement failures mark the step FAILED and carry a classified
// types.ErrorInfo; the thread carries on with its next step. A thread that
// waits too long at a barrier records a barrier_timeout failure and stops.
// When the scenario timeout fires, threads are interrupted, Run.TimedOut is
// set and the results recorded so far are returned.
//
// # Transactions
//
// Transactions are controlled by the scenario itself: BEGIN, COMMIT and
// ROLLBACK are ordinary statements. Connections are put into manual-commit
// mode; on databases without a session autocommit switch the executor
// opens the transactions itself, so nothing is committed unless a scenario
// says COMMIT. Every connection is rolled back and returned to its pool
// when the run ends, whatever its outcome.
//
// # Thread Safety
//
// An Executor is safe for concurrent use; every Execute call owns its
// connections, barriers and results.
package lockstep
