// Package types provides shared types and error definitions for the lockstep library.
//
// This is a leaf package with zero lockstep imports to prevent import cycles.
// All packages in lockstep can safely import this package.
//
// # Scenario Model
//
// A Scenario is an ordered list of ThreadPlans. Every ThreadPlan holds the same
// number of Steps; step i across all threads is the unit of synchronization:
//
//	scenario := &types.Scenario{
//	    Name: "transfer",
//	    Threads: []types.ThreadPlan{
//	        {ID: "A", Steps: []types.Step{
//	            {Statements: []string{"BEGIN", "UPDATE accounts SET balance = balance - 10 WHERE id = 1"}},
//	            {Statements: []string{"COMMIT"}},
//	        }},
//	        {ID: "B", Steps: []types.Step{
//	            {Statements: []string{"BEGIN", "UPDATE accounts SET balance = balance + 10 WHERE id = 2"}},
//	            {Statements: []string{"COMMIT"}},
//	        }},
//	    },
//	}
//
// # Results
//
// ExecutionResult records one step on one thread, with one StatementResult per
// executed statement. Failures carry an ErrorInfo with the driver's native
// error code and SQLSTATE, plus an ErrorCategory such as CategoryDeadlock.
//
// # Errors
//
// Sentinel errors are provided for hard failures:
//
//   - ErrInvalidScenario: structural scenario problem (wrapped by *ConfigError)
//   - ErrConnectionAcquire: a thread connection could not be prepared (wrapped by *AcquireError)
//   - ErrUnknownDatasource: the scenario names a datasource that is not configured
//   - ErrRunNotFound: a stored run does not exist
//
// Statement failures and barrier timeouts are never returned as errors; they
// are recorded as FAILED results.
package types
