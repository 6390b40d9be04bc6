package lockstep

import "github.com/arloliu/lockstep/types"

// Type aliases for convenience - re-export from types package.
type (
	Scenario         = types.Scenario
	ThreadPlan       = types.ThreadPlan
	Step             = types.Step
	IsolationLevel   = types.IsolationLevel
	ExecutionResult  = types.ExecutionResult
	StatementResult  = types.StatementResult
	ErrorInfo        = types.ErrorInfo
	ErrorCategory    = types.ErrorCategory
	Status           = types.Status
	Summary          = types.Summary
	Logger           = types.Logger
	MetricsCollector = types.MetricsCollector
)

// Re-export isolation level constants for convenience.
const (
	IsolationUnset           = types.IsolationUnset
	IsolationReadUncommitted = types.IsolationReadUncommitted
	IsolationReadCommitted   = types.IsolationReadCommitted
	IsolationRepeatableRead  = types.IsolationRepeatableRead
	IsolationSerializable    = types.IsolationSerializable
)

// Re-export status constants for convenience.
const (
	StatusSuccess = types.StatusSuccess
	StatusFailed  = types.StatusFailed
)
