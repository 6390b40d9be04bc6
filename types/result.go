package types

import "time"

// Status is the outcome of a step or statement.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// String returns the string representation of the Status.
func (s Status) String() string {
	return string(s)
}

// ErrorCategory groups failures so callers can react without parsing
// driver-specific messages.
type ErrorCategory string

const (
	CategoryDeadlock        ErrorCategory = "deadlock"
	CategoryLockTimeout     ErrorCategory = "lock_timeout"
	CategorySerialization   ErrorCategory = "serialization_failure"
	CategoryConstraint      ErrorCategory = "constraint_violation"
	CategorySyntax          ErrorCategory = "syntax"
	CategoryConnection      ErrorCategory = "connection"
	CategoryBarrierTimeout  ErrorCategory = "barrier_timeout"
	CategoryInterrupted     ErrorCategory = "interrupted"
	CategoryScenarioTimeout ErrorCategory = "scenario_timeout"
	CategoryUnknown         ErrorCategory = "unknown"
)

// String returns the string representation of the ErrorCategory.
func (c ErrorCategory) String() string {
	return string(c)
}

// ErrorInfo is the structured cause of a failed step or statement.
type ErrorInfo struct {
	// Type is the Go type of the underlying error, e.g. "*mysql.MySQLError".
	// Harness-generated failures use a descriptive name instead.
	Type string `json:"type"`

	// Category classifies the failure.
	Category ErrorCategory `json:"category"`

	// Message is the error text.
	Message string `json:"message"`

	// Code is the database-native error code, 0 when unavailable.
	Code int `json:"code,omitempty"`

	// State is the SQLSTATE, empty when unavailable.
	State string `json:"state,omitempty"`
}

// StatementResult records the execution of a single statement within a step.
type StatementResult struct {
	SQL string `json:"sql"`

	// StartNanos and EndNanos are relative to scenario start.
	StartNanos     int64 `json:"startTimeNanos"`
	EndNanos       int64 `json:"endTimeNanos"`
	DurationMillis int64 `json:"durationMillis"`

	Status Status `json:"status"`

	// HasResultSet is true when the statement returned rows (even zero rows).
	HasResultSet bool `json:"hasResultSet"`

	// RowsAffected is reported for statements without a result set.
	RowsAffected int64 `json:"rowsAffected,omitempty"`

	// RowCount is the number of rows drained from a result set.
	RowCount int64 `json:"rowCount,omitempty"`

	Error *ErrorInfo `json:"exception,omitempty"`
}

// Duration returns the statement duration.
func (r StatementResult) Duration() time.Duration {
	return time.Duration(r.EndNanos - r.StartNanos)
}

// ExecutionResult is the outcome of one step on one thread.
//
// Results are produced by the step runner and never modified afterwards.
type ExecutionResult struct {
	ThreadID  string `json:"threadId"`
	StepID    string `json:"stepId,omitempty"`
	StepIndex int    `json:"stepIndex"`

	// SQL is the first statement of the step.
	SQL string `json:"sql"`

	// Statements holds one record per executed statement. It is empty when
	// the step never reached execution (barrier timeout, interruption).
	Statements []StatementResult `json:"sqlDetails,omitempty"`

	// StartNanos and EndNanos are nanoseconds since scenario start,
	// measured on the monotonic clock.
	StartNanos     int64 `json:"startTimeNanos"`
	EndNanos       int64 `json:"endTimeNanos"`
	DurationMillis int64 `json:"durationMillis"`

	Status Status     `json:"status"`
	Error  *ErrorInfo `json:"exception,omitempty"`
}

// Succeeded reports whether the step completed without failure.
func (r ExecutionResult) Succeeded() bool {
	return r.Status == StatusSuccess
}

// Duration returns the step duration.
func (r ExecutionResult) Duration() time.Duration {
	return time.Duration(r.EndNanos - r.StartNanos)
}

// Summary counts results by status.
type Summary struct {
	Total   int `json:"total"`
	Success int `json:"successCount"`
	Failed  int `json:"failedCount"`
}

// Summarize counts the results by status.
func Summarize(results []ExecutionResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Succeeded() {
			s.Success++
		} else {
			s.Failed++
		}
	}

	return s
}
