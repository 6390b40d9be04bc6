package types

import "errors"

// Sentinel errors for common failure scenarios.
var (
	// ErrInvalidScenario indicates a structural problem in a scenario.
	// It is detected before any resource is allocated and never retried.
	ErrInvalidScenario = errors.New("lockstep: invalid scenario")

	// ErrConnectionAcquire indicates a connection could not be obtained for
	// one of the scenario threads. The run is aborted before any thread starts.
	ErrConnectionAcquire = errors.New("lockstep: connection acquisition failed")

	// ErrUnknownDatasource indicates the scenario names a datasource that is
	// not configured.
	ErrUnknownDatasource = errors.New("lockstep: unknown datasource")

	// ErrNoDatasource indicates no datasource is configured at all.
	ErrNoDatasource = errors.New("lockstep: no datasource configured")

	// ErrNilProvider indicates that a nil datasource provider was provided.
	ErrNilProvider = errors.New("lockstep: datasource provider cannot be nil")

	// ErrExecutorClosed indicates Execute was called after Close.
	ErrExecutorClosed = errors.New("lockstep: executor is closed")

	// ErrRunNotFound indicates a stored run does not exist.
	ErrRunNotFound = errors.New("lockstep: run not found")
)

// ConfigError describes a scenario that violates a structural invariant.
type ConfigError struct {
	// Field is the path of the offending element, e.g. "threads[t1].steps[2]".
	Field string

	// Reason explains the violation.
	Reason string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "lockstep: invalid scenario: " + e.Field + ": " + e.Reason
}

// Unwrap allows errors.Is(err, ErrInvalidScenario).
func (e *ConfigError) Unwrap() error {
	return ErrInvalidScenario
}

// AcquireError wraps a connection acquisition failure for a specific thread.
type AcquireError struct {
	// ThreadID is the thread whose connection could not be prepared.
	ThreadID string

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *AcquireError) Error() string {
	return "lockstep: connection acquisition failed for thread " + e.ThreadID + ": " + e.Cause.Error()
}

// Unwrap returns both the sentinel and the cause for errors.Is/As compatibility.
func (e *AcquireError) Unwrap() []error {
	return []error{ErrConnectionAcquire, e.Cause}
}
