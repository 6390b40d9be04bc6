package testutil

import (
	"sync"
	"sync/atomic"

	"github.com/arloliu/lockstep/types"
)

// TestMetricsCollector is a test implementation of types.MetricsCollector
// that records every call for assertion in tests.
type TestMetricsCollector struct {
	mu sync.RWMutex

	// Runs
	RunDurations []float64

	// Steps
	StepTotal map[types.Status]int64

	// Statements
	StatementDurations []float64
	StatementErrors    map[types.ErrorCategory]int64

	// Atomic counters for quick access
	runTotal        atomic.Int64
	runTimeouts     atomic.Int64
	barrierTimeouts atomic.Int64
}

// Compile-time assertion that TestMetricsCollector implements types.MetricsCollector.
var _ types.MetricsCollector = (*TestMetricsCollector)(nil)

// NewTestMetricsCollector creates a new test metrics collector.
func NewTestMetricsCollector() *TestMetricsCollector {
	return &TestMetricsCollector{
		StepTotal:       make(map[types.Status]int64),
		StatementErrors: make(map[types.ErrorCategory]int64),
	}
}

// ----------------------
// Runs
// ----------------------

func (m *TestMetricsCollector) IncRunTotal() {
	m.runTotal.Add(1)
}

func (m *TestMetricsCollector) IncRunTimeout() {
	m.runTimeouts.Add(1)
}

func (m *TestMetricsCollector) ObserveRunDuration(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RunDurations = append(m.RunDurations, seconds)
}

// ----------------------
// Steps
// ----------------------

func (m *TestMetricsCollector) IncStepTotal(status types.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StepTotal[status]++
}

func (m *TestMetricsCollector) IncBarrierTimeout() {
	m.barrierTimeouts.Add(1)
}

// ----------------------
// Statements
// ----------------------

func (m *TestMetricsCollector) ObserveStatementDuration(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StatementDurations = append(m.StatementDurations, seconds)
}

func (m *TestMetricsCollector) IncStatementError(category types.ErrorCategory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StatementErrors[category]++
}

// ----------------------
// Accessors
// ----------------------

// RunTotal returns the number of started runs.
func (m *TestMetricsCollector) RunTotal() int64 {
	return m.runTotal.Load()
}

// RunTimeouts returns the number of runs that hit the scenario timeout.
func (m *TestMetricsCollector) RunTimeouts() int64 {
	return m.runTimeouts.Load()
}

// BarrierTimeouts returns the number of barrier timeouts.
func (m *TestMetricsCollector) BarrierTimeouts() int64 {
	return m.barrierTimeouts.Load()
}

// Steps returns the step count for a status.
func (m *TestMetricsCollector) Steps(status types.Status) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.StepTotal[status]
}

// Errors returns the statement error count for a category.
func (m *TestMetricsCollector) Errors(category types.ErrorCategory) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.StatementErrors[category]
}

// StatementCount returns the number of observed statement durations.
func (m *TestMetricsCollector) StatementCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.StatementDurations)
}

// Reset clears all recorded values.
func (m *TestMetricsCollector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RunDurations = nil
	m.StepTotal = make(map[types.Status]int64)
	m.StatementDurations = nil
	m.StatementErrors = make(map[types.ErrorCategory]int64)
	m.runTotal.Store(0)
	m.runTimeouts.Store(0)
	m.barrierTimeouts.Store(0)
}
