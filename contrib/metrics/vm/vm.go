package vm

import (
	"fmt"
	"io"
	"net/http"

	"github.com/VictoriaMetrics/metrics"
	"github.com/arloliu/lockstep/types"
)

// Option configures a Collector.
type Option func(*Collector)

// WithPrefix sets the metric name prefix.
//
// Default: "lockstep"
//
// Parameters:
//   - prefix: The prefix to use for all metric names
//
// Returns:
//   - Option: A configuration option
func WithPrefix(prefix string) Option {
	return func(c *Collector) {
		c.prefix = prefix
	}
}

// WithMetricsSet sets the metrics set to use.
//
// If provided, the collector will register metrics with this set instead of
// creating a new one. The caller is responsible for exposing this set
// (e.g., via metrics.WritePrometheus or a custom handler).
//
// Parameters:
//   - set: The metrics set to use
//
// Returns:
//   - Option: A configuration option
func WithMetricsSet(set *metrics.Set) Option {
	return func(c *Collector) {
		c.set = set
	}
}

// statementErrorCategories are the categories with a pre-created error counter.
var statementErrorCategories = []types.ErrorCategory{
	types.CategoryDeadlock,
	types.CategoryLockTimeout,
	types.CategorySerialization,
	types.CategoryConstraint,
	types.CategorySyntax,
	types.CategoryConnection,
	types.CategoryInterrupted,
	types.CategoryUnknown,
}

// Collector implements types.MetricsCollector using VictoriaMetrics.
//
// All metrics are pre-created at initialization time for optimal performance.
// Thread-safe for concurrent use.
type Collector struct {
	set    *metrics.Set
	prefix string

	// Run metrics
	runTotal    *metrics.Counter
	runTimeouts *metrics.Counter
	runDuration *metrics.Histogram

	// Step metrics
	stepSuccess     *metrics.Counter
	stepFailed      *metrics.Counter
	barrierTimeouts *metrics.Counter

	// Statement metrics
	statementDuration *metrics.Histogram
	statementErrors   map[types.ErrorCategory]*metrics.Counter
}

// Compile-time assertion that Collector implements types.MetricsCollector.
var _ types.MetricsCollector = (*Collector)(nil)

// New creates a new VictoriaMetrics-based metrics collector.
//
// The collector creates its own metrics.Set and registers it globally.
// All metrics are pre-created at initialization for optimal performance.
//
// Parameters:
//   - opts: Configuration options (e.g., WithPrefix)
//
// Returns:
//   - *Collector: A new metrics collector ready for use
//
// Example:
//
//	collector := vm.New(vm.WithPrefix("myapp"))
//	executor, _ := lockstep.NewExecutor(provider,
//	    lockstep.WithMetrics(collector),
//	)
func New(opts ...Option) *Collector {
	c := &Collector{
		prefix: "lockstep",
	}

	for _, opt := range opts {
		opt(c)
	}

	// If no set is provided, create a new one and register it globally.
	// If a set is provided, we assume the caller manages it.
	if c.set == nil {
		c.set = metrics.NewSet()
		metrics.RegisterSet(c.set)
	}

	c.initMetrics()

	return c
}

// initMetrics pre-creates all metrics with the configured prefix.
func (c *Collector) initMetrics() {
	p := c.prefix

	// Run metrics
	c.runTotal = c.set.NewCounter(fmt.Sprintf(`%s_runs_total`, p))
	c.runTimeouts = c.set.NewCounter(fmt.Sprintf(`%s_run_timeouts_total`, p))
	c.runDuration = c.set.NewHistogram(fmt.Sprintf(`%s_run_duration_seconds`, p))

	// Step metrics
	c.stepSuccess = c.set.NewCounter(fmt.Sprintf(`%s_steps_total{status="%s"}`, p, types.StatusSuccess))
	c.stepFailed = c.set.NewCounter(fmt.Sprintf(`%s_steps_total{status="%s"}`, p, types.StatusFailed))
	c.barrierTimeouts = c.set.NewCounter(fmt.Sprintf(`%s_barrier_timeouts_total`, p))

	// Statement metrics
	c.statementDuration = c.set.NewHistogram(fmt.Sprintf(`%s_statement_duration_seconds`, p))
	c.statementErrors = make(map[types.ErrorCategory]*metrics.Counter, len(statementErrorCategories))
	for _, category := range statementErrorCategories {
		c.statementErrors[category] = c.set.NewCounter(
			fmt.Sprintf(`%s_statement_errors_total{category="%s"}`, p, category))
	}
}

// Set returns the metrics set the collector registers with.
func (c *Collector) Set() *metrics.Set {
	return c.set
}

// Handler returns an HTTP handler that exposes metrics in Prometheus format.
//
// Example:
//
//	http.HandleFunc("/metrics", collector.Handler)
func (c *Collector) Handler(w http.ResponseWriter, _ *http.Request) {
	c.set.WritePrometheus(w)
}

// WritePrometheus writes all metrics in Prometheus format to the given writer.
//
// Parameters:
//   - w: The writer to write metrics to
func (c *Collector) WritePrometheus(w io.Writer) {
	c.set.WritePrometheus(w)
}

// ----------------------
// Runs
// ----------------------

// IncRunTotal increments the started runs counter.
func (c *Collector) IncRunTotal() {
	c.runTotal.Inc()
}

// IncRunTimeout increments the counter of runs that hit the scenario timeout.
func (c *Collector) IncRunTimeout() {
	c.runTimeouts.Inc()
}

// ObserveRunDuration records a run duration in seconds.
func (c *Collector) ObserveRunDuration(seconds float64) {
	c.runDuration.Update(seconds)
}

// ----------------------
// Steps
// ----------------------

// IncStepTotal increments the step counter for the given status.
func (c *Collector) IncStepTotal(status types.Status) {
	if status == types.StatusSuccess {
		c.stepSuccess.Inc()
	} else {
		c.stepFailed.Inc()
	}
}

// IncBarrierTimeout increments the barrier timeout counter.
func (c *Collector) IncBarrierTimeout() {
	c.barrierTimeouts.Inc()
}

// ----------------------
// Statements
// ----------------------

// ObserveStatementDuration records a statement duration in seconds.
func (c *Collector) ObserveStatementDuration(seconds float64) {
	c.statementDuration.Update(seconds)
}

// IncStatementError increments the statement error counter for category.
// Categories without a dedicated counter are counted as "unknown".
func (c *Collector) IncStatementError(category types.ErrorCategory) {
	counter, ok := c.statementErrors[category]
	if !ok {
		counter = c.statementErrors[types.CategoryUnknown]
	}

	counter.Inc()
}
