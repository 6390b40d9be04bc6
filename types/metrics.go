package types

// MetricsCollector defines methods for collecting executor metrics.
//
// Implementations should be thread-safe as methods are called concurrently
// from every scenario thread.
//
// Example usage with VictoriaMetrics (via contrib/metrics/vm):
//
//	import vmmetrics "github.com/arloliu/lockstep/contrib/metrics/vm"
//
//	collector := vmmetrics.New(vmmetrics.WithPrefix("myapp"))
//	executor, _ := lockstep.NewExecutor(provider,
//	    lockstep.WithMetrics(collector),
//	)
//
//	// Expose metrics via HTTP
//	http.HandleFunc("/metrics", collector.Handler)
type MetricsCollector interface {
	// ----------------------
	// Runs
	// ----------------------

	// IncRunTotal increments the number of started scenario runs.
	IncRunTotal()

	// IncRunTimeout increments the number of runs that hit the scenario timeout.
	IncRunTimeout()

	// ObserveRunDuration records a run duration in seconds.
	ObserveRunDuration(seconds float64)

	// ----------------------
	// Steps
	// ----------------------

	// IncStepTotal increments the step counter for the given outcome.
	IncStepTotal(status Status)

	// IncBarrierTimeout increments the counter of threads that gave up
	// waiting for their siblings.
	IncBarrierTimeout()

	// ----------------------
	// Statements
	// ----------------------

	// ObserveStatementDuration records a statement duration in seconds.
	ObserveStatementDuration(seconds float64)

	// IncStatementError increments the statement error counter for a category.
	IncStatementError(category ErrorCategory)
}
