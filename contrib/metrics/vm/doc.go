// Package vm provides a VictoriaMetrics-based implementation of the MetricsCollector interface.
//
// This package uses github.com/VictoriaMetrics/metrics for lightweight,
// high-performance Prometheus-compatible metrics collection.
//
// # Basic Usage
//
// Create a collector with default prefix "lockstep":
//
//	collector := vm.New()
//	executor, _ := lockstep.NewExecutor(provider,
//	    lockstep.WithMetrics(collector),
//	)
//
// # Custom Prefix
//
// Use WithPrefix to customize the metric name prefix:
//
//	collector := vm.New(vm.WithPrefix("myapp"))
//
// This produces metrics like:
//   - myapp_runs_total
//   - myapp_steps_total{status="FAILED"}
//
// # Exposing Metrics
//
// Use the Handler method to expose metrics via HTTP:
//
//	http.HandleFunc("/metrics", collector.Handler)
//	http.ListenAndServe(":8080", nil)
//
// Or use WritePrometheus to write metrics to a custom writer:
//
//	collector.WritePrometheus(os.Stdout)
//
// # Metrics Provided
//
// Runs:
//   - {prefix}_runs_total - Counter of started scenario runs
//   - {prefix}_run_timeouts_total - Counter of runs that hit the scenario timeout
//   - {prefix}_run_duration_seconds - Histogram of run durations
//
// Steps:
//   - {prefix}_steps_total{status} - Counter of step results by status
//   - {prefix}_barrier_timeouts_total - Counter of threads that gave up at a barrier
//
// Statements:
//   - {prefix}_statement_duration_seconds - Histogram of statement latencies
//   - {prefix}_statement_errors_total{category} - Counter of statement failures by category
//
// # Performance Notes
//
// This implementation pre-creates all metrics at initialization time
// using the NewXXX pattern (instead of GetOrCreateXXX) for optimal
// performance in hot paths, as recommended by the VictoriaMetrics documentation.
package vm
