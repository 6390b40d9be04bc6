// Package testutil provides test helpers for lockstep.
//
// # Metrics
//
// [TestMetricsCollector] records every metrics call so tests can assert on
// step outcomes, barrier timeouts and statement error categories:
//
//	collector := testutil.NewTestMetricsCollector()
//	executor, _ := lockstep.NewExecutor(provider, lockstep.WithMetrics(collector))
//
// # Integration Test Helpers
//
//   - StartMySQL: Starts a MySQL test container and opens a pool on it
//     (requires Docker)
package testutil
