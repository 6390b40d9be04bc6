// Package metrics provides internal metrics utilities for lockstep.
package metrics

import "github.com/arloliu/lockstep/types"

// NopMetrics is a no-op metrics collector that discards all metrics.
//
// This is used as the default metrics collector when no collector is configured,
// avoiding nil checks throughout the codebase.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements types.MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNopMetrics creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A collector that discards all metrics
func NewNopMetrics() *NopMetrics {
	return &NopMetrics{}
}

// ----------------------
// Runs
// ----------------------

// IncRunTotal discards the metric.
func (m *NopMetrics) IncRunTotal() {}

// IncRunTimeout discards the metric.
func (m *NopMetrics) IncRunTimeout() {}

// ObserveRunDuration discards the metric.
func (m *NopMetrics) ObserveRunDuration(_ float64) {}

// ----------------------
// Steps
// ----------------------

// IncStepTotal discards the metric.
func (m *NopMetrics) IncStepTotal(_ types.Status) {}

// IncBarrierTimeout discards the metric.
func (m *NopMetrics) IncBarrierTimeout() {}

// ----------------------
// Statements
// ----------------------

// ObserveStatementDuration discards the metric.
func (m *NopMetrics) ObserveStatementDuration(_ float64) {}

// IncStatementError discards the metric.
func (m *NopMetrics) IncStatementError(_ types.ErrorCategory) {}
