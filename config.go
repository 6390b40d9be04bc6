package lockstep

import (
	"time"

	"github.com/arloliu/lockstep/internal/logging"
	"github.com/arloliu/lockstep/internal/metrics"
	"github.com/arloliu/lockstep/types"
)

// Default timeouts.
const (
	DefaultBarrierTimeout  = 60 * time.Second
	DefaultScenarioTimeout = 120 * time.Second
	DefaultShutdownGrace   = 10 * time.Second
	DefaultAcquireTimeout  = 10 * time.Second
)

// Clock returns the current time. Durations are computed with Sub/Since on
// its values, so implementations should keep the monotonic reading.
type Clock func() time.Time

// ExecutorConfig holds configuration for an Executor.
type ExecutorConfig struct {
	// BarrierTimeout bounds how long a thread waits for its siblings before
	// a step. A thread that times out records a failure and stops.
	BarrierTimeout time.Duration

	// ScenarioTimeout bounds the whole run. Unfinished threads are
	// interrupted and the partial results are returned.
	ScenarioTimeout time.Duration

	// ShutdownGrace is how long interrupted threads get to stop before
	// their results are sealed.
	ShutdownGrace time.Duration

	// StatementTimeout bounds every statement. 0 disables it.
	StatementTimeout time.Duration

	// AcquireTimeout bounds reserving and preparing the connections of a
	// run. A pool smaller than the thread count fails with an
	// *types.AcquireError once it expires. It is capped by ScenarioTimeout.
	AcquireTimeout time.Duration

	Metrics MetricsCollector
	Logger  types.Logger
	Clock   Clock
}

// DefaultConfig returns an ExecutorConfig with sensible defaults.
//
// Defaults:
//   - BarrierTimeout: 60s
//   - ScenarioTimeout: 120s
//   - ShutdownGrace: 10s
//   - StatementTimeout: none
//   - AcquireTimeout: 10s
//
// Returns:
//   - *ExecutorConfig: Configuration with default settings
func DefaultConfig() *ExecutorConfig {
	return &ExecutorConfig{
		BarrierTimeout:  DefaultBarrierTimeout,
		ScenarioTimeout: DefaultScenarioTimeout,
		ShutdownGrace:   DefaultShutdownGrace,
		AcquireTimeout:  DefaultAcquireTimeout,
		Metrics:         metrics.NewNopMetrics(),
		Logger:          logging.Discard,
		Clock:           time.Now,
	}
}

// Option configures an ExecutorConfig.
type Option func(*ExecutorConfig)

// WithBarrierTimeout sets the maximum time a thread waits at a step barrier.
//
// Parameters:
//   - d: Barrier wait timeout; non-positive values disable the limit
//
// Returns:
//   - Option: Configuration option
func WithBarrierTimeout(d time.Duration) Option {
	return func(c *ExecutorConfig) {
		c.BarrierTimeout = d
	}
}

// WithScenarioTimeout sets the maximum duration of a run.
//
// Parameters:
//   - d: Scenario timeout; non-positive values disable the limit
//
// Returns:
//   - Option: Configuration option
func WithScenarioTimeout(d time.Duration) Option {
	return func(c *ExecutorConfig) {
		c.ScenarioTimeout = d
	}
}

// WithShutdownGrace sets how long interrupted threads get to stop.
//
// Parameters:
//   - d: Grace period after the scenario timeout
//
// Returns:
//   - Option: Configuration option
func WithShutdownGrace(d time.Duration) Option {
	return func(c *ExecutorConfig) {
		c.ShutdownGrace = d
	}
}

// WithStatementTimeout bounds the execution of each statement.
//
// Parameters:
//   - d: Statement timeout; 0 disables it
//
// Returns:
//   - Option: Configuration option
func WithStatementTimeout(d time.Duration) Option {
	return func(c *ExecutorConfig) {
		c.StatementTimeout = d
	}
}

// WithAcquireTimeout bounds connection acquisition at the start of a run.
//
// Parameters:
//   - d: Acquisition timeout; non-positive values fall back to ScenarioTimeout
//
// Returns:
//   - Option: Configuration option
func WithAcquireTimeout(d time.Duration) Option {
	return func(c *ExecutorConfig) {
		c.AcquireTimeout = d
	}
}

// acquireLimit returns the effective acquisition timeout, 0 meaning none.
func (c *ExecutorConfig) acquireLimit() time.Duration {
	limit := c.AcquireTimeout
	if c.ScenarioTimeout > 0 && (limit <= 0 || c.ScenarioTimeout < limit) {
		limit = c.ScenarioTimeout
	}

	if limit < 0 {
		return 0
	}

	return limit
}

// WithMetrics sets the metrics collector.
//
// If not set, a no-op collector is used that discards all metrics.
// Use contrib/metrics/vm.New() for VictoriaMetrics integration.
//
// Parameters:
//   - collector: The metrics collector implementation
//
// Returns:
//   - Option: Configuration option
//
// Example:
//
//	import vmmetrics "github.com/arloliu/lockstep/contrib/metrics/vm"
//
//	collector := vmmetrics.New(vmmetrics.WithPrefix("myapp"))
//	executor, _ := lockstep.NewExecutor(provider,
//	    lockstep.WithMetrics(collector),
//	)
func WithMetrics(collector MetricsCollector) Option {
	return func(c *ExecutorConfig) {
		c.Metrics = collector
	}
}

// WithLogger sets the structured logger.
//
// If not set, a no-op logger is used that discards all messages.
// The logger interface is compatible with *slog.Logger; use
// contrib/logging/zaplog to plug in zap.
//
// Parameters:
//   - logger: The logger implementation
//
// Returns:
//   - Option: Configuration option
//
// Example:
//
//	logger, _ := zap.NewProduction()
//	executor, _ := lockstep.NewExecutor(provider,
//	    lockstep.WithLogger(zaplog.New(logger)),
//	)
func WithLogger(logger types.Logger) Option {
	return func(c *ExecutorConfig) {
		c.Logger = logger
	}
}

// WithClock replaces the wall clock. Intended for tests.
//
// Parameters:
//   - clock: Function returning the current time
//
// Returns:
//   - Option: Configuration option
func WithClock(clock Clock) Option {
	return func(c *ExecutorConfig) {
		c.Clock = clock
	}
}
