package lockstep

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/arloliu/lockstep/barrier"
	"github.com/arloliu/lockstep/datasource"
	"github.com/arloliu/lockstep/internal/logging"
	"github.com/arloliu/lockstep/internal/metrics"
	"github.com/arloliu/lockstep/types"
)

// Executor runs scenarios against the datasources of a provider.
//
// Each call to Execute is independent: it owns its connections, barriers
// and result slots. An Executor may run several scenarios concurrently.
type Executor struct {
	provider datasource.Provider
	config   *ExecutorConfig
	closed   atomic.Bool
}

// NewExecutor creates a new Executor.
//
// Parameters:
//   - provider: Resolves scenario datasource names into connection pools
//   - opts: Optional configuration options
//
// Returns:
//   - *Executor: A new executor
//   - error: types.ErrNilProvider if provider is nil
func NewExecutor(provider datasource.Provider, opts ...Option) (*Executor, error) {
	if provider == nil {
		return nil, types.ErrNilProvider
	}

	config := DefaultConfig()
	for _, opt := range opts {
		opt(config)
	}

	// Ensure metrics is never nil
	if config.Metrics == nil {
		config.Metrics = metrics.NewNopMetrics()
	}

	config.Logger = logging.OrDiscard(config.Logger)

	if config.Clock == nil {
		config.Clock = time.Now
	}

	return &Executor{
		provider: provider,
		config:   config,
	}, nil
}

// Config returns a copy of the executor configuration.
func (e *Executor) Config() ExecutorConfig {
	return *e.config
}

// Execute runs a scenario to completion and returns its ordered results.
//
// The scenario is validated, the datasource resolved and one connection per
// thread acquired before any thread starts. Threads then run concurrently,
// step i of every thread completing before step i+1 of any thread begins.
// Statement failures, barrier timeouts and the scenario timeout are reported
// as FAILED results, not as errors; a run that hit the scenario timeout is
// returned with TimedOut set and whatever results were recorded.
//
// Parameters:
//   - ctx: Cancelling ctx interrupts the run like a scenario timeout
//   - sc: The scenario to run
//
// Returns:
//   - *Run: The run with its ordered results
//   - error: *types.ConfigError, a datasource error or *types.AcquireError
func (e *Executor) Execute(ctx context.Context, sc *types.Scenario) (*Run, error) {
	if e.closed.Load() {
		return nil, types.ErrExecutorClosed
	}

	if err := sc.Validate(); err != nil {
		return nil, err
	}

	src, err := e.provider.Open(ctx, sc.Datasource)
	if err != nil {
		return nil, fmt.Errorf("open datasource %q: %w", sc.Datasource, err)
	}

	logger := e.config.Logger
	leases, err := acquireLeases(ctx, src.DB, src.Dialect, sc, e.config.acquireLimit(), logger)
	if err != nil {
		logger.Error("connection acquisition failed", "scenario", sc.Name, "error", err)
		return nil, err
	}

	run := &Run{
		ID:       newRunID(),
		Scenario: sc,
	}
	e.config.Metrics.IncRunTotal()

	logger.Info("scenario started",
		"scenario", sc.Name, "run", run.ID.String(), "threads", len(sc.Threads), "steps", sc.StepCount())

	start := e.config.Clock()
	run.StartedAt = start

	runners, agg, timedOut := e.launch(ctx, sc, leases, start)
	run.TimedOut = timedOut

	if sealed := e.sealStragglers(agg, runners, start, timedOut); len(sealed) > 0 {
		logger.Warn("threads did not stop within shutdown grace", "scenario", sc.Name, "threads", sealed)
	}

	run.Results = agg.results()
	run.Duration = e.config.Clock().Sub(start)

	e.releaseLeases(leases, runners)

	e.config.Metrics.ObserveRunDuration(run.Duration.Seconds())
	if timedOut {
		e.config.Metrics.IncRunTimeout()
	}

	summary := run.Summary()
	logger.Info("scenario finished",
		"scenario", sc.Name, "run", run.ID.String(), "duration", run.Duration,
		"success", summary.Success, "failed", summary.Failed, "timedOut", timedOut)

	return run, nil
}

// launch starts one runner per thread and waits until they all finish, the
// scenario timeout fires or ctx is cancelled. It reports whether the
// scenario timeout fired.
func (e *Executor) launch(ctx context.Context, sc *types.Scenario, leases []*lease, start time.Time) ([]*runner, *aggregator, bool) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	barriers := barrier.NewSet(sc.StepCount(), len(sc.Threads))
	agg := newAggregator(sc)
	runners := make([]*runner, len(sc.Threads))

	var g errgroup.Group
	g.SetLimit(len(sc.Threads))

	for i := range sc.Threads {
		r := &runner{
			index:    i,
			plan:     sc.Threads[i],
			lease:    leases[i],
			barriers: barriers,
			agg:      agg,
			config:   e.config,
			start:    start,
			done:     make(chan struct{}),
		}
		runners[i] = r

		g.Go(func() error {
			r.run(runCtx)
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()

	var timeout <-chan time.Time
	if e.config.ScenarioTimeout > 0 {
		timer := time.NewTimer(e.config.ScenarioTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	timedOut := false
	select {
	case <-done:
		return runners, agg, false
	case <-timeout:
		timedOut = true
		e.config.Logger.Warn("scenario timed out, interrupting threads",
			"scenario", sc.Name, "timeout", e.config.ScenarioTimeout)
	case <-ctx.Done():
		e.config.Logger.Warn("scenario cancelled, interrupting threads", "scenario", sc.Name)
	}

	cancel()

	grace := time.NewTimer(e.config.ShutdownGrace)
	defer grace.Stop()

	select {
	case <-done:
	case <-grace.C:
	}

	return runners, agg, timedOut
}

// sealStragglers freezes the result slots of threads that are still
// running, adding a FAILED result for the step they were in.
func (e *Executor) sealStragglers(agg *aggregator, runners []*runner, start time.Time, timedOut bool) []string {
	for _, r := range runners {
		select {
		case <-r.done:
		default:
			category := types.CategoryInterrupted
			message := "run cancelled before the thread finished"
			if timedOut {
				category = types.CategoryScenarioTimeout
				message = fmt.Sprintf("scenario timed out after %s", e.config.ScenarioTimeout)
			}

			return agg.sealUnfinished(e.config.Clock().Sub(start).Nanoseconds(), category, message)
		}
	}

	return nil
}

// releaseLeases returns every connection to its pool. Connections still in
// use by a thread that ignored cancellation are released in the background
// once that thread stops, so Execute never blocks on them.
func (e *Executor) releaseLeases(leases []*lease, runners []*runner) {
	finished := make([]*lease, 0, len(leases))

	for i, r := range runners {
		select {
		case <-r.done:
			finished = append(finished, leases[i])
		default:
			go func(l *lease, done <-chan struct{}) {
				<-done
				_ = releaseAll([]*lease{l}, e.config.Logger)
			}(leases[i], r.done)
		}
	}

	_ = releaseAll(finished, e.config.Logger)
}

// newRunID returns a time-ordered run id, so stored runs sort by creation.
func newRunID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}

	return id
}

// Close marks the executor closed. Runs in progress are not affected;
// further Execute calls return types.ErrExecutorClosed.
func (e *Executor) Close() error {
	e.closed.Store(true)
	return nil
}
