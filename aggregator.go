package lockstep

import (
	"sync"
	"time"

	"github.com/arloliu/lockstep/types"
)

// threadLog is the result slot of one thread.
//
// Each slot has its own lock, so threads never contend with each other
// when recording results.
type threadLog struct {
	mu       sync.Mutex
	results  []types.ExecutionResult
	current  int   // index of the step in progress, -1 before the first step
	started  int64 // start of the step in progress, nanos since run start
	finished bool
	sealed   bool
}

// aggregator collects per-thread results and flattens them in a
// deterministic order once the run is over.
type aggregator struct {
	plans []types.ThreadPlan
	logs  []threadLog
}

func newAggregator(sc *types.Scenario) *aggregator {
	a := &aggregator{
		plans: sc.Threads,
		logs:  make([]threadLog, len(sc.Threads)),
	}

	for i := range a.logs {
		a.logs[i].current = -1
		a.logs[i].results = make([]types.ExecutionResult, 0, len(sc.Threads[i].Steps))
	}

	return a
}

// begin marks step as in progress on thread.
func (a *aggregator) begin(thread, step int, startNanos int64) {
	log := &a.logs[thread]
	log.mu.Lock()
	defer log.mu.Unlock()

	log.current = step
	log.started = startNanos
}

// record appends a result for thread. It reports false when the slot was
// sealed and the result dropped.
func (a *aggregator) record(thread int, result types.ExecutionResult) bool {
	log := &a.logs[thread]
	log.mu.Lock()
	defer log.mu.Unlock()

	if log.sealed {
		return false
	}

	log.results = append(log.results, result)

	return true
}

// finish marks thread as stopped on its own.
func (a *aggregator) finish(thread int) {
	log := &a.logs[thread]
	log.mu.Lock()
	defer log.mu.Unlock()

	log.finished = true
}

// sealUnfinished freezes the slot of every thread that has not finished.
// A FAILED result with the given category is added for the step each of
// those threads was in, so the report shows where it was stuck.
//
// Returns the ids of the sealed threads.
func (a *aggregator) sealUnfinished(nowNanos int64, category types.ErrorCategory, message string) []string {
	var sealed []string

	for i := range a.logs {
		log := &a.logs[i]
		log.mu.Lock()

		if !log.finished && !log.sealed {
			if step, ok := a.pendingStep(i, log); ok {
				log.results = append(log.results, a.failure(i, step, log.started, nowNanos, category, message))
			}
			log.sealed = true
			sealed = append(sealed, a.plans[i].ID)
		}

		log.mu.Unlock()
	}

	return sealed
}

// pendingStep returns the step a thread was working on or waiting for,
// unless a result for it was already recorded.
func (a *aggregator) pendingStep(thread int, log *threadLog) (int, bool) {
	step := log.current
	if step < 0 {
		step = 0
	}

	if len(log.results) > 0 && log.results[len(log.results)-1].StepIndex >= step {
		step = log.results[len(log.results)-1].StepIndex + 1
	}

	if step >= len(a.plans[thread].Steps) {
		return 0, false
	}

	return step, true
}

func (a *aggregator) failure(thread, step int, startNanos, endNanos int64, category types.ErrorCategory, message string) types.ExecutionResult {
	return failedResult(a.plans[thread], step, startNanos, endNanos, &types.ErrorInfo{
		Type:     "lockstep." + string(category),
		Category: category,
		Message:  message,
	})
}

// results returns every recorded result ordered by declared thread order,
// then step index. The order does not depend on completion timing.
func (a *aggregator) results() []types.ExecutionResult {
	total := 0
	for i := range a.logs {
		a.logs[i].mu.Lock()
		total += len(a.logs[i].results)
		a.logs[i].mu.Unlock()
	}

	out := make([]types.ExecutionResult, 0, total)
	for i := range a.logs {
		log := &a.logs[i]
		log.mu.Lock()
		// a thread appends in step order, so each slot is already sorted
		out = append(out, log.results...)
		log.mu.Unlock()
	}

	return out
}

// failedResult builds a FAILED result for a step that did not execute.
func failedResult(plan types.ThreadPlan, step int, startNanos, endNanos int64, info *types.ErrorInfo) types.ExecutionResult {
	s := plan.Steps[step]

	result := types.ExecutionResult{
		ThreadID:       plan.ID,
		StepID:         s.ID,
		StepIndex:      step,
		StartNanos:     startNanos,
		EndNanos:       endNanos,
		DurationMillis: time.Duration(endNanos - startNanos).Milliseconds(),
		Status:         types.StatusFailed,
		Error:          info,
	}
	if len(s.Statements) > 0 {
		result.SQL = s.Statements[0]
	}

	return result
}
