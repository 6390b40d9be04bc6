package lockstep

import (
	"time"

	"github.com/google/uuid"

	"github.com/arloliu/lockstep/types"
)

// Run is the outcome of one scenario execution.
type Run struct {
	// ID uniquely identifies the run.
	ID uuid.UUID `json:"id"`

	// Scenario is the executed scenario.
	Scenario *types.Scenario `json:"scenario"`

	// StartedAt is the wall-clock time the first thread was launched.
	StartedAt time.Time `json:"startedAt"`

	// Duration is the elapsed time between launch and collection.
	Duration time.Duration `json:"duration"`

	// TimedOut is true when the scenario timeout fired and Results is partial.
	TimedOut bool `json:"timedOut"`

	// Results holds one entry per executed step, ordered by declared
	// thread order then step index.
	Results []types.ExecutionResult `json:"results"`
}

// Summary counts the run's results by status.
func (r *Run) Summary() types.Summary {
	return types.Summarize(r.Results)
}

// ThreadResults returns the results of one thread in step order.
func (r *Run) ThreadResults(threadID string) []types.ExecutionResult {
	var out []types.ExecutionResult
	for _, res := range r.Results {
		if res.ThreadID == threadID {
			out = append(out, res)
		}
	}

	return out
}

// Failed returns every FAILED result.
func (r *Run) Failed() []types.ExecutionResult {
	var out []types.ExecutionResult
	for _, res := range r.Results {
		if !res.Succeeded() {
			out = append(out, res)
		}
	}

	return out
}
