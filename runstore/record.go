package runstore

import (
	"time"

	"github.com/arloliu/lockstep"
	"github.com/arloliu/lockstep/types"
)

// Record is the stored form of a run.
type Record struct {
	ID             string                  `json:"id"`
	ScenarioName   string                  `json:"scenarioName"`
	Datasource     string                  `json:"datasource"`
	StartedAt      time.Time               `json:"startedAt"`
	DurationMillis int64                   `json:"durationMillis"`
	TimedOut       bool                    `json:"timedOut"`
	Summary        types.Summary           `json:"summary"`
	Scenario       *types.Scenario         `json:"scenario,omitempty"`
	Results        []types.ExecutionResult `json:"results"`
}

// FromRun converts a run into a record.
func FromRun(run *lockstep.Run) Record {
	rec := Record{
		ID:             run.ID.String(),
		StartedAt:      run.StartedAt,
		DurationMillis: run.Duration.Milliseconds(),
		TimedOut:       run.TimedOut,
		Summary:        run.Summary(),
		Scenario:       run.Scenario,
		Results:        run.Results,
	}

	if run.Scenario != nil {
		rec.ScenarioName = run.Scenario.Name
		rec.Datasource = run.Scenario.Datasource
	}

	return rec
}
