package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/arloliu/lockstep/runstore"
	"github.com/arloliu/lockstep/types"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

// writeRecord prints a run header followed by one line per step result.
func writeRecord(w io.Writer, rec runstore.Record) error {
	fmt.Fprintf(w, "run %s  scenario %s  datasource %s\n", rec.ID, rec.ScenarioName, rec.Datasource)
	fmt.Fprintf(w, "started %s  duration %s  success %d  failed %d",
		rec.StartedAt.Format(time.RFC3339), time.Duration(rec.DurationMillis)*time.Millisecond,
		rec.Summary.Success, rec.Summary.Failed)
	if rec.TimedOut {
		fmt.Fprint(w, "  TIMED OUT")
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "THREAD\tSTEP\tSTART(ms)\tEND(ms)\tSTATUS\tSQL\tERROR")
	for _, r := range rec.Results {
		fmt.Fprintf(tw, "%s\t%s\t%.3f\t%.3f\t%s\t%s\t%s\n",
			r.ThreadID, stepLabel(r), millis(r.StartNanos), millis(r.EndNanos),
			r.Status, oneLine(r.SQL), describeError(r.Error))
	}

	return tw.Flush()
}

func stepLabel(r types.ExecutionResult) string {
	if r.StepID != "" {
		return fmt.Sprintf("%d (%s)", r.StepIndex, r.StepID)
	}

	return fmt.Sprintf("%d", r.StepIndex)
}

func millis(nanos int64) float64 {
	return float64(nanos) / float64(time.Millisecond)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func describeError(info *types.ErrorInfo) string {
	if info == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(string(info.Category))
	if info.Code != 0 {
		fmt.Fprintf(&b, " code=%d", info.Code)
	}
	if info.State != "" {
		fmt.Fprintf(&b, " state=%s", info.State)
	}
	b.WriteString(": ")
	b.WriteString(oneLine(info.Message))

	return b.String()
}
