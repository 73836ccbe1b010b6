package daterange

import (
	"context"
	"time"
)

// AutogenerationRun is the persisted log line of one type in one sweep.
type AutogenerationRun struct {
	ID            string
	TypeID        TypeID
	TypeName      string
	Outcome       SweepOutcome
	RangesCreated int
	Message       string
	StartedAt     time.Time
	FinishedAt    time.Time
}

// RunsFromReport flattens a sweep report into run log lines sharing runID.
func RunsFromReport(runID string, report SweepReport) []AutogenerationRun {
	runs := make([]AutogenerationRun, 0, len(report.Results))
	for _, res := range report.Results {
		run := AutogenerationRun{
			ID:            runID,
			TypeID:        res.TypeID,
			TypeName:      res.TypeName,
			Outcome:       res.Outcome,
			RangesCreated: len(res.Ranges),
			StartedAt:     report.StartedAt,
			FinishedAt:    report.FinishedAt,
		}
		if res.Err != nil {
			run.Message = res.Err.Error()
		}
		runs = append(runs, run)
	}
	return runs
}

// RunStore persists the autogeneration run log.
type RunStore interface {
	SaveAutogenerationRuns(ctx context.Context, runs []AutogenerationRun) error

	// ListAutogenerationRuns returns the most recent runs first.
	ListAutogenerationRuns(ctx context.Context, limit int) ([]AutogenerationRun, error)
}
