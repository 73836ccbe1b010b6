package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/warp/daterange-engine/daterange"
)

// =============================================================================
// AUTOGENERATION RUNS (daterange.RunStore interface)
// =============================================================================

// SaveAutogenerationRuns appends run log lines atomically.
func (s *Store) SaveAutogenerationRuns(ctx context.Context, runs []daterange.AutogenerationRun) error {
	if len(runs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.inTx(ctx, func(q queries) error {
		for _, run := range runs {
			_, err := q.db.ExecContext(ctx, `
				INSERT INTO autogeneration_runs
				(id, type_id, type_name, outcome, ranges_created, message, started_at, finished_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				run.ID, int64(run.TypeID), run.TypeName, string(run.Outcome), run.RangesCreated,
				run.Message, run.StartedAt.UTC().Format(time.RFC3339Nano), run.FinishedAt.UTC().Format(time.RFC3339Nano),
			)
			if err != nil {
				return fmt.Errorf("failed to save autogeneration run: %w", err)
			}
		}
		return nil
	})
}

// ListAutogenerationRuns returns the most recent run lines first.
func (s *Store) ListAutogenerationRuns(ctx context.Context, limit int) ([]daterange.AutogenerationRun, error) {
	if limit <= 0 {
		limit = 100
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type_id, type_name, outcome, ranges_created, message, started_at, finished_at
		FROM autogeneration_runs
		ORDER BY started_at DESC, type_name, type_id
		LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query autogeneration runs: %w", err)
	}
	defer rows.Close()

	var runs []daterange.AutogenerationRun
	for rows.Next() {
		var (
			run        daterange.AutogenerationRun
			typeID     int64
			outcome    string
			startedAt  string
			finishedAt string
		)
		err := rows.Scan(&run.ID, &typeID, &run.TypeName, &outcome, &run.RangesCreated,
			&run.Message, &startedAt, &finishedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan autogeneration run: %w", err)
		}
		run.TypeID = daterange.TypeID(typeID)
		run.Outcome = daterange.SweepOutcome(outcome)
		run.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
		run.FinishedAt, _ = time.Parse(time.RFC3339Nano, finishedAt)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
