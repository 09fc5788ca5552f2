package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/warp/taxman/bas"
	"github.com/warp/taxman/generic"
)

// =============================================================================
// BAS RUNS STORE
// =============================================================================

var _ bas.RunStore = (*Store)(nil)

func (s *Store) SaveRun(ctx context.Context, run bas.Run) error {
	summary, err := json.Marshal(run.Summary)
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO bas_runs (id, label, frequency, basis, period_start, period_end, summary_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Label, string(run.Frequency), string(run.Basis),
		run.PeriodStart.String(), run.PeriodEnd.String(), string(summary), formatTime(run.CreatedAt))
	return translate(err)
}

// ListRuns returns runs newest first.
func (s *Store) ListRuns(ctx context.Context) ([]bas.Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, label, frequency, basis, period_start, period_end, summary_json, created_at
		FROM bas_runs
		ORDER BY created_at DESC, period_start DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []bas.Run{}
	for rows.Next() {
		var run bas.Run
		var frequency, basis, summary, createdAt string
		if err := rows.Scan(&run.ID, &run.Label, &frequency, &basis,
			&run.PeriodStart, &run.PeriodEnd, &summary, &createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(summary), &run.Summary); err != nil {
			return nil, fmt.Errorf("decoding run %s summary: %w", run.ID, err)
		}
		run.Frequency = generic.Frequency(frequency)
		run.Basis = generic.Basis(basis)
		run.CreatedAt = parseTime(createdAt)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *Store) RunExists(ctx context.Context, basis generic.Basis, period generic.Period) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM bas_runs
		WHERE basis = ? AND period_start = ? AND period_end = ?
	`, string(basis), period.Start.String(), period.End.String()).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
