package history

import (
	"context"
	"database/sql"
	"time"
)

type Repository interface {
	CreateRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
	FinishRun(ctx context.Context, id, status, errorMsg string) error
	UpdateRunCounts(ctx context.Context, id string, rangeCount, mergedCount, skippedCount int) error

	AddRangeOutcomes(ctx context.Context, outcomes []RangeOutcome) error
	GetRangeOutcomes(ctx context.Context, runID string) ([]RangeOutcome, error)

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) CreateRun(ctx context.Context, run *Run) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO runs (id, script_path, log_path, output_path, status, error,
			range_count, merged_count, skipped_count,
			i_frame_offset, short_cut_mode, merge_ranges, min_gap, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.ScriptPath, run.LogPath, run.OutputPath, run.Status, run.Error,
		run.RangeCount, run.MergedCount, run.SkippedCount,
		run.IFrameOffset, boolToInt(run.ShortCutMode), boolToInt(run.MergeRanges), run.MinGap,
		run.CreatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) GetRun(ctx context.Context, id string) (*Run, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, script_path, log_path, output_path, status, error,
			range_count, merged_count, skipped_count,
			i_frame_offset, short_cut_mode, merge_ranges, min_gap, created_at
		FROM runs WHERE id = ?
	`, id)
	return scanRun(row.Scan)
}

func (r *SQLiteRepository) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, script_path, log_path, output_path, status, error,
			range_count, merged_count, skipped_count,
			i_frame_offset, short_cut_mode, merge_ranges, min_gap, created_at
		FROM runs ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func scanRun(scan func(dest ...any) error) (*Run, error) {
	var run Run
	var shortCut, merge int
	var createdAt string

	err := scan(&run.ID, &run.ScriptPath, &run.LogPath, &run.OutputPath, &run.Status, &run.Error,
		&run.RangeCount, &run.MergedCount, &run.SkippedCount,
		&run.IFrameOffset, &shortCut, &merge, &run.MinGap, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	run.ShortCutMode = shortCut == 1
	run.MergeRanges = merge == 1
	run.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &run, nil
}

func (r *SQLiteRepository) FinishRun(ctx context.Context, id, status, errorMsg string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE runs SET status = ?, error = ? WHERE id = ?", status, errorMsg, id)
	return err
}

func (r *SQLiteRepository) UpdateRunCounts(ctx context.Context, id string, rangeCount, mergedCount, skippedCount int) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE runs SET range_count = ?, merged_count = ?, skipped_count = ? WHERE id = ?",
		rangeCount, mergedCount, skippedCount, id)
	return err
}

func (r *SQLiteRepository) AddRangeOutcomes(ctx context.Context, outcomes []RangeOutcome) error {
	for _, o := range outcomes {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO run_ranges (run_id, position, orig_start, orig_end, adj_start, adj_end, skipped, reason)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, o.RunID, o.Position, o.OrigStart, o.OrigEnd, o.AdjStart, o.AdjEnd, boolToInt(o.Skipped), o.Reason)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRepository) GetRangeOutcomes(ctx context.Context, runID string) ([]RangeOutcome, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT run_id, position, orig_start, orig_end, adj_start, adj_end, skipped, reason
		FROM run_ranges WHERE run_id = ? ORDER BY position
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var outcomes []RangeOutcome
	for rows.Next() {
		var o RangeOutcome
		var skipped int
		if err := rows.Scan(&o.RunID, &o.Position, &o.OrigStart, &o.OrigEnd, &o.AdjStart, &o.AdjEnd, &skipped, &o.Reason); err != nil {
			return nil, err
		}
		o.Skipped = skipped == 1
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
