// Package history records adjustment runs and their per-range outcomes so
// earlier batch passes stay inspectable from the CLI and the local API.
package history

import (
	"time"

	"github.com/google/uuid"
)

const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

type Run struct {
	ID           string    `json:"id"`
	ScriptPath   string    `json:"script_path"`
	LogPath      string    `json:"log_path"`
	OutputPath   string    `json:"output_path"`
	Status       string    `json:"status"`
	Error        string    `json:"error,omitempty"`
	RangeCount   int       `json:"range_count"`
	MergedCount  int       `json:"merged_count"`
	SkippedCount int       `json:"skipped_count"`
	IFrameOffset int       `json:"i_frame_offset"`
	ShortCutMode bool      `json:"short_cut_mode"`
	MergeRanges  bool      `json:"merge_ranges"`
	MinGap       int       `json:"min_gap"`
	CreatedAt    time.Time `json:"created_at"`
}

// RangeOutcome is one range's before/after boundaries within a run,
// ordered by document position.
type RangeOutcome struct {
	RunID     string `json:"run_id"`
	Position  int    `json:"position"`
	OrigStart int    `json:"orig_start"`
	OrigEnd   int    `json:"orig_end"`
	AdjStart  int    `json:"adj_start"`
	AdjEnd    int    `json:"adj_end"`
	Skipped   bool   `json:"skipped"`
	Reason    string `json:"reason,omitempty"`
}

func NewID() string {
	return uuid.NewString()
}
