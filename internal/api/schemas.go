package api

import (
	"time"

	"github.com/exactcut/exactcut-agent/internal/adjust"
	"github.com/exactcut/exactcut-agent/internal/history"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

// OptionsPayload carries per-request overrides of the configured
// adjustment defaults; nil fields keep the default.
type OptionsPayload struct {
	IFrameOffset *int  `json:"i_frame_offset,omitempty"`
	ShortCutMode *bool `json:"short_cut_mode,omitempty"`
	MergeRanges  *bool `json:"merge_ranges,omitempty"`
	MinGap       *int  `json:"min_gap,omitempty"`
}

// Apply overlays the payload onto opts.
func (p *OptionsPayload) Apply(opts adjust.Options) adjust.Options {
	if p == nil {
		return opts
	}
	if p.IFrameOffset != nil {
		opts.IFrameOffset = *p.IFrameOffset
	}
	if p.ShortCutMode != nil {
		opts.ShortCutMode = *p.ShortCutMode
	}
	if p.MergeRanges != nil {
		opts.MergeRanges = *p.MergeRanges
	}
	if p.MinGap != nil {
		opts.MinGap = *p.MinGap
	}
	return opts
}

type AdjustRequest struct {
	ScriptPath string          `json:"script_path"`
	LogPath    string          `json:"log_path,omitempty"`
	OutputPath string          `json:"output_path,omitempty"`
	Options    *OptionsPayload `json:"options,omitempty"`
}

type RangeResponse struct {
	Start  int `json:"start"`
	End    int `json:"end"`
	Frames int `json:"frames"`
}

type RangeResultResponse struct {
	Original RangeResponse `json:"original"`
	Adjusted RangeResponse `json:"adjusted"`
	Skipped  bool          `json:"skipped,omitempty"`
	Reason   string        `json:"reason,omitempty"`
}

type AdjustResponse struct {
	OutputPath string                `json:"output_path"`
	Ranges     []RangeResultResponse `json:"ranges"`
	Merged     []RangeResponse       `json:"merged"`
	Skipped    int                   `json:"skipped"`
}

type GOPRequest struct {
	ScriptPath string `json:"script_path"`
	LogPath    string `json:"log_path,omitempty"`
}

type GOPResponse struct {
	Sizes    []int `json:"sizes"`
	Smallest int   `json:"smallest"`
}

type VFRRequest struct {
	LogPath string `json:"log_path"`
}

type VFRResponse struct {
	VFR       bool      `json:"vfr"`
	Durations []float64 `json:"durations"`
}

type RunResponse struct {
	ID           string `json:"id"`
	ScriptPath   string `json:"script_path"`
	LogPath      string `json:"log_path"`
	OutputPath   string `json:"output_path"`
	Status       string `json:"status"`
	Error        string `json:"error,omitempty"`
	RangeCount   int    `json:"range_count"`
	MergedCount  int    `json:"merged_count"`
	SkippedCount int    `json:"skipped_count"`
	IFrameOffset int    `json:"i_frame_offset"`
	ShortCutMode bool   `json:"short_cut_mode"`
	MergeRanges  bool   `json:"merge_ranges"`
	MinGap       int    `json:"min_gap"`
	CreatedAt    string `json:"created_at"`
}

type RunsResponse struct {
	Runs []RunResponse `json:"runs"`
}

type RunDetailResponse struct {
	Run    RunResponse            `json:"run"`
	Ranges []history.RangeOutcome `json:"ranges"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func RunToResponse(r *history.Run) RunResponse {
	return RunResponse{
		ID:           r.ID,
		ScriptPath:   r.ScriptPath,
		LogPath:      r.LogPath,
		OutputPath:   r.OutputPath,
		Status:       r.Status,
		Error:        r.Error,
		RangeCount:   r.RangeCount,
		MergedCount:  r.MergedCount,
		SkippedCount: r.SkippedCount,
		IFrameOffset: r.IFrameOffset,
		ShortCutMode: r.ShortCutMode,
		MergeRanges:  r.MergeRanges,
		MinGap:       r.MinGap,
		CreatedAt:    r.CreatedAt.Format(time.RFC3339),
	}
}

func rangeToResponse(r adjust.Range) RangeResponse {
	return RangeResponse{Start: r.Start, End: r.End, Frames: r.Frames()}
}

func ReportToResponse(outputPath string, report *adjust.Report) AdjustResponse {
	resp := AdjustResponse{
		OutputPath: outputPath,
		Ranges:     make([]RangeResultResponse, len(report.Results)),
		Merged:     make([]RangeResponse, len(report.Merged)),
		Skipped:    report.Skipped(),
	}
	for i, res := range report.Results {
		resp.Ranges[i] = RangeResultResponse{
			Original: rangeToResponse(res.Original),
			Adjusted: rangeToResponse(res.Adjusted),
			Skipped:  res.Skipped,
			Reason:   res.Reason,
		}
	}
	for i, m := range report.Merged {
		resp.Merged[i] = rangeToResponse(m)
	}
	return resp
}
