// Package batch drives whole-directory adjustment passes: it pairs each
// .vdscript with its frame log, runs the boundary adjustment engine and
// writes the adjusted script next to the original.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/exactcut/exactcut-agent/internal/adjust"
	"github.com/exactcut/exactcut-agent/internal/framelog"
	"github.com/exactcut/exactcut-agent/internal/history"
	"github.com/exactcut/exactcut-agent/internal/vdscript"
)

const (
	ScriptExt      = ".vdscript"
	AdjustedSuffix = "_adjusted.vdscript"
	FrameLogSuffix = "_frame_log.txt"
)

// ErrNoFrameLog means a script has no sibling frame log and cannot be
// adjusted.
var ErrNoFrameLog = errors.New("batch: no frame log for script")

// LogPath returns the expected frame log path for a script:
// movie.mkv.vdscript pairs with movie.mkv_frame_log.txt.
func LogPath(scriptPath string) string {
	return strings.TrimSuffix(scriptPath, ScriptExt) + FrameLogSuffix
}

// OutputPath returns where the adjusted script is written:
// movie.mkv.vdscript becomes movie.mkv_adjusted.vdscript.
func OutputPath(scriptPath string) string {
	return strings.TrimSuffix(scriptPath, ScriptExt) + AdjustedSuffix
}

// IsAdjusted reports whether a path is one of our own output files.
func IsAdjusted(path string) bool {
	return strings.HasSuffix(path, AdjustedSuffix)
}

// Service runs adjustment passes and records them in the history store.
type Service struct {
	opts   adjust.Options
	repo   history.Repository
	logger *slog.Logger
}

// NewService creates a batch service. repo may be nil, which disables run
// recording.
func NewService(opts adjust.Options, repo history.Repository, logger *slog.Logger) *Service {
	return &Service{opts: opts, repo: repo, logger: logger}
}

// Options returns the adjustment options the service was built with.
func (s *Service) Options() adjust.Options {
	return s.opts
}

// ProcessFile adjusts one script against one frame log and writes the
// result to outPath. The script and the log are parsed concurrently; they
// share no state until both are done. The returned report is non-nil
// whenever the document itself was parseable, even if every range was
// passed through unadjusted.
func (s *Service) ProcessFile(ctx context.Context, scriptPath, logPath, outPath string) (*adjust.Report, error) {
	runID := s.beginRun(ctx, scriptPath, logPath, outPath)

	report, err := s.processFile(scriptPath, logPath, outPath)
	s.endRun(ctx, runID, report, err)
	return report, err
}

func (s *Service) processFile(scriptPath, logPath, outPath string) (*adjust.Report, error) {
	var (
		script    *vdscript.Script
		frames    []framelog.Frame
		scriptErr error
		logErr    error
	)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		script, scriptErr = vdscript.ParseFile(scriptPath)
	}()
	go func() {
		defer wg.Done()
		frames, logErr = framelog.ParseFile(logPath)
	}()
	wg.Wait()

	if scriptErr != nil {
		return nil, fmt.Errorf("failed to parse script: %w", scriptErr)
	}
	if logErr != nil {
		return nil, fmt.Errorf("failed to read frame log: %w", logErr)
	}

	idx := framelog.NewIndex(frames)
	if idx.Empty() {
		s.logger.Warn("frame log unusable, ranges passed through unadjusted", "log", logPath)
	}

	results := adjust.AdjustAll(idx, script.Ranges(), s.opts)
	report := &adjust.Report{Options: s.opts, Results: results}
	report.Merged = adjust.Merge(report.Ranges(), s.opts.MergeRanges, s.opts.MinGap)

	if err := os.WriteFile(outPath, script.Render(report.Merged), 0644); err != nil {
		return report, fmt.Errorf("failed to write adjusted script: %w", err)
	}

	s.logger.Info("script adjusted",
		"script", scriptPath,
		"output", outPath,
		"ranges", len(report.Results),
		"merged", len(report.Merged),
		"skipped", report.Skipped(),
	)
	return report, nil
}

// ProcessDirectory adjusts every script in dir that has a frame log.
// Scripts without one are skipped with a log line; a failing pair does not
// stop the others.
func (s *Service) ProcessDirectory(ctx context.Context, dir string) (processed, skipped int, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ScriptExt) || IsAdjusted(entry.Name()) {
			continue
		}

		scriptPath := filepath.Join(dir, entry.Name())
		logPath := LogPath(scriptPath)
		if _, statErr := os.Stat(logPath); statErr != nil {
			s.logger.Warn("skipped script, no frame log found", "script", scriptPath, "expected_log", logPath)
			skipped++
			continue
		}

		if _, procErr := s.ProcessFile(ctx, scriptPath, logPath, OutputPath(scriptPath)); procErr != nil {
			s.logger.Error("failed to process script", "script", scriptPath, "error", procErr)
			skipped++
			continue
		}
		processed++
	}
	return processed, skipped, nil
}

func (s *Service) beginRun(ctx context.Context, scriptPath, logPath, outPath string) string {
	if s.repo == nil {
		return ""
	}

	run := &history.Run{
		ID:           history.NewID(),
		ScriptPath:   scriptPath,
		LogPath:      logPath,
		OutputPath:   outPath,
		Status:       history.RunStatusRunning,
		IFrameOffset: s.opts.IFrameOffset,
		ShortCutMode: s.opts.ShortCutMode,
		MergeRanges:  s.opts.MergeRanges,
		MinGap:       s.opts.MinGap,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.CreateRun(ctx, run); err != nil {
		s.logger.Warn("failed to record run", "error", err)
		return ""
	}
	return run.ID
}

func (s *Service) endRun(ctx context.Context, runID string, report *adjust.Report, procErr error) {
	if s.repo == nil || runID == "" {
		return
	}

	if report != nil {
		outcomes := make([]history.RangeOutcome, len(report.Results))
		for i, res := range report.Results {
			outcomes[i] = history.RangeOutcome{
				RunID:     runID,
				Position:  i,
				OrigStart: res.Original.Start,
				OrigEnd:   res.Original.End,
				AdjStart:  res.Adjusted.Start,
				AdjEnd:    res.Adjusted.End,
				Skipped:   res.Skipped,
				Reason:    res.Reason,
			}
		}
		if err := s.repo.AddRangeOutcomes(ctx, outcomes); err != nil {
			s.logger.Warn("failed to record range outcomes", "run_id", runID, "error", err)
		}
		if err := s.repo.UpdateRunCounts(ctx, runID, len(report.Results), len(report.Merged), report.Skipped()); err != nil {
			s.logger.Warn("failed to record run counts", "run_id", runID, "error", err)
		}
	}

	status := history.RunStatusCompleted
	errMsg := ""
	if procErr != nil {
		status = history.RunStatusFailed
		errMsg = procErr.Error()
	}
	if err := s.repo.FinishRun(ctx, runID, status, errMsg); err != nil {
		s.logger.Warn("failed to finish run", "run_id", runID, "error", err)
	}
}
