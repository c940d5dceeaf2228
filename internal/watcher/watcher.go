// Package watcher reprocesses scripts automatically: it watches a working
// directory and runs an adjustment pass whenever a .vdscript and its frame
// log are both present.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/exactcut/exactcut-agent/internal/batch"
)

// Editors and log extractors write their files incrementally, so events
// are debounced before a pair is processed.
const debounceDelay = 500 * time.Millisecond

type Watcher struct {
	svc    *batch.Service
	logger *slog.Logger

	mu       sync.Mutex
	pending  map[string]*time.Timer
	lastRuns map[string]time.Time
}

func New(svc *batch.Service, logger *slog.Logger) *Watcher {
	return &Watcher{
		svc:      svc,
		logger:   logger,
		pending:  make(map[string]*time.Timer),
		lastRuns: make(map[string]time.Time),
	}
}

// Watch blocks, processing script/log pairs as they appear in dir, until
// the context is canceled.
func (w *Watcher) Watch(ctx context.Context, dir string) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w.logger.Info("watching for script/log pairs", "dir", dir)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopping")
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.handlePath(ctx, event.Name)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

// handlePath maps any event back to the script of its pair and schedules a
// debounced processing attempt. Our own _adjusted outputs are ignored or
// the watcher would chase its own writes.
func (w *Watcher) handlePath(ctx context.Context, path string) {
	var scriptPath string
	switch {
	case batch.IsAdjusted(path):
		return
	case strings.HasSuffix(path, batch.ScriptExt):
		scriptPath = path
	case strings.HasSuffix(path, batch.FrameLogSuffix):
		scriptPath = strings.TrimSuffix(path, batch.FrameLogSuffix) + batch.ScriptExt
	default:
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[scriptPath]; ok {
		timer.Reset(debounceDelay)
		return
	}
	w.pending[scriptPath] = time.AfterFunc(debounceDelay, func() {
		w.mu.Lock()
		delete(w.pending, scriptPath)
		w.mu.Unlock()
		w.processPair(ctx, scriptPath)
	})
}

func (w *Watcher) processPair(ctx context.Context, scriptPath string) {
	if ctx.Err() != nil {
		return
	}

	logPath := batch.LogPath(scriptPath)
	scriptInfo, err := os.Stat(scriptPath)
	if err != nil {
		return
	}
	logInfo, err := os.Stat(logPath)
	if err != nil {
		w.logger.Debug("pair incomplete, waiting for frame log", "script", scriptPath)
		return
	}

	// Skip pairs already processed unless one side changed since.
	newest := scriptInfo.ModTime()
	if logInfo.ModTime().After(newest) {
		newest = logInfo.ModTime()
	}
	w.mu.Lock()
	last, seen := w.lastRuns[scriptPath]
	if seen && !newest.After(last) {
		w.mu.Unlock()
		return
	}
	w.lastRuns[scriptPath] = newest
	w.mu.Unlock()

	if _, err := w.svc.ProcessFile(ctx, scriptPath, logPath, batch.OutputPath(scriptPath)); err != nil {
		w.logger.Error("failed to process pair", "script", filepath.Base(scriptPath), "error", err)
	}
}
