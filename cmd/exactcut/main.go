package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/exactcut/exactcut-agent/internal/adjust"
	"github.com/exactcut/exactcut-agent/internal/api"
	"github.com/exactcut/exactcut-agent/internal/batch"
	"github.com/exactcut/exactcut-agent/internal/config"
	"github.com/exactcut/exactcut-agent/internal/db"
	"github.com/exactcut/exactcut-agent/internal/export"
	"github.com/exactcut/exactcut-agent/internal/framelog"
	"github.com/exactcut/exactcut-agent/internal/gop"
	"github.com/exactcut/exactcut-agent/internal/history"
	"github.com/exactcut/exactcut-agent/internal/logging"
	"github.com/exactcut/exactcut-agent/internal/prober"
	"github.com/exactcut/exactcut-agent/internal/vdscript"
	"github.com/exactcut/exactcut-agent/internal/watcher"
)

const usageText = `Usage: exactcut <command> [options]

Commands:
  adjust    snap cut ranges in a .vdscript to keyframe boundaries
  gop       report the starting GOP size of each cut range
  vfr       report whether a frame log has variable frame durations
  cutlist   export ranges as an mkvmerge split list or timecode list
  info      print a human-readable summary of cut ranges
  extract   run ffmpeg to produce a showinfo frame log for a video
  watch     watch a directory and adjust scripts as they change
  serve     run the local HTTP API
  version   print version information

Run 'exactcut <command> -h' for command options.
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usageText)
		return errors.New("no command given")
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "adjust":
		return cmdAdjust(rest)
	case "gop":
		return cmdGOP(rest)
	case "vfr":
		return cmdVFR(rest)
	case "cutlist":
		return cmdCutlist(rest)
	case "info":
		return cmdInfo(rest)
	case "extract":
		return cmdExtract(rest)
	case "watch":
		return cmdWatch(rest)
	case "serve":
		return cmdServe(rest)
	case "version":
		fmt.Printf("exactcut %s (built %s, commit %s)\n", config.Version, config.BuildTime, config.GitCommit)
		return nil
	case "-h", "--help", "help":
		fmt.Print(usageText)
		return nil
	default:
		fmt.Fprint(os.Stderr, usageText)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// optionFlags registers the adjustment tuning flags on fs, seeded from the
// environment-derived defaults so flags override env which overrides defaults.
func optionFlags(fs *flag.FlagSet, defaults adjust.Options) *adjust.Options {
	opts := defaults
	fs.IntVar(&opts.IFrameOffset, "offset", defaults.IFrameOffset, "how many I-frames back to move each range start")
	fs.BoolVar(&opts.ShortCutMode, "short", defaults.ShortCutMode, "end ranges at the next P or I frame instead of the full GOP")
	fs.BoolVar(&opts.MergeRanges, "merge", defaults.MergeRanges, "merge adjusted ranges closer than -gap frames")
	fs.IntVar(&opts.MinGap, "gap", defaults.MinGap, "minimum frame gap between ranges before they merge")
	return &opts
}

func cmdAdjust(args []string) error {
	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fs := flag.NewFlagSet("adjust", flag.ExitOnError)
	logPath := fs.String("log", "", "frame log path (default <script>_frame_log.txt)")
	outPath := fs.String("out", "", "output path (default <script>_adjusted.vdscript)")
	dir := fs.String("dir", "", "process every .vdscript in a directory instead of a single script")
	noHistory := fs.Bool("no-history", false, "do not record this run in the history database")
	opts := optionFlags(fs, cfg.AdjustOptions())
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	logger := logging.NewLogger(cfg.LogLevel())

	var repo history.Repository
	if !*noHistory {
		database, err := openDatabase(cfg, logger)
		if err != nil {
			return err
		}
		defer database.Close()
		repo = history.NewRepository(database.Conn())
	}

	svc := batch.NewService(*opts, repo, logger)
	ctx := context.Background()

	if *dir != "" {
		processed, skipped, err := svc.ProcessDirectory(ctx, *dir)
		if err != nil {
			return err
		}
		fmt.Printf("processed %d scripts, skipped %d\n", processed, skipped)
		return nil
	}

	if fs.NArg() != 1 {
		return errors.New("adjust: expected exactly one script path (or use -dir)")
	}
	script := fs.Arg(0)
	lp, op := *logPath, *outPath
	if lp == "" {
		lp = batch.LogPath(script)
	}
	if op == "" {
		op = batch.OutputPath(script)
	}

	report, err := svc.ProcessFile(ctx, script, lp, op)
	if err != nil {
		return err
	}
	fmt.Print(report.String())
	fmt.Printf("wrote %s\n", op)
	return nil
}

func cmdGOP(args []string) error {
	fs := flag.NewFlagSet("gop", flag.ExitOnError)
	logPath := fs.String("log", "", "frame log path (default <script>_frame_log.txt)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("gop: expected exactly one script path")
	}
	script := fs.Arg(0)

	idx, ranges, err := loadPair(script, *logPath)
	if err != nil {
		return err
	}
	fmt.Print(gop.Analyze(idx, ranges).String())
	return nil
}

func cmdVFR(args []string) error {
	fs := flag.NewFlagSet("vfr", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("vfr: expected exactly one frame log path")
	}

	frames, err := framelog.ParseFile(fs.Arg(0))
	if err != nil {
		return err
	}
	report := framelog.DetectVFR(frames)
	if report.VFR {
		fmt.Printf("variable frame rate: %d distinct frame durations\n", len(report.Durations))
	} else {
		fmt.Println("constant frame rate")
	}
	return nil
}

func cmdCutlist(args []string) error {
	fs := flag.NewFlagSet("cutlist", flag.ExitOnError)
	logPath := fs.String("log", "", "frame log path (default <script>_frame_log.txt)")
	format := fs.String("format", "mkvmerge", "output format: mkvmerge or timecode")
	appendMode := fs.Bool("append", false, "mkvmerge only: prefix segments with + so they concatenate")
	outPath := fs.String("out", "", "write the cutlist to a file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("cutlist: expected exactly one script path")
	}
	script := fs.Arg(0)

	var text string
	switch *format {
	case "mkvmerge":
		doc, err := vdscript.ParseFile(script)
		if err != nil {
			return err
		}
		text = export.MKVToolNixCutlist(doc.Ranges(), *appendMode)
	case "timecode":
		idx, ranges, err := loadPair(script, *logPath)
		if err != nil {
			return err
		}
		text, err = export.TimecodeCutlist(idx, ranges)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("cutlist: unknown format %q", *format)
	}

	if *outPath != "" {
		return os.WriteFile(*outPath, []byte(text), 0644)
	}
	fmt.Print(text)
	return nil
}

func cmdInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	logPath := fs.String("log", "", "frame log path (default <script>_frame_log.txt)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("info: expected exactly one script path")
	}

	idx, ranges, err := loadPair(fs.Arg(0), *logPath)
	if err != nil {
		return err
	}
	text, err := export.CutInfo(idx, ranges)
	if err != nil {
		return err
	}
	fmt.Print(text)
	return nil
}

func cmdExtract(args []string) error {
	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	outPath := fs.String("out", "", "frame log output path (default <video>_frame_log.txt)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("extract: expected exactly one video path")
	}
	video := fs.Arg(0)

	op := *outPath
	if op == "" {
		base := strings.TrimSuffix(video, filepath.Ext(video))
		op = base + batch.FrameLogSuffix
	}

	logger := logging.NewLogger(cfg.LogLevel())
	p := prober.NewFFmpegProber(cfg.FFmpegPath(), logger)
	ctx := context.Background()

	version, err := p.Version(ctx)
	if err != nil {
		return err
	}
	logger.Info("using ffmpeg", "version", version)

	if err := p.ExtractFrameLog(ctx, video, op); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", op)
	return nil
}

func cmdWatch(args []string) error {
	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	opts := optionFlags(fs, cfg.AdjustOptions())
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return err
	}
	dir := "."
	if fs.NArg() > 0 {
		dir = fs.Arg(0)
	}

	logger := logging.NewLogger(cfg.LogLevel())

	database, err := openDatabase(cfg, logger)
	if err != nil {
		return err
	}
	defer database.Close()
	repo := history.NewRepository(database.Conn())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svc := batch.NewService(*opts, repo, logger)
	w := watcher.New(svc, logger)
	return w.Watch(ctx, dir)
}

func cmdServe(args []string) error {
	startTime := time.Now()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	opts := optionFlags(fs, cfg.AdjustOptions())
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting exactcut agent", "version", config.Version, "data_dir", cfg.DataDir())

	database, err := openDatabase(cfg, logger)
	if err != nil {
		return err
	}
	defer database.Close()

	repo := history.NewRepository(database.Conn())

	authToken, err := ensureAuthToken(repo)
	if err != nil {
		return fmt.Errorf("failed to ensure auth token: %w", err)
	}

	fmt.Println()
	fmt.Printf("ExactCut agent v%s\n", config.Version)
	fmt.Printf("  API URL:    http://127.0.0.1:%d\n", cfg.Port())
	fmt.Printf("  Auth token: %s\n", authToken)
	fmt.Println()

	apiServer := api.NewServer(api.ServerConfig{
		Port:       cfg.Port(),
		Options:    *opts,
		Repository: repo,
		Logger:     logger,
		StartTime:  startTime,
	})

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("received shutdown signal", "signal", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

func openDatabase(cfg config.Config, logger *slog.Logger) (*db.DB, error) {
	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return database, nil
}

// loadPair reads a cut script and its frame log, which most analysis
// commands need together.
func loadPair(script, logPath string) (*framelog.Index, []adjust.Range, error) {
	if logPath == "" {
		logPath = batch.LogPath(script)
	}
	doc, err := vdscript.ParseFile(script)
	if err != nil {
		return nil, nil, err
	}
	frames, err := framelog.ParseFile(logPath)
	if err != nil {
		return nil, nil, err
	}
	return framelog.NewIndex(frames), doc.Ranges(), nil
}

func ensureAuthToken(repo history.Repository) (string, error) {
	ctx := context.Background()

	existing, err := repo.GetConfig(ctx, "auth_token")
	if err == nil && existing != "" {
		return existing, nil
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := hex.EncodeToString(tokenBytes)

	if err := repo.SetConfig(ctx, "auth_token", token); err != nil {
		return "", err
	}

	return token, nil
}
