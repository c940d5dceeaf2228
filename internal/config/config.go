// Package config provides configuration management for the ExactCut agent.
// Configuration is loaded from environment variables with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/exactcut/exactcut-agent/internal/adjust"
)

const (
	// Default values
	DefaultPort     = 8690
	DefaultLogLevel = "info"
	DefaultDataDir  = ".exactcut"
	DefaultFFmpeg   = "ffmpeg"

	// Environment variable names
	EnvPort     = "EXACTCUT_PORT"
	EnvLogLevel = "EXACTCUT_LOG_LEVEL"
	EnvDataDir  = "EXACTCUT_DATA_DIR"
	EnvFFmpeg   = "EXACTCUT_FFMPEG"

	// Adjustment environment variable names
	EnvIFrameOffset = "EXACTCUT_IFRAME_OFFSET"
	EnvShortCutMode = "EXACTCUT_SHORT_CUT_MODE"
	EnvMergeRanges  = "EXACTCUT_MERGE_RANGES"
	EnvMinGap       = "EXACTCUT_MIN_GAP"

	// Database filename
	DBFilename = "exactcut.db"
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	FFmpegPath() string
	AdjustOptions() adjust.Options
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port       int
	logLevel   string
	dataDir    string
	ffmpegPath string
	opts       adjust.Options
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:       DefaultPort,
		logLevel:   DefaultLogLevel,
		dataDir:    defaultDataDir(),
		ffmpegPath: DefaultFFmpeg,
		opts:       adjust.DefaultOptions(),
	}

	// Override port from environment
	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	// Override log level from environment
	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	// Override data directory from environment
	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	if fp := os.Getenv(EnvFFmpeg); fp != "" {
		cfg.ffmpegPath = fp
	}

	if v := os.Getenv(EnvIFrameOffset); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvIFrameOffset, err)
		}
		cfg.opts.IFrameOffset = offset
	}

	if v := os.Getenv(EnvShortCutMode); v != "" {
		mode, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvShortCutMode, err)
		}
		cfg.opts.ShortCutMode = mode
	}

	if v := os.Getenv(EnvMergeRanges); v != "" {
		merge, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvMergeRanges, err)
		}
		cfg.opts.MergeRanges = merge
	}

	if v := os.Getenv(EnvMinGap); v != "" {
		gap, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvMinGap, err)
		}
		cfg.opts.MinGap = gap
	}

	if err := cfg.opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid adjustment options: %w", err)
	}

	return cfg, nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// FFmpegPath returns the ffmpeg binary used for frame log extraction
func (c *EnvConfig) FFmpegPath() string {
	return c.ffmpegPath
}

// AdjustOptions returns the boundary adjustment defaults. CLI flags and
// API payloads may override individual fields per invocation.
func (c *EnvConfig) AdjustOptions() adjust.Options {
	return c.opts
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "1.6.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
