package prober

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubFFmpeg writes a shell script that mimics the binary: showinfo
// output on stderr, a version banner for -version.
func stubFFmpeg(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stub not runnable on windows")
	}

	script := `#!/bin/sh
if [ "$1" = "-version" ]; then
  echo "ffmpeg version 6.1 Copyright (c) 2000-2023 the FFmpeg developers"
  exit 0
fi
echo "[Parsed_showinfo_0 @ 0x1] n:   0 pts_time:0 duration_time:0.04 type:I" 1>&2
echo "[Parsed_showinfo_0 @ 0x1] n:   1 pts_time:0.04 duration_time:0.04 type:P" 1>&2
`
	path := filepath.Join(t.TempDir(), "ffmpeg-stub")
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("failed to write stub: %v", err)
	}
	return path
}

func TestExtractFrameLog(t *testing.T) {
	p := NewFFmpegProber(stubFFmpeg(t), testLogger())
	outPath := filepath.Join(t.TempDir(), "movie.mkv_frame_log.txt")

	if err := p.ExtractFrameLog(context.Background(), "movie.mkv", outPath); err != nil {
		t.Fatalf("ExtractFrameLog failed: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("frame log not written: %v", err)
	}
	if !strings.Contains(string(data), "type:I") || !strings.Contains(string(data), "type:P") {
		t.Errorf("frame log missing showinfo lines:\n%s", data)
	}
}

func TestExtractFrameLog_BinaryMissing(t *testing.T) {
	p := NewFFmpegProber(filepath.Join(t.TempDir(), "no-such-ffmpeg"), testLogger())
	outPath := filepath.Join(t.TempDir(), "out.txt")

	if err := p.ExtractFrameLog(context.Background(), "movie.mkv", outPath); err == nil {
		t.Error("expected error for missing binary")
	}
}

func TestVersion(t *testing.T) {
	p := NewFFmpegProber(stubFFmpeg(t), testLogger())

	version, err := p.Version(context.Background())
	if err != nil {
		t.Fatalf("Version failed: %v", err)
	}
	if !strings.HasPrefix(version, "ffmpeg version 6.1") {
		t.Errorf("got %q", version)
	}
}

func TestVersion_BinaryMissing(t *testing.T) {
	p := NewFFmpegProber(filepath.Join(t.TempDir(), "no-such-ffmpeg"), testLogger())
	if _, err := p.Version(context.Background()); err == nil {
		t.Error("expected error for missing binary")
	}
}
