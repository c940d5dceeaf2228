// Package prober wraps the external encoder binary used to extract frame
// logs. The adjustment engine never needs it: a frame log produced by any
// compatible tool (LosslessCut's bundled ffmpeg included) works the same.
package prober

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// Prober produces frame logs from source videos.
type Prober interface {
	ExtractFrameLog(ctx context.Context, videoPath, outPath string) error
	Version(ctx context.Context) (string, error)
}

// FFmpegProber shells out to ffmpeg's showinfo filter. The filter prints
// one line per frame to stderr with the n:, type:, pts_time: and
// duration_time: tokens the parser needs.
type FFmpegProber struct {
	bin    string
	logger *slog.Logger
}

func NewFFmpegProber(bin string, logger *slog.Logger) *FFmpegProber {
	if bin == "" {
		bin = "ffmpeg"
	}
	return &FFmpegProber{bin: bin, logger: logger}
}

// ExtractFrameLog decodes the video through showinfo and writes the raw
// stderr stream to outPath.
func (p *FFmpegProber) ExtractFrameLog(ctx context.Context, videoPath, outPath string) error {
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create frame log: %w", err)
	}
	defer out.Close()

	cmd := exec.CommandContext(ctx, p.bin,
		"-hide_banner",
		"-i", videoPath,
		"-vf", "showinfo",
		"-an",
		"-f", "null", "-",
	)
	cmd.Stderr = out

	p.logger.Info("extracting frame log", "video", videoPath, "output", outPath)

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w", p.bin, err)
	}
	return nil
}

// Version reports the first line of `ffmpeg -version`, used as an
// availability check before extraction is offered.
func (p *FFmpegProber) Version(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, p.bin, "-version")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("%s not available: %w", p.bin, err)
	}

	scanner := bufio.NewScanner(strings.NewReader(string(output)))
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	return "", fmt.Errorf("%s produced no version output", p.bin)
}
