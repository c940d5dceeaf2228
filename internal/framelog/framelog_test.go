package framelog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func showinfoLine(n int, typ byte, pts, dur float64) string {
	return fmt.Sprintf("[Parsed_showinfo_0 @ 0x5560e] n:%4d pts:%6d pts_time:%g duration:1501 duration_time:%g fmt:yuv420p s:1920x1080 type:%c checksum:A1B2C3",
		n, n*1501, pts, dur, typ)
}

func TestParse(t *testing.T) {
	log := strings.Join([]string{
		"ffmpeg version 6.1 Copyright (c) 2000-2023 the FFmpeg developers",
		"Input #0, matroska,webm, from 'movie.mkv':",
		showinfoLine(0, 'I', 0, 0.041708),
		showinfoLine(1, 'P', 0.041708, 0.041708),
		showinfoLine(2, 'B', 0.083417, 0.041708),
		"frame=  100 fps=0.0 q=-0.0 size=N/A time=00:00:04.17 bitrate=N/A",
		showinfoLine(3, 'P', 0.125125, 0.041708),
	}, "\n")

	frames, err := Parse(strings.NewReader(log))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(frames) != 4 {
		t.Fatalf("expected 4 frames, got %d", len(frames))
	}

	want := []struct {
		index int
		typ   FrameType
		pts   float64
	}{
		{0, TypeI, 0},
		{1, TypeP, 0.041708},
		{2, TypeB, 0.083417},
		{3, TypeP, 0.125125},
	}
	for i, w := range want {
		f := frames[i]
		if f.Index != w.index || f.Type != w.typ {
			t.Errorf("frame %d: got n=%d type=%s, want n=%d type=%s", i, f.Index, f.Type, w.index, w.typ)
		}
		if f.PTS != w.pts {
			t.Errorf("frame %d: got pts %v, want %v", i, f.PTS, w.pts)
		}
		if f.Duration != 0.041708 {
			t.Errorf("frame %d: got duration %v, want 0.041708", i, f.Duration)
		}
	}
}

func TestParse_IncompleteLines(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"missing type", "[Parsed_showinfo_0 @ 0x1] n:   7 pts_time:0.29 duration_time:0.04"},
		{"missing duration", "[Parsed_showinfo_0 @ 0x1] n:   7 pts_time:0.29 type:P"},
		{"missing index", "[Parsed_showinfo_0 @ 0x1] pts_time:0.29 duration_time:0.04 type:P"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frames, err := Parse(strings.NewReader(tt.line))
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if len(frames) != 0 {
				t.Errorf("expected incomplete line to be skipped, got %d frames", len(frames))
			}
		})
	}
}

func TestParse_MissingPTS(t *testing.T) {
	line := "[Parsed_showinfo_0 @ 0x1] n:   7 duration_time:0.04 type:P"

	frames, err := Parse(strings.NewReader(line))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	if frames[0].PTS != -1 {
		t.Errorf("expected missing pts to record -1, got %v", frames[0].PTS)
	}
}

func TestParse_Empty(t *testing.T) {
	frames, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(frames) != 0 {
		t.Errorf("expected no frames from empty input, got %d", len(frames))
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movie_frame_log.txt")
	content := showinfoLine(0, 'I', 0, 0.04) + "\n" + showinfoLine(1, 'P', 0.04, 0.04) + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write log: %v", err)
	}

	frames, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if len(frames) != 2 {
		t.Errorf("expected 2 frames, got %d", len(frames))
	}

	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}
