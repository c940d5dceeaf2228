// Package framelog parses ffmpeg showinfo frame logs into ordered frame
// records and builds the lookup structures used for cut-point snapping.
// The log is treated as immutable ground truth about the source video.
package framelog

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// FrameType is the picture type reported by the encoder.
type FrameType byte

const (
	TypeI FrameType = 'I'
	TypeP FrameType = 'P'
	TypeB FrameType = 'B'
)

func (t FrameType) String() string {
	return string(rune(t))
}

// Frame is a single record from the frame log. PTS is the presentation
// timestamp in seconds, or -1 when the log line did not carry one.
type Frame struct {
	Index    int
	Type     FrameType
	Duration float64
	PTS      float64
}

var (
	indexPattern    = regexp.MustCompile(`n:\s*(\d+)`)
	typePattern     = regexp.MustCompile(`type:([IPB])`)
	durationPattern = regexp.MustCompile(`duration_time:([0-9.]+)`)
	ptsPattern      = regexp.MustCompile(`pts_time:([0-9.]+)`)
)

// Parse reads a frame log line by line and returns the frames in encounter
// order. A line must carry an index, a picture type and a duration to
// produce a record; anything else is diagnostic noise and is skipped.
// Zero recognizable lines is not an error: the caller decides whether an
// empty log is usable.
func Parse(r io.Reader) ([]Frame, error) {
	var frames []Frame

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, "n:") {
			continue
		}

		idxMatch := indexPattern.FindStringSubmatch(line)
		typeMatch := typePattern.FindStringSubmatch(line)
		durMatch := durationPattern.FindStringSubmatch(line)
		if idxMatch == nil || typeMatch == nil || durMatch == nil {
			continue
		}

		index, err := strconv.Atoi(idxMatch[1])
		if err != nil {
			continue
		}
		duration, err := strconv.ParseFloat(durMatch[1], 64)
		if err != nil {
			continue
		}

		pts := -1.0
		if m := ptsPattern.FindStringSubmatch(line); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				pts = v
			}
		}

		frames = append(frames, Frame{
			Index:    index,
			Type:     FrameType(typeMatch[1][0]),
			Duration: duration,
			PTS:      pts,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return frames, nil
}

// ParseFile parses the frame log at path.
func ParseFile(path string) ([]Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}
