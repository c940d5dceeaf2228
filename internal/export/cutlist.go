// Package export converts adjusted cut ranges into the cutlist formats
// consumed by downstream tools: MKVToolnix split-parts lists, timecode
// cutlists for ffmpeg stream copies and human-readable cut info reports.
package export

import (
	"errors"
	"fmt"
	"strings"

	"github.com/exactcut/exactcut-agent/internal/adjust"
	"github.com/exactcut/exactcut-agent/internal/framelog"
)

// ErrNoTimestamps means the frame log carried no pts_time values, so
// timecode-based output cannot be produced.
var ErrNoTimestamps = errors.New("export: frame log has no timestamps")

// MKVToolNixCutlist renders ranges as an MKVToolnix GUI split-parts list.
// With appendMode each part after the first gets a + prefix so MKVToolnix
// appends them into a single output file.
func MKVToolNixCutlist(ranges []adjust.Range, appendMode bool) string {
	parts := make([]string, len(ranges))
	for i, r := range ranges {
		if appendMode && i > 0 {
			parts[i] = fmt.Sprintf("+%d-%d", r.Start, r.End)
		} else {
			parts[i] = fmt.Sprintf("%d-%d", r.Start, r.End)
		}
	}
	return strings.Join(parts, ",")
}

// TimecodeCutlist renders one start_time/duration line per range from the
// log's presentation timestamps. Timestamps are exact per frame, so the
// output stays accurate for variable frame rate video. Ranges whose
// timestamps are missing from the log are skipped; the error is returned
// only when no range could be rendered.
func TimecodeCutlist(idx *framelog.Index, ranges []adjust.Range) (string, error) {
	var b strings.Builder
	rendered := 0
	for _, r := range ranges {
		start, duration, ok := spanSeconds(idx, r)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "start_time=%.6f,duration=%.6f\n", start, duration)
		rendered++
	}
	if rendered == 0 {
		return "", ErrNoTimestamps
	}
	return b.String(), nil
}

// CutInfo renders a per-range timestamp report plus totals, in the shape
//
//	00:00:18.601 - 00:00:37.120 (Frames 446 - 889)    Length: 00:00:18.518 (444 frames)
func CutInfo(idx *framelog.Index, ranges []adjust.Range) (string, error) {
	var b strings.Builder
	totalSeconds := 0.0
	totalFrames := 0
	rendered := 0

	for _, r := range ranges {
		start, duration, ok := spanSeconds(idx, r)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s - %s (Frames %d - %d)    Length: %s (%d frames)\n",
			secondsToHMS(start), secondsToHMS(start+duration),
			r.Start, r.End,
			secondsToHMS(duration), r.Frames())
		totalSeconds += duration
		totalFrames += r.Frames()
		rendered++
	}
	if rendered == 0 {
		return "", ErrNoTimestamps
	}

	b.WriteString(strings.Repeat("-", 80) + "\n")
	fmt.Fprintf(&b, "Total Length: %s (%d frames)\n", secondsToHMS(totalSeconds), totalFrames)

	vfr := framelog.DetectVFR(idx.Frames())
	if vfr.VFR {
		b.WriteString("fps = VFR (Calculated from Log)\n")
	} else if len(vfr.Durations) == 1 && vfr.Durations[0] > 0 {
		fmt.Fprintf(&b, "fps = %.3f (Calculated from Log)\n", 1/vfr.Durations[0])
	}
	return b.String(), nil
}

// spanSeconds returns the start timestamp and duration of a range. The
// duration runs to the exclusive end frame so back-to-back ranges cover
// the source with no gaps.
func spanSeconds(idx *framelog.Index, r adjust.Range) (start, duration float64, ok bool) {
	start, ok = idx.PTS(r.Start)
	if !ok {
		return 0, 0, false
	}
	end, ok := idx.PTS(r.End + 1)
	if !ok {
		return 0, 0, false
	}
	return start, end - start, true
}

func secondsToHMS(seconds float64) string {
	ms := int(seconds*1000 + 0.5)
	h := ms / 3600000
	m := ms % 3600000 / 60000
	s := ms % 60000 / 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms%1000)
}
