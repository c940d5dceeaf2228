package framelog

import (
	"math"
	"sort"
)

// VFRReport summarizes the distinct frame durations found in a log.
type VFRReport struct {
	VFR       bool
	Durations []float64
}

// DetectVFR reports whether a log describes variable frame rate video.
// Durations are rounded to microsecond precision before comparison since
// showinfo prints them with limited accuracy; more than one distinct
// duration means VFR.
func DetectVFR(frames []Frame) VFRReport {
	seen := make(map[float64]struct{})
	for _, f := range frames {
		rounded := math.Round(f.Duration*1e6) / 1e6
		seen[rounded] = struct{}{}
	}

	durations := make([]float64, 0, len(seen))
	for d := range seen {
		durations = append(durations, d)
	}
	sort.Float64s(durations)

	return VFRReport{
		VFR:       len(durations) > 1,
		Durations: durations,
	}
}
