package adjust

import "sort"

// Merge collapses ranges whose gap is below minGap frames. Disabled mode
// is the identity: callers get the input back unchanged, overlaps and all.
//
// Enabled mode stable-sorts by start (ties keep document order) and sweeps
// left to right, folding the next range into the running one whenever
// next.Start - running.End < minGap and extending the running end to the
// larger of the two. Adjusted ranges only ever grow, so a single forward
// sweep is complete: merging never uncovers a frame, it only closes small
// gaps.
func Merge(ranges []Range, enabled bool, minGap int) []Range {
	out := make([]Range, len(ranges))
	copy(out, ranges)
	if !enabled || len(out) < 2 {
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start < out[j].Start
	})

	merged := out[:1]
	for _, r := range out[1:] {
		running := &merged[len(merged)-1]
		if r.Start-running.End < minGap {
			if r.End > running.End {
				running.End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}
