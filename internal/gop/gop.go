// Package gop analyzes the starting GOP of each cut range: the distance
// from the range start to the next I-frame inside the range. The smallest
// starting GOP across all ranges is how far segments can be shifted
// forward in a downstream editor without losing any segment's first GOP.
package gop

import (
	"fmt"
	"strings"

	"github.com/exactcut/exactcut-agent/internal/adjust"
	"github.com/exactcut/exactcut-agent/internal/framelog"
)

// StartingSize returns the starting GOP size of a single range. When no
// I-frame follows the start inside the range, the whole range is one GOP.
func StartingSize(idx *framelog.Index, r adjust.Range) int {
	if next, ok := idx.IFrameAfter(r.Start); ok && next <= r.End {
		return next - r.Start
	}
	return r.Frames()
}

// Report holds the starting GOP size for each range in document order.
type Report struct {
	Sizes []int
}

// Analyze computes starting GOP sizes for every range.
func Analyze(idx *framelog.Index, ranges []adjust.Range) Report {
	sizes := make([]int, len(ranges))
	for i, r := range ranges {
		sizes[i] = StartingSize(idx, r)
	}
	return Report{Sizes: sizes}
}

// Smallest returns the minimum starting GOP size, or 0 for an empty
// report.
func (r Report) Smallest() int {
	if len(r.Sizes) == 0 {
		return 0
	}
	min := r.Sizes[0]
	for _, s := range r.Sizes[1:] {
		if s < min {
			min = s
		}
	}
	return min
}

func (r Report) String() string {
	if len(r.Sizes) == 0 {
		return "No ranges available.\n"
	}
	var b strings.Builder
	for _, s := range r.Sizes {
		fmt.Fprintf(&b, "%d\n", s)
	}
	b.WriteString("---------------------------------------\n")
	fmt.Fprintf(&b, "Smallest starting GOP: %d frames\n", r.Smallest())
	return b.String()
}
