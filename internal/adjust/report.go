package adjust

import (
	"fmt"
	"strings"
)

// Report is the user-visible summary of one adjustment pass: every range's
// original and adjusted boundaries, the reasons for any skipped ranges and
// the final merged list.
type Report struct {
	Options Options
	Results []Result
	Merged  []Range
}

// Skipped returns the number of ranges left unadjusted.
func (r Report) Skipped() int {
	n := 0
	for _, res := range r.Results {
		if res.Skipped {
			n++
		}
	}
	return n
}

// Ranges returns the post-adjustment, pre-merge ranges in document order.
func (r Report) Ranges() []Range {
	out := make([]Range, len(r.Results))
	for i, res := range r.Results {
		out[i] = res.Adjusted
	}
	return out
}

func (r Report) String() string {
	var b strings.Builder
	for i, res := range r.Results {
		if res.Skipped {
			fmt.Fprintf(&b, "range %d: %s unadjusted: %s\n", i+1, res.Original, res.Reason)
			continue
		}
		fmt.Fprintf(&b, "range %d: %s -> %s\n", i+1, res.Original, res.Adjusted)
	}
	if r.Options.MergeRanges {
		fmt.Fprintf(&b, "merged %d ranges into %d:\n", len(r.Results), len(r.Merged))
	} else {
		fmt.Fprintf(&b, "merging disabled, %d ranges kept:\n", len(r.Merged))
	}
	for _, m := range r.Merged {
		fmt.Fprintf(&b, "  %s (%d frames)\n", m, m.Frames())
	}
	return b.String()
}
