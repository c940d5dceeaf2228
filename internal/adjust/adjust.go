// Package adjust relocates editor-authored cut ranges onto frame
// boundaries that are safe for lossless stream-copy export. Starts snap
// backward to I-frames, ends snap forward to P or I frames, so an adjusted
// range always covers every frame of the original one.
package adjust

import (
	"fmt"
	"sync"

	"github.com/exactcut/exactcut-agent/internal/framelog"
)

// Range is an inclusive span of frame indices, Start <= End.
type Range struct {
	Start int
	End   int
}

// Frames returns the number of frames the range covers.
func (r Range) Frames() int {
	return r.End - r.Start + 1
}

func (r Range) String() string {
	return fmt.Sprintf("(%d,%d)", r.Start, r.End)
}

// Options is the immutable configuration for a whole adjustment pass.
type Options struct {
	// IFrameOffset selects which previous I-frame a start snaps to.
	// 1 means the I-frame at or before the start; higher values step
	// further back to defend against open-GOP corruption.
	IFrameOffset int

	// ShortCutMode snaps ends to the nearest P or I frame. When false
	// ("full GOP mode") ends extend to the last P-frame of the current
	// GOP instead.
	ShortCutMode bool

	// MergeRanges enables merging of adjusted ranges that overlap or sit
	// closer together than MinGap frames.
	MergeRanges bool

	// MinGap is the smallest gap, in frames, allowed to survive merging.
	MinGap int
}

// DefaultOptions mirrors the defaults users expect from the tool.
func DefaultOptions() Options {
	return Options{
		IFrameOffset: 1,
		ShortCutMode: true,
		MergeRanges:  true,
		MinGap:       100,
	}
}

// Validate reports configuration values the engine cannot honor.
func (o Options) Validate() error {
	if o.IFrameOffset < 1 {
		return fmt.Errorf("i-frame offset must be >= 1, got %d", o.IFrameOffset)
	}
	if o.MinGap < 0 {
		return fmt.Errorf("minimum gap must be >= 0, got %d", o.MinGap)
	}
	return nil
}

// Result records the outcome for one range. Skipped ranges keep their
// original boundaries: silently clamping an out-of-range cut could drop
// frames the user asked for.
type Result struct {
	Original Range
	Adjusted Range
	Skipped  bool
	Reason   string
}

// AdjustRange snaps a single range onto legal boundaries using the shared
// read-only index. The returned range never excludes a frame the original
// covered.
func AdjustRange(idx *framelog.Index, r Range, opts Options) Result {
	if idx.Empty() {
		return Result{
			Original: r,
			Adjusted: r,
			Skipped:  true,
			Reason:   "frame log has no usable frames",
		}
	}
	if r.Start > idx.MaxFrame() || r.End > idx.MaxFrame() {
		return Result{
			Original: r,
			Adjusted: r,
			Skipped:  true,
			Reason:   fmt.Sprintf("range references frame beyond last known frame %d", idx.MaxFrame()),
		}
	}

	return Result{
		Original: r,
		Adjusted: Range{
			Start: snapStart(idx, r.Start, opts.IFrameOffset),
			End:   snapEnd(idx, r.End, opts.ShortCutMode),
		},
	}
}

// snapStart finds the nearest I-frame at or before s and steps back
// offset-1 further I-frames, clamping at the first I-frame of the video.
// Counting the at-or-before I-frame as step one makes an on-I start with
// offset 1 a no-op, and makes offset 2 from an on-I start land on just the
// previous I-frame: stepping back from an I-frame and from the frame after
// it covers the same physical I-frame distance.
func snapStart(idx *framelog.Index, s, offset int) int {
	pos, ok := idx.IFramePosAtOrBefore(s)
	if !ok {
		// No I-frame precedes s at all. Frame 0 is the only choice
		// that keeps every requested frame in the cut.
		return 0
	}
	pos -= offset - 1
	if pos < 0 {
		pos = 0
	}
	return idx.IFrameAt(pos)
}

func snapEnd(idx *framelog.Index, e int, shortCut bool) int {
	if shortCut {
		if f, ok := idx.LegalEndAtOrAfter(e); ok {
			return f
		}
		// Nothing legal at or after e; leaving the end alone beats
		// pulling it backward.
		return e
	}
	return fullGOPEnd(idx, e)
}

// fullGOPEnd extends e to the last P-frame before the I-frame that opens
// the next GOP, so the cut carries the whole of its final GOP.
func fullGOPEnd(idx *framelog.Index, e int) int {
	firstP, ok := idx.PFrameAtOrAfter(e)
	if !ok {
		return idx.MaxFrame()
	}
	nextI, ok := idx.IFrameAfter(firstP)
	if !ok {
		lastP, _ := idx.LastPFrame()
		return lastP
	}
	lastP, _ := idx.PFrameBefore(nextI)
	return lastP
}

// AdjustAll adjusts every range against the shared index. Each range is
// independent, so they are computed concurrently; results come back in
// input order because document order is significant downstream.
func AdjustAll(idx *framelog.Index, ranges []Range, opts Options) []Result {
	results := make([]Result, len(ranges))

	var wg sync.WaitGroup
	for i, r := range ranges {
		wg.Add(1)
		go func(i int, r Range) {
			defer wg.Done()
			results[i] = AdjustRange(idx, r, opts)
		}(i, r)
	}
	wg.Wait()

	return results
}
