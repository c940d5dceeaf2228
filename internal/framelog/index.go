package framelog

import "sort"

// Index holds the immutable per-video lookup structures derived from a
// parsed frame log: sorted I-frame positions, sorted P-frame positions and
// sorted legal-end positions (P or I; B-frames depend on future references
// and are never legal cut boundaries). Built once, shared read-only across
// every range adjustment.
type Index struct {
	frames    []Frame
	iFrames   []int
	pFrames   []int
	legalEnds []int
	maxFrame  int
}

// NewIndex builds the lookup structures from frames in log order.
func NewIndex(frames []Frame) *Index {
	ordered := make([]Frame, len(frames))
	copy(ordered, frames)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Index < ordered[j].Index
	})

	idx := &Index{frames: ordered, maxFrame: -1}
	for _, f := range ordered {
		switch f.Type {
		case TypeI:
			idx.iFrames = append(idx.iFrames, f.Index)
			idx.legalEnds = append(idx.legalEnds, f.Index)
		case TypeP:
			idx.pFrames = append(idx.pFrames, f.Index)
			idx.legalEnds = append(idx.legalEnds, f.Index)
		}
		if f.Index > idx.maxFrame {
			idx.maxFrame = f.Index
		}
	}
	return idx
}

// Frames returns the frame records sorted by index.
func (x *Index) Frames() []Frame {
	return x.frames
}

// Empty reports whether the index was built from zero usable frames.
func (x *Index) Empty() bool {
	return len(x.frames) == 0
}

// MaxFrame returns the highest frame index seen in the log, or -1 for an
// empty index.
func (x *Index) MaxFrame() int {
	return x.maxFrame
}

// IFrameCount returns the number of I-frames in the log.
func (x *Index) IFrameCount() int {
	return len(x.iFrames)
}

// IFrameAt returns the frame index of the I-frame at the given position in
// the sorted I-frame list.
func (x *Index) IFrameAt(pos int) int {
	return x.iFrames[pos]
}

// IFramePosAtOrBefore returns the position in the I-frame list of the
// nearest I-frame at or before n, or false when no I-frame precedes n.
func (x *Index) IFramePosAtOrBefore(n int) (int, bool) {
	pos := sort.SearchInts(x.iFrames, n+1) - 1
	if pos < 0 {
		return 0, false
	}
	return pos, true
}

// LegalEndAtOrAfter returns the nearest P or I frame at or after n, or
// false when none exists.
func (x *Index) LegalEndAtOrAfter(n int) (int, bool) {
	pos := sort.SearchInts(x.legalEnds, n)
	if pos == len(x.legalEnds) {
		return 0, false
	}
	return x.legalEnds[pos], true
}

// PFrameAtOrAfter returns the nearest P-frame at or after n, or false when
// none exists.
func (x *Index) PFrameAtOrAfter(n int) (int, bool) {
	pos := sort.SearchInts(x.pFrames, n)
	if pos == len(x.pFrames) {
		return 0, false
	}
	return x.pFrames[pos], true
}

// PFrameBefore returns the greatest P-frame strictly before n, or false
// when none exists.
func (x *Index) PFrameBefore(n int) (int, bool) {
	pos := sort.SearchInts(x.pFrames, n) - 1
	if pos < 0 {
		return 0, false
	}
	return x.pFrames[pos], true
}

// LastPFrame returns the greatest P-frame in the log, or false when the
// log has no P-frames.
func (x *Index) LastPFrame() (int, bool) {
	if len(x.pFrames) == 0 {
		return 0, false
	}
	return x.pFrames[len(x.pFrames)-1], true
}

// IFrameAfter returns the nearest I-frame strictly after n, or false when
// none exists.
func (x *Index) IFrameAfter(n int) (int, bool) {
	pos := sort.SearchInts(x.iFrames, n+1)
	if pos == len(x.iFrames) {
		return 0, false
	}
	return x.iFrames[pos], true
}

// Lookup returns the frame record with the given index.
func (x *Index) Lookup(n int) (Frame, bool) {
	pos := sort.Search(len(x.frames), func(i int) bool {
		return x.frames[i].Index >= n
	})
	if pos == len(x.frames) || x.frames[pos].Index != n {
		return Frame{}, false
	}
	return x.frames[pos], true
}

// PTS returns the presentation timestamp of frame n in seconds. For a
// frame index one past the end of the log (the exclusive end of a cut that
// runs to the last frame) the timestamp is extrapolated from the final
// frame's duration.
func (x *Index) PTS(n int) (float64, bool) {
	if f, ok := x.Lookup(n); ok && f.PTS >= 0 {
		return f.PTS, true
	}
	if x.Empty() || n <= x.maxFrame {
		return 0, false
	}
	last := x.frames[len(x.frames)-1]
	if last.PTS < 0 {
		return 0, false
	}
	return last.PTS + last.Duration*float64(n-last.Index), true
}
