package framelog

import "testing"

// patternIndex builds an index from a picture-type pattern where character
// i is the type of frame i.
func patternIndex(pattern string) *Index {
	frames := make([]Frame, len(pattern))
	for i := range pattern {
		frames[i] = Frame{
			Index:    i,
			Type:     FrameType(pattern[i]),
			Duration: 0.04,
			PTS:      float64(i) * 0.04,
		}
	}
	return NewIndex(frames)
}

// Three closed GOPs of ten frames each.
const gopPattern = "IPBBPBBPBB" + "IPBBPBBPBB" + "IPBBPBBPBB"

func TestIndex_Lookups(t *testing.T) {
	idx := patternIndex(gopPattern)

	if idx.Empty() {
		t.Fatal("expected non-empty index")
	}
	if got := idx.MaxFrame(); got != 29 {
		t.Errorf("MaxFrame: got %d, want 29", got)
	}
	if got := idx.IFrameCount(); got != 3 {
		t.Errorf("IFrameCount: got %d, want 3", got)
	}

	tests := []struct {
		name   string
		got    int
		gotOK  bool
		want   int
		wantOK bool
	}{
		{"i-frame pos at start", first(idx.IFramePosAtOrBefore(0)), second(idx.IFramePosAtOrBefore(0)), 0, true},
		{"i-frame pos mid gop", first(idx.IFramePosAtOrBefore(15)), second(idx.IFramePosAtOrBefore(15)), 1, true},
		{"i-frame pos on i", first(idx.IFramePosAtOrBefore(20)), second(idx.IFramePosAtOrBefore(20)), 2, true},
		{"legal end on b", first(idx.LegalEndAtOrAfter(2)), second(idx.LegalEndAtOrAfter(2)), 4, true},
		{"legal end on p", first(idx.LegalEndAtOrAfter(14)), second(idx.LegalEndAtOrAfter(14)), 14, true},
		{"legal end past last", first(idx.LegalEndAtOrAfter(28)), second(idx.LegalEndAtOrAfter(28)), 0, false},
		{"p at or after", first(idx.PFrameAtOrAfter(18)), second(idx.PFrameAtOrAfter(18)), 21, true},
		{"p before", first(idx.PFrameBefore(10)), second(idx.PFrameBefore(10)), 7, true},
		{"p before first", first(idx.PFrameBefore(1)), second(idx.PFrameBefore(1)), 0, false},
		{"last p", first(idx.LastPFrame()), second(idx.LastPFrame()), 27, true},
		{"i after", first(idx.IFrameAfter(10)), second(idx.IFrameAfter(10)), 20, true},
		{"i after last", first(idx.IFrameAfter(20)), second(idx.IFrameAfter(20)), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want || tt.gotOK != tt.wantOK {
				t.Errorf("got (%d, %v), want (%d, %v)", tt.got, tt.gotOK, tt.want, tt.wantOK)
			}
		})
	}
}

func first(v int, _ bool) int    { return v }
func second(_ int, ok bool) bool { return ok }

func TestIndex_NoIFrameBefore(t *testing.T) {
	idx := patternIndex("PBBIPBB")

	if _, ok := idx.IFramePosAtOrBefore(2); ok {
		t.Error("expected no I-frame at or before frame 2")
	}
	pos, ok := idx.IFramePosAtOrBefore(5)
	if !ok || idx.IFrameAt(pos) != 3 {
		t.Errorf("expected I-frame 3 at or before frame 5, got pos=%d ok=%v", pos, ok)
	}
}

func TestIndex_UnsortedInput(t *testing.T) {
	frames := []Frame{
		{Index: 4, Type: TypeP, Duration: 0.04, PTS: 0.16},
		{Index: 0, Type: TypeI, Duration: 0.04, PTS: 0},
		{Index: 2, Type: TypeB, Duration: 0.04, PTS: 0.08},
	}
	idx := NewIndex(frames)

	if got := idx.MaxFrame(); got != 4 {
		t.Errorf("MaxFrame: got %d, want 4", got)
	}
	if f, ok := idx.Lookup(2); !ok || f.Type != TypeB {
		t.Errorf("Lookup(2): got %+v ok=%v", f, ok)
	}
	if end, ok := idx.LegalEndAtOrAfter(1); !ok || end != 4 {
		t.Errorf("LegalEndAtOrAfter(1): got %d ok=%v, want 4", end, ok)
	}
}

func TestIndex_Empty(t *testing.T) {
	idx := NewIndex(nil)

	if !idx.Empty() {
		t.Error("expected empty index")
	}
	if got := idx.MaxFrame(); got != -1 {
		t.Errorf("MaxFrame: got %d, want -1", got)
	}
	if _, ok := idx.LegalEndAtOrAfter(0); ok {
		t.Error("expected no legal end in empty index")
	}
}

func TestIndex_PTS(t *testing.T) {
	idx := patternIndex("IPBBP")

	if pts, ok := idx.PTS(2); !ok || pts != 0.08 {
		t.Errorf("PTS(2): got %v ok=%v, want 0.08", pts, ok)
	}

	// One past the last frame extrapolates from the final duration.
	pts, ok := idx.PTS(5)
	if !ok {
		t.Fatal("PTS(5): expected extrapolated timestamp")
	}
	if diff := pts - 0.20; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("PTS(5): got %v, want 0.20", pts)
	}

	if _, ok := idx.PTS(7); ok {
		t.Error("PTS(7): expected no timestamp two past the end")
	}
}

func TestIndex_PTS_NoTimestamps(t *testing.T) {
	idx := NewIndex([]Frame{
		{Index: 0, Type: TypeI, Duration: 0.04, PTS: -1},
		{Index: 1, Type: TypeP, Duration: 0.04, PTS: -1},
	})

	if _, ok := idx.PTS(0); ok {
		t.Error("expected no timestamp when log carried none")
	}
	if _, ok := idx.PTS(2); ok {
		t.Error("expected no extrapolation when log carried no timestamps")
	}
}
