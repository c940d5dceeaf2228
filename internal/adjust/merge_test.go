package adjust

import "testing"

func TestMerge(t *testing.T) {
	tests := []struct {
		name   string
		in     []Range
		minGap int
		want   []Range
	}{
		{
			"gap below threshold merges",
			[]Range{{0, 100}, {150, 200}, {400, 500}},
			100,
			[]Range{{0, 200}, {400, 500}},
		},
		{
			"gap at threshold survives",
			[]Range{{0, 100}, {200, 300}},
			100,
			[]Range{{0, 100}, {200, 300}},
		},
		{
			"overlap collapses",
			[]Range{{0, 100}, {50, 80}},
			0,
			[]Range{{0, 100}},
		},
		{
			"contained range absorbed",
			[]Range{{0, 500}, {100, 200}, {300, 700}},
			10,
			[]Range{{0, 700}},
		},
		{
			"unsorted input sorted first",
			[]Range{{400, 500}, {0, 100}, {150, 200}},
			100,
			[]Range{{0, 200}, {400, 500}},
		},
		{
			"chain of merges",
			[]Range{{0, 10}, {15, 25}, {30, 40}},
			10,
			[]Range{{0, 40}},
		},
		{
			"single range untouched",
			[]Range{{10, 20}},
			100,
			[]Range{{10, 20}},
		},
		{
			"empty input",
			nil,
			100,
			[]Range{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.in, true, tt.minGap)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("range %d: got %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

// Merged output must cover every input frame and keep surviving ranges at
// least minGap apart.
func TestMerge_Invariants(t *testing.T) {
	in := []Range{{300, 320}, {0, 50}, {60, 100}, {90, 130}, {340, 400}, {135, 140}}
	const minGap = 20

	got := Merge(in, true, minGap)

	for _, r := range in {
		covered := false
		for _, m := range got {
			if m.Start <= r.Start && r.End <= m.End {
				covered = true
				break
			}
		}
		if !covered {
			t.Errorf("input %s not covered by %v", r, got)
		}
	}
	for i := 1; i < len(got); i++ {
		if got[i].Start <= got[i-1].Start {
			t.Errorf("output not sorted: %v", got)
		}
		if got[i].Start-got[i-1].End < minGap {
			t.Errorf("ranges %s and %s closer than %d frames", got[i-1], got[i], minGap)
		}
	}
}

func TestMerge_Disabled(t *testing.T) {
	in := []Range{{400, 500}, {0, 100}, {50, 80}}

	got := Merge(in, false, 100)
	if len(got) != len(in) {
		t.Fatalf("disabled merge changed length: got %d, want %d", len(got), len(in))
	}
	for i := range in {
		if got[i] != in[i] {
			t.Errorf("range %d: got %s, want %s", i, got[i], in[i])
		}
	}

	// The returned slice is a copy; mutating it must not touch the input.
	got[0].Start = 999
	if in[0].Start != 400 {
		t.Error("disabled merge returned the input slice instead of a copy")
	}
}
