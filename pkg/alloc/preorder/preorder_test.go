package preorder

import (
	"slices"
	"testing"

	"github.com/matzehuels/minimalloc/pkg/alloc/buffer"
	"github.com/matzehuels/minimalloc/pkg/alloc/interval"
	"github.com/matzehuels/minimalloc/pkg/alloc/problem"
	"github.com/matzehuels/minimalloc/pkg/alloc/sweep"
)

func threeBufferProblem() problem.Problem {
	return problem.Problem{
		Buffers: []buffer.Buffer{
			buffer.New("small", interval.New(0, 2), 1),
			buffer.New("big", interval.New(0, 10), 8),
			buffer.New("mid", interval.New(0, 5), 4),
		},
		Capacity: 20,
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		heuristic string
		want      bool
	}{
		{"WAT", true},
		{"Z", true},
		{"", false},
		{"X", false},
		{"WaT", false},
	}
	for _, tt := range tests {
		if got := Valid(tt.heuristic); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.heuristic, got, tt.want)
		}
	}
}

func TestBuildDataAndComparatorOrdersByWidthDescending(t *testing.T) {
	p := threeBufferProblem()
	result := sweep.Sweep(p)
	data := BuildData(result.Partitions[0], p.Buffers, result.Sections, result.BufferData)

	slices.SortFunc(data, Comparator("W"))

	var order []string
	for _, d := range data {
		order = append(order, p.Buffers[d.BufferIdx].ID)
	}
	want := []string{"big", "mid", "small"}
	if !slices.Equal(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

// TestBuildDataSectionsSpannedCountsAcrossHoles is a regression test: a
// non-windowed gap punches a hole in a buffer's section spans, but the
// buffer still occupies that address range once placed, so SectionsSpanned
// must count the full extent from its first span to its last rather than
// summing the individual (holed) span widths.
func TestBuildDataSectionsSpannedCountsAcrossHoles(t *testing.T) {
	c := buffer.New("c", interval.New(0, 30), 1)
	b := buffer.New("b", interval.New(0, 30), 1)
	b.Gaps = []buffer.Gap{{Lifespan: interval.New(10, 20)}}

	p := problem.Problem{Buffers: []buffer.Buffer{c, b}, Capacity: 2}
	result := sweep.Sweep(p)
	data := BuildData(result.Partitions[0], p.Buffers, result.Sections, result.BufferData)

	for _, d := range data {
		if d.SectionsSpanned != int64(len(result.Sections)) {
			t.Errorf("buffer %q: SectionsSpanned = %d, want %d (full extent incl. hole)",
				p.Buffers[d.BufferIdx].ID, d.SectionsSpanned, len(result.Sections))
		}
	}
}

func TestComparatorTieBreaksOnBufferIdx(t *testing.T) {
	data := []Data{
		{BufferIdx: 2, Size: 5},
		{BufferIdx: 0, Size: 5},
		{BufferIdx: 1, Size: 5},
	}
	slices.SortFunc(data, Comparator("Z"))

	var order []int
	for _, d := range data {
		order = append(order, d.BufferIdx)
	}
	want := []int{0, 1, 2}
	if !slices.Equal(order, want) {
		t.Errorf("order = %v, want %v (ties break on BufferIdx ascending)", order, want)
	}
}

func TestDefaultHeuristicsAreValid(t *testing.T) {
	for _, h := range DefaultHeuristics {
		if !Valid(h) {
			t.Errorf("default heuristic %q is not valid", h)
		}
	}
}
