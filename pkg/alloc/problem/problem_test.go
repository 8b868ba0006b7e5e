package problem

import (
	"testing"

	"github.com/matzehuels/minimalloc/pkg/alloc/buffer"
	"github.com/matzehuels/minimalloc/pkg/alloc/interval"
)

func testProblem() Problem {
	return Problem{
		Buffers: []buffer.Buffer{
			buffer.New("a", interval.New(0, 5), 4),
			buffer.New("b", interval.New(0, 5), 6),
		},
		Capacity: 20,
	}
}

func TestHeightOf(t *testing.T) {
	p := testProblem()
	if got := HeightOf(p, []int64{0, 4}); got != 10 {
		t.Errorf("HeightOf = %d, want 10", got)
	}
}

func TestNewSolution(t *testing.T) {
	p := testProblem()
	sol := NewSolution(p, []int64{0, 4})
	if sol.Height != 10 {
		t.Errorf("Height = %d, want 10", sol.Height)
	}
	if len(sol.Offsets) != 2 || sol.Offsets[0] != 0 || sol.Offsets[1] != 4 {
		t.Errorf("Offsets = %v, want [0 4]", sol.Offsets)
	}
}

func TestNewSolutionCopiesOffsets(t *testing.T) {
	p := testProblem()
	offsets := []int64{0, 4}
	sol := NewSolution(p, offsets)
	offsets[0] = 99
	if sol.Offsets[0] != 0 {
		t.Error("NewSolution should copy the offsets slice, not alias it")
	}
}

func TestSelect(t *testing.T) {
	p := testProblem()
	sub := p.Select([]int{1})
	if len(sub.Buffers) != 1 || sub.Buffers[0].ID != "b" {
		t.Errorf("Select([1]) = %v, want only buffer b", sub.Buffers)
	}
	if sub.Capacity != p.Capacity {
		t.Error("Select should preserve capacity")
	}
}
