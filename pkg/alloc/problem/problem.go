// Package problem defines the Problem and Solution value types consumed
// and produced by the solver.
package problem

import "github.com/matzehuels/minimalloc/pkg/alloc/buffer"

// Problem is an input value: a set of buffers and a capacity bound. It is
// consumed read-only by the solver.
type Problem struct {
	Buffers  []buffer.Buffer
	Capacity int64
}

// Solution is produced per solve invocation: one offset per buffer, in
// Problem order, plus the resulting height.
type Solution struct {
	Offsets []int64
	Height  int64
}

// HeightOf computes max(offsets[i] + buffers[i].Size) over the problem's
// buffers, the definition of Solution.Height.
func HeightOf(p Problem, offsets []int64) int64 {
	var height int64
	for i, b := range p.Buffers {
		if top := offsets[i] + b.Size; top > height {
			height = top
		}
	}
	return height
}

// NewSolution builds a Solution from a set of offsets, computing Height
// via HeightOf.
func NewSolution(p Problem, offsets []int64) Solution {
	return Solution{Offsets: append([]int64(nil), offsets...), Height: HeightOf(p, offsets)}
}

// Select returns the sub-problem containing only the buffers at the
// given indices, preserving relative order. Used by IIS computation.
func (p Problem) Select(idxs []int) Problem {
	buffers := make([]buffer.Buffer, len(idxs))
	for i, idx := range idxs {
		buffers[i] = p.Buffers[idx]
	}
	return Problem{Buffers: buffers, Capacity: p.Capacity}
}
