// Package validate checks a Solution against a Problem independently of
// the solver that produced it.
package validate

import (
	"github.com/matzehuels/minimalloc/pkg/alloc/buffer"
	"github.com/matzehuels/minimalloc/pkg/alloc/problem"
)

// Result is the closed set of validation outcomes, in the same numeric
// order the original implementation reports them in.
type Result int

const (
	Good Result = iota
	BadSolution
	BadFixed
	BadOffset
	BadOverlap
	BadAlignment
	BadHeight
)

func (r Result) String() string {
	switch r {
	case Good:
		return "Good"
	case BadSolution:
		return "BadSolution"
	case BadFixed:
		return "BadFixed"
	case BadOffset:
		return "BadOffset"
	case BadOverlap:
		return "BadOverlap"
	case BadAlignment:
		return "BadAlignment"
	case BadHeight:
		return "BadHeight"
	default:
		return "Unknown"
	}
}

// Validate checks that solution is a legal assignment for p: one offset
// per buffer, fixed offsets honored, every offset non-negative, aligned,
// and within capacity, no two simultaneously-live buffers overlapping in
// address space, and solution.Height matching the true maximum.
func Validate(p problem.Problem, solution problem.Solution) Result {
	if len(p.Buffers) != len(solution.Offsets) {
		return BadSolution
	}

	var maxHeight int64
	for i, b := range p.Buffers {
		offset := solution.Offsets[i]
		height := offset + b.Size
		if height > maxHeight {
			maxHeight = height
		}
		if b.Offset != nil && *b.Offset != offset {
			return BadFixed
		}
		if offset < 0 {
			return BadOffset
		}
		if height > p.Capacity {
			return BadOffset
		}
		if height > solution.Height {
			return BadHeight
		}
		if offset%b.Alignment != 0 {
			return BadAlignment
		}
	}
	if maxHeight != solution.Height {
		return BadHeight
	}

	for i := 0; i < len(p.Buffers); i++ {
		bi, oi := p.Buffers[i], solution.Offsets[i]
		for j := i + 1; j < len(p.Buffers); j++ {
			bj, oj := p.Buffers[j], solution.Offsets[j]
			if overlaps(bi, oi, bj, oj) {
				return BadOverlap
			}
		}
	}
	return Good
}

func overlaps(bi buffer.Buffer, oi int64, bj buffer.Buffer, oj int64) bool {
	sizeI, okI := bi.EffectiveSize(bj)
	if !okI || oi+sizeI <= oj {
		return false
	}
	sizeJ, okJ := bj.EffectiveSize(bi)
	if !okJ || oj+sizeJ <= oi {
		return false
	}
	return true
}
