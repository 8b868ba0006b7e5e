package tower

import (
	"github.com/matzehuels/minimalloc/pkg/alloc/buffer"
	"github.com/matzehuels/minimalloc/pkg/alloc/interval"
	"github.com/matzehuels/minimalloc/pkg/alloc/problem"
)

// Layout is the frame and block geometry produced from a solved problem,
// ready to hand to a Style for rendering.
type Layout struct {
	FrameWidth  float64
	FrameHeight float64
	Blocks      []Block
}

const defaultMargin = 0.0

// Build maps a solved Problem onto a Layout of the given pixel dimensions.
// Time (buffer lifespans) is scaled onto the horizontal axis; address
// space (offsets, bounded by capacity or the solution height) is scaled
// onto the vertical axis. A buffer with windowed gaps becomes one Block
// per maximal constant-window segment of its lifespan, producing the
// staircase shape those gaps describe.
func Build(p problem.Problem, sol problem.Solution, width, height float64) Layout {
	maxTime := maxLifespanUpper(p.Buffers)
	capacity := p.Capacity
	if capacity <= 0 {
		capacity = sol.Height
	}
	if maxTime == 0 || capacity == 0 {
		return Layout{FrameWidth: width, FrameHeight: height}
	}

	scaleX := width / float64(maxTime)
	scaleY := height / float64(capacity)

	var blocks []Block
	for i, b := range p.Buffers {
		offset := sol.Offsets[i]
		for _, seg := range segments(b) {
			blocks = append(blocks, Block{
				ID:     b.ID,
				Left:   float64(seg.lo) * scaleX,
				Right:  float64(seg.hi) * scaleX,
				Bottom: float64(offset+seg.window.Lower) * scaleY,
				Top:    float64(offset+seg.window.Upper) * scaleY,
			})
		}
	}

	return Layout{FrameWidth: width, FrameHeight: height, Blocks: blocks}
}

func maxLifespanUpper(buffers []buffer.Buffer) int64 {
	var max int64
	for _, b := range buffers {
		if b.Lifespan.Upper > max {
			max = b.Lifespan.Upper
		}
	}
	return max
}

// segment is a maximal sub-interval of a buffer's lifespan during which
// it occupies a constant address-space window. Gap.Window == nil
// intervals (the buffer inactive) produce no segment.
type segment struct {
	lo, hi int64
	window interval.Window
}

// segments walks a buffer's ordered, non-overlapping Gaps and returns one
// segment per maximal run of constant window, skipping inactive spans.
func segments(b buffer.Buffer) []segment {
	full := interval.New(0, b.Size)
	var segs []segment
	cursor := b.Lifespan.Lower

	for _, g := range b.Gaps {
		if g.Lifespan.Lower > cursor {
			segs = append(segs, segment{cursor, g.Lifespan.Lower, full})
		}
		if g.Window != nil {
			segs = append(segs, segment{g.Lifespan.Lower, g.Lifespan.Upper, *g.Window})
		}
		cursor = g.Lifespan.Upper
	}
	if cursor < b.Lifespan.Upper {
		segs = append(segs, segment{cursor, b.Lifespan.Upper, full})
	}
	return segs
}
