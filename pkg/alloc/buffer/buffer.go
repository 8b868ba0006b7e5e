// Package buffer defines the Buffer and Gap types and the effective-size
// predicate between two buffers.
package buffer

import (
	"slices"

	"github.com/matzehuels/minimalloc/pkg/alloc/interval"
)

// Gap is a sub-interval of a buffer's lifespan during which the buffer is
// either entirely inactive (Window == nil) or restricted to a narrower
// window of addresses (Window != nil), used to model "tetris"/stair
// shapes.
type Gap struct {
	Lifespan interval.Lifespan
	Window   *interval.Window
}

// Buffer is a rectangle (or staircase, if it has windowed gaps) in
// time x address space requesting a base offset.
type Buffer struct {
	// ID is unique and used for I/O and tie-breaking only; it plays no
	// algorithmic role beyond that.
	ID string

	Lifespan  interval.Lifespan
	Size      int64
	Alignment int64 // >= 1; defaults to 1 when constructed via New.
	Gaps      []Gap // ordered, non-overlapping, each inside Lifespan.

	Offset *int64 // fixed offset: any feasible assignment must equal this.
	Hint   *int64 // preferred offset; advisory only, never read by the solver.
}

// New returns a Buffer with Alignment defaulted to 1.
func New(id string, lifespan interval.Lifespan, size int64) Buffer {
	return Buffer{ID: id, Lifespan: lifespan, Size: size, Alignment: 1}
}

// Area is size x (lifespan width).
func (b Buffer) Area() int64 {
	return b.Size * b.Lifespan.Width()
}

// windowAt returns the window the buffer occupies at time t, and whether
// the buffer is active (occupying any space) at all at t. Outside of any
// gap the buffer occupies its full [0, Size) window.
func (b Buffer) windowAt(t int64) (interval.Window, bool) {
	for _, g := range b.Gaps {
		if g.Lifespan.Contains(t) {
			if g.Window == nil {
				return interval.Interval{}, false
			}
			return *g.Window, true
		}
	}
	return interval.New(0, b.Size), true
}

// breakpoints returns the sorted, deduplicated gap boundaries of b that
// fall strictly inside (lo, hi).
func (b Buffer) breakpoints(lo, hi int64) []int64 {
	var pts []int64
	for _, g := range b.Gaps {
		if g.Lifespan.Lower > lo && g.Lifespan.Lower < hi {
			pts = append(pts, g.Lifespan.Lower)
		}
		if g.Lifespan.Upper > lo && g.Lifespan.Upper < hi {
			pts = append(pts, g.Lifespan.Upper)
		}
	}
	return pts
}

// EffectiveSize returns the vertical extent b occupies while other is
// simultaneously live, i.e. the supremum over every maximal sub-interval
// of simultaneous liveness of (b's current window upper bound - other's
// current window lower bound). The second return value is false if b and
// other are never simultaneously live (respecting gaps), in which case
// the first return value is meaningless.
//
// Invariant: when defined, EffectiveSize(other) <= b.Size.
func (b Buffer) EffectiveSize(other Buffer) (int64, bool) {
	lo := max(b.Lifespan.Lower, other.Lifespan.Lower)
	hi := min(b.Lifespan.Upper, other.Lifespan.Upper)
	if lo >= hi {
		return 0, false
	}

	pts := append([]int64{lo, hi}, b.breakpoints(lo, hi)...)
	pts = append(pts, other.breakpoints(lo, hi)...)
	slices.Sort(pts)
	pts = slices.Compact(pts)

	var best int64
	found := false
	for i := 0; i+1 < len(pts); i++ {
		t0, t1 := pts[i], pts[i+1]
		if t0 >= t1 {
			continue
		}
		wSelf, activeSelf := b.windowAt(t0)
		wOther, activeOther := other.windowAt(t0)
		if !activeSelf || !activeOther {
			continue
		}
		candidate := wSelf.Upper - wOther.Lower
		if !found || candidate > best {
			best = candidate
			found = true
		}
	}
	return best, found
}
