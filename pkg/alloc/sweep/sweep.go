// Package sweep turns a Problem into the section/partition/overlap
// structure the solver searches over.
package sweep

import (
	"slices"

	"github.com/matzehuels/minimalloc/pkg/alloc/buffer"
	"github.com/matzehuels/minimalloc/pkg/alloc/interval"
	"github.com/matzehuels/minimalloc/pkg/alloc/problem"
)

// Section is a maximal sub-interval of time throughout which the set of
// active buffers, and each active buffer's occupied window, is constant.
// Sections are ordered by time.
type Section struct {
	Interval interval.Interval
	Buffers  []int // active buffer indices, ascending
	Windows  map[int]interval.Window
}

// SectionSpan is a contiguous run of sections (by index, half-open) during
// which a buffer actively occupies a constant Window. Non-windowed gaps
// produce holes in a buffer's span list; windowed gaps produce a span
// with a narrower window.
type SectionSpan struct {
	Range  interval.Interval
	Window interval.Window
}

// Overlap records that Other shares at least one moment of liveness with
// this buffer, directional: EffectiveSize is this buffer's effective size
// given Other.
type Overlap struct {
	Other         int
	EffectiveSize int64
}

// BufferData holds the sweep-derived structure for one buffer.
type BufferData struct {
	SectionSpans []SectionSpan
	Overlaps     []Overlap
}

// FullExtent returns the section-index range a buffer is live across,
// from the start of its first span to the end of its last, including any
// holes a non-windowed gap punches out in between. A buffer with no
// spans returns ok=false.
func (d BufferData) FullExtent() (lo, hi int64, ok bool) {
	if len(d.SectionSpans) == 0 {
		return 0, 0, false
	}
	lo, hi = d.SectionSpans[0].Range.Lower, d.SectionSpans[0].Range.Upper
	for _, span := range d.SectionSpans[1:] {
		if span.Range.Lower < lo {
			lo = span.Range.Lower
		}
		if span.Range.Upper > hi {
			hi = span.Range.Upper
		}
	}
	return lo, hi, true
}

// Partition is a maximal contiguous block of sections whose buffers never
// interact (never simultaneously live) with buffers outside the block.
// Partitions are solved independently.
type Partition struct {
	BufferIdxs   []int
	SectionRange interval.Interval // half-open range of section indices
}

// Result is the output of Sweep: everything the solver needs.
type Result struct {
	Sections   []Section
	Partitions []Partition
	BufferData []BufferData
}

// region is a maximal sub-interval of a single buffer's lifespan during
// which the buffer's active state (and, if active, its window) is
// constant.
type region struct {
	interval.Interval
	window interval.Window
	active bool
}

// regionsOf partitions b's lifespan into alternating active/inactive
// regions according to its gaps. Gaps are assumed ordered and
// non-overlapping, each inside the buffer's lifespan, per the data
// model's invariant; malformed input is the caller's responsibility.
func regionsOf(b buffer.Buffer) []region {
	var regions []region
	cursor := b.Lifespan.Lower
	defaultWindow := interval.New(0, b.Size)

	for _, g := range b.Gaps {
		if cursor < g.Lifespan.Lower {
			regions = append(regions, region{interval.New(cursor, g.Lifespan.Lower), defaultWindow, true})
		}
		if g.Window != nil {
			regions = append(regions, region{g.Lifespan, *g.Window, true})
		} else {
			regions = append(regions, region{g.Lifespan, interval.Interval{}, false})
		}
		cursor = g.Lifespan.Upper
	}
	if cursor < b.Lifespan.Upper {
		regions = append(regions, region{interval.New(cursor, b.Lifespan.Upper), defaultWindow, true})
	}
	return regions
}

// activeAt returns the window active at time t, if any.
func activeAt(regions []region, t int64) (interval.Window, bool) {
	for _, r := range regions {
		if r.Contains(t) {
			return r.window, r.active
		}
	}
	return interval.Interval{}, false
}

// Sweep builds the Result for p. It never fails; malformed input
// (overlapping gaps, reversed intervals) is the caller's responsibility.
func Sweep(p problem.Problem) Result {
	buffers := p.Buffers
	n := len(buffers)

	regionsByBuffer := make([][]region, n)
	for i, b := range buffers {
		regionsByBuffer[i] = regionsOf(b)
	}

	breakpoints := collectBreakpoints(regionsByBuffer)
	sections := buildSections(buffers, regionsByBuffer, breakpoints)
	bufferData := buildBufferData(n, sections)
	partitions := buildPartitions(buffers, bufferData)

	computeOverlaps(buffers, partitions, bufferData)

	return Result{Sections: sections, Partitions: partitions, BufferData: bufferData}
}

func collectBreakpoints(regionsByBuffer [][]region) []int64 {
	var pts []int64
	for _, regions := range regionsByBuffer {
		for _, r := range regions {
			pts = append(pts, r.Lower, r.Upper)
		}
	}
	slices.Sort(pts)
	return slices.Compact(pts)
}

func buildSections(buffers []buffer.Buffer, regionsByBuffer [][]region, breakpoints []int64) []Section {
	var sections []Section
	for k := 0; k+1 < len(breakpoints); k++ {
		t0, t1 := breakpoints[k], breakpoints[k+1]
		if t0 >= t1 {
			continue
		}
		windows := map[int]interval.Window{}
		for i, b := range buffers {
			if b.Lifespan.Lower > t0 || b.Lifespan.Upper < t1 {
				continue
			}
			if w, active := activeAt(regionsByBuffer[i], t0); active {
				windows[i] = w
			}
		}
		if len(windows) == 0 {
			continue
		}
		idxs := make([]int, 0, len(windows))
		for i := range windows {
			idxs = append(idxs, i)
		}
		slices.Sort(idxs)
		sections = append(sections, Section{
			Interval: interval.New(t0, t1),
			Buffers:  idxs,
			Windows:  windows,
		})
	}
	return sections
}

func buildBufferData(n int, sections []Section) []BufferData {
	data := make([]BufferData, n)
	open := make([]int, n) // section idx where the current run started, or -1
	for i := range open {
		open[i] = -1
	}
	var runWindow []interval.Window
	runWindow = make([]interval.Window, n)

	flush := func(i, endSection int) {
		if open[i] < 0 {
			return
		}
		data[i].SectionSpans = append(data[i].SectionSpans, SectionSpan{
			Range:  interval.New(int64(open[i]), int64(endSection)),
			Window: runWindow[i],
		})
		open[i] = -1
	}

	for s, sec := range sections {
		present := make(map[int]bool, len(sec.Buffers))
		for _, i := range sec.Buffers {
			present[i] = true
			w := sec.Windows[i]
			if open[i] >= 0 && runWindow[i] == w {
				continue // extend current run
			}
			flush(i, s)
			open[i] = s
			runWindow[i] = w
		}
		for i := 0; i < n; i++ {
			if open[i] >= 0 && !present[i] {
				flush(i, s)
			}
		}
	}
	for i := 0; i < n; i++ {
		flush(i, len(sections))
	}
	return data
}

func buildPartitions(buffers []buffer.Buffer, bufferData []BufferData) []Partition {
	n := len(buffers)
	if n == 0 {
		return nil
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int {
		return interval.Compare(buffers[a].Lifespan, buffers[b].Lifespan)
	})

	var partitions []Partition
	var current []int
	maxUpper := buffers[order[0]].Lifespan.Upper

	flush := func() {
		if len(current) == 0 {
			return
		}
		slices.Sort(current)
		partitions = append(partitions, Partition{BufferIdxs: current})
		current = nil
	}

	for k, idx := range order {
		if k > 0 && buffers[idx].Lifespan.Lower >= maxUpper {
			flush()
			maxUpper = buffers[idx].Lifespan.Upper
		} else if buffers[idx].Lifespan.Upper > maxUpper {
			maxUpper = buffers[idx].Lifespan.Upper
		}
		current = append(current, idx)
	}
	flush()

	for p, part := range partitions {
		lo, hi := int64(-1), int64(-1)
		for _, idx := range part.BufferIdxs {
			for _, span := range bufferData[idx].SectionSpans {
				if lo < 0 || span.Range.Lower < lo {
					lo = span.Range.Lower
				}
				if hi < 0 || span.Range.Upper > hi {
					hi = span.Range.Upper
				}
			}
		}
		if lo < 0 {
			lo, hi = 0, 0
		}
		partitions[p].SectionRange = interval.New(lo, hi)
	}
	return partitions
}

func computeOverlaps(buffers []buffer.Buffer, partitions []Partition, bufferData []BufferData) {
	for _, part := range partitions {
		idxs := part.BufferIdxs
		for a := 0; a < len(idxs); a++ {
			for b := a + 1; b < len(idxs); b++ {
				i, j := idxs[a], idxs[b]
				bi, bj := buffers[i], buffers[j]
				if !bi.Lifespan.Overlaps(bj.Lifespan) {
					continue
				}
				if size, ok := bi.EffectiveSize(bj); ok {
					bufferData[i].Overlaps = append(bufferData[i].Overlaps, Overlap{Other: j, EffectiveSize: size})
				}
				if size, ok := bj.EffectiveSize(bi); ok {
					bufferData[j].Overlaps = append(bufferData[j].Overlaps, Overlap{Other: i, EffectiveSize: size})
				}
			}
		}
	}
}

// CalculateCuts returns, for each adjacent section pair (k, k+1), the
// number of buffers whose full liveness extent encloses the pair: some
// buffer has FullExtent().lo <= k and FullExtent().hi >= k+2. The extent
// spans a buffer's first span to its last, so a non-windowed gap's hole
// still counts as crossing every interior boundary — a buffer is only
// done straddling a cut once it has actually been placed, not once its
// last visible span ends. Used for dynamic decomposition: a zero entry
// marks section boundary k+1 as a cutpoint.
func (r Result) CalculateCuts() []int {
	if len(r.Sections) == 0 {
		return nil
	}
	cuts := make([]int, len(r.Sections)-1)
	for _, data := range r.BufferData {
		lo, hi, ok := data.FullExtent()
		if !ok {
			continue
		}
		for k := lo; k < hi-1 && int(k) < len(cuts); k++ {
			cuts[k]++
		}
	}
	return cuts
}
