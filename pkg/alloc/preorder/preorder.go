// Package preorder implements the parameterized total order over buffers
// used for static preordering.
package preorder

import (
	"cmp"

	"github.com/matzehuels/minimalloc/pkg/alloc/buffer"
	"github.com/matzehuels/minimalloc/pkg/alloc/sweep"
)

// Data is the per-buffer record the comparator sorts over.
type Data struct {
	BufferIdx        int
	Area             int64
	SectionsSpanned  int64
	LifespanLower    int64
	LifespanUpper    int64
	LifespanWidth    int64
	OverlapCount     int64
	MaxSectionTotal  int64
	Size             int64
}

// BuildData computes a Data record for every buffer in a partition.
// sections and bufferData come from the same sweep.Result the partition
// was derived from.
func BuildData(partition sweep.Partition, buffers []buffer.Buffer, sections []sweep.Section, bufferData []sweep.BufferData) []Data {
	sectionTotal := make([]int64, len(sections))
	for s, sec := range sections {
		var total int64
		for _, idx := range sec.Buffers {
			w := sec.Windows[idx]
			total += w.Width()
		}
		sectionTotal[s] = total
	}

	data := make([]Data, len(partition.BufferIdxs))
	for i, idx := range partition.BufferIdxs {
		b := buffers[idx]
		bd := bufferData[idx]

		var maxTotal int64
		for _, span := range bd.SectionSpans {
			for s := span.Range.Lower; s < span.Range.Upper; s++ {
				if t := sectionTotal[s]; t > maxTotal {
					maxTotal = t
				}
			}
		}
		var spanned int64
		if lo, hi, ok := bd.FullExtent(); ok {
			spanned = hi - lo
		}

		data[i] = Data{
			BufferIdx:       idx,
			Area:            b.Area(),
			SectionsSpanned: spanned,
			LifespanLower:   b.Lifespan.Lower,
			LifespanUpper:   b.Lifespan.Upper,
			LifespanWidth:   b.Lifespan.Width(),
			OverlapCount:    int64(len(bd.Overlaps)),
			MaxSectionTotal: maxTotal,
			Size:            b.Size,
		}
	}
	return data
}

// keyFuncs maps each heuristic character to a descending sort key
// extractor. All keys are evaluated descending (larger first); the final
// tie-break is always BufferIdx ascending, applied by Comparator.
var keyFuncs = map[byte]func(Data) int64{
	'A': func(d Data) int64 { return d.Area },
	'C': func(d Data) int64 { return d.SectionsSpanned },
	'L': func(d Data) int64 { return d.LifespanLower },
	'O': func(d Data) int64 { return d.OverlapCount },
	'T': func(d Data) int64 { return d.MaxSectionTotal },
	'U': func(d Data) int64 { return d.LifespanUpper },
	'W': func(d Data) int64 { return d.LifespanWidth },
	'Z': func(d Data) int64 { return d.Size },
}

// Valid reports whether heuristic is a non-empty string of recognized
// key characters.
func Valid(heuristic string) bool {
	if heuristic == "" {
		return false
	}
	for i := 0; i < len(heuristic); i++ {
		if _, ok := keyFuncs[heuristic[i]]; !ok {
			return false
		}
	}
	return true
}

// Comparator returns a comparison function implementing the priority
// chain named by heuristic (e.g. "WAT": width, then area, then max
// section total, each descending), falling through ties to BufferIdx
// ascending.
func Comparator(heuristic string) func(a, b Data) int {
	keys := make([]func(Data) int64, len(heuristic))
	for i := 0; i < len(heuristic); i++ {
		keys[i] = keyFuncs[heuristic[i]]
	}
	return func(a, b Data) int {
		for _, key := range keys {
			if c := cmp.Compare(key(b), key(a)); c != 0 { // descending
				return c
			}
		}
		return cmp.Compare(a.BufferIdx, b.BufferIdx)
	}
}

// DefaultHeuristics are the heuristics tried round-robin when the caller
// does not configure its own.
var DefaultHeuristics = []string{"WAT", "TAW", "TWA"}
