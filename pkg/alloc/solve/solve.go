// Package solve implements the depth-first branch-and-bound solver: its
// incremental per-partition state, the nine pruning/inference
// techniques, round-robin heuristic scheduling, irreducible infeasible
// subset computation, and optional capacity minimization.
package solve

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/matzehuels/minimalloc/pkg/alloc/buffer"
	"github.com/matzehuels/minimalloc/pkg/alloc/preorder"
	"github.com/matzehuels/minimalloc/pkg/alloc/problem"
	"github.com/matzehuels/minimalloc/pkg/alloc/sweep"
)

// Status is the solver's closed set of outcomes. Aborted is an internal
// signal used by round-robin scheduling and never surfaces to callers of
// Solve.
type Status int

const (
	StatusOk Status = iota
	StatusNotFound
	StatusDeadlineExceeded
	StatusAborted
)

func (s Status) String() string {
	switch s {
	case StatusOk:
		return "Ok"
	case StatusNotFound:
		return "NotFound"
	case StatusDeadlineExceeded:
		return "DeadlineExceeded"
	case StatusAborted:
		return "Aborted"
	default:
		return "Unknown"
	}
}

// SolverParams configures the nine pruning/inference techniques and the
// preordering heuristics to try.
type SolverParams struct {
	Timeout time.Duration

	CanonicalOnly        bool
	SectionInference     bool
	DynamicOrdering      bool
	CheckDominance       bool
	UnallocatedFloor     bool
	StaticPreordering    bool
	DynamicDecomposition bool
	MonotonicFloor       bool
	HatlessPruning       bool

	PreorderingHeuristics []string
}

// DefaultParams enables every pruning technique and the default
// heuristic round robin ("WAT", "TAW", "TWA").
func DefaultParams() SolverParams {
	return SolverParams{
		CanonicalOnly:         true,
		SectionInference:      true,
		DynamicOrdering:       true,
		CheckDominance:        true,
		UnallocatedFloor:      true,
		StaticPreordering:     true,
		DynamicDecomposition:  true,
		MonotonicFloor:        true,
		HatlessPruning:        true,
		PreorderingHeuristics: append([]string(nil), preorder.DefaultHeuristics...),
	}
}

const unassigned = -1

// Solver is reusable across calls; Backtracks resets on every Solve (or
// ComputeIrreducibleInfeasibleSubset) entry.
type Solver struct {
	params       SolverParams
	backtracks   int
	nodesVisited int

	// OnProgress, if set, is called periodically during the search with
	// the running node and backtrack counts. It must return quickly;
	// the DFS calls it synchronously from its own goroutine.
	OnProgress func(nodesVisited, backtracks int)
}

// progressInterval is how many DFS frames elapse between OnProgress calls.
const progressInterval = 256

// NewSolver constructs a Solver with the given parameters.
func NewSolver(params SolverParams) *Solver {
	return &Solver{params: params}
}

// Params returns the solver's configuration.
func (s *Solver) Params() SolverParams {
	return s.params
}

// Backtracks returns the backtrack count recorded by the most recent
// Solve or ComputeIrreducibleInfeasibleSubset call.
func (s *Solver) Backtracks() int {
	return s.backtracks
}

// Solve searches for a feasible offset assignment for p, partition by
// partition. The backtrack counter is reset at entry.
func (s *Solver) Solve(ctx context.Context, p problem.Problem) (problem.Solution, Status) {
	s.backtracks = 0
	s.nodesVisited = 0
	result := sweep.Sweep(p)
	return s.solveWithSweep(ctx, p, result, time.Now())
}

// solveWithStart behaves like Solve but measures the timeout against a
// caller-supplied start time instead of the call's own wall-clock entry,
// so a sequence of sub-solves (as in ComputeIrreducibleInfeasibleSubset)
// can share a single deadline instead of each restarting the clock.
func (s *Solver) solveWithStart(ctx context.Context, p problem.Problem, start time.Time) (problem.Solution, Status) {
	result := sweep.Sweep(p)
	return s.solveWithSweep(ctx, p, result, start)
}

// solveWithSweep solves p reusing an already-computed sweep Result; used
// directly by capacity minimization, which only varies p.Capacity across
// iterations.
func (s *Solver) solveWithSweep(ctx context.Context, p problem.Problem, result sweep.Result, start time.Time) (problem.Solution, Status) {
	if ctx == nil {
		ctx = context.Background()
	}
	offsets := make([]int64, len(p.Buffers))
	for i := range offsets {
		offsets[i] = unassigned
	}

	for _, part := range result.Partitions {
		status := s.solvePartition(ctx, p, result, part, start, offsets)
		if status != StatusOk {
			return problem.Solution{}, status
		}
	}
	return problem.NewSolution(p, offsets), StatusOk
}

// solvePartition runs the node-budgeted round-robin heuristic schedule
// (spec section 4.5) for one partition, writing its buffers' final
// offsets into solutionOut on success.
func (s *Solver) solvePartition(ctx context.Context, p problem.Problem, result sweep.Result, part sweep.Partition, start time.Time, solutionOut []int64) Status {
	heuristics := s.params.PreorderingHeuristics
	if !s.params.StaticPreordering || len(heuristics) == 0 {
		return s.attempt(ctx, p, result, part, start, solutionOut, "", -1)
	}
	if len(heuristics) == 1 {
		return s.attempt(ctx, p, result, part, start, solutionOut, heuristics[0], -1)
	}

	nodeLimit := len(part.BufferIdxs)
	if nodeLimit <= 0 {
		nodeLimit = 1
	}
	for {
		for _, h := range heuristics {
			status := s.attempt(ctx, p, result, part, start, solutionOut, h, nodeLimit)
			if status != StatusAborted {
				return status
			}
		}
		nodeLimit *= 2
	}
}

// attempt runs one full DFS search of part using the named heuristic
// (empty string means input order) with the given node budget (negative
// means unbounded).
func (s *Solver) attempt(ctx context.Context, p problem.Problem, result sweep.Result, part sweep.Partition, start time.Time, solutionOut []int64, heuristic string, nodeLimit int) Status {
	n := len(p.Buffers)
	a := &attemptState{
		solver:       s,
		buffers:      p.Buffers,
		sections:     result.Sections,
		bufferData:   result.BufferData,
		offsets:      make([]int64, n),
		result:       solutionOut,
		minOffsets:   make([]int64, n),
		sectionFloor: make([]int64, len(result.Sections)),
		sectionTotal: make([]int64, len(result.Sections)),
		cuts:         result.CalculateCuts(),
		capacity:     p.Capacity,
		start:        start,
		timeout:      s.params.Timeout,
		hasTimeout:   s.params.Timeout > 0,
		ctx:          ctx,
	}
	if nodeLimit >= 0 {
		a.nodesRemaining = nodeLimit
	} else {
		a.nodesRemaining = int(^uint(0) >> 1) // unbounded
	}

	for i := range a.offsets {
		a.offsets[i] = unassigned
	}
	for i, b := range p.Buffers {
		if b.Offset != nil {
			a.minOffsets[i] = *b.Offset
		}
	}
	for secIdx, sec := range result.Sections {
		var total int64
		for _, idx := range sec.Buffers {
			total += sec.Windows[idx].Width()
		}
		a.sectionTotal[secIdx] = total
	}

	a.preordering, a.preorderPos = buildPreordering(part, p.Buffers, result, heuristic, s.params.StaticPreordering)

	sc := scope{idxs: part.BufferIdxs, secLo: part.SectionRange.Lower, secHi: part.SectionRange.Upper}
	status := a.search(sc, 0, 0)
	if status == StatusOk {
		for _, idx := range part.BufferIdxs {
			solutionOut[idx] = a.result[idx]
		}
	}
	return status
}

func buildPreordering(part sweep.Partition, buffers []buffer.Buffer, result sweep.Result, heuristic string, staticPreordering bool) ([]int, map[int]int) {
	order := make([]int, len(part.BufferIdxs))
	if staticPreordering && heuristic != "" {
		data := preorder.BuildData(part, buffers, result.Sections, result.BufferData)
		slices.SortFunc(data, preorder.Comparator(heuristic))
		for i, d := range data {
			order[i] = d.BufferIdx
		}
	} else {
		copy(order, part.BufferIdxs)
	}
	pos := make(map[int]int, len(order))
	for i, idx := range order {
		pos[idx] = i
	}
	return order, pos
}

// scope is the set of buffer indices and section-index range a search
// call operates within. The top-level call for a partition scopes to the
// whole partition; dynamic decomposition narrows it to sub-partitions.
type scope struct {
	idxs  []int
	secLo int64
	secHi int64
}

type changeKind int

const (
	kindMinOffset changeKind = iota
	kindFloor
	kindTotal
	kindCut
)

type change struct {
	kind    changeKind
	idx     int
	prevInt int64
}

// attemptState is the mutable state of one DFS attempt (one heuristic,
// one partition). Backtracking undoes scalar changes recorded in
// journal; no state is ever deep-copied.
type attemptState struct {
	solver *Solver

	buffers    []buffer.Buffer
	sections   []sweep.Section
	bufferData []sweep.BufferData

	offsets []int64 // trial assignment, sentinel `unassigned`
	result  []int64 // captured final assignment, written once per leaf

	minOffsets   []int64
	sectionFloor []int64
	sectionTotal []int64
	cuts         []int
	journal      []change

	capacity int64

	nodesRemaining int
	start          time.Time
	timeout        time.Duration
	hasTimeout     bool
	ctx            context.Context

	preordering []int
	preorderPos map[int]int
}

type candidate struct {
	bufIdx      int
	minOffset   int64
	preorderIdx int
}

// search is one DFS frame over scope. minOffsetArg/minPreorderIdxArg are
// the canonical-only filter bounds inherited from the caller.
func (a *attemptState) search(sc scope, minOffsetArg int64, minPreorderIdxArg int) Status {
	if a.nodesRemaining <= 0 {
		return StatusAborted
	}
	select {
	case <-a.ctx.Done():
		return StatusDeadlineExceeded
	default:
	}
	if a.hasTimeout && time.Since(a.start) > a.timeout {
		return StatusDeadlineExceeded
	}
	a.nodesRemaining--
	a.solver.nodesVisited++
	if a.solver.OnProgress != nil && a.solver.nodesVisited%progressInterval == 0 {
		a.solver.OnProgress(a.solver.nodesVisited, a.solver.backtracks)
	}

	inScope := make(map[int]bool, len(sc.idxs))
	for _, idx := range sc.idxs {
		inScope[idx] = true
	}

	var candidates []candidate
	for pos, bufIdx := range a.preordering {
		if !inScope[bufIdx] || a.offsets[bufIdx] != unassigned {
			continue
		}
		candidates = append(candidates, candidate{bufIdx, a.minOffsets[bufIdx], pos})
	}

	if len(candidates) == 0 {
		for _, idx := range sc.idxs {
			a.result[idx] = a.offsets[idx]
		}
		return StatusOk
	}

	params := a.solver.params
	if params.DynamicOrdering {
		slices.SortFunc(candidates, func(x, y candidate) int {
			if c := cmp.Compare(x.minOffset, y.minOffset); c != 0 {
				return c
			}
			return cmp.Compare(x.preorderIdx, y.preorderIdx)
		})
	}

	minHeight := candidates[0].minOffset + a.buffers[candidates[0].bufIdx].Size
	for _, c := range candidates[1:] {
		if h := c.minOffset + a.buffers[c.bufIdx].Size; h < minHeight {
			minHeight = h
		}
	}

	for _, cand := range candidates {
		bufIdx, offsetVal, preorderIdx := cand.bufIdx, cand.minOffset, cand.preorderIdx
		b := a.buffers[bufIdx]

		if params.CanonicalOnly {
			if offsetVal < minOffsetArg || (offsetVal == minOffsetArg && preorderIdx < minPreorderIdxArg) {
				continue
			}
		}
		if params.CheckDominance && offsetVal >= minHeight {
			continue
		}
		if b.Offset != nil && offsetVal > *b.Offset {
			continue
		}

		mark := len(a.journal)
		a.offsets[bufIdx] = offsetVal

		hatless, fixedFail, affected := a.updateMinOffsets(bufIdx, offsetVal)
		if !fixedFail {
			a.updateSectionData(bufIdx, offsetVal, affected)
		}

		var status Status
		switch {
		case fixedFail || !a.check(sc, offsetVal):
			status = StatusNotFound
		case params.DynamicDecomposition:
			status = a.dynamicallyDecompose(sc, bufIdx, offsetVal, preorderIdx)
		default:
			status = a.search(sc, offsetVal, preorderIdx)
		}

		a.undoTo(mark)
		a.offsets[bufIdx] = unassigned

		if status == StatusOk || status == StatusDeadlineExceeded || status == StatusAborted {
			return status
		}
		if params.HatlessPruning && hatless {
			break
		}
	}

	a.solver.backtracks++
	return StatusNotFound
}

// updateMinOffsets propagates the effect of placing bufIdx at offsetVal
// onto the min_offsets of its still-unassigned overlapping buffers.
// hatless is true if no unassigned buffer overlaps bufIdx at all.
// fixedFail is true if propagation forces an unassigned buffer's
// min_offset above its own fixed offset. affected lists the sections
// touched by a min_offset change, for unallocated_floor inference.
func (a *attemptState) updateMinOffsets(bufIdx int, offsetVal int64) (hatless, fixedFail bool, affected []int64) {
	hatless = true
	seen := map[int64]bool{}
	for _, ov := range a.bufferData[bufIdx].Overlaps {
		other := ov.Other
		if a.offsets[other] != unassigned {
			continue
		}
		hatless = false

		candidateOffset := offsetVal + ov.EffectiveSize
		if a.minOffsets[other] >= candidateOffset {
			continue
		}

		a.journal = append(a.journal, change{kind: kindMinOffset, idx: other, prevInt: a.minOffsets[other]})
		newVal := candidateOffset
		if align := a.buffers[other].Alignment; align > 1 {
			if r := newVal % align; r != 0 {
				newVal += align - r
			}
		}
		a.minOffsets[other] = newVal

		if a.buffers[other].Offset != nil && newVal > *a.buffers[other].Offset {
			fixedFail = true
		}

		if a.solver.params.UnallocatedFloor {
			for _, span := range a.bufferData[other].SectionSpans {
				for s := span.Range.Lower; s < span.Range.Upper; s++ {
					if !seen[s] {
						seen[s] = true
						affected = append(affected, s)
					}
				}
			}
		}
	}
	return hatless, fixedFail, affected
}

// updateSectionData raises section floors and decrements section totals
// for every section bufIdx spans, then re-derives floors for every
// section in affected from the current min_offsets of unassigned
// buffers still present there (unallocated_floor inference).
func (a *attemptState) updateSectionData(bufIdx int, offsetVal int64, affected []int64) {
	for _, span := range a.bufferData[bufIdx].SectionSpans {
		w := span.Window
		for s := span.Range.Lower; s < span.Range.Upper; s++ {
			a.journal = append(a.journal, change{kind: kindFloor, idx: int(s), prevInt: a.sectionFloor[s]})
			if newFloor := offsetVal + w.Upper; newFloor > a.sectionFloor[s] {
				a.sectionFloor[s] = newFloor
			}
			a.journal = append(a.journal, change{kind: kindTotal, idx: int(s), prevInt: a.sectionTotal[s]})
			a.sectionTotal[s] -= w.Width()
		}
	}

	for _, s := range affected {
		var minVal int64 = -1
		for _, otherIdx := range a.sections[s].Buffers {
			if a.offsets[otherIdx] != unassigned {
				continue
			}
			if mo := a.minOffsets[otherIdx]; minVal < 0 || mo < minVal {
				minVal = mo
			}
		}
		if minVal >= 0 && minVal > a.sectionFloor[s] {
			a.journal = append(a.journal, change{kind: kindFloor, idx: int(s), prevInt: a.sectionFloor[s]})
			a.sectionFloor[s] = minVal
		}
	}
}

// check tests whether every section in scope still fits within capacity
// given the current floors (and, if enabled, the remaining unplaced
// buffers' total size packed flat on the floor).
func (a *attemptState) check(sc scope, offsetVal int64) bool {
	params := a.solver.params
	for s := sc.secLo; s < sc.secHi; s++ {
		f := a.sectionFloor[s]
		if params.MonotonicFloor && offsetVal > f {
			f = offsetVal
		}
		if params.SectionInference {
			f += a.sectionTotal[s]
		}
		if f > a.capacity {
			return false
		}
	}
	return true
}

// dynamicallyDecompose decrements cuts for every section boundary bufIdx
// spans. If any boundary inside sc's own range reaches zero, it splits
// sc into independent sub-scopes at those boundaries and solves each;
// otherwise it falls through to a regular search.
func (a *attemptState) dynamicallyDecompose(sc scope, bufIdx int, offsetVal int64, preorderIdx int) Status {
	var zeroed []int64
	if lo, hi, ok := a.bufferData[bufIdx].FullExtent(); ok {
		for k := lo; k < hi-1; k++ {
			if k < 0 || int(k) >= len(a.cuts) {
				continue
			}
			a.journal = append(a.journal, change{kind: kindCut, idx: int(k), prevInt: int64(a.cuts[k])})
			a.cuts[k]--
			if a.cuts[k] == 0 {
				zeroed = append(zeroed, k)
			}
		}
	}

	var local []int64
	for _, k := range zeroed {
		if k >= sc.secLo && k+1 < sc.secHi {
			local = append(local, k)
		}
	}
	if len(local) == 0 {
		return a.search(sc, offsetVal, preorderIdx)
	}
	slices.Sort(local)

	bounds := make([]int64, 0, len(local)+2)
	bounds = append(bounds, sc.secLo)
	for _, k := range local {
		bounds = append(bounds, k+1)
	}
	bounds = append(bounds, sc.secHi)

	for i := 0; i+1 < len(bounds); i++ {
		lo, hi := bounds[i], bounds[i+1]
		sub := scope{secLo: lo, secHi: hi}
		for _, idx := range sc.idxs {
			if spansWithin(a.bufferData[idx], lo, hi) {
				sub.idxs = append(sub.idxs, idx)
			}
		}
		if status := a.search(sub, 0, 0); status != StatusOk {
			return status
		}
	}
	// bufIdx straddles the cut and belongs to no sub-scope, and so may any
	// buffer an enclosing frame placed before the split, so no leaf capture
	// above ever writes them; record every offset still assigned in sc here.
	for _, idx := range sc.idxs {
		if a.offsets[idx] != unassigned {
			a.result[idx] = a.offsets[idx]
		}
	}
	return StatusOk
}

func spansWithin(data sweep.BufferData, lo, hi int64) bool {
	for _, span := range data.SectionSpans {
		if span.Range.Lower < lo || span.Range.Upper > hi {
			return false
		}
	}
	return true
}

// undoTo restores every scalar change recorded since mark, in LIFO
// order, and truncates the journal back to mark.
func (a *attemptState) undoTo(mark int) {
	for i := len(a.journal) - 1; i >= mark; i-- {
		c := a.journal[i]
		switch c.kind {
		case kindMinOffset:
			a.minOffsets[c.idx] = c.prevInt
		case kindFloor:
			a.sectionFloor[c.idx] = c.prevInt
		case kindTotal:
			a.sectionTotal[c.idx] = c.prevInt
		case kindCut:
			a.cuts[c.idx] = int(c.prevInt)
		}
	}
	a.journal = a.journal[:mark]
}
