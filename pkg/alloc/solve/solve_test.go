package solve

import (
	"context"
	"testing"
	"time"

	"github.com/matzehuels/minimalloc/pkg/alloc/buffer"
	"github.com/matzehuels/minimalloc/pkg/alloc/interval"
	"github.com/matzehuels/minimalloc/pkg/alloc/problem"
	"github.com/matzehuels/minimalloc/pkg/alloc/validate"
)

func tetrisProblem(capacity int64) problem.Problem {
	w01 := interval.New(0, 1)
	w12 := interval.New(1, 2)

	buf0 := buffer.New("buf0", interval.New(0, 10), 2)
	buf0.Gaps = []buffer.Gap{{Lifespan: interval.New(0, 5), Window: &w01}}

	buf1 := buffer.New("buf1", interval.New(0, 10), 2)
	buf1.Gaps = []buffer.Gap{{Lifespan: interval.New(5, 10), Window: &w12}}

	return problem.Problem{Buffers: []buffer.Buffer{buf0, buf1}, Capacity: capacity}
}

// decomposableProblem has a buffer (X) spanning the whole lifespan and
// two others (Y, Z) that overlap X but not each other, forcing a real
// dynamic-decomposition split once X is placed.
func decomposableProblem(capacity int64) problem.Problem {
	return problem.Problem{
		Buffers: []buffer.Buffer{
			buffer.New("x", interval.New(0, 10), 2),
			buffer.New("y", interval.New(0, 5), 3),
			buffer.New("z", interval.New(5, 10), 3),
		},
		Capacity: capacity,
	}
}

func TestSolveTetrisFeasibleAtCapacityThree(t *testing.T) {
	s := NewSolver(DefaultParams())
	sol, status := s.Solve(context.Background(), tetrisProblem(3))
	if status != StatusOk {
		t.Fatalf("status = %v, want Ok", status)
	}
	if res := validate.Validate(tetrisProblem(3), sol); res != validate.Good {
		t.Errorf("Validate = %v, want Good (offsets %v)", res, sol.Offsets)
	}
}

func TestSolveTetrisInfeasibleAtCapacityTwo(t *testing.T) {
	s := NewSolver(DefaultParams())
	_, status := s.Solve(context.Background(), tetrisProblem(2))
	if status != StatusNotFound {
		t.Fatalf("status = %v, want NotFound", status)
	}
}

func TestSolveRespectsFixedOffset(t *testing.T) {
	p := tetrisProblem(10)
	fixed := int64(7)
	p.Buffers[0].Offset = &fixed

	s := NewSolver(DefaultParams())
	sol, status := s.Solve(context.Background(), p)
	if status != StatusOk {
		t.Fatalf("status = %v, want Ok", status)
	}
	if sol.Offsets[0] != 7 {
		t.Errorf("Offsets[0] = %d, want 7 (fixed)", sol.Offsets[0])
	}
}

func TestSolveRespectsAlignment(t *testing.T) {
	p := problem.Problem{
		Buffers: []buffer.Buffer{
			buffer.New("a", interval.New(0, 5), 3),
			buffer.New("b", interval.New(0, 5), 3),
		},
		Capacity: 20,
	}
	p.Buffers[1].Alignment = 4

	s := NewSolver(DefaultParams())
	sol, status := s.Solve(context.Background(), p)
	if status != StatusOk {
		t.Fatalf("status = %v, want Ok", status)
	}
	if sol.Offsets[1]%4 != 0 {
		t.Errorf("Offsets[1] = %d, not a multiple of alignment 4", sol.Offsets[1])
	}
	if res := validate.Validate(p, sol); res != validate.Good {
		t.Errorf("Validate = %v, want Good", res)
	}
}

func TestSolveDynamicDecompositionMatchesDisabled(t *testing.T) {
	for _, capacity := range []int64{4, 5, 6} {
		p := decomposableProblem(capacity)

		withDecomp := DefaultParams()
		sWith := NewSolver(withDecomp)
		solWith, statusWith := sWith.Solve(context.Background(), p)

		withoutDecomp := DefaultParams()
		withoutDecomp.DynamicDecomposition = false
		sWithout := NewSolver(withoutDecomp)
		_, statusWithout := sWithout.Solve(context.Background(), p)

		if statusWith != statusWithout {
			t.Errorf("capacity %d: decomposition status %v != non-decomposition status %v", capacity, statusWith, statusWithout)
		}
		if statusWith == StatusOk {
			if res := validate.Validate(p, solWith); res != validate.Good {
				t.Errorf("capacity %d: Validate = %v, want Good (offsets %v)", capacity, res, solWith.Offsets)
			}
		}
	}
}

func TestSolveDecomposableProblemMinimalCapacity(t *testing.T) {
	s := NewSolver(DefaultParams())
	sol, status := s.Solve(context.Background(), decomposableProblem(5))
	if status != StatusOk {
		t.Errorf("capacity 5 status = %v, want Ok", status)
	}
	if res := validate.Validate(decomposableProblem(5), sol); res != validate.Good {
		t.Errorf("capacity 5: Validate = %v, want Good (offsets %v)", res, sol.Offsets)
	}
	if _, status := s.Solve(context.Background(), decomposableProblem(4)); status != StatusNotFound {
		t.Errorf("capacity 4 status = %v, want NotFound", status)
	}
}

// TestSolveDecompositionSkipsHoledStraddler is a regression test: a
// non-windowed gap punches a hole in a buffer's section spans, and
// dynamic decomposition must not mistake that hole for the buffer having
// finished straddling a section boundary while it is still unassigned.
func TestSolveDecompositionSkipsHoledStraddler(t *testing.T) {
	c := buffer.New("c", interval.New(0, 30), 1)
	b := buffer.New("b", interval.New(0, 30), 1)
	b.Gaps = []buffer.Gap{{Lifespan: interval.New(10, 20)}}

	p := problem.Problem{Buffers: []buffer.Buffer{c, b}, Capacity: 2}

	s := NewSolver(DefaultParams())
	sol, status := s.Solve(context.Background(), p)
	if status != StatusOk {
		t.Fatalf("status = %v, want Ok", status)
	}
	if res := validate.Validate(p, sol); res != validate.Good {
		t.Errorf("Validate = %v, want Good (offsets %v)", res, sol.Offsets)
	}
	for i, offset := range sol.Offsets {
		if offset < 0 {
			t.Errorf("Offsets[%d] = %d, want a real non-negative offset", i, offset)
		}
	}
}

func TestAllPruningCombinationsAgreeOnFeasibility(t *testing.T) {
	p := decomposableProblem(5)
	base := DefaultParams()
	toggle := []func(*SolverParams){
		func(sp *SolverParams) { sp.CanonicalOnly = false },
		func(sp *SolverParams) { sp.SectionInference = false },
		func(sp *SolverParams) { sp.DynamicOrdering = false },
		func(sp *SolverParams) { sp.CheckDominance = false },
		func(sp *SolverParams) { sp.UnallocatedFloor = false },
		func(sp *SolverParams) { sp.StaticPreordering = false },
		func(sp *SolverParams) { sp.DynamicDecomposition = false },
		func(sp *SolverParams) { sp.MonotonicFloor = false },
		func(sp *SolverParams) { sp.HatlessPruning = false },
	}
	for _, off := range toggle {
		params := base
		off(&params)
		s := NewSolver(params)
		_, status := s.Solve(context.Background(), p)
		if status != StatusOk {
			t.Errorf("params %+v: status = %v, want Ok", params, status)
		}
	}
}

func TestSolveEmptyProblem(t *testing.T) {
	s := NewSolver(DefaultParams())
	sol, status := s.Solve(context.Background(), problem.Problem{Capacity: 10})
	if status != StatusOk {
		t.Fatalf("status = %v, want Ok", status)
	}
	if len(sol.Offsets) != 0 || sol.Height != 0 {
		t.Errorf("empty problem solution = %+v, want zero value", sol)
	}
}

func TestSolveRespectsTimeout(t *testing.T) {
	params := DefaultParams()
	params.Timeout = time.Nanosecond
	s := NewSolver(params)

	_, status := s.Solve(context.Background(), decomposableProblem(5))
	if status != StatusDeadlineExceeded {
		t.Errorf("status = %v, want DeadlineExceeded", status)
	}
}

func TestSolveRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewSolver(DefaultParams())
	_, status := s.Solve(ctx, decomposableProblem(5))
	if status != StatusDeadlineExceeded {
		t.Errorf("status = %v, want DeadlineExceeded", status)
	}
}

// TestSolveWithStartHonorsSharedStartTime confirms solveWithStart measures
// the timeout against the caller-supplied start, not against its own
// entry time, which is what lets ComputeIrreducibleInfeasibleSubset share
// one deadline across every sub-solve instead of restarting the clock
// each time.
func TestSolveWithStartHonorsSharedStartTime(t *testing.T) {
	params := DefaultParams()
	params.Timeout = time.Hour
	s := NewSolver(params)

	staleStart := time.Now().Add(-2 * time.Hour)
	_, status := s.solveWithStart(context.Background(), decomposableProblem(5), staleStart)
	if status != StatusDeadlineExceeded {
		t.Errorf("status = %v, want DeadlineExceeded for a start time already past the timeout", status)
	}
}

func TestComputeIrreducibleInfeasibleSubset(t *testing.T) {
	s := NewSolver(DefaultParams())
	ids, status := s.ComputeIrreducibleInfeasibleSubset(context.Background(), tetrisProblem(2))
	if status != StatusNotFound {
		t.Fatalf("status = %v, want NotFound", status)
	}
	if len(ids) != 2 {
		t.Fatalf("IIS = %v, want both buffers", ids)
	}
}

func TestComputeIrreducibleInfeasibleSubsetOnFeasibleProblem(t *testing.T) {
	s := NewSolver(DefaultParams())
	ids, status := s.ComputeIrreducibleInfeasibleSubset(context.Background(), tetrisProblem(3))
	if status != StatusOk {
		t.Fatalf("status = %v, want Ok", status)
	}
	if ids != nil {
		t.Errorf("IIS = %v, want nil for a feasible problem", ids)
	}
}

func TestMinimizeCapacity(t *testing.T) {
	s := NewSolver(DefaultParams())
	sol, status := s.MinimizeCapacity(context.Background(), tetrisProblem(0), 0, 4)
	if status != StatusOk {
		t.Fatalf("status = %v, want Ok", status)
	}
	if sol.Height != 3 {
		t.Errorf("minimized height = %d, want 3", sol.Height)
	}
	minimized := tetrisProblem(sol.Height)
	if res := validate.Validate(minimized, sol); res != validate.Good {
		t.Errorf("Validate = %v, want Good (offsets %v)", res, sol.Offsets)
	}
}

func TestBacktracksResetsPerSolve(t *testing.T) {
	s := NewSolver(DefaultParams())
	s.Solve(context.Background(), tetrisProblem(2)) // infeasible, accumulates backtracks
	if s.Backtracks() == 0 {
		t.Skip("this scenario happens not to need any backtracking")
	}
	s.Solve(context.Background(), tetrisProblem(3)) // feasible on the first canonical try
	if s.Backtracks() != 0 {
		t.Errorf("Backtracks() = %d after a feasible solve, want 0 (should reset per Solve call)", s.Backtracks())
	}
}
