package solve

import (
	"context"
	"time"

	"github.com/matzehuels/minimalloc/pkg/alloc/problem"
	"github.com/matzehuels/minimalloc/pkg/alloc/sweep"
)

// MinimizeCapacity finds the smallest capacity in [lo, hi] for which p is
// feasible via binary search, reusing a single sweep Result across every
// iteration since only p.Capacity changes. The caller must supply a hi
// known to be feasible (e.g. the sum of all buffer sizes).
//
// On each successful trial the upper bound jumps straight to the found
// solution's height minus one, rather than merely to mid, since any
// capacity at or above that height is already known feasible (the
// solution itself proves it) and need not be probed again.
func (s *Solver) MinimizeCapacity(ctx context.Context, p problem.Problem, lo, hi int64) (problem.Solution, Status) {
	result := sweep.Sweep(p)

	var best problem.Solution
	found := false

	for lo <= hi {
		mid := lo + (hi-lo)/2
		trial := p
		trial.Capacity = mid

		s.backtracks = 0
		sol, status := s.solveWithSweep(ctx, trial, result, time.Now())
		switch status {
		case StatusOk:
			best = sol
			found = true
			hi = sol.Height - 1
		case StatusNotFound:
			lo = mid + 1
		default:
			return problem.Solution{}, status
		}
	}

	if !found {
		return problem.Solution{}, StatusNotFound
	}
	return best, StatusOk
}
