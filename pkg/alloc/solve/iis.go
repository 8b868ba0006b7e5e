package solve

import (
	"context"
	"time"

	"github.com/matzehuels/minimalloc/pkg/alloc/problem"
)

// ComputeIrreducibleInfeasibleSubset finds a minimal infeasible subset of
// p's buffers via the classic deletion-filter algorithm: repeatedly try
// dropping one remaining buffer; keep the drop if the remainder is still
// infeasible, otherwise restore it and move on. What's left when every
// buffer has been tried is irreducible: removing any one member makes it
// feasible.
//
// Returns the IDs of the buffers in the subset. Status StatusOk means p
// itself is feasible and no subset was computed; StatusNotFound means an
// IIS of the returned IDs was found; any other status reports the search
// was cut short.
//
// A single start time is shared across every sub-solve so the
// configured Timeout bounds the whole procedure, not each individual
// sub-solve; without this an N-buffer problem could run up to
// roughly N times the configured timeout.
func (s *Solver) ComputeIrreducibleInfeasibleSubset(ctx context.Context, p problem.Problem) ([]string, Status) {
	s.backtracks = 0
	start := time.Now()

	if _, status := s.solveWithStart(ctx, p, start); status != StatusNotFound {
		return nil, status
	}

	kept := make([]int, len(p.Buffers))
	for i := range kept {
		kept[i] = i
	}

	for i := 0; i < len(kept); {
		trial := make([]int, 0, len(kept)-1)
		trial = append(trial, kept[:i]...)
		trial = append(trial, kept[i+1:]...)

		_, status := s.solveWithStart(ctx, p.Select(trial), start)
		switch status {
		case StatusNotFound:
			kept = trial // dropping i keeps it infeasible; leave it dropped
		case StatusOk:
			i++ // i is necessary for infeasibility; keep it and move on
		default:
			return nil, status
		}
	}

	ids := make([]string, len(kept))
	for j, idx := range kept {
		ids[j] = p.Buffers[idx].ID
	}
	return ids, StatusNotFound
}
