package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/minimalloc/pkg/alloc/csv"
	"github.com/matzehuels/minimalloc/pkg/alloc/problem"
	"github.com/matzehuels/minimalloc/pkg/alloc/solve"
	"github.com/matzehuels/minimalloc/pkg/alloc/sweep"
	"github.com/matzehuels/minimalloc/pkg/cache"
	"github.com/matzehuels/minimalloc/pkg/observability"
)

// Runner encapsulates pipeline execution with caching. Both the CLI and
// the HTTP API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs the complete parse -> sweep -> solve -> render pipeline
// with caching on the solve (and, if requested, IIS) stage.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	p, err := csv.FromCSV(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	inputHash := cache.Hash([]byte(opts.Input))

	result := &Result{
		InputHash: inputHash,
		Artifacts: make(map[string][]byte),
	}

	sweepStart := time.Now()
	observability.Pipeline().OnSweepStart(ctx, len(p.Buffers))
	swept := sweep.Sweep(p)
	result.Stats.SweepTime = time.Since(sweepStart)
	result.Stats.BufferCount = len(p.Buffers)
	result.Stats.PartitionCount = len(swept.Partitions)
	observability.Pipeline().OnSweepComplete(ctx, len(p.Buffers), len(swept.Partitions), result.Stats.SweepTime, nil)

	solveStart := time.Now()
	sol, status, backtracks, solveHit, err := r.SolveWithCacheInfo(ctx, p, opts)
	result.Stats.SolveTime = time.Since(solveStart)
	result.CacheInfo.SolveHit = solveHit
	if err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}
	result.Status = status
	result.Backtracks = backtracks
	result.Solution = sol

	r.Logger.Info("solved problem",
		"status", status.String(),
		"backtracks", backtracks,
		"cache_hit", solveHit,
		"duration", result.Stats.SolveTime)

	if status == solve.StatusNotFound && opts.ComputeIIS {
		iis, iisHit, err := r.ComputeIISWithCacheInfo(ctx, p, opts)
		if err != nil {
			return nil, fmt.Errorf("iis: %w", err)
		}
		result.IIS = iis
		result.CacheInfo.IISHit = iisHit
	}

	if status != solve.StatusOk || len(opts.Formats) == 0 {
		return result, nil
	}

	renderStart := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	artifacts, err := Render(p, sol, opts)
	result.Stats.RenderTime = time.Since(renderStart)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, result.Stats.RenderTime, err)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts

	r.Logger.Info("rendered outputs", "formats", opts.Formats, "duration", result.Stats.RenderTime)

	return result, nil
}

// SolveWithCacheInfo solves p with caching and returns cache hit info.
func (r *Runner) SolveWithCacheInfo(ctx context.Context, p problem.Problem, opts Options) (problem.Solution, solve.Status, int, bool, error) {
	inputHash := cache.Hash([]byte(opts.Input))
	cacheKey := r.Keyer.SolveKey(inputHash, opts.KeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if rec, err := decodeSolveRecord(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "solve")
				return rec.Solution, rec.Status, rec.Backtracks, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "solve")
	}

	observability.Pipeline().OnSolveStart(ctx, opts.Capacity, len(p.Buffers))
	solver := solve.NewSolver(opts.Params)
	solver.OnProgress = opts.OnProgress

	solveStart := time.Now()
	var sol problem.Solution
	var status solve.Status
	if opts.Minimize {
		var total int64
		for _, b := range p.Buffers {
			total += b.Size
		}
		sol, status = solver.MinimizeCapacity(ctx, p, 0, total)
	} else {
		p.Capacity = opts.Capacity
		sol, status = solver.Solve(ctx, p)
	}
	backtracks := solver.Backtracks()
	observability.Pipeline().OnSolveComplete(ctx, status.String(), backtracks, time.Since(solveStart), nil)

	if status == solve.StatusOk {
		data := encodeSolveRecord(solveRecord{Solution: sol, Status: status, Backtracks: backtracks})
		observability.Cache().OnCacheSet(ctx, "solve", len(data))
		_ = r.Cache.Set(ctx, cacheKey, data, DefaultCacheTTL)
	}

	return sol, status, backtracks, false, nil
}

// ComputeIISWithCacheInfo computes an irreducible infeasible subset with
// caching and returns cache hit info.
func (r *Runner) ComputeIISWithCacheInfo(ctx context.Context, p problem.Problem, opts Options) ([]string, bool, error) {
	inputHash := cache.Hash([]byte(opts.Input))
	cacheKey := r.Keyer.IISKey(inputHash, opts.KeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "iis")
			return decodeIIS(data), true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "iis")
	}

	p.Capacity = opts.Capacity
	solver := solve.NewSolver(opts.Params)
	iis, status := solver.ComputeIrreducibleInfeasibleSubset(ctx, p)
	if status != solve.StatusNotFound {
		return nil, false, fmt.Errorf("iis computation returned %s", status)
	}

	data := encodeIIS(iis)
	observability.Cache().OnCacheSet(ctx, "iis", len(data))
	_ = r.Cache.Set(ctx, cacheKey, data, DefaultCacheTTL)

	return iis, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
