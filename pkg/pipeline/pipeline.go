// Package pipeline provides the core solve pipeline: parse CSV, sweep,
// solve (with caching), and optionally render the solution.
//
// This package centralizes the logic shared by the CLI, the HTTP API,
// and any future worker component, so all of them cache and time the
// pipeline identically.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: decode a CSV document into a Problem.
//  2. Solve: sweep, then branch-and-bound search for a feasible
//     assignment (or minimize capacity), cached by input+params hash.
//  3. Render: optionally render the solved Solution as svg/png/pdf/json
//     or a terminal picture.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Input:    csvText,
//	    Capacity: 1024,
//	    Formats:  []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/minimalloc/pkg/alloc/problem"
	"github.com/matzehuels/minimalloc/pkg/alloc/solve"
	"github.com/matzehuels/minimalloc/pkg/cache"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and Worker
// =============================================================================

const (
	// DefaultWidth is the default render frame width in pixels.
	DefaultWidth = 800.0

	// DefaultHeight is the default render frame height in pixels.
	DefaultHeight = 600.0

	// DefaultScale is the default PNG export scale factor.
	DefaultScale = 2.0

	// DefaultCacheTTL is how long a cached solve/IIS result is retained.
	DefaultCacheTTL = 24 * time.Hour
)

// Format constants for output formats.
const (
	FormatSVG     = "svg"
	FormatPNG     = "png"
	FormatPDF     = "pdf"
	FormatJSON    = "json"
	FormatPicture = "picture"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:     true,
	FormatPNG:     true,
	FormatPDF:     true,
	FormatJSON:    true,
	FormatPicture: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the solve pipeline. This
// struct supports JSON serialization for API requests.
type Options struct {
	// Input is the CSV document describing the problem.
	Input string `json:"input"`

	// Capacity is the fixed address-space bound the solver must respect.
	// Ignored (and computed instead) when Minimize is true.
	Capacity int64 `json:"capacity,omitempty"`

	// Minimize requests capacity minimization via binary search over
	// [0, sum of buffer sizes] instead of solving against a fixed Capacity.
	Minimize bool `json:"minimize,omitempty"`

	// Params configures the solver's pruning techniques and heuristics.
	Params solve.SolverParams `json:"params"`

	// ComputeIIS requests an irreducible infeasible subset when the
	// solve fails with NotFound.
	ComputeIIS bool `json:"compute_iis,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Width   float64  `json:"width,omitempty"`
	Height  float64  `json:"height,omitempty"`
	Scale   float64  `json:"scale,omitempty"`

	// Refresh bypasses the cache for this call (still writes the result back).
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// OnProgress, if set, is forwarded to the solver and called
	// periodically during the search with the running node and backtrack
	// counts. It is never invoked on a cache hit.
	OnProgress func(nodesVisited, backtracks int) `json:"-"`

	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// InputHash is the content hash of the CSV input, hashed into the
	// solve and IIS cache keys and used as the session record's InputHash.
	InputHash string

	// Status is the solver's outcome.
	Status solve.Status

	// Backtracks is the number of backtracks the solve required.
	Backtracks int

	// Solution is the assignment found, valid only when Status is Ok.
	Solution problem.Solution

	// IIS is the irreducible infeasible subset's buffer IDs, populated
	// only when opts.ComputeIIS was set and Status was NotFound.
	IIS []string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	BufferCount    int
	PartitionCount int
	SweepTime      time.Duration
	SolveTime      time.Duration
	RenderTime     time.Duration
}

// CacheInfo tracks cache hits for each cacheable pipeline stage.
type CacheInfo struct {
	SolveHit bool // Whether the solve result came from cache
	IISHit   bool // Whether the IIS result came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: svg, png, pdf, json, picture)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// Idempotent: calling it more than once has the same effect as once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Input == "" {
		return fmt.Errorf("input is required")
	}
	if !o.Minimize && o.Capacity <= 0 {
		return fmt.Errorf("capacity must be positive unless minimize is set")
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if len(o.Params.PreorderingHeuristics) == 0 {
		o.Params.PreorderingHeuristics = solve.DefaultParams().PreorderingHeuristics
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// KeyOpts returns the cache.SolveKeyOpts describing this run's
// capacity and solver parameters, used for both the SolveKey and the
// IISKey (an IIS computation depends on the same pruning techniques).
func (o *Options) KeyOpts() cache.SolveKeyOpts {
	heuristics := ""
	for i, h := range o.Params.PreorderingHeuristics {
		if i > 0 {
			heuristics += ","
		}
		heuristics += h
	}
	return cache.SolveKeyOpts{
		Capacity:             o.Capacity,
		Heuristics:           heuristics,
		CanonicalOnly:        o.Params.CanonicalOnly,
		SectionInference:     o.Params.SectionInference,
		DynamicOrdering:      o.Params.DynamicOrdering,
		CheckDominance:       o.Params.CheckDominance,
		UnallocatedFloor:     o.Params.UnallocatedFloor,
		StaticPreordering:    o.Params.StaticPreordering,
		DynamicDecomposition: o.Params.DynamicDecomposition,
		MonotonicFloor:       o.Params.MonotonicFloor,
		HatlessPruning:       o.Params.HatlessPruning,
	}
}
