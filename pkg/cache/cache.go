// Package cache provides a pluggable key/value cache for solved allocation
// problems, keyed by a hash of the problem input and solver parameters.
package cache

import (
	"context"
	"time"
)

// Cache stores and retrieves opaque byte blobs (typically a marshaled
// solve result) under a string key, with an optional TTL.
type Cache interface {
	// Get returns the stored data and true on a hit, or (nil, false, nil) on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases any resources held by the cache.
	Close() error
}

// Keyer derives stable cache keys for the pipeline's cacheable stages.
// Each method must produce the same key for semantically identical
// inputs regardless of map/slice iteration order.
type Keyer interface {
	// SweepKey derives a key for a preprocessed (sections/partitions) sweep result.
	SweepKey(inputHash string) string
	// SolveKey derives a key for a solved Solution, the input hash combined
	// with the SolverParams that produced it.
	SolveKey(inputHash string, opts SolveKeyOpts) string
	// IISKey derives a key for a computed irreducible infeasible subset.
	IISKey(inputHash string, opts SolveKeyOpts) string
}

// SolveKeyOpts carries the solver knobs that affect a solve's outcome and
// therefore must be part of its cache key.
type SolveKeyOpts struct {
	Capacity             int64
	Heuristics           string
	CanonicalOnly        bool
	SectionInference     bool
	DynamicOrdering      bool
	CheckDominance       bool
	UnallocatedFloor     bool
	StaticPreordering    bool
	DynamicDecomposition bool
	MonotonicFloor       bool
	HatlessPruning       bool
}
