// Package pkg provides the core libraries for minimalloc, a static memory
// allocation solver for ML compiler buffers.
//
// # Overview
//
// minimalloc assigns each buffer a fixed address-space offset, given its
// lifespan and size, such that no two live buffers overlap and the whole
// assignment fits under a capacity bound. The pkg directory is organized
// around the solve pipeline:
//
//  1. [alloc] - Domain model and algorithms (intervals, buffers, the
//     sweeper, the solver, validation)
//  2. [pipeline] - Orchestration (parse -> sweep -> solve -> render),
//     shared by the CLI and the HTTP API
//  3. [cache] / [session] - Result caching and session persistence
//  4. [config] - Solver-parameter persistence
//  5. [errors] / [observability] / [buildinfo] - Ambient concerns
//
// # Architecture
//
// The typical data flow through minimalloc:
//
//	CSV problem
//	     |
//	[alloc/csv] (parse)
//	     |
//	[alloc/sweep] (section/partition/overlap structure)
//	     |
//	[alloc/solve] (branch-and-bound search, or capacity minimization)
//	     |
//	[alloc/validate] (independent invariant check)
//	     |
//	CSV solution / SVG / PNG / PDF / JSON / terminal picture
//
// # Main Packages
//
// ## Domain
//
// [alloc/interval] - Half-open integer intervals and windows.
//
// [alloc/buffer] - A buffer: a lifespan, a size, an alignment, optional
// gaps (time windows of reduced footprint), and an optional fixed offset.
//
// [alloc/problem] - A Problem (a set of buffers plus a capacity) and a
// Solution (one offset per buffer).
//
// [alloc/preorder] - The comparator used to decide a canonical candidate
// order at each search node.
//
// [alloc/sweep] - Turns a Problem into the section/partition/overlap
// structure the solver searches over.
//
// [alloc/solve] - The DFS branch-and-bound solver: nine togglable pruning
// techniques, round-robin heuristic scheduling, irreducible infeasible
// subset computation, and capacity minimization via binary search.
//
// [alloc/validate] - Checks a Solution against a Problem independently of
// the solver that produced it.
//
// [alloc/csv] - Reads and writes the CSV encoding of problems and
// solutions, in both the lower/upper and legacy start/end dialects.
//
// ## Orchestration
//
// [pipeline] - The complete parse -> sweep -> solve -> render pipeline
// with caching, used by the CLI, the HTTP API, and tests alike.
//
// ## Infrastructure
//
// [cache] - Solve/IIS result caching: file-based, Redis-based, or a null
// implementation, behind a common Cache interface and a Keyer that turns
// an input hash and solver parameters into a cache key.
//
// [session] - Records of past solves (status, backtracks, elapsed time,
// solution) for the HTTP API, backed by the filesystem or MongoDB.
//
// [config] - TOML-based persistence of default solver parameters.
//
// [errors] - A closed set of error codes distinguishing user mistakes
// from internal failures.
//
// [observability] - Structured hooks for solve/sweep/render/cache events.
//
// [buildinfo] - Version/commit/date, injected at build time via ldflags.
package pkg
