// Package config loads default solver parameters from a TOML file, so a
// user can pin a preferred pruning/heuristic combination once instead of
// repeating flags on every invocation.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/minimalloc/pkg/alloc/solve"
)

const appName = "minimalloc"

// File mirrors solve.SolverParams in a TOML-friendly shape (a plain
// duration string instead of time.Duration, explicit heuristics string).
type File struct {
	Timeout               string   `toml:"timeout"`
	CanonicalOnly         bool     `toml:"canonical_only"`
	SectionInference      bool     `toml:"section_inference"`
	DynamicOrdering       bool     `toml:"dynamic_ordering"`
	CheckDominance        bool     `toml:"check_dominance"`
	UnallocatedFloor      bool     `toml:"unallocated_floor"`
	StaticPreordering     bool     `toml:"static_preordering"`
	DynamicDecomposition  bool     `toml:"dynamic_decomposition"`
	MonotonicFloor        bool     `toml:"monotonic_floor"`
	HatlessPruning        bool     `toml:"hatless_pruning"`
	PreorderingHeuristics []string `toml:"preordering_heuristics"`
}

// ToParams converts the decoded file into SolverParams, falling back to
// solve.DefaultParams() for a zero-value Timeout/PreorderingHeuristics.
func (f File) ToParams() (solve.SolverParams, error) {
	p := solve.SolverParams{
		CanonicalOnly:         f.CanonicalOnly,
		SectionInference:      f.SectionInference,
		DynamicOrdering:       f.DynamicOrdering,
		CheckDominance:        f.CheckDominance,
		UnallocatedFloor:      f.UnallocatedFloor,
		StaticPreordering:     f.StaticPreordering,
		DynamicDecomposition:  f.DynamicDecomposition,
		MonotonicFloor:        f.MonotonicFloor,
		HatlessPruning:        f.HatlessPruning,
		PreorderingHeuristics: f.PreorderingHeuristics,
	}
	if len(p.PreorderingHeuristics) == 0 {
		p.PreorderingHeuristics = solve.DefaultParams().PreorderingHeuristics
	}
	if f.Timeout != "" {
		d, err := time.ParseDuration(f.Timeout)
		if err != nil {
			return solve.SolverParams{}, err
		}
		p.Timeout = d
	}
	return p, nil
}

// FromParams converts SolverParams into the TOML-serializable shape, for
// writing out a config file seeded from the current defaults.
func FromParams(p solve.SolverParams) File {
	return File{
		Timeout:               p.Timeout.String(),
		CanonicalOnly:         p.CanonicalOnly,
		SectionInference:      p.SectionInference,
		DynamicOrdering:       p.DynamicOrdering,
		CheckDominance:        p.CheckDominance,
		UnallocatedFloor:      p.UnallocatedFloor,
		StaticPreordering:     p.StaticPreordering,
		DynamicDecomposition:  p.DynamicDecomposition,
		MonotonicFloor:        p.MonotonicFloor,
		HatlessPruning:        p.HatlessPruning,
		PreorderingHeuristics: append([]string(nil), p.PreorderingHeuristics...),
	}
}

// Dir returns the XDG config directory for minimalloc (~/.config/minimalloc).
func Dir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// Path returns the default config file path (Dir()/config.toml).
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads SolverParams from a TOML file at path. If the file does not
// exist, it returns solve.DefaultParams() with no error.
func Load(path string) (solve.SolverParams, error) {
	var f File
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return solve.DefaultParams(), nil
	}
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return solve.SolverParams{}, err
	}
	return f.ToParams()
}

// Save writes SolverParams to a TOML file at path, creating parent
// directories as needed.
func Save(path string, p solve.SolverParams) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return toml.NewEncoder(file).Encode(FromParams(p))
}
