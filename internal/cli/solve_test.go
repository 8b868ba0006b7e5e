package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"

	"github.com/matzehuels/minimalloc/pkg/alloc/solve"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "problem.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestSolverParamsAppliesOnlyChangedFlags(t *testing.T) {
	flags := pflag.NewFlagSet("solve", pflag.ContinueOnError)
	o := &solveOpts{canonicalOnly: true, dynamicOrdering: false}
	flags.BoolVar(&o.canonicalOnly, "canonical-only", true, "")
	flags.BoolVar(&o.dynamicOrdering, "dynamic-ordering", true, "")

	if err := flags.Set("dynamic-ordering", "false"); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	params := o.solverParams(flags)
	if !params.CanonicalOnly {
		t.Error("CanonicalOnly should keep its config/default value when the flag was never passed")
	}
	if params.DynamicOrdering {
		t.Error("DynamicOrdering should reflect the explicitly passed flag value")
	}
}

func TestRunSolveRequiresInput(t *testing.T) {
	c := New(&bytes.Buffer{}, LogInfo)
	o := &solveOpts{noCache: true}
	cmd := c.solveCommand()
	cmd.SetContext(context.Background())
	if err := c.runSolve(cmd, o); err == nil {
		t.Error("runSolve with no --input should error")
	}
}

func TestRunSolveFeasibleProblem(t *testing.T) {
	path := writeCSV(t, "id,lower,upper,size\na,0,10,4\nb,5,15,4\n")

	c := New(&bytes.Buffer{}, LogInfo)
	o := &solveOpts{input: path, capacity: 8, noCache: true, formats: "picture"}
	cmd := c.solveCommand()
	cmd.SetContext(withLogger(context.Background(), c.Logger))

	if err := c.runSolve(cmd, o); err != nil {
		t.Fatalf("runSolve error: %v", err)
	}
}

func TestRunSolveInfeasibleProblemReportsIIS(t *testing.T) {
	path := writeCSV(t, "id,lower,upper,size\na,0,10,8\nb,0,10,8\n")

	c := New(&bytes.Buffer{}, LogInfo)
	o := &solveOpts{input: path, capacity: 8, noCache: true}
	cmd := c.solveCommand()
	cmd.SetContext(withLogger(context.Background(), c.Logger))

	err := c.runSolve(cmd, o)
	if err == nil {
		t.Fatal("runSolve on an infeasible problem should return an error")
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		base, format, want string
	}{
		{"", "svg", "solution.svg"},
		{"out", "svg", "out.svg"},
		{"out.csv", "json", "out.json"},
	}
	for _, tt := range tests {
		if got := outputPath(tt.base, tt.format); got != tt.want {
			t.Errorf("outputPath(%q, %q) = %q, want %q", tt.base, tt.format, got, tt.want)
		}
	}
}

func TestSolverParamsHeuristicsOverride(t *testing.T) {
	flags := pflag.NewFlagSet("solve", pflag.ContinueOnError)
	o := &solveOpts{preorderingHeuristics: "WAT,TAW"}
	params := o.solverParams(flags)
	if len(params.PreorderingHeuristics) != 2 || params.PreorderingHeuristics[0] != "WAT" {
		t.Errorf("PreorderingHeuristics = %v, want [WAT TAW]", params.PreorderingHeuristics)
	}
}

func TestStatusStrings(t *testing.T) {
	if solve.StatusOk.String() != "Ok" {
		t.Errorf("StatusOk.String() = %q, want Ok", solve.StatusOk.String())
	}
}
