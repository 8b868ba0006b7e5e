package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/minimalloc/pkg/alloc/csv"
	"github.com/matzehuels/minimalloc/pkg/alloc/solve"
)

func (c *CLI) iisCommand() *cobra.Command {
	var input string
	var timeout time.Duration
	var capacity int64

	cmd := &cobra.Command{
		Use:   "iis",
		Short: "Compute an irreducible infeasible subset",
		Long:  "Parses a CSV problem and, if it is infeasible at the given capacity, prints a minimal subset of buffer IDs that is itself infeasible.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runIIS(cmd.Context(), input, capacity, timeout)
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "path to the input CSV (required)")
	cmd.Flags().Int64Var(&capacity, "capacity", 0, "address-space capacity the solver must respect")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "solver timeout (0 disables)")
	return cmd
}

func (c *CLI) runIIS(ctx context.Context, inputPath string, capacity int64, timeout time.Duration) error {
	if inputPath == "" {
		return fmt.Errorf("--input is required")
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	p, err := csv.FromCSV(string(data))
	if err != nil {
		return fmt.Errorf("parse input: %w", err)
	}
	p.Capacity = capacity

	params := solve.DefaultParams()
	params.Timeout = timeout
	s := solve.NewSolver(params)

	ids, status := s.ComputeIrreducibleInfeasibleSubset(ctx, p)
	switch status {
	case solve.StatusOk:
		printSuccess("problem is feasible; no infeasible subset exists")
	case solve.StatusNotFound:
		printError("irreducible infeasible subset: %s", strings.Join(ids, ", "))
	default:
		printError("search did not finish: %s", status.String())
	}
	return nil
}
