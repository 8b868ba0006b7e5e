package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/minimalloc/pkg/alloc/csv"
	"github.com/matzehuels/minimalloc/pkg/alloc/problem"
	"github.com/matzehuels/minimalloc/pkg/alloc/validate"
)

func (c *CLI) validateCommand() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate an already-solved CSV",
		Long:  "Parses a CSV with an offset column and checks the resulting assignment against the solver's invariants: no overlap, alignment, and fixed-offset constraints. The CSV carries no capacity, so no capacity bound is checked.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(input)
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "path to the solved CSV (required, must have an offset column)")
	return cmd
}

func (c *CLI) runValidate(inputPath string) error {
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

	offsets := make([]int64, len(p.Buffers))
	for i, b := range p.Buffers {
		if b.Offset == nil {
			return fmt.Errorf("buffer %q has no offset; nothing to validate", b.ID)
		}
		offsets[i] = *b.Offset
	}
	sol := problem.Solution{Offsets: offsets, Height: problem.HeightOf(p, offsets)}
	// The CSV carries no capacity; bound the check by the assignment's own height.
	p.Capacity = sol.Height

	result := validate.Validate(p, sol)
	if result == validate.Good {
		printSuccess("valid: height %d", sol.Height)
		return nil
	}

	printError("invalid: %s", result.String())
	return fmt.Errorf("validate: %s", result.String())
}
