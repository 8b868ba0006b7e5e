package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/minimalloc/pkg/alloc/csv"
	"github.com/matzehuels/minimalloc/pkg/alloc/sweep"
)

func (c *CLI) sweepCommand() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run the sweeper alone and print section/partition statistics",
		Long:  "Parses a CSV problem, runs the preprocessing sweep, and prints the sections, partitions, and per-buffer overlap counts it found, without invoking the solver.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSweep(input)
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "path to the input CSV (required)")
	return cmd
}

func (c *CLI) runSweep(inputPath string) error {
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

	result := sweep.Sweep(p)

	printKeyValue("buffers", fmt.Sprintf("%d", len(p.Buffers)))
	printKeyValue("sections", fmt.Sprintf("%d", len(result.Sections)))
	printKeyValue("partitions", fmt.Sprintf("%d", len(result.Partitions)))

	for i, sec := range result.Sections {
		printDetail("section %d: [%d, %d) %d buffers", i, sec.Interval.Lower, sec.Interval.Upper, len(sec.Buffers))
	}
	for i, part := range result.Partitions {
		printDetail("partition %d: %d buffers", i, len(part.BufferIdxs))
	}
	for i, bd := range result.BufferData {
		printDetail("buffer %s: %d overlaps", p.Buffers[i].ID, len(bd.Overlaps))
	}

	return nil
}
