package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/minimalloc/internal/render/picture"
	"github.com/matzehuels/minimalloc/pkg/alloc/csv"
	"github.com/matzehuels/minimalloc/pkg/alloc/problem"
	"github.com/matzehuels/minimalloc/pkg/alloc/solve"
	"github.com/matzehuels/minimalloc/pkg/alloc/validate"
	"github.com/matzehuels/minimalloc/pkg/config"
	"github.com/matzehuels/minimalloc/pkg/pipeline"
	"github.com/matzehuels/minimalloc/pkg/session"
)

// solveOpts holds the flag values for the solve command.
type solveOpts struct {
	input    string
	output   string
	capacity int64
	timeout  time.Duration
	validate bool

	canonicalOnly        bool
	sectionInference     bool
	dynamicOrdering      bool
	checkDominance       bool
	unallocatedFloor     bool
	staticPreordering    bool
	dynamicDecomposition bool
	monotonicFloor       bool
	hatlessPruning       bool

	minimizeCapacity      bool
	preorderingHeuristics string
	printSolution         bool
	formats               string
	noCache               bool
	refresh               bool
	watch                 bool
}

func (c *CLI) solveCommand() *cobra.Command {
	var o solveOpts

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve a static memory allocation problem",
		Long:  "Reads a CSV-encoded problem and searches for a feasible offset assignment under a fixed capacity (or minimizes capacity).",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSolve(cmd, &o)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&o.input, "input", "", "path to the input CSV (required)")
	flags.StringVar(&o.output, "output", "", "path to write the solved CSV (default stdout)")
	flags.Int64Var(&o.capacity, "capacity", 0, "address-space capacity the solver must respect")
	flags.DurationVar(&o.timeout, "timeout", 0, "solver timeout (0 disables)")
	flags.BoolVar(&o.validate, "validate", false, "validate the solution after solving")

	flags.BoolVar(&o.canonicalOnly, "canonical-only", true, "prune symmetric assignment orders")
	flags.BoolVar(&o.sectionInference, "section-inference", true, "infer per-section floors")
	flags.BoolVar(&o.dynamicOrdering, "dynamic-ordering", true, "reorder candidates by minimum offset at each node")
	flags.BoolVar(&o.checkDominance, "check-dominance", true, "prune candidates dominated by a lower-height alternative")
	flags.BoolVar(&o.unallocatedFloor, "unallocated-floor", true, "raise section floors to the lowest minimum offset of their unplaced buffers")
	flags.BoolVar(&o.staticPreordering, "static-preordering", true, "use the configured heuristic round robin")
	flags.BoolVar(&o.dynamicDecomposition, "dynamic-decomposition", true, "split a partition into sub-partitions once a placement allows it")
	flags.BoolVar(&o.monotonicFloor, "monotonic-floor", true, "never let a recomputed floor decrease")
	flags.BoolVar(&o.hatlessPruning, "hatless-pruning", true, "stop exploring siblings once a hatless candidate fails")

	flags.BoolVar(&o.minimizeCapacity, "minimize-capacity", false, "binary-search for the minimum feasible capacity instead of using --capacity")
	flags.StringVar(&o.preorderingHeuristics, "preordering-heuristics", "", "comma-separated heuristic round robin (default WAT,TAW,TWA)")
	flags.BoolVar(&o.printSolution, "print-solution", false, "print an ASCII picture of the solution to stderr")
	flags.StringVar(&o.formats, "format", "", "comma-separated render formats: svg,png,pdf,json,picture")
	flags.BoolVar(&o.noCache, "no-cache", false, "bypass the solve cache entirely")
	flags.BoolVar(&o.refresh, "refresh", false, "recompute even if a cached result exists")
	flags.BoolVar(&o.watch, "watch", false, "show a live node/backtrack counter TUI while solving")

	return cmd
}

// solverParams builds the effective SolverParams: the saved config file
// is the base, and any flag the user actually passed on the command line
// overrides it. Flags left at their default value never shadow a config
// file setting.
func (o *solveOpts) solverParams(flags *pflag.FlagSet) solve.SolverParams {
	params, err := config.Load(configPathOrDefault())
	if err != nil {
		params = solve.DefaultParams()
	}

	if flags.Changed("timeout") {
		params.Timeout = o.timeout
	}
	if flags.Changed("canonical-only") {
		params.CanonicalOnly = o.canonicalOnly
	}
	if flags.Changed("section-inference") {
		params.SectionInference = o.sectionInference
	}
	if flags.Changed("dynamic-ordering") {
		params.DynamicOrdering = o.dynamicOrdering
	}
	if flags.Changed("check-dominance") {
		params.CheckDominance = o.checkDominance
	}
	if flags.Changed("unallocated-floor") {
		params.UnallocatedFloor = o.unallocatedFloor
	}
	if flags.Changed("static-preordering") {
		params.StaticPreordering = o.staticPreordering
	}
	if flags.Changed("dynamic-decomposition") {
		params.DynamicDecomposition = o.dynamicDecomposition
	}
	if flags.Changed("monotonic-floor") {
		params.MonotonicFloor = o.monotonicFloor
	}
	if flags.Changed("hatless-pruning") {
		params.HatlessPruning = o.hatlessPruning
	}
	if o.preorderingHeuristics != "" {
		params.PreorderingHeuristics = strings.Split(o.preorderingHeuristics, ",")
	}
	return params
}

func configPathOrDefault() string {
	path, err := config.Path()
	if err != nil {
		return ""
	}
	return path
}

func (c *CLI) runSolve(cmd *cobra.Command, o *solveOpts) error {
	logger := loggerFromContext(cmd.Context())
	if o.input == "" {
		return fmt.Errorf("--input is required")
	}

	data, err := os.ReadFile(o.input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	p, err := csv.FromCSV(string(data))
	if err != nil {
		return fmt.Errorf("parse input: %w", err)
	}

	opts := pipeline.Options{
		Input:      string(data),
		Capacity:   o.capacity,
		Minimize:   o.minimizeCapacity,
		Params:     o.solverParams(cmd.Flags()),
		ComputeIIS: true,
		Refresh:    o.refresh,
		Logger:     logger,
	}
	if o.formats != "" {
		opts.Formats = strings.Split(o.formats, ",")
	}

	runner, err := c.newRunner(o.noCache)
	if err != nil {
		return fmt.Errorf("create cache: %w", err)
	}
	defer runner.Close()

	start := time.Now()
	var result *pipeline.Result
	if o.watch {
		result, err = c.runSolveWatch(cmd.Context(), runner, opts)
	} else {
		sp := newSpinnerWithContext(cmd.Context(), "solving...")
		sp.Start()
		result, err = runner.Execute(cmd.Context(), opts)
		sp.Stop()
	}
	if err != nil {
		return err
	}

	recordSession(cmd, result, opts, start)

	return c.finishSolve(o, p, result, start)
}

func recordSession(cmd *cobra.Command, result *pipeline.Result, opts pipeline.Options, start time.Time) {
	store, err := session.NewFileStore("")
	if err != nil {
		return
	}
	defer store.Close()

	var sol *problem.Solution
	if result.Status == solve.StatusOk {
		s := result.Solution
		sol = &s
	}
	sess := session.New(result.InputHash, opts.KeyOpts(), result.Status.String(), result.Backtracks, time.Since(start), sol)
	_ = store.Set(cmd.Context(), sess)
}

func (c *CLI) finishSolve(o *solveOpts, p problem.Problem, result *pipeline.Result, start time.Time) error {
	switch result.Status {
	case solve.StatusOk:
		printSuccess("solved (%s)", time.Since(start).Round(time.Millisecond))
	case solve.StatusNotFound:
		printError("infeasible at the given capacity")
		if len(result.IIS) > 0 {
			printDetail("irreducible infeasible subset: %s", strings.Join(result.IIS, ", "))
		}
	case solve.StatusDeadlineExceeded:
		printError("solver deadline exceeded")
	default:
		printError("solve aborted")
	}
	printStats(0, result.Backtracks, result.CacheInfo.SolveHit)

	if result.Status != solve.StatusOk {
		fmt.Fprintf(os.Stderr, "%s\n", time.Since(start).Round(time.Millisecond))
		return fmt.Errorf("solve: %s", result.Status.String())
	}

	if o.validate {
		if v := validate.Validate(p, result.Solution); v != validate.Good {
			printWarning("validation: %s", v.String())
		}
	} else if o.output != "" {
		printNextStep("check the result independently", fmt.Sprintf("minimalloc validate --input %s", o.output))
	}

	if o.printSolution {
		fmt.Fprint(os.Stderr, picture.Render(p, result.Solution, picture.Options{}))
	}

	for format, data := range result.Artifacts {
		path := outputPath(o.output, format)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("write %s output: %w", format, err)
		}
		printFile(path)
	}

	out := os.Stdout
	if o.output != "" {
		f, err := os.Create(o.output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}
	fmt.Fprint(out, csv.ToCSV(p, &result.Solution, false))

	fmt.Fprintf(os.Stderr, "%s\n", time.Since(start).Round(time.Millisecond))
	return nil
}

func outputPath(base, format string) string {
	if base == "" {
		base = "solution"
	}
	return fmt.Sprintf("%s.%s", strings.TrimSuffix(base, ".csv"), format)
}
