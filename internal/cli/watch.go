package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/minimalloc/pkg/pipeline"
)

// progressMsg carries a snapshot of the solver's running node/backtrack
// counters, sampled from Solver.OnProgress.
type progressMsg struct {
	nodesVisited int
	backtracks   int
}

// doneMsg carries the finished pipeline result (or error).
type doneMsg struct {
	result *pipeline.Result
	err    error
}

type watchModel struct {
	progress chan progressMsg
	done     chan doneMsg
	start    time.Time

	nodesVisited int
	backtracks   int
	result       *pipeline.Result
	err          error
	finished     bool
}

func newWatchModel(progress chan progressMsg, done chan doneMsg) watchModel {
	return watchModel{progress: progress, done: done, start: time.Now()}
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(waitForProgress(m.progress), waitForDone(m.done))
}

func waitForProgress(ch chan progressMsg) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return nil
		}
		return p
	}
}

func waitForDone(ch chan doneMsg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}
	case progressMsg:
		m.nodesVisited = msg.nodesVisited
		m.backtracks = msg.backtracks
		return m, waitForProgress(m.progress)
	case doneMsg:
		m.result = msg.result
		m.err = msg.err
		m.finished = true
		return m, tea.Quit
	}
	return m, nil
}

func (m watchModel) View() string {
	var b strings.Builder
	elapsed := time.Since(m.start).Round(100 * time.Millisecond)
	if m.finished {
		if m.err != nil {
			fmt.Fprintf(&b, "solve failed after %s: %v\n", elapsed, m.err)
		} else {
			fmt.Fprintf(&b, "solved in %s: %s backtracks %d\n", elapsed, m.result.Status.String(), m.result.Backtracks)
		}
		return b.String()
	}
	fmt.Fprintf(&b, "solving... %s\n", elapsed)
	fmt.Fprintf(&b, "nodes visited: %d\n", m.nodesVisited)
	fmt.Fprintf(&b, "backtracks:    %d\n", m.backtracks)
	b.WriteString(StyleDim.Render("(ctrl+c to cancel)"))
	b.WriteString("\n")
	return b.String()
}

// runSolveWatch runs the pipeline in a goroutine while a bubbletea
// program shows a live node/backtrack counter, sampled from the
// solver's progress hook.
func (c *CLI) runSolveWatch(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options) (*pipeline.Result, error) {
	solveCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	progress := make(chan progressMsg, 1)
	done := make(chan doneMsg, 1)

	opts.OnProgress = func(nodesVisited, backtracks int) {
		select {
		case progress <- progressMsg{nodesVisited: nodesVisited, backtracks: backtracks}:
		default:
		}
	}

	go func() {
		result, err := runner.Execute(solveCtx, opts)
		done <- doneMsg{result: result, err: err}
		close(progress)
	}()

	program := tea.NewProgram(newWatchModel(progress, done))
	finalModel, err := program.Run()
	if err != nil {
		return nil, fmt.Errorf("watch tui: %w", err)
	}

	m := finalModel.(watchModel)
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return nil, fmt.Errorf("watch cancelled before the solve finished")
	}
	return m.result, nil
}
