// Package picture renders a solved allocation problem as colored ASCII
// bars in a terminal, one row per buffer, for the CLI's --print-solution
// flag: a quick visual sanity check without shelling out to a
// rasterizer.
package picture

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/minimalloc/pkg/alloc/problem"
)

var barColors = []lipgloss.Color{
	lipgloss.Color("36"), lipgloss.Color("35"), lipgloss.Color("220"),
	lipgloss.Color("75"), lipgloss.Color("167"), lipgloss.Color("141"),
	lipgloss.Color("214"), lipgloss.Color("51"),
}

var (
	styleID     = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Width(14)
	styleDetail = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Options configures the rendered picture.
type Options struct {
	// Columns is the terminal width to scale the time axis onto.
	Columns int
}

const defaultColumns = 60

// Render draws one bar per buffer, sorted by assigned offset, scaled so
// the full lifespan range spans opts.Columns characters.
func Render(p problem.Problem, sol problem.Solution, opts Options) string {
	columns := opts.Columns
	if columns <= 0 {
		columns = defaultColumns
	}

	var maxTime int64
	for _, b := range p.Buffers {
		if b.Lifespan.Upper > maxTime {
			maxTime = b.Lifespan.Upper
		}
	}
	if maxTime == 0 {
		return ""
	}

	order := make([]int, len(p.Buffers))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return sol.Offsets[order[i]] < sol.Offsets[order[j]]
	})

	var sb strings.Builder
	for _, i := range order {
		b := p.Buffers[i]
		lo := int(float64(b.Lifespan.Lower) * float64(columns) / float64(maxTime))
		hi := int(float64(b.Lifespan.Upper) * float64(columns) / float64(maxTime))
		if hi <= lo {
			hi = lo + 1
		}

		bar := strings.Repeat(" ", lo) +
			strings.Repeat("█", hi-lo) +
			strings.Repeat(" ", max(0, columns-hi))

		color := barColors[i%len(barColors)]
		sb.WriteString(styleID.Render(b.ID))
		sb.WriteString(lipgloss.NewStyle().Foreground(color).Render(bar))
		sb.WriteString(" ")
		sb.WriteString(styleDetail.Render(fmt.Sprintf("offset=%d size=%d", sol.Offsets[i], b.Size)))
		sb.WriteByte('\n')
	}
	return sb.String()
}
