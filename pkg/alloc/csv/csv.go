// Package csv reads and writes the two-dialect CSV encoding of problems
// and solutions: a "lower/upper" half-open dialect and a legacy
// "start/end" inclusive dialect (off by one on every upper bound).
package csv

import (
	"strconv"
	"strings"

	"github.com/matzehuels/minimalloc/pkg/alloc/buffer"
	"github.com/matzehuels/minimalloc/pkg/alloc/interval"
	"github.com/matzehuels/minimalloc/pkg/alloc/problem"
	pkgerrors "github.com/matzehuels/minimalloc/pkg/errors"
)

const (
	colAlignment = "alignment"
	colBegin     = "begin"
	colBuffer    = "buffer"
	colBufferID  = "buffer_id"
	colEnd       = "end"
	colGaps      = "gaps"
	colHint      = "hint"
	colID        = "id"
	colLower     = "lower"
	colOffset    = "offset"
	colSize      = "size"
	colStart     = "start"
	colUpper     = "upper"
)

func includeAlignment(p problem.Problem) bool {
	for _, b := range p.Buffers {
		if b.Alignment != 1 {
			return true
		}
	}
	return false
}

func includeHint(p problem.Problem) bool {
	for _, b := range p.Buffers {
		if b.Hint != nil {
			return true
		}
	}
	return false
}

func includeGaps(p problem.Problem) bool {
	for _, b := range p.Buffers {
		if len(b.Gaps) > 0 {
			return true
		}
	}
	return false
}

// ToCSV renders p (and, if solution is non-nil, its offsets) as CSV.
// oldFormat selects the legacy "start/end" inclusive dialect; otherwise
// the "lower/upper" half-open dialect is used.
func ToCSV(p problem.Problem, solution *problem.Solution, oldFormat bool) string {
	alignment := includeAlignment(p)
	hint := includeHint(p)
	gaps := includeGaps(p)
	var addend int64
	lowerCol, upperCol := colLower, colUpper
	if oldFormat {
		addend = -1
		lowerCol, upperCol = colStart, colEnd
	}

	header := []string{colID, lowerCol, upperCol, colSize}
	if alignment {
		header = append(header, colAlignment)
	}
	if hint {
		header = append(header, colHint)
	}
	if gaps {
		header = append(header, colGaps)
	}
	if solution != nil {
		header = append(header, colOffset)
	}

	var sb strings.Builder
	sb.WriteString(strings.Join(header, ","))
	sb.WriteByte('\n')

	for i, b := range p.Buffers {
		record := []string{
			b.ID,
			strconv.FormatInt(b.Lifespan.Lower, 10),
			strconv.FormatInt(b.Lifespan.Upper+addend, 10),
			strconv.FormatInt(b.Size, 10),
		}
		if alignment {
			record = append(record, strconv.FormatInt(b.Alignment, 10))
		}
		if hint {
			h := int64(-1)
			if b.Hint != nil {
				h = *b.Hint
			}
			record = append(record, strconv.FormatInt(h, 10))
		}
		if gaps {
			record = append(record, gapsToString(b.Gaps, addend))
		}
		if solution != nil {
			record = append(record, strconv.FormatInt(solution.Offsets[i], 10))
		}
		sb.WriteString(strings.Join(record, ","))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func gapsToString(gaps []buffer.Gap, addend int64) string {
	tokens := make([]string, len(gaps))
	for i, g := range gaps {
		token := strconv.FormatInt(g.Lifespan.Lower, 10) + "-" + strconv.FormatInt(g.Lifespan.Upper+addend, 10)
		if g.Window != nil {
			token += "@" + strconv.FormatInt(g.Window.Lower, 10) + ":" + strconv.FormatInt(g.Window.Upper, 10)
		}
		tokens[i] = token
	}
	return strings.Join(tokens, " ")
}

// FromCSV parses a problem from a CSV document. It recognizes both the
// lower/upper and begin/start/end/buffer/buffer_id column spellings. An
// "offset" column, if present, is read as each buffer's fixed offset
// constraint (not a solution) -- matching ToCSV, which writes a
// solution's offsets under that same header so a solved instance can be
// round-tripped back in as a fully constrained one.
func FromCSV(input string) (problem.Problem, error) {
	lines := strings.Split(input, "\n")

	var p problem.Problem
	colIdx := map[string]int{}
	var addend int64

	for _, line := range lines {
		if line == "" {
			break
		}
		fields := strings.Split(line, ",")

		if len(colIdx) == 0 {
			for i, name := range fields {
				switch name {
				case colBegin:
					name = colLower
				case colBuffer, colBufferID:
					name = colID
				case colEnd:
					name = colUpper
					addend = 1
				case colStart:
					name = colLower
				}
				colIdx[name] = i
			}
			if len(colIdx) != len(fields) {
				return problem.Problem{}, pkgerrors.New(pkgerrors.CodeInvalidArgument, "duplicate column names")
			}
			for _, required := range []string{colID, colLower, colUpper, colSize} {
				if _, ok := colIdx[required]; !ok {
					return problem.Problem{}, pkgerrors.New(pkgerrors.CodeNotFound, "required column %q is missing", required)
				}
			}
			continue
		}

		if len(fields) != len(colIdx) {
			return problem.Problem{}, pkgerrors.New(pkgerrors.CodeInvalidArgument, "record has wrong number of fields")
		}

		id := fields[colIdx[colID]]
		lower, err1 := strconv.ParseInt(fields[colIdx[colLower]], 10, 64)
		upper, err2 := strconv.ParseInt(fields[colIdx[colUpper]], 10, 64)
		size, err3 := strconv.ParseInt(fields[colIdx[colSize]], 10, 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return problem.Problem{}, pkgerrors.New(pkgerrors.CodeInvalidArgument, "improperly formed integer")
		}

		alignment := int64(1)
		if idx, ok := colIdx[colAlignment]; ok {
			v, err := strconv.ParseInt(fields[idx], 10, 64)
			if err != nil {
				return problem.Problem{}, pkgerrors.New(pkgerrors.CodeInvalidArgument, "improperly formed alignment: %s", fields[idx])
			}
			alignment = v
		}

		var hint *int64
		if idx, ok := colIdx[colHint]; ok {
			v, err := strconv.ParseInt(fields[idx], 10, 64)
			if err != nil {
				return problem.Problem{}, pkgerrors.New(pkgerrors.CodeInvalidArgument, "improperly formed hint")
			}
			if v >= 0 {
				hint = &v
			}
		}

		var gaps []buffer.Gap
		if idx, ok := colIdx[colGaps]; ok && fields[idx] != "" {
			g, err := parseGaps(fields[idx], addend)
			if err != nil {
				return problem.Problem{}, err
			}
			gaps = g
		}

		var offset *int64
		if idx, ok := colIdx[colOffset]; ok {
			v, err := strconv.ParseInt(fields[idx], 10, 64)
			if err != nil {
				return problem.Problem{}, pkgerrors.New(pkgerrors.CodeInvalidArgument, "improperly formed offset")
			}
			offset = &v
		}

		p.Buffers = append(p.Buffers, buffer.Buffer{
			ID:        id,
			Lifespan:  interval.New(lower, upper+addend),
			Size:      size,
			Alignment: alignment,
			Gaps:      gaps,
			Offset:    offset,
			Hint:      hint,
		})
	}

	return p, nil
}

func parseGaps(raw string, addend int64) ([]buffer.Gap, error) {
	tokens := strings.Fields(raw)
	gaps := make([]buffer.Gap, 0, len(tokens))
	for _, tok := range tokens {
		at := strings.SplitN(tok, "@", 2)
		pair := strings.SplitN(at[0], "-", 2)
		if len(pair) != 2 {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidArgument, "improperly formed gap: %s", tok)
		}
		lower, err1 := strconv.ParseInt(pair[0], 10, 64)
		upper, err2 := strconv.ParseInt(pair[1], 10, 64)
		if err1 != nil || err2 != nil {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidArgument, "improperly formed gap: %s", tok)
		}
		g := buffer.Gap{Lifespan: interval.New(lower, upper+addend)}
		if len(at) > 1 {
			wpair := strings.SplitN(at[1], ":", 2)
			if len(wpair) != 2 {
				return nil, pkgerrors.New(pkgerrors.CodeInvalidArgument, "improperly formed gap: %s", tok)
			}
			wlo, err3 := strconv.ParseInt(wpair[0], 10, 64)
			whi, err4 := strconv.ParseInt(wpair[1], 10, 64)
			if err3 != nil || err4 != nil {
				return nil, pkgerrors.New(pkgerrors.CodeInvalidArgument, "improperly formed gap: %s", tok)
			}
			w := interval.New(wlo, whi)
			g.Window = &w
		}
		gaps = append(gaps, g)
	}
	return gaps, nil
}
