package pipeline

import (
	"fmt"

	"github.com/matzehuels/minimalloc/internal/render/picture"
	"github.com/matzehuels/minimalloc/internal/render/tower"
	"github.com/matzehuels/minimalloc/pkg/alloc/problem"
)

// Render generates output artifacts for a solved problem in the
// requested formats.
func Render(p problem.Problem, sol problem.Solution, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte)

	var layout tower.Layout
	needsLayout := false
	for _, f := range opts.Formats {
		if f != FormatPicture {
			needsLayout = true
		}
	}
	if needsLayout {
		layout = tower.Build(p, sol, opts.Width, opts.Height)
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = tower.RenderSVG(layout)
		case FormatPNG:
			data, err = tower.RenderPNG(layout, opts.Scale)
		case FormatPDF:
			data, err = tower.RenderPDF(layout)
		case FormatJSON:
			data, err = tower.RenderJSON(layout)
		case FormatPicture:
			data = []byte(picture.Render(p, sol, picture.Options{}))
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}
