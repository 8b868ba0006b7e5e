// Package styles defines the visual appearance of tower blocks.
package styles

import "bytes"

// Style controls how a Block is drawn.
type Style interface {
	// RenderDefs writes SVG <defs> content (filters, patterns, gradients).
	RenderDefs(buf *bytes.Buffer)
	// RenderBlock writes the SVG for a single block shape.
	RenderBlock(buf *bytes.Buffer, b Block)
	// RenderText writes the SVG for a block's label text.
	RenderText(buf *bytes.Buffer, b Block)
}

// Block contains all data needed to render a single tower block.
type Block struct {
	ID         string  // Block identifier, used for both the label and the element id.
	X, Y, W, H float64 // Position and dimensions.
	CX, CY     float64 // Center coordinates (for text).
}
