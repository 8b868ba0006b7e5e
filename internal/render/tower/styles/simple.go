package styles

import (
	"bytes"
	"fmt"
)

// Simple is a clean, minimal style: solid white blocks with a thin dark
// outline and centered Times-serif labels, rotated when a block is
// taller than it is wide.
type Simple struct{}

var _ Style = Simple{}

func (Simple) RenderDefs(buf *bytes.Buffer) {}

func (Simple) RenderBlock(buf *bytes.Buffer, b Block) {
	radius := min(6.0, b.W/4, b.H/4)
	fmt.Fprintf(buf,
		`  <rect id="block-%s" class="block" x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="%.2f" ry="%.2f" fill="white" stroke="#333" stroke-width="1.5"/>`+"\n",
		EscapeXML(b.ID), b.X, b.Y, b.W, b.H, radius, radius)
}

func (Simple) RenderText(buf *bytes.Buffer, b Block) {
	rotated := ShouldRotate(b)
	label := TruncateLabel(b, rotated)
	fontSize := FontSize(b)
	if rotated {
		fontSize = FontSizeRotated(b)
	}

	fmt.Fprintf(buf, `  <g class="block-text" data-block="%s">`+"\n", EscapeXML(b.ID))
	if rotated {
		fmt.Fprintf(buf,
			`    <text x="%.2f" y="%.2f" text-anchor="middle" dominant-baseline="middle" font-family="Times,serif" font-size="%.2f" transform="rotate(-90 %.2f %.2f)">%s</text>`+"\n",
			b.CX, b.CY, fontSize, b.CX, b.CY, EscapeXML(label))
	} else {
		fmt.Fprintf(buf,
			`    <text x="%.2f" y="%.2f" text-anchor="middle" dominant-baseline="middle" font-family="Times,serif" font-size="%.2f">%s</text>`+"\n",
			b.CX, b.CY, fontSize, EscapeXML(label))
	}
	buf.WriteString("  </g>\n")
}
