package tower

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"

	"github.com/matzehuels/minimalloc/internal/render/tower/styles"
)

const blockInteractionCSS = `
    .block { transition: stroke-width 0.2s ease; }
    .block.highlight { stroke-width: 4; }
    .block-text { transition: transform 0.2s ease; transform-origin: center; transform-box: fill-box; }
    .block-text.highlight { transform: scale(1.08); font-weight: bold; }`

const blockInteractionJS = `
    function highlight(ids) {
      document.querySelectorAll('.block').forEach(b => b.classList.toggle('highlight', ids.includes(b.id.replace('block-', ''))));
      document.querySelectorAll('.block-text').forEach(t => t.classList.toggle('highlight', ids.includes(t.dataset.block)));
    }
    function clearHighlight() {
      document.querySelectorAll('.block, .block-text').forEach(el => el.classList.remove('highlight'));
    }
    document.querySelectorAll('.block').forEach(el => {
      el.addEventListener('mouseenter', () => highlight([el.id.replace('block-', '')]));
      el.addEventListener('mouseleave', clearHighlight);
    });`

// RenderOption configures SVG rendering.
type RenderOption func(*renderer)

type renderer struct {
	style styles.Style
}

// WithStyle selects the Style used to draw blocks and text.
func WithStyle(s styles.Style) RenderOption { return func(r *renderer) { r.style = s } }

// RenderSVG renders a Layout as a standalone SVG document.
func RenderSVG(l Layout, opts ...RenderOption) []byte {
	r := renderer{style: styles.Simple{}}
	for _, opt := range opts {
		opt(&r)
	}

	blocks := make([]styles.Block, 0, len(l.Blocks))
	for _, b := range l.Blocks {
		blocks = append(blocks, styles.Block{
			ID: b.ID,
			X:  b.Left, Y: b.Bottom,
			W: b.Width(), H: b.Height(),
			CX: b.CenterX(), CY: b.CenterY(),
		})
	}
	slices.SortFunc(blocks, func(a, b styles.Block) int { return cmp.Compare(a.ID, b.ID) })

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		l.FrameWidth, l.FrameHeight, l.FrameWidth, l.FrameHeight)

	r.style.RenderDefs(&buf)
	for _, b := range blocks {
		r.style.RenderBlock(&buf, b)
	}
	for _, b := range blocks {
		r.style.RenderText(&buf, b)
	}
	renderBlockInteraction(&buf)

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderBlockInteraction(buf *bytes.Buffer) {
	fmt.Fprintf(buf, "  <style>%s\n  </style>\n", blockInteractionCSS)
	fmt.Fprintf(buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", blockInteractionJS)
}
