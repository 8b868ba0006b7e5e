package styles

import (
	"bytes"
	"strings"
	"testing"
)

func TestSimpleRenderDefs(t *testing.T) {
	s := Simple{}
	var buf bytes.Buffer
	s.RenderDefs(&buf)
	if buf.Len() != 0 {
		t.Errorf("RenderDefs() wrote %d bytes, want 0", buf.Len())
	}
}

func TestSimpleRenderBlock(t *testing.T) {
	s := Simple{}

	tests := []struct {
		name     string
		block    Block
		contains []string
	}{
		{
			name:  "basic block",
			block: Block{ID: "buf-0", X: 10, Y: 20, W: 100, H: 50},
			contains: []string{
				`<rect`,
				`id="block-buf-0"`,
				`class="block"`,
				`x="10.00"`,
				`y="20.00"`,
				`width="100.00"`,
				`height="50.00"`,
				`fill="white"`,
				`stroke="#333"`,
			},
		},
		{
			name:     "special chars in ID are escaped",
			block:    Block{ID: "buf<script>", X: 0, Y: 0, W: 50, H: 50},
			contains: []string{`id="block-buf&lt;script&gt;"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			s.RenderBlock(&buf, tt.block)
			output := buf.String()
			for _, want := range tt.contains {
				if !strings.Contains(output, want) {
					t.Errorf("RenderBlock() missing %q\ngot: %s", want, output)
				}
			}
		})
	}
}

func TestSimpleRenderBlockCornerRadius(t *testing.T) {
	s := Simple{}
	var buf bytes.Buffer
	s.RenderBlock(&buf, Block{ID: "small", X: 0, Y: 0, W: 30, H: 30})
	output := buf.String()
	if !strings.Contains(output, "rx=") || !strings.Contains(output, "ry=") {
		t.Error("RenderBlock() should include corner radius")
	}
}

func TestSimpleRenderText(t *testing.T) {
	s := Simple{}

	tests := []struct {
		name     string
		block    Block
		contains []string
	}{
		{
			name:  "horizontal text",
			block: Block{ID: "buf", X: 0, Y: 0, W: 100, H: 30, CX: 50, CY: 15},
			contains: []string{
				`<g class="block-text"`,
				`data-block="buf"`,
				`<text`,
				`text-anchor="middle"`,
				`font-family="Times,serif"`,
				`>buf</text>`,
			},
		},
		{
			name:     "rotated text for a tall narrow block",
			block:    Block{ID: "tall-buffer", X: 0, Y: 0, W: 30, H: 100, CX: 15, CY: 50},
			contains: []string{`transform="rotate(-90`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			s.RenderText(&buf, tt.block)
			output := buf.String()
			for _, want := range tt.contains {
				if !strings.Contains(output, want) {
					t.Errorf("RenderText() missing %q\ngot: %s", want, output)
				}
			}
		})
	}
}

func TestSimpleRenderTextEscapesXML(t *testing.T) {
	s := Simple{}
	block := Block{ID: "<script>", X: 0, Y: 0, W: 100, H: 30, CX: 50, CY: 15}

	var buf bytes.Buffer
	s.RenderText(&buf, block)
	output := buf.String()
	if strings.Contains(output, "<script>") {
		t.Error("RenderText() should escape < in ID")
	}
}

func TestSimpleImplementsStyle(t *testing.T) {
	var _ Style = Simple{}
}
