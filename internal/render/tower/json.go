package tower

import "encoding/json"

type jsonLayout struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Blocks []Block `json:"blocks"`
}

// RenderJSON exports the layout as a pretty-printed JSON document, the
// same block geometry RenderSVG draws, for tooling that wants positions
// without a rasterizer.
func RenderJSON(l Layout) ([]byte, error) {
	out := jsonLayout{Width: l.FrameWidth, Height: l.FrameHeight, Blocks: l.Blocks}
	if out.Blocks == nil {
		out.Blocks = []Block{}
	}
	return json.MarshalIndent(out, "", "  ")
}
