// Package tower renders a solved allocation problem as a physical tower:
// time runs along the horizontal axis, address space along the vertical
// axis, and each buffer becomes a rectangle (or a staircase, when it has
// windowed gaps) resting at its assigned offset.
package tower

import "encoding/json"

// Block is a single rectangular (or staircase) region of the tower,
// positioned in the same user-unit space the SVG viewBox uses.
type Block struct {
	ID     string  `json:"id"`
	Left   float64 `json:"-"`
	Right  float64 `json:"-"`
	Bottom float64 `json:"-"`
	Top    float64 `json:"-"`
}

func (b Block) Width() float64   { return b.Right - b.Left }
func (b Block) Height() float64  { return b.Top - b.Bottom }
func (b Block) CenterX() float64 { return (b.Left + b.Right) / 2 }
func (b Block) CenterY() float64 { return (b.Bottom + b.Top) / 2 }

type jsonBlock struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// MarshalJSON emits the block as an {id, x, y, width, height} rectangle,
// not its raw Left/Right/Bottom/Top fields.
func (b Block) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonBlock{
		ID:     b.ID,
		X:      b.Left,
		Y:      b.Bottom,
		Width:  b.Width(),
		Height: b.Height(),
	})
}
