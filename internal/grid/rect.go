package grid

import (
	"fmt"
	"image"
)

// Rect is a pixel rectangle in sheet space: the origin is the bottom-left
// corner of the backing image and Y grows upward.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// String implements fmt.Stringer.
func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
}

// toImage converts a sheet-space rectangle into Go's Y-down image space
// relative to the given image bounds.
func (r Rect) toImage(b image.Rectangle) image.Rectangle {
	maxY := b.Max.Y - r.Y
	return image.Rect(b.Min.X+r.X, maxY-r.Height, b.Min.X+r.X+r.Width, maxY)
}

// Pivot is a normalized anchor inside a sub-view, (0,0) being bottom-left.
type Pivot struct {
	X float64
	Y float64
}

// Center anchors a sub-view at its middle.
var Center = Pivot{X: 0.5, Y: 0.5}
