package grid

import (
	"image"
	"image/color"
)

// SubView is a lightweight handle on one frame of a grid.
type SubView struct {
	grid   *Grid
	row    int
	column int
	rect   Rect
	pivot  Pivot
}

// Grid returns the grid the handle belongs to.
func (v *SubView) Grid() *Grid { return v.grid }

// Row returns the handle's row index.
func (v *SubView) Row() int { return v.row }

// Column returns the handle's column index.
func (v *SubView) Column() int { return v.column }

// Rect returns the frame rectangle in sheet space (Y up).
func (v *SubView) Rect() Rect { return v.rect }

// Pivot returns the normalized anchor the handle was created with.
func (v *SubView) Pivot() Pivot { return v.pivot }

// PixelsPerUnit returns the owning grid's scale.
func (v *SubView) PixelsPerUnit() float64 { return v.grid.shape.ppu }

// Bounds returns the frame rectangle in the backing image's own coordinates.
func (v *SubView) Bounds() image.Rectangle {
	return v.rect.toImage(v.grid.img.Bounds())
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// Image returns a view of the frame's pixels sharing the backing image's memory
// when the image type supports it.
func (v *SubView) Image() image.Image {
	r := v.Bounds()
	if si, ok := v.grid.img.(subImager); ok {
		return si.SubImage(r)
	}
	return &cropped{src: v.grid.img, r: r}
}

// cropped restricts an arbitrary image to a rectangle.
type cropped struct {
	src image.Image
	r   image.Rectangle
}

func (c *cropped) ColorModel() color.Model { return c.src.ColorModel() }
func (c *cropped) Bounds() image.Rectangle { return c.r }
func (c *cropped) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}.In(c.r)) {
		return color.Transparent
	}
	return c.src.At(x, y)
}
