package grid

import (
	"image"
	"math"

	"spritegrid/internal/gridfault"
)

// DefaultPixelsPerUnit is used when neither the caller nor the backing image
// provides a scale.
const DefaultPixelsPerUnit = 100

// NativeScaler is implemented by backing images that know their own
// pixels-per-unit scale.
type NativeScaler interface {
	PixelsPerUnit() float64
}

// Spec describes how to slice a backing image.
type Spec struct {
	Image image.Image

	// SubRect restricts slicing to part of the image. Nil means the whole image.
	SubRect *Rect

	FrameWidth    int
	FrameHeight   int
	PaddingWidth  int
	PaddingHeight int

	// PixelsPerUnit of zero selects the image's native scale.
	PixelsPerUnit float64

	// OnInitialized runs once after validation succeeds. For grids built by a
	// pool it runs with the pool lock held and must not call back into the pool.
	OnInitialized func()
	// OnFinalized runs at most once, when the grid is disposed.
	OnFinalized func()
}

// layout is the validated, derived form of a Spec.
type layout struct {
	subRect       Rect
	ppu           float64
	columns, rows int
}

func invalid(field string, value any, detail string) error {
	return gridfault.InvalidArgument(gridfault.PhaseConstruct, field, value, detail)
}

// validate checks every construction invariant and derives the grid layout.
func (s Spec) validate() (layout, error) {
	var l layout

	if s.Image == nil {
		return l, gridfault.NilPointer(gridfault.PhaseConstruct, "Image")
	}
	b := s.Image.Bounds()
	if b.Empty() {
		return l, invalid("Image", b, "backing image has no pixels")
	}

	l.subRect = Rect{Width: b.Dx(), Height: b.Dy()}
	if s.SubRect != nil {
		r := *s.SubRect
		if r.X < 0 || r.Y < 0 || r.Width <= 0 || r.Height <= 0 ||
			r.Width > b.Dx()-r.X || r.Height > b.Dy()-r.Y {
			return l, invalid("SubRect", r,
				"sub-rectangle must have strictly positive size, non-negative position "+
					"and stay within the backing image")
		}
		l.subRect = r
	}

	if s.FrameWidth <= 0 {
		return l, invalid("FrameWidth", s.FrameWidth, "frame width must be positive")
	}
	if s.FrameHeight <= 0 {
		return l, invalid("FrameHeight", s.FrameHeight, "frame height must be positive")
	}
	if s.PaddingWidth < 0 {
		return l, invalid("PaddingWidth", s.PaddingWidth, "padding width cannot be negative")
	}
	if s.PaddingHeight < 0 {
		return l, invalid("PaddingHeight", s.PaddingHeight, "padding height cannot be negative")
	}

	l.ppu = s.PixelsPerUnit
	if l.ppu == 0 {
		l.ppu = DefaultPixelsPerUnit
		if ns, ok := s.Image.(NativeScaler); ok {
			l.ppu = ns.PixelsPerUnit()
		}
	}
	if !(l.ppu > 0) || math.IsInf(l.ppu, 1) {
		return l, invalid("PixelsPerUnit", l.ppu, "pixels per unit must be positive")
	}

	// Frame plus padding must fit an int; anything that large cannot divide the image anyway.
	if s.FrameWidth > math.MaxInt-s.PaddingWidth {
		return l, invalid("PaddingWidth", s.PaddingWidth, "frame width plus padding overflows")
	}
	if s.FrameHeight > math.MaxInt-s.PaddingHeight {
		return l, invalid("PaddingHeight", s.PaddingHeight, "frame height plus padding overflows")
	}

	cellW := s.FrameWidth + s.PaddingWidth
	cellH := s.FrameHeight + s.PaddingHeight
	if l.subRect.Width%cellW != 0 {
		return l, gridfault.New(gridfault.PhaseConstruct, gridfault.KindNotDivisible).
			Field("FrameWidth").
			Value(l.subRect.Width).
			Detail("width %d is not a multiple of frame+padding width %d", l.subRect.Width, cellW).
			Build()
	}
	if l.subRect.Height%cellH != 0 {
		return l, gridfault.New(gridfault.PhaseConstruct, gridfault.KindNotDivisible).
			Field("FrameHeight").
			Value(l.subRect.Height).
			Detail("height %d is not a multiple of frame+padding height %d", l.subRect.Height, cellH).
			Build()
	}

	l.columns = l.subRect.Width / cellW
	l.rows = l.subRect.Height / cellH
	return l, nil
}
