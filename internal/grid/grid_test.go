package grid

import (
	"errors"
	"image"
	"image/color"
	"math"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spritegrid/internal/gridfault"
)

func sheet(w, h int) *image.NRGBA {
	return image.NewNRGBA(image.Rect(0, 0, w, h))
}

func newTestGrid(t *testing.T, spec Spec) *Grid {
	t.Helper()
	if spec.OnInitialized == nil {
		spec.OnInitialized = func() {}
	}
	if spec.OnFinalized == nil {
		spec.OnFinalized = func() {}
	}
	g, err := New(spec)
	require.NoError(t, err)
	return g
}

type scaledImage struct {
	*image.NRGBA
	ppu float64
}

func (s scaledImage) PixelsPerUnit() float64 { return s.ppu }

func TestNew_Layout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		spec    Spec
		columns int
		rows    int
		ppu     float64
	}{
		{
			name:    "square sheet",
			spec:    Spec{Image: sheet(64, 64), FrameWidth: 32, FrameHeight: 32, PixelsPerUnit: 32},
			columns: 2, rows: 2, ppu: 32,
		},
		{
			name: "padding counts toward cell size",
			spec: Spec{Image: sheet(102, 34), FrameWidth: 32, FrameHeight: 32,
				PaddingWidth: 2, PaddingHeight: 2, PixelsPerUnit: 16},
			columns: 3, rows: 1, ppu: 16,
		},
		{
			name: "sub-rectangle is the sliced area",
			spec: Spec{Image: sheet(100, 100), SubRect: &Rect{X: 10, Y: 20, Width: 48, Height: 32},
				FrameWidth: 16, FrameHeight: 16, PixelsPerUnit: 1},
			columns: 3, rows: 2, ppu: 1,
		},
		{
			name:    "default scale",
			spec:    Spec{Image: sheet(32, 32), FrameWidth: 8, FrameHeight: 8},
			columns: 4, rows: 4, ppu: DefaultPixelsPerUnit,
		},
		{
			name:    "native scale",
			spec:    Spec{Image: scaledImage{NRGBA: sheet(32, 32), ppu: 48}, FrameWidth: 8, FrameHeight: 8},
			columns: 4, rows: 4, ppu: 48,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := newTestGrid(t, tt.spec)
			assert.Equal(t, tt.columns, g.Columns())
			assert.Equal(t, tt.rows, g.Rows())
			assert.InDelta(t, tt.ppu, g.PixelsPerUnit(), 1e-9)
			assert.Equal(t, 0, g.Materialized())
		})
	}
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	base := func() Spec {
		return Spec{Image: sheet(64, 64), FrameWidth: 32, FrameHeight: 32, PixelsPerUnit: 32}
	}

	tests := []struct {
		name   string
		mutate func(*Spec)
		kind   gridfault.Kind
		field  string
	}{
		{"nil image", func(s *Spec) { s.Image = nil }, gridfault.KindNilPointer, "Image"},
		{"empty image", func(s *Spec) { s.Image = sheet(0, 0) }, gridfault.KindInvalidArgument, "Image"},
		{"zero frame width", func(s *Spec) { s.FrameWidth = 0 }, gridfault.KindInvalidArgument, "FrameWidth"},
		{"negative frame height", func(s *Spec) { s.FrameHeight = -4 }, gridfault.KindInvalidArgument, "FrameHeight"},
		{"negative padding", func(s *Spec) { s.PaddingWidth = -1 }, gridfault.KindInvalidArgument, "PaddingWidth"},
		{"negative scale", func(s *Spec) { s.PixelsPerUnit = -1 }, gridfault.KindInvalidArgument, "PixelsPerUnit"},
		{"width not divisible", func(s *Spec) { s.FrameWidth = 30 }, gridfault.KindNotDivisible, "FrameWidth"},
		{"height not divisible with padding", func(s *Spec) { s.PaddingHeight = 1 }, gridfault.KindNotDivisible, "FrameHeight"},
		{"sub-rect past right edge", func(s *Spec) { s.SubRect = &Rect{X: 40, Width: 32, Height: 32} }, gridfault.KindInvalidArgument, "SubRect"},
		{"sub-rect negative origin", func(s *Spec) { s.SubRect = &Rect{Y: -1, Width: 32, Height: 32} }, gridfault.KindInvalidArgument, "SubRect"},
		{"sub-rect empty", func(s *Spec) { s.SubRect = &Rect{Width: 0, Height: 32} }, gridfault.KindInvalidArgument, "SubRect"},
		{"sub-rect width overflows", func(s *Spec) { s.SubRect = &Rect{X: 1, Width: math.MaxInt, Height: 64}; s.FrameWidth = 1 }, gridfault.KindInvalidArgument, "SubRect"},
		{"sub-rect height overflows", func(s *Spec) { s.SubRect = &Rect{Y: 64, Width: 64, Height: math.MaxInt} }, gridfault.KindInvalidArgument, "SubRect"},
		{"frame plus padding overflows", func(s *Spec) { s.FrameWidth = math.MaxInt; s.PaddingWidth = 1 }, gridfault.KindInvalidArgument, "PaddingWidth"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			spec := base()
			initialized := 0
			spec.OnInitialized = func() { initialized++ }
			tt.mutate(&spec)

			g, err := New(spec)
			require.Error(t, err)
			assert.Nil(t, g)
			assert.Zero(t, initialized, "OnInitialized must not fire on a failed construction")

			var ge *gridfault.Error
			require.True(t, errors.As(err, &ge))
			assert.Equal(t, gridfault.PhaseConstruct, ge.Phase)
			assert.Equal(t, tt.kind, ge.Kind)
			assert.Equal(t, tt.field, ge.Field)
		})
	}
}

func TestSubView_Rectangles(t *testing.T) {
	t.Parallel()

	g := newTestGrid(t, Spec{Image: sheet(64, 64), FrameWidth: 32, FrameHeight: 32, PixelsPerUnit: 32})

	v00, err := g.SubView(0, 0)
	require.NoError(t, err)
	v11, err := g.SubView(1, 1)
	require.NoError(t, err)

	if diff := cmp.Diff(Rect{X: 0, Y: 32, Width: 32, Height: 32}, v00.Rect()); diff != "" {
		t.Errorf("cell (0,0) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Rect{X: 32, Y: 0, Width: 32, Height: 32}, v11.Rect()); diff != "" {
		t.Errorf("cell (1,1) mismatch (-want +got):\n%s", diff)
	}
}

func TestSubView_PaddingAndSubRect(t *testing.T) {
	t.Parallel()

	g := newTestGrid(t, Spec{
		Image:        sheet(128, 128),
		SubRect:      &Rect{X: 8, Y: 4, Width: 36, Height: 54},
		FrameWidth:   16,
		FrameHeight:  16,
		PaddingWidth: 2, PaddingHeight: 2,
		PixelsPerUnit: 16,
	})
	require.Equal(t, 2, g.Columns())
	require.Equal(t, 3, g.Rows())

	v, err := g.SubView(2, 1)
	require.NoError(t, err)
	// x = 1*18 + 8, y = 54 - 3*18 + 4
	assert.Equal(t, Rect{X: 26, Y: 4, Width: 16, Height: 16}, v.Rect())
}

func TestSubView_CachedHandle(t *testing.T) {
	t.Parallel()

	g := newTestGrid(t, Spec{Image: sheet(64, 64), FrameWidth: 32, FrameHeight: 32})

	first, err := g.SubViewPivot(1, 0, Center)
	require.NoError(t, err)
	second, err := g.SubView(1, 0)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, Center, second.Pivot(), "the first pivot wins")
	assert.Equal(t, 1, g.Materialized())
}

func TestSubView_OutOfRange(t *testing.T) {
	t.Parallel()

	g := newTestGrid(t, Spec{Image: sheet(64, 32), FrameWidth: 32, FrameHeight: 32})

	for _, c := range []Cell{{Column: 2, Row: 0}, {Column: 0, Row: 1}, {Column: -1, Row: 0}, {Column: 0, Row: -1}} {
		_, err := g.SubView(c.Row, c.Column)
		assert.ErrorIs(t, err, &gridfault.Error{Phase: gridfault.PhaseSlice, Kind: gridfault.KindOutOfBounds}, "cell %+v", c)
	}
}

func TestSubView_ConcurrentMaterialization(t *testing.T) {
	t.Parallel()

	g := newTestGrid(t, Spec{Image: sheet(64, 64), FrameWidth: 16, FrameHeight: 16})

	var wg sync.WaitGroup
	got := make([]*SubView, 16)
	for i := range got {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := g.SubView(3, 2)
			if err == nil {
				got[i] = v
			}
		}()
	}
	wg.Wait()

	for _, v := range got {
		assert.Same(t, got[0], v)
	}
}

func TestSubView_ImageMapsSheetSpace(t *testing.T) {
	t.Parallel()

	img := sheet(2, 2)
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(1, 1, color.NRGBA{B: 255, A: 255})

	g := newTestGrid(t, Spec{Image: img, FrameWidth: 1, FrameHeight: 1})

	// Row 0 has the highest sheet Y, which is the first pixel row in Go's Y-down space.
	first, err := g.SubView(0, 0)
	require.NoError(t, err)
	assert.Equal(t, Rect{X: 0, Y: 1, Width: 1, Height: 1}, first.Rect())
	assert.Equal(t, image.Rect(0, 0, 1, 1), first.Bounds())
	r, _, _, _ := first.Image().At(0, 0).RGBA()
	assert.NotZero(t, r)

	last, err := g.SubView(1, 1)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(1, 1, 2, 2), last.Bounds())
	_, _, b, _ := last.Image().At(1, 1).RGBA()
	assert.NotZero(t, b)
}

func TestStandalone_UseReleaseClose(t *testing.T) {
	t.Parallel()

	finalized := 0
	g := newTestGrid(t, Spec{
		Image: sheet(32, 32), FrameWidth: 32, FrameHeight: 32,
		OnFinalized: func() { finalized++ },
	})

	g.Use()
	g.Use()
	assert.Equal(t, 2, g.Holders())

	err := g.Close()
	assert.ErrorIs(t, err, &gridfault.Error{Phase: gridfault.PhaseDispose, Kind: gridfault.KindInUse})
	assert.False(t, g.Disposed())

	g.Release()
	g.Release()
	g.Release() // unmatched, ignored
	assert.Equal(t, 0, g.Holders())

	require.NoError(t, g.Close())
	require.NoError(t, g.Close())
	assert.True(t, g.Disposed())
	assert.Equal(t, 1, finalized)

	g.Use()
	assert.Equal(t, 0, g.Holders(), "a disposed grid takes no holders")
}

type countingTracker struct {
	used, released int
}

func (c *countingTracker) Used(*Grid)         { c.used++ }
func (c *countingTracker) Released(*Grid)     { c.released++ }
func (c *countingTracker) RefCount(*Grid) int { return c.used - c.released }

func TestTracked_ForwardsLifetime(t *testing.T) {
	t.Parallel()

	tr := &countingTracker{}
	g, err := New(Spec{Image: sheet(32, 32), FrameWidth: 16, FrameHeight: 16,
		OnInitialized: func() {}, OnFinalized: func() {}}, WithTracker(tr))
	require.NoError(t, err)

	g.Use()
	g.Use()
	g.Release()
	assert.Equal(t, 2, tr.used)
	assert.Equal(t, 1, tr.released)
	assert.Equal(t, 1, g.Holders())
	assert.Same(t, tr, g.Tracker())

	assert.ErrorIs(t, g.Close(), &gridfault.Error{Phase: gridfault.PhaseDispose, Kind: gridfault.KindInvalidArgument})
}

func TestNew_CallbacksOptional(t *testing.T) {
	t.Parallel()

	g, err := New(Spec{Image: sheet(16, 16), FrameWidth: 16, FrameHeight: 16})
	require.NoError(t, err)
	require.NoError(t, g.Close())
	assert.True(t, g.Disposed())
}
