package export

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/HugoSmits86/nativewebp"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spritegrid/internal/grid"
)

// sheet paints each 8x8 frame of a 2x2 layout in its own colour.
func sheet(t *testing.T) *grid.Grid {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	colours := []color.NRGBA{
		{R: 255, A: 255}, {G: 255, A: 255},
		{B: 255, A: 255}, {R: 255, G: 255, A: 255},
	}
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetNRGBA(x, y, colours[(y/8)*2+x/8])
		}
	}
	g, err := grid.New(grid.Spec{
		Image:         img,
		FrameWidth:    8,
		FrameHeight:   8,
		PixelsPerUnit: 8,
		OnInitialized: func() {},
		OnFinalized:   func() {},
	})
	require.NoError(t, err)
	t.Cleanup(func() { g.Close() })
	return g
}

func TestUpscale(t *testing.T) {
	t.Parallel()

	src := image.NewNRGBA(image.Rect(4, 4, 6, 6))
	src.SetNRGBA(5, 5, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	t.Run("nearest replicates pixels", func(t *testing.T) {
		dst := Upscale(src, 3, false)
		assert.Equal(t, image.Rect(0, 0, 6, 6), dst.Bounds())
		for _, p := range []image.Point{{3, 3}, {5, 5}, {4, 3}} {
			assert.Equal(t, color.NRGBA{R: 10, G: 20, B: 30, A: 255}, dst.NRGBAAt(p.X, p.Y), p)
		}
		assert.Equal(t, color.NRGBA{}, dst.NRGBAAt(2, 2))
	})

	t.Run("non-positive factor keeps size", func(t *testing.T) {
		dst := Upscale(src, 0, true)
		assert.Equal(t, image.Rect(0, 0, 2, 2), dst.Bounds())
		assert.Equal(t, src.NRGBAAt(5, 5), dst.NRGBAAt(1, 1))
	})
}

func TestTrimAlpha(t *testing.T) {
	t.Parallel()

	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	img.SetNRGBA(2, 3, color.NRGBA{A: 255})
	img.SetNRGBA(6, 4, color.NRGBA{R: 9, A: 128})

	got := TrimAlpha(img)
	assert.Equal(t, image.Rect(0, 0, 5, 2), got.Bounds())
	assert.Equal(t, color.NRGBA{R: 9, A: 128}, got.NRGBAAt(4, 1))

	empty := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	assert.Same(t, empty, TrimAlpha(empty))
}

func TestRun_WritesEveryFrame(t *testing.T) {
	t.Parallel()

	g := sheet(t)
	out := t.TempDir()

	results, err := Run(context.Background(), Config{OutputDir: out, Scale: 2, Workers: 3}, g)
	require.NoError(t, err)
	require.Len(t, results, 4)

	for _, r := range results {
		require.True(t, r.Success, r.Error)
		assert.Equal(t, FrameName(r.Row, r.Column), r.Image)

		f, err := os.Open(filepath.Join(out, r.Image))
		require.NoError(t, err)
		img, err := nativewebp.Decode(f)
		f.Close()
		require.NoError(t, err)
		assert.Equal(t, 16, img.Bounds().Dx())
		assert.Equal(t, 16, img.Bounds().Dy())
	}

	// Row 0 holds the highest sheet Y, which is the top of the Go image.
	f, err := os.Open(filepath.Join(out, FrameName(0, 0)))
	require.NoError(t, err)
	defer f.Close()
	img, err := nativewebp.Decode(f)
	require.NoError(t, err)
	r, gr, b, a := img.At(img.Bounds().Min.X+4, img.Bounds().Min.Y+4).RGBA()
	assert.Equal(t, [4]uint32{0xffff, 0, 0, 0xffff}, [4]uint32{r, gr, b, a})
}

func TestRun_Cancelled(t *testing.T) {
	t.Parallel()

	g := sheet(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, Config{OutputDir: t.TempDir(), Workers: 1}, g)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteManifest(t *testing.T) {
	t.Parallel()

	g := sheet(t)
	results := []Result{
		{Row: 0, Column: 1, Rect: grid.Rect{X: 8, Y: 8, Width: 8, Height: 8}, Image: FrameName(0, 1), Success: true},
		{Row: 1, Column: 0, Error: "boom"},
	}

	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, WriteManifest(path, g, results))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got Manifest
	require.NoError(t, json.Unmarshal(data, &got))

	want := Manifest{
		Grid:          g.ID().String(),
		Columns:       2,
		Rows:          2,
		FrameWidth:    8,
		FrameHeight:   8,
		PixelsPerUnit: 8,
		Frames: []ManifestEntry{
			{Row: 0, Column: 1, X: 8, Y: 8, Width: 8, Height: 8, Image: "r00_c01.webp"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("manifest mismatch (-want +got):\n%s", diff)
	}
}
