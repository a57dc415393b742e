package export

import (
	"image"

	"golang.org/x/image/draw"
)

// Upscale copies img into an origin-anchored NRGBA canvas factor times its size.
// Nearest-neighbour keeps pixel art crisp; smooth switches to CatmullRom.
func Upscale(img image.Image, factor int, smooth bool) *image.NRGBA {
	if factor < 1 {
		factor = 1
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))

	var scaler draw.Scaler = draw.NearestNeighbor
	if smooth && factor > 1 {
		scaler = draw.CatmullRom
	}
	scaler.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// TrimAlpha crops img to the smallest rectangle holding every non-transparent
// pixel, re-anchored at the origin. A fully transparent frame is returned unchanged.
func TrimAlpha(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	minX, minY, maxX, maxY := b.Max.X, b.Max.Y, b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.Pix[img.PixOffset(x, y)+3] == 0 {
				continue
			}
			minX, minY = min(minX, x), min(minY, y)
			maxX, maxY = max(maxX, x), max(maxY, y)
		}
	}
	if maxX < minX {
		return img
	}
	r := image.Rect(minX, minY, maxX+1, maxY+1)
	dst := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Copy(dst, image.Point{}, img, r, draw.Src, nil)
	return dst
}
