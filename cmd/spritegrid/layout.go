package main

import (
	"image"

	"go.uber.org/zap"

	"spritegrid/internal/config"
	"spritegrid/internal/grid"
	"spritegrid/internal/logging"
	"spritegrid/internal/texture"
)

// layoutOf returns the slicing parameters from cfg without an image.
func layoutOf(cfg config.Config) grid.Spec {
	return grid.Spec{
		FrameWidth:    cfg.FrameWidth,
		FrameHeight:   cfg.FrameHeight,
		PaddingWidth:  cfg.PaddingWidth,
		PaddingHeight: cfg.PaddingHeight,
		PixelsPerUnit: cfg.PixelsPerUnit,
	}
}

// openSheet decodes path and slices it as a standalone grid.
func openSheet(cfg config.Config, path string) (*grid.Grid, error) {
	img, err := texture.LoadTexture(path)
	if err != nil {
		return nil, err
	}
	return sliceImage(cfg, path, img)
}

func sliceImage(cfg config.Config, path string, img image.Image) (*grid.Grid, error) {
	log := logging.Logger().With(zap.String("sheet", path))
	spec := layoutOf(cfg)
	spec.Image = img
	spec.OnInitialized = func() { log.Debug("sheet referenced") }
	spec.OnFinalized = func() { log.Debug("sheet released") }
	return grid.New(spec)
}
