package export

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"spritegrid/internal/grid"
	"spritegrid/internal/logging"
)

// Config holds the settings shared by every frame of an export run.
type Config struct {
	OutputDir string
	Scale     int
	Smooth    bool
	Trim      bool
	Workers   int
}

// Result holds the outcome of exporting one frame.
type Result struct {
	Row     int
	Column  int
	Rect    grid.Rect
	Image   string // path relative to OutputDir
	Success bool
	Error   string
}

// FrameName is the file name a frame is written under.
func FrameName(row, column int) string {
	return fmt.Sprintf("r%02d_c%02d.webp", row, column)
}

// Run exports every frame of g using a bounded worker pool. Per-frame
// failures are reported in the results; the returned error is only set when
// ctx is cancelled or the output directory cannot be created.
func Run(ctx context.Context, cfg Config, g *grid.Grid) ([]Result, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("export: create %s: %w", cfg.OutputDir, err)
	}

	log := logging.Logger().With(zap.Stringer("grid", g.ID()))
	total := g.Columns() * g.Rows()
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					rate := float64(p) / time.Since(start).Seconds()
					log.Info("export progress",
						zap.Int64("done", p),
						zap.Int("total", total),
						zap.Float64("frames_per_sec", rate))
				}
			}
		}
	}()

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(cfg.Workers)

	for row := 0; row < g.Rows(); row++ {
		for col := 0; col < g.Columns(); col++ {
			idx := row*g.Columns() + col
			eg.Go(func() error {
				if err := egCtx.Err(); err != nil {
					return err
				}
				results[idx] = exportFrame(cfg, g, row, col)
				processed.Add(1)
				return nil
			})
		}
	}

	if err := eg.Wait(); err != nil {
		return results, err
	}

	log.Debug("export finished",
		zap.Int("frames", total),
		zap.Duration("elapsed", time.Since(start)))
	return results, nil
}

func exportFrame(cfg Config, g *grid.Grid, row, col int) Result {
	res := Result{Row: row, Column: col}

	sv, err := g.SubView(row, col)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Rect = sv.Rect()

	img := Upscale(sv.Image(), cfg.Scale, cfg.Smooth)
	if cfg.Trim {
		img = TrimAlpha(img)
	}

	name := FrameName(row, col)
	if err := writeWebP(filepath.Join(cfg.OutputDir, name), img); err != nil {
		res.Error = err.Error()
		return res
	}

	res.Image = name
	res.Success = true
	return res
}

func writeWebP(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", path, err)
	}
	if err := nativewebp.Encode(f, img, nil); err != nil {
		f.Close()
		return fmt.Errorf("export: webp encode %s: %w", path, err)
	}
	return f.Close()
}
