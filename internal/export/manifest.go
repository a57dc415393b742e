package export

import (
	"encoding/json"
	"fmt"
	"os"

	"spritegrid/internal/grid"
)

// Manifest describes one exported sheet.
type Manifest struct {
	Grid          string          `json:"grid"`
	Columns       int             `json:"columns"`
	Rows          int             `json:"rows"`
	FrameWidth    int             `json:"frame_width"`
	FrameHeight   int             `json:"frame_height"`
	PixelsPerUnit float64         `json:"pixels_per_unit"`
	Frames        []ManifestEntry `json:"frames"`
}

// ManifestEntry represents one exported frame.
type ManifestEntry struct {
	Row    int    `json:"row"`
	Column int    `json:"column"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Image  string `json:"image"`
}

// BuildManifest lists the successful results for g in row-major order.
func BuildManifest(g *grid.Grid, results []Result) Manifest {
	m := Manifest{
		Grid:          g.ID().String(),
		Columns:       g.Columns(),
		Rows:          g.Rows(),
		FrameWidth:    g.FrameWidth(),
		FrameHeight:   g.FrameHeight(),
		PixelsPerUnit: g.PixelsPerUnit(),
		Frames:        make([]ManifestEntry, 0, len(results)),
	}
	for _, r := range results {
		if !r.Success {
			continue
		}
		m.Frames = append(m.Frames, ManifestEntry{
			Row:    r.Row,
			Column: r.Column,
			X:      r.Rect.X,
			Y:      r.Rect.Y,
			Width:  r.Rect.Width,
			Height: r.Rect.Height,
			Image:  r.Image,
		})
	}
	return m
}

// WriteManifest writes the manifest for g as indented JSON.
func WriteManifest(path string, g *grid.Grid, results []Result) error {
	data, err := json.MarshalIndent(BuildManifest(g, results), "", "  ")
	if err != nil {
		return fmt.Errorf("export: encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	return nil
}
