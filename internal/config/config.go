package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
)

const (
	DefaultFrameSize = 32
	DefaultRetention = 20
	DefaultScale     = 1
)

// Config holds sheet locations, slicing layout and export settings.
type Config struct {
	// Paths
	BaseDir    string `json:"base_dir"`
	TextureDir string `json:"texture_dir"`
	OutputDir  string `json:"output_dir"`

	// Slicing
	FrameWidth    int     `json:"frame_width"`
	FrameHeight   int     `json:"frame_height"`
	PaddingWidth  int     `json:"padding_width"`
	PaddingHeight int     `json:"padding_height"`
	PixelsPerUnit float64 `json:"pixels_per_unit"`

	// Pool
	Retention *int `json:"retention,omitempty"`

	// Export
	Scale   int  `json:"scale"`
	Smooth  bool `json:"smooth"`
	Trim    bool `json:"trim"`
	Workers int  `json:"workers"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "[Load] failed to read config %s", path)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "[Load] failed to parse config %s", path)
	}
	if err := cfg.check(); err != nil {
		return Config{}, errors.Wrapf(err, "[Load] invalid config %s", path)
	}

	return cfg, nil
}

func (c *Config) check() error {
	switch {
	case c.FrameWidth < 0 || c.FrameHeight < 0:
		return errors.Errorf("frame size %dx%d must not be negative", c.FrameWidth, c.FrameHeight)
	case c.PaddingWidth < 0 || c.PaddingHeight < 0:
		return errors.Errorf("padding %dx%d must not be negative", c.PaddingWidth, c.PaddingHeight)
	case c.PixelsPerUnit < 0:
		return errors.Errorf("pixels per unit %v must not be negative", c.PixelsPerUnit)
	case c.Retention != nil && *c.Retention < 0:
		return errors.Errorf("retention %d must not be negative", *c.Retention)
	}
	return nil
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.TextureDir != "" {
		c.TextureDir = flags.TextureDir
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.FrameWidth > 0 {
		c.FrameWidth = flags.FrameWidth
	}
	if flags.FrameHeight > 0 {
		c.FrameHeight = flags.FrameHeight
	}
	if flags.Retention >= 0 {
		r := flags.Retention
		c.Retention = &r
	}
	if flags.Scale > 0 {
		c.Scale = flags.Scale
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}

	if c.BaseDir == "" {
		c.BaseDir, _ = os.Getwd()
	}

	// Resolve relative paths against base dir
	if c.TextureDir == "" {
		c.TextureDir = c.BaseDir
	} else if !filepath.IsAbs(c.TextureDir) {
		c.TextureDir = filepath.Join(c.BaseDir, c.TextureDir)
	}
	if c.OutputDir == "" {
		c.OutputDir = filepath.Join(c.BaseDir, "frames")
	} else if !filepath.IsAbs(c.OutputDir) {
		c.OutputDir = filepath.Join(c.BaseDir, c.OutputDir)
	}

	// Defaults for slicing and export settings
	if c.FrameWidth <= 0 {
		c.FrameWidth = DefaultFrameSize
	}
	if c.FrameHeight <= 0 {
		c.FrameHeight = c.FrameWidth
	}
	if c.Retention == nil {
		r := DefaultRetention
		c.Retention = &r
	}
	if c.Scale <= 0 {
		c.Scale = DefaultScale
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// PoolRetention returns the resolved retention capacity.
func (c *Config) PoolRetention() int {
	if c.Retention == nil {
		return DefaultRetention
	}
	return *c.Retention
}

// Flags holds CLI flag values that override config file settings.
// Retention is ignored when negative so that zero can be requested.
type Flags struct {
	TextureDir  string
	OutputDir   string
	FrameWidth  int
	FrameHeight int
	Retention   int
	Scale       int
	Workers     int
}

// NoFlags is a Flags value that overrides nothing.
var NoFlags = Flags{Retention: -1}
