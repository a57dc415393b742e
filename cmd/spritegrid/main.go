package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"spritegrid/internal/config"
	"spritegrid/internal/logging"
)

// settings carries the flags shared by every subcommand.
type settings struct {
	configFile string
	verbose    bool
	flags      config.Flags

	cfg config.Config
}

func main() {
	s := &settings{flags: config.NoFlags}

	rootCmd := &cobra.Command{
		Use:   "spritegrid",
		Short: "Slice sprite sheets into frame grids",
		Long: `spritegrid slices sprite sheets into fixed-size frames.

It can inspect a sheet's layout, export every frame as WebP with a
JSON manifest, and simulate pooled grids shared between animated slots.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logging.Logger().Sync()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&s.configFile, "config", "", "Path to a JSON config file")
	pf.BoolVarP(&s.verbose, "verbose", "v", false, "Enable debug logging")
	pf.IntVar(&s.flags.FrameWidth, "frame-width", 0, "Frame width in pixels (default: 32)")
	pf.IntVar(&s.flags.FrameHeight, "frame-height", 0, "Frame height in pixels (default: frame width)")

	rootCmd.AddCommand(
		inspectCmd(s),
		sliceCmd(s),
		simulateCmd(s),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// setup installs the logger and resolves the configuration.
func (s *settings) setup() error {
	log, err := logging.New(s.verbose)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	logging.SetLogger(log)

	if s.configFile != "" {
		cfg, err := config.Load(s.configFile)
		if err != nil {
			return err
		}
		s.cfg = cfg
	}
	s.cfg.Resolve(s.flags)

	log.Debug("configuration resolved",
		zap.String("textures", s.cfg.TextureDir),
		zap.String("output", s.cfg.OutputDir),
		zap.Int("frame_width", s.cfg.FrameWidth),
		zap.Int("frame_height", s.cfg.FrameHeight),
		zap.Int("retention", s.cfg.PoolRetention()),
		zap.Int("workers", s.cfg.Workers))
	return nil
}
