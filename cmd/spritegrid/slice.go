package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"spritegrid/internal/export"
)

func sliceCmd(s *settings) *cobra.Command {
	var (
		outputDir string
		scale     int
		workers   int
		smooth    bool
		trim      bool
	)

	cmd := &cobra.Command{
		Use:   "slice <image>",
		Short: "Export every frame of a sprite sheet as WebP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := s.cfg
			if outputDir != "" {
				cfg.OutputDir = outputDir
			}
			if scale > 0 {
				cfg.Scale = scale
			}
			if workers > 0 {
				cfg.Workers = workers
			}

			g, err := openSheet(cfg, args[0])
			if err != nil {
				return err
			}
			defer g.Close()

			stem := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			outDir := filepath.Join(cfg.OutputDir, stem)

			fmt.Printf("Sheet:   %s (%d columns x %d rows)\n", args[0], g.Columns(), g.Rows())
			fmt.Printf("Frames:  %d, Workers: %d, Scale: %dx\n", g.Columns()*g.Rows(), cfg.Workers, cfg.Scale)
			fmt.Printf("Output:  %s\n", outDir)
			fmt.Println("------------------------------------------------------------")

			start := time.Now()
			results, err := export.Run(cmd.Context(), export.Config{
				OutputDir: outDir,
				Scale:     cfg.Scale,
				Smooth:    cfg.Smooth || smooth,
				Trim:      cfg.Trim || trim,
				Workers:   cfg.Workers,
			}, g)
			if err != nil {
				return err
			}

			fmt.Println("------------------------------------------------------------")
			fmt.Printf("Done in %.1fs\n", time.Since(start).Seconds())

			var failed []export.Result
			for _, r := range results {
				if !r.Success {
					failed = append(failed, r)
				}
			}
			fmt.Printf("Exported: %d/%d\n", len(results)-len(failed), len(results))

			if len(failed) > 0 {
				fmt.Printf("\nFailed (%d):\n", len(failed))
				for _, r := range failed[:min(len(failed), 20)] {
					fmt.Printf("  [%d,%d]: %s\n", r.Row, r.Column, r.Error)
				}
			}

			manifestPath := filepath.Join(outDir, "manifest.json")
			if err := export.WriteManifest(manifestPath, g, results); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			} else {
				fmt.Printf("Manifest: %s\n", manifestPath)
			}

			if len(failed) > 0 {
				return fmt.Errorf("%d frames failed", len(failed))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (default: ./frames)")
	cmd.Flags().IntVar(&scale, "scale", 0, "Integer upscale factor (default: 1)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Number of worker goroutines (default: NumCPU)")
	cmd.Flags().BoolVar(&smooth, "smooth", false, "Use CatmullRom instead of nearest-neighbour scaling")
	cmd.Flags().BoolVar(&trim, "trim", false, "Crop transparent borders from each frame")

	return cmd
}
