package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"spritegrid/internal/grid"
)

func inspectCmd(s *settings) *cobra.Command {
	var pivotX, pivotY float64

	cmd := &cobra.Command{
		Use:   "inspect <image>",
		Short: "Print the frame layout of a sprite sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := openSheet(s.cfg, args[0])
			if err != nil {
				return err
			}
			defer g.Close()

			sub := g.SubRect()
			fmt.Printf("Sheet:    %s\n", args[0])
			fmt.Printf("Grid:     %s\n", g.ID())
			fmt.Printf("Area:     %s\n", sub)
			fmt.Printf("Frame:    %dx%d (padding %dx%d)\n",
				g.FrameWidth(), g.FrameHeight(), g.PaddingWidth(), g.PaddingHeight())
			fmt.Printf("Layout:   %d columns x %d rows\n", g.Columns(), g.Rows())
			fmt.Printf("Scale:    %g pixels per unit\n", g.PixelsPerUnit())
			fmt.Println("------------------------------------------------------------")

			for row := 0; row < g.Rows(); row++ {
				for col := 0; col < g.Columns(); col++ {
					sv, err := g.SubViewPivot(row, col, grid.Pivot{X: pivotX, Y: pivotY})
					if err != nil {
						return err
					}
					fmt.Printf("  [%2d,%2d] %-28s image %v\n", row, col, sv.Rect(), sv.Bounds())
				}
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&pivotX, "pivot-x", 0.5, "Normalized horizontal pivot")
	cmd.Flags().Float64Var(&pivotY, "pivot-y", 0.5, "Normalized vertical pivot")

	return cmd
}
