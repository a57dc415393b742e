package selection

import (
	"spritegrid/internal/grid"
	"spritegrid/internal/gridfault"
)

// Cell addresses one frame by column and row.
type Cell = grid.Cell

func outOfBounds(g *grid.Grid, spec any) error {
	return gridfault.OutOfBounds(gridfault.PhaseSelect, spec, g.Columns(), g.Rows())
}

// mapCell resolves a single frame.
func mapCell(g *grid.Grid, c Cell) (*grid.SubView, error) {
	if !g.Contains(c.Row, c.Column) {
		return nil, outOfBounds(g, c)
	}
	return g.SubView(c.Row, c.Column)
}

// mapCells resolves a composite of frames, failing on the first bad cell.
func mapCells(g *grid.Grid, cells []Cell) ([]*grid.SubView, error) {
	if len(cells) == 0 {
		return nil, gridfault.InvalidArgument(gridfault.PhaseSelect, "cells", cells,
			"a composite selection needs at least one cell")
	}
	views := make([]*grid.SubView, len(cells))
	for i, c := range cells {
		if !g.Contains(c.Row, c.Column) {
			return nil, outOfBounds(g, c)
		}
		v, err := g.SubView(c.Row, c.Column)
		if err != nil {
			return nil, err
		}
		views[i] = v
	}
	return views, nil
}

// mapRow resolves a whole row, left to right.
func mapRow(g *grid.Grid, row int) ([]*grid.SubView, error) {
	if row < 0 || row >= g.Rows() {
		return nil, outOfBounds(g, Cell{Column: 0, Row: row})
	}
	views := make([]*grid.SubView, g.Columns())
	for col := range views {
		v, err := g.SubView(row, col)
		if err != nil {
			return nil, err
		}
		views[col] = v
	}
	return views, nil
}

// NewCell selects a single frame.
func NewCell(g *grid.Grid, c Cell) *Mapped[Cell, *grid.SubView] {
	return New[Cell, *grid.SubView](g, c, mapCell)
}

// NewCells selects several frames as one composite. The slice is copied.
func NewCells(g *grid.Grid, cells []Cell) *Mapped[[]Cell, []*grid.SubView] {
	return New[[]Cell, []*grid.SubView](g, append([]Cell(nil), cells...), mapCells)
}

// NewRow selects every frame of a row, typically an animation strip.
func NewRow(g *grid.Grid, row int) *Mapped[int, []*grid.SubView] {
	return New[int, []*grid.SubView](g, row, mapRow)
}
