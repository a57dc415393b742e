package main

import (
	"spritegrid/internal/applier"
	"spritegrid/internal/grid"
	"spritegrid/internal/gridfault"
	"spritegrid/internal/selection"
)

// quad is the only layout the demo slots accept: 2x2 frames of a fixed size.
type quad struct {
	frameWidth  int
	frameHeight int
}

func (q quad) check(g *grid.Grid) error {
	if g == nil {
		return gridfault.NilPointer(gridfault.PhaseApply, "grid")
	}
	if g.FrameWidth() != q.frameWidth || g.FrameHeight() != q.frameHeight {
		return gridfault.New(gridfault.PhaseApply, gridfault.KindIncompatible).
			Value(g.ID()).
			Detail("frames must be %dx%d, got %dx%d",
				q.frameWidth, q.frameHeight, g.FrameWidth(), g.FrameHeight()).
			Build()
	}
	if g.Columns() != 2 || g.Rows() != 2 {
		return gridfault.New(gridfault.PhaseApply, gridfault.KindIncompatible).
			Value(g.ID()).
			Detail("layout must be 2x2, got %dx%d", g.Columns(), g.Rows()).
			Build()
	}
	return nil
}

// slot is one on-screen sprite the simulation can assign sheets to.
type slot interface {
	Assign(g *grid.Grid, index int) error
	Clear()
	Tick()
	Frame() *grid.SubView
}

// animator holds a whole grid and cycles through its four frames.
type animator struct {
	quad
	index   int
	frame   *grid.SubView
	applier *applier.Applier[*grid.Grid]
}

func newAnimator(q quad) *animator {
	a := &animator{quad: q}
	a.applier = applier.New[*grid.Grid](a)
	return a
}

func (a *animator) Assign(g *grid.Grid, _ int) error { return a.applier.Set(g) }
func (a *animator) Clear()                           { a.applier.Clear() }
func (a *animator) Frame() *grid.SubView             { return a.frame }

func (a *animator) Tick() {
	a.index = (a.index + 1) % 4
	a.refresh()
}

func (a *animator) refresh() {
	g, ok := a.applier.Current()
	if !ok {
		a.frame = nil
		return
	}
	if sv, err := g.SubView(a.index/2, a.index%2); err == nil {
		a.frame = sv
	}
}

func (a *animator) Compatible(g *grid.Grid) bool { return a.check(g) == nil }
func (a *animator) BeforeUse(g *grid.Grid) error { return a.check(g) }
func (a *animator) AfterUse(*grid.Grid)          { a.refresh() }
func (a *animator) BeforeRelease(*grid.Grid)     {}
func (a *animator) AfterRelease(*grid.Grid)      { a.frame = nil }

type cellSelection = *selection.Mapped[selection.Cell, *grid.SubView]

// picker holds a single-cell selection. The cell is chosen from the slot
// index when a sheet is assigned: slot 0 shows (0,0), slot 1 shows column 1,
// slot 2 shows row 1 and so on.
type picker struct {
	quad
	frame   *grid.SubView
	applier *applier.Applier[cellSelection]
}

func newPicker(q quad) *picker {
	p := &picker{quad: q}
	p.applier = applier.New[cellSelection](p)
	return p
}

func (p *picker) Assign(g *grid.Grid, index int) error {
	return p.applier.Set(selection.NewCell(g, selection.Cell{Column: index % 2, Row: index / 2}))
}

func (p *picker) Clear()               { p.applier.Clear() }
func (p *picker) Tick()                { p.refresh() }
func (p *picker) Frame() *grid.SubView { return p.frame }

func (p *picker) refresh() {
	sel, ok := p.applier.Current()
	if !ok {
		p.frame = nil
		return
	}
	if sv, err := sel.Get(); err == nil {
		p.frame = sv
	}
}

func (p *picker) Compatible(sel cellSelection) bool { return p.check(sel.Source()) == nil }
func (p *picker) BeforeUse(sel cellSelection) error { return p.check(sel.Source()) }
func (p *picker) AfterUse(cellSelection)            { p.refresh() }
func (p *picker) BeforeRelease(cellSelection)       {}
func (p *picker) AfterRelease(cellSelection)        { p.frame = nil }
