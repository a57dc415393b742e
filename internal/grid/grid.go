package grid

import (
	"image"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"spritegrid/internal/gridfault"
	"spritegrid/internal/logging"
)

// Tracker receives lifetime notifications for grids it owns.
type Tracker interface {
	Used(g *Grid)
	Released(g *Grid)
	RefCount(g *Grid) int
}

// Option configures a Grid at construction.
type Option func(*Grid)

// WithTracker hands lifetime bookkeeping to t instead of the grid itself.
func WithTracker(t Tracker) Option {
	return func(g *Grid) {
		g.tracker = t
	}
}

// WithLogger overrides the package logger for this grid.
func WithLogger(l *zap.Logger) Option {
	return func(g *Grid) {
		if l != nil {
			g.log = l
		}
	}
}

// Grid is an immutable slicing of a backing image plus a lazily populated
// table of sub-view handles.
type Grid struct {
	id    uuid.UUID
	img   image.Image
	fw    int
	fh    int
	pw    int
	ph    int
	shape layout

	tracker Tracker
	log     *zap.Logger

	mu       sync.Mutex
	views    []*SubView
	holders  int
	disposed bool

	fin     *finalizer
	cleanup runtime.Cleanup
}

// New validates spec and builds a Grid. OnInitialized fires only on success.
func New(spec Spec, opts ...Option) (*Grid, error) {
	shape, err := spec.validate()
	if err != nil {
		return nil, err
	}

	g := &Grid{
		id:    uuid.New(),
		img:   spec.Image,
		fw:    spec.FrameWidth,
		fh:    spec.FrameHeight,
		pw:    spec.PaddingWidth,
		ph:    spec.PaddingHeight,
		shape: shape,
		log:   logging.Logger(),
		views: make([]*SubView, shape.columns*shape.rows),
		fin:   &finalizer{fn: spec.OnFinalized},
	}
	for _, opt := range opts {
		opt(g)
	}
	g.log = g.log.With(zap.Stringer("grid", g.id))

	if spec.OnInitialized == nil {
		g.log.Warn("backing image will not be notified that this grid uses it; " +
			"set OnInitialized so the image can be accounted for before OnFinalized runs")
	} else {
		spec.OnInitialized()
	}
	if spec.OnFinalized == nil {
		g.log.Warn("backing image will not be notified when this grid is disposed; " +
			"set OnFinalized to release the image once no grid depends on it")
	}

	// The cleanup argument must not reference g, or g would never become unreachable.
	g.cleanup = runtime.AddCleanup(g, (*finalizer).fire, g.fin)
	return g, nil
}

// ID returns the grid's unique identity.
func (g *Grid) ID() uuid.UUID { return g.id }

// Image returns the backing image.
func (g *Grid) Image() image.Image { return g.img }

// SubRect returns the sliced area of the backing image in sheet space.
func (g *Grid) SubRect() Rect { return g.shape.subRect }

// FrameWidth returns the width of one frame in pixels.
func (g *Grid) FrameWidth() int { return g.fw }

// FrameHeight returns the height of one frame in pixels.
func (g *Grid) FrameHeight() int { return g.fh }

// PaddingWidth returns the horizontal gap after each frame.
func (g *Grid) PaddingWidth() int { return g.pw }

// PaddingHeight returns the vertical gap after each frame.
func (g *Grid) PaddingHeight() int { return g.ph }

// PixelsPerUnit returns the resolved scale.
func (g *Grid) PixelsPerUnit() float64 { return g.shape.ppu }

// Columns returns the number of frames per row.
func (g *Grid) Columns() int { return g.shape.columns }

// Rows returns the number of frame rows.
func (g *Grid) Rows() int { return g.shape.rows }

// Tracker returns the owner of this grid's lifetime bookkeeping, or nil.
func (g *Grid) Tracker() Tracker { return g.tracker }

// Contains reports whether (row, col) addresses a cell of the grid.
func (g *Grid) Contains(row, col int) bool {
	return row >= 0 && col >= 0 && row < g.shape.rows && col < g.shape.columns
}

// Cell is a (column, row) coordinate pair.
type Cell struct {
	Column int
	Row    int
}

// SubView returns the handle for (row, column) with a bottom-left pivot.
func (g *Grid) SubView(row, column int) (*SubView, error) {
	return g.SubViewPivot(row, column, Pivot{})
}

// SubViewPivot returns the handle for (row, column). The pivot only applies
// to the call that materializes the handle; later calls return the cached one.
func (g *Grid) SubViewPivot(row, column int, pivot Pivot) (*SubView, error) {
	if !g.Contains(row, column) {
		return nil, gridfault.OutOfBounds(gridfault.PhaseSlice,
			Cell{Column: column, Row: row}, g.shape.columns, g.shape.rows)
	}

	idx := row*g.shape.columns + column

	g.mu.Lock()
	defer g.mu.Unlock()

	if v := g.views[idx]; v != nil {
		return v, nil
	}
	v := &SubView{
		grid:   g,
		row:    row,
		column: column,
		rect:   g.frameRect(row, column),
		pivot:  pivot,
	}
	g.views[idx] = v
	return v, nil
}

// frameRect computes the sheet-space rectangle of a cell.
func (g *Grid) frameRect(row, column int) Rect {
	sub := g.shape.subRect
	return Rect{
		X:      column*(g.fw+g.pw) + sub.X,
		Y:      sub.Height - (row+1)*(g.fh+g.ph) + sub.Y,
		Width:  g.fw,
		Height: g.fh,
	}
}

// Materialized reports how many sub-view handles have been built so far.
func (g *Grid) Materialized() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, v := range g.views {
		if v != nil {
			n++
		}
	}
	return n
}

// Use records one more holder of this grid.
func (g *Grid) Use() {
	if g.tracker != nil {
		g.tracker.Used(g)
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.disposed {
		g.log.Warn("use of a disposed grid ignored")
		return
	}
	g.holders++
}

// Release records that one holder no longer depends on this grid.
func (g *Grid) Release() {
	if g.tracker != nil {
		g.tracker.Released(g)
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.holders == 0 {
		g.log.Debug("release without matching use ignored")
		return
	}
	g.holders--
}

// Holders returns the number of outstanding uses.
func (g *Grid) Holders() int {
	if g.tracker != nil {
		return g.tracker.RefCount(g)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.holders
}

// Close disposes a standalone grid and fires OnFinalized. Grids owned by a
// tracker are disposed by it and cannot be closed directly.
func (g *Grid) Close() error {
	if g.tracker != nil {
		return gridfault.InvalidArgument(gridfault.PhaseDispose, "Tracker", g.id,
			"grid is owned by a tracker")
	}

	g.mu.Lock()
	if g.holders > 0 {
		n := g.holders
		g.mu.Unlock()
		return gridfault.New(gridfault.PhaseDispose, gridfault.KindInUse).
			Value(n).
			Detail("grid still has %d holder(s)", n).
			Build()
	}
	if g.disposed {
		g.mu.Unlock()
		return nil
	}
	g.disposed = true
	clear(g.views)
	g.mu.Unlock()

	g.cleanup.Stop()
	g.fin.fire()
	return nil
}

// Disposed reports whether the grid's finalizer has run.
func (g *Grid) Disposed() bool {
	return g.fin.fired.Load()
}
