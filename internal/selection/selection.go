// Package selection provides validated, cached views over a grid's sub-views.
package selection

import (
	"sync"

	"spritegrid/internal/grid"
	"spritegrid/internal/gridfault"
)

// Selection is a read-only view over a grid. Use and Release delegate to the
// source grid; a selection has no lifetime of its own.
type Selection[R any] interface {
	Source() *grid.Grid
	Get() (R, error)
	Use()
	Release()
}

// MapFunc validates spec against g and maps it to a result.
type MapFunc[S, R any] func(g *grid.Grid, spec S) (R, error)

// Mapped is a Selection whose result is computed by a MapFunc on the first
// successful Get and cached afterwards. A failed computation is not cached;
// the next Get runs the MapFunc again.
type Mapped[S, R any] struct {
	source *grid.Grid
	spec   S
	mapFn  MapFunc[S, R]

	mu     sync.Mutex
	done   bool
	result R
}

// New creates a mapped selection. Nothing is validated until Get.
func New[S, R any](source *grid.Grid, spec S, fn MapFunc[S, R]) *Mapped[S, R] {
	return &Mapped[S, R]{source: source, spec: spec, mapFn: fn}
}

// Source returns the grid the selection reads from.
func (m *Mapped[S, R]) Source() *grid.Grid { return m.source }

// Spec returns the value the selection was created with.
func (m *Mapped[S, R]) Spec() S { return m.spec }

// Get returns the selection result, computing it on first call.
func (m *Mapped[S, R]) Get() (R, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.done {
		return m.result, nil
	}

	var zero R
	if m.source == nil {
		return zero, gridfault.NilPointer(gridfault.PhaseSelect, "source")
	}
	if m.mapFn == nil {
		return zero, gridfault.NilPointer(gridfault.PhaseSelect, "mapFn")
	}

	r, err := m.mapFn(m.source, m.spec)
	if err != nil {
		return zero, err
	}
	m.result = r
	m.done = true
	return r, nil
}

// Use marks the source grid as used.
func (m *Mapped[S, R]) Use() {
	if m.source != nil {
		m.source.Use()
	}
}

// Release marks the source grid as released.
func (m *Mapped[S, R]) Release() {
	if m.source != nil {
		m.source.Release()
	}
}
