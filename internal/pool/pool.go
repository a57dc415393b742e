package pool

import (
	"container/list"
	"fmt"
	"runtime"
	"sync"
	"weak"

	"go.uber.org/zap"

	"spritegrid/internal/grid"
	"spritegrid/internal/gridfault"
	"spritegrid/internal/logging"
)

// Factory supplies the construction parameters for a missing key.
type Factory func() (grid.Spec, error)

// Stats is a snapshot of the pool's tables.
type Stats struct {
	Keys      int
	Held      int
	Retained  int
	Retention int
}

type holding[K comparable] struct {
	key   K
	count int
}

type retained[K comparable] struct {
	key  K
	grid *grid.Grid
}

// entry identifies a key table slot for the runtime cleanup of its grid.
type entry[K comparable] struct {
	key K
	ref weak.Pointer[grid.Grid]
}

// Pool is a keyed cache of grids with reference counting and a bounded
// grace-period retention queue.
type Pool[K comparable] struct {
	name     string
	log      *zap.Logger
	observer Observer

	mu        sync.Mutex
	retention int
	keys      map[K]weak.Pointer[grid.Grid]
	keyOf     map[weak.Pointer[grid.Grid]]K
	held      map[*grid.Grid]*holding[K]
	queue     *list.List
	queued    map[*grid.Grid]*list.Element
}

// New creates an empty pool.
func New[K comparable](opts ...Option) *Pool[K] {
	o := options{
		name:      "default",
		retention: DefaultRetention,
		log:       logging.Logger(),
		observer:  nopObserver{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logging.Logger()
	}
	if o.observer == nil {
		o.observer = nopObserver{}
	}

	return &Pool[K]{
		name:      o.name,
		log:       o.log.With(zap.String("pool", o.name)),
		observer:  o.observer,
		retention: o.retention,
		keys:      make(map[K]weak.Pointer[grid.Grid]),
		keyOf:     make(map[weak.Pointer[grid.Grid]]K),
		held:      make(map[*grid.Grid]*holding[K]),
		queue:     list.New(),
		queued:    make(map[*grid.Grid]*list.Element),
	}
}

// Name returns the pool's label.
func (p *Pool[K]) Name() string { return p.name }

// Get returns the live grid for key, building it from factory when the key is
// unknown or its grid has been reclaimed. Get is not a use.
//
// The factory runs without the pool lock. The grid is built, and its
// OnInitialized callback run, with the lock held so the key cannot be claimed
// twice; that callback must not call back into the pool.
func (p *Pool[K]) Get(key K, factory Factory) (*grid.Grid, error) {
	var zero K
	if key == zero {
		return nil, gridfault.InvalidArgument(gridfault.PhasePool, "key", key,
			"key must not be the zero value")
	}
	if factory == nil {
		return nil, gridfault.NilPointer(gridfault.PhasePool, "factory")
	}

	// Fast path
	p.mu.Lock()
	if g := p.lookup(key); g != nil {
		p.observer.Hit(p.name)
		p.mu.Unlock()
		return g, nil
	}
	p.mu.Unlock()

	// Slow path: the factory may load pixels, so it runs unlocked.
	spec, err := factory()
	if err != nil {
		return nil, gridfault.Wrap(gridfault.PhasePool, gridfault.KindFactory, err,
			fmt.Sprintf("factory for key %v", key))
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Double-check: another caller may have built it meanwhile.
	if g := p.lookup(key); g != nil {
		p.observer.Hit(p.name)
		return g, nil
	}
	p.observer.Miss(p.name)

	g, err := grid.New(spec, grid.WithTracker(p), grid.WithLogger(p.log))
	if err != nil {
		return nil, err
	}

	ref := weak.Make(g)
	p.keys[key] = ref
	p.keyOf[ref] = key
	runtime.AddCleanup(g, p.forget, entry[K]{key: key, ref: ref})

	p.log.Debug("grid created",
		zap.Any("key", key),
		zap.Stringer("grid", g.ID()),
		zap.Int("columns", g.Columns()),
		zap.Int("rows", g.Rows()))
	return g, nil
}

// lookup resolves key to a live grid, dropping the slot if its grid is gone.
// The caller holds p.mu.
func (p *Pool[K]) lookup(key K) *grid.Grid {
	ref, ok := p.keys[key]
	if !ok {
		return nil
	}
	if g := ref.Value(); g != nil {
		return g
	}
	delete(p.keys, key)
	delete(p.keyOf, ref)
	p.log.Debug("stale key replaced", zap.Any("key", key))
	return nil
}

// forget runs after a grid has been reclaimed.
func (p *Pool[K]) forget(e entry[K]) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.keys[e.key] == e.ref {
		delete(p.keys, e.key)
	}
	delete(p.keyOf, e.ref)
}

// Used is called by a grid when a consumer starts using it. It cancels any
// pending eviction and increments the reference count.
func (p *Pool[K]) Used(g *grid.Grid) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if el, ok := p.queued[g]; ok {
		p.queue.Remove(el)
		delete(p.queued, g)
	}

	h, ok := p.held[g]
	if !ok {
		h = &holding[K]{key: p.keyOf[weak.Make(g)]}
		p.held[g] = h
	}
	h.count++
	p.observer.Sized(p.name, len(p.held), p.queue.Len())
}

// Released is called by a grid when a consumer stops using it. When the
// count reaches zero the grid moves to the tail of the retention queue in the
// same critical section.
func (p *Pool[K]) Released(g *grid.Grid) {
	p.mu.Lock()
	defer p.mu.Unlock()

	h, ok := p.held[g]
	if !ok {
		p.log.Debug("release of an unheld grid ignored", zap.Stringer("grid", g.ID()))
		return
	}
	h.count--
	if h.count > 0 {
		return
	}

	delete(p.held, g)
	p.queued[g] = p.queue.PushBack(&retained[K]{key: h.key, grid: g})
	p.trim()
	p.observer.Sized(p.name, len(p.held), p.queue.Len())
}

// RefCount returns the number of outstanding uses of g.
func (p *Pool[K]) RefCount(g *grid.Grid) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if h, ok := p.held[g]; ok {
		return h.count
	}
	return 0
}

// trim evicts from the head until the queue fits the retention capacity.
// The caller holds p.mu.
func (p *Pool[K]) trim() {
	for p.queue.Len() > p.retention {
		front := p.queue.Front()
		r := p.queue.Remove(front).(*retained[K])
		delete(p.queued, r.grid)
		p.observer.Evicted(p.name)
		p.log.Debug("grid evicted", zap.Any("key", r.key), zap.Stringer("grid", r.grid.ID()))
	}
}

// Retention returns the retention queue capacity.
func (p *Pool[K]) Retention() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.retention
}

// SetRetention changes the retention queue capacity. The new value applies on
// the next release; the current queue is not trimmed retroactively.
func (p *Pool[K]) SetRetention(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.retention = max(n, 0)
}

// Purge evicts every retained grid, oldest first.
func (p *Pool[K]) Purge() {
	p.mu.Lock()
	defer p.mu.Unlock()
	saved := p.retention
	p.retention = 0
	p.trim()
	p.retention = saved
	p.observer.Sized(p.name, len(p.held), p.queue.Len())
}

// Retained returns the keys in the retention queue from oldest to newest.
func (p *Pool[K]) Retained() []K {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]K, 0, p.queue.Len())
	for el := p.queue.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(*retained[K]).key)
	}
	return keys
}

// IsRetained reports whether g is waiting in the retention queue.
func (p *Pool[K]) IsRetained(g *grid.Grid) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.queued[g]
	return ok
}

// Stats returns a snapshot of the table sizes.
func (p *Pool[K]) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Keys:      len(p.keys),
		Held:      len(p.held),
		Retained:  p.queue.Len(),
		Retention: p.retention,
	}
}
