package texture

import (
	"fmt"
	"image"
	"sync"

	"spritegrid/internal/grid"
	"spritegrid/internal/pool"
)

// Resolver resolves a sheet name to a decoded NRGBA image.
type Resolver interface {
	Resolve(name string) (*image.NRGBA, error)
}

// Cache is a concurrency-safe sheet cache. Sheets loaded for a Factory are
// reference counted by the grids built over them and unloaded when the last
// grid is finalized. Sheets loaded by Resolve stay cached until then too, or
// for the cache's lifetime if no grid ever uses them.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*cacheEntry
	index *Index
}

type cacheEntry struct {
	img  *image.NRGBA
	refs int
}

// NewCache creates a new sheet cache backed by the given index.
func NewCache(index *Index) *Cache {
	return &Cache{
		items: make(map[string]*cacheEntry),
		index: index,
	}
}

// Resolve loads and caches a sheet by name.
func (c *Cache) Resolve(name string) (*image.NRGBA, error) {
	path, ok := c.index.ResolvePath(name)
	if !ok {
		return nil, fmt.Errorf("texture: %q not indexed", name)
	}

	// Fast path: read lock
	c.mu.RLock()
	if entry, exists := c.items[path]; exists {
		c.mu.RUnlock()
		return entry.img, nil
	}
	c.mu.RUnlock()

	// Slow path: load from disk
	img, err := LoadTexture(path)
	if err != nil {
		return nil, err
	}

	// Write lock with double-check
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, exists := c.items[path]; exists {
		return entry.img, nil
	}
	c.items[path] = &cacheEntry{img: img}
	return img, nil
}

// load returns the cached sheet at path or decodes it without caching it.
// Only retain inserts, so a sheet whose grid fails validation is not kept.
func (c *Cache) load(path string) (*image.NRGBA, error) {
	c.mu.RLock()
	entry, exists := c.items[path]
	c.mu.RUnlock()
	if exists {
		return entry.img, nil
	}
	return LoadTexture(path)
}

// Retain records one more grid depending on the named sheet. Sheets that are
// not loaded are ignored.
func (c *Cache) Retain(name string) {
	path, ok := c.index.ResolvePath(name)
	if !ok {
		return
	}
	c.retain(path, nil)
}

// Release records that a grid no longer depends on the named sheet.
func (c *Cache) Release(name string) {
	path, ok := c.index.ResolvePath(name)
	if !ok {
		return
	}
	c.release(path)
}

// retain counts a reference, re-inserting img if the entry was unloaded
// between Resolve and the grid's construction.
func (c *Cache) retain(path string, img *image.NRGBA) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, exists := c.items[path]
	if !exists {
		if img == nil {
			return
		}
		entry = &cacheEntry{img: img}
		c.items[path] = entry
	}
	entry.refs++
}

// release drops a reference and unloads the sheet when none is left.
func (c *Cache) release(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, exists := c.items[path]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(c.items, path)
	}
}

// Refs returns how many grids depend on the named sheet.
func (c *Cache) Refs(name string) int {
	path, ok := c.index.ResolvePath(name)
	if !ok {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if entry, exists := c.items[path]; exists {
		return entry.refs
	}
	return 0
}

// Loaded returns the number of sheets currently in memory.
func (c *Cache) Loaded() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Factory returns a pool factory that slices the named sheet with the given
// layout. The grid's initialize/finalize callbacks retain and release the
// sheet in this cache.
func (c *Cache) Factory(name string, layout grid.Spec) pool.Factory {
	return func() (grid.Spec, error) {
		path, ok := c.index.ResolvePath(name)
		if !ok {
			return grid.Spec{}, fmt.Errorf("texture: %q not indexed", name)
		}
		img, err := c.load(path)
		if err != nil {
			return grid.Spec{}, err
		}
		spec := layout
		spec.Image = img
		spec.OnInitialized = func() { c.retain(path, img) }
		spec.OnFinalized = func() { c.release(path) }
		return spec, nil
	}
}
