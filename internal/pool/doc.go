// Package pool caches grids by key and keeps their lifetime in step with the
// consumers that use them.
//
// A pool holds grids in three tables guarded by one mutex:
//
//	keys      key -> weak pointer; never keeps a grid alive on its own
//	held      grid -> reference count, for grids with at least one user
//	retention FIFO of grids whose count dropped to zero
//
// A grid is either held or retained, never both. When the retention queue
// grows past its capacity the oldest entries are dropped; an evicted grid
// that nobody else references is reclaimed by the runtime, which fires its
// OnFinalized callback. Until then Get keeps returning it for its key.
//
// Get does not count as a use. Consumers call Use and Release on the grid (or
// through an applier), and the grid forwards those calls here.
package pool
