package grid

import (
	"sync"
	"sync/atomic"
)

// finalizer runs the OnFinalized callback at most once, whether triggered by
// Close or by the runtime cleanup of an unreachable grid.
type finalizer struct {
	once  sync.Once
	fired atomic.Bool
	fn    func()
}

func (f *finalizer) fire() {
	f.once.Do(func() {
		f.fired.Store(true)
		if f.fn != nil {
			f.fn()
		}
	})
}
