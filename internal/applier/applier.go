// Package applier binds one consumer to the grid or selection it currently
// displays, keeping Use and Release calls symmetric.
//
// An Applier is either empty or holding exactly one resource. Set releases the
// held resource before it looks at the new one, so a rejected replacement
// leaves the applier empty rather than restoring the old resource.
//
// An Applier is not safe for concurrent use; keep one per consumer.
package applier

import "spritegrid/internal/gridfault"

// Resource is anything with use/release bookkeeping: a *grid.Grid or a
// selection over one.
type Resource interface {
	Use()
	Release()
}

// Handle is the constraint on resources an Applier can hold. Identity is
// decided with ==.
type Handle interface {
	comparable
	Resource
}

// ErrIncompatible matches every rejection reported by Compatible.
var ErrIncompatible = &gridfault.Error{Phase: gridfault.PhaseApply, Kind: gridfault.KindIncompatible}

// Hooks customizes acceptance and side effects around use and release.
type Hooks[R any] interface {
	// Compatible reports whether r can be held. It is consulted before BeforeUse.
	Compatible(r R) bool
	// BeforeUse may reject r by returning an error.
	BeforeUse(r R) error
	AfterUse(r R)
	BeforeRelease(r R)
	// AfterRelease must not keep a reference to r.
	AfterRelease(r R)
}

// Applier is the use/release state machine.
type Applier[R Handle] struct {
	hooks   Hooks[R]
	current R
	holding bool
}

// New creates an empty applier. Nil hooks accept everything and do nothing.
func New[R Handle](hooks Hooks[R]) *Applier[R] {
	if hooks == nil {
		hooks = NopHooks[R]{}
	}
	return &Applier[R]{hooks: hooks}
}

// Current returns the held resource, if any.
func (a *Applier[R]) Current() (R, bool) {
	return a.current, a.holding
}

// CanUse reports whether r would pass the compatibility gate. The zero value
// is always acceptable.
func (a *Applier[R]) CanUse(r R) bool {
	var zero R
	if r == zero {
		return true
	}
	return a.hooks.Compatible(r)
}

// Set makes r the held resource. Setting the held resource again is a no-op.
// Otherwise the current resource is released first; the zero value leaves
// the applier empty.
func (a *Applier[R]) Set(r R) error {
	var zero R
	if a.holding && r == a.current {
		return nil
	}

	a.Clear()
	if r == zero {
		return nil
	}

	if !a.hooks.Compatible(r) {
		return gridfault.New(gridfault.PhaseApply, gridfault.KindIncompatible).
			Value(r).
			Detail("resource %v rejected by compatibility check", r).
			Build()
	}
	if err := a.hooks.BeforeUse(r); err != nil {
		return err
	}

	a.current = r
	a.holding = true
	r.Use()
	a.hooks.AfterUse(r)
	return nil
}

// Clear releases the held resource, if any.
func (a *Applier[R]) Clear() {
	if !a.holding {
		return
	}
	old := a.current
	a.hooks.BeforeRelease(old)

	var zero R
	a.current = zero
	a.holding = false
	old.Release()
	a.hooks.AfterRelease(old)
}
