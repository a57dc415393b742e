package applier

// NopHooks accepts every resource and does nothing. Embed it to override
// only the hooks you need.
type NopHooks[R any] struct{}

// Compatible accepts every resource.
func (NopHooks[R]) Compatible(R) bool { return true }

// BeforeUse never rejects.
func (NopHooks[R]) BeforeUse(R) error { return nil }

// AfterUse does nothing.
func (NopHooks[R]) AfterUse(R) {}

// BeforeRelease does nothing.
func (NopHooks[R]) BeforeRelease(R) {}

// AfterRelease does nothing.
func (NopHooks[R]) AfterRelease(R) {}

// Funcs adapts plain functions to Hooks. Nil fields behave like NopHooks.
type Funcs[R any] struct {
	CompatibleFunc    func(R) bool
	BeforeUseFunc     func(R) error
	AfterUseFunc      func(R)
	BeforeReleaseFunc func(R)
	AfterReleaseFunc  func(R)
}

// Compatible calls CompatibleFunc, accepting everything when it is nil.
func (f Funcs[R]) Compatible(r R) bool {
	if f.CompatibleFunc == nil {
		return true
	}
	return f.CompatibleFunc(r)
}

// BeforeUse rejects anything Compatible rejects before running BeforeUseFunc,
// so the two checks cannot disagree.
func (f Funcs[R]) BeforeUse(r R) error {
	if !f.Compatible(r) {
		return ErrIncompatible
	}
	if f.BeforeUseFunc == nil {
		return nil
	}
	return f.BeforeUseFunc(r)
}

// AfterUse calls AfterUseFunc if set.
func (f Funcs[R]) AfterUse(r R) {
	if f.AfterUseFunc != nil {
		f.AfterUseFunc(r)
	}
}

// BeforeRelease calls BeforeReleaseFunc if set.
func (f Funcs[R]) BeforeRelease(r R) {
	if f.BeforeReleaseFunc != nil {
		f.BeforeReleaseFunc(r)
	}
}

// AfterRelease calls AfterReleaseFunc if set.
func (f Funcs[R]) AfterRelease(r R) {
	if f.AfterReleaseFunc != nil {
		f.AfterReleaseFunc(r)
	}
}
