package pool

import "go.uber.org/zap"

// DefaultRetention is the retention queue capacity used when none is given.
const DefaultRetention = 20

// Observer is notified of cache traffic. Implementations must be safe for
// concurrent use; they are called with the pool lock held and must not call
// back into the pool.
type Observer interface {
	Hit(pool string)
	Miss(pool string)
	Evicted(pool string)
	Sized(pool string, held, retained int)
}

type nopObserver struct{}

func (nopObserver) Hit(string)             {}
func (nopObserver) Miss(string)            {}
func (nopObserver) Evicted(string)         {}
func (nopObserver) Sized(string, int, int) {}

// Option configures a Pool.
type Option func(*options)

type options struct {
	name      string
	retention int
	log       *zap.Logger
	observer  Observer
}

// WithName labels the pool in logs and metrics.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithRetention sets the retention queue capacity. Negative values mean zero.
func WithRetention(n int) Option {
	return func(o *options) {
		o.retention = max(n, 0)
	}
}

// WithLogger sets the logger used by the pool and the grids it creates.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// WithObserver installs an Observer such as a metrics collector.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}
