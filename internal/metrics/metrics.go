// Package metrics exports pool traffic as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures the pool collector.
type Config struct {
	// Namespace is the metrics namespace (default: "spritegrid").
	Namespace string

	// Subsystem is the metrics subsystem (default: "pool").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the pool collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "spritegrid",
		Subsystem: "pool",
		Registry:  prometheus.DefaultRegisterer,
	}
}

// PoolCollector implements pool.Observer.
type PoolCollector struct {
	hits     *prometheus.CounterVec
	misses   *prometheus.CounterVec
	evicted  *prometheus.CounterVec
	held     *prometheus.GaugeVec
	retained *prometheus.GaugeVec
}

// NewPoolCollector registers the pool metrics and returns the collector.
//
// Metrics collected, all labelled by pool name:
//   - spritegrid_pool_hits_total: Get calls answered by a live grid
//   - spritegrid_pool_misses_total: Get calls that built a new grid
//   - spritegrid_pool_evictions_total: grids dropped from the retention queue
//   - spritegrid_pool_held_grids: grids with at least one user
//   - spritegrid_pool_retained_grids: grids waiting in the retention queue
func NewPoolCollector(opts ...Option) *PoolCollector {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	factory := promauto.With(cfg.Registry)
	labels := []string{"pool"}

	return &PoolCollector{
		hits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "hits_total",
			Help:        "Total number of Get calls answered by a live grid",
			ConstLabels: cfg.ConstLabels,
		}, labels),

		misses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "misses_total",
			Help:        "Total number of Get calls that built a new grid",
			ConstLabels: cfg.ConstLabels,
		}, labels),

		evicted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "evictions_total",
			Help:        "Total number of grids dropped from the retention queue",
			ConstLabels: cfg.ConstLabels,
		}, labels),

		held: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "held_grids",
			Help:        "Number of grids with at least one user",
			ConstLabels: cfg.ConstLabels,
		}, labels),

		retained: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "retained_grids",
			Help:        "Number of grids waiting in the retention queue",
			ConstLabels: cfg.ConstLabels,
		}, labels),
	}
}

// Hit counts a Get answered by a live grid.
func (c *PoolCollector) Hit(pool string) { c.hits.WithLabelValues(pool).Inc() }

// Miss counts a Get that built a new grid.
func (c *PoolCollector) Miss(pool string) { c.misses.WithLabelValues(pool).Inc() }

// Evicted counts a grid dropped from the retention queue.
func (c *PoolCollector) Evicted(pool string) { c.evicted.WithLabelValues(pool).Inc() }

// Sized records the current table sizes.
func (c *PoolCollector) Sized(pool string, held, retained int) {
	c.held.WithLabelValues(pool).Set(float64(held))
	c.retained.WithLabelValues(pool).Set(float64(retained))
}
