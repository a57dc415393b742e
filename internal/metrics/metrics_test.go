package metrics

import (
	"image"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spritegrid/internal/grid"
	"spritegrid/internal/pool"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	require.NotNil(t, m.Counter)
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, g.Write(&m))
	require.NotNil(t, m.Gauge)
	return m.GetGauge().GetValue()
}

func TestPoolCollector_TracksPool(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := NewPoolCollector(WithRegistry(reg), WithNamespace("test"))
	p := pool.New[string](pool.WithName("tiles"), pool.WithRetention(1), pool.WithObserver(c))

	factory := func() (grid.Spec, error) {
		return grid.Spec{
			Image:         image.NewNRGBA(image.Rect(0, 0, 16, 16)),
			FrameWidth:    8,
			FrameHeight:   8,
			OnInitialized: func() {},
			OnFinalized:   func() {},
		}, nil
	}

	a, err := p.Get("a", factory)
	require.NoError(t, err)
	_, err = p.Get("a", factory)
	require.NoError(t, err)
	b, err := p.Get("b", factory)
	require.NoError(t, err)

	a.Use()
	b.Use()
	assert.Equal(t, 2.0, gaugeValue(t, c.held.WithLabelValues("tiles")))

	a.Release()
	b.Release()

	assert.Equal(t, 1.0, counterValue(t, c.hits.WithLabelValues("tiles")))
	assert.Equal(t, 2.0, counterValue(t, c.misses.WithLabelValues("tiles")))
	assert.Equal(t, 1.0, counterValue(t, c.evicted.WithLabelValues("tiles")))
	assert.Equal(t, 0.0, gaugeValue(t, c.held.WithLabelValues("tiles")))
	assert.Equal(t, 1.0, gaugeValue(t, c.retained.WithLabelValues("tiles")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "test_pool_hits_total")
	assert.Contains(t, names, "test_pool_retained_grids")
}
