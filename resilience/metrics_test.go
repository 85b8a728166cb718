package resilience

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCollector_RollingMean(t *testing.T) {
	c := NewMetricsCollector()

	c.Record("svc", 10*time.Millisecond, false)
	c.Record("svc", 20*time.Millisecond, false)
	c.Record("svc", 30*time.Millisecond, false)

	m, ok := c.Snapshot("svc")
	require.True(t, ok)
	assert.Equal(t, int64(3), m.OperationCount)
	assert.Equal(t, int64(0), m.ErrorCount)
	assert.Equal(t, 20*time.Millisecond, m.AverageResponseTime)
	assert.False(t, m.LastOperation.IsZero())
}

func TestMetricsCollector_ErrorCount(t *testing.T) {
	c := NewMetricsCollector()

	c.Record("svc", time.Millisecond, true)
	c.Record("svc", time.Millisecond, false)
	c.Record("svc", time.Millisecond, true)

	m, _ := c.Snapshot("svc")
	assert.Equal(t, int64(3), m.OperationCount)
	assert.Equal(t, int64(2), m.ErrorCount)
}

func TestMetricsCollector_NegativeSampleClamped(t *testing.T) {
	c := NewMetricsCollector()
	c.Record("svc", -time.Second, false)

	m, _ := c.Snapshot("svc")
	assert.GreaterOrEqual(t, int64(m.AverageResponseTime), int64(0))
}

func TestMetricsCollector_SnapshotMissing(t *testing.T) {
	c := NewMetricsCollector()
	_, ok := c.Snapshot("unknown")
	assert.False(t, ok)
}

func TestMetricsCollector_All(t *testing.T) {
	c := NewMetricsCollector()
	c.Record("a", time.Millisecond, false)
	c.Record("b", time.Millisecond, true)

	all := c.All()
	require.Len(t, all, 2)
	assert.Equal(t, int64(1), all["a"].OperationCount)
	assert.Equal(t, int64(1), all["b"].ErrorCount)

	// Returned map is a copy; mutating it does not affect the collector.
	delete(all, "a")
	_, ok := c.Snapshot("a")
	assert.True(t, ok)
}

func TestMetricsCollector_Reset(t *testing.T) {
	c := NewMetricsCollector()
	c.Record("a", time.Millisecond, false)
	c.Record("b", time.Millisecond, false)

	c.Reset("a")
	_, ok := c.Snapshot("a")
	assert.False(t, ok)
	_, ok = c.Snapshot("b")
	assert.True(t, ok)

	c.ResetAll()
	assert.Empty(t, c.All())
}

func TestMetricsCollector_LastOperationUsesInjectedClock(t *testing.T) {
	mock := clock.NewMock()
	mock.Add(42 * time.Hour)
	c := NewMetricsCollector(func(o *MetricsOptions) { o.Clock = mock })

	c.Record("svc", time.Millisecond, false)

	m, ok := c.Snapshot("svc")
	require.True(t, ok)
	assert.True(t, m.LastOperation.Equal(mock.Now()))
}

func TestMetricsCollector_PrometheusExport(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewMetricsCollector(func(o *MetricsOptions) { o.Registerer = reg })

	c.Record("svc", 15*time.Millisecond, false)
	c.Record("svc", 15*time.Millisecond, true)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["orchestration_operations_total"])
	assert.True(t, names["orchestration_operation_errors_total"])
	assert.True(t, names["orchestration_operation_duration_seconds"])
}
