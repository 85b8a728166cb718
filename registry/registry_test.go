package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamcisaac/teaching-engine/core"
	"github.com/mamcisaac/teaching-engine/internal/testutil"
	"github.com/mamcisaac/teaching-engine/resilience"
)

func TestRegister_Validation(t *testing.T) {
	r := New()
	defer r.Shutdown()

	assert.Error(t, r.Register(Record{Service: testutil.NewHealthyService()}))
	assert.Error(t, r.Register(Record{Name: "no-handle"}))
	assert.NoError(t, r.Register(Record{Name: "ok", Service: testutil.NewHealthyService()}))
}

func TestRegister_ReplaceResetsState(t *testing.T) {
	r := New()
	defer r.Shutdown()

	require.NoError(t, r.Register(Record{Name: "svc", Service: testutil.NewHealthyService()}))
	r.InitializeAll(context.Background())

	state, ok := r.State("svc")
	require.True(t, ok)
	assert.Equal(t, StateInitialized, state)

	// Re-registering the same name replaces the record and restarts its lifecycle.
	require.NoError(t, r.Register(Record{Name: "svc", Service: testutil.NewHealthyService()}))
	state, _ = r.State("svc")
	assert.Equal(t, StateRegistered, state)
}

func TestUnregister(t *testing.T) {
	r := New()
	defer r.Shutdown()

	require.NoError(t, r.Register(Record{Name: "svc", Service: testutil.NewHealthyService()}))
	assert.True(t, r.Unregister("svc"))
	assert.False(t, r.Unregister("svc"))

	_, ok := r.State("svc")
	assert.False(t, ok)
}

func TestHealthMonitor_StopsOnUnregister(t *testing.T) {
	mock := clock.NewMock()
	r := New(func(o *Options) { o.Clock = mock })
	defer r.Shutdown()

	svc := testutil.NewHealthyService()
	require.NoError(t, r.Register(Record{
		Name:                "monitored",
		Service:             svc,
		HealthCheckInterval: time.Second,
	}))

	// Let the monitor goroutine arm its ticker before moving the clock.
	time.Sleep(10 * time.Millisecond)
	mock.Add(time.Second)
	require.Eventually(t, func() bool { return svc.HealthChecks() >= 1 }, time.Second, time.Millisecond)

	checked := svc.HealthChecks()
	_, ok := r.CachedHealth("monitored")
	assert.True(t, ok)

	r.Unregister("monitored")
	mock.Add(5 * time.Second)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, checked, svc.HealthChecks())
}

func TestHealthStatus_PartialFailure(t *testing.T) {
	r := New()
	defer r.Shutdown()

	healthy1 := testutil.NewHealthyService()
	healthy2 := testutil.NewHealthyService()
	sick := testutil.NewHealthyService()
	sick.SetHealthy(false)

	require.NoError(t, r.Register(Record{Name: "a", Service: healthy1}))
	require.NoError(t, r.Register(Record{Name: "b", Service: healthy2}))
	require.NoError(t, r.Register(Record{Name: "c", Service: sick}))

	report := r.HealthStatus(context.Background())

	assert.Equal(t, 3, report.Total())
	assert.Equal(t, 2, report.Healthy)
	assert.True(t, report.Services["a"].Healthy)
	assert.False(t, report.Services["c"].Healthy)

	// Results are cached as a side effect.
	cached, ok := r.CachedHealth("c")
	require.True(t, ok)
	assert.False(t, cached.Healthy)
}

func TestHealthStatus_CheckErrorBecomesUnhealthy(t *testing.T) {
	r := New(func(o *Options) {
		// No retries so the erroring check resolves without backoff delays.
		o.HealthCheckPolicy = resilience.RetryPolicy{}
	})
	defer r.Shutdown()

	erroring := core.ServiceFuncs{
		HealthCheckFunc: func(context.Context) (core.HealthResult, error) {
			return core.HealthResult{}, errors.New("connection refused")
		},
	}
	require.NoError(t, r.Register(Record{Name: "svc", Service: erroring}))

	report := r.HealthStatus(context.Background())
	result := report.Services["svc"]
	assert.False(t, result.Healthy)
	assert.Contains(t, result.Details["error"], "connection refused")
}

func TestDependencyGraph(t *testing.T) {
	r := New()
	defer r.Shutdown()

	require.NoError(t, r.Register(Record{Name: "db", Service: testutil.NewHealthyService()}))
	require.NoError(t, r.Register(Record{Name: "api", Service: testutil.NewHealthyService(), Dependencies: []string{"db", "cache"}}))

	g := r.DependencyGraph()
	assert.Equal(t, []string{"api", "db"}, g.Nodes)
	assert.Contains(t, g.Edges, Edge{From: "db", To: "api"})
	assert.Contains(t, g.Edges, Edge{From: "cache", To: "api"})
}

func TestShutdown_StopsMonitorsAndClearsState(t *testing.T) {
	mock := clock.NewMock()
	r := New(func(o *Options) { o.Clock = mock })

	svc := testutil.NewHealthyService()
	require.NoError(t, r.Register(Record{Name: "svc", Service: svc, HealthCheckInterval: time.Second}))

	r.Shutdown()

	_, ok := r.State("svc")
	assert.False(t, ok)

	mock.Add(10 * time.Second)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, svc.HealthChecks())
}

func TestMetrics_TrackedPerService(t *testing.T) {
	r := New()
	defer r.Shutdown()

	require.NoError(t, r.Register(Record{Name: "svc", Service: testutil.NewHealthyService()}))
	r.InitializeAll(context.Background())
	r.HealthStatus(context.Background())

	metrics := r.Metrics()
	m, ok := metrics["service.svc"]
	require.True(t, ok)
	assert.GreaterOrEqual(t, m.OperationCount, int64(2))

	r.ResetMetrics("svc")
	_, ok = r.Metrics()["service.svc"]
	assert.False(t, ok)
}

// Interface compliance for the function adapter used throughout the tests.
var _ core.Service = core.ServiceFuncs{}
