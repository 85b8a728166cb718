package resilience

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is a snapshot of the rolling statistics for one named operation.
// AverageResponseTime is an incremental rolling mean, so memory stays bounded
// regardless of how many samples have been recorded.
type Metrics struct {
	OperationCount      int64         `json:"operationCount"`
	ErrorCount          int64         `json:"errorCount"`
	AverageResponseTime time.Duration `json:"averageResponseTime"`
	LastOperation       time.Time     `json:"lastOperation"`
}

// MetricsOptions configures a MetricsCollector.
type MetricsOptions struct {
	// Registerer, when set, additionally exports samples as Prometheus
	// counters and a summary labeled by operation name. Nil disables export;
	// the in-process rolling metrics work either way.
	Registerer prometheus.Registerer

	// Namespace prefixes the exported Prometheus metric names.
	// Defaults to "orchestration".
	Namespace string

	// Clock stamps LastOperation. Inject a clock.Mock for deterministic
	// timestamps in tests; defaults to the wall clock.
	Clock clock.Clock
}

// MetricsCollector aggregates rolling per-operation metrics. It is safe for
// concurrent use and never retains per-sample history.
type MetricsCollector struct {
	mu      sync.Mutex
	entries map[string]*Metrics
	clock   clock.Clock

	operations *prometheus.CounterVec
	errors     *prometheus.CounterVec
	latency    *prometheus.SummaryVec
}

// NewMetricsCollector creates an empty collector, optionally wired to a
// Prometheus registerer.
func NewMetricsCollector(optFns ...func(o *MetricsOptions)) *MetricsCollector {
	opts := MetricsOptions{Namespace: "orchestration", Clock: clock.New()}
	for _, fn := range optFns {
		fn(&opts)
	}

	c := &MetricsCollector{entries: make(map[string]*Metrics), clock: opts.Clock}
	if opts.Registerer != nil {
		c.operations = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Name:      "operations_total",
			Help:      "Total primitive invocations by operation name.",
		}, []string{"operation"})
		c.errors = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Name:      "operation_errors_total",
			Help:      "Total failed primitive invocations by operation name.",
		}, []string{"operation"})
		c.latency = prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Namespace: opts.Namespace,
			Name:      "operation_duration_seconds",
			Help:      "Primitive invocation latency by operation name.",
		}, []string{"operation"})
		opts.Registerer.MustRegister(c.operations, c.errors, c.latency)
	}
	return c
}

// Record folds one sample into the rolling statistics for name. The rolling
// mean update is (oldAvg*(n-1) + sample) / n.
func (c *MetricsCollector) Record(name string, dur time.Duration, failed bool) {
	if dur < 0 {
		dur = 0
	}

	c.mu.Lock()
	m, ok := c.entries[name]
	if !ok {
		m = &Metrics{}
		c.entries[name] = m
	}
	m.OperationCount++
	if failed {
		m.ErrorCount++
	}
	n := m.OperationCount
	m.AverageResponseTime = time.Duration((int64(m.AverageResponseTime)*(n-1) + int64(dur)) / n)
	m.LastOperation = c.clock.Now()
	c.mu.Unlock()

	if c.operations != nil {
		c.operations.WithLabelValues(name).Inc()
		if failed {
			c.errors.WithLabelValues(name).Inc()
		}
		c.latency.WithLabelValues(name).Observe(dur.Seconds())
	}
}

// Snapshot returns a copy of the metrics for name, and whether any samples
// have been recorded for it.
func (c *MetricsCollector) Snapshot(name string) (Metrics, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.entries[name]
	if !ok {
		return Metrics{}, false
	}
	return *m, true
}

// All returns a copy of every tracked metric keyed by operation name.
func (c *MetricsCollector) All() map[string]Metrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]Metrics, len(c.entries))
	for name, m := range c.entries {
		out[name] = *m
	}
	return out
}

// Reset discards the rolling statistics for name. Exported Prometheus
// counters are monotonic and intentionally unaffected.
func (c *MetricsCollector) Reset(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, name)
}

// ResetAll discards every tracked rolling metric.
func (c *MetricsCollector) ResetAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*Metrics)
}
