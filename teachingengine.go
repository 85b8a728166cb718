// Package teachingengine provides a high-level façade over the service
// lifecycle registry, the per-actor batch queue and the resilient execution
// primitives they compose. Most applications interact with this package by:
//  1. Creating a Core via New() (optionally overriding default in-memory collaborators)
//  2. Registering their long-lived services with Registry()
//  3. Initializing everything with InitializeAll and submitting work to Queue()
//  4. Calling Shutdown() at process end
//
// The façade replaces hidden module-level singletons with one explicitly
// constructed instance that owns a single clock, logger, metrics collector
// and executor, shared by every component it wires. All defaults are safe
// for local development and testing; production deployments typically supply
// a durable data store and a structured logger.
package teachingengine

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mamcisaac/teaching-engine/batch"
	"github.com/mamcisaac/teaching-engine/core"
	"github.com/mamcisaac/teaching-engine/logging"
	"github.com/mamcisaac/teaching-engine/registry"
	"github.com/mamcisaac/teaching-engine/resilience"
	"github.com/mamcisaac/teaching-engine/store"
)

// QueueServiceName is the name under which the batch queue registers itself.
const QueueServiceName = "batch-queue"

// Options configures the Core instance.
type Options struct {
	// Store is the transactional data-store collaborator. Defaults to an
	// in-memory store.
	Store core.TransactionRunner

	// Handlers overrides the batch handler table. Defaults to the built-in
	// store-backed handlers.
	Handlers batch.HandlerTable

	// QueueConfig tunes the batch queue.
	QueueConfig batch.Config

	// Clock drives every delay and health ticker. Inject a clock.Mock for
	// deterministic tests.
	Clock clock.Clock

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger

	// PrometheusRegisterer, when set, exports the execution metrics.
	PrometheusRegisterer prometheus.Registerer

	// QueueHealthCheckInterval is the monitoring interval for the registered
	// batch queue service. Zero disables periodic monitoring.
	QueueHealthCheckInterval time.Duration
}

// Core is the high-level façade aggregating the registry, the batch queue
// and the shared execution machinery.
type Core struct {
	opts     Options
	executor *resilience.Executor
	registry *registry.Registry
	queue    *batch.Queue
}

// New creates a new Core with optional overrides. Any unset collaborator is
// initialized with an in-memory implementation, and the batch queue is
// registered with the lifecycle registry so it is supervised like any other
// service.
func New(optFns ...func(o *Options)) *Core {
	opts := Options{
		Store:       store.NewInMemory(),
		QueueConfig: batch.DefaultConfig(),
		Clock:       clock.New(),
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	metrics := resilience.NewMetricsCollector(func(o *resilience.MetricsOptions) {
		o.Registerer = opts.PrometheusRegisterer
		o.Clock = opts.Clock
	})
	executor := resilience.NewExecutor(func(o *resilience.ExecutorOptions) {
		o.Clock = opts.Clock
		o.Logger = opts.Logger
		o.Metrics = metrics
	})

	reg := registry.New(func(o *registry.Options) {
		o.Executor = executor
		o.Clock = opts.Clock
		o.Logger = opts.Logger
	})

	queue := batch.New(opts.Store, func(o *batch.Options) {
		o.Config = opts.QueueConfig
		o.Executor = executor
		o.Handlers = opts.Handlers
		o.Logger = opts.Logger
	})

	// Supervise the queue alongside user services. Registration cannot fail
	// here: the name and handle are always set.
	_ = reg.Register(registry.Record{
		Name:                QueueServiceName,
		Service:             queue,
		Singleton:           true,
		HealthCheckInterval: opts.QueueHealthCheckInterval,
	})

	return &Core{opts: opts, executor: executor, registry: reg, queue: queue}
}

// Registry returns the service lifecycle registry.
func (c *Core) Registry() *registry.Registry { return c.registry }

// Queue returns the per-actor batch queue.
func (c *Core) Queue() *batch.Queue { return c.queue }

// Executor returns the shared execution primitives.
func (c *Core) Executor() *resilience.Executor { return c.executor }

// InitializeAll starts every registered service in dependency order.
func (c *Core) InitializeAll(ctx context.Context) registry.InitReport {
	return c.registry.InitializeAll(ctx)
}

// HealthStatus sweeps every registered service's health check.
func (c *Core) HealthStatus(ctx context.Context) registry.HealthReport {
	return c.registry.HealthStatus(ctx)
}

// Metrics snapshots the rolling metrics for every operation the core has
// executed.
func (c *Core) Metrics() map[string]resilience.Metrics {
	return c.executor.Metrics().All()
}

// Shutdown stops all health monitoring and discards registry state. Call it
// once at process end.
func (c *Core) Shutdown() {
	c.registry.Shutdown()
}
