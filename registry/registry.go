package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/mamcisaac/teaching-engine/core"
	"github.com/mamcisaac/teaching-engine/logging"
	"github.com/mamcisaac/teaching-engine/resilience"
)

// ErrServiceNotFound is returned when an operation references an unregistered
// service name.
var ErrServiceNotFound = fmt.Errorf("service not found")

// State tracks where a service is in its lifecycle.
type State string

const (
	// StateRegistered means the service is known but not yet started.
	StateRegistered State = "registered"
	// StateInitializing means the service's Start call is in flight.
	StateInitializing State = "initializing"
	// StateInitialized means the service started successfully.
	StateInitialized State = "initialized"
	// StateFailed means the service could not be started.
	StateFailed State = "failed"
)

// Record describes one registered service: its unique name, the service
// handle, the names of services it depends on, whether it is a singleton and
// an optional health-check interval (zero disables periodic monitoring).
type Record struct {
	Name                string
	Service             core.Service
	Dependencies        []string
	Singleton           bool
	HealthCheckInterval time.Duration
}

// entry is the registry's internal per-service state. Guarded by Registry.mu.
type entry struct {
	record    Record
	state     State
	health    *core.HealthResult
	checkedAt time.Time
	stopCh    chan struct{} // non-nil while a monitor goroutine runs
}

// Options configures a Registry.
type Options struct {
	// Executor runs health checks and Start calls through the resilience
	// primitives. A default executor is created when nil.
	Executor *resilience.Executor

	// Clock drives health-check tickers. Defaults to the executor's clock.
	Clock clock.Clock

	// Logger receives lifecycle and monitoring records.
	Logger logging.Logger

	// HealthCheckPolicy wraps monitor-driven health checks. Defaults to a
	// single retry with a short flat delay so a transiently slow check does
	// not immediately mark a service unhealthy.
	HealthCheckPolicy resilience.RetryPolicy

	// HealthCheckConcurrency bounds concurrent checks in HealthStatus.
	HealthCheckConcurrency int
}

// Registry owns the full set of registered services. All maps are mutated
// only by registry methods and the monitor goroutines it owns; external
// callers interact exclusively through the exported API.
type Registry struct {
	mu       sync.RWMutex
	services map[string]*entry

	executor    *resilience.Executor
	clock       clock.Clock
	logger      logging.Logger
	checkPolicy resilience.RetryPolicy
	checkConc   int

	wg sync.WaitGroup // tracks monitor goroutines for Shutdown
}

// New creates an empty Registry with optional overrides.
func New(optFns ...func(o *Options)) *Registry {
	opts := Options{
		Logger: logging.NoOpLogger{},
		HealthCheckPolicy: resilience.RetryPolicy{
			MaxRetries: 1,
			BaseDelay:  100 * time.Millisecond,
		},
		HealthCheckConcurrency: 8,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Executor == nil {
		opts.Executor = resilience.NewExecutor(func(o *resilience.ExecutorOptions) {
			o.Logger = opts.Logger
			if opts.Clock != nil {
				o.Clock = opts.Clock
			}
		})
	}
	if opts.Clock == nil {
		opts.Clock = opts.Executor.Clock()
	}
	return &Registry{
		services:    make(map[string]*entry),
		executor:    opts.Executor,
		clock:       opts.Clock,
		logger:      opts.Logger,
		checkPolicy: opts.HealthCheckPolicy,
		checkConc:   opts.HealthCheckConcurrency,
	}
}

// Register inserts or replaces a service record by name. Replacing an
// existing registration logs a warning, stops the old monitor and discards
// the old cached health; it is not an error. When the record declares a
// health-check interval a periodic monitor is started immediately.
func (r *Registry) Register(rec Record) error {
	if rec.Name == "" {
		return fmt.Errorf("service name is required")
	}
	if rec.Service == nil {
		return fmt.Errorf("service %s: handle is required", rec.Name)
	}

	r.mu.Lock()
	if old, ok := r.services[rec.Name]; ok {
		r.logger.Warn("replacing registered service", "service", rec.Name)
		r.stopMonitorLocked(old)
	}
	e := &entry{record: rec, state: StateRegistered}
	r.services[rec.Name] = e
	if rec.HealthCheckInterval > 0 {
		r.startMonitorLocked(e)
	}
	r.mu.Unlock()

	r.logger.Info("service registered", "service", rec.Name, "dependencies", rec.Dependencies)
	return nil
}

// Unregister stops any active health monitor for name and removes its record
// and cached health. It reports whether the service was registered; it never
// fails.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	e, ok := r.services[name]
	if ok {
		r.stopMonitorLocked(e)
		delete(r.services, name)
	}
	r.mu.Unlock()

	if ok {
		r.executor.Metrics().Reset(metricName(name))
		r.logger.Info("service unregistered", "service", name)
	}
	return ok
}

// Shutdown unconditionally stops every health monitor, waits for them to
// exit and discards all records, cached health and per-service metrics. It
// does not attempt to drain in-flight operations.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	names := make([]string, 0, len(r.services))
	for name, e := range r.services {
		r.stopMonitorLocked(e)
		names = append(names, name)
	}
	r.services = make(map[string]*entry)
	r.mu.Unlock()

	r.wg.Wait()
	for _, name := range names {
		r.executor.Metrics().Reset(metricName(name))
	}
	r.logger.Info("registry shut down", "services", len(names))
}

// State returns the lifecycle state of name.
func (r *Registry) State(name string) (State, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.services[name]
	if !ok {
		return "", false
	}
	return e.state, true
}

// CachedHealth returns the most recent health result recorded for name, if
// any check has run yet.
func (r *Registry) CachedHealth(name string) (core.HealthResult, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.services[name]
	if !ok || e.health == nil {
		return core.HealthResult{}, false
	}
	return *e.health, true
}

// Metrics returns a snapshot of the rolling metrics for every service the
// registry has exercised through the execution primitives.
func (r *Registry) Metrics() map[string]resilience.Metrics {
	return r.executor.Metrics().All()
}

// ResetMetrics discards the rolling metrics for name.
func (r *Registry) ResetMetrics(name string) {
	r.executor.Metrics().Reset(metricName(name))
}

// startMonitorLocked launches the periodic health-check goroutine for e.
// Caller holds the write lock.
func (r *Registry) startMonitorLocked(e *entry) {
	stopCh := make(chan struct{})
	e.stopCh = stopCh
	name := e.record.Name
	svc := e.record.Service
	interval := e.record.HealthCheckInterval

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := r.clock.Ticker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				r.runHealthCheck(context.Background(), name, svc)
			}
		}
	}()
}

// stopMonitorLocked signals e's monitor goroutine to exit. Caller holds the
// write lock. Safe to call when no monitor is running.
func (r *Registry) stopMonitorLocked(e *entry) {
	if e.stopCh != nil {
		close(e.stopCh)
		e.stopCh = nil
	}
}

// runHealthCheck invokes svc's health check through the retry primitive,
// caches the result and records it in the rolling metrics. A check that
// errors after retries is cached as unhealthy with the error message in the
// details payload.
func (r *Registry) runHealthCheck(ctx context.Context, name string, svc core.Service) core.HealthResult {
	start := r.clock.Now()
	result, err := resilience.RetryResult(ctx, r.executor, metricName(name), r.checkPolicy, func(ctx context.Context) (core.HealthResult, error) {
		return svc.HealthCheck(ctx)
	})
	if err != nil {
		result = core.HealthResult{Healthy: false, Details: map[string]any{"error": err.Error()}}
	}

	r.mu.Lock()
	if e, ok := r.services[name]; ok {
		res := result
		e.health = &res
		e.checkedAt = r.clock.Now()
	}
	r.mu.Unlock()

	dur := r.clock.Since(start)
	if result.Healthy {
		r.logger.Debug("health check passed", "service", name, "duration", dur)
	} else {
		r.logger.Warn("health check failed", "service", name, "duration", dur, "error", errString(err))
	}
	return result
}

func metricName(service string) string { return "service." + service }

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
