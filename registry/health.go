package registry

import (
	"context"
	"sort"

	"github.com/mamcisaac/teaching-engine/core"
	"github.com/mamcisaac/teaching-engine/resilience"
)

// HealthReport aggregates the outcome of one registry-wide health sweep.
type HealthReport struct {
	// Services maps every registered service to its freshly produced result.
	Services map[string]core.HealthResult
	// Healthy counts services whose result was healthy.
	Healthy int
}

// Total returns the number of services checked.
func (h HealthReport) Total() int { return len(h.Services) }

// HealthStatus runs health checks for every registered service with bounded
// concurrency, catching failures per service so one unhealthy service cannot
// prevent reporting on the others. Each result is cached on the service
// entry as a side effect, the same cache the periodic monitors maintain.
func (r *Registry) HealthStatus(ctx context.Context) HealthReport {
	r.mu.RLock()
	names := make([]string, 0, len(r.services))
	handles := make(map[string]core.Service, len(r.services))
	for name, e := range r.services {
		names = append(names, name)
		handles[name] = e.record.Service
	}
	r.mu.RUnlock()
	sort.Strings(names)

	ops := make([]func(ctx context.Context) (core.HealthResult, error), len(names))
	for i, name := range names {
		name := name
		svc := handles[name]
		ops[i] = func(ctx context.Context) (core.HealthResult, error) {
			// runHealthCheck folds check errors into an unhealthy result, so
			// the parallel outcome never carries a per-service error.
			return r.runHealthCheck(ctx, name, svc), nil
		}
	}

	outcome := resilience.Parallel(ctx, r.executor, "registry.health-sweep", ops, resilience.ParallelOptions{
		Concurrency: r.checkConc,
	})

	report := HealthReport{Services: make(map[string]core.HealthResult, len(names))}
	for i, name := range names {
		report.Services[name] = outcome.Results[i]
		if outcome.Results[i].Healthy {
			report.Healthy++
		}
	}
	return report
}
