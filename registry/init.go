package registry

import (
	"context"
	"fmt"
	"sort"

	"github.com/mamcisaac/teaching-engine/resilience"
)

// FailureReason classifies why a service could not be initialized. The three
// structural reasons are distinguished so callers can tell a broken
// registration (missing dependency) from a broken startup (dependency
// failed) from a broken topology (dependency cycle).
type FailureReason string

const (
	// ReasonMissingDependency means a declared dependency is not registered.
	ReasonMissingDependency FailureReason = "missing dependency"
	// ReasonDependencyFailed means a declared dependency failed to start.
	ReasonDependencyFailed FailureReason = "dependency failed"
	// ReasonDependencyCycle means the service participates in, or depends on,
	// a circular dependency chain.
	ReasonDependencyCycle FailureReason = "dependency cycle"
	// ReasonStartError means the service's own Start call failed.
	ReasonStartError FailureReason = "start error"
)

// InitFailure describes one service that could not be initialized.
type InitFailure struct {
	Name   string
	Reason FailureReason
	Err    error
}

// InitReport is the outcome of InitializeAll. Initialized lists services in
// the order they were started; Failed lists every service that could not be
// advanced, each with a classified reason.
type InitReport struct {
	Initialized []string
	Failed      []InitFailure
}

// InitializeAll computes a safe startup order by iterative topological
// resolution: it repeatedly scans the not-yet-initialized services, starting
// any whose declared dependencies have all started, until a full scan makes
// no progress. Services never reached are reported as failed with a
// classified reason rather than raised as an error, so independent
// subsystems come up even when one dependency chain is broken.
//
// Calling InitializeAll again retries services that previously failed;
// already-initialized services are not restarted.
func (r *Registry) InitializeAll(ctx context.Context) InitReport {
	r.mu.Lock()
	pending := make(map[string]Record)
	done := make(map[string]bool)
	for name, e := range r.services {
		switch e.state {
		case StateInitialized:
			done[name] = true
		default:
			pending[name] = e.record
		}
	}
	r.mu.Unlock()

	report := InitReport{}
	failed := make(map[string]bool)

	fail := func(name string, reason FailureReason, err error) {
		failed[name] = true
		delete(pending, name)
		report.Failed = append(report.Failed, InitFailure{Name: name, Reason: reason, Err: err})
		r.setState(name, StateFailed)
		r.logger.Warn("service initialization failed", "service", name, "reason", string(reason), "error", errString(err))
	}

	// Missing dependencies are detectable up front. A dependency absent from
	// both done and pending is either unregistered or was failed earlier in
	// this same pass; only the former is a missing dependency. Dependents of
	// services that fail later in the pass are handled by the scan below.
	for _, name := range sortedKeys(pending) {
		rec := pending[name]
		for _, dep := range rec.Dependencies {
			if done[dep] {
				continue
			}
			if failed[dep] {
				fail(name, ReasonDependencyFailed, fmt.Errorf("service %s depends on failed service %s", name, dep))
				break
			}
			if _, isPending := pending[dep]; !isPending {
				fail(name, ReasonMissingDependency, fmt.Errorf("service %s depends on unregistered service %s", name, dep))
				break
			}
		}
	}

	progress := true
	for progress && len(pending) > 0 {
		progress = false
		for _, name := range sortedKeys(pending) {
			rec, ok := pending[name]
			if !ok {
				continue
			}

			blocked, brokenDep := false, ""
			ready := true
			for _, dep := range rec.Dependencies {
				if failed[dep] {
					blocked, brokenDep = true, dep
					break
				}
				if !done[dep] {
					ready = false
				}
			}
			if blocked {
				fail(name, ReasonDependencyFailed, fmt.Errorf("service %s depends on failed service %s", name, brokenDep))
				progress = true
				continue
			}
			if !ready {
				continue
			}

			r.setState(name, StateInitializing)
			err := r.executor.Retry(ctx, metricName(name), resilience.RetryPolicy{}, rec.Service.Start)
			if err != nil {
				fail(name, ReasonStartError, err)
			} else {
				done[name] = true
				delete(pending, name)
				report.Initialized = append(report.Initialized, name)
				r.setState(name, StateInitialized)
				r.logger.Info("service initialized", "service", name)
			}
			progress = true
		}
	}

	// Anything left could not be advanced by a full scan: every remaining
	// service waits on another remaining service, which is a cycle (or a
	// chain hanging off one).
	for _, name := range sortedKeys(pending) {
		fail(name, ReasonDependencyCycle, fmt.Errorf("service %s is part of or depends on a dependency cycle", name))
	}

	r.logger.Info("initialization pass complete", "initialized", len(report.Initialized), "failed", len(report.Failed))
	return report
}

func (r *Registry) setState(name string, state State) {
	r.mu.Lock()
	if e, ok := r.services[name]; ok {
		e.state = state
	}
	r.mu.Unlock()
}

func sortedKeys(m map[string]Record) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
