package testutil

import (
	"context"
	"sync"

	"github.com/mamcisaac/teaching-engine/core"
)

// FlakyService is a core.Service double whose Start fails a configured
// number of times before succeeding, and whose health checks are counted.
// Safe for concurrent use.
type FlakyService struct {
	mu           sync.Mutex
	startFails   int
	startErr     error
	starts       int
	healthChecks int
	healthy      bool
}

// NewFlakyService builds a service that fails Start failures times with err,
// then succeeds. A nil err with failures > 0 panics at use, so pass one.
func NewFlakyService(failures int, err error) *FlakyService {
	return &FlakyService{startFails: failures, startErr: err, healthy: true}
}

// NewHealthyService builds a service that always starts and reports healthy.
func NewHealthyService() *FlakyService {
	return &FlakyService{healthy: true}
}

// SetHealthy flips the health check outcome.
func (s *FlakyService) SetHealthy(h bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.healthy = h
}

// Start implements core.Service.
func (s *FlakyService) Start(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.starts++
	if s.startFails > 0 {
		s.startFails--
		return s.startErr
	}
	return nil
}

// HealthCheck implements core.Service.
func (s *FlakyService) HealthCheck(context.Context) (core.HealthResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.healthChecks++
	return core.HealthResult{Healthy: s.healthy}, nil
}

// Starts returns how many times Start ran.
func (s *FlakyService) Starts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.starts
}

// HealthChecks returns how many times HealthCheck ran.
func (s *FlakyService) HealthChecks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.healthChecks
}

// FlakyRunner is a core.TransactionRunner double that fails the first
// configured number of transactions before delegating to an inner runner
// (or succeeding outright when inner is nil).
type FlakyRunner struct {
	mu       sync.Mutex
	failures int
	err      error
	inner    core.TransactionRunner
	calls    int
}

// NewFlakyRunner builds a runner failing failures times with err.
func NewFlakyRunner(failures int, err error, inner core.TransactionRunner) *FlakyRunner {
	return &FlakyRunner{failures: failures, err: err, inner: inner}
}

// RunInTransaction implements core.TransactionRunner.
func (r *FlakyRunner) RunInTransaction(ctx context.Context, fn func(tx any) error) error {
	r.mu.Lock()
	r.calls++
	if r.failures > 0 {
		r.failures--
		r.mu.Unlock()
		return r.err
	}
	inner := r.inner
	r.mu.Unlock()

	if inner != nil {
		return inner.RunInTransaction(ctx, fn)
	}
	return fn(struct{}{})
}

// Calls returns how many transactions were attempted.
func (r *FlakyRunner) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}
