// Package resilience provides the reusable execution primitives every
// higher-level service composes: retry with configurable backoff,
// transactional-scope execution, bounded-concurrency parallel execution and
// rolling per-operation performance metrics.
//
// All primitives run through an Executor which owns the clock, logger and
// metrics collector, so behavior is deterministic under test (inject a
// clock.Mock) and observable in production (inject a real logger and an
// optional Prometheus registerer).
//
// Example:
//
//	exec := resilience.NewExecutor(func(o *resilience.ExecutorOptions) {
//	    o.Logger = logger
//	})
//	err := exec.Retry(ctx, "sync-roster", resilience.DefaultRetryPolicy(), func(ctx context.Context) error {
//	    return client.Sync(ctx)
//	})
package resilience
