package resilience

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/mamcisaac/teaching-engine/core"
	"github.com/mamcisaac/teaching-engine/logging"
)

// ExecutorOptions configures an Executor instance using the functional
// options pattern. All fields have safe defaults: a real clock, a no-op
// logger and a fresh metrics collector.
type ExecutorOptions struct {
	// Clock drives backoff delays. Inject a clock.Mock for deterministic tests.
	Clock clock.Clock

	// Logger receives per-attempt observability records.
	Logger logging.Logger

	// Metrics collects rolling per-operation statistics. Sharing one collector
	// across executors aggregates their metrics under the same names.
	Metrics *MetricsCollector
}

// Executor runs operations through the resilience primitives. It is safe for
// concurrent use; all mutable state lives in the metrics collector, which
// synchronizes internally.
type Executor struct {
	clock   clock.Clock
	logger  logging.Logger
	metrics *MetricsCollector
}

// NewExecutor creates an Executor with optional overrides.
func NewExecutor(optFns ...func(o *ExecutorOptions)) *Executor {
	opts := ExecutorOptions{
		Clock:  clock.New(),
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetricsCollector(func(o *MetricsOptions) {
			o.Clock = opts.Clock
		})
	}
	return &Executor{clock: opts.Clock, logger: opts.Logger, metrics: opts.Metrics}
}

// Metrics returns the collector backing this executor.
func (e *Executor) Metrics() *MetricsCollector { return e.metrics }

// Clock returns the clock backing this executor.
func (e *Executor) Clock() clock.Clock { return e.clock }

// Retry attempts op up to policy.MaxRetries+1 times, suspending between
// attempts according to the policy. The first success wins. After the final
// failure the last error is returned wrapped with the operation name, and an
// error sample is recorded in the rolling metrics.
//
// Every attempt, success or failure, is logged with its attempt number so
// flaky collaborators are visible in production logs.
//
// The wait between attempts honors context cancellation; a cancelled context
// surfaces as the returned error without further attempts.
func (e *Executor) Retry(ctx context.Context, name string, policy RetryPolicy, op func(ctx context.Context) error) error {
	start := e.clock.Now()
	maxAttempts := policy.MaxRetries + 1

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := op(ctx)
		e.logger.Debug("operation attempt finished", "operation", name, "attempt", attempt, "max_attempts", maxAttempts, "error", errString(err))
		if err == nil {
			e.metrics.Record(name, e.clock.Since(start), false)
			return nil
		}
		lastErr = err
		e.logger.Warn("operation attempt failed", "operation", name, "attempt", attempt, "max_attempts", maxAttempts, "error", err.Error())

		if attempt == maxAttempts {
			break
		}
		if err := e.sleep(ctx, policy.Delay(attempt)); err != nil {
			e.metrics.Record(name, e.clock.Since(start), true)
			return err
		}
	}

	e.metrics.Record(name, e.clock.Since(start), true)
	return fmt.Errorf("operation %s failed after %d attempts: %w", name, maxAttempts, lastErr)
}

// RetryResult is the result-producing form of Executor.Retry. The operation's
// value from the first successful attempt is returned; on exhaustion the zero
// value and the wrapped last error are returned.
func RetryResult[T any](ctx context.Context, e *Executor, name string, policy RetryPolicy, op func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := e.Retry(ctx, name, policy, func(ctx context.Context) error {
		var opErr error
		result, opErr = op(ctx)
		return opErr
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// InTransaction runs fn inside a single atomic unit of work provided by the
// data-store collaborator, with the whole transaction wrapped in Retry so
// transient failures (deadlocks, connection drops) are retried transparently.
//
// Either all effects inside fn become visible or none do. Because a retried
// attempt re-runs fn from scratch, fn must be idempotent or safely
// re-entrant; the primitive cannot enforce that.
func (e *Executor) InTransaction(ctx context.Context, name string, runner core.TransactionRunner, policy RetryPolicy, fn func(tx any) error) error {
	return e.Retry(ctx, name, policy, func(ctx context.Context) error {
		return runner.RunInTransaction(ctx, fn)
	})
}

// sleep suspends for d on the executor clock, returning early if the context
// is cancelled. A zero or negative duration returns immediately.
func (e *Executor) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := e.clock.Timer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
