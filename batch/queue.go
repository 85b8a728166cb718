package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mamcisaac/teaching-engine/core"
	"github.com/mamcisaac/teaching-engine/logging"
	"github.com/mamcisaac/teaching-engine/resilience"
)

// ErrDrainInProgress is returned by Process when the actor already has an
// active drain. Only one drain may run per actor at a time.
var ErrDrainInProgress = fmt.Errorf("batch processing already in progress for this actor")

// Config tunes queue behavior.
type Config struct {
	// BatchSize is the default drain concurrency.
	BatchSize int

	// MaxRetries is the per-operation retry budget. An operation's retry
	// counter never exceeds this value.
	MaxRetries int

	// RetryDelay is the linear backoff unit between operation retries: the
	// n-th retry waits RetryDelay * n.
	RetryDelay time.Duration

	// WarnBatchSize is the validation threshold above which a submitted
	// batch draws an oversized warning.
	WarnBatchSize int

	// SubmitPolicy wraps Add so transient validation-dependency lookups are
	// retried transparently.
	SubmitPolicy resilience.RetryPolicy

	// TxPolicy wraps each operation's transactional scope.
	TxPolicy resilience.RetryPolicy
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		BatchSize:     5,
		MaxRetries:    3,
		RetryDelay:    time.Second,
		WarnBatchSize: 100,
		SubmitPolicy:  resilience.RetryPolicy{MaxRetries: 2, BaseDelay: 100 * time.Millisecond},
		TxPolicy:      resilience.RetryPolicy{MaxRetries: 2, BaseDelay: 100 * time.Millisecond, MaxDelay: time.Second, ExponentialBackoff: true},
	}
}

// Options configures a Queue.
type Options struct {
	Config   Config
	Executor *resilience.Executor
	Runner   core.TransactionRunner
	Handlers HandlerTable
	Logger   logging.Logger
}

// Queue holds one operation sequence per actor and drains them on demand.
// The per-actor draining set is guarded by the queue mutex, making the
// "already processing" check a true test-and-set rather than an advisory
// flag.
type Queue struct {
	mu       sync.Mutex
	queues   map[string][]*Operation
	draining map[string]bool

	config   Config
	executor *resilience.Executor
	runner   core.TransactionRunner
	handlers HandlerTable
	logger   logging.Logger
}

// New creates a Queue. A Runner must be provided; Handlers default to the
// built-in store-backed table.
func New(runner core.TransactionRunner, optFns ...func(o *Options)) *Queue {
	opts := Options{
		Config: DefaultConfig(),
		Runner: runner,
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Executor == nil {
		opts.Executor = resilience.NewExecutor(func(o *resilience.ExecutorOptions) {
			o.Logger = opts.Logger
		})
	}
	if opts.Handlers == nil {
		opts.Handlers = StoreHandlers()
	}
	return &Queue{
		queues:   make(map[string][]*Operation),
		draining: make(map[string]bool),
		config:   opts.Config,
		executor: opts.Executor,
		runner:   opts.Runner,
		handlers: opts.Handlers,
		logger:   opts.Logger,
	}
}

// Add validates each payload, assigns ids and pending status, and appends
// the resulting operations to the actor's queue. The whole submission is
// wrapped in the retry primitive so transient lookups inside validation are
// retried; a structurally invalid payload is a permanent failure and rejects
// the submission without queuing anything.
func (q *Queue) Add(ctx context.Context, actorID string, payloads []Payload) ([]string, error) {
	if actorID == "" {
		return nil, fmt.Errorf("actor id is required")
	}
	return resilience.RetryResult(ctx, q.executor, "batch.add", q.config.SubmitPolicy, func(ctx context.Context) ([]string, error) {
		for i, p := range payloads {
			if p == nil {
				return nil, fmt.Errorf("operation %d: payload is required", i)
			}
			if err := p.Validate(); err != nil {
				return nil, fmt.Errorf("operation %d: %w", i, err)
			}
		}

		now := q.executor.Clock().Now()
		ids := make([]string, 0, len(payloads))
		ops := make([]*Operation, 0, len(payloads))
		for _, p := range payloads {
			op := &Operation{
				ID:        uuid.NewString(),
				Payload:   p,
				Status:    StatusPending,
				CreatedAt: now,
				UpdatedAt: now,
			}
			ids = append(ids, op.ID)
			ops = append(ops, op)
		}

		q.mu.Lock()
		q.queues[actorID] = append(q.queues[actorID], ops...)
		q.mu.Unlock()

		q.logger.Info("operations queued", "actor_id", actorID, "count", len(ops))
		return ids, nil
	})
}

// ProcessOptions tunes one drain.
type ProcessOptions struct {
	// Concurrency bounds simultaneous operations. Defaults to Config.BatchSize.
	Concurrency int
}

// Report summarizes one drain.
type Report struct {
	Processed int
	Succeeded int
	Failed    int
}

// Process drains the actor's pending operations with bounded concurrency.
// It refuses to start while another drain for the same actor is active,
// returning ErrDrainInProgress. Individual operation failures mark that
// operation, never the whole drain; the per-actor lock is released on every
// exit path.
func (q *Queue) Process(ctx context.Context, actorID string, optFns ...func(o *ProcessOptions)) (Report, error) {
	opts := ProcessOptions{Concurrency: q.config.BatchSize}
	for _, fn := range optFns {
		fn(&opts)
	}

	q.mu.Lock()
	if q.draining[actorID] {
		q.mu.Unlock()
		return Report{}, ErrDrainInProgress
	}
	q.draining[actorID] = true
	var pending []*Operation
	for _, op := range q.queues[actorID] {
		if op.Status == StatusPending {
			pending = append(pending, op)
		}
	}
	q.mu.Unlock()

	defer func() {
		q.mu.Lock()
		delete(q.draining, actorID)
		q.mu.Unlock()
	}()

	if len(pending) == 0 {
		return Report{}, nil
	}

	ops := make([]func(ctx context.Context) (string, error), len(pending))
	for i, op := range pending {
		op := op
		ops[i] = func(ctx context.Context) (string, error) {
			return op.ID, q.processOne(ctx, op)
		}
	}

	start := q.executor.Clock().Now()
	outcome := resilience.Parallel(ctx, q.executor, "batch.drain", ops, resilience.ParallelOptions{
		Concurrency: opts.Concurrency,
	})

	report := Report{Processed: len(pending), Succeeded: outcome.Succeeded, Failed: outcome.Failed()}
	q.logger.Info("batch drain finished",
		"actor_id", actorID,
		"processed", report.Processed,
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"duration", q.executor.Clock().Since(start))
	return report, nil
}

// processOne runs a single operation to a terminal status. Each attempt
// dispatches the kind's handler inside a transactional scope; failures
// increment the operation's retry counter and, while budget remains, the
// operation re-runs after a linearly increasing delay (RetryDelay * count).
func (q *Queue) processOne(ctx context.Context, op *Operation) error {
	q.update(op, func(op *Operation) {
		op.Status = StatusProcessing
	})

	handler, ok := q.handlers[op.Kind()]
	if !ok {
		err := fmt.Errorf("no handler registered for operation kind %q", op.Kind())
		q.fail(op, err)
		return err
	}

	opName := "batch." + string(op.Kind())
	for {
		err := q.executor.InTransaction(ctx, opName, q.runner, q.config.TxPolicy, func(tx any) error {
			return handler(ctx, tx, op)
		})
		if err == nil {
			q.update(op, func(op *Operation) {
				op.Status = StatusCompleted
				op.Progress = 100
			})
			return nil
		}

		var exhausted bool
		q.update(op, func(op *Operation) {
			op.Errors = append(op.Errors, err.Error())
			if op.Retries < q.config.MaxRetries {
				op.Retries++
			}
			exhausted = op.Retries >= q.config.MaxRetries
		})
		if exhausted {
			q.fail(op, err)
			return err
		}

		q.logger.Warn("operation retry scheduled", "operation_id", op.ID, "kind", string(op.Kind()), "retries", op.Retries)
		if serr := q.sleep(ctx, q.config.RetryDelay*time.Duration(op.Retries)); serr != nil {
			q.fail(op, serr)
			return serr
		}
	}
}

func (q *Queue) fail(op *Operation, err error) {
	q.update(op, func(op *Operation) {
		op.Status = StatusError
		if len(op.Errors) == 0 || op.Errors[len(op.Errors)-1] != err.Error() {
			op.Errors = append(op.Errors, err.Error())
		}
	})
}

// update mutates op under the queue lock so status snapshots never observe
// torn state.
func (q *Queue) update(op *Operation, fn func(op *Operation)) {
	q.mu.Lock()
	fn(op)
	op.UpdatedAt = q.executor.Clock().Now()
	q.mu.Unlock()
}

func (q *Queue) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := q.executor.Clock().Timer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StatusReport is a point-in-time copy of an actor's queue.
type StatusReport struct {
	Operations []Operation    `json:"operations"`
	Counts     map[Status]int `json:"counts"`
	Draining   bool           `json:"draining"`
}

// Status returns copies of the actor's operations plus per-status counts.
// The returned operations are snapshots; mutating them does not affect the
// queue.
func (q *Queue) Status(actorID string) StatusReport {
	q.mu.Lock()
	defer q.mu.Unlock()

	report := StatusReport{
		Operations: make([]Operation, 0, len(q.queues[actorID])),
		Counts:     map[Status]int{},
		Draining:   q.draining[actorID],
	}
	for _, op := range q.queues[actorID] {
		report.Operations = append(report.Operations, op.clone())
		report.Counts[op.Status]++
	}
	return report
}

// ClearCompleted discards the actor's completed and errored operations,
// retaining pending and processing entries. It returns the number removed.
func (q *Queue) ClearCompleted(actorID string) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := q.queues[actorID][:0:0]
	removed := 0
	for _, op := range q.queues[actorID] {
		switch op.Status {
		case StatusPending, StatusProcessing:
			kept = append(kept, op)
		default:
			removed++
		}
	}
	if len(kept) == 0 {
		delete(q.queues, actorID)
	} else {
		q.queues[actorID] = kept
	}
	return removed
}

// Start implements core.Service. The queue has no startup work; it exists so
// the queue can be registered and supervised like any other service.
func (q *Queue) Start(context.Context) error { return nil }

// HealthCheck implements core.Service, reporting queue depth per status and
// the number of active drains.
func (q *Queue) HealthCheck(context.Context) (core.HealthResult, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	pending, active := 0, 0
	for _, ops := range q.queues {
		for _, op := range ops {
			if op.Status == StatusPending {
				pending++
			}
		}
	}
	for range q.draining {
		active++
	}
	return core.HealthResult{
		Healthy: true,
		Details: map[string]any{
			"actors":        len(q.queues),
			"pending":       pending,
			"active_drains": active,
		},
	}, nil
}
