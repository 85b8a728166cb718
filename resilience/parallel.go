package resilience

import (
	"context"
	"sync"
)

// ParallelOptions bounds a Parallel run.
type ParallelOptions struct {
	// Concurrency is the maximum number of operations running at once.
	// Values below 1 are treated as 1.
	Concurrency int

	// FailFast stops dispatching further sub-batches once any operation in a
	// completed sub-batch has failed. Operations already dispatched are
	// allowed to finish.
	FailFast bool
}

// Outcome holds the index-aligned results of a Parallel run. Results[i] and
// Errors[i] correspond to ops[i], so callers can map failures back to inputs
// without re-running anything. Operations never dispatched (fail-fast cut)
// have a zero result and a nil error.
type Outcome[T any] struct {
	Results   []T
	Errors    []error
	Succeeded int
}

// Failed reports how many dispatched operations returned an error.
func (o Outcome[T]) Failed() int {
	n := 0
	for _, err := range o.Errors {
		if err != nil {
			n++
		}
	}
	return n
}

// Parallel executes ops with bounded concurrency: operations are partitioned
// into sub-batches of at most opts.Concurrency, each sub-batch runs
// concurrently, and sub-batch k+1 never starts before sub-batch k has fully
// resolved. Operations within one sub-batch have no ordering guarantee among
// themselves.
//
// Bounding concurrency keeps downstream collaborators (data store, network
// providers) from being overwhelmed while still parallelizing independent
// work. Every run is recorded once in the executor metrics under name, with
// an error sample when any operation failed.
func Parallel[T any](ctx context.Context, e *Executor, name string, ops []func(ctx context.Context) (T, error), opts ParallelOptions) Outcome[T] {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}

	start := e.clock.Now()
	out := Outcome[T]{
		Results: make([]T, len(ops)),
		Errors:  make([]error, len(ops)),
	}

	for offset := 0; offset < len(ops); offset += opts.Concurrency {
		end := offset + opts.Concurrency
		if end > len(ops) {
			end = len(ops)
		}

		var wg sync.WaitGroup
		for i := offset; i < end; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				out.Results[idx], out.Errors[idx] = ops[idx](ctx)
			}(i)
		}
		wg.Wait()

		batchFailed := false
		for i := offset; i < end; i++ {
			if out.Errors[i] != nil {
				batchFailed = true
			} else {
				out.Succeeded++
			}
		}
		if batchFailed && opts.FailFast {
			e.logger.Warn("parallel run stopped early", "operation", name, "dispatched", end, "total", len(ops))
			break
		}
	}

	e.metrics.Record(name, e.clock.Since(start), out.Failed() > 0)
	return out
}
