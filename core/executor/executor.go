package executor

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// ProgressFunc is invoked after each completed item with the number of completed items and
// the batch size. It may be called concurrently from several goroutines.
type ProgressFunc func(completed, total int)

// Executor bounds the number of operations in flight against a rate-limited API.
type Executor struct {
	name   string
	limit  int
	gate   *semaphore.Weighted
	logger *zap.Logger
}

// New creates an executor allowing at most limit concurrent operations.
func New(name string, limit int, logger *zap.Logger) *Executor {
	if limit < 1 {
		limit = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		name:   name,
		limit:  limit,
		gate:   semaphore.NewWeighted(int64(limit)),
		logger: logger.With(zap.String("executor", name)),
	}
}

// Name returns the diagnostic name of the executor.
func (e *Executor) Name() string {
	return e.name
}

// Limit returns the maximum concurrency.
func (e *Executor) Limit() int {
	return e.limit
}

// Execute runs op once a slot is free. The wait is abandoned when ctx is cancelled.
// The slot is released when op returns, fails or panics.
func (e *Executor) Execute(ctx context.Context, op func(ctx context.Context) error) (err error) {
	if err := e.gate.Acquire(ctx, 1); err != nil {
		return err
	}
	defer e.gate.Release(1)
	defer recoverInto(&err)

	return op(ctx)
}

// Outcome is the per-item result of MapSafe. Err is set when the item failed, in which case
// Value is the zero value.
type Outcome[O any] struct {
	Value O
	Err   error
}

// OK reports whether the item succeeded.
func (o Outcome[O]) OK() bool {
	return o.Err == nil
}

// Map runs op for every item with at most e.Limit() in flight and returns the results in
// input order. The first failure cancels the remaining items and is returned.
func Map[I, O any](ctx context.Context, e *Executor, items []I, op func(context.Context, I) (O, error), progress ProgressFunc) ([]O, error) {
	results := make([]O, len(items))
	total := len(items)
	var completed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	for i, item := range items {
		g.Go(func() error {
			err := e.Execute(gctx, func(ctx context.Context) error {
				out, err := op(ctx, item)
				if err != nil {
					return err
				}
				results[i] = out
				return nil
			})
			if err != nil {
				return err
			}
			if progress != nil {
				progress(int(completed.Add(1)), total)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// MapSafe runs op for every item like Map, but a failing item is logged and reported as a
// missing result instead of aborting the batch. Cancellation of ctx marks the items that
// had not run yet as failed with ctx.Err().
func MapSafe[I, O any](ctx context.Context, e *Executor, items []I, op func(context.Context, I) (O, error), progress ProgressFunc) []Outcome[O] {
	outcomes := make([]Outcome[O], len(items))
	total := len(items)
	var completed atomic.Int64

	var g errgroup.Group
	for i, item := range items {
		g.Go(func() error {
			err := e.Execute(ctx, func(ctx context.Context) error {
				out, err := op(ctx, item)
				if err != nil {
					return err
				}
				outcomes[i].Value = out
				return nil
			})
			if err != nil {
				outcomes[i].Err = err
				if ctx.Err() == nil {
					e.logger.Warn("Item failed", zap.Int("index", i), zap.Error(err))
				}
			}
			if progress != nil {
				progress(int(completed.Add(1)), total)
			}
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

// recoverInto converts a panic into an error assigned to *err.
func recoverInto(err *error) {
	if r := recover(); r != nil {
		if rErr, ok := r.(error); ok {
			*err = fmt.Errorf("panic: %w", rErr)
			return
		}
		*err = fmt.Errorf("panic: %v", r)
	}
}
