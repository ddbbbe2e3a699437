package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants"
	"go.uber.org/zap"
)

// Workload owns a fixed set of workers and fans their run loops out over
// an ants worker pool, matching spec.md §4.4's Workload API and the
// teacher's ants.NewPool(n) + sync.WaitGroup + pool.Submit(task) pattern.
type Workload struct {
	log     *zap.SugaredLogger
	pool    *ants.Pool
	workers []*Worker
	wg      sync.WaitGroup
}

// NewWorkload returns a Workload over the given workers, backed by an
// ants pool sized to exactly the worker count: one goroutine slot per
// worker, run to completion, mirroring spec.md §5's "one [thread] per
// worker" scheduling model.
func NewWorkload(log *zap.SugaredLogger, workers []*Worker) (*Workload, error) {
	pool, err := ants.NewPool(len(workers))
	if err != nil {
		return nil, fmt.Errorf("worker: new pool: %w", err)
	}
	return &Workload{log: log, pool: pool, workers: workers}, nil
}

// Run starts every worker's run loop for duration. It does not block;
// call WaitCompletion to join.
func (wl *Workload) Run(ctx context.Context, duration time.Duration) error {
	for _, w := range wl.workers {
		w := w
		wl.wg.Add(1)
		task := func() {
			defer wl.wg.Done()
			w.RunLoop(ctx, duration)
		}
		if err := wl.pool.Submit(task); err != nil {
			wl.wg.Done()
			return fmt.Errorf("worker: submit %s: %w", w.Name(), err)
		}
	}
	return nil
}

// WaitCompletion blocks until every worker's run loop has returned.
func (wl *Workload) WaitCompletion() {
	wl.wg.Wait()
}

// Worker returns the i'th worker, 1-based as in spec.md §6's
// worker(i).
func (wl *Workload) Worker(i int) *Worker {
	if i < 1 || i > len(wl.workers) {
		return nil
	}
	return wl.workers[i-1]
}

// WorkerCount returns the number of workers in this workload.
func (wl *Workload) WorkerCount() int {
	return len(wl.workers)
}

// ReconnectWorkers asks every worker's SQL envelope to reconnect, for use
// between crash/restart scenarios per spec.md §4.4.
func (wl *Workload) ReconnectWorkers(ctx context.Context) error {
	for _, w := range wl.workers {
		if err := w.Envelope().Reconnect(ctx); err != nil {
			return fmt.Errorf("worker: reconnect %s: %w", w.Name(), err)
		}
	}
	return nil
}

// Close releases the underlying ants pool and closes every worker's SQL
// envelope, bounded by ctx: a worker connection wedged mid-close cannot
// hang the caller forever.
func (wl *Workload) Close(ctx context.Context) error {
	wl.pool.Release()

	done := make(chan error, 1)
	go func() {
		var firstErr error
		for _, w := range wl.workers {
			if err := w.Envelope().Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		done <- firstErr
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("worker: close timed out: %w", ctx.Err())
	}
}
