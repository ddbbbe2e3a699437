// Package worker implements the worker and workload of spec.md §4.4: a
// worker owns a SQL connection, a private RNG, and shared handles to the
// metadata and action registries; a workload fans out N workers over an
// ants worker pool and joins them, matching the teacher's
// ants.NewPool(n) + sync.WaitGroup + pool.Submit(task) pattern in
// src/recovery/cases_test.go.
package worker

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/pstressdb/dbstress/src/action"
	"github.com/pstressdb/dbstress/src/prand"
	"github.com/pstressdb/dbstress/src/registry"
	"github.com/pstressdb/dbstress/src/sqlenv"
)

// Worker drives random (or scripted) actions against a shared metadata
// registry through its own SQL connection.
type Worker struct {
	name      string
	log       *zap.SugaredLogger
	sql       sqlenv.Envelope
	rng       *prand.Rand
	reg       *registry.Manager
	actions   *action.Registry
	actionCfg action.Config

	successfulActions atomic.Uint64
	failedActions     atomic.Uint64
}

// New returns a Worker. actions may be nil for a worker that only ever
// runs explicitly-constructed actions (e.g. CreateRandomTables).
func New(name string, log *zap.SugaredLogger, sql sqlenv.Envelope, rng *prand.Rand, reg *registry.Manager, actions *action.Registry, actionCfg action.Config) *Worker {
	return &Worker{
		name:      name,
		log:       log,
		sql:       sql,
		rng:       rng,
		reg:       reg,
		actions:   actions,
		actionCfg: actionCfg,
	}
}

// Name returns the worker's identifying name, used in log file naming.
func (w *Worker) Name() string {
	return w.name
}

// Envelope returns the worker's SQL connection, used by Workload's
// ReconnectWorkers.
func (w *Worker) Envelope() sqlenv.Envelope {
	return w.sql
}

// SuccessfulActions returns the running count of actions that completed
// without error.
func (w *Worker) SuccessfulActions() uint64 {
	return w.successfulActions.Load()
}

// FailedActions returns the running count of actions that returned an
// error.
func (w *Worker) FailedActions() uint64 {
	return w.failedActions.Load()
}

// CreateRandomTables synchronously bootstraps n tables via repeated
// CreateTable actions, matching the source's create_random_tables.
func (w *Worker) CreateRandomTables(ctx context.Context, n int) {
	create := action.NewCreateTable(w.actionCfg.Ddl, registry.TableNormal)
	for i := 0; i < n; i++ {
		if err := create.Execute(ctx, w.reg, w.rng, w.sql); err != nil {
			w.failedActions.Add(1)
			w.log.Errorw("create_random_tables: action failed", "error", err)
			continue
		}
		w.successfulActions.Add(1)
	}
}

// GenerateInitialData seeds every currently-published table with ten
// batches of 100 rows, matching the source's generate_initial_data.
func (w *Worker) GenerateInitialData(ctx context.Context) {
	for _, table := range w.reg.Data() {
		insert := action.NewInsertDataForTable(w.actionCfg.Dml, table, 100)
		for i := 0; i < 10; i++ {
			if err := insert.Execute(ctx, w.reg, w.rng, w.sql); err != nil {
				w.failedActions.Add(1)
				w.log.Errorw("generate_initial_data: action failed", "table", table.Name, "error", err)
				continue
			}
			w.successfulActions.Add(1)
		}
	}
}

// RunLoop repeatedly samples the action registry by weight and executes
// the chosen action until duration has elapsed. It never returns an
// error: every action failure is tallied and logged, never propagated,
// matching spec.md §5's "let each worker finish its current action"
// shutdown model — the deadline is checked only between actions.
func (w *Worker) RunLoop(ctx context.Context, duration time.Duration) {
	deadline := time.Now().Add(duration)

	totalWeight := w.actions.TotalWeight()
	if totalWeight <= 0 {
		w.log.Warnw("run loop: action registry has zero total weight, nothing to do")
		return
	}

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return
		default:
		}

		offset := w.rng.IntRange(0, totalWeight-1) + 1 // offsets are 1-based: [1, totalWeight]
		factory, err := w.actions.LookupByWeightOffset(offset)
		if err != nil {
			w.log.Errorw("run loop: weight offset resolution failed", "error", err)
			continue
		}

		act := factory.Build(w.actionCfg)
		if err := act.Execute(ctx, w.reg, w.rng, w.sql); err != nil {
			w.failedActions.Add(1)
			w.log.Errorw("action failed", "action", factory.Name, "error", err)
			continue
		}
		w.successfulActions.Add(1)
	}

	w.log.Infow("run loop finished",
		"successful", w.successfulActions.Load(),
		"failed", w.failedActions.Load(),
	)
}
