// Package app wires the whole harness together for the standalone
// runner: config, logging, the metadata registry, the default action
// registry, the worker pool, and graceful shutdown. Grounded directly on
// the teacher's src/app/start.go APIEntrypoint (Init/Run/Close, zap
// selected by environment, Must-panic on config error, CloseTimeout-
// bounded shutdown).
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pstressdb/dbstress/src/action"
	"github.com/pstressdb/dbstress/src/cliopts"
	"github.com/pstressdb/dbstress/src/logsink"
	"github.com/pstressdb/dbstress/src/pkg/utils"
	"github.com/pstressdb/dbstress/src/prand"
	"github.com/pstressdb/dbstress/src/registry"
	"github.com/pstressdb/dbstress/src/sqlenv"
	"github.com/pstressdb/dbstress/src/worker"

	"github.com/spf13/afero"
)

// CloseTimeout bounds how long Close waits for the workload and every
// worker connection to shut down.
const CloseTimeout = 15 * time.Second

// EnvDev is the RunConfig.Environment value that selects a development
// zap logger instead of a production one.
const EnvDev = "development"

// Entrypoint owns every long-lived resource the standalone runner
// constructs: the registry, the action registry, the workload, and the
// root logger.
type Entrypoint struct {
	Cfg cliopts.RunConfig

	log      *zap.SugaredLogger
	reg      *registry.Manager
	actions  *action.Registry
	workload *worker.Workload
}

// Init validates the configuration in Cfg, builds the logger, and constructs every
// long-lived resource, but does not start the workload.
func (e *Entrypoint) Init(ctx context.Context) error {
	if err := e.Cfg.Validate(); err != nil {
		return fmt.Errorf("app: invalid config: %w", err)
	}

	// Logger construction failure means the process cannot meaningfully
	// continue, matching the teacher's utils.Must use around the same call.
	var zl *zap.Logger
	if e.Cfg.Environment == EnvDev {
		zl = utils.Must(zap.NewDevelopment())
	} else {
		zl = utils.Must(zap.NewProduction())
	}
	e.log = zl.Sugar()

	sinkDir, err := logsink.NewDir(afero.NewOsFs(), e.Cfg.LogDir)
	if err != nil {
		return fmt.Errorf("app: build log sink dir: %w", err)
	}

	e.reg = registry.New(e.Cfg.Capacity)
	e.actions = action.DefaultRegistry(action.DefaultConfig())

	actionCfg := action.DefaultConfig()
	actionCfg.Ddl.MinTableCount = e.Cfg.MinTables
	actionCfg.Ddl.MaxTableCount = e.Cfg.MaxTables

	workers := make([]*worker.Worker, 0, e.Cfg.Workers)
	for i := 0; i < e.Cfg.Workers; i++ {
		name := fmt.Sprintf("w%d", i)

		envLog, err := sinkDir.SqlConn(e.log, name)
		if err != nil {
			return fmt.Errorf("app: build sql log sink for %s: %w", name, err)
		}

		env, err := sqlenv.NewPgxEnvelope(ctx, e.Cfg.DSN, envLog)
		if err != nil {
			return fmt.Errorf("app: connect worker %s: %w", name, err)
		}

		workerLog, err := sinkDir.Worker(e.log, name)
		if err != nil {
			return fmt.Errorf("app: build worker log sink for %s: %w", name, err)
		}

		var rng *prand.Rand
		if e.Cfg.Seed != 0 {
			rng = prand.NewSeeded(e.Cfg.Seed + uint64(i))
		} else {
			rng = prand.New()
		}

		workers = append(workers, worker.New(name, workerLog, env, rng, e.reg, e.actions, actionCfg))
	}

	e.workload, err = worker.NewWorkload(e.log, workers)
	if err != nil {
		return fmt.Errorf("app: build workload: %w", err)
	}

	return nil
}

// Run bootstraps the initial table set, seeds it with data, then runs
// every worker's weighted-action loop for the configured duration and
// waits for them all to finish.
func (e *Entrypoint) Run(ctx context.Context) error {
	bootstrapWorker := e.workload.Worker(1)
	bootstrapWorker.CreateRandomTables(ctx, e.Cfg.MinTables)
	bootstrapWorker.GenerateInitialData(ctx)

	if err := e.workload.Run(ctx, e.Cfg.Duration); err != nil {
		return fmt.Errorf("app: start workload: %w", err)
	}
	e.workload.WaitCompletion()

	for i := 1; i <= e.workload.WorkerCount(); i++ {
		w := e.workload.Worker(i)
		e.log.Infow("worker finished",
			"worker", w.Name(),
			"successful", w.SuccessfulActions(),
			"failed", w.FailedActions(),
		)
	}

	return nil
}

// Close releases every resource Init constructed, bounded by
// CloseTimeout: a worker connection that never acknowledges close cannot
// hang process shutdown past that deadline.
func (e *Entrypoint) Close() (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), CloseTimeout)
	defer cancel()

	if e.workload != nil {
		if closeErr := e.workload.Close(ctx); closeErr != nil {
			err = closeErr
		}
	}

	if e.log != nil {
		if syncErr := e.log.Sync(); syncErr != nil && err == nil {
			err = syncErr
		}
	}

	return err
}
