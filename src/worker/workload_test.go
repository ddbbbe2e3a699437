package worker_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pstressdb/dbstress/src/action"
	"github.com/pstressdb/dbstress/src/prand"
	"github.com/pstressdb/dbstress/src/registry"
	"github.com/pstressdb/dbstress/src/sqlenv"
	"github.com/pstressdb/dbstress/src/worker"
)

func newTestWorker(t *testing.T, name string) (*worker.Worker, *sqlenv.MockEnvelope) {
	t.Helper()
	reg := registry.New(10)
	sql := new(sqlenv.MockEnvelope)
	sql.On("ExecuteQuery", mock.Anything, mock.AnythingOfType("string")).Return(sqlenv.Success(0))
	sql.On("Reconnect", mock.Anything).Return(nil)
	sql.On("Close").Return(nil)

	actions := action.NewRegistry()
	require.NoError(t, actions.Insert(action.Factory{
		Name:   "create_normal_table",
		Weight: 1,
		Build: func(cfg action.Config) action.Action {
			return action.NewCreateTable(cfg.Ddl, registry.TableNormal)
		},
	}))

	w := worker.New(name, testLogger(t), sql, prand.NewSeeded(1), reg, actions, action.DefaultConfig())
	return w, sql
}

func TestWorkload_RunAndWaitCompletion(t *testing.T) {
	w1, _ := newTestWorker(t, "w1")
	w2, _ := newTestWorker(t, "w2")

	wl, err := worker.NewWorkload(testLogger(t), []*worker.Worker{w1, w2})
	require.NoError(t, err)
	defer wl.Close(context.Background())

	require.NoError(t, wl.Run(context.Background(), 20*time.Millisecond))
	wl.WaitCompletion()

	require.Equal(t, 2, wl.WorkerCount())
	require.Same(t, w1, wl.Worker(1))
	require.Same(t, w2, wl.Worker(2))
	require.Nil(t, wl.Worker(0))
	require.Nil(t, wl.Worker(3))
}

func TestWorkload_ReconnectWorkers_CallsEveryEnvelope(t *testing.T) {
	w1, sql1 := newTestWorker(t, "w1")
	w2, sql2 := newTestWorker(t, "w2")

	wl, err := worker.NewWorkload(testLogger(t), []*worker.Worker{w1, w2})
	require.NoError(t, err)
	defer wl.Close(context.Background())

	require.NoError(t, wl.ReconnectWorkers(context.Background()))
	sql1.AssertCalled(t, "Reconnect", mock.Anything)
	sql2.AssertCalled(t, "Reconnect", mock.Anything)
}
