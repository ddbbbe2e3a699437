package procsup_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pstressdb/dbstress/src/procsup"
)

func testLogger(t *testing.T) *zap.SugaredLogger {
	t.Helper()
	log, err := zap.NewDevelopment()
	require.NoError(t, err)
	return log.Sugar()
}

func TestExec_StartAndGracefulStop(t *testing.T) {
	sup := procsup.NewExec("sleeper", "sleep", []string{"5"}, nil, testLogger(t))

	ctx := context.Background()
	require.NoError(t, sup.Start(ctx))
	require.NoError(t, sup.WaitReady(ctx))

	stopCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	require.NoError(t, sup.Stop(stopCtx))
}

func TestExec_WaitReady_TimesOutWhenNeverReady(t *testing.T) {
	sup := procsup.NewExec("sleeper", "sleep", []string{"5"}, func(ctx context.Context) bool { return false }, testLogger(t))

	require.NoError(t, sup.Start(context.Background()))
	defer sup.Stop(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.Error(t, sup.WaitReady(ctx))
}
