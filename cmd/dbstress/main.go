// Command dbstress is the standalone runner: it loads configuration,
// builds the harness via src/app, runs the workload for a fixed
// duration, and exits with a taxonomy of codes a wrapping shell script
// or CI job can branch on.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pstressdb/dbstress/src/app"
	"github.com/pstressdb/dbstress/src/cliopts"
)

// Exit codes. 0 is the only success code; everything else lets a
// wrapping script distinguish "setup never got going" from "the
// workload itself errored partway through".
const (
	exitOK           = 0
	exitSetupFailure = 1
	exitScriptLoad   = 2
	exitScriptMain   = 3
)

func main() {
	os.Exit(run())
}

func run() int {
	var envFile string

	cfg, err := cliopts.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, "dbstress: load config:", err)
		return exitSetupFailure
	}

	runID := uuid.NewString()

	root := &cobra.Command{
		Use:   "dbstress",
		Short: "multi-threaded SQL stress harness",
		RunE: func(cmd *cobra.Command, args []string) error {
			if envFile != "" {
				var loadErr error
				cfg, loadErr = cliopts.Load(envFile)
				if loadErr != nil {
					return loadErr
				}
				// Re-apply the command line so explicit flags still win
				// over values from the .env file.
				return cmd.Flags().Parse(os.Args[1:])
			}
			return nil
		},
	}
	cliopts.BindFlags(root, &cfg)
	root.Flags().StringVar(&envFile, "env-file", "", "optional .env file to load before flag parsing")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "dbstress: parse flags:", err)
		return exitSetupFailure
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ep := &app.Entrypoint{Cfg: cfg}
	if err := ep.Init(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "dbstress: init:", err)
		return exitSetupFailure
	}
	defer func() {
		if err := ep.Close(); err != nil {
			fmt.Fprintln(os.Stderr, "dbstress: close:", err)
		}
	}()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return ep.Run(groupCtx)
	})

	if err := group.Wait(); err != nil {
		fmt.Fprintln(os.Stderr, "dbstress: run", runID, "failed:", err)
		return exitScriptMain
	}

	return exitOK
}
