// Package procsup implements the child-process supervisor spec.md §1
// names as an external collaborator: booting and gracefully tearing down
// a local test-database process. The interface is the named contract;
// Exec is a minimal real os/exec-backed implementation of it, grounded
// on the teacher's src/app/start.go CloseTimeout + context.WithTimeout
// shutdown pattern, generalized from an HTTP server's Shutdown(ctx) to
// spec.md §5's "poll in one-second steps, escalate to forcible
// termination on expiry" rule for an arbitrary external process.
package procsup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

// PollInterval is the graceful-shutdown poll period from spec.md §5.
const PollInterval = time.Second

// ProcessSupervisor boots, health-checks, and tears down a single
// external process.
type ProcessSupervisor interface {
	// Start launches the process. It does not block until the process
	// is ready; call WaitReady for that.
	Start(ctx context.Context) error
	// WaitReady blocks until the process reports itself ready or ctx is
	// cancelled.
	WaitReady(ctx context.Context) error
	// Stop signals the process to exit gracefully, escalating to a
	// forcible kill if it has not exited by the time ctx is done.
	Stop(ctx context.Context) error
}

// ReadyCheck reports whether the supervised process is ready to accept
// connections. Implementations typically dial the process's listening
// port or run a trivial health-check query.
type ReadyCheck func(ctx context.Context) bool

// Exec supervises a process started via os/exec, the only concrete
// implementation this package provides; scripted scenarios needing a
// different boot mechanism (container runtime, remote host) implement
// ProcessSupervisor directly.
type Exec struct {
	name  string
	path  string
	args  []string
	ready ReadyCheck
	log   *zap.SugaredLogger

	cmd *exec.Cmd
}

// NewExec returns an Exec supervisor for the given command. ready may be
// nil, in which case WaitReady returns immediately after Start.
func NewExec(name, path string, args []string, ready ReadyCheck, log *zap.SugaredLogger) *Exec {
	return &Exec{name: name, path: path, args: args, ready: ready, log: log}
}

var _ ProcessSupervisor = (*Exec)(nil)

func (e *Exec) Start(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, e.path, e.args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("procsup: start %s: %w", e.name, err)
	}
	e.cmd = cmd
	e.log.Infow("process started", "name", e.name, "pid", cmd.Process.Pid)
	return nil
}

func (e *Exec) WaitReady(ctx context.Context) error {
	if e.ready == nil {
		return nil
	}

	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	for {
		if e.ready(ctx) {
			e.log.Infow("process ready", "name", e.name)
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("procsup: %s never became ready: %w", e.name, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Stop sends SIGINT (os.Interrupt), polls once a second for exit, and
// escalates to SIGKILL once ctx is done, matching spec.md §5's
// graceful-wait rule. A non-zero or signal-induced exit status after the
// interrupt counts as a graceful stop, not an error.
func (e *Exec) Stop(ctx context.Context) error {
	if e.cmd == nil || e.cmd.Process == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- e.cmd.Wait() }()

	if err := e.cmd.Process.Signal(os.Interrupt); err != nil {
		e.log.Warnw("failed to send interrupt, killing immediately", "name", e.name, "error", err)
		return e.killAndWait(done)
	}

	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	for {
		select {
		case err := <-done:
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				err = nil
			}
			e.log.Infow("process exited gracefully", "name", e.name)
			return err
		case <-ctx.Done():
			e.log.Warnw("graceful shutdown deadline exceeded, killing", "name", e.name)
			return e.killAndWait(done)
		case <-ticker.C:
		}
	}
}

// killAndWait sends SIGKILL and waits for the Wait goroutine already in
// flight to report the exit, rather than calling Wait a second time
// (which os/exec forbids).
func (e *Exec) killAndWait(done <-chan error) error {
	if err := e.cmd.Process.Kill(); err != nil {
		return fmt.Errorf("procsup: kill %s: %w", e.name, err)
	}
	<-done
	return nil
}
