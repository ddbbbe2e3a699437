// Package logsink builds the per-entity zap loggers the harness uses: one
// file per worker, per SQL connection, and per supervised external process,
// matching spec.md §6's "worker-<name>.log, sql-conn-<name>.log,
// pg-<name>.log" naming. Grounded on the teacher's zap setup in
// src/app/start.go, generalized from a single process-wide logger to many
// named sinks, and on its afero.Fs use in src/storage/systemcatalog for
// testable file I/O.
package logsink

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Dir is where sink files are written.
type Dir struct {
	fs   afero.Fs
	path string
}

// NewDir returns a Dir rooted at path, creating it if necessary.
func NewDir(fs afero.Fs, path string) (*Dir, error) {
	if err := fs.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("logsink: create dir %s: %w", path, err)
	}
	return &Dir{fs: fs, path: path}, nil
}

// Worker returns a logger writing to worker-<name>.log, tee'd with base so
// callers keep console/aggregate output alongside the per-worker file.
func (d *Dir) Worker(base *zap.SugaredLogger, name string) (*zap.SugaredLogger, error) {
	return d.named(base, name, "worker-%s.log")
}

// SqlConn returns a logger writing to sql-conn-<name>.log.
func (d *Dir) SqlConn(base *zap.SugaredLogger, name string) (*zap.SugaredLogger, error) {
	return d.named(base, name, "sql-conn-%s.log")
}

// Process returns a logger writing to pg-<name>.log, for a supervised
// external server process.
func (d *Dir) Process(base *zap.SugaredLogger, name string) (*zap.SugaredLogger, error) {
	return d.named(base, name, "pg-%s.log")
}

func (d *Dir) named(base *zap.SugaredLogger, name, pattern string) (*zap.SugaredLogger, error) {
	filename := filepath.Join(d.path, fmt.Sprintf(pattern, name))

	f, err := d.fs.OpenFile(filename, flagsAppendCreate, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logsink: open %s: %w", filename, err)
	}

	fileCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(f),
		zapcore.DebugLevel,
	)

	var core zapcore.Core
	if base != nil {
		core = zapcore.NewTee(base.Desugar().Core(), fileCore)
	} else {
		core = fileCore
	}

	return zap.New(core).Named(name).Sugar(), nil
}
