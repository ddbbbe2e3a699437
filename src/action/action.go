// Package action implements the stateless units of work a worker
// executes against the metadata registry and a SQL envelope — the DDL,
// DML, and custom-SQL action kinds of spec.md §4.3 — plus the weighted
// action Registry of §4.2. Grounded on libpstress/src/action/*.cpp for
// exact semantics and on the teacher's query/ddl.go, query/dml.go naming
// for the Go-side package split.
package action

import (
	"context"

	"github.com/pstressdb/dbstress/src/prand"
	"github.com/pstressdb/dbstress/src/registry"
	"github.com/pstressdb/dbstress/src/sqlenv"
)

// Action is a stateless unit of work. Implementations never retain state
// between calls to Execute; all per-run state lives in the supplied
// registry, rng, and sql arguments.
type Action interface {
	Execute(ctx context.Context, reg *registry.Manager, rng *prand.Rand, sql sqlenv.Envelope) error
}

// DdlConfig bounds the DDL actions: table count and shape limits.
type DdlConfig struct {
	MaxTableCount   int
	MinTableCount   int
	MaxColumnCount  int
	MaxAlterClauses int
}

// DmlConfig bounds the DML actions: row-count ranges for batch
// delete.
type DmlConfig struct {
	DeleteMin int
	DeleteMax int
}

// CustomConfig is reserved for future per-statement tuning; empty today,
// kept as a distinct type so Config's shape matches the source's
// AllConfig grouping.
type CustomConfig struct{}

// Config bundles every action kind's configuration, passed to every
// Factory.Build call. Mirrors action::AllConfig.
type Config struct {
	Ddl    DdlConfig
	Dml    DmlConfig
	Custom CustomConfig
}

// DefaultDdlConfig matches the original runner's defaults.
func DefaultDdlConfig() DdlConfig {
	return DdlConfig{
		MaxTableCount:   50,
		MinTableCount:   1,
		MaxColumnCount:  10,
		MaxAlterClauses: 3,
	}
}

// DefaultDmlConfig matches the original runner's defaults.
func DefaultDmlConfig() DmlConfig {
	return DmlConfig{DeleteMin: 1, DeleteMax: 10}
}

// DefaultConfig bundles the package defaults above.
func DefaultConfig() Config {
	return Config{Ddl: DefaultDdlConfig(), Dml: DefaultDmlConfig()}
}
