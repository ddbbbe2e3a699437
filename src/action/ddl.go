package action

import (
	"context"
	"fmt"
	"strings"

	"github.com/pstressdb/dbstress/src/errs"
	"github.com/pstressdb/dbstress/src/prand"
	"github.com/pstressdb/dbstress/src/registry"
	"github.com/pstressdb/dbstress/src/sqlenv"
)

func randomColumnType(rng *prand.Rand) registry.ColumnType {
	return registry.AllColumnTypes[rng.IntRange(0, len(registry.AllColumnTypes)-1)]
}

func randomColumnLength(rng *prand.Rand, t registry.ColumnType) int {
	switch t {
	case registry.ColumnChar, registry.ColumnVarchar:
		return rng.IntRange(1, 100)
	default:
		return 0
	}
}

func randomColumn(rng *prand.Rand, forceSerial bool) registry.Column {
	col := registry.Column{Name: fmt.Sprintf("col%d", rng.IntRange(1, 1_000_000_000))}

	if forceSerial {
		col.Type = registry.ColumnInt
		col.PrimaryKey = true
		col.AutoIncrement = true
		return col
	}

	col.Type = randomColumnType(rng)
	col.Length = randomColumnLength(rng, col.Type)
	return col
}

func columnDefinition(col registry.Column) string {
	if col.AutoIncrement {
		return fmt.Sprintf("%s SERIAL", col.Name)
	}

	def := fmt.Sprintf("%s %s", col.Name, col.Type.String())
	if col.Length > 0 {
		def += fmt.Sprintf("(%d)", col.Length)
	}
	return def
}

// CreateTable is the Action building a new table with a forced-serial
// primary key as column 0, grounded on libpstress/src/action/ddl.cpp's
// CreateTable::execute.
type CreateTable struct {
	cfg       DdlConfig
	tableType registry.TableType
}

// NewCreateTable returns a CreateTable action that will build tables of
// the given type.
func NewCreateTable(cfg DdlConfig, tableType registry.TableType) *CreateTable {
	return &CreateTable{cfg: cfg, tableType: tableType}
}

func (a *CreateTable) Execute(ctx context.Context, reg *registry.Manager, rng *prand.Rand, sql sqlenv.Envelope) error {
	if reg.Size() >= uint64(a.cfg.MaxTableCount) {
		return nil
	}

	res := reg.CreateTable()
	if !res.Open() {
		return nil
	}

	table := res.Table()
	table.Name = fmt.Sprintf("foo%d", rng.IntRange(1, 1_000_000))
	table.Type = a.tableType

	columnCount := rng.IntRange(2, a.cfg.MaxColumnCount)
	for i := 0; i < columnCount; i++ {
		table.Columns = append(table.Columns, randomColumn(rng, i == 0))
	}

	var defs, pkColumns []string
	for _, col := range table.Columns {
		if col.PrimaryKey {
			pkColumns = append(pkColumns, col.Name)
		}
		defs = append(defs, columnDefinition(col))
	}
	if len(pkColumns) > 0 {
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pkColumns, ", ")))
	}

	query := fmt.Sprintf("CREATE TABLE %s (%s);", table.Name, strings.Join(defs, ",\n"))
	result := sql.ExecuteQuery(ctx, query)
	if !result.Succeeded() {
		res.Cancel()
		return errs.NewActionError("create_table", sqlFailure(result))
	}

	return wrapComplete("create_table", res.Complete())
}

// DropTable picks a random table and drops it, grounded on
// libpstress/src/action/ddl.cpp's DropTable::execute.
type DropTable struct {
	cfg DdlConfig
}

func NewDropTable(cfg DdlConfig) *DropTable {
	return &DropTable{cfg: cfg}
}

func (a *DropTable) Execute(ctx context.Context, reg *registry.Manager, rng *prand.Rand, sql sqlenv.Envelope) error {
	size := reg.Size()
	if size <= uint64(a.cfg.MinTableCount) {
		return nil
	}

	idx := rng.UintRange(0, size-1)

	res := reg.DropTable(idx)
	if !res.Open() {
		return nil
	}

	query := fmt.Sprintf("DROP TABLE %s;", res.Table().Name)
	result := sql.ExecuteQuery(ctx, query)
	if !result.Succeeded() {
		res.Cancel()
		return errs.NewActionError("drop_table", sqlFailure(result))
	}

	return wrapComplete("drop_table", res.Complete())
}

// AlterSubcommand is one clause kind an AlterTable action may emit.
type AlterSubcommand int

const (
	AddColumn AlterSubcommand = iota
	DropColumn
	ChangeColumn
	ChangeAccessMethod
)

// AllAlterSubcommands is the full enabled set used by the default action
// registry (BitFlags<AlterSubcommand>::AllSet() in the source).
var AllAlterSubcommands = []AlterSubcommand{AddColumn, DropColumn, ChangeColumn, ChangeAccessMethod}

// AlterTable mutates a random table's shape with 1..MaxAlterClauses
// subcommands, grounded on libpstress/src/action/ddl.cpp's
// AlterTable::execute. The subcommand switch intentionally falls through
// from AddColumn into DropColumn, reproducing a missing `break` in the
// source; ChangeColumn/ChangeAccessMethod are accordingly unimplemented
// no-ops, exactly as upstream.
type AlterTable struct {
	cfg      DdlConfig
	commands []AlterSubcommand
}

func NewAlterTable(cfg DdlConfig, commands []AlterSubcommand) *AlterTable {
	return &AlterTable{cfg: cfg, commands: commands}
}

func (a *AlterTable) Execute(ctx context.Context, reg *registry.Manager, rng *prand.Rand, sql sqlenv.Envelope) error {
	size := reg.Size()
	if size == 0 {
		return nil
	}
	idx := rng.UintRange(0, size-1)

	res := reg.AlterTable(idx)
	if !res.Open() {
		return nil
	}

	table := res.Table()
	howMany := rng.IntRange(1, a.cfg.MaxAlterClauses)

	var clauses []string
	var newColumns []registry.Column

	for i := 0; i < howMany; i++ {
		cmd := a.commands[rng.IntRange(0, len(a.commands)-1)]

		switch cmd {
		case AddColumn:
			col := randomColumn(rng, false)
			clauses = append(clauses, fmt.Sprintf("ADD COLUMN %s", columnDefinition(col)))
			newColumns = append(newColumns, col)
			fallthrough
		case DropColumn:
			if len(table.Columns) < 3 {
				continue
			}
			columnIdx := rng.IntRange(1, len(table.Columns)-1)
			clauses = append(clauses, fmt.Sprintf("DROP COLUMN %s", table.Columns[columnIdx].Name))
			table.Columns = append(table.Columns[:columnIdx], table.Columns[columnIdx+1:]...)
		case ChangeColumn, ChangeAccessMethod:
			// unimplemented in the source this is ported from; no-op.
		}
	}

	table.Columns = append(table.Columns, newColumns...)

	query := fmt.Sprintf("ALTER TABLE %s \n %s;", table.Name, strings.Join(clauses, ",\n"))
	result := sql.ExecuteQuery(ctx, query)
	if !result.Succeeded() {
		res.Cancel()
		return errs.NewActionError("alter_table", sqlFailure(result))
	}

	return wrapComplete("alter_table", res.Complete())
}

func sqlFailure(result sqlenv.QueryResult) error {
	if result.Err == nil {
		return errs.NewSqlError("", "query failed with no classified error", result.Status.String())
	}
	return errs.NewSqlError(result.Err.Code, result.Err.Message, result.Status.String())
}

func wrapComplete(action string, err error) error {
	if err != nil {
		return errs.NewActionError(action, err)
	}
	return nil
}
