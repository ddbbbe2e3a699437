package action

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pstressdb/dbstress/src/errs"
	"github.com/pstressdb/dbstress/src/prand"
	"github.com/pstressdb/dbstress/src/registry"
	"github.com/pstressdb/dbstress/src/sqlenv"
)

func generateValue(col registry.Column, rng *prand.Rand) string {
	switch col.Type {
	case registry.ColumnInt:
		return strconv.Itoa(rng.IntRange(1, 1_000_000))
	case registry.ColumnReal:
		return strconv.FormatFloat(rng.Float64Range(1.0, 1_000_000.0), 'f', -1, 64)
	case registry.ColumnVarchar, registry.ColumnChar:
		return "'" + rng.String(0, col.Length) + "'"
	case registry.ColumnBytea, registry.ColumnText:
		return "'" + rng.String(50, 1000) + "'"
	case registry.ColumnBool:
		if rng.Bool() {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// pickTable selects a random published table, looping on the benign
// "slot briefly empty" race per spec.md §4.1 read-access note.
func pickTable(reg *registry.Manager, rng *prand.Rand) *registry.Table {
	size := reg.Size()
	if size == 0 {
		return nil
	}
	for {
		idx := rng.UintRange(0, size-1)
		if t := reg.At(idx); t != nil {
			return t
		}
	}
}

// InsertData inserts Rows tuples of generated values into a table,
// either fixed at construction or picked at random each call. Grounded
// on libpstress/src/action/dml.cpp's InsertData::execute.
type InsertData struct {
	cfg   DmlConfig
	table *registry.Table // nil means pick at random on every Execute
	rows  int
}

// NewInsertData returns an InsertData action targeting a random table.
func NewInsertData(cfg DmlConfig, rows int) *InsertData {
	return &InsertData{cfg: cfg, rows: rows}
}

// NewInsertDataForTable returns an InsertData action fixed to table.
func NewInsertDataForTable(cfg DmlConfig, table *registry.Table, rows int) *InsertData {
	return &InsertData{cfg: cfg, table: table, rows: rows}
}

func (a *InsertData) Execute(ctx context.Context, reg *registry.Manager, rng *prand.Rand, sql sqlenv.Envelope) error {
	table := a.table
	if table == nil {
		table = pickTable(reg, rng)
		if table == nil {
			return nil
		}
	}

	var cols []string
	for _, c := range table.Columns {
		if !c.AutoIncrement {
			cols = append(cols, c.Name)
		}
	}

	var tuples []string
	for i := 0; i < a.rows; i++ {
		var values []string
		for _, c := range table.Columns {
			if !c.AutoIncrement {
				values = append(values, generateValue(c, rng))
			}
		}
		tuples = append(tuples, "("+strings.Join(values, ", ")+")")
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s;", table.Name, strings.Join(cols, ", "), strings.Join(tuples, ", "))
	result := sql.ExecuteQuery(ctx, query)
	if !result.Succeeded() {
		return errs.NewActionError("insert_some_data", sqlFailure(result))
	}
	return nil
}

// DeleteData removes a random batch of rows from a random table by
// primary key, assuming column 0 is a single-column primary key.
// Grounded on libpstress/src/action/dml.cpp's DeleteData::execute.
type DeleteData struct {
	cfg DmlConfig
}

func NewDeleteData(cfg DmlConfig) *DeleteData {
	return &DeleteData{cfg: cfg}
}

func (a *DeleteData) Execute(ctx context.Context, reg *registry.Manager, rng *prand.Rand, sql sqlenv.Envelope) error {
	table := pickTable(reg, rng)
	if table == nil {
		return nil
	}

	pk := table.PrimaryKeyColumn()
	rows := rng.IntRange(a.cfg.DeleteMin, a.cfg.DeleteMax)

	query := fmt.Sprintf(
		"DELETE FROM %s WHERE %s IN (SELECT %s FROM %s ORDER BY random() LIMIT %d);",
		table.Name, pk, pk, table.Name, rows,
	)
	result := sql.ExecuteQuery(ctx, query)
	if !result.Succeeded() {
		return errs.NewActionError("delete_data", sqlFailure(result))
	}
	return nil
}

// UpdateOneRow updates every non-auto-increment column of one random row
// in a random table. Grounded on libpstress/src/action/dml.cpp's
// UpdateOneRow::execute.
type UpdateOneRow struct {
	cfg DmlConfig
}

func NewUpdateOneRow(cfg DmlConfig) *UpdateOneRow {
	return &UpdateOneRow{cfg: cfg}
}

func (a *UpdateOneRow) Execute(ctx context.Context, reg *registry.Manager, rng *prand.Rand, sql sqlenv.Envelope) error {
	table := pickTable(reg, rng)
	if table == nil {
		return nil
	}

	pk := table.PrimaryKeyColumn()

	var assignments []string
	for _, c := range table.Columns {
		if !c.AutoIncrement {
			assignments = append(assignments, fmt.Sprintf("%s = %s", c.Name, generateValue(c, rng)))
		}
	}

	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE %s IN (SELECT %s FROM %s ORDER BY random() LIMIT 1);",
		table.Name, strings.Join(assignments, ", "), pk, pk, table.Name,
	)
	result := sql.ExecuteQuery(ctx, query)
	if !result.Succeeded() {
		return errs.NewActionError("update_one_row", sqlFailure(result))
	}
	return nil
}
