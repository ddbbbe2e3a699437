package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pstressdb/dbstress/src/registry"
)

func TestTableCopy_ProducesIndependentColumnAndIndexSlices(t *testing.T) {
	original := &registry.Table{
		Name:    "t",
		Columns: []registry.Column{{Name: "id", Type: registry.ColumnInt}},
		Indexes: []registry.Index{{Name: "idx_id", Fields: []registry.IndexField{{Expression: "id"}}}},
	}

	cp := original.Copy()
	cp.Columns[0].Name = "changed"
	cp.Indexes[0].Fields[0].Expression = "changed"
	cp.Columns = append(cp.Columns, registry.Column{Name: "extra"})

	assert.Equal(t, "id", original.Columns[0].Name)
	assert.Equal(t, "id", original.Indexes[0].Fields[0].Expression)
	assert.Len(t, original.Columns, 1)
	assert.Len(t, cp.Columns, 2)
}

func TestTablePrimaryKeyColumn_ReturnsFirstColumnName(t *testing.T) {
	table := &registry.Table{Columns: []registry.Column{{Name: "pk"}, {Name: "other"}}}
	assert.Equal(t, "pk", table.PrimaryKeyColumn())
}

func TestTablePrimaryKeyColumn_EmptyWhenNoColumns(t *testing.T) {
	table := &registry.Table{}
	assert.Equal(t, "", table.PrimaryKeyColumn())
}

func TestColumnType_String(t *testing.T) {
	cases := map[registry.ColumnType]string{
		registry.ColumnInt:     "INT",
		registry.ColumnChar:    "CHAR",
		registry.ColumnVarchar: "VARCHAR",
		registry.ColumnReal:    "REAL",
		registry.ColumnBool:    "BOOL",
		registry.ColumnBytea:   "BYTEA",
		registry.ColumnText:    "TEXT",
	}
	for ct, want := range cases {
		assert.Equal(t, want, ct.String())
	}
}
