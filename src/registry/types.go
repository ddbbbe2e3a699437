package registry

// ColumnType enumerates the column types pstress knows how to generate
// DDL and values for.
type ColumnType int

const (
	ColumnInt ColumnType = iota
	ColumnChar
	ColumnVarchar
	ColumnReal
	ColumnBool
	ColumnBytea
	ColumnText
)

func (t ColumnType) String() string {
	switch t {
	case ColumnInt:
		return "INT"
	case ColumnChar:
		return "CHAR"
	case ColumnVarchar:
		return "VARCHAR"
	case ColumnReal:
		return "REAL"
	case ColumnBool:
		return "BOOL"
	case ColumnBytea:
		return "BYTEA"
	case ColumnText:
		return "TEXT"
	default:
		return "UNKNOWN"
	}
}

// AllColumnTypes lists every ColumnType, for random selection.
var AllColumnTypes = []ColumnType{
	ColumnInt, ColumnChar, ColumnVarchar, ColumnReal, ColumnBool, ColumnBytea, ColumnText,
}

// GeneratedKind distinguishes a normal column from a generated one.
type GeneratedKind int

const (
	GeneratedNone GeneratedKind = iota
	GeneratedStored
	GeneratedVirtual
)

// Column is a value object: always owned by the enclosing Table snapshot,
// never mutated after the snapshot that holds it is published.
type Column struct {
	Name          string
	Type          ColumnType
	Length        int // meaningful for CHAR/VARCHAR, zero otherwise
	Default       string
	Generated     GeneratedKind
	Nullable      bool
	PrimaryKey    bool
	AutoIncrement bool
	Compressed    bool
}

func (c Column) copy() Column {
	return c
}

// IndexOrdering is the sort direction of an index field, or a marker that
// the field is a functional expression rather than a plain column
// reference.
type IndexOrdering int

const (
	OrderDefault IndexOrdering = iota
	OrderAsc
	OrderDesc
)

// IndexField is a single column reference (plus ordering) or functional
// expression within an Index.
type IndexField struct {
	Expression string // column name, or a functional expression
	Ordering   IndexOrdering
}

// Index is a named, ordered list of field descriptors.
type Index struct {
	Name   string
	Fields []IndexField
}

func (ix Index) copy() Index {
	cp := Index{Name: ix.Name, Fields: make([]IndexField, len(ix.Fields))}
	copy(cp.Fields, ix.Fields)
	return cp
}

// TableType distinguishes ordinary tables from partitioned or temporary
// ones. Only the label is tracked; partitioning details are out of scope.
type TableType int

const (
	TableNormal TableType = iota
	TablePartitioned
	TableTemporary
)

// Table is an immutable snapshot once published into a registry slot.
// Every mutation produces a new Table via Copy and replaces the slot's
// published pointer; nothing here is ever mutated in place after
// publication.
type Table struct {
	Name          string
	AccessMethod  string // engine / access method label
	RowFormat     string
	Tablespace    string
	KeyBlockSize  int
	Compression   bool
	Encryption    bool
	Columns       []Column
	Indexes       []Index
	Type          TableType
}

// Copy returns a deep copy of the Table, safe for a caller to mutate
// independently of the published snapshot it was copied from.
func (t *Table) Copy() *Table {
	cp := *t
	cp.Columns = make([]Column, len(t.Columns))
	for i, c := range t.Columns {
		cp.Columns[i] = c.copy()
	}
	cp.Indexes = make([]Index, len(t.Indexes))
	for i, ix := range t.Indexes {
		cp.Indexes[i] = ix.copy()
	}
	return &cp
}

// PrimaryKeyColumn returns the name of column 0, which every table
// created by CreateTable forces to be a serial primary key. Actions that
// target rows by primary key (DeleteData, UpdateOneRow) assume this.
func (t *Table) PrimaryKeyColumn() string {
	if len(t.Columns) == 0 {
		return ""
	}
	return t.Columns[0].Name
}
