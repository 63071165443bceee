package schema

import "time"

// TypeKind is the fixed set of column types the DDL renderer special-cases.
// Anything the catalog reports outside this set is KindOther and renders as
// the upper-cased raw type name.
type TypeKind string

const (
	KindVarchar     TypeKind = "varchar"
	KindChar        TypeKind = "char"
	KindNumeric     TypeKind = "numeric"
	KindInteger     TypeKind = "integer"
	KindBigint      TypeKind = "bigint"
	KindSmallint    TypeKind = "smallint"
	KindBoolean     TypeKind = "boolean"
	KindDate        TypeKind = "date"
	KindTimestamp   TypeKind = "timestamp"
	KindTimestampTZ TypeKind = "timestamptz"
	KindText        TypeKind = "text"
	KindJSON        TypeKind = "json"
	KindJSONB       TypeKind = "jsonb"
	KindOther       TypeKind = "other"
)

// KindOf resolves a catalog data type name to its TypeKind. PostgreSQL
// information_schema names are canonical; the common MySQL spellings map to
// the same kinds so both extractors share one renderer.
func KindOf(dataType string) TypeKind {
	switch dataType {
	case "character varying", "varchar":
		return KindVarchar
	case "character", "char":
		return KindChar
	case "numeric", "decimal":
		return KindNumeric
	case "integer", "int":
		return KindInteger
	case "bigint":
		return KindBigint
	case "smallint":
		return KindSmallint
	case "boolean":
		return KindBoolean
	case "date":
		return KindDate
	case "timestamp without time zone", "datetime":
		return KindTimestamp
	case "timestamp with time zone":
		return KindTimestampTZ
	case "text":
		return KindText
	case "json":
		return KindJSON
	case "jsonb":
		return KindJSONB
	default:
		return KindOther
	}
}

// Column describes a single table column. Immutable once extracted.
type Column struct {
	Name     string
	DataType string // raw catalog type name, e.g. "character varying"
	Kind     TypeKind
	Nullable bool
	Default  *string // verbatim catalog literal, nil if none
	Position int     // ordinal position, 1-based

	// Type parameters, nil when the source type carries none
	CharMaxLength    *int
	NumericPrecision *int
	NumericScale     *int
}

// ForeignKey describes one foreign key constraint on a table.
type ForeignKey struct {
	ConstraintName   string
	Column           string
	ReferencedTable  string
	ReferencedColumn string
}

// Table describes a base table: ordered columns, primary key columns in
// key-ordinal order, foreign keys sorted by constraint name, and the raw
// engine-rendered index definitions (primary key index excluded).
type Table struct {
	Name        string
	Columns     []Column
	PrimaryKey  []string
	ForeignKeys []ForeignKey
	IndexDefs   []string
}

// Snapshot is the full structural definition captured from one database in
// one run. Tables are sorted lexicographically by name. Never mutated after
// construction.
type Snapshot struct {
	Database   string
	CapturedAt time.Time
	Tables     []Table
}
