// Package render turns schema snapshots into a SQL DDL text document.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/rocklab/ddlexport/internal/schema"
)

const bannerWidth = 50

// ColumnDefinition renders a single column clause without indentation or a
// trailing comma, e.g. "created_at TIMESTAMPTZ DEFAULT now()".
//
// The default literal is copied verbatim from the catalog. That is safe only
// because the catalog is trusted input; no escaping is applied.
func ColumnDefinition(col schema.Column) string {
	parts := []string{col.Name, typeToken(col)}

	if !col.Nullable {
		parts = append(parts, "NOT NULL")
	}
	if col.Default != nil {
		parts = append(parts, "DEFAULT "+*col.Default)
	}

	return strings.Join(parts, " ")
}

// typeToken maps a column to its SQL type token, appending length or
// precision/scale when the source type carries them. Unrecognized types
// degrade to the upper-cased raw name with no parameters.
func typeToken(col schema.Column) string {
	switch col.Kind {
	case schema.KindVarchar:
		if col.CharMaxLength != nil {
			return fmt.Sprintf("VARCHAR(%d)", *col.CharMaxLength)
		}
		return "VARCHAR"
	case schema.KindChar:
		if col.CharMaxLength != nil {
			return fmt.Sprintf("CHAR(%d)", *col.CharMaxLength)
		}
		return "CHAR"
	case schema.KindNumeric:
		switch {
		case col.NumericPrecision != nil && col.NumericScale != nil:
			return fmt.Sprintf("NUMERIC(%d,%d)", *col.NumericPrecision, *col.NumericScale)
		case col.NumericPrecision != nil:
			return fmt.Sprintf("NUMERIC(%d)", *col.NumericPrecision)
		default:
			return "NUMERIC"
		}
	case schema.KindInteger:
		return "INTEGER"
	case schema.KindBigint:
		return "BIGINT"
	case schema.KindSmallint:
		return "SMALLINT"
	case schema.KindBoolean:
		return "BOOLEAN"
	case schema.KindDate:
		return "DATE"
	case schema.KindTimestamp:
		return "TIMESTAMP"
	case schema.KindTimestampTZ:
		return "TIMESTAMPTZ"
	case schema.KindText:
		return "TEXT"
	case schema.KindJSON:
		return "JSON"
	case schema.KindJSONB:
		return "JSONB"
	default:
		return strings.ToUpper(col.DataType)
	}
}

// TableDDL renders the complete CREATE TABLE statement for a table. Column
// clauses, the PRIMARY KEY clause, and one CONSTRAINT clause per foreign key
// are comma-joined siblings, in that order. Primary key columns keep their
// key-ordinal order. Returns "" for a table with no columns.
func TableDDL(t schema.Table) string {
	if len(t.Columns) == 0 {
		return ""
	}

	lines := make([]string, 0, len(t.Columns)+1+len(t.ForeignKeys))
	for _, col := range t.Columns {
		lines = append(lines, "    "+ColumnDefinition(col))
	}

	if len(t.PrimaryKey) > 0 {
		lines = append(lines, fmt.Sprintf("    PRIMARY KEY (%s)", strings.Join(t.PrimaryKey, ", ")))
	}

	for _, fk := range t.ForeignKeys {
		lines = append(lines, fmt.Sprintf("    CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s(%s)",
			fk.ConstraintName, fk.Column, fk.ReferencedTable, fk.ReferencedColumn))
	}

	return fmt.Sprintf("CREATE TABLE %s (\n%s\n);", t.Name, strings.Join(lines, ",\n"))
}

// IndexDDL returns the table's raw index definitions, each terminated
// with ";".
func IndexDDL(t schema.Table) []string {
	if len(t.IndexDefs) == 0 {
		return nil
	}

	out := make([]string, 0, len(t.IndexDefs))
	for _, def := range t.IndexDefs {
		def = strings.TrimRight(def, " \t\n")
		if !strings.HasSuffix(def, ";") {
			def += ";"
		}
		out = append(out, def)
	}
	return out
}

// Document writes the full DDL export document for a snapshot: a comment
// header, then per table a banner, the CREATE TABLE statement, and the index
// definitions when any exist.
func Document(w io.Writer, snap *schema.Snapshot) error {
	lines := []string{
		"-- Database DDL Export",
		"-- Database: " + snap.Database,
		"-- Export Date: " + snap.CapturedAt.Format("2006-01-02 15:04:05"),
		fmt.Sprintf("-- Total Tables: %d", len(snap.Tables)),
		"",
	}

	for _, table := range snap.Tables {
		lines = append(lines, "-- Table: "+table.Name)
		lines = append(lines, strings.Repeat("-", bannerWidth))

		if ddl := TableDDL(table); ddl != "" {
			lines = append(lines, ddl)
		}

		if idx := IndexDDL(table); len(idx) > 0 {
			lines = append(lines, "")
			lines = append(lines, "-- Indexes for "+table.Name)
			lines = append(lines, idx...)
		}

		lines = append(lines, "")
	}

	_, err := io.WriteString(w, strings.Join(lines, "\n"))
	return err
}
