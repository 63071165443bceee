//go:build integration
// +build integration

package integration

import (
	"strings"
	"testing"

	"github.com/rocklab/ddlexport/internal/schema"
)

// verifyTablesExist checks that all expected tables are present in the snapshot
func verifyTablesExist(t *testing.T, snap *schema.Snapshot, expectedTables []string) {
	t.Helper()

	if len(snap.Tables) != len(expectedTables) {
		t.Errorf("Expected %d tables, got %d", len(expectedTables), len(snap.Tables))
	}

	tableMap := make(map[string]bool)
	for _, table := range snap.Tables {
		tableMap[table.Name] = true
	}

	for _, tableName := range expectedTables {
		if !tableMap[tableName] {
			t.Errorf("Expected table %s not found in snapshot", tableName)
		}
	}
}

// verifyColumns checks that expected columns exist in a table
func verifyColumns(t *testing.T, table *schema.Table, expectedColumns []string) {
	t.Helper()

	columnMap := make(map[string]bool)
	for _, col := range table.Columns {
		columnMap[col.Name] = true
	}

	for _, colName := range expectedColumns {
		if !columnMap[colName] {
			t.Errorf("Expected column %s not found in %s table", colName, table.Name)
		}
	}
}

// verifyPrimaryKey checks that a table has the expected primary key
func verifyPrimaryKey(t *testing.T, table *schema.Table, expectedPK []string) {
	t.Helper()

	if len(table.PrimaryKey) != len(expectedPK) {
		t.Errorf("Expected primary key %v, got %v", expectedPK, table.PrimaryKey)
		return
	}

	for i, pk := range expectedPK {
		if table.PrimaryKey[i] != pk {
			t.Errorf("Expected primary key %v, got %v", expectedPK, table.PrimaryKey)
			return
		}
	}
}

// verifyForeignKey checks that a foreign key relationship exists
func verifyForeignKey(t *testing.T, snap *schema.Snapshot, tableName, sourceColumn, targetTable string) {
	t.Helper()

	table := findTable(snap, tableName)
	if table == nil {
		t.Fatalf("Table %s not found", tableName)
		return
	}

	for _, fk := range table.ForeignKeys {
		if fk.ReferencedTable == targetTable && fk.Column == sourceColumn {
			return
		}
	}

	t.Errorf("Expected foreign key from %s.%s to %s not found", tableName, sourceColumn, targetTable)
}

// verifyIndexDef checks that one of the table's index definitions contains
// the given fragment
func verifyIndexDef(t *testing.T, snap *schema.Snapshot, tableName, fragment string) {
	t.Helper()

	table := findTable(snap, tableName)
	if table == nil {
		t.Fatalf("Table %s not found", tableName)
		return
	}

	for _, def := range table.IndexDefs {
		if strings.Contains(def, fragment) {
			return
		}
	}

	t.Errorf("Expected index definition containing %q on %s table not found", fragment, tableName)
}

// findTable is a helper function to find a table by name in the snapshot
func findTable(snap *schema.Snapshot, tableName string) *schema.Table {
	for i := range snap.Tables {
		if snap.Tables[i].Name == tableName {
			return &snap.Tables[i]
		}
	}
	return nil
}
