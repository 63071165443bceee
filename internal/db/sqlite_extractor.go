package db

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rocklab/ddlexport/internal/errs"
	"github.com/rocklab/ddlexport/internal/logger"
	"github.com/rocklab/ddlexport/internal/schema"
)

// SQLiteExtractor reads table structure through SQLite PRAGMAs and
// sqlite_master.
type SQLiteExtractor struct {
	client *SQLiteClient
	log    *logger.Logger
}

// NewSQLiteExtractor creates a schema extractor for a SQLite database.
func NewSQLiteExtractor(client *SQLiteClient, log *logger.Logger) *SQLiteExtractor {
	if log == nil {
		log = logger.Nop()
	}
	return &SQLiteExtractor{client: client, log: log}
}

// Snapshot captures the structural definition of every table in the
// database, or of the requested tables only.
func (e *SQLiteExtractor) Snapshot(ctx context.Context, database string, tables []string) (*schema.Snapshot, error) {
	tableNames, err := e.listTables(ctx, tables)
	if err != nil {
		return nil, err
	}

	snap := &schema.Snapshot{
		Database:   database,
		CapturedAt: time.Now(),
	}

	for _, tableName := range tableNames {
		e.log.Infof("Exporting table: %s", tableName)

		table, err := e.describeTable(ctx, tableName)
		if err != nil {
			return nil, err
		}
		if table == nil {
			snap.Tables = append(snap.Tables, schema.Table{Name: tableName})
			continue
		}
		snap.Tables = append(snap.Tables, *table)
	}

	return snap, nil
}

func (e *SQLiteExtractor) listTables(ctx context.Context, requested []string) ([]string, error) {
	if len(requested) > 0 {
		sorted := make([]string, len(requested))
		copy(sorted, requested)
		sort.Strings(sorted)
		return sorted, nil
	}

	query := `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`

	rows, err := e.client.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, errs.Wrap(errs.KindQuery, "list tables", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, errs.Wrap(errs.KindQuery, "scan table name", err)
		}
		tables = append(tables, tableName)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.KindQuery, "list tables", err)
	}

	return tables, nil
}

func (e *SQLiteExtractor) describeTable(ctx context.Context, tableName string) (*schema.Table, error) {
	columns, pk, err := e.extractColumns(ctx, tableName)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, nil
	}

	table := &schema.Table{Name: tableName, Columns: columns, PrimaryKey: pk}

	if table.ForeignKeys, err = e.extractForeignKeys(ctx, tableName); err != nil {
		return nil, err
	}
	if table.IndexDefs, err = e.extractIndexDefs(ctx, tableName); err != nil {
		return nil, err
	}

	return table, nil
}

// extractColumns reads columns and the primary key from PRAGMA table_info.
// The pk column of the pragma carries the 1-based position of the column in
// the primary key, which gives the key-ordinal order directly.
func (e *SQLiteExtractor) extractColumns(ctx context.Context, tableName string) ([]schema.Column, []string, error) {
	query := fmt.Sprintf("PRAGMA table_info(%s)", tableName)

	rows, err := e.client.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, nil, errs.Wrap(errs.KindQuery, "read columns for "+tableName, err)
	}
	defer rows.Close()

	type pkEntry struct {
		order int
		name  string
	}

	var columns []schema.Column
	var pkEntries []pkEntry

	for rows.Next() {
		var cid, notNull, pkOrder int
		var name, colType string
		var defaultValue sql.NullString

		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultValue, &pkOrder); err != nil {
			return nil, nil, errs.Wrap(errs.KindQuery, "scan column", err)
		}

		col := schema.Column{
			Name:     name,
			DataType: colType,
			Kind:     schema.KindOf(strings.ToLower(colType)),
			Nullable: notNull == 0,
			Position: cid + 1,
		}
		if defaultValue.Valid {
			col.Default = &defaultValue.String
		}

		if pkOrder > 0 {
			pkEntries = append(pkEntries, pkEntry{order: pkOrder, name: name})
		}

		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, errs.Wrap(errs.KindQuery, "read columns for "+tableName, err)
	}

	sort.Slice(pkEntries, func(i, j int) bool { return pkEntries[i].order < pkEntries[j].order })
	pk := make([]string, 0, len(pkEntries))
	for _, entry := range pkEntries {
		pk = append(pk, entry.name)
	}

	return columns, pk, nil
}

// extractForeignKeys reads PRAGMA foreign_key_list. SQLite does not name
// foreign key constraints, so a name is synthesized from the table and
// source column; the result is sorted by that name for stable output.
func (e *SQLiteExtractor) extractForeignKeys(ctx context.Context, tableName string) ([]schema.ForeignKey, error) {
	query := fmt.Sprintf("PRAGMA foreign_key_list(%s)", tableName)

	rows, err := e.client.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, errs.Wrap(errs.KindQuery, "read foreign keys for "+tableName, err)
	}
	defer rows.Close()

	var fks []schema.ForeignKey
	for rows.Next() {
		var id, seq int
		var targetTable, fromCol, onUpdate, onDelete, match string
		var toCol sql.NullString

		if err := rows.Scan(&id, &seq, &targetTable, &fromCol, &toCol, &onUpdate, &onDelete, &match); err != nil {
			return nil, errs.Wrap(errs.KindQuery, "scan foreign key", err)
		}

		fk := schema.ForeignKey{
			ConstraintName:  fmt.Sprintf("fk_%s_%s", tableName, fromCol),
			Column:          fromCol,
			ReferencedTable: targetTable,
		}
		if toCol.Valid {
			fk.ReferencedColumn = toCol.String
		}
		fks = append(fks, fk)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.KindQuery, "read foreign keys for "+tableName, err)
	}

	sort.Slice(fks, func(i, j int) bool { return fks[i].ConstraintName < fks[j].ConstraintName })
	return fks, nil
}

// extractIndexDefs passes through the CREATE INDEX statements stored in
// sqlite_master. Auto-generated indexes carry a NULL sql column and are
// skipped, which also excludes the implicit primary key index.
func (e *SQLiteExtractor) extractIndexDefs(ctx context.Context, tableName string) ([]string, error) {
	query := `
		SELECT sql
		FROM sqlite_master
		WHERE type = 'index' AND tbl_name = ? AND sql IS NOT NULL
		ORDER BY name
	`

	rows, err := e.client.DB().QueryContext(ctx, query, tableName)
	if err != nil {
		return nil, errs.Wrap(errs.KindQuery, "read indexes for "+tableName, err)
	}
	defer rows.Close()

	var defs []string
	for rows.Next() {
		var def string
		if err := rows.Scan(&def); err != nil {
			return nil, errs.Wrap(errs.KindQuery, "scan index definition", err)
		}
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.KindQuery, "read indexes for "+tableName, err)
	}

	return defs, nil
}
