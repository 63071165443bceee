package db

import (
	"context"
	"sort"
	"time"

	"github.com/rocklab/ddlexport/internal/errs"
	"github.com/rocklab/ddlexport/internal/logger"
	"github.com/rocklab/ddlexport/internal/schema"
)

// PostgresExtractor reads table structure from the PostgreSQL catalogs.
type PostgresExtractor struct {
	client *PostgresClient
	schema string
	log    *logger.Logger
}

// NewPostgresExtractor creates a schema extractor for the given schema name.
func NewPostgresExtractor(client *PostgresClient, schemaName string, log *logger.Logger) *PostgresExtractor {
	if log == nil {
		log = logger.Nop()
	}
	return &PostgresExtractor{
		client: client,
		schema: schemaName,
		log:    log,
	}
}

// Snapshot captures the structural definition of every base table in the
// schema, or of the requested tables only. Tables are processed one at a
// time, fully, in lexicographic name order.
func (e *PostgresExtractor) Snapshot(ctx context.Context, database string, tables []string) (*schema.Snapshot, error) {
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
			// Listed base table with no columns. Should not occur; keep the
			// table in the document so the count stays honest.
			snap.Tables = append(snap.Tables, schema.Table{Name: tableName})
			continue
		}
		snap.Tables = append(snap.Tables, *table)
	}

	return snap, nil
}

// listTables returns the tables to export: the requested ones, or every base
// table in the schema. Views are excluded. Sorted for deterministic output.
func (e *PostgresExtractor) listTables(ctx context.Context, requested []string) ([]string, error) {
	if len(requested) > 0 {
		sorted := make([]string, len(requested))
		copy(sorted, requested)
		sort.Strings(sorted)
		return sorted, nil
	}

	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	rows, err := e.client.Connection().Query(ctx, query, e.schema)
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

// describeTable reads everything needed to render one table: columns, the
// primary key, foreign keys, and index definitions. Returns nil for a table
// with no columns.
func (e *PostgresExtractor) describeTable(ctx context.Context, tableName string) (*schema.Table, error) {
	columns, err := e.extractColumns(ctx, tableName)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, nil
	}

	table := &schema.Table{Name: tableName, Columns: columns}

	if table.PrimaryKey, err = e.extractPrimaryKey(ctx, tableName); err != nil {
		return nil, err
	}
	if table.ForeignKeys, err = e.extractForeignKeys(ctx, tableName); err != nil {
		return nil, err
	}
	if table.IndexDefs, err = e.extractIndexDefs(ctx, tableName); err != nil {
		return nil, err
	}

	return table, nil
}

// extractColumns reads column metadata in ordinal position order.
func (e *PostgresExtractor) extractColumns(ctx context.Context, tableName string) ([]schema.Column, error) {
	query := `
		SELECT
			column_name,
			data_type,
			character_maximum_length,
			numeric_precision,
			numeric_scale,
			is_nullable,
			column_default,
			ordinal_position
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`

	rows, err := e.client.Connection().Query(ctx, query, e.schema, tableName)
	if err != nil {
		return nil, errs.Wrap(errs.KindQuery, "read columns for "+tableName, err)
	}
	defer rows.Close()

	var columns []schema.Column
	for rows.Next() {
		var col schema.Column
		var nullable string

		if err := rows.Scan(
			&col.Name,
			&col.DataType,
			&col.CharMaxLength,
			&col.NumericPrecision,
			&col.NumericScale,
			&nullable,
			&col.Default,
			&col.Position,
		); err != nil {
			return nil, errs.Wrap(errs.KindQuery, "scan column", err)
		}

		col.Nullable = nullable == "YES"
		col.Kind = schema.KindOf(col.DataType)
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.KindQuery, "read columns for "+tableName, err)
	}

	return columns, nil
}

// extractPrimaryKey returns primary key columns in key ordinal order.
func (e *PostgresExtractor) extractPrimaryKey(ctx context.Context, tableName string) ([]string, error) {
	query := `
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		WHERE tc.constraint_type = 'PRIMARY KEY'
			AND tc.table_schema = $1
			AND tc.table_name = $2
		ORDER BY kcu.ordinal_position
	`

	rows, err := e.client.Connection().Query(ctx, query, e.schema, tableName)
	if err != nil {
		return nil, errs.Wrap(errs.KindQuery, "read primary key for "+tableName, err)
	}
	defer rows.Close()

	var pk []string
	for rows.Next() {
		var colName string
		if err := rows.Scan(&colName); err != nil {
			return nil, errs.Wrap(errs.KindQuery, "scan primary key column", err)
		}
		pk = append(pk, colName)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.KindQuery, "read primary key for "+tableName, err)
	}

	return pk, nil
}

// extractForeignKeys returns foreign key constraints ordered by constraint
// name. The catalog declares no order of its own; sorting keeps the rendered
// document stable across runs.
func (e *PostgresExtractor) extractForeignKeys(ctx context.Context, tableName string) ([]schema.ForeignKey, error) {
	query := `
		SELECT
			kcu.column_name,
			ccu.table_name AS foreign_table_name,
			ccu.column_name AS foreign_column_name,
			tc.constraint_name
		FROM information_schema.table_constraints AS tc
		JOIN information_schema.key_column_usage AS kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage AS ccu
			ON ccu.constraint_name = tc.constraint_name
			AND ccu.table_schema = tc.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
			AND tc.table_schema = $1
			AND tc.table_name = $2
		ORDER BY tc.constraint_name
	`

	rows, err := e.client.Connection().Query(ctx, query, e.schema, tableName)
	if err != nil {
		return nil, errs.Wrap(errs.KindQuery, "read foreign keys for "+tableName, err)
	}
	defer rows.Close()

	var fks []schema.ForeignKey
	for rows.Next() {
		var fk schema.ForeignKey
		if err := rows.Scan(&fk.Column, &fk.ReferencedTable, &fk.ReferencedColumn, &fk.ConstraintName); err != nil {
			return nil, errs.Wrap(errs.KindQuery, "scan foreign key", err)
		}
		fks = append(fks, fk)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.KindQuery, "read foreign keys for "+tableName, err)
	}

	return fks, nil
}

// extractIndexDefs returns the engine-rendered definition of every secondary
// index on the table. The primary key index is identified through pg_index
// rather than by name suffix, so tables named like "journal_pkey" cannot
// hide a real index.
func (e *PostgresExtractor) extractIndexDefs(ctx context.Context, tableName string) ([]string, error) {
	query := `
		SELECT i.indexdef
		FROM pg_indexes i
		WHERE i.schemaname = $1
			AND i.tablename = $2
			AND i.indexname NOT IN (
				SELECT c.relname
				FROM pg_index ix
				JOIN pg_class c ON c.oid = ix.indexrelid
				JOIN pg_class t ON t.oid = ix.indrelid
				JOIN pg_namespace n ON n.oid = t.relnamespace
				WHERE n.nspname = $1 AND t.relname = $2 AND ix.indisprimary
			)
		ORDER BY i.indexname
	`

	rows, err := e.client.Connection().Query(ctx, query, e.schema, tableName)
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
