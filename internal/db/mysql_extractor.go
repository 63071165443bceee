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

// MySQLExtractor reads table structure from the MySQL information_schema.
type MySQLExtractor struct {
	client     *MySQLClient
	schemaName string
	log        *logger.Logger
}

// NewMySQLExtractor creates a schema extractor for the given database name.
func NewMySQLExtractor(client *MySQLClient, schemaName string, log *logger.Logger) *MySQLExtractor {
	if log == nil {
		log = logger.Nop()
	}
	return &MySQLExtractor{
		client:     client,
		schemaName: schemaName,
		log:        log,
	}
}

// Snapshot captures the structural definition of every base table in the
// database, or of the requested tables only.
func (e *MySQLExtractor) Snapshot(ctx context.Context, database string, tables []string) (*schema.Snapshot, error) {
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

func (e *MySQLExtractor) listTables(ctx context.Context, requested []string) ([]string, error) {
	if len(requested) > 0 {
		sorted := make([]string, len(requested))
		copy(sorted, requested)
		sort.Strings(sorted)
		return sorted, nil
	}

	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = ? AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	rows, err := e.client.DB().QueryContext(ctx, query, e.schemaName)
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

func (e *MySQLExtractor) describeTable(ctx context.Context, tableName string) (*schema.Table, error) {
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

func (e *MySQLExtractor) extractColumns(ctx context.Context, tableName string) ([]schema.Column, error) {
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
		WHERE table_schema = ? AND table_name = ?
		ORDER BY ordinal_position
	`

	rows, err := e.client.DB().QueryContext(ctx, query, e.schemaName, tableName)
	if err != nil {
		return nil, errs.Wrap(errs.KindQuery, "read columns for "+tableName, err)
	}
	defer rows.Close()

	var columns []schema.Column
	for rows.Next() {
		var col schema.Column
		var nullable string
		var defaultVal sql.NullString
		var charMaxLen, numPrecision, numScale sql.NullInt64

		if err := rows.Scan(
			&col.Name,
			&col.DataType,
			&charMaxLen,
			&numPrecision,
			&numScale,
			&nullable,
			&defaultVal,
			&col.Position,
		); err != nil {
			return nil, errs.Wrap(errs.KindQuery, "scan column", err)
		}

		col.Nullable = nullable == "YES"
		col.Kind = schema.KindOf(col.DataType)
		if defaultVal.Valid {
			col.Default = &defaultVal.String
		}
		col.CharMaxLength = nullableInt(charMaxLen)
		col.NumericPrecision = nullableInt(numPrecision)
		col.NumericScale = nullableInt(numScale)

		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.KindQuery, "read columns for "+tableName, err)
	}

	return columns, nil
}

func (e *MySQLExtractor) extractPrimaryKey(ctx context.Context, tableName string) ([]string, error) {
	query := `
		SELECT column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = ?
			AND table_name = ?
			AND constraint_name = 'PRIMARY'
		ORDER BY ordinal_position
	`

	rows, err := e.client.DB().QueryContext(ctx, query, e.schemaName, tableName)
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

func (e *MySQLExtractor) extractForeignKeys(ctx context.Context, tableName string) ([]schema.ForeignKey, error) {
	query := `
		SELECT
			kcu.constraint_name,
			kcu.column_name,
			kcu.referenced_table_name,
			kcu.referenced_column_name
		FROM information_schema.key_column_usage kcu
		WHERE kcu.table_schema = ?
			AND kcu.table_name = ?
			AND kcu.referenced_table_name IS NOT NULL
		ORDER BY kcu.constraint_name, kcu.ordinal_position
	`

	rows, err := e.client.DB().QueryContext(ctx, query, e.schemaName, tableName)
	if err != nil {
		return nil, errs.Wrap(errs.KindQuery, "read foreign keys for "+tableName, err)
	}
	defer rows.Close()

	var fks []schema.ForeignKey
	for rows.Next() {
		var fk schema.ForeignKey
		if err := rows.Scan(&fk.ConstraintName, &fk.Column, &fk.ReferencedTable, &fk.ReferencedColumn); err != nil {
			return nil, errs.Wrap(errs.KindQuery, "scan foreign key", err)
		}
		fks = append(fks, fk)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.KindQuery, "read foreign keys for "+tableName, err)
	}

	return fks, nil
}

// extractIndexDefs synthesizes CREATE INDEX statements from
// information_schema.statistics. MySQL keeps no rendered definition string
// the way pg_indexes does, so the definition is rebuilt from the index
// columns in sequence order. The PRIMARY index is excluded.
func (e *MySQLExtractor) extractIndexDefs(ctx context.Context, tableName string) ([]string, error) {
	query := `
		SELECT
			s.index_name,
			s.non_unique = 0 AS is_unique,
			GROUP_CONCAT(s.column_name ORDER BY s.seq_in_index) AS column_names
		FROM information_schema.statistics s
		WHERE s.table_schema = ?
			AND s.table_name = ?
			AND s.index_name != 'PRIMARY'
		GROUP BY s.index_name, s.non_unique
		ORDER BY s.index_name
	`

	rows, err := e.client.DB().QueryContext(ctx, query, e.schemaName, tableName)
	if err != nil {
		return nil, errs.Wrap(errs.KindQuery, "read indexes for "+tableName, err)
	}
	defer rows.Close()

	var defs []string
	for rows.Next() {
		var indexName, columnNames string
		var isUnique int

		if err := rows.Scan(&indexName, &isUnique, &columnNames); err != nil {
			return nil, errs.Wrap(errs.KindQuery, "scan index", err)
		}

		defs = append(defs, buildIndexDef(tableName, indexName, isUnique == 1, strings.Split(columnNames, ",")))
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.KindQuery, "read indexes for "+tableName, err)
	}

	return defs, nil
}

// buildIndexDef renders a CREATE INDEX statement for engines that expose
// index structure but not a definition string.
func buildIndexDef(tableName, indexName string, unique bool, columns []string) string {
	uniqueToken := ""
	if unique {
		uniqueToken = "UNIQUE "
	}
	return fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)", uniqueToken, indexName, tableName, strings.Join(columns, ", "))
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
