package db

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rocklab/ddlexport/internal/errs"
)

// SQLiteClient manages the connection to a SQLite database file.
type SQLiteClient struct {
	db *sql.DB
}

// NewSQLiteClient opens a SQLite database file and verifies the connection.
func NewSQLiteClient(ctx context.Context, path string) (*SQLiteClient, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errs.Wrap(errs.KindConnection, "failed to open database", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errs.Wrap(errs.KindConnection, "failed to open database file", err)
	}

	return &SQLiteClient{db: db}, nil
}

// Close closes the database connection.
func (c *SQLiteClient) Close() error {
	return c.db.Close()
}

// DB returns the underlying database handle.
func (c *SQLiteClient) DB() *sql.DB {
	return c.db
}
