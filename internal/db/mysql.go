package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/rocklab/ddlexport/internal/errs"
)

// mysqlAccessDenied is ER_ACCESS_DENIED_ERROR.
const mysqlAccessDenied = 1045

// MySQLClient manages the connection to MySQL.
type MySQLClient struct {
	db *sql.DB
}

// NewMySQLClient connects to MySQL and verifies the connection.
func NewMySQLClient(ctx context.Context, connString string) (*MySQLClient, error) {
	db, err := sql.Open("mysql", connString)
	if err != nil {
		return nil, errs.Wrap(errs.KindConnection, "failed to open database", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, classifyMySQLConnectError(err)
	}

	return &MySQLClient{db: db}, nil
}

// Close closes the database connection.
func (c *MySQLClient) Close() error {
	return c.db.Close()
}

// DB returns the underlying database handle.
func (c *MySQLClient) DB() *sql.DB {
	return c.db
}

func classifyMySQLConnectError(err error) error {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlAccessDenied {
		return errs.Wrap(errs.KindAuth, "authentication failed", err)
	}
	return errs.Wrap(errs.KindConnection, "failed to connect to database", err)
}
