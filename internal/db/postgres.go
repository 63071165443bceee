package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rocklab/ddlexport/internal/errs"
)

// PostgresClient manages the connection to PostgreSQL. One connection is
// opened per export run and closed when the run finishes.
type PostgresClient struct {
	conn *pgx.Conn
}

// NewPostgresClient connects to PostgreSQL and verifies the connection.
func NewPostgresClient(ctx context.Context, connString string) (*PostgresClient, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, classifyPostgresConnectError(err)
	}

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, classifyPostgresConnectError(err)
	}

	return &PostgresClient{conn: conn}, nil
}

// Close closes the database connection.
func (c *PostgresClient) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}

// Connection returns the underlying pgx connection.
func (c *PostgresClient) Connection() *pgx.Conn {
	return c.conn
}

// classifyPostgresConnectError separates credential rejections from
// plain connectivity failures. SQLSTATE class 28 covers invalid
// authorization (28000) and invalid password (28P01).
func classifyPostgresConnectError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (pgErr.Code == "28P01" || pgErr.Code == "28000") {
		return errs.Wrap(errs.KindAuth, "authentication failed", err)
	}
	return errs.Wrap(errs.KindConnection, "failed to connect to database", err)
}
