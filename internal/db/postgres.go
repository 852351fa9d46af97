package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tordrt/ddlkit/internal/schema"
)

// pgQuerier is implemented by *pgx.Conn and pgx.Tx.
type pgQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresClient manages the connection to PostgreSQL
type PostgresClient struct {
	connBase
	conn   *pgx.Conn
	q      pgQuerier
	schema string
}

// NewPostgresClient creates a new PostgreSQL client
func NewPostgresClient(ctx context.Context, connString string, opts Options) (*PostgresClient, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test the connection
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	c := &PostgresClient{
		connBase: newConnBase("pgsql", opts),
		conn:     conn,
		q:        conn,
		schema:   "public",
	}
	if s, ok := c.Config("schema").(string); ok && s != "" {
		c.schema = s
	}

	var version string
	if err := conn.QueryRow(ctx, "SHOW server_version").Scan(&version); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("failed to read server version: %w", err)
	}
	if fields := strings.Fields(version); len(fields) > 0 {
		c.setDetected("version", fields[0])
	}

	return c, nil
}

// Close closes the database connection
func (c *PostgresClient) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}

// GetConnection returns the underlying connection
func (c *PostgresClient) GetConnection() *pgx.Conn {
	return c.conn
}

// Exec executes one statement.
func (c *PostgresClient) Exec(ctx context.Context, stmt string) error {
	_, err := c.q.Exec(ctx, stmt)
	return err
}

// Transaction runs fn inside a transaction. PostgreSQL rolls back DDL along
// with everything else.
func (c *PostgresClient) Transaction(ctx context.Context, fn func(conn schema.Connection) error) error {
	return pgx.BeginFunc(ctx, c.conn, func(tx pgx.Tx) error {
		txc := *c
		txc.q = tx
		return fn(&txc)
	})
}
