package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/tordrt/ddlkit/internal/schema"
)

// MySQLClient manages the connection to MySQL
type MySQLClient struct {
	connBase
	db       *sql.DB
	q        querier
	database string
}

// NewMySQLClient creates a new MySQL client
func NewMySQLClient(ctx context.Context, connString string, opts Options) (*MySQLClient, error) {
	cfg, err := mysql.ParseDSN(connString)
	if err != nil {
		return nil, fmt.Errorf("invalid MySQL DSN: %w", err)
	}

	db, err := sql.Open("mysql", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	c := NewMySQLClientWithDB(db, cfg.DBName, opts)
	if err := c.detectVersion(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

// NewMySQLClientWithDB wraps an open database handle. database is the
// default schema for Describe and TableNames; when empty the connection's
// current database is used. The server version is not detected.
func NewMySQLClientWithDB(db *sql.DB, database string, opts Options) *MySQLClient {
	return &MySQLClient{
		connBase: newConnBase("mysql", opts),
		db:       db,
		q:        db,
		database: database,
	}
}

func (c *MySQLClient) detectVersion(ctx context.Context) error {
	var version string
	if err := c.q.QueryRowContext(ctx, "select version()").Scan(&version); err != nil {
		return fmt.Errorf("failed to read server version: %w", err)
	}
	c.setDetected("version", version)
	return nil
}

// Close closes the database connection
func (c *MySQLClient) Close() error {
	return c.db.Close()
}

// GetDB returns the underlying database connection
func (c *MySQLClient) GetDB() *sql.DB {
	return c.db
}

// Exec executes one statement.
func (c *MySQLClient) Exec(ctx context.Context, stmt string) error {
	_, err := c.q.ExecContext(ctx, stmt)
	return err
}

// Transaction runs fn inside a transaction. MySQL commits DDL implicitly, so
// only data statements are rolled back.
func (c *MySQLClient) Transaction(ctx context.Context, fn func(conn schema.Connection) error) error {
	return sqlTransaction(ctx, c.db, func(tx *sql.Tx) error {
		txc := *c
		txc.q = tx
		return fn(&txc)
	})
}
