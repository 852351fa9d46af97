package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tordrt/ddlkit/internal/schema"
)

// SQLiteClient manages the connection to SQLite
type SQLiteClient struct {
	connBase
	db *sql.DB
	q  querier
}

// NewSQLiteClient creates a new SQLite client. The path may be ":memory:".
func NewSQLiteClient(ctx context.Context, path string, opts Options) (*SQLiteClient, error) {
	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// PRAGMA foreign_keys and in-memory databases are per connection.
	db.SetMaxOpenConns(1)

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	c := &SQLiteClient{
		connBase: newConnBase("sqlite", opts),
		db:       db,
		q:        db,
	}

	var version string
	if err := db.QueryRowContext(ctx, "select sqlite_version()").Scan(&version); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to read engine version: %w", err)
	}
	c.setDetected("version", version)

	return c, nil
}

// Close closes the database connection
func (c *SQLiteClient) Close() error {
	return c.db.Close()
}

// GetDB returns the underlying database connection
func (c *SQLiteClient) GetDB() *sql.DB {
	return c.db
}

// Exec executes one statement.
func (c *SQLiteClient) Exec(ctx context.Context, stmt string) error {
	_, err := c.q.ExecContext(ctx, stmt)
	return err
}

// Transaction runs fn inside a transaction.
func (c *SQLiteClient) Transaction(ctx context.Context, fn func(conn schema.Connection) error) error {
	return sqlTransaction(ctx, c.db, func(tx *sql.Tx) error {
		txc := *c
		txc.q = tx
		return fn(&txc)
	})
}
