// Package db connects schema Blueprints to live databases. Each client
// executes compiled statements and describes existing tables for grammars
// that need to read the current structure.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/tordrt/ddlkit/internal/schema"
)

// ErrOffline is returned when an offline connection is asked to execute.
var ErrOffline = errors.New("connection is offline")

// Options configure a connection.
type Options struct {
	// Prefix is prepended to every table name.
	Prefix string
	// PrefixIndexes applies Prefix to generated index names as well.
	PrefixIndexes bool
	// Config holds grammar settings such as charset, collation, engine and
	// version. A detected server version never overrides a configured one.
	Config map[string]any
}

// Transactor runs fn inside a database transaction. The connection passed
// to fn executes on the transaction.
type Transactor interface {
	Transaction(ctx context.Context, fn func(conn schema.Connection) error) error
}

// TableLister lists the tables of the connected database.
type TableLister interface {
	TableNames(ctx context.Context) ([]string, error)
}

// connBase implements the configuration side of schema.Connection.
type connBase struct {
	driver string
	opts   Options
	config map[string]any
}

func newConnBase(driver string, opts Options) connBase {
	config := map[string]any{}
	maps.Copy(config, opts.Config)
	return connBase{driver: driver, opts: opts, config: config}
}

func (c *connBase) DriverName() string  { return c.driver }
func (c *connBase) TablePrefix() string { return c.opts.Prefix }

// Config returns a configuration value, or nil when unset.
func (c *connBase) Config(key string) any {
	if key == "prefix_indexes" {
		return c.opts.PrefixIndexes
	}
	return c.config[key]
}

// setDetected stores a detected value unless the key is configured.
func (c *connBase) setDetected(key string, value any) {
	if _, ok := c.config[key]; !ok {
		c.config[key] = value
	}
}

// querier is implemented by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// sqlTransaction runs fn on a database/sql transaction, committing when fn
// returns nil and rolling back otherwise.
func sqlTransaction(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("failed to roll back: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Offline is a connection that compiles but never executes. Grammars that
// need to describe tables fail on it.
type Offline struct {
	connBase
}

// NewOffline creates an offline connection for the driver.
func NewOffline(driver string, opts Options) *Offline {
	return &Offline{connBase: newConnBase(driver, opts)}
}

func (c *Offline) Exec(context.Context, string) error {
	return ErrOffline
}

// splitTable splits "schema.table" into its parts.
func splitTable(table, defaultSchema string) (string, string) {
	if i := strings.LastIndex(table, "."); i >= 0 {
		return table[:i], table[i+1:]
	}
	return defaultSchema, table
}
