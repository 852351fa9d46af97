package schema

import (
	"context"

	"github.com/tordrt/ddlkit/internal/catalog"
)

// CompileFunc compiles one command into zero or more SQL statements.
type CompileFunc func(ctx context.Context, b *Blueprint, cmd *Command, conn Connection) ([]string, error)

// Grammar compiles Blueprint commands for one SQL dialect.
type Grammar interface {
	// Driver returns the driver name the grammar serves: mysql, pgsql or sqlite.
	Driver() string
	// Compiler returns the compiler registered for a command name.
	Compiler(command string) (CompileFunc, bool)
	// FluentCommands lists column attributes promoted to standalone commands.
	FluentCommands() []string
	// SupportsSchemaTransactions reports whether DDL may run inside a transaction.
	SupportsSchemaTransactions() bool
	CompileEnableForeignKeyConstraints() string
	CompileDisableForeignKeyConstraints() string
}

// Connection is the database handle Blueprints compile against and execute on.
type Connection interface {
	DriverName() string
	TablePrefix() string
	// Config returns a connection setting such as charset, collation or
	// version, or nil when unset.
	Config(key string) any
	Exec(ctx context.Context, statement string) error
}

// Describer is implemented by connections that can read a table's current
// structure. Grammars that rebuild tables require it.
type Describer interface {
	Describe(ctx context.Context, table string) (*catalog.Table, error)
}
