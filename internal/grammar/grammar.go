// Package grammar compiles schema Blueprints into SQL for MySQL, PostgreSQL
// and SQLite.
package grammar

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/tordrt/ddlkit/internal/schema"
)

// typeFunc maps a column definition to its SQL type.
type typeFunc func(col *schema.ColumnDefinition) (string, error)

// modifier renders one column suffix such as " not null". An empty string
// means the modifier does not apply.
type modifier func(b *schema.Blueprint, col *schema.ColumnDefinition) string

// base holds what every dialect shares: quoting, the type table, the
// ordered modifier pipeline and the command registration table.
type base struct {
	driver       string
	quote        string
	compilers    map[string]schema.CompileFunc
	types        map[string]typeFunc
	modifiers    []modifier
	fluent       []string
	transactions bool
	formatBool   func(v bool) string
}

func (g *base) Driver() string { return g.driver }

func (g *base) Compiler(command string) (schema.CompileFunc, bool) {
	fn, ok := g.compilers[command]
	return fn, ok
}

func (g *base) FluentCommands() []string { return g.fluent }

func (g *base) SupportsSchemaTransactions() bool { return g.transactions }

// Wrap quotes an identifier. Dotted names are quoted per segment and embedded
// quote characters are doubled.
func (g *base) Wrap(value string) string {
	segments := strings.Split(value, ".")
	for i, s := range segments {
		segments[i] = g.wrapValue(s)
	}
	return strings.Join(segments, ".")
}

func (g *base) wrapValue(value string) string {
	if value == "*" {
		return value
	}
	return g.quote + strings.ReplaceAll(value, g.quote, g.quote+g.quote) + g.quote
}

// WrapTable quotes a table name, applying prefix to its last segment.
func (g *base) WrapTable(table, prefix string) string {
	segments := strings.Split(table, ".")
	segments[len(segments)-1] = prefix + segments[len(segments)-1]
	return g.Wrap(strings.Join(segments, "."))
}

func (g *base) wrapBlueprint(b *schema.Blueprint, conn schema.Connection) string {
	return g.WrapTable(b.Table(), conn.TablePrefix())
}

func (g *base) wrapArray(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = g.Wrap(v)
	}
	return out
}

func (g *base) columnize(columns []string) string {
	return strings.Join(g.wrapArray(columns), ", ")
}

// indexColumns renders the column list of an index command. Raw index
// expressions are emitted verbatim.
func (g *base) indexColumns(cmd *schema.Command) string {
	if expr := cmd.String("expression"); expr != "" {
		return expr
	}
	return g.columnize(cmd.Columns())
}

func (g *base) getType(col *schema.ColumnDefinition) (string, error) {
	fn, ok := g.types[col.Type()]
	if !ok {
		return "", &schema.UnsupportedColumnTypeError{Dialect: g.driver, Type: col.Type()}
	}
	return fn(col)
}

// getColumn renders "<name> <type><modifiers>" for one column.
func (g *base) getColumn(b *schema.Blueprint, col *schema.ColumnDefinition) (string, error) {
	typ, err := g.getType(col)
	if err != nil {
		return "", err
	}
	return g.addModifiers(g.Wrap(col.Name())+" "+typ, b, col), nil
}

func (g *base) addModifiers(sql string, b *schema.Blueprint, col *schema.ColumnDefinition) string {
	var sb strings.Builder
	sb.WriteString(sql)
	for _, m := range g.modifiers {
		sb.WriteString(m(b, col))
	}
	return sb.String()
}

// getColumns renders every added column of b.
func (g *base) getColumns(b *schema.Blueprint) ([]string, error) {
	var out []string
	for _, col := range b.AddedColumns() {
		sql, err := g.getColumn(b, col)
		if err != nil {
			return nil, err
		}
		out = append(out, sql)
	}
	return out, nil
}

func (g *base) unsupported(feature string) error {
	return &schema.UnsupportedOperationError{Dialect: g.driver, Feature: feature}
}

// unsupportedCompiler registers a command the dialect cannot express.
func (g *base) unsupportedCompiler(feature string) schema.CompileFunc {
	return func(_ context.Context, _ *schema.Blueprint, _ *schema.Command, _ schema.Connection) ([]string, error) {
		return nil, g.unsupported(feature)
	}
}

// DefaultValue renders a column default as a SQL literal.
func (g *base) DefaultValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case schema.Expression:
		return string(v)
	case bool:
		if g.formatBool != nil {
			return g.formatBool(v)
		}
		if v {
			return "1"
		}
		return "0"
	case string:
		return quoteLiteral(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// quoteString renders values as a comma-separated list of string literals.
func quoteString(values []string) string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = quoteLiteral(v)
	}
	return strings.Join(out, ", ")
}

func prefixArray(prefix string, values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = prefix + " " + v
	}
	return out
}

func one(sql string) []string { return []string{sql} }

var (
	registryMu sync.RWMutex
	registry   = map[string]func() schema.Grammar{
		"mysql":  func() schema.Grammar { return NewMySQL() },
		"pgsql":  func() schema.Grammar { return NewPostgres() },
		"sqlite": func() schema.Grammar { return NewSQLite() },
	}
)

// Register adds a grammar factory under a driver name, replacing any
// existing registration.
func Register(driver string, factory func() schema.Grammar) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[driver] = factory
}

// For returns a new grammar for the driver name.
func For(driver string) (schema.Grammar, error) {
	registryMu.RLock()
	factory, ok := registry[driver]
	registryMu.RUnlock()
	if !ok {
		return nil, &schema.UnsupportedDriverError{Driver: driver, Available: Drivers()}
	}
	return factory(), nil
}

// Drivers lists the registered driver names in sorted order.
func Drivers() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
