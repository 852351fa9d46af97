package grammar

import (
	"context"
	"fmt"
	"strings"

	"github.com/tordrt/ddlkit/internal/schema"
)

// SQLite compiles Blueprints for SQLite. Operations the engine cannot
// express with ALTER TABLE are emulated by recreating the table.
type SQLite struct {
	base
}

// NewSQLite creates the SQLite grammar.
func NewSQLite() *SQLite {
	g := &SQLite{base: base{driver: "sqlite", quote: `"`}}
	g.types = map[string]typeFunc{
		"char":               fixed("text"),
		"string":             fixed("text"),
		"tinyText":           fixed("text"),
		"text":               fixed("text"),
		"mediumText":         fixed("text"),
		"longText":           fixed("text"),
		"tinyInteger":        fixed("integer"),
		"smallInteger":       fixed("integer"),
		"mediumInteger":      fixed("integer"),
		"integer":            fixed("integer"),
		"bigInteger":         fixed("integer"),
		"float":              fixed("real"),
		"double":             fixed("real"),
		"decimal":            fixed("numeric"),
		"boolean":            fixed("integer"),
		"enum":               g.typeEnum,
		"json":               fixed("text"),
		"jsonb":              fixed("text"),
		"date":               fixed("text"),
		"dateTime":           fixed("text"),
		"dateTimeTz":         fixed("text"),
		"time":               fixed("text"),
		"timeTz":             fixed("text"),
		"timestamp":          fixed("text"),
		"timestampTz":        fixed("text"),
		"year":               fixed("integer"),
		"binary":             fixed("blob"),
		"uuid":               fixed("text"),
		"ulid":               fixed("text"),
		"ipAddress":          fixed("text"),
		"macAddress":         fixed("text"),
		"geometry":           fixed("blob"),
		"point":              fixed("blob"),
		"lineString":         fixed("blob"),
		"polygon":            fixed("blob"),
		"geometryCollection": fixed("blob"),
		"multiPoint":         fixed("blob"),
		"multiLineString":    fixed("blob"),
		"multiPolygon":       fixed("blob"),
		"computed":           g.typeComputed,
	}
	g.modifiers = []modifier{
		g.modifyIncrement,
		g.modifyNullable,
		g.modifyDefault,
		g.modifyCollate,
		modifyVirtualAs,
		modifyStoredAs,
	}
	g.compilers = map[string]schema.CompileFunc{
		"create":       g.compileCreate,
		"add":          g.compileAdd,
		"change":       g.compileRecreate,
		"unique":       g.compileUnique,
		"index":        g.compileIndex,
		"fulltext":     g.unsupportedCompiler("fulltext"),
		"spatialIndex": g.unsupportedCompiler("spatial index"),
		// Primary and foreign keys only exist inline in CREATE TABLE.
		"primary":                     nil,
		"foreign":                     nil,
		"drop":                        g.compileDrop,
		"dropIfExists":                g.compileDropIfExists,
		"dropColumn":                  g.compileDropColumn,
		"dropPrimary":                 g.unsupportedCompiler("dropping a primary key"),
		"dropUnique":                  g.compileDropIndex,
		"dropIndex":                   g.compileDropIndex,
		"dropFulltext":                g.unsupportedCompiler("fulltext"),
		"dropSpatialIndex":            g.unsupportedCompiler("spatial index"),
		"dropForeign":                 g.unsupportedCompiler("dropping a foreign key"),
		"rename":                      g.compileRename,
		"renameIndex":                 g.compileRenameIndex,
		"renameColumn":                g.compileRenameColumn,
		"comment":                     nil,
		"tableComment":                g.unsupportedCompiler("table comment"),
		"autoIncrementStartingValues": g.compileStartingValue,
	}
	return g
}

func (g *SQLite) CompileEnableForeignKeyConstraints() string {
	return "PRAGMA foreign_keys = ON"
}

func (g *SQLite) CompileDisableForeignKeyConstraints() string {
	return "PRAGMA foreign_keys = OFF"
}

func (g *SQLite) typeEnum(col *schema.ColumnDefinition) (string, error) {
	return fmt.Sprintf("text check (%s in (%s))", g.Wrap(col.Name()), quoteString(col.Strings("allowed"))), nil
}

func (g *SQLite) typeComputed(*schema.ColumnDefinition) (string, error) {
	return "", g.unsupported("computed column")
}

func (g *SQLite) modifyIncrement(_ *schema.Blueprint, col *schema.ColumnDefinition) string {
	if col.Bool("autoIncrement") && contains(mysqlSerials, col.Type()) {
		return " primary key autoincrement"
	}
	return ""
}

func (g *SQLite) modifyNullable(_ *schema.Blueprint, col *schema.ColumnDefinition) string {
	if isGenerated(col) {
		if forcedNotNull(col) {
			return " not null"
		}
		return ""
	}
	if col.Bool("nullable") {
		return ""
	}
	return " not null"
}

func (g *SQLite) modifyDefault(_ *schema.Blueprint, col *schema.ColumnDefinition) string {
	if isGenerated(col) {
		return ""
	}
	if col.Has("default") {
		return " default " + g.DefaultValue(col.Get("default", nil))
	}
	if col.Bool("useCurrent") {
		return " default CURRENT_TIMESTAMP"
	}
	return ""
}

func (g *SQLite) modifyCollate(_ *schema.Blueprint, col *schema.ColumnDefinition) string {
	if v := col.String("collation"); v != "" {
		return " collate " + g.wrapValue(v)
	}
	return ""
}

// compileCreate inlines foreign keys and the primary key, since SQLite has
// no ALTER TABLE form for either.
func (g *SQLite) compileCreate(_ context.Context, b *schema.Blueprint, _ *schema.Command, conn schema.Connection) ([]string, error) {
	columns, err := g.getColumns(b)
	if err != nil {
		return nil, err
	}
	for _, fk := range b.CommandsNamed("foreign") {
		columns = append(columns, g.inlineForeignKey(
			fk.Columns(),
			g.WrapTable(fk.String("on"), conn.TablePrefix()),
			fk.Strings("references"),
			fk.String("onDelete"),
			fk.String("onUpdate"),
		))
	}
	if primary := b.CommandNamed("primary"); primary != nil {
		columns = append(columns, "primary key ("+g.columnize(primary.Columns())+")")
	}

	create := "create"
	if b.IsTemporary() {
		create = "create temporary"
	}
	return one(fmt.Sprintf("%s table %s (%s)", create, g.wrapBlueprint(b, conn), strings.Join(columns, ", "))), nil
}

func (g *SQLite) inlineForeignKey(columns []string, on string, references []string, onDelete, onUpdate string) string {
	sql := fmt.Sprintf("foreign key(%s) references %s(%s)", g.columnize(columns), on, g.columnize(references))
	if onDelete != "" {
		sql += " on delete " + onDelete
	}
	if onUpdate != "" {
		sql += " on update " + onUpdate
	}
	return sql
}

// compileAdd emits one ALTER TABLE per added column. When the Blueprint
// rebuilds the table the columns are created by the rebuild instead.
func (g *SQLite) compileAdd(_ context.Context, b *schema.Blueprint, _ *schema.Command, conn schema.Connection) ([]string, error) {
	if rebuildPending(b, conn) {
		return nil, nil
	}
	var statements []string
	for _, col := range b.AddedColumns() {
		if col.String("storedAs") != "" {
			return nil, g.unsupported("adding a stored generated column")
		}
		sql, err := g.getColumn(b, col)
		if err != nil {
			return nil, err
		}
		statements = append(statements, "alter table "+g.wrapBlueprint(b, conn)+" add column "+sql)
	}
	return statements, nil
}

func (g *SQLite) compileUnique(_ context.Context, b *schema.Blueprint, cmd *schema.Command, conn schema.Connection) ([]string, error) {
	return one(fmt.Sprintf("create unique index %s on %s (%s)", g.Wrap(cmd.IndexName()), g.wrapBlueprint(b, conn), g.indexColumns(cmd))), nil
}

func (g *SQLite) compileIndex(_ context.Context, b *schema.Blueprint, cmd *schema.Command, conn schema.Connection) ([]string, error) {
	return one(fmt.Sprintf("create index %s on %s (%s)", g.Wrap(cmd.IndexName()), g.wrapBlueprint(b, conn), g.indexColumns(cmd))), nil
}

func (g *SQLite) compileDropIndex(_ context.Context, _ *schema.Blueprint, cmd *schema.Command, _ schema.Connection) ([]string, error) {
	return one("drop index " + g.Wrap(cmd.IndexName())), nil
}

// compileDropColumn uses DROP COLUMN from SQLite 3.35.0 and recreates the
// table on older engines.
func (g *SQLite) compileDropColumn(ctx context.Context, b *schema.Blueprint, cmd *schema.Command, conn schema.Connection) ([]string, error) {
	if !versionAtLeast(serverVersion(conn), "3.35.0") {
		return g.compileRecreate(ctx, b, cmd, conn)
	}
	var statements []string
	for _, col := range g.wrapArray(cmd.Columns()) {
		statements = append(statements, fmt.Sprintf("alter table %s drop column %s", g.wrapBlueprint(b, conn), col))
	}
	return statements, nil
}

// compileRenameColumn uses RENAME COLUMN from SQLite 3.25.0 and recreates
// the table on older engines.
func (g *SQLite) compileRenameColumn(ctx context.Context, b *schema.Blueprint, cmd *schema.Command, conn schema.Connection) ([]string, error) {
	if !versionAtLeast(serverVersion(conn), "3.25.0") {
		return g.compileRecreate(ctx, b, cmd, conn)
	}
	return one(fmt.Sprintf("alter table %s rename column %s to %s",
		g.wrapBlueprint(b, conn), g.Wrap(cmd.String("from")), g.Wrap(cmd.String("to")))), nil
}

func (g *SQLite) compileRename(_ context.Context, b *schema.Blueprint, cmd *schema.Command, conn schema.Connection) ([]string, error) {
	return one(fmt.Sprintf("alter table %s rename to %s", g.wrapBlueprint(b, conn), g.wrapValue(conn.TablePrefix()+cmd.String("to")))), nil
}

// compileRenameIndex drops the index and creates it again under the new
// name, reading its definition from the database.
func (g *SQLite) compileRenameIndex(ctx context.Context, b *schema.Blueprint, cmd *schema.Command, conn schema.Connection) ([]string, error) {
	table, err := g.describe(ctx, b, conn)
	if err != nil {
		return nil, err
	}
	from, to := cmd.String("from"), cmd.String("to")
	index, ok := table.Index(from)
	if !ok {
		return nil, fmt.Errorf("index %s does not exist on table %s", from, b.Table())
	}
	create := "create index"
	if index.IsUnique {
		create = "create unique index"
	}
	return []string{
		"drop index " + g.Wrap(from),
		fmt.Sprintf("%s %s on %s (%s)", create, g.Wrap(to), g.wrapBlueprint(b, conn), g.columnize(index.Columns)),
	}, nil
}

// compileStartingValue seeds sqlite_sequence so the next row id is the
// requested starting value.
func (g *SQLite) compileStartingValue(_ context.Context, b *schema.Blueprint, cmd *schema.Command, conn schema.Connection) ([]string, error) {
	value, ok := startingValue(cmd)
	if !ok {
		return nil, nil
	}
	return one(fmt.Sprintf("insert into sqlite_sequence (name, seq) values (%s, %d)", quoteLiteral(conn.TablePrefix()+b.Table()), value-1)), nil
}
