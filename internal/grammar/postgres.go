package grammar

import (
	"context"
	"fmt"
	"strings"

	"github.com/tordrt/ddlkit/internal/schema"
)

// postgresSerials maps integer types to their serial counterparts.
var postgresSerials = map[string]string{
	"smallint": "smallserial",
	"integer":  "serial",
	"bigint":   "bigserial",
}

// Postgres compiles Blueprints for PostgreSQL.
type Postgres struct {
	base
}

// NewPostgres creates the PostgreSQL grammar.
func NewPostgres() *Postgres {
	g := &Postgres{base: base{
		driver:       "pgsql",
		quote:        `"`,
		fluent:       []string{"comment"},
		transactions: true,
		formatBool: func(v bool) string {
			if v {
				return "true"
			}
			return "false"
		},
	}}
	g.types = map[string]typeFunc{
		"char":               sized("char"),
		"string":             sized("varchar"),
		"tinyText":           fixed("varchar(255)"),
		"text":               fixed("text"),
		"mediumText":         fixed("text"),
		"longText":           fixed("text"),
		"tinyInteger":        g.generatable("smallint"),
		"smallInteger":       g.generatable("smallint"),
		"mediumInteger":      g.generatable("integer"),
		"integer":            g.generatable("integer"),
		"bigInteger":         g.generatable("bigint"),
		"float":              g.typeFloat,
		"double":             fixed("double precision"),
		"decimal":            typeDecimal,
		"boolean":            fixed("boolean"),
		"enum":               g.typeEnum,
		"set":                fixed("text[]"),
		"json":               fixed("json"),
		"jsonb":              fixed("jsonb"),
		"date":               fixed("date"),
		"dateTime":           timeType("timestamp", false),
		"dateTimeTz":         timeType("timestamp", true),
		"time":               timeType("time", false),
		"timeTz":             timeType("time", true),
		"timestamp":          timeType("timestamp", false),
		"timestampTz":        timeType("timestamp", true),
		"year":               fixed("integer"),
		"binary":             fixed("bytea"),
		"uuid":               fixed("uuid"),
		"ulid":               fixed("char(26)"),
		"ipAddress":          fixed("inet"),
		"macAddress":         fixed("macaddr"),
		"geometry":           postgis("GEOMETRY"),
		"point":              postgis("POINT"),
		"lineString":         postgis("LINESTRING"),
		"polygon":            postgis("POLYGON"),
		"geometryCollection": postgis("GEOMETRYCOLLECTION"),
		"multiPoint":         postgis("MULTIPOINT"),
		"multiLineString":    postgis("MULTILINESTRING"),
		"multiPolygon":       postgis("MULTIPOLYGON"),
		"computed":           g.typeComputed,
	}
	g.modifiers = []modifier{
		g.modifyCollate,
		g.modifyIncrement,
		g.modifyNullable,
		g.modifyDefault,
		g.modifyVirtualAs,
		g.modifyStoredAs,
		g.modifyGeneratedAs,
		// Comments are compiled by the comment command.
	}
	g.compilers = map[string]schema.CompileFunc{
		"create":                      g.compileCreate,
		"add":                         g.compileAdd,
		"change":                      g.compileChange,
		"primary":                     g.compilePrimary,
		"unique":                      g.compileUnique,
		"index":                       g.compileIndex,
		"fulltext":                    g.compileFulltext,
		"spatialIndex":                g.compileSpatialIndex,
		"foreign":                     g.compileForeign,
		"drop":                        g.compileDrop,
		"dropIfExists":                g.compileDropIfExists,
		"dropColumn":                  g.compileDropColumn,
		"dropPrimary":                 g.compileDropPrimary,
		"dropUnique":                  g.compileDropConstraint,
		"dropIndex":                   g.compileDropIndex,
		"dropFulltext":                g.compileDropIndex,
		"dropSpatialIndex":            g.compileDropIndex,
		"dropForeign":                 g.compileDropConstraint,
		"rename":                      g.compileRename,
		"renameIndex":                 g.compileRenameIndex,
		"renameColumn":                g.compileRenameColumn,
		"comment":                     g.compileComment,
		"tableComment":                g.compileTableComment,
		"autoIncrementStartingValues": g.compileStartingValue,
	}
	return g
}

func (g *Postgres) CompileEnableForeignKeyConstraints() string {
	return "SET CONSTRAINTS ALL IMMEDIATE"
}

func (g *Postgres) CompileDisableForeignKeyConstraints() string {
	return "SET CONSTRAINTS ALL DEFERRED"
}

// generatable maps auto-increment integers to serial types unless the column
// is an identity column or is being changed.
func (g *Postgres) generatable(sqlType string) typeFunc {
	return func(col *schema.ColumnDefinition) (string, error) {
		if col.Bool("autoIncrement") && !col.Has("generatedAs") && !col.Bool("change") {
			if serial, ok := postgresSerials[sqlType]; ok {
				return serial, nil
			}
		}
		return sqlType, nil
	}
}

func (g *Postgres) typeFloat(col *schema.ColumnDefinition) (string, error) {
	if p := precision(col); p > 0 {
		return fmt.Sprintf("float(%d)", p), nil
	}
	return "float", nil
}

func (g *Postgres) typeEnum(col *schema.ColumnDefinition) (string, error) {
	return fmt.Sprintf("varchar(255) check (%s in (%s))", g.Wrap(col.Name()), quoteString(col.Strings("allowed"))), nil
}

func (g *Postgres) typeComputed(*schema.ColumnDefinition) (string, error) {
	return "", g.unsupported("computed column")
}

func timeType(sqlType string, tz bool) typeFunc {
	return func(col *schema.ColumnDefinition) (string, error) {
		zone := " without time zone"
		if tz {
			zone = " with time zone"
		}
		if col.Has("precision") {
			return fmt.Sprintf("%s(%d)%s", sqlType, precision(col), zone), nil
		}
		return sqlType + zone, nil
	}
}

// postgis renders a PostGIS geography, or geometry when IsGeometry is set.
func postgis(shape string) typeFunc {
	return func(col *schema.ColumnDefinition) (string, error) {
		projection, hasProjection := col.Int("projection")
		if !col.Bool("isGeometry") {
			if !hasProjection {
				projection = 4326
			}
			return fmt.Sprintf("geography(%s, %d)", shape, projection), nil
		}
		if hasProjection {
			return fmt.Sprintf("geometry(%s, %d)", strings.ToLower(shape), projection), nil
		}
		return fmt.Sprintf("geometry(%s)", shape), nil
	}
}

func isPostgresSerial(col *schema.ColumnDefinition) bool {
	switch col.Type() {
	case "tinyInteger", "smallInteger", "mediumInteger", "integer", "bigInteger":
		return true
	}
	return false
}

func (g *Postgres) modifyCollate(_ *schema.Blueprint, col *schema.ColumnDefinition) string {
	if v := col.String("collation"); v != "" {
		return " collate " + g.wrapValue(v)
	}
	return ""
}

func (g *Postgres) modifyIncrement(b *schema.Blueprint, col *schema.ColumnDefinition) string {
	if col.Bool("change") || !col.Bool("autoIncrement") {
		return ""
	}
	if !isPostgresSerial(col) && !col.Has("generatedAs") {
		return ""
	}
	if b.HasCommand("primary") {
		return ""
	}
	return " primary key"
}

func (g *Postgres) modifyNullable(_ *schema.Blueprint, col *schema.ColumnDefinition) string {
	serial := col.Bool("autoIncrement") && isPostgresSerial(col) && !col.Has("generatedAs")
	if serial || isGenerated(col) {
		if forcedNotNull(col) {
			return " not null"
		}
		return ""
	}
	if col.Bool("nullable") {
		return " null"
	}
	return " not null"
}

func (g *Postgres) modifyDefault(_ *schema.Blueprint, col *schema.ColumnDefinition) string {
	if col.Has("default") {
		return " default " + g.DefaultValue(col.Get("default", nil))
	}
	if col.Bool("useCurrent") {
		return " default " + currentTimestamp(col)
	}
	return ""
}

// modifyVirtualAs is a no-op: PostgreSQL only has stored generated columns.
func (g *Postgres) modifyVirtualAs(*schema.Blueprint, *schema.ColumnDefinition) string {
	return ""
}

func (g *Postgres) modifyStoredAs(_ *schema.Blueprint, col *schema.ColumnDefinition) string {
	if expr := col.String("storedAs"); expr != "" {
		return fmt.Sprintf(" generated always as (%s) stored", expr)
	}
	return ""
}

func (g *Postgres) identity(col *schema.ColumnDefinition) string {
	if !col.Has("generatedAs") {
		return ""
	}
	mode := "by default"
	if col.Bool("always") {
		mode = "always"
	}
	sql := fmt.Sprintf("generated %s as identity", mode)
	if seq, ok := col.Get("generatedAs", nil).(string); ok && seq != "" {
		sql += " (" + seq + ")"
	}
	return sql
}

func (g *Postgres) modifyGeneratedAs(_ *schema.Blueprint, col *schema.ColumnDefinition) string {
	if sql := g.identity(col); sql != "" {
		return " " + sql
	}
	return ""
}

func (g *Postgres) compileCreate(_ context.Context, b *schema.Blueprint, _ *schema.Command, conn schema.Connection) ([]string, error) {
	columns, err := g.getColumns(b)
	if err != nil {
		return nil, err
	}
	create := "create"
	if b.IsTemporary() {
		create = "create temporary"
	}
	return one(fmt.Sprintf("%s table %s (%s)", create, g.wrapBlueprint(b, conn), strings.Join(columns, ", "))), nil
}

func (g *Postgres) compileAdd(_ context.Context, b *schema.Blueprint, _ *schema.Command, conn schema.Connection) ([]string, error) {
	columns, err := g.getColumns(b)
	if err != nil {
		return nil, err
	}
	return one("alter table " + g.wrapBlueprint(b, conn) + " " + strings.Join(prefixArray("add column", columns), ", ")), nil
}

// compileChange emits one ALTER TABLE with an ALTER COLUMN clause for the
// type, nullability, default and identity of every changed column.
func (g *Postgres) compileChange(_ context.Context, b *schema.Blueprint, _ *schema.Command, conn schema.Connection) ([]string, error) {
	var clauses []string
	for _, col := range b.ChangedColumns() {
		typ, err := g.getType(col)
		if err != nil {
			return nil, err
		}
		changes := []string{"type " + typ + g.modifyCollate(b, col)}
		if col.Bool("nullable") {
			changes = append(changes, "drop not null")
		} else {
			changes = append(changes, "set not null")
		}
		if !col.Bool("autoIncrement") || col.Has("generatedAs") {
			if col.Has("default") && col.Get("default", nil) != nil {
				changes = append(changes, "set default "+g.DefaultValue(col.Get("default", nil)))
			} else if col.Bool("useCurrent") {
				changes = append(changes, "set default "+currentTimestamp(col))
			} else {
				changes = append(changes, "drop default")
			}
		}
		if col.Has("generatedAs") {
			changes = append(changes, "drop identity if exists", "add "+g.identity(col))
		}
		clauses = append(clauses, strings.Join(prefixArray("alter column "+g.Wrap(col.Name()), changes), ", "))
	}
	return one("alter table " + g.wrapBlueprint(b, conn) + " " + strings.Join(clauses, ", ")), nil
}

func (g *Postgres) compilePrimary(_ context.Context, b *schema.Blueprint, cmd *schema.Command, conn schema.Connection) ([]string, error) {
	return one(fmt.Sprintf("alter table %s add primary key (%s)", g.wrapBlueprint(b, conn), g.columnize(cmd.Columns()))), nil
}

func deferrable(cmd *schema.Command) string {
	var sql string
	if cmd.Has("deferrable") {
		if cmd.Bool("deferrable") {
			sql += " deferrable"
		} else {
			sql += " not deferrable"
		}
	}
	if cmd.Bool("deferrable") && cmd.Has("initiallyImmediate") {
		if cmd.Bool("initiallyImmediate") {
			sql += " initially immediate"
		} else {
			sql += " initially deferred"
		}
	}
	return sql
}

func (g *Postgres) compileUnique(_ context.Context, b *schema.Blueprint, cmd *schema.Command, conn schema.Connection) ([]string, error) {
	sql := fmt.Sprintf("alter table %s add constraint %s unique (%s)",
		g.wrapBlueprint(b, conn), g.Wrap(cmd.IndexName()), g.columnize(cmd.Columns()))
	return one(sql + deferrable(cmd)), nil
}

func (g *Postgres) compileIndex(_ context.Context, b *schema.Blueprint, cmd *schema.Command, conn schema.Connection) ([]string, error) {
	using := ""
	if a := cmd.String("algorithm"); a != "" {
		using = " using " + a
	}
	return one(fmt.Sprintf("create index %s on %s%s (%s)",
		g.Wrap(cmd.IndexName()), g.wrapBlueprint(b, conn), using, g.indexColumns(cmd))), nil
}

func (g *Postgres) compileFulltext(_ context.Context, b *schema.Blueprint, cmd *schema.Command, conn schema.Connection) ([]string, error) {
	language := cmd.String("language")
	if language == "" {
		language = "english"
	}
	var vectors []string
	for _, col := range cmd.Columns() {
		vectors = append(vectors, fmt.Sprintf("to_tsvector(%s, %s)", quoteLiteral(language), g.Wrap(col)))
	}
	return one(fmt.Sprintf("create index %s on %s using gin ((%s))",
		g.Wrap(cmd.IndexName()), g.wrapBlueprint(b, conn), strings.Join(vectors, " || "))), nil
}

// compileSpatialIndex builds a GiST index. Connections configured with
// postgis=false cannot hold spatial indexes.
func (g *Postgres) compileSpatialIndex(ctx context.Context, b *schema.Blueprint, cmd *schema.Command, conn schema.Connection) ([]string, error) {
	if v, ok := conn.Config("postgis").(bool); ok && !v {
		return nil, g.unsupported("spatial index without the PostGIS extension")
	}
	cmd.Set("algorithm", "gist")
	return g.compileIndex(ctx, b, cmd, conn)
}

func (g *Postgres) compileForeign(_ context.Context, b *schema.Blueprint, cmd *schema.Command, conn schema.Connection) ([]string, error) {
	sql := g.foreignKey(b, cmd, conn) + deferrable(cmd)
	if cmd.Bool("notValid") {
		sql += " not valid"
	}
	return one(sql), nil
}

func (g *Postgres) compileDropColumn(_ context.Context, b *schema.Blueprint, cmd *schema.Command, conn schema.Connection) ([]string, error) {
	columns := prefixArray("drop column", g.wrapArray(cmd.Columns()))
	return one("alter table " + g.wrapBlueprint(b, conn) + " " + strings.Join(columns, ", ")), nil
}

// compileDropPrimary drops the <table>_pkey constraint unless a name is given.
func (g *Postgres) compileDropPrimary(_ context.Context, b *schema.Blueprint, cmd *schema.Command, conn schema.Connection) ([]string, error) {
	name := cmd.IndexName()
	if name == "" {
		segments := strings.Split(b.Table(), ".")
		name = conn.TablePrefix() + segments[len(segments)-1] + "_pkey"
	}
	return one(fmt.Sprintf("alter table %s drop constraint %s", g.wrapBlueprint(b, conn), g.Wrap(name))), nil
}

func (g *Postgres) compileDropConstraint(_ context.Context, b *schema.Blueprint, cmd *schema.Command, conn schema.Connection) ([]string, error) {
	return one(fmt.Sprintf("alter table %s drop constraint %s", g.wrapBlueprint(b, conn), g.Wrap(cmd.IndexName()))), nil
}

func (g *Postgres) compileDropIndex(_ context.Context, _ *schema.Blueprint, cmd *schema.Command, _ schema.Connection) ([]string, error) {
	return one("drop index " + g.Wrap(cmd.IndexName())), nil
}

func (g *Postgres) compileRename(_ context.Context, b *schema.Blueprint, cmd *schema.Command, conn schema.Connection) ([]string, error) {
	return one(fmt.Sprintf("alter table %s rename to %s", g.wrapBlueprint(b, conn), g.WrapTable(cmd.String("to"), conn.TablePrefix()))), nil
}

func (g *Postgres) compileRenameIndex(_ context.Context, _ *schema.Blueprint, cmd *schema.Command, _ schema.Connection) ([]string, error) {
	return one(fmt.Sprintf("alter index %s rename to %s", g.Wrap(cmd.String("from")), g.Wrap(cmd.String("to")))), nil
}

func (g *Postgres) compileRenameColumn(_ context.Context, b *schema.Blueprint, cmd *schema.Command, conn schema.Connection) ([]string, error) {
	return one(fmt.Sprintf("alter table %s rename column %s to %s",
		g.wrapBlueprint(b, conn), g.Wrap(cmd.String("from")), g.Wrap(cmd.String("to")))), nil
}

func (g *Postgres) compileComment(_ context.Context, b *schema.Blueprint, cmd *schema.Command, conn schema.Connection) ([]string, error) {
	comment := "NULL"
	if v, ok := cmd.Get("value", nil).(string); ok {
		comment = quoteLiteral(v)
	}
	return one(fmt.Sprintf("comment on column %s.%s is %s", g.wrapBlueprint(b, conn), g.Wrap(cmd.Column().Name()), comment)), nil
}

func (g *Postgres) compileTableComment(_ context.Context, b *schema.Blueprint, cmd *schema.Command, conn schema.Connection) ([]string, error) {
	return one(fmt.Sprintf("comment on table %s is %s", g.wrapBlueprint(b, conn), quoteLiteral(cmd.String("comment")))), nil
}

func (g *Postgres) compileStartingValue(_ context.Context, b *schema.Blueprint, cmd *schema.Command, conn schema.Connection) ([]string, error) {
	value, ok := startingValue(cmd)
	if !ok {
		return nil, nil
	}
	sequence := g.WrapTable(b.Table()+"_"+cmd.Column().Name()+"_seq", conn.TablePrefix())
	return one(fmt.Sprintf("alter sequence %s restart with %d", sequence, value)), nil
}
