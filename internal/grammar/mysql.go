package grammar

import (
	"context"
	"fmt"
	"strings"

	"github.com/tordrt/ddlkit/internal/catalog"
	"github.com/tordrt/ddlkit/internal/schema"
)

// mysqlSerials are the types whose auto_increment implies the primary key.
var mysqlSerials = []string{"bigInteger", "integer", "mediumInteger", "smallInteger", "tinyInteger"}

// MySQL compiles Blueprints for MySQL and MariaDB.
type MySQL struct {
	base
}

// NewMySQL creates the MySQL grammar.
func NewMySQL() *MySQL {
	g := &MySQL{base: base{driver: "mysql", quote: "`"}}
	g.types = map[string]typeFunc{
		"char":               sized("char"),
		"string":             sized("varchar"),
		"tinyText":           fixed("tinytext"),
		"text":               fixed("text"),
		"mediumText":         fixed("mediumtext"),
		"longText":           fixed("longtext"),
		"tinyInteger":        fixed("tinyint"),
		"smallInteger":       fixed("smallint"),
		"mediumInteger":      fixed("mediumint"),
		"integer":            fixed("int"),
		"bigInteger":         fixed("bigint"),
		"float":              g.typeFloat,
		"double":             fixed("double"),
		"decimal":            typeDecimal,
		"boolean":            fixed("tinyint(1)"),
		"enum":               g.typeEnum,
		"set":                g.typeSet,
		"json":               fixed("json"),
		"jsonb":              fixed("json"),
		"date":               fixed("date"),
		"dateTime":           withPrecision("datetime"),
		"dateTimeTz":         withPrecision("datetime"),
		"time":               withPrecision("time"),
		"timeTz":             withPrecision("time"),
		"timestamp":          withPrecision("timestamp"),
		"timestampTz":        withPrecision("timestamp"),
		"year":               fixed("year"),
		"binary":             fixed("blob"),
		"uuid":               fixed("char(36)"),
		"ulid":               fixed("char(26)"),
		"ipAddress":          fixed("varchar(45)"),
		"macAddress":         fixed("varchar(17)"),
		"geometry":           fixed("geometry"),
		"point":              fixed("point"),
		"lineString":         fixed("linestring"),
		"polygon":            fixed("polygon"),
		"geometryCollection": fixed("geometrycollection"),
		"multiPoint":         fixed("multipoint"),
		"multiLineString":    fixed("multilinestring"),
		"multiPolygon":       fixed("multipolygon"),
		"computed":           g.typeComputed,
	}
	g.modifiers = []modifier{
		g.modifyUnsigned,
		g.modifyCharset,
		g.modifyCollate,
		modifyVirtualAs,
		modifyStoredAs,
		g.modifyNullable,
		g.modifyDefault,
		g.modifyOnUpdate,
		g.modifyUseCurrent,
		g.modifyIncrement,
		g.modifyComment,
		g.modifyAfter,
		g.modifyFirst,
		g.modifyInvisible,
		g.modifySrid,
		g.modifyAutoIncrement,
	}
	g.compilers = map[string]schema.CompileFunc{
		"create":                      g.compileCreate,
		"add":                         g.compileAdd,
		"change":                      g.compileChange,
		"primary":                     g.compilePrimary,
		"unique":                      g.keyCompiler("unique"),
		"index":                       g.keyCompiler("index"),
		"fulltext":                    g.keyCompiler("fulltext"),
		"spatialIndex":                g.keyCompiler("spatial index"),
		"foreign":                     g.compileForeign,
		"drop":                        g.compileDrop,
		"dropIfExists":                g.compileDropIfExists,
		"dropColumn":                  g.compileDropColumn,
		"dropPrimary":                 g.compileDropPrimary,
		"dropUnique":                  g.compileDropIndex,
		"dropIndex":                   g.compileDropIndex,
		"dropFulltext":                g.compileDropIndex,
		"dropSpatialIndex":            g.compileDropIndex,
		"dropForeign":                 g.compileDropForeign,
		"rename":                      g.compileRename,
		"renameIndex":                 g.compileRenameIndex,
		"renameColumn":                g.compileRenameColumn,
		"tableComment":                g.compileTableComment,
		"autoIncrementStartingValues": g.compileStartingValue,
		// Column comments are inline on MySQL.
		"comment": nil,
	}
	return g
}

func (g *MySQL) CompileEnableForeignKeyConstraints() string {
	return "SET FOREIGN_KEY_CHECKS=1"
}

func (g *MySQL) CompileDisableForeignKeyConstraints() string {
	return "SET FOREIGN_KEY_CHECKS=0"
}

func fixed(sqlType string) typeFunc {
	return func(*schema.ColumnDefinition) (string, error) { return sqlType, nil }
}

func sized(sqlType string) typeFunc {
	return func(col *schema.ColumnDefinition) (string, error) {
		if n, ok := col.Int("length"); ok && n > 0 {
			return fmt.Sprintf("%s(%d)", sqlType, n), nil
		}
		return sqlType, nil
	}
}

func withPrecision(sqlType string) typeFunc {
	return func(col *schema.ColumnDefinition) (string, error) {
		if p := precision(col); p > 0 {
			return fmt.Sprintf("%s(%d)", sqlType, p), nil
		}
		return sqlType, nil
	}
}

func typeDecimal(col *schema.ColumnDefinition) (string, error) {
	total, _ := col.Int("total")
	places, _ := col.Int("places")
	return fmt.Sprintf("decimal(%d, %d)", total, places), nil
}

func (g *MySQL) typeFloat(col *schema.ColumnDefinition) (string, error) {
	if p := precision(col); p > 0 {
		return fmt.Sprintf("float(%d)", p), nil
	}
	return "float", nil
}

func (g *MySQL) typeEnum(col *schema.ColumnDefinition) (string, error) {
	return fmt.Sprintf("enum(%s)", quoteString(col.Strings("allowed"))), nil
}

func (g *MySQL) typeSet(col *schema.ColumnDefinition) (string, error) {
	return fmt.Sprintf("set(%s)", quoteString(col.Strings("allowed"))), nil
}

func (g *MySQL) typeComputed(*schema.ColumnDefinition) (string, error) {
	return "", g.unsupported("computed column without a type (use VirtualAs or StoredAs)")
}

func (g *MySQL) modifyUnsigned(_ *schema.Blueprint, col *schema.ColumnDefinition) string {
	if col.Bool("unsigned") {
		return " unsigned"
	}
	return ""
}

func (g *MySQL) modifyCharset(_ *schema.Blueprint, col *schema.ColumnDefinition) string {
	if v := col.String("charset"); v != "" {
		return " character set " + v
	}
	return ""
}

func (g *MySQL) modifyCollate(_ *schema.Blueprint, col *schema.ColumnDefinition) string {
	if v := col.String("collation"); v != "" {
		return " collate " + quoteLiteral(v)
	}
	return ""
}

func (g *MySQL) modifyNullable(_ *schema.Blueprint, col *schema.ColumnDefinition) string {
	if col.String("virtualAs") == "" && col.String("storedAs") == "" {
		if col.Bool("nullable") {
			return " null"
		}
		return " not null"
	}
	if forcedNotNull(col) {
		return " not null"
	}
	return ""
}

func (g *MySQL) modifyDefault(_ *schema.Blueprint, col *schema.ColumnDefinition) string {
	if col.Has("default") {
		return " default " + g.DefaultValue(col.Get("default", nil))
	}
	return ""
}

func currentTimestamp(col *schema.ColumnDefinition) string {
	if p := precision(col); p > 0 {
		return fmt.Sprintf("CURRENT_TIMESTAMP(%d)", p)
	}
	return "CURRENT_TIMESTAMP"
}

func (g *MySQL) modifyOnUpdate(_ *schema.Blueprint, col *schema.ColumnDefinition) string {
	if expr := col.String("onUpdate"); expr != "" {
		return " on update " + expr
	}
	if col.Bool("useCurrentOnUpdate") {
		return " on update " + currentTimestamp(col)
	}
	return ""
}

func (g *MySQL) modifyUseCurrent(_ *schema.Blueprint, col *schema.ColumnDefinition) string {
	if col.Bool("useCurrent") && !col.Has("default") {
		return " default " + currentTimestamp(col)
	}
	return ""
}

func (g *MySQL) modifyIncrement(b *schema.Blueprint, col *schema.ColumnDefinition) string {
	if !contains(mysqlSerials, col.Type()) || !col.Bool("autoIncrement") {
		return ""
	}
	if b.HasCommand("primary") || col.Bool("change") {
		return " auto_increment"
	}
	return " auto_increment primary key"
}

func (g *MySQL) modifyComment(_ *schema.Blueprint, col *schema.ColumnDefinition) string {
	if col.Has("comment") {
		return " comment " + quoteLiteral(col.String("comment"))
	}
	return ""
}

func (g *MySQL) modifyAfter(_ *schema.Blueprint, col *schema.ColumnDefinition) string {
	if v := col.String("after"); v != "" {
		return " after " + g.Wrap(v)
	}
	return ""
}

func (g *MySQL) modifyFirst(_ *schema.Blueprint, col *schema.ColumnDefinition) string {
	if col.Bool("first") {
		return " first"
	}
	return ""
}

func (g *MySQL) modifyInvisible(_ *schema.Blueprint, col *schema.ColumnDefinition) string {
	if col.Bool("invisible") {
		return " invisible"
	}
	return ""
}

func (g *MySQL) modifySrid(_ *schema.Blueprint, col *schema.ColumnDefinition) string {
	if srid, ok := col.Int("srid"); ok && srid > 0 {
		return fmt.Sprintf(" srid %d", srid)
	}
	return ""
}

// modifyAutoIncrement covers auto_increment on types outside the serial set.
func (g *MySQL) modifyAutoIncrement(_ *schema.Blueprint, col *schema.ColumnDefinition) string {
	if col.Bool("autoIncrement") && !contains(mysqlSerials, col.Type()) {
		return " auto_increment"
	}
	return ""
}

func (g *MySQL) compileCreate(_ context.Context, b *schema.Blueprint, _ *schema.Command, conn schema.Connection) ([]string, error) {
	columns, err := g.getColumns(b)
	if err != nil {
		return nil, err
	}
	if primary := b.CommandNamed("primary"); primary != nil {
		columns = append(columns, "primary key "+algorithm(primary)+"("+g.columnize(primary.Columns())+")")
		primary.Skip()
	}

	create := "create"
	if b.IsTemporary() {
		create = "create temporary"
	}
	sql := fmt.Sprintf("%s table %s (%s)", create, g.wrapBlueprint(b, conn), strings.Join(columns, ", "))
	sql += g.tableEncoding(b, conn)
	if engine := firstNonEmpty(b.Engine, configString(conn, "engine")); engine != "" {
		sql += " engine = " + engine
	}
	return one(sql), nil
}

func (g *MySQL) tableEncoding(b *schema.Blueprint, conn schema.Connection) string {
	var sql string
	if charset := firstNonEmpty(b.Charset, configString(conn, "charset")); charset != "" {
		sql += " default character set " + charset
	}
	if collation := firstNonEmpty(b.Collation, configString(conn, "collation")); collation != "" {
		sql += " collate " + quoteLiteral(collation)
	}
	return sql
}

func algorithm(cmd *schema.Command) string {
	if a := cmd.String("algorithm"); a != "" {
		return "using " + a
	}
	return ""
}

func (g *MySQL) compileAdd(_ context.Context, b *schema.Blueprint, _ *schema.Command, conn schema.Connection) ([]string, error) {
	columns, err := g.getColumns(b)
	if err != nil {
		return nil, err
	}
	return one("alter table " + g.wrapBlueprint(b, conn) + " " + strings.Join(prefixArray("add", columns), ", ")), nil
}

func (g *MySQL) compileChange(_ context.Context, b *schema.Blueprint, _ *schema.Command, conn schema.Connection) ([]string, error) {
	var columns []string
	for _, col := range b.ChangedColumns() {
		typ, err := g.getType(col)
		if err != nil {
			return nil, err
		}
		var sql string
		if to := col.String("renameTo"); to != "" {
			sql = fmt.Sprintf("change %s %s %s", g.Wrap(col.Name()), g.Wrap(to), typ)
		} else {
			sql = fmt.Sprintf("modify %s %s", g.Wrap(col.Name()), typ)
		}
		columns = append(columns, g.addModifiers(sql, b, col))
	}
	return one("alter table " + g.wrapBlueprint(b, conn) + " " + strings.Join(columns, ", ")), nil
}

func (g *MySQL) compilePrimary(_ context.Context, b *schema.Blueprint, cmd *schema.Command, conn schema.Connection) ([]string, error) {
	return one(fmt.Sprintf("alter table %s add primary key %s(%s)", g.wrapBlueprint(b, conn), algorithm(cmd), g.columnize(cmd.Columns()))), nil
}

// keyCompiler compiles unique, index, fulltext and spatial index commands.
func (g *MySQL) keyCompiler(kind string) schema.CompileFunc {
	return func(_ context.Context, b *schema.Blueprint, cmd *schema.Command, conn schema.Connection) ([]string, error) {
		using := ""
		if a := cmd.String("algorithm"); a != "" {
			using = " using " + a
		}
		return one(fmt.Sprintf("alter table %s add %s %s%s(%s)",
			g.wrapBlueprint(b, conn), kind, g.Wrap(cmd.IndexName()), using, g.indexColumns(cmd))), nil
	}
}

func (g *MySQL) compileDropColumn(_ context.Context, b *schema.Blueprint, cmd *schema.Command, conn schema.Connection) ([]string, error) {
	columns := prefixArray("drop", g.wrapArray(cmd.Columns()))
	return one("alter table " + g.wrapBlueprint(b, conn) + " " + strings.Join(columns, ", ")), nil
}

func (g *MySQL) compileDropPrimary(_ context.Context, b *schema.Blueprint, _ *schema.Command, conn schema.Connection) ([]string, error) {
	return one("alter table " + g.wrapBlueprint(b, conn) + " drop primary key"), nil
}

func (g *MySQL) compileDropIndex(_ context.Context, b *schema.Blueprint, cmd *schema.Command, conn schema.Connection) ([]string, error) {
	return one(fmt.Sprintf("alter table %s drop index %s", g.wrapBlueprint(b, conn), g.Wrap(cmd.IndexName()))), nil
}

func (g *MySQL) compileDropForeign(_ context.Context, b *schema.Blueprint, cmd *schema.Command, conn schema.Connection) ([]string, error) {
	return one(fmt.Sprintf("alter table %s drop foreign key %s", g.wrapBlueprint(b, conn), g.Wrap(cmd.IndexName()))), nil
}

func (g *MySQL) compileRename(_ context.Context, b *schema.Blueprint, cmd *schema.Command, conn schema.Connection) ([]string, error) {
	return one(fmt.Sprintf("rename table %s to %s", g.wrapBlueprint(b, conn), g.WrapTable(cmd.String("to"), conn.TablePrefix()))), nil
}

func (g *MySQL) compileRenameIndex(_ context.Context, b *schema.Blueprint, cmd *schema.Command, conn schema.Connection) ([]string, error) {
	return one(fmt.Sprintf("alter table %s rename index %s to %s",
		g.wrapBlueprint(b, conn), g.Wrap(cmd.String("from")), g.Wrap(cmd.String("to")))), nil
}

// compileRenameColumn uses RENAME COLUMN where the server supports it
// (MySQL 8.0.3, MariaDB 10.5.2) and CHANGE with the described column
// definition otherwise.
func (g *MySQL) compileRenameColumn(ctx context.Context, b *schema.Blueprint, cmd *schema.Command, conn schema.Connection) ([]string, error) {
	from, to := cmd.String("from"), cmd.String("to")
	minimum := "8.0.3"
	if isMariaDB(conn) {
		minimum = "10.5.2"
	}
	if versionAtLeast(serverVersion(conn), minimum) {
		return one(fmt.Sprintf("alter table %s rename column %s to %s", g.wrapBlueprint(b, conn), g.Wrap(from), g.Wrap(to))), nil
	}

	describer, ok := conn.(schema.Describer)
	if !ok {
		return nil, fmt.Errorf("renaming a column on MySQL %s requires a connection that can describe tables", serverVersion(conn))
	}
	table, err := describer.Describe(ctx, conn.TablePrefix()+b.Table())
	if err != nil {
		return nil, fmt.Errorf("failed to describe table %s: %w", b.Table(), err)
	}
	col, ok := table.Column(from)
	if !ok {
		return nil, fmt.Errorf("column %s does not exist on table %s", from, b.Table())
	}
	return one(fmt.Sprintf("alter table %s change %s %s %s",
		g.wrapBlueprint(b, conn), g.Wrap(from), g.Wrap(to), g.describedColumn(col))), nil
}

// describedColumn renders an existing column's definition for CHANGE.
func (g *MySQL) describedColumn(col *catalog.Column) string {
	sql := col.Type
	if col.Collation != "" {
		sql += " collate " + quoteLiteral(col.Collation)
	}
	if col.Nullable {
		sql += " null"
	} else {
		sql += " not null"
	}
	if col.DefaultValue != nil {
		def := *col.DefaultValue
		if strings.HasPrefix(strings.ToUpper(def), "CURRENT_TIMESTAMP") || strings.EqualFold(def, "null") {
			sql += " default " + def
		} else {
			sql += " default " + quoteLiteral(def)
		}
	}
	if col.AutoIncrement {
		sql += " auto_increment"
	}
	if col.Comment != "" {
		sql += " comment " + quoteLiteral(col.Comment)
	}
	return sql
}

func (g *MySQL) compileTableComment(_ context.Context, b *schema.Blueprint, cmd *schema.Command, conn schema.Connection) ([]string, error) {
	return one(fmt.Sprintf("alter table %s comment = %s", g.wrapBlueprint(b, conn), quoteLiteral(cmd.String("comment")))), nil
}

func (g *MySQL) compileStartingValue(_ context.Context, b *schema.Blueprint, cmd *schema.Command, conn schema.Connection) ([]string, error) {
	value, ok := startingValue(cmd)
	if !ok {
		return nil, nil
	}
	return one(fmt.Sprintf("alter table %s auto_increment = %d", g.wrapBlueprint(b, conn), value)), nil
}

func configString(conn schema.Connection, key string) string {
	v, _ := conn.Config(key).(string)
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
