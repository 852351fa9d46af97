package schema

import (
	"context"
	"fmt"
	"strings"
)

// Blueprint is the pending set of column and command changes for one table.
// It is populated once by a callback, compiled, and then discarded.
type Blueprint struct {
	table    string
	prefix   string
	columns  []*ColumnDefinition
	commands []*Command

	// Engine, Charset and Collation are MySQL table options.
	Engine    string
	Charset   string
	Collation string

	temporary bool

	// after is the column newly added columns are placed after while an
	// After callback runs.
	after   string
	derived bool
}

// NewBlueprint creates a Blueprint for table and runs callback to populate it.
// prefix is prepended to generated index names.
func NewBlueprint(table string, callback func(*Blueprint), prefix string) *Blueprint {
	b := &Blueprint{table: table, prefix: prefix}
	if callback != nil {
		callback(b)
	}
	return b
}

// Table returns the unprefixed table name.
func (b *Blueprint) Table() string { return b.table }

// Prefix returns the index name prefix.
func (b *Blueprint) Prefix() string { return b.prefix }

// Columns returns every column definition in declaration order.
func (b *Blueprint) Columns() []*ColumnDefinition { return b.columns }

// Commands returns the commands in compilation order.
func (b *Blueprint) Commands() []*Command { return b.commands }

// AddedColumns returns the columns that are new to the table.
func (b *Blueprint) AddedColumns() []*ColumnDefinition {
	var out []*ColumnDefinition
	for _, c := range b.columns {
		if !c.Bool("change") {
			out = append(out, c)
		}
	}
	return out
}

// ChangedColumns returns the columns marked with Change.
func (b *Blueprint) ChangedColumns() []*ColumnDefinition {
	var out []*ColumnDefinition
	for _, c := range b.columns {
		if c.Bool("change") {
			out = append(out, c)
		}
	}
	return out
}

// Creating reports whether the Blueprint creates its table.
func (b *Blueprint) Creating() bool {
	return b.HasCommand("create")
}

// HasCommand reports whether a command with the given name is present.
func (b *Blueprint) HasCommand(name string) bool {
	return b.CommandNamed(name) != nil
}

// CommandNamed returns the first command with the given name.
func (b *Blueprint) CommandNamed(name string) *Command {
	for _, c := range b.commands {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// CommandsNamed returns every command with the given name.
func (b *Blueprint) CommandsNamed(name string) []*Command {
	var out []*Command
	for _, c := range b.commands {
		if c.Name() == name {
			out = append(out, c)
		}
	}
	return out
}

// Temporary makes the created table temporary.
func (b *Blueprint) Temporary() { b.temporary = true }

// IsTemporary reports whether the created table is temporary.
func (b *Blueprint) IsTemporary() bool { return b.temporary }

// ToSQL derives implied commands and compiles every command with g.
// Commands g has no compiler for are skipped.
func (b *Blueprint) ToSQL(ctx context.Context, conn Connection, g Grammar) ([]string, error) {
	b.addImpliedCommands(g)

	var statements []string
	for _, cmd := range b.commands {
		if cmd.Skipped() {
			continue
		}
		compile, ok := g.Compiler(cmd.Name())
		if !ok || compile == nil {
			continue
		}
		sql, err := compile(ctx, b, cmd, conn)
		if err != nil {
			return nil, fmt.Errorf("compile %s: %w", cmd.Name(), err)
		}
		statements = append(statements, sql...)
	}
	return statements, nil
}

// Build compiles the Blueprint and executes each statement on conn in order,
// stopping at the first failure.
func (b *Blueprint) Build(ctx context.Context, conn Connection, g Grammar) error {
	statements, err := b.ToSQL(ctx, conn, g)
	if err != nil {
		return err
	}
	for i, stmt := range statements {
		if err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute statement %d of %d: %w", i+1, len(statements), err)
		}
	}
	return nil
}

// addImpliedCommands expands column shorthand into explicit commands. It runs
// once per Blueprint.
func (b *Blueprint) addImpliedCommands(g Grammar) {
	if b.derived {
		return
	}
	b.derived = true

	if !b.Creating() {
		var implied []*Command
		if len(b.AddedColumns()) > 0 && !b.HasCommand("add") {
			implied = append(implied, b.newCommand("add", nil))
		}
		if len(b.ChangedColumns()) > 0 && !b.HasCommand("change") {
			implied = append(implied, b.newCommand("change", nil))
		}
		b.commands = append(implied, b.commands...)
	}

	b.addFluentIndexes()
	b.addConstrainedForeignKeys()
	b.addFluentCommands(g)
	b.addStartingValues()
}

var indexFlags = []string{"primary", "unique", "index", "fulltext", "spatialIndex"}

func (b *Blueprint) addFluentIndexes() {
	for _, col := range b.columns {
		for _, kind := range indexFlags {
			if !col.Has(kind) {
				continue
			}
			value := col.Get(kind, nil)
			col.Unset(kind)

			switch v := value.(type) {
			case bool:
				if v {
					b.indexCommand(kind, []string{col.Name()}, "")
				} else if col.Bool("change") {
					b.dropIndexCommand("drop"+upperFirst(kind), kind, "", []string{col.Name()})
				}
			case string:
				b.indexCommand(kind, []string{col.Name()}, v)
			}
		}
	}
}

func (b *Blueprint) addConstrainedForeignKeys() {
	for _, col := range b.columns {
		if !col.Has("constrained") {
			continue
		}
		constrained := col.Bool("constrained")
		table := col.String("constrainedTable")
		column := col.String("constrainedColumn")
		onDelete := col.String("constrainedOnDelete")
		onUpdate := col.String("constrainedOnUpdate")
		for _, k := range []string{"constrained", "constrainedTable", "constrainedColumn", "constrainedOnDelete", "constrainedOnUpdate"} {
			col.Unset(k)
		}
		if !constrained {
			continue
		}

		if table == "" {
			table = strings.TrimSuffix(col.Name(), "_id") + "s"
		}
		if column == "" {
			column = "id"
		}
		fk := b.Foreign(col.Name()).References(column).On(table)
		if onDelete != "" {
			fk.OnDelete(onDelete)
		}
		if onUpdate != "" {
			fk.OnUpdate(onUpdate)
		}
	}
}

func (b *Blueprint) addFluentCommands(g Grammar) {
	for _, col := range b.columns {
		for _, name := range g.FluentCommands() {
			if !col.Has(name) {
				continue
			}
			value := col.Get(name, nil)
			col.Unset(name)
			b.addCommand(name, map[string]any{"column": col, "value": value})
		}
	}
}

func (b *Blueprint) addStartingValues() {
	for _, col := range b.columns {
		start, ok := col.Int("startingValue")
		if !ok {
			start, ok = col.Int("from")
		}
		if ok && start > 1 {
			b.addCommand("autoIncrementStartingValues", map[string]any{"column": col, "value": start})
		}
	}
}

// CreateIndexName builds the conventional name for an index or foreign key:
// lower(prefix + table + "_" + columns + "_" + kind) with - and . replaced.
func (b *Blueprint) CreateIndexName(kind string, columns []string) string {
	index := strings.ToLower(b.prefix + b.table + "_" + strings.Join(columns, "_") + "_" + kind)
	return strings.NewReplacer("-", "_", ".", "_").Replace(index)
}

func (b *Blueprint) newCommand(name string, params map[string]any) *Command {
	return NewCommand(name, params)
}

func (b *Blueprint) addCommand(name string, params map[string]any) *Command {
	cmd := b.newCommand(name, params)
	b.commands = append(b.commands, cmd)
	return cmd
}

func (b *Blueprint) indexCommand(kind string, columns []string, name string) *IndexDefinition {
	if name == "" {
		name = b.CreateIndexName(kind, columns)
	}
	return &IndexDefinition{Command: b.addCommand(kind, map[string]any{
		"index":   name,
		"columns": columns,
	})}
}

func (b *Blueprint) dropIndexCommand(command, kind, name string, columns []string) *Command {
	if name == "" && len(columns) > 0 {
		name = b.CreateIndexName(kind, columns)
	}
	params := map[string]any{}
	if name != "" {
		params["index"] = name
	}
	if len(columns) > 0 {
		params["columns"] = columns
	}
	return b.addCommand(command, params)
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// After adds the columns declared in callback after column, in order.
func (b *Blueprint) After(column string, callback func(*Blueprint)) {
	b.after = column
	defer func() { b.after = "" }()
	callback(b)
}

// AddColumn appends a column of the given type.
func (b *Blueprint) AddColumn(typ, name string, params map[string]any) *ColumnDefinition {
	col := NewColumnDefinition(typ, name, params)
	if b.after != "" {
		col.After(b.after)
		b.after = name
	}
	b.columns = append(b.columns, col)
	return col
}

// RemoveColumn drops a pending column definition.
func (b *Blueprint) RemoveColumn(name string) {
	kept := b.columns[:0]
	for _, c := range b.columns {
		if c.Name() != name {
			kept = append(kept, c)
		}
	}
	b.columns = kept
}

// Create marks the Blueprint as creating the table.
func (b *Blueprint) Create() *Command { return b.addCommand("create", nil) }

func (b *Blueprint) Drop() *Command { return b.addCommand("drop", nil) }

func (b *Blueprint) DropIfExists() *Command { return b.addCommand("dropIfExists", nil) }

// Rename renames the table.
func (b *Blueprint) Rename(to string) *Command {
	return b.addCommand("rename", map[string]any{"to": to})
}

// Comment sets the table comment.
func (b *Blueprint) Comment(comment string) *Command {
	return b.addCommand("tableComment", map[string]any{"comment": comment})
}

// Primary sets the primary key.
func (b *Blueprint) Primary(columns ...string) *IndexDefinition {
	return b.indexCommand("primary", columns, "")
}

func (b *Blueprint) Unique(columns ...string) *IndexDefinition {
	return b.indexCommand("unique", columns, "")
}

func (b *Blueprint) Index(columns ...string) *IndexDefinition {
	return b.indexCommand("index", columns, "")
}

func (b *Blueprint) Fulltext(columns ...string) *IndexDefinition {
	return b.indexCommand("fulltext", columns, "")
}

func (b *Blueprint) SpatialIndex(columns ...string) *IndexDefinition {
	return b.indexCommand("spatialIndex", columns, "")
}

// RawIndex adds an index over a raw SQL expression.
func (b *Blueprint) RawIndex(expression, name string) *IndexDefinition {
	idx := b.indexCommand("index", []string{expression}, name)
	idx.Set("expression", expression)
	return idx
}

// Foreign adds a foreign key on columns; chain References and On.
func (b *Blueprint) Foreign(columns ...string) *ForeignKeyDefinition {
	return &ForeignKeyDefinition{Command: b.addCommand("foreign", map[string]any{
		"index":   b.CreateIndexName("foreign", columns),
		"columns": columns,
	})}
}

func (b *Blueprint) DropColumn(columns ...string) *Command {
	return b.addCommand("dropColumn", map[string]any{"columns": columns})
}

func (b *Blueprint) RenameColumn(from, to string) *Command {
	return b.addCommand("renameColumn", map[string]any{"from": from, "to": to})
}

func (b *Blueprint) RenameIndex(from, to string) *Command {
	return b.addCommand("renameIndex", map[string]any{"from": from, "to": to})
}

// DropPrimary drops the primary key. The name is only used by dialects that
// name primary key constraints.
func (b *Blueprint) DropPrimary(name ...string) *Command {
	index := ""
	if len(name) > 0 {
		index = name[0]
	}
	return b.dropIndexCommand("dropPrimary", "primary", index, nil)
}

func (b *Blueprint) DropUnique(name string) *Command {
	return b.dropIndexCommand("dropUnique", "unique", name, nil)
}

// DropUniqueOn drops the unique index conventionally named for columns.
func (b *Blueprint) DropUniqueOn(columns ...string) *Command {
	return b.dropIndexCommand("dropUnique", "unique", "", columns)
}

func (b *Blueprint) DropIndex(name string) *Command {
	return b.dropIndexCommand("dropIndex", "index", name, nil)
}

func (b *Blueprint) DropIndexOn(columns ...string) *Command {
	return b.dropIndexCommand("dropIndex", "index", "", columns)
}

func (b *Blueprint) DropFulltext(name string) *Command {
	return b.dropIndexCommand("dropFulltext", "fulltext", name, nil)
}

func (b *Blueprint) DropFulltextOn(columns ...string) *Command {
	return b.dropIndexCommand("dropFulltext", "fulltext", "", columns)
}

func (b *Blueprint) DropSpatialIndex(name string) *Command {
	return b.dropIndexCommand("dropSpatialIndex", "spatialIndex", name, nil)
}

func (b *Blueprint) DropSpatialIndexOn(columns ...string) *Command {
	return b.dropIndexCommand("dropSpatialIndex", "spatialIndex", "", columns)
}

func (b *Blueprint) DropForeign(name string) *Command {
	return b.dropIndexCommand("dropForeign", "foreign", name, nil)
}

func (b *Blueprint) DropForeignOn(columns ...string) *Command {
	return b.dropIndexCommand("dropForeign", "foreign", "", columns)
}

// DropConstrainedForeignID drops a foreign key column and its constraint.
func (b *Blueprint) DropConstrainedForeignID(column string) *Command {
	b.DropForeignOn(column)
	return b.DropColumn(column)
}

func (b *Blueprint) DropTimestamps() *Command {
	return b.DropColumn("created_at", "updated_at")
}

// DropSoftDeletes drops the soft delete column, deleted_at by default.
func (b *Blueprint) DropSoftDeletes(column ...string) *Command {
	if len(column) > 0 {
		return b.DropColumn(column[0])
	}
	return b.DropColumn("deleted_at")
}

func (b *Blueprint) DropRememberToken() *Command {
	return b.DropColumn("remember_token")
}

// DropMorphs drops the type and id columns of a polymorphic relation.
func (b *Blueprint) DropMorphs(name string) *Command {
	b.DropIndexOn(name+"_type", name+"_id")
	return b.DropColumn(name+"_type", name+"_id")
}
