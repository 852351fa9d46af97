package grammar

import (
	"context"
	"fmt"
	"strings"

	"github.com/tordrt/ddlkit/internal/catalog"
	"github.com/tordrt/ddlkit/internal/schema"
)

// shadowColumn is one column of the table being rebuilt.
type shadowColumn struct {
	source     string // column the rows are copied from
	name       string
	definition string // type and modifiers, without the name
	primary    bool   // definition carries an inline primary key
}

// shadowTable is the final structure of a table rebuilt by recreation.
type shadowTable struct {
	columns    []shadowColumn
	primaryKey []string
	relations  []catalog.Relation
	indexes    []catalog.Index
}

// needsRecreate reports whether cmd is compiled by rebuilding the table on
// the connected engine.
func needsRecreate(cmd *schema.Command, conn schema.Connection) bool {
	switch cmd.Name() {
	case "change":
		return true
	case "dropColumn":
		return !versionAtLeast(serverVersion(conn), "3.35.0")
	case "renameColumn":
		return !versionAtLeast(serverVersion(conn), "3.25.0")
	}
	return false
}

// rebuildPending reports whether any command of b rebuilds the table. Added
// columns then become part of the rebuilt table instead of ALTER TABLE ADD.
func rebuildPending(b *schema.Blueprint, conn schema.Connection) bool {
	for _, c := range b.Commands() {
		if needsRecreate(c, conn) {
			return true
		}
	}
	return false
}

func (g *SQLite) describe(ctx context.Context, b *schema.Blueprint, conn schema.Connection) (*catalog.Table, error) {
	describer, ok := conn.(schema.Describer)
	if !ok {
		return nil, fmt.Errorf("altering table %s on SQLite requires a connection that can describe tables", b.Table())
	}
	table, err := describer.Describe(ctx, conn.TablePrefix()+b.Table())
	if err != nil {
		return nil, fmt.Errorf("failed to describe table %s: %w", b.Table(), err)
	}
	return table, nil
}

// compileRecreate rebuilds the table with every change of the Blueprint that
// SQLite cannot apply in place, plus the columns the Blueprint adds. The
// remaining commands of that kind are folded into this one and skipped.
// The base sequence is six statements:
//
//	PRAGMA foreign_keys = OFF
//	create table "__temp__t" (...)
//	insert into "__temp__t" (...) select ... from "t"
//	drop table "t"
//	alter table "__temp__t" rename to "t"
//	PRAGMA foreign_keys = ON
//
// Indexes that survive the rebuild are dropped with the old table, so one
// create index per surviving index goes between the rename and the final
// PRAGMA.
//
// The sequence is not atomic. Stopping after the drop leaves only the
// shadow table behind.
func (g *SQLite) compileRecreate(ctx context.Context, b *schema.Blueprint, cmd *schema.Command, conn schema.Connection) ([]string, error) {
	described, err := g.describe(ctx, b, conn)
	if err != nil {
		return nil, err
	}
	shadow := newShadowTable(described, g)
	for _, col := range b.AddedColumns() {
		if err := shadow.add(b, col, g); err != nil {
			return nil, fmt.Errorf("table %s: %w", b.Table(), err)
		}
	}

	for _, c := range b.Commands() {
		if c != cmd && !needsRecreate(c, conn) {
			continue
		}
		if c != cmd {
			c.Skip()
		}
		switch c.Name() {
		case "change":
			for _, col := range b.ChangedColumns() {
				if err := shadow.change(b, col, g); err != nil {
					return nil, fmt.Errorf("table %s: %w", b.Table(), err)
				}
			}
		case "dropColumn":
			for _, name := range c.Columns() {
				if err := shadow.drop(name); err != nil {
					return nil, fmt.Errorf("table %s: %w", b.Table(), err)
				}
			}
		case "renameColumn":
			if err := shadow.rename(c.String("from"), c.String("to")); err != nil {
				return nil, fmt.Errorf("table %s: %w", b.Table(), err)
			}
		}
	}

	table := g.wrapBlueprint(b, conn)
	temp := g.WrapTable(b.Table(), "__temp__"+conn.TablePrefix())
	segments := strings.Split(b.Table(), ".")

	statements := []string{
		g.CompileDisableForeignKeyConstraints(),
		fmt.Sprintf("create table %s (%s)", temp, strings.Join(shadow.definitions(g), ", ")),
		fmt.Sprintf("insert into %s (%s) select %s from %s", temp, g.columnize(shadow.targets()), g.columnize(shadow.sources()), table),
		"drop table " + table,
		fmt.Sprintf("alter table %s rename to %s", temp, g.wrapValue(conn.TablePrefix()+segments[len(segments)-1])),
	}
	statements = append(statements, shadow.indexStatements(b, g, table)...)
	return append(statements, g.CompileEnableForeignKeyConstraints()), nil
}

func newShadowTable(t *catalog.Table, g *SQLite) *shadowTable {
	s := &shadowTable{
		primaryKey: append([]string(nil), t.PrimaryKey...),
		relations:  append([]catalog.Relation(nil), t.Relations...),
	}
	for _, idx := range t.Indexes {
		idx.Columns = append([]string(nil), idx.Columns...)
		s.indexes = append(s.indexes, idx)
	}
	for _, col := range t.Columns {
		def, primary := g.describedColumn(col, t)
		s.columns = append(s.columns, shadowColumn{source: col.Name, name: col.Name, definition: def, primary: primary})
	}
	return s
}

// describedColumn renders an existing column's type and modifiers.
// AUTOINCREMENT columns carry their primary key inline.
func (g *SQLite) describedColumn(col catalog.Column, t *catalog.Table) (string, bool) {
	sql := col.Type
	primary := col.AutoIncrement && len(t.PrimaryKey) == 1 && t.PrimaryKey[0] == col.Name
	if primary {
		sql += " primary key autoincrement"
	}
	if !col.Nullable {
		sql += " not null"
	}
	if col.DefaultValue != nil {
		sql += " default " + *col.DefaultValue
	}
	if col.Collation != "" {
		sql += " collate " + g.wrapValue(col.Collation)
	}
	return strings.TrimSpace(sql), primary
}

func (s *shadowTable) find(name string) (int, error) {
	for i, col := range s.columns {
		if col.name == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("column %s does not exist", name)
}

func (s *shadowTable) change(b *schema.Blueprint, col *schema.ColumnDefinition, g *SQLite) error {
	i, err := s.find(col.Name())
	if err != nil {
		return err
	}
	typ, err := g.getType(col)
	if err != nil {
		return err
	}
	def := g.addModifiers(typ, b, col)
	s.columns[i].definition = def
	s.columns[i].primary = strings.Contains(def, "primary key")
	if to := col.String("renameTo"); to != "" {
		return s.rename(col.Name(), to)
	}
	return nil
}

// add appends a column that has no rows to copy from.
func (s *shadowTable) add(b *schema.Blueprint, col *schema.ColumnDefinition, g *SQLite) error {
	if _, err := s.find(col.Name()); err == nil {
		return fmt.Errorf("column %s already exists", col.Name())
	}
	typ, err := g.getType(col)
	if err != nil {
		return err
	}
	def := g.addModifiers(typ, b, col)
	s.columns = append(s.columns, shadowColumn{name: col.Name(), definition: def, primary: strings.Contains(def, "primary key")})
	return nil
}

func (s *shadowTable) drop(name string) error {
	i, err := s.find(name)
	if err != nil {
		return err
	}
	s.columns = append(s.columns[:i], s.columns[i+1:]...)
	s.primaryKey = without(s.primaryKey, name)

	relations := s.relations[:0]
	for _, rel := range s.relations {
		if rel.SourceColumn != name {
			relations = append(relations, rel)
		}
	}
	s.relations = relations

	indexes := s.indexes[:0]
	for _, idx := range s.indexes {
		if !contains(idx.Columns, name) {
			indexes = append(indexes, idx)
		}
	}
	s.indexes = indexes
	return nil
}

func (s *shadowTable) rename(from, to string) error {
	i, err := s.find(from)
	if err != nil {
		return err
	}
	s.columns[i].name = to
	replace(s.primaryKey, from, to)
	for j := range s.relations {
		if s.relations[j].SourceColumn == from {
			s.relations[j].SourceColumn = to
		}
	}
	for j := range s.indexes {
		replace(s.indexes[j].Columns, from, to)
	}
	return nil
}

func (s *shadowTable) definitions(g *SQLite) []string {
	var out []string
	inline := false
	for _, col := range s.columns {
		out = append(out, strings.TrimSpace(g.Wrap(col.name)+" "+col.definition))
		inline = inline || col.primary
	}
	for _, rel := range s.relations {
		out = append(out, g.inlineForeignKey(
			[]string{rel.SourceColumn},
			g.wrapValue(rel.TargetTable),
			[]string{rel.TargetColumn},
			referentialAction(rel.OnDelete),
			referentialAction(rel.OnUpdate),
		))
	}
	if len(s.primaryKey) > 0 && !inline {
		out = append(out, "primary key ("+g.columnize(s.primaryKey)+")")
	}
	return out
}

func (s *shadowTable) targets() []string {
	var out []string
	for _, col := range s.columns {
		if col.source != "" {
			out = append(out, col.name)
		}
	}
	return out
}

func (s *shadowTable) sources() []string {
	var out []string
	for _, col := range s.columns {
		if col.source != "" {
			out = append(out, col.source)
		}
	}
	return out
}

// indexStatements re-creates the table's indexes. Inline UNIQUE constraints
// come back as unique indexes under the conventional name.
func (s *shadowTable) indexStatements(b *schema.Blueprint, g *SQLite, table string) []string {
	var out []string
	for _, idx := range s.indexes {
		name := idx.Name
		switch {
		case idx.Origin == "pk":
			continue
		case idx.Origin == "u" || strings.HasPrefix(name, "sqlite_autoindex_"):
			if !idx.IsUnique {
				continue
			}
			name = b.CreateIndexName("unique", idx.Columns)
		}
		create := "create index"
		if idx.IsUnique {
			create = "create unique index"
		}
		out = append(out, fmt.Sprintf("%s %s on %s (%s)", create, g.Wrap(name), table, g.columnize(idx.Columns)))
	}
	return out
}

// referentialAction drops the implicit NO ACTION reported by SQLite.
func referentialAction(action string) string {
	if strings.EqualFold(action, "no action") {
		return ""
	}
	return strings.ToLower(action)
}

func without(values []string, v string) []string {
	out := values[:0]
	for _, s := range values {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}

func replace(values []string, from, to string) {
	for i, s := range values {
		if s == from {
			values[i] = to
		}
	}
}
