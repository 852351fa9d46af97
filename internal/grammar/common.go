package grammar

import (
	"context"
	"fmt"

	"github.com/tordrt/ddlkit/internal/schema"
)

func (g *base) compileDrop(_ context.Context, b *schema.Blueprint, _ *schema.Command, conn schema.Connection) ([]string, error) {
	return one("drop table " + g.wrapBlueprint(b, conn)), nil
}

func (g *base) compileDropIfExists(_ context.Context, b *schema.Blueprint, _ *schema.Command, conn schema.Connection) ([]string, error) {
	return one("drop table if exists " + g.wrapBlueprint(b, conn)), nil
}

// foreignKey renders the portable part of a foreign key constraint.
func (g *base) foreignKey(b *schema.Blueprint, cmd *schema.Command, conn schema.Connection) string {
	sql := fmt.Sprintf("alter table %s add constraint %s foreign key (%s) references %s (%s)",
		g.wrapBlueprint(b, conn),
		g.Wrap(cmd.IndexName()),
		g.columnize(cmd.Columns()),
		g.WrapTable(cmd.String("on"), conn.TablePrefix()),
		g.columnize(cmd.Strings("references")),
	)
	if v := cmd.String("onDelete"); v != "" {
		sql += " on delete " + v
	}
	if v := cmd.String("onUpdate"); v != "" {
		sql += " on update " + v
	}
	return sql
}

func (g *base) compileForeign(_ context.Context, b *schema.Blueprint, cmd *schema.Command, conn schema.Connection) ([]string, error) {
	return one(g.foreignKey(b, cmd, conn)), nil
}

// startingValue returns the starting value of an autoIncrementStartingValues
// command, or false when the column does not auto-increment.
func startingValue(cmd *schema.Command) (int, bool) {
	col := cmd.Column()
	if col == nil || !col.Bool("autoIncrement") {
		return 0, false
	}
	if v, ok := col.Int("startingValue"); ok {
		return v, true
	}
	return col.Int("from")
}

func precision(col *schema.ColumnDefinition) int {
	p, _ := col.Int("precision")
	return p
}

func modifyVirtualAs(_ *schema.Blueprint, col *schema.ColumnDefinition) string {
	if expr := col.String("virtualAs"); expr != "" {
		return fmt.Sprintf(" as (%s)", expr)
	}
	return ""
}

func modifyStoredAs(_ *schema.Blueprint, col *schema.ColumnDefinition) string {
	if expr := col.String("storedAs"); expr != "" {
		return fmt.Sprintf(" as (%s) stored", expr)
	}
	return ""
}

// isGenerated reports whether the column value comes from an expression or
// an identity sequence.
func isGenerated(col *schema.ColumnDefinition) bool {
	return col.String("virtualAs") != "" || col.String("storedAs") != "" || col.Has("generatedAs")
}

// forcedNotNull reports whether Nullable(false) was called explicitly.
func forcedNotNull(col *schema.ColumnDefinition) bool {
	return col.Has("nullable") && !col.Bool("nullable")
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
