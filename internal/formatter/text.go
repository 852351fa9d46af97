package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/ddlkit/internal/catalog"
)

// TextFormatter formats plans as plain SQL scripts
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes every statement terminated by ";", one per line, with a
// comment header and a blank line between tables
func (f *TextFormatter) Format(p *Plan) error {
	for i, table := range p.Tables {
		if i > 0 {
			_, _ = fmt.Fprintln(f.writer) // Blank line between tables
		}
		if err := f.formatTablePlan(table); err != nil {
			return err
		}
	}
	return nil
}

func (f *TextFormatter) formatTablePlan(table TablePlan) error {
	if _, err := fmt.Fprintf(f.writer, "-- %s %s\n", table.Action, table.Table); err != nil {
		return err
	}
	for _, stmt := range table.Statements {
		if _, err := fmt.Fprintf(f.writer, "%s;\n", stmt); err != nil {
			return err
		}
	}
	return nil
}

// FormatTables writes described tables in compact text format
func (f *TextFormatter) FormatTables(tables []catalog.Table) error {
	for i, table := range tables {
		if i > 0 {
			_, _ = fmt.Fprintln(f.writer)
		}
		f.formatTable(table)
	}
	return nil
}

func (f *TextFormatter) formatTable(table catalog.Table) {
	// Table header with primary key
	pkStr := ""
	if len(table.PrimaryKey) > 0 {
		pkStr = fmt.Sprintf(" (PK: %s)", strings.Join(table.PrimaryKey, ", "))
	}
	_, _ = fmt.Fprintf(f.writer, "TABLE %s%s\n", table.Name, pkStr)

	for _, col := range table.Columns {
		_, _ = fmt.Fprintf(f.writer, "  %s\n", formatColumn(col))
	}

	if len(table.Relations) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "  RELATIONS:")
		for _, rel := range table.Relations {
			_, _ = fmt.Fprintf(f.writer, "    %s → %s.%s%s\n", rel.SourceColumn, rel.TargetTable, rel.TargetColumn, actions(rel))
		}
	}

	if len(table.Indexes) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "  INDEXES:")
		for _, idx := range table.Indexes {
			unique := ""
			if idx.IsUnique {
				unique = " UNIQUE"
			}
			_, _ = fmt.Fprintf(f.writer, "    %s (%s)%s\n", idx.Name, strings.Join(idx.Columns, ", "), unique)
		}
	}
}

func formatColumn(col catalog.Column) string {
	parts := []string{col.Name + ":"}

	typeStr := col.Type
	if len(col.EnumValues) > 0 && !strings.Contains(col.Type, "(") {
		typeStr = fmt.Sprintf("%s (%s)", col.Type, strings.Join(col.EnumValues, "|"))
	}
	parts = append(parts, typeStr)

	if col.AutoIncrement {
		parts = append(parts, "AUTO_INCREMENT")
	}
	if col.IsUnique {
		parts = append(parts, "UNIQUE")
	}
	if !col.Nullable {
		parts = append(parts, "NOT NULL")
	}
	if col.DefaultValue != nil {
		parts = append(parts, fmt.Sprintf("DEFAULT %s", *col.DefaultValue))
	}

	return strings.Join(parts, " ")
}

// actions describes non-default referential actions
func actions(rel catalog.Relation) string {
	var parts []string
	if rel.OnDelete != "" && !strings.EqualFold(rel.OnDelete, "NO ACTION") {
		parts = append(parts, "on delete "+strings.ToLower(rel.OnDelete))
	}
	if rel.OnUpdate != "" && !strings.EqualFold(rel.OnUpdate, "NO ACTION") {
		parts = append(parts, "on update "+strings.ToLower(rel.OnUpdate))
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}
