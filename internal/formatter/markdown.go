package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/ddlkit/internal/catalog"
)

// MarkdownFormatter formats plans as markdown
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes the plan with one section and fenced sql block per table
func (f *MarkdownFormatter) Format(p *Plan) error {
	_, _ = fmt.Fprintf(f.writer, "# Schema Plan (%s)\n\n", p.Driver)

	for _, table := range p.Tables {
		if err := f.FormatTablePlan(table); err != nil {
			return err
		}
	}
	return nil
}

// FormatTablePlan formats a single table plan (exported for use by multifile formatter)
func (f *MarkdownFormatter) FormatTablePlan(table TablePlan) error {
	_, _ = fmt.Fprintf(f.writer, "## %s\n\n", table.Table)
	_, _ = fmt.Fprintf(f.writer, "_%s_\n\n", table.Action)

	if len(table.Statements) == 0 {
		_, err := fmt.Fprint(f.writer, "No statements.\n\n")
		return err
	}

	_, _ = fmt.Fprintln(f.writer, "```sql")
	for _, stmt := range table.Statements {
		_, _ = fmt.Fprintf(f.writer, "%s;\n", stmt)
	}
	_, err := fmt.Fprint(f.writer, "```\n\n")
	return err
}

// FormatTables writes described tables as markdown
func (f *MarkdownFormatter) FormatTables(tables []catalog.Table) error {
	_, _ = fmt.Fprintln(f.writer, "# Database Schema")
	_, _ = fmt.Fprintln(f.writer)

	for _, table := range tables {
		f.formatTable(table)
	}
	return nil
}

func (f *MarkdownFormatter) formatTable(table catalog.Table) {
	_, _ = fmt.Fprintf(f.writer, "## %s\n\n", table.Name)

	_, _ = fmt.Fprintln(f.writer, "### Columns")
	_, _ = fmt.Fprintln(f.writer)

	for _, col := range table.Columns {
		typeStr := col.Type
		if len(col.EnumValues) > 0 && !strings.Contains(col.Type, "(") {
			typeStr = fmt.Sprintf("%s (%s)", col.Type, strings.Join(col.EnumValues, "|"))
		}

		constraintStr := f.formatConstraints(col, &table)
		if constraintStr != "" {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %s, %s\n", col.Name, typeStr, constraintStr)
		} else {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %s\n", col.Name, typeStr)
		}
	}
	_, _ = fmt.Fprintln(f.writer)

	if len(table.Relations) > 0 {
		_, _ = fmt.Fprintln(f.writer, "### References")
		_, _ = fmt.Fprintln(f.writer)
		for _, rel := range table.Relations {
			_, _ = fmt.Fprintf(f.writer, "- %s → %s.%s%s\n", rel.SourceColumn, rel.TargetTable, rel.TargetColumn, actions(rel))
		}
		_, _ = fmt.Fprintln(f.writer)
	}

	if len(table.Indexes) > 0 {
		_, _ = fmt.Fprintln(f.writer, "### Indexes")
		_, _ = fmt.Fprintln(f.writer)
		for _, idx := range table.Indexes {
			if idx.IsUnique {
				_, _ = fmt.Fprintf(f.writer, "- %s on (%s), unique\n", idx.Name, strings.Join(idx.Columns, ", "))
			} else {
				_, _ = fmt.Fprintf(f.writer, "- %s on (%s)\n", idx.Name, strings.Join(idx.Columns, ", "))
			}
		}
		_, _ = fmt.Fprintln(f.writer)
	}
}

func (f *MarkdownFormatter) formatConstraints(col catalog.Column, table *catalog.Table) string {
	var constraints []string

	if table.IsPrimaryKey(col.Name) {
		constraints = append(constraints, "PK")
	}
	if col.AutoIncrement {
		constraints = append(constraints, "AUTO_INCREMENT")
	}
	if col.IsUnique {
		constraints = append(constraints, "UNIQUE")
	}
	if !col.Nullable {
		constraints = append(constraints, "NOT NULL")
	}
	if col.DefaultValue != nil {
		constraints = append(constraints, fmt.Sprintf("DEFAULT %s", *col.DefaultValue))
	}
	if col.Comment != "" {
		constraints = append(constraints, fmt.Sprintf("%q", col.Comment))
	}

	return strings.Join(constraints, ", ")
}
