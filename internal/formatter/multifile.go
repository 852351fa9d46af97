package formatter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tordrt/ddlkit/internal/catalog"
)

// MultiFileFormatter writes a plan to multiple files in a directory
type MultiFileFormatter struct {
	OutputDir    string
	OutputFormat string // "text" or "markdown"
}

// NewMultiFileFormatter creates a new multi-file formatter
func NewMultiFileFormatter(outputDir, format string) *MultiFileFormatter {
	return &MultiFileFormatter{
		OutputDir:    outputDir,
		OutputFormat: format,
	}
}

// Format writes an overview plus one file per table plan. Files are numbered
// in apply order because a plan may touch the same table more than once.
func (f *MultiFileFormatter) Format(p *Plan) error {
	if err := os.MkdirAll(f.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := f.writeOverview(p); err != nil {
		return fmt.Errorf("failed to write overview: %w", err)
	}

	for i, table := range p.Tables {
		if err := f.writeTablePlanFile(i, table); err != nil {
			return fmt.Errorf("failed to write plan file for %s: %w", table.Table, err)
		}
	}

	return nil
}

// FormatTables writes one file per described table plus an overview
func (f *MultiFileFormatter) FormatTables(tables []catalog.Table) error {
	if err := os.MkdirAll(f.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, table := range tables {
		err := f.writeFile(table.Name+f.describeExtension(), func(file *os.File) error {
			if f.OutputFormat == formatMarkdown {
				NewMarkdownFormatter(file).formatTable(table)
				return nil
			}
			NewTextFormatter(file).formatTable(table)
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to write table file for %s: %w", table.Name, err)
		}
	}

	return f.writeFile("_overview"+f.describeExtension(), func(file *os.File) error {
		for _, table := range tables {
			_, _ = fmt.Fprintf(file, "%s", table.Name)
			if len(table.Relations) > 0 {
				var targets []string
				for _, rel := range table.Relations {
					targets = append(targets, rel.TargetTable)
				}
				_, _ = fmt.Fprintf(file, " (references: %s)", strings.Join(targets, ", "))
			}
			_, _ = fmt.Fprintln(file)
		}
		return nil
	})
}

// writeOverview writes the overview file
func (f *MultiFileFormatter) writeOverview(p *Plan) error {
	return f.writeFile("_overview"+f.getFileExtension(), func(file *os.File) error {
		if f.OutputFormat == formatMarkdown {
			_, _ = fmt.Fprintf(file, "# Schema Plan Overview (%s)\n\n", p.Driver)
			_, _ = fmt.Fprintf(file, "Apply the files in order. %d statements in total.\n\n", p.StatementCount())
			for i, table := range p.Tables {
				_, _ = fmt.Fprintf(file, "- `%s` **%s** %s (%d statements)\n", f.planFileName(i, table), table.Table, table.Action, len(table.Statements))
			}
			return nil
		}

		_, _ = fmt.Fprintf(file, "-- SCHEMA PLAN OVERVIEW (%s)\n", p.Driver)
		_, _ = fmt.Fprintf(file, "-- Apply the files in order. %d statements in total.\n", p.StatementCount())
		for i, table := range p.Tables {
			_, _ = fmt.Fprintf(file, "-- %s: %s %s (%d)\n", f.planFileName(i, table), table.Action, table.Table, len(table.Statements))
		}
		return nil
	})
}

// writeTablePlanFile writes a single table plan to its own file
func (f *MultiFileFormatter) writeTablePlanFile(i int, table TablePlan) error {
	return f.writeFile(f.planFileName(i, table), func(file *os.File) error {
		if f.OutputFormat == formatMarkdown {
			return NewMarkdownFormatter(file).FormatTablePlan(table)
		}
		return NewTextFormatter(file).formatTablePlan(table)
	})
}

func (f *MultiFileFormatter) writeFile(name string, write func(file *os.File) error) error {
	file, err := os.Create(filepath.Join(f.OutputDir, name))
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	return write(file)
}

func (f *MultiFileFormatter) planFileName(i int, table TablePlan) string {
	name := strings.ReplaceAll(table.Table, string(filepath.Separator), "_")
	return fmt.Sprintf("%03d_%s_%s%s", i+1, table.Action, name, f.getFileExtension())
}

func (f *MultiFileFormatter) getFileExtension() string {
	if f.OutputFormat == formatMarkdown {
		return ".md"
	}
	return ".sql"
}

func (f *MultiFileFormatter) describeExtension() string {
	if f.OutputFormat == formatMarkdown {
		return ".md"
	}
	return ".txt"
}
