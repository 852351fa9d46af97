// Package formatter renders compiled schema plans and described tables.
package formatter

import (
	"fmt"
	"io"

	"github.com/tordrt/ddlkit/internal/catalog"
)

const (
	formatMarkdown = "markdown"
	formatText     = "text"
)

// TablePlan is the compiled output of one Blueprint.
type TablePlan struct {
	Table      string
	Action     string // "create" or "alter"
	Statements []string
}

// Plan is an ordered list of compiled Blueprints for one driver.
type Plan struct {
	Driver string
	Tables []TablePlan
}

// StatementCount returns the number of statements across all tables.
func (p *Plan) StatementCount() int {
	n := 0
	for _, t := range p.Tables {
		n += len(t.Statements)
	}
	return n
}

// Formatter writes plans and described tables.
type Formatter interface {
	Format(p *Plan) error
	FormatTables(tables []catalog.Table) error
}

// New returns the single-stream formatter for format ("text" or "markdown").
func New(format string, w io.Writer) (Formatter, error) {
	switch format {
	case "", formatText:
		return NewTextFormatter(w), nil
	case formatMarkdown:
		return NewMarkdownFormatter(w), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (use text or markdown)", format)
	}
}
