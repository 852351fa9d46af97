// Package schemafile reads HCL schema documents into Blueprint definitions.
//
// A document is a sequence of top-level blocks, applied in order:
//
//	table "users" {
//	  column "id" { type = "id" }
//	  column "email" {
//	    type   = "string"
//	    unique = true
//	  }
//	}
//
//	alter "posts" {
//	  column "user_id" {
//	    type        = "foreign_id"
//	    constrained = true
//	    on_delete   = "cascade"
//	  }
//	  drop_columns = ["legacy"]
//	}
//
//	drop "sessions" { if_exists = true }
package schemafile

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/tordrt/ddlkit/internal/schema"
)

// Block actions.
const (
	ActionCreate = "create"
	ActionAlter  = "alter"
	ActionDrop   = "drop"
)

var blockActions = map[string]string{
	"table": ActionCreate,
	"alter": ActionAlter,
	"drop":  ActionDrop,
}

// Definition is one top-level block: the table it targets and the callback
// that populates its Blueprint.
type Definition struct {
	Table  string
	Action string
	Range  hcl.Range
	Define func(b *schema.Blueprint)
}

// Load parses the schema files at paths, in order.
func Load(paths ...string) ([]Definition, error) {
	parser := hclparse.NewParser()
	var defs []Definition
	for _, path := range paths {
		file, diags := parser.ParseHCLFile(path)
		if diags.HasErrors() {
			return nil, diags
		}
		parsed, err := decodeFile(file)
		if err != nil {
			return nil, err
		}
		defs = append(defs, parsed...)
	}
	return defs, nil
}

// Parse parses one schema document. filename is used in error messages.
func Parse(data []byte, filename string) ([]Definition, error) {
	file, diags := hclparse.NewParser().ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, diags
	}
	return decodeFile(file)
}

func decodeFile(file *hcl.File) ([]Definition, error) {
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("schemafile: expected native HCL syntax")
	}
	for name, attr := range body.Attributes {
		return nil, fmt.Errorf("%s: unexpected top-level attribute %q", attr.SrcRange, name)
	}

	defs := make([]Definition, 0, len(body.Blocks))
	for _, block := range body.Blocks {
		action, ok := blockActions[block.Type]
		if !ok {
			return nil, fmt.Errorf("%s: unknown block type %q (use table, alter or drop)", block.TypeRange, block.Type)
		}
		if len(block.Labels) != 1 {
			return nil, fmt.Errorf("%s: %s block needs exactly one label, the table name", block.TypeRange, block.Type)
		}

		spec := &tableSpec{}
		if diags := gohcl.DecodeBody(block.Body, nil, spec); diags.HasErrors() {
			return nil, diags
		}
		table := block.Labels[0]
		if err := spec.validate(action); err != nil {
			return nil, fmt.Errorf("%s: table %s: %w", block.TypeRange, table, err)
		}

		defs = append(defs, Definition{
			Table:  table,
			Action: action,
			Range:  block.Range(),
			Define: func(b *schema.Blueprint) { spec.define(b, action) },
		})
	}
	return defs, nil
}

func (t *tableSpec) validate(action string) error {
	if action == ActionDrop {
		if len(t.Columns) > 0 || len(t.DropColumns) > 0 {
			return fmt.Errorf("drop blocks take no columns")
		}
		return nil
	}
	for _, c := range t.Columns {
		if _, ok := columnTypes[c.Type]; !ok {
			return fmt.Errorf("column %s: unknown type %q", c.Name, c.Type)
		}
		if _, err := c.defaultValue(); err != nil {
			return fmt.Errorf("column %s: %w", c.Name, err)
		}
		if c.Type == "computed" && c.Expression == "" {
			return fmt.Errorf("column %s: computed columns need an expression", c.Name)
		}
	}
	if t.Primary != nil && len(t.Primary.Columns) == 0 {
		return fmt.Errorf("primary block needs columns")
	}
	return nil
}

func (t *tableSpec) define(b *schema.Blueprint, action string) {
	switch action {
	case ActionDrop:
		if t.IfExists {
			b.DropIfExists()
		} else {
			b.Drop()
		}
		return
	case ActionCreate:
		b.Create()
		if t.Temporary {
			b.Temporary()
		}
	}

	b.Engine = t.Engine
	b.Charset = t.Charset
	b.Collation = t.Collation

	for _, c := range t.Columns {
		c.apply(columnTypes[c.Type](b, c))
	}

	if t.Primary != nil {
		t.Primary.apply(b.Primary(t.Primary.Columns...))
	}
	for _, idx := range t.Uniques {
		idx.apply(b.Unique(idx.Columns...))
	}
	for _, idx := range t.Indexes {
		idx.apply(b.Index(idx.Columns...))
	}
	for _, idx := range t.Fulltexts {
		idx.apply(b.Fulltext(idx.Columns...))
	}
	for _, idx := range t.SpatialIndexes {
		idx.apply(b.SpatialIndex(idx.Columns...))
	}
	for _, fk := range t.Foreigns {
		fk.apply(b.Foreign(fk.Columns...))
	}

	for _, r := range t.RenameColumns {
		b.RenameColumn(r.From, r.To)
	}
	if len(t.DropColumns) > 0 {
		b.DropColumn(t.DropColumns...)
	}
	for _, r := range t.RenameIndexes {
		b.RenameIndex(r.From, r.To)
	}
	if t.DropPrimary {
		b.DropPrimary()
	}
	for _, name := range t.DropUniques {
		b.DropUnique(name)
	}
	for _, name := range t.DropIndexes {
		b.DropIndex(name)
	}
	for _, name := range t.DropForeigns {
		b.DropForeign(name)
	}

	if t.Comment != "" {
		b.Comment(t.Comment)
	}
	if t.RenameTo != "" {
		b.Rename(t.RenameTo)
	}
}

func (c *columnSpec) apply(col *schema.ColumnDefinition) {
	if c.Unsigned {
		col.Unsigned()
	}
	if c.AutoIncrement {
		col.AutoIncrement()
	}
	if c.Nullable {
		col.Nullable()
	}
	if v, _ := c.defaultValue(); v != nil {
		col.Default(v)
	}
	if c.Primary {
		col.Primary()
	}
	if c.Unique {
		col.Unique()
	}
	if c.Index {
		col.Index()
	}
	if c.Comment != "" {
		col.Comment(c.Comment)
	}
	if c.Charset != "" {
		col.Charset(c.Charset)
	}
	if c.Collation != "" {
		col.Collation(c.Collation)
	}
	if c.After != "" {
		col.After(c.After)
	}
	if c.First {
		col.First()
	}
	if c.UseCurrent {
		col.UseCurrent()
	}
	if c.UseCurrentOnUpdate {
		col.UseCurrentOnUpdate()
	}
	if c.VirtualAs != "" {
		col.VirtualAs(c.VirtualAs)
	}
	if c.StoredAs != "" {
		col.StoredAs(c.StoredAs)
	}
	if c.GeneratedAs != nil {
		if *c.GeneratedAs == "" {
			col.GeneratedAs()
		} else {
			col.GeneratedAs(*c.GeneratedAs)
		}
	}
	if c.Always {
		col.Always()
	}
	if c.Invisible {
		col.Invisible()
	}
	if c.From != nil {
		col.From(*c.From)
	}

	switch {
	case c.References != "":
		table, column, _ := strings.Cut(c.References, ".")
		col.Constrained(table, column)
	case c.Constrained:
		col.Constrained()
	}
	if c.OnDelete != "" {
		col.Set("constrainedOnDelete", strings.ToLower(c.OnDelete))
	}
	if c.OnUpdate != "" {
		col.Set("constrainedOnUpdate", strings.ToLower(c.OnUpdate))
	}

	if c.SRID != nil {
		col.SRID(*c.SRID)
	}
	if c.IsGeometry {
		col.IsGeometry()
	}
	if c.Projection != nil {
		col.Projection(*c.Projection)
	}
	if c.RenameTo != "" {
		col.RenameTo(c.RenameTo)
	}
	if c.Change {
		col.Change()
	}
}

// defaultValue converts the default attribute to a Go value. default_raw
// takes precedence and is emitted verbatim.
func (c *columnSpec) defaultValue() (any, error) {
	if c.DefaultRaw != "" {
		return schema.Raw(c.DefaultRaw), nil
	}
	v := c.Default
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsKnown() {
		return nil, fmt.Errorf("default must be a known value")
	}
	switch v.Type() {
	case cty.String:
		return v.AsString(), nil
	case cty.Bool:
		return v.True(), nil
	case cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return int(i), nil
			}
		}
		f, _ := bf.Float64()
		return f, nil
	default:
		return nil, fmt.Errorf("unsupported default of type %s", v.Type().FriendlyName())
	}
}

func (d *indexSpec) apply(idx *schema.IndexDefinition) {
	if d.Name != "" {
		idx.As(d.Name)
	}
	if d.Algorithm != "" {
		idx.Algorithm(d.Algorithm)
	}
	if d.Language != "" {
		idx.Language(d.Language)
	}
	if d.Deferrable {
		idx.Deferrable()
	}
	if d.InitiallyImmediate != nil {
		idx.InitiallyImmediate(*d.InitiallyImmediate)
	}
}

func (f *foreignSpec) apply(fk *schema.ForeignKeyDefinition) {
	if f.Name != "" {
		fk.As(f.Name)
	}
	references := f.References
	if len(references) == 0 {
		references = []string{"id"}
	}
	fk.References(references...).On(f.On)
	if f.OnDelete != "" {
		fk.OnDelete(f.OnDelete)
	}
	if f.OnUpdate != "" {
		fk.OnUpdate(f.OnUpdate)
	}
	if f.Deferrable {
		fk.Deferrable()
	}
	if f.NotValid {
		fk.NotValid()
	}
}
