package schema

// ColumnDefinition is a column pending in a Blueprint. Every setter stores
// exactly one attribute and returns the same definition for chaining.
type ColumnDefinition struct {
	*Attributes
}

// NewColumnDefinition creates a column of the given type with extra parameters
// such as length, precision, scale or allowed.
func NewColumnDefinition(typ, name string, params map[string]any) *ColumnDefinition {
	c := &ColumnDefinition{Attributes: &Attributes{}}
	c.Set("type", typ)
	c.Set("name", name)
	extra := NewAttributes(params)
	for _, k := range extra.Keys() {
		c.Set(k, extra.Get(k, nil))
	}
	return c
}

// Name returns the column name.
func (c *ColumnDefinition) Name() string { return c.String("name") }

// Type returns the column type tag.
func (c *ColumnDefinition) Type() string { return c.String("type") }

func optBool(value []bool) bool {
	if len(value) == 0 {
		return true
	}
	return value[0]
}

// flag stores true, or the explicit index name when one is given.
func flag(name []string) any {
	if len(name) > 0 && name[0] != "" {
		return name[0]
	}
	return true
}

// Nullable allows NULL values. Nullable(false) forces NOT NULL.
func (c *ColumnDefinition) Nullable(value ...bool) *ColumnDefinition {
	c.Set("nullable", optBool(value))
	return c
}

// Default sets the default value. Use Raw for SQL expressions.
func (c *ColumnDefinition) Default(value any) *ColumnDefinition {
	c.Set("default", value)
	return c
}

func (c *ColumnDefinition) Unsigned() *ColumnDefinition {
	c.Set("unsigned", true)
	return c
}

func (c *ColumnDefinition) AutoIncrement() *ColumnDefinition {
	c.Set("autoIncrement", true)
	return c
}

// Primary marks the column as the primary key, optionally naming the index.
func (c *ColumnDefinition) Primary(name ...string) *ColumnDefinition {
	c.Set("primary", flag(name))
	return c
}

// Unique adds a unique index on the column, optionally naming it.
func (c *ColumnDefinition) Unique(name ...string) *ColumnDefinition {
	c.Set("unique", flag(name))
	return c
}

// Index adds a plain index on the column, optionally naming it.
func (c *ColumnDefinition) Index(name ...string) *ColumnDefinition {
	c.Set("index", flag(name))
	return c
}

func (c *ColumnDefinition) Fulltext(name ...string) *ColumnDefinition {
	c.Set("fulltext", flag(name))
	return c
}

func (c *ColumnDefinition) SpatialIndex(name ...string) *ColumnDefinition {
	c.Set("spatialIndex", flag(name))
	return c
}

func (c *ColumnDefinition) Comment(comment string) *ColumnDefinition {
	c.Set("comment", comment)
	return c
}

func (c *ColumnDefinition) Charset(charset string) *ColumnDefinition {
	c.Set("charset", charset)
	return c
}

func (c *ColumnDefinition) Collation(collation string) *ColumnDefinition {
	c.Set("collation", collation)
	return c
}

// After places the column after another column (MySQL).
func (c *ColumnDefinition) After(column string) *ColumnDefinition {
	c.Set("after", column)
	return c
}

// First places the column first in the table (MySQL).
func (c *ColumnDefinition) First() *ColumnDefinition {
	c.Set("first", true)
	return c
}

// Change marks the column as a modification of an existing column.
func (c *ColumnDefinition) Change() *ColumnDefinition {
	c.Set("change", true)
	return c
}

// RenameTo renames the column while changing it (MySQL).
func (c *ColumnDefinition) RenameTo(name string) *ColumnDefinition {
	c.Set("renameTo", name)
	return c
}

// UseCurrent defaults a timestamp column to CURRENT_TIMESTAMP.
func (c *ColumnDefinition) UseCurrent() *ColumnDefinition {
	c.Set("useCurrent", true)
	return c
}

// UseCurrentOnUpdate refreshes a timestamp column on update (MySQL).
func (c *ColumnDefinition) UseCurrentOnUpdate() *ColumnDefinition {
	c.Set("useCurrentOnUpdate", true)
	return c
}

// OnUpdate sets the expression assigned on row update (MySQL).
func (c *ColumnDefinition) OnUpdate(expression string) *ColumnDefinition {
	c.Set("onUpdate", Expression(expression))
	return c
}

// VirtualAs makes the column a virtual generated column.
func (c *ColumnDefinition) VirtualAs(expression string) *ColumnDefinition {
	c.Set("virtualAs", expression)
	return c
}

// StoredAs makes the column a stored generated column.
func (c *ColumnDefinition) StoredAs(expression string) *ColumnDefinition {
	c.Set("storedAs", expression)
	return c
}

// GeneratedAs makes the column an identity column (PostgreSQL). The optional
// argument holds sequence options.
func (c *ColumnDefinition) GeneratedAs(sequence ...string) *ColumnDefinition {
	if len(sequence) > 0 && sequence[0] != "" {
		c.Set("generatedAs", sequence[0])
	} else {
		c.Set("generatedAs", true)
	}
	return c
}

// Always makes an identity column GENERATED ALWAYS instead of BY DEFAULT.
func (c *ColumnDefinition) Always(value ...bool) *ColumnDefinition {
	c.Set("always", optBool(value))
	return c
}

func (c *ColumnDefinition) Invisible() *ColumnDefinition {
	c.Set("invisible", true)
	return c
}

// From sets the starting value of an auto-increment column.
func (c *ColumnDefinition) From(start int) *ColumnDefinition {
	c.Set("from", start)
	return c
}

// StartingValue is an alias for From.
func (c *ColumnDefinition) StartingValue(start int) *ColumnDefinition {
	c.Set("startingValue", start)
	return c
}

// Persisted marks a computed column as persisted.
func (c *ColumnDefinition) Persisted() *ColumnDefinition {
	c.Set("persisted", true)
	return c
}

// Constrained adds a foreign key for the column. The referenced table and
// column are inferred from the column name unless given.
func (c *ColumnDefinition) Constrained(tableAndColumn ...string) *ColumnDefinition {
	c.Set("constrained", true)
	if len(tableAndColumn) > 0 && tableAndColumn[0] != "" {
		c.Set("constrainedTable", tableAndColumn[0])
	}
	if len(tableAndColumn) > 1 && tableAndColumn[1] != "" {
		c.Set("constrainedColumn", tableAndColumn[1])
	}
	return c
}

func (c *ColumnDefinition) CascadeOnDelete() *ColumnDefinition {
	c.Set("constrainedOnDelete", "cascade")
	return c
}

func (c *ColumnDefinition) RestrictOnDelete() *ColumnDefinition {
	c.Set("constrainedOnDelete", "restrict")
	return c
}

func (c *ColumnDefinition) NullOnDelete() *ColumnDefinition {
	c.Set("constrainedOnDelete", "set null")
	return c
}

func (c *ColumnDefinition) CascadeOnUpdate() *ColumnDefinition {
	c.Set("constrainedOnUpdate", "cascade")
	return c
}

func (c *ColumnDefinition) RestrictOnUpdate() *ColumnDefinition {
	c.Set("constrainedOnUpdate", "restrict")
	return c
}

// SRID sets the spatial reference system of a spatial column (MySQL).
func (c *ColumnDefinition) SRID(srid int) *ColumnDefinition {
	c.Set("srid", srid)
	return c
}

// IsGeometry stores a spatial column as geometry rather than geography
// (PostgreSQL).
func (c *ColumnDefinition) IsGeometry() *ColumnDefinition {
	c.Set("isGeometry", true)
	return c
}

// Projection sets the SRID of a PostGIS column.
func (c *ColumnDefinition) Projection(srid int) *ColumnDefinition {
	c.Set("projection", srid)
	return c
}
