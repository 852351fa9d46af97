package schema

// Command is a named structural operation on a table, such as create, add,
// unique or dropColumn. Parameters live in the embedded attribute record.
type Command struct {
	*Attributes
}

// NewCommand creates a command with the given name and parameters.
func NewCommand(name string, params map[string]any) *Command {
	c := &Command{Attributes: &Attributes{}}
	c.Set("name", name)
	extra := NewAttributes(params)
	for _, k := range extra.Keys() {
		c.Set(k, extra.Get(k, nil))
	}
	return c
}

// Name returns the command name.
func (c *Command) Name() string { return c.String("name") }

// Columns returns the columns the command applies to.
func (c *Command) Columns() []string { return c.Strings("columns") }

// IndexName returns the index or constraint name of an index-family command.
func (c *Command) IndexName() string { return c.String("index") }

// Column returns the column carried by column-scoped commands such as
// comment or autoIncrementStartingValues.
func (c *Command) Column() *ColumnDefinition {
	col, _ := c.Get("column", nil).(*ColumnDefinition)
	return col
}

// Skip marks the command as already compiled into another statement.
func (c *Command) Skip() {
	c.Set("shouldBeSkipped", true)
}

// Skipped reports whether the command was consumed by another statement.
func (c *Command) Skipped() bool {
	return c.Bool("shouldBeSkipped")
}

// IndexDefinition is a primary, unique, index, fulltext or spatialIndex command.
type IndexDefinition struct {
	*Command
}

// As overrides the generated index name.
func (d *IndexDefinition) As(name string) *IndexDefinition {
	d.Set("index", name)
	return d
}

// Algorithm sets the index method, e.g. btree, hash or gin.
func (d *IndexDefinition) Algorithm(algorithm string) *IndexDefinition {
	d.Set("algorithm", algorithm)
	return d
}

// Language sets the text search configuration of a PostgreSQL fulltext index.
func (d *IndexDefinition) Language(language string) *IndexDefinition {
	d.Set("language", language)
	return d
}

func (d *IndexDefinition) Deferrable(value ...bool) *IndexDefinition {
	d.Set("deferrable", optBool(value))
	return d
}

func (d *IndexDefinition) InitiallyImmediate(value ...bool) *IndexDefinition {
	d.Set("initiallyImmediate", optBool(value))
	return d
}

// ForeignKeyDefinition is a foreign command under construction.
type ForeignKeyDefinition struct {
	*Command
}

// As overrides the generated constraint name.
func (f *ForeignKeyDefinition) As(name string) *ForeignKeyDefinition {
	f.Set("index", name)
	return f
}

// References sets the referenced columns.
func (f *ForeignKeyDefinition) References(columns ...string) *ForeignKeyDefinition {
	f.Set("references", columns)
	return f
}

// On sets the referenced table.
func (f *ForeignKeyDefinition) On(table string) *ForeignKeyDefinition {
	f.Set("on", table)
	return f
}

func (f *ForeignKeyDefinition) OnDelete(action string) *ForeignKeyDefinition {
	f.Set("onDelete", action)
	return f
}

func (f *ForeignKeyDefinition) OnUpdate(action string) *ForeignKeyDefinition {
	f.Set("onUpdate", action)
	return f
}

func (f *ForeignKeyDefinition) CascadeOnDelete() *ForeignKeyDefinition {
	return f.OnDelete("cascade")
}

func (f *ForeignKeyDefinition) RestrictOnDelete() *ForeignKeyDefinition {
	return f.OnDelete("restrict")
}

func (f *ForeignKeyDefinition) NullOnDelete() *ForeignKeyDefinition {
	return f.OnDelete("set null")
}

func (f *ForeignKeyDefinition) NoActionOnDelete() *ForeignKeyDefinition {
	return f.OnDelete("no action")
}

func (f *ForeignKeyDefinition) CascadeOnUpdate() *ForeignKeyDefinition {
	return f.OnUpdate("cascade")
}

func (f *ForeignKeyDefinition) RestrictOnUpdate() *ForeignKeyDefinition {
	return f.OnUpdate("restrict")
}

// Deferrable marks the constraint deferrable (PostgreSQL).
func (f *ForeignKeyDefinition) Deferrable(value ...bool) *ForeignKeyDefinition {
	f.Set("deferrable", optBool(value))
	return f
}

func (f *ForeignKeyDefinition) InitiallyImmediate(value ...bool) *ForeignKeyDefinition {
	f.Set("initiallyImmediate", optBool(value))
	return f
}

// NotValid skips validation of existing rows (PostgreSQL).
func (f *ForeignKeyDefinition) NotValid() *ForeignKeyDefinition {
	f.Set("notValid", true)
	return f
}
