// Package catalog describes tables that already exist in a database.
package catalog

// Table represents a database table as read back from the server
type Table struct {
	Name       string
	Columns    []Column
	Relations  []Relation
	Indexes    []Index
	PrimaryKey []string
}

// Column represents a table column
type Column struct {
	Name          string
	Type          string
	Nullable      bool
	DefaultValue  *string
	IsUnique      bool
	AutoIncrement bool
	EnumValues    []string
	Collation     string
	Comment       string
}

// Relation represents a foreign key constraint
type Relation struct {
	Name         string
	SourceColumn string
	TargetTable  string
	TargetColumn string
	OnDelete     string
	OnUpdate     string
}

// Index represents a database index other than the primary key
type Index struct {
	Name     string
	Columns  []string
	IsUnique bool
	// Origin is "c" for CREATE INDEX and "u" for inline UNIQUE constraints
	// where the engine reports it (SQLite); empty otherwise.
	Origin string
}

// Column returns the column with the given name.
func (t *Table) Column(name string) (*Column, bool) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// ColumnNames returns the column names in ordinal order.
func (t *Table) ColumnNames() []string {
	names := make([]string, 0, len(t.Columns))
	for _, col := range t.Columns {
		names = append(names, col.Name)
	}
	return names
}

// Index returns the index with the given name.
func (t *Table) Index(name string) (*Index, bool) {
	for i := range t.Indexes {
		if t.Indexes[i].Name == name {
			return &t.Indexes[i], true
		}
	}
	return nil, false
}

// IsPrimaryKey reports whether column is part of the primary key.
func (t *Table) IsPrimaryKey(column string) bool {
	for _, pk := range t.PrimaryKey {
		if pk == column {
			return true
		}
	}
	return false
}
