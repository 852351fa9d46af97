package schemafile

import (
	"github.com/zclconf/go-cty/cty"
)

// tableSpec is the body of a table, alter or drop block.
type tableSpec struct {
	Engine    string `hcl:"engine,optional"`
	Charset   string `hcl:"charset,optional"`
	Collation string `hcl:"collation,optional"`
	Comment   string `hcl:"comment,optional"`
	Temporary bool   `hcl:"temporary,optional"`
	IfExists  bool   `hcl:"if_exists,optional"`
	RenameTo  string `hcl:"rename_to,optional"`

	Columns        []*columnSpec  `hcl:"column,block"`
	Primary        *indexSpec     `hcl:"primary,block"`
	Uniques        []*indexSpec   `hcl:"unique,block"`
	Indexes        []*indexSpec   `hcl:"index,block"`
	Fulltexts      []*indexSpec   `hcl:"fulltext,block"`
	SpatialIndexes []*indexSpec   `hcl:"spatial_index,block"`
	Foreigns       []*foreignSpec `hcl:"foreign,block"`
	RenameColumns  []*renameSpec  `hcl:"rename_column,block"`
	RenameIndexes  []*renameSpec  `hcl:"rename_index,block"`

	DropColumns  []string `hcl:"drop_columns,optional"`
	DropPrimary  bool     `hcl:"drop_primary,optional"`
	DropUniques  []string `hcl:"drop_uniques,optional"`
	DropIndexes  []string `hcl:"drop_indexes,optional"`
	DropForeigns []string `hcl:"drop_foreigns,optional"`
}

// columnSpec mirrors the column setters.
type columnSpec struct {
	Name string `hcl:"name,label"`
	Type string `hcl:"type"`

	Length     *int     `hcl:"length,optional"`
	Precision  *int     `hcl:"precision,optional"`
	Scale      *int     `hcl:"scale,optional"`
	Allowed    []string `hcl:"allowed,optional"`
	Expression string   `hcl:"expression,optional"`

	Nullable      bool      `hcl:"nullable,optional"`
	Default       cty.Value `hcl:"default,optional"`
	DefaultRaw    string    `hcl:"default_raw,optional"`
	Unsigned      bool      `hcl:"unsigned,optional"`
	AutoIncrement bool      `hcl:"auto_increment,optional"`
	Primary       bool      `hcl:"primary,optional"`
	Unique        bool      `hcl:"unique,optional"`
	Index         bool      `hcl:"index,optional"`
	Comment       string    `hcl:"comment,optional"`
	Charset       string    `hcl:"charset,optional"`
	Collation     string    `hcl:"collation,optional"`
	After         string    `hcl:"after,optional"`
	First         bool      `hcl:"first,optional"`
	Change        bool      `hcl:"change,optional"`
	RenameTo      string    `hcl:"rename_to,optional"`

	UseCurrent         bool    `hcl:"use_current,optional"`
	UseCurrentOnUpdate bool    `hcl:"use_current_on_update,optional"`
	VirtualAs          string  `hcl:"virtual_as,optional"`
	StoredAs           string  `hcl:"stored_as,optional"`
	GeneratedAs        *string `hcl:"generated_as,optional"`
	Always             bool    `hcl:"always,optional"`
	Invisible          bool    `hcl:"invisible,optional"`
	From               *int    `hcl:"from,optional"`

	Constrained bool   `hcl:"constrained,optional"`
	References  string `hcl:"references,optional"`
	OnDelete    string `hcl:"on_delete,optional"`
	OnUpdate    string `hcl:"on_update,optional"`

	SRID       *int `hcl:"srid,optional"`
	IsGeometry bool `hcl:"is_geometry,optional"`
	Projection *int `hcl:"projection,optional"`
}

type indexSpec struct {
	Columns            []string `hcl:"columns"`
	Name               string   `hcl:"name,optional"`
	Algorithm          string   `hcl:"algorithm,optional"`
	Language           string   `hcl:"language,optional"`
	Deferrable         bool     `hcl:"deferrable,optional"`
	InitiallyImmediate *bool    `hcl:"initially_immediate,optional"`
}

type foreignSpec struct {
	Columns    []string `hcl:"columns"`
	On         string   `hcl:"on"`
	References []string `hcl:"references,optional"`
	Name       string   `hcl:"name,optional"`
	OnDelete   string   `hcl:"on_delete,optional"`
	OnUpdate   string   `hcl:"on_update,optional"`
	Deferrable bool     `hcl:"deferrable,optional"`
	NotValid   bool     `hcl:"not_valid,optional"`
}

type renameSpec struct {
	From string `hcl:"from"`
	To   string `hcl:"to"`
}
