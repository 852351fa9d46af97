package formatter

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/ddlkit/internal/catalog"
)

func samplePlan() *Plan {
	return &Plan{
		Driver: "sqlite",
		Tables: []TablePlan{
			{Table: "users", Action: "create", Statements: []string{
				`create table "users" ("id" integer primary key autoincrement not null)`,
				`create unique index "users_email_unique" on "users" ("email")`,
			}},
			{Table: "posts", Action: "alter", Statements: []string{
				`alter table "posts" add column "title" text not null`,
			}},
			{Table: "users", Action: "alter"},
		},
	}
}

func TestTextFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTextFormatter(&buf).Format(samplePlan()))

	assert.Equal(t, `-- create users
create table "users" ("id" integer primary key autoincrement not null);
create unique index "users_email_unique" on "users" ("email");

-- alter posts
alter table "posts" add column "title" text not null;

-- alter users
`, buf.String())
}

func TestMarkdownFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewMarkdownFormatter(&buf).Format(samplePlan()))

	out := buf.String()
	assert.Contains(t, out, "# Schema Plan (sqlite)\n\n")
	assert.Contains(t, out, "## posts\n\n_alter_\n\n```sql\nalter table \"posts\" add column \"title\" text not null;\n```\n\n")
	assert.Contains(t, out, "## users\n\n_alter_\n\nNo statements.\n\n")
}

func TestNewFormatter(t *testing.T) {
	var buf bytes.Buffer
	f, err := New("", &buf)
	require.NoError(t, err)
	assert.IsType(t, &TextFormatter{}, f)

	f, err = New("markdown", &buf)
	require.NoError(t, err)
	assert.IsType(t, &MarkdownFormatter{}, f)

	_, err = New("html", &buf)
	assert.EqualError(t, err, "unsupported format: html (use text or markdown)")
}

func TestMultiFileFormatter(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, NewMultiFileFormatter(dir, "text").Format(samplePlan()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"001_create_users.sql", "002_alter_posts.sql", "003_alter_users.sql", "_overview.sql"}, names)

	overview, err := os.ReadFile(filepath.Join(dir, "_overview.sql"))
	require.NoError(t, err)
	assert.Contains(t, string(overview), "3 statements in total")
	assert.Contains(t, string(overview), "-- 002_alter_posts.sql: alter posts (1)")

	posts, err := os.ReadFile(filepath.Join(dir, "002_alter_posts.sql"))
	require.NoError(t, err)
	assert.Equal(t, "-- alter posts\nalter table \"posts\" add column \"title\" text not null;\n", string(posts))
}

func describedTables() []catalog.Table {
	active := "'active'"
	return []catalog.Table{
		{
			Name: "users",
			Columns: []catalog.Column{
				{Name: "id", Type: "bigint", AutoIncrement: true},
				{Name: "email", Type: "varchar(255)", IsUnique: true},
				{Name: "status", Type: "status_enum", EnumValues: []string{"active", "banned"}, DefaultValue: &active, Nullable: true},
			},
			PrimaryKey: []string{"id"},
			Indexes:    []catalog.Index{{Name: "users_email_unique", Columns: []string{"email"}, IsUnique: true}},
		},
		{
			Name:       "posts",
			Columns:    []catalog.Column{{Name: "user_id", Type: "bigint"}},
			Relations:  []catalog.Relation{{SourceColumn: "user_id", TargetTable: "users", TargetColumn: "id", OnDelete: "CASCADE", OnUpdate: "NO ACTION"}},
			PrimaryKey: nil,
		},
	}
}

func TestTextFormatTables(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTextFormatter(&buf).FormatTables(describedTables()))

	assert.Equal(t, `TABLE users (PK: id)
  id: bigint AUTO_INCREMENT NOT NULL
  email: varchar(255) UNIQUE NOT NULL
  status: status_enum (active|banned) DEFAULT 'active'

  INDEXES:
    users_email_unique (email) UNIQUE

TABLE posts
  user_id: bigint NOT NULL

  RELATIONS:
    user_id → users.id (on delete cascade)
`, buf.String())
}

func TestMarkdownFormatTables(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewMarkdownFormatter(&buf).FormatTables(describedTables()))

	out := buf.String()
	assert.Contains(t, out, "- **id:** bigint, PK, AUTO_INCREMENT, NOT NULL\n")
	assert.Contains(t, out, "- users_email_unique on (email), unique\n")
	assert.Contains(t, out, "- user_id → users.id (on delete cascade)\n")
}

func TestMultiFileFormatTables(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, NewMultiFileFormatter(dir, "markdown").FormatTables(describedTables()))

	overview, err := os.ReadFile(filepath.Join(dir, "_overview.md"))
	require.NoError(t, err)
	assert.Equal(t, "users\nposts (references: users)\n", string(overview))
	assert.FileExists(t, filepath.Join(dir, "users.md"))
	assert.FileExists(t, filepath.Join(dir, "posts.md"))
}
