package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usersSchema = `
table "users" {
  column "id" {
    type = "id"
  }
  column "email" {
    type   = "string"
    unique = true
  }
}
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeSchema(t *testing.T, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile("schema.hcl", []byte(content), 0o644))
}

func TestCompileOffline(t *testing.T) {
	t.Chdir(t.TempDir())
	writeSchema(t, usersSchema)

	out, err := execute(t, "compile", "-f", "schema.hcl")
	require.NoError(t, err)
	assert.Equal(t, "-- create users\n"+
		"create table `users` (`id` bigint unsigned not null auto_increment primary key, `email` varchar(255) not null);\n"+
		"alter table `users` add unique `users_email_unique`(`email`);\n", out)
}

func TestCompileToDirectory(t *testing.T) {
	t.Chdir(t.TempDir())
	writeSchema(t, usersSchema)

	_, err := execute(t, "compile", "-f", "schema.hcl", "--driver", "sqlite", "--format", "markdown", "-d", "plan")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join("plan", "_overview.md"))
	assert.FileExists(t, filepath.Join("plan", "001_create_users.md"))
}

func TestCompileErrors(t *testing.T) {
	t.Chdir(t.TempDir())
	writeSchema(t, usersSchema)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "no schema file", args: []string{"compile"}, wantErr: "at least one schema file is required (-f)"},
		{name: "unknown driver", args: []string{"compile", "-f", "schema.hcl", "--driver", "oracle"}, wantErr: "unsupported driver"},
		{name: "bad format", args: []string{"compile", "-f", "schema.hcl", "--format", "html"}, wantErr: "unsupported format: html"},
		{name: "two outputs", args: []string{"compile", "-f", "schema.hcl", "-o", "a.sql", "-d", "out"}, wantErr: "cannot use both --output-dir and --output flags"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestApplyAndDescribe(t *testing.T) {
	t.Chdir(t.TempDir())
	writeSchema(t, usersSchema)

	out, err := execute(t, "apply", "-f", "schema.hcl", "--sqlite", "app.db")
	require.NoError(t, err)
	assert.Equal(t, "applied 1 definitions to sqlite\n", out)

	out, err = execute(t, "describe", "--sqlite", "app.db")
	require.NoError(t, err)
	assert.Contains(t, out, "TABLE users (PK: id)\n")
	assert.Contains(t, out, "users_email_unique (email) UNIQUE")

	out, err = execute(t, "describe", "--sqlite", "app.db", "--exclude", "users")
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = execute(t, "describe", "--sqlite", "app.db", "-t", "ghosts")
	assert.ErrorContains(t, err, "failed to describe table ghosts")
}

func TestApplyRequiresTarget(t *testing.T) {
	t.Chdir(t.TempDir())
	writeSchema(t, usersSchema)

	_, err := execute(t, "apply", "-f", "schema.hcl")
	assert.EqualError(t, err, "one of --db-url, --mysql-url, or --sqlite is required")
}

func TestConfigFileSuppliesFlags(t *testing.T) {
	t.Chdir(t.TempDir())
	writeSchema(t, usersSchema)
	require.NoError(t, os.WriteFile("ddlkit.yaml", []byte("driver: sqlite\nprefix: app_\n"), 0o644))

	out, err := execute(t, "compile", "-f", "schema.hcl")
	require.NoError(t, err)
	assert.Contains(t, out, `create table "app_users"`)
}

func TestParseTableList(t *testing.T) {
	tests := []struct {
		name       string
		tables     []string
		wantTables []string
	}{
		{
			name:       "single table",
			tables:     []string{"users"},
			wantTables: []string{"users"},
		},
		{
			name:       "multiple flags",
			tables:     []string{"users", "posts"},
			wantTables: []string{"users", "posts"},
		},
		{
			name:       "tables with spaces",
			tables:     []string{"users, posts, comments"},
			wantTables: []string{"users", "posts", "comments"},
		},
		{
			name:       "empty",
			tables:     nil,
			wantTables: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotTables := parseTableList(tt.tables)

			if len(gotTables) != len(tt.wantTables) {
				t.Errorf("parseTableList() returned %d tables, want %d", len(gotTables), len(tt.wantTables))
				return
			}

			for i, table := range gotTables {
				if table != tt.wantTables[i] {
					t.Errorf("parseTableList() table[%d] = %s, want %s", i, table, tt.wantTables[i])
				}
			}
		})
	}
}

func TestFilterExcludedTables(t *testing.T) {
	tests := []struct {
		name        string
		tables      []string
		excludeList []string
		wantTables  []string
	}{
		{
			name:        "exclude single table",
			tables:      []string{"users", "posts", "comments"},
			excludeList: []string{"posts"},
			wantTables:  []string{"users", "comments"},
		},
		{
			name:        "exclude multiple tables",
			tables:      []string{"users", "posts", "comments", "likes"},
			excludeList: []string{"posts,likes"},
			wantTables:  []string{"users", "comments"},
		},
		{
			name:        "exclude no tables",
			tables:      []string{"users", "posts"},
			excludeList: []string{},
			wantTables:  []string{"users", "posts"},
		},
		{
			name:        "exclude non-existent table",
			tables:      []string{"users", "posts"},
			excludeList: []string{"products"},
			wantTables:  []string{"users", "posts"},
		},
		{
			name:        "exclude all tables",
			tables:      []string{"users", "posts"},
			excludeList: []string{"users", "posts"},
			wantTables:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filterExcludedTables(tt.tables, tt.excludeList)

			if len(got) != len(tt.wantTables) {
				t.Errorf("filterExcludedTables() resulted in %d tables, want %d", len(got), len(tt.wantTables))
				return
			}

			for i, table := range got {
				if table != tt.wantTables[i] {
					t.Errorf("filterExcludedTables() table[%d] = %s, want %s", i, table, tt.wantTables[i])
				}
			}
		})
	}
}
