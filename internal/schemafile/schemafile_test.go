package schemafile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/ddlkit/internal/db"
	"github.com/tordrt/ddlkit/internal/grammar"
	"github.com/tordrt/ddlkit/internal/schema"
)

const document = `
table "users" {
  engine = "InnoDB"

  column "id" {
    type = "id"
  }
  column "email" {
    type   = "string"
    unique = true
  }
  column "created_at" {
    type        = "timestamp"
    nullable    = true
    use_current = true
  }
}

alter "posts" {
  column "user_id" {
    type        = "foreign_id"
    constrained = true
    on_delete   = "CASCADE"
  }
  drop_columns = ["legacy"]
}

drop "sessions" {
  if_exists = true
}
`

func compileMySQL(t *testing.T, def Definition) []string {
	t.Helper()
	sql, err := schema.NewBlueprint(def.Table, def.Define, "").
		ToSQL(t.Context(), db.NewOffline("mysql", db.Options{}), grammar.NewMySQL())
	require.NoError(t, err)
	return sql
}

func TestParseDocument(t *testing.T) {
	defs, err := Parse([]byte(document), "schema.hcl")
	require.NoError(t, err)
	require.Len(t, defs, 3)

	assert.Equal(t, "users", defs[0].Table)
	assert.Equal(t, ActionCreate, defs[0].Action)
	assert.Equal(t, "schema.hcl", defs[0].Range.Filename)
	assert.Equal(t, []string{
		"create table `users` (`id` bigint unsigned not null auto_increment primary key, `email` varchar(255) not null, " +
			"`created_at` timestamp null default CURRENT_TIMESTAMP) engine = InnoDB",
		"alter table `users` add unique `users_email_unique`(`email`)",
	}, compileMySQL(t, defs[0]))

	assert.Equal(t, ActionAlter, defs[1].Action)
	assert.Equal(t, []string{
		"alter table `posts` add `user_id` bigint unsigned not null",
		"alter table `posts` drop `legacy`",
		"alter table `posts` add constraint `posts_user_id_foreign` foreign key (`user_id`) references `users` (`id`) on delete cascade",
	}, compileMySQL(t, defs[1]))

	assert.Equal(t, ActionDrop, defs[2].Action)
	assert.Equal(t, []string{"drop table if exists `sessions`"}, compileMySQL(t, defs[2]))
}

func TestParseDefaults(t *testing.T) {
	defs, err := Parse([]byte(`
table "posts" {
  column "status" {
    type    = "enum"
    allowed = ["draft", "published"]
    default = "draft"
  }
  column "views" {
    type    = "integer"
    default = 0
  }
  column "ratio" {
    type    = "decimal"
    default = 1.5
  }
  column "active" {
    type    = "boolean"
    default = true
  }
  column "published_at" {
    type        = "timestamp"
    default_raw = "CURRENT_TIMESTAMP"
  }
}
`), "defaults.hcl")
	require.NoError(t, err)
	require.Len(t, defs, 1)

	assert.Equal(t, []string{
		"create table `posts` (`status` enum('draft', 'published') not null default 'draft', " +
			"`views` int not null default 0, `ratio` decimal(8, 2) not null default 1.5, " +
			"`active` tinyint(1) not null default 1, `published_at` timestamp not null default CURRENT_TIMESTAMP)",
	}, compileMySQL(t, defs[0]))
}

func TestParseTableBlocks(t *testing.T) {
	defs, err := Parse([]byte(`
alter "posts" {
  index {
    columns   = ["user_id", "created_at"]
    algorithm = "btree"
  }
  fulltext {
    columns = ["body"]
  }
  foreign {
    columns    = ["editor_id"]
    on         = "people"
    references = ["uid"]
    on_update  = "set null"
  }
  rename_index {
    from = "old_idx"
    to   = "new_idx"
  }
  drop_uniques = ["posts_slug_unique"]
  rename_to    = "articles"
}
`), "blocks.hcl")
	require.NoError(t, err)
	require.Len(t, defs, 1)

	assert.Equal(t, []string{
		"alter table `posts` add index `posts_user_id_created_at_index` using btree(`user_id`, `created_at`)",
		"alter table `posts` add fulltext `posts_body_fulltext`(`body`)",
		"alter table `posts` add constraint `posts_editor_id_foreign` foreign key (`editor_id`) references `people` (`uid`) on update set null",
		"alter table `posts` rename index `old_idx` to `new_idx`",
		"alter table `posts` drop index `posts_slug_unique`",
		"rename table `posts` to `articles`",
	}, compileMySQL(t, defs[0]))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name:    "unknown column type",
			doc:     "table \"t\" {\n  column \"a\" {\n    type = \"varchr\"\n  }\n}",
			wantErr: `column a: unknown type "varchr"`,
		},
		{
			name:    "unknown block",
			doc:     `view "t" {}`,
			wantErr: `unknown block type "view"`,
		},
		{
			name:    "missing label",
			doc:     `table {}`,
			wantErr: "table block needs exactly one label",
		},
		{
			name:    "two labels",
			doc:     `table "a" "b" {}`,
			wantErr: "table block needs exactly one label",
		},
		{
			name:    "top-level attribute",
			doc:     `version = 2`,
			wantErr: `unexpected top-level attribute "version"`,
		},
		{
			name:    "drop with columns",
			doc:     "drop \"t\" {\n  column \"a\" {\n    type = \"integer\"\n  }\n}",
			wantErr: "drop blocks take no columns",
		},
		{
			name:    "computed without expression",
			doc:     "table \"t\" {\n  column \"c\" {\n    type = \"computed\"\n  }\n}",
			wantErr: "computed columns need an expression",
		},
		{
			name:    "list default",
			doc:     "table \"t\" {\n  column \"a\" {\n    type    = \"json\"\n    default = [1]\n  }\n}",
			wantErr: "unsupported default of type",
		},
		{
			name:    "missing type",
			doc:     "table \"t\" {\n  column \"a\" {\n  }\n}",
			wantErr: `Missing required argument`,
		},
		{
			name:    "syntax error",
			doc:     `table "t" {`,
			wantErr: "schema.hcl",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), "schema.hcl")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "001_users.hcl")
	second := filepath.Join(dir, "002_posts.hcl")
	require.NoError(t, os.WriteFile(first, []byte("table \"users\" {\n  column \"id\" {\n    type = \"id\"\n  }\n}\n"), 0o644))
	require.NoError(t, os.WriteFile(second, []byte("drop \"posts\" {}\n"), 0o644))

	defs, err := Load(first, second)
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "users", defs[0].Table)
	assert.Equal(t, first, defs[0].Range.Filename)
	assert.Equal(t, []string{"drop table `posts`"}, compileMySQL(t, defs[1]))

	_, err = Load(filepath.Join(dir, "missing.hcl"))
	assert.Error(t, err)
}
