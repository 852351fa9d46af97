package grammar

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/ddlkit/internal/catalog"
	"github.com/tordrt/ddlkit/internal/schema"
)

func sqliteConn(version string, tables ...*catalog.Table) *fakeConn {
	conn := &fakeConn{
		driver: "sqlite",
		config: map[string]any{"version": version},
		tables: map[string]*catalog.Table{},
	}
	for _, t := range tables {
		conn.tables[t.Name] = t
	}
	return conn
}

func usersTable() *catalog.Table {
	none := "'none'"
	return &catalog.Table{
		Name: "users",
		Columns: []catalog.Column{
			{Name: "id", Type: "INTEGER", AutoIncrement: true},
			{Name: "name", Type: "TEXT"},
			{Name: "email", Type: "TEXT", Nullable: true, DefaultValue: &none},
		},
		PrimaryKey: []string{"id"},
	}
}

func TestSQLiteCreateInlinesKeys(t *testing.T) {
	sql := compile(t, NewSQLite(), sqliteConn(""), "users", func(b *schema.Blueprint) {
		b.Create()
		b.BigInteger("id").AutoIncrement()
		b.String("email").Unique()
		b.ForeignID("team_id").Constrained().CascadeOnDelete()
		b.Enum("role", []string{"a", "b"})
	})
	assert.Equal(t, []string{
		`create table "users" ("id" integer primary key autoincrement not null, "email" text not null, "team_id" integer not null, ` +
			`"role" text check ("role" in ('a', 'b')) not null, foreign key("team_id") references "teams"("id") on delete cascade)`,
		`create unique index "users_email_unique" on "users" ("email")`,
	}, sql)
}

func TestSQLiteCreateCompositePrimaryKey(t *testing.T) {
	sql := compile(t, NewSQLite(), sqliteConn(""), "role_user", func(b *schema.Blueprint) {
		b.Create()
		b.Integer("role_id")
		b.Integer("user_id")
		b.Primary("role_id", "user_id")
	})
	assert.Equal(t, []string{
		`create table "role_user" ("role_id" integer not null, "user_id" integer not null, primary key ("role_id", "user_id"))`,
	}, sql)
}

func TestSQLiteAddEmitsOneStatementPerColumn(t *testing.T) {
	sql := compile(t, NewSQLite(), sqliteConn(""), "users", func(b *schema.Blueprint) {
		b.String("nickname").Default("x")
		b.Integer("age").Nullable()
		b.Timestamp("seen_at").Nullable().UseCurrent()
	})
	assert.Equal(t, []string{
		`alter table "users" add column "nickname" text not null default 'x'`,
		`alter table "users" add column "age" integer`,
		`alter table "users" add column "seen_at" text default CURRENT_TIMESTAMP`,
	}, sql)
}

func TestSQLiteAddStoredColumnIsUnsupported(t *testing.T) {
	err := compileErr(NewSQLite(), sqliteConn(""), "orders", func(b *schema.Blueprint) {
		b.Integer("total").StoredAs("price * qty")
	})
	assert.True(t, errors.Is(err, schema.ErrUnsupportedOperation))
}

func TestSQLiteFulltextIsUnsupported(t *testing.T) {
	err := compileErr(NewSQLite(), sqliteConn(""), "posts", func(b *schema.Blueprint) { b.Fulltext("body") })
	require.Error(t, err)
	assert.True(t, errors.Is(err, schema.ErrUnsupportedOperation))

	var opErr *schema.UnsupportedOperationError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, "sqlite", opErr.Dialect)
	assert.Equal(t, "fulltext", opErr.Feature)
}

func TestSQLiteCapabilityGaps(t *testing.T) {
	tests := map[string]func(b *schema.Blueprint){
		"drop primary":  func(b *schema.Blueprint) { b.DropPrimary() },
		"drop foreign":  func(b *schema.Blueprint) { b.DropForeign("posts_user_id_foreign") },
		"spatial index": func(b *schema.Blueprint) { b.SpatialIndex("location") },
		"table comment": func(b *schema.Blueprint) { b.Comment("Posts") },
		"set column":    nil,
	}
	for name, build := range tests {
		t.Run(name, func(t *testing.T) {
			if build == nil {
				err := compileErr(NewSQLite(), sqliteConn(""), "posts", func(b *schema.Blueprint) {
					b.Create()
					b.Set("tags", []string{"a"})
				})
				assert.True(t, errors.Is(err, schema.ErrUnsupportedColumnType), "%v", err)
				return
			}
			err := compileErr(NewSQLite(), sqliteConn(""), "posts", build)
			assert.True(t, errors.Is(err, schema.ErrUnsupportedOperation), "%v", err)
		})
	}
}

func TestSQLiteForeignOnExistingTableIsIgnored(t *testing.T) {
	sql := compile(t, NewSQLite(), sqliteConn(""), "posts", func(b *schema.Blueprint) {
		b.Foreign("user_id").References("id").On("users")
		b.Primary("id")
	})
	assert.Empty(t, sql)
}

func TestSQLiteNativeAlterations(t *testing.T) {
	sql := compile(t, NewSQLite(), sqliteConn("3.45.1"), "users", func(b *schema.Blueprint) {
		b.RenameColumn("name", "full_name")
		b.DropColumn("a", "b")
		b.DropIndex("users_email_index")
		b.Rename("members")
	})
	assert.Equal(t, []string{
		`alter table "users" rename column "name" to "full_name"`,
		`alter table "users" drop column "a"`,
		`alter table "users" drop column "b"`,
		`drop index "users_email_index"`,
		`alter table "users" rename to "members"`,
	}, sql)
}

func TestSQLiteRenameColumnRecreatesTableOnOldEngine(t *testing.T) {
	sql := compile(t, NewSQLite(), sqliteConn("3.24.0", usersTable()), "users", func(b *schema.Blueprint) {
		b.RenameColumn("name", "full_name")
	})
	require.Len(t, sql, 6)
	assert.Equal(t, []string{
		`PRAGMA foreign_keys = OFF`,
		`create table "__temp__users" ("id" INTEGER primary key autoincrement not null, "full_name" TEXT not null, "email" TEXT default 'none')`,
		`insert into "__temp__users" ("id", "full_name", "email") select "id", "name", "email" from "users"`,
		`drop table "users"`,
		`alter table "__temp__users" rename to "users"`,
		`PRAGMA foreign_keys = ON`,
	}, sql)
}

func TestSQLiteDropColumnRecreatesTableOnOldEngine(t *testing.T) {
	posts := &catalog.Table{
		Name: "posts",
		Columns: []catalog.Column{
			{Name: "id", Type: "INTEGER"},
			{Name: "user_id", Type: "INTEGER"},
			{Name: "title", Type: "TEXT"},
			{Name: "slug", Type: "TEXT", Nullable: true},
		},
		PrimaryKey: []string{"id"},
		Relations: []catalog.Relation{
			{SourceColumn: "user_id", TargetTable: "users", TargetColumn: "id", OnDelete: "CASCADE", OnUpdate: "NO ACTION"},
		},
		Indexes: []catalog.Index{
			{Name: "posts_title_index", Columns: []string{"title"}, Origin: "c"},
			{Name: "sqlite_autoindex_posts_1", Columns: []string{"slug"}, IsUnique: true, Origin: "u"},
		},
	}
	sql := compile(t, NewSQLite(), sqliteConn("3.30.0", posts), "posts", func(b *schema.Blueprint) {
		b.DropColumn("title")
	})
	assert.Equal(t, []string{
		`PRAGMA foreign_keys = OFF`,
		`create table "__temp__posts" ("id" INTEGER not null, "user_id" INTEGER not null, "slug" TEXT, ` +
			`foreign key("user_id") references "users"("id") on delete cascade, primary key ("id"))`,
		`insert into "__temp__posts" ("id", "user_id", "slug") select "id", "user_id", "slug" from "posts"`,
		`drop table "posts"`,
		`alter table "__temp__posts" rename to "posts"`,
		`create unique index "posts_slug_unique" on "posts" ("slug")`,
		`PRAGMA foreign_keys = ON`,
	}, sql)
}

func TestSQLiteRecreationKeepsAddedColumns(t *testing.T) {
	sql := compile(t, NewSQLite(), sqliteConn("3.24.0", usersTable()), "users", func(b *schema.Blueprint) {
		b.String("nickname").Nullable().Unique()
		b.DropColumn("name")
	})
	assert.Equal(t, []string{
		`PRAGMA foreign_keys = OFF`,
		`create table "__temp__users" ("id" INTEGER primary key autoincrement not null, "email" TEXT default 'none', "nickname" text)`,
		`insert into "__temp__users" ("id", "email") select "id", "email" from "users"`,
		`drop table "users"`,
		`alter table "__temp__users" rename to "users"`,
		`PRAGMA foreign_keys = ON`,
		`create unique index "users_nickname_unique" on "users" ("nickname")`,
	}, sql)
}

func TestSQLiteAddsColumnsInPlaceWithoutRebuild(t *testing.T) {
	sql := compile(t, NewSQLite(), sqliteConn("3.35.0", usersTable()), "users", func(b *schema.Blueprint) {
		b.String("nickname").Nullable()
		b.DropColumn("name")
	})
	assert.Equal(t, []string{
		`alter table "users" add column "nickname" text`,
		`alter table "users" drop column "name"`,
	}, sql)
}

func TestSQLiteRecreationRejectsDuplicateAddedColumn(t *testing.T) {
	err := compileErr(NewSQLite(), sqliteConn("3.24.0", usersTable()), "users", func(b *schema.Blueprint) {
		b.String("email")
		b.RenameColumn("name", "full_name")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "column email already exists")
}

func TestSQLiteRecreationFoldsAlterations(t *testing.T) {
	b := schema.NewBlueprint("users", func(b *schema.Blueprint) {
		b.String("name").Nullable().Change()
		b.RenameColumn("email", "mail")
	}, "")
	conn := sqliteConn("3.24.0", usersTable())
	g := NewSQLite()

	want := []string{
		`PRAGMA foreign_keys = OFF`,
		`create table "__temp__users" ("id" INTEGER primary key autoincrement not null, "name" text, "mail" TEXT default 'none')`,
		`insert into "__temp__users" ("id", "name", "mail") select "id", "name", "email" from "users"`,
		`drop table "users"`,
		`alter table "__temp__users" rename to "users"`,
		`PRAGMA foreign_keys = ON`,
	}
	for range 2 {
		sql, err := b.ToSQL(t.Context(), conn, g)
		require.NoError(t, err)
		assert.Equal(t, want, sql)
	}
}

func TestSQLiteChangeUnknownColumn(t *testing.T) {
	err := compileErr(NewSQLite(), sqliteConn("", usersTable()), "users", func(b *schema.Blueprint) {
		b.String("missing").Change()
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "column missing does not exist")
}

func TestSQLiteChangeNeedsDescriber(t *testing.T) {
	err := compileErr(NewSQLite(), offlineConn{}, "users", func(b *schema.Blueprint) {
		b.String("name").Change()
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires a connection that can describe tables")
}

func TestSQLiteRenameIndex(t *testing.T) {
	users := usersTable()
	users.Indexes = []catalog.Index{{Name: "users_email_index", Columns: []string{"email"}, Origin: "c"}}
	sql := compile(t, NewSQLite(), sqliteConn("", users), "users", func(b *schema.Blueprint) {
		b.RenameIndex("users_email_index", "users_mail_index")
	})
	assert.Equal(t, []string{
		`drop index "users_email_index"`,
		`create index "users_mail_index" on "users" ("email")`,
	}, sql)
}

func TestSQLiteStartingValue(t *testing.T) {
	sql := compile(t, NewSQLite(), sqliteConn(""), "users", func(b *schema.Blueprint) {
		b.Create()
		b.ID().From(100)
	})
	assert.Equal(t, []string{
		`create table "users" ("id" integer primary key autoincrement not null)`,
		`insert into sqlite_sequence (name, seq) values ('users', 99)`,
	}, sql)
}
