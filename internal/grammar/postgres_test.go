package grammar

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/ddlkit/internal/schema"
)

func pgConn() *fakeConn {
	return &fakeConn{driver: "pgsql"}
}

func TestPostgresCreateTable(t *testing.T) {
	sql := compile(t, NewPostgres(), pgConn(), "users", func(b *schema.Blueprint) {
		b.Create()
		b.ID()
		b.String("email").Unique()
		b.Boolean("active").Default(true)
		b.Enum("role", []string{"admin", "user"})
		b.String("name").Comment("Full name")
		b.TimestampTz("created_at").UseCurrent()
	})

	assert.Equal(t, []string{
		`create table "users" ("id" bigserial primary key, "email" varchar(255) not null, "active" boolean not null default true, ` +
			`"role" varchar(255) check ("role" in ('admin', 'user')) not null, "name" varchar(255) not null, ` +
			`"created_at" timestamp(0) with time zone not null default CURRENT_TIMESTAMP)`,
		`alter table "users" add constraint "users_email_unique" unique ("email")`,
		`comment on column "users"."name" is 'Full name'`,
	}, sql)
}

func TestPostgresTemporaryTable(t *testing.T) {
	sql := compile(t, NewPostgres(), pgConn(), "scratch", func(b *schema.Blueprint) {
		b.Create()
		b.Temporary()
		b.Text("body").Nullable()
	})
	assert.Equal(t, []string{`create temporary table "scratch" ("body" text null)`}, sql)
}

func TestPostgresAddColumns(t *testing.T) {
	sql := compile(t, NewPostgres(), pgConn(), "users", func(b *schema.Blueprint) {
		b.JSONB("settings").Nullable()
		b.Decimal("balance", 10, 2).Default(0)
	})
	assert.Equal(t, []string{
		`alter table "users" add column "settings" jsonb null, add column "balance" decimal(10, 2) not null default 0`,
	}, sql)
}

func TestPostgresChangeColumns(t *testing.T) {
	sql := compile(t, NewPostgres(), pgConn(), "users", func(b *schema.Blueprint) {
		b.String("name", 100).Nullable().Change()
		b.Integer("age").Default(18).Change()
		b.BigInteger("id").AutoIncrement().Change()
	})
	assert.Equal(t, []string{
		`alter table "users" alter column "name" type varchar(100), alter column "name" drop not null, alter column "name" drop default, ` +
			`alter column "age" type integer, alter column "age" set not null, alter column "age" set default 18, ` +
			`alter column "id" type bigint, alter column "id" set not null`,
	}, sql)
}

func TestPostgresIdentityAndGeneratedColumns(t *testing.T) {
	sql := compile(t, NewPostgres(), pgConn(), "orders", func(b *schema.Blueprint) {
		b.Create()
		b.Integer("id").GeneratedAs().Always()
		b.Integer("total").StoredAs("price * qty")
		b.Integer("seq").GeneratedAs("start with 100 increment by 1")
		b.Integer("legacy").VirtualAs("price")
	})
	assert.Equal(t, []string{
		`create table "orders" ("id" integer generated always as identity, "total" integer generated always as (price * qty) stored, ` +
			`"seq" integer generated by default as identity (start with 100 increment by 1), "legacy" integer)`,
	}, sql)
}

func TestPostgresIndexes(t *testing.T) {
	sql := compile(t, NewPostgres(), pgConn(), "users", func(b *schema.Blueprint) {
		b.Index("meta").Algorithm("gin")
		b.Unique("email").Deferrable().InitiallyImmediate(false)
		b.Fulltext("title", "bio").Language("simple")
		b.SpatialIndex("location")
		b.Primary("id")
	})
	assert.Equal(t, []string{
		`create index "users_meta_index" on "users" using gin ("meta")`,
		`alter table "users" add constraint "users_email_unique" unique ("email") deferrable initially deferred`,
		`create index "users_title_bio_fulltext" on "users" using gin ((to_tsvector('simple', "title") || to_tsvector('simple', "bio")))`,
		`create index "users_location_spatialindex" on "users" using gist ("location")`,
		`alter table "users" add primary key ("id")`,
	}, sql)
}

func TestPostgresSpatialIndexWithoutPostGIS(t *testing.T) {
	conn := &fakeConn{driver: "pgsql", config: map[string]any{"postgis": false}}
	err := compileErr(NewPostgres(), conn, "users", func(b *schema.Blueprint) { b.SpatialIndex("location") })
	require.Error(t, err)
	assert.True(t, errors.Is(err, schema.ErrUnsupportedOperation))
	assert.Contains(t, err.Error(), "pgsql")
}

func TestPostgresForeignKey(t *testing.T) {
	sql := compile(t, NewPostgres(), pgConn(), "users", func(b *schema.Blueprint) {
		b.Foreign("team_id").References("id").On("teams").CascadeOnDelete().Deferrable().NotValid()
	})
	assert.Equal(t, []string{
		`alter table "users" add constraint "users_team_id_foreign" foreign key ("team_id") references "teams" ("id") on delete cascade deferrable not valid`,
	}, sql)
}

func TestPostgresDropsAndRenames(t *testing.T) {
	sql := compile(t, NewPostgres(), pgConn(), "users", func(b *schema.Blueprint) {
		b.DropColumn("a", "b")
		b.DropPrimary()
		b.DropUnique("users_email_unique")
		b.DropIndex("users_meta_index")
		b.DropForeign("users_team_id_foreign")
		b.RenameColumn("a", "b")
		b.RenameIndex("old_idx", "new_idx")
		b.Rename("members")
		b.Comment("Members")
	})
	assert.Equal(t, []string{
		`alter table "users" drop column "a", drop column "b"`,
		`alter table "users" drop constraint "users_pkey"`,
		`alter table "users" drop constraint "users_email_unique"`,
		`drop index "users_meta_index"`,
		`alter table "users" drop constraint "users_team_id_foreign"`,
		`alter table "users" rename column "a" to "b"`,
		`alter index "old_idx" rename to "new_idx"`,
		`alter table "users" rename to "members"`,
		`comment on table "users" is 'Members'`,
	}, sql)
}

func TestPostgresTablePrefix(t *testing.T) {
	conn := &fakeConn{driver: "pgsql", prefix: "app_"}
	sql := compile(t, NewPostgres(), conn, "public.users", func(b *schema.Blueprint) {
		b.DropPrimary()
	})
	assert.Equal(t, []string{`alter table "public"."app_users" drop constraint "app_users_pkey"`}, sql)
}

func TestPostgresStartingValue(t *testing.T) {
	sql := compile(t, NewPostgres(), pgConn(), "users", func(b *schema.Blueprint) {
		b.Create()
		b.ID().StartingValue(1000)
	})
	assert.Equal(t, []string{
		`create table "users" ("id" bigserial primary key)`,
		`alter sequence "users_id_seq" restart with 1000`,
	}, sql)
}

func TestPostgresSpatialAndTimeTypes(t *testing.T) {
	sql := compile(t, NewPostgres(), pgConn(), "places", func(b *schema.Blueprint) {
		b.Create()
		b.Point("loc")
		b.Polygon("area").IsGeometry().Projection(3857)
		b.Geometry("shape").IsGeometry()
		b.Time("opens_at")
		b.DateTime("seen_at", 6)
	})
	assert.Equal(t, []string{
		`create table "places" ("loc" geography(POINT, 4326) not null, "area" geometry(polygon, 3857) not null, ` +
			`"shape" geometry(GEOMETRY) not null, "opens_at" time(0) without time zone not null, ` +
			`"seen_at" timestamp(6) without time zone not null)`,
	}, sql)
}

func TestPostgresComputedColumnIsUnsupported(t *testing.T) {
	err := compileErr(NewPostgres(), pgConn(), "t", func(b *schema.Blueprint) {
		b.Create()
		b.Computed("c", "a + b")
	})
	assert.True(t, errors.Is(err, schema.ErrUnsupportedOperation))
	assert.Contains(t, err.Error(), "computed column")
}

func TestPostgresSupportsSchemaTransactions(t *testing.T) {
	assert.True(t, NewPostgres().SupportsSchemaTransactions())
	assert.False(t, NewMySQL().SupportsSchemaTransactions())
	assert.False(t, NewSQLite().SupportsSchemaTransactions())
}
