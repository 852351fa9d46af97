package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/tordrt/ddlkit/internal/catalog"
)

// TableNames lists the base tables of the connection's schema.
func (c *PostgresClient) TableNames(ctx context.Context) ([]string, error) {
	rows, err := c.q.Query(ctx, `
		SELECT c.relname
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE n.nspname = $1 AND c.relkind IN ('r', 'p')
		ORDER BY c.relname
	`, c.schema)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// Describe reads the structure of an existing table. The name may be
// schema-qualified; it is used as given, without the table prefix.
func (c *PostgresClient) Describe(ctx context.Context, name string) (*catalog.Table, error) {
	schemaName, tableName := splitTable(name, c.schema)
	table := &catalog.Table{Name: tableName}

	var err error
	if table.Columns, err = c.describeColumns(ctx, schemaName, tableName); err != nil {
		return nil, fmt.Errorf("failed to describe columns: %w", err)
	}
	if len(table.Columns) == 0 {
		return nil, fmt.Errorf("table %s does not exist", name)
	}
	if table.PrimaryKey, err = c.describePrimaryKey(ctx, schemaName, tableName); err != nil {
		return nil, fmt.Errorf("failed to describe primary key: %w", err)
	}
	if table.Relations, err = c.describeRelations(ctx, schemaName, tableName); err != nil {
		return nil, fmt.Errorf("failed to describe foreign keys: %w", err)
	}
	if table.Indexes, err = c.describeIndexes(ctx, schemaName, tableName); err != nil {
		return nil, fmt.Errorf("failed to describe indexes: %w", err)
	}
	return table, nil
}

// describeColumns reads columns in ordinal order. Types come from
// format_type, so they read the way they are declared (varchar(50),
// timestamp with time zone, integer[]). Enum columns carry their labels.
func (c *PostgresClient) describeColumns(ctx context.Context, schemaName, tableName string) ([]catalog.Column, error) {
	rows, err := c.q.Query(ctx, `
		SELECT
			a.attname,
			format_type(a.atttypid, a.atttypmod),
			NOT a.attnotnull,
			pg_get_expr(d.adbin, d.adrelid),
			a.attidentity <> '',
			EXISTS (
				SELECT 1 FROM pg_index ix
				WHERE ix.indrelid = a.attrelid AND ix.indisunique AND NOT ix.indisprimary
					AND ix.indnatts = 1 AND ix.indkey[0] = a.attnum
			),
			COALESCE(co.collname, ''),
			COALESCE(col_description(a.attrelid, a.attnum), ''),
			ARRAY(SELECT e.enumlabel::text FROM pg_enum e WHERE e.enumtypid = a.atttypid ORDER BY e.enumsortorder)
		FROM pg_attribute a
		JOIN pg_class t ON t.oid = a.attrelid
		JOIN pg_namespace n ON n.oid = t.relnamespace
		LEFT JOIN pg_attrdef d ON d.adrelid = a.attrelid AND d.adnum = a.attnum
		LEFT JOIN pg_collation co ON co.oid = a.attcollation AND co.collname <> 'default'
		WHERE n.nspname = $1 AND t.relname = $2 AND a.attnum > 0 AND NOT a.attisdropped
		ORDER BY a.attnum
	`, schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []catalog.Column
	for rows.Next() {
		var col catalog.Column
		var identity bool
		if err := rows.Scan(&col.Name, &col.Type, &col.Nullable, &col.DefaultValue, &identity, &col.IsUnique,
			&col.Collation, &col.Comment, &col.EnumValues); err != nil {
			return nil, err
		}
		col.AutoIncrement = identity || (col.DefaultValue != nil && strings.HasPrefix(*col.DefaultValue, "nextval("))
		if len(col.EnumValues) == 0 {
			col.EnumValues = nil
		}
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func (c *PostgresClient) describePrimaryKey(ctx context.Context, schemaName, tableName string) ([]string, error) {
	rows, err := c.q.Query(ctx, `
		SELECT a.attname
		FROM pg_index ix
		JOIN pg_class t ON t.oid = ix.indrelid
		JOIN pg_namespace n ON n.oid = t.relnamespace
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)
		WHERE n.nspname = $1 AND t.relname = $2 AND ix.indisprimary
		ORDER BY array_position(ix.indkey, a.attnum)
	`, schemaName, tableName)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// describeRelations reads foreign keys one row per referencing column.
// Referential actions are spelled out the way the grammars emit them.
func (c *PostgresClient) describeRelations(ctx context.Context, schemaName, tableName string) ([]catalog.Relation, error) {
	rows, err := c.q.Query(ctx, `
		SELECT
			con.conname,
			src.attname,
			ref.relname,
			dst.attname,
			CASE con.confdeltype WHEN 'r' THEN 'RESTRICT' WHEN 'c' THEN 'CASCADE'
				WHEN 'n' THEN 'SET NULL' WHEN 'd' THEN 'SET DEFAULT' ELSE 'NO ACTION' END,
			CASE con.confupdtype WHEN 'r' THEN 'RESTRICT' WHEN 'c' THEN 'CASCADE'
				WHEN 'n' THEN 'SET NULL' WHEN 'd' THEN 'SET DEFAULT' ELSE 'NO ACTION' END
		FROM pg_constraint con
		JOIN pg_class t ON t.oid = con.conrelid
		JOIN pg_namespace n ON n.oid = t.relnamespace
		JOIN pg_class ref ON ref.oid = con.confrelid
		CROSS JOIN LATERAL unnest(con.conkey, con.confkey) WITH ORDINALITY AS k(src, dst, pos)
		JOIN pg_attribute src ON src.attrelid = con.conrelid AND src.attnum = k.src
		JOIN pg_attribute dst ON dst.attrelid = con.confrelid AND dst.attnum = k.dst
		WHERE con.contype = 'f' AND n.nspname = $1 AND t.relname = $2
		ORDER BY con.conname, k.pos
	`, schemaName, tableName)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Relation, error) {
		var rel catalog.Relation
		err := row.Scan(&rel.Name, &rel.SourceColumn, &rel.TargetTable, &rel.TargetColumn, &rel.OnDelete, &rel.OnUpdate)
		return rel, err
	})
}

func (c *PostgresClient) describeIndexes(ctx context.Context, schemaName, tableName string) ([]catalog.Index, error) {
	rows, err := c.q.Query(ctx, `
		SELECT
			i.relname,
			ix.indisunique,
			array_agg(a.attname ORDER BY array_position(ix.indkey, a.attnum))
		FROM pg_index ix
		JOIN pg_class t ON t.oid = ix.indrelid
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN pg_namespace n ON n.oid = t.relnamespace
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)
		WHERE n.nspname = $1 AND t.relname = $2 AND NOT ix.indisprimary
		GROUP BY i.relname, ix.indisunique
		ORDER BY i.relname
	`, schemaName, tableName)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Index, error) {
		var idx catalog.Index
		err := row.Scan(&idx.Name, &idx.IsUnique, &idx.Columns)
		return idx, err
	})
}
