package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/tordrt/ddlkit/internal/catalog"
)

// TableNames lists the base tables of the connected database
func (c *MySQLClient) TableNames(ctx context.Context) ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	rows, err := c.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tables = append(tables, tableName)
	}

	return tables, rows.Err()
}

// Describe reads the structure of an existing table. A "db.table" name
// selects another database on the same server.
func (c *MySQLClient) Describe(ctx context.Context, name string) (*catalog.Table, error) {
	schemaName, tableName := splitTable(name, c.database)
	if schemaName == "" {
		if err := c.q.QueryRowContext(ctx, "select database()").Scan(&schemaName); err != nil {
			return nil, fmt.Errorf("failed to resolve current database: %w", err)
		}
	}
	table := &catalog.Table{Name: tableName}

	columns, err := c.extractColumns(ctx, schemaName, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to extract columns: %w", err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s does not exist", name)
	}
	table.Columns = columns

	pk, err := c.extractPrimaryKey(ctx, schemaName, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to extract primary key: %w", err)
	}
	table.PrimaryKey = pk

	relations, err := c.extractRelations(ctx, schemaName, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to extract relations: %w", err)
	}
	table.Relations = relations

	indexes, err := c.extractIndexes(ctx, schemaName, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to extract indexes: %w", err)
	}
	table.Indexes = indexes

	return table, nil
}

// extractColumns extracts column information for a table
func (c *MySQLClient) extractColumns(ctx context.Context, schemaName, tableName string) ([]catalog.Column, error) {
	query := `
		SELECT
			c.column_name,
			c.column_type,
			c.is_nullable,
			c.column_default,
			CASE WHEN EXISTS (
				SELECT 1 FROM information_schema.table_constraints tc
				JOIN information_schema.key_column_usage kcu
					ON tc.constraint_name = kcu.constraint_name
					AND tc.table_schema = kcu.table_schema
					AND tc.table_name = kcu.table_name
				WHERE tc.table_schema = ?
					AND tc.table_name = ?
					AND tc.constraint_type = 'UNIQUE'
					AND kcu.column_name = c.column_name
			) THEN true ELSE false END as is_unique,
			c.data_type,
			c.extra,
			COALESCE(c.collation_name, ''),
			c.column_comment
		FROM information_schema.columns c
		WHERE c.table_schema = ? AND c.table_name = ?
		ORDER BY c.ordinal_position
	`

	rows, err := c.q.QueryContext(ctx, query, schemaName, tableName, schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []catalog.Column
	for rows.Next() {
		var col catalog.Column
		var nullable, dataType, extra string
		var defaultVal sql.NullString

		if err := rows.Scan(&col.Name, &col.Type, &nullable, &defaultVal, &col.IsUnique, &dataType,
			&extra, &col.Collation, &col.Comment); err != nil {
			return nil, err
		}

		col.Nullable = nullable == "YES"
		col.AutoIncrement = strings.Contains(strings.ToLower(extra), "auto_increment")
		if defaultVal.Valid {
			col.DefaultValue = &defaultVal.String
		}

		if dataType == "enum" || dataType == "set" {
			values, err := parseEnumValues(col.Type)
			if err != nil {
				return nil, err
			}
			col.EnumValues = values
		}

		columns = append(columns, col)
	}

	return columns, rows.Err()
}

// parseEnumValues parses the members of an enum or set column type.
// MySQL reports them as "enum('value1','value2','value3')"
func parseEnumValues(columnType string) ([]string, error) {
	start := strings.Index(columnType, "(")
	end := strings.LastIndex(columnType, ")")
	if start == -1 || end == -1 || start >= end {
		return nil, fmt.Errorf("invalid enum type format: %s", columnType)
	}

	var values []string
	for _, part := range strings.Split(columnType[start+1:end], ",") {
		part = strings.TrimSpace(part)
		if len(part) >= 2 && part[0] == '\'' && part[len(part)-1] == '\'' {
			part = strings.ReplaceAll(part[1:len(part)-1], "''", "'")
		}
		values = append(values, part)
	}

	return values, nil
}

// extractPrimaryKey extracts primary key columns
func (c *MySQLClient) extractPrimaryKey(ctx context.Context, schemaName, tableName string) ([]string, error) {
	query := `
		SELECT column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = ?
			AND table_name = ?
			AND constraint_name = 'PRIMARY'
		ORDER BY ordinal_position
	`

	rows, err := c.q.QueryContext(ctx, query, schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pk []string
	for rows.Next() {
		var colName string
		if err := rows.Scan(&colName); err != nil {
			return nil, err
		}
		pk = append(pk, colName)
	}

	return pk, rows.Err()
}

// extractRelations extracts foreign key constraints with their referential actions
func (c *MySQLClient) extractRelations(ctx context.Context, schemaName, tableName string) ([]catalog.Relation, error) {
	query := `
		SELECT
			kcu.constraint_name,
			kcu.column_name,
			kcu.referenced_table_name,
			kcu.referenced_column_name,
			rc.delete_rule,
			rc.update_rule
		FROM information_schema.key_column_usage kcu
		JOIN information_schema.referential_constraints rc
			ON rc.constraint_schema = kcu.table_schema
			AND rc.constraint_name = kcu.constraint_name
		WHERE kcu.table_schema = ?
			AND kcu.table_name = ?
			AND kcu.referenced_table_name IS NOT NULL
		ORDER BY kcu.ordinal_position
	`

	rows, err := c.q.QueryContext(ctx, query, schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var relations []catalog.Relation
	for rows.Next() {
		var rel catalog.Relation
		if err := rows.Scan(&rel.Name, &rel.SourceColumn, &rel.TargetTable, &rel.TargetColumn, &rel.OnDelete, &rel.OnUpdate); err != nil {
			return nil, err
		}
		relations = append(relations, rel)
	}

	return relations, rows.Err()
}

// extractIndexes extracts index information
func (c *MySQLClient) extractIndexes(ctx context.Context, schemaName, tableName string) ([]catalog.Index, error) {
	query := `
		SELECT
			s.index_name,
			s.non_unique = 0 AS is_unique,
			GROUP_CONCAT(s.column_name ORDER BY s.seq_in_index) AS column_names
		FROM information_schema.statistics s
		WHERE s.table_schema = ?
			AND s.table_name = ?
			AND s.index_name != 'PRIMARY'
		GROUP BY s.index_name, s.non_unique
		ORDER BY s.index_name
	`

	rows, err := c.q.QueryContext(ctx, query, schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var indexes []catalog.Index
	for rows.Next() {
		var idx catalog.Index
		var isUnique int
		var columnNames string

		if err := rows.Scan(&idx.Name, &isUnique, &columnNames); err != nil {
			return nil, err
		}

		idx.IsUnique = isUnique == 1
		idx.Columns = strings.Split(columnNames, ",")

		indexes = append(indexes, idx)
	}

	return indexes, rows.Err()
}
