package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/tordrt/ddlkit/internal/catalog"
)

// TableNames lists the user tables of the database
func (c *SQLiteClient) TableNames(ctx context.Context) ([]string, error) {
	query := `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`

	rows, err := c.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tableList []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tableList = append(tableList, tableName)
	}

	return tableList, rows.Err()
}

// Describe reads the structure of an existing table. Default values are
// kept as the raw SQL text SQLite stores.
func (c *SQLiteClient) Describe(ctx context.Context, tableName string) (*catalog.Table, error) {
	table := &catalog.Table{Name: tableName}

	columns, pk, err := c.extractColumns(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to extract columns: %w", err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s does not exist", tableName)
	}
	table.Columns = columns
	table.PrimaryKey = pk

	if len(pk) == 1 {
		autoIncrement, err := c.hasAutoIncrement(ctx, tableName)
		if err != nil {
			return nil, fmt.Errorf("failed to read table definition: %w", err)
		}
		if col, ok := table.Column(pk[0]); ok && autoIncrement {
			col.AutoIncrement = true
		}
	}

	relations, err := c.extractRelations(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to extract relations: %w", err)
	}
	table.Relations = relations

	indexes, err := c.extractIndexes(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to extract indexes: %w", err)
	}
	table.Indexes = indexes

	for _, idx := range indexes {
		if !idx.IsUnique || len(idx.Columns) != 1 || table.IsPrimaryKey(idx.Columns[0]) {
			continue
		}
		if col, ok := table.Column(idx.Columns[0]); ok {
			col.IsUnique = true
		}
	}

	return table, nil
}

func pragma(name, table string) string {
	return fmt.Sprintf(`PRAGMA %s("%s")`, name, strings.ReplaceAll(table, `"`, `""`))
}

// extractColumns extracts column information and primary key columns in key order
func (c *SQLiteClient) extractColumns(ctx context.Context, tableName string) ([]catalog.Column, []string, error) {
	rows, err := c.q.QueryContext(ctx, pragma("table_info", tableName))
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var columns []catalog.Column
	keyed := map[int]string{}

	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pkOrder int
		var defaultValue sql.NullString

		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultValue, &pkOrder); err != nil {
			return nil, nil, err
		}

		col := catalog.Column{
			Name:     name,
			Type:     colType,
			Nullable: notNull == 0 && pkOrder == 0,
		}
		if defaultValue.Valid {
			col.DefaultValue = &defaultValue.String
		}
		if pkOrder > 0 {
			keyed[pkOrder] = name
		}

		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	pk := make([]string, 0, len(keyed))
	for i := 1; i <= len(keyed); i++ {
		pk = append(pk, keyed[i])
	}

	return columns, pk, nil
}

// hasAutoIncrement reports whether the table was declared with AUTOINCREMENT
func (c *SQLiteClient) hasAutoIncrement(ctx context.Context, tableName string) (bool, error) {
	var ddl sql.NullString
	err := c.q.QueryRowContext(ctx, "SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?", tableName).Scan(&ddl)
	if err != nil {
		return false, err
	}
	return strings.Contains(strings.ToUpper(ddl.String), "AUTOINCREMENT"), nil
}

// extractRelations extracts foreign key relationships with their referential actions
func (c *SQLiteClient) extractRelations(ctx context.Context, tableName string) ([]catalog.Relation, error) {
	rows, err := c.q.QueryContext(ctx, pragma("foreign_key_list", tableName))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var relations []catalog.Relation
	for rows.Next() {
		var id, seq int
		var targetTable, fromCol, onUpdate, onDelete, match string
		var toCol sql.NullString

		if err := rows.Scan(&id, &seq, &targetTable, &fromCol, &toCol, &onUpdate, &onDelete, &match); err != nil {
			return nil, err
		}

		relations = append(relations, catalog.Relation{
			SourceColumn: fromCol,
			TargetTable:  targetTable,
			TargetColumn: toCol.String,
			OnDelete:     onDelete,
			OnUpdate:     onUpdate,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// A reference without columns points at the target's primary key.
	for i := range relations {
		if relations[i].TargetColumn != "" {
			continue
		}
		_, pk, err := c.extractColumns(ctx, relations[i].TargetTable)
		if err != nil {
			return nil, err
		}
		if len(pk) > 0 {
			relations[i].TargetColumn = pk[0]
		}
	}

	return relations, nil
}

// extractIndexes extracts index information, including the automatic
// indexes behind inline UNIQUE and PRIMARY KEY constraints
func (c *SQLiteClient) extractIndexes(ctx context.Context, tableName string) ([]catalog.Index, error) {
	rows, err := c.q.QueryContext(ctx, pragma("index_list", tableName))
	if err != nil {
		return nil, err
	}

	var indexes []catalog.Index
	for rows.Next() {
		var seq, unique, partial int
		var idx catalog.Index

		if err := rows.Scan(&seq, &idx.Name, &unique, &idx.Origin, &partial); err != nil {
			rows.Close()
			return nil, err
		}
		idx.IsUnique = unique == 1
		indexes = append(indexes, idx)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Get index columns
	for i := range indexes {
		columns, err := c.indexColumns(ctx, indexes[i].Name)
		if err != nil {
			return nil, err
		}
		indexes[i].Columns = columns
	}

	return indexes, nil
}

func (c *SQLiteClient) indexColumns(ctx context.Context, indexName string) ([]string, error) {
	rows, err := c.q.QueryContext(ctx, pragma("index_info", indexName))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var seqno, cid int
		var colName sql.NullString

		if err := rows.Scan(&seqno, &cid, &colName); err != nil {
			return nil, err
		}
		if colName.Valid {
			columns = append(columns, colName.String)
		}
	}

	return columns, rows.Err()
}
