package introspect

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/ridoystarlord/etlforge/schema"
	"github.com/ridoystarlord/etlforge/table"
)

// Querier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// ExistingColumn describes one column of a live table.
type ExistingColumn struct {
	ColumnName string
	DataType   string
	IsNullable bool
}

// TableNotFoundError is returned when the table has no visible columns.
type TableNotFoundError struct {
	Table string
}

func (e *TableNotFoundError) Error() string {
	return fmt.Sprintf("table %q not found in the current schema", e.Table)
}

// GetColumns lists the columns of a table in the current search_path schema,
// in ordinal order.
func GetColumns(ctx context.Context, q Querier, tableName string) ([]ExistingColumn, error) {
	columnsQuery := `
	SELECT column_name, data_type, is_nullable
	FROM information_schema.columns
	WHERE table_schema = current_schema() AND table_name = $1
	ORDER BY ordinal_position;
	`

	rows, err := q.Query(ctx, columnsQuery, tableName)
	if err != nil {
		return nil, fmt.Errorf("querying columns: %w", err)
	}
	defer rows.Close()

	var columns []ExistingColumn
	for rows.Next() {
		var col ExistingColumn
		var nullable string
		if err := rows.Scan(&col.ColumnName, &col.DataType, &nullable); err != nil {
			return nil, fmt.Errorf("scanning column: %w", err)
		}
		col.IsNullable = nullable == "YES"
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating column rows: %w", err)
	}
	if len(columns) == 0 {
		return nil, &TableNotFoundError{Table: tableName}
	}
	return columns, nil
}

// ReadTable loads a live table as text cells so it can be validated like a
// CSV file. SQL NULL becomes a null cell. A limit of zero or less reads
// every row.
func ReadTable(ctx context.Context, q Querier, tableName string, limit int) (*table.Table, error) {
	columns, err := GetColumns(ctx, q, tableName)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.ColumnName
	}

	rows, err := q.Query(ctx, SelectSQL(tableName, names, limit))
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", tableName, err)
	}
	defer rows.Close()

	t := table.New(names...)
	for rows.Next() {
		cells := make([]*string, len(names))
		dest := make([]any, len(names))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning row %d: %w", t.Len(), err)
		}
		row := make(table.Row, len(names))
		for i, c := range cells {
			if c != nil {
				row[i] = *c
			}
		}
		t.Rows = append(t.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return t, nil
}

// SelectSQL builds the query ReadTable runs. Every column is cast to text.
func SelectSQL(tableName string, columns []string, limit int) string {
	exprs := make([]string, len(columns))
	for i, c := range columns {
		exprs[i] = pgx.Identifier{c}.Sanitize() + "::text"
	}
	stmt := fmt.Sprintf("SELECT %s FROM %s", strings.Join(exprs, ", "), pgx.Identifier{tableName}.Sanitize())
	if limit > 0 {
		stmt += fmt.Sprintf(" LIMIT %d", limit)
	}
	return stmt
}

// InferSchema drafts a schema from live column types. The result has no
// ranges or categories; it is a starting point for a hand-edited file.
func InferSchema(columns []ExistingColumn) (*schema.Schema, error) {
	fields := make([]schema.FieldSpec, len(columns))
	for i, c := range columns {
		f := schema.FieldSpec{
			Name:     c.ColumnName,
			Type:     fieldType(c.DataType),
			Nullable: c.IsNullable,
			NullRate: schema.DefaultNullRate,
		}
		fields[i] = f
	}
	return schema.New(fields...)
}

func fieldType(dataType string) schema.FieldType {
	switch strings.ToLower(dataType) {
	case "smallint", "integer", "bigint":
		return schema.Int
	case "real", "double precision", "numeric", "decimal":
		return schema.Float
	case "date":
		return schema.Date
	}
	return schema.String
}
