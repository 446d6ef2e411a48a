package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ridoystarlord/etlforge/schema"
	"github.com/ridoystarlord/etlforge/table"
)

// CopyTable bulk-loads t into the named table with the COPY protocol.
// Cells of ISO date fields are sent as dates; everything else is sent as
// generated.
func CopyTable(ctx context.Context, db DB, name string, s *schema.Schema, t *table.Table) (int64, error) {
	rows, err := copyRows(s, t)
	if err != nil {
		return 0, err
	}
	n, err := db.CopyFrom(ctx, pgx.Identifier{name}, t.Columns, pgx.CopyFromRows(rows))
	if err != nil {
		return n, fmt.Errorf("copying into %s: %w", name, err)
	}
	return n, nil
}

// LoadTable optionally creates the table and then copies the rows into it.
func LoadTable(ctx context.Context, db DB, name string, s *schema.Schema, t *table.Table, create bool) (int64, error) {
	if create {
		if _, err := db.Exec(ctx, CreateTableSQL(name, s)); err != nil {
			return 0, fmt.Errorf("creating table %s: %w", name, err)
		}
	}
	return CopyTable(ctx, db, name, s, t)
}

func copyRows(s *schema.Schema, t *table.Table) ([][]any, error) {
	dateCols := map[int]schema.FieldSpec{}
	for i, c := range t.Columns {
		if f, ok := s.Field(c); ok && isISODate(f) {
			dateCols[i] = f
		}
	}

	rows := make([][]any, len(t.Rows))
	for r, row := range t.Rows {
		out := make([]any, len(t.Columns))
		copy(out, row)
		for i, f := range dateCols {
			str, ok := out[i].(string)
			if !ok {
				continue
			}
			d, err := schema.ParseDate(str, f.DateFormat())
			if err != nil {
				return nil, fmt.Errorf("row %d, column %s: %w", r, f.Name, err)
			}
			out[i] = d
		}
		rows[r] = out
	}
	return rows, nil
}
