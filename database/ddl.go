package database

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/ridoystarlord/etlforge/schema"
)

// ColumnType maps a field to its PostgreSQL column type. Dates stored in
// the ISO format become DATE; other date formats are kept as TEXT so the
// loaded values match the generated file byte for byte.
func ColumnType(f schema.FieldSpec) string {
	switch f.Type {
	case schema.Int:
		return "BIGINT"
	case schema.Float:
		return "DOUBLE PRECISION"
	case schema.Date:
		if isISODate(f) {
			return "DATE"
		}
	}
	return "TEXT"
}

func isISODate(f schema.FieldSpec) bool {
	return f.Type == schema.Date && f.DateFormat() == schema.DefaultDateFormat
}

// CreateTableSQL converts a schema into a CREATE TABLE statement. Explicit
// ranges, lengths and category values become CHECK constraints.
func CreateTableSQL(name string, s *schema.Schema) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (", pgx.Identifier{name}.Sanitize())

	for i, f := range s.Fields() {
		col := pgx.Identifier{f.Name}.Sanitize()
		fmt.Fprintf(&b, "%s %s", col, ColumnType(f))
		if !f.Nullable {
			b.WriteString(" NOT NULL")
		}
		if f.Unique {
			b.WriteString(" UNIQUE")
		}
		if check := checkConstraint(col, f); check != "" {
			fmt.Fprintf(&b, " CHECK (%s)", check)
		}
		if i < s.Len()-1 {
			b.WriteString(", ")
		}
	}

	b.WriteString(");")
	return b.String()
}

// DropTableSQL removes a previously loaded table.
func DropTableSQL(name string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s;", pgx.Identifier{name}.Sanitize())
}

func checkConstraint(col string, f schema.FieldSpec) string {
	switch f.Type {
	case schema.Int, schema.Float:
		if f.Range == nil {
			return ""
		}
		return fmt.Sprintf("%s BETWEEN %s AND %s", col, number(f.Range.Min), number(f.Range.Max))
	case schema.String:
		if f.Length == nil {
			return ""
		}
		return fmt.Sprintf("char_length(%s) BETWEEN %d AND %d", col, f.Length.Min, f.Length.Max)
	case schema.Date:
		if f.Dates == nil || !isISODate(f) {
			return ""
		}
		return fmt.Sprintf("%s BETWEEN %s AND %s", col, literal(f.Dates.Start), literal(f.Dates.End))
	case schema.Category:
		values := make([]string, len(f.Values))
		for i, v := range f.Values {
			values[i] = literal(v)
		}
		return fmt.Sprintf("%s IN (%s)", col, strings.Join(values, ", "))
	}
	return ""
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func literal(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
