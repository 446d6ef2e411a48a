package validator

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridoystarlord/etlforge/schema"
	"github.com/ridoystarlord/etlforge/table"
)

func mustParse(t *testing.T, fields ...map[string]any) *schema.Schema {
	t.Helper()
	list := make([]any, len(fields))
	for i, f := range fields {
		list[i] = f
	}
	s, err := schema.Parse(map[string]any{"fields": list})
	require.NoError(t, err)
	return s
}

func TestDuplicateIDScenario(t *testing.T) {
	s := mustParse(t, map[string]any{"name": "id", "type": "int", "unique": true, "range": map[string]any{"min": 1, "max": 3}})
	tbl := table.FromRecords([]string{"id"}, []map[string]any{{"id": 1}, {"id": 2}, {"id": 2}})

	result := Validate(s, tbl)
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, UniquenessViolation, result.Errors[0].Kind)
	assert.Equal(t, 2, result.Errors[0].Row)
	assert.Equal(t, "id", result.Errors[0].Column)
	assert.Equal(t, []int{2}, result.InvalidRows)
}

func TestCategoryScenario(t *testing.T) {
	s := mustParse(t, map[string]any{"name": "tier", "type": "category", "values": []any{"A", "B"}})
	tbl := table.FromRecords([]string{"tier"}, []map[string]any{{"tier": "C"}})

	result := Validate(s, tbl)
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	e := result.Errors[0]
	assert.Equal(t, ConstraintViolation, e.Kind)
	assert.Equal(t, 0, e.Row)
	assert.Equal(t, "values", e.Rule)
	assert.Contains(t, e.Message, "not in allowed categories")
}

func TestMissingColumnShortCircuits(t *testing.T) {
	s := mustParse(t,
		map[string]any{"name": "id", "type": "int", "unique": true},
		map[string]any{"name": "name", "type": "string"},
	)
	// row values are wrong everywhere, but nothing per-cell is reported
	tbl := table.FromRecords([]string{"id"}, []map[string]any{{"id": "x"}, {"id": "x"}})

	result := Validate(s, tbl)
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, MissingColumn, result.Errors[0].Kind)
	assert.Equal(t, TableLevel, result.Errors[0].Row)
	assert.Equal(t, "name", result.Errors[0].Column)
	assert.True(t, result.Fatal())
	assert.Empty(t, result.InvalidRows)
	assert.Equal(t, []string{"name"}, result.Summary.MissingColumns)
	assert.Equal(t, 0, result.Summary.ValidRows)
}

func TestUnexpectedColumnIsNotFatal(t *testing.T) {
	s := mustParse(t, map[string]any{"name": "id", "type": "int"})
	tbl := table.FromRecords([]string{"id", "extra"}, []map[string]any{
		{"id": "1", "extra": "a"},
		{"id": "oops", "extra": "b"},
	})

	result := Validate(s, tbl)
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, UnexpectedColumn, result.Errors[0].Kind)
	assert.Equal(t, "extra", result.Errors[0].Column)
	assert.Equal(t, TypeMismatch, result.Errors[1].Kind)
	assert.Equal(t, 1, result.Errors[1].Row)
	assert.Equal(t, []int{1}, result.InvalidRows)
	assert.Equal(t, []string{"extra"}, result.Summary.ExtraColumns)
	assert.False(t, result.Fatal())
}

func TestExhaustiveReporting(t *testing.T) {
	s := mustParse(t,
		map[string]any{"name": "id", "type": "int", "range": map[string]any{"min": 0, "max": 100}},
		map[string]any{"name": "tier", "type": "category", "values": []any{"A", "B"}},
	)
	records := make([]map[string]any, 10)
	for i := range records {
		records[i] = map[string]any{"id": i, "tier": "A"}
	}
	records[0]["id"] = 500
	records[5]["tier"] = "Z"
	records[9]["id"] = nil

	result := Validate(s, table.FromRecords([]string{"id", "tier"}, records))
	assert.False(t, result.Valid)
	assert.Equal(t, []int{0, 5, 9}, result.InvalidRows)
	require.Len(t, result.Errors, 3)
	assert.Equal(t, "range.max", result.Errors[0].Rule)
	assert.Equal(t, "values", result.Errors[1].Rule)
	assert.Equal(t, NullConstraintViolation, result.Errors[2].Kind)
	assert.Equal(t, 10, result.Summary.TotalRows)
	assert.Equal(t, 7, result.Summary.ValidRows)
	assert.Equal(t, 3, result.Summary.InvalidRows)
}

func TestValidationIsIdempotent(t *testing.T) {
	s := mustParse(t,
		map[string]any{"name": "id", "type": "int", "unique": true},
		map[string]any{"name": "score", "type": "float", "range": map[string]any{"min": 0, "max": 1}},
	)
	tbl := table.FromRecords([]string{"id", "score", "x"}, []map[string]any{
		{"id": "1", "score": "0.5"},
		{"id": "1", "score": "1.5"},
		{"id": "a", "score": nil},
	})

	first := Validate(s, tbl)
	second := Validate(s, tbl)
	assert.Equal(t, first, second)
}

func TestUniquenessPass(t *testing.T) {
	s := mustParse(t, map[string]any{"name": "id", "type": "int", "unique": true, "nullable": true})
	tbl := table.FromRecords([]string{"id"}, []map[string]any{
		{"id": "7"}, {"id": nil}, {"id": int64(7)}, {"id": nil}, {"id": 7.0}, {"id": "8"},
	})

	result := Validate(s, tbl)
	require.Len(t, result.Errors, 2)
	for i, row := range []int{2, 4} {
		assert.Equal(t, UniquenessViolation, result.Errors[i].Kind)
		assert.Equal(t, row, result.Errors[i].Row)
		assert.Contains(t, result.Errors[i].Message, "first seen in row 0")
	}
}

func TestErrorOrder(t *testing.T) {
	s := mustParse(t,
		map[string]any{"name": "a", "type": "int", "unique": true},
		map[string]any{"name": "b", "type": "string"},
	)
	tbl := table.FromRecords([]string{"b", "a", "c"}, []map[string]any{
		{"a": "1", "b": nil},
		{"a": "1", "b": "ok"},
		{"a": "z", "b": nil},
	})

	result := Validate(s, tbl)
	var kinds []ErrorKind
	for _, e := range result.Errors {
		kinds = append(kinds, e.Kind)
	}
	assert.Equal(t, []ErrorKind{
		UnexpectedColumn,
		NullConstraintViolation, // row 0, b
		TypeMismatch,            // row 2, a
		NullConstraintViolation, // row 2, b
		UniquenessViolation,     // row 1, a
	}, kinds)

	order, counts := result.ErrorCounts()
	assert.Equal(t, []ErrorKind{UnexpectedColumn, NullConstraintViolation, TypeMismatch, UniquenessViolation}, order)
	assert.Equal(t, 2, counts[NullConstraintViolation])
	assert.Len(t, result.RowErrors(2), 2)
}

func TestNaNTextIsATypeMismatch(t *testing.T) {
	s := mustParse(t, map[string]any{
		"name": "score", "type": "float", "unique": true, "range": map[string]any{"min": 0, "max": 10},
	})
	tbl := table.FromRecords([]string{"score"}, []map[string]any{{"score": "NaN"}, {"score": "nan"}})

	result := Validate(s, tbl)
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 2)
	for i, e := range result.Errors {
		assert.Equal(t, TypeMismatch, e.Kind)
		assert.Equal(t, i, e.Row)
	}
}

func TestShortRowsReadAsNull(t *testing.T) {
	s := mustParse(t,
		map[string]any{"name": "a", "type": "int"},
		map[string]any{"name": "b", "type": "int"},
	)
	tbl := table.New("a", "b")
	tbl.Rows = append(tbl.Rows, table.Row{"1"})

	result := Validate(s, tbl)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, NullConstraintViolation, result.Errors[0].Kind)
	assert.Equal(t, "b", result.Errors[0].Column)
}

func TestEmptyTable(t *testing.T) {
	s := mustParse(t, map[string]any{"name": "a", "type": "int"})
	result := Validate(s, table.New("a"))
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.InvalidRows)
}

func TestPrint(t *testing.T) {
	s := mustParse(t, map[string]any{"name": "id", "type": "int", "unique": true})
	tbl := table.FromRecords([]string{"id", "x"}, []map[string]any{{"id": 1}, {"id": 1}, {"id": "q"}})
	result := Validate(s, tbl)

	var buf bytes.Buffer
	result.Print(&buf, 1)
	out := buf.String()
	assert.Contains(t, out, "VALIDATION SUMMARY")
	assert.Contains(t, out, "Total rows: 3")
	assert.Contains(t, out, "Extra columns: x")
	assert.Contains(t, out, "Validation: FAILED")
	assert.Contains(t, out, "duplicate_value: 1")
	assert.Contains(t, out, "invalid_type: 1")
	assert.Contains(t, out, "... and 2 more")

	buf.Reset()
	Validate(s, table.FromRecords([]string{"id"}, []map[string]any{{"id": 1}})).Print(&buf, -1)
	assert.Contains(t, buf.String(), "Validation: PASSED")
}
