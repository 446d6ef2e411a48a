package validator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ridoystarlord/etlforge/schema"
)

func kinds(findings []Finding) []ErrorKind {
	var out []ErrorKind
	for _, f := range findings {
		out = append(out, f.Kind)
	}
	return out
}

func rules(findings []Finding) []string {
	var out []string
	for _, f := range findings {
		out = append(out, f.Rule)
	}
	return out
}

func TestCheckCell(t *testing.T) {
	intField := schema.FieldSpec{Name: "n", Type: schema.Int, Range: &schema.NumericRange{Min: 1, Max: 10}}
	floatField := schema.FieldSpec{Name: "f", Type: schema.Float, Range: &schema.NumericRange{Min: -1.5, Max: 1.5}}
	strField := schema.FieldSpec{Name: "s", Type: schema.String, Length: &schema.LengthRange{Min: 2, Max: 3}}
	freeStr := schema.FieldSpec{Name: "s", Type: schema.String}
	dateField := schema.FieldSpec{Name: "d", Type: schema.Date, Format: "%d.%m.%Y", Dates: &schema.DateRange{Start: "2024-01-01", End: "2024-01-31"}}
	catField := schema.FieldSpec{Name: "c", Type: schema.Category, Values: []string{"A", "B", "1"}}
	nullable := schema.FieldSpec{Name: "n", Type: schema.Int, Nullable: true, Range: &schema.NumericRange{Min: 1, Max: 10}}

	tests := []struct {
		name      string
		field     schema.FieldSpec
		value     any
		wantKinds []ErrorKind
		wantRules []string
	}{
		{"int ok", intField, int64(5), nil, nil},
		{"int string ok", intField, " 7 ", nil, nil},
		{"int from whole float", intField, 3.0, nil, nil},
		{"int rejects decimal string", intField, "12.5", []ErrorKind{TypeMismatch}, []string{"type"}},
		{"int rejects fractional float", intField, 2.5, []ErrorKind{TypeMismatch}, []string{"type"}},
		{"int rejects text", intField, "abc", []ErrorKind{TypeMismatch}, []string{"type"}},
		{"int rejects bool", intField, true, []ErrorKind{TypeMismatch}, []string{"type"}},
		{"wrong type and out of range reports type only", intField, "99.9", []ErrorKind{TypeMismatch}, []string{"type"}},
		{"int below", intField, 0, []ErrorKind{ConstraintViolation}, []string{"range.min"}},
		{"int above", intField, "11", []ErrorKind{ConstraintViolation}, []string{"range.max"}},
		{"int bounds inclusive", intField, "10", nil, nil},
		{"null not allowed", intField, nil, []ErrorKind{NullConstraintViolation}, []string{"nullable"}},
		{"NaN is null", intField, math.NaN(), []ErrorKind{NullConstraintViolation}, []string{"nullable"}},
		{"null allowed", nullable, nil, nil, nil},
		{"float ok", floatField, "-1.5", nil, nil},
		{"float from int", floatField, 1, nil, nil},
		{"float above", floatField, 1.51, []ErrorKind{ConstraintViolation}, []string{"range.max"}},
		{"float text", floatField, "one", []ErrorKind{TypeMismatch}, []string{"type"}},
		{"float infinity", floatField, "inf", []ErrorKind{TypeMismatch}, []string{"type"}},
		{"float NaN text", floatField, "NaN", []ErrorKind{TypeMismatch}, []string{"type"}},
		{"float lowercase nan text", floatField, " nan ", []ErrorKind{TypeMismatch}, []string{"type"}},
		{"string ok", strField, "ab", nil, nil},
		{"string short", strField, "a", []ErrorKind{ConstraintViolation}, []string{"length.min"}},
		{"string long", strField, "abcd", []ErrorKind{ConstraintViolation}, []string{"length.max"}},
		{"string counts runes", strField, "äöü", nil, nil},
		{"string without length accepts anything", freeStr, "", nil, nil},
		{"string accepts numeric text", freeStr, "12345", nil, nil},
		{"string rejects number", freeStr, int64(5), []ErrorKind{TypeMismatch}, []string{"type"}},
		{"date ok", dateField, "15.01.2024", nil, nil},
		{"date wrong format", dateField, "2024-01-15", []ErrorKind{TypeMismatch}, []string{"type"}},
		{"date before", dateField, "31.12.2023", []ErrorKind{ConstraintViolation}, []string{"range.start"}},
		{"date after", dateField, "01.02.2024", []ErrorKind{ConstraintViolation}, []string{"range.end"}},
		{"date time value", dateField, time.Date(2024, 1, 31, 23, 0, 0, 0, time.UTC), nil, nil},
		{"category ok", catField, "B", nil, nil},
		{"category numeric", catField, int64(1), nil, nil},
		{"category outside", catField, "C", []ErrorKind{ConstraintViolation}, []string{"values"}},
		{"category is case sensitive", catField, "a", []ErrorKind{ConstraintViolation}, []string{"values"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckCell(tt.field, tt.value)
			assert.Equal(t, tt.wantKinds, kinds(got))
			assert.Equal(t, tt.wantRules, rules(got))
		})
	}
}

func TestCheckCellMessages(t *testing.T) {
	f := schema.FieldSpec{Name: "amount", Type: schema.Float, Range: &schema.NumericRange{Min: 10, Max: 20}}
	got := CheckCell(f, "25.5")
	assert.Equal(t, "Value '25.5' is above maximum 20", got[0].Message)

	got = CheckCell(schema.FieldSpec{Name: "amount", Type: schema.Int}, "x")
	assert.Equal(t, "Value 'x' is not of type 'int'", got[0].Message)

	got = CheckCell(schema.FieldSpec{Name: "amount", Type: schema.Int}, nil)
	assert.Equal(t, "Null value found in non-nullable column 'amount'", got[0].Message)
}

func TestCoerce(t *testing.T) {
	v, err := Coerce(schema.FieldSpec{Type: schema.Int}, "42")
	assert.NoError(t, err)
	assert.Equal(t, int64(42), v)

	v, err = Coerce(schema.FieldSpec{Type: schema.Float}, int32(3))
	assert.NoError(t, err)
	assert.Equal(t, 3.0, v)

	v, err = Coerce(schema.FieldSpec{Type: schema.Date}, "2024-02-29")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), v)

	_, err = Coerce(schema.FieldSpec{Type: schema.Int}, uint64(math.MaxUint64))
	assert.Error(t, err)
}
