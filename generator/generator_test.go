package generator

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridoystarlord/etlforge/schema"
	"github.com/ridoystarlord/etlforge/validator"
)

func intPtr(n int) *int { return &n }

func customerSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.Parse(map[string]any{"fields": []any{
		map[string]any{"name": "customer_id", "type": "int", "unique": true, "range": map[string]any{"min": 1, "max": 10000}},
		map[string]any{"name": "code", "type": "string", "unique": true, "length": map[string]any{"min": 3, "max": 8}},
		map[string]any{"name": "purchase_amount", "type": "float", "nullable": true, "null_rate": 0.1, "range": map[string]any{"min": 10.0, "max": 5000.0}, "precision": 2},
		map[string]any{"name": "customer_tier", "type": "category", "values": []any{"Bronze", "Silver", "Gold", "Platinum"}},
		map[string]any{"name": "registration_date", "type": "date", "range": map[string]any{"start": "2020-01-01", "end": "2024-12-31"}},
		map[string]any{"name": "registered_at", "type": "date", "format": "%d/%m/%Y", "nullable": true},
	}})
	require.NoError(t, err)
	return s
}

func TestGenerateShapeAndTypes(t *testing.T) {
	s := customerSchema(t)
	tbl, err := Generate(s, 200, WithSeed(1))
	require.NoError(t, err)

	assert.Equal(t, s.Names(), tbl.Columns)
	require.Equal(t, 200, tbl.Len())

	for _, row := range tbl.Rows {
		require.Len(t, row, len(tbl.Columns))
		assert.IsType(t, int64(0), row[0])
		assert.IsType(t, "", row[1])
		if row[2] != nil {
			assert.IsType(t, float64(0), row[2])
		}
		assert.Contains(t, []string{"Bronze", "Silver", "Gold", "Platinum"}, row[3])
		assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, row[4])
		if row[5] != nil {
			assert.Regexp(t, `^\d{2}/\d{2}/\d{4}$`, row[5])
		}
	}
}

func TestGenerateRoundTrip(t *testing.T) {
	s := customerSchema(t)
	for seed := uint64(1); seed <= 5; seed++ {
		tbl, err := Generate(s, 500, WithSeed(seed))
		require.NoError(t, err)

		result := validator.Validate(s, tbl)
		assert.True(t, result.Valid, "seed %d: %v", seed, result.Errors)
		assert.Empty(t, result.InvalidRows)
	}
}

func TestGenerateIsReproducible(t *testing.T) {
	s := customerSchema(t)
	a, err := Generate(s, 50, WithSeed(42))
	require.NoError(t, err)
	b, err := Generate(s, 50, WithSeed(42))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGenerateZeroRows(t *testing.T) {
	tbl, err := Generate(customerSchema(t), 0, WithSeed(1))
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Len())
	assert.Len(t, tbl.Columns, 6)
}

func TestGenerateNegativeRows(t *testing.T) {
	_, err := Generate(customerSchema(t), -1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRowCount))
	var ge *GenerationError
	assert.ErrorAs(t, err, &ge)
}

func TestUniqueExhaustion(t *testing.T) {
	tests := []struct {
		name  string
		field schema.FieldSpec
		space int
	}{
		{"int", schema.FieldSpec{Name: "id", Type: schema.Int, Unique: true, Range: &schema.NumericRange{Min: 1, Max: 5}}, 5},
		{"category", schema.FieldSpec{Name: "tier", Type: schema.Category, Unique: true, Values: []string{"A", "B", "C"}}, 3},
		{"date", schema.FieldSpec{Name: "day", Type: schema.Date, Unique: true, Dates: &schema.DateRange{Start: "2024-02-27", End: "2024-03-01"}}, 4},
		{"float", schema.FieldSpec{Name: "score", Type: schema.Float, Unique: true, Range: &schema.NumericRange{Min: 0, Max: 1}, Precision: intPtr(1)}, 11},
		{"string", schema.FieldSpec{Name: "flag", Type: schema.String, Unique: true, Length: &schema.LengthRange{Min: 1, Max: 1}}, 62},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := schema.MustNew(tt.field)

			space, bounded := ValueSpace(tt.field)
			require.True(t, bounded)
			assert.Equal(t, int64(tt.space), space)

			// the whole space can be used
			tbl, err := Generate(s, tt.space, WithSeed(7))
			require.NoError(t, err)
			col, _ := tbl.Column(tt.field.Name)
			seen := map[any]bool{}
			for _, v := range col {
				assert.False(t, seen[v], "duplicate %v", v)
				seen[v] = true
			}
			assert.Len(t, seen, tt.space)

			// one more row cannot be satisfied
			for seed := uint64(0); seed < 3; seed++ {
				_, err = Generate(s, tt.space+1, WithSeed(seed))
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrValueSpaceExhausted)
				assert.Contains(t, err.Error(), "cannot generate")
			}
		})
	}
}

func TestUniqueNullableExhaustion(t *testing.T) {
	f := schema.FieldSpec{Name: "id", Type: schema.Int, Unique: true, Nullable: true, NullRate: 0.5, Range: &schema.NumericRange{Min: 1, Max: 3}}
	s := schema.MustNew(f)

	// nulls do not consume the value space, so the feasibility check is
	// deferred; once three values are used the next non-null draw fails.
	_, err := Generate(s, 100, WithSeed(3))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValueSpaceExhausted)
	assert.Contains(t, err.Error(), "all 3 distinct values already used")

	tbl, err := Generate(s, 4, WithSeed(3), WithRetryBudget(1000))
	if err == nil {
		col, _ := tbl.Column("id")
		seen := map[any]int{}
		for _, v := range col {
			if v != nil {
				seen[v]++
			}
		}
		for v, n := range seen {
			assert.Equal(t, 1, n, "value %v repeated", v)
		}
	}
}

func TestRetryBudget(t *testing.T) {
	f := schema.FieldSpec{Name: "id", Type: schema.Int, Unique: true, Range: &schema.NumericRange{Min: 1, Max: 1000}}

	u := newUniqueSet(f, 0)
	assert.Equal(t, minRetries, u.attempts())
	for i := 0; i < 999; i++ {
		u.add(int64(i))
	}
	// one value left out of 1000
	assert.Equal(t, retryFactor*1000, u.attempts())
	u.add(int64(999))
	assert.True(t, u.exhausted())
	assert.Equal(t, 0, u.attempts())

	fixed := newUniqueSet(f, 3)
	assert.Equal(t, 3, fixed.attempts())

	// a budget of one draw per value fails quickly on a crowded space
	s := schema.MustNew(f)
	_, err := Generate(s, 1000, WithSeed(1), WithRetryBudget(1))
	assert.ErrorIs(t, err, ErrValueSpaceExhausted)
	assert.Contains(t, err.Error(), "after 1 attempts")
}

func TestNullRate(t *testing.T) {
	const n = 20000
	const rate = 0.3
	f := schema.FieldSpec{Name: "v", Type: schema.Int, Nullable: true, NullRate: rate}
	tbl, err := Generate(schema.MustNew(f), n, WithSeed(11))
	require.NoError(t, err)

	nulls := 0
	for _, row := range tbl.Rows {
		if row[0] == nil {
			nulls++
		}
	}
	stderr := math.Sqrt(rate * (1 - rate) / n)
	assert.InDelta(t, rate, float64(nulls)/n, 3*stderr)
}

func TestNullRateIgnoredWhenNotNullable(t *testing.T) {
	f := schema.FieldSpec{Name: "v", Type: schema.Int, NullRate: 0.9}
	tbl, err := Generate(schema.MustNew(f), 500, WithSeed(2))
	require.NoError(t, err)
	for _, row := range tbl.Rows {
		assert.NotNil(t, row[0])
	}
}

func TestUniqueNullsAreExempt(t *testing.T) {
	f := schema.FieldSpec{Name: "v", Type: schema.Int, Unique: true, Nullable: true, NullRate: 0.5, Range: &schema.NumericRange{Min: 1, Max: 100000}}
	tbl, err := Generate(schema.MustNew(f), 1000, WithSeed(5))
	require.NoError(t, err)

	nulls := 0
	seen := map[any]bool{}
	for _, row := range tbl.Rows {
		if row[0] == nil {
			nulls++
			continue
		}
		assert.False(t, seen[row[0]])
		seen[row[0]] = true
	}
	assert.Greater(t, nulls, 1)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 2.5, Round(2.45, 1))
	assert.Equal(t, -2.5, Round(-2.45, 1))
	assert.Equal(t, 3.0, Round(2.5, 0))
	assert.Equal(t, -3.0, Round(-2.5, 0))
	assert.Equal(t, 1.23, Round(1.234, 2))
}

func TestFloatPrecision(t *testing.T) {
	f := schema.FieldSpec{Name: "p", Type: schema.Float, Range: &schema.NumericRange{Min: 0.001, Max: 0.999}, Precision: intPtr(2)}
	tbl, err := Generate(schema.MustNew(f), 1000, WithSeed(9))
	require.NoError(t, err)
	for _, row := range tbl.Rows {
		v := row[0].(float64)
		assert.GreaterOrEqual(t, v, 0.01)
		assert.LessOrEqual(t, v, 0.99)
		assert.InDelta(t, v, Round(v, 2), 1e-12)
	}
}

func TestFloatWithoutGridPointFails(t *testing.T) {
	f := schema.FieldSpec{Name: "p", Type: schema.Float, Range: &schema.NumericRange{Min: 0.101, Max: 0.109}, Precision: intPtr(2)}
	_, err := Generate(schema.MustNew(f), 1, WithSeed(1))
	assert.ErrorIs(t, err, ErrValueSpaceExhausted)
	assert.Contains(t, err.Error(), "no value with 2 decimal places")
}

func TestStringLength(t *testing.T) {
	f := schema.FieldSpec{Name: "s", Type: schema.String}
	tbl, err := Generate(schema.MustNew(f), 300, WithSeed(4))
	require.NoError(t, err)
	for _, row := range tbl.Rows {
		s := row[0].(string)
		assert.GreaterOrEqual(t, len(s), schema.DefaultMinLength)
		assert.LessOrEqual(t, len(s), schema.DefaultMaxLength)
		assert.Regexp(t, `^[A-Za-z0-9]+$`, s)
	}
}

type stubProvider map[string]string

func (p stubProvider) Value(template string) (string, bool) {
	v, ok := p[template]
	return v, ok
}

func TestFakerTemplate(t *testing.T) {
	s := schema.MustNew(
		schema.FieldSpec{Name: "email", Type: schema.String, FakerTemplate: "email"},
		schema.FieldSpec{Name: "other", Type: schema.String, FakerTemplate: "no_such_template", Length: &schema.LengthRange{Min: 4, Max: 4}},
	)
	tbl, err := Generate(s, 10, WithSeed(1), WithProvider(stubProvider{"email": "a@example.com"}))
	require.NoError(t, err)
	for _, row := range tbl.Rows {
		assert.Equal(t, "a@example.com", row[0])
		assert.Len(t, row[1], 4)
	}
}

func TestFakerTemplateWithoutProvider(t *testing.T) {
	s := schema.MustNew(schema.FieldSpec{Name: "email", Type: schema.String, FakerTemplate: "email", Length: &schema.LengthRange{Min: 6, Max: 6}})
	tbl, err := Generate(s, 5, WithSeed(1), WithProvider(nil))
	require.NoError(t, err)
	for _, row := range tbl.Rows {
		assert.Len(t, row[0], 6)
	}
}

func TestFakerUniqueCollisionFails(t *testing.T) {
	s := schema.MustNew(schema.FieldSpec{Name: "email", Type: schema.String, Unique: true, FakerTemplate: "email"})
	_, err := Generate(s, 2, WithSeed(1), WithProvider(stubProvider{"email": "same@example.com"}))
	assert.ErrorIs(t, err, ErrValueSpaceExhausted)
}

func TestDefaultFakerProvider(t *testing.T) {
	p := NewFakerProvider(1)
	for _, name := range []string{"name", "email", "city", "uuid4", "nanoid"} {
		v, ok := p.Value(name)
		assert.True(t, ok, name)
		assert.NotEmpty(t, v, name)
	}
	_, ok := p.Value("unknown")
	assert.False(t, ok)
	assert.Contains(t, p.Templates(), "email")

	v, _ := p.Value("uuid4")
	assert.Len(t, v, 36)
}
