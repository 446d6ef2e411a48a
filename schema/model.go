package schema

// FieldType is the closed set of column types a schema can declare.
type FieldType string

const (
	Int      FieldType = "int"
	Float    FieldType = "float"
	String   FieldType = "string"
	Date     FieldType = "date"
	Category FieldType = "category"
)

// Types lists every supported field type in documentation order.
var Types = []FieldType{Int, Float, String, Date, Category}

// Valid reports whether t is one of the supported field types.
func (t FieldType) Valid() bool {
	switch t {
	case Int, Float, String, Date, Category:
		return true
	}
	return false
}

const (
	DefaultNullRate   = 0.1
	DefaultPrecision  = 2
	MaxPrecision      = 15
	DefaultDateFormat = "%Y-%m-%d"
	DefaultDateStart  = "2020-01-01"
	DefaultDateEnd    = "2024-12-31"
	DefaultMinLength  = 5
	DefaultMaxLength  = 15
	DefaultIntMin     = 0
	DefaultIntMax     = 100
	DefaultFloatMin   = 0.0
	DefaultFloatMax   = 100.0
)

// NumericRange bounds int and float fields, both ends inclusive.
type NumericRange struct {
	Min float64
	Max float64
}

// DateRange bounds date fields. Start and End are ISO dates (YYYY-MM-DD),
// both inclusive.
type DateRange struct {
	Start string
	End   string
}

// LengthRange bounds the rune length of string fields.
type LengthRange struct {
	Min int
	Max int
}

// FieldSpec is one column of a schema together with its constraints.
// Optional constraints are nil when the document did not set them; the
// accessor methods fill in generation defaults.
type FieldSpec struct {
	Name          string
	Type          FieldType
	Nullable      bool
	NullRate      float64
	Unique        bool
	Range         *NumericRange
	Dates         *DateRange
	Values        []string
	Length        *LengthRange
	Precision     *int
	Format        string
	FakerTemplate string
}

// EffectiveNullRate is the probability of a null cell during generation.
// It is zero for fields that are not nullable.
func (f FieldSpec) EffectiveNullRate() float64 {
	if !f.Nullable {
		return 0
	}
	return f.NullRate
}

// Bounds returns the numeric range, or the type default when unset.
func (f FieldSpec) Bounds() NumericRange {
	if f.Range != nil {
		return *f.Range
	}
	if f.Type == Float {
		return NumericRange{Min: DefaultFloatMin, Max: DefaultFloatMax}
	}
	return NumericRange{Min: DefaultIntMin, Max: DefaultIntMax}
}

// DateBounds returns the date range, or the default range when unset.
func (f FieldSpec) DateBounds() DateRange {
	if f.Dates != nil {
		return *f.Dates
	}
	return DateRange{Start: DefaultDateStart, End: DefaultDateEnd}
}

// LengthBounds returns the string length range, or 5..15 when unset.
func (f FieldSpec) LengthBounds() LengthRange {
	if f.Length != nil {
		return *f.Length
	}
	return LengthRange{Min: DefaultMinLength, Max: DefaultMaxLength}
}

// Decimals is the number of decimal places float values are rounded to.
func (f FieldSpec) Decimals() int {
	if f.Precision != nil {
		return *f.Precision
	}
	return DefaultPrecision
}

// DateFormat is the strftime pattern dates are written and read with.
func (f FieldSpec) DateFormat() string {
	if f.Format != "" {
		return f.Format
	}
	return DefaultDateFormat
}

// Schema is an ordered, immutable list of fields. Field order defines
// output column order. A Schema is safe for concurrent reads.
type Schema struct {
	fields []FieldSpec
	index  map[string]int
}

// Fields returns a copy of the fields in schema order.
func (s *Schema) Fields() []FieldSpec {
	out := make([]FieldSpec, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field looks a field up by name.
func (s *Schema) Field(name string) (FieldSpec, bool) {
	i, ok := s.index[name]
	if !ok {
		return FieldSpec{}, false
	}
	return s.fields[i], true
}

// Names returns the field names in schema order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Len is the number of fields.
func (s *Schema) Len() int {
	return len(s.fields)
}
