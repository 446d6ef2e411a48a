package schema

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidSchema is the sentinel every SchemaError unwraps to.
var ErrInvalidSchema = errors.New("invalid schema")

// SchemaError reports a malformed or self-inconsistent schema document.
type SchemaError struct {
	Field  string // empty for document-level problems
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return "schema: " + e.Reason
	}
	return fmt.Sprintf("schema: field '%s': %s", e.Field, e.Reason)
}

func (e *SchemaError) Unwrap() error {
	return ErrInvalidSchema
}

func schemaErr(field, format string, args ...any) error {
	return &SchemaError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Parse builds a Schema from a document that was already decoded into
// nested maps and slices (YAML, JSON or TOML). The document is either a
// mapping with a "fields" list or the list itself.
func Parse(doc any) (*Schema, error) {
	var list []any
	switch d := doc.(type) {
	case map[string]any:
		raw, ok := d["fields"]
		if !ok {
			return nil, schemaErr("", "document has no 'fields' list")
		}
		l, ok := asList(raw)
		if !ok {
			return nil, schemaErr("", "'fields' must be a list, got %T", raw)
		}
		list = l
	case nil:
		return nil, schemaErr("", "document is empty")
	default:
		l, ok := asList(doc)
		if !ok {
			return nil, schemaErr("", "document must be a mapping or a list, got %T", doc)
		}
		list = l
	}

	fields := make([]FieldSpec, 0, len(list))
	for i, item := range list {
		m, ok := asMap(item)
		if !ok {
			return nil, schemaErr("", "fields[%d] must be a mapping, got %T", i, item)
		}
		f, err := parseField(i, m)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return New(fields...)
}

// New checks the fields for consistency and returns the Schema. Field
// values are copied; later changes to the arguments do not affect it.
func New(fields ...FieldSpec) (*Schema, error) {
	if len(fields) == 0 {
		return nil, schemaErr("", "at least one field is required")
	}
	s := &Schema{
		fields: make([]FieldSpec, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if err := check(f); err != nil {
			return nil, err
		}
		if _, dup := s.index[f.Name]; dup {
			return nil, schemaErr(f.Name, "duplicate field name")
		}
		s.index[f.Name] = len(s.fields)
		s.fields = append(s.fields, clone(f))
	}
	return s, nil
}

// MustNew is New for statically known schemas; it panics on error.
func MustNew(fields ...FieldSpec) *Schema {
	s, err := New(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

func clone(f FieldSpec) FieldSpec {
	if f.Range != nil {
		r := *f.Range
		f.Range = &r
	}
	if f.Dates != nil {
		d := *f.Dates
		f.Dates = &d
	}
	if f.Length != nil {
		l := *f.Length
		f.Length = &l
	}
	if f.Precision != nil {
		p := *f.Precision
		f.Precision = &p
	}
	if f.Values != nil {
		f.Values = append([]string(nil), f.Values...)
	}
	return f
}

// check enforces the per-field invariants.
func check(f FieldSpec) error {
	if strings.TrimSpace(f.Name) == "" {
		return schemaErr("", "field is missing 'name'")
	}
	if f.Type == "" {
		return schemaErr(f.Name, "missing 'type'")
	}
	if !f.Type.Valid() {
		return schemaErr(f.Name, "unsupported type '%s' (supported: int, float, string, date, category)", f.Type)
	}
	if f.NullRate < 0 || f.NullRate > 1 || math.IsNaN(f.NullRate) {
		return schemaErr(f.Name, "null_rate %v must be between 0 and 1", f.NullRate)
	}

	switch f.Type {
	case Int, Float:
		r := f.Bounds()
		if r.Min > r.Max {
			return schemaErr(f.Name, "range.min %v is greater than range.max %v", r.Min, r.Max)
		}
		if f.Type == Int && (r.Min != math.Trunc(r.Min) || r.Max != math.Trunc(r.Max)) {
			return schemaErr(f.Name, "int range bounds must be whole numbers")
		}
		if f.Precision != nil {
			if f.Type != Float {
				return schemaErr(f.Name, "precision only applies to float fields")
			}
			if *f.Precision < 0 {
				return schemaErr(f.Name, "precision %d must not be negative", *f.Precision)
			}
			if *f.Precision > MaxPrecision {
				return schemaErr(f.Name, "precision %d exceeds the maximum of %d decimal places", *f.Precision, MaxPrecision)
			}
		}
		if f.Type == Float {
			scale := math.Pow10(f.Decimals())
			if math.IsInf(r.Min*scale, 0) || math.IsInf(r.Max*scale, 0) {
				return schemaErr(f.Name, "range is too large for %d decimal places", f.Decimals())
			}
		}
	case Date:
		start, end, err := f.DateSpan()
		if err != nil {
			return schemaErr(f.Name, "%v", err)
		}
		if start.After(end) {
			return schemaErr(f.Name, "range.start %s is after range.end %s", f.DateBounds().Start, f.DateBounds().End)
		}
		if _, err := Layout(f.DateFormat()); err != nil {
			return schemaErr(f.Name, "%v", err)
		}
	case String:
		l := f.LengthBounds()
		if l.Min < 0 || l.Max < 0 {
			return schemaErr(f.Name, "length bounds must not be negative")
		}
		if l.Min > l.Max {
			return schemaErr(f.Name, "length.min %d is greater than length.max %d", l.Min, l.Max)
		}
	case Category:
		if len(f.Values) == 0 {
			return schemaErr(f.Name, "category field requires a non-empty 'values' list")
		}
		seen := make(map[string]bool, len(f.Values))
		for _, v := range f.Values {
			if seen[v] {
				return schemaErr(f.Name, "duplicate category value '%s'", v)
			}
			seen[v] = true
		}
	}
	return nil
}

func parseField(i int, m map[string]any) (FieldSpec, error) {
	name, ok := m["name"]
	if !ok || name == nil {
		return FieldSpec{}, schemaErr("", "fields[%d] is missing 'name'", i)
	}
	f := FieldSpec{
		Name:     toString(name),
		NullRate: DefaultNullRate,
	}

	rawType, ok := m["type"]
	if !ok || rawType == nil {
		return FieldSpec{}, schemaErr(f.Name, "missing 'type'")
	}
	f.Type = FieldType(strings.ToLower(strings.TrimSpace(toString(rawType))))
	if !f.Type.Valid() {
		return FieldSpec{}, schemaErr(f.Name, "unsupported type '%s' (supported: int, float, string, date, category)", f.Type)
	}

	var err error
	if f.Nullable, err = boolKey(f.Name, m, "nullable"); err != nil {
		return FieldSpec{}, err
	}
	if f.Unique, err = boolKey(f.Name, m, "unique"); err != nil {
		return FieldSpec{}, err
	}
	if v, ok := m["null_rate"]; ok && v != nil {
		if f.NullRate, ok = toFloat(v); !ok {
			return FieldSpec{}, schemaErr(f.Name, "null_rate must be a number, got %v", v)
		}
	}

	if raw, ok := m["range"]; ok && raw != nil {
		rm, ok := asMap(raw)
		if !ok {
			return FieldSpec{}, schemaErr(f.Name, "range must be a mapping, got %T", raw)
		}
		if err := parseRange(&f, rm); err != nil {
			return FieldSpec{}, err
		}
	}

	if raw, ok := m["values"]; ok && raw != nil {
		list, ok := asList(raw)
		if !ok {
			return FieldSpec{}, schemaErr(f.Name, "values must be a list, got %T", raw)
		}
		f.Values = make([]string, len(list))
		for j, v := range list {
			f.Values[j] = toString(v)
		}
	}

	if raw, ok := m["length"]; ok && raw != nil {
		lm, ok := asMap(raw)
		if !ok {
			return FieldSpec{}, schemaErr(f.Name, "length must be a mapping, got %T", raw)
		}
		l := LengthRange{Min: DefaultMinLength, Max: DefaultMaxLength}
		if v, ok := lm["min"]; ok {
			if l.Min, ok = toInt(v); !ok {
				return FieldSpec{}, schemaErr(f.Name, "length.min must be an integer, got %v", v)
			}
		}
		if v, ok := lm["max"]; ok {
			if l.Max, ok = toInt(v); !ok {
				return FieldSpec{}, schemaErr(f.Name, "length.max must be an integer, got %v", v)
			}
		}
		f.Length = &l
	}

	if v, ok := m["precision"]; ok && v != nil {
		p, ok := toInt(v)
		if !ok {
			return FieldSpec{}, schemaErr(f.Name, "precision must be an integer, got %v", v)
		}
		f.Precision = &p
	}
	if v, ok := m["format"]; ok && v != nil {
		f.Format = toString(v)
	}
	if v, ok := m["faker_template"]; ok && v != nil {
		f.FakerTemplate = toString(v)
	}
	return f, nil
}

func parseRange(f *FieldSpec, rm map[string]any) error {
	switch f.Type {
	case Int, Float:
		r := f.Bounds()
		if v, ok := rm["min"]; ok {
			if r.Min, ok = toFloat(v); !ok {
				return schemaErr(f.Name, "range.min must be a number, got %v", v)
			}
		}
		if v, ok := rm["max"]; ok {
			if r.Max, ok = toFloat(v); !ok {
				return schemaErr(f.Name, "range.max must be a number, got %v", v)
			}
		}
		f.Range = &r
	case Date:
		d := f.DateBounds()
		if v, ok := rm["start"]; ok {
			d.Start = dateString(v)
		}
		if v, ok := rm["end"]; ok {
			d.End = dateString(v)
		}
		f.Dates = &d
	default:
		return schemaErr(f.Name, "range is not supported for %s fields", f.Type)
	}
	return nil
}

func boolKey(field string, m map[string]any, key string) (bool, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return false, nil
	}
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(b)
		if err != nil {
			return false, schemaErr(field, "%s must be a boolean, got %q", key, b)
		}
		return parsed, nil
	}
	return false, schemaErr(field, "%s must be a boolean, got %v", key, v)
}

func asList(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case []map[string]any:
		out := make([]any, len(l))
		for i, m := range l {
			out[i] = m
		}
		return out, true
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	return nil, false
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	}
	return fmt.Sprint(v)
}

// dateString accepts ISO strings and the timestamp types YAML and TOML
// decoders produce for unquoted dates.
func dateString(v any) string {
	if t, ok := v.(time.Time); ok {
		return t.Format("2006-01-02")
	}
	return toString(v)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func toInt(v any) (int, bool) {
	f, ok := toFloat(v)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}
