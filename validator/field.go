package validator

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ridoystarlord/etlforge/schema"
)

// Finding is one constraint a cell violates.
type Finding struct {
	Kind    ErrorKind
	Rule    string
	Message string
}

// IsNull reports whether a cell counts as null: nil or a NaN float.
func IsNull(v any) bool {
	switch n := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(n)
	case float32:
		return math.IsNaN(float64(n))
	}
	return false
}

// CheckCell runs the null, type and constraint checks of one field on one
// cell. A null or wrongly typed cell stops the checks for that cell.
func CheckCell(f schema.FieldSpec, v any) []Finding {
	if IsNull(v) {
		if f.Nullable {
			return nil
		}
		return []Finding{{
			Kind:    NullConstraintViolation,
			Rule:    "nullable",
			Message: fmt.Sprintf("Null value found in non-nullable column '%s'", f.Name),
		}}
	}

	value, err := Coerce(f, v)
	if err != nil {
		return []Finding{{
			Kind:    TypeMismatch,
			Rule:    "type",
			Message: fmt.Sprintf("Value '%s' is not of type '%s'", display(v), f.Type),
		}}
	}

	switch f.Type {
	case schema.Int:
		return checkNumber(f, float64(value.(int64)), v)
	case schema.Float:
		return checkNumber(f, value.(float64), v)
	case schema.String:
		return checkLength(f, value.(string))
	case schema.Date:
		return checkDate(f, value.(time.Time), v)
	case schema.Category:
		return checkCategory(f, value.(string))
	}
	panic(fmt.Sprintf("validator: unhandled field type %q", f.Type))
}

// Coerce converts a cell to the field's Go representation: int64 for int,
// float64 for float, string for string and category, time.Time for date.
func Coerce(f schema.FieldSpec, v any) (any, error) {
	switch f.Type {
	case schema.Int:
		return coerceInt(v)
	case schema.Float:
		return coerceFloat(v)
	case schema.String:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%T is not a string", v)
		}
		return s, nil
	case schema.Date:
		switch d := v.(type) {
		case time.Time:
			return d, nil
		case string:
			return schema.ParseDate(strings.TrimSpace(d), f.DateFormat())
		}
		return nil, fmt.Errorf("%T is not a date", v)
	case schema.Category:
		return display(v), nil
	}
	return nil, fmt.Errorf("unsupported field type %q", f.Type)
}

func coerceInt(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows int64", n)
		}
		return int64(n), nil
	case float32:
		return coerceInt(float64(n))
	case float64:
		// numeric readers widen integer columns that contain nulls
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, fmt.Errorf("%v is not a whole number", n)
		}
		return int64(n), nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(n), 10, 64)
	}
	return 0, fmt.Errorf("%T is not an integer", v)
}

func coerceFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		if math.IsInf(n, 0) || math.IsNaN(n) {
			return 0, fmt.Errorf("%v is not finite", n)
		}
		return n, nil
	case float32:
		return coerceFloat(float64(n))
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, err
		}
		return coerceFloat(f)
	}
	i, err := coerceInt(v)
	if err != nil {
		return 0, err
	}
	return float64(i), nil
}

func checkNumber(f schema.FieldSpec, n float64, raw any) []Finding {
	if f.Range == nil {
		return nil
	}
	var out []Finding
	if n < f.Range.Min {
		out = append(out, Finding{
			Kind:    ConstraintViolation,
			Rule:    "range.min",
			Message: fmt.Sprintf("Value '%s' is below minimum %s", display(raw), formatNumber(f.Range.Min)),
		})
	}
	if n > f.Range.Max {
		out = append(out, Finding{
			Kind:    ConstraintViolation,
			Rule:    "range.max",
			Message: fmt.Sprintf("Value '%s' is above maximum %s", display(raw), formatNumber(f.Range.Max)),
		})
	}
	return out
}

func checkDate(f schema.FieldSpec, d time.Time, raw any) []Finding {
	if f.Dates == nil {
		return nil
	}
	start, end, err := f.DateSpan()
	if err != nil {
		return nil
	}
	var out []Finding
	// compare calendar days so formats with a time part do not shift bounds
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	if day.Before(start) {
		out = append(out, Finding{
			Kind:    ConstraintViolation,
			Rule:    "range.start",
			Message: fmt.Sprintf("Date '%s' is before range start %s", display(raw), f.Dates.Start),
		})
	}
	if day.After(end) {
		out = append(out, Finding{
			Kind:    ConstraintViolation,
			Rule:    "range.end",
			Message: fmt.Sprintf("Date '%s' is after range end %s", display(raw), f.Dates.End),
		})
	}
	return out
}

func checkCategory(f schema.FieldSpec, s string) []Finding {
	for _, allowed := range f.Values {
		if s == allowed {
			return nil
		}
	}
	return []Finding{{
		Kind:    ConstraintViolation,
		Rule:    "values",
		Message: fmt.Sprintf("Value '%s' is not in allowed categories [%s]", s, strings.Join(f.Values, ", ")),
	}}
}

func checkLength(f schema.FieldSpec, s string) []Finding {
	if f.Length == nil {
		return nil
	}
	n := utf8.RuneCountInString(s)
	var out []Finding
	if n < f.Length.Min {
		out = append(out, Finding{
			Kind:    ConstraintViolation,
			Rule:    "length.min",
			Message: fmt.Sprintf("Value '%s' is shorter than minimum length %d", s, f.Length.Min),
		})
	}
	if n > f.Length.Max {
		out = append(out, Finding{
			Kind:    ConstraintViolation,
			Rule:    "length.max",
			Message: fmt.Sprintf("Value '%s' is longer than maximum length %d", s, f.Length.Max),
		})
	}
	return out
}

// display renders a cell the way it appears in messages and is compared
// against category values.
func display(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case time.Time:
		return x.Format("2006-01-02")
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
