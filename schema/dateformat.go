package schema

import (
	"fmt"
	"strings"
	"time"
)

// strftime directives mapped to Go reference-time layouts.
var strftimeLayouts = map[byte]string{
	'Y': "2006",
	'y': "06",
	'm': "01",
	'd': "02",
	'e': "_2",
	'H': "15",
	'I': "03",
	'M': "04",
	'S': "05",
	'p': "PM",
	'b': "Jan",
	'h': "Jan",
	'B': "January",
	'a': "Mon",
	'A': "Monday",
	'j': "002",
	'f': "000000",
	'z': "-0700",
	'Z': "MST",
	'%': "%",
}

// layoutWords are the alphabetic tokens of Go's reference time. Literal
// text containing them would be rewritten by time.Format.
var layoutWords = []string{"Jan", "Mon", "MST", "PM", "pm"}

// Layout converts a strftime-style date pattern such as "%Y-%m-%d" into a
// Go time layout. Literal text that Go would read as a layout token (any
// digit, a reference-time word, or an underscore before %Y or %e) is
// rejected because a Go layout has no escape syntax.
func Layout(format string) (string, error) {
	var b, literal strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			literal.WriteByte(c)
			continue
		}
		if i+1 >= len(format) {
			return "", fmt.Errorf("date format %q ends with a bare %%", format)
		}
		i++
		layout, ok := strftimeLayouts[format[i]]
		if !ok {
			return "", fmt.Errorf("date format %q uses unsupported directive %%%c", format, format[i])
		}
		if layout == "%" {
			literal.WriteByte('%')
			continue
		}
		if err := checkLiteral(format, literal.String(), layout); err != nil {
			return "", err
		}
		b.WriteString(literal.String())
		literal.Reset()
		b.WriteString(layout)
	}
	if err := checkLiteral(format, literal.String(), ""); err != nil {
		return "", err
	}
	b.WriteString(literal.String())
	return b.String(), nil
}

// checkLiteral rejects literal text that would not survive time.Format.
// next is the layout of the directive that follows the text.
func checkLiteral(format, literal, next string) error {
	if literal == "" {
		return nil
	}
	if i := strings.IndexAny(literal, "0123456789"); i >= 0 {
		return fmt.Errorf("date format %q has the digit %q in its literal text", format, literal[i])
	}
	for _, word := range layoutWords {
		if strings.Contains(literal, word) {
			return fmt.Errorf("date format %q has %q in its literal text", format, word)
		}
	}
	if strings.HasSuffix(literal, "_") && (strings.HasPrefix(next, "2") || strings.HasPrefix(next, "_")) {
		return fmt.Errorf("date format %q has an underscore in its literal text before a year or day directive", format)
	}
	return nil
}

// ParseDate parses value with a strftime-style pattern.
func ParseDate(value, format string) (time.Time, error) {
	layout, err := Layout(format)
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(layout, value)
}

// FormatDate renders t with a strftime-style pattern.
func FormatDate(t time.Time, format string) (string, error) {
	layout, err := Layout(format)
	if err != nil {
		return "", err
	}
	return t.Format(layout), nil
}

// isoDate parses the YYYY-MM-DD bounds used by date ranges.
func isoDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}

// DateSpan returns the inclusive start and end days of a date field.
func (f FieldSpec) DateSpan() (time.Time, time.Time, error) {
	r := f.DateBounds()
	start, err := isoDate(r.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("range.start %q: %w", r.Start, err)
	}
	end, err := isoDate(r.End)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("range.end %q: %w", r.End, err)
	}
	return start, end, nil
}
