package loader

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/ridoystarlord/etlforge/schema"
)

// ErrStructNotFound is returned when no struct with the requested name
// exists in the scanned sources.
var ErrStructNotFound = errors.New("struct not found")

// TagLoader reads schemas from Go struct declarations carrying `etl` tags.
//
//	type Customer struct {
//		ID    int64   `etl:"id;unique;range:1..1000"`
//		Email *string `etl:"email;faker:email"`
//		Tier  string  `etl:"tier;type:category;values:A|B|C"`
//	}
//
// Pointer fields are nullable. Untagged exported fields are included with a
// snake_case name and a type inferred from the Go type; `etl:"-"` skips one.
type TagLoader struct {
	path string
}

// NewTagLoader creates a loader over a .go file or a directory of them.
func NewTagLoader(path string) *TagLoader {
	return &TagLoader{path: path}
}

// LoadStructSchema returns the schema of the named struct found under path.
func LoadStructSchema(path, typeName string) (*schema.Schema, error) {
	schemas, err := NewTagLoader(path).Load()
	if err != nil {
		return nil, err
	}
	s, ok := schemas[typeName]
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", ErrStructNotFound, typeName, path)
	}
	return s, nil
}

// Load parses every struct under the loader path, keyed by type name.
func (tl *TagLoader) Load() (map[string]*schema.Schema, error) {
	info, err := os.Stat(tl.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSchemaNotFound, tl.path)
		}
		return nil, err
	}

	files := []string{tl.path}
	if info.IsDir() {
		files, err = filepath.Glob(filepath.Join(tl.path, "*.go"))
		if err != nil {
			return nil, err
		}
	}

	schemas := make(map[string]*schema.Schema)
	for _, file := range files {
		if strings.HasSuffix(file, "_test.go") {
			continue
		}
		if err := tl.parseGoFile(file, schemas); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", file, err)
		}
	}
	return schemas, nil
}

func (tl *TagLoader) parseGoFile(filePath string, out map[string]*schema.Schema) error {
	fset := token.NewFileSet()
	node, err := parser.ParseFile(fset, filePath, nil, 0)
	if err != nil {
		return err
	}

	var firstErr error
	ast.Inspect(node, func(n ast.Node) bool {
		ts, ok := n.(*ast.TypeSpec)
		if !ok || firstErr != nil {
			return firstErr == nil
		}
		st, ok := ts.Type.(*ast.StructType)
		if !ok {
			return true
		}
		s, err := tl.parseStruct(st)
		if err != nil {
			firstErr = fmt.Errorf("struct %s: %w", ts.Name.Name, err)
			return false
		}
		if s != nil {
			out[ts.Name.Name] = s
		}
		return true
	})
	return firstErr
}

func (tl *TagLoader) parseStruct(st *ast.StructType) (*schema.Schema, error) {
	var fields []schema.FieldSpec
	for _, field := range st.Fields.List {
		if len(field.Names) == 0 {
			continue
		}
		fieldName := field.Names[0].Name
		if !ast.IsExported(fieldName) {
			continue
		}
		f, skip, err := tl.parseField(fieldName, field)
		if err != nil {
			return nil, err
		}
		if !skip {
			fields = append(fields, f)
		}
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return schema.New(fields...)
}

func (tl *TagLoader) parseField(fieldName string, field *ast.Field) (schema.FieldSpec, bool, error) {
	f := schema.FieldSpec{NullRate: schema.DefaultNullRate}
	goType := tl.getFieldType(field.Type)
	_, f.Nullable = field.Type.(*ast.StarExpr)

	tag := ""
	if field.Tag != nil {
		tag = reflect.StructTag(strings.Trim(field.Tag.Value, "`")).Get("etl")
	}
	if tag == "-" {
		return f, true, nil
	}
	if err := tl.parseETLTag(&f, tag); err != nil {
		return f, false, &schema.SchemaError{Field: fieldName, Reason: err.Error()}
	}

	if f.Name == "" {
		f.Name = tl.toSnakeCase(fieldName)
	}
	if f.Type == "" {
		f.Type = tl.inferFieldType(goType)
		if f.Type == "" {
			return f, false, &schema.SchemaError{Field: f.Name, Reason: fmt.Sprintf("cannot infer a field type from Go type %s", goType)}
		}
	}
	return f, false, nil
}

// parseETLTag reads "name;key:value;flag" parts into f. A first part
// without a colon is always the column name.
func (tl *TagLoader) parseETLTag(f *schema.FieldSpec, tag string) error {
	for i, part := range strings.Split(tag, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, hasValue := strings.Cut(part, ":")
		if !hasValue {
			switch {
			case i == 0:
				f.Name = key
			case key == "unique":
				f.Unique = true
			case key == "nullable":
				f.Nullable = true
			case key == "required":
				f.Nullable = false
			default:
				return fmt.Errorf("unknown tag flag %q", key)
			}
			continue
		}

		switch key {
		case "type":
			f.Type = schema.FieldType(value)
		case "null_rate":
			rate, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("null_rate: %w", err)
			}
			f.NullRate = rate
		case "range":
			lo, hi, err := splitPair(value)
			if err != nil {
				return fmt.Errorf("range: %w", err)
			}
			minV, err1 := strconv.ParseFloat(lo, 64)
			maxV, err2 := strconv.ParseFloat(hi, 64)
			if err := errors.Join(err1, err2); err != nil {
				return fmt.Errorf("range: %w", err)
			}
			f.Range = &schema.NumericRange{Min: minV, Max: maxV}
		case "dates":
			start, end, err := splitPair(value)
			if err != nil {
				return fmt.Errorf("dates: %w", err)
			}
			f.Dates = &schema.DateRange{Start: start, End: end}
		case "length":
			lo, hi, err := splitPair(value)
			if err != nil {
				return fmt.Errorf("length: %w", err)
			}
			minL, err1 := strconv.Atoi(lo)
			maxL, err2 := strconv.Atoi(hi)
			if err := errors.Join(err1, err2); err != nil {
				return fmt.Errorf("length: %w", err)
			}
			f.Length = &schema.LengthRange{Min: minL, Max: maxL}
		case "values":
			f.Values = strings.Split(value, "|")
			if f.Type == "" {
				f.Type = schema.Category
			}
		case "precision":
			p, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("precision: %w", err)
			}
			f.Precision = &p
		case "format":
			f.Format = value
		case "faker":
			f.FakerTemplate = value
		default:
			return fmt.Errorf("unknown tag key %q", key)
		}
	}
	return nil
}

func splitPair(v string) (string, string, error) {
	lo, hi, ok := strings.Cut(v, "..")
	if !ok {
		return "", "", fmt.Errorf("expected <lo>..<hi>, got %q", v)
	}
	return strings.TrimSpace(lo), strings.TrimSpace(hi), nil
}

// getFieldType extracts the Go type name from an ast.Expr
func (tl *TagLoader) getFieldType(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return tl.getFieldType(t.X)
	case *ast.ArrayType:
		return "[]" + tl.getFieldType(t.Elt)
	case *ast.SelectorExpr:
		if x, ok := t.X.(*ast.Ident); ok {
			return x.Name + "." + t.Sel.Name
		}
	}
	return ""
}

// inferFieldType maps a Go type name to a field type.
func (tl *TagLoader) inferFieldType(goType string) schema.FieldType {
	switch goType {
	case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32":
		return schema.Int
	case "float32", "float64":
		return schema.Float
	case "string":
		return schema.String
	case "time.Time":
		return schema.Date
	}
	return ""
}

// toSnakeCase converts PascalCase to snake_case
func (tl *TagLoader) toSnakeCase(s string) string {
	var b strings.Builder
	var prev rune
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' && prev >= 'a' && prev <= 'z' {
			b.WriteByte('_')
		}
		b.WriteRune(r)
		prev = r
	}
	return strings.ToLower(b.String())
}
