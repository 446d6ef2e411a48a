package loader

import (
	"bytes"
	"fmt"
	"go/format"
	"strconv"
	"strings"
	"text/template"
	"unicode"

	"github.com/ridoystarlord/etlforge/schema"
)

type structData struct {
	PackageName string
	TypeName    string
	Fields      []structField
}

type structField struct {
	Name string
	Type string
	Tag  string
}

const structTemplate = `// Code generated by etlforge generate-structs. DO NOT EDIT.

package {{.PackageName}}

// {{.TypeName}} is one row of the {{.TypeName}} dataset.
type {{.TypeName}} struct {
{{range .Fields}}	{{.Name}} {{.Type}} ` + "`" + `etl:"{{.Tag}}"` + "`" + `
{{end}}}
`

var structTmpl = template.Must(template.New("struct").Parse(structTemplate))

// StructSource renders s as a Go struct whose `etl` tags TagLoader reads
// back into the same schema. Nullable fields become pointers.
func StructSource(packageName, typeName string, s *schema.Schema) ([]byte, error) {
	data := structData{PackageName: packageName, TypeName: typeName}
	seen := map[string]bool{}
	for _, f := range s.Fields() {
		name := toPascalCase(f.Name)
		if name == "" || seen[name] {
			name = fmt.Sprintf("Field%d", len(data.Fields))
		}
		seen[name] = true

		goType := goTypeFor(f.Type)
		if f.Nullable {
			goType = "*" + goType
		}
		data.Fields = append(data.Fields, structField{Name: name, Type: goType, Tag: etlTag(f)})
	}

	var buf bytes.Buffer
	if err := structTmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("formatting generated struct: %w", err)
	}
	return src, nil
}

func goTypeFor(t schema.FieldType) string {
	switch t {
	case schema.Int:
		return "int64"
	case schema.Float:
		return "float64"
	}
	return "string"
}

func etlTag(f schema.FieldSpec) string {
	parts := []string{f.Name, "type:" + string(f.Type)}
	if f.Unique {
		parts = append(parts, "unique")
	}
	if f.Nullable {
		parts = append(parts, "null_rate:"+strconv.FormatFloat(f.NullRate, 'f', -1, 64))
	}
	if f.Range != nil {
		parts = append(parts, fmt.Sprintf("range:%s..%s",
			strconv.FormatFloat(f.Range.Min, 'f', -1, 64),
			strconv.FormatFloat(f.Range.Max, 'f', -1, 64)))
	}
	if f.Dates != nil {
		parts = append(parts, fmt.Sprintf("dates:%s..%s", f.Dates.Start, f.Dates.End))
	}
	if f.Length != nil {
		parts = append(parts, fmt.Sprintf("length:%d..%d", f.Length.Min, f.Length.Max))
	}
	if len(f.Values) > 0 {
		parts = append(parts, "values:"+strings.Join(f.Values, "|"))
	}
	if f.Precision != nil {
		parts = append(parts, "precision:"+strconv.Itoa(*f.Precision))
	}
	if f.Format != "" {
		parts = append(parts, "format:"+f.Format)
	}
	if f.FakerTemplate != "" {
		parts = append(parts, "faker:"+f.FakerTemplate)
	}
	return strings.ReplaceAll(strings.Join(parts, ";"), `"`, `\"`)
}

// toPascalCase converts snake_case or kebab-case to PascalCase
func toPascalCase(s string) string {
	var b strings.Builder
	upper := true
	for _, r := range s {
		if r == '_' || r == '-' || r == ' ' {
			upper = true
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		if b.Len() == 0 && unicode.IsDigit(r) {
			b.WriteByte('F')
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
