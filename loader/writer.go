package loader

import (
	"gopkg.in/yaml.v3"

	"github.com/ridoystarlord/etlforge/schema"
)

type schemaDoc struct {
	Fields []fieldDoc `yaml:"fields"`
}

type fieldDoc struct {
	Name          string     `yaml:"name"`
	Type          string     `yaml:"type"`
	Nullable      bool       `yaml:"nullable,omitempty"`
	NullRate      *float64   `yaml:"null_rate,omitempty"`
	Unique        bool       `yaml:"unique,omitempty"`
	Range         *rangeDoc  `yaml:"range,omitempty"`
	Values        []string   `yaml:"values,omitempty"`
	Length        *lengthDoc `yaml:"length,omitempty"`
	Precision     *int       `yaml:"precision,omitempty"`
	Format        string     `yaml:"format,omitempty"`
	FakerTemplate string     `yaml:"faker_template,omitempty"`
}

type rangeDoc struct {
	Min   *float64 `yaml:"min,omitempty"`
	Max   *float64 `yaml:"max,omitempty"`
	Start string   `yaml:"start,omitempty"`
	End   string   `yaml:"end,omitempty"`
}

type lengthDoc struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// MarshalYAML renders a schema as a YAML document that LoadSchemaBytes
// reads back to an equal schema. Unset optional constraints are omitted.
func MarshalYAML(s *schema.Schema) ([]byte, error) {
	doc := schemaDoc{Fields: make([]fieldDoc, 0, s.Len())}
	for _, f := range s.Fields() {
		fd := fieldDoc{
			Name:          f.Name,
			Type:          string(f.Type),
			Nullable:      f.Nullable,
			Unique:        f.Unique,
			Values:        f.Values,
			Precision:     f.Precision,
			Format:        f.Format,
			FakerTemplate: f.FakerTemplate,
		}
		if f.Nullable {
			rate := f.NullRate
			fd.NullRate = &rate
		}
		if f.Range != nil {
			lo, hi := f.Range.Min, f.Range.Max
			fd.Range = &rangeDoc{Min: &lo, Max: &hi}
		}
		if f.Dates != nil {
			fd.Range = &rangeDoc{Start: f.Dates.Start, End: f.Dates.End}
		}
		if f.Length != nil {
			fd.Length = &lengthDoc{Min: f.Length.Min, Max: f.Length.Max}
		}
		doc.Fields = append(doc.Fields, fd)
	}
	return yaml.Marshal(doc)
}
