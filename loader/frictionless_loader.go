package loader

import (
	"fmt"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/ridoystarlord/etlforge/schema"
)

type tableSchema struct {
	Fields []tableSchemaField `yaml:"fields"`
}

type tableSchemaField struct {
	Name        string                `yaml:"name"`
	Type        string                `yaml:"type"`
	Format      string                `yaml:"format"`
	Constraints tableSchemaConstraint `yaml:"constraints"`
}

type tableSchemaConstraint struct {
	Required  bool     `yaml:"required"`
	Unique    bool     `yaml:"unique"`
	Minimum   *float64 `yaml:"minimum"`
	Maximum   *float64 `yaml:"maximum"`
	MinLength *int     `yaml:"minLength"`
	MaxLength *int     `yaml:"maxLength"`
	Enum      []any    `yaml:"enum"`
}

// FromFrictionless converts a Frictionless Table Schema (JSON or YAML) into
// a schema. Fields without constraints.required are nullable. A string
// field with an enum constraint becomes a category.
func FromFrictionless(data []byte) (*schema.Schema, error) {
	var ts tableSchema
	if err := yaml.Unmarshal(data, &ts); err != nil {
		return nil, fmt.Errorf("unmarshalling table schema: %w", err)
	}
	if len(ts.Fields) == 0 {
		return nil, &schema.SchemaError{Reason: "table schema has no fields"}
	}

	fields := make([]schema.FieldSpec, 0, len(ts.Fields))
	for _, tf := range ts.Fields {
		f, err := fieldFromTableSchema(tf)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return schema.New(fields...)
}

func fieldFromTableSchema(tf tableSchemaField) (schema.FieldSpec, error) {
	c := tf.Constraints
	f := schema.FieldSpec{
		Name:     tf.Name,
		Nullable: !c.Required,
		NullRate: schema.DefaultNullRate,
		Unique:   c.Unique,
	}

	typ := tf.Type
	if typ == "" {
		typ = "string"
	}
	switch typ {
	case "integer":
		f.Type = schema.Int
		if r := constraintRange(c, schema.DefaultIntMin, schema.DefaultIntMax); r != nil {
			r.Min, r.Max = math.Ceil(r.Min), math.Floor(r.Max)
			f.Range = r
		}
	case "number":
		f.Type = schema.Float
		f.Range = constraintRange(c, schema.DefaultFloatMin, schema.DefaultFloatMax)
	case "date":
		f.Type = schema.Date
		// "default" and "any" mean ISO dates; custom formats are strftime patterns
		if tf.Format != "" && tf.Format != "default" && tf.Format != "any" {
			f.Format = tf.Format
		}
	case "string":
		if len(c.Enum) > 0 {
			f.Type = schema.Category
			for _, v := range c.Enum {
				f.Values = append(f.Values, fmt.Sprint(v))
			}
			break
		}
		f.Type = schema.String
		if c.MinLength != nil || c.MaxLength != nil {
			l := schema.LengthRange{Min: 0, Max: schema.DefaultMaxLength}
			if c.MinLength != nil {
				l.Min = *c.MinLength
			}
			if c.MaxLength != nil {
				l.Max = *c.MaxLength
			} else if l.Min > l.Max {
				l.Max = l.Min
			}
			f.Length = &l
		}
	default:
		return schema.FieldSpec{}, &schema.SchemaError{Field: tf.Name, Reason: fmt.Sprintf("table schema type %q is not supported", typ)}
	}
	return f, nil
}

func constraintRange(c tableSchemaConstraint, lo, hi float64) *schema.NumericRange {
	if c.Minimum == nil && c.Maximum == nil {
		return nil
	}
	r := schema.NumericRange{Min: lo, Max: hi}
	if c.Minimum != nil {
		r.Min = *c.Minimum
	}
	if c.Maximum != nil {
		r.Max = *c.Maximum
	}
	return &r
}
