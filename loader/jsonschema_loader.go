package loader

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"

	"github.com/google/jsonschema-go/jsonschema"
	"gopkg.in/yaml.v3"

	"github.com/ridoystarlord/etlforge/schema"
)

// FromJSONSchema converts a JSON Schema object describing one row into a
// schema. Properties keep their document order. Mapping:
//
//	integer           -> int (minimum/maximum -> range)
//	number            -> float
//	string + enum     -> category
//	string + "date"   -> date
//	string            -> string (minLength/maxLength -> length)
//	["<t>", "null"]   -> nullable
//
// Properties named in the top-level "x-unique" list are marked unique.
func FromJSONSchema(data []byte) (*schema.Schema, error) {
	var js jsonschema.Schema
	if err := json.Unmarshal(data, &js); err != nil {
		// JSON Schema documents are also accepted in YAML form
		var doc any
		if yerr := yaml.Unmarshal(data, &doc); yerr != nil {
			return nil, fmt.Errorf("unmarshalling JSON Schema: %w", err)
		}
		converted, merr := json.Marshal(doc)
		if merr != nil {
			return nil, fmt.Errorf("unmarshalling JSON Schema: %w", err)
		}
		if err := json.Unmarshal(converted, &js); err != nil {
			return nil, fmt.Errorf("unmarshalling JSON Schema: %w", err)
		}
	}
	if len(js.Properties) == 0 {
		return nil, &schema.SchemaError{Reason: "JSON Schema has no properties"}
	}

	order, err := propertyOrder(data)
	if err != nil {
		return nil, fmt.Errorf("reading property order: %w", err)
	}
	unique := extraStrings(data, "x-unique")

	fields := make([]schema.FieldSpec, 0, len(js.Properties))
	for _, name := range order {
		prop, ok := js.Properties[name]
		if !ok || prop == nil {
			continue
		}
		f, err := fieldFromJSONSchema(name, prop)
		if err != nil {
			return nil, err
		}
		f.Unique = slices.Contains(unique, name)
		fields = append(fields, f)
	}
	return schema.New(fields...)
}

func fieldFromJSONSchema(name string, prop *jsonschema.Schema) (schema.FieldSpec, error) {
	f := schema.FieldSpec{Name: name, NullRate: schema.DefaultNullRate}

	types := slices.Clone(prop.Types)
	if prop.Type != "" {
		types = append(types, prop.Type)
	}
	var base string
	for _, t := range types {
		if t == "null" {
			f.Nullable = true
			continue
		}
		base = t
	}
	if base == "" && len(prop.Enum) > 0 {
		base = "string"
	}

	switch base {
	case "integer":
		f.Type = schema.Int
		f.Range = numericRange(prop, schema.DefaultIntMin, schema.DefaultIntMax)
	case "number":
		f.Type = schema.Float
		f.Range = numericRange(prop, schema.DefaultFloatMin, schema.DefaultFloatMax)
	case "string":
		switch {
		case len(prop.Enum) > 0:
			f.Type = schema.Category
			for _, v := range prop.Enum {
				if v == nil {
					f.Nullable = true
					continue
				}
				f.Values = append(f.Values, fmt.Sprint(v))
			}
		case prop.Format == "date":
			f.Type = schema.Date
		default:
			f.Type = schema.String
			if prop.MinLength != nil || prop.MaxLength != nil {
				l := schema.LengthRange{Min: 0, Max: schema.DefaultMaxLength}
				if prop.MinLength != nil {
					l.Min = *prop.MinLength
				}
				if prop.MaxLength != nil {
					l.Max = *prop.MaxLength
				} else if l.Min > l.Max {
					l.Max = l.Min
				}
				f.Length = &l
			}
		}
	default:
		return schema.FieldSpec{}, &schema.SchemaError{Field: name, Reason: fmt.Sprintf("JSON Schema type %q has no tabular equivalent", base)}
	}
	return f, nil
}

func numericRange(prop *jsonschema.Schema, lo, hi float64) *schema.NumericRange {
	if prop.Minimum == nil && prop.Maximum == nil {
		return nil
	}
	r := schema.NumericRange{Min: lo, Max: hi}
	if prop.Minimum != nil {
		r.Min = *prop.Minimum
	}
	if prop.Maximum != nil {
		r.Max = *prop.Maximum
	}
	if prop.Type == "integer" || slices.Contains(prop.Types, "integer") {
		r.Min, r.Max = math.Ceil(r.Min), math.Floor(r.Max)
	}
	return &r
}

// propertyOrder returns the keys of the top-level "properties" mapping in
// document order. YAML is a superset of JSON, so one walk serves both.
func propertyOrder(data []byte) ([]string, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	props := mappingValue(&root, "properties")
	if props == nil || props.Kind != yaml.MappingNode {
		return nil, nil
	}
	var keys []string
	for i := 0; i+1 < len(props.Content); i += 2 {
		keys = append(keys, props.Content[i].Value)
	}
	return keys, nil
}

// extraStrings reads a top-level list of strings that the typed JSON Schema
// model does not keep.
func extraStrings(data []byte, key string) []string {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil
	}
	n := mappingValue(&root, key)
	if n == nil || n.Kind != yaml.SequenceNode {
		return nil
	}
	var out []string
	for _, item := range n.Content {
		out = append(out, item.Value)
	}
	return out
}

func mappingValue(root *yaml.Node, key string) *yaml.Node {
	n := root
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	if n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}
