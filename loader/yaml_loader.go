package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/ridoystarlord/etlforge/schema"
)

// Format names a schema document encoding.
type Format string

const (
	YAML          Format = "yaml"
	JSON          Format = "json"
	TOML          Format = "toml"
	JSONSchema    Format = "jsonschema"
	Frictionless  Format = "frictionless"
	unknownFormat Format = ""
)

// ErrSchemaNotFound is returned when the schema file does not exist.
var ErrSchemaNotFound = errors.New("schema file not found")

// ErrUnsupportedFormat is returned for unknown schema file extensions.
var ErrUnsupportedFormat = errors.New("unsupported schema file format")

// FormatFromPath infers the document format from a file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	case ".json":
		return JSON
	case ".toml":
		return TOML
	}
	return unknownFormat
}

// LoadSchemaFile reads a YAML, JSON or TOML schema file. The format is
// taken from the file extension.
func LoadSchemaFile(filename string) (*schema.Schema, error) {
	format := FormatFromPath(filename)
	if format == unknownFormat {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSchemaNotFound, filename)
		}
		return nil, fmt.Errorf("reading schema file: %w", err)
	}

	return LoadSchemaBytes(data, format)
}

// LoadSchemaBytes parses an in-memory schema document.
func LoadSchemaBytes(data []byte, format Format) (*schema.Schema, error) {
	switch format {
	case JSONSchema:
		return FromJSONSchema(data)
	case Frictionless:
		return FromFrictionless(data)
	}

	doc, err := Decode(data, format)
	if err != nil {
		return nil, err
	}
	return schema.Parse(doc)
}

// Decode turns a YAML, JSON or TOML document into nested maps and slices.
func Decode(data []byte, format Format) (any, error) {
	var doc any
	switch format {
	case YAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("unmarshalling YAML: %w", err)
		}
	case JSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("unmarshalling JSON: %w", err)
		}
	case TOML:
		var m map[string]any
		if _, err := toml.Decode(string(data), &m); err != nil {
			return nil, fmt.Errorf("unmarshalling TOML: %w", err)
		}
		doc = m
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return doc, nil
}
