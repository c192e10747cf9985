package palette

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format identifies the document syntax of a palette file.
type Format string

// Supported palette formats.
const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatForPath picks the document format from the file extension.
// Anything that is not .yaml or .yml is treated as TOML.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// Parse decodes data into a Palette. It only checks structure: every slot
// must be present and hold a string. Extra keys are ignored. Color values
// are not inspected; see Validate.
func Parse(data []byte, format Format) (Palette, error) {
	doc := map[string]any{}

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return Palette{}, &ParseError{Reason: err.Error(), Err: err}
		}
	case FormatTOML, "":
		if _, err := toml.Decode(string(data), &doc); err != nil {
			return Palette{}, &ParseError{Reason: err.Error(), Err: err}
		}
	default:
		return Palette{}, &ParseError{Reason: fmt.Sprintf("unsupported format %q", format)}
	}

	var values [16]string

	for i, name := range FieldNames {
		raw, ok := doc[name]
		if !ok {
			return Palette{}, &ParseError{Field: name, Reason: "missing"}
		}

		s, ok := raw.(string)
		if !ok {
			return Palette{}, &ParseError{Field: name, Reason: fmt.Sprintf("expected string, got %T", raw)}
		}

		values[i] = s
	}

	return fromValues(values), nil
}

// Load reads, parses, and validates the palette file at path.
func Load(path string) (Palette, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Palette{}, &ReadError{Path: path, Err: err}
	}

	if !utf8.Valid(data) {
		return Palette{}, &ReadError{Path: path, Err: fmt.Errorf("content is not valid UTF-8")}
	}

	p, err := Parse(data, FormatForPath(path))
	if err != nil {
		return Palette{}, err
	}

	if err := Validate(p); err != nil {
		return Palette{}, err
	}

	return p, nil
}
