// Package propfile parses property resource files into flat key/value maps.
//
// Three formats are understood: the line oriented properties format, YAML and
// JSON (with comments and trailing commas allowed). Structured documents are
// flattened into dotted keys, so
//
//	server:
//	  ports: [80, 443]
//
// yields server.ports.0=80 and server.ports.1=443.
package propfile

import (
	"fmt"
	"io"
	"path"
	"strings"
)

// Format identifies a property file syntax.
type Format int

const (
	Properties Format = iota
	YAML
	JSON
)

func (f Format) String() string {
	switch f {
	case YAML:
		return "yaml"
	case JSON:
		return "json"
	default:
		return "properties"
	}
}

// FormatFor picks the format from the file extension. Unknown extensions use
// the properties format.
func FormatFor(name string) Format {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		return YAML
	case ".json", ".jsonc":
		return JSON
	default:
		return Properties
	}
}

// Parse reads r in the given format.
func Parse(format Format, r io.Reader) (map[string]string, error) {
	if r == nil {
		return nil, fmt.Errorf("propfile: nil reader")
	}
	switch format {
	case YAML:
		return ParseYAML(r)
	case JSON:
		return ParseJSON(r)
	default:
		return ParseProperties(r)
	}
}

// ParseFile reads r using the format implied by name.
func ParseFile(name string, r io.Reader) (map[string]string, error) {
	values, err := Parse(FormatFor(name), r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return values, nil
}
