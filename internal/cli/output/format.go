// Package output provides output formatting for CLI commands: tables for
// humans, JSON/YAML for scripts.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format represents the output format type.
type Format string

const (
	// FormatTable outputs data in a formatted table.
	FormatTable Format = "table"
	// FormatJSON outputs data as JSON.
	FormatJSON Format = "json"
	// FormatYAML outputs data as YAML.
	FormatYAML Format = "yaml"
)

// ParseFormat parses a string into a Format, returning an error if invalid.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "table", "":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("invalid output format: %q (valid: table, json, yaml)", s)
	}
}

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}

// Print writes data to w in the given format. For table format, data must
// implement TableRenderer; JSON is used as a fallback otherwise.
func Print(w io.Writer, format Format, data any) error {
	switch format {
	case FormatTable:
		if renderer, ok := data.(TableRenderer); ok {
			return PrintTable(w, renderer)
		}
		return PrintJSON(w, data)
	case FormatJSON:
		return PrintJSON(w, data)
	case FormatYAML:
		return PrintYAML(w, data)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// PrintJSON writes data as indented JSON to the writer.
func PrintJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// PrintYAML writes data as YAML to the writer.
func PrintYAML(w io.Writer, data any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer func() { _ = encoder.Close() }()
	return encoder.Encode(data)
}
