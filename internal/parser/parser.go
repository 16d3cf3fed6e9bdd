// Package parser turns raw feed payloads into frames. Format-specific
// implementations live in the csv and json subpackages.
package parser

import (
	"fmt"
	"io"
	"strings"

	"brewetl/internal/frame"
	"brewetl/internal/parser/csv"
	"brewetl/internal/parser/json"
)

// Parser decodes a whole payload into a Frame.
type Parser interface {
	Parse(r io.Reader) (*frame.Frame, error)
}

// Format names a payload encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ForFormat returns a parser with default options for format.
func ForFormat(format Format) (Parser, error) {
	switch Format(strings.ToLower(string(format))) {
	case FormatCSV:
		return csv.NewParser(csv.Options{InferTypes: true}), nil
	case FormatJSON:
		return json.NewParser(json.Options{}), nil
	default:
		return nil, fmt.Errorf("parser: unsupported format %q", format)
	}
}
