// Package output provides output formatting interfaces.
// This package produces human and machine-readable quotes.
package output

import (
	"io"
	"strings"

	"clinic-tariff/core/quote"
	"clinic-tariff/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable report
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"
)

// Formats lists the supported formats
var Formats = []Format{FormatCLI, FormatJSON}

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render writes the quote to w
	Render(w io.Writer, q *quote.Quote) error
}

// Options control the human-readable report
type Options struct {
	// NoColor disables terminal styling
	NoColor bool

	// ShowDetails adds the per-branch price breakdown
	ShowDetails bool
}

// Get returns the formatter for a format name
func Get(format string, opts Options) (Formatter, error) {
	switch Format(strings.ToLower(strings.TrimSpace(format))) {
	case FormatCLI, "":
		return NewCLIFormatter(opts), nil
	case FormatJSON:
		return NewJSONFormatter(), nil
	default:
		return nil, errors.NotSupported("output format "+format).
			WithContext("field", "format")
	}
}
