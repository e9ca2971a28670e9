// Package parser defines the strategy interface statement parsers implement
// and the raw row shape they produce.
package parser

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Parser is the strategy interface for statement file formats.
type Parser interface {
	// Name returns the parser identifier (e.g. "csv", "ofx").
	Name() string

	// CanParse checks if this parser should handle the file, based on its
	// path and the first bytes of content.
	CanParse(path string, header []byte) bool

	// Parse extracts raw rows from the file. Values stay as strings exactly
	// as exported; normalization happens downstream.
	Parse(ctx context.Context, r io.Reader, path string) (*Statement, error)
}

// Statement is a parsed file before normalization.
type Statement struct {
	// Source is the file path the statement came from.
	Source string
	// Rows are the statement's transaction rows in file order.
	Rows []Row
}

// Row is one raw transaction row. Date, Amount, and Balance are unparsed cell
// values; Account is empty when the file carries no account column (the
// ingestor substitutes the run's default label).
type Row struct {
	// Line is the 1-based record number in the source file, counting the
	// header, for error reports.
	Line        int
	Date        string
	Description string
	Amount      string
	Balance     string
	Account     string
}

// SchemaError reports required columns missing from a file's header. It is
// fatal to the whole file and raised before any row is processed.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}
