// Package csv parses bank CSV exports with a header row into raw statement
// rows.
package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rumor-ml/commons.systems/finledger/internal/parser"
)

// Required logical columns. Matching is case-insensitive after trimming.
const (
	colDate        = "date"
	colDescription = "description"
	colAmount      = "amount"
	colAccount     = "account"
	colBalance     = "balance"
)

// Parser implements header-mapped CSV parsing with a stateless design.
// The struct has no fields because parsing requires no configuration state,
// making the parser safe for concurrent use without locking.
type Parser struct{}

var parserInstance = &Parser{}

// NewParser returns the shared CSV parser instance.
func NewParser() *Parser {
	return parserInstance
}

// Name returns the parser identifier.
func (p *Parser) Name() string {
	return "csv"
}

// CanParse checks the file extension only. Header problems are reported by
// Parse as a SchemaError so the caller can name the missing columns.
func (p *Parser) CanParse(path string, header []byte) bool {
	return strings.ToLower(filepath.Ext(path)) == ".csv"
}

// Parse reads the header row, resolves the logical columns, and extracts raw
// rows. Missing required columns fail with a *parser.SchemaError before any
// row is read, so a malformed file never yields partial rows. Extra columns
// are ignored.
func (p *Parser) Parse(ctx context.Context, r io.Reader, path string) (*parser.Statement, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV content from %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV file %s is empty", path)
	}

	columns, err := mapHeader(records[0])
	if err != nil {
		return nil, err
	}

	rows := make([]parser.Row, 0, len(records)-1)
	for i, record := range records[1:] {
		// Skip blank lines.
		if len(record) == 0 || (len(record) == 1 && strings.TrimSpace(record[0]) == "") {
			continue
		}
		rows = append(rows, parser.Row{
			Line:        i + 2, // 1-based, after the header
			Date:        cell(record, columns[colDate]),
			Description: cell(record, columns[colDescription]),
			Amount:      cell(record, columns[colAmount]),
			Balance:     cell(record, columns[colBalance]),
			Account:     cell(record, columns[colAccount]),
		})
	}

	return &parser.Statement{Source: path, Rows: rows}, nil
}

// mapHeader resolves logical column names to indexes. Returns a SchemaError
// naming every missing required column at once.
func mapHeader(header []string) (map[string]int, error) {
	columns := map[string]int{
		colDate:        -1,
		colDescription: -1,
		colAmount:      -1,
		colAccount:     -1,
		colBalance:     -1,
	}

	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(stripBOM(name)))
		if idx, known := columns[key]; known && idx == -1 {
			columns[key] = i
		}
	}

	var missing []string
	for _, required := range []string{colDate, colDescription, colAmount} {
		if columns[required] == -1 {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, &parser.SchemaError{Missing: missing}
	}
	return columns, nil
}

// cell returns the record field at idx, or "" when the column is absent or
// the record is short.
func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}

// stripBOM removes a UTF-8 byte order mark, which some exports prepend to the
// first header cell.
func stripBOM(s string) string {
	return strings.TrimPrefix(s, "\uFEFF")
}
