// Package registry selects the parser for a statement file.
package registry

import (
	"fmt"
	"io"
	"os"

	"github.com/rumor-ml/commons.systems/finledger/internal/parser"
	"github.com/rumor-ml/commons.systems/finledger/internal/parsers/csv"
	"github.com/rumor-ml/commons.systems/finledger/internal/parsers/ofx"
)

// Registry holds all registered parsers in detection order.
type Registry struct {
	parsers []parser.Parser
}

// New creates a registry with the built-in parsers. OFX runs first because
// its detection is content-based; CSV matches on extension alone.
func New() *Registry {
	return &Registry{
		parsers: []parser.Parser{
			ofx.NewParser(),
			csv.NewParser(),
		},
	}
}

// Register adds a custom parser.
func (r *Registry) Register(p parser.Parser) {
	r.parsers = append(r.parsers, p)
}

// FindParser returns the parser for this file, sniffing the first 512 bytes
// for format detection. That is enough to spot the OFX markers; smaller files
// pass whatever was read.
func (r *Registry) FindParser(path string) (parser.Parser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	header := make([]byte, 512)
	n, err := f.Read(header)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read header from %s: %w", path, err)
	}
	header = header[:n]

	for _, p := range r.parsers {
		if p.CanParse(path, header) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("no parser found for file: %s", path)
}

// ListParsers returns the names of all registered parsers.
func (r *Registry) ListParsers() []string {
	names := make([]string, len(r.parsers))
	for i, p := range r.parsers {
		names[i] = p.Name()
	}
	return names
}
