// Package scanner finds statement files under a directory.
package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Scanner walks a directory tree and collects statement files.
type Scanner struct {
	rootDir string
}

// New creates a scanner for the given root directory.
func New(rootDir string) *Scanner {
	return &Scanner{rootDir: rootDir}
}

// Scan walks the tree and returns statement file paths in a deterministic
// (sorted) order, so repeated imports of the same directory process files in
// the same sequence.
func (s *Scanner) Scan() ([]string, error) {
	rootDir := expandHome(s.rootDir)

	var files []string
	err := filepath.Walk(rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if isStatementFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	sort.Strings(files)
	return files, nil
}

// isStatementFile checks if the file has a known statement extension.
func isStatementFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".csv" || ext == ".ofx" || ext == ".qfx"
}

// expandHome expands a leading ~ to the user's home directory.
func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
