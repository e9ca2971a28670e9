package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFindParser(t *testing.T) {
	dir := t.TempDir()
	reg := New()

	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{"csv by extension", "export.csv", "date,description,amount\n", "csv"},
		{"ofx by marker", "stmt.ofx", "OFXHEADER:100\nDATA:OFXSGML\n", "ofx"},
		{"qfx by marker", "stmt.qfx", "OFXHEADER:100\n", "ofx"},
		{"tiny csv", "tiny.csv", "d", "csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.file, tt.content)
			p, err := reg.FindParser(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Name())
		})
	}
}

func TestFindParser_Unsupported(t *testing.T) {
	dir := t.TempDir()
	reg := New()

	path := writeFile(t, dir, "notes.txt", "hello")
	_, err := reg.FindParser(path)
	assert.Error(t, err)
}

func TestFindParser_MissingFile(t *testing.T) {
	reg := New()
	_, err := reg.FindParser(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestListParsers(t *testing.T) {
	reg := New()
	assert.Equal(t, []string{"ofx", "csv"}, reg.ListParsers())
}
