package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteLines writes lines to name inside a fresh temp dir, one per line with
// a trailing newline, and returns the full path.
func WriteLines(t *testing.T, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("WriteLines(%s): %v", path, err)
	}
	return path
}

// ReadLines returns the newline-terminated lines of path. A missing file
// yields nil. A final line without a terminator fails the test, since
// catalog files must always end in a newline.
func ReadLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("ReadLines(%s): %v", path, err)
	}
	if len(data) == 0 {
		return nil
	}
	if data[len(data)-1] != '\n' {
		t.Fatalf("ReadLines(%s): missing trailing newline", path)
	}
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}
