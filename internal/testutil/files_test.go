package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteLinesReadLines(t *testing.T) {
	path := WriteLines(t, "names.txt", "a.x", "b.y")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a.x\nb.y\n", string(data))
	assert.Equal(t, []string{"a.x", "b.y"}, ReadLines(t, path))
}

func TestReadLines_Missing(t *testing.T) {
	assert.Nil(t, ReadLines(t, filepath.Join(t.TempDir(), "nope.txt")))
}

func TestReadLines_Empty(t *testing.T) {
	path := WriteLines(t, "empty.txt")
	assert.Nil(t, ReadLines(t, path))
}
