package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/namedump/internal/testutil"
)

func TestSort_Stdout(t *testing.T) {
	catalog := testutil.WriteLines(t, "name_db.txt", "tex/b.dds", "$DEADBEEF.dds", "tex/a.dds", "TEX/A.DDS", "abc.txt")

	out, err := execute(t, NewSortCommand(&RootOptions{Format: "text"}), catalog)
	require.NoError(t, err)
	assert.Equal(t, "abc.txt\ntex/a.dds\ntex/b.dds\n", out, "placeholders and same-hash names are dropped")
}

func TestSort_CaseSensitiveHashKeepsBoth(t *testing.T) {
	catalog := testutil.WriteLines(t, "name_db.txt", "tex/a.dds", "TEX/A.DDS")

	out, err := execute(t, NewSortCommand(&RootOptions{Format: "text"}), "--hash", "rolling-cs", catalog)
	require.NoError(t, err)
	assert.Equal(t, "TEX/A.DDS\ntex/a.dds\n", out)
}

func TestSort_InPlace(t *testing.T) {
	catalog := testutil.WriteLines(t, "name_db.txt", "b.y", "a.x", "b.y")

	out, err := execute(t, NewSortCommand(&RootOptions{Format: "text"}), catalog, "-o", catalog)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 2 name(s)")

	data, err := os.ReadFile(catalog)
	require.NoError(t, err)
	assert.Equal(t, "a.x\nb.y\n", string(data))

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(catalog), ".namedump-sort-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestSort_MissingCatalog(t *testing.T) {
	_, err := execute(t, NewSortCommand(&RootOptions{Format: "text"}), filepath.Join(t.TempDir(), "none.txt"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
