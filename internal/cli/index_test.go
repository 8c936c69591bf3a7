package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/namedump/internal/testutil"
)

func TestIndex_ImportAndReimport(t *testing.T) {
	catalog := testutil.WriteLines(t, "name_db.txt", "tex/a.dds", "tex/b.dds", "abc.txt")
	db := filepath.Join(t.TempDir(), "names.db")

	out, err := execute(t, NewIndexCommand(&RootOptions{Format: "text"}), "--db", db, catalog)
	require.NoError(t, err)
	assert.Contains(t, out, "3 line(s), 3 added, 0 duplicate(s), 3 total")

	out, err = execute(t, NewIndexCommand(&RootOptions{Format: "text"}), "--db", db, catalog)
	require.NoError(t, err)
	assert.Contains(t, out, "3 line(s), 0 added, 3 duplicate(s), 3 total", "import is idempotent")
}

func TestIndex_JSON(t *testing.T) {
	catalog := testutil.WriteLines(t, "name_db.txt", "tex/a.dds", "TEX/A.DDS")
	db := filepath.Join(t.TempDir(), "names.db")

	out, err := execute(t, NewIndexCommand(&RootOptions{Format: "json"}), "--db", db, catalog)
	require.NoError(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.EqualValues(t, 2, resp.Data["lines"])
	assert.EqualValues(t, 1, resp.Data["added"])
	assert.EqualValues(t, 1, resp.Data["duplicates"])
	assert.EqualValues(t, 1, resp.Data["total"])
	assert.Equal(t, catalog, resp.Data["catalog"])
}

func TestIndex_MissingCatalog(t *testing.T) {
	db := filepath.Join(t.TempDir(), "names.db")

	_, err := execute(t, NewIndexCommand(&RootOptions{Format: "text"}), "--db", db, filepath.Join(t.TempDir(), "none.txt"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to import catalog")
}

func TestStats(t *testing.T) {
	catalog := testutil.WriteLines(t, "name_db.txt", "tex/a.dds", "tex/b.dds", "abc.txt", "README")
	db := filepath.Join(t.TempDir(), "names.db")

	_, err := execute(t, NewIndexCommand(&RootOptions{Format: "text"}), "--db", db, catalog)
	require.NoError(t, err)

	out, err := execute(t, NewStatsCommand(&RootOptions{Format: "text"}), "--db", db)
	require.NoError(t, err)
	assert.Equal(t, ""+
		"       2 dds\n"+
		"       1 (none)\n"+
		"       1 txt\n"+
		"       4 total (rolling)\n", out)
}

func TestStats_OtherAlgorithmIsEmpty(t *testing.T) {
	catalog := testutil.WriteLines(t, "name_db.txt", "tex/a.dds")
	db := filepath.Join(t.TempDir(), "names.db")

	_, err := execute(t, NewIndexCommand(&RootOptions{Format: "text"}), "--db", db, catalog)
	require.NoError(t, err)

	out, err := execute(t, NewStatsCommand(&RootOptions{Format: "json"}), "--db", db, "--hash", "lfsr")
	require.NoError(t, err)

	var resp struct {
		Data StatsResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "lfsr", resp.Data.Algorithm)
	assert.Equal(t, 0, resp.Data.Total)
	assert.Empty(t, resp.Data.Extensions)
}
