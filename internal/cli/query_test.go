package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/namedump/internal/testutil"
)

func TestQuery_Known(t *testing.T) {
	catalog := testutil.WriteLines(t, "name_db.txt", "tex/a.dds", "abc.txt")

	out, err := execute(t, NewQueryCommand(&RootOptions{Format: "text"}), catalog, "$3DD3626C.dds", "$602E3A05.txt")
	require.NoError(t, err)
	assert.Equal(t, "$3DD3626C.dds tex/a.dds\n$602E3A05.txt abc.txt\n", out)
}

func TestQuery_Unknown(t *testing.T) {
	catalog := testutil.WriteLines(t, "name_db.txt", "tex/a.dds")

	out, err := execute(t, NewQueryCommand(&RootOptions{Format: "text"}), catalog, "$3DD3626C.dds", "$DEADBEEF.dds")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "1 placeholder(s) unknown")
	assert.Equal(t, "$3DD3626C.dds tex/a.dds\n$DEADBEEF.dds <unknown>\n", out)
}

func TestQuery_ExtensionMustMatch(t *testing.T) {
	catalog := testutil.WriteLines(t, "name_db.txt", "tex/a.dds")

	out, err := execute(t, NewQueryCommand(&RootOptions{Format: "text"}), catalog, "$3DD3626C.png")
	require.Error(t, err)
	assert.Equal(t, "$3DD3626C.png <unknown>\n", out)
}

func TestQuery_LFSR(t *testing.T) {
	catalog := testutil.WriteLines(t, "name_db.txt", "tex/a.dds")

	out, err := execute(t, NewQueryCommand(&RootOptions{Format: "text"}), "--hash", "lfsr", catalog, "$FF06270EE554E57B.dds")
	require.NoError(t, err)
	assert.Equal(t, "$FF06270EE554E57B.dds tex/a.dds\n", out)
}

func TestQuery_MissingCatalog(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.txt")

	_, err := execute(t, NewQueryCommand(&RootOptions{Format: "text"}), missing, "$3DD3626C.dds")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load catalog")
}

func TestQuery_JSONPartial(t *testing.T) {
	catalog := testutil.WriteLines(t, "name_db.txt", "tex/a.dds")

	out, err := execute(t, NewQueryCommand(&RootOptions{Format: "json"}), catalog, "$3DD3626C.dds", "$DEADBEEF.dds")
	require.Error(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   []QueryResult `json:"data"`
		Error  *CLIError     `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeUnknownName, resp.Error.Code)
	assert.Equal(t, []QueryResult{
		{Placeholder: "$3DD3626C.dds", Name: "tex/a.dds", Known: true},
		{Placeholder: "$DEADBEEF.dds", Known: false},
	}, resp.Data)
}
