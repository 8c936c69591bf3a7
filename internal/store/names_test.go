package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/namedump/internal/namehash"
	"github.com/roach88/namedump/internal/testutil"
)

func mustAlg(t *testing.T, name string) namehash.Algorithm {
	t.Helper()
	alg, err := namehash.ByName(name)
	require.NoError(t, err)
	return alg
}

func TestExtension(t *testing.T) {
	tests := map[string]string{
		"tex/a.dds":              "dds",
		"chara/alisha.TOMDLB_D":  "tomdlb_d",
		"noext":                  "",
		"dir.v2/noext":           "",
		`win\path\file.BIN`:      "bin",
		"archive.tar.gz":         "gz",
		"trailing.":              "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Extension(in), "Extension(%q)", in)
	}
}

func TestImportCatalog(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	alg := mustAlg(t, "rolling")
	path := testutil.WriteLines(t, "name_db.txt", "tex/a.dds", "tex/b.dds", "sound/bgm.nsf")

	stats, err := s.ImportCatalog(ctx, path, alg)
	require.NoError(t, err)
	assert.Equal(t, ImportStats{Lines: 3, Added: 3}, stats)

	n, err := s.Count(ctx, alg)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	entries, err := s.Names(ctx, alg)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "tex/a.dds", entries[0].Name, "names are listed in import order")
	assert.Equal(t, "sound/bgm.nsf", entries[2].Name)
	assert.Equal(t, path, entries[0].Source)
}

func TestImportIsIdempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	alg := mustAlg(t, "rolling")
	path := testutil.WriteLines(t, "name_db.txt", "a.x", "b.y")

	_, err := s.ImportCatalog(ctx, path, alg)
	require.NoError(t, err)

	stats, err := s.ImportCatalog(ctx, path, alg)
	require.NoError(t, err)
	assert.Equal(t, ImportStats{Lines: 2, Added: 0, Duplicates: 2}, stats)

	n, err := s.Count(ctx, alg)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	imports, err := s.Imports(ctx)
	require.NoError(t, err)
	require.Len(t, imports, 2, "every import is recorded")
	assert.Equal(t, 2, imports[0].Added)
	assert.Equal(t, 0, imports[1].Added)
	assert.Equal(t, path, imports[1].Source)
	assert.Equal(t, "rolling", imports[1].Algorithm)
}

func TestImportFirstNameWins(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	alg := mustAlg(t, "rolling")

	stats, err := s.ImportNames(ctx, "test", alg, []string{"Tex/A.dds", "tex/a.dds"})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Added)
	assert.Equal(t, 1, stats.Duplicates, "case variants share a hash under upper folding")

	e, err := s.Lookup(ctx, alg, namehash.Hash(0x3DD3626C))
	require.NoError(t, err)
	assert.Equal(t, "Tex/A.dds", e.Name)
}

func TestLookup(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	alg := mustAlg(t, "rolling")

	_, err := s.ImportNames(ctx, "test", alg, []string{"abc.txt"})
	require.NoError(t, err)

	e, err := s.Lookup(ctx, alg, namehash.Hash(0x602E3A05))
	require.NoError(t, err)
	assert.Equal(t, "abc.txt", e.Name)
	assert.Equal(t, "txt", e.Extension)
	assert.Equal(t, "rolling", e.Algorithm)
	assert.Equal(t, namehash.Hash(0x602E3A05), e.Hash)

	_, err = s.Lookup(ctx, alg, namehash.Hash(0x12345678))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "$12345678")
}

func TestLookup64BitHashRoundTrips(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	alg := mustAlg(t, "lfsr")

	_, err := s.ImportNames(ctx, "test", alg, []string{"tex/a.dds"})
	require.NoError(t, err)

	// The high bit is set, so the stored INTEGER is negative.
	want := namehash.Hash(0xFF06270EE554E57B)
	e, err := s.Lookup(ctx, alg, want)
	require.NoError(t, err)
	assert.Equal(t, want, e.Hash)
	assert.Equal(t, "tex/a.dds", e.Name)
}

func TestAlgorithmsAreSeparate(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	rolling := mustAlg(t, "rolling")
	lfsr := mustAlg(t, "lfsr")

	_, err := s.ImportNames(ctx, "test", rolling, []string{"a.x", "b.y"})
	require.NoError(t, err)
	_, err = s.ImportNames(ctx, "test", lfsr, []string{"a.x"})
	require.NoError(t, err)

	n, err := s.Count(ctx, rolling)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = s.Count(ctx, lfsr)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStats(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	alg := mustAlg(t, "rolling")

	_, err := s.ImportNames(ctx, "test", alg, []string{
		"tex/a.dds", "tex/b.DDS", "tex/c.dds",
		"sound/a.nsf", "sound/b.nsf",
		"readme",
		"model/a.mdl",
	})
	require.NoError(t, err)

	stats, err := s.Stats(ctx, alg)
	require.NoError(t, err)
	assert.Equal(t, []ExtensionCount{
		{Extension: "dds", Count: 3},
		{Extension: "nsf", Count: 2},
		{Extension: "", Count: 1},
		{Extension: "mdl", Count: 1},
	}, stats)
}

func TestImportCatalogMissingFile(t *testing.T) {
	s := createTestStore(t)
	_, err := s.ImportCatalog(context.Background(), filepath.Join(t.TempDir(), "nope.txt"), mustAlg(t, "rolling"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestImportCanceledContext(t *testing.T) {
	s := createTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.ImportNames(ctx, "test", mustAlg(t, "rolling"), []string{"a.x"})
	require.Error(t, err)

	n, err := s.Count(context.Background(), mustAlg(t, "rolling"))
	require.NoError(t, err)
	assert.Zero(t, n, "a failed import leaves nothing behind")
}
