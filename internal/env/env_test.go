package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge(t *testing.T) {
	got := Merge(
		Vars{"A": "1", "B": "2"},
		Vars{"B": "3"},
		Vars{"C": "4"},
	)
	assert.Equal(t, Vars{"A": "1", "B": "3", "C": "4"}, got)
}

func TestLookup(t *testing.T) {
	vars := Vars{"SET": "value", "BLANK": "   "}

	value, ok := vars.Lookup("SET")
	assert.True(t, ok)
	assert.Equal(t, "value", value)

	_, ok = vars.Lookup("BLANK")
	assert.False(t, ok, "whitespace-only values count as unset")

	_, ok = vars.Lookup("MISSING")
	assert.False(t, ok)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cluster.env")
	require.NoError(t, os.WriteFile(path, []byte("WORKER_NODE_NAME=node-4\n# comment\nEXTRA=\"quoted\"\n"), 0o644))

	vars, err := LoadEnvFile(path)
	require.NoError(t, err)
	assert.Equal(t, "node-4", vars["WORKER_NODE_NAME"])
	assert.Equal(t, "quoted", vars["EXTRA"])
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.env"), []byte("WORKER_NODE_NAME=node-a\nSHARED=first\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.env"), []byte("SHARED=second\n"), 0o644))

	vars, err := LoadEnvFiles(dir, []string{"a.env", "", "b.env"})
	require.NoError(t, err)
	assert.Equal(t, "node-a", vars["WORKER_NODE_NAME"])
	assert.Equal(t, "second", vars["SHARED"], "later files override earlier keys")
}

func TestLoadEnvFilesMissingFile(t *testing.T) {
	_, err := LoadEnvFiles(t.TempDir(), []string{"missing.env"})
	require.Error(t, err)
}

func TestLoadEnvFilesEmptyList(t *testing.T) {
	vars, err := LoadEnvFiles("", nil)
	require.NoError(t, err)
	assert.Empty(t, vars)
}

func TestLoadEnvFileMissing(t *testing.T) {
	_, err := LoadEnvFile(filepath.Join(t.TempDir(), "nope.env"))
	require.Error(t, err)
}
