package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/dexcompanion/internal/storage/file"
	"github.com/cory-johannsen/dexcompanion/internal/storage/storagetest"
)

func TestConformance(t *testing.T) {
	s, err := file.Open(t.TempDir())
	require.NoError(t, err)
	storagetest.Run(t, s)
}

func TestOpen_RequiresDir(t *testing.T) {
	_, err := file.Open("  ")
	assert.Error(t, err)
}

func TestWritesNamedFile(t *testing.T) {
	dir := t.TempDir()
	s, err := file.Open(filepath.Join(dir, "nested"))
	require.NoError(t, err)
	require.NoError(t, s.Save(context.Background(), "poke-companion-user", []byte(`{"a":1}`)))

	data, err := os.ReadFile(filepath.Join(dir, "nested", "poke-companion-user.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(data))

	entries, err := os.ReadDir(filepath.Join(dir, "nested"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files are left behind")
}

func TestRejectsPathNames(t *testing.T) {
	s, err := file.Open(t.TempDir())
	require.NoError(t, err)
	for _, name := range []string{"", "..", "a/b", `a\b`} {
		assert.Error(t, s.Save(context.Background(), name, []byte(`{}`)), "name %q", name)
	}
}
