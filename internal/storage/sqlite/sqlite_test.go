package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/dexcompanion/internal/storage/sqlite"
	"github.com/cory-johannsen/dexcompanion/internal/storage/storagetest"
)

func TestConformance(t *testing.T) {
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "dex.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	storagetest.Run(t, s)
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dex.db")
	ctx := context.Background()

	s, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "poke-companion-user", []byte(`{"v":2}`)))
	require.NoError(t, s.Close())

	s, err = sqlite.Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Load(ctx, "poke-companion-user")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(got))
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := sqlite.Open("")
	assert.Error(t, err)
}
