package badger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dexcompanion/internal/storage/badger"
	"github.com/cory-johannsen/dexcompanion/internal/storage/storagetest"
)

func TestConformance_InMemory(t *testing.T) {
	s, err := badger.Open(badger.Config{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	storagetest.Run(t, s)
}

func TestPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := badger.Open(badger.Config{Path: dir, SyncWrites: true, Logger: zap.NewNop()})
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "poke-companion-storage", []byte(`{"v":1}`)))
	require.NoError(t, s.Close())

	s, err = badger.Open(badger.Config{Path: dir})
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Load(ctx, "poke-companion-storage")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1}`, string(got))
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := badger.Open(badger.Config{})
	assert.Error(t, err)
}
