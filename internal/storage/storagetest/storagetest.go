// Package storagetest holds the conformance suite every storage.Documents
// backend must pass.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/dexcompanion/internal/storage"
)

// Run exercises docs against the Documents contract. docs must start empty.
// Bodies are compared as JSON because some backends normalize them.
func Run(t *testing.T, docs storage.Documents) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing document", func(t *testing.T) {
		_, err := docs.Load(ctx, "absent")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("save then load", func(t *testing.T) {
		require.NoError(t, docs.Save(ctx, "alpha", []byte(`{"state":{"n":1},"version":0}`)))
		got, err := docs.Load(ctx, "alpha")
		require.NoError(t, err)
		assert.JSONEq(t, `{"state":{"n":1},"version":0}`, string(got))
	})

	t.Run("save replaces whole document", func(t *testing.T) {
		require.NoError(t, docs.Save(ctx, "beta", []byte(`{"state":{"a":1,"b":2}}`)))
		require.NoError(t, docs.Save(ctx, "beta", []byte(`{"state":{"c":3}}`)))
		got, err := docs.Load(ctx, "beta")
		require.NoError(t, err)
		assert.JSONEq(t, `{"state":{"c":3}}`, string(got))
	})

	t.Run("documents are independent", func(t *testing.T) {
		require.NoError(t, docs.Save(ctx, "poke-companion-storage", []byte(`{"x":"storage"}`)))
		require.NoError(t, docs.Save(ctx, "poke-companion-user", []byte(`{"x":"user"}`)))
		got, err := docs.Load(ctx, "poke-companion-storage")
		require.NoError(t, err)
		assert.JSONEq(t, `{"x":"storage"}`, string(got))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, docs.Save(ctx, "gamma", []byte(`{}`)))
		require.NoError(t, docs.Delete(ctx, "gamma"))
		_, err := docs.Load(ctx, "gamma")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.NoError(t, docs.Delete(ctx, "gamma"), "deleting a missing document is not an error")
	})

	t.Run("round trip through envelope", func(t *testing.T) {
		type payload struct {
			Names []string `json:"names"`
		}
		_, err := storage.SaveJSON(ctx, docs, "delta", payload{Names: []string{"a", "b"}})
		require.NoError(t, err)
		got, found, err := storage.LoadJSON[payload](ctx, docs, "delta")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []string{"a", "b"}, got.Names)
	})

	t.Run("concurrent saves", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				assert.NoError(t, docs.Save(ctx, fmt.Sprintf("c%d", i), []byte(fmt.Sprintf(`{"i":%d}`, i))))
			}(i)
		}
		wg.Wait()
		for i := 0; i < 8; i++ {
			got, err := docs.Load(ctx, fmt.Sprintf("c%d", i))
			require.NoError(t, err)
			assert.JSONEq(t, fmt.Sprintf(`{"i":%d}`, i), string(got))
		}
	})
}
