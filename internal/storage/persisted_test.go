package storage_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dexcompanion/internal/storage"
	"github.com/cory-johannsen/dexcompanion/internal/storage/memory"
)

type tally struct {
	Names []string `json:"names"`
}

var tallyShape = storage.Shape[tally]{
	Default: func() tally { return tally{Names: []string{}} },
	Clone:   func(t tally) tally { return tally{Names: slices.Clone(t.Names)} },
	Normalize: func(t tally) tally {
		if t.Names == nil {
			t.Names = []string{}
		}
		return t
	},
}

func TestOpenPersisted_DefaultAndNormalize(t *testing.T) {
	ctx := context.Background()
	docs := memory.New()
	p, found, err := storage.OpenPersisted(ctx, docs, "tally", tallyShape, zap.NewNop(), nil)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NotNil(t, p.Get().Names)

	require.NoError(t, docs.Save(ctx, "tally", []byte(`{"state":{},"version":0}`)))
	p, found, err = storage.OpenPersisted(ctx, docs, "tally", tallyShape, zap.NewNop(), nil)
	require.NoError(t, err)
	assert.True(t, found)
	assert.NotNil(t, p.Get().Names, "normalize fills nil slices")
}

func TestPersisted_ApplyWritesBeforeCommit(t *testing.T) {
	ctx := context.Background()
	docs := memory.New()
	p, _, err := storage.OpenPersisted(ctx, docs, "tally", tallyShape, zap.NewNop(), nil)
	require.NoError(t, err)

	var got []tally
	unsubscribe := p.Subscribe(func(t tally) { got = append(got, t) })
	st, err := p.Apply(ctx, "add", func(t *tally) { t.Names = append(t.Names, "a") })
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, st.Names)

	st.Names[0] = "mutated"
	assert.Equal(t, []string{"a"}, p.Get().Names, "returned state is a copy")

	docs.FailSaves = errors.New("disk full")
	_, err = p.Apply(ctx, "add", func(t *tally) { t.Names = append(t.Names, "b") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "add")
	assert.Equal(t, []string{"a"}, p.Get().Names)
	assert.Len(t, got, 1)

	unsubscribe()
	docs.FailSaves = nil
	_, err = p.Apply(ctx, "add", func(t *tally) { t.Names = append(t.Names, "c") })
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestPersisted_Clear(t *testing.T) {
	ctx := context.Background()
	docs := memory.New()
	p, _, err := storage.OpenPersisted(ctx, docs, "tally", tallyShape, zap.NewNop(), nil)
	require.NoError(t, err)
	_, err = p.Apply(ctx, "add", func(t *tally) { t.Names = append(t.Names, "a") })
	require.NoError(t, err)

	require.NoError(t, p.Clear(ctx))
	assert.Empty(t, p.Get().Names)
	_, err = docs.Load(ctx, "tally")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Equal(t, "tally", p.Name())
}

func TestPersisted_ObserversRunInSubscriptionOrder(t *testing.T) {
	ctx := context.Background()
	p, _, err := storage.OpenPersisted(ctx, memory.New(), "tally", tallyShape, zap.NewNop(), nil)
	require.NoError(t, err)

	var calls []int
	unsubscribe := make([]func(), 8)
	for i := range unsubscribe {
		unsubscribe[i] = p.Subscribe(func(tally) { calls = append(calls, i) })
	}

	for range 20 {
		calls = calls[:0]
		_, err := p.Apply(ctx, "add", func(t *tally) { t.Names = append(t.Names, "x") })
		require.NoError(t, err)
		require.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, calls)
	}

	unsubscribe[3]()
	unsubscribe[6]()
	calls = calls[:0]
	_, err = p.Apply(ctx, "add", func(t *tally) { t.Names = append(t.Names, "y") })
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 4, 5, 7}, calls)
}

func TestPersisted_ConcurrentSnapshotsArriveInCommitOrder(t *testing.T) {
	ctx := context.Background()
	p, _, err := storage.OpenPersisted(ctx, memory.New(), "tally", tallyShape, zap.NewNop(), nil)
	require.NoError(t, err)

	var (
		mu   sync.Mutex
		seen []int
	)
	p.Subscribe(func(t tally) {
		mu.Lock()
		seen = append(seen, len(t.Names))
		mu.Unlock()
	})

	const writers, perWriter = 8, 25
	var wg sync.WaitGroup
	for w := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWriter {
				_, err := p.Apply(ctx, "add", func(t *tally) { t.Names = append(t.Names, string(rune('a'+w))) })
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, writers*perWriter)
	for i, n := range seen {
		assert.Equal(t, i+1, n, "snapshot %d delivered out of order", i)
	}
}

func TestPersisted_ObserverMayMutate(t *testing.T) {
	ctx := context.Background()
	p, _, err := storage.OpenPersisted(ctx, memory.New(), "tally", tallyShape, zap.NewNop(), nil)
	require.NoError(t, err)

	var seen [][]string
	p.Subscribe(func(st tally) {
		seen = append(seen, st.Names)
		if len(st.Names) == 1 {
			_, err := p.Apply(ctx, "echo", func(t *tally) { t.Names = append(t.Names, "echo") })
			assert.NoError(t, err)
		}
	})

	_, err = p.Apply(ctx, "add", func(t *tally) { t.Names = append(t.Names, "a") })
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a"}, {"a", "echo"}}, seen)
	assert.Equal(t, []string{"a", "echo"}, p.Get().Names)
}
