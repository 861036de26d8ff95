package export_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dexcompanion/internal/collection"
	"github.com/cory-johannsen/dexcompanion/internal/export"
	"github.com/cory-johannsen/dexcompanion/internal/game/record"
	"github.com/cory-johannsen/dexcompanion/internal/profile"
	"github.com/cory-johannsen/dexcompanion/internal/storage/memory"
)

var names = export.Documents{Collection: "poke-companion-storage", Profile: "poke-companion-user"}

var now = time.Date(2026, 3, 9, 14, 30, 5, 123_000_000, time.FixedZone("PST", -8*3600))

func TestBundle_NothingToExport(t *testing.T) {
	_, err := export.Bundle(context.Background(), memory.New(), names, now)
	assert.ErrorIs(t, err, export.ErrNothingToExport)
}

func TestBundle_BothDocuments(t *testing.T) {
	ctx := context.Background()
	docs := memory.New()
	coll, err := collection.Open(ctx, docs, names.Collection, zap.NewNop())
	require.NoError(t, err)
	_, err = coll.ToggleFavorite(ctx, record.CatalogID(25))
	require.NoError(t, err)
	prof, err := profile.Open(ctx, docs, names.Profile, zap.NewNop())
	require.NoError(t, err)
	_, err = prof.SetTrainerName(ctx, "Red")
	require.NoError(t, err)

	out, err := export.Bundle(ctx, docs, names, now)
	require.NoError(t, err)
	require.True(t, gjson.ValidBytes(out))

	doc := gjson.ParseBytes(out)
	assert.Equal(t, int64(25), doc.Get("appData.state.favorites.0").Int())
	assert.Equal(t, "Red", doc.Get("userData.state.trainerName").String())
	assert.Equal(t, "2026-03-09T22:30:05.123Z", doc.Get("exportDate").String())
}

func TestBundle_MissingDocumentIsNull(t *testing.T) {
	ctx := context.Background()
	docs := memory.New()
	prof, err := profile.Open(ctx, docs, names.Profile, zap.NewNop())
	require.NoError(t, err)
	_, err = prof.GenerateTrainerID(ctx)
	require.NoError(t, err)

	out, err := export.Bundle(ctx, docs, names, now)
	require.NoError(t, err)
	doc := gjson.ParseBytes(out)
	assert.Equal(t, gjson.Null, doc.Get("appData").Type)
	assert.Len(t, doc.Get("userData.state.trainerId").String(), 6)
}

func TestBundle_RejectsCorruptDocument(t *testing.T) {
	docs := memory.New()
	require.NoError(t, docs.Save(context.Background(), names.Collection, []byte("{oops")))
	_, err := export.Bundle(context.Background(), docs, names, now)
	require.Error(t, err)
	assert.NotErrorIs(t, err, export.ErrNothingToExport)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "poke_companion_backup_2026-03-09.json", export.Filename(now))
	late := time.Date(2026, 3, 9, 23, 0, 0, 0, time.FixedZone("PST", -8*3600))
	assert.Equal(t, "poke_companion_backup_2026-03-10.json", export.Filename(late), "date is taken in UTC")
}

type failingClearer struct{ err error }

func (f failingClearer) Clear(context.Context) error { return f.err }

func TestClearAll(t *testing.T) {
	ctx := context.Background()
	docs := memory.New()
	coll, err := collection.Open(ctx, docs, names.Collection, zap.NewNop())
	require.NoError(t, err)
	_, err = coll.ToggleFavorite(ctx, record.CatalogID(1))
	require.NoError(t, err)
	prof, err := profile.Open(ctx, docs, names.Profile, zap.NewNop())
	require.NoError(t, err)
	_, err = prof.SetTrainerName(ctx, "Red")
	require.NoError(t, err)

	require.NoError(t, export.ClearAll(ctx, coll, prof))
	assert.Empty(t, coll.State().Favorites)
	assert.Equal(t, "Trainer", prof.State().Name)
	_, err = export.Bundle(ctx, docs, names, now)
	assert.ErrorIs(t, err, export.ErrNothingToExport)

	boom := errors.New("boom")
	err = export.ClearAll(ctx, failingClearer{boom}, coll)
	assert.ErrorIs(t, err, boom)
}
