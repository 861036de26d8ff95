package catalog_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dexcompanion/internal/catalog"
	"github.com/cory-johannsen/dexcompanion/internal/config"
	"github.com/cory-johannsen/dexcompanion/internal/game/record"
	"github.com/cory-johannsen/dexcompanion/internal/game/stat"
)

const artwork = "https://art.example/"

func pokemonJSON(id int, name string, withArtwork bool) string {
	art := "null"
	if withArtwork {
		art = fmt.Sprintf(`"https://art.example/%d.png"`, id)
	}
	return fmt.Sprintf(`{
  "id": %d,
  "name": %q,
  "height": 7,
  "weight": 69,
  "types": [{"slot": 1, "type": {"name": "grass"}}, {"slot": 2, "type": {"name": "poison"}}],
  "abilities": [{"ability": {"name": "overgrow"}}, {"ability": {"name": "chlorophyll"}}],
  "stats": [
    {"base_stat": 45, "stat": {"name": "hp"}},
    {"base_stat": 49, "stat": {"name": "attack"}},
    {"base_stat": 49, "stat": {"name": "defense"}},
    {"base_stat": 65, "stat": {"name": "special-attack"}},
    {"base_stat": 65, "stat": {"name": "special-defense"}}
  ],
  "sprites": {"front_default": "https://sprites.example/%d.png", "other": {"official-artwork": {"front_default": %s}}},
  "moves": [
    {"move": {"name": "vine-whip"}, "version_group_details": [{"level_learned_at": 9, "move_learn_method": {"name": "level-up"}}]},
    {"move": {"name": "tackle"}, "version_group_details": [{"level_learned_at": 1, "move_learn_method": {"name": "level-up"}}]},
    {"move": {"name": "cut"}, "version_group_details": [{"level_learned_at": 0, "move_learn_method": {"name": "machine"}}]},
    {"move": {"name": "growl"}, "version_group_details": [{"level_learned_at": 1, "move_learn_method": {"name": "level-up"}}]}
  ]
}`, id, name, id, art)
}

type fixture struct {
	srv      *httptest.Server
	requests atomic.Int32
	fail     map[string]int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{fail: map[string]int{}}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/pokemon", func(w http.ResponseWriter, r *http.Request) {
		base := f.srv.URL + "/api/v2/pokemon/"
		_, _ = fmt.Fprintf(w, `{"count": 3, "results": [
			{"name": "ivysaur", "url": "%s2/"},
			{"name": "bulbasaur", "url": "%s1/"},
			{"name": "venusaur", "url": "%s3/"}]}`, base, base, base)
	})
	mux.HandleFunc("/api/v2/pokemon/{key}/", func(w http.ResponseWriter, r *http.Request) {
		f.pokemon(w, r.PathValue("key"))
	})
	mux.HandleFunc("/api/v2/pokemon/{key}", func(w http.ResponseWriter, r *http.Request) {
		f.pokemon(w, r.PathValue("key"))
	})
	mux.HandleFunc("/api/v2/pokemon/{key}/encounters", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"location_area": {"name": "viridian-forest-area"},
			"version_details": [{"version": {"name": "red"}}, {"version": {"name": "blue"}}]}]`))
	})
	mux.HandleFunc("/api/v2/pokemon-species/{key}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprintf(w, `{
			"flavor_text_entries": [
				{"flavor_text": "Une graine", "language": {"name": "fr"}},
				{"flavor_text": "A strange seed\fwas planted.", "language": {"name": "en"}}],
			"genera": [{"genus": "Seed Pokémon", "language": {"name": "en"}}],
			"evolution_chain": {"url": "%s/api/v2/evolution-chain/1/"}}`, f.srv.URL)
	})
	mux.HandleFunc("/api/v2/pokemon-species/0", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"flavor_text_entries": [], "genera": [], "evolution_chain": {"url": ""}}`))
	})
	mux.HandleFunc("/api/v2/evolution-chain/{id}/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chain": {
			"species": {"name": "bulbasaur", "url": "https://pokeapi.co/api/v2/pokemon-species/1/"},
			"evolution_details": [],
			"evolves_to": [{
				"species": {"name": "ivysaur", "url": "https://pokeapi.co/api/v2/pokemon-species/2/"},
				"evolution_details": [{"min_level": 16, "trigger": {"name": "level-up"}, "item": null}],
				"evolves_to": [{
					"species": {"name": "venusaur", "url": "https://pokeapi.co/api/v2/pokemon-species/3/"},
					"evolution_details": [{"min_level": 32, "trigger": {"name": "level-up"}}],
					"evolves_to": []}]}]}}`))
	})
	mux.HandleFunc("/api/v2/move-damage-class/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "2" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"moves": [{"name": "tackle", "url": "u1"}, {"name": "cut", "url": "u2"}]}`))
	})
	mux.HandleFunc("/api/v2/move/{name}", func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		if f.shouldFail(name) {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		if name == "missing" {
			http.NotFound(w, r)
			return
		}
		power := "40"
		if name == "growl" {
			power = "null"
		}
		_, _ = fmt.Fprintf(w, `{"id": 33, "name": %q, "type": {"name": "normal"}, "power": %s,
			"accuracy": 100, "pp": 35, "damage_class": {"name": "physical"},
			"flavor_text_entries": [{"flavor_text": "Charges the\nfoe.", "language": {"name": "en"}}]}`, name, power)
	})
	mux.HandleFunc("/api/v2/ability", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		assert.Equal(t, "40", r.URL.Query().Get("offset"))
		_, _ = w.Write([]byte(`{"results": [{"name": "overgrow", "url": "a1"}]}`))
	})
	mux.HandleFunc("/api/v2/ability/{name}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("name") == "mute" {
			_, _ = w.Write([]byte(`{"id": 9, "name": "mute", "effect_entries": [], "pokemon": []}`))
			return
		}
		_, _ = w.Write([]byte(`{"id": 65, "name": "overgrow",
			"effect_entries": [{"short_effect": "Powers up grass moves.", "language": {"name": "en"}}],
			"pokemon": [{}, {}, {}]}`))
	})

	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fixture) shouldFail(key string) bool {
	_, ok := f.fail[key]
	return ok
}

func (f *fixture) pokemon(w http.ResponseWriter, key string) {
	if f.shouldFail(key) {
		http.Error(w, "boom", http.StatusBadGateway)
		return
	}
	switch key {
	case "1", "bulbasaur":
		_, _ = w.Write([]byte(pokemonJSON(1, "bulbasaur", true)))
	case "2":
		_, _ = w.Write([]byte(pokemonJSON(2, "ivysaur", false)))
	case "3":
		_, _ = w.Write([]byte(pokemonJSON(3, "venusaur", true)))
	default:
		http.NotFound(w, nil)
	}
}

func (f *fixture) config(policy string) config.CatalogConfig {
	return config.CatalogConfig{
		BaseURL:        f.srv.URL + "/api/v2",
		ArtworkURL:     artwork,
		Timeout:        5 * time.Second,
		MaxConcurrency: 2,
		BatchPolicy:    policy,
		UserAgent:      "dexcompanion-test",
	}
}

func (f *fixture) client(policy string, opts ...catalog.Option) *catalog.HTTPClient {
	return catalog.NewHTTPClient(f.config(policy), zap.NewNop(), opts...)
}

func TestGetRecord_Normalizes(t *testing.T) {
	f := newFixture(t)
	r, err := f.client(config.BatchAllOrNothing).GetRecord(context.Background(), " Bulbasaur ")
	require.NoError(t, err)

	assert.Equal(t, record.CatalogID(1), r.ID)
	assert.Equal(t, "bulbasaur", r.Name)
	assert.Equal(t, []string{"grass", "poison"}, r.Types)
	assert.Equal(t, []string{"overgrow", "chlorophyll"}, r.Abilities)
	assert.Equal(t, stat.Block{HP: 45, Attack: 49, Defense: 49, SpAttack: 65, SpDefense: 65}, r.Stats, "missing speed defaults to 0")
	assert.Equal(t, "https://art.example/1.png", r.Image)
	require.NotNil(t, r.Height)
	assert.Equal(t, 7, *r.Height)
	require.NotNil(t, r.Weight)
	assert.Equal(t, 69, *r.Weight)
	assert.Nil(t, r.Authored)
}

func TestGetRecord_FallsBackToFrontSprite(t *testing.T) {
	f := newFixture(t)
	r, err := f.client(config.BatchAllOrNothing).GetRecord(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, "https://sprites.example/2.png", r.Image)
}

func TestGetRecord_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.client(config.BatchAllOrNothing).GetRecord(context.Background(), "missingno")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestListRecords_JoinsAndOrdersByID(t *testing.T) {
	f := newFixture(t)
	records, err := f.client(config.BatchAllOrNothing).ListRecords(context.Background(), 3, 0)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, r := range records {
		assert.Equal(t, record.CatalogID(uint32(i+1)), r.ID)
	}
}

func TestListRecords_AllOrNothingDiscardsBatch(t *testing.T) {
	f := newFixture(t)
	f.fail["2"] = 1
	records, err := f.client(config.BatchAllOrNothing).ListRecords(context.Background(), 3, 0)
	require.Error(t, err)
	assert.Nil(t, records)
	assert.False(t, catalog.IsPartial(err))
}

func TestListRecords_KeepPartial(t *testing.T) {
	f := newFixture(t)
	f.fail["2"] = 1
	reg := prometheus.NewRegistry()
	m := catalog.NewMetrics(reg)
	records, err := f.client(config.BatchKeepPartial, catalog.WithMetrics(m)).ListRecords(context.Background(), 3, 0)

	require.Error(t, err)
	assert.True(t, catalog.IsPartial(err))
	var be *catalog.BatchError
	require.True(t, errors.As(err, &be))
	require.Len(t, be.Failures, 1)
	assert.True(t, strings.HasSuffix(be.Failures[0].Key, "/2/"))

	require.Len(t, records, 2)
	assert.Equal(t, record.CatalogID(1), records[0].ID)
	assert.Equal(t, record.CatalogID(3), records[1].ID)

	expected := `
# HELP dex_catalog_batch_failures_total Individual fetches that failed inside a batch.
# TYPE dex_catalog_batch_failures_total counter
dex_catalog_batch_failures_total 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "dex_catalog_batch_failures_total"))

	requests := `
# HELP dex_catalog_requests_total Catalog HTTP requests by endpoint and outcome.
# TYPE dex_catalog_requests_total counter
dex_catalog_requests_total{endpoint="pokemon",outcome="error"} 1
dex_catalog_requests_total{endpoint="pokemon",outcome="ok"} 2
dex_catalog_requests_total{endpoint="pokemon-list",outcome="ok"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(requests), "dex_catalog_requests_total"))
}

func TestGetSpeciesMeta(t *testing.T) {
	f := newFixture(t)
	c := f.client(config.BatchAllOrNothing)

	meta, err := c.GetSpeciesMeta(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "A strange seed was planted.", meta.Description)
	assert.Equal(t, "Seed Pokémon", meta.Category)
	assert.Equal(t, f.srv.URL+"/api/v2/evolution-chain/1/", meta.EvolutionChainURL)

	meta, err = c.GetSpeciesMeta(context.Background(), "0")
	require.NoError(t, err)
	assert.Equal(t, "No description available.", meta.Description)
	assert.Equal(t, "Pokemon", meta.Category)
}

func TestGetEvolutionChain(t *testing.T) {
	f := newFixture(t)
	c := f.client(config.BatchAllOrNothing)

	root, err := c.GetEvolutionChain(context.Background(), f.srv.URL+"/api/v2/evolution-chain/1/")
	require.NoError(t, err)
	assert.Equal(t, "1", root.SpeciesID)
	assert.Equal(t, artwork+"1.png", root.ImageURL)
	assert.Nil(t, root.MinLevel)
	assert.Equal(t, 3, root.Count())

	ivy := root.Find("ivysaur")
	require.NotNil(t, ivy)
	require.NotNil(t, ivy.MinLevel)
	assert.Equal(t, 16, *ivy.MinLevel)
	assert.Equal(t, "level-up", ivy.Trigger)
	assert.Empty(t, ivy.Item)

	_, err = c.GetEvolutionChain(context.Background(), "https://elsewhere.example/chain/1/")
	assert.Error(t, err)
}

func TestGetLearnableMoves_SortedStablyByLevel(t *testing.T) {
	f := newFixture(t)
	moves, err := f.client(config.BatchAllOrNothing).GetLearnableMoves(context.Background(), "1")
	require.NoError(t, err)
	names := make([]string, len(moves))
	for i, m := range moves {
		names[i] = m.Name
	}
	assert.Equal(t, []string{"cut", "tackle", "growl", "vine-whip"}, names)
	assert.Equal(t, "machine", moves[0].Method)
}

func TestGetEncounters(t *testing.T) {
	f := newFixture(t)
	sites, err := f.client(config.BatchAllOrNothing).GetEncounters(context.Background(), "1")
	require.NoError(t, err)
	require.Len(t, sites, 1)
	assert.Equal(t, "viridian-forest-area", sites[0].Location)
	assert.Equal(t, []string{"red", "blue"}, sites[0].Versions)
}

func TestListMovesAndDetails(t *testing.T) {
	f := newFixture(t)
	c := f.client(config.BatchAllOrNothing)

	refs, err := c.ListMoves(context.Background(), catalog.Physical)
	require.NoError(t, err)
	assert.Len(t, refs, 2)

	_, err = c.ListMoves(context.Background(), catalog.Status)
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	details, err := c.GetMoveDetails(context.Background(), []string{"tackle", "growl"})
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, "tackle", details[0].Name)
	require.NotNil(t, details[0].Power)
	assert.Equal(t, 40, *details[0].Power)
	assert.Nil(t, details[1].Power)
	assert.Equal(t, "Charges the foe.", details[0].Description)
	assert.Equal(t, "physical", details[0].DamageClass)
}

func TestGetMoveDetails_PolicyOnNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.client(config.BatchAllOrNothing).GetMoveDetails(context.Background(), []string{"tackle", "missing"})
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	details, err := f.client(config.BatchKeepPartial).GetMoveDetails(context.Background(), []string{"tackle", "missing", "growl"})
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	require.Len(t, details, 2)
	assert.Equal(t, "tackle", details[0].Name)
	assert.Equal(t, "growl", details[1].Name)
}

func TestAbilities(t *testing.T) {
	f := newFixture(t)
	c := f.client(config.BatchAllOrNothing)

	refs, err := c.ListAbilities(context.Background(), 20, 40)
	require.NoError(t, err)
	assert.Equal(t, []catalog.NamedRef{{Name: "overgrow", URL: "a1"}}, refs)

	details, err := c.GetAbilityDetails(context.Background(), []string{"overgrow", "mute"})
	require.NoError(t, err)
	assert.Equal(t, "Powers up grass moves.", details[0].Description)
	assert.Equal(t, 3, details[0].UsageCount)
	assert.Equal(t, "No description.", details[1].Description)
	assert.Equal(t, 0, details[1].UsageCount)
}

func TestEmptyBatch(t *testing.T) {
	f := newFixture(t)
	details, err := f.client(config.BatchAllOrNothing).GetAbilityDetails(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, details)
	assert.Equal(t, int32(0), f.requests.Load())
}

func TestRateLimitRespectsContext(t *testing.T) {
	f := newFixture(t)
	cfg := f.config(config.BatchAllOrNothing)
	cfg.RatePerSecond = 0.001
	cfg.Burst = 1
	c := catalog.NewHTTPClient(cfg, zap.NewNop())

	_, err := c.GetRecord(context.Background(), "1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.GetRecord(ctx, "1")
	assert.Error(t, err)
	assert.Equal(t, int32(1), f.requests.Load())
}

type stubDoer struct{ calls int }

func (s *stubDoer) Do(req *http.Request) (*http.Response, error) {
	s.calls++
	return nil, errors.New("network down")
}

func TestWithDoer(t *testing.T) {
	d := &stubDoer{}
	c := catalog.NewHTTPClient(config.CatalogConfig{BaseURL: "https://pokeapi.example/api/v2", Timeout: time.Second}, zap.NewNop(), catalog.WithDoer(d))
	_, err := c.GetRecord(context.Background(), "1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, catalog.ErrNotFound)
	assert.Equal(t, 1, d.calls)
}

func TestParseDamageClass(t *testing.T) {
	c, err := catalog.ParseDamageClass("Special")
	require.NoError(t, err)
	assert.Equal(t, catalog.Special, c)
	_, err = catalog.ParseDamageClass("typeless")
	assert.Error(t, err)
}
