package roster_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/dexcompanion/internal/game/record"
	"github.com/cory-johannsen/dexcompanion/internal/game/roster"
	"github.com/cory-johannsen/dexcompanion/internal/game/stat"
)

func garchomp() record.Record {
	return record.Record{
		ID:        record.CatalogID(445),
		Name:      "garchomp",
		Types:     []string{"dragon", "ground"},
		Stats:     stat.Block{HP: 108, Attack: 130, Defense: 95, SpAttack: 80, SpDefense: 85, Speed: 102},
		Abilities: []string{"sand-veil", "rough-skin"},
	}
}

func TestNewRoster_SixEmptySlots(t *testing.T) {
	r := roster.NewRoster("New Team")
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "New Team", r.Name)
	for i, m := range r.Members {
		assert.Equal(t, i, m.Slot)
		assert.True(t, m.IsEmpty())
		assert.Equal(t, roster.DefaultLevel, m.Level)
		assert.Equal(t, stat.Uniform(31), m.IVs)
		assert.Equal(t, stat.Block{}, m.EVs)
		assert.Equal(t, "Serious", m.Nature)
	}
	assert.Equal(t, 0, r.Filled())
	assert.NotEqual(t, r.ID, roster.NewRoster("New Team").ID)
}

func TestNew_TemplateFromRecord(t *testing.T) {
	m := roster.New(2, garchomp())
	assert.Equal(t, 2, m.Slot)
	assert.Equal(t, "garchomp", m.Nickname)
	assert.Equal(t, [4]string{}, m.Moves)
	require.NotNil(t, m.Creature)
	assert.Equal(t, uint32(445), func() uint32 { n, _ := m.Creature.ID.Catalog(); return n }())
}

func TestWithMember_CopiesValue(t *testing.T) {
	r := roster.NewRoster("T")
	m := roster.New(0, garchomp())
	r2, err := r.WithMember(3, m)
	require.NoError(t, err)

	m.Nickname = "changed"
	m.Creature.Name = "changed"
	assert.Equal(t, "garchomp", r2.Members[3].Nickname)
	assert.Equal(t, "garchomp", r2.Members[3].Creature.Name)
	assert.Equal(t, 3, r2.Members[3].Slot)
	assert.True(t, r.Members[3].IsEmpty(), "original roster untouched")
	assert.Equal(t, 1, r2.Filled())

	_, err = r.WithMember(6, m)
	assert.Error(t, err)
	_, err = r.WithMember(-1, m)
	assert.Error(t, err)
}

func TestWithoutMember(t *testing.T) {
	r, err := roster.NewRoster("T").WithMember(1, roster.New(1, garchomp()))
	require.NoError(t, err)
	r, err = r.WithoutMember(1)
	require.NoError(t, err)
	assert.True(t, r.Members[1].IsEmpty())
}

func TestEffective(t *testing.T) {
	m := roster.New(0, garchomp())
	m.Nature = "jolly"
	m.EVs = stat.Block{Attack: 252, Speed: 252, HP: 4}
	eff := m.Effective()
	// HP: floor((216+31+1)*50/100)+60 = 184
	assert.Equal(t, 184, eff.HP)
	// Attack: floor((260+31+63)*50/100)+5 = 182
	assert.Equal(t, 182, eff.Attack)
	// Speed boosted: floor((204+31+63)*50/100)+5 = 154 -> 169
	assert.Equal(t, 169, eff.Speed)
	// Sp. Atk penalized: floor((160+31)*50/100)+5 = 100 -> 90
	assert.Equal(t, 90, eff.SpAttack)

	assert.Equal(t, stat.Block{}, roster.Empty(0).Effective())
}

func TestEVBudgetIsAdvisory(t *testing.T) {
	m := roster.New(0, garchomp())
	m.EVs = stat.Uniform(252)
	assert.Equal(t, 1512, m.EVTotal())
	assert.Equal(t, -1002, m.EVRemaining())
	assert.NoError(t, m.Validate(), "budget overrun is not a validation error")
}

func TestClamp(t *testing.T) {
	m := roster.New(0, garchomp())
	m.Level = 150
	m.IVs = stat.Uniform(40)
	m.EVs = stat.Block{Attack: 300, Speed: -5}
	assert.Error(t, m.Validate())

	c := m.Clamp()
	assert.Equal(t, 100, c.Level)
	assert.Equal(t, stat.Uniform(31), c.IVs)
	assert.Equal(t, stat.Block{Attack: 252}, c.EVs)
	assert.NoError(t, c.Validate())

	m.Level = 0
	assert.Equal(t, 1, m.Clamp().Level)
}

func TestPropertyClamp_AlwaysValid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := roster.New(rapid.IntRange(0, 5).Draw(t, "slot"), garchomp())
		m.Level = rapid.IntRange(-50, 500).Draw(t, "level")
		m.IVs = stat.Uniform(rapid.IntRange(-100, 100).Draw(t, "iv"))
		m.EVs = stat.Uniform(rapid.IntRange(-100, 1000).Draw(t, "ev"))
		assert.NoError(t, m.Clamp().Validate())
	})
}

func TestGrid_With(t *testing.T) {
	var g roster.Grid
	m := roster.New(0, garchomp())

	g2 := g.With(4, &m)
	assert.Equal(t, 1, g2.Occupied())
	assert.Equal(t, 0, g.Occupied(), "original grid untouched")

	m.Nickname = "changed"
	assert.Equal(t, "garchomp", g2[4].Nickname)

	assert.Equal(t, g2, g2.With(-1, &m))
	assert.Equal(t, g2, g2.With(roster.GridSize, &m))
	assert.Len(t, g2.With(roster.GridSize, &m), roster.GridSize)

	assert.Equal(t, 0, g2.With(4, nil).Occupied())
}

func TestGrid_JSONHasThirtySlots(t *testing.T) {
	var g roster.Grid
	m := roster.New(0, garchomp())
	g = g.With(0, &m)
	data, err := json.Marshal(g)
	require.NoError(t, err)
	var raw []json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Len(t, raw, roster.GridSize)
	assert.Equal(t, "null", string(raw[1]))

	var back roster.Grid
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "garchomp", back[0].Nickname)
}
