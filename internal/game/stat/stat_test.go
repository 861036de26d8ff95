package stat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/dexcompanion/internal/game/stat"
)

func TestParse_AcceptsShortLongAndCatalogForms(t *testing.T) {
	cases := map[string]stat.Name{
		"hp":              stat.HP,
		"Vitality":        stat.HP,
		"attack":          stat.Attack,
		"ATK":             stat.Attack,
		"special-attack":  stat.SpAttack,
		"special-defense": stat.SpDefense,
		" speed ":         stat.Speed,
		"def":             stat.Defense,
	}
	for in, want := range cases {
		got, err := stat.Parse(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParse_Unknown(t *testing.T) {
	_, err := stat.Parse("luck")
	assert.Error(t, err)
}

func TestBlock_GetWithRoundTrip(t *testing.T) {
	b := stat.Block{}
	for i, n := range stat.Names {
		b = b.With(n, i+1)
	}
	assert.Equal(t, stat.Block{HP: 1, Attack: 2, Defense: 3, SpAttack: 4, SpDefense: 5, Speed: 6}, b)
	assert.Equal(t, 21, b.Total())
	assert.Equal(t, 0, b.Get("luck"))
}

func TestBlock_ClampLimitsEveryField(t *testing.T) {
	b := stat.Block{HP: -4, Attack: 300, Defense: 10, SpAttack: 252, SpDefense: 0, Speed: 999}
	got := b.Clamp(0, stat.MaxEV)
	assert.Equal(t, stat.Block{HP: 0, Attack: 252, Defense: 10, SpAttack: 252, SpDefense: 0, Speed: 252}, got)
	assert.True(t, got.InRange(0, stat.MaxEV))
	assert.False(t, b.InRange(0, stat.MaxEV))
}

func TestPropertyClamp_AlwaysInRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := stat.Block{
			HP:        rapid.IntRange(-1000, 1000).Draw(t, "hp"),
			Attack:    rapid.IntRange(-1000, 1000).Draw(t, "atk"),
			Defense:   rapid.IntRange(-1000, 1000).Draw(t, "def"),
			SpAttack:  rapid.IntRange(-1000, 1000).Draw(t, "spa"),
			SpDefense: rapid.IntRange(-1000, 1000).Draw(t, "spd"),
			Speed:     rapid.IntRange(-1000, 1000).Draw(t, "spe"),
		}
		assert.True(t, b.Clamp(0, stat.MaxIV).InRange(0, stat.MaxIV))
	})
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Sp. Atk", stat.SpAttack.Label())
	assert.Equal(t, "luck", stat.Name("luck").Label())
	assert.True(t, stat.Speed.Valid())
	assert.False(t, stat.Name("luck").Valid())
}
