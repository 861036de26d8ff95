// Package stat defines the six-field stat block shared by base stats,
// individual variation, and effort investment.
package stat

import (
	"fmt"
	"strings"
)

// Name identifies one of the six stats.
type Name string

const (
	HP        Name = "hp"
	Attack    Name = "atk"
	Defense   Name = "def"
	SpAttack  Name = "spa"
	SpDefense Name = "spd"
	Speed     Name = "spe"
)

// Names lists every stat in display order.
var Names = [6]Name{HP, Attack, Defense, SpAttack, SpDefense, Speed}

const (
	// MaxIV is the inclusive upper bound of an individual-variation value.
	MaxIV = 31
	// MaxEV is the inclusive upper bound of a single effort-investment value.
	MaxEV = 252
	// EVBudget is the advisory cap on the sum of all six effort-investment values.
	EVBudget = 510
)

var labels = map[Name]string{
	HP:        "HP",
	Attack:    "Attack",
	Defense:   "Defense",
	SpAttack:  "Sp. Atk",
	SpDefense: "Sp. Def",
	Speed:     "Speed",
}

// aliases maps every accepted spelling to its canonical Name. The catalog
// uses the long hyphenated forms; persisted documents use the short forms.
var aliases = map[string]Name{
	"hp":              HP,
	"vitality":        HP,
	"atk":             Attack,
	"attack":          Attack,
	"def":             Defense,
	"defense":         Defense,
	"spa":             SpAttack,
	"special-attack":  SpAttack,
	"sp-atk":          SpAttack,
	"spd":             SpDefense,
	"special-defense": SpDefense,
	"sp-def":          SpDefense,
	"spe":             Speed,
	"speed":           Speed,
}

// Label returns the human-readable label for n, or n itself if unknown.
func (n Name) Label() string {
	if l, ok := labels[n]; ok {
		return l
	}
	return string(n)
}

// Valid reports whether n is one of the six canonical stat names.
func (n Name) Valid() bool {
	_, ok := labels[n]
	return ok
}

// Parse resolves a stat spelling (short, long, or catalog form) case-insensitively.
//
// Postcondition: Returns a canonical Name, or an error if s is not recognised.
func Parse(s string) (Name, error) {
	if n, ok := aliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return n, nil
	}
	return "", fmt.Errorf("unknown stat %q", s)
}

// Block holds one value per stat.
//
// Invariant: all six fields are always present; a zero Block is all zeros.
type Block struct {
	HP        int `json:"hp" yaml:"hp"`
	Attack    int `json:"atk" yaml:"atk"`
	Defense   int `json:"def" yaml:"def"`
	SpAttack  int `json:"spa" yaml:"spa"`
	SpDefense int `json:"spd" yaml:"spd"`
	Speed     int `json:"spe" yaml:"spe"`
}

// Uniform returns a Block with every field set to v.
func Uniform(v int) Block {
	return Block{HP: v, Attack: v, Defense: v, SpAttack: v, SpDefense: v, Speed: v}
}

// Get returns the value for n. Unknown names yield 0.
func (b Block) Get(n Name) int {
	switch n {
	case HP:
		return b.HP
	case Attack:
		return b.Attack
	case Defense:
		return b.Defense
	case SpAttack:
		return b.SpAttack
	case SpDefense:
		return b.SpDefense
	case Speed:
		return b.Speed
	}
	return 0
}

// With returns a copy of b with n set to v. Unknown names leave b unchanged.
func (b Block) With(n Name, v int) Block {
	switch n {
	case HP:
		b.HP = v
	case Attack:
		b.Attack = v
	case Defense:
		b.Defense = v
	case SpAttack:
		b.SpAttack = v
	case SpDefense:
		b.SpDefense = v
	case Speed:
		b.Speed = v
	}
	return b
}

// Total returns the sum of all six fields.
func (b Block) Total() int {
	return b.HP + b.Attack + b.Defense + b.SpAttack + b.SpDefense + b.Speed
}

// Clamp returns a copy of b with every field limited to [lo, hi].
//
// Precondition: lo <= hi.
func (b Block) Clamp(lo, hi int) Block {
	for _, n := range Names {
		b = b.With(n, min(max(b.Get(n), lo), hi))
	}
	return b
}

// InRange reports whether every field lies in [lo, hi].
func (b Block) InRange(lo, hi int) bool {
	for _, n := range Names {
		if v := b.Get(n); v < lo || v > hi {
			return false
		}
	}
	return true
}
