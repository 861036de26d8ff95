// Package nature provides the static registry of modifier profiles consumed
// by the stat formula engine.
package nature

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/dexcompanion/internal/fuzzy"
	"github.com/cory-johannsen/dexcompanion/internal/game/stat"
)

//go:embed natures.yaml
var builtin []byte

// Neutral is the profile name assigned to freshly created roster members.
const Neutral = "Serious"

// Effect is the multiplier a profile applies to one stat.
type Effect int

const (
	// None leaves the stat unmodified.
	None Effect = iota
	// Boost multiplies the stat by 1.1.
	Boost
	// Penalty multiplies the stat by 0.9.
	Penalty
)

// Profile is a named modifier profile.
//
// Invariant: Boosts and Penalizes never name the same stat; either may be empty.
type Profile struct {
	Name      string    `yaml:"name"`
	Boosts    stat.Name `yaml:"boosts,omitempty"`
	Penalizes stat.Name `yaml:"penalizes,omitempty"`
}

// IsNeutral reports whether the profile modifies no stat.
func (p Profile) IsNeutral() bool {
	return p.Boosts == "" && p.Penalizes == ""
}

// EffectOn returns how p modifies s.
func (p Profile) EffectOn(s stat.Name) Effect {
	switch {
	case p.Boosts != "" && p.Boosts == s:
		return Boost
	case p.Penalizes != "" && p.Penalizes == s:
		return Penalty
	}
	return None
}

// Table is a case-insensitive registry of profiles.
type Table struct {
	byKey map[string]Profile
	order []string
}

type tableFile struct {
	Natures []Profile `yaml:"natures"`
}

// Parse builds a Table from YAML of the form `natures: [{name, boosts, penalizes}]`.
//
// Postcondition: Returns a Table holding every profile, or an error naming the
// first invalid or duplicate entry.
func Parse(data []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing nature table: %w", err)
	}
	t := &Table{byKey: make(map[string]Profile, len(f.Natures))}
	for _, p := range f.Natures {
		if err := t.add(p); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Table) add(p Profile) error {
	key := strings.ToLower(strings.TrimSpace(p.Name))
	if key == "" {
		return fmt.Errorf("nature with empty name")
	}
	if _, dup := t.byKey[key]; dup {
		return fmt.Errorf("duplicate nature %q", p.Name)
	}
	if p.Boosts != "" && p.Boosts == p.Penalizes {
		return fmt.Errorf("nature %q boosts and penalizes the same stat %q", p.Name, p.Boosts)
	}
	for _, s := range []stat.Name{p.Boosts, p.Penalizes} {
		if s != "" && !s.Valid() {
			return fmt.Errorf("nature %q references unknown stat %q", p.Name, s)
		}
	}
	t.byKey[key] = p
	t.order = append(t.order, p.Name)
	return nil
}

// Lookup returns the profile registered under name, ignoring case.
//
// Postcondition: Returns the profile and true, or a zero Profile and false.
func (t *Table) Lookup(name string) (Profile, bool) {
	p, ok := t.byKey[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// EffectOn returns the effect of the named profile on s. Unknown profile
// names have no effect.
func (t *Table) EffectOn(name string, s stat.Name) Effect {
	p, ok := t.Lookup(name)
	if !ok {
		return None
	}
	return p.EffectOn(s)
}

// Names returns every profile name in registration order.
func (t *Table) Names() []string {
	return append([]string(nil), t.order...)
}

// Len returns the number of registered profiles.
func (t *Table) Len() int { return len(t.order) }

// Suggest returns up to limit registered names closest to name by edit
// distance, nearest first. Names further than three edits away are omitted.
func (t *Table) Suggest(name string, limit int) []string {
	return fuzzy.Closest(name, t.order, limit)
}

var defaultTable = sync.OnceValue(func() *Table {
	t, err := Parse(builtin)
	if err != nil {
		panic("nature: embedded table is invalid: " + err.Error())
	}
	return t
})

// Default returns the built-in table of 25 profiles.
func Default() *Table {
	return defaultTable()
}
