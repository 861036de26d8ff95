// Package roster defines owned creature instances and the containers that
// hold them: six-slot rosters and the thirty-slot storage grid.
package roster

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/cory-johannsen/dexcompanion/internal/game/formula"
	"github.com/cory-johannsen/dexcompanion/internal/game/nature"
	"github.com/cory-johannsen/dexcompanion/internal/game/record"
	"github.com/cory-johannsen/dexcompanion/internal/game/stat"
)

const (
	// MinLevel and MaxLevel bound the level an editor accepts.
	MinLevel = 1
	MaxLevel = 100
	// DefaultLevel is the level of a freshly placed member.
	DefaultLevel = 50
	// MoveSlots is the number of move slots on a member.
	MoveSlots = 4
)

// Member is one owned creature instance occupying a roster or storage slot.
//
// A member with a nil Creature is an empty slot.
type Member struct {
	Slot     int               `json:"slotId" validate:"gte=0"`
	Creature *record.Record    `json:"pokemonData" validate:"-"`
	Nickname string            `json:"nickname"`
	Level    int               `json:"level" validate:"gte=1,lte=100"`
	Item     string            `json:"item"`
	Ability  string            `json:"ability"`
	Moves    [MoveSlots]string `json:"moves"`
	IVs      stat.Block        `json:"ivs"`
	EVs      stat.Block        `json:"evs"`
	Nature   string            `json:"nature" validate:"required"`
}

// Empty returns the template member for slot with no creature assigned.
func Empty(slot int) Member {
	return Member{
		Slot:   slot,
		Level:  DefaultLevel,
		IVs:    stat.Uniform(stat.MaxIV),
		Nature: nature.Neutral,
	}
}

// New returns the template member for slot holding a copy of rec, nicknamed
// after it.
func New(slot int, rec record.Record) Member {
	m := Empty(slot)
	c := rec.Clone()
	m.Creature = &c
	m.Nickname = rec.Name
	return m
}

// IsEmpty reports whether no creature occupies the slot.
func (m Member) IsEmpty() bool {
	return m.Creature == nil
}

// Clone returns a deep copy of m that shares no memory with it.
func (m Member) Clone() Member {
	if m.Creature != nil {
		c := m.Creature.Clone()
		m.Creature = &c
	}
	return m
}

// EVTotal returns the sum of all effort investment.
func (m Member) EVTotal() int {
	return m.EVs.Total()
}

// EVRemaining returns how much of the advisory 510-point budget is unspent.
// The result is negative when the member is over budget.
func (m Member) EVRemaining() int {
	return stat.EVBudget - m.EVTotal()
}

// Clamp returns a copy of m with level, individual variation, and effort
// investment limited to their editable ranges. The 510-point budget is not
// enforced.
func (m Member) Clamp() Member {
	m.Level = min(max(m.Level, MinLevel), MaxLevel)
	m.IVs = m.IVs.Clamp(0, stat.MaxIV)
	m.EVs = m.EVs.Clamp(0, stat.MaxEV)
	return m
}

// Effective returns the member's six computed stats. An empty slot yields a
// zero Block.
func (m Member) Effective() stat.Block {
	if m.Creature == nil {
		return stat.Block{}
	}
	return formula.Block(m.Creature.Stats, m.IVs, m.EVs, m.Level, m.Nature)
}

var validate = validator.New()

// Validate checks m against the editable ranges without modifying it.
//
// Postcondition: Returns nil if level, individual variation, effort
// investment, and slot are in range; otherwise an error naming the violation.
func (m Member) Validate() error {
	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("invalid member in slot %d: %w", m.Slot, err)
	}
	if !m.IVs.InRange(0, stat.MaxIV) {
		return fmt.Errorf("invalid member in slot %d: individual variation must be 0-%d", m.Slot, stat.MaxIV)
	}
	if !m.EVs.InRange(0, stat.MaxEV) {
		return fmt.Errorf("invalid member in slot %d: effort investment must be 0-%d", m.Slot, stat.MaxEV)
	}
	return nil
}
