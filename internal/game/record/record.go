// Package record defines creature records fetched from the catalog or
// authored by the user, and the rules for listing them together.
package record

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/cory-johannsen/dexcompanion/internal/game/stat"
)

// Record is a creature's core attributes. A catalog record has a catalog ID
// and a nil Authored section; a user-authored record has an authored ID and a
// non-nil Authored section.
type Record struct {
	ID        ID          `json:"id"`
	Name      string      `json:"name" validate:"required"`
	Types     []string    `json:"types" validate:"min=1,max=2,dive,required"`
	Stats     stat.Block  `json:"stats"`
	Abilities []string    `json:"abilities"`
	Image     string      `json:"spriteImage"`
	Height    *int        `json:"height,omitempty"`
	Weight    *int        `json:"weight,omitempty"`
	Authored  *Authorship `json:"authored,omitempty"`
}

// Authorship carries the fields only user-authored records have.
type Authorship struct {
	// DerivedFrom is the catalog number the record was imported from, if any.
	DerivedFrom *uint32  `json:"derivedFrom,omitempty"`
	Category    string   `json:"category"`
	Description string   `json:"pokedexEntry"`
	Moves       []string `json:"moves"`
}

// IsAuthored reports whether r was created by the user.
func (r Record) IsAuthored() bool {
	return r.Authored != nil
}

// Clone returns a deep copy of r that shares no memory with it.
func (r Record) Clone() Record {
	out := r
	out.Types = slices.Clone(r.Types)
	out.Abilities = slices.Clone(r.Abilities)
	if r.Height != nil {
		h := *r.Height
		out.Height = &h
	}
	if r.Weight != nil {
		w := *r.Weight
		out.Weight = &w
	}
	if r.Authored != nil {
		a := *r.Authored
		a.Moves = slices.Clone(r.Authored.Moves)
		if r.Authored.DerivedFrom != nil {
			d := *r.Authored.DerivedFrom
			a.DerivedFrom = &d
		}
		out.Authored = &a
	}
	return out
}

// Derive returns a new user-authored record seeded from a catalog record.
//
// Precondition: base should be a catalog record; its catalog number is kept
// as the back-reference when present.
// Postcondition: the result has a fresh authored ID and an empty move list.
func Derive(base Record, category, description string) Record {
	out := base.Clone()
	out.ID = NewAuthoredID()
	a := &Authorship{Category: category, Description: description, Moves: []string{}}
	if n, ok := base.ID.Catalog(); ok {
		a.DerivedFrom = &n
	}
	out.Authored = a
	return out
}

var validate = validator.New()

// Validate checks a user-authored record before it is stored.
//
// Postcondition: Returns nil when r has an authored ID, a name, one or two
// non-empty types, and non-negative stats.
func (r Record) Validate() error {
	if _, ok := r.ID.Authored(); !ok || r.Authored == nil {
		return fmt.Errorf("record %q is not user-authored", r.Name)
	}
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid record %q: %w", r.Name, err)
	}
	for _, n := range stat.Names {
		if r.Stats.Get(n) < 0 {
			return fmt.Errorf("invalid record %q: base %s must not be negative", r.Name, n)
		}
	}
	return nil
}

// SortByID stably orders records by Compare on their IDs.
func SortByID(records []Record) {
	slices.SortStableFunc(records, func(a, b Record) int { return Compare(a.ID, b.ID) })
}

// Merge returns authored and cached records as one list ordered for display:
// user-authored first in insertion order, then catalog records by number.
// Neither input is modified.
func Merge(authored []Record, cached []Record) []Record {
	out := make([]Record, 0, len(authored)+len(cached))
	out = append(out, authored...)
	out = append(out, cached...)
	SortByID(out)
	return out
}

// Filter returns the records whose name contains query (case-insensitive) or
// whose ID string equals query. An empty query returns all records.
func Filter(records []Record, query string) []Record {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return records
	}
	var out []Record
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Name), q) || r.ID.String() == q {
			out = append(out, r)
		}
	}
	return out
}

// Page returns the slice [offset, offset+limit) of items, clamped to bounds.
func Page[T any](items []T, limit, offset int) []T {
	if limit <= 0 || offset >= len(items) {
		return nil
	}
	offset = max(offset, 0)
	end := offset + min(limit, len(items)-offset)
	return items[offset:end]
}
