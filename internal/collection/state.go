// Package collection holds the user's curated collections: favorites,
// user-authored records, rosters, the storage grid, and the record cache.
package collection

import (
	"maps"
	"slices"

	"github.com/cory-johannsen/dexcompanion/internal/game/record"
	"github.com/cory-johannsen/dexcompanion/internal/game/roster"
)

// State is the full persisted collection document.
//
// Invariant: Cache[k].ID.String() == k for every key k.
type State struct {
	Favorites   []record.ID              `json:"favorites"`
	UserRecords []record.Record          `json:"customPokemon"`
	Rosters     []roster.Roster          `json:"teams"`
	Storage     roster.Grid              `json:"box"`
	Cache       map[string]record.Record `json:"pokedexCache"`
}

// DefaultState returns the state of a collection that has never been saved.
func DefaultState() State {
	return State{
		Favorites:   []record.ID{},
		UserRecords: []record.Record{},
		Rosters:     []roster.Roster{},
		Cache:       map[string]record.Record{},
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := State{
		Favorites:   slices.Clone(s.Favorites),
		UserRecords: make([]record.Record, len(s.UserRecords)),
		Rosters:     make([]roster.Roster, len(s.Rosters)),
		Storage:     s.Storage.Clone(),
		Cache:       make(map[string]record.Record, len(s.Cache)),
	}
	if out.Favorites == nil {
		out.Favorites = []record.ID{}
	}
	for i, r := range s.UserRecords {
		out.UserRecords[i] = r.Clone()
	}
	for i, r := range s.Rosters {
		out.Rosters[i] = r.Clone()
	}
	for k, r := range s.Cache {
		out.Cache[k] = r.Clone()
	}
	return out
}

// normalize fills nil collections left by an older or hand-edited document
// and rekeys the cache by record ID.
func (s State) normalize() State {
	d := DefaultState()
	if s.Favorites != nil {
		d.Favorites = s.Favorites
	}
	if s.UserRecords != nil {
		d.UserRecords = s.UserRecords
	}
	if s.Rosters != nil {
		d.Rosters = s.Rosters
	}
	d.Storage = s.Storage
	for _, r := range s.Cache {
		if !r.ID.IsZero() {
			d.Cache[r.ID.String()] = r
		}
	}
	return d
}

// IsFavorite reports whether id is in the favorites set.
func (s State) IsFavorite(id record.ID) bool {
	return slices.Contains(s.Favorites, id)
}

// Roster returns the roster with the given id.
func (s State) Roster(id string) (roster.Roster, bool) {
	i := slices.IndexFunc(s.Rosters, func(r roster.Roster) bool { return r.ID == id })
	if i < 0 {
		return roster.Roster{}, false
	}
	return s.Rosters[i].Clone(), true
}

// UserRecord returns the user-authored record with the given id.
func (s State) UserRecord(id record.ID) (record.Record, bool) {
	i := slices.IndexFunc(s.UserRecords, func(r record.Record) bool { return r.ID == id })
	if i < 0 {
		return record.Record{}, false
	}
	return s.UserRecords[i].Clone(), true
}

// Cached returns the cached record for id.
func (s State) Cached(id record.ID) (record.Record, bool) {
	r, ok := s.Cache[id.String()]
	if !ok {
		return record.Record{}, false
	}
	return r.Clone(), true
}

// Listing returns user-authored records followed by cached records in
// catalog order.
func (s State) Listing() []record.Record {
	cached := make([]record.Record, 0, len(s.Cache))
	for _, k := range slices.Sorted(maps.Keys(s.Cache)) {
		cached = append(cached, s.Cache[k].Clone())
	}
	authored := make([]record.Record, len(s.UserRecords))
	for i, r := range s.UserRecords {
		authored[i] = r.Clone()
	}
	return record.Merge(authored, cached)
}

// FavoriteRecords resolves favorites against user records and the cache,
// skipping ids that resolve to neither, in display order.
func (s State) FavoriteRecords() []record.Record {
	var out []record.Record
	for _, id := range s.Favorites {
		if r, ok := s.UserRecord(id); ok {
			out = append(out, r)
			continue
		}
		if r, ok := s.Cached(id); ok {
			out = append(out, r)
		}
	}
	record.SortByID(out)
	return out
}
