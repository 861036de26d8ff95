// Package catalog is the boundary to the remote, read-only creature catalog.
// Every operation is keyed by an integer id or a lowercase name and can fail
// with ErrNotFound.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cory-johannsen/dexcompanion/internal/game/evolution"
	"github.com/cory-johannsen/dexcompanion/internal/game/record"
)

// ErrNotFound is returned when the catalog has no entry for an id or name.
var ErrNotFound = errors.New("not found in catalog")

// DamageClass selects one of the catalog's move groupings.
type DamageClass int

const (
	Status   DamageClass = 1
	Physical DamageClass = 2
	Special  DamageClass = 3
)

// ParseDamageClass resolves "status", "physical", or "special".
func ParseDamageClass(s string) (DamageClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "status":
		return Status, nil
	case "physical":
		return Physical, nil
	case "special":
		return Special, nil
	}
	return 0, fmt.Errorf("unknown damage class %q", s)
}

// NamedRef is a name plus the catalog URL it resolves to.
type NamedRef struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// SpeciesMeta is the descriptive data held on a species entry.
type SpeciesMeta struct {
	Description       string `json:"description"`
	Category          string `json:"category"`
	EvolutionChainURL string `json:"evolutionChainUrl"`
}

// LearnableMove is a move a creature can learn and how.
type LearnableMove struct {
	Name   string `json:"name"`
	Level  int    `json:"levelLearnedAt"`
	Method string `json:"learnMethod"`
}

// Encounter is a location where a creature can be found.
type Encounter struct {
	Location string   `json:"location"`
	Versions []string `json:"versions"`
}

// MoveDetail describes one move. Power and Accuracy are nil for moves that
// have none.
type MoveDetail struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Power       *int   `json:"power"`
	Accuracy    *int   `json:"accuracy"`
	PP          int    `json:"pp"`
	DamageClass string `json:"damageClass"`
	Description string `json:"flavorText"`
}

// AbilityDetail describes one ability and how many creatures can have it.
type AbilityDetail struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"effect"`
	UsageCount  int    `json:"pokemonCount"`
}

// Catalog is the read-only creature data source.
type Catalog interface {
	// GetRecord fetches one record by catalog id or lowercase name.
	GetRecord(ctx context.Context, key string) (record.Record, error)
	// ListRecords lists a page of records and fetches each in full.
	ListRecords(ctx context.Context, limit, offset int) ([]record.Record, error)
	GetSpeciesMeta(ctx context.Context, key string) (SpeciesMeta, error)
	// GetEvolutionChain accepts the chain URL from SpeciesMeta or a chain id.
	GetEvolutionChain(ctx context.Context, ref string) (*evolution.Stage, error)
	GetLearnableMoves(ctx context.Context, key string) ([]LearnableMove, error)
	GetEncounters(ctx context.Context, key string) ([]Encounter, error)
	ListMoves(ctx context.Context, class DamageClass) ([]NamedRef, error)
	GetMoveDetail(ctx context.Context, name string) (MoveDetail, error)
	GetMoveDetails(ctx context.Context, names []string) ([]MoveDetail, error)
	ListAbilities(ctx context.Context, limit, offset int) ([]NamedRef, error)
	GetAbilityDetail(ctx context.Context, name string) (AbilityDetail, error)
	GetAbilityDetails(ctx context.Context, names []string) ([]AbilityDetail, error)
}

// NormalizeKey lowercases and trims an id or name for use in a catalog path.
func NormalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
