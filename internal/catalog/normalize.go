package catalog

import (
	"cmp"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/cory-johannsen/dexcompanion/internal/game/evolution"
	"github.com/cory-johannsen/dexcompanion/internal/game/record"
	"github.com/cory-johannsen/dexcompanion/internal/game/stat"
)

const (
	defaultDescription        = "No description available."
	defaultCategory           = "Pokemon"
	defaultAbilityDescription = "No description."
)

// parseRecord normalizes a /pokemon/{id} response.
func parseRecord(doc gjson.Result) (record.Record, error) {
	id := doc.Get("id")
	if !id.Exists() || id.Int() < 0 {
		return record.Record{}, fmt.Errorf("record response has no valid id")
	}
	r := record.Record{
		ID:        record.CatalogID(uint32(id.Uint())),
		Name:      doc.Get("name").String(),
		Types:     stringList(doc.Get("types.#.type.name")),
		Abilities: stringList(doc.Get("abilities.#.ability.name")),
	}
	for _, s := range doc.Get("stats").Array() {
		name, err := stat.Parse(s.Get("stat.name").String())
		if err != nil {
			continue
		}
		r.Stats = r.Stats.With(name, int(s.Get("base_stat").Int()))
	}
	r.Image = doc.Get("sprites.other.official-artwork.front_default").String()
	if r.Image == "" {
		r.Image = doc.Get("sprites.front_default").String()
	}
	r.Height = optionalInt(doc.Get("height"))
	r.Weight = optionalInt(doc.Get("weight"))
	return r, nil
}

func parseSpeciesMeta(doc gjson.Result) SpeciesMeta {
	meta := SpeciesMeta{
		Description:       defaultDescription,
		Category:          defaultCategory,
		EvolutionChainURL: doc.Get("evolution_chain.url").String(),
	}
	if ft := doc.Get(`flavor_text_entries.#(language.name=="en").flavor_text`); ft.Exists() {
		meta.Description = strings.ReplaceAll(ft.String(), "\f", " ")
	}
	if g := doc.Get(`genera.#(language.name=="en").genus`); g.Exists() {
		meta.Category = g.String()
	}
	return meta
}

// parseLearnableMoves reads the first version-group detail of each move and
// orders the result by level, keeping catalog order among equal levels.
func parseLearnableMoves(doc gjson.Result) []LearnableMove {
	moves := doc.Get("moves").Array()
	out := make([]LearnableMove, 0, len(moves))
	for _, m := range moves {
		detail := m.Get("version_group_details.0")
		out = append(out, LearnableMove{
			Name:   m.Get("move.name").String(),
			Level:  int(detail.Get("level_learned_at").Int()),
			Method: detail.Get("move_learn_method.name").String(),
		})
	}
	slices.SortStableFunc(out, func(a, b LearnableMove) int { return cmp.Compare(a.Level, b.Level) })
	return out
}

func parseEncounters(doc gjson.Result) []Encounter {
	sites := doc.Array()
	out := make([]Encounter, 0, len(sites))
	for _, e := range sites {
		out = append(out, Encounter{
			Location: e.Get("location_area.name").String(),
			Versions: stringList(e.Get("version_details.#.version.name")),
		})
	}
	return out
}

// parseRefs reads an array of {name, url} objects at p.
func parseRefs(doc gjson.Result, p string) []NamedRef {
	items := doc.Get(p).Array()
	out := make([]NamedRef, 0, len(items))
	for _, it := range items {
		out = append(out, NamedRef{Name: it.Get("name").String(), URL: it.Get("url").String()})
	}
	return out
}

func parseMoveDetail(doc gjson.Result) MoveDetail {
	return MoveDetail{
		ID:          int(doc.Get("id").Int()),
		Name:        doc.Get("name").String(),
		Type:        doc.Get("type.name").String(),
		Power:       optionalInt(doc.Get("power")),
		Accuracy:    optionalInt(doc.Get("accuracy")),
		PP:          int(doc.Get("pp").Int()),
		DamageClass: doc.Get("damage_class.name").String(),
		Description: strings.ReplaceAll(doc.Get(`flavor_text_entries.#(language.name=="en").flavor_text`).String(), "\n", " "),
	}
}

func parseAbilityDetail(doc gjson.Result) AbilityDetail {
	d := AbilityDetail{
		ID:          int(doc.Get("id").Int()),
		Name:        doc.Get("name").String(),
		Description: defaultAbilityDescription,
		UsageCount:  int(doc.Get("pokemon.#").Int()),
	}
	if e := doc.Get(`effect_entries.#(language.name=="en").short_effect`); e.Exists() {
		d.Description = e.String()
	}
	return d
}

// parseChain converts one chain link and its descendants. artwork is the
// image URL prefix; "<speciesID>.png" is appended.
func parseChain(link gjson.Result, artwork string) *evolution.Stage {
	speciesID := path.Base(strings.TrimRight(link.Get("species.url").String(), "/"))
	st := &evolution.Stage{
		SpeciesID: speciesID,
		Name:      link.Get("species.name").String(),
		ImageURL:  artwork + speciesID + ".png",
		MinLevel:  optionalInt(link.Get("evolution_details.0.min_level")),
		Trigger:   link.Get("evolution_details.0.trigger.name").String(),
		Item:      link.Get("evolution_details.0.item.name").String(),
		EvolvesTo: []*evolution.Stage{},
	}
	for _, next := range link.Get("evolves_to").Array() {
		st.EvolvesTo = append(st.EvolvesTo, parseChain(next, artwork))
	}
	return st
}

func optionalInt(v gjson.Result) *int {
	if !v.Exists() || v.Type == gjson.Null {
		return nil
	}
	n := int(v.Int())
	return &n
}

func stringList(v gjson.Result) []string {
	arr := v.Array()
	out := make([]string, 0, len(arr))
	for _, s := range arr {
		out = append(out, s.String())
	}
	return out
}
