package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cory-johannsen/dexcompanion/internal/catalog"
	"github.com/cory-johannsen/dexcompanion/internal/collection"
	"github.com/cory-johannsen/dexcompanion/internal/game/compare"
	"github.com/cory-johannsen/dexcompanion/internal/game/record"
	"github.com/cory-johannsen/dexcompanion/internal/game/stat"
)

const pageSize = 20

// resolveRecord finds key among user-authored records, then the cache by id
// or name, and finally fetches it from the catalog and caches the result.
func (a *app) resolveRecord(ctx context.Context, key string) (record.Record, error) {
	id, err := record.ParseID(key)
	if err != nil {
		return record.Record{}, err
	}
	st := a.collection.State()
	if r, ok := st.UserRecord(id); ok {
		return r, nil
	}
	if r, ok := st.Cached(id); ok {
		return r, nil
	}
	name := catalog.NormalizeKey(key)
	for _, r := range st.Listing() {
		if strings.EqualFold(r.Name, name) {
			return r, nil
		}
	}

	r, err := a.catalog.GetRecord(ctx, key)
	if err != nil {
		return record.Record{}, err
	}
	if _, err := a.collection.CacheRecord(ctx, r); err != nil {
		return record.Record{}, err
	}
	return r, nil
}

func recordRows(st collection.State, records []record.Record) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		mark := ""
		if st.IsFavorite(r.ID) {
			mark = "*"
		}
		kind := "catalog"
		if r.IsAuthored() {
			kind = "custom"
		}
		rows = append(rows, []string{
			mark,
			r.ID.String(),
			r.Name,
			strings.Join(r.Types, "/"),
			strconv.Itoa(r.Stats.Total()),
			kind,
		})
	}
	return rows
}

var recordHeaders = []string{"", "ID", "Name", "Types", "Total", "Source"}

func (u *ui) Record(r record.Record, favorite bool) {
	title := fmt.Sprintf("#%s %s", r.ID, r.Name)
	if favorite {
		title += " *"
	}
	u.Title(title)
	u.Field("Types", strings.Join(r.Types, ", "))
	u.Field("Abilities", strings.Join(r.Abilities, ", "))
	if r.Height != nil {
		u.Field("Height", fmt.Sprintf("%.1f m", compare.HeightCM(r)/100))
	}
	if r.Weight != nil {
		u.Field("Weight", fmt.Sprintf("%.1f kg", compare.WeightKG(r)))
	}
	if r.Image != "" {
		u.Field("Image", r.Image)
	}
	if a := r.Authored; a != nil {
		u.Field("Category", a.Category)
		u.Field("Entry", a.Description)
		if len(a.Moves) > 0 {
			u.Field("Moves", strings.Join(a.Moves, ", "))
		}
		if a.DerivedFrom != nil {
			u.Field("Derived", fmt.Sprintf("from #%d", *a.DerivedFrom))
		}
	}
	rows := make([][]string, 0, len(stat.Names)+1)
	for _, n := range stat.Names {
		rows = append(rows, []string{n.Label(), strconv.Itoa(r.Stats.Get(n))})
	}
	rows = append(rows, []string{"Total", strconv.Itoa(r.Stats.Total())})
	u.Table([]string{"Stat", "Base"}, rows)
}

// statFlags converts a stat=value flag map into a Block, starting from base.
func statFlags(base stat.Block, values map[string]int) (stat.Block, error) {
	// Sorted so the first reported error is deterministic.
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		n, err := stat.Parse(k)
		if err != nil {
			return stat.Block{}, err
		}
		base = base.With(n, values[k])
	}
	return base, nil
}

// page returns the 1-based page p of items and the total page count.
func page[T any](items []T, p int) ([]T, int) {
	pages := max((len(items)+pageSize-1)/pageSize, 1)
	p = min(max(p, 1), pages)
	return record.Page(items, pageSize, (p-1)*pageSize), pages
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func optional(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}
