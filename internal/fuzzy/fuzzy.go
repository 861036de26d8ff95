// Package fuzzy ranks candidate names by edit distance for did-you-mean hints.
package fuzzy

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// MaxDistance is the furthest a candidate may be from the query, in edits.
const MaxDistance = 3

// Closest returns up to limit candidates within MaxDistance edits of query,
// nearest first. Comparison ignores case and surrounding space; ties keep
// candidate order.
func Closest(query string, candidates []string, limit int) []string {
	type cand struct {
		name string
		dist int
	}
	q := strings.ToLower(strings.TrimSpace(query))
	var cands []cand
	for _, c := range candidates {
		if d := levenshtein.ComputeDistance(q, strings.ToLower(c)); d <= MaxDistance {
			cands = append(cands, cand{name: c, dist: d})
		}
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].dist < cands[j].dist })
	out := make([]string, 0, max(min(limit, len(cands)), 0))
	for i := 0; i < len(cands) && i < limit; i++ {
		out = append(out, cands[i].name)
	}
	return out
}
