// Package formula computes effective stat values from base stats, individual
// variation, effort investment, level, and a modifier profile.
package formula

import (
	"github.com/cory-johannsen/dexcompanion/internal/game/nature"
	"github.com/cory-johannsen/dexcompanion/internal/game/stat"
)

// Compute returns the effective value of s using the built-in nature table.
//
// Inputs are not range-checked; out-of-range values are applied arithmetically.
// An unknown profile name applies no modification.
//
// Postcondition: the result depends only on the arguments.
func Compute(s stat.Name, base, iv, ev, level int, profile string) int {
	return ComputeWith(nature.Default(), s, base, iv, ev, level, profile)
}

// ComputeWith is Compute against an explicit nature table.
//
// Precondition: tbl must be non-nil.
func ComputeWith(tbl *nature.Table, s stat.Name, base, iv, ev, level int, profile string) int {
	core := (2*base + iv + ev/4) * level / 100
	if s == stat.HP {
		// Fixed-HP species.
		if base == 1 {
			return 1
		}
		return core + level + 10
	}

	v := core + 5
	switch tbl.EffectOn(profile, s) {
	case nature.Boost:
		v = v * 11 / 10
	case nature.Penalty:
		v = v * 9 / 10
	}
	return v
}

// Block computes all six effective stats.
func Block(base, iv, ev stat.Block, level int, profile string) stat.Block {
	var out stat.Block
	for _, n := range stat.Names {
		out = out.With(n, Compute(n, base.Get(n), iv.Get(n), ev.Get(n), level, profile))
	}
	return out
}
