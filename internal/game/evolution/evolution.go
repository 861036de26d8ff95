// Package evolution models a species' evolution line as a tree.
package evolution

import (
	"fmt"
	"strings"
)

// Stage is one species in an evolution line and the stages it evolves into.
//
// Invariant: the tree is acyclic.
type Stage struct {
	SpeciesID string   `json:"speciesId"`
	Name      string   `json:"name"`
	ImageURL  string   `json:"imageUrl"`
	MinLevel  *int     `json:"minLevel,omitempty"`
	Trigger   string   `json:"trigger,omitempty"`
	Item      string   `json:"item,omitempty"`
	EvolvesTo []*Stage `json:"evolvesTo"`
}

// Walk visits s and its descendants depth-first, pre-order. depth is 0 for
// the root. Returning false from fn stops the walk.
func (s *Stage) Walk(fn func(st *Stage, depth int) bool) {
	s.walk(fn, 0)
}

func (s *Stage) walk(fn func(*Stage, int) bool, depth int) bool {
	if s == nil {
		return true
	}
	if !fn(s, depth) {
		return false
	}
	for _, c := range s.EvolvesTo {
		if !c.walk(fn, depth+1) {
			return false
		}
	}
	return true
}

// Find returns the stage named name, ignoring case, or nil.
func (s *Stage) Find(name string) *Stage {
	var found *Stage
	s.Walk(func(st *Stage, _ int) bool {
		if strings.EqualFold(st.Name, name) {
			found = st
			return false
		}
		return true
	})
	return found
}

// Depth returns the number of stages on the longest path from s to a leaf.
func (s *Stage) Depth() int {
	if s == nil {
		return 0
	}
	d := 0
	for _, c := range s.EvolvesTo {
		d = max(d, c.Depth())
	}
	return d + 1
}

// Count returns the number of stages in the tree.
func (s *Stage) Count() int {
	n := 0
	s.Walk(func(*Stage, int) bool { n++; return true })
	return n
}

// Requirement describes what triggers evolution into s, e.g. "Lv. 16" or
// "use-item (water-stone)". The root stage has no requirement.
func (s *Stage) Requirement() string {
	var parts []string
	if s.MinLevel != nil {
		parts = append(parts, fmt.Sprintf("Lv. %d", *s.MinLevel))
	} else if s.Trigger != "" {
		parts = append(parts, s.Trigger)
	}
	if s.Item != "" {
		parts = append(parts, "("+s.Item+")")
	}
	return strings.Join(parts, " ")
}

// Render returns an indented outline of the tree, one stage per line.
func (s *Stage) Render() string {
	var b strings.Builder
	s.Walk(func(st *Stage, depth int) bool {
		b.WriteString(strings.Repeat("  ", depth))
		if depth > 0 {
			b.WriteString("-> ")
		}
		b.WriteString(st.Name)
		if req := st.Requirement(); req != "" {
			b.WriteString(" [" + req + "]")
		}
		b.WriteByte('\n')
		return true
	})
	return b.String()
}
