package roster

// GridSize is the fixed number of storage slots.
const GridSize = 30

// Grid is the shared storage area. A nil slot is empty.
//
// Invariant: a Grid always has exactly GridSize slots.
type Grid [GridSize]*Member

// Clone returns a deep copy of g.
func (g Grid) Clone() Grid {
	var out Grid
	for i, m := range g {
		if m != nil {
			c := m.Clone()
			out[i] = &c
		}
	}
	return out
}

// With returns a copy of g with slot i holding a copy of m, or emptied when m
// is nil. An index outside [0, GridSize) returns an unchanged copy.
func (g Grid) With(i int, m *Member) Grid {
	out := g.Clone()
	if i < 0 || i >= GridSize {
		return out
	}
	if m == nil {
		out[i] = nil
		return out
	}
	c := m.Clone()
	out[i] = &c
	return out
}

// Occupied returns the number of non-empty slots.
func (g Grid) Occupied() int {
	n := 0
	for _, m := range g {
		if m != nil {
			n++
		}
	}
	return n
}
