package roster

import (
	"fmt"

	"github.com/google/uuid"
)

// Size is the number of member slots in a roster.
const Size = 6

// Roster is a named group of exactly six member slots.
type Roster struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Members [Size]Member `json:"members"`
}

// NewRoster returns a roster with a fresh identifier and six empty slots.
//
// Postcondition: Members[i].Slot == i and Members[i].IsEmpty() for every i.
func NewRoster(name string) Roster {
	r := Roster{ID: uuid.NewString(), Name: name}
	for i := range r.Members {
		r.Members[i] = Empty(i)
	}
	return r
}

// Clone returns a deep copy of r.
func (r Roster) Clone() Roster {
	for i := range r.Members {
		r.Members[i] = r.Members[i].Clone()
	}
	return r
}

// WithMember returns a copy of r with a copy of m placed in slot i. The
// member's Slot field is set to i.
//
// Postcondition: Returns an error if i is outside [0, Size).
func (r Roster) WithMember(i int, m Member) (Roster, error) {
	if i < 0 || i >= Size {
		return r, fmt.Errorf("roster slot %d out of range [0,%d)", i, Size)
	}
	out := r.Clone()
	m = m.Clone()
	m.Slot = i
	out.Members[i] = m
	return out, nil
}

// WithoutMember returns a copy of r with slot i reset to the empty template.
func (r Roster) WithoutMember(i int) (Roster, error) {
	return r.WithMember(i, Empty(i))
}

// Filled returns the number of occupied slots.
func (r Roster) Filled() int {
	n := 0
	for _, m := range r.Members {
		if !m.IsEmpty() {
			n++
		}
	}
	return n
}
