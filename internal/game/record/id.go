package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Kind records where an identifier came from.
type Kind uint8

const (
	// KindNone is the zero identifier.
	KindNone Kind = iota
	// KindCatalog marks a canonical identifier issued by the external catalog.
	KindCatalog
	// KindAuthored marks a locally generated identifier for a user-authored record.
	KindAuthored
)

// ID is a record identifier: either a catalog number or a user-authored string.
//
// IDs are comparable and may be used as map keys. On the wire a catalog ID is
// a JSON number and a user-authored ID is a JSON string.
type ID struct {
	kind Kind
	num  uint32
	str  string
}

// CatalogID returns the identifier for catalog entry n.
func CatalogID(n uint32) ID {
	return ID{kind: KindCatalog, num: n}
}

// AuthoredID returns the identifier for a user-authored record.
//
// Precondition: s must be non-empty.
func AuthoredID(s string) ID {
	if s == "" {
		panic("record.AuthoredID: precondition violated: id must be non-empty")
	}
	return ID{kind: KindAuthored, str: s}
}

// NewAuthoredID generates a fresh user-authored identifier.
func NewAuthoredID() ID {
	return AuthoredID(uuid.NewString())
}

// Kind returns the provenance of id.
func (id ID) Kind() Kind { return id.kind }

// IsZero reports whether id is unset.
func (id ID) IsZero() bool { return id.kind == KindNone }

// Catalog returns the catalog number and true when id is a catalog identifier.
func (id ID) Catalog() (uint32, bool) {
	return id.num, id.kind == KindCatalog
}

// Authored returns the string and true when id is a user-authored identifier.
func (id ID) Authored() (string, bool) {
	return id.str, id.kind == KindAuthored
}

// String returns the cache key form: the decimal number or the raw string.
func (id ID) String() string {
	switch id.kind {
	case KindCatalog:
		return strconv.FormatUint(uint64(id.num), 10)
	case KindAuthored:
		return id.str
	}
	return ""
}

// ParseID interprets s as a catalog number when it is all digits, otherwise
// as a user-authored identifier.
func ParseID(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ID{}, fmt.Errorf("empty identifier")
	}
	if n, err := strconv.ParseUint(s, 10, 32); err == nil {
		return CatalogID(uint32(n)), nil
	}
	return AuthoredID(s), nil
}

// MarshalJSON encodes catalog IDs as numbers, authored IDs as strings, and
// the zero ID as null.
func (id ID) MarshalJSON() ([]byte, error) {
	switch id.kind {
	case KindCatalog:
		return []byte(strconv.FormatUint(uint64(id.num), 10)), nil
	case KindAuthored:
		return json.Marshal(id.str)
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts a JSON number, a JSON string, or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ID{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decoding authored id: %w", err)
		}
		if s == "" {
			return fmt.Errorf("decoding authored id: empty string")
		}
		*id = AuthoredID(s)
		return nil
	}
	n, err := strconv.ParseUint(string(data), 10, 32)
	if err != nil {
		return fmt.Errorf("decoding catalog id %s: %w", data, err)
	}
	*id = CatalogID(uint32(n))
	return nil
}

// Compare orders identifiers for combined listings: user-authored IDs sort
// before catalog IDs, catalog IDs ascend numerically, and authored IDs compare
// equal to each other so a stable sort keeps their insertion order.
func Compare(a, b ID) int {
	switch {
	case a.kind == KindAuthored && b.kind == KindAuthored:
		return 0
	case a.kind == KindAuthored:
		return -1
	case b.kind == KindAuthored:
		return 1
	}
	switch {
	case a.num < b.num:
		return -1
	case a.num > b.num:
		return 1
	}
	return 0
}
