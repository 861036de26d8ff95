// Package storage defines whole-document persistence shared by the
// collection and profile stores. Backends live in subpackages.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Load when no document exists under the name.
var ErrNotFound = errors.New("document not found")

// Documents reads and writes named documents in full. There is no partial
// or delta persistence: every Save replaces the whole document.
type Documents interface {
	// Load returns the stored bytes for name, or ErrNotFound.
	Load(ctx context.Context, name string) ([]byte, error)
	// Save replaces the document stored under name.
	Save(ctx context.Context, name string, data []byte) error
	// Delete removes the document; deleting a missing document is not an error.
	Delete(ctx context.Context, name string) error
	// Close releases backend resources.
	Close() error
}

// Envelope is the persisted wrapper around a store's state.
type Envelope[T any] struct {
	State   T   `json:"state"`
	Version int `json:"version"`
}

// LoadJSON decodes the document name into an Envelope.
//
// Postcondition: Returns (state, true, nil) when the document exists,
// (zero, false, nil) when it does not, or a non-nil error when it cannot be
// read or decoded.
func LoadJSON[T any](ctx context.Context, docs Documents, name string) (T, bool, error) {
	var zero T
	data, err := docs.Load(ctx, name)
	if errors.Is(err, ErrNotFound) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("loading document %q: %w", name, err)
	}
	var env Envelope[T]
	if err := json.Unmarshal(data, &env); err != nil {
		return zero, false, fmt.Errorf("decoding document %q: %w", name, err)
	}
	return env.State, true, nil
}

// SaveJSON encodes state in an Envelope and writes it as document name.
//
// Postcondition: Returns the number of bytes written, or a non-nil error.
func SaveJSON[T any](ctx context.Context, docs Documents, name string, state T) (int, error) {
	data, err := json.Marshal(Envelope[T]{State: state})
	if err != nil {
		return 0, fmt.Errorf("encoding document %q: %w", name, err)
	}
	if err := docs.Save(ctx, name, data); err != nil {
		return 0, fmt.Errorf("saving document %q: %w", name, err)
	}
	return len(data), nil
}
