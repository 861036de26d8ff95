// Package memory provides an in-process document store for tests and
// ephemeral sessions.
package memory

import (
	"context"
	"sync"

	"github.com/cory-johannsen/dexcompanion/internal/storage"
)

var _ storage.Documents = (*Store)(nil)

// Store keeps documents in a map. All methods are safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	docs map[string][]byte
	// FailSaves, when non-nil, is returned from every Save.
	FailSaves error
}

// New returns an empty Store.
func New() *Store {
	return &Store{docs: make(map[string][]byte)}
}

// Load returns a copy of the stored bytes.
func (s *Store) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.docs[name]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// Save stores a copy of data.
func (s *Store) Save(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSaves != nil {
		return s.FailSaves
	}
	s.docs[name] = append([]byte(nil), data...)
	return nil
}

// Delete removes name.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, name)
	return nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }
