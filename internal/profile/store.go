package profile

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dexcompanion/internal/observability"
	"github.com/cory-johannsen/dexcompanion/internal/storage"
)

const (
	minTrainerID = 100000
	maxTrainerID = 999999
)

// Option customizes a Store.
type Option func(*Store)

// WithSource replaces the random source used by GenerateTrainerID.
func WithSource(src Source) Option {
	return func(s *Store) { s.src = src }
}

// WithMetrics records mutations on m.
func WithMetrics(m *observability.StoreMetrics) Option {
	return func(s *Store) { s.metrics = m }
}

// Store persists the profile document. Safe for concurrent use.
type Store struct {
	doc     *storage.Persisted[State]
	src     Source
	metrics *observability.StoreMetrics
}

var shape = storage.Shape[State]{
	Default: DefaultState,
	Clone:   cloneState,
}

// Open loads the profile document name from docs, or starts from
// DefaultState when it does not exist.
//
// Precondition: docs and logger must be non-nil; name must be non-empty.
// Postcondition: Returns a ready Store or a non-nil error.
func Open(ctx context.Context, docs storage.Documents, name string, logger *zap.Logger, opts ...Option) (*Store, error) {
	s := &Store{src: NewCryptoSource()}
	for _, o := range opts {
		o(s)
	}
	doc, _, err := storage.OpenPersisted(ctx, docs, name, shape, logger, s.metrics)
	if err != nil {
		return nil, err
	}
	s.doc = doc
	return s, nil
}

// State returns the current profile.
func (s *Store) State() State {
	return s.doc.Get()
}

// Subscribe registers fn for change notifications.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	return s.doc.Subscribe(fn)
}

// SetTrainerName sets the display name. A blank name is ignored and the
// current state is returned without writing.
func (s *Store) SetTrainerName(ctx context.Context, name string) (State, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return s.State(), nil
	}
	return s.doc.Apply(ctx, "set_trainer_name", func(st *State) { st.Name = name })
}

// SetAvatar sets the avatar image reference.
func (s *Store) SetAvatar(ctx context.Context, ref string) (State, error) {
	return s.doc.Apply(ctx, "set_avatar", func(st *State) { st.Avatar = ref })
}

// SetPhysical sets height in centimetres and weight in kilograms.
//
// Precondition: both values must be non-negative.
func (s *Store) SetPhysical(ctx context.Context, heightCM, weightKG float64) (State, error) {
	if heightCM < 0 || weightKG < 0 {
		return State{}, fmt.Errorf("height and weight must not be negative, got %v cm %v kg", heightCM, weightKG)
	}
	return s.doc.Apply(ctx, "set_physical", func(st *State) {
		st.HeightCM = heightCM
		st.WeightKG = weightKG
	})
}

// GenerateTrainerID assigns a random six-digit id.
//
// Postcondition: the new id is a decimal string in [100000, 999999].
func (s *Store) GenerateTrainerID(ctx context.Context) (State, error) {
	id := strconv.Itoa(minTrainerID + s.src.Intn(maxTrainerID-minTrainerID+1))
	return s.doc.Apply(ctx, "generate_trainer_id", func(st *State) { st.ID = id })
}

// Reset replaces the profile with DefaultState and persists it.
func (s *Store) Reset(ctx context.Context) (State, error) {
	return s.doc.Apply(ctx, "reset", func(st *State) { *st = DefaultState() })
}

// Clear deletes the document and resets the profile without writing.
func (s *Store) Clear(ctx context.Context) error {
	return s.doc.Clear(ctx)
}
