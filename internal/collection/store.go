package collection

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dexcompanion/internal/game/record"
	"github.com/cory-johannsen/dexcompanion/internal/game/roster"
	"github.com/cory-johannsen/dexcompanion/internal/observability"
	"github.com/cory-johannsen/dexcompanion/internal/storage"
)

// Observer receives a snapshot of the committed state after every mutation.
// Snapshots are copies; observers may keep them.
type Observer func(State)

// Option customizes a Store.
type Option func(*options)

type options struct {
	metrics *observability.StoreMetrics
}

// WithMetrics records mutations on m.
func WithMetrics(m *observability.StoreMetrics) Option {
	return func(o *options) { o.metrics = m }
}

// Store is the single source of truth for the user's collections. Every
// mutation writes the whole document before it becomes visible, then
// notifies observers. Mutating methods return the new state.
//
// Safe for concurrent use.
type Store struct {
	doc *storage.Persisted[State]
}

var shape = storage.Shape[State]{
	Default:   DefaultState,
	Clone:     State.Clone,
	Normalize: State.normalize,
}

// Open loads the collection document name from docs, or starts from
// DefaultState when it does not exist.
//
// Precondition: docs and logger must be non-nil; name must be non-empty.
// Postcondition: Returns a ready Store or a non-nil error if the document
// exists but cannot be read.
func Open(ctx context.Context, docs storage.Documents, name string, logger *zap.Logger, opts ...Option) (*Store, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	doc, found, err := storage.OpenPersisted(ctx, docs, name, shape, logger, o.metrics)
	if err != nil {
		return nil, err
	}
	logger.Debug("collection loaded", zap.String("document", name), zap.Bool("found", found))
	return &Store{doc: doc}, nil
}

// Subscribe registers fn for change notifications and returns a function
// that unregisters it. Observers are called in subscription order and see
// states in the order they were committed.
func (s *Store) Subscribe(fn Observer) (unsubscribe func()) {
	return s.doc.Subscribe(fn)
}

// State returns a copy of the current state.
func (s *Store) State() State {
	return s.doc.Get()
}

func (s *Store) apply(ctx context.Context, op string, mutate func(*State)) (State, error) {
	return s.doc.Apply(ctx, op, mutate)
}

// ToggleFavorite removes id from favorites if present, otherwise appends it.
func (s *Store) ToggleFavorite(ctx context.Context, id record.ID) (State, error) {
	return s.apply(ctx, "toggle_favorite", func(st *State) {
		if i := slices.Index(st.Favorites, id); i >= 0 {
			st.Favorites = slices.Delete(st.Favorites, i, i+1)
			return
		}
		st.Favorites = append(st.Favorites, id)
	})
}

// AddUserRecord appends r to the user-authored list. Uniqueness of r.ID is
// the caller's responsibility.
func (s *Store) AddUserRecord(ctx context.Context, r record.Record) (State, error) {
	r = r.Clone()
	return s.apply(ctx, "add_user_record", func(st *State) {
		st.UserRecords = append(st.UserRecords, r)
	})
}

// DeleteUserRecord removes the first user-authored record with id. Deleting
// an unknown id still persists and notifies.
func (s *Store) DeleteUserRecord(ctx context.Context, id record.ID) (State, error) {
	return s.apply(ctx, "delete_user_record", func(st *State) {
		if i := slices.IndexFunc(st.UserRecords, func(r record.Record) bool { return r.ID == id }); i >= 0 {
			st.UserRecords = slices.Delete(st.UserRecords, i, i+1)
		}
	})
}

// CreateRoster upserts r by id: a new id appends, a known id replaces in place.
func (s *Store) CreateRoster(ctx context.Context, r roster.Roster) (State, error) {
	return s.upsertRoster(ctx, "create_roster", r)
}

// UpdateRoster is CreateRoster under another name; both upsert by id.
func (s *Store) UpdateRoster(ctx context.Context, r roster.Roster) (State, error) {
	return s.upsertRoster(ctx, "update_roster", r)
}

func (s *Store) upsertRoster(ctx context.Context, op string, r roster.Roster) (State, error) {
	r = r.Clone()
	return s.apply(ctx, op, func(st *State) {
		if i := slices.IndexFunc(st.Rosters, func(x roster.Roster) bool { return x.ID == r.ID }); i >= 0 {
			st.Rosters[i] = r
			return
		}
		st.Rosters = append(st.Rosters, r)
	})
}

// DeleteRoster removes the roster with id, if any.
func (s *Store) DeleteRoster(ctx context.Context, id string) (State, error) {
	return s.apply(ctx, "delete_roster", func(st *State) {
		st.Rosters = slices.DeleteFunc(st.Rosters, func(r roster.Roster) bool { return r.ID == id })
	})
}

// SetStorageSlot places a copy of m in grid slot i, or empties it when m is
// nil. An index outside [0, roster.GridSize) leaves the grid unchanged.
func (s *Store) SetStorageSlot(ctx context.Context, i int, m *roster.Member) (State, error) {
	var c *roster.Member
	if m != nil {
		mc := m.Clone()
		mc.Slot = i
		c = &mc
	}
	return s.apply(ctx, "set_storage_slot", func(st *State) {
		st.Storage = st.Storage.With(i, c)
	})
}

// CacheRecord inserts or overwrites the cache entry for r.ID.
//
// Precondition: r.ID must not be zero.
func (s *Store) CacheRecord(ctx context.Context, r record.Record) (State, error) {
	if r.ID.IsZero() {
		return State{}, fmt.Errorf("cache_record: record %q has no id", r.Name)
	}
	r = r.Clone()
	return s.apply(ctx, "cache_record", func(st *State) {
		st.Cache[r.ID.String()] = r
	})
}

// CacheRecords caches every record in one state transition with a single
// write and notification. Later entries win over earlier ones with the same id.
//
// Precondition: no record may have a zero ID.
func (s *Store) CacheRecords(ctx context.Context, records []record.Record) (State, error) {
	batch := make([]record.Record, len(records))
	for i, r := range records {
		if r.ID.IsZero() {
			return State{}, fmt.Errorf("cache_records: record %q has no id", r.Name)
		}
		batch[i] = r.Clone()
	}
	return s.apply(ctx, "cache_records", func(st *State) {
		for _, r := range batch {
			st.Cache[r.ID.String()] = r
		}
	})
}

// Reset replaces the state with DefaultState and persists it.
func (s *Store) Reset(ctx context.Context) (State, error) {
	return s.apply(ctx, "reset", func(st *State) {
		*st = DefaultState()
	})
}

// Clear deletes the persisted document and resets the in-memory state
// without writing a new document.
func (s *Store) Clear(ctx context.Context) error {
	return s.doc.Clear(ctx)
}
