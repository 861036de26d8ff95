// Package badger stores documents in an embedded BadgerDB.
package badger

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dexcompanion/internal/storage"
)

var _ storage.Documents = (*Store)(nil)

const keyPrefix = "doc/"

// Config holds BadgerDB settings.
type Config struct {
	// Path is the database directory. Ignored when InMemory is true.
	Path string
	// InMemory keeps everything in RAM; used by tests.
	InMemory bool
	// SyncWrites fsyncs every commit.
	SyncWrites bool
	// Logger receives BadgerDB's internal logs. Nil disables them.
	Logger *zap.Logger
}

// badgerLogger adapts zap to badger.Logger.
type badgerLogger struct {
	s *zap.SugaredLogger
}

func (l badgerLogger) Errorf(f string, a ...interface{})   { l.s.Errorf(f, a...) }
func (l badgerLogger) Warningf(f string, a ...interface{}) { l.s.Warnf(f, a...) }
func (l badgerLogger) Infof(f string, a ...interface{})    { l.s.Debugf(f, a...) }
func (l badgerLogger) Debugf(f string, a ...interface{})   { l.s.Debugf(f, a...) }

// Store is a Documents backend over one BadgerDB instance.
type Store struct {
	db *badger.DB
}

// Open opens or creates the database described by cfg.
//
// Precondition: cfg.Path must be non-empty unless cfg.InMemory is set.
// Postcondition: Returns an open Store or a non-nil error.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(badgerLogger{s: cfg.Logger.Sugar()})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &Store{db: db}, nil
}

// Load reads the document value.
func (s *Store) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + name))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading document %q: %w", name, err)
	}
	return out, nil
}

// Save replaces the document value in one transaction.
func (s *Store) Save(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+name), data)
	})
	if err != nil {
		return fmt.Errorf("writing document %q: %w", name, err)
	}
	return nil
}

// Delete removes the document.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyPrefix + name))
	})
	if err != nil {
		return fmt.Errorf("deleting document %q: %w", name, err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
