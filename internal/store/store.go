// Package store persists books, notes, and settings in a Badger database.
package store

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/readleafapp/readleaf-server/internal/domain"
	apperrors "github.com/readleafapp/readleaf-server/internal/errors"
)

// Key prefixes for the logical collections.
const (
	bookPrefix = "book:"
	notePrefix = "note:"
	blobPrefix = "blob:"
	metaPrefix = "meta:"

	settingsKey = "settings:user"
)

// Store wraps a Badger database instance.
//
// Badger keeps values in a value log, so tens-of-MB EPUB blobs are fine
// as single entries; there is no small per-entry quota to work around.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	// Generic entities
	Books *Entity[domain.Book]
	Notes *Entity[domain.Note]
}

// New creates a new Store instance with the given database path.
// An open failure (locked directory, exhausted disk, read-only
// filesystem) is returned as a STORE_UNAVAILABLE domain error; callers
// degrade to empty/default state instead of crashing.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, apperrors.StoreUnavailable("failed to open database").WithCause(err)
	}

	store := &Store{
		db:     db,
		logger: logger,
	}

	store.Books = NewEntity[domain.Book](store, bookPrefix)
	store.Notes = NewEntity[domain.Note](store, notePrefix).
		WithIndex("book", func(n *domain.Note) string { return n.BookID })

	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return store, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// storeErr converts a raw badger error into a STORE_UNAVAILABLE domain
// error. Domain errors pass through unchanged so NOT_FOUND and friends
// keep their codes. No raw storage error leaves this package.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	var domainErr *apperrors.Error
	if errors.As(err, &domainErr) {
		return err
	}
	return apperrors.ErrStoreUnavailable.WithCause(err)
}

// Helper methods for database operations.

// set stores a raw value by key.
func (s *Store) set(key, value []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
	if err != nil {
		return storeErr(fmt.Errorf("set %s: %w", key, err))
	}
	return nil
}

// get retrieves a raw value by key. Returns apperrors.ErrNotFound for
// missing keys.
func (s *Store) get(key []byte) ([]byte, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return apperrors.ErrNotFound
		}
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return value, nil
}

// delete removes a key from the database. Idempotent.
func (s *Store) delete(key []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
	if err != nil {
		return storeErr(fmt.Errorf("delete %s: %w", key, err))
	}
	return nil
}
