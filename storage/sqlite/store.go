package sqlite

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/poiesic/helpdesk/storage"
)

// Store wraps an embedded SQLite database and hands out the contract
// implementations for both entity types. Conversations/messages and
// orders/items live in one database file, mirroring the four-table
// relational schema.
type Store struct {
	db        *gorm.DB
	logger    *slog.Logger
	closeOnce sync.Once
	closeErr  error
}

// Open opens (or creates) a SQLite database at path and migrates the
// schema. Foreign keys are enforced so that message and item rows cannot
// outlive their parents.
func Open(path string) (*Store, error) {
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	return open(dsn, false)
}

// OpenMemory opens an in-memory database for testing.
func OpenMemory() (*Store, error) {
	return open("file::memory:?_pragma=foreign_keys(1)", true)
}

func open(dsn string, inMemory bool) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrBackendUnavailable, err)
	}

	if inMemory {
		// An in-memory database exists per connection; pin the pool to one.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(
		&conversationRow{},
		&messageRow{},
		&orderRow{},
		&orderItemRow{},
	); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &Store{
		db:     db,
		logger: slog.Default().With("component", "sqlite-store"),
	}, nil
}

// ConversationStore returns the relational conversation contract
// implementation backed by this database.
func (s *Store) ConversationStore() storage.ConversationStore {
	return &ConversationStore{store: s}
}

// OrderStore returns the relational order contract implementation backed
// by this database.
func (s *Store) OrderStore() storage.OrderStore {
	return &OrderStore{store: s}
}

// Close closes the underlying database. Safe to call more than once;
// the stores handed out by this Store share the connection and close it
// through here.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		sqlDB, err := s.db.DB()
		if err != nil {
			s.closeErr = err
			return
		}
		s.closeErr = sqlDB.Close()
	})
	return s.closeErr
}

// isDuplicate reports whether err is a primary/unique key collision.
// gorm's error translation covers most drivers; the string check catches
// SQLite's raw constraint message when translation is unavailable.
func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}
