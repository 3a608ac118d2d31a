package state

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure-Go sqlite driver
)

var errNotOpened = errors.New("database not opened")

// ErrRunNotFound is returned when a run ID or environment has no recorded run.
var ErrRunNotFound = errors.New("run not found")

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite state store instance.
// If logger is nil, a discard logger is used.
func NewSQLiteStore(logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteStore{logger: logger}
}

// Open opens a connection to the SQLite database, creating its parent
// directory if needed. Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	memory := path == "" || path == ":memory:"
	if memory {
		path = ":memory:"
	} else if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	dsn := path + "?_pragma=foreign_keys(1)&_time_format=sqlite"
	if !memory {
		dsn += "&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	s.logger.Debug("opening state store", slog.String("path", path))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if memory {
		// each connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

// InitSchema brings the schema up to date.
func (s *SQLiteStore) InitSchema() error {
	if err := s.Migrate(); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

func generateID() string {
	return uuid.New().String()
}
