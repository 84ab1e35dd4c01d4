package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Veraticus/ledgerbook/internal/common"
	"github.com/Veraticus/ledgerbook/internal/normalize"
	"github.com/Veraticus/ledgerbook/internal/service"

	sqlite3 "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStorage is the ledger store. It owns a single SQLite connection and
// serializes every public operation behind one mutex, so each operation sees
// and leaves a consistent ledger.
type SQLiteStorage struct {
	db     *sql.DB
	clock  func() time.Time
	dbPath string
	mu     sync.Mutex
}

var _ service.Ledger = (*SQLiteStorage)(nil)

// Option configures a SQLiteStorage.
type Option func(*SQLiteStorage)

// WithClock sets the wall-clock source used to timestamp new rows.
func WithClock(clock func() time.Time) Option {
	return func(s *SQLiteStorage) {
		s.clock = clock
	}
}

// NewSQLiteStorage creates a new SQLite storage instance.
// Call Migrate before use to create tables and seed defaults.
func NewSQLiteStorage(dbPath string, opts ...Option) (*SQLiteStorage, error) {
	// Validate input
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
	if dbPath == ":memory:" {
		dsn = "file::memory:?_foreign_keys=on"
	} else {
		// Ensure directory exists
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Open database
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, common.NewStorageError("open database", err)
	}

	// One physical connection; an in-memory database would otherwise be
	// recreated per connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Test connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, common.NewStorageError("ping database", err)
	}

	s := &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Path returns the database path the storage was opened with.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// now returns the current time as persisted, truncated to seconds.
func (s *SQLiteStorage) now() string {
	return normalize.FormatTimestamp(s.clock())
}

// withTx runs fn inside a database transaction, committing on success and
// rolling back on any error. The caller must hold s.mu.
func (s *SQLiteStorage) withTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return common.NewStorageError("begin transaction", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			common.LogError(err, "Failed to roll back transaction", common.Fields{"op": op})
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return common.NewStorageError(op, err)
	}
	return nil
}

// queryable is satisfied by both *sql.DB and *sql.Tx.
type queryable interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

// writeError classifies a failed write: uniqueness violations become
// ErrDuplicateEntry, everything else a storage failure.
func writeError(op, what string, err error) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", common.ErrDuplicateEntry, what)
	}
	return common.NewStorageError(op, err)
}

// nullableID stores a zero id as NULL.
func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

// parseStoredTime parses a persisted timestamp column.
func parseStoredTime(value string) (time.Time, error) {
	t, err := normalize.ParseTimestamp(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}
	return t, nil
}
