package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"net/url"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// migrations[i] upgrades an index at user_version i to i+1. Databases created
// from schema.sql already carry every table, so a migration only adds what
// older indexes lack.
var migrations = []func(*sql.Tx) error{
	// 1: per-extension lookups for Stats.
	func(tx *sql.Tx) error {
		_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_names_extension ON names(algorithm, extension)`)
		return err
	},
}

// schemaVersion is the user_version of a fully migrated index.
var schemaVersion = len(migrations)

// Store is the SQLite manifest index.
type Store struct {
	db   *sql.DB
	path string
}

// dsn appends the connection settings understood by go-sqlite3. WAL keeps the
// index readable while an import is running.
func dsn(path string) string {
	q := url.Values{}
	q.Set("_journal_mode", "WAL")
	q.Set("_synchronous", "NORMAL")
	q.Set("_busy_timeout", "5000")
	return path + "?" + q.Encode()
}

// Open creates or opens the index at path and brings its schema up to date.
// Opening an existing index keeps its rows.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open index %s: %w", path, err)
	}
	// One writer at a time; imports run in a single transaction anyway.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open index %s: %w", path, err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare index %s: %w", path, err)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the database file the store was opened on.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database. Closing twice is harmless.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Version returns the schema version recorded in the index.
func (s *Store) Version() (int, error) {
	return userVersion(s.db)
}

func userVersion(q interface {
	QueryRow(string, ...any) *sql.Row
}) (int, error) {
	var v int
	if err := q.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

// migrate creates the names and imports tables and runs every migration
// above the recorded version, each in its own transaction.
func migrate(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	version, err := userVersion(db)
	if err != nil {
		return err
	}
	if version > schemaVersion {
		return fmt.Errorf("index schema version %d is newer than supported %d", version, schemaVersion)
	}
	for v := version; v < schemaVersion; v++ {
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("migrate to v%d: %w", v+1, err)
		}
		if err := migrations[v](tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migrate to v%d: %w", v+1, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", v+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migrate to v%d: %w", v+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migrate to v%d: %w", v+1, err)
		}
	}
	return nil
}
