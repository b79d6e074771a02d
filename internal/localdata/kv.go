package localdata

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Well-known keys for persisted local values. Values are plain JSON
// strings; there is no schema versioning beyond the table migrations.
const (
	KeyNotifications = "admin_notifications"
	KeyAuditLog      = "admin_audit_log"
	KeyTheme         = "display_theme"
)

// KV is the durable local storage abstraction: JSON-serialized values
// under fixed string keys, surviving process restarts.
type KV interface {
	// Get returns the stored value for key. ok is false when the key
	// has never been set.
	Get(key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
}

// SQLiteKV implements KV on a local SQLite database.
type SQLiteKV struct {
	db *sqlx.DB
}

// Open opens (or creates) a SQLite database at dbPath, enables WAL mode,
// and runs any pending schema migrations. Use ":memory:" for tests.
func Open(dbPath string) (*SQLiteKV, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteKV{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteKV) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteKV) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// Get returns the stored value for key.
func (s *SQLiteKV) Get(key string) (string, bool, error) {
	var value string
	err := s.db.Get(&value, "SELECT value FROM local_values WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("getting local value %q: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (s *SQLiteKV) Set(key, value string) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO local_values (key, value, updated_at)
		VALUES (?, ?, ?)`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("setting local value %q: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *SQLiteKV) Delete(key string) error {
	_, err := s.db.Exec("DELETE FROM local_values WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("deleting local value %q: %w", key, err)
	}
	return nil
}
