package store

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// pragmas are applied on every Open. WAL lets readers (validate, export)
// run while a build appends.
var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA busy_timeout = 5000",
}

// migration upgrades an archive from version-1 to version.
type migration struct {
	version int
	name    string
	stmt    string
}

// migrations lists archive upgrades in order. schema.sql always describes
// version 0; an archive's version lives in PRAGMA user_version.
var migrations = []migration{
	{
		version: 1,
		name:    "per-model history index",
		stmt:    `CREATE INDEX IF NOT EXISTS idx_records_model_seq ON records(model_id, seq)`,
	},
}

// archiveVersion is the version a freshly opened archive ends up at.
func archiveVersion() int {
	return migrations[len(migrations)-1].version
}

// Store is an append-only archive of encoded IR records.
type Store struct {
	db *sql.DB
}

// Open opens the archive at path, creating it if needed, and upgrades it to
// the current archive version. Opening an up-to-date archive changes nothing.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to archive %s: %w", path, err)
	}

	// One writer; archive appends are serialized.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", p, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create archive tables: %w", err)
	}
	if err := upgrade(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the archive.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// upgrade applies every migration newer than the archive's user_version,
// each in its own transaction together with the version bump.
func upgrade(db *sql.DB) error {
	var current int
	if err := db.QueryRow("PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("read archive version: %w", err)
	}
	if current > archiveVersion() {
		return fmt.Errorf("archive version %d is newer than supported version %d", current, archiveVersion())
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("upgrade to v%d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.Exec(m.stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("upgrade to v%d (%s): %w", m.version, m.name, err)
		}
		// PRAGMA does not take bound parameters.
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
			tx.Rollback()
			return fmt.Errorf("upgrade to v%d (%s): set version: %w", m.version, m.name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("upgrade to v%d (%s): %w", m.version, m.name, err)
		}
	}
	return nil
}

// pragma returns the current value of a pragma as text.
func (s *Store) pragma(name string) (string, error) {
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return "", fmt.Errorf("failed to query %s: %w", name, err)
	}
	return value, nil
}
