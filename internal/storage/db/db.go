// Package db is the sqlite mod index: which mods are installed for a game profile,
// whether they are enabled, and which mod owns each deployed file.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory index
const MemoryPath = ":memory:"

// DB is an open mod index
type DB struct {
	*sql.DB
	path string
}

// New opens the mod index at path, creating the file and its directory when
// missing, and brings the schema up to date
func New(path string) (*DB, error) {
	inMemory := path == MemoryPath
	if !inMemory {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating database dir: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Pragmas and in-memory databases are per connection; the index is only
	// used by one command at a time.
	sqlDB.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	if !inMemory {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	for _, pragma := range pragmas {
		if _, err := sqlDB.Exec(pragma); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	index := &DB{DB: sqlDB, path: path}
	if err := index.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return index, nil
}

// Path returns where the index lives, or MemoryPath
func (d *DB) Path() string {
	return d.path
}
