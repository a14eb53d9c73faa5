// Package history persists the interactive command history in a sqlite
// database, so it survives restarts and stays queryable from inside the
// shell.
package history

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS history (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	command TEXT NOT NULL,
	ran_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// Entry is one recorded command line.
type Entry struct {
	ID      int64
	Command string
}

// Store wraps the history database. It is safe for concurrent use through
// database/sql's own pooling.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("preparing history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Add records a command line. Blank lines are not recorded.
func (s *Store) Add(command string) error {
	if command == "" {
		return nil
	}
	_, err := s.db.Exec(`INSERT INTO history (command) VALUES (?)`, command)
	if err != nil {
		return fmt.Errorf("recording history entry: %w", err)
	}
	return nil
}

// List returns the most recent entries, oldest first, up to limit.
func (s *Store) List(limit int) ([]Entry, error) {
	rows, err := s.db.Query(
		`SELECT id, command FROM (
			SELECT id, command FROM history ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC`, limit)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Command); err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}
