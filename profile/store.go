// Package profile persists selector call-count estimates between
// compiles in a SQLite database.
package profile

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/chazu/dtab/hierarchy"
)

// Store is a SQLite-backed call-count store. Drivers record observed
// polymorphic call-site counts after a run and feed them back into the
// next build's placement ordering.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (creating if needed) a profile database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("profile: opening database: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS selector_calls (
		selector_id INTEGER PRIMARY KEY,
		call_count  INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("profile: creating schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Put records the call-count estimate for a selector, replacing any
// previous value.
func (s *Store) Put(id hierarchy.SelectorID, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO selector_calls (selector_id, call_count) VALUES (?, ?)
		 ON CONFLICT(selector_id) DO UPDATE SET call_count = excluded.call_count`,
		int(id), count)
	if err != nil {
		return fmt.Errorf("profile: put selector %d: %w", id, err)
	}
	return nil
}

// CallCount returns the stored estimate for a selector, or 0.
func (s *Store) CallCount(id hierarchy.SelectorID) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	err := s.db.QueryRow(
		`SELECT call_count FROM selector_calls WHERE selector_id = ?`, int(id)).Scan(&count)
	if err != nil {
		return 0
	}
	return count
}

// All returns every stored estimate.
func (s *Store) All() (map[hierarchy.SelectorID]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT selector_id, call_count FROM selector_calls`)
	if err != nil {
		return nil, fmt.Errorf("profile: scanning estimates: %w", err)
	}
	defer rows.Close()

	result := make(map[hierarchy.SelectorID]int)
	for rows.Next() {
		var id, count int
		if err := rows.Scan(&id, &count); err != nil {
			return nil, fmt.Errorf("profile: scanning estimates: %w", err)
		}
		result[hierarchy.SelectorID(id)] = count
	}
	return result, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Overlay is a MetadataSource that takes member attributes from Base and
// call counts from the store, falling back to Base for selectors the
// store has never seen or records with a count of zero.
type Overlay struct {
	Base  hierarchy.MetadataSource
	Store *Store
}

// MemberMetadata implements hierarchy.MetadataSource.
func (o *Overlay) MemberMetadata(m *hierarchy.Member) (hierarchy.MemberMetadata, bool) {
	return o.Base.MemberMetadata(m)
}

// CallCount implements hierarchy.MetadataSource.
func (o *Overlay) CallCount(id hierarchy.SelectorID) int {
	if count := o.Store.CallCount(id); count > 0 {
		return count
	}
	return o.Base.CallCount(id)
}
