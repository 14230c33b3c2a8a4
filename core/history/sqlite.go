package history

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists history in a SQLite database so lines survive
// across sessions. If the database cannot be opened the store degrades
// to in-memory behavior rather than failing the shell.
type SQLiteStore struct {
	mu       sync.Mutex
	db       *sql.DB
	path     string
	limit    int
	fallback *MemoryStore
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates or opens the database at path. A limit of 0
// means unlimited; otherwise only the most recent limit lines are kept.
func NewSQLiteStore(path string, limit int) *SQLiteStore {
	store := &SQLiteStore{path: path, limit: limit}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		store.fallback = NewMemoryStore(limit)
		return store
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		store.fallback = NewMemoryStore(limit)
		return store
	}
	store.db = db
	if err := store.init(); err != nil {
		db.Close()
		store.db = nil
		store.fallback = NewMemoryStore(limit)
	}
	return store
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT,
		line TEXT
	);`)
	return err
}

// Path returns the database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Persistent reports whether lines actually reach disk.
func (s *SQLiteStore) Persistent() bool {
	return s.fallback == nil
}

func (s *SQLiteStore) Append(line string) error {
	if s.fallback != nil {
		return s.fallback.Append(line)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`INSERT INTO history (timestamp, line) VALUES (?, ?)`,
		time.Now().Format(time.RFC3339), line); err != nil {
		return err
	}
	if s.limit > 0 {
		_, err := s.db.Exec(`DELETE FROM history WHERE id NOT IN
			(SELECT id FROM history ORDER BY id DESC LIMIT ?)`, s.limit)
		return err
	}
	return nil
}

func (s *SQLiteStore) Entries() ([]Entry, error) {
	if s.fallback != nil {
		return s.fallback.Entries()
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT timestamp, line FROM history ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var ts, line string
		if err := rows.Scan(&ts, &line); err != nil {
			return nil, err
		}
		entry := Entry{Index: len(out) + 1, Line: line}
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			entry.Time = t
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Clear() error {
	if s.fallback != nil {
		return s.fallback.Clear()
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`DELETE FROM history`)
	return err
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
