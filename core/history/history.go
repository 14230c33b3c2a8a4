// Package history stores the lines a shell session has accepted.
package history

import (
	"io"
	"sync"
	"time"
)

// Entry is one remembered line.
type Entry struct {
	// Index is the 1-based position of the line in the history list.
	Index int
	// Line as the user typed it, whitespace trimmed.
	Line string
	// Time the line was recorded.
	Time time.Time
}

// Store records and replays command lines.
type Store interface {
	// Append records a line at the end of the history list.
	Append(line string) error
	// Entries lists the recorded lines in insertion order with their
	// 1-based indices.
	Entries() ([]Entry, error)
	// Clear deletes every recorded line.
	Clear() error
	io.Closer
}

// MemoryStore keeps history for the lifetime of the process.
type MemoryStore struct {
	mu    sync.Mutex
	limit int
	lines []Entry
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an in-memory store. A limit of 0 means
// unlimited; otherwise only the most recent limit lines are kept.
func NewMemoryStore(limit int) *MemoryStore {
	return &MemoryStore{limit: limit}
}

func (s *MemoryStore) Append(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = append(s.lines, Entry{Line: line, Time: time.Now()})
	if s.limit > 0 && len(s.lines) > s.limit {
		s.lines = s.lines[len(s.lines)-s.limit:]
	}
	return nil
}

func (s *MemoryStore) Entries() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, len(s.lines))
	copy(out, s.lines)
	for i := range out {
		out[i].Index = i + 1
	}
	return out, nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
