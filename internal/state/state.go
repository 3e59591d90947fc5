// Package state holds the most recent recognition result for display layers.
package state

import (
	"sync"
	"time"
)

// Snapshot is one published (source, translation) pair. Seq increases by one
// on every Update so pollers can tell a republished identical pair apart.
type Snapshot struct {
	SourceText     string    `json:"source_text"`
	TranslatedText string    `json:"translated_text"`
	UpdatedAt      time.Time `json:"updated_at"`
	Seq            uint64    `json:"seq"`
}

// Store is a single-slot, last-writer-wins cell.
type Store struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

func NewStore() *Store {
	return &Store{now: time.Now}
}

// Update replaces both fields atomically.
func (s *Store) Update(source, translated string) {
	now := s.now()
	s.mu.Lock()
	s.snap = Snapshot{
		SourceText:     source,
		TranslatedText: translated,
		UpdatedAt:      now,
		Seq:            s.snap.Seq + 1,
	}
	s.mu.Unlock()
}

// Snapshot returns a consistent copy of the current pair.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}
