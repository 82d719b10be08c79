package state

import (
	"sync"
	"time"

	"github.com/five82/epiwatch/internal/surveillance"
)

// RecordStore holds the canonical record set for the session. The zero value
// is an empty store ready for use.
type RecordStore struct {
	mu       sync.RWMutex
	records  []surveillance.Record
	index    map[string]int
	loaded   bool
	loadedAt time.Time
}

// Load replaces the entire contents of the store. The new set is copied and
// indexed before it becomes visible, so readers observe either the previous
// set or the new one in full.
func (s *RecordStore) Load(records []surveillance.Record) {
	dup := surveillance.Clone(records)
	index := make(map[string]int, len(dup))
	for i, r := range dup {
		index[r.ID] = i
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = dup
	s.index = index
	s.loaded = true
	s.loadedAt = time.Now()
}

// All returns a copy of every record in insertion order.
func (s *RecordStore) All() []surveillance.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return surveillance.Clone(s.records)
}

// Lookup returns a copy of the record with the given id.
func (s *RecordStore) Lookup(id string) (surveillance.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return surveillance.Record{}, false
	}
	return s.records[i], true
}

// Len returns the number of stored records.
func (s *RecordStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Loaded reports whether Load has been called at least once.
func (s *RecordStore) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// LoadedAt returns the time of the last Load, or the zero time.
func (s *RecordStore) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}
