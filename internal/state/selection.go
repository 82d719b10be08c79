package state

import (
	"errors"
	"fmt"

	"github.com/five82/epiwatch/internal/surveillance"
)

// ErrRecordNotFound is returned when a selection names an id that is not in
// the loaded store.
var ErrRecordNotFound = errors.New("record not found")

// Lookup resolves a record id against a loaded record set.
type Lookup interface {
	Lookup(id string) (surveillance.Record, bool)
}

// Selection tracks the single record chosen for detail viewing. The zero
// value is the None state. Selection is not safe for concurrent use; the
// owner serializes access.
type Selection struct {
	record   surveillance.Record
	selected bool
}

// Select moves to Selected(id). When id is unknown the selection is left
// unchanged and an error wrapping ErrRecordNotFound is returned.
func (s *Selection) Select(lookup Lookup, id string) error {
	if lookup == nil {
		return fmt.Errorf("select %q: %w", id, ErrRecordNotFound)
	}
	r, ok := lookup.Lookup(id)
	if !ok {
		return fmt.Errorf("select %q: %w", id, ErrRecordNotFound)
	}
	s.record = r
	s.selected = true
	return nil
}

// Clear moves to None.
func (s *Selection) Clear() {
	s.record = surveillance.Record{}
	s.selected = false
}

// Current returns a copy of the selected record.
func (s *Selection) Current() (surveillance.Record, bool) {
	if !s.selected {
		return surveillance.Record{}, false
	}
	return s.record, true
}

// ID returns the selected record id.
func (s *Selection) ID() (string, bool) {
	if !s.selected {
		return "", false
	}
	return s.record.ID, true
}
