// Package state holds the canonical record set and the detail selection for
// epiwatch.
//
// # Core Types
//
// RecordStore:
//   - Canonical, ordered record set for the session
//   - Replaced only as a whole through Load
//   - Uses sync.RWMutex; Load copies and indexes before swapping
//
// Selection:
//   - Optional snapshot of one record chosen for detail viewing
//   - States: None (zero value) and Selected(id)
//   - Select validates the id against a Lookup (normally the RecordStore)
//
// # Defensive Copying
//
// Every read returns copies. Callers may modify what they receive without
// affecting the store:
//
//	all := store.All()
//	all[0].Count = 0 // store unchanged
//
// # Error Handling
//
// Select returns an error wrapping ErrRecordNotFound for unknown ids and
// leaves the selection untouched:
//
//	if err := sel.Select(store, id); errors.Is(err, state.ErrRecordNotFound) {
//		// keep showing the list
//	}
//
// # Concurrency
//
// RecordStore is safe for concurrent use. Selection is not; the view
// controller serializes it together with the query and filtered view under a
// single mutex.
package state
