// Package view coordinates loading, filtering, and selection for the record
// browser. A Controller owns the canonical record store, the current query,
// the filtered view derived from both, and the record chosen for detail.
package view
