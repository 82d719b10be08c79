// Package surveillance defines the surveillance record model and the pure
// query filter applied to it.
//
// Filter always runs over the full record set. Filtering an already-filtered
// view with a second query is not the same as filtering the full set with the
// concatenated query.
package surveillance
