// Package app is the composition root for epiwatch.
//
// Run loads the TOML config, opens the slog file logger, builds the
// data.gov.sg client and the view controller, reads the saved theme, and
// hands everything to the Bubble Tea UI. Configuration and logger failures
// are returned to main; everything after that is reported inside the UI.
package app
