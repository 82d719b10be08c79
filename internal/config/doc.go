// Package config loads epiwatch settings from a TOML file.
//
// The default location is ~/.config/epiwatch/config.toml. A missing file is
// not an error: every field has a default, and empty values fall back to it.
//
// Example config.toml:
//
//	api_url = "https://data.gov.sg/api/action/datastore_search"
//	resource_id = "d_0d1da54a73733d33e40f662f757af537"
//	limit = 100
//	timeout_seconds = 10
//	log_file = "~/.local/state/epiwatch/epiwatch.log"
//	log_level = "info"
//
// A limit of zero omits the parameter and leaves the page size to the API.
// Paths starting with ~ are expanded to the home directory.
package config
