// Package ui is the Bubble Tea front end for epiwatch.
//
// Model drives a Controller (normally *view.Controller) and renders three
// screens:
//
//   - List: the filtered records, one row per record with its case count.
//     "/" opens a live search box; every keystroke re-filters.
//   - Detail: the selected record's epidemic year, week and case count.
//   - Activity: the tail of the epiwatch log file, parsed by logtail.
//
// The initial load runs as a command so the list stays interactive while the
// request is in flight. A tick refreshes the snapshot and, on the activity
// screen, re-reads the log tail.
//
// Themes (Nightfox, Kanagawa, Slate) are cycled with T and saved through the
// prefs package.
package ui
