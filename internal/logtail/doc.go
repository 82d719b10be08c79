// Package logtail reads the tail of the epiwatch log file and splits slog
// text lines into their fields for the activity view.
//
// Read keeps a ring buffer of the last maxLines lines, so memory stays
// bounded regardless of file size. A missing file is not an error.
//
// Parse understands the key=value format written by slog.TextHandler:
//
//	time=2024-03-01T08:30:00.000+08:00 level=INFO msg="records fetched" status=200 records=100
//
// Lines in any other format are returned verbatim as the entry message.
package logtail
