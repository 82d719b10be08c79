package logtail

import (
	"strings"
	"time"

	"github.com/go-logfmt/logfmt"
)

// Attr is one key=value pair from a log line.
type Attr struct {
	Key   string
	Value string
}

// Entry is a log line split into its slog text fields. Lines that are not in
// slog text format come back with only Raw and Message set.
type Entry struct {
	Time    time.Time
	Level   string
	Message string
	Attrs   []Attr
	Raw     string
}

// Structured reports whether the line parsed as a slog text record.
func (e Entry) Structured() bool {
	return e.Level != "" || !e.Time.IsZero()
}

// Parse splits a line written by slog.TextHandler. Lines without a msg key,
// or that the logfmt decoder rejects, come back unstructured.
func Parse(line string) Entry {
	plain := Entry{Raw: line, Message: line}

	entry := Entry{Raw: line}
	hasMsg := false
	dec := logfmt.NewDecoder(strings.NewReader(line))
	for dec.ScanRecord() {
		for dec.ScanKeyval() {
			key, value := string(dec.Key()), string(dec.Value())
			switch key {
			case "time":
				if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
					entry.Time = ts
					continue
				}
				entry.Attrs = append(entry.Attrs, Attr{Key: key, Value: value})
			case "level":
				entry.Level = strings.ToUpper(value)
			case "msg":
				entry.Message = value
				hasMsg = true
			default:
				entry.Attrs = append(entry.Attrs, Attr{Key: key, Value: value})
			}
		}
	}
	if dec.Err() != nil || !hasMsg {
		return plain
	}
	return entry
}
