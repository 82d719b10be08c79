package surveillance

import "strings"

// Filter returns the records whose age group or clinical status contains
// query, compared case-insensitively. The empty query matches every record.
// The query is used as-is (whitespace included). Input order is preserved
// and the returned slice never aliases records.
func Filter(records []Record, query string) []Record {
	out := make([]Record, 0, len(records))
	needle := strings.ToLower(query)
	for _, r := range records {
		if matchesLower(r, needle) {
			out = append(out, r)
		}
	}
	return out
}

// Matches reports whether r satisfies the Filter rule for query.
func Matches(r Record, query string) bool {
	return matchesLower(r, strings.ToLower(query))
}

func matchesLower(r Record, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.AgeGroup), needle) ||
		strings.Contains(strings.ToLower(r.ClinicalStatus), needle)
}
