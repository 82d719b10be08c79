package surveillance

import "fmt"

// Record is one weekly surveillance observation for an age group and
// clinical status.
type Record struct {
	ID             string
	AgeGroup       string
	ClinicalStatus string
	Count          int
	EpiYear        int
	EpiWeek        int
}

// Title returns the heading shown for a record in list and detail views.
func (r Record) Title() string {
	return fmt.Sprintf("%s (%s)", r.ClinicalStatus, r.AgeGroup)
}

// EpiLabel formats the epidemiological year and week, e.g. "2023-W10".
func (r Record) EpiLabel() string {
	return fmt.Sprintf("%d-W%02d", r.EpiYear, r.EpiWeek)
}

// Clone returns a copy of records. A nil or empty input yields nil.
func Clone(records []Record) []Record {
	if len(records) == 0 {
		return nil
	}
	dup := make([]Record, len(records))
	copy(dup, records)
	return dup
}
