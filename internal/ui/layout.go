package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the header drops
	// secondary fields.
	LayoutCompactWidth = 100

	// LayoutWideWidth is the minimum width to show the epi week column in
	// list rows.
	LayoutWideWidth = 120
)

// Activity log limits.
const (
	// ActivityLineLimit is the number of log lines tailed for the activity view.
	ActivityLineLimit = 400
)

// Timing constants.
const (
	// DefaultUIInterval is how often the UI refreshes its snapshot and, while
	// the activity view is open, the log tail.
	DefaultUIInterval = time.Second
)
