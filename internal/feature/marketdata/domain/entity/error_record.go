package entity

// ErrorRecord is one append-only failure event for observability.
// Rows are never updated after insertion.
type ErrorRecord struct {
	Time        string // unix-ms string of the failure event
	Description string
	Source      string
	Details     string
}
