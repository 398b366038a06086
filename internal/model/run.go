package model

import "time"

// RunRecord is one append-only audit row per pipeline execution.
// Write-once, never mutated.
type RunRecord struct {
	ID                string        `json:"id"`
	StartedAt         time.Time     `json:"started_at"`
	Query             string        `json:"query"`
	CutoffHours       int           `json:"cutoff_hours"`
	PagesScanned      int           `json:"pages_scanned"`
	CandidatesScanned int           `json:"candidates_scanned"`
	Inserted          int           `json:"inserted"`
	Updated           int           `json:"updated"`
	Duration          time.Duration `json:"duration"`
}
