package model

import "time"

// Status is the human-owned lifecycle state of a candidate row. The
// pipeline sets StatusNew on insert and never touches it again.
type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusInterview Status = "interview"
	StatusHired     Status = "hired"
	StatusRejected  Status = "rejected"
)

// Candidate is one row per real-world profile, keyed by the digits-only
// profile ID. All fields except Status, Notes and LastContactedAt are
// machine-owned.
type Candidate struct {
	ID           string `json:"id"`
	CanonicalURL string `json:"canonical_url"`

	Name            string   `json:"name,omitempty"`
	Age             *int     `json:"age,omitempty"`
	ExperienceYears *int     `json:"experience_years,omitempty"`
	About           string   `json:"about,omitempty"`
	Education       string   `json:"education,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
	HasAudio        bool     `json:"has_audio"`
	HasTaleAudio    bool     `json:"has_tale_audio"`
	Phone           string   `json:"phone,omitempty"`
	Location        string   `json:"location,omitempty"`
	CommuteMinutes  *int     `json:"commute_minutes,omitempty"`

	LastActiveRaw string     `json:"last_active_raw,omitempty"`
	LastActiveAt  *time.Time `json:"last_active_at,omitempty"`

	Score       int    `json:"score"`
	Explanation string `json:"explanation,omitempty"`

	FirstSeenAt time.Time `json:"first_seen_at"`
	LastSeenAt  time.Time `json:"last_seen_at"`

	// Human-owned. Written by people editing the table, never by the
	// pipeline after insert.
	Status          Status     `json:"status"`
	Notes           string     `json:"notes,omitempty"`
	LastContactedAt *time.Time `json:"last_contacted_at,omitempty"`
}

// HasRecommendations reports whether the candidate carries at least one
// non-blank recommendation text.
func (c *Candidate) HasRecommendations() bool {
	for _, r := range c.Recommendations {
		if r != "" {
			return true
		}
	}
	return false
}

// HasMedia reports whether any audio/media flag is set.
func (c *Candidate) HasMedia() bool {
	return c.HasAudio || c.HasTaleAudio
}

// CandidatePatch is the fixed allow-list of machine-owned fields a
// partial update may touch on an existing row. Nil pointers mean
// "leave the stored value alone". Human-owned fields have no
// representation here on purpose.
type CandidatePatch struct {
	LastActiveRaw *string    `json:"last_active_raw,omitempty"`
	LastActiveAt  *time.Time `json:"last_active_at,omitempty"`
	LastSeenAt    *time.Time `json:"last_seen_at,omitempty"`
	CanonicalURL  *string    `json:"canonical_url,omitempty"`

	// Rescore path only: full overwrite of the scoring outcome.
	Score       *int    `json:"score,omitempty"`
	Explanation *string `json:"explanation,omitempty"`
}

// Empty reports whether the patch would change nothing.
func (p CandidatePatch) Empty() bool {
	return p.LastActiveRaw == nil && p.LastActiveAt == nil &&
		p.LastSeenAt == nil && p.CanonicalURL == nil &&
		p.Score == nil && p.Explanation == nil
}
