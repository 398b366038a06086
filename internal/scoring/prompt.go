package scoring

import (
	"encoding/json"
	"strings"

	"github.com/scoutline/scout-cli/internal/model"
)

const systemPrompt = `You are a strict, skeptical evaluator matching a caregiver profile
against a job description. Judge operational fit (experience, schedule,
logistics) and human fit (tone, warmth, coherence of the self
description) separately. Estimate authenticity: the probability that
the "about" text is genuine personal writing rather than a template or
agency boilerplate.

Respond with a single JSON object and nothing else:
{
  "operational_fit": <number 0-10>,
  "human_fit": <number 0-10>,
  "authenticity": <number 0-1>,
  "combined_fit": <number 0-10, optional>,
  "reasons": {"<category>": ["<short reason>", ...]},
  "missing_info": ["<what you could not assess>", ...],
  "red_flags": <boolean>
}`

// unknown marks absent fields in the summary so the model never has to
// guess between "empty" and "not scraped".
const unknown = "unknown"

// profileSummary is the structured candidate view sent to the model.
// Every machine-owned field appears; absent values are marked, not
// omitted.
type profileSummary struct {
	ID              string   `json:"profile_id"`
	Name            string   `json:"name"`
	Age             any      `json:"age"`
	ExperienceYears any      `json:"experience_years"`
	About           string   `json:"about"`
	Education       string   `json:"education"`
	Recommendations []string `json:"recommendations"`
	HasAudio        bool     `json:"has_audio"`
	HasTaleAudio    bool     `json:"has_tale_audio"`
	Location        string   `json:"location"`
	CommuteMinutes  any      `json:"commute_minutes"`
	LastActive      string   `json:"last_active"`
}

// BuildUserPrompt renders the scoring request body for one candidate.
func BuildUserPrompt(jobDescription string, c *model.Candidate) string {
	s := profileSummary{
		ID:              c.ID,
		Name:            orUnknown(c.Name),
		Age:             orUnknownInt(c.Age),
		ExperienceYears: orUnknownInt(c.ExperienceYears),
		About:           orUnknown(c.About),
		Education:       orUnknown(c.Education),
		Recommendations: c.Recommendations,
		HasAudio:        c.HasAudio,
		HasTaleAudio:    c.HasTaleAudio,
		Location:        orUnknown(c.Location),
		CommuteMinutes:  orUnknownInt(c.CommuteMinutes),
		LastActive:      orUnknown(c.LastActiveRaw),
	}
	if s.Recommendations == nil {
		s.Recommendations = []string{}
	}

	summaryJSON, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		// profileSummary contains only marshalable types.
		summaryJSON = []byte("{}")
	}

	var b strings.Builder
	b.WriteString("JOB DESCRIPTION:\n")
	b.WriteString(strings.TrimSpace(jobDescription))
	b.WriteString("\n\nPROFILE (JSON):\n")
	b.Write(summaryJSON)
	return b.String()
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return unknown
	}
	return s
}

func orUnknownInt(v *int) any {
	if v == nil {
		return unknown
	}
	return *v
}
