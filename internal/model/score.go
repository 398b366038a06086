package model

// Adjustment is one applied step of the deterministic score shaping,
// in application order. Delta is the signed change to the running
// score at the time the step ran.
type Adjustment struct {
	Label string  `json:"label"`
	Delta float64 `json:"delta"`
}

// ScoreResult is the outcome of one scoring cycle. It is recomputed
// per run and overwrites, never merges with, any prior result.
type ScoreResult struct {
	OperationalFit float64 `json:"operational_fit"`
	HumanFit       float64 `json:"human_fit"`
	Authenticity   float64 `json:"authenticity"`
	CombinedFit    float64 `json:"combined_fit"`

	// FinalScore is 1..10 after adjustments; 0 is reserved for
	// "scoring failed or skipped".
	FinalScore  int          `json:"final_score"`
	Adjustments []Adjustment `json:"adjustments,omitempty"`

	ReasonsByCategory map[string][]string `json:"reasons,omitempty"`
	MissingInfo       []string            `json:"missing_info,omitempty"`
	Flagged           bool                `json:"flagged"`
}

// Failed reports whether this result is the scoring-failure sentinel.
func (r *ScoreResult) Failed() bool {
	return r.FinalScore == 0
}
