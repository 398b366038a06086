// Package scoring turns a candidate record plus a job description into
// a bounded, auditable fit score: one model call for the base estimate,
// then a fixed deterministic adjustment sequence on top.
package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/scoutline/scout-cli/internal/model"
	"github.com/scoutline/scout-cli/internal/resilience"
	"github.com/scoutline/scout-cli/pkg/anthropic"
)

// Weighted blend applied when the model omits combined_fit.
const (
	operationalWeight = 0.6
	humanWeight       = 0.4
)

// GatewayConfig configures the model call.
type GatewayConfig struct {
	Model       string
	MaxTokens   int64
	Timeout     time.Duration
	Temperature float64
}

// Gateway orchestrates one scoring request/response cycle. A nil
// client (missing credentials) degrades every call to the failure
// sentinel instead of erroring.
type Gateway struct {
	client anthropic.Client
	cfg    GatewayConfig
}

// NewGateway creates a Gateway. Zero config fields get defaults.
func NewGateway(client anthropic.Client, cfg GatewayConfig) *Gateway {
	if cfg.Model == "" {
		cfg.Model = "claude-haiku-4-5-20251001"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Gateway{client: client, cfg: cfg}
}

// rawScore mirrors the JSON shape the model is asked to produce.
type rawScore struct {
	OperationalFit float64             `json:"operational_fit"`
	HumanFit       float64             `json:"human_fit"`
	Authenticity   float64             `json:"authenticity"`
	CombinedFit    *float64            `json:"combined_fit"`
	Reasons        map[string][]string `json:"reasons"`
	MissingInfo    []string            `json:"missing_info"`
	RedFlags       bool                `json:"red_flags"`
}

// Score evaluates one candidate against the job description. Failures
// (no client, timeout, network, unparseable output) never propagate:
// the sentinel result with FinalScore 0 and one explanatory reason is
// returned so the batch continues.
func (g *Gateway) Score(ctx context.Context, jobDescription string, c *model.Candidate) *model.ScoreResult {
	log := zap.L().With(zap.String("candidate_id", c.ID))

	if g.client == nil {
		log.Warn("scoring: no API client configured, skipping")
		return failure("scoring skipped: API key not configured")
	}

	// Every model invocation carries a caller-visible timeout; a
	// stalled call fails this one record only.
	callCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	temp := g.cfg.Temperature
	req := anthropic.MessageRequest{
		Model:       g.cfg.Model,
		MaxTokens:   g.cfg.MaxTokens,
		System:      systemPrompt,
		Temperature: &temp,
		Messages: []anthropic.Message{
			{Role: "user", Content: BuildUserPrompt(jobDescription, c)},
		},
	}
	resp, err := resilience.DoVal(callCtx, resilience.DefaultRetryConfig(), "scoring.create_message",
		func(ctx context.Context) (*anthropic.MessageResponse, error) {
			return g.client.CreateMessage(ctx, req)
		})
	if err != nil {
		log.Warn("scoring: model call failed", zap.Error(err))
		return failure(fmt.Sprintf("scoring failed: %v", err))
	}

	cleaned := cleanJSON(extractText(resp))
	var raw rawScore
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		log.Warn("scoring: unparseable model response", zap.Error(err))
		return failure("scoring failed: unparseable model response")
	}

	res := &model.ScoreResult{
		OperationalFit:    clamp(raw.OperationalFit, 0, 10),
		HumanFit:          clamp(raw.HumanFit, 0, 10),
		Authenticity:      clamp(raw.Authenticity, 0, 1),
		ReasonsByCategory: raw.Reasons,
		MissingInfo:       raw.MissingInfo,
		Flagged:           raw.RedFlags,
	}

	if raw.CombinedFit != nil {
		res.CombinedFit = clamp(*raw.CombinedFit, 0, 10)
	} else {
		res.CombinedFit = operationalWeight*res.OperationalFit + humanWeight*res.HumanFit
	}

	auth := res.Authenticity
	res.FinalScore, res.Adjustments = ApplyAdjustments(AdjustmentInput{
		Base:               int(math.Round(res.CombinedFit)),
		Age:                c.Age,
		CommuteMinutes:     c.CommuteMinutes,
		Authenticity:       &auth,
		HasRecommendations: c.HasRecommendations(),
		HasMedia:           c.HasMedia(),
	})

	log.Debug("scoring: complete",
		zap.Float64("combined_fit", res.CombinedFit),
		zap.Int("final_score", res.FinalScore),
		zap.Int("adjustments", len(res.Adjustments)),
	)
	return res
}

// FormatExplanation renders a ScoreResult as the explanation bullet
// text stored alongside the numeric score.
func FormatExplanation(r *model.ScoreResult) string {
	var lines []string

	cats := make([]string, 0, len(r.ReasonsByCategory))
	for cat := range r.ReasonsByCategory {
		cats = append(cats, cat)
	}
	sort.Strings(cats)
	for _, cat := range cats {
		for _, reason := range r.ReasonsByCategory[cat] {
			if reason != "" {
				lines = append(lines, fmt.Sprintf("[%s] %s", cat, reason))
			}
		}
	}

	for _, adj := range r.Adjustments {
		lines = append(lines, fmt.Sprintf("adj: %s", adj.Label))
	}

	for _, m := range r.MissingInfo {
		if m != "" {
			lines = append(lines, fmt.Sprintf("missing: %s", m))
		}
	}

	if r.Flagged {
		lines = append(lines, "flagged for review")
	}

	return strings.Join(lines, "\n")
}

func failure(reason string) *model.ScoreResult {
	return &model.ScoreResult{
		ReasonsByCategory: map[string][]string{"error": {reason}},
	}
}

// extractText concatenates all text content blocks.
func extractText(resp *anthropic.MessageResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "" || b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return sb.String()
}

// cleanJSON strips markdown fences and extracts the first well-formed
// object substring so decorated responses still parse.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
