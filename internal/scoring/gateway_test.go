package scoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutline/scout-cli/internal/model"
	"github.com/scoutline/scout-cli/pkg/anthropic"
)

type fakeClient struct {
	reply   string
	err     error
	lastReq anthropic.MessageRequest
	sleep   time.Duration
}

func (f *fakeClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.lastReq = req
	if f.sleep > 0 {
		select {
		case <-time.After(f.sleep):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: f.reply}},
	}, nil
}

func testCandidate() *model.Candidate {
	return &model.Candidate{
		ID:   "608431",
		Name: "Елена",
	}
}

func TestScoreFencedJSON(t *testing.T) {
	client := &fakeClient{reply: "```json\n{\"operational_fit\": 8, \"human_fit\": 6, \"authenticity\": 0.9, \"combined_fit\": 7.2, \"reasons\": {\"experience\": [\"10 years with toddlers\"]}}\n```"}
	g := NewGateway(client, GatewayConfig{})

	res := g.Score(context.Background(), "nanny for a 2-year-old", testCandidate())
	require.False(t, res.Failed())
	assert.InDelta(t, 7.2, res.CombinedFit, 1e-9)
	assert.Equal(t, 7, res.FinalScore)
	assert.Equal(t, []string{"10 years with toddlers"}, res.ReasonsByCategory["experience"])
}

func TestScoreJSONWrappedInProse(t *testing.T) {
	client := &fakeClient{reply: "Here is my assessment:\n{\"operational_fit\": 5, \"human_fit\": 5, \"authenticity\": 1.0}\nLet me know if you need more."}
	g := NewGateway(client, GatewayConfig{})

	res := g.Score(context.Background(), "jd", testCandidate())
	require.False(t, res.Failed())
	assert.Equal(t, 5, res.FinalScore)
}

func TestScoreCombinedFitDefault(t *testing.T) {
	// 0.6*8 + 0.4*4 = 6.4
	client := &fakeClient{reply: `{"operational_fit": 8, "human_fit": 4, "authenticity": 1.0}`}
	g := NewGateway(client, GatewayConfig{})

	res := g.Score(context.Background(), "jd", testCandidate())
	require.False(t, res.Failed())
	assert.InDelta(t, 6.4, res.CombinedFit, 1e-9)
	assert.Equal(t, 6, res.FinalScore)
}

func TestScoreClampsOutOfRangeValues(t *testing.T) {
	client := &fakeClient{reply: `{"operational_fit": 14, "human_fit": -3, "authenticity": 1.7}`}
	g := NewGateway(client, GatewayConfig{})

	res := g.Score(context.Background(), "jd", testCandidate())
	require.False(t, res.Failed())
	assert.Equal(t, 10.0, res.OperationalFit)
	assert.Equal(t, 0.0, res.HumanFit)
	assert.Equal(t, 1.0, res.Authenticity)
}

func TestScoreMalformedResponseIsSentinel(t *testing.T) {
	client := &fakeClient{reply: "I cannot evaluate this profile."}
	g := NewGateway(client, GatewayConfig{})

	res := g.Score(context.Background(), "jd", testCandidate())
	assert.True(t, res.Failed())
	assert.Equal(t, 0, res.FinalScore)
	require.Len(t, res.ReasonsByCategory["error"], 1)
	assert.Contains(t, res.ReasonsByCategory["error"][0], "unparseable")
}

func TestScoreTransportErrorIsSentinel(t *testing.T) {
	client := &fakeClient{err: errors.New("connection reset")}
	g := NewGateway(client, GatewayConfig{})

	res := g.Score(context.Background(), "jd", testCandidate())
	assert.True(t, res.Failed())
	assert.Contains(t, res.ReasonsByCategory["error"][0], "connection reset")
}

func TestScoreNilClientIsSentinel(t *testing.T) {
	g := NewGateway(nil, GatewayConfig{})

	res := g.Score(context.Background(), "jd", testCandidate())
	assert.True(t, res.Failed())
	assert.Contains(t, res.ReasonsByCategory["error"][0], "API key")
}

func TestScoreTimeoutIsSentinel(t *testing.T) {
	client := &fakeClient{sleep: 200 * time.Millisecond, reply: "{}"}
	g := NewGateway(client, GatewayConfig{Timeout: 10 * time.Millisecond})

	res := g.Score(context.Background(), "jd", testCandidate())
	assert.True(t, res.Failed())
}

func TestScoreAppliesAdjustments(t *testing.T) {
	// combined 7, age 70 (-2), commute 95 (-3), recs (+1) => 3,
	// authenticity 0.4 => x0.80 => 2.4 => 2, cap already satisfied.
	client := &fakeClient{reply: `{"operational_fit": 7, "human_fit": 7, "authenticity": 0.4, "combined_fit": 7}`}
	g := NewGateway(client, GatewayConfig{})

	c := testCandidate()
	age, commute := 70, 95
	c.Age = &age
	c.CommuteMinutes = &commute
	c.Recommendations = []string{"ref"}

	res := g.Score(context.Background(), "jd", c)
	require.False(t, res.Failed())
	assert.Equal(t, 2, res.FinalScore)
	assert.Len(t, res.Adjustments, 4)
}

func TestScoreRequestShape(t *testing.T) {
	client := &fakeClient{reply: `{"operational_fit": 5, "human_fit": 5, "authenticity": 1.0}`}
	g := NewGateway(client, GatewayConfig{Model: "claude-haiku-4-5-20251001", MaxTokens: 512})

	g.Score(context.Background(), "care for twins", testCandidate())

	assert.Equal(t, "claude-haiku-4-5-20251001", client.lastReq.Model)
	assert.Equal(t, int64(512), client.lastReq.MaxTokens)
	assert.NotEmpty(t, client.lastReq.System)
	require.Len(t, client.lastReq.Messages, 1)
	assert.Contains(t, client.lastReq.Messages[0].Content, "care for twins")
}

func TestCleanJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare", `{"a":1}`, `{"a":1}`},
		{"fenced json", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"fenced plain", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"prose wrapped", "sure: {\"a\":1} done", `{"a":1}`},
		{"no object", "nothing here", "nothing here"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, cleanJSON(tc.in))
		})
	}
}

func TestFormatExplanation(t *testing.T) {
	res := &model.ScoreResult{
		ReasonsByCategory: map[string][]string{
			"experience": {"worked with infants"},
			"schedule":   {"available weekdays"},
		},
		Adjustments: []model.Adjustment{{Label: "recommendations on profile", Delta: 1}},
		MissingInfo: []string{"salary expectations"},
		Flagged:     true,
	}

	out := FormatExplanation(res)
	assert.Contains(t, out, "[experience] worked with infants")
	assert.Contains(t, out, "[schedule] available weekdays")
	assert.Contains(t, out, "adj: recommendations on profile")
	assert.Contains(t, out, "missing: salary expectations")
	assert.Contains(t, out, "flagged for review")
}
