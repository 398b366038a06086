package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutline/scout-cli/internal/model"
)

func intp(v int) *int { return &v }

func floatp(v float64) *float64 { return &v }

func TestApplyAdjustments_Deterministic(t *testing.T) {
	in := AdjustmentInput{
		Base:               7,
		Age:                intp(70),
		CommuteMinutes:     intp(95),
		Authenticity:       floatp(0.4),
		HasRecommendations: true,
		HasMedia:           false,
	}

	first, firstTrail := ApplyAdjustments(in)
	for i := 0; i < 50; i++ {
		score, trail := ApplyAdjustments(in)
		assert.Equal(t, first, score)
		assert.Equal(t, firstTrail, trail)
	}

	// 7 -2 (age) -3 (commute) +1 (recs) = 3; x0.80 = 2.4; round = 2.
	assert.Equal(t, 2, first)
	require.Len(t, firstTrail, 4)
	assert.Equal(t, "age 65+ -2", firstTrail[0].Label)
	assert.Equal(t, "commute >90min -3", firstTrail[1].Label)
	assert.Equal(t, "recommendations +1", firstTrail[2].Label)
	assert.Equal(t, "authenticity 0.40 x0.80", firstTrail[3].Label)
	assert.InDelta(t, -0.6, firstTrail[3].Delta, 1e-9)
}

func TestApplyAdjustments_SeniorCapForcesMax3(t *testing.T) {
	// High base plus bonuses must still land at or below the cap.
	score, trail := ApplyAdjustments(AdjustmentInput{
		Base:               10,
		Age:                intp(66),
		HasRecommendations: true,
		HasMedia:           true,
	})
	assert.Equal(t, 3, score)

	last := trail[len(trail)-1]
	assert.Equal(t, "age 65+ cap to 3", last.Label)
}

func TestApplyAdjustments_SeniorCapNoOpWhenAlreadyBelow(t *testing.T) {
	score, trail := ApplyAdjustments(AdjustmentInput{
		Base: 3,
		Age:  intp(70),
	})
	assert.Equal(t, 1, score)
	// Only the -2 step is recorded; the cap did not change anything.
	require.Len(t, trail, 1)
	assert.Equal(t, "age 65+ -2", trail[0].Label)
}

func TestApplyAdjustments_YoungBonus(t *testing.T) {
	score, trail := ApplyAdjustments(AdjustmentInput{Base: 7, Age: intp(30)})
	assert.Equal(t, 8, score)
	assert.Equal(t, []model.Adjustment{{Label: "age <45 +1", Delta: 1}}, trail)
}

func TestApplyAdjustments_MiddleBracketNeutral(t *testing.T) {
	score, trail := ApplyAdjustments(AdjustmentInput{Base: 7, Age: intp(50)})
	assert.Equal(t, 7, score)
	assert.Empty(t, trail)
}

func TestApplyAdjustments_CommuteBrackets(t *testing.T) {
	for _, tc := range []struct {
		minutes int
		want    int
	}{
		{30, 7}, {60, 7}, {61, 6}, {75, 6}, {76, 5}, {90, 5}, {91, 4},
	} {
		score, _ := ApplyAdjustments(AdjustmentInput{Base: 7, CommuteMinutes: intp(tc.minutes)})
		assert.Equal(t, tc.want, score, "commute %d min", tc.minutes)
	}
}

func TestApplyAdjustments_AuthenticityAtThresholdIsFree(t *testing.T) {
	score, trail := ApplyAdjustments(AdjustmentInput{Base: 8, Authenticity: floatp(0.80)})
	assert.Equal(t, 8, score)
	assert.Empty(t, trail)
}

func TestApplyAdjustments_AuthenticityZeroFloor(t *testing.T) {
	// Factor bottoms out at 0.60.
	score, _ := ApplyAdjustments(AdjustmentInput{Base: 10, Authenticity: floatp(0)})
	assert.Equal(t, 6, score)
}

func TestApplyAdjustments_MissingInputsSkipRules(t *testing.T) {
	score, trail := ApplyAdjustments(AdjustmentInput{Base: 5})
	assert.Equal(t, 5, score)
	assert.Empty(t, trail)
}

func TestApplyAdjustments_ClampsToOne(t *testing.T) {
	score, _ := ApplyAdjustments(AdjustmentInput{
		Base:           1,
		Age:            intp(60),
		CommuteMinutes: intp(120),
	})
	assert.Equal(t, 1, score)
}

func TestApplyAdjustments_ClampsToTen(t *testing.T) {
	score, _ := ApplyAdjustments(AdjustmentInput{
		Base:               10,
		Age:                intp(30),
		HasRecommendations: true,
		HasMedia:           true,
	})
	assert.Equal(t, 10, score)
}
