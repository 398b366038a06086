package scoring

import (
	"fmt"
	"math"

	"github.com/scoutline/scout-cli/internal/model"
)

// Score bounds after adjustment.
const (
	minFinalScore = 1
	maxFinalScore = 10
	seniorCap     = 3
)

// Authenticity shaping: no penalty at or above the threshold, linear
// factor from floorFactor at 0.0 up to 1.0 at the threshold below it.
const (
	authenticityThreshold = 0.80
	authenticityFloor     = 0.60
)

// AdjustmentInput carries the deterministic inputs for score shaping.
// Nil optionals skip their rule entirely; they are never treated as
// zero or as a penalty trigger.
type AdjustmentInput struct {
	Base               int
	Age                *int
	CommuteMinutes     *int
	Authenticity       *float64
	HasRecommendations bool
	HasMedia           bool
}

// ApplyAdjustments shapes a model-derived base score with the fixed
// rule sequence and returns the bounded final score plus the ordered
// audit trail of every non-zero step. Pure and total: identical inputs
// always yield the identical result and trail.
func ApplyAdjustments(in AdjustmentInput) (int, []model.Adjustment) {
	score := float64(in.Base)
	var trail []model.Adjustment
	capToSenior := false

	step := func(label string, delta float64) {
		if delta == 0 {
			return
		}
		score += delta
		trail = append(trail, model.Adjustment{Label: label, Delta: delta})
	}

	// 1. Age bracket.
	if in.Age != nil {
		age := *in.Age
		switch {
		case age < 45:
			step("age <45 +1", 1)
		case age >= 65:
			capToSenior = true
			step("age 65+ -2", -2)
		case age >= 55:
			step("age 55-64 -1", -1)
		}
	}

	// 2. Commute, only beyond an hour.
	if in.CommuteMinutes != nil {
		switch c := *in.CommuteMinutes; {
		case c > 90:
			step("commute >90min -3", -3)
		case c > 75:
			step("commute 76-90min -2", -2)
		case c > 60:
			step("commute 61-75min -1", -1)
		}
	}

	// 3. Recommendations.
	if in.HasRecommendations {
		step("recommendations +1", 1)
	}

	// 4. Media.
	if in.HasMedia {
		step("media +1", 1)
	}

	// 5. Authenticity shaping on the real-valued running score.
	if in.Authenticity != nil && *in.Authenticity < authenticityThreshold {
		a := clamp(*in.Authenticity, 0, 1)
		factor := authenticityFloor + (1-authenticityFloor)/authenticityThreshold*a
		step(fmt.Sprintf("authenticity %.2f x%.2f", a, factor), score*factor-score)
	}

	// 6. Clamp to the integer range.
	final := int(math.Round(score))
	if final < minFinalScore {
		final = minFinalScore
	}
	if final > maxFinalScore {
		final = maxFinalScore
	}

	// 7. Senior cap, after clamping.
	if capToSenior && final > seniorCap {
		trail = append(trail, model.Adjustment{
			Label: fmt.Sprintf("age 65+ cap to %d", seniorCap),
			Delta: float64(seniorCap - final),
		})
		final = seniorCap
	}

	return final, trail
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
