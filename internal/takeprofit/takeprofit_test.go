package takeprofit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ict-signal-engine/internal/zone"
)

func TestAnchorsShortTermMultipliers(t *testing.T) {
	tps := Anchors(100, 98, zone.Bullish, "1h")
	assert.Equal(t, [3]float64{102, 106, 110}, tps) // R=2, multipliers 1,3,5
}

func TestAnchorsMediumTermMultipliers(t *testing.T) {
	tps := Anchors(100, 98, zone.Bullish, "1d")
	assert.Equal(t, [3]float64{104, 108, 112}, tps) // R=2, multipliers 2,4,6
}

func TestAdjustKeepsMathTPWhenSafeTPBreachesFloor(t *testing.T) {
	// entry=100, sl=98, math_tp2=108 (R=2, multiplier 4). Bearish OB at 106,
	// raw strength 98 so that a -20 HTF-misalignment adjustment lands it at
	// the spec's worked example of an evaluated strength of 78
	// ("very likely rejection").
	anchors := Anchors(100, 98, zone.Bullish, "1d")
	obstacles := []Obstacle{{Type: "order_block", Price: 106, Strength: 98}}
	in := EvaluationInputs{HTFBiasAligned: false}

	tps, warnings := Adjust(100, 98, zone.Bullish, anchors, obstacles, in)

	assert.Equal(t, anchors[1], tps[1], "TP2 should remain the mathematical anchor")
	// The obstacle also sits in TP3's path (anchor 112) and breaches TP3's
	// floor too, so TP2 and TP3 each get a warning.
	assert.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], "106")
}

func TestAdjustAcceptsSafeTPWhenRRStillClearsFloor(t *testing.T) {
	// entry=100, sl=98 (R=2), TP3 anchor=112. An obstacle close to the
	// anchor still leaves enough reward after the 0.3% safety pullback to
	// clear TP3's 5.0 R:R floor, so the safe TP should be accepted.
	anchors := Anchors(100, 98, zone.Bullish, "1d")
	obstacles := []Obstacle{{Type: "fvg", Price: 111, Strength: 98}}
	in := EvaluationInputs{HTFBiasAligned: false} // raw 98-20=78, very likely rejection

	tps, warnings := Adjust(100, 98, zone.Bullish, anchors, obstacles, in)

	wantSafeTP := 111 * (1 - ObstacleSafetyBuffer)
	assert.Equal(t, wantSafeTP, tps[2])
	assert.Empty(t, warnings, "expected no warning when the safe TP clears the floor")
}

func TestEvaluateVerdictThresholds(t *testing.T) {
	cases := []struct {
		raw     float64
		aligned bool
		want    Verdict
	}{
		{95, true, VeryLikelyRejection},
		{60, false, LikelyPenetration}, // 60-20=40
		{80, false, LikelyRejection},   // 80-20=60
	}
	for _, c := range cases {
		_, v := Evaluate(Obstacle{Strength: c.raw}, EvaluationInputs{HTFBiasAligned: c.aligned})
		assert.Equal(t, c.want, v, "raw=%f aligned=%v", c.raw, c.aligned)
	}
}
