// Package ml implements the pipeline's advisory ML hook: a confidence
// multiplier in [0.8, 1.2] with warnings, computed from a feature vector
// against an already-locked trade decision. It can never alter direction,
// entry, stop-loss, or take-profit — those fields arrive as an immutable
// value type with no exported mutator.
package ml

import "math"

// LockedStrategyDecision is the immutable view of a signal the advisory
// model is allowed to see. There is deliberately no method or field that
// lets a caller mutate these values in place — the pipeline builds one
// fresh from its own locked state and discards it after the call.
type LockedStrategyDecision struct {
	SignalType string // e.g. "BUY", "SELL", "STRONG_BUY", "STRONG_SELL"
	Entry      float64
	SL         float64
	TP         [3]float64
}

// ConfidenceModifier is the advisory model's sole output: a bounded
// multiplier and any warnings to surface to the trader. Nothing else about
// the signal is touched by the caller.
type ConfidenceModifier struct {
	Multiplier float64 // clamped to [0.8, 1.2]
	Warnings   []string
}

const (
	minMultiplier = 0.8
	maxMultiplier = 1.2
)

// Features carries the model inputs, grounded on the teacher's
// internal/ai/ml/predictor.go PriceFeatures vector, trimmed to the subset
// that has a real input in this pipeline (no tick-level microstructure
// data is available to the signal generator).
type Features struct {
	MomentumScore    float64 // -1..1
	TrendConsistency float64 // 0..1
	VolumeRatio      float64 // current vs. average
	RSI              float64 // 0..100
	BaseConfidence   float64 // the confidence computed before this hook runs
}

// Advisor computes a ConfidenceModifier from Features, using the teacher's
// weighted-signal-combination idiom (internal/ai/ml/predictor.go's
// momentum/trend/volume weighting) rather than an external model — there is
// no model-serving dependency in the retrieved stack for this hook to call.
type Advisor struct {
	MomentumWeight float64
	TrendWeight    float64
	VolumeWeight   float64
}

// NewAdvisor returns conservative default weights summing to 1.0.
func NewAdvisor() *Advisor {
	return &Advisor{MomentumWeight: 0.4, TrendWeight: 0.35, VolumeWeight: 0.25}
}

// Advise evaluates Features against the LockedStrategyDecision's direction
// and returns a bounded ConfidenceModifier. decision is read-only context —
// it influences only whether the model agrees or disagrees with the
// signal's own direction, never the output's shape.
func (a *Advisor) Advise(decision LockedStrategyDecision, f Features) ConfidenceModifier {
	var warnings []string

	agreement := a.agreementScore(decision, f)

	// Map agreement in [-1, 1] to a multiplier in [0.8, 1.2].
	multiplier := 1.0 + agreement*0.2
	multiplier = clampMultiplier(multiplier)

	if f.RSI >= 70 || f.RSI <= 30 {
		warnings = append(warnings, "RSI at an extreme — momentum may be exhausted")
	}
	if f.VolumeRatio < 0.5 {
		warnings = append(warnings, "below-average volume; advisory confidence is low-conviction")
	}
	if agreement < -0.3 {
		warnings = append(warnings, "model features disagree with the signal's direction")
	}

	return ConfidenceModifier{Multiplier: multiplier, Warnings: warnings}
}

// agreementScore combines momentum, trend consistency, and volume into a
// single -1..1 score: positive means the features agree with a long bias,
// negative a short bias; it is re-signed against the decision's own
// direction before being returned.
func (a *Advisor) agreementScore(decision LockedStrategyDecision, f Features) float64 {
	momentum := clampUnit(f.MomentumScore)
	trend := clampUnit(f.TrendConsistency*2 - 1) // 0..1 -> -1..1
	volume := clampUnit(f.VolumeRatio - 1)        // above-average volume -> positive

	score := momentum*a.MomentumWeight + trend*a.TrendWeight + volume*a.VolumeWeight

	if isShort(decision.SignalType) {
		score = -score
	}
	return clampUnit(score)
}

func isShort(signalType string) bool {
	switch signalType {
	case "SELL", "STRONG_SELL":
		return true
	default:
		return false
	}
}

func clampUnit(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}

func clampMultiplier(v float64) float64 {
	return math.Max(minMultiplier, math.Min(maxMultiplier, v))
}
