package ml

import "testing"

func TestAdviseMultiplierStaysInBounds(t *testing.T) {
	a := NewAdvisor()
	decision := LockedStrategyDecision{SignalType: "BUY", Entry: 100, SL: 98, TP: [3]float64{102, 106, 110}}

	cases := []Features{
		{MomentumScore: 1, TrendConsistency: 1, VolumeRatio: 3, RSI: 50},
		{MomentumScore: -1, TrendConsistency: 0, VolumeRatio: 0.1, RSI: 50},
		{MomentumScore: 0, TrendConsistency: 0.5, VolumeRatio: 1, RSI: 75},
	}

	for _, f := range cases {
		mod := a.Advise(decision, f)
		if mod.Multiplier < 0.8 || mod.Multiplier > 1.2 {
			t.Errorf("multiplier %f out of bounds for features %+v", mod.Multiplier, f)
		}
	}
}

func TestAdviseWarnsOnExtremeRSI(t *testing.T) {
	a := NewAdvisor()
	decision := LockedStrategyDecision{SignalType: "BUY"}
	mod := a.Advise(decision, Features{RSI: 82})
	if len(mod.Warnings) == 0 {
		t.Errorf("expected an RSI-extreme warning")
	}
}

func TestApplyNeverExceedsBounds(t *testing.T) {
	confidence, _ := Apply(95, ConfidenceModifier{Multiplier: 1.2})
	if confidence != 100 {
		t.Errorf("expected clamp to 100, got %f", confidence)
	}
	confidence, _ = Apply(10, ConfidenceModifier{Multiplier: 0.8})
	if confidence != 8 {
		t.Errorf("expected 8, got %f", confidence)
	}
}

func TestApplyDoesNotTouchDecisionFields(t *testing.T) {
	decision := LockedStrategyDecision{SignalType: "BUY", Entry: 100, SL: 98, TP: [3]float64{102, 106, 110}}
	before := decision
	_, _ = Apply(50, ConfidenceModifier{Multiplier: 1.1})
	if decision != before {
		t.Errorf("Apply must never mutate the locked decision")
	}
}
