package confidence

import "testing"

func TestScoreCapsWhaleBlocksAt25(t *testing.T) {
	total, breakdown := Score(Components{WhaleBlockCount: 10})
	if total != 25 {
		t.Errorf("expected whale block contribution capped at 25, got %f", total)
	}
	if len(breakdown) == 0 {
		t.Errorf("expected a breakdown entry")
	}
}

func TestScoreRiskRewardBonusFormula(t *testing.T) {
	// min(10, (R:R/2)*5) -> R:R=3.0 => (1.5)*5=7.5
	total, _ := Score(Components{RiskRewardRatio: 3.0})
	if total != 7.5 {
		t.Errorf("expected r:r bonus of 7.5, got %f", total)
	}
}

func TestScoreRiskRewardBonusCapsAtTen(t *testing.T) {
	total, _ := Score(Components{RiskRewardRatio: 10})
	if total != 10 {
		t.Errorf("expected r:r bonus capped at 10, got %f", total)
	}
}

func TestScoreNeutralBiasAppliesBaselinePenalty(t *testing.T) {
	withPenalty, _ := Score(Components{StructureBreak: true, BiasNeutralOrRanging: true})
	without, _ := Score(Components{StructureBreak: true})
	if withPenalty >= without {
		t.Errorf("expected neutral/ranging bias to reduce confidence: with=%f without=%f", withPenalty, without)
	}
	if withPenalty != 20*0.8 {
		t.Errorf("expected baseline 0.8x penalty (16), got %f", withPenalty)
	}
}

func TestScoreBothNonDirectionalStacksPenalty(t *testing.T) {
	total, _ := Score(Components{StructureBreak: true, BiasNeutralOrRanging: true, BothNonDirectional: true})
	want := 20 * 0.8 * (1 - 0.40)
	if total != want {
		t.Errorf("expected %f, got %f", want, total)
	}
}

func TestScoreEntryDistancePenalty(t *testing.T) {
	total, _ := Score(Components{StructureBreak: true, HasEntryDistance: true, EntryDistancePct: 0.002})
	if total != 20*0.9 {
		t.Errorf("expected entry-distance penalty applied, got %f", total)
	}
}

func TestScoreSkipsEntryDistancePenaltyWhenNotSupplied(t *testing.T) {
	// EntryDistancePct left at its zero value with HasEntryDistance unset must
	// not be mistaken for "entry sitting exactly at the current price".
	total, _ := Score(Components{StructureBreak: true})
	if total != 20 {
		t.Errorf("expected no distance penalty without HasEntryDistance, got %f", total)
	}
}

func TestScoreSkipsLuxAlgoProximityCreditWhenNotSupplied(t *testing.T) {
	// LuxAlgoSRProximityPct left at its zero value with HasLuxAlgoSR unset
	// must not be mistaken for "a level sits right at the entry".
	total, _ := Score(Components{StructureBreak: true})
	if total != 20 {
		t.Errorf("expected no luxalgo proximity credit without HasLuxAlgoSR, got %f", total)
	}
}

func TestScoreClampedToHundred(t *testing.T) {
	total, _ := Score(Components{
		StructureBreak:        true,
		WhaleBlockCount:       10,
		LiquidityZoneCount:    10,
		OrderBlockCount:       10,
		FVGCount:              10,
		AlignedTimeframes:     10,
		BreakerBlockCount:     10,
		MitigationBlockCount:  10,
		SIBISSIBCount:         10,
		DisplacementRecent:    true,
		RiskRewardRatio:       20,
		LuxAlgoSRProximityPct: 0.01,
		HasLuxAlgoSR:          true,
		LuxAlgoBiasAligned:    true,
		LuxAlgoEntryValid:     true,
		InFibonacciOTE:        true,
	})
	if total != 100 {
		t.Errorf("expected clamp to 100, got %f", total)
	}
}
