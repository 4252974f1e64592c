package gates

import "testing"

func TestEntryGatingAllPass(t *testing.T) {
	ok, reason := EntryGating(EntryGatingContext{SystemOperational: true, MarketOpen: true})
	if !ok {
		t.Errorf("expected pass, got reason %q", reason)
	}
}

func TestEntryGatingFailsOnCooldown(t *testing.T) {
	ok, reason := EntryGating(EntryGatingContext{SystemOperational: true, MarketOpen: true, CooldownActive: true})
	if ok {
		t.Errorf("expected failure on active cooldown")
	}
	if reason == "" {
		t.Errorf("expected a reason string")
	}
}

func TestConfidenceThresholdStricterForSell(t *testing.T) {
	ctx := ConfidenceThresholdContext{RawConfidence: 65, IsSell: true, BuyThreshold: 60, SellThreshold: 70}
	ok, _ := ConfidenceThreshold(ctx)
	if ok {
		t.Errorf("expected SELL at 65 to fail a 70 threshold")
	}

	ctx.IsSell = false
	ok, _ = ConfidenceThreshold(ctx)
	if !ok {
		t.Errorf("expected BUY at 65 to pass a 60 threshold")
	}
}

func TestExecutionEligibilityFailsOnHalt(t *testing.T) {
	ctx := ExecutionEligibilityContext{
		ExecutionReady: true, ExecutionLayerAvailable: true, PositionCapacityAvailable: true,
		EmergencyHaltActive: true,
	}
	ok, _ := ExecutionEligibility(ctx)
	if ok {
		t.Errorf("expected failure during emergency halt")
	}
}

func TestRiskAdmissionFailsOverCap(t *testing.T) {
	ctx := RiskAdmissionContext{SignalRisk: 5, PerSignalCap: 2}
	ok, reason := RiskAdmission(ctx)
	if ok {
		t.Errorf("expected failure over per-signal cap")
	}
	if reason == "" {
		t.Errorf("expected a reason string")
	}
}

func TestDefaultsAdmitEverything(t *testing.T) {
	if ok, _ := DefaultEntryGating(EntryGatingContext{}); !ok {
		t.Errorf("expected defensive default to pass")
	}
	if ok, _ := DefaultConfidenceThreshold(ConfidenceThresholdContext{}); !ok {
		t.Errorf("expected defensive default to pass")
	}
	if ok, _ := DefaultExecutionEligibility(ExecutionEligibilityContext{}); !ok {
		t.Errorf("expected defensive default to pass")
	}
	if ok, _ := DefaultRiskAdmission(RiskAdmissionContext{}); !ok {
		t.Errorf("expected defensive default to pass")
	}
}
