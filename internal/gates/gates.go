// Package gates implements the four independent pure boolean admission
// checks the pipeline runs at stages 12.1-12.4. Each is a plain function
// over a small context struct, loaded as an optional plugin: callers that
// have not wired a real evaluator get one that defaults to "safe" so the
// pipeline can still run standalone, grounded on the teacher's
// internal/risk/manager.go CanOpenPosition (bool, reason) admission-check
// idiom.
package gates

// Evaluator is the common shape every gate implements: a context value in,
// a pass/fail and reason out. Gates never mutate their input.
type Evaluator[T any] func(ctx T) (bool, string)

// EntryGatingContext carries the inputs to the Entry Gating evaluator.
type EntryGatingContext struct {
	SystemOperational    bool
	BreakerBlockActive   bool
	ActiveSignalExists   bool
	CooldownActive       bool
	MarketOpen           bool
	SignatureAlreadySeen bool
}

// DefaultEntryGating is the safe-default evaluator used when the
// surrounding system has not wired a real one: it admits everything,
// matching the spec's "defensive defaults (everything safe)" contract.
func DefaultEntryGating(EntryGatingContext) (bool, string) { return true, "" }

// EntryGating ANDs the six admission predicates the spec defines.
func EntryGating(ctx EntryGatingContext) (bool, string) {
	switch {
	case !ctx.SystemOperational:
		return false, "system not operational"
	case ctx.BreakerBlockActive:
		return false, "breaker block active"
	case ctx.ActiveSignalExists:
		return false, "active duplicate signal exists"
	case ctx.CooldownActive:
		return false, "cooldown active"
	case !ctx.MarketOpen:
		return false, "market closed"
	case ctx.SignatureAlreadySeen:
		return false, "signature already seen"
	}
	return true, ""
}

// ConfidenceThresholdContext carries the inputs to the independent
// confidence-threshold evaluator (distinct from pipeline stage 11.6).
type ConfidenceThresholdContext struct {
	RawConfidence float64
	IsSell        bool
	BuyThreshold  float64
	SellThreshold float64
}

// DefaultConfidenceThreshold admits everything.
func DefaultConfidenceThreshold(ConfidenceThresholdContext) (bool, string) { return true, "" }

// ConfidenceThreshold checks raw confidence against a direction-specific
// threshold — config may set a stricter bar for SELL than BUY.
func ConfidenceThreshold(ctx ConfidenceThresholdContext) (bool, string) {
	threshold := ctx.BuyThreshold
	if ctx.IsSell {
		threshold = ctx.SellThreshold
	}
	if ctx.RawConfidence < threshold {
		return false, "confidence below direction-specific threshold"
	}
	return true, ""
}

// ExecutionEligibilityContext carries the inputs to the Execution
// Eligibility evaluator.
type ExecutionEligibilityContext struct {
	ExecutionReady            bool
	ExecutionLayerAvailable   bool
	SymbolExecutionLocked     bool
	PositionCapacityAvailable bool
	EmergencyHaltActive       bool
}

// DefaultExecutionEligibility admits everything.
func DefaultExecutionEligibility(ExecutionEligibilityContext) (bool, string) { return true, "" }

// ExecutionEligibility ANDs the five admission predicates the spec defines.
func ExecutionEligibility(ctx ExecutionEligibilityContext) (bool, string) {
	switch {
	case !ctx.ExecutionReady:
		return false, "execution state not ready"
	case !ctx.ExecutionLayerAvailable:
		return false, "execution layer unavailable"
	case ctx.SymbolExecutionLocked:
		return false, "symbol execution locked"
	case !ctx.PositionCapacityAvailable:
		return false, "position capacity exhausted"
	case ctx.EmergencyHaltActive:
		return false, "emergency halt active"
	}
	return true, ""
}

// RiskAdmissionContext carries the inputs to the Risk Admission evaluator.
type RiskAdmissionContext struct {
	SignalRisk        float64
	PerSignalCap      float64
	TotalOpenRisk     float64
	PortfolioCap      float64
	SymbolExposure    float64
	SymbolCap         float64
	DirectionExposure float64
	DirectionCap      float64
	DailyLoss         float64
	DailyLossCap      float64
}

// DefaultRiskAdmission admits everything.
func DefaultRiskAdmission(RiskAdmissionContext) (bool, string) { return true, "" }

// RiskAdmission ANDs the five bound checks the spec defines.
func RiskAdmission(ctx RiskAdmissionContext) (bool, string) {
	switch {
	case ctx.SignalRisk > ctx.PerSignalCap:
		return false, "per-signal risk exceeds cap"
	case ctx.TotalOpenRisk > ctx.PortfolioCap:
		return false, "total open risk exceeds portfolio cap"
	case ctx.SymbolExposure > ctx.SymbolCap:
		return false, "symbol exposure exceeds cap"
	case ctx.DirectionExposure > ctx.DirectionCap:
		return false, "direction exposure exceeds cap"
	case ctx.DailyLoss > ctx.DailyLossCap:
		return false, "daily loss exceeds cap"
	}
	return true, ""
}
