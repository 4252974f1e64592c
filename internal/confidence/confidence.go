// Package confidence scores a candidate signal as a weighted sum over
// detected components, each capped, followed by multiplicative soft
// penalties for weak directional conviction.
package confidence

import "fmt"

// Components carries every input the scorer weighs, grounded on the
// teacher's internal/confluence/scorer.go CalculateConfluence component
// list, generalized from its five trend/pattern/volume/fvg/indicator
// inputs into the spec's fifteen ICT-specific contributions.
type Components struct {
	StructureBreak     bool // BOS/CHOCH in last 5 bars
	WhaleBlockCount    int
	LiquidityZoneCount int
	OrderBlockCount    int
	FVGCount           int
	AlignedTimeframes  int
	BreakerBlockCount  int
	MitigationBlockCount int
	SIBISSIBCount      int
	DisplacementRecent bool // last 3 bars
	RiskRewardRatio    float64

	LuxAlgoSRProximityPct float64 // fractional distance to nearest S/R, e.g. 0.015; meaningful only when HasLuxAlgoSR
	HasLuxAlgoSR          bool   // whether a LuxAlgo S/R level was actually found; false means no proximity credit
	LuxAlgoBiasAligned    bool
	LuxAlgoEntryValid     bool
	InFibonacciOTE        bool

	// Penalty inputs.
	BiasNeutralOrRanging bool
	AltIndependentRescue bool // own-structure rescued an ALT-independent symbol from HTF, -20% extra
	HTFNonDirectional    bool // -35% extra
	BothNonDirectional   bool // -40% extra (supersedes the above two)
	EntryDistancePct     float64
	HasEntryDistance     bool // whether an entry zone was actually selected; false skips the distance penalty

	NearestLiquidityWithinTwoPctAligned bool // up to +5%
	RecentSweepOurDirection             bool // within 4h, up to +3%
}

// Breakdown is the per-component contribution, for diagnostics/reasoning.
type Breakdown struct {
	Label string
	Value float64
}

// Score computes the final [0,100] confidence and the ordered contribution
// breakdown used to build the signal's reasoning string.
func Score(c Components) (total float64, breakdown []Breakdown) {
	add := func(label string, v float64) {
		breakdown = append(breakdown, Breakdown{Label: label, Value: v})
		total += v
	}

	if c.StructureBreak {
		add("structure break", 20)
	}
	add("whale blocks", capped(float64(c.WhaleBlockCount)*10, 25))
	add("liquidity zones", capped(float64(c.LiquidityZoneCount)*5, 20))
	add("order blocks", capped(float64(c.OrderBlockCount)*5, 15))
	add("fvgs", capped(float64(c.FVGCount)*3, 10))
	add("mtf confluence", capped(float64(c.AlignedTimeframes)*3, 10))
	add("breaker blocks", capped(float64(c.BreakerBlockCount)*3, 8))
	add("mitigation blocks", capped(float64(c.MitigationBlockCount), 5))
	add("sibi/ssib", capped(float64(c.SIBISSIBCount), 5))
	if c.DisplacementRecent {
		add("displacement bonus", 10)
	}
	add("r:r bonus", capped(c.RiskRewardRatio/2*5, 10))
	if c.HasLuxAlgoSR && c.LuxAlgoSRProximityPct >= 0 && c.LuxAlgoSRProximityPct <= 0.02 {
		add("luxalgo s/r proximity", 15)
	}
	if c.LuxAlgoBiasAligned {
		add("luxalgo bias alignment", 10)
	}
	if c.LuxAlgoEntryValid {
		add("luxalgo entry validation", 10)
	}
	if c.InFibonacciOTE {
		add("fibonacci ote zone", 10)
	}

	total *= penaltyMultiplier(c)

	if c.HasEntryDistance && c.EntryDistancePct < 0.005 {
		total *= 0.9
		breakdown = append(breakdown, Breakdown{Label: "entry distance penalty", Value: -1})
	}

	if c.NearestLiquidityWithinTwoPctAligned {
		total *= 1.05
		breakdown = append(breakdown, Breakdown{Label: "liquidity alignment boost", Value: 1})
	}
	if c.RecentSweepOurDirection {
		total *= 1.03
		breakdown = append(breakdown, Breakdown{Label: "recent liquidity sweep boost", Value: 1})
	}

	return clamp(total), breakdown
}

// penaltyMultiplier applies the NEUTRAL/RANGING baseline penalty (x0.8)
// stacked with an additional origin-specific multiplier: 0.20 for an
// ALT-independent own-structure rescue, 0.35 for a non-directional HTF,
// 0.40 when both HTF and own structure are non-directional.
func penaltyMultiplier(c Components) float64 {
	if !c.BiasNeutralOrRanging {
		return 1.0
	}

	extra := 0.0
	switch {
	case c.BothNonDirectional:
		extra = 0.40
	case c.HTFNonDirectional:
		extra = 0.35
	case c.AltIndependentRescue:
		extra = 0.20
	}

	return 0.8 * (1 - extra)
}

func capped(v, cap float64) float64 {
	if v > cap {
		return cap
	}
	if v < 0 {
		return 0
	}
	return v
}

func clamp(v float64) float64 {
	if v > 100 {
		return 100
	}
	if v < 0 {
		return 0
	}
	return v
}

// Reason renders a breakdown entry as a human-readable reasoning line.
func Reason(b Breakdown) string {
	return fmt.Sprintf("%s: %.1f", b.Label, b.Value)
}
