package detectors

import (
	"math"

	"ict-signal-engine/internal/bar"
	"ict-signal-engine/internal/indicator"
	"ict-signal-engine/internal/zone"
)

// LuxAlgoSRAnalyzer reproduces the optional clustered support/resistance
// overlay, adapted from the teacher's internal/analysis/trend.go
// IdentifySupportLevels/IdentifyResistanceLevels clustering, generalized
// into zone.SRLevel.
type LuxAlgoSRAnalyzer struct {
	SwingLookback    int
	ClusterTolerance float64
}

// NewLuxAlgoSRAnalyzer returns ICT-conventional defaults.
func NewLuxAlgoSRAnalyzer() *LuxAlgoSRAnalyzer {
	return &LuxAlgoSRAnalyzer{SwingLookback: 5, ClusterTolerance: 0.01}
}

// Compute satisfies zone.SRFunc.
func (a *LuxAlgoSRAnalyzer) Compute(bars bar.Series) []zone.SRLevel {
	highs := indicator.SwingHighs(bars, a.SwingLookback)
	lows := indicator.SwingLows(bars, a.SwingLookback)

	var levels []zone.SRLevel
	levels = append(levels, a.cluster(highs, zone.Bearish)...)
	levels = append(levels, a.cluster(lows, zone.Bullish)...)
	return levels
}

func (a *LuxAlgoSRAnalyzer) cluster(points []indicator.SwingPoint, kind zone.Direction) []zone.SRLevel {
	var levels []zone.SRLevel
	for _, p := range points {
		placed := false
		for i := range levels {
			if math.Abs(p.Price-levels[i].Price)/levels[i].Price < a.ClusterTolerance {
				levels[i].Price = (levels[i].Price + p.Price) / 2
				levels[i].Touches++
				placed = true
				break
			}
		}
		if !placed {
			levels = append(levels, zone.SRLevel{Price: p.Price, Type: kind, Touches: 1})
		}
	}

	for i := range levels {
		strength := float64(levels[i].Touches) * 20
		if strength > 100 {
			strength = 100
		}
		levels[i].Strength = strength
	}
	return levels
}
