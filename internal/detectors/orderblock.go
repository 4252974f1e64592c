package detectors

import (
	"ict-signal-engine/internal/bar"
	"ict-signal-engine/internal/indicator"
	"ict-signal-engine/internal/zone"
)

// OrderBlockDetector finds the last opposite-color candle before a strong
// directional move — the glossary's definition of an order block — using
// the same displacement-dominance test the bias computer and confidence
// scorer use (cumulative body size dominating the opposite side by the
// configured multiplier).
type OrderBlockDetector struct {
	DisplacementWindow int     // bars following the candidate candle to test for displacement
	MinDominance       float64 // e.g. 1.6
	MinStrengthFilter  float64 // drop zones scoring below this 0-100 strength
}

// NewOrderBlockDetector returns a detector with ICT-conventional defaults.
func NewOrderBlockDetector() *OrderBlockDetector {
	return &OrderBlockDetector{DisplacementWindow: 3, MinDominance: 1.6, MinStrengthFilter: 20}
}

// Detect satisfies zone.DetectorFunc.
func (d *OrderBlockDetector) Detect(bars bar.Series, timeframe string) ([]zone.Zone, error) {
	if len(bars) < d.DisplacementWindow+2 {
		return nil, nil
	}

	var zones []zone.Zone
	for i := 0; i < len(bars)-d.DisplacementWindow-1; i++ {
		candidate := bars[i]
		move := bars[i+1 : i+1+d.DisplacementWindow]
		ratio, bullishMove := indicator.DisplacementRatio(move, d.DisplacementWindow)
		if ratio < d.MinDominance {
			continue
		}

		// Bullish OB: last bearish candle before a dominant bullish move.
		if bullishMove && candidate.IsBearish() {
			strength := strengthFromRatio(ratio)
			if strength < d.MinStrengthFilter {
				continue
			}
			zones = append(zones, zone.Zone{
				Family:   zone.FamilyOrderBlock,
				Low:      candidate.Low,
				High:     candidate.High,
				Type:     zone.Bullish,
				Strength: strength,
				BarIndex: i,
				Meta:     zone.Meta{DisplacementPct: ratio},
			})
		}

		// Bearish OB: last bullish candle before a dominant bearish move.
		if !bullishMove && candidate.IsBullish() {
			strength := strengthFromRatio(ratio)
			if strength < d.MinStrengthFilter {
				continue
			}
			zones = append(zones, zone.Zone{
				Family:   zone.FamilyOrderBlock,
				Low:      candidate.Low,
				High:     candidate.High,
				Type:     zone.Bearish,
				Strength: strength,
				BarIndex: i,
				Meta:     zone.Meta{DisplacementPct: ratio},
			})
		}
	}

	return zones, nil
}

func strengthFromRatio(ratio float64) float64 {
	// 1.6x dominance -> 20 strength, 4x+ -> 100.
	s := (ratio - 1.0) / 3.0 * 100
	if s > 100 {
		return 100
	}
	if s < 0 {
		return 0
	}
	return s
}
