package detectors

import (
	"ict-signal-engine/internal/bar"
	"ict-signal-engine/internal/indicator"
	"ict-signal-engine/internal/zone"
)

// SIBISSIBDetector finds the compound pattern the glossary defines as
// "displacement + FVG + liquidity void": a displacement move whose three
// consecutive candles also produced a Fair Value Gap, in either direction
// (Sell-Side Imbalance Buy-Side Inefficiency and its mirror). Only the FVG
// and the displacement dominance are checked; the liquidity-void part is
// not tested separately.
type SIBISSIBDetector struct {
	fvg          *FVGDetector
	MinDominance float64
}

// NewSIBISSIBDetector returns ICT-conventional defaults.
func NewSIBISSIBDetector() *SIBISSIBDetector {
	return &SIBISSIBDetector{fvg: NewFVGDetector(0.15), MinDominance: 1.6}
}

// Detect satisfies zone.DetectorFunc.
func (d *SIBISSIBDetector) Detect(bars bar.Series, timeframe string) ([]zone.Zone, error) {
	fvgs, err := d.fvg.Detect(bars, timeframe)
	if err != nil {
		return nil, err
	}

	var out []zone.Zone
	for _, f := range fvgs {
		if f.BarIndex+3 > len(bars) {
			continue
		}
		window := bars[f.BarIndex : f.BarIndex+3]
		ratio, bullish := indicator.DisplacementRatio(window, 3)
		if ratio < d.MinDominance {
			continue
		}
		if bullish != (f.Type == zone.Bullish) {
			continue
		}

		f.Family = zone.FamilySIBISSIB
		f.Strength = strengthFromRatio(ratio)
		out = append(out, f)
	}
	return out, nil
}
