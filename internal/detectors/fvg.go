// Package detectors carries reference implementations of the ICT primitive
// detectors the zone facade calls. The pipeline only depends on
// zone.DetectorFunc; these are not the pipeline's concern, but the pack has
// no separate detector-providing service, so this package gives the
// facade something real to drive in tests and in a standalone deployment.
//
// FVG detection is adapted directly from the teacher's
// internal/analysis/fvg.go three-bar-gap algorithm.
package detectors

import (
	"ict-signal-engine/internal/bar"
	"ict-signal-engine/internal/zone"
)

// FVGDetector finds three-bar Fair Value Gaps.
type FVGDetector struct {
	MinGapPercent float64
}

// NewFVGDetector builds a detector with the given minimum gap size as a
// percentage of the gap-adjacent price (0.1 if unset).
func NewFVGDetector(minGapPercent float64) *FVGDetector {
	if minGapPercent <= 0 {
		minGapPercent = 0.1
	}
	return &FVGDetector{MinGapPercent: minGapPercent}
}

// Detect satisfies zone.DetectorFunc.
func (d *FVGDetector) Detect(bars bar.Series, timeframe string) ([]zone.Zone, error) {
	if len(bars) < 3 {
		return nil, nil
	}

	var zones []zone.Zone
	for i := 0; i < len(bars)-2; i++ {
		c1, c3 := bars[i], bars[i+2]

		// Bullish FVG: gap between candle 1's high and candle 3's low.
		if c1.High < c3.Low {
			gapPct := (c3.Low - c1.High) / c1.High * 100
			if gapPct >= d.MinGapPercent {
				zones = append(zones, zone.Zone{
					Family:   zone.FamilyFVG,
					Low:      c1.High,
					High:     c3.Low,
					Type:     zone.Bullish,
					Strength: gapScoreToStrength(gapPct),
					BarIndex: i,
				})
			}
		}

		// Bearish FVG: gap between candle 1's low and candle 3's high.
		if c1.Low > c3.High {
			gapPct := (c1.Low - c3.High) / c3.High * 100
			if gapPct >= d.MinGapPercent {
				zones = append(zones, zone.Zone{
					Family:   zone.FamilyFVG,
					Low:      c3.High,
					High:     c1.Low,
					Type:     zone.Bearish,
					Strength: gapScoreToStrength(gapPct),
					BarIndex: i,
				})
			}
		}
	}

	return zones, nil
}

// gapScoreToStrength normalizes a gap-size percentage into a 0-100 quality
// score: a 2%+ gap is treated as maximal strength.
func gapScoreToStrength(gapPct float64) float64 {
	s := gapPct / 2.0 * 100
	if s > 100 {
		return 100
	}
	if s < 0 {
		return 0
	}
	return s
}

// IsFilled reports whether price has wicked back into the FVG's zone,
// matching the teacher's UpdateFVGStatus semantics.
func IsFilled(z zone.Zone, bars bar.Series) bool {
	for _, b := range bars {
		if z.Type == zone.Bullish {
			if b.Low <= z.High && b.Low >= z.Low {
				return true
			}
		} else if z.Type == zone.Bearish {
			if b.High >= z.Low && b.High <= z.High {
				return true
			}
		}
	}
	return false
}
