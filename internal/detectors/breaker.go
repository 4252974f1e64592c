package detectors

import (
	"ict-signal-engine/internal/bar"
	"ict-signal-engine/internal/zone"
)

// BreakerBlockDetector flips order blocks whose polarity has been breached
// — a former bullish OB that price has closed through becomes resistance
// (and vice versa), per the glossary definition.
type BreakerBlockDetector struct {
	ob              *OrderBlockDetector
	InvalidationPct float64 // fraction of zone height price must close beyond
}

// NewBreakerBlockDetector returns ICT-conventional defaults.
func NewBreakerBlockDetector() *BreakerBlockDetector {
	return &BreakerBlockDetector{ob: NewOrderBlockDetector(), InvalidationPct: 0.1}
}

// Detect satisfies zone.DetectorFunc.
func (d *BreakerBlockDetector) Detect(bars bar.Series, timeframe string) ([]zone.Zone, error) {
	obZones, err := d.ob.Detect(bars, timeframe)
	if err != nil {
		return nil, err
	}

	var breakers []zone.Zone
	for _, z := range obZones {
		if z.BarIndex+1 >= len(bars) {
			continue
		}
		height := z.High - z.Low
		future := bars[z.BarIndex+1:]

		for _, f := range future {
			if z.Type == zone.Bullish && f.Close < z.Low-height*d.InvalidationPct {
				breakers = append(breakers, zone.Zone{
					Family:   zone.FamilyBreakerBlock,
					Low:      z.Low,
					High:     z.High,
					Type:     zone.Bearish,
					Strength: z.Strength * 0.8,
					BarIndex: z.BarIndex,
					Meta:     zone.Meta{Mitigated: true},
				})
				break
			}
			if z.Type == zone.Bearish && f.Close > z.High+height*d.InvalidationPct {
				breakers = append(breakers, zone.Zone{
					Family:   zone.FamilyBreakerBlock,
					Low:      z.Low,
					High:     z.High,
					Type:     zone.Bullish,
					Strength: z.Strength * 0.8,
					BarIndex: z.BarIndex,
					Meta:     zone.Meta{Mitigated: true},
				})
				break
			}
		}
	}
	return breakers, nil
}

// MitigationBlockDetector finds order blocks partially revisited by price
// but not yet invalidated — still active per the glossary's "still active
// if revisit < threshold" rule.
type MitigationBlockDetector struct {
	ob             *OrderBlockDetector
	MitigationPct  float64 // revisit depth into the zone, as a fraction of height
}

// NewMitigationBlockDetector returns ICT-conventional defaults.
func NewMitigationBlockDetector() *MitigationBlockDetector {
	return &MitigationBlockDetector{ob: NewOrderBlockDetector(), MitigationPct: 0.5}
}

// Detect satisfies zone.DetectorFunc.
func (d *MitigationBlockDetector) Detect(bars bar.Series, timeframe string) ([]zone.Zone, error) {
	obZones, err := d.ob.Detect(bars, timeframe)
	if err != nil {
		return nil, err
	}

	var mitigated []zone.Zone
	for _, z := range obZones {
		if z.BarIndex+1 >= len(bars) {
			continue
		}
		height := z.High - z.Low
		if height <= 0 {
			continue
		}
		future := bars[z.BarIndex+1:]

		revisits := 0
		deepestFraction := 0.0
		for _, f := range future {
			var depth float64
			switch z.Type {
			case zone.Bullish:
				if f.Low <= z.High {
					depth = (z.High - f.Low) / height
				}
			case zone.Bearish:
				if f.High >= z.Low {
					depth = (f.High - z.Low) / height
				}
			}
			if depth > 0 {
				revisits++
				if depth > deepestFraction {
					deepestFraction = depth
				}
			}
		}

		if revisits == 0 || deepestFraction >= 1.0 {
			continue // never touched, or fully invalidated (a breaker, not a mitigation block)
		}

		z.Family = zone.FamilyMitigationBlock
		z.Meta.RetestCount = revisits
		z.Meta.Mitigated = deepestFraction >= d.MitigationPct
		mitigated = append(mitigated, z)
	}
	return mitigated, nil
}
