package detectors

import (
	"ict-signal-engine/internal/bar"
	"ict-signal-engine/internal/indicator"
	"ict-signal-engine/internal/zone"
)

// WhaleBlockDetector finds order blocks with the glossary's "highest
// conviction" signature: exceptional volume spike, strong displacement,
// and minimal wicks. Grounded on the teacher's
// internal/analysis/volume.go volume-ratio/wick heuristics layered on top
// of OrderBlockDetector's displacement test.
type WhaleBlockDetector struct {
	ob               *OrderBlockDetector
	VolumeWindow     int
	MinVolumeSpike   float64 // current/median ratio required
	MaxWickFraction  float64 // wick must be below this fraction of body
}

// NewWhaleBlockDetector returns a detector with ICT-conventional defaults.
func NewWhaleBlockDetector() *WhaleBlockDetector {
	return &WhaleBlockDetector{
		ob:              NewOrderBlockDetector(),
		VolumeWindow:    20,
		MinVolumeSpike:  2.5,
		MaxWickFraction: 0.25,
	}
}

// Detect satisfies zone.DetectorFunc.
func (d *WhaleBlockDetector) Detect(bars bar.Series, timeframe string) ([]zone.Zone, error) {
	obZones, err := d.ob.Detect(bars, timeframe)
	if err != nil {
		return nil, err
	}

	var whales []zone.Zone
	for _, z := range obZones {
		if z.BarIndex < 0 || z.BarIndex >= len(bars) {
			continue
		}
		candle := bars[z.BarIndex]

		window := bars[:z.BarIndex+1]
		spike := indicator.VolumeSpike(window, d.VolumeWindow)
		if spike < d.MinVolumeSpike {
			continue
		}

		body := candle.BodySize()
		if body == 0 {
			continue
		}
		wickFraction := (candle.UpperWick() + candle.LowerWick()) / body
		if wickFraction > d.MaxWickFraction {
			continue
		}

		z.Family = zone.FamilyWhaleBlock
		z.Meta.VolumeSpike = spike
		z.Strength = whaleStrength(spike, z.Strength)
		whales = append(whales, z)
	}

	return whales, nil
}

func whaleStrength(spike, baseStrength float64) float64 {
	bonus := (spike - 2.0) * 10
	s := baseStrength + bonus
	if s > 100 {
		return 100
	}
	if s < 0 {
		return 0
	}
	return s
}
