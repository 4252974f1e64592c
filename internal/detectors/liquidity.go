package detectors

import (
	"math"

	"ict-signal-engine/internal/bar"
	"ict-signal-engine/internal/indicator"
	"ict-signal-engine/internal/zone"
)

// LiquidityZoneDetector finds clustered equal highs/lows — resting stop
// levels (BSL above clustered highs, SSL below clustered lows) — adapted
// from the teacher's internal/analysis/trend.go swing clustering
// (IdentifySupportLevels/IdentifyResistanceLevels) generalized into the
// zone model.
type LiquidityZoneDetector struct {
	SwingLookback int
	ClusterTolerance float64 // fractional price tolerance, e.g. 0.01 = 1%
}

// NewLiquidityZoneDetector returns ICT-conventional defaults.
func NewLiquidityZoneDetector() *LiquidityZoneDetector {
	return &LiquidityZoneDetector{SwingLookback: 5, ClusterTolerance: 0.0015}
}

// Detect satisfies zone.DetectorFunc.
func (d *LiquidityZoneDetector) Detect(bars bar.Series, timeframe string) ([]zone.Zone, error) {
	highs := indicator.SwingHighs(bars, d.SwingLookback)
	lows := indicator.SwingLows(bars, d.SwingLookback)

	var zones []zone.Zone
	zones = append(zones, d.cluster(highs, zone.BSL)...)
	zones = append(zones, d.cluster(lows, zone.SSL)...)
	return zones, nil
}

func (d *LiquidityZoneDetector) cluster(points []indicator.SwingPoint, side zone.Direction) []zone.Zone {
	type group struct {
		prices   []float64
		count    int
		barIndex int
	}
	var groups []group

	for _, p := range points {
		placed := false
		for i := range groups {
			mean := groups[i].prices[0]
			if math.Abs(p.Price-mean)/mean <= d.ClusterTolerance {
				groups[i].prices = append(groups[i].prices, p.Price)
				groups[i].count++
				if p.BarIndex > groups[i].barIndex {
					groups[i].barIndex = p.BarIndex
				}
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, group{prices: []float64{p.Price}, count: 1, barIndex: p.BarIndex})
		}
	}

	var zones []zone.Zone
	for _, g := range groups {
		if g.count < 2 {
			continue
		}
		lo, hi := g.prices[0], g.prices[0]
		sum := 0.0
		for _, p := range g.prices {
			if p < lo {
				lo = p
			}
			if p > hi {
				hi = p
			}
			sum += p
		}
		strength := float64(g.count) * 25
		if strength > 100 {
			strength = 100
		}
		zones = append(zones, zone.Zone{
			Family:   zone.FamilyLiquidityZone,
			Low:      lo,
			High:     hi,
			Type:     side,
			Strength: strength,
			BarIndex: g.barIndex,
			Meta:     zone.Meta{RetestCount: g.count},
		})
	}
	return zones
}

// InternalLiquidityDetector finds unmitigated internal swing points between
// the most recent major high and low — liquidity resting inside the
// current dealing range rather than at its extremes.
type InternalLiquidityDetector struct {
	SwingLookback int
}

// NewInternalLiquidityDetector returns ICT-conventional defaults.
func NewInternalLiquidityDetector() *InternalLiquidityDetector {
	return &InternalLiquidityDetector{SwingLookback: 3}
}

// Detect satisfies zone.DetectorFunc.
func (d *InternalLiquidityDetector) Detect(bars bar.Series, timeframe string) ([]zone.Zone, error) {
	highs := indicator.SwingHighs(bars, d.SwingLookback)
	lows := indicator.SwingLows(bars, d.SwingLookback)
	if len(highs) == 0 || len(lows) == 0 {
		return nil, nil
	}

	var zones []zone.Zone
	// Internal highs: every swing high except the most recent (the major
	// high anchors the range; earlier ones sit inside it as internal
	// liquidity).
	for i := 0; i < len(highs)-1; i++ {
		h := highs[i]
		zones = append(zones, zone.Zone{
			Family:   zone.FamilyInternalLiquidity,
			Low:      h.Price * 0.999,
			High:     h.Price,
			Type:     zone.BSL,
			Strength: 40,
			BarIndex: h.BarIndex,
		})
	}
	for i := 0; i < len(lows)-1; i++ {
		l := lows[i]
		zones = append(zones, zone.Zone{
			Family:   zone.FamilyInternalLiquidity,
			Low:      l.Price,
			High:     l.Price * 1.001,
			Type:     zone.SSL,
			Strength: 40,
			BarIndex: l.BarIndex,
		})
	}
	return zones, nil
}

// LiquiditySweepDetector finds a swing point that price pierced intrabar
// and then immediately rejected — a stop hunt. Grounded on the wick-vs-body
// heuristics in internal/analysis/volume.go DetermineVolumeType.
type LiquiditySweepDetector struct {
	SwingLookback int
	MinWickToBodyRatio float64
}

// NewLiquiditySweepDetector returns ICT-conventional defaults.
func NewLiquiditySweepDetector() *LiquiditySweepDetector {
	return &LiquiditySweepDetector{SwingLookback: 5, MinWickToBodyRatio: 2.0}
}

// Detect satisfies zone.DetectorFunc.
func (d *LiquiditySweepDetector) Detect(bars bar.Series, timeframe string) ([]zone.Zone, error) {
	highs := indicator.SwingHighs(bars, d.SwingLookback)
	lows := indicator.SwingLows(bars, d.SwingLookback)

	var zones []zone.Zone
	for i := range bars {
		candle := bars[i]
		body := candle.BodySize()
		if body == 0 {
			continue
		}

		for _, h := range highs {
			if h.BarIndex >= i {
				continue
			}
			if candle.High > h.Price && candle.Close < h.Price && candle.UpperWick()/body >= d.MinWickToBodyRatio {
				zones = append(zones, zone.Zone{
					Family:   zone.FamilyLiquiditySweep,
					Low:      h.Price,
					High:     candle.High,
					Type:     zone.Bearish,
					Strength: 60,
					BarIndex: i,
				})
			}
		}
		for _, l := range lows {
			if l.BarIndex >= i {
				continue
			}
			if candle.Low < l.Price && candle.Close > l.Price && candle.LowerWick()/body >= d.MinWickToBodyRatio {
				zones = append(zones, zone.Zone{
					Family:   zone.FamilyLiquiditySweep,
					Low:      candle.Low,
					High:     l.Price,
					Type:     zone.Bullish,
					Strength: 60,
					BarIndex: i,
				})
			}
		}
	}
	return zones, nil
}
