// Package bias computes a per-timeframe directional verdict from market
// structure, order-block asymmetry, and recent displacement — deliberately
// without moving averages — and rolls per-timeframe verdicts up into a
// multi-timeframe consensus percentage.
package bias

import (
	"ict-signal-engine/internal/bar"
	"ict-signal-engine/internal/indicator"
	"ict-signal-engine/internal/zone"
)

// Bias is a directional verdict for a single timeframe.
type Bias string

const (
	Bullish  Bias = "BULLISH"
	Bearish  Bias = "BEARISH"
	Ranging  Bias = "RANGING"
	Neutral  Bias = "NEUTRAL"
)

// TimeframeOrder lists the fixed consensus ladder the spec enumerates, from
// fastest to slowest. Callers supply whichever subset they have bars for.
var TimeframeOrder = []string{"1m", "3m", "5m", "15m", "30m", "1h", "2h", "4h", "6h", "12h", "1d", "3d", "1w"}

// Verdict is the outcome of scoring one timeframe.
type Verdict struct {
	Timeframe  string
	Bias       Bias
	Confidence float64 // 0-100
}

// Computer scores a single timeframe's bars into a Verdict using market
// structure (50-60pts), order-block count asymmetry (30pts), and recent
// displacement (10-20pts), grounded on the teacher's
// internal/analysis/trend.go TrendAnalyzer.DetermineTrend /
// CalculateTrendStrength swing-counting shape, generalized to ICT order
// blocks instead of the teacher's raw swing-count trend.
type Computer struct {
	SwingLookback      int
	StructureLookback  int // swings considered for structure score
	OBLookback         int // bars considered for order-block asymmetry
	DisplacementWindow int

	// Detect is the order-block detector used for the asymmetry component.
	// Defaults to detectors.NewOrderBlockDetector().Detect when nil via
	// NewComputer; exposed here so callers can swap detectors without an
	// import cycle (bias must not depend on detectors).
	Detect zone.DetectorFunc
}

// NewComputer builds a Computer with ICT-conventional defaults. obDetect is
// the order-block DetectorFunc to use for the asymmetry component (normally
// detectors.NewOrderBlockDetector().Detect).
func NewComputer(obDetect zone.DetectorFunc) *Computer {
	return &Computer{
		SwingLookback:      5,
		StructureLookback:  20,
		OBLookback:         20,
		DisplacementWindow: 5,
		Detect:             obDetect,
	}
}

// Score computes the Bias and confidence for one timeframe's bars.
func (c *Computer) Score(bars bar.Series, timeframe string) Verdict {
	if len(bars) < c.SwingLookback*2+2 {
		return Verdict{Timeframe: timeframe, Bias: Neutral, Confidence: 0}
	}

	structureScore, structureBullish, structureBearish := c.structureScore(bars)
	obScore, obBullish, obBearish := c.orderBlockScore(bars, timeframe)
	dispScore, dispBullish := c.displacementScore(bars)

	var bullTotal, bearTotal float64
	if structureBullish {
		bullTotal += structureScore
	} else if structureBearish {
		bearTotal += structureScore
	}
	if obBullish {
		bullTotal += obScore
	} else if obBearish {
		bearTotal += obScore
	}
	if dispBullish {
		bullTotal += dispScore
	} else {
		bearTotal += dispScore
	}

	dominant := bullTotal
	b := Bullish
	if bearTotal > bullTotal {
		dominant = bearTotal
		b = Bearish
	}

	gap := bullTotal - bearTotal
	if gap < 0 {
		gap = -gap
	}

	switch {
	case dominant >= 70 && gap >= 20:
		return Verdict{Timeframe: timeframe, Bias: b, Confidence: clamp(dominant)}
	case gap < 20 && (bullTotal > 0 || bearTotal > 0):
		return Verdict{Timeframe: timeframe, Bias: Ranging, Confidence: clamp(dominant)}
	default:
		return Verdict{Timeframe: timeframe, Bias: Neutral, Confidence: clamp(dominant)}
	}
}

// structureScore evaluates the last ~20 swings: BULLISH on recent
// higher-highs+higher-lows, BEARISH on lower-highs+lower-lows, weight 50-60.
func (c *Computer) structureScore(bars bar.Series) (score float64, bullish, bearish bool) {
	highs := indicator.SwingHighs(bars, c.SwingLookback)
	lows := indicator.SwingLows(bars, c.SwingLookback)
	highs = lastN(highs, c.StructureLookback)
	lows = lastN(lows, c.StructureLookback)

	hh, lh := countDirection(highs)
	hl, ll := countDirection(lows)

	total := hh + lh + hl + ll
	if total == 0 {
		return 0, false, false
	}

	bullishSwings := hh + hl
	bearishSwings := lh + ll

	if bullishSwings >= bearishSwings {
		strength := float64(bullishSwings) / float64(total)
		return 50 + strength*10, true, false
	}
	strength := float64(bearishSwings) / float64(total)
	return 50 + strength*10, false, true
}

// countDirection walks consecutive swing points of the same kind (highs or
// lows) and counts how many are higher vs. lower than their predecessor.
func countDirection(points []indicator.SwingPoint) (higher, lower int) {
	for i := 1; i < len(points); i++ {
		if points[i].Price > points[i-1].Price {
			higher++
		} else if points[i].Price < points[i-1].Price {
			lower++
		}
	}
	return higher, lower
}

func lastN(points []indicator.SwingPoint, n int) []indicator.SwingPoint {
	if len(points) <= n {
		return points
	}
	return points[len(points)-n:]
}

// orderBlockScore counts bullish vs. bearish order blocks over the last
// OBLookback bars and scores the asymmetry out of 30.
func (c *Computer) orderBlockScore(bars bar.Series, timeframe string) (score float64, bullish, bearish bool) {
	if c.Detect == nil {
		return 0, false, false
	}
	window := bars
	if len(bars) > c.OBLookback {
		window = bars[len(bars)-c.OBLookback:]
	}

	zones, err := c.Detect(window, timeframe)
	if err != nil || len(zones) == 0 {
		return 0, false, false
	}

	var bullCount, bearCount int
	for _, z := range zones {
		if z.Type == zone.Bullish {
			bullCount++
		} else if z.Type == zone.Bearish {
			bearCount++
		}
	}
	total := bullCount + bearCount
	if total == 0 {
		return 0, false, false
	}

	if bullCount >= bearCount {
		return 30 * float64(bullCount) / float64(total), true, false
	}
	return 30 * float64(bearCount) / float64(total), false, true
}

// displacementScore evaluates the cumulative directional body size over the
// last DisplacementWindow bars, scoring 10-20 when it dominates the opposite
// side by at least 1.6x.
func (c *Computer) displacementScore(bars bar.Series) (score float64, bullish bool) {
	window := bars
	if len(bars) > c.DisplacementWindow {
		window = bars[len(bars)-c.DisplacementWindow:]
	}
	ratio, bull := indicator.DisplacementRatio(window, c.DisplacementWindow)
	if ratio < 1.6 {
		return 0, bull
	}
	s := 10 + (ratio-1.6)/2.4*10 // 1.6x -> 10, 4.0x+ -> 20
	if s > 20 {
		s = 20
	}
	return s, bull
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
