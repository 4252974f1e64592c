package detectors

import (
	"ict-signal-engine/internal/bar"
	"ict-signal-engine/internal/indicator"
	"ict-signal-engine/internal/zone"
)

// FibonacciAnalyzer computes swing-based retracement/extension levels and
// the Optimal Trade Entry zone, adapted from the teacher's
// internal/strategy/indicators.go CalculateFibonacciLevels swing-range
// scan, extended with the 0.79 level and extensions the spec calls for.
type FibonacciAnalyzer struct {
	SwingLookback int
}

// NewFibonacciAnalyzer returns ICT-conventional defaults.
func NewFibonacciAnalyzer() *FibonacciAnalyzer {
	return &FibonacciAnalyzer{SwingLookback: 10}
}

// Compute satisfies zone.FibonacciFunc.
func (f *FibonacciAnalyzer) Compute(bars bar.Series) *zone.FibonacciData {
	highs := indicator.SwingHighs(bars, f.SwingLookback)
	lows := indicator.SwingLows(bars, f.SwingLookback)
	if len(highs) == 0 || len(lows) == 0 {
		return nil
	}

	swingHigh := highs[len(highs)-1]
	swingLow := lows[len(lows)-1]

	var high, low float64
	var bullishSwing bool
	if swingHigh.BarIndex > swingLow.BarIndex {
		// Most recent move was up into the high: measuring a bullish leg,
		// retracements pull back down from it.
		high, low = swingHigh.Price, swingLow.Price
		bullishSwing = true
	} else {
		high, low = swingHigh.Price, swingLow.Price
		bullishSwing = false
	}

	diff := high - low
	if diff <= 0 {
		return nil
	}

	retr := map[string]float64{
		"0.236": high - diff*0.236,
		"0.382": high - diff*0.382,
		"0.5":   high - diff*0.5,
		"0.618": high - diff*0.618,
		"0.62":  high - diff*0.62,
		"0.79":  high - diff*0.79,
	}
	ext := map[string]float64{
		"1.272": high + diff*0.272,
		"1.618": high + diff*0.618,
		"2.0":   high + diff,
	}

	oteLow, oteHigh := retr["0.79"], retr["0.62"]
	if !bullishSwing {
		// For a bearish leg the OTE band mirrors above the low toward the high.
		oteLow, oteHigh = low+diff*0.62, low+diff*0.79
	}

	return &zone.FibonacciData{
		SwingHigh:    high,
		SwingLow:     low,
		Retracements: retr,
		Extensions:   ext,
		OTELow:       oteLow,
		OTEHigh:      oteHigh,
	}
}
