package bias

// Consensus is the rolled-up agreement of per-timeframe verdicts against a
// single target bias, grounded on the teacher's
// internal/analysis/timeframe.go TimeframeManager multi-timeframe-data
// shape, generalized from the teacher's raw per-TF trend dump into the
// aligned/conflicting/neutral/missing counts the spec's consensus formula
// needs.
type Consensus struct {
	Target      Bias
	Aligned     int
	Conflicting int
	Neutral     int
	Missing     int
	Breakdown   map[string]Verdict
	Percent     float64 // 0-100
}

// ComputeConsensus computes the MTF consensus across the fixed
// TimeframeOrder ladder. verdicts holds one Verdict per timeframe actually
// present in the input. When primaryTimeframe is on the ladder, its verdict
// is overridden to 100% confidence alignment, regardless of what Score
// computed for it; a primaryTimeframe outside the ladder gets no override.
func ComputeConsensus(target Bias, primaryTimeframe string, verdicts map[string]Verdict) Consensus {
	c := Consensus{Target: target, Breakdown: make(map[string]Verdict, len(verdicts))}

	for _, tf := range TimeframeOrder {
		v, ok := verdicts[tf]
		if tf == primaryTimeframe {
			v = Verdict{Timeframe: tf, Bias: target, Confidence: 100}
			ok = true
		}
		if !ok {
			c.Missing++
			continue
		}
		c.Breakdown[tf] = v

		switch {
		case v.Bias == target:
			c.Aligned++
		case isOpposite(v.Bias, target):
			c.Conflicting++
		default:
			c.Neutral++
		}
	}

	denom := c.Aligned + c.Conflicting
	switch {
	case denom == 0 && c.Aligned >= 1:
		c.Percent = 100
	case denom == 0:
		c.Percent = 0
	default:
		c.Percent = 100 * float64(c.Aligned) / float64(denom)
	}

	return c
}

// isOpposite reports whether a and b are the two directional biases on
// opposite sides — RANGING/NEUTRAL are never opposite to anything.
func isOpposite(a, b Bias) bool {
	if (a == Bullish && b == Bearish) || (a == Bearish && b == Bullish) {
		return true
	}
	return false
}
