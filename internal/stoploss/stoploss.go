// Package stoploss computes a protective stop-loss candidate from ATR and
// swing-extreme inputs, then validates it against the reference order block
// with a numeric buffer before it can be attached to a signal.
package stoploss

import (
	"ict-signal-engine/internal/zone"
)

// Calculator computes the two-step SL candidate-then-validate sequence,
// grounded on the teacher's internal/risk/manager.go CanOpenPosition-style
// (bool, reason) return shape and internal/risk/trailing_stop.go's
// ATR-distance stop placement, generalized from a single trailing
// percentage into the zone-boundary-vs-swing-extreme "worse of two"
// candidate rule and the OB-relative validation pass the spec requires.
type Calculator struct {
	ATRMultiplier       float64 // 1.5
	MinEntryDistancePct float64 // 0.03  (3%), floor on the raw candidate
	MinValidDistancePct float64 // 0.005 (0.5%), floor after OB validation
	OBBufferMin         float64 // 0.002 (0.2%)
	OBBufferMax         float64 // 0.003 (0.3%)
}

// NewCalculator returns the spec-mandated defaults.
func NewCalculator() *Calculator {
	return &Calculator{
		ATRMultiplier:       1.5,
		MinEntryDistancePct: 0.03,
		MinValidDistancePct: 0.005,
		OBBufferMin:         0.002,
		OBBufferMax:         0.003,
	}
}

// Candidate computes the raw (pre-validation) SL from the zone boundary and
// the last-20-bar swing extreme, each offset by ATRMultiplier*atr, taking
// whichever is "worse" (more protective) for direction, then enforces the
// minimum entry-to-SL distance.
func (c *Calculator) Candidate(entry float64, direction zone.Direction, zoneLow, zoneHigh, swingExtreme, atr float64) float64 {
	offset := c.ATRMultiplier * atr

	var sl float64
	switch direction {
	case zone.Bullish:
		zoneBased := zoneLow - offset
		swingBased := swingExtreme - offset
		sl = min(zoneBased, swingBased) // lower = more protective

		floor := entry * (1 - c.MinEntryDistancePct)
		if sl > floor {
			sl = floor
		}
	case zone.Bearish:
		zoneBased := zoneHigh + offset
		swingBased := swingExtreme + offset
		sl = max(zoneBased, swingBased) // higher = more protective

		ceiling := entry * (1 + c.MinEntryDistancePct)
		if sl < ceiling {
			sl = ceiling
		}
	}
	return sl
}

// HasReference reports whether ob is a real detected order block rather than
// the zero-value zone.Zone{} standing in for "none found".
func HasReference(ob zone.Zone) bool {
	return ob.Low != 0 || ob.High != 0
}

// Validate checks the candidate SL against the reference order block and
// snaps it to a buffered boundary when it falls on the wrong side. It
// returns the (possibly adjusted) SL, whether the result is valid (false
// means the pipeline must emit a no-trade), and whether validation fell back
// to the unsnapped ATR candidate for lack of a reference order block.
//
// When no reference order block exists, strict mode rejects outright
// (ict_strict_sl_validation, default true); non-strict mode accepts the ATR
// candidate unsnapped and reports usedFallback so the caller can surface an
// sl_fallback_used warning.
func (c *Calculator) Validate(entry, candidate float64, direction zone.Direction, ob zone.Zone, strict bool) (sl float64, valid bool, usedFallback bool) {
	sl = candidate
	midBuffer := (c.OBBufferMin + c.OBBufferMax) / 2
	hasOB := HasReference(ob)

	if !hasOB {
		if strict {
			return candidate, false, false
		}
		usedFallback = true
	}

	switch direction {
	case zone.Bullish:
		if hasOB {
			maxAllowed := ob.Low * (1 - c.OBBufferMin)
			if sl >= maxAllowed {
				sl = ob.Low * (1 - midBuffer)
			}
		}
	case zone.Bearish:
		if hasOB {
			minAllowed := ob.High * (1 + c.OBBufferMin)
			if sl <= minAllowed {
				sl = ob.High * (1 + midBuffer)
			}
		}
	default:
		return candidate, false, false
	}

	dist := entry - sl
	if dist < 0 {
		dist = -dist
	}
	if entry <= 0 || dist/entry < c.MinValidDistancePct {
		return sl, false, usedFallback
	}

	return sl, true, usedFallback
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
