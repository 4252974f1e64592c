// Package entry selects an entry zone for a directional signal from the
// detected FVG/order-block/support-resistance candidates, enforcing the
// universal 5% freshness bound the spec applies to every timeframe.
package entry

import (
	"ict-signal-engine/internal/zone"
)

// Status is the outcome of zone selection.
type Status string

const (
	ValidNear     Status = "VALID_NEAR"
	ValidWait     Status = "VALID_WAIT"
	TooFar        Status = "TOO_FAR"
	TooLate       Status = "TOO_LATE"
	NoZone        Status = "NO_ZONE"
	ValidFallback Status = "VALID_FALLBACK"
)

// Source names which detector family an entry candidate came from.
type Source string

const (
	SourceFVG      Source = "FVG"
	SourceOB       Source = "OB"
	SourceSR       Source = "SR"
	SourceFallback Source = "FALLBACK"
)

// Candidate is one zone eligible to become the entry zone.
type Candidate struct {
	Price    float64 // representative price (zone center)
	Quality  float64 // 0-100
	Distance float64 // fractional distance from current price, e.g. 0.012 = 1.2%
	Source   Source
}

// Result is the chosen entry zone, or a rejection status with no zone.
type Result struct {
	Status      Status
	EntryPrice  float64
	Low         float64
	High        float64
	Quality     float64
	DistancePct float64
	Source      Source

	// DistanceDirection is "below" the current price for a BULLISH entry and
	// "above" it for a BEARISH one, independent of whether a zone was found.
	DistanceDirection string
	// DistanceOutOfRange is true when no candidate inside the allowed
	// distance band could be selected (TOO_FAR or TOO_LATE).
	DistanceOutOfRange bool
}

// Selector picks an entry zone against directional constraints, grounded on
// the teacher's internal/confluence/scorer.go proximity-to-FVG scoring
// shape and internal/strategy/swing_trading.go entry-distance checks,
// generalized into the spec's VALID_NEAR/VALID_WAIT/TOO_FAR/TOO_LATE/
// NO_ZONE/VALID_FALLBACK state machine.
type Selector struct {
	MinDistancePct     float64 // 0.005 (0.5%)
	NearUpperPct       float64 // 0.03  (3%)
	MaxDistancePct     float64 // 0.05  (5%), universal across all timeframes
	ZoneBufferPct      float64 // 0.002 (0.2%) widening around the chosen center
	FallbackPct        float64 // 0.01  (1%)
	FallbackQuality    float64 // 40
}

// NewSelector returns the spec-mandated defaults.
func NewSelector() *Selector {
	return &Selector{
		MinDistancePct:  0.005,
		NearUpperPct:    0.03,
		MaxDistancePct:  0.05,
		ZoneBufferPct:   0.002,
		FallbackPct:     0.01,
		FallbackQuality: 40,
	}
}

// Select picks the best entry zone for direction at currentPrice from a set
// of zone-derived candidates (built by the caller from FVGs, order blocks,
// and support/resistance levels in the correct direction, i.e. below
// currentPrice for BULLISH and above for BEARISH).
func (s *Selector) Select(currentPrice float64, direction zone.Direction, candidates []Candidate) Result {
	distanceDirection := directionLabel(direction)

	if currentPrice <= 0 {
		return Result{Status: NoZone, DistanceDirection: distanceDirection}
	}

	var best *Candidate
	var bestPriority float64
	var anyTooClose, anyTooFar bool

	for i := range candidates {
		c := candidates[i]
		if c.Distance < 0 {
			continue // caller is expected to have filtered to the correct side already
		}
		if c.Distance > s.MaxDistancePct {
			anyTooFar = true
			continue // stale, excluded entirely
		}
		if c.Distance < s.MinDistancePct {
			anyTooClose = true
			continue
		}

		priority := c.Quality * (1 - c.Distance*10)
		if best == nil || priority > bestPriority {
			cc := c
			best = &cc
			bestPriority = priority
		}
	}

	if best == nil {
		if anyTooClose {
			return Result{Status: TooLate, DistanceDirection: distanceDirection, DistanceOutOfRange: true}
		}
		if anyTooFar {
			return Result{Status: TooFar, DistanceDirection: distanceDirection, DistanceOutOfRange: true}
		}
		return s.fallback(currentPrice, direction, distanceDirection)
	}

	status := ValidWait
	if best.Distance <= s.NearUpperPct {
		status = ValidNear
	}

	low, high := s.widen(best.Price)
	return Result{
		Status:            status,
		EntryPrice:        best.Price,
		Low:               low,
		High:              high,
		Quality:           best.Quality,
		DistancePct:       best.Distance,
		Source:            best.Source,
		DistanceDirection: distanceDirection,
	}
}

func (s *Selector) fallback(currentPrice float64, direction zone.Direction, distanceDirection string) Result {
	var price float64
	switch direction {
	case zone.Bullish:
		price = currentPrice * (1 - s.FallbackPct)
	case zone.Bearish:
		price = currentPrice * (1 + s.FallbackPct)
	default:
		return Result{Status: NoZone, DistanceDirection: distanceDirection}
	}

	low, high := s.widen(price)
	return Result{
		Status:            ValidFallback,
		EntryPrice:        price,
		Low:               low,
		High:              high,
		Quality:           s.FallbackQuality,
		DistancePct:       s.FallbackPct,
		Source:            SourceFallback,
		DistanceDirection: distanceDirection,
	}
}

func directionLabel(direction zone.Direction) string {
	switch direction {
	case zone.Bullish:
		return "below"
	case zone.Bearish:
		return "above"
	}
	return ""
}

func (s *Selector) widen(center float64) (low, high float64) {
	buf := center * s.ZoneBufferPct
	return center - buf, center + buf
}
