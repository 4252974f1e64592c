package entry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ict-signal-engine/internal/zone"
)

func TestSelectTooFarRejectsSixPercentGap(t *testing.T) {
	s := NewSelector()
	// current_price=100, FVG center=106 (6% away), direction=BEARISH.
	candidates := []Candidate{{Price: 106, Quality: 80, Distance: 0.06}}

	r := s.Select(100, zone.Bearish, candidates)
	assert.Equal(t, TooFar, r.Status)
}

func TestSelectValidWaitBufferZone(t *testing.T) {
	s := NewSelector()
	// current_price=100, FVG center=104.5, direction=BEARISH.
	candidates := []Candidate{{Price: 104.5, Quality: 75, Distance: 0.045}}

	r := s.Select(100, zone.Bearish, candidates)
	assert.Equal(t, ValidWait, r.Status)
	assert.Equal(t, 104.5, r.EntryPrice)
}

func TestSelectValidNearWithinThreePercent(t *testing.T) {
	s := NewSelector()
	candidates := []Candidate{{Price: 101.5, Quality: 90, Distance: 0.015}}

	r := s.Select(100, zone.Bullish, candidates)
	assert.Equal(t, ValidNear, r.Status)
}

func TestSelectFallbackWhenNoZoneInDirection(t *testing.T) {
	s := NewSelector()
	r := s.Select(100, zone.Bullish, nil)
	assert.Equal(t, ValidFallback, r.Status)
	assert.Equal(t, 100*(1-s.FallbackPct), r.EntryPrice)
	assert.Equal(t, s.FallbackQuality, r.Quality)
}

func TestSelectTooLateWhenOnlyTooCloseCandidates(t *testing.T) {
	s := NewSelector()
	candidates := []Candidate{{Price: 100.2, Quality: 70, Distance: 0.002}}
	r := s.Select(100, zone.Bullish, candidates)
	assert.Equal(t, TooLate, r.Status)
}

func TestSelectPrefersHigherPriority(t *testing.T) {
	s := NewSelector()
	// priority = quality * (1 - distance*10): 98@0.02 -> 48, 99@0.01 -> 81.
	candidates := []Candidate{
		{Price: 98, Quality: 60, Distance: 0.02},
		{Price: 99, Quality: 90, Distance: 0.01},
	}
	r := s.Select(100, zone.Bullish, candidates)
	assert.Equal(t, 99.0, r.EntryPrice)
}

func TestSelectRejectsNonPositiveCurrentPrice(t *testing.T) {
	s := NewSelector()
	r := s.Select(0, zone.Bullish, []Candidate{{Price: 10, Quality: 80, Distance: 0.01}})
	assert.Equal(t, NoZone, r.Status)
}

func TestSelectCarriesCandidateSourceThrough(t *testing.T) {
	s := NewSelector()
	candidates := []Candidate{{Price: 101.5, Quality: 90, Distance: 0.015, Source: SourceSR}}
	r := s.Select(100, zone.Bullish, candidates)
	assert.Equal(t, SourceSR, r.Source)
	assert.Equal(t, "below", r.DistanceDirection)
	assert.False(t, r.DistanceOutOfRange)
}

func TestSelectFallbackTagsSourceFallback(t *testing.T) {
	s := NewSelector()
	r := s.Select(100, zone.Bearish, nil)
	assert.Equal(t, SourceFallback, r.Source)
	assert.Equal(t, "above", r.DistanceDirection)
}

func TestSelectTooFarMarksDistanceOutOfRange(t *testing.T) {
	s := NewSelector()
	candidates := []Candidate{{Price: 106, Quality: 80, Distance: 0.06}}
	r := s.Select(100, zone.Bearish, candidates)
	assert.True(t, r.DistanceOutOfRange)
}
