package stoploss

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ict-signal-engine/internal/zone"
)

func TestCandidateEnforcesThreePercentFloorBullish(t *testing.T) {
	c := NewCalculator()
	// zone/swing extremes close to entry; ATR offset small -> floor should bind.
	sl := c.Candidate(50000, zone.Bullish, 49900, 0, 49850, 10)
	floor := 50000 * 0.97
	assert.LessOrEqual(t, sl, floor)
}

func TestValidateSnapsWhenInsideOrAboveOB(t *testing.T) {
	c := NewCalculator()
	ob := zone.Zone{Low: 49500, High: 49800}
	// candidate sits above the OB-implied max allowed boundary.
	sl, valid, usedFallback := c.Validate(50000, 49600, zone.Bullish, ob, true)
	assert.True(t, valid)
	assert.False(t, usedFallback)
	maxAllowed := 49500 * 0.998
	assert.Less(t, sl, maxAllowed)
}

func TestValidateKeepsStricterATRCandidate(t *testing.T) {
	c := NewCalculator()
	ob := zone.Zone{Low: 49500, High: 49800}
	// candidate already respects the 3% floor and sits well below the OB boundary.
	sl, valid, usedFallback := c.Validate(50000, 48500, zone.Bullish, ob, true)
	assert.True(t, valid)
	assert.False(t, usedFallback)
	assert.Equal(t, 48500.0, sl)
}

func TestValidateRejectsWhenTooCloseToEntry(t *testing.T) {
	c := NewCalculator()
	ob := zone.Zone{Low: 49990, High: 49999}
	_, valid, _ := c.Validate(50000, 49995, zone.Bullish, ob, true)
	assert.False(t, valid)
}

func TestCandidateBearishSymmetry(t *testing.T) {
	c := NewCalculator()
	sl := c.Candidate(50000, zone.Bearish, 0, 50200, 50250, 10)
	ceiling := 50000 * 1.03
	assert.GreaterOrEqual(t, sl, ceiling)
}

func TestValidateWithNoReferenceOrderBlockRejectsInStrictMode(t *testing.T) {
	c := NewCalculator()
	sl, valid, usedFallback := c.Validate(50000, 48500, zone.Bullish, zone.Zone{}, true)
	assert.False(t, valid)
	assert.False(t, usedFallback)
	assert.Equal(t, 48500.0, sl)
}

func TestValidateWithNoReferenceOrderBlockFallsBackWhenNotStrict(t *testing.T) {
	c := NewCalculator()
	sl, valid, usedFallback := c.Validate(50000, 48500, zone.Bullish, zone.Zone{}, false)
	assert.True(t, valid)
	assert.True(t, usedFallback)
	assert.Equal(t, 48500.0, sl)
}
