package indicator

import (
	"testing"
	"time"

	"ict-signal-engine/internal/bar"
)

func makeBars(closes []float64) bar.Series {
	bars := make(bar.Series, len(closes))
	for i, c := range closes {
		bars[i] = bar.Bar{
			OpenTime: time.Unix(int64(i)*60, 0),
			Open:     c - 0.5,
			High:     c + 1,
			Low:      c - 1,
			Close:    c,
			Volume:   100,
		}
	}
	return bars
}

func TestATRNotEnoughData(t *testing.T) {
	bars := makeBars([]float64{100, 101, 102})
	if got := ATR(bars, 14); got != 0 {
		t.Errorf("expected 0 ATR with insufficient data, got %f", got)
	}
}

func TestATRPositive(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	bars := makeBars(closes)
	if got := ATR(bars, 14); got <= 0 {
		t.Errorf("expected positive ATR, got %f", got)
	}
}

func TestSwingHighsAndLows(t *testing.T) {
	closes := []float64{100, 101, 102, 110, 102, 101, 100, 90, 100, 101, 102}
	bars := makeBars(closes)

	highs := SwingHighs(bars, 3)
	if len(highs) == 0 {
		t.Error("expected at least one swing high")
	}

	lows := SwingLows(bars, 3)
	if len(lows) == 0 {
		t.Error("expected at least one swing low")
	}
}

func TestMedianVolumeNotMean(t *testing.T) {
	bars := make(bar.Series, 5)
	vols := []float64{10, 10, 10, 10, 1000}
	for i, v := range vols {
		bars[i] = bar.Bar{Open: 1, High: 2, Low: 0, Close: 1, Volume: v}
	}

	median := MedianVolume(bars, 5)
	if median != 10 {
		t.Errorf("expected median 10 (not mean ~208), got %f", median)
	}
}

func TestRangePositionClamped(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100
	}
	bars := makeBars(closes)

	if got := RangePosition(bars, 20, 1000); got != 1 {
		t.Errorf("expected clamp to 1, got %f", got)
	}
	if got := RangePosition(bars, 20, -1000); got != 0 {
		t.Errorf("expected clamp to 0, got %f", got)
	}
}

func TestDisplacementRatioDominance(t *testing.T) {
	bars := make(bar.Series, 5)
	for i := range bars {
		bars[i] = bar.Bar{Open: 100, High: 110, Low: 95, Close: 108, Volume: 10}
	}
	ratio, bullish := DisplacementRatio(bars, 5)
	if !bullish {
		t.Error("expected bullish dominance")
	}
	if ratio < 1.6 {
		t.Errorf("expected dominance ratio >= 1.6, got %f", ratio)
	}
}
