package detectors

import (
	"testing"
	"time"

	"ict-signal-engine/internal/bar"
	"ict-signal-engine/internal/zone"
)

func bars3(c1, c2, c3 bar.Bar) bar.Series {
	return bar.Series{c1, c2, c3}
}

func TestFVGDetectorBullishGap(t *testing.T) {
	d := NewFVGDetector(0.1)
	bars := bars3(
		bar.Bar{OpenTime: time.Unix(0, 0), Open: 99, High: 100, Low: 98, Close: 99.5},
		bar.Bar{OpenTime: time.Unix(60, 0), Open: 100, High: 105, Low: 99, Close: 104},
		bar.Bar{OpenTime: time.Unix(120, 0), Open: 105, High: 108, Low: 102, Close: 107},
	)

	zones, err := d.Detect(bars, "1h")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(zones) != 1 {
		t.Fatalf("expected 1 FVG, got %d", len(zones))
	}
	if zones[0].Type != zone.Bullish {
		t.Errorf("expected bullish FVG, got %v", zones[0].Type)
	}
	if zones[0].Low != 100 || zones[0].High != 102 {
		t.Errorf("expected gap [100,102], got [%f,%f]", zones[0].Low, zones[0].High)
	}
}

func TestFVGDetectorNoGapBelowThreshold(t *testing.T) {
	d := NewFVGDetector(5.0) // require a 5% gap
	bars := bars3(
		bar.Bar{Open: 99, High: 100, Low: 98, Close: 99.5},
		bar.Bar{Open: 100, High: 100.5, Low: 99, Close: 100.2},
		bar.Bar{Open: 100.3, High: 100.6, Low: 100.1, Close: 100.4},
	)

	zones, err := d.Detect(bars, "1h")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(zones) != 0 {
		t.Errorf("expected no FVG below threshold, got %d", len(zones))
	}
}

func TestOrderBlockDetectorFindsBullishOB(t *testing.T) {
	d := NewOrderBlockDetector()
	bars := make(bar.Series, 6)
	bars[0] = bar.Bar{Open: 100, High: 101, Low: 98, Close: 99} // bearish candidate
	for i := 1; i < 6; i++ {
		p := 100 + float64(i)*5
		bars[i] = bar.Bar{Open: p, High: p + 6, Low: p - 1, Close: p + 5} // dominant bullish move
	}

	zones, err := d.Detect(bars, "1h")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, z := range zones {
		if z.BarIndex == 0 && z.Type == zone.Bullish {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a bullish order block at bar 0, got %+v", zones)
	}
}
