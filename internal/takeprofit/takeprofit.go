// Package takeprofit places the three take-profit targets in two layers: a
// mathematical R-multiple anchor (Layer A) and a structure-aware obstacle
// scan that shortens an anchor when a strong opposing zone sits in its
// path (Layer B).
package takeprofit

import (
	"fmt"
	"sort"

	"ict-signal-engine/internal/zone"
)

// Obstacle is a candidate rejection point in the path of a TP.
type Obstacle struct {
	Type     string // e.g. "order_block", "fvg", "support_resistance", "whale_block"
	Price    float64
	Strength float64 // 0-100, pre-evaluation raw strength
}

// EvaluationInputs carries the contextual adjustments applied to an
// obstacle's raw strength.
type EvaluationInputs struct {
	HTFBiasAligned    bool // obstacle polarity agrees with HTF bias: +20, else -20
	DisplacementOurWay bool // -15
	HighVolume        bool // +10
	MTFConfirmed      bool // +15
	Stale             bool // -5
}

// Verdict is the outcome of evaluating one obstacle.
type Verdict string

const (
	VeryLikelyRejection Verdict = "VERY_LIKELY_REJECTION"
	LikelyRejection     Verdict = "LIKELY_REJECTION"
	Uncertain           Verdict = "UNCERTAIN"
	LikelyPenetration   Verdict = "LIKELY_PENETRATION"
)

// Evaluate applies contextual adjustments to an obstacle's raw strength and
// returns the clamped score plus its verdict.
func Evaluate(o Obstacle, in EvaluationInputs) (score float64, v Verdict) {
	score = o.Strength
	if in.HTFBiasAligned {
		score += 20
	} else {
		score -= 20
	}
	if in.DisplacementOurWay {
		score -= 15
	}
	if in.HighVolume {
		score += 10
	}
	if in.MTFConfirmed {
		score += 15
	}
	if in.Stale {
		score -= 5
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	switch {
	case score >= 75:
		return score, VeryLikelyRejection
	case score >= 60:
		return score, LikelyRejection
	case score >= 45:
		return score, Uncertain
	default:
		return score, LikelyPenetration
	}
}

// perTPFloor gives the minimum acceptable R:R for each TP index (0,1,2).
var perTPFloor = [3]float64{2.5, 3.5, 5.0}

// ObstacleSafetyBuffer is the price pullback applied before an obstacle
// when a safe TP is substituted for the mathematical anchor.
const ObstacleSafetyBuffer = 0.003

// Anchors computes the Layer A mathematical R-multiple TPs for the given
// timeframe class.
func Anchors(entry, sl float64, direction zone.Direction, timeframe string) [3]float64 {
	r := entry - sl
	if r < 0 {
		r = -r
	}

	multipliers := multipliersFor(timeframe)

	var tps [3]float64
	for i, m := range multipliers {
		switch direction {
		case zone.Bearish:
			tps[i] = entry - r*m
		default: // Bullish and anything else defaults long
			tps[i] = entry + r*m
		}
	}
	return tps
}

func multipliersFor(timeframe string) [3]float64 {
	switch timeframe {
	case "15m", "30m", "1h", "2h":
		return [3]float64{1, 3, 5}
	case "4h", "6h", "8h", "12h", "1d", "3d", "1w":
		return [3]float64{2, 4, 6}
	default:
		return [3]float64{1, 3, 5} // unknown timeframes default conservative
	}
}

// Adjust runs Layer B: for each mathematical anchor, scans the supplied
// obstacle list for anything sitting between entry and the anchor, picks
// the one nearest to entry with an evaluated strength >= 60, and proposes a
// safe TP in front of it if doing so still clears that TP slot's R:R floor.
func Adjust(entry, sl float64, direction zone.Direction, anchors [3]float64, obstacles []Obstacle, in EvaluationInputs) (tps [3]float64, warnings []string) {
	r := entry - sl
	if r < 0 {
		r = -r
	}

	tps = anchors
	for i, anchor := range anchors {
		path := inPath(entry, anchor, direction, obstacles)
		if len(path) == 0 {
			continue
		}
		sort.Slice(path, func(a, b int) bool {
			return distance(entry, path[a].Price) < distance(entry, path[b].Price)
		})

		blocker, found := firstRejecting(path, in)
		if !found {
			continue
		}

		safeTP := safePrice(blocker.Price, direction)
		rr := rewardRiskFor(entry, sl, safeTP, r)
		if rr >= perTPFloor[i] {
			tps[i] = safeTP
			continue
		}

		warnings = append(warnings, fmt.Sprintf("obstacle at %.2f keeps mathematical TP%d (adjustment would breach R:R floor)", blocker.Price, i+1))
	}
	return tps, warnings
}

func inPath(entry, anchor float64, direction zone.Direction, obstacles []Obstacle) []Obstacle {
	var out []Obstacle
	for _, o := range obstacles {
		switch direction {
		case zone.Bullish:
			if o.Price > entry && o.Price < anchor {
				out = append(out, o)
			}
		case zone.Bearish:
			if o.Price < entry && o.Price > anchor {
				out = append(out, o)
			}
		}
	}
	return out
}

func firstRejecting(path []Obstacle, in EvaluationInputs) (Obstacle, bool) {
	for _, o := range path {
		score, _ := Evaluate(o, in)
		if score >= 60 {
			return o, true
		}
	}
	return Obstacle{}, false
}

func safePrice(obstaclePrice float64, direction zone.Direction) float64 {
	switch direction {
	case zone.Bullish:
		return obstaclePrice * (1 - ObstacleSafetyBuffer)
	case zone.Bearish:
		return obstaclePrice * (1 + ObstacleSafetyBuffer)
	default:
		return obstaclePrice
	}
}

func rewardRiskFor(entry, sl, tp, r float64) float64 {
	if r == 0 {
		return 0
	}
	reward := tp - entry
	if reward < 0 {
		reward = -reward
	}
	return reward / r
}

func distance(a, b float64) float64 {
	d := a - b
	if d < 0 {
		return -d
	}
	return d
}
