package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ict-signal-engine/internal/bar"
	"ict-signal-engine/internal/bias"
	"ict-signal-engine/internal/cache"
	"ict-signal-engine/internal/confidence"
	"ict-signal-engine/config"
	"ict-signal-engine/internal/entry"
	"ict-signal-engine/internal/gates"
	"ict-signal-engine/internal/indicator"
	"ict-signal-engine/internal/logging"
	"ict-signal-engine/internal/ml"
	"ict-signal-engine/internal/stoploss"
	"ict-signal-engine/internal/takeprofit"
	"ict-signal-engine/internal/zone"
)

// GateSet bundles the four optional admission evaluators stages 12.1-12.4
// run. A nil field falls back to the matching Default* evaluator so the
// pipeline runs standalone, per the spec's "defensive defaults" contract.
type GateSet struct {
	EntryGating           func(gates.EntryGatingContext) (bool, string)
	ConfidenceThreshold   func(gates.ConfidenceThresholdContext) (bool, string)
	ExecutionEligibility  func(gates.ExecutionEligibilityContext) (bool, string)
	RiskAdmission         func(gates.RiskAdmissionContext) (bool, string)
}

func (g GateSet) resolve() GateSet {
	if g.EntryGating == nil {
		g.EntryGating = gates.DefaultEntryGating
	}
	if g.ConfidenceThreshold == nil {
		g.ConfidenceThreshold = gates.DefaultConfidenceThreshold
	}
	if g.ExecutionEligibility == nil {
		g.ExecutionEligibility = gates.DefaultExecutionEligibility
	}
	if g.RiskAdmission == nil {
		g.RiskAdmission = gates.DefaultRiskAdmission
	}
	return g
}

// Orchestrator runs the twelve-stage pipeline for one (symbol, timeframe)
// call, grounded on the teacher's internal/strategy/strategy.go top-level
// "analyze then decide" entry point, generalized into the spec's explicit
// numbered-stage state machine: passing stages log a "stage n PASSED" debug
// line, and every no-trade reason is prefixed with its BlockedStep.
type Orchestrator struct {
	Facade      *zone.Facade
	BiasCalc    *bias.Computer
	EntrySelect *entry.Selector
	SLCalc      *stoploss.Calculator
	Advisor     *ml.Advisor
	Gates       GateSet
	Cache       cache.SignalCache
	Config      *config.Config
	Log         *logging.Logger
}

// New builds an Orchestrator with every collaborator wired to its
// ICT-conventional defaults, ready to run standalone.
func New(facade *zone.Facade, cfg *config.Config, obDetect zone.DetectorFunc) *Orchestrator {
	if cfg == nil {
		cfg = config.Default()
	}
	o := &Orchestrator{
		Facade:      facade,
		BiasCalc:    bias.NewComputer(obDetect),
		EntrySelect: entry.NewSelector(),
		SLCalc:      stoploss.NewCalculator(),
		Advisor:     ml.NewAdvisor(),
		Gates:       GateSet{}.resolve(),
		Cache:       cache.NewLRUCache(cfg.CacheConfig.MaxSize),
		Config:      cfg,
		Log:         logging.Default().WithComponent("pipeline"),
	}
	return o
}

// Input is everything one Generate call needs.
type Input struct {
	Symbol    string
	Timeframe string
	Bars      bar.Series
	MTFBars   map[string]bar.Series // may be nil/empty
}

// Generate runs the full twelve-stage pipeline. Exactly one of (*Signal,
// *NoTradeMessage) is non-nil on a nil error; both are nil when the call
// was silently rejected by an admission gate (stages 12.1-12.4) or by the
// stage-12a entry-timing re-check. No news-sentiment stage (12b) is run.
func (o *Orchestrator) Generate(ctx context.Context, in Input) (*Signal, *NoTradeMessage, error) {
	ctx, log := logging.WithTraceContext(ctx)
	log = log.WithFields(map[string]interface{}{"symbol": in.Symbol, "timeframe": in.Timeframe})

	if err := in.Bars.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid input bars: %w", err)
	}
	if len(in.Bars) == 0 {
		return nil, nil, fmt.Errorf("no bars supplied for %s/%s", in.Symbol, in.Timeframe)
	}

	currentPrice := in.Bars.Last().Close
	cacheKey := fmt.Sprintf("signal:%s:%s", in.Symbol, in.Timeframe)

	if o.Config.PipelineConfig.UseCache && o.Cache != nil {
		if cached, ok := o.Cache.Get(cacheKey, func() float64 { return currentPrice }); ok {
			if sig, ok := cached.(*Signal); ok {
				log.Debug("cache hit, signal still fresh", "symbol", in.Symbol, "timeframe", in.Timeframe)
				return sig, nil, nil
			}
		}
	}

	// Stage 1: HTF bias (1d -> 4h fallback).
	htfVerdict := o.htfBias(in)
	log.Debug("stage 1 PASSED: htf bias", "bias", htfVerdict.Bias)

	// Stage 2-6: zone detection + overlays on the primary timeframe.
	bundle := o.Facade.DetectAll(in.Bars, in.Timeframe)
	log.Debug("stage 5 PASSED: detect all ICT components")

	// Stage 6b: timeframe hierarchy validation. Missing expected
	// confirmation/structure timeframes don't block the signal, they apply
	// a confidence penalty carried through to stage 11.
	hierarchyPenalty, tfHierarchy := o.timeframeHierarchyPenalty(in)
	log.Debug("stage 6b PASSED: timeframe hierarchy", "penalty", hierarchyPenalty)

	// Stage 7: market bias determination on the primary timeframe.
	primaryVerdict := o.BiasCalc.Score(in.Bars, in.Timeframe)
	targetBias := primaryVerdict.Bias

	// Stage 7b: non-directional bias mitigation.
	if targetBias != bias.Bullish && targetBias != bias.Bearish {
		if htfVerdict.Bias == bias.Bullish || htfVerdict.Bias == bias.Bearish {
			targetBias = htfVerdict.Bias // rescued by HTF bias, own structure stays noted
		} else {
			msg := newNoTrade(in.Symbol, in.Timeframe, StepNonDirectionalBias, "no directional bias from own structure or HTF")
			msg.CurrentPrice = currentPrice
			msg.SignalDirection = string(targetBias)
			return nil, &msg, nil
		}
	}

	direction := zone.Bullish
	if targetBias == bias.Bearish {
		direction = zone.Bearish
	}

	// Stage 8: entry-zone selection.
	candidates := candidatesFor(bundle, direction, currentPrice)
	entryResult := o.EntrySelect.Select(currentPrice, direction, candidates)
	switch entryResult.Status {
	case entry.TooFar, entry.TooLate:
		msg := newNoTrade(in.Symbol, in.Timeframe, StepEntryZone, string(entryResult.Status))
		msg.CurrentPrice = currentPrice
		msg.SignalDirection = string(targetBias)
		msg.EntryStatus = entryResult.Status
		return nil, &msg, nil
	}
	log.Debug("stage 8 PASSED: entry zone", "status", entryResult.Status)

	// Stage 9: SL calculation + validator + TP engine.
	ob := referenceOrderBlock(bundle, direction)
	atr := indicator.ATR(in.Bars, 14)
	swingExtreme := swingExtremeFor(in.Bars, direction)

	slCandidate := o.SLCalc.Candidate(entryResult.EntryPrice, direction, ob.Low, ob.High, swingExtreme, atr)
	sl, valid, usedSLFallback := o.SLCalc.Validate(entryResult.EntryPrice, slCandidate, direction, ob, o.Config.PipelineConfig.ICTStrictSLValidation)
	if !valid {
		msg := newNoTrade(in.Symbol, in.Timeframe, StepSLTP, "stop-loss failed order-block validation")
		msg.CurrentPrice = currentPrice
		msg.EntryStatus = entryResult.Status
		return nil, &msg, nil
	}

	var warnings []string
	if usedSLFallback {
		warnings = append(warnings, "sl_fallback_used")
	}

	anchors := takeprofit.Anchors(entryResult.EntryPrice, sl, direction, in.Timeframe)
	tps := anchors
	var tpWarnings []string
	if o.Config.PipelineConfig.UseStructureTP {
		obstacles := obstaclesInPath(bundle, direction)
		// Obstacles oppose the trade, so they agree with the HTF bias only
		// when that bias is directional and opposes the trade.
		htfDirectional := htfVerdict.Bias == bias.Bullish || htfVerdict.Bias == bias.Bearish
		tps, tpWarnings = takeprofit.Adjust(entryResult.EntryPrice, sl, direction, anchors, obstacles, takeprofit.EvaluationInputs{
			HTFBiasAligned: htfDirectional && htfVerdict.Bias != targetBias,
		})
	}
	warnings = append(warnings, tpWarnings...)
	log.Debug("stage 9 PASSED: sl + tp computed")

	// Stage 10: R:R floor, measured against TP2 when three TPs exist.
	r := entryResult.EntryPrice - sl
	if r < 0 {
		r = -r
	}
	rr := rewardRisk(entryResult.EntryPrice, tps[1], r)
	if rr < o.Config.PipelineConfig.MinRiskReward {
		msg := newNoTrade(in.Symbol, in.Timeframe, StepRiskRewardFloor, fmt.Sprintf("r:r %.2f below floor %.2f", rr, o.Config.PipelineConfig.MinRiskReward))
		msg.CurrentPrice = currentPrice
		return nil, &msg, nil
	}
	log.Debug("stage 10 PASSED: r:r floor", "rr", rr)

	// Stage 11.5 inputs computed early: MTF confluence feeds stage 11's
	// AlignedTimeframes component, and the same consensus is re-checked
	// against the 50% floor right after scoring.
	verdicts := o.mtfVerdicts(in)
	consensus := bias.ComputeConsensus(targetBias, in.Timeframe, verdicts)

	srPct, hasSR := nearestLuxAlgoSRDistance(bundle, entryResult.EntryPrice, direction)

	// Stage 11: confidence scoring.
	comps := confidence.Components{
		WhaleBlockCount:      len(bundle.WhaleBlocks),
		LiquidityZoneCount:   len(bundle.LiquidityZones),
		OrderBlockCount:      len(bundle.OrderBlocks),
		FVGCount:             len(bundle.FVGs),
		AlignedTimeframes:    consensus.Aligned,
		BreakerBlockCount:    len(bundle.BreakerBlocks),
		MitigationBlockCount: len(bundle.MitigationBlocks),
		SIBISSIBCount:        len(bundle.SIBISSIBZones),
		RiskRewardRatio:      rr,
		LuxAlgoSRProximityPct: srPct,
		HasLuxAlgoSR:          hasSR,
		EntryDistancePct:      entryResult.DistancePct,
		HasEntryDistance:      true,
		InFibonacciOTE:        bundle.FibonacciData.InOTE(entryResult.EntryPrice),
		BiasNeutralOrRanging:  primaryVerdict.Bias != bias.Bullish && primaryVerdict.Bias != bias.Bearish,
	}
	score, breakdown := confidence.Score(comps)
	score *= hierarchyPenalty
	distancePenalty := comps.HasEntryDistance && comps.EntryDistancePct < 0.005

	// Stage 11.5: MTF consensus >= 50%.
	if consensus.Percent < 50 {
		msg := newNoTrade(in.Symbol, in.Timeframe, StepMTFConsensus, fmt.Sprintf("mtf consensus %.1f%% below 50%%", consensus.Percent))
		msg.MTFConsensusPct = consensus.Percent
		msg.MTFBreakdown = consensus.Breakdown
		return nil, &msg, nil
	}

	// Stage 11.6: confidence >= 60%.
	if score < o.Config.PipelineConfig.MinConfidence {
		msg := newNoTrade(in.Symbol, in.Timeframe, StepConfidenceFloor, fmt.Sprintf("confidence %.1f below floor %.1f", score, o.Config.PipelineConfig.MinConfidence))
		msg.Confidence = score
		return nil, &msg, nil
	}
	log.Debug("stage 11 PASSED: confidence", "score", score)

	reasoningLines := make([]string, 0, len(breakdown))
	for _, b := range breakdown {
		reasoningLines = append(reasoningLines, confidence.Reason(b))
	}
	reasoning := strings.Join(reasoningLines, "; ")

	var zoneExplanations []string
	if o.Config.PipelineConfig.UseZoneExplanations {
		zoneExplanations = buildZoneExplanations(bundle)
	}

	// Stage 12: final signal shape.
	signalType, strength := classify(targetBias, score)

	sig := &Signal{
		Timestamp:          timestamp(),
		Symbol:             in.Symbol,
		Timeframe:          in.Timeframe,
		SignalType:         signalType,
		Strength:           strength,
		EntryPrice:         entryResult.EntryPrice,
		SLPrice:            sl,
		TPPrices:           tps,
		Confidence:         score,
		RiskRewardRatio:    rr,
		Bias:               targetBias,
		HTFBias:            string(htfVerdict.Bias),
		MTFStructure:       string(primaryVerdict.Bias),
		MTFConsensus:       consensus,
		EntryZone:          entryResult,
		EntryStatus:        entryResult.Status,
		DistancePenalty:    distancePenalty,
		TimeframeHierarchy: tfHierarchy,
		Zones:              *bundle,
		Reasoning:          reasoning,
		ZoneExplanations:   zoneExplanations,
		Warnings:           append(append([]string{}, bundle.Warnings...), warnings...),
	}

	// Stage 12.1-12.4: admission gates.
	resolved := o.Gates.resolve()
	if ok, reason := resolved.EntryGating(gates.EntryGatingContext{SystemOperational: true, MarketOpen: true}); !ok {
		log.Debug("stage 12.1 rejected silently", "reason", reason)
		return nil, nil, nil
	}
	if ok, _ := resolved.ConfidenceThreshold(gates.ConfidenceThresholdContext{
		RawConfidence: score, IsSell: signalType == Sell || signalType == StrongSell,
		BuyThreshold: o.Config.PipelineConfig.MinConfidence, SellThreshold: o.Config.PipelineConfig.MinConfidence,
	}); !ok {
		return nil, nil, nil
	}
	if ok, _ := resolved.ExecutionEligibility(gates.ExecutionEligibilityContext{ExecutionReady: true, ExecutionLayerAvailable: true, PositionCapacityAvailable: true}); !ok {
		return nil, nil, nil
	}
	if ok, _ := resolved.RiskAdmission(gates.RiskAdmissionContext{}); !ok {
		return nil, nil, nil
	}

	// Stage 12.0-late: ML advisory (runs last; never touches direction/
	// entry/SL/TP).
	if o.Config.PipelineConfig.UseML && o.Advisor != nil {
		locked := ml.LockedStrategyDecision{SignalType: string(sig.SignalType), Entry: sig.EntryPrice, SL: sig.SLPrice, TP: sig.TPPrices}
		mod := o.Advisor.Advise(locked, ml.Features{BaseConfidence: sig.Confidence})
		adjusted, warnings := ml.Apply(sig.Confidence, mod)
		sig.Confidence = adjusted
		sig.Warnings = append(sig.Warnings, warnings...)
	}

	// Stage 12a: entry-timing re-check.
	if !entryStillTimely(sig, currentPrice) {
		return nil, nil, nil
	}

	if o.Config.PipelineConfig.UseCache && o.Cache != nil {
		if lru, ok := o.Cache.(*cache.LRUCache); ok {
			lru.SetWithEntryPrice(cacheKey, sig, time.Duration(o.Config.CacheConfig.TTLSeconds)*time.Second, sig.EntryPrice)
		} else {
			o.Cache.Set(cacheKey, sig, time.Duration(o.Config.CacheConfig.TTLSeconds)*time.Second)
		}
	}

	return sig, nil, nil
}

// timestamp is a seam over time.Now so tests can exercise deterministic
// behavior without touching the clock in the hot path.
var timestamp = time.Now

func (o *Orchestrator) htfBias(in Input) bias.Verdict {
	if b, ok := in.MTFBars["1d"]; ok && len(b) > 0 {
		return o.BiasCalc.Score(b, "1d")
	}
	if b, ok := in.MTFBars["4h"]; ok && len(b) > 0 {
		return o.BiasCalc.Score(b, "4h")
	}
	return bias.Verdict{Timeframe: "1d", Bias: bias.Neutral}
}

func (o *Orchestrator) mtfVerdicts(in Input) map[string]bias.Verdict {
	verdicts := make(map[string]bias.Verdict, len(in.MTFBars)+1)
	for tf, b := range in.MTFBars {
		if len(b) == 0 {
			continue
		}
		verdicts[tf] = o.BiasCalc.Score(b, tf)
	}
	verdicts[in.Timeframe] = o.BiasCalc.Score(in.Bars, in.Timeframe)
	return verdicts
}

func candidatesFor(bundle *zone.Bundle, direction zone.Direction, currentPrice float64) []entry.Candidate {
	var out []entry.Candidate
	collect := func(zones []zone.Zone, source entry.Source) {
		for _, z := range zones {
			if z.Type != direction {
				continue
			}
			center := z.Center()
			var dist float64
			switch direction {
			case zone.Bullish:
				if center >= currentPrice {
					continue
				}
				dist = (currentPrice - center) / currentPrice
			case zone.Bearish:
				if center <= currentPrice {
					continue
				}
				dist = (center - currentPrice) / currentPrice
			}
			out = append(out, entry.Candidate{Price: center, Quality: z.Strength, Distance: dist, Source: source})
		}
	}
	collect(bundle.FVGs, entry.SourceFVG)
	collect(bundle.OrderBlocks, entry.SourceOB)

	for _, sr := range bundle.LuxAlgoSR {
		if sr.Type != direction {
			continue
		}
		var dist float64
		switch direction {
		case zone.Bullish:
			if sr.Price >= currentPrice {
				continue
			}
			dist = (currentPrice - sr.Price) / currentPrice
		case zone.Bearish:
			if sr.Price <= currentPrice {
				continue
			}
			dist = (sr.Price - currentPrice) / currentPrice
		}
		out = append(out, entry.Candidate{Price: sr.Price, Quality: sr.Strength, Distance: dist, Source: entry.SourceSR})
	}
	return out
}

// nearestLuxAlgoSRDistance returns the fractional distance from entryPrice
// to the nearest LuxAlgo S/R level on the correct side of the trade, and
// whether any such level exists at all. Absence must stay distinguishable
// from "a level sits exactly at the entry" so the confidence scorer never
// mistakes "no data" for "zero distance".
func nearestLuxAlgoSRDistance(bundle *zone.Bundle, entryPrice float64, direction zone.Direction) (pct float64, has bool) {
	if entryPrice <= 0 {
		return 0, false
	}
	best := -1.0
	for _, sr := range bundle.LuxAlgoSR {
		if sr.Type != direction {
			continue
		}
		dist := sr.Price - entryPrice
		if dist < 0 {
			dist = -dist
		}
		pctDist := dist / entryPrice
		if best < 0 || pctDist < best {
			best = pctDist
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

// timeframeHierarchyPenalty identifies the confirmation/structure
// timeframes expected for in.Timeframe and applies the configured
// confidence penalty for each one missing from in.MTFBars, returning the
// resulting multiplicative factor (1.0 = no penalty) and a record of which
// timeframes were expected and found, for Signal.TimeframeHierarchy.
func (o *Orchestrator) timeframeHierarchyPenalty(in Input) (float64, map[string]string) {
	hierarchy := map[string]string{"entry": in.Timeframe}

	mapping, ok := o.Config.TimeframeHierarchyConfig.Mapping[in.Timeframe]
	if !ok {
		return 1.0, hierarchy
	}
	hierarchy["confirmation"] = mapping.ConfirmationTF
	hierarchy["structure"] = mapping.StructureTF
	hierarchy["htf_bias"] = mapping.HTFBiasTF

	rules := o.Config.TimeframeHierarchyConfig.Rules
	penalty := 1.0

	if b, ok := in.MTFBars[mapping.ConfirmationTF]; ok && len(b) > 0 {
		hierarchy["confirmation_status"] = "present"
	} else {
		hierarchy["confirmation_status"] = "missing"
		penalty *= 1 - rules.ConfirmationPenaltyIfMissing
	}

	if b, ok := in.MTFBars[mapping.StructureTF]; ok && len(b) > 0 {
		hierarchy["structure_status"] = "present"
	} else {
		hierarchy["structure_status"] = "missing"
		penalty *= 1 - rules.StructurePenaltyIfMissing
	}

	return penalty, hierarchy
}

// buildZoneExplanations renders one human-readable line per detected zone
// family, grounded on the original system's zone_explainer module: a
// bullish/bearish count per family rather than a per-zone dump.
func buildZoneExplanations(bundle *zone.Bundle) []string {
	var out []string
	describe := func(label string, zones []zone.Zone) {
		if len(zones) == 0 {
			return
		}
		var bull, bear int
		for _, z := range zones {
			switch z.Type {
			case zone.Bullish:
				bull++
			case zone.Bearish:
				bear++
			}
		}
		out = append(out, fmt.Sprintf("%s: %d bullish, %d bearish", label, bull, bear))
	}
	describe("order blocks", bundle.OrderBlocks)
	describe("fair value gaps", bundle.FVGs)
	describe("whale blocks", bundle.WhaleBlocks)
	describe("liquidity zones", bundle.LiquidityZones)
	describe("breaker blocks", bundle.BreakerBlocks)
	describe("mitigation blocks", bundle.MitigationBlocks)
	describe("sibi/ssib zones", bundle.SIBISSIBZones)
	if len(bundle.LuxAlgoSR) > 0 {
		out = append(out, fmt.Sprintf("support/resistance: %d levels", len(bundle.LuxAlgoSR)))
	}
	return out
}

func referenceOrderBlock(bundle *zone.Bundle, direction zone.Direction) zone.Zone {
	for _, z := range bundle.OrderBlocks {
		if z.Type == direction {
			return z
		}
	}
	return zone.Zone{}
}

func swingExtremeFor(bars bar.Series, direction zone.Direction) float64 {
	window := bars.Tail(20)
	if len(window) == 0 {
		return bars.Last().Close
	}
	switch direction {
	case zone.Bullish:
		lowest := window[0].Low
		for _, b := range window {
			if b.Low < lowest {
				lowest = b.Low
			}
		}
		return lowest
	case zone.Bearish:
		highest := window[0].High
		for _, b := range window {
			if b.High > highest {
				highest = b.High
			}
		}
		return highest
	}
	return bars.Last().Close
}

func obstaclesInPath(bundle *zone.Bundle, direction zone.Direction) []takeprofit.Obstacle {
	opposite := zone.Bearish
	if direction == zone.Bearish {
		opposite = zone.Bullish
	}

	var out []takeprofit.Obstacle
	add := func(zones []zone.Zone, kind string) {
		for _, z := range zones {
			if z.Type != opposite {
				continue
			}
			out = append(out, takeprofit.Obstacle{Type: kind, Price: z.Center(), Strength: z.Strength})
		}
	}
	add(bundle.OrderBlocks, "order_block")
	add(bundle.FVGs, "fvg")
	add(bundle.WhaleBlocks, "whale_block")
	for _, sr := range bundle.LuxAlgoSR {
		if sr.Type == opposite {
			out = append(out, takeprofit.Obstacle{Type: "support_resistance", Price: sr.Price, Strength: sr.Strength})
		}
	}
	return out
}

func rewardRisk(entry, tp, r float64) float64 {
	if r == 0 {
		return 0
	}
	reward := tp - entry
	if reward < 0 {
		reward = -reward
	}
	return reward / r
}

func classify(b bias.Bias, confidence float64) (SignalType, int) {
	strength := 3
	switch {
	case confidence >= 85:
		strength = 5
	case confidence >= 75:
		strength = 4
	case confidence >= 60:
		strength = 3
	default:
		strength = 2
	}

	isStrong := strength >= 4 && confidence >= 85

	if b == bias.Bullish {
		if isStrong {
			return StrongBuy, strength
		}
		return Buy, strength
	}
	if isStrong {
		return StrongSell, strength
	}
	return Sell, strength
}

func entryStillTimely(sig *Signal, currentPrice float64) bool {
	dist := sig.EntryPrice - currentPrice
	if dist < 0 {
		dist = -dist
	}
	if currentPrice == 0 {
		return false
	}
	distPct := dist / currentPrice
	if distPct > 0.20 {
		return false
	}
	switch sig.Bias {
	case bias.Bearish:
		return sig.EntryPrice > currentPrice
	case bias.Bullish:
		return sig.EntryPrice < currentPrice
	}
	return true
}
