// Package pipeline implements the twelve-stage signal-generation state
// machine: it wires together bias, entry, stoploss, takeprofit,
// confidence, gates, ml, and cache into the single "generate a signal for
// (symbol, timeframe)" call, producing a Signal, a NoTradeMessage, or
// nothing.
package pipeline

import (
	"time"

	"ict-signal-engine/internal/bias"
	"ict-signal-engine/internal/entry"
	"ict-signal-engine/internal/zone"
)

// SignalType mirrors the five-way classification the spec defines.
type SignalType string

const (
	Buy        SignalType = "BUY"
	StrongBuy  SignalType = "STRONG_BUY"
	Sell       SignalType = "SELL"
	StrongSell SignalType = "STRONG_SELL"
	Hold       SignalType = "HOLD"
)

// Signal is the pipeline's full output record when every stage passes.
type Signal struct {
	Timestamp  time.Time
	Symbol     string
	Timeframe  string
	SignalType SignalType
	Strength   int // 1-5

	EntryPrice float64
	SLPrice    float64
	TPPrices   [3]float64

	Confidence       float64
	RiskRewardRatio  float64
	Bias             bias.Bias
	HTFBias          string
	MTFStructure     string
	MTFConsensus     bias.Consensus
	EntryZone        entry.Result
	EntryStatus      entry.Status
	DistancePenalty  bool
	TimeframeHierarchy map[string]string

	Zones           zone.Bundle
	Reasoning       string
	Warnings        []string
	ZoneExplanations []string
}

// NoTradeMessage is emitted in place of a Signal whenever a gate rejects at
// or after stage 7b, per the spec's canonical diagnostic-trail contract.
type NoTradeMessage struct {
	Type      string // always "NO_TRADE"
	Symbol    string
	Timeframe string
	Reason    string
	Details   string

	MTFBreakdown     map[string]bias.Verdict
	MTFConsensusPct  float64
	CurrentPrice     float64
	PriceChange24h   float64
	RSI              float64
	SignalDirection  string
	Confidence       float64
	ICTComponents    zone.Bundle
	EntryStatus      entry.Status
	StructureBroken  bool
	DisplacementDetected bool
}

// BlockedStep names the stage a no-trade message was emitted from;
// newNoTrade prefixes the message's Reason with it (e.g. "7b: ...").
type BlockedStep string

const (
	StepNonDirectionalBias BlockedStep = "7b"
	StepEntryZone          BlockedStep = "8"
	StepSLTP               BlockedStep = "9"
	StepRiskRewardFloor    BlockedStep = "10"
	StepMTFConsensus       BlockedStep = "11.5"
	StepConfidenceFloor    BlockedStep = "11.6"
)

func newNoTrade(symbol, timeframe string, step BlockedStep, reason string) NoTradeMessage {
	return NoTradeMessage{
		Type:      "NO_TRADE",
		Symbol:    symbol,
		Timeframe: timeframe,
		Reason:    string(step) + ": " + reason,
	}
}
