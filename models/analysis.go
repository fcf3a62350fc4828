package models

import "strings"

// SophieAnalysis is the backend's composite AI analysis of one ticker
type SophieAnalysis struct {
	Signal            string   `json:"signal"`
	Confidence        int      `json:"confidence"`
	OverallScore      int      `json:"overall_score"` // 0-100
	Reasoning         string   `json:"reasoning"`
	ShortTermOutlook  string   `json:"short_term_outlook"`
	MediumTermOutlook string   `json:"medium_term_outlook"`
	LongTermOutlook   string   `json:"long_term_outlook"`
	BullishFactors    []string `json:"bullish_factors"`
	BearishFactors    []string `json:"bearish_factors"`
	Risks             []string `json:"risks"`
}

// DefaultSophieAnalysis is substituted when the backend has no analysis for a ticker
func DefaultSophieAnalysis() SophieAnalysis {
	return SophieAnalysis{
		Signal:            SignalNeutral,
		Confidence:        50,
		OverallScore:      50,
		Reasoning:         "No analysis available",
		ShortTermOutlook:  "Unknown",
		MediumTermOutlook: "Unknown",
		LongTermOutlook:   "Unknown",
		BullishFactors:    []string{},
		BearishFactors:    []string{},
		Risks:             []string{},
	}
}

// AgentSignal is a simulated investment opinion attributed to one analyst persona
type AgentSignal struct {
	Agent            string `json:"agent"`
	AgentDisplayName string `json:"agent_display_name"`
	Signal           string `json:"signal"`
	Reasoning        string `json:"reasoning"`
	Confidence       int    `json:"confidence"`
	Date             string `json:"date"`
}

// Signal labels used by the backend's analysis pipeline
const (
	SignalStrongBuy  = "STRONG_BUY"
	SignalBuy        = "BUY"
	SignalHold       = "HOLD"
	SignalNeutral    = "NEUTRAL"
	SignalSell       = "SELL"
	SignalStrongSell = "STRONG_SELL"
)

// Display colors for signals
const (
	ColorPositive = "#4CAF50"
	ColorNeutral  = "#FFC107"
	ColorNegative = "#F44336"
	ColorUnknown  = "#9E9E9E"
)

// SignalColor maps a backend signal label to its display color
func SignalColor(signal string) string {
	switch strings.ToUpper(signal) {
	case SignalStrongBuy, SignalBuy:
		return ColorPositive
	case SignalHold, SignalNeutral:
		return ColorNeutral
	case SignalSell, SignalStrongSell:
		return ColorNegative
	default:
		return ColorUnknown
	}
}

// Direction is the coarse reading of a signal label
type Direction string

const (
	DirectionBullish Direction = "bullish"
	DirectionBearish Direction = "bearish"
	DirectionNeutral Direction = "neutral"
)

// SignalDirection classifies both persona labels ("bullish") and pipeline labels ("STRONG_BUY")
func SignalDirection(signal string) Direction {
	switch strings.ToLower(signal) {
	case "bullish", "buy", "strong_buy", "strong buy":
		return DirectionBullish
	case "bearish", "sell", "strong_sell", "strong sell":
		return DirectionBearish
	default:
		return DirectionNeutral
	}
}

// ScoreBand buckets a 0-100 score for display
type ScoreBand string

const (
	ScoreHigh       ScoreBand = "high"
	ScoreMediumHigh ScoreBand = "medium_high"
	ScoreMediumLow  ScoreBand = "medium_low"
	ScoreLow        ScoreBand = "low"
)

func ScoreBandFor(score int) ScoreBand {
	switch {
	case score >= 80:
		return ScoreHigh
	case score >= 60:
		return ScoreMediumHigh
	case score >= 40:
		return ScoreMediumLow
	default:
		return ScoreLow
	}
}
