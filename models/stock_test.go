package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalColor(t *testing.T) {
	tests := []struct {
		signal string
		want   string
	}{
		{"STRONG_BUY", ColorPositive},
		{"BUY", ColorPositive},
		{"HOLD", ColorNeutral},
		{"NEUTRAL", ColorNeutral},
		{"SELL", ColorNegative},
		{"STRONG_SELL", ColorNegative},
		{"buy", ColorPositive},
		{"bullish", ColorUnknown},
		{"", ColorUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.signal, func(t *testing.T) {
			assert.Equal(t, tt.want, SignalColor(tt.signal))
		})
	}
}

func TestSignalDirection(t *testing.T) {
	assert.Equal(t, DirectionBullish, SignalDirection("bullish"))
	assert.Equal(t, DirectionBullish, SignalDirection("STRONG_BUY"))
	assert.Equal(t, DirectionBearish, SignalDirection("Bearish"))
	assert.Equal(t, DirectionBearish, SignalDirection("SELL"))
	assert.Equal(t, DirectionNeutral, SignalDirection("HOLD"))
	assert.Equal(t, DirectionNeutral, SignalDirection("unknown"))
}

func TestScoreBandFor(t *testing.T) {
	assert.Equal(t, ScoreHigh, ScoreBandFor(92))
	assert.Equal(t, ScoreHigh, ScoreBandFor(80))
	assert.Equal(t, ScoreMediumHigh, ScoreBandFor(65))
	assert.Equal(t, ScoreMediumLow, ScoreBandFor(40))
	assert.Equal(t, ScoreLow, ScoreBandFor(39))
}

func TestDefaultSophieAnalysis(t *testing.T) {
	a := DefaultSophieAnalysis()

	assert.Equal(t, SignalNeutral, a.Signal)
	assert.Equal(t, 50, a.Confidence)
	assert.Equal(t, 50, a.OverallScore)
	assert.Equal(t, "No analysis available", a.Reasoning)
	assert.Equal(t, "Unknown", a.ShortTermOutlook)
	assert.Equal(t, "Unknown", a.MediumTermOutlook)
	assert.Equal(t, "Unknown", a.LongTermOutlook)
	assert.NotNil(t, a.BullishFactors)
	assert.Empty(t, a.BullishFactors)
	assert.Empty(t, a.BearishFactors)
	assert.Empty(t, a.Risks)
}

func TestStockDetail_Summary(t *testing.T) {
	detail := &StockDetail{
		Ticker:         "AAPL",
		Name:           "Apple Inc.",
		Price:          187.68,
		Change:         3.45,
		SophieAnalysis: SophieAnalysis{OverallScore: 78},
	}

	s := detail.Summary()
	assert.Equal(t, Stock{Ticker: "AAPL", Name: "Apple Inc.", Price: 187.68, Change: 3.45, SophieScore: 78}, s)
	assert.Empty(t, s.Color)
}

func TestParseAnalysisTab(t *testing.T) {
	tab, err := ParseAnalysisTab(" technical ")
	require.NoError(t, err)
	assert.Equal(t, TabTechnical, tab)

	tab, err = ParseAnalysisTab("AGENTS")
	require.NoError(t, err)
	assert.Equal(t, TabAgents, tab)

	_, err = ParseAnalysisTab("charts")
	assert.Error(t, err)
}

func TestAnalysisTab_Title(t *testing.T) {
	assert.Equal(t, "SOPHIE", TabSophie.Title())
	assert.Equal(t, "Technical", TabTechnical.Title())
	assert.Equal(t, "Fundamental", TabFundamental.Title())
	assert.Equal(t, "AI Agents", TabAgents.Title())
	assert.Len(t, AllAnalysisTabs(), 5)
}

func TestPtr(t *testing.T) {
	p := Ptr(30.56)
	require.NotNil(t, p)
	assert.Equal(t, 30.56, *p)
}
