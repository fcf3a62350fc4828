package services

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sophie-analyst/models"
)

func decimals(values ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = decimal.RequireFromString(v)
	}
	return out
}

func TestPercentChange(t *testing.T) {
	tests := []struct {
		name   string
		prices []decimal.Decimal
		want   float64
	}{
		{"empty", nil, 0},
		{"single price", decimals("187.68"), 0},
		{"rise", decimals("100", "105"), 5},
		{"fall", decimals("200", "150"), -25},
		{"uses last two", decimals("1", "50", "100"), 100},
		{"zero previous", decimals("0", "10"), 0},
		{"negative previous", decimals("-5", "10"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, PercentChange(tt.prices), 1e-9)
		})
	}
}

func TestLatestPrice(t *testing.T) {
	assert.Equal(t, 0.0, LatestPrice(nil))
	assert.InDelta(t, 187.68, LatestPrice(decimals("180.00", "187.68")), 1e-9)
}

func TestParseLooseFloat(t *testing.T) {
	tests := []struct {
		raw  string
		want *float64
	}{
		{`12.5`, models.Ptr(12.5)},
		{`"7.25"`, models.Ptr(7.25)},
		{`null`, nil},
		{``, nil},
		{`"bullish"`, nil},
	}
	for _, tt := range tests {
		got := parseLooseFloat(json.RawMessage(tt.raw))
		if tt.want == nil {
			assert.Nil(t, got, "raw %q", tt.raw)
			continue
		}
		require.NotNil(t, got, "raw %q", tt.raw)
		assert.Equal(t, *tt.want, *got)
	}
}

func TestMapStock(t *testing.T) {
	var w wireStock
	require.NoError(t, json.Unmarshal([]byte(`{
		"ticker": "AAPL",
		"company": {"name": "Apple Inc."},
		"prices": [{"close": "100"}, {"close": "110"}],
		"latestSophieAnalysis": {"overall_score": 78, "signal": "BUY"}
	}`), &w))

	s := mapStock(w)

	assert.Equal(t, "AAPL", s.Ticker)
	assert.Equal(t, "Apple Inc.", s.Name)
	assert.InDelta(t, 110, s.Price, 1e-9)
	assert.InDelta(t, 10, s.Change, 1e-9)
	assert.Equal(t, 78, s.SophieScore)
	assert.Equal(t, models.ColorPositive, s.Color)
}

func TestMapStock_MissingAnalysis(t *testing.T) {
	s := mapStock(wireStock{Ticker: "XYZ"})

	assert.Equal(t, "", s.Name)
	assert.Equal(t, 0.0, s.Price)
	assert.Equal(t, 0.0, s.Change)
	assert.Equal(t, 50, s.SophieScore)
	assert.Equal(t, models.ColorNeutral, s.Color)
}

func TestMapAnalysis_DefaultWhenAbsent(t *testing.T) {
	assert.Equal(t, models.DefaultSophieAnalysis(), mapAnalysis(nil))

	got := mapAnalysis(&wireAnalysis{Signal: models.Ptr("BUY")})
	assert.Equal(t, "BUY", got.Signal)
	assert.Equal(t, 50, got.Confidence)
	assert.Equal(t, 50, got.OverallScore)
	assert.NotNil(t, got.BullishFactors)
	assert.NotNil(t, got.Risks)
}

func TestMapStockDetail(t *testing.T) {
	var data stockDetailData
	require.NoError(t, json.Unmarshal([]byte(`{
		"stock": {"company": {"ticker": "NVDA", "name": "NVIDIA Corporation"}, "prices": [{"close": 900}, {"close": 945}]},
		"latestFundamentals": {"pe_ratio": 68.2, "earnings_per_share": 14.0, "overall_signal": "54.3", "debt_to_equity": 0.41},
		"latestTechnicals": {"rsi_14": 72.1, "volume_ratio": 1.9},
		"latestSophieAnalysis": null
	}`), &data))

	d := mapStockDetail("nvda", data, nil)

	assert.Equal(t, "NVDA", d.Ticker)
	assert.Equal(t, "NVIDIA Corporation", d.Name)
	assert.InDelta(t, 945, d.Price, 1e-9)
	assert.InDelta(t, 5, d.Change, 1e-9)
	assert.Equal(t, models.DefaultSophieAnalysis(), d.SophieAnalysis)

	require.NotNil(t, d.Fundamentals)
	assert.Equal(t, 68.2, *d.Fundamentals.PERatio)
	assert.Equal(t, 14.0, *d.Fundamentals.EPS)
	assert.Equal(t, 54.3, *d.Fundamentals.OperatingMargin)
	assert.Nil(t, d.Fundamentals.MarketCap)

	require.NotNil(t, d.Technicals)
	assert.Equal(t, 72.1, *d.Technicals.RSI)
	assert.Equal(t, int64(1), *d.Technicals.Volume)
	assert.Nil(t, d.Technicals.MACD)

	assert.Nil(t, d.Sentiment)
	assert.NotNil(t, d.AgentSignals)
	assert.Empty(t, d.AgentSignals)
}

func TestMapAgentSignal(t *testing.T) {
	s := mapAgentSignal(&wireAgentSignal{Signal: models.Ptr("bullish"), BizDate: models.Ptr("2025-05-05")}, "value_agent", "Value Agent")

	assert.Equal(t, "value_agent", s.Agent)
	assert.Equal(t, "Value Agent", s.AgentDisplayName)
	assert.Equal(t, "bullish", s.Signal)
	assert.Equal(t, 50, s.Confidence)
	assert.Equal(t, "2025-05-05", s.Date)
}

func TestDefaultStocks(t *testing.T) {
	stocks := DefaultStocks([]string{"AAPL", "MSFT", "ZZZ"})

	require.Len(t, stocks, 3)
	assert.Equal(t, models.Stock{Ticker: "AAPL", Name: "Apple Inc.", Price: 100, Change: -2, SophieScore: 50, Color: models.ColorPositive}, stocks[0])
	assert.Equal(t, models.Stock{Ticker: "MSFT", Name: "Microsoft Corporation", Price: 150, Change: -1.5, SophieScore: 55, Color: models.ColorNeutral}, stocks[1])
	assert.Equal(t, "ZZZ Corporation", stocks[2].Name)
	assert.Equal(t, 200.0, stocks[2].Price)

	assert.Empty(t, DefaultStocks(nil))
}
