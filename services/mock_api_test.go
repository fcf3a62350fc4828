package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sophie-analyst/agents"
	"sophie-analyst/models"
)

func TestMockSophieAPI_Trending(t *testing.T) {
	api := NewMockSophieAPI()

	stocks, err := api.GetTrendingStocks(context.Background())

	require.NoError(t, err)
	require.Len(t, stocks, 7)
	assert.Equal(t, "AAPL", stocks[0].Ticker)
	assert.Equal(t, "from-blue-500 to-cyan-500", stocks[0].Color)
	assert.Equal(t, "TSLA", stocks[6].Ticker)

	stocks[0].Ticker = "changed"
	again, _ := api.GetTrendingStocks(context.Background())
	assert.Equal(t, "AAPL", again[0].Ticker, "callers get a copy")
}

func TestMockSophieAPI_StockDetail(t *testing.T) {
	api := NewMockSophieAPI()

	nvda, err := api.GetStockDetail(context.Background(), "NVDA")
	require.NoError(t, err)
	assert.Equal(t, 92, nvda.SophieAnalysis.OverallScore)
	require.NotNil(t, nvda.Fundamentals)
	assert.Equal(t, 68.2, *nvda.Fundamentals.PERatio)
	require.NotNil(t, nvda.Sentiment)
	assert.Equal(t, "strong buy", nvda.Sentiment.AnalystConsensus)
	assert.Len(t, nvda.Sentiment.NewsHeadlines, 3)
	require.Len(t, nvda.AgentSignals, 5)
	assert.Equal(t, "bearish", nvda.AgentSignals[2].Signal)
	assert.Equal(t, agents.BenGraham, nvda.AgentSignals[2].Agent)
}

func TestMockSophieAPI_UnknownTicker(t *testing.T) {
	api := NewMockSophieAPI()

	msft, err := api.GetStockDetail(context.Background(), "MSFT")
	require.NoError(t, err)
	assert.Equal(t, "Microsoft Corporation", msft.Name)
	assert.Equal(t, 405.32, msft.Price)
	assert.Equal(t, 85, msft.SophieAnalysis.OverallScore)
	assert.Nil(t, msft.Fundamentals)

	other, err := api.GetStockDetail(context.Background(), "ZZZ")
	require.NoError(t, err)
	assert.Equal(t, "ZZZ Corporation", other.Name)
	assert.Equal(t, models.DefaultSophieAnalysis(), other.SophieAnalysis)
	for _, s := range other.AgentSignals {
		assert.Equal(t, "neutral", s.Signal)
		assert.Equal(t, 60, s.Confidence)
	}
}

func TestMockSophieAPI_AgentSignals(t *testing.T) {
	signals, err := NewMockSophieAPI().GetAgentSignals(context.Background(), "AAPL")

	require.NoError(t, err)
	require.Len(t, signals, 5)
	assert.Equal(t, "Warren Buffett", signals[0].AgentDisplayName)
	assert.Equal(t, 85, signals[0].Confidence)
	assert.Equal(t, "2025-05-05", signals[0].Date)
	assert.Equal(t, "2025-05-01", signals[4].Date)
}

func TestMockSophieAPI_Analysis(t *testing.T) {
	analysis, err := NewMockSophieAPI().GetSophieAnalysis(context.Background(), "AAPL")

	require.NoError(t, err)
	assert.Equal(t, "bullish", analysis.Signal)
	assert.Len(t, analysis.BullishFactors, 4)
}

func TestMockSophieAPI_Search(t *testing.T) {
	api := NewMockSophieAPI()

	tests := []struct {
		query string
		want  []string
	}{
		{"", nil},
		{"  ", nil},
		{"aapl", []string{"AAPL"}},
		{"corp", []string{"MSFT", "NVDA"}},
		{"INC", []string{"AAPL", "AMZN", "GOOGL", "META", "TSLA"}},
		{"zzz", nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			stocks, err := api.SearchStocks(context.Background(), tt.query)
			require.NoError(t, err)
			require.NotNil(t, stocks)

			var tickers []string
			for _, s := range stocks {
				tickers = append(tickers, s.Ticker)
			}
			assert.Equal(t, tt.want, tickers)
		})
	}
}

func TestMockSophieAPI_LatencyHonoursContext(t *testing.T) {
	api := NewMockSophieAPI(WithLatency(time.Hour))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := api.GetTrendingStocks(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMockSophieAPI_Latency(t *testing.T) {
	api := NewMockSophieAPI(WithLatency(20 * time.Millisecond))

	start := time.Now()
	_, err := api.GetAgentSignals(context.Background(), "AAPL")

	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}
