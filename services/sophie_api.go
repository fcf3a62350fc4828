package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sophie-analyst/agents"
	"sophie-analyst/models"
	"sophie-analyst/observability"
)

const dateLayout = "2006-01-02"

// GraphQLSophieAPI reads stocks and analysis from the SOPHIE GraphQL backend
type GraphQLSophieAPI struct {
	client         GraphQLExecutor
	lookbackDays   int
	popularTickers []string
	now            func() time.Time
}

// NewGraphQLSophieAPI creates the GraphQL-backed data source
func NewGraphQLSophieAPI(client GraphQLExecutor, lookbackDays int, popularTickers []string) *GraphQLSophieAPI {
	if lookbackDays <= 0 {
		lookbackDays = 7
	}
	return &GraphQLSophieAPI{
		client:         client,
		lookbackDays:   lookbackDays,
		popularTickers: append([]string(nil), popularTickers...),
		now:            time.Now,
	}
}

func (a *GraphQLSophieAPI) window() (string, string) {
	end := a.now()
	start := end.AddDate(0, 0, -a.lookbackDays)
	return start.Format(dateLayout), end.Format(dateLayout)
}

// GetTrendingStocks never fails: any problem yields the placeholder list
func (a *GraphQLSophieAPI) GetTrendingStocks(ctx context.Context) ([]models.Stock, error) {
	start, end := a.window()

	var data trendingStocksData
	if err := a.client.Execute(ctx, trendingStocksOperation(start, end), &data); err != nil {
		observability.Error("Failed to fetch trending stocks, using defaults", "error", err)
		return DefaultStocks(a.popularTickers), nil
	}

	if len(data.CoveredTickers) == 0 {
		observability.Warn("No trending tickers found, using defaults")
		return DefaultStocks(a.popularTickers), nil
	}
	if len(data.BatchStocks) == 0 {
		observability.Warn("No batch stock data available, using defaults")
		return DefaultStocks(a.popularTickers), nil
	}

	keep := make(map[string]bool, len(data.CoveredTickers)+len(a.popularTickers))
	for _, t := range data.CoveredTickers {
		keep[t.Ticker] = true
	}
	for _, t := range a.popularTickers {
		keep[t] = true
	}

	stocks := make([]models.Stock, 0, len(data.BatchStocks))
	for _, ws := range data.BatchStocks {
		if !keep[ws.Ticker] {
			continue
		}
		stocks = append(stocks, mapStock(ws))
	}

	if len(stocks) == 0 {
		observability.Warn("Trending query matched no stocks, using defaults",
			"covered", len(data.CoveredTickers),
			"batch", len(data.BatchStocks))
		return DefaultStocks(a.popularTickers), nil
	}

	observability.Debug("Loaded trending stocks", "count", len(stocks))
	return stocks, nil
}

// GetStockDetail loads one ticker with its analysis, fundamentals, technicals and agent signals
func (a *GraphQLSophieAPI) GetStockDetail(ctx context.Context, ticker string) (*models.StockDetail, error) {
	var data stockDetailData
	if err := a.client.Execute(ctx, stockDetailOperation(ticker), &data); err != nil {
		return nil, wrapAPIError("Error fetching stock detail", err)
	}

	if data.Stock == nil {
		return nil, fmt.Errorf("No data found for ticker %s: %w", ticker, ErrNotFound)
	}

	signals, err := a.GetAgentSignals(ctx, ticker)
	if err != nil {
		observability.WithTicker(ticker).Warn("agent signals unavailable", "error", err)
		signals = []models.AgentSignal{}
	}

	detail := mapStockDetail(ticker, data, signals)
	return &detail, nil
}

// GetSophieAnalysis loads the latest composite analysis for a ticker
func (a *GraphQLSophieAPI) GetSophieAnalysis(ctx context.Context, ticker string) (*models.SophieAnalysis, error) {
	var data sophieAnalysisData
	if err := a.client.Execute(ctx, sophieAnalysisOperation(ticker), &data); err != nil {
		return nil, wrapAPIError("Error fetching SOPHIE analysis", err)
	}

	if data.LatestSophieAnalysis == nil {
		return nil, fmt.Errorf("No SOPHIE analysis found for ticker %s: %w", ticker, ErrNotFound)
	}

	analysis := mapAnalysis(data.LatestSophieAnalysis)
	return &analysis, nil
}

// GetAgentSignals queries each catalog agent in turn. Agents with no signal or a
// server error are skipped; a transport failure aborts the whole call.
func (a *GraphQLSophieAPI) GetAgentSignals(ctx context.Context, ticker string) ([]models.AgentSignal, error) {
	signals := make([]models.AgentSignal, 0, len(agents.Catalog()))

	for _, agent := range agents.Catalog() {
		var data agentSignalData
		err := a.client.Execute(ctx, agentSignalOperation(agent, ticker), &data)
		if err != nil {
			if IsGraphQLError(err) {
				observability.WithTicker(ticker).Debug("agent signal query returned errors", "agent", agent.ID, "error", err)
				continue
			}
			return nil, fmt.Errorf("Error fetching agent signals: %w", err)
		}
		if data.LatestAgentSignal == nil {
			continue
		}
		signals = append(signals, mapAgentSignal(data.LatestAgentSignal, agent.ID, agent.DisplayName))
	}

	return signals, nil
}

// SearchStocks resolves matching tickers on the server, then loads their rows
func (a *GraphQLSophieAPI) SearchStocks(ctx context.Context, query string) ([]models.Stock, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Stock{}, nil
	}

	var found searchStocksData
	if err := a.client.Execute(ctx, searchStocksOperation(query), &found); err != nil {
		return nil, wrapAPIError("Error searching stocks", err)
	}

	tickers := make([]string, 0, len(found.SearchStocks))
	for _, t := range found.SearchStocks {
		if t.Ticker != "" {
			tickers = append(tickers, t.Ticker)
		}
	}
	if len(tickers) == 0 {
		return []models.Stock{}, nil
	}

	start, end := a.window()
	var batch batchStocksData
	if err := a.client.Execute(ctx, batchStocksOperation(tickers, start, end), &batch); err != nil {
		return nil, fmt.Errorf("Error searching stocks: %w", err)
	}

	stocks := make([]models.Stock, 0, len(batch.BatchStocks))
	for _, ws := range batch.BatchStocks {
		stocks = append(stocks, mapStock(ws))
	}
	return stocks, nil
}
