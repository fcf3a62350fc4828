package services

import (
	"context"
	"strings"
	"time"

	"sophie-analyst/models"
)

// MockSophieAPI serves a fixed offline dataset
type MockSophieAPI struct {
	latency  time.Duration
	trending []models.Stock
	details  map[string]models.StockDetail
}

// MockOption configures a MockSophieAPI
type MockOption func(*MockSophieAPI)

// WithLatency delays every call to simulate a network round trip
func WithLatency(d time.Duration) MockOption {
	return func(m *MockSophieAPI) {
		m.latency = d
	}
}

// NewMockSophieAPI creates the offline data source
func NewMockSophieAPI(opts ...MockOption) *MockSophieAPI {
	m := &MockSophieAPI{
		trending: mockTrendingStocks(),
		details:  mockStockDetails(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MockSophieAPI) wait(ctx context.Context) error {
	if m.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(m.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (m *MockSophieAPI) GetTrendingStocks(ctx context.Context) ([]models.Stock, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	return append([]models.Stock(nil), m.trending...), nil
}

func (m *MockSophieAPI) GetStockDetail(ctx context.Context, ticker string) (*models.StockDetail, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	detail, ok := m.details[ticker]
	if !ok {
		detail = mockPlaceholderDetail(ticker)
	}
	return &detail, nil
}

func (m *MockSophieAPI) GetSophieAnalysis(ctx context.Context, ticker string) (*models.SophieAnalysis, error) {
	detail, err := m.GetStockDetail(ctx, ticker)
	if err != nil {
		return nil, err
	}
	return &detail.SophieAnalysis, nil
}

func (m *MockSophieAPI) GetAgentSignals(ctx context.Context, ticker string) ([]models.AgentSignal, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	return mockAgentSignals(ticker), nil
}

// SearchStocks matches the fixture's trending list on ticker or name
func (m *MockSophieAPI) SearchStocks(ctx context.Context, query string) ([]models.Stock, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []models.Stock{}, nil
	}
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	return FilterStocks(m.trending, query), nil
}

// FilterStocks keeps stocks whose ticker or name contains query, ignoring case
func FilterStocks(stocks []models.Stock, query string) []models.Stock {
	query = strings.ToLower(strings.TrimSpace(query))
	out := []models.Stock{}
	if query == "" {
		return out
	}
	for _, s := range stocks {
		if strings.Contains(strings.ToLower(s.Ticker), query) || strings.Contains(strings.ToLower(s.Name), query) {
			out = append(out, s)
		}
	}
	return out
}

// Probe always succeeds once the simulated latency has passed
func (m *MockSophieAPI) Probe(ctx context.Context) error {
	return m.wait(ctx)
}
