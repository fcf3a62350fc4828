package services

import (
	"context"

	"sophie-analyst/models"
)

// SophieAPI is the remote data source behind the repository
type SophieAPI interface {
	GetTrendingStocks(ctx context.Context) ([]models.Stock, error)
	GetStockDetail(ctx context.Context, ticker string) (*models.StockDetail, error)
	GetSophieAnalysis(ctx context.Context, ticker string) (*models.SophieAnalysis, error)
	GetAgentSignals(ctx context.Context, ticker string) ([]models.AgentSignal, error)
	SearchStocks(ctx context.Context, query string) ([]models.Stock, error)
}

// GraphQLExecutor runs a GraphQL operation and decodes its data
type GraphQLExecutor interface {
	Execute(ctx context.Context, op Operation, out any) error
}

// Prober checks that the backend answers
type Prober interface {
	Probe(ctx context.Context) error
}

// Compile-time interface verification
var _ SophieAPI = (*GraphQLSophieAPI)(nil)
var _ SophieAPI = (*MockSophieAPI)(nil)
var _ GraphQLExecutor = (*GraphQLClient)(nil)
var _ Prober = (*GraphQLClient)(nil)
var _ Prober = (*MockSophieAPI)(nil)
