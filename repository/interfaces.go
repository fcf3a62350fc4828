package repository

import (
	"context"

	"sophie-analyst/models"
)

// PreferenceStore is a namespaced key-value store of booleans
type PreferenceStore interface {
	GetBool(ctx context.Context, key string, def bool) (bool, error)
	SetBool(ctx context.Context, key string, value bool) error
	All(ctx context.Context) (map[string]bool, error)
	Close() error
}

// StockRepository is the data facade used by screens, the HTTP API and the CLI
type StockRepository interface {
	GetTrendingStocks(ctx context.Context) ([]models.Stock, error)
	GetStockDetail(ctx context.Context, ticker string) (*models.StockDetail, error)
	GetSophieAnalysis(ctx context.Context, ticker string) (*models.SophieAnalysis, error)
	GetAgentSignals(ctx context.Context, ticker string) ([]models.AgentSignal, error)
	SearchStocks(ctx context.Context, query string) ([]models.Stock, error)

	// Bookmarks
	BookmarkStock(ctx context.Context, ticker string) error
	UnbookmarkStock(ctx context.Context, ticker string) error
	IsBookmarked(ctx context.Context, ticker string) (bool, error)
	ToggleBookmark(ctx context.Context, ticker string) (bool, error)
	GetBookmarkedStocks(ctx context.Context) ([]models.Stock, error)
}

// Compile-time interface verification
var _ StockRepository = (*stockRepository)(nil)
var _ PreferenceStore = (*MemoryPreferenceStore)(nil)
var _ PreferenceStore = (*SQLitePreferenceStore)(nil)
var _ PreferenceStore = (*PostgresPreferenceStore)(nil)
