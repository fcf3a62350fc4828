package repository

import (
	"context"
	"errors"
	"sort"
	"strings"

	"sophie-analyst/models"
	"sophie-analyst/observability"
	"sophie-analyst/services"
)

const bookmarkPrefix = "bookmark_"

var errEmptyTicker = errors.New("ticker is required")

// BookmarkKey is the preference key for a ticker's bookmark flag
func BookmarkKey(ticker string) string {
	return bookmarkPrefix + normalizeTicker(ticker)
}

func normalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

type stockRepository struct {
	api     services.SophieAPI
	prefs   PreferenceStore
	metrics *observability.Metrics
}

// NewStockRepository combines a remote data source with a local bookmark store.
// A nil metrics uses the global instance.
func NewStockRepository(api services.SophieAPI, prefs PreferenceStore, metrics *observability.Metrics) StockRepository {
	if metrics == nil {
		metrics = observability.GetMetrics()
	}
	return &stockRepository{api: api, prefs: prefs, metrics: metrics}
}

func (r *stockRepository) GetTrendingStocks(ctx context.Context) ([]models.Stock, error) {
	return r.api.GetTrendingStocks(ctx)
}

func (r *stockRepository) GetStockDetail(ctx context.Context, ticker string) (*models.StockDetail, error) {
	return r.api.GetStockDetail(ctx, normalizeTicker(ticker))
}

func (r *stockRepository) GetSophieAnalysis(ctx context.Context, ticker string) (*models.SophieAnalysis, error) {
	return r.api.GetSophieAnalysis(ctx, normalizeTicker(ticker))
}

func (r *stockRepository) GetAgentSignals(ctx context.Context, ticker string) ([]models.AgentSignal, error) {
	return r.api.GetAgentSignals(ctx, normalizeTicker(ticker))
}

// SearchStocks asks the backend and, when that fails, filters the trending list locally
func (r *stockRepository) SearchStocks(ctx context.Context, query string) ([]models.Stock, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Stock{}, nil
	}

	stocks, err := r.api.SearchStocks(ctx, query)
	if err == nil {
		return stocks, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	observability.Warn("stock search failed, filtering trending stocks instead", "query", query, "error", err)
	trending, terr := r.api.GetTrendingStocks(ctx)
	if terr != nil {
		return nil, terr
	}
	return services.FilterStocks(trending, query), nil
}

func (r *stockRepository) setBookmark(ctx context.Context, op, ticker string, value bool) error {
	if normalizeTicker(ticker) == "" {
		r.metrics.RecordBookmarkOperation(op, "error")
		return errEmptyTicker
	}
	if err := r.prefs.SetBool(ctx, BookmarkKey(ticker), value); err != nil {
		r.metrics.RecordBookmarkOperation(op, "error")
		return err
	}
	r.metrics.RecordBookmarkOperation(op, "success")
	return nil
}

func (r *stockRepository) BookmarkStock(ctx context.Context, ticker string) error {
	return r.setBookmark(ctx, "bookmark", ticker, true)
}

// UnbookmarkStock clears the flag. The key is kept with a false value.
func (r *stockRepository) UnbookmarkStock(ctx context.Context, ticker string) error {
	return r.setBookmark(ctx, "unbookmark", ticker, false)
}

func (r *stockRepository) IsBookmarked(ctx context.Context, ticker string) (bool, error) {
	return r.prefs.GetBool(ctx, BookmarkKey(ticker), false)
}

// ToggleBookmark flips the flag and returns the new state
func (r *stockRepository) ToggleBookmark(ctx context.Context, ticker string) (bool, error) {
	if normalizeTicker(ticker) == "" {
		return false, errEmptyTicker
	}
	current, err := r.IsBookmarked(ctx, ticker)
	if err != nil {
		return false, err
	}
	if current {
		return false, r.UnbookmarkStock(ctx, ticker)
	}
	return true, r.BookmarkStock(ctx, ticker)
}

// GetBookmarkedStocks re-fetches every bookmarked ticker. Tickers that fail to load
// are skipped, and a store failure yields an empty list.
func (r *stockRepository) GetBookmarkedStocks(ctx context.Context) ([]models.Stock, error) {
	all, err := r.prefs.All(ctx)
	if err != nil {
		observability.Error("failed to read bookmarks", "error", err)
		r.metrics.RecordBookmarkOperation("list", "error")
		return []models.Stock{}, nil
	}

	tickers := make([]string, 0, len(all))
	for key, on := range all {
		if on && strings.HasPrefix(key, bookmarkPrefix) {
			tickers = append(tickers, strings.TrimPrefix(key, bookmarkPrefix))
		}
	}
	sort.Strings(tickers)

	stocks := make([]models.Stock, 0, len(tickers))
	for _, ticker := range tickers {
		detail, err := r.api.GetStockDetail(ctx, ticker)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			observability.WithTicker(ticker).Warn("skipping bookmarked stock", "error", err)
			continue
		}
		stocks = append(stocks, detail.Summary())
	}

	r.metrics.RecordBookmarkOperation("list", "success")
	return stocks, nil
}
