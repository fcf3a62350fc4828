package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sophie-analyst/models"
	"sophie-analyst/observability"
	"sophie-analyst/services"
)

// stubAPI wraps the offline fixture and lets tests inject failures
type stubAPI struct {
	*services.MockSophieAPI

	mu          sync.Mutex
	searchErr   error
	trendingErr error
	detailErr   map[string]error
	searches    int
}

func newStubAPI() *stubAPI {
	return &stubAPI{MockSophieAPI: services.NewMockSophieAPI(), detailErr: map[string]error{}}
}

func (s *stubAPI) SearchStocks(ctx context.Context, query string) ([]models.Stock, error) {
	s.mu.Lock()
	s.searches++
	s.mu.Unlock()
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.MockSophieAPI.SearchStocks(ctx, query)
}

func (s *stubAPI) GetTrendingStocks(ctx context.Context) ([]models.Stock, error) {
	if s.trendingErr != nil {
		return nil, s.trendingErr
	}
	return s.MockSophieAPI.GetTrendingStocks(ctx)
}

func (s *stubAPI) GetStockDetail(ctx context.Context, ticker string) (*models.StockDetail, error) {
	if err, ok := s.detailErr[ticker]; ok {
		return nil, err
	}
	return s.MockSophieAPI.GetStockDetail(ctx, ticker)
}

// failingStore fails every read
type failingStore struct {
	*MemoryPreferenceStore
}

func (failingStore) All(context.Context) (map[string]bool, error) {
	return nil, errors.New("disk I/O error")
}

func newTestRepo(api services.SophieAPI, prefs PreferenceStore) (StockRepository, *observability.Metrics) {
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	return NewStockRepository(api, prefs, metrics), metrics
}

func TestBookmarkKey(t *testing.T) {
	assert.Equal(t, "bookmark_AAPL", BookmarkKey("aapl"))
	assert.Equal(t, "bookmark_NVDA", BookmarkKey(" NVDA "))
}

func TestStockRepository_BookmarkLifecycle(t *testing.T) {
	prefs := NewMemoryPreferenceStore()
	repo, metrics := newTestRepo(newStubAPI(), prefs)
	ctx := context.Background()

	on, err := repo.IsBookmarked(ctx, "AAPL")
	require.NoError(t, err)
	assert.False(t, on)

	require.NoError(t, repo.BookmarkStock(ctx, "aapl"))
	require.NoError(t, repo.BookmarkStock(ctx, "AAPL"))
	on, _ = repo.IsBookmarked(ctx, "AAPL")
	assert.True(t, on)

	all, _ := prefs.All(ctx)
	assert.Equal(t, map[string]bool{"bookmark_AAPL": true}, all, "bookmarking twice equals once")

	require.NoError(t, repo.UnbookmarkStock(ctx, "AAPL"))
	all, _ = prefs.All(ctx)
	assert.Equal(t, map[string]bool{"bookmark_AAPL": false}, all, "flag is flipped, not deleted")

	require.NoError(t, repo.UnbookmarkStock(ctx, "MSFT"))
	on, _ = repo.IsBookmarked(ctx, "MSFT")
	assert.False(t, on)

	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.BookmarkOperationsTotal.WithLabelValues("bookmark", "success")))
}

func TestStockRepository_ToggleBookmark(t *testing.T) {
	repo, _ := newTestRepo(newStubAPI(), NewMemoryPreferenceStore())
	ctx := context.Background()

	state, err := repo.ToggleBookmark(ctx, "NVDA")
	require.NoError(t, err)
	assert.True(t, state)

	state, err = repo.ToggleBookmark(ctx, "NVDA")
	require.NoError(t, err)
	assert.False(t, state)

	on, _ := repo.IsBookmarked(ctx, "NVDA")
	assert.False(t, on)
}

func TestStockRepository_RejectsBlankTicker(t *testing.T) {
	prefs := NewMemoryPreferenceStore()
	repo, metrics := newTestRepo(newStubAPI(), prefs)
	ctx := context.Background()

	assert.EqualError(t, repo.BookmarkStock(ctx, "  "), "ticker is required")
	assert.Error(t, repo.UnbookmarkStock(ctx, ""))

	state, err := repo.ToggleBookmark(ctx, "")
	assert.EqualError(t, err, "ticker is required")
	assert.False(t, state)

	all, err := prefs.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.BookmarkOperationsTotal.WithLabelValues("bookmark", "error")))
}

func TestStockRepository_GetBookmarkedStocks(t *testing.T) {
	api := newStubAPI()
	api.detailErr["GOOGL"] = errors.New("backend down")
	prefs := NewMemoryPreferenceStore()
	repo, _ := newTestRepo(api, prefs)
	ctx := context.Background()

	for _, ticker := range []string{"NVDA", "AAPL", "GOOGL", "TSLA"} {
		require.NoError(t, repo.BookmarkStock(ctx, ticker))
	}
	require.NoError(t, repo.UnbookmarkStock(ctx, "TSLA"))
	require.NoError(t, prefs.SetBool(ctx, "theme_dark", true))

	stocks, err := repo.GetBookmarkedStocks(ctx)
	require.NoError(t, err)

	require.Len(t, stocks, 2)
	assert.Equal(t, "AAPL", stocks[0].Ticker)
	assert.Equal(t, "NVDA", stocks[1].Ticker)
	assert.Equal(t, 92, stocks[1].SophieScore)
	assert.Equal(t, "", stocks[0].Color)
}

func TestStockRepository_GetBookmarkedStocks_StoreFailure(t *testing.T) {
	repo, metrics := newTestRepo(newStubAPI(), failingStore{NewMemoryPreferenceStore()})

	stocks, err := repo.GetBookmarkedStocks(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, stocks)
	assert.Empty(t, stocks)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.BookmarkOperationsTotal.WithLabelValues("list", "error")))
}

func TestStockRepository_SearchStocks(t *testing.T) {
	api := newStubAPI()
	repo, _ := newTestRepo(api, NewMemoryPreferenceStore())
	ctx := context.Background()

	stocks, err := repo.SearchStocks(ctx, "   ")
	require.NoError(t, err)
	assert.Empty(t, stocks)
	assert.Zero(t, api.searches, "blank search issues no request")

	stocks, err = repo.SearchStocks(ctx, "nvidia")
	require.NoError(t, err)
	require.Len(t, stocks, 1)
	assert.Equal(t, "NVDA", stocks[0].Ticker)
}

func TestStockRepository_SearchFallsBackToTrending(t *testing.T) {
	api := newStubAPI()
	api.searchErr = errors.New("Error searching stocks: HTTP 500")
	repo, _ := newTestRepo(api, NewMemoryPreferenceStore())

	stocks, err := repo.SearchStocks(context.Background(), "tesla")

	require.NoError(t, err)
	require.Len(t, stocks, 1)
	assert.Equal(t, "TSLA", stocks[0].Ticker)
}

func TestStockRepository_SearchFallbackFailure(t *testing.T) {
	api := newStubAPI()
	api.searchErr = errors.New("search down")
	api.trendingErr = errors.New("trending down")
	repo, _ := newTestRepo(api, NewMemoryPreferenceStore())

	_, err := repo.SearchStocks(context.Background(), "tesla")

	assert.EqualError(t, err, "trending down")
}

func TestStockRepository_NormalizesTickers(t *testing.T) {
	repo, _ := newTestRepo(newStubAPI(), NewMemoryPreferenceStore())

	detail, err := repo.GetStockDetail(context.Background(), " nvda")

	require.NoError(t, err)
	assert.Equal(t, "NVDA", detail.Ticker)
	assert.NotNil(t, detail.Fundamentals)
}
