package screens

import (
	"context"
	"fmt"
	"strings"

	"sophie-analyst/models"
	"sophie-analyst/observability"
	"sophie-analyst/repository"
)

// HomeState is the snapshot rendered by the home screen
type HomeState struct {
	IsLoading         bool            `json:"is_loading"`
	TrendingStocks    []models.Stock  `json:"trending_stocks"`
	BookmarkedStocks  []models.Stock  `json:"bookmarked_stocks"`
	BookmarkedTickers map[string]bool `json:"bookmarked_tickers"`
	SearchQuery       string          `json:"search_query"`
	SearchResults     []models.Stock  `json:"search_results"`
	IsSearchActive    bool            `json:"is_search_active"`
	Error             string          `json:"error,omitempty"`
}

// HomeModel drives the trending list, bookmarks and search
type HomeModel struct {
	repo    repository.StockRepository
	state   *Store[HomeState]
	metrics *observability.Metrics
}

func NewHomeModel(repo repository.StockRepository, metrics *observability.Metrics) *HomeModel {
	if metrics == nil {
		metrics = observability.GetMetrics()
	}
	return &HomeModel{
		repo: repo,
		state: NewStore(HomeState{
			TrendingStocks:    []models.Stock{},
			BookmarkedStocks:  []models.Stock{},
			BookmarkedTickers: map[string]bool{},
			SearchResults:     []models.Stock{},
		}),
		metrics: metrics,
	}
}

func (m *HomeModel) State() HomeState {
	return m.state.Get()
}

func (m *HomeModel) Subscribe() (<-chan HomeState, func()) {
	return m.state.Subscribe()
}

// Load fetches trending stocks and bookmarks
func (m *HomeModel) Load(ctx context.Context) {
	m.LoadTrendingStocks(ctx)
	m.LoadBookmarkedStocks(ctx)
}

func (m *HomeModel) LoadTrendingStocks(ctx context.Context) {
	m.state.Update(func(s HomeState) HomeState {
		s.IsLoading = true
		s.Error = ""
		return s
	})

	stocks, err := m.repo.GetTrendingStocks(ctx)
	if err != nil {
		observability.Error("failed to load trending stocks", "error", err)
		m.metrics.RecordScreenLoad("home", "error")
		m.state.Update(func(s HomeState) HomeState {
			s.IsLoading = false
			s.Error = fmt.Sprintf("Failed to load trending stocks: %v", err)
			return s
		})
		return
	}

	m.metrics.RecordScreenLoad("home", "success")
	m.state.Update(func(s HomeState) HomeState {
		s.IsLoading = false
		s.TrendingStocks = stocks
		return s
	})
}

// LoadBookmarkedStocks refreshes the bookmark list. Failures leave the previous list.
func (m *HomeModel) LoadBookmarkedStocks(ctx context.Context) {
	stocks, err := m.repo.GetBookmarkedStocks(ctx)
	if err != nil {
		observability.Error("failed to load bookmarked stocks", "error", err)
		return
	}

	tickers := make(map[string]bool, len(stocks))
	for _, s := range stocks {
		tickers[s.Ticker] = true
	}
	m.state.Update(func(s HomeState) HomeState {
		s.BookmarkedStocks = stocks
		s.BookmarkedTickers = tickers
		return s
	})
}

// ToggleBookmark flips a bookmark and reloads the bookmark list
func (m *HomeModel) ToggleBookmark(ctx context.Context, ticker string) {
	if _, err := m.repo.ToggleBookmark(ctx, ticker); err != nil {
		observability.WithTicker(ticker).Error("failed to toggle bookmark", "error", err)
		return
	}
	m.LoadBookmarkedStocks(ctx)
}

// OnSearchQueryChanged records the query and runs the search when it is not blank
func (m *HomeModel) OnSearchQueryChanged(ctx context.Context, query string) {
	if strings.TrimSpace(query) == "" {
		m.state.Update(func(s HomeState) HomeState {
			s.SearchQuery = query
			s.IsSearchActive = false
			s.SearchResults = []models.Stock{}
			return s
		})
		return
	}

	m.state.Update(func(s HomeState) HomeState {
		s.SearchQuery = query
		s.IsSearchActive = true
		s.IsLoading = true
		s.Error = ""
		return s
	})

	results, err := m.repo.SearchStocks(ctx, query)
	m.state.Update(func(s HomeState) HomeState {
		// a newer query has replaced this one
		if s.SearchQuery != query {
			return s
		}
		s.IsLoading = false
		if err != nil {
			s.Error = fmt.Sprintf("Failed to search stocks: %v", err)
			return s
		}
		s.SearchResults = results
		return s
	})
	if err != nil {
		observability.Error("failed to search stocks", "query", query, "error", err)
	}
}

func (m *HomeModel) ClearSearch() {
	m.state.Update(func(s HomeState) HomeState {
		s.SearchQuery = ""
		s.IsSearchActive = false
		s.SearchResults = []models.Stock{}
		return s
	})
}

// TestServerConnection fetches trending stocks and logs whether any came back
func (m *HomeModel) TestServerConnection(ctx context.Context) error {
	m.state.Update(func(s HomeState) HomeState {
		s.IsLoading = true
		return s
	})
	defer m.state.Update(func(s HomeState) HomeState {
		s.IsLoading = false
		return s
	})

	observability.Debug("testing GraphQL server connection")
	stocks, err := m.repo.GetTrendingStocks(ctx)
	if err != nil {
		observability.Error("failed to connect to GraphQL server", "error", err)
		return err
	}
	if len(stocks) == 0 {
		observability.Warn("connection test returned empty data")
		return nil
	}
	observability.Info("connected to GraphQL server", "stocks", len(stocks))
	return nil
}
