package screens

import (
	"context"
	"fmt"
	"strings"

	"sophie-analyst/models"
	"sophie-analyst/observability"
	"sophie-analyst/repository"
)

// DetailsState is the snapshot rendered by the stock detail screen
type DetailsState struct {
	Ticker       string              `json:"ticker"`
	IsLoading    bool                `json:"is_loading"`
	StockDetail  *models.StockDetail `json:"stock_detail,omitempty"`
	IsBookmarked bool                `json:"is_bookmarked"`
	SelectedTab  models.AnalysisTab  `json:"selected_tab"`
	Error        string              `json:"error,omitempty"`
}

// DetailsModel drives the detail screen for one ticker
type DetailsModel struct {
	repo    repository.StockRepository
	state   *Store[DetailsState]
	metrics *observability.Metrics
}

func NewDetailsModel(repo repository.StockRepository, ticker string, metrics *observability.Metrics) *DetailsModel {
	if metrics == nil {
		metrics = observability.GetMetrics()
	}
	return &DetailsModel{
		repo: repo,
		state: NewStore(DetailsState{
			Ticker:      strings.ToUpper(strings.TrimSpace(ticker)),
			SelectedTab: models.TabSophie,
		}),
		metrics: metrics,
	}
}

func (m *DetailsModel) State() DetailsState {
	return m.state.Get()
}

func (m *DetailsModel) Subscribe() (<-chan DetailsState, func()) {
	return m.state.Subscribe()
}

func (m *DetailsModel) Ticker() string {
	return m.state.Get().Ticker
}

// LoadStockDetails fetches the detail and the bookmark flag
func (m *DetailsModel) LoadStockDetails(ctx context.Context) {
	ticker := m.Ticker()
	m.state.Update(func(s DetailsState) DetailsState {
		s.IsLoading = true
		s.Error = ""
		return s
	})

	detail, err := m.repo.GetStockDetail(ctx, ticker)
	if err != nil {
		observability.WithTicker(ticker).Error("failed to load stock details", "error", err)
		m.metrics.RecordScreenLoad("details", "error")
		m.state.Update(func(s DetailsState) DetailsState {
			s.IsLoading = false
			s.Error = fmt.Sprintf("Failed to load stock details: %v", err)
			return s
		})
		return
	}

	bookmarked, err := m.repo.IsBookmarked(ctx, ticker)
	if err != nil {
		observability.WithTicker(ticker).Warn("failed to read bookmark", "error", err)
	}

	m.metrics.RecordScreenLoad("details", "success")
	m.state.Update(func(s DetailsState) DetailsState {
		s.IsLoading = false
		s.StockDetail = detail
		s.IsBookmarked = bookmarked
		return s
	})
}

func (m *DetailsModel) SelectTab(tab models.AnalysisTab) {
	m.state.Update(func(s DetailsState) DetailsState {
		s.SelectedTab = tab
		return s
	})
}

func (m *DetailsModel) ToggleBookmark(ctx context.Context) {
	ticker := m.Ticker()
	state, err := m.repo.ToggleBookmark(ctx, ticker)
	if err != nil {
		observability.WithTicker(ticker).Error("failed to toggle bookmark", "error", err)
		return
	}
	m.state.Update(func(s DetailsState) DetailsState {
		s.IsBookmarked = state
		return s
	})
}
