package app

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"sophie-analyst/config"
	"sophie-analyst/internal/screens"
	"sophie-analyst/observability"
	"sophie-analyst/repository"
	"sophie-analyst/services"
)

// App holds the application's dependencies. Everything is built once in NewApp
// and handed to screens, the HTTP API and the CLI.
type App struct {
	cfg      *config.Config
	metrics  *observability.Metrics
	provider *services.EndpointProvider
	graphql  *services.GraphQLClient
	api      services.SophieAPI
	prober   services.Prober
	prefs    repository.PreferenceStore
	repo     repository.StockRepository
	health   *services.HealthCache
}

// Option customises NewApp
type Option func(*App)

// WithMetrics uses m instead of the global metrics instance
func WithMetrics(m *observability.Metrics) Option {
	return func(a *App) {
		a.metrics = m
	}
}

// WithPreferenceStore skips opening the configured bookmark store
func WithPreferenceStore(store repository.PreferenceStore) Option {
	return func(a *App) {
		a.prefs = store
	}
}

// NewApp wires the data source selected by cfg with the bookmark store
func NewApp(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{cfg: cfg}
	for _, opt := range opts {
		opt(a)
	}
	if a.metrics == nil {
		a.metrics = observability.GetMetrics()
	}

	if cfg.GraphQL.UseMock {
		mock := services.NewMockSophieAPI()
		a.api = mock
		a.prober = mock
		observability.Info("using offline mock data source")
	} else {
		var endpointOpts []services.EndpointOption
		endpointOpts = append(endpointOpts, services.WithMetrics(a.metrics))
		if cfg.HasAPIToken() {
			endpointOpts = append(endpointOpts, services.WithAuthToken(cfg.GraphQL.APIToken))
		}
		provider, err := services.NewEndpointProvider(cfg.GraphQL.Endpoints,
			time.Duration(cfg.GraphQL.TimeoutSeconds)*time.Second, endpointOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create endpoint provider: %w", err)
		}

		var breakers *services.CircuitBreakerRegistry
		if cfg.CircuitBreaker.Enabled {
			breakers = services.NewCircuitBreakerRegistry(services.NewCircuitBreakerConfig(cfg.CircuitBreaker), a.metrics)
		}

		a.provider = provider
		a.graphql = services.NewGraphQLClient(provider, breakers, a.metrics)
		a.api = services.NewGraphQLSophieAPI(a.graphql, cfg.Trending.LookbackDays, cfg.Trending.PopularTickers)
		a.prober = a.graphql
		a.health = services.NewHealthCache(time.Duration(cfg.Diagnostics.HealthCacheTTLSeconds) * time.Second)
	}

	if a.prefs == nil {
		prefs, err := repository.OpenPreferenceStore(ctx, cfg.Bookmarks)
		if err != nil {
			return nil, fmt.Errorf("failed to open bookmark store: %w", err)
		}
		a.prefs = prefs
	}

	a.repo = repository.NewStockRepository(a.api, a.prefs, a.metrics)
	return a, nil
}

func (a *App) Config() *config.Config                 { return a.cfg }
func (a *App) Metrics() *observability.Metrics        { return a.metrics }
func (a *App) Repository() repository.StockRepository { return a.repo }
func (a *App) API() services.SophieAPI                { return a.api }

// GraphQL returns the backend client, or nil when running on mock data
func (a *App) GraphQL() *services.GraphQLClient {
	return a.graphql
}

// Health returns the cached backend probe. Mock mode always reports available.
func (a *App) Health(ctx context.Context) services.HealthResult {
	if a.graphql == nil {
		return services.HealthResult{Available: true, Endpoint: "mock", Message: "Using mock data", CheckedAt: time.Now()}
	}
	return a.health.Check(ctx, a.graphql)
}

func (a *App) Home() *screens.HomeModel {
	return screens.NewHomeModel(a.repo, a.metrics)
}

func (a *App) Details(ticker string) *screens.DetailsModel {
	return screens.NewDetailsModel(a.repo, ticker, a.metrics)
}

func (a *App) Diagnostics() *screens.DiagnosticsModel {
	var endpoints screens.EndpointState
	if a.provider != nil {
		endpoints = a.provider
	}
	return screens.NewDiagnosticsModel(a.prober, endpoints,
		time.Duration(a.cfg.Diagnostics.ProbeTimeoutSeconds)*time.Second, a.metrics)
}

// OpenDeepLink returns the detail screen for the ticker named by raw
func (a *App) OpenDeepLink(raw string) *screens.DetailsModel {
	return a.Details(ParseDeepLink(raw, a.cfg.DeepLink.DefaultTicker))
}

func (a *App) Close() error {
	if a.prefs != nil {
		return a.prefs.Close()
	}
	return nil
}

// ParseDeepLink extracts the ticker from a link such as sophie://stock/NVDA or
// https://sophie.app/stock/nvda. The last non-empty path segment wins.
func ParseDeepLink(raw, defaultTicker string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return defaultTicker
	}

	segments := strings.Split(u.Path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if seg := strings.TrimSpace(segments[i]); seg != "" {
			return strings.ToUpper(seg)
		}
	}
	return defaultTicker
}
