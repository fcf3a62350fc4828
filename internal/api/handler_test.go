package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sophie-analyst/config"
	"sophie-analyst/internal/app"
	"sophie-analyst/internal/screens"
	"sophie-analyst/models"
	"sophie-analyst/observability"
	"sophie-analyst/services"
)

type testServer struct {
	*httptest.Server
	registry *prometheus.Registry
}

// newTestServer serves the full router over an App built from cfg
func newTestServer(t *testing.T, cfg *config.Config) *testServer {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	a, err := app.NewApp(context.Background(), cfg, app.WithMetrics(metrics))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	srv := httptest.NewServer(NewRouter(NewHandler(a), cfg, metrics, reg))
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, registry: reg}
}

func mockConfig() *config.Config {
	cfg := config.NewTestConfig()
	cfg.GraphQL.UseMock = true
	return cfg
}

func (s *testServer) do(t *testing.T, method, path string) (int, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, s.URL+path, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(body, &out), "body: %s", body)
	return out
}

func TestHandler_Health_Mock(t *testing.T) {
	srv := newTestServer(t, mockConfig())

	status, body := srv.do(t, http.MethodGet, "/api/health")
	require.Equal(t, http.StatusOK, status)

	resp := decode[HealthResponse](t, body)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Backend.Available)
	assert.Equal(t, "mock", resp.CurrentEndpoint)
}

func TestHandler_Stocks(t *testing.T) {
	srv := newTestServer(t, mockConfig())

	t.Run("trending", func(t *testing.T) {
		status, body := srv.do(t, http.MethodGet, "/api/stocks/trending")
		require.Equal(t, http.StatusOK, status)
		assert.Len(t, decode[[]models.Stock](t, body), 7)
	})

	t.Run("search", func(t *testing.T) {
		status, body := srv.do(t, http.MethodGet, "/api/stocks/search?q=nvidia")
		require.Equal(t, http.StatusOK, status)
		stocks := decode[[]models.Stock](t, body)
		require.Len(t, stocks, 1)
		assert.Equal(t, "NVDA", stocks[0].Ticker)
	})

	t.Run("blank search", func(t *testing.T) {
		status, body := srv.do(t, http.MethodGet, "/api/stocks/search?q=%20%20")
		require.Equal(t, http.StatusOK, status)
		assert.JSONEq(t, `[]`, string(body))
	})

	t.Run("detail", func(t *testing.T) {
		status, body := srv.do(t, http.MethodGet, "/api/stocks/nvda")
		require.Equal(t, http.StatusOK, status)
		detail := decode[models.StockDetail](t, body)
		assert.Equal(t, "NVDA", detail.Ticker)
		assert.Equal(t, 92, detail.SophieAnalysis.OverallScore)
	})

	t.Run("analysis", func(t *testing.T) {
		status, body := srv.do(t, http.MethodGet, "/api/stocks/AAPL/analysis")
		require.Equal(t, http.StatusOK, status)
		assert.NotEmpty(t, decode[models.SophieAnalysis](t, body).Signal)
	})

	t.Run("agents", func(t *testing.T) {
		status, body := srv.do(t, http.MethodGet, "/api/stocks/AAPL/agents")
		require.Equal(t, http.StatusOK, status)
		assert.NotEmpty(t, decode[[]models.AgentSignal](t, body))
	})

	t.Run("invalid ticker", func(t *testing.T) {
		status, body := srv.do(t, http.MethodGet, "/api/stocks/bad$ticker!")
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Contains(t, string(body), "invalid ticker")
	})
}

func TestHandler_Bookmarks(t *testing.T) {
	srv := newTestServer(t, mockConfig())

	status, body := srv.do(t, http.MethodPut, "/api/bookmarks/nvda")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, BookmarkResponse{Ticker: "NVDA", IsBookmarked: true}, decode[BookmarkResponse](t, body))

	status, body = srv.do(t, http.MethodPost, "/api/bookmarks/AAPL/toggle")
	require.Equal(t, http.StatusOK, status)
	assert.True(t, decode[BookmarkResponse](t, body).IsBookmarked)

	status, body = srv.do(t, http.MethodGet, "/api/bookmarks")
	require.Equal(t, http.StatusOK, status)
	stocks := decode[[]models.Stock](t, body)
	require.Len(t, stocks, 2)
	assert.Equal(t, "AAPL", stocks[0].Ticker)
	assert.Equal(t, "NVDA", stocks[1].Ticker)

	status, _ = srv.do(t, http.MethodDelete, "/api/bookmarks/NVDA")
	require.Equal(t, http.StatusOK, status)
	status, _ = srv.do(t, http.MethodPost, "/api/bookmarks/AAPL/toggle")
	require.Equal(t, http.StatusOK, status)

	_, body = srv.do(t, http.MethodGet, "/api/bookmarks")
	assert.JSONEq(t, `[]`, string(body))
}

func TestHandler_Screens(t *testing.T) {
	srv := newTestServer(t, mockConfig())

	t.Run("home", func(t *testing.T) {
		status, body := srv.do(t, http.MethodGet, "/api/screens/home?q=apple")
		require.Equal(t, http.StatusOK, status)
		state := decode[screens.HomeState](t, body)
		assert.False(t, state.IsLoading)
		assert.Len(t, state.TrendingStocks, 7)
		assert.True(t, state.IsSearchActive)
		require.Len(t, state.SearchResults, 1)
		assert.Equal(t, "AAPL", state.SearchResults[0].Ticker)
	})

	t.Run("details with tab", func(t *testing.T) {
		status, body := srv.do(t, http.MethodGet, "/api/screens/details/nvda?tab=agents")
		require.Equal(t, http.StatusOK, status)
		state := decode[screens.DetailsState](t, body)
		assert.Equal(t, "NVDA", state.Ticker)
		assert.Equal(t, models.TabAgents, state.SelectedTab)
		require.NotNil(t, state.StockDetail)
	})

	t.Run("details bad tab", func(t *testing.T) {
		status, _ := srv.do(t, http.MethodGet, "/api/screens/details/NVDA?tab=charts")
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("deep link", func(t *testing.T) {
		status, body := srv.do(t, http.MethodGet, "/api/open?url=sophie%3A%2F%2Fstock%2Fmsft")
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "MSFT", decode[screens.DetailsState](t, body).Ticker)
	})

	t.Run("deep link default", func(t *testing.T) {
		_, body := srv.do(t, http.MethodGet, "/api/open")
		assert.Equal(t, "AAPL", decode[screens.DetailsState](t, body).Ticker)
	})
}

func TestHandler_Diagnostics(t *testing.T) {
	srv := newTestServer(t, mockConfig())

	_, body := srv.do(t, http.MethodGet, "/api/diagnostics")
	assert.Equal(t, screens.StatusUnknown, decode[screens.DiagnosticsState](t, body).Status)

	status, body := srv.do(t, http.MethodPost, "/api/diagnostics/test")
	require.Equal(t, http.StatusOK, status)
	state := decode[screens.DiagnosticsState](t, body)
	assert.Equal(t, screens.StatusConnected, state.Status)
	assert.Contains(t, state.Logs, "Connection successful!")

	// logs survive across requests
	_, body = srv.do(t, http.MethodPost, "/api/diagnostics/reset")
	assert.Contains(t, decode[screens.DiagnosticsState](t, body).Logs, "Connection successful!")
}

func TestHandler_Metrics(t *testing.T) {
	srv := newTestServer(t, mockConfig())
	srv.do(t, http.MethodGet, "/api/stocks/trending")

	status, body := srv.do(t, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `path="/api/stocks/trending"`)
}

func TestHandler_CORSPreflight(t *testing.T) {
	srv := newTestServer(t, mockConfig())

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/stocks/trending", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

// graphQLBackend answers each operation with a fixed body
func graphQLBackend(t *testing.T, responses map[string]string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			OperationName string `json:"operationName"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		body, ok := responses[req.OperationName]
		if !ok {
			body = `{"data":{}}`
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestHandler_ErrorMapping(t *testing.T) {
	backend := graphQLBackend(t, map[string]string{
		"StockDetail":    `{"data":{"stock":null}}`,
		"SophieAnalysis": `{"errors":[{"message":"analysis service down"}]}`,
	})

	cfg := config.NewTestConfig()
	cfg.GraphQL.Endpoints = []string{backend}
	srv := newTestServer(t, cfg)

	status, body := srv.do(t, http.MethodGet, "/api/stocks/ZZZZ")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, string(body), "No data found for ticker ZZZZ")

	status, body = srv.do(t, http.MethodGet, "/api/stocks/ZZZZ/analysis")
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Contains(t, string(body), "analysis service down")
}

func TestHandler_AllEndpointsFailed(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	cfg := config.NewTestConfig()
	cfg.GraphQL.Endpoints = []string{deadURL}
	srv := newTestServer(t, cfg)

	status, body := srv.do(t, http.MethodGet, "/api/stocks/NVDA")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Contains(t, string(body), "Failed to connect to any GraphQL server endpoints")

	_, body = srv.do(t, http.MethodGet, "/api/health")
	assert.Equal(t, "degraded", decode[HealthResponse](t, body).Status)
}

func TestHandler_TwoDeadEndpointsIsUnavailable(t *testing.T) {
	var dead []string
	for i := 0; i < 2; i++ {
		srv := httptest.NewServer(http.NotFoundHandler())
		dead = append(dead, srv.URL)
		srv.Close()
	}

	cfg := config.NewTestConfig()
	cfg.GraphQL.Endpoints = dead
	srv := newTestServer(t, cfg)

	status, body := srv.do(t, http.MethodGet, "/api/stocks/NVDA")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Contains(t, string(body), "Failed to connect to any GraphQL server endpoints")
}

func TestValidateTicker(t *testing.T) {
	for _, ok := range []string{"A", "NVDA", "brk.b", "BF-B", "1234567890"} {
		assert.NoError(t, ValidateTicker(ok), ok)
	}
	for _, bad := range []string{"", "12345678901", ".A", "A B", "A$"} {
		assert.Error(t, ValidateTicker(bad), bad)
	}
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("No data found for ticker ZZZZ: %w", services.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("Error fetching stock detail: %w", &services.GraphQLError{Messages: []string{"boom"}}), http.StatusBadGateway},
		{fmt.Errorf("call failed: %w", services.ErrAllEndpointsFailed), http.StatusServiceUnavailable},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusForError(tt.err), tt.err.Error())
	}
}
