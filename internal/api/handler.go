package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"

	"sophie-analyst/internal/app"
	"sophie-analyst/internal/screens"
	"sophie-analyst/models"
	"sophie-analyst/observability"
	"sophie-analyst/services"
)

var tickerPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9.\-]{0,9}$`)

// Handler handles HTTP API requests
type Handler struct {
	app         *app.App
	diagnostics *screens.DiagnosticsModel
}

// NewHandler creates a new Handler. The diagnostics screen is shared across
// requests so test logs accumulate the way they do in the app.
func NewHandler(application *app.App) *Handler {
	return &Handler{
		app:         application,
		diagnostics: application.Diagnostics(),
	}
}

// HealthResponse is returned by GET /api/health
type HealthResponse struct {
	Status          string                                   `json:"status"`
	Backend         services.HealthResult                    `json:"backend"`
	CurrentEndpoint string                                   `json:"current_endpoint"`
	CircuitBreakers map[string]services.CircuitBreakerStatus `json:"circuit_breakers,omitempty"`
}

// HandleHealth reports the cached backend probe and breaker states
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	result := h.app.Health(r.Context())
	resp := HealthResponse{
		Status:          "ok",
		Backend:         result,
		CurrentEndpoint: result.Endpoint,
	}
	if !result.Available {
		resp.Status = "degraded"
	}

	if client := h.app.GraphQL(); client != nil {
		resp.CurrentEndpoint = client.Provider().Current()
		if breakers := client.Breakers(); breakers != nil {
			resp.CircuitBreakers = breakers.Status()
			for _, cb := range resp.CircuitBreakers {
				if cb.State == "open" {
					resp.Status = "degraded"
					break
				}
			}
		}
	}

	h.jsonResponse(w, resp)
}

func (h *Handler) HandleGetTrending(w http.ResponseWriter, r *http.Request) {
	stocks, err := h.app.Repository().GetTrendingStocks(r.Context())
	if err != nil {
		h.apiError(w, err)
		return
	}
	h.jsonResponse(w, stocks)
}

// HandleSearch searches by ticker or company name. A blank query returns [].
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	stocks, err := h.app.Repository().SearchStocks(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.apiError(w, err)
		return
	}
	h.jsonResponse(w, stocks)
}

func (h *Handler) HandleGetStock(w http.ResponseWriter, r *http.Request) {
	ticker, ok := h.tickerParam(w, r)
	if !ok {
		return
	}
	detail, err := h.app.Repository().GetStockDetail(r.Context(), ticker)
	if err != nil {
		h.apiError(w, err)
		return
	}
	h.jsonResponse(w, detail)
}

func (h *Handler) HandleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	ticker, ok := h.tickerParam(w, r)
	if !ok {
		return
	}
	analysis, err := h.app.Repository().GetSophieAnalysis(r.Context(), ticker)
	if err != nil {
		h.apiError(w, err)
		return
	}
	h.jsonResponse(w, analysis)
}

func (h *Handler) HandleGetAgents(w http.ResponseWriter, r *http.Request) {
	ticker, ok := h.tickerParam(w, r)
	if !ok {
		return
	}
	signals, err := h.app.Repository().GetAgentSignals(r.Context(), ticker)
	if err != nil {
		h.apiError(w, err)
		return
	}
	h.jsonResponse(w, signals)
}

func (h *Handler) HandleGetBookmarks(w http.ResponseWriter, r *http.Request) {
	stocks, err := h.app.Repository().GetBookmarkedStocks(r.Context())
	if err != nil {
		h.apiError(w, err)
		return
	}
	h.jsonResponse(w, stocks)
}

// BookmarkResponse reports a ticker's bookmark state after a change
type BookmarkResponse struct {
	Ticker       string `json:"ticker"`
	IsBookmarked bool   `json:"is_bookmarked"`
}

func (h *Handler) HandleAddBookmark(w http.ResponseWriter, r *http.Request) {
	ticker, ok := h.tickerParam(w, r)
	if !ok {
		return
	}
	if err := h.app.Repository().BookmarkStock(r.Context(), ticker); err != nil {
		h.apiError(w, err)
		return
	}
	h.jsonResponse(w, BookmarkResponse{Ticker: ticker, IsBookmarked: true})
}

func (h *Handler) HandleRemoveBookmark(w http.ResponseWriter, r *http.Request) {
	ticker, ok := h.tickerParam(w, r)
	if !ok {
		return
	}
	if err := h.app.Repository().UnbookmarkStock(r.Context(), ticker); err != nil {
		h.apiError(w, err)
		return
	}
	h.jsonResponse(w, BookmarkResponse{Ticker: ticker, IsBookmarked: false})
}

func (h *Handler) HandleToggleBookmark(w http.ResponseWriter, r *http.Request) {
	ticker, ok := h.tickerParam(w, r)
	if !ok {
		return
	}
	bookmarked, err := h.app.Repository().ToggleBookmark(r.Context(), ticker)
	if err != nil {
		h.apiError(w, err)
		return
	}
	h.jsonResponse(w, BookmarkResponse{Ticker: ticker, IsBookmarked: bookmarked})
}

// HandleHomeScreen loads the home screen and returns its snapshot. A q parameter
// also runs a search.
func (h *Handler) HandleHomeScreen(w http.ResponseWriter, r *http.Request) {
	home := h.app.Home()
	home.Load(r.Context())
	if q := r.URL.Query().Get("q"); q != "" {
		home.OnSearchQueryChanged(r.Context(), q)
	}
	h.jsonResponse(w, home.State())
}

// HandleDetailsScreen loads the details screen with the requested tab selected
func (h *Handler) HandleDetailsScreen(w http.ResponseWriter, r *http.Request) {
	ticker, ok := h.tickerParam(w, r)
	if !ok {
		return
	}

	details := h.app.Details(ticker)
	if tab := r.URL.Query().Get("tab"); tab != "" {
		parsed, err := models.ParseAnalysisTab(tab)
		if err != nil {
			h.jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		details.SelectTab(parsed)
	}
	details.LoadStockDetails(r.Context())
	h.jsonResponse(w, details.State())
}

// HandleOpenDeepLink resolves ?url= to a details snapshot
func (h *Handler) HandleOpenDeepLink(w http.ResponseWriter, r *http.Request) {
	details := h.app.OpenDeepLink(r.URL.Query().Get("url"))
	details.LoadStockDetails(r.Context())
	h.jsonResponse(w, details.State())
}

func (h *Handler) HandleGetDiagnostics(w http.ResponseWriter, r *http.Request) {
	h.diagnostics.Refresh()
	if r.URL.Query().Get("network") == "true" {
		h.diagnostics.CollectNetworkInfo(r.Context())
	}
	h.jsonResponse(w, h.diagnostics.State())
}

// HandleRunConnectionTest probes the backend. A failed probe still returns 200
// with the Failed status in the body.
func (h *Handler) HandleRunConnectionTest(w http.ResponseWriter, r *http.Request) {
	if err := h.diagnostics.RunConnectionTest(r.Context()); err != nil {
		observability.Debug("connection test failed", "error", err)
	}
	h.jsonResponse(w, h.diagnostics.State())
}

func (h *Handler) HandleResetEndpoints(w http.ResponseWriter, r *http.Request) {
	h.diagnostics.ResetEndpoints()
	h.jsonResponse(w, h.diagnostics.State())
}

// tickerParam validates the {ticker} URL parameter, writing a 400 on failure
func (h *Handler) tickerParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	ticker := strings.TrimSpace(chi.URLParam(r, "ticker"))
	if err := ValidateTicker(ticker); err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return "", false
	}
	return strings.ToUpper(ticker), true
}

// ValidateTicker checks that a ticker is 1 to 10 letters, digits, dots or dashes
func ValidateTicker(ticker string) error {
	if ticker == "" {
		return errors.New("ticker is required")
	}
	if !tickerPattern.MatchString(ticker) {
		return errors.New("invalid ticker: must be 1-10 letters, digits, '.' or '-'")
	}
	return nil
}

// statusForError maps service failures to HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrAllEndpointsFailed):
		return http.StatusServiceUnavailable
	case services.IsGraphQLError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) apiError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		observability.Warn("api request failed", "status", status, "error", err)
	}
	h.jsonError(w, err.Error(), status)
}

func (h *Handler) jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
