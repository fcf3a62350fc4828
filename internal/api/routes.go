package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sophie-analyst/config"
	"sophie-analyst/observability"
)

// NewRouter creates and configures a Chi router with all routes. gatherer
// serves /metrics; nil uses the default registry.
func NewRouter(h *Handler, cfg *config.Config, metrics *observability.Metrics, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Duration(cfg.HTTP.RequestTimeoutSeconds) * time.Second))
	r.Use(CORSMiddleware(cfg.HTTP.CORSAllowedOrigins))
	r.Use(MetricsMiddleware(metrics))

	if gatherer == nil {
		r.Handle("/metrics", promhttp.Handler())
	} else {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HandleHealth)

		r.Route("/stocks", func(r chi.Router) {
			r.Get("/trending", h.HandleGetTrending)
			r.Get("/search", h.HandleSearch)
			r.Get("/{ticker}", h.HandleGetStock)
			r.Get("/{ticker}/analysis", h.HandleGetAnalysis)
			r.Get("/{ticker}/agents", h.HandleGetAgents)
		})

		r.Route("/bookmarks", func(r chi.Router) {
			r.Get("/", h.HandleGetBookmarks)
			r.Put("/{ticker}", h.HandleAddBookmark)
			r.Delete("/{ticker}", h.HandleRemoveBookmark)
			r.Post("/{ticker}/toggle", h.HandleToggleBookmark)
		})

		r.Route("/screens", func(r chi.Router) {
			r.Get("/home", h.HandleHomeScreen)
			r.Get("/details/{ticker}", h.HandleDetailsScreen)
		})

		r.Route("/diagnostics", func(r chi.Router) {
			r.Get("/", h.HandleGetDiagnostics)
			r.Post("/test", h.HandleRunConnectionTest)
			r.Post("/reset", h.HandleResetEndpoints)
		})

		r.Get("/open", h.HandleOpenDeepLink)
	})

	return r
}

// CORSMiddleware returns CORS middleware with the specified allowed origins
func CORSMiddleware(allowedOrigins string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
