package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"sophie-analyst/observability"
)

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    int
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += n
	return n, err
}

// MetricsMiddleware records method, route pattern, status and latency for each
// request. A nil metrics uses the global instance.
func MetricsMiddleware(metrics *observability.Metrics) func(http.Handler) http.Handler {
	if metrics == nil {
		metrics = observability.GetMetrics()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)

			next.ServeHTTP(rec, r)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}

			duration := time.Since(start)
			metrics.RecordHTTPRequest(r.Method, route, strconv.Itoa(rec.statusCode), duration)
			observability.Debug("http request",
				"method", r.Method,
				"route", route,
				"status", rec.statusCode,
				"bytes", rec.written,
				"duration_ms", duration.Milliseconds())
		})
	}
}
