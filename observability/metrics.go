package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sophie"

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// GraphQL backend metrics
	GraphQLRequestsTotal *prometheus.CounterVec
	GraphQLDuration      *prometheus.HistogramVec
	GraphQLErrorsTotal   *prometheus.CounterVec

	// Endpoint fallback metrics
	EndpointFallbacksTotal *prometheus.CounterVec
	EndpointExhaustedTotal prometheus.Counter
	EndpointCurrentIndex   prometheus.Gauge
	EndpointResetsTotal    prometheus.Counter

	// Bookmark store metrics
	BookmarkOperationsTotal *prometheus.CounterVec

	// Screen state metrics
	ScreenLoadsTotal *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Circuit breaker metrics
	CircuitBreakerState *prometheus.GaugeVec
	CircuitBreakerTrips *prometheus.CounterVec
}

// defaultBuckets are the default histogram buckets for duration metrics (in seconds)
var defaultBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}

// globalMetrics is the global metrics instance
var globalMetrics *Metrics

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	m := &Metrics{
		GraphQLRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "graphql",
				Name:      "requests_total",
				Help:      "Total number of GraphQL operations sent to the backend",
			},
			[]string{"operation", "status"},
		),
		GraphQLDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "graphql",
				Name:      "request_duration_seconds",
				Help:      "Duration of GraphQL operations in seconds, including fallback",
				Buckets:   defaultBuckets,
			},
			[]string{"operation"},
		),
		GraphQLErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "graphql",
				Name:      "errors_total",
				Help:      "Total number of GraphQL errors by type",
			},
			[]string{"operation", "error_type"},
		),

		EndpointFallbacksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "endpoint",
				Name:      "fallbacks_total",
				Help:      "Total number of advances to the next configured endpoint",
			},
			[]string{"from", "to"},
		),
		EndpointExhaustedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "endpoint",
				Name:      "exhausted_total",
				Help:      "Total number of times every configured endpoint had failed",
			},
		),
		EndpointCurrentIndex: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "endpoint",
				Name:      "current_index",
				Help:      "Index of the endpoint currently in use",
			},
		),
		EndpointResetsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "endpoint",
				Name:      "resets_total",
				Help:      "Total number of endpoint list resets",
			},
		),

		BookmarkOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "bookmark",
				Name:      "operations_total",
				Help:      "Total number of bookmark store operations",
			},
			[]string{"operation", "status"},
		),

		ScreenLoadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "screen",
				Name:      "loads_total",
				Help:      "Total number of screen state loads",
			},
			[]string{"screen", "status"},
		),

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"method", "path"},
		),

		CircuitBreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "circuit_breaker",
				Name:      "state",
				Help:      "Current state of circuit breakers (0=closed, 1=half-open, 2=open)",
			},
			[]string{"name"},
		),
		CircuitBreakerTrips: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "circuit_breaker",
				Name:      "trips_total",
				Help:      "Total number of circuit breaker trips",
			},
			[]string{"name"},
		),
	}

	return m
}

// InitMetrics initializes the global metrics instance
func InitMetrics() *Metrics {
	globalMetrics = NewMetrics(nil)
	return globalMetrics
}

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	if globalMetrics == nil {
		return InitMetrics()
	}
	return globalMetrics
}

// RecordGraphQLRequest records a completed GraphQL operation
func (m *Metrics) RecordGraphQLRequest(operation, status string, duration time.Duration) {
	m.GraphQLRequestsTotal.WithLabelValues(operation, status).Inc()
	m.GraphQLDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordGraphQLError records a GraphQL error by type
func (m *Metrics) RecordGraphQLError(operation, errorType string) {
	m.GraphQLErrorsTotal.WithLabelValues(operation, errorType).Inc()
}

// RecordEndpointFallback records an advance from one endpoint to the next
func (m *Metrics) RecordEndpointFallback(from, to string, index int) {
	m.EndpointFallbacksTotal.WithLabelValues(from, to).Inc()
	m.EndpointCurrentIndex.Set(float64(index))
}

// RecordEndpointExhausted records that no endpoint is left to try
func (m *Metrics) RecordEndpointExhausted() {
	m.EndpointExhaustedTotal.Inc()
}

// RecordEndpointReset records a reset to the first endpoint
func (m *Metrics) RecordEndpointReset() {
	m.EndpointResetsTotal.Inc()
	m.EndpointCurrentIndex.Set(0)
}

// RecordBookmarkOperation records a bookmark store operation
func (m *Metrics) RecordBookmarkOperation(operation, status string) {
	m.BookmarkOperationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordScreenLoad records a screen state load
func (m *Metrics) RecordScreenLoad(screen, status string) {
	m.ScreenLoadsTotal.WithLabelValues(screen, status).Inc()
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, statusCode string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// SetCircuitBreakerState sets the current state of a circuit breaker
func (m *Metrics) SetCircuitBreakerState(name string, state int) {
	m.CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordCircuitBreakerTrip records a circuit breaker trip
func (m *Metrics) RecordCircuitBreakerTrip(name string) {
	m.CircuitBreakerTrips.WithLabelValues(name).Inc()
}

// Timer is a helper for timing operations
type Timer struct {
	start   time.Time
	metrics *Metrics
}

// NewTimer creates a new timer
func (m *Metrics) NewTimer() *Timer {
	return &Timer{
		start:   time.Now(),
		metrics: m,
	}
}

// ObserveGraphQL records the operation duration and status
func (t *Timer) ObserveGraphQL(operation, status string) {
	t.metrics.RecordGraphQLRequest(operation, status, time.Since(t.start))
}

// Duration returns the elapsed time
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
