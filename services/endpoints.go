package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"sophie-analyst/observability"
)

// FailureRecord is one entry of the endpoint failure log
type FailureRecord struct {
	Time     time.Time `json:"time"`
	Endpoint string    `json:"endpoint"`
	Error    string    `json:"error"`
}

func (r FailureRecord) String() string {
	return fmt.Sprintf("%s %s: %s", r.Time.Format("15:04:05"), r.Endpoint, r.Error)
}

// EndpointProvider holds an ordered list of backend URLs and a client for the current one.
// On failure it only moves forward; Reset is the only way back to the first URL.
type EndpointProvider struct {
	mu        sync.Mutex
	endpoints []string
	index     int
	exhausted bool
	client    *resty.Client
	failures  []FailureRecord

	timeout   time.Duration
	authToken string
	metrics   *observability.Metrics
}

// EndpointOption configures an EndpointProvider
type EndpointOption func(*EndpointProvider)

// WithAuthToken sends a bearer token on every request
func WithAuthToken(token string) EndpointOption {
	return func(p *EndpointProvider) {
		p.authToken = token
	}
}

// WithMetrics overrides the global metrics instance
func WithMetrics(m *observability.Metrics) EndpointOption {
	return func(p *EndpointProvider) {
		p.metrics = m
	}
}

// NewEndpointProvider creates a provider pointed at the first endpoint
func NewEndpointProvider(endpoints []string, timeout time.Duration, opts ...EndpointOption) (*EndpointProvider, error) {
	if len(endpoints) == 0 {
		return nil, errors.New("at least one GraphQL endpoint is required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	p := &EndpointProvider{
		endpoints: append([]string(nil), endpoints...),
		timeout:   timeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.metrics == nil {
		p.metrics = observability.GetMetrics()
	}

	p.client = p.buildClient(p.endpoints[0])
	observability.Info("GraphQL client initialized", "endpoint", p.endpoints[0], "candidates", len(p.endpoints))
	return p, nil
}

func (p *EndpointProvider) buildClient(endpoint string) *resty.Client {
	client := resty.New().
		SetBaseURL(endpoint).
		SetTimeout(p.timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if p.authToken != "" {
		client.SetAuthToken(p.authToken)
	}
	return client
}

// Current returns the URL in use. Once exhausted it stays on the last URL.
func (p *EndpointProvider) Current() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.endpoints[p.index]
}

// Index returns the position of the current URL in the list
func (p *EndpointProvider) Index() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.index
}

// Endpoints returns a copy of the configured list
func (p *EndpointProvider) Endpoints() []string {
	return append([]string(nil), p.endpoints...)
}

// Exhausted reports whether every endpoint has failed since the last reset
func (p *EndpointProvider) Exhausted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exhausted
}

// Client returns the client for the current URL, or false once every URL has failed
func (p *EndpointProvider) Client() (*resty.Client, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.exhausted {
		return nil, false
	}
	return p.client, true
}

// Next records the failure of the current URL and moves to the next one.
// It returns false when no URL is left.
func (p *EndpointProvider) Next(cause error) (*resty.Client, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.exhausted {
		return nil, false
	}

	failed := p.endpoints[p.index]
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	p.failures = append(p.failures, FailureRecord{Time: time.Now(), Endpoint: failed, Error: msg})

	if p.index+1 >= len(p.endpoints) {
		p.exhausted = true
		p.client = nil
		p.metrics.RecordEndpointExhausted()
		observability.Error("All server URLs have been tried without success",
			"last_endpoint", failed,
			"attempts", len(p.endpoints))
		return nil, false
	}

	p.index++
	next := p.endpoints[p.index]
	p.client = p.buildClient(next)
	p.metrics.RecordEndpointFallback(failed, next, p.index)
	observability.Warn("endpoint failed, trying next server URL",
		"failed", failed,
		"next", next,
		"error", msg)

	return p.client, true
}

// recordFailure logs a failure without moving the index
func (p *EndpointProvider) recordFailure(endpoint string, cause error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures = append(p.failures, FailureRecord{Time: time.Now(), Endpoint: endpoint, Error: cause.Error()})
}

// Reset returns to the first URL and clears the failure log
func (p *EndpointProvider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.index = 0
	p.exhausted = false
	p.failures = nil
	p.client = p.buildClient(p.endpoints[0])
	p.metrics.RecordEndpointReset()
	observability.Info("endpoint list reset", "endpoint", p.endpoints[0])
}

// Logs returns a copy of the failure log
func (p *EndpointProvider) Logs() []FailureRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]FailureRecord(nil), p.failures...)
}
