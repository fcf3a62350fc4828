// Package mocks provides a GraphQL mock of the SOPHIE backend for E2E tests and local runs.
package mocks

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"

	"sophie-analyst/agents"
)

type graphQLRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
}

// GraphQLServer answers the operations the SOPHIE client sends, routed by operationName.
type GraphQLServer struct {
	mu       sync.RWMutex
	server   *httptest.Server
	fixtures Fixtures

	// Failure injection
	failRemaining int
	failAlways    bool
	failStatus    int
	opErrors      map[string]string
	token         string

	requestLog []RequestLog
}

// NewGraphQLHandler creates an unstarted server, for mounting on a real listener
func NewGraphQLHandler(fixtures Fixtures) *GraphQLServer {
	return &GraphQLServer{
		fixtures:   fixtures,
		opErrors:   make(map[string]string),
		requestLog: make([]RequestLog, 0),
	}
}

// NewGraphQLServer starts a test server with fixtures
func NewGraphQLServer(fixtures Fixtures) *GraphQLServer {
	m := NewGraphQLHandler(fixtures)
	m.server = httptest.NewServer(m)
	return m
}

// URL returns the server's base URL
func (m *GraphQLServer) URL() string {
	return m.server.URL
}

// Close shuts down the server
func (m *GraphQLServer) Close() {
	if m.server != nil {
		m.server.Close()
	}
}

// FailNext answers the next n requests with status
func (m *GraphQLServer) FailNext(n, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failRemaining = n
	m.failStatus = status
}

// FailAlways answers every request with status until Recover is called
func (m *GraphQLServer) FailAlways(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAlways = true
	m.failStatus = status
}

// Recover stops all injected failures
func (m *GraphQLServer) Recover() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAlways = false
	m.failRemaining = 0
	m.opErrors = make(map[string]string)
}

// SetOperationError makes an operation return a GraphQL errors array
func (m *GraphQLServer) SetOperationError(operation, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opErrors[operation] = message
}

// RequireToken rejects requests without this bearer token
func (m *GraphQLServer) RequireToken(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
}

// SetFixtures replaces the served data
func (m *GraphQLServer) SetFixtures(f Fixtures) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fixtures = f
}

// GetRequestLog returns all logged requests
func (m *GraphQLServer) GetRequestLog() []RequestLog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]RequestLog{}, m.requestLog...)
}

// ClearRequestLog empties the request log
func (m *GraphQLServer) ClearRequestLog() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestLog = make([]RequestLog, 0)
}

// CountRequests returns how many requests named operation were received
func (m *GraphQLServer) CountRequests(operation string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, r := range m.requestLog {
		if r.OperationName == operation {
			n++
		}
	}
	return n
}

func (m *GraphQLServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req graphQLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	m.requestLog = append(m.requestLog, RequestLog{
		OperationName: req.OperationName,
		Variables:     req.Variables,
		Authorization: r.Header.Get("Authorization"),
	})
	status := 0
	switch {
	case m.failAlways:
		status = m.failStatus
	case m.failRemaining > 0:
		m.failRemaining--
		status = m.failStatus
	}
	token := m.token
	opErr, hasOpErr := m.opErrors[req.OperationName]
	m.mu.Unlock()

	if status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}
	if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if hasOpErr {
		writeJSON(w, map[string]any{"data": nil, "errors": []map[string]string{{"message": opErr}}})
		return
	}

	data, ok := m.resolve(req)
	if !ok {
		writeJSON(w, map[string]any{"errors": []map[string]string{{"message": "Unknown operation " + req.OperationName}}})
		return
	}
	writeJSON(w, map[string]any{"data": data})
}

func (m *GraphQLServer) resolve(req graphQLRequest) (map[string]any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ticker := strings.ToUpper(stringVar(req.Variables, "ticker"))

	switch req.OperationName {
	case "Probe":
		return map[string]any{"__typename": "Query"}, true

	case "TrendingStocks":
		covered := make([]map[string]string, 0, len(m.fixtures.Covered))
		stocks := make([]Stock, 0, len(m.fixtures.Covered))
		for _, t := range m.fixtures.Covered {
			covered = append(covered, map[string]string{"ticker": t})
			if d, ok := m.fixtures.Tickers[t]; ok {
				stocks = append(stocks, d.Stock)
			}
		}
		return map[string]any{"coveredTickers": covered, "batchStocks": stocks}, true

	case "BatchStocks":
		stocks := make([]Stock, 0)
		for _, t := range listVar(req.Variables, "tickers") {
			if d, ok := m.fixtures.Tickers[strings.ToUpper(t)]; ok {
				stocks = append(stocks, d.Stock)
			}
		}
		return map[string]any{"batchStocks": stocks}, true

	case "SearchStocks":
		query := strings.ToLower(strings.TrimSpace(stringVar(req.Variables, "query")))
		matches := make([]map[string]string, 0)
		for _, t := range m.sortedTickers() {
			d := m.fixtures.Tickers[t]
			if query != "" && (strings.Contains(strings.ToLower(t), query) || strings.Contains(strings.ToLower(d.Stock.Company.Name), query)) {
				matches = append(matches, map[string]string{"ticker": t})
			}
		}
		return map[string]any{"searchStocks": matches}, true

	case "StockDetail":
		d, ok := m.fixtures.Tickers[ticker]
		if !ok {
			return map[string]any{"stock": nil, "latestFundamentals": nil, "latestTechnicals": nil, "latestSophieAnalysis": nil}, true
		}
		return map[string]any{
			"stock":                map[string]any{"company": d.Stock.Company, "prices": d.Stock.Prices},
			"latestFundamentals":   d.Fundamentals,
			"latestTechnicals":     d.Technicals,
			"latestSophieAnalysis": d.Analysis,
		}, true

	case "SophieAnalysis":
		var analysis *Analysis
		if d, ok := m.fixtures.Tickers[ticker]; ok {
			analysis = d.Analysis
		}
		return map[string]any{"latestSophieAnalysis": analysis}, true
	}

	for _, agent := range agents.Catalog() {
		if agent.OperationName != req.OperationName {
			continue
		}
		var signal *AgentSignal
		if d, ok := m.fixtures.Tickers[ticker]; ok {
			if s, ok := d.AgentSignals[agent.ID]; ok {
				signal = &s
			}
		}
		return map[string]any{"latestAgentSignal": signal}, true
	}
	return nil, false
}

func (m *GraphQLServer) sortedTickers() []string {
	out := make([]string, 0, len(m.fixtures.Tickers))
	for t := range m.fixtures.Tickers {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func stringVar(vars map[string]any, key string) string {
	s, _ := vars[key].(string)
	return s
}

func listVar(vars map[string]any, key string) []string {
	raw, _ := vars[key].([]any)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
