package screens

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"sophie-analyst/observability"
	"sophie-analyst/services"
)

// Connection test states
const (
	StatusUnknown   = "Unknown"
	StatusTesting   = "Testing..."
	StatusConnected = "Connected"
	StatusFailed    = "Failed"
)

const (
	notRunYet      = "Not run yet"
	testTimeLayout = "2006-01-02 15:04:05"
)

// EndpointState is the view of the endpoint list diagnostics needs
type EndpointState interface {
	Current() string
	Endpoints() []string
	Logs() []services.FailureRecord
	Reset()
}

type InterfaceInfo struct {
	Name      string   `json:"name"`
	Addresses []string `json:"addresses"`
}

type Reachability struct {
	Target    string        `json:"target"`
	Reachable bool          `json:"reachable"`
	Latency   time.Duration `json:"latency"`
	Error     string        `json:"error,omitempty"`
}

type NetworkInfo struct {
	Interfaces   []InterfaceInfo `json:"interfaces"`
	Reachability []Reachability  `json:"reachability"`
	Errors       []string        `json:"errors,omitempty"`
}

// DiagnosticsState is the snapshot rendered by the diagnostics screen
type DiagnosticsState struct {
	Status          string                   `json:"status"`
	LastTestTime    string                   `json:"last_test_time"`
	CurrentEndpoint string                   `json:"current_endpoint"`
	Endpoints       []string                 `json:"endpoints"`
	Logs            []string                 `json:"logs"`
	FailureLog      []services.FailureRecord `json:"failure_log"`
	NetworkInfo     *NetworkInfo             `json:"network_info,omitempty"`
}

// DiagnosticsModel runs connection tests against the backend
type DiagnosticsModel struct {
	prober       services.Prober
	endpoints    EndpointState
	probeTimeout time.Duration
	state        *Store[DiagnosticsState]
	metrics      *observability.Metrics
	now          func() time.Time
	dial         func(ctx context.Context, network, address string) (net.Conn, error)
}

// NewDiagnosticsModel creates the model. endpoints may be nil when running offline.
func NewDiagnosticsModel(prober services.Prober, endpoints EndpointState, probeTimeout time.Duration, metrics *observability.Metrics) *DiagnosticsModel {
	if metrics == nil {
		metrics = observability.GetMetrics()
	}
	if probeTimeout <= 0 {
		probeTimeout = 3 * time.Second
	}
	m := &DiagnosticsModel{
		prober:       prober,
		endpoints:    endpoints,
		probeTimeout: probeTimeout,
		metrics:      metrics,
		now:          time.Now,
		dial:         (&net.Dialer{}).DialContext,
	}
	m.state = NewStore(DiagnosticsState{
		Status:       StatusUnknown,
		LastTestTime: notRunYet,
		Logs:         []string{},
		FailureLog:   []services.FailureRecord{},
		Endpoints:    []string{},
	})
	m.refreshEndpoints()
	return m
}

func (m *DiagnosticsModel) State() DiagnosticsState {
	return m.state.Get()
}

func (m *DiagnosticsModel) Subscribe() (<-chan DiagnosticsState, func()) {
	return m.state.Subscribe()
}

// Refresh copies the current endpoint, list and failure log into the state
func (m *DiagnosticsModel) Refresh() {
	m.refreshEndpoints()
}

func (m *DiagnosticsModel) refreshEndpoints() {
	if m.endpoints == nil {
		return
	}
	current := m.endpoints.Current()
	list := m.endpoints.Endpoints()
	failures := m.endpoints.Logs()
	if failures == nil {
		failures = []services.FailureRecord{}
	}
	m.state.Update(func(s DiagnosticsState) DiagnosticsState {
		s.CurrentEndpoint = current
		s.Endpoints = list
		s.FailureLog = failures
		return s
	})
}

func (m *DiagnosticsModel) appendLog(line string) {
	m.state.Update(func(s DiagnosticsState) DiagnosticsState {
		s.Logs = append(append([]string(nil), s.Logs...), line)
		return s
	})
}

// RunConnectionTest probes the backend and records the outcome
func (m *DiagnosticsModel) RunConnectionTest(ctx context.Context) error {
	m.state.Update(func(s DiagnosticsState) DiagnosticsState {
		s.Logs = []string{"Starting connection test..."}
		s.LastTestTime = m.now().Format(testTimeLayout)
		s.Status = StatusTesting
		return s
	})
	m.appendLog("Fetching trending stocks...")

	err := m.prober.Probe(ctx)
	if err != nil {
		observability.Error("connection test failed", "error", err)
		m.metrics.RecordScreenLoad("diagnostics", "error")
		m.state.Update(func(s DiagnosticsState) DiagnosticsState {
			s.Status = StatusFailed
			return s
		})
		m.appendLog(fmt.Sprintf("Connection failed: %v", err))
	} else {
		m.metrics.RecordScreenLoad("diagnostics", "success")
		m.state.Update(func(s DiagnosticsState) DiagnosticsState {
			s.Status = StatusConnected
			return s
		})
		m.appendLog("Connection successful!")
	}

	m.refreshEndpoints()
	return err
}

// ResetEndpoints returns the client to the first configured URL
func (m *DiagnosticsModel) ResetEndpoints() {
	if m.endpoints == nil {
		return
	}
	m.endpoints.Reset()
	m.appendLog("Endpoint list reset")
	m.refreshEndpoints()
}

// CollectNetworkInfo lists local interfaces and checks which hosts accept TCP connections
func (m *DiagnosticsModel) CollectNetworkInfo(ctx context.Context) NetworkInfo {
	info := NetworkInfo{Interfaces: []InterfaceInfo{}, Reachability: []Reachability{}}

	ifaces, err := net.Interfaces()
	if err != nil {
		info.Errors = append(info.Errors, fmt.Sprintf("interfaces: %v", err))
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		entry := InterfaceInfo{Name: iface.Name, Addresses: []string{}}
		addrs, err := iface.Addrs()
		if err != nil {
			info.Errors = append(info.Errors, fmt.Sprintf("%s: %v", iface.Name, err))
		}
		for _, addr := range addrs {
			entry.Addresses = append(entry.Addresses, addr.String())
		}
		info.Interfaces = append(info.Interfaces, entry)
	}

	for _, target := range m.reachabilityTargets() {
		info.Reachability = append(info.Reachability, m.checkReachable(ctx, target))
	}

	m.state.Update(func(s DiagnosticsState) DiagnosticsState {
		s.NetworkInfo = &info
		return s
	})
	return info
}

// reachabilityTargets returns the well-known hosts on the backend port followed by
// every endpoint's host:port, without duplicates
func (m *DiagnosticsModel) reachabilityTargets() []string {
	var endpoints []string
	if m.endpoints != nil {
		endpoints = m.endpoints.Endpoints()
	}

	port := "4000"
	if len(endpoints) > 0 {
		if _, p, ok := hostPort(endpoints[0]); ok {
			port = p
		}
	}

	seen := map[string]bool{}
	var targets []string
	add := func(t string) {
		if !seen[t] {
			seen[t] = true
			targets = append(targets, t)
		}
	}
	for _, host := range []string{"localhost", "127.0.0.1", "10.0.2.2"} {
		add(net.JoinHostPort(host, port))
	}
	for _, e := range endpoints {
		if host, p, ok := hostPort(e); ok {
			add(net.JoinHostPort(host, p))
		}
	}
	return targets
}

func hostPort(raw string) (string, string, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "", "", false
	}
	port := u.Port()
	if port == "" {
		port = "80"
		if u.Scheme == "https" {
			port = "443"
		}
	}
	return u.Hostname(), port, true
}

func (m *DiagnosticsModel) checkReachable(ctx context.Context, target string) Reachability {
	ctx, cancel := context.WithTimeout(ctx, m.probeTimeout)
	defer cancel()

	start := m.now()
	conn, err := m.dial(ctx, "tcp", target)
	result := Reachability{Target: target, Latency: m.now().Sub(start)}
	if err != nil {
		result.Error = err.Error()
		return result
	}
	conn.Close()
	result.Reachable = true
	return result
}
