package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"sophie-analyst/config"
	"sophie-analyst/observability"
)

func testMetrics() *observability.Metrics {
	return observability.NewMetrics(prometheus.NewRegistry())
}

func TestNewCircuitBreakerRegistry(t *testing.T) {
	cfg := CircuitBreakerConfig{
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
	}

	registry := NewCircuitBreakerRegistry(cfg, testMetrics())

	if registry == nil {
		t.Fatal("expected registry to be created")
	}
	if registry.breakers == nil {
		t.Error("expected breakers map to be initialized")
	}
	if registry.config != cfg {
		t.Error("expected config to be set")
	}
}

func TestNewCircuitBreakerConfig(t *testing.T) {
	got := NewCircuitBreakerConfig(config.CircuitBreakerConfig{
		Enabled:            true,
		MinRequests:        3,
		FailureRatio:       0.75,
		OpenTimeoutSeconds: 12,
	})

	if got.MinRequests != 3 {
		t.Errorf("MinRequests = %d, want 3", got.MinRequests)
	}
	if got.FailureRatio != 0.75 {
		t.Errorf("FailureRatio = %v, want 0.75", got.FailureRatio)
	}
	if got.Timeout != 12*time.Second {
		t.Errorf("Timeout = %v, want 12s", got.Timeout)
	}
	if got.MaxRequests != DefaultCircuitBreakerConfig.MaxRequests {
		t.Errorf("MaxRequests = %d, want default", got.MaxRequests)
	}

	zero := NewCircuitBreakerConfig(config.CircuitBreakerConfig{})
	if zero != DefaultCircuitBreakerConfig {
		t.Errorf("zero config should fall back to defaults, got %+v", zero)
	}
}

func TestBreakerName(t *testing.T) {
	if got := BreakerName("http://localhost:4000/graphql"); got != "graphql:http://localhost:4000/graphql" {
		t.Errorf("BreakerName() = %q", got)
	}
}

func TestCircuitBreakerRegistry_GetBreaker(t *testing.T) {
	registry := NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig, testMetrics())

	breaker1 := registry.GetBreaker("graphql:a")
	if breaker1 == nil {
		t.Fatal("expected breaker to be created")
	}

	breaker2 := registry.GetBreaker("graphql:a")
	if breaker1 != breaker2 {
		t.Error("expected same breaker instance")
	}

	breaker3 := registry.GetBreaker("graphql:b")
	if breaker1 == breaker3 {
		t.Error("expected different breaker for different name")
	}
}

func TestCircuitBreakerRegistry_Execute(t *testing.T) {
	registry := NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig, testMetrics())
	ctx := context.Background()

	result, err := registry.Execute(ctx, "graphql:a", func() (any, error) {
		return "success", nil
	})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if result != "success" {
		t.Errorf("expected 'success', got %v", result)
	}

	boom := errors.New("boom")
	_, err = registry.Execute(ctx, "graphql:a", func() (any, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped function error, got %v", err)
	}
}

func TestCircuitBreakerRegistry_Execute_ContextCanceled(t *testing.T) {
	registry := NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig, testMetrics())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	_, err := registry.Execute(ctx, "graphql:a", func() (any, error) {
		called = true
		return nil, nil
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if called {
		t.Error("function should not run with a cancelled context")
	}
}

func TestCircuitBreakerRegistry_TripsAfterFailures(t *testing.T) {
	metrics := testMetrics()
	registry := NewCircuitBreakerRegistry(CircuitBreakerConfig{
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		MinRequests:  3,
		FailureRatio: 0.5,
	}, metrics)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _ = registry.Execute(ctx, "graphql:down", func() (any, error) {
			return nil, errors.New("fail")
		})
	}

	status := registry.Status()
	if status["graphql:down"].State != "open" {
		t.Fatalf("expected breaker to be open, got %s", status["graphql:down"].State)
	}

	called := false
	_, err := registry.Execute(ctx, "graphql:down", func() (any, error) {
		called = true
		return nil, nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
	if called {
		t.Error("open breaker should not run the function")
	}

	if v := testutil.ToFloat64(metrics.CircuitBreakerTrips.WithLabelValues("graphql:down")); v != 1 {
		t.Errorf("trip counter = %v, want 1", v)
	}
	if v := testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("graphql:down")); v != 2 {
		t.Errorf("state gauge = %v, want 2", v)
	}
}

func TestCircuitBreakerRegistry_Status(t *testing.T) {
	registry := NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig, testMetrics())
	ctx := context.Background()

	_, _ = registry.Execute(ctx, "graphql:a", func() (any, error) { return "ok", nil })
	_, _ = registry.Execute(ctx, "graphql:b", func() (any, error) { return nil, errors.New("fail") })

	status := registry.Status()
	if len(status) != 2 {
		t.Fatalf("expected 2 breakers, got %d", len(status))
	}
	if status["graphql:a"].TotalSuccesses != 1 {
		t.Errorf("expected 1 success for graphql:a, got %d", status["graphql:a"].TotalSuccesses)
	}
	if status["graphql:b"].TotalFailures != 1 {
		t.Errorf("expected 1 failure for graphql:b, got %d", status["graphql:b"].TotalFailures)
	}
	if status["graphql:a"].State != "closed" {
		t.Errorf("expected closed, got %s", status["graphql:a"].State)
	}
}

func TestWithCircuitBreaker_TypedResults(t *testing.T) {
	registry := NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig, testMetrics())
	ctx := context.Background()

	stocks, err := WithCircuitBreaker(ctx, registry, "graphql:a", func() ([]string, error) {
		return []string{"AAPL", "MSFT"}, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stocks) != 2 || stocks[0] != "AAPL" {
		t.Errorf("unexpected result %v", stocks)
	}

	n, err := WithCircuitBreaker(ctx, registry, "graphql:a", func() (int, error) {
		return 0, errors.New("fail")
	})
	if err == nil {
		t.Error("expected error")
	}
	if n != 0 {
		t.Errorf("expected zero value on error, got %d", n)
	}
}

func TestStateToInt(t *testing.T) {
	registry := NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig, testMetrics())
	cb := registry.GetBreaker("graphql:a")
	if stateToInt(cb.State()) != 0 {
		t.Errorf("new breaker should map to 0, got %d", stateToInt(cb.State()))
	}
}

func TestCircuitBreakerRegistry_Concurrent(t *testing.T) {
	registry := NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig, testMetrics())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if _, err := registry.Execute(ctx, "graphql:concurrent", func() (any, error) {
				return id, nil
			}); err != nil {
				t.Errorf("concurrent execution error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if got := registry.Status()["graphql:concurrent"].TotalSuccesses; got != 10 {
		t.Errorf("expected 10 successes, got %d", got)
	}
}
