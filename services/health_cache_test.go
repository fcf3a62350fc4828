package services

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"
)

func TestNewHealthCache(t *testing.T) {
	cache := NewHealthCache(30 * time.Second)

	if cache.TTL() != 30*time.Second {
		t.Errorf("TTL() = %v, want 30s", cache.TTL())
	}
	if _, valid := cache.Get(); valid {
		t.Error("new cache should not be valid")
	}
}

func TestHealthCache_SetAndExpire(t *testing.T) {
	now := time.Date(2025, 5, 5, 9, 0, 0, 0, time.UTC)
	cache := NewHealthCache(30 * time.Second)
	cache.now = func() time.Time { return now }

	cache.Set(HealthResult{Available: true, Message: "Connected"})

	result, valid := cache.Get()
	if !valid || !result.Available {
		t.Fatalf("expected fresh available result, got %+v valid=%v", result, valid)
	}
	if !result.CheckedAt.Equal(now) {
		t.Errorf("CheckedAt = %v, want %v", result.CheckedAt, now)
	}

	now = now.Add(31 * time.Second)
	if _, valid := cache.Get(); valid {
		t.Error("result should expire after the TTL")
	}
}

func TestHealthCache_ZeroTTLDisablesCaching(t *testing.T) {
	cache := NewHealthCache(0)
	cache.Set(HealthResult{Available: true})

	if _, valid := cache.Get(); valid {
		t.Error("zero TTL should never be valid")
	}
}

func TestHealthCache_Invalidate(t *testing.T) {
	cache := NewHealthCache(time.Minute)
	cache.Set(HealthResult{Available: true})
	cache.Invalidate()

	if _, valid := cache.Get(); valid {
		t.Error("cache should be invalid after Invalidate")
	}
}

func TestHealthCache_CheckProbesOnce(t *testing.T) {
	stub := newGraphQLStub(t, http.StatusOK, `{"data":{"__typename":"Query"}}`)
	client := newTestClient(t, stub.URL)
	cache := NewHealthCache(time.Minute)

	first := cache.Check(context.Background(), client)
	second := cache.Check(context.Background(), client)

	if !first.Available || first.Endpoint != stub.URL {
		t.Errorf("unexpected result %+v", first)
	}
	if first.CheckedAt.IsZero() {
		t.Error("a fresh check should carry its check time")
	}
	if second != first {
		t.Errorf("second check should be served from cache")
	}
	if hits := stub.hits.Load(); hits != 1 {
		t.Errorf("expected 1 probe, got %d", hits)
	}
}

func TestHealthCache_CheckReportsFailure(t *testing.T) {
	client := newTestClient(t, deadURL(t))
	cache := NewHealthCache(time.Minute)

	result := cache.Check(context.Background(), client)

	if result.Available {
		t.Error("dead endpoint should be unavailable")
	}
	if result.Message == "" {
		t.Error("failure should carry a message")
	}
}

func TestHealthCache_Concurrent(t *testing.T) {
	cache := NewHealthCache(time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			cache.Set(HealthResult{Available: i%2 == 0})
		}(i)
		go func() {
			defer wg.Done()
			cache.Get()
		}()
	}
	wg.Wait()
}
