package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func serve(h http.Handler, path, remoteAddr string) int {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

// ========================================
// DefaultRateLimitConfig Tests
// ========================================

func TestDefaultRateLimitConfig(t *testing.T) {
	cfg := DefaultRateLimitConfig(120)
	if cfg.RequestsPerMinute != 120 {
		t.Errorf("RequestsPerMinute = %d, want 120", cfg.RequestsPerMinute)
	}
	if len(cfg.ExemptPrefixes) != 2 {
		t.Errorf("ExemptPrefixes = %v, want the two probes", cfg.ExemptPrefixes)
	}
}

// ========================================
// RateLimit Tests
// ========================================

func TestRateLimit_LimitsPerIP(t *testing.T) {
	handler := RateLimit(RateLimitConfig{RequestsPerMinute: 2})(okHandler())

	for i := 0; i < 2; i++ {
		if code := serve(handler, "/api/v1/search", "10.0.0.1:1000"); code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, code)
		}
	}
	if code := serve(handler, "/api/v1/search", "10.0.0.1:1000"); code != http.StatusTooManyRequests {
		t.Errorf("third request: status = %d, want 429", code)
	}
	if code := serve(handler, "/api/v1/search", "10.0.0.2:1000"); code != http.StatusOK {
		t.Errorf("other IP: status = %d, want 200", code)
	}
}

func TestRateLimit_ExemptPrefixes(t *testing.T) {
	handler := RateLimit(DefaultRateLimitConfig(1))(okHandler())

	for i := 0; i < 5; i++ {
		if code := serve(handler, "/healthz", "10.0.0.1:1000"); code != http.StatusOK {
			t.Fatalf("probe request %d: status = %d, want 200", i+1, code)
		}
	}
}

func TestRateLimit_Unlimited(t *testing.T) {
	handler := RateLimit(RateLimitConfig{RequestsPerMinute: 0})(okHandler())

	for i := 0; i < 10; i++ {
		if code := serve(handler, "/api/v1/search", "10.0.0.1:1000"); code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, code)
		}
	}
}

func TestRateLimitGlobal(t *testing.T) {
	handler := RateLimitGlobal(1)(okHandler())

	if code := serve(handler, "/a", "10.0.0.1:1000"); code != http.StatusOK {
		t.Fatalf("first request: status = %d", code)
	}
	if code := serve(handler, "/b", "10.0.0.2:1000"); code != http.StatusTooManyRequests {
		t.Errorf("second request from another IP: status = %d, want 429", code)
	}
}
