package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mmourani/hscode-scraper/internal/version"
)

func TestAPIVersion(t *testing.T) {
	wrapped := APIVersion()(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	if got, want := rec.Header().Get("X-API-Version"), version.Get().Short(); got != want {
		t.Errorf("X-API-Version = %q, want %q", got, want)
	}
}

func TestAPIVersionOnAllResponses(t *testing.T) {
	testCases := []struct {
		name   string
		status int
	}{
		{"200 OK", http.StatusOK},
		{"400 Bad Request", http.StatusBadRequest},
		{"404 Not Found", http.StatusNotFound},
		{"503 Service Unavailable", http.StatusServiceUnavailable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			})

			rec := httptest.NewRecorder()
			APIVersion()(handler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

			if rec.Header().Get("X-API-Version") == "" {
				t.Errorf("expected X-API-Version header for status %d", tc.status)
			}
		})
	}
}
