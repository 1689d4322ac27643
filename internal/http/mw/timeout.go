package mw

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// TimeoutConfig defines timeout behavior for different path prefixes.
type TimeoutConfig struct {
	// Default timeout for most endpoints. 0 disables the middleware.
	Default time.Duration
	// Extended timeout for scans over whole schedules.
	Extended time.Duration
	// Path prefixes that get the extended timeout (e.g. "/api/v1/search").
	ExtendedPrefixes []string
}

func (c TimeoutConfig) timeoutFor(path string) time.Duration {
	for _, prefix := range c.ExtendedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return c.Extended
		}
	}
	return c.Default
}

// Timeout returns a middleware that bounds the request context. Store queries
// run with the request context, so they stop once the deadline passes.
func Timeout(cfg TimeoutConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := cfg.timeoutFor(r.URL.Path)
			if d <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
