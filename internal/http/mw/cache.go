package mw

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Cache lifetimes for API responses. Schedules change only when an import
// runs, so code lookups can be cached longer than search results.
const (
	CacheMaxAgeShort  = 30 * time.Second
	CacheMaxAgeMedium = 5 * time.Minute
	CacheMaxAgeLong   = time.Hour
)

// CachePolicy defines caching behavior for a route prefix.
type CachePolicy struct {
	Pattern      string
	CacheControl string
}

// CacheConfig holds the cache middleware configuration.
type CacheConfig struct {
	// Policies are matched in order; the first prefix match wins.
	Policies []CachePolicy
	// DefaultPolicy is applied when no policy matches (empty = no header set).
	DefaultPolicy string
}

// DefaultCacheConfig returns the policies for the HS code API. Probes are
// never cached.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		DefaultPolicy: "no-cache",
		Policies: []CachePolicy{
			{Pattern: "/healthz", CacheControl: "no-store"},
			{Pattern: "/readyz", CacheControl: "no-store"},
			{Pattern: "/api/v1/health", CacheControl: maxAge(CacheMaxAgeShort)},
			{Pattern: "/api/v1/hscodes/", CacheControl: maxAge(CacheMaxAgeLong)},
			{Pattern: "/api/v1/products", CacheControl: maxAge(CacheMaxAgeMedium) + ", stale-while-revalidate=60"},
			{Pattern: "/api/v1/search", CacheControl: maxAge(CacheMaxAgeMedium)},
		},
	}
}

func maxAge(d time.Duration) string {
	return fmt.Sprintf("public, max-age=%d", int(d.Seconds()))
}

// Cache returns middleware that sets Cache-Control headers based on route
// prefixes. Requests other than GET and HEAD get "no-store".
func Cache(cfg CacheConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				w.Header().Set("Cache-Control", "no-store")
				next.ServeHTTP(w, r)
				return
			}

			for _, policy := range cfg.Policies {
				if strings.HasPrefix(r.URL.Path, policy.Pattern) {
					w.Header().Set("Cache-Control", policy.CacheControl)
					next.ServeHTTP(w, r)
					return
				}
			}

			if cfg.DefaultPolicy != "" {
				w.Header().Set("Cache-Control", cfg.DefaultPolicy)
			}
			next.ServeHTTP(w, r)
		})
	}
}
