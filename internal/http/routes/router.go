package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mmourani/hscode-scraper/internal/http/mw"
)

// RouterOptions configures the middleware stack around the API.
type RouterOptions struct {
	BaseURL            string
	CORSOrigins        []string
	RateLimitPerMinute int           // per client IP; 0 disables
	RequestTimeout     time.Duration // 0 disables
	SearchTimeout      time.Duration // for full-schedule scans
	Logger             *slog.Logger
}

// NewRouter builds the chi router with middleware and registers the API on it.
func NewRouter(opts RouterOptions, h *Handlers) (chi.Router, huma.API) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	searchTimeout := opts.SearchTimeout
	if searchTimeout == 0 {
		searchTimeout = opts.RequestTimeout
	}

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(mw.APIVersion())
	router.Use(mw.Cache(mw.DefaultCacheConfig()))
	router.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(logger.Handler(), slog.LevelInfo),
		NoColor: true,
	}))
	router.Use(middleware.Recoverer)
	router.Use(mw.Timeout(mw.TimeoutConfig{
		Default:          opts.RequestTimeout,
		Extended:         searchTimeout,
		ExtendedPrefixes: []string{"/api/v1/search"},
	}))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "X-API-Version", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		MaxAge:         300,
	}))

	router.Use(mw.RateLimit(mw.DefaultRateLimitConfig(opts.RateLimitPerMinute)))

	// Global concurrency throttle - prevent system overload
	router.Use(middleware.Throttle(100))

	api := humachi.New(router, NewHumaConfig(opts.BaseURL))
	Register(api, h)

	return router, api
}
