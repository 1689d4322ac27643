package routes

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mmourani/hscode-scraper/internal/http/mw"
)

// Register registers all API routes with the given Huma API instance.
// Pass real handler implementations for the server, or stub implementations
// for OpenAPI generation.
func Register(api huma.API, h *Handlers) {
	mw.PublicGet(api, "/api/v1/health", h.HealthCheck,
		mw.WithTags("Health"),
		mw.WithSummary("Health check"),
		mw.WithOperationID("healthCheck"))

	// Kubernetes probes (hidden from docs - internal use only)
	mw.HiddenGet(api, "/healthz", h.Livez)
	mw.HiddenGet(api, "/readyz", h.Readyz)

	mw.PublicGet(api, "/api/v1/hscodes/{code}", h.HSCode.GetHSCode,
		mw.WithTags("HS Codes"),
		mw.WithSummary("Get an HS code"),
		mw.WithDescription("Returns the code's tariff line in every imported schedule, with customs clearance and CIQ inspection requirements."),
		mw.WithOperationID("getHsCode"),
		mw.WithErrors(http.StatusNotFound))

	mw.PublicGet(api, "/api/v1/search", h.Search.Search,
		mw.WithTags("Search"),
		mw.WithSummary("Search code descriptions"),
		mw.WithDescription("Ranks descriptions against the query: 3 for an exact description, 2 when the description contains the query, 1 when any query word appears. Zero scores are dropped."),
		mw.WithOperationID("searchHsCodes"),
		mw.WithErrors(http.StatusBadRequest))

	mw.PublicGet(api, "/api/v1/products", h.Product.ListProducts,
		mw.WithTags("Products"),
		mw.WithSummary("Query the product map"),
		mw.WithOperationID("listProducts"),
		mw.WithErrors(http.StatusServiceUnavailable))
}
