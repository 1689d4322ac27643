package routes

import (
	"context"

	"github.com/mmourani/hscode-scraper/internal/http/handlers"
)

// HSCodeHandlers defines the interface for per-code lookups.
type HSCodeHandlers interface {
	GetHSCode(ctx context.Context, input *handlers.GetHSCodeInput) (*handlers.GetHSCodeOutput, error)
}

// SearchHandlers defines the interface for description search.
type SearchHandlers interface {
	Search(ctx context.Context, input *handlers.SearchInput) (*handlers.SearchOutput, error)
}

// ProductHandlers defines the interface for product map queries.
type ProductHandlers interface {
	ListProducts(ctx context.Context, input *handlers.ListProductsInput) (*handlers.ListProductsOutput, error)
}

// Handlers aggregates all handlers for route registration.
// For the server, pass real handler implementations.
// For OpenAPI generation, pass stub implementations.
type Handlers struct {
	HealthCheck func(ctx context.Context, input *struct{}) (*handlers.HealthCheckOutput, error)

	// Kubernetes probes (hidden from docs)
	Livez  func(ctx context.Context, input *struct{}) (*handlers.LivezOutput, error)
	Readyz func(ctx context.Context, input *struct{}) (*handlers.ReadyzOutput, error)

	HSCode  HSCodeHandlers
	Search  SearchHandlers
	Product ProductHandlers
}
