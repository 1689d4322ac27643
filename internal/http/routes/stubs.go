package routes

import (
	"context"

	"github.com/mmourani/hscode-scraper/internal/http/handlers"
)

// StubHandlers returns a Handlers instance with stub implementations.
// All handlers return nil responses - these are only used for OpenAPI generation
// where Huma extracts type information from function signatures.
func StubHandlers() *Handlers {
	return &Handlers{
		HealthCheck: stubHealthCheck,
		Livez:       stubLivez,
		Readyz:      stubReadyz,
		HSCode:      stubHSCodeHandlers{},
		Search:      stubSearchHandlers{},
		Product:     stubProductHandlers{},
	}
}

func stubHealthCheck(_ context.Context, _ *struct{}) (*handlers.HealthCheckOutput, error) {
	return nil, nil
}

func stubLivez(_ context.Context, _ *struct{}) (*handlers.LivezOutput, error) {
	return nil, nil
}

func stubReadyz(_ context.Context, _ *struct{}) (*handlers.ReadyzOutput, error) {
	return nil, nil
}

type stubHSCodeHandlers struct{}

func (stubHSCodeHandlers) GetHSCode(_ context.Context, _ *handlers.GetHSCodeInput) (*handlers.GetHSCodeOutput, error) {
	return nil, nil
}

type stubSearchHandlers struct{}

func (stubSearchHandlers) Search(_ context.Context, _ *handlers.SearchInput) (*handlers.SearchOutput, error) {
	return nil, nil
}

type stubProductHandlers struct{}

func (stubProductHandlers) ListProducts(_ context.Context, _ *handlers.ListProductsInput) (*handlers.ListProductsOutput, error) {
	return nil, nil
}
