// Package handlers contains HTTP handlers for the API.
package handlers

import (
	"context"
	"database/sql"

	"github.com/mmourani/hscode-scraper/internal/database"
	"github.com/mmourani/hscode-scraper/internal/version"
)

// HealthCheckOutput represents health check response.
type HealthCheckOutput struct {
	Body struct {
		Status  string                 `json:"status" doc:"healthy, or degraded when the schema cannot be read"`
		Version string                 `json:"version"`
		Schema  *database.SchemaStatus `json:"schema,omitempty" doc:"Applied database migrations"`
	}
}

// HealthHandler reports API and schema status.
type HealthHandler struct {
	db *sql.DB
}

// NewHealthHandler creates a health handler. db may be nil.
func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// HealthCheck returns the health status of the API.
func (h *HealthHandler) HealthCheck(ctx context.Context, input *struct{}) (*HealthCheckOutput, error) {
	out := &HealthCheckOutput{}
	out.Body.Status = "healthy"
	out.Body.Version = version.Get().Short()

	if h.db == nil {
		return out, nil
	}
	status, err := database.Status(h.db)
	if err != nil {
		out.Body.Status = "degraded"
		return out, nil
	}
	out.Body.Schema = &status
	return out, nil
}
