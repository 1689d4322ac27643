// Package routes provides shared route registration for the HS code lookup API.
// This allows both the server and the OpenAPI generator to use the same route
// definitions, so the published document always matches what is served.
package routes

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/mmourani/hscode-scraper/internal/version"
)

// NewHumaConfig creates the shared Huma configuration for the API.
func NewHumaConfig(baseURL string) huma.Config {
	cfg := huma.DefaultConfig("HS Code Lookup API", version.Get().Short())
	cfg.Info.Description = "Read-only access to imported HS code schedules, their customs and CIQ requirements, and the global product map."

	// Disable $schema field in responses
	cfg.CreateHooks = nil

	if baseURL != "" {
		cfg.Servers = []*huma.Server{
			{URL: baseURL, Description: "API Server"},
		}
	}

	cfg.Tags = []*huma.Tag{
		{Name: "HS Codes", Description: "Per-country tariff lines and requirements", Extensions: map[string]any{"x-displayName": "HS Codes"}},
		{Name: "Search", Description: "Scored description search", Extensions: map[string]any{"x-displayName": "Search"}},
		{Name: "Products", Description: "Global product map", Extensions: map[string]any{"x-displayName": "Products"}},
		{Name: "Health", Description: "System health and status", Extensions: map[string]any{"x-displayName": "Health"}},
	}

	return cfg
}
