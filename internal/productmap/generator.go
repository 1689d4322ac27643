package productmap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmourani/hscode-scraper/internal/models"
	"github.com/mmourani/hscode-scraper/internal/repository"
)

// Generator builds the global product map from the store.
type Generator struct {
	repos  *repository.Repositories
	logger *slog.Logger
}

// NewGenerator creates a product map generator.
func NewGenerator(repos *repository.Repositories, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{repos: repos, logger: logger}
}

// Build groups described codes into a product map. The first row seen for a
// code sets its name, type and keywords; every row adds its country.
func Build(rows []models.DescribedCode) models.ProductMap {
	m := models.ProductMap{}
	for _, row := range rows {
		entry, ok := m[row.Code]
		if !ok {
			entry = &models.ProductMapEntry{
				Name:     row.Description,
				Type:     TypeOf(row.Description),
				Keywords: Keywords(row.Description),
				HSCodes:  map[string]string{},
			}
			m[row.Code] = entry
		}
		entry.HSCodes[row.ISOCode] = row.Code
	}
	return m
}

// Build reads every described code in row order and builds the product map.
func (g *Generator) Build(ctx context.Context) (models.ProductMap, error) {
	rows, err := g.repos.HSCode.ListDescribed(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list described codes: %w", err)
	}
	m := Build(rows)
	g.logger.Debug("product map built", "rows", len(rows), "codes", len(m))
	return m, nil
}

// Generate builds the product map and writes it to path. The encoded file
// contents are returned alongside the map.
func (g *Generator) Generate(ctx context.Context, path string) (models.ProductMap, []byte, error) {
	m, err := g.Build(ctx)
	if err != nil {
		return nil, nil, err
	}
	data, err := Write(path, m)
	if err != nil {
		return nil, nil, err
	}
	g.logger.Info("product map written", "path", path, "codes", len(m), "bytes", len(data))
	return m, data, nil
}
