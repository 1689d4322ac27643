package productmap

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/mmourani/hscode-scraper/internal/config"
	"github.com/mmourani/hscode-scraper/internal/models"
	"github.com/mmourani/hscode-scraper/internal/repository"
)

// SyncResult summarises one catalog sync.
type SyncResult struct {
	RunID string
	// Inserted rows were absent from the store and have been created.
	Inserted int
	// Existing rows were already present and left untouched.
	Existing int
	// UnknownLabel counts codes whose country label is not in the label table
	// or whose code is empty.
	UnknownLabel int
	// NoCountry counts codes whose country has no row in the store.
	NoCountry int
}

// Syncer writes catalog products into the store as placeholder HS code rows.
type Syncer struct {
	repos  *repository.Repositories
	labels config.CountryLabels
	logger *slog.Logger
}

// NewSyncer creates a catalog syncer. labels resolves catalog country labels to ISO codes.
func NewSyncer(repos *repository.Repositories, labels config.CountryLabels, logger *slog.Logger) *Syncer {
	if labels == nil {
		labels = config.DefaultCountryLabels()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{repos: repos, labels: labels, logger: logger}
}

// Description is the synthesized description of a catalog product.
func Description(brand string, p models.BrandProduct) string {
	return fmt.Sprintf("%s %s (%s)", Title(brand), p.Name, p.Type)
}

// Sync inserts a row for every catalog (product, country, code) that the store
// does not hold yet. Rows that exist are never modified. Brands and products
// are visited in catalog order, so when two products share a code and country
// the first one listed names the row. Labels are visited in sorted order.
func (s *Syncer) Sync(ctx context.Context, catalog models.BrandCatalog, inputPath, inputHash string) (*SyncResult, error) {
	started := time.Now()
	res := &SyncResult{}

	err := s.repos.WithTx(ctx, func(tx *repository.Repositories) error {
		countries := map[string]*models.Country{}
		lookup := func(iso string) (*models.Country, error) {
			if c, ok := countries[iso]; ok {
				return c, nil
			}
			c, err := tx.Country.GetByISO(ctx, iso)
			if err != nil {
				return nil, err
			}
			countries[iso] = c
			return c, nil
		}

		for _, brand := range catalog.Brands() {
			for _, product := range catalog[brand].Products {
				for _, label := range sortedLabels(product.HSCodes) {
					code := strings.TrimSpace(product.HSCodes[label].String)
					iso, ok := s.labels.Resolve(label)
					if !ok || code == "" {
						res.UnknownLabel++
						continue
					}

					country, err := lookup(iso)
					if err != nil {
						return err
					}
					if country == nil {
						res.NoCountry++
						continue
					}

					inserted, err := tx.HSCode.InsertIfAbsent(ctx, &models.HSCode{
						Code:        code,
						Description: Description(brand, product),
						CountryID:   country.ID,
						ExtraInfo:   models.SyncProvenance{Source: models.ProductMapSyncSource},
					})
					if err != nil {
						return err
					}
					if inserted {
						res.Inserted++
						s.logger.Debug("catalog product inserted", "brand", brand, "product", product.Name, "country", iso, "code", code)
					} else {
						res.Existing++
					}
				}
			}
		}

		run := &models.ImportRun{
			Source:      models.ImportSourceProductSync,
			InputPath:   inputPath,
			InputHash:   inputHash,
			Records:     res.Inserted,
			Skipped:     res.Existing + res.UnknownLabel + res.NoCountry,
			StartedAt:   started.UTC(),
			CompletedAt: time.Now().UTC(),
		}
		if err := tx.ImportRun.Create(ctx, run); err != nil {
			return fmt.Errorf("failed to record sync run: %w", err)
		}
		res.RunID = run.ID
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sync brand catalog %s: %w", inputPath, err)
	}

	s.logger.Info("brand catalog synced",
		"path", inputPath,
		"inserted", res.Inserted,
		"existing", res.Existing,
		"unknown_label", res.UnknownLabel,
		"no_country", res.NoCountry,
	)
	return res, nil
}

func sortedLabels(codes map[string]models.FlexText) []string {
	labels := make([]string, 0, len(codes))
	for label := range codes {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
