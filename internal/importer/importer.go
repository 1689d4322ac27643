// Package importer loads per-country tariff schedules into the HS code store.
//
// Three source shapes are supported: JSON schedule exports (simple or rich
// records), text extracted from a PDF schedule, and tabular tariff sheets
// (xlsx or csv). Each import runs in one transaction and is recorded in the
// import_runs audit table together with a digest of its input.
package importer

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/mmourani/hscode-scraper/internal/config"
	"github.com/mmourani/hscode-scraper/internal/models"
	"github.com/mmourani/hscode-scraper/internal/repository"
)

// ErrSourceMissing is returned when an input artifact does not exist.
var ErrSourceMissing = errors.New("import source not found")

// Country identifies the schedule a source belongs to.
type Country struct {
	Name    string
	ISOCode string
}

// Result summarises one import.
type Result struct {
	RunID     string
	Source    models.ImportSource
	Country   *models.Country
	InputPath string
	InputHash string
	Imported  int
	Skipped   int
	Customs   int // customs clearance rows written
	CIQ       int // CIQ inspection rows written
}

// Importer writes schedules into the store.
type Importer struct {
	repos  *repository.Repositories
	names  config.CountryNames
	logger *slog.Logger
}

// New creates an importer. names supplies display names for countries that
// are looked up by ISO code.
func New(repos *repository.Repositories, names config.CountryNames, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	if names == nil {
		names = config.DefaultCountryNames()
	}
	return &Importer{repos: repos, names: names, logger: logger}
}

// recordRun writes the audit row for a finished import inside the import transaction.
func recordRun(ctx context.Context, tx *repository.Repositories, res *Result, started time.Time) error {
	run := &models.ImportRun{
		Source:      res.Source,
		InputPath:   res.InputPath,
		InputHash:   res.InputHash,
		Records:     res.Imported,
		Skipped:     res.Skipped,
		StartedAt:   started.UTC(),
		CompletedAt: time.Now().UTC(),
	}
	if res.Country != nil {
		id := res.Country.ID
		run.CountryID = &id
	}
	if err := tx.ImportRun.Create(ctx, run); err != nil {
		return fmt.Errorf("failed to record import run: %w", err)
	}
	res.RunID = run.ID
	return nil
}

// HashFile returns the hex BLAKE2b-256 digest of a file.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashBytes returns the hex BLAKE2b-256 digest of data.
func HashBytes(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// checkSource returns ErrSourceMissing when path does not exist.
func checkSource(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrSourceMissing, path)
		}
		return err
	}
	return nil
}
