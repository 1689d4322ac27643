// Package repository defines repository interfaces for data access to the HS code store.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mmourani/hscode-scraper/internal/models"
)

// DBTX is the subset of *sql.DB and *sql.Tx the repositories need.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// CountryRepository defines methods for country data access.
type CountryRepository interface {
	// GetOrCreate looks a country up by name and creates it when absent.
	// A NULL iso_code on an existing row is backfilled with isoCode.
	GetOrCreate(ctx context.Context, name, isoCode string) (*models.Country, error)
	// GetOrCreateByISO looks a country up by ISO code and creates it with name when absent.
	GetOrCreateByISO(ctx context.Context, isoCode, name string) (*models.Country, error)
	GetByISO(ctx context.Context, isoCode string) (*models.Country, error)
	GetByID(ctx context.Context, id int64) (*models.Country, error)
	List(ctx context.Context) ([]*models.Country, error)
}

// HSCodeRepository defines methods for HS code data access.
type HSCodeRepository interface {
	// Upsert inserts the row or overwrites description, duty and extra_info of
	// the row with the same (code, country_id). h.ID is set on return.
	Upsert(ctx context.Context, h *models.HSCode) error
	// InsertIfAbsent inserts the row only when (code, country_id) is not present.
	// Returns true when a row was written.
	InsertIfAbsent(ctx context.Context, h *models.HSCode) (bool, error)
	Get(ctx context.Context, code string, countryID int64) (*models.HSCode, error)
	GetByCodeAndISO(ctx context.Context, code, isoCode string) (*models.HSCode, error)
	ListByCode(ctx context.Context, code string) ([]*models.HSCode, error)
	ListByCountryISO(ctx context.Context, isoCode string) ([]*models.HSCode, error)
	// ListDescribed returns (iso, code, description) for every row with a
	// non-empty description, ordered by row id.
	ListDescribed(ctx context.Context) ([]models.DescribedCode, error)
	// UpdateExtraInfo overwrites extra_info for a code in the country with the
	// given ISO code. Returns the number of rows changed.
	UpdateExtraInfo(ctx context.Context, code, isoCode string, extra models.ExtraInfo) (int64, error)
	CountByCountry(ctx context.Context, countryID int64) (int, error)
}

// RequirementRepository defines methods for the child requirement tables.
type RequirementRepository interface {
	// ReplaceCustoms deletes the customs rows of an HS code and inserts reqs.
	ReplaceCustoms(ctx context.Context, hscodeID int64, reqs []models.CustomsClearanceRequirement) error
	// ReplaceCIQ deletes the CIQ rows of an HS code and inserts reqs.
	ReplaceCIQ(ctx context.Context, hscodeID int64, reqs []models.CIQInspectionRequirement) error
	ListCustoms(ctx context.Context, hscodeID int64) ([]models.CustomsClearanceRequirement, error)
	ListCIQ(ctx context.Context, hscodeID int64) ([]models.CIQInspectionRequirement, error)
}

// ImportRunRepository defines methods for the import audit log.
type ImportRunRepository interface {
	Create(ctx context.Context, run *models.ImportRun) error
	ListRecent(ctx context.Context, limit int) ([]*models.ImportRun, error)
}

// Repositories holds all repository instances.
type Repositories struct {
	Country     CountryRepository
	HSCode      HSCodeRepository
	Requirement RequirementRepository
	ImportRun   ImportRunRepository

	// db is nil for transaction-bound repositories.
	db *sql.DB
}

// NewRepositories creates all repository instances.
func NewRepositories(db *sql.DB) *Repositories {
	r := newRepositories(db)
	r.db = db
	return r
}

func newRepositories(q DBTX) *Repositories {
	return &Repositories{
		Country:     NewSQLiteCountryRepository(q),
		HSCode:      NewSQLiteHSCodeRepository(q),
		Requirement: NewSQLiteRequirementRepository(q),
		ImportRun:   NewSQLiteImportRunRepository(q),
	}
}

// WithTx runs fn with repositories bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise. Calling
// WithTx on transaction-bound repositories runs fn in the enclosing transaction.
func (r *Repositories) WithTx(ctx context.Context, fn func(tx *Repositories) error) error {
	if r.db == nil {
		return fn(r)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // Rollback is no-op after commit

	if err := fn(newRepositories(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
