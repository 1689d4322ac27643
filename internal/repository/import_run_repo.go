package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/mmourani/hscode-scraper/internal/models"
)

// SQLiteImportRunRepository implements ImportRunRepository for SQLite/libsql.
type SQLiteImportRunRepository struct {
	db DBTX
}

// NewSQLiteImportRunRepository creates a new SQLite import run repository.
func NewSQLiteImportRunRepository(db DBTX) *SQLiteImportRunRepository {
	return &SQLiteImportRunRepository{db: db}
}

// Create records an import run. A ULID is assigned when run.ID is empty.
func (r *SQLiteImportRunRepository) Create(ctx context.Context, run *models.ImportRun) error {
	if run.ID == "" {
		run.ID = ulid.Make().String()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	if run.CompletedAt.IsZero() {
		run.CompletedAt = time.Now().UTC()
	}

	var countryID sql.NullInt64
	if run.CountryID != nil {
		countryID = sql.NullInt64{Int64: *run.CountryID, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO import_runs (
			id, source, country_id, input_path, input_hash,
			records, skipped, started_at, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		string(run.Source),
		countryID,
		run.InputPath,
		nullString(run.InputHash),
		run.Records,
		run.Skipped,
		run.StartedAt.Format(time.RFC3339Nano),
		run.CompletedAt.Format(time.RFC3339Nano),
	)
	return err
}

// ListRecent returns the most recent import runs, newest first.
func (r *SQLiteImportRunRepository) ListRecent(ctx context.Context, limit int) ([]*models.ImportRun, error) {
	if limit <= 0 {
		limit = 20
	}

	// ULIDs sort by creation time.
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, source, country_id, input_path, input_hash,
			   records, skipped, started_at, completed_at
		FROM import_runs
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*models.ImportRun
	for rows.Next() {
		var run models.ImportRun
		var source string
		var countryID sql.NullInt64
		var hash sql.NullString
		var startedAt, completedAt string

		if err := rows.Scan(
			&run.ID, &source, &countryID, &run.InputPath, &hash,
			&run.Records, &run.Skipped, &startedAt, &completedAt,
		); err != nil {
			return nil, err
		}

		run.Source = models.ImportSource(source)
		if countryID.Valid {
			id := countryID.Int64
			run.CountryID = &id
		}
		run.InputHash = hash.String
		run.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
		run.CompletedAt, _ = time.Parse(time.RFC3339Nano, completedAt)
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}
