package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mmourani/hscode-scraper/internal/models"
)

// SQLiteHSCodeRepository implements HSCodeRepository for SQLite/libsql.
type SQLiteHSCodeRepository struct {
	db DBTX
}

// NewSQLiteHSCodeRepository creates a new SQLite HS code repository.
func NewSQLiteHSCodeRepository(db DBTX) *SQLiteHSCodeRepository {
	return &SQLiteHSCodeRepository{db: db}
}

const hscodeColumns = `h.id, h.code, h.description, h.country_id, h.duty, h.extra_info`

// Upsert inserts or updates the row keyed by (code, country_id).
func (r *SQLiteHSCodeRepository) Upsert(ctx context.Context, h *models.HSCode) error {
	extra, err := models.EncodeExtraInfo(h.ExtraInfo)
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO hscodes (code, description, country_id, duty, extra_info)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(code, country_id) DO UPDATE SET
			description = excluded.description,
			duty = excluded.duty,
			extra_info = excluded.extra_info
	`,
		h.Code,
		h.Description,
		h.CountryID,
		nullStringPtr(h.Duty),
		extra,
	); err != nil {
		return fmt.Errorf("failed to upsert hscode %s: %w", h.Code, err)
	}

	// last_insert_rowid is not updated by the DO UPDATE branch.
	if err := r.db.QueryRowContext(ctx,
		`SELECT id FROM hscodes WHERE code = ? AND country_id = ?`,
		h.Code, h.CountryID,
	).Scan(&h.ID); err != nil {
		return fmt.Errorf("failed to read back hscode %s: %w", h.Code, err)
	}
	return nil
}

// InsertIfAbsent inserts the row unless (code, country_id) already exists.
func (r *SQLiteHSCodeRepository) InsertIfAbsent(ctx context.Context, h *models.HSCode) (bool, error) {
	extra, err := models.EncodeExtraInfo(h.ExtraInfo)
	if err != nil {
		return false, err
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO hscodes (code, description, country_id, duty, extra_info)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(code, country_id) DO NOTHING
	`,
		h.Code,
		h.Description,
		h.CountryID,
		nullStringPtr(h.Duty),
		extra,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert hscode %s: %w", h.Code, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil
	}

	if id, err := result.LastInsertId(); err == nil {
		h.ID = id
	}
	return true, nil
}

// Get returns the row for (code, countryID), or nil.
func (r *SQLiteHSCodeRepository) Get(ctx context.Context, code string, countryID int64) (*models.HSCode, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+hscodeColumns+`
		FROM hscodes h
		WHERE h.code = ? AND h.country_id = ?
	`, code, countryID)
	return scanHSCode(row)
}

// GetByCodeAndISO returns the row for a code in the country with the ISO code, or nil.
func (r *SQLiteHSCodeRepository) GetByCodeAndISO(ctx context.Context, code, isoCode string) (*models.HSCode, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+hscodeColumns+`
		FROM hscodes h
		JOIN countries c ON h.country_id = c.id
		WHERE h.code = ? AND c.iso_code = ?
		ORDER BY h.id
		LIMIT 1
	`, code, strings.ToUpper(isoCode))
	return scanHSCode(row)
}

// ListByCode returns the rows for a code across all countries.
func (r *SQLiteHSCodeRepository) ListByCode(ctx context.Context, code string) ([]*models.HSCode, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+hscodeColumns+`
		FROM hscodes h
		WHERE h.code = ?
		ORDER BY h.country_id
	`, code)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanHSCodes(rows)
}

// ListByCountryISO returns every row of one country's schedule, ordered by id.
func (r *SQLiteHSCodeRepository) ListByCountryISO(ctx context.Context, isoCode string) ([]*models.HSCode, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+hscodeColumns+`
		FROM hscodes h
		JOIN countries c ON h.country_id = c.id
		WHERE c.iso_code = ?
		ORDER BY h.id
	`, strings.ToUpper(isoCode))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanHSCodes(rows)
}

// ListDescribed returns (iso, code, description) for described rows, ordered by id.
// Rows whose country has no ISO code are skipped.
func (r *SQLiteHSCodeRepository) ListDescribed(ctx context.Context) ([]models.DescribedCode, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.iso_code, h.code, h.description
		FROM hscodes h
		JOIN countries c ON h.country_id = c.id
		WHERE h.description IS NOT NULL AND h.description != ''
			AND c.iso_code IS NOT NULL AND c.iso_code != ''
		ORDER BY h.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DescribedCode
	for rows.Next() {
		var d models.DescribedCode
		if err := rows.Scan(&d.ISOCode, &d.Code, &d.Description); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// UpdateExtraInfo overwrites extra_info for a code in one country.
func (r *SQLiteHSCodeRepository) UpdateExtraInfo(ctx context.Context, code, isoCode string, extra models.ExtraInfo) (int64, error) {
	value, err := models.EncodeExtraInfo(extra)
	if err != nil {
		return 0, err
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE hscodes SET extra_info = ?
		WHERE code = ? AND country_id IN (SELECT id FROM countries WHERE iso_code = ?)
	`, value, code, strings.ToUpper(isoCode))
	if err != nil {
		return 0, fmt.Errorf("failed to update extra_info for %s/%s: %w", code, isoCode, err)
	}
	return result.RowsAffected()
}

// CountByCountry returns the number of rows in one country's schedule.
func (r *SQLiteHSCodeRepository) CountByCountry(ctx context.Context, countryID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM hscodes WHERE country_id = ?`, countryID).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHSCodeFrom(s rowScanner) (*models.HSCode, error) {
	var h models.HSCode
	var description, duty, extra sql.NullString

	if err := s.Scan(&h.ID, &h.Code, &description, &h.CountryID, &duty, &extra); err != nil {
		return nil, err
	}

	h.Description = description.String
	h.Duty = stringPtr(duty)

	info, err := models.DecodeExtraInfo(extra)
	if err != nil {
		return nil, fmt.Errorf("hscode %d: %w", h.ID, err)
	}
	h.ExtraInfo = info

	return &h, nil
}

func scanHSCode(row *sql.Row) (*models.HSCode, error) {
	h, err := scanHSCodeFrom(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return h, err
}

func scanHSCodes(rows *sql.Rows) ([]*models.HSCode, error) {
	var out []*models.HSCode
	for rows.Next() {
		h, err := scanHSCodeFrom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
