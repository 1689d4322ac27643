package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mmourani/hscode-scraper/internal/models"
)

// SQLiteCountryRepository implements CountryRepository for SQLite/libsql.
type SQLiteCountryRepository struct {
	db DBTX
}

// NewSQLiteCountryRepository creates a new SQLite country repository.
func NewSQLiteCountryRepository(db DBTX) *SQLiteCountryRepository {
	return &SQLiteCountryRepository{db: db}
}

// GetOrCreate looks a country up by name, creating it when absent.
func (r *SQLiteCountryRepository) GetOrCreate(ctx context.Context, name, isoCode string) (*models.Country, error) {
	name = strings.TrimSpace(name)
	isoCode = strings.ToUpper(strings.TrimSpace(isoCode))
	if name == "" {
		return nil, fmt.Errorf("country name is required")
	}

	country, err := r.getByName(ctx, name)
	if err != nil {
		return nil, err
	}

	if country != nil {
		if country.ISOCode == "" && isoCode != "" {
			if _, err := r.db.ExecContext(ctx,
				`UPDATE countries SET iso_code = ? WHERE id = ? AND iso_code IS NULL`,
				isoCode, country.ID,
			); err != nil {
				return nil, fmt.Errorf("failed to backfill iso code for %s: %w", name, err)
			}
			country.ISOCode = isoCode
		}
		return country, nil
	}

	return r.insert(ctx, name, isoCode)
}

// GetOrCreateByISO looks a country up by ISO code, creating it with name when absent.
func (r *SQLiteCountryRepository) GetOrCreateByISO(ctx context.Context, isoCode, name string) (*models.Country, error) {
	isoCode = strings.ToUpper(strings.TrimSpace(isoCode))
	if isoCode == "" {
		return nil, fmt.Errorf("iso code is required")
	}

	country, err := r.GetByISO(ctx, isoCode)
	if err != nil || country != nil {
		return country, err
	}

	// A row may exist under the same name without an ISO code.
	return r.GetOrCreate(ctx, name, isoCode)
}

// GetByISO returns the first country with the ISO code, or nil.
func (r *SQLiteCountryRepository) GetByISO(ctx context.Context, isoCode string) (*models.Country, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, iso_code FROM countries
		WHERE iso_code = ?
		ORDER BY id
		LIMIT 1
	`, strings.ToUpper(strings.TrimSpace(isoCode)))
	return scanCountry(row)
}

// GetByID returns a country by id, or nil.
func (r *SQLiteCountryRepository) GetByID(ctx context.Context, id int64) (*models.Country, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, iso_code FROM countries WHERE id = ?`, id)
	return scanCountry(row)
}

// List returns all countries ordered by name.
func (r *SQLiteCountryRepository) List(ctx context.Context) ([]*models.Country, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, iso_code FROM countries ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var countries []*models.Country
	for rows.Next() {
		var c models.Country
		var iso sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &iso); err != nil {
			return nil, err
		}
		c.ISOCode = iso.String
		countries = append(countries, &c)
	}
	return countries, rows.Err()
}

func (r *SQLiteCountryRepository) getByName(ctx context.Context, name string) (*models.Country, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, iso_code FROM countries WHERE name = ?`, name)
	return scanCountry(row)
}

func (r *SQLiteCountryRepository) insert(ctx context.Context, name, isoCode string) (*models.Country, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO countries (name, iso_code) VALUES (?, ?)`,
		name, nullString(isoCode),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create country %s: %w", name, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.Country{ID: id, Name: name, ISOCode: isoCode}, nil
}

func scanCountry(row *sql.Row) (*models.Country, error) {
	var c models.Country
	var iso sql.NullString
	err := row.Scan(&c.ID, &c.Name, &iso)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.ISOCode = iso.String
	return &c, nil
}

// nullString maps an empty string to NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// nullStringPtr maps a nil pointer to NULL.
func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// stringPtr maps NULL to a nil pointer.
func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
