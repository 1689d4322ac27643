package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mmourani/hscode-scraper/internal/models"
)

// SQLiteRequirementRepository implements RequirementRepository for SQLite/libsql.
type SQLiteRequirementRepository struct {
	db DBTX
}

// NewSQLiteRequirementRepository creates a new SQLite requirement repository.
func NewSQLiteRequirementRepository(db DBTX) *SQLiteRequirementRepository {
	return &SQLiteRequirementRepository{db: db}
}

// ReplaceCustoms replaces the customs clearance rows of an HS code.
func (r *SQLiteRequirementRepository) ReplaceCustoms(ctx context.Context, hscodeID int64, reqs []models.CustomsClearanceRequirement) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM customs_clearance_requirements WHERE hscode_id = ?`, hscodeID,
	); err != nil {
		return fmt.Errorf("failed to clear customs requirements for hscode %d: %w", hscodeID, err)
	}

	for i := range reqs {
		req := &reqs[i]
		result, err := r.db.ExecContext(ctx, `
			INSERT INTO customs_clearance_requirements (
				hscode_id, customs_code, supervision_documents_name, issuing_authority
			) VALUES (?, ?, ?, ?)
		`,
			hscodeID,
			nullStringPtr(req.CustomsCode),
			nullStringPtr(req.SupervisionDocumentsName),
			nullStringPtr(req.IssuingAuthority),
		)
		if err != nil {
			return fmt.Errorf("failed to insert customs requirement for hscode %d: %w", hscodeID, err)
		}
		req.HSCodeID = hscodeID
		if id, err := result.LastInsertId(); err == nil {
			req.ID = id
		}
	}
	return nil
}

// ReplaceCIQ replaces the CIQ inspection rows of an HS code.
func (r *SQLiteRequirementRepository) ReplaceCIQ(ctx context.Context, hscodeID int64, reqs []models.CIQInspectionRequirement) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM ciq_inspection_requirements WHERE hscode_id = ?`, hscodeID,
	); err != nil {
		return fmt.Errorf("failed to clear CIQ requirements for hscode %d: %w", hscodeID, err)
	}

	for i := range reqs {
		req := &reqs[i]
		result, err := r.db.ExecContext(ctx, `
			INSERT INTO ciq_inspection_requirements (
				hscode_id, ciq_inspection_code, ciq_supervision_mode
			) VALUES (?, ?, ?)
		`,
			hscodeID,
			nullStringPtr(req.CIQInspectionCode),
			nullStringPtr(req.CIQSupervisionMode),
		)
		if err != nil {
			return fmt.Errorf("failed to insert CIQ requirement for hscode %d: %w", hscodeID, err)
		}
		req.HSCodeID = hscodeID
		if id, err := result.LastInsertId(); err == nil {
			req.ID = id
		}
	}
	return nil
}

// ListCustoms returns the customs clearance rows of an HS code in insertion order.
func (r *SQLiteRequirementRepository) ListCustoms(ctx context.Context, hscodeID int64) ([]models.CustomsClearanceRequirement, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, hscode_id, customs_code, supervision_documents_name, issuing_authority
		FROM customs_clearance_requirements
		WHERE hscode_id = ?
		ORDER BY id
	`, hscodeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.CustomsClearanceRequirement{}
	for rows.Next() {
		var req models.CustomsClearanceRequirement
		var code, docs, authority sql.NullString
		if err := rows.Scan(&req.ID, &req.HSCodeID, &code, &docs, &authority); err != nil {
			return nil, err
		}
		req.CustomsCode = stringPtr(code)
		req.SupervisionDocumentsName = stringPtr(docs)
		req.IssuingAuthority = stringPtr(authority)
		out = append(out, req)
	}
	return out, rows.Err()
}

// ListCIQ returns the CIQ inspection rows of an HS code in insertion order.
func (r *SQLiteRequirementRepository) ListCIQ(ctx context.Context, hscodeID int64) ([]models.CIQInspectionRequirement, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, hscode_id, ciq_inspection_code, ciq_supervision_mode
		FROM ciq_inspection_requirements
		WHERE hscode_id = ?
		ORDER BY id
	`, hscodeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.CIQInspectionRequirement{}
	for rows.Next() {
		var req models.CIQInspectionRequirement
		var code, mode sql.NullString
		if err := rows.Scan(&req.ID, &req.HSCodeID, &code, &mode); err != nil {
			return nil, err
		}
		req.CIQInspectionCode = stringPtr(code)
		req.CIQSupervisionMode = stringPtr(mode)
		out = append(out, req)
	}
	return out, rows.Err()
}
