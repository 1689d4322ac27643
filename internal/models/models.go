// Package models defines the domain models for the HS code store.
package models

import (
	"time"
)

// Country is a tariff schedule owner. Countries are created lazily by the
// importers and never deleted.
type Country struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	ISOCode string `json:"iso_code,omitempty"` // empty when the row has no ISO code yet
}

// HSCode is one tariff line of one country's schedule.
// (Code, CountryID) is the natural key.
type HSCode struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	Description string    `json:"description"`
	CountryID   int64     `json:"country_id"`
	Duty        *string   `json:"duty"`
	ExtraInfo   ExtraInfo `json:"extra_info"`
}

// CustomsClearanceRequirement is a supervision document required to clear a code.
type CustomsClearanceRequirement struct {
	ID                       int64   `json:"id"`
	HSCodeID                 int64   `json:"hscode_id"`
	CustomsCode              *string `json:"customs_code"`
	SupervisionDocumentsName *string `json:"supervision_documents_name"`
	IssuingAuthority         *string `json:"issuing_authority"`
}

// CIQInspectionRequirement is an inspection and quarantine regime for a code.
type CIQInspectionRequirement struct {
	ID                 int64   `json:"id"`
	HSCodeID           int64   `json:"hscode_id"`
	CIQInspectionCode  *string `json:"ciq_inspection_code"`
	CIQSupervisionMode *string `json:"ciq_supervision_mode"`
}

// CodeDetail is an HS code row together with its country and child requirements.
type CodeDetail struct {
	HSCode
	Country Country                       `json:"country"`
	Customs []CustomsClearanceRequirement `json:"customs_clearance_requirements"`
	CIQ     []CIQInspectionRequirement    `json:"ciq_inspection_requirements"`
}

// DescribedCode is the projection read by the product-map generator.
type DescribedCode struct {
	ISOCode     string
	Code        string
	Description string
}

// ImportSource identifies which importer produced an import run.
type ImportSource string

const (
	ImportSourceScheduleJSON ImportSource = "schedule_json"
	ImportSourcePDFText      ImportSource = "pdf_text"
	ImportSourceTariffSheet  ImportSource = "tariff_sheet"
	ImportSourceProductSync  ImportSource = "product_map_sync"
)

// ImportRun records one execution of an importer.
type ImportRun struct {
	ID          string       `json:"id"` // ULID
	Source      ImportSource `json:"source"`
	CountryID   *int64       `json:"country_id,omitempty"`
	InputPath   string       `json:"input_path"`
	InputHash   string       `json:"input_hash,omitempty"` // hex BLAKE2b-256
	Records     int          `json:"records"`
	Skipped     int          `json:"skipped"`
	StartedAt   time.Time    `json:"started_at"`
	CompletedAt time.Time    `json:"completed_at"`
}

// StringPtr returns a pointer to s. Used for nullable text columns.
func StringPtr(s string) *string {
	return &s
}
