package importer

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mmourani/hscode-scraper/internal/models"
)

var china = Country{Name: "China", ISOCode: "CN"}

// ========================================
// Rich Record Tests
// ========================================

func TestImportSchedule_RichRecordWithoutExtras(t *testing.T) {
	im, repos, db := setupImporter(t)
	ctx := context.Background()

	data := `[{"HTS Code": "03027100", "Article Description": "Tilapias (Oreochromis spp.), fresh or chilled", "MFN": "0%"}]`

	res, err := im.ImportSchedule(ctx, china, []byte(data), "hs_codes_cn.json", DefaultScheduleFormat())
	if err != nil {
		t.Fatalf("ImportSchedule() error = %v", err)
	}
	if res.Imported != 1 {
		t.Errorf("Imported = %d, want 1", res.Imported)
	}

	if n := countRows(t, db, "SELECT COUNT(*) FROM hscodes"); n != 1 {
		t.Fatalf("hscodes rows = %d, want 1", n)
	}

	got, err := repos.HSCode.GetByCodeAndISO(ctx, "03027100", "CN")
	if err != nil || got == nil {
		t.Fatalf("GetByCodeAndISO() = %v, %v", got, err)
	}
	if got.Description != "Tilapias (Oreochromis spp.), fresh or chilled" {
		t.Errorf("Description = %q", got.Description)
	}
	if got.Duty == nil || *got.Duty != "0%" {
		t.Errorf("Duty = %v, want 0%%", got.Duty)
	}
	if got.ExtraInfo != nil {
		t.Errorf("ExtraInfo = %v, want NULL", got.ExtraInfo)
	}

	var raw *string
	if err := db.QueryRow("SELECT extra_info FROM hscodes WHERE code = '03027100'").Scan(&raw); err != nil {
		t.Fatal(err)
	}
	if raw != nil {
		t.Errorf("stored extra_info = %q, want NULL", *raw)
	}

	if n := countRows(t, db, "SELECT COUNT(*) FROM customs_clearance_requirements"); n != 0 {
		t.Errorf("customs rows = %d, want 0", n)
	}
	if n := countRows(t, db, "SELECT COUNT(*) FROM ciq_inspection_requirements"); n != 0 {
		t.Errorf("ciq rows = %d, want 0", n)
	}
}

func TestImportSchedule_RichRecordRoutesRequirements(t *testing.T) {
	im, repos, db := setupImporter(t)
	ctx := context.Background()

	data := `[{
		"HTS Code": "0101210010",
		"Article Description": "Pure-bred breeding horses",
		"MFN": "0%",
		"Gen": "30%",
		"TaxVAT": "9%",
		"Legal Unit": "head",
		"Declaration Elements": ["brand", "model"],
		"Customs Clearance Requirements": [
			{"Customs Code": "A", "Supervision Documents Name": "Inbound goods clearance form", "Issuing Authority": "Customs"},
			{"Customs Code": "P"}
		],
		"CIQ Inspection and Quarantine Requirements": [
			{"CIQ Inspection Code": "P", "CIQ Supervision Mode": "Import animal and plant quarantine"}
		]
	}]`

	res, err := im.ImportSchedule(ctx, china, []byte(data), "hs_codes_cn.json", DefaultScheduleFormat())
	if err != nil {
		t.Fatal(err)
	}
	if res.Customs != 2 || res.CIQ != 1 {
		t.Errorf("Customs, CIQ = %d, %d; want 2, 1", res.Customs, res.CIQ)
	}

	got, _ := repos.HSCode.GetByCodeAndISO(ctx, "0101210010", "CN")
	extras, ok := got.ExtraInfo.(models.ScheduleExtras)
	if !ok {
		t.Fatalf("ExtraInfo = %T, want ScheduleExtras", got.ExtraInfo)
	}
	keys := extras.Keys()
	if strings.Join(keys, ",") != "Declaration Elements,Legal Unit" {
		t.Errorf("extra_info keys = %v, want only non-standard fields", keys)
	}
	if string(extras["Declaration Elements"]) != `["brand","model"]` {
		t.Errorf("Declaration Elements = %s, want original array", extras["Declaration Elements"])
	}

	customs, err := repos.Requirement.ListCustoms(ctx, got.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(customs) != 2 {
		t.Fatalf("customs rows = %d, want 2", len(customs))
	}
	if *customs[0].SupervisionDocumentsName != "Inbound goods clearance form" {
		t.Errorf("SupervisionDocumentsName = %q", *customs[0].SupervisionDocumentsName)
	}
	if customs[1].IssuingAuthority != nil {
		t.Error("missing child field should be NULL")
	}

	if n := countRows(t, db, "SELECT COUNT(*) FROM ciq_inspection_requirements WHERE hscode_id = ?", got.ID); n != 1 {
		t.Errorf("ciq rows = %d, want 1", n)
	}
}

func TestImportSchedule_ReimportReplacesRequirements(t *testing.T) {
	im, _, db := setupImporter(t)
	ctx := context.Background()

	first := `[{"HTS Code": "0101", "Article Description": "Horses", "Customs Clearance Requirements": [{"Customs Code": "A"}, {"Customs Code": "B"}]}]`
	second := `[{"HTS Code": "0101", "Article Description": "Horses", "Customs Clearance Requirements": [{"Customs Code": "A"}]}]`

	for _, data := range []string{first, second} {
		if _, err := im.ImportSchedule(ctx, china, []byte(data), "cn.json", DefaultScheduleFormat()); err != nil {
			t.Fatal(err)
		}
	}

	if n := countRows(t, db, "SELECT COUNT(*) FROM hscodes"); n != 1 {
		t.Errorf("hscodes rows = %d, want 1", n)
	}
	if n := countRows(t, db, "SELECT COUNT(*) FROM customs_clearance_requirements"); n != 1 {
		t.Errorf("customs rows = %d, want 1 after re-import", n)
	}
}

func TestImportSchedule_MissingMFNIsNull(t *testing.T) {
	im, repos, _ := setupImporter(t)
	ctx := context.Background()

	data := `[{"HTS Code": 3027100, "Article Description": "Tilapias"}]`
	if _, err := im.ImportSchedule(ctx, china, []byte(data), "cn.json", DefaultScheduleFormat()); err != nil {
		t.Fatal(err)
	}

	got, _ := repos.HSCode.GetByCodeAndISO(ctx, "3027100", "CN")
	if got == nil {
		t.Fatal("numeric code should be stored as its literal text")
	}
	if got.Duty != nil {
		t.Errorf("Duty = %q, want NULL", *got.Duty)
	}
}

// ========================================
// Simple Record Tests
// ========================================

func TestImportSchedule_SimpleRecords(t *testing.T) {
	im, repos, _ := setupImporter(t)
	ctx := context.Background()
	uae := Country{Name: "United Arab Emirates", ISOCode: "AE"}

	data := `[
		{"hs_code": "85269200", "description": "Radio remote control apparatus", "duty": "5%"},
		{"hs_code": "88021100", "description": "Helicopters"},
		{"hs_code": "", "description": "no code"},
		"not an object"
	]`

	res, err := im.ImportSchedule(ctx, uae, []byte(data), "hs_codes_uae.json", DefaultScheduleFormat())
	if err != nil {
		t.Fatal(err)
	}
	if res.Imported != 2 || res.Skipped != 2 {
		t.Errorf("Imported, Skipped = %d, %d; want 2, 2", res.Imported, res.Skipped)
	}
	if res.Country == nil || res.Country.ISOCode != "AE" {
		t.Errorf("Country = %+v", res.Country)
	}

	radio, _ := repos.HSCode.GetByCodeAndISO(ctx, "85269200", "AE")
	if radio.Duty == nil || *radio.Duty != "5%" || radio.ExtraInfo != nil {
		t.Errorf("radio row = %+v", radio)
	}

	heli, _ := repos.HSCode.GetByCodeAndISO(ctx, "88021100", "AE")
	if heli.Duty != nil {
		t.Errorf("Duty = %q, want NULL", *heli.Duty)
	}
}

func TestImportSchedule_NotAnArray(t *testing.T) {
	im, _, _ := setupImporter(t)

	_, err := im.ImportSchedule(context.Background(), china, []byte(`{"hs_code": "1"}`), "bad.json", DefaultScheduleFormat())
	if err == nil {
		t.Error("ImportSchedule() should reject a non-array document")
	}
}

// ========================================
// Multi-file Entry Point Tests
// ========================================

func TestImportScheduleFiles_SkipsMissing(t *testing.T) {
	im, _, _ := setupImporter(t)
	dir := t.TempDir()

	usPath := writeFile(t, dir, "hs_codes_us.json", `[{"hs_code": "0101", "description": "Horses", "duty": "Free"}]`)
	missing := filepath.Join(dir, "hs_codes_uae.json")

	var out bytes.Buffer
	results, err := im.ImportScheduleFiles(context.Background(), []ScheduleSource{
		{Path: missing, Country: Country{Name: "United Arab Emirates", ISOCode: "AE"}},
		{Path: usPath, Country: Country{Name: "United States", ISOCode: "US"}},
	}, DefaultScheduleFormat(), &out)
	if err != nil {
		t.Fatalf("ImportScheduleFiles() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}

	report := out.String()
	if !strings.Contains(report, missing+" not found.") {
		t.Errorf("report missing not-found line: %q", report)
	}
	if !strings.Contains(report, "Imported 1 HS codes for United States") {
		t.Errorf("report missing summary line: %q", report)
	}
}

func TestImportScheduleFile_Missing(t *testing.T) {
	im, _, _ := setupImporter(t)

	_, err := im.ImportScheduleFile(context.Background(), ScheduleSource{
		Path:    filepath.Join(t.TempDir(), "nope.json"),
		Country: china,
	}, DefaultScheduleFormat())
	if !errors.Is(err, ErrSourceMissing) {
		t.Errorf("error = %v, want ErrSourceMissing", err)
	}
}
