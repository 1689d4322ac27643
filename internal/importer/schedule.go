package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mmourani/hscode-scraper/internal/models"
	"github.com/mmourani/hscode-scraper/internal/repository"
)

// ScheduleFormat names the fields of a JSON schedule export. A record carrying
// RichMarker is a rich record; any other record is simple.
type ScheduleFormat struct {
	RichMarker       string
	CodeField        string
	DescriptionField string
	DutyField        string
	CustomsField     string
	CIQField         string

	// StandardFields are known rich fields that are neither stored in a
	// column nor copied into extra_info.
	StandardFields []string

	CustomsCodeField      string
	CustomsDocumentsField string
	CustomsAuthorityField string
	CIQCodeField          string
	CIQModeField          string

	SimpleCodeField        string
	SimpleDescriptionField string
	SimpleDutyField        string
}

// DefaultScheduleFormat returns the field names of the scraped China schedule
// (rich records) and of the simple exports.
func DefaultScheduleFormat() ScheduleFormat {
	return ScheduleFormat{
		RichMarker:       "HTS Code",
		CodeField:        "HTS Code",
		DescriptionField: "Article Description",
		DutyField:        "MFN",
		CustomsField:     "Customs Clearance Requirements",
		CIQField:         "CIQ Inspection and Quarantine Requirements",
		StandardFields: []string{
			"HTS Code", "Article Description", "MFN", "Gen",
			"Provisional Import tariff", "Export tariff", "Export Tax Rebate",
			"TaxVAT", "Consumption Tax", "Regulations & Restrictions",
			"Inspection & Quarantine", "Unit of Quantity",
		},
		CustomsCodeField:      "Customs Code",
		CustomsDocumentsField: "Supervision Documents Name",
		CustomsAuthorityField: "Issuing Authority",
		CIQCodeField:          "CIQ Inspection Code",
		CIQModeField:          "CIQ Supervision Mode",

		SimpleCodeField:        "hs_code",
		SimpleDescriptionField: "description",
		SimpleDutyField:        "duty",
	}
}

// ScheduleSource is one JSON schedule file and the country it belongs to.
type ScheduleSource struct {
	Path    string
	Country Country
}

// scheduleRecord is a parsed record ready to be written.
type scheduleRecord struct {
	code    models.HSCode
	rich    bool
	customs []models.CustomsClearanceRequirement
	ciq     []models.CIQInspectionRequirement
}

// ImportScheduleFiles imports each source in order. Missing files are reported
// on out and skipped; any other failure stops the run.
func (im *Importer) ImportScheduleFiles(ctx context.Context, sources []ScheduleSource, format ScheduleFormat, out io.Writer) ([]*Result, error) {
	var results []*Result
	for _, src := range sources {
		res, err := im.ImportScheduleFile(ctx, src, format)
		if errors.Is(err, ErrSourceMissing) {
			im.logger.Warn("schedule file not found", "path", src.Path, "country", src.Country.Name)
			fmt.Fprintf(out, "%s not found.\n", src.Path)
			continue
		}
		if err != nil {
			return results, err
		}
		fmt.Fprintf(out, "Imported %d HS codes for %s\n", res.Imported, src.Country.Name)
		results = append(results, res)
	}
	return results, nil
}

// ImportScheduleFile imports one JSON schedule file.
func (im *Importer) ImportScheduleFile(ctx context.Context, src ScheduleSource, format ScheduleFormat) (*Result, error) {
	if err := checkSource(src.Path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(src.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", src.Path, err)
	}
	return im.ImportSchedule(ctx, src.Country, data, src.Path, format)
}

// ImportSchedule imports a JSON array of schedule records for one country.
// Every record is upserted on (code, country). Rich records also replace the
// code's customs and CIQ requirement rows.
func (im *Importer) ImportSchedule(ctx context.Context, country Country, data []byte, inputPath string, format ScheduleFormat) (*Result, error) {
	started := time.Now()

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s: expected a JSON array of records: %w", inputPath, err)
	}

	res := &Result{
		Source:    models.ImportSourceScheduleJSON,
		InputPath: inputPath,
		InputHash: HashBytes(data),
	}

	records := make([]scheduleRecord, 0, len(raw))
	for i, item := range raw {
		rec, ok := parseScheduleRecord(item, format)
		if !ok {
			im.logger.Warn("skipping schedule record", "path", inputPath, "index", i)
			res.Skipped++
			continue
		}
		records = append(records, rec)
	}

	err := im.repos.WithTx(ctx, func(tx *repository.Repositories) error {
		c, err := tx.Country.GetOrCreate(ctx, country.Name, country.ISOCode)
		if err != nil {
			return err
		}
		res.Country = c

		for i := range records {
			rec := &records[i]
			rec.code.CountryID = c.ID
			if err := tx.HSCode.Upsert(ctx, &rec.code); err != nil {
				return err
			}
			if rec.rich {
				if err := tx.Requirement.ReplaceCustoms(ctx, rec.code.ID, rec.customs); err != nil {
					return err
				}
				if err := tx.Requirement.ReplaceCIQ(ctx, rec.code.ID, rec.ciq); err != nil {
					return err
				}
				res.Customs += len(rec.customs)
				res.CIQ += len(rec.ciq)
			}
			res.Imported++
		}

		return recordRun(ctx, tx, res, started)
	})
	if err != nil {
		return nil, fmt.Errorf("import %s for %s: %w", inputPath, country.Name, err)
	}

	im.logger.Info("schedule imported",
		"country", country.Name,
		"path", inputPath,
		"imported", res.Imported,
		"skipped", res.Skipped,
		"customs", res.Customs,
		"ciq", res.CIQ,
	)
	return res, nil
}

// parseScheduleRecord converts one JSON record. Records that are not objects
// or carry no code are rejected.
func parseScheduleRecord(item json.RawMessage, format ScheduleFormat) (scheduleRecord, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
		return scheduleRecord{}, false
	}

	var rec scheduleRecord
	if _, rich := fields[format.RichMarker]; rich {
		rec = parseRichRecord(fields, format)
	} else {
		rec = scheduleRecord{code: models.HSCode{
			Code:        strings.TrimSpace(textField(fields, format.SimpleCodeField).String),
			Description: strings.TrimSpace(textField(fields, format.SimpleDescriptionField).String),
			Duty:        trimmedPtr(textField(fields, format.SimpleDutyField)),
		}}
	}

	// Blank codes would all upsert onto one row per country.
	if rec.code.Code == "" {
		return scheduleRecord{}, false
	}
	return rec, true
}

func parseRichRecord(fields map[string]json.RawMessage, format ScheduleFormat) scheduleRecord {
	rec := scheduleRecord{
		rich: true,
		code: models.HSCode{
			Code:        strings.TrimSpace(textField(fields, format.CodeField).String),
			Description: strings.TrimSpace(textField(fields, format.DescriptionField).String),
		},
	}
	if _, ok := fields[format.DutyField]; ok {
		rec.code.Duty = trimmedPtr(textField(fields, format.DutyField))
	}

	for _, entry := range objectList(fields[format.CustomsField]) {
		rec.customs = append(rec.customs, models.CustomsClearanceRequirement{
			CustomsCode:              textField(entry, format.CustomsCodeField).Ptr(),
			SupervisionDocumentsName: textField(entry, format.CustomsDocumentsField).Ptr(),
			IssuingAuthority:         textField(entry, format.CustomsAuthorityField).Ptr(),
		})
	}
	for _, entry := range objectList(fields[format.CIQField]) {
		rec.ciq = append(rec.ciq, models.CIQInspectionRequirement{
			CIQInspectionCode:  textField(entry, format.CIQCodeField).Ptr(),
			CIQSupervisionMode: textField(entry, format.CIQModeField).Ptr(),
		})
	}

	skip := make(map[string]bool, len(format.StandardFields)+2)
	for _, k := range format.StandardFields {
		skip[k] = true
	}
	skip[format.CustomsField] = true
	skip[format.CIQField] = true

	extras := models.ScheduleExtras{}
	for k, v := range fields {
		if !skip[k] {
			extras[k] = v
		}
	}
	if len(extras) > 0 {
		rec.code.ExtraInfo = extras
	}

	return rec
}

// textField reads a scalar field as text. Missing, null and non-scalar values are null.
func textField(fields map[string]json.RawMessage, key string) models.FlexText {
	raw, ok := fields[key]
	if !ok {
		return models.FlexText{}
	}
	var f models.FlexText
	if err := json.Unmarshal(raw, &f); err != nil {
		return models.FlexText{}
	}
	return f
}

// objectList decodes a JSON array of objects, dropping elements that are not objects.
func objectList(raw json.RawMessage) []map[string]json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]map[string]json.RawMessage, 0, len(items))
	for _, item := range items {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(item, &obj); err == nil && obj != nil {
			out = append(out, obj)
		}
	}
	return out
}

func trimmedPtr(f models.FlexText) *string {
	if !f.Valid {
		return nil
	}
	s := strings.TrimSpace(f.String)
	return &s
}
