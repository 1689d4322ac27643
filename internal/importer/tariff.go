package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/xuri/excelize/v2"

	"github.com/mmourani/hscode-scraper/internal/models"
	"github.com/mmourani/hscode-scraper/internal/repository"
)

// TariffRow is one row of a tabular tariff schedule (US HTS basic edition columns).
type TariffRow struct {
	HTSNumber         string `csv:"HTS Number"`
	Indent            string `csv:"Indent"`
	Description       string `csv:"Description"`
	UnitOfQuantity    string `csv:"Unit of Quantity"`
	GeneralRateOfDuty string `csv:"General Rate of Duty"`
	SpecialRateOfDuty string `csv:"Special Rate of Duty"`
	Column2RateOfDuty string `csv:"Column 2 Rate of Duty"`
	QuotaQuantity     string `csv:"Quota Quantity"`
	AdditionalDuties  string `csv:"Additional Duties"`
}

// ReadTariffFile reads the rows of an .xlsx workbook (first sheet) or a .csv export.
func ReadTariffFile(path string) ([]TariffRow, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
		}
		defer f.Close()
		return readWorkbook(f)

	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ReadTariffCSV(f)

	default:
		return nil, fmt.Errorf("unsupported tariff file type %q", filepath.Ext(path))
	}
}

// ReadTariffCSV reads tariff rows from CSV with a header line.
func ReadTariffCSV(r io.Reader) ([]TariffRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return decodeTariffRows(&paddedReader{src: cr})
}

// ReadTariffWorkbook reads tariff rows from the first sheet of an xlsx workbook.
func ReadTariffWorkbook(r io.Reader) ([]TariffRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()
	return readWorkbook(f)
}

func readWorkbook(f *excelize.File) ([]TariffRow, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return decodeTariffRows(&paddedReader{src: &sliceReader{rows: rows}})
}

func decodeTariffRows(r csvutil.Reader) ([]TariffRow, error) {
	dec, err := csvutil.NewDecoder(r)
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read tariff header: %w", err)
	}

	var rows []TariffRow
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("failed to decode tariff rows: %w", err)
	}
	return rows, nil
}

// sliceReader serves pre-read rows as a csvutil.Reader.
type sliceReader struct {
	rows [][]string
	next int
}

func (s *sliceReader) Read() ([]string, error) {
	if s.next >= len(s.rows) {
		return nil, io.EOF
	}
	row := s.rows[s.next]
	s.next++
	return row, nil
}

// paddedReader normalises every record to the header's width. Spreadsheet rows
// drop trailing empty cells and csvutil rejects records of the wrong length.
type paddedReader struct {
	src   csvutil.Reader
	width int
}

func (p *paddedReader) Read() ([]string, error) {
	rec, err := p.src.Read()
	if err != nil {
		return nil, err
	}

	if p.width == 0 {
		header := make([]string, len(rec))
		for i, h := range rec {
			header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		}
		p.width = len(header)
		return header, nil
	}

	switch {
	case len(rec) < p.width:
		padded := make([]string, p.width)
		copy(padded, rec)
		return padded, nil
	case len(rec) > p.width:
		return rec[:p.width], nil
	}
	return rec, nil
}

// CleanTariffCode trims a raw code cell and strips a trailing ".0" left by
// float conversion. Blank and not-a-number cells are rejected.
func CleanTariffCode(raw string) (string, bool) {
	code := strings.TrimSpace(raw)
	code = strings.TrimSuffix(code, ".0")
	if code == "" || strings.EqualFold(code, "nan") {
		return "", false
	}
	return code, true
}

// ImportTariffRows upserts tariff rows into the country's schedule.
func (im *Importer) ImportTariffRows(ctx context.Context, country Country, rows []TariffRow, inputPath, inputHash string) (*Result, error) {
	started := time.Now()

	res := &Result{
		Source:    models.ImportSourceTariffSheet,
		InputPath: inputPath,
		InputHash: inputHash,
	}

	err := im.repos.WithTx(ctx, func(tx *repository.Repositories) error {
		c, err := tx.Country.GetOrCreateByISO(ctx, country.ISOCode, im.countryName(country))
		if err != nil {
			return err
		}
		res.Country = c

		for _, row := range rows {
			code, ok := CleanTariffCode(row.HTSNumber)
			if !ok {
				res.Skipped++
				continue
			}

			h := &models.HSCode{
				Code:        code,
				Description: strings.TrimSpace(row.Description),
				CountryID:   c.ID,
				Duty:        models.TextOrNull(strings.TrimSpace(row.GeneralRateOfDuty)).Ptr(),
				ExtraInfo: models.TariffLineExtras{
					Indent:            models.TextOrNull(row.Indent),
					UnitOfQuantity:    models.TextOrNull(row.UnitOfQuantity),
					SpecialRateOfDuty: models.TextOrNull(row.SpecialRateOfDuty),
					Column2RateOfDuty: models.TextOrNull(row.Column2RateOfDuty),
					QuotaQuantity:     models.TextOrNull(row.QuotaQuantity),
					AdditionalDuties:  models.TextOrNull(row.AdditionalDuties),
				},
			}
			if err := tx.HSCode.Upsert(ctx, h); err != nil {
				return err
			}
			res.Imported++
		}

		return recordRun(ctx, tx, res, started)
	})
	if err != nil {
		return nil, fmt.Errorf("import tariff %s for %s: %w", inputPath, country.ISOCode, err)
	}

	im.logger.Info("tariff schedule imported",
		"country", country.ISOCode,
		"path", inputPath,
		"imported", res.Imported,
		"skipped", res.Skipped,
	)
	return res, nil
}

// ImportTariffFile reads and imports a tariff workbook or CSV export.
func (im *Importer) ImportTariffFile(ctx context.Context, country Country, path string) (*Result, error) {
	if err := checkSource(path); err != nil {
		return nil, err
	}

	hash, err := HashFile(path)
	if err != nil {
		return nil, err
	}

	rows, err := ReadTariffFile(path)
	if err != nil {
		return nil, err
	}

	return im.ImportTariffRows(ctx, country, rows, path, hash)
}
