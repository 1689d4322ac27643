package importer

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/mmourani/hscode-scraper/internal/models"
	"github.com/mmourani/hscode-scraper/internal/repository"
)

// pdfLinePattern matches "CCCC CC CC  [-] description  N%" where the eight
// code digits may be split into pairs by single spaces. Non-matching text is ignored.
var pdfLinePattern = regexp.MustCompile(`(?P<code>\d{2}\s?\d{2}\s?\d{2}\s?\d{2})\s+[-–—]?\s*(?P<desc>.+?)\s+(?P<duty>\d+%)`)

// PDFLine is one tariff line recovered from PDF text.
type PDFLine struct {
	Code        string
	Description string
	Duty        string
}

// ParsePDFText extracts every tariff line from text, in order of appearance.
func ParsePDFText(text string) []PDFLine {
	codeIdx := pdfLinePattern.SubexpIndex("code")
	descIdx := pdfLinePattern.SubexpIndex("desc")
	dutyIdx := pdfLinePattern.SubexpIndex("duty")

	matches := pdfLinePattern.FindAllStringSubmatch(text, -1)
	lines := make([]PDFLine, 0, len(matches))
	for _, m := range matches {
		lines = append(lines, PDFLine{
			Code:        strings.Join(strings.Fields(m[codeIdx]), ""),
			Description: strings.TrimSpace(m[descIdx]),
			Duty:        strings.TrimSpace(m[dutyIdx]),
		})
	}
	return lines
}

// ImportPDFText upserts every tariff line found in text into the country's
// schedule with an empty extra_info object.
func (im *Importer) ImportPDFText(ctx context.Context, country Country, text, inputPath, inputHash string) (*Result, error) {
	started := time.Now()
	lines := ParsePDFText(text)

	res := &Result{
		Source:    models.ImportSourcePDFText,
		InputPath: inputPath,
		InputHash: inputHash,
	}

	err := im.repos.WithTx(ctx, func(tx *repository.Repositories) error {
		c, err := tx.Country.GetOrCreateByISO(ctx, country.ISOCode, im.countryName(country))
		if err != nil {
			return err
		}
		res.Country = c

		for _, line := range lines {
			h := &models.HSCode{
				Code:        line.Code,
				Description: line.Description,
				CountryID:   c.ID,
				Duty:        models.StringPtr(line.Duty),
				ExtraInfo:   models.EmptyExtras{},
			}
			if err := tx.HSCode.Upsert(ctx, h); err != nil {
				return err
			}
			res.Imported++
		}

		return recordRun(ctx, tx, res, started)
	})
	if err != nil {
		return nil, fmt.Errorf("import PDF text %s for %s: %w", inputPath, country.ISOCode, err)
	}

	im.logger.Info("PDF schedule imported", "country", country.ISOCode, "path", inputPath, "imported", res.Imported)
	return res, nil
}

// ImportPDF extracts the text of a PDF schedule with pdftotext and imports it.
func (im *Importer) ImportPDF(ctx context.Context, country Country, pdfPath, toolPath string) (*Result, error) {
	if err := checkSource(pdfPath); err != nil {
		return nil, err
	}

	hash, err := HashFile(pdfPath)
	if err != nil {
		return nil, err
	}

	text, err := ExtractPDFText(ctx, toolPath, pdfPath)
	if err != nil {
		return nil, err
	}

	return im.ImportPDFText(ctx, country, text, pdfPath, hash)
}

func (im *Importer) countryName(country Country) string {
	if country.Name != "" {
		return country.Name
	}
	return im.names.Name(country.ISOCode)
}
