package productmap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mmourani/hscode-scraper/internal/config"
	"github.com/mmourani/hscode-scraper/internal/models"
	"github.com/mmourani/hscode-scraper/internal/repository"
)

// ErrUnknownBrand is returned when a brand is not in the catalog.
var ErrUnknownBrand = errors.New("brand not in catalog")

// BrandReportLine is one catalog product with its store row for the report country.
type BrandReportLine struct {
	Product models.BrandProduct
	Code    string
	Row     *models.HSCode
}

// BrandReport is the import information of one brand's products in one country.
type BrandReport struct {
	Brand   string
	Label   string
	ISOCode string
	Lines   []BrandReportLine
}

// BuildBrandReport looks up every product of brand under the country label.
// Products without a code for the label are listed with no row.
func BuildBrandReport(ctx context.Context, repos *repository.Repositories, labels config.CountryLabels, catalog models.BrandCatalog, brand, label string) (*BrandReport, error) {
	b, ok := catalog[strings.ToLower(brand)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBrand, brand)
	}
	iso, ok := labels.Resolve(label)
	if !ok {
		return nil, fmt.Errorf("unknown country label %q", label)
	}

	report := &BrandReport{Brand: strings.ToLower(brand), Label: label, ISOCode: iso}
	for _, p := range b.Products {
		line := BrandReportLine{Product: p, Code: strings.TrimSpace(productCode(p, label).String)}
		if line.Code != "" {
			row, err := repos.HSCode.GetByCodeAndISO(ctx, line.Code, iso)
			if err != nil {
				return nil, fmt.Errorf("failed to look up %s: %w", line.Code, err)
			}
			line.Row = row
		}
		report.Lines = append(report.Lines, line)
	}
	return report, nil
}

// productCode finds the product's code under label, ignoring case.
func productCode(p models.BrandProduct, label string) models.FlexText {
	if code, ok := p.HSCodes[label]; ok {
		return code
	}
	for k, code := range p.HSCodes {
		if strings.EqualFold(k, label) {
			return code
		}
	}
	return models.FlexText{}
}

// Write prints the report in console form.
func (r *BrandReport) Write(w io.Writer) {
	country := strings.ToUpper(r.Label)
	fmt.Fprintf(w, "%s Products (with %s Import Info):\n\n", Title(r.Brand), country)
	for _, line := range r.Lines {
		code := line.Code
		if code == "" {
			code = "none"
		}
		fmt.Fprintf(w, "Product: %s\n  Type: %s\n  HS Code (%s): %s\n", line.Product.Name, line.Product.Type, country, code)
		if line.Row != nil {
			fmt.Fprintf(w, "  %s Description: %s\n", country, line.Row.Description)
			fmt.Fprintf(w, "  %s Duty: %s\n", country, dutyString(line.Row.Duty))
			fmt.Fprintf(w, "  %s Extra Info: %s\n", country, models.ExtraInfoString(line.Row.ExtraInfo))
		} else {
			fmt.Fprintf(w, "  [No %s tariff data found for this code]\n", country)
		}
		fmt.Fprintln(w)
	}
}
