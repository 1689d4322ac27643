// Package main imports the US HTS spreadsheet (.xlsx or .csv) into the store.
package main

import (
	"flag"
	"fmt"

	"github.com/mmourani/hscode-scraper/internal/cli"
	"github.com/mmourani/hscode-scraper/internal/importer"
)

func main() {
	app := cli.Start("import-tariff")
	defer app.Close()
	cfg := app.Config

	path := flag.String("file", cfg.USTariffPath, "HTS workbook or CSV export")
	iso := flag.String("country", "US", "ISO code of the schedule's country")
	flag.Parse()

	repos, _ := app.Store()
	im := importer.New(repos, cfg.CountryNames, app.Logger)

	res, err := im.ImportTariffFile(app.Ctx, importer.Country{ISOCode: *iso}, *path)
	if err != nil {
		app.Fatal("tariff import failed", err)
	}

	fmt.Printf("Imported %d HS codes for %s (%d rows skipped)\n", res.Imported, res.Country.Name, res.Skipped)
}
