// Package main prints one brand's catalog products with the import
// information the store holds for them in one country.
package main

import (
	"flag"
	"os"

	"github.com/mmourani/hscode-scraper/internal/cli"
	"github.com/mmourani/hscode-scraper/internal/productmap"
)

func main() {
	app := cli.Start("brand-report")
	defer app.Close()
	cfg := app.Config

	path := flag.String("catalog", cfg.BrandProductsPath, "brand catalog JSON")
	brand := flag.String("brand", "quantum systems", "brand key in the catalog")
	label := flag.String("country", "uae", "country label used in the catalog")
	flag.Parse()

	catalog, _, err := productmap.LoadCatalog(*path)
	if err != nil {
		app.Fatal("failed to load brand catalog", err)
	}

	repos, _ := app.Store()
	report, err := productmap.BuildBrandReport(app.Ctx, repos, cfg.CountryLabels, catalog, *brand, *label)
	if err != nil {
		app.Fatal("failed to build brand report", err)
	}
	report.Write(os.Stdout)
}
