// Package main inserts the brand catalog's HS codes into the store. Codes that
// already exist for a country are left untouched.
package main

import (
	"flag"
	"fmt"

	"github.com/mmourani/hscode-scraper/internal/cli"
	"github.com/mmourani/hscode-scraper/internal/importer"
	"github.com/mmourani/hscode-scraper/internal/productmap"
)

func main() {
	app := cli.Start("sync-product-map")
	defer app.Close()
	cfg := app.Config

	path := flag.String("catalog", cfg.BrandProductsPath, "brand catalog JSON")
	flag.Parse()

	catalog, data, err := productmap.LoadCatalog(*path)
	if err != nil {
		app.Fatal("failed to load brand catalog", err)
	}

	repos, _ := app.Store()
	res, err := productmap.NewSyncer(repos, cfg.CountryLabels, app.Logger).Sync(app.Ctx, catalog, *path, importer.HashBytes(data))
	if err != nil {
		app.Fatal("product map sync failed", err)
	}

	app.Logger.Info("sync summary",
		"inserted", res.Inserted,
		"existing", res.Existing,
		"unknown_label", res.UnknownLabel,
		"no_country", res.NoCountry,
	)
	fmt.Println("Product map sync to database complete.")
}
