// Package main imports the UAE, US and China JSON schedules into the store.
// Files that do not exist are reported and skipped.
//
// Usage:
//
//	import-schedules
//	import-schedules -uae hs_codes_uae.json -us hs_codes_us.json -cn hs_codes_cn.json
package main

import (
	"flag"
	"os"

	"github.com/mmourani/hscode-scraper/internal/cli"
	"github.com/mmourani/hscode-scraper/internal/importer"
)

func main() {
	app := cli.Start("import-schedules")
	defer app.Close()
	cfg := app.Config

	uaePath := flag.String("uae", cfg.UAEScheduleJSON, "UAE schedule JSON")
	usPath := flag.String("us", cfg.USScheduleJSON, "US schedule JSON")
	cnPath := flag.String("cn", cfg.CNScheduleJSON, "China schedule JSON")
	flag.Parse()

	repos, _ := app.Store()
	im := importer.New(repos, cfg.CountryNames, app.Logger)

	sources := []importer.ScheduleSource{
		{Path: *uaePath, Country: importer.Country{Name: "United Arab Emirates", ISOCode: "AE"}},
		{Path: *usPath, Country: importer.Country{Name: "United States", ISOCode: "US"}},
		{Path: *cnPath, Country: importer.Country{Name: "China", ISOCode: "CN"}},
	}
	if _, err := im.ImportScheduleFiles(app.Ctx, sources, importer.DefaultScheduleFormat(), os.Stdout); err != nil {
		app.Fatal("schedule import failed", err)
	}
}
